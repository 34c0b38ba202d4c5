package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(file, []byte("text"), 0600))

	assert.NoError(t, ValidateInputFile(file))
	assert.Error(t, ValidateInputFile(""))
	assert.Error(t, ValidateInputFile(dir))
	assert.Error(t, ValidateInputFile(filepath.Join(dir, "missing.txt")))
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsTextFile("a/resume.TXT"))
	assert.True(t, IsTextFile("cv.md"))
	assert.False(t, IsTextFile("cv.pdf"))
	assert.True(t, IsDataFile("job.yml"))
	assert.True(t, IsDataFile("answers.json"))
	assert.False(t, IsDataFile("resume.txt"))
	assert.Equal(t, "jane_doe", FileStem("/tmp/resumes/jane_doe.txt"))
}

func TestListTextFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.md", "job.yaml", "photo.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0750))

	files, err := ListTextFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "b.txt")}, files)

	_, err = ListTextFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
