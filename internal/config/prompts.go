package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// maxPromptFileSize caps prompt files read at startup
const maxPromptFileSize = 64 * 1024

// PromptConfig holds customizable prompts. A file path wins over inline text.
type PromptConfig struct {
	SystemPrompt     string `mapstructure:"systemPrompt"`
	SystemPromptFile string `mapstructure:"systemPromptFile"`
	UserPrompt       string `mapstructure:"userPrompt"`
	UserPromptFile   string `mapstructure:"userPromptFile"`
}

// loadPromptFiles replaces inline prompts with the contents of configured files
func (c *Config) loadPromptFiles() error {
	for _, p := range []*PromptConfig{&c.AI.CustomPrompts, &c.AI.Extract.CustomPrompts} {
		if err := loadPromptFile(p.SystemPromptFile, &p.SystemPrompt); err != nil {
			return err
		}
		if err := loadPromptFile(p.UserPromptFile, &p.UserPrompt); err != nil {
			return err
		}
	}
	return nil
}

func loadPromptFile(path string, target *string) error {
	if path == "" {
		return nil
	}

	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return fmt.Errorf("prompt file %s: %w", clean, err)
	}
	if info.IsDir() {
		return fmt.Errorf("prompt file %s is a directory", clean)
	}
	if info.Size() > maxPromptFileSize {
		return fmt.Errorf("prompt file %s exceeds %d bytes", clean, maxPromptFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return fmt.Errorf("failed to read prompt file %s: %w", clean, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return fmt.Errorf("prompt file %s is empty", clean)
	}

	*target = content
	log.Printf("[CONFIG] Loaded prompt from file: %s", clean)
	return nil
}
