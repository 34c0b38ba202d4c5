package ai

// DefaultExtractSystemPrompt is the system instruction for resume field extraction
const DefaultExtractSystemPrompt = `You are a technical recruiter screening resumes for cybersecurity roles. You read a resume and report only what it states.

- NEVER infer a skill, tool or certification the resume does not name
- Prefer the exact wording used in the job requirements when the resume names the same thing
- Count years of professional experience only, not education or hobby projects
- When something is unclear, leave it out`

// DefaultExtractUserPrompt is the user prompt template for resume field extraction.
// Placeholders in order: job title, required skills, knowledge areas, tasks, resume text.
const DefaultExtractUserPrompt = `Extract structured screening fields from the resume below for the role "%s".

**Job requirements (use these spellings where the resume matches them):**
- Skills: %s
- Knowledge areas: %s
- Tasks: %s

**Fields to return:**
1. yearsOfExperience: total years of professional experience as a whole number
2. skills: tools, technologies and hands-on skills
3. knowledgeKeywords: knowledge areas and concepts the candidate understands
4. taskKeywords: short phrases describing duties the candidate has performed
5. education: highest degree or education line, empty if none
6. certifications: professional certifications held
7. jobTitles: job titles the candidate has held

**Resume:**
-----
%s
-----`

// resolvePrompt picks the configured prompt, falling back to the default
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
