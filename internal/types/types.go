package types

import "time"

// ExperienceRange is the accepted span of years of experience for a job
type ExperienceRange struct {
	Min int `json:"min" yaml:"min" validate:"gte=0"`
	Max int `json:"max" yaml:"max" validate:"gte=0,gtefield=Min"`
}

// Weights splits the final score between skills, knowledge and tasks
type Weights struct {
	Skills    float64 `json:"skills" yaml:"skills" validate:"gte=0,lte=1"`
	Knowledge float64 `json:"knowledge" yaml:"knowledge" validate:"gte=0,lte=1"`
	Tasks     float64 `json:"tasks" yaml:"tasks" validate:"gte=0,lte=1"`
}

// Sum returns the total of the three weights
func (w Weights) Sum() float64 {
	return w.Skills + w.Knowledge + w.Tasks
}

// JobRequirement is the immutable definition a candidate is scored against.
// ExperienceRange and Weights are pointers so a missing section can be told
// apart from a zero value.
type JobRequirement struct {
	Title           string           `json:"title" yaml:"title" validate:"required"`
	Skills          []string         `json:"skills" yaml:"skills"`
	Knowledge       []string         `json:"knowledge" yaml:"knowledge"`
	Tasks           []string         `json:"tasks" yaml:"tasks"`
	ExperienceRange *ExperienceRange `json:"experienceRange" yaml:"experienceRange" validate:"required"`
	Weights         *Weights         `json:"weights" yaml:"weights" validate:"required"`
	ThresholdScore  int              `json:"thresholdScore,omitempty" yaml:"thresholdScore" validate:"gte=0,lte=100"`
}

// DefaultThresholdScore gates the test stage when a job does not set its own
const DefaultThresholdScore = 60

// EffectiveThreshold returns ThresholdScore, or the default when unset
func (j JobRequirement) EffectiveThreshold() int {
	if j.ThresholdScore == 0 {
		return DefaultThresholdScore
	}
	return j.ThresholdScore
}

// CandidateProfile is the structured result of field extraction
type CandidateProfile struct {
	YearsOfExperience int      `json:"yearsOfExperience" yaml:"yearsOfExperience"`
	Skills            []string `json:"skills" yaml:"skills"`
	KnowledgeKeywords []string `json:"knowledgeKeywords" yaml:"knowledgeKeywords"`
	TaskKeywords      []string `json:"taskKeywords" yaml:"taskKeywords"`
	Education         string   `json:"education" yaml:"education"`
	Certifications    []string `json:"certifications" yaml:"certifications"`
	JobTitles         []string `json:"jobTitles" yaml:"jobTitles"`
}

// ExtractProfileInput is what an extractor reads: raw resume text plus the
// job it is being screened against, whose terms steer the extraction.
type ExtractProfileInput struct {
	ResumeText string         `json:"resumeText"`
	Job        JobRequirement `json:"job"`
}

// ExtractionSource tells which extractor produced a profile
type ExtractionSource string

const (
	ExtractionSourceLLM      ExtractionSource = "llm"
	ExtractionSourceFallback ExtractionSource = "fallback"
	// ExtractionSourceProvided marks a profile supplied by the caller
	ExtractionSourceProvided ExtractionSource = "provided"
)

// CategoryMatch is the overlap between one required list and the candidate's list
type CategoryMatch struct {
	Percentage int      `json:"percentage"`
	Matched    []string `json:"matched"`
	Missing    []string `json:"missing"`
}

// ExperienceStatus classifies the candidate's years against the job range
type ExperienceStatus string

const (
	ExperienceBelowMinimum  ExperienceStatus = "below_minimum"
	ExperienceOverqualified ExperienceStatus = "overqualified"
	ExperienceInRange       ExperienceStatus = "match"
)

// Flag is the traffic-light severity shown next to the experience status
type Flag string

const (
	FlagRed    Flag = "red"
	FlagYellow Flag = "yellow"
	FlagGreen  Flag = "green"
)

// ExperienceMatch is advisory only; it never feeds the final score
type ExperienceMatch struct {
	Status         ExperienceStatus `json:"status"`
	Flag           Flag             `json:"flag"`
	CandidateYears int              `json:"candidateYears"`
	RequiredMin    int              `json:"requiredMin"`
	RequiredMax    int              `json:"requiredMax"`
	YearsShort     int              `json:"yearsShort,omitempty"`
	YearsOver      int              `json:"yearsOver,omitempty"`
	Message        string           `json:"message"`
}

// Eligibility is the engine's own score bucket
type Eligibility string

const (
	NotEligible Eligibility = "not_eligible"
	Borderline  Eligibility = "borderline"
	Eligible    Eligibility = "eligible"
)

// MatchResult is the output of one matching run. Eligibility is the score
// bucket; MeetsThreshold is the job's own gate into the test stage.
type MatchResult struct {
	SkillMatch      CategoryMatch   `json:"skillMatch"`
	KnowledgeMatch  CategoryMatch   `json:"knowledgeMatch"`
	TaskMatch       CategoryMatch   `json:"taskMatch"`
	ExperienceMatch ExperienceMatch `json:"experienceMatch"`
	FinalScore      int             `json:"finalScore"`
	Eligibility     Eligibility     `json:"eligibility"`
	ThresholdScore  int             `json:"thresholdScore"`
	MeetsThreshold  bool            `json:"meetsThreshold"`
	Warnings        []string        `json:"warnings"`
}

// QuizQuestion is a bank entry. Correct and ValidatesSkills never leave the server.
type QuizQuestion struct {
	ID              string   `json:"id" yaml:"id"`
	Question        string   `json:"question" yaml:"question"`
	Options         []string `json:"options" yaml:"options"`
	Correct         int      `json:"correct" yaml:"correct"`
	Points          int      `json:"points" yaml:"points"`
	ValidatesSkills []string `json:"validatesSkills" yaml:"validatesSkills"`
}

// PublicQuestion is what a candidate sees
type PublicQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

// QuestionSheet is the quiz served for a job title
type QuestionSheet struct {
	JobTitle  string           `json:"jobTitle"`
	Category  string           `json:"category"`
	Resolved  string           `json:"resolvedBy"`
	Questions []PublicQuestion `json:"questions"`
}

// QuizAnswer is one submitted answer
type QuizAnswer struct {
	QuestionID     string `json:"questionId" yaml:"questionId" validate:"required"`
	SelectedOption int    `json:"selectedOption" yaml:"selectedOption" validate:"gte=0"`
}

// QuestionResult is the grading of one bank question
type QuestionResult struct {
	QuestionID     string `json:"questionId"`
	Answered       bool   `json:"answered"`
	SelectedOption *int   `json:"selectedOption,omitempty"`
	Correct        bool   `json:"correct"`
	PointsEarned   int    `json:"pointsEarned"`
	PointsPossible int    `json:"pointsPossible"`
}

// QuizResult is the graded quiz
type QuizResult struct {
	Category           string           `json:"category"`
	PercentageScore    int              `json:"percentageScore"`
	EarnedPoints       int              `json:"earnedPoints"`
	MaxPoints          int              `json:"maxPoints"`
	PerQuestionResults []QuestionResult `json:"perQuestionResults"`
	IgnoredAnswers     []string         `json:"ignoredAnswers,omitempty"`
}

// VerificationStatus is the evidence tier of a claimed skill
type VerificationStatus string

const (
	SkillVerified   VerificationStatus = "verified"
	SkillUnverified VerificationStatus = "unverified"
	SkillUntested   VerificationStatus = "untested"
)

// QuestionEvidence records one question used as evidence for a skill
type QuestionEvidence struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Correct    bool   `json:"correct"`
}

// VerificationDetail explains the tier of one claimed skill
type VerificationDetail struct {
	Status         VerificationStatus `json:"status"`
	MatchedSkills  []string           `json:"matchedSkills,omitempty"`
	CorrectAnswers int                `json:"correctAnswers"`
	TotalQuestions int                `json:"totalQuestions"`
	Percentage     int                `json:"percentage"`
	Reason         string             `json:"reason,omitempty"`
	Questions      []QuestionEvidence `json:"questions,omitempty"`
}

// SkillVerification cross-checks claimed skills against quiz answers
type SkillVerification struct {
	Category            string                        `json:"category"`
	TestAvailable       bool                          `json:"testAvailable"`
	VerifiedSkills      []string                      `json:"verifiedSkills"`
	UnverifiedSkills    []string                      `json:"unverifiedSkills"`
	UntestedSkills      []string                      `json:"untestedSkills"`
	VerificationDetails map[string]VerificationDetail `json:"verificationDetails"`
}

// ApplicationReport is the candidate-facing outcome of scoring a resume
type ApplicationReport struct {
	ID               string           `json:"id,omitempty"`
	CandidateName    string           `json:"candidateName,omitempty"`
	JobTitle         string           `json:"jobTitle"`
	Profile          CandidateProfile `json:"profile"`
	ExtractionSource ExtractionSource `json:"extractionSource"`
	Match            MatchResult      `json:"match"`
	Suggestions      []string         `json:"suggestions"`
	TestEligible     bool             `json:"testEligible"`
	TestAvailable    bool             `json:"testAvailable"`
	TestCategory     string           `json:"testCategory,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// Application is the persisted record a recruiter reviews
type Application struct {
	ApplicationReport
	Job             JobRequirement     `json:"job"`
	ResumeText      string             `json:"-"`
	Quiz            *QuizResult        `json:"quiz,omitempty"`
	Verification    *SkillVerification `json:"verification,omitempty"`
	QuizSubmittedAt *time.Time         `json:"quizSubmittedAt,omitempty"`
}

// QuizSubmissionReport is returned after a quiz is graded
type QuizSubmissionReport struct {
	ApplicationID string            `json:"applicationId"`
	Quiz          QuizResult        `json:"quiz"`
	Verification  SkillVerification `json:"verification"`
}

// RankedCandidate is one row of a ranking
type RankedCandidate struct {
	Rank             int              `json:"rank"`
	Name             string           `json:"name"`
	Source           string           `json:"source"`
	FinalScore       int              `json:"finalScore"`
	Eligibility      Eligibility      `json:"eligibility"`
	TestEligible     bool             `json:"testEligible"`
	SkillPercent     int              `json:"skillPercent"`
	KnowledgePercent int              `json:"knowledgePercent"`
	TaskPercent      int              `json:"taskPercent"`
	Experience       ExperienceStatus `json:"experience"`
	ExtractionSource ExtractionSource `json:"extractionSource"`
	Warnings         []string         `json:"warnings"`
	Suggestions      []string         `json:"suggestions"`
}

// RankingReport orders many candidates against one job
type RankingReport struct {
	JobTitle       string            `json:"jobTitle"`
	ThresholdScore int               `json:"thresholdScore"`
	Candidates     []RankedCandidate `json:"candidates"`
}
