package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hirescore/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore keeps applications in three tables: applications,
// ai_analyses and skill_verifications.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects and pings the database
func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int32) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, dbError("invalid database URL", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, dbError("failed to create connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, dbError("failed to ping database", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range splitStatements(schemaSQL) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return dbError("failed to apply schema", err)
		}
	}
	return nil
}

func splitStatements(sql string) []string {
	var out []string
	for _, part := range strings.Split(sql, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return dbError("database unreachable", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateApplication(ctx context.Context, app *types.Application) error {
	id, err := uuid.Parse(app.ID)
	if err != nil {
		return dbError("application id is not a UUID", err)
	}

	jobJSON, err := json.Marshal(app.Job)
	if err != nil {
		return dbError("failed to marshal job", err)
	}
	profileJSON, err := json.Marshal(app.Profile)
	if err != nil {
		return dbError("failed to marshal profile", err)
	}
	matchJSON, err := json.Marshal(app.Match)
	if err != nil {
		return dbError("failed to marshal match result", err)
	}
	suggestionsJSON, err := json.Marshal(nonNil(app.Suggestions))
	if err != nil {
		return dbError("failed to marshal suggestions", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO applications (id, candidate_name, job_title, job, resume_text,
			test_eligible, test_available, test_category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, app.CandidateName, app.JobTitle, jobJSON, app.ResumeText,
		app.TestEligible, app.TestAvailable, app.TestCategory, app.CreatedAt)
	if err != nil {
		return dbError("failed to insert application", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ai_analyses (application_id, extraction_source, profile,
			match_result, final_score, eligibility, suggestions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, string(app.ExtractionSource), profileJSON, matchJSON,
		app.Match.FinalScore, string(app.Match.Eligibility), suggestionsJSON)
	if err != nil {
		return dbError("failed to insert analysis", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return dbError("failed to commit application", err)
	}
	return nil
}

func (s *PostgresStore) GetApplication(ctx context.Context, id string) (*types.Application, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound(id)
	}

	var (
		app                                     types.Application
		jobJSON, profileJSON, matchJSON         []byte
		suggestionsJSON, quizJSON, verification []byte
		source, eligibility                     string
		submittedAt                             *time.Time
	)

	err = s.pool.QueryRow(ctx, `
		SELECT a.candidate_name, a.job_title, a.job, a.resume_text,
			a.test_eligible, a.test_available, a.test_category, a.created_at,
			an.extraction_source, an.profile, an.match_result, an.eligibility, an.suggestions,
			sv.quiz_result, sv.verification, sv.submitted_at
		FROM applications a
		JOIN ai_analyses an ON an.application_id = a.id
		LEFT JOIN skill_verifications sv ON sv.application_id = a.id
		WHERE a.id = $1`, uid).Scan(
		&app.CandidateName, &app.JobTitle, &jobJSON, &app.ResumeText,
		&app.TestEligible, &app.TestAvailable, &app.TestCategory, &app.CreatedAt,
		&source, &profileJSON, &matchJSON, &eligibility, &suggestionsJSON,
		&quizJSON, &verification, &submittedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError("failed to load application", err)
	}

	app.ID = uid.String()
	app.ExtractionSource = types.ExtractionSource(source)
	app.QuizSubmittedAt = submittedAt

	if err := json.Unmarshal(jobJSON, &app.Job); err != nil {
		return nil, dbError("corrupt job column", err)
	}
	if err := json.Unmarshal(profileJSON, &app.Profile); err != nil {
		return nil, dbError("corrupt profile column", err)
	}
	if err := json.Unmarshal(matchJSON, &app.Match); err != nil {
		return nil, dbError("corrupt match_result column", err)
	}
	app.Match.Eligibility = types.Eligibility(eligibility)
	if err := json.Unmarshal(suggestionsJSON, &app.Suggestions); err != nil {
		return nil, dbError("corrupt suggestions column", err)
	}

	if quizJSON != nil {
		var quiz types.QuizResult
		if err := json.Unmarshal(quizJSON, &quiz); err != nil {
			return nil, dbError("corrupt quiz_result column", err)
		}
		app.Quiz = &quiz
	}
	if verification != nil {
		var v types.SkillVerification
		if err := json.Unmarshal(verification, &v); err != nil {
			return nil, dbError("corrupt verification column", err)
		}
		app.Verification = &v
	}

	return &app, nil
}

func (s *PostgresStore) SaveQuizResult(ctx context.Context, id string, quiz types.QuizResult, verification types.SkillVerification, at time.Time) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return notFound(id)
	}

	quizJSON, err := json.Marshal(quiz)
	if err != nil {
		return dbError("failed to marshal quiz result", err)
	}
	verificationJSON, err := json.Marshal(verification)
	if err != nil {
		return dbError("failed to marshal verification", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM applications WHERE id = $1 FOR UPDATE`, uid).Scan(&locked)
	if err == pgx.ErrNoRows {
		return notFound(id)
	}
	if err != nil {
		return dbError("failed to lock application", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO skill_verifications (application_id, quiz_result, verification, quiz_score, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id) DO NOTHING`,
		uid, quizJSON, verificationJSON, quiz.PercentageScore, at)
	if err != nil {
		return dbError("failed to save quiz result", err)
	}
	if tag.RowsAffected() == 0 {
		return alreadySubmitted(id)
	}

	if err := tx.Commit(ctx); err != nil {
		return dbError(fmt.Sprintf("failed to commit quiz result for %s", id), err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
