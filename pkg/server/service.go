package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mikeboe/deep-report/pkg/clients"
	"github.com/mikeboe/deep-report/pkg/config"
	"github.com/mikeboe/deep-report/pkg/database"
	"github.com/mikeboe/deep-report/pkg/report"
	"github.com/mikeboe/deep-report/pkg/research"
)

// ErrJobNotFound marks lookups for ids with no job row.
var ErrJobNotFound = errors.New("job not found")

type Service struct {
	DB  *database.PostgresDB
	Cfg *config.Config
}

func NewService(db *database.PostgresDB, cfg *config.Config) *Service {
	return &Service{
		DB:  db,
		Cfg: cfg,
	}
}

type Job struct {
	ID            uuid.UUID       `json:"id"`
	Topic         string          `json:"topic"`
	Status        string          `json:"status"`
	Model         *string         `json:"model,omitempty"`
	Params        json.RawMessage `json:"params,omitempty"`
	Sources       json.RawMessage `json:"sources,omitempty"`
	SourcesDigest *string         `json:"sources_digest,omitempty"`
	FinalAnalysis *string         `json:"final_analysis,omitempty"`
	Draft         *string         `json:"draft,omitempty"`
	Enhanced      *string         `json:"enhanced,omitempty"`
	Error         *string         `json:"error,omitempty"`
	ErrorKind     *string         `json:"error_kind,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CreateJobRequest struct {
	Topic     string `json:"topic"`
	Model     string `json:"model"`
	MaxDepth  int    `json:"maxDepth"`
	TimeLimit int    `json:"timeLimit"`
	MaxURLs   int    `json:"maxUrls"`
}

func (r CreateJobRequest) params() research.Params {
	return research.Params{
		MaxDepth:  r.MaxDepth,
		TimeLimit: r.TimeLimit,
		MaxURLs:   r.MaxURLs,
	}.WithDefaults()
}

func (s *Service) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	// No job row, no worker, no outbound call without both credentials.
	if err := s.Cfg.Validate(); err != nil {
		return nil, fmt.Errorf("missing credentials: %w", err)
	}

	model, err := clients.ParseModel(req.Model)
	if err != nil {
		return nil, err
	}

	paramsJSON, _ := json.Marshal(req.params())

	jobID := uuid.New()
	query := `
		INSERT INTO report_jobs (id, topic, status, model, params)
		VALUES ($1, $2, 'pending', $3, $4)
		RETURNING id, topic, status, model, params, created_at, updated_at
	`

	job := &Job{}
	err = s.DB.Pool.QueryRow(ctx, query, jobID, req.Topic, string(model), paramsJSON).Scan(
		&job.ID, &job.Topic, &job.Status, &job.Model, &job.Params, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// Start background worker
	go s.runWorker(job.ID, req)

	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	query := `
		SELECT id, topic, status, model, params, sources, sources_digest,
		       final_analysis, draft, enhanced, error, error_kind, created_at, updated_at
		FROM report_jobs
		WHERE id = $1
	`
	job := &Job{}
	err := s.DB.Pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.Topic, &job.Status, &job.Model, &job.Params, &job.Sources, &job.SourcesDigest,
		&job.FinalAnalysis, &job.Draft, &job.Enhanced, &job.Error, &job.ErrorKind, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context) ([]Job, error) {
	query := `
		SELECT id, topic, status, model, error, error_kind, created_at, updated_at
		FROM report_jobs
		ORDER BY created_at DESC
		LIMIT 50
	`
	rows, err := s.DB.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Topic, &job.Status, &job.Model, &job.Error, &job.ErrorKind, &job.CreatedAt, &job.UpdatedAt); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (s *Service) GetJobLogs(ctx context.Context, jobID uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, timestamp, level, message, metadata
		FROM report_logs
		WHERE job_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.Pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (s *Service) runWorker(jobID uuid.UUID, req CreateJobRequest) {
	ctx := context.Background()

	// All worker logs land in report_logs for this job
	dbLogger := slog.New(NewDBLogHandler(s.DB, jobID))

	llm, err := clients.Groq(clients.ModelType(req.Model), s.Cfg.GroqAPIKey, s.Cfg.GroqBaseURL)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("Failed to init completion client: %v", err), report.KindUnknown)
		return
	}

	researcher := research.NewClient(s.Cfg.FirecrawlAPIKey, s.Cfg.FirecrawlBaseURL)
	researcher.Logger = dbLogger

	pipe := report.NewPipeline(researcher, llm)
	pipe.Logger = dbLogger
	pipe.OnActivity = func(a research.Activity) {
		dbLogger.Info(a.String())
	}
	pipe.OnStage = func(stage report.Stage) {
		s.setStatus(ctx, jobID, statusForStage(stage))
	}

	result, err := pipe.Run(ctx, report.Request{
		Topic:       req.Topic,
		Params:      req.params(),
		SourceLimit: s.Cfg.SourceLimit,
	})
	if err != nil {
		var stageErr *report.Error
		if errors.As(err, &stageErr) {
			s.failJob(ctx, jobID, stageErr.Message, stageErr.Kind)
		} else {
			s.failJob(ctx, jobID, err.Error(), report.KindUnknown)
		}
		return
	}

	sourcesJSON, err := json.Marshal(result.Sources)
	if err != nil {
		sourcesJSON = []byte("[]")
	}

	_, err = s.DB.Pool.Exec(ctx, `
		UPDATE report_jobs
		SET status = 'completed', sources = $2, sources_digest = $3, final_analysis = $4,
		    draft = $5, enhanced = $6, updated_at = NOW()
		WHERE id = $1`,
		jobID, sourcesJSON, result.SourcesDigest, result.FinalAnalysis, result.Draft, result.Enhanced)
	if err != nil {
		dbLogger.Error("Failed to save report to DB", "error", err)
	}
}

func statusForStage(stage report.Stage) string {
	switch stage {
	case report.StageResearch:
		return "researching"
	case report.StageFormat:
		return "formatting"
	case report.StageDraft:
		return "drafting"
	case report.StageEnhance:
		return "enhancing"
	}
	return "running"
}

func (s *Service) setStatus(ctx context.Context, jobID uuid.UUID, status string) {
	_, _ = s.DB.Pool.Exec(ctx, "UPDATE report_jobs SET status = $2, updated_at = NOW() WHERE id = $1", jobID, status)
}

func (s *Service) failJob(ctx context.Context, jobID uuid.UUID, reason string, kind report.Kind) {
	// Log the failure
	dbLogger := slog.New(NewDBLogHandler(s.DB, jobID))
	dbLogger.Error(reason, "kind", string(kind))

	// Update status
	_, _ = s.DB.Pool.Exec(ctx,
		"UPDATE report_jobs SET status = 'failed', error = $2, error_kind = $3, updated_at = NOW() WHERE id = $1",
		jobID, reason, string(kind))
}
