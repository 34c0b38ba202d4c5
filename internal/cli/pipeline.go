package cli

import (
	"context"

	"hirescore/internal/ai"
	"hirescore/internal/application"
	"hirescore/internal/config"
	"hirescore/internal/errors"
	"hirescore/internal/extraction"
	"hirescore/internal/observability"
	"hirescore/internal/quiz"
	"hirescore/internal/store"
)

// pipeline holds the services a command runs with
type pipeline struct {
	app     *application.Service
	ai      *ai.Service
	catalog *quiz.Catalog
	store   store.Store
	logger  *errors.Logger
}

type pipelineOptions struct {
	withStore bool
	metrics   *observability.Metrics
}

// newPipeline wires extraction, the question bank and optionally the store.
// Without a usable model key extraction runs on the keyword scanner only.
func newPipeline(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts pipelineOptions) (*pipeline, error) {
	p := &pipeline{logger: logger}

	var primary extraction.Extractor
	if cfg.LLMExtractionEnabled() {
		extractCfg := cfg.GetExtractConfig()
		aiService, err := ai.NewService(&extractCfg, ai.OperationExtract, logger)
		if err != nil {
			return nil, err
		}
		p.ai = aiService
		primary = extraction.NewLLMExtractor(aiService.Provider, opts.metrics, cfg.Extraction.MaxResumeChars)
	} else {
		logger.Info("LLM extraction disabled, using keyword extraction",
			"use_llm", cfg.Extraction.UseLLM)
	}
	extractor := extraction.NewFailoverExtractor(primary, cfg.Extraction.Timeout, logger, opts.metrics)

	catalog, err := quiz.NewCatalog(cfg.Quiz.BankFile, logger)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.catalog = catalog

	if opts.withStore {
		st, err := store.Open(ctx, cfg.Store, logger)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.store = st
	}

	p.app = application.NewService(extractor, catalog, p.store, logger,
		application.WithMetrics(opts.metrics),
		application.WithRankConcurrency(cfg.App.RankConcurrency))
	return p, nil
}

// Close releases the model client and the store
func (p *pipeline) Close() {
	if p.ai != nil {
		if err := p.ai.Close(); err != nil {
			p.logger.LogError(err, "Failed to close AI service")
		}
	}
	if p.store != nil {
		p.store.Close()
	}
}
