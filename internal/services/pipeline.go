package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"areetampo/circular-economy/internal/metrics"
	"areetampo/circular-economy/internal/models"
)

// Submission is one raw idea with its self-reported parameters.
type Submission struct {
	Idea       string
	Parameters map[string]interface{}
}

// PipelineRunner is what the HTTP layer and the worker depend on.
type PipelineRunner interface {
	Validate(idea string, params map[string]interface{}) (*ValidatedInput, error)
	Run(ctx context.Context, sub Submission) (*models.PipelineResponse, error)
}

type Pipeline struct {
	validator *InputValidator
	retriever *Retriever
	auditor   *AuditGenerator
	topK      int
	tracer    trace.Tracer
	log       *zap.Logger
}

func NewPipeline(validator *InputValidator, retriever *Retriever, auditor *AuditGenerator, topK int, log *zap.Logger) *Pipeline {
	return &Pipeline{
		validator: validator,
		retriever: retriever,
		auditor:   auditor,
		topK:      topK,
		tracer:    otel.Tracer("areetampo/circular-economy/pipeline"),
		log:       log,
	}
}

func (p *Pipeline) Validate(idea string, params map[string]interface{}) (*ValidatedInput, error) {
	return p.validator.Validate(idea, params)
}

// Run validates, scores and retrieves concurrently, then audits. A
// *ValidationError means the submission was rejected before any external
// call; every other failure is a *PipelineError.
func (p *Pipeline) Run(ctx context.Context, sub Submission) (resp *models.PipelineResponse, err error) {
	start := time.Now()
	ideaLength := utf8.RuneCountInString(sub.Idea)
	stage := StageValidate

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(attribute.Int("idea.length", ideaLength)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = &PipelineError{Stage: stage, Err: fmt.Errorf("%w: panic: %v", ErrUnexpected, r)}
		}

		var pErr *PipelineError
		switch {
		case err == nil:
			metrics.PipelineRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
			p.log.Info("✅ Pipeline completed",
				zap.Int("overall_score", resp.OverallScore),
				zap.Int("similar_cases", len(resp.SimilarCases)),
				zap.Duration("elapsed", time.Since(start)))
		case errors.As(err, &pErr):
			metrics.PipelineRuns.WithLabelValues(metrics.OutcomeFailure).Inc()
			metrics.PipelineFailures.WithLabelValues(pErr.Stage).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, pErr.Code())
			p.log.Error("❌ Pipeline failed",
				zap.String("stage", pErr.Stage),
				zap.String("code", pErr.Code()),
				zap.Int("idea_length", ideaLength),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		default:
			metrics.PipelineRuns.WithLabelValues(metrics.OutcomeValidationError).Inc()
			span.SetStatus(codes.Error, "validation")
			p.log.Info("🚫 Submission rejected", zap.Int("idea_length", ideaLength), zap.Error(err))
		}
	}()

	input, err := p.validator.Validate(sub.Idea, sub.Parameters)
	if err != nil {
		return nil, err
	}

	var (
		score models.ScoreResult
		cases []models.RetrievedCase
	)
	stage = StageRetrieve
	g, gctx := errgroup.WithContext(ctx)
	g.Go(recoverStage(StageScore, func() error {
		defer p.observe(gctx, StageScore)()
		score = ScoreValidated(input)
		return nil
	}))
	g.Go(recoverStage(StageRetrieve, func() error {
		defer p.observe(gctx, StageRetrieve)()
		found, err := p.retriever.Retrieve(gctx, input.Idea, p.topK)
		if err != nil {
			return &PipelineError{Stage: StageRetrieve, Err: err}
		}
		cases = found
		return nil
	}))
	if err := g.Wait(); err != nil {
		return nil, asPipelineError(StageRetrieve, err)
	}

	stage = StageAudit
	done := p.observe(ctx, StageAudit)
	audit, err := p.auditor.GenerateAudit(ctx, input.Idea, score, cases)
	done()
	if err != nil {
		return nil, asPipelineError(StageAudit, err)
	}

	if cases == nil {
		cases = []models.RetrievedCase{}
	}
	return &models.PipelineResponse{
		OverallScore: score.OverallScore,
		SubScores:    score.SubScores.Filtered(),
		Audit:        audit,
		SimilarCases: cases,
	}, nil
}

// observe records a stage duration and span; call the returned func when the stage ends.
func (p *Pipeline) observe(ctx context.Context, stage string) func() {
	start := time.Now()
	_, span := p.tracer.Start(ctx, "pipeline."+stage)
	return func() {
		metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		span.End()
	}
}

func recoverStage(stage string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PipelineError{Stage: stage, Err: fmt.Errorf("%w: panic: %v", ErrUnexpected, r)}
			}
		}()
		return fn()
	}
}

func asPipelineError(stage string, err error) error {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr
	}
	for _, known := range []error{ErrEmbeddingService, ErrGenerationService, ErrAuditParse, ErrUnexpected} {
		if errors.Is(err, known) {
			return &PipelineError{Stage: stage, Err: err}
		}
	}
	return &PipelineError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrUnexpected, err)}
}
