package progressive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Phase errors. A bias phase failure is non-fatal: Run still returns the
// sentiment comments alongside it.
var (
	ErrSentimentPhase = errors.New("sentiment phase failed")
	ErrBiasPhase      = errors.New("bias phase failed")
)

// FallbackNotice is shown when the fast pass fails and the full pipeline is
// tried instead.
const FallbackNotice = "Fast analysis failed, falling back to full analysis"

// Fetcher retrieves comments for each phase.
type Fetcher interface {
	// Sentiment runs the fast pass for a thread.
	Sentiment(ctx context.Context, threadURL string) ([]thread.Comment, error)
	// Bias enriches comments and returns the full merged list.
	Bias(ctx context.Context, comments []thread.Comment) ([]thread.Comment, error)
	// Full runs the single-shot pipeline.
	Full(ctx context.Context, threadURL string) ([]thread.Comment, error)
}

// Pipeline sequences the two phases into a Controller.
type Pipeline struct {
	Fetcher        Fetcher
	Controller     *Controller
	FallbackToFull bool
	Tracer         trace.Tracer
	Logger         *slog.Logger
}

// Run fetches sentiment, draws it, fetches bias for the selected subset and
// updates the charts. The returned comments are the most complete list
// obtained.
func (p *Pipeline) Run(ctx context.Context, threadURL string) ([]thread.Comment, error) {
	threadURL, err := thread.Detect(threadURL).Require()
	if err != nil {
		return nil, err
	}

	tracer := p.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("threadlens")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, span := tracer.Start(ctx, "threadlens.pipeline",
		trace.WithAttributes(attribute.String("thread.url", threadURL)))
	defer span.End()

	comments, err := p.run(ctx, logger, threadURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(attribute.Int("thread.comments", len(comments)))

	return comments, err
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, threadURL string) ([]thread.Comment, error) {
	sentiment, err := p.Fetcher.Sentiment(ctx, threadURL)
	if err != nil {
		return p.fallback(ctx, logger, threadURL, err)
	}

	logger.InfoContext(ctx, "sentiment ready", "comments", len(sentiment))
	p.Controller.OnSentimentReady(ctx, sentiment)

	enriched, err := p.Fetcher.Bias(ctx, sentiment)
	if err != nil {
		p.Controller.OnBiasFailed(ctx, err)

		return sentiment, fmt.Errorf("%w: %w", ErrBiasPhase, err)
	}

	logger.InfoContext(ctx, "bias ready", "comments", len(enriched))
	p.Controller.OnBiasReady(ctx, enriched)

	return enriched, nil
}

func (p *Pipeline) fallback(ctx context.Context, logger *slog.Logger, threadURL string, fastErr error) ([]thread.Comment, error) {
	if !p.FallbackToFull || ctx.Err() != nil {
		p.Controller.OnSentimentFailed(ctx, fastErr)

		return nil, fmt.Errorf("%w: %w", ErrSentimentPhase, fastErr)
	}

	logger.WarnContext(ctx, "fast pass failed, trying full pipeline", "error", fastErr)
	p.Controller.Notice(FallbackNotice)

	full, err := p.Fetcher.Full(ctx, threadURL)
	if err != nil {
		joined := errors.Join(fastErr, err)
		p.Controller.OnSentimentFailed(ctx, joined)

		return nil, fmt.Errorf("%w: %w", ErrSentimentPhase, joined)
	}

	p.Controller.OnBiasReady(ctx, full)

	return full, nil
}

// Session runs a Pipeline in the background.
type Session struct {
	cancel context.CancelFunc
	ctrl   *Controller
	group  *errgroup.Group

	closeOnce sync.Once
	comments  []thread.Comment
}

// Start launches p.Run for threadURL in its own goroutine.
func Start(ctx context.Context, p *Pipeline, threadURL string) *Session {
	ctx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(ctx)

	sess := &Session{cancel: cancel, ctrl: p.Controller, group: group}

	group.Go(func() error {
		comments, err := p.Run(groupCtx, threadURL)
		sess.comments = comments

		return err
	})

	return sess
}

// Wait blocks until the pipeline finishes and returns its result.
func (s *Session) Wait() ([]thread.Comment, error) {
	err := s.group.Wait()
	s.cancel()

	return s.comments, err
}

// Close cancels in-flight fetches, detaches the controller so late
// responses are dropped, and waits for the goroutine to exit.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.ctrl.Detach()
		s.cancel()
		_ = s.group.Wait()
	})
}
