package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/llm"
	"github.com/sakif/smartbio/internal/metrics"
	"github.com/sakif/smartbio/internal/model"
)

const (
	// DefaultGenerationTimeout bounds a single model call.
	DefaultGenerationTimeout = 30 * time.Second

	copyMaxTokens   = 100
	copyTemperature = 0.9

	// One retry: the first failure is often a blip, a second one rarely is.
	generationAttempts = 2
)

// BuildPrompt embeds the three inputs verbatim in the instruction sent to the
// model.
func BuildPrompt(in model.BioInput) string {
	return fmt.Sprintf(
		"Write a persuasive, friendly, sales-oriented Instagram bio for the business %q, "+
			"which offers: %s. The bio must focus on getting people to: %s. "+
			"Reply with the bio text only.",
		in.BusinessName, in.Product, in.Objective,
	)
}

// GenerationResult is delivered by GenerateAsync.
type GenerationResult struct {
	Copy string
	Err  error
}

// CopyGenerator turns business facts into marketing copy.
//
// FAILURE POLICY:
//   - each model call gets its own timeout
//   - a failed call is retried once
//   - after 5 consecutive failures the circuit breaker opens and calls fail
//     immediately for 30s instead of tying up request goroutines
//
// Whatever goes wrong, callers see apperror.ErrGenerationUnavailable.
type CopyGenerator struct {
	completer llm.Completer
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// NewCopyGenerator wires the generator. completer may be nil (no model
// configured), in which case every call fails with GenerationUnavailable.
func NewCopyGenerator(completer llm.Completer, timeout time.Duration, logger *slog.Logger, m *metrics.Collector) *CopyGenerator {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "copy-generator",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		// A caller hanging up says nothing about the model's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &CopyGenerator{
		completer: completer,
		timeout:   timeout,
		breaker:   breaker,
		logger:    logger,
		metrics:   m,
	}
}

// Generate returns the model's copy for in, trimmed of surrounding
// whitespace.
func (g *CopyGenerator) Generate(ctx context.Context, in model.BioInput) (string, error) {
	if g.completer == nil {
		g.metrics.GenerationFailures.Inc()
		g.logger.Warn("generation requested but no model is configured")
		return "", apperror.GenerationUnavailable()
	}

	req := llm.Request{
		Prompt:      BuildPrompt(in),
		MaxTokens:   copyMaxTokens,
		Temperature: copyTemperature,
	}

	var lastErr error
	for attempt := 1; attempt <= generationAttempts; attempt++ {
		text, err := g.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		g.logger.Warn("generation attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		// No point retrying into an open breaker or for a caller that left.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || ctx.Err() != nil {
			break
		}
	}

	g.metrics.GenerationFailures.Inc()
	g.logger.Error("generation failed", slog.String("error", lastErr.Error()))
	return "", apperror.GenerationUnavailable()
}

func (g *CopyGenerator) attempt(ctx context.Context, req llm.Request) (string, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		text, err := g.completer.Complete(callCtx, req)
		if err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, llm.ErrEmptyCompletion
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// GenerateAsync runs Generate in its own goroutine. The returned channel
// receives exactly one result and is then closed.
func (g *CopyGenerator) GenerateAsync(ctx context.Context, in model.BioInput) <-chan GenerationResult {
	ch := make(chan GenerationResult, 1)
	go func() {
		defer close(ch)
		text, err := g.Generate(ctx, in)
		ch <- GenerationResult{Copy: text, Err: err}
	}()
	return ch
}
