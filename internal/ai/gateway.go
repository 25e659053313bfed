// Package ai wraps the text-generation backend used for captions, ad copy
// and moderation. Remote failures never reach callers: every operation
// degrades to fixed fallback text or to the configured moderation policy.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"socialsphere/internal/observability"
)

const (
	captionPrompt    = `Draft a catchy and engaging social media post caption about: %s. Keep it friendly and use emojis. Max 2 sentences.`
	adCopyPrompt     = `Write a compelling advertisement headline and body text for a product called "%s" with description: "%s". Format as: "Headline: ... \nBody: ..."`
	moderationPrompt = `Is the following social media post text safe and community-friendly? Respond only with YES or NO. Text: "%s"`
)

// Fallback text returned when the backend answers with nothing or fails.
const (
	CaptionEmpty  = "Ready to share!"
	CaptionFailed = "Error generating caption."
	AdCopyEmpty   = "Check this out!"
	AdCopyFailed  = "Amazing deal!"
)

const (
	DefaultModel   = "gemini-3-flash-preview"
	DefaultTimeout = 15 * time.Second

	opCaption       = "caption"
	opAdCopy        = "ad_copy"
	opModeration    = "moderation"
	moderationAllow = "YES"
)

// ErrDisabled is returned by the generator used when no API key is configured.
var ErrDisabled = errors.New("ai backend disabled: no API key configured")

// Generator sends one instruction to a model and returns its raw text.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, model, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

// Disabled is a Generator that always fails with ErrDisabled.
var Disabled Generator = GeneratorFunc(func(context.Context, string, string) (string, error) {
	return "", ErrDisabled
})

type Options struct {
	Model      string
	Timeout    time.Duration // per attempt
	MaxRetries int
	// FailOpen allows content when moderation cannot reach a verdict.
	FailOpen bool
}

// Gateway is safe for concurrent use.
type Gateway struct {
	gen    Generator
	opts   Options
	logger *slog.Logger
}

func NewGateway(gen Generator, opts Options) *Gateway {
	if gen == nil {
		gen = Disabled
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Gateway{
		gen:    gen,
		opts:   opts,
		logger: observability.GlobalLogger.With(slog.String("component", "ai_gateway")),
	}
}

// Model returns the configured model identifier.
func (g *Gateway) Model() string {
	return g.opts.Model
}

// GenerateCaption drafts a short caption for topic.
func (g *Gateway) GenerateCaption(ctx context.Context, topic string) string {
	text, err := g.call(ctx, opCaption, fmt.Sprintf(captionPrompt, topic))
	switch {
	case err != nil:
		g.fallback(ctx, opCaption, err)
		return CaptionFailed
	case text == "":
		g.fallback(ctx, opCaption, nil)
		return CaptionEmpty
	}
	observability.AIRequests.WithLabelValues(opCaption, observability.OutcomeSuccess).Inc()
	return text
}

// GenerateAdCopy writes a headline and body for a product listing.
func (g *Gateway) GenerateAdCopy(ctx context.Context, name, description string) string {
	text, err := g.call(ctx, opAdCopy, fmt.Sprintf(adCopyPrompt, name, description))
	switch {
	case err != nil:
		g.fallback(ctx, opAdCopy, err)
		return AdCopyFailed
	case text == "":
		g.fallback(ctx, opAdCopy, nil)
		return AdCopyEmpty
	}
	observability.AIRequests.WithLabelValues(opAdCopy, observability.OutcomeSuccess).Inc()
	return text
}

// Moderate reports whether text may be published. Only an exact YES
// (ignoring case and surrounding space) allows it; when the backend fails
// the FailOpen policy decides.
func (g *Gateway) Moderate(ctx context.Context, text string) bool {
	verdict, err := g.call(ctx, opModeration, fmt.Sprintf(moderationPrompt, text))
	if err != nil {
		observability.AIRequests.WithLabelValues(opModeration, observability.OutcomeFallback).Inc()
		if g.opts.FailOpen {
			observability.ModerationFailOpen.Inc()
			g.logger.WarnContext(ctx, "moderation unavailable, allowing content",
				slog.String("error", err.Error()),
				slog.Bool("fail_open", true),
			)
			return true
		}
		g.logger.WarnContext(ctx, "moderation unavailable, rejecting content",
			slog.String("error", err.Error()),
			slog.Bool("fail_open", false),
		)
		return false
	}
	observability.AIRequests.WithLabelValues(opModeration, observability.OutcomeSuccess).Inc()
	return strings.EqualFold(verdict, moderationAllow)
}

// call runs the generator with a timeout per attempt and returns the
// trimmed response.
func (g *Gateway) call(ctx context.Context, op, prompt string) (string, error) {
	span, ctx := observability.StartAISpan(ctx, op, g.opts.Model)
	defer span.End()

	start := time.Now()
	defer func() {
		observability.AILatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
		text, err := g.gen.Generate(attemptCtx, g.opts.Model, prompt)
		cancel()
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err
		if errors.Is(err, ErrDisabled) || ctx.Err() != nil {
			break
		}
		g.logger.DebugContext(ctx, "ai attempt failed",
			slog.String("operation", op),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)
	}
	span.SetError(lastErr)
	return "", lastErr
}

func (g *Gateway) fallback(ctx context.Context, op string, err error) {
	observability.AIRequests.WithLabelValues(op, observability.OutcomeFallback).Inc()
	if err == nil {
		g.logger.InfoContext(ctx, "ai returned empty response", slog.String("operation", op))
		return
	}
	if errors.Is(err, ErrDisabled) {
		g.logger.DebugContext(ctx, "ai disabled, using fallback", slog.String("operation", op))
		return
	}
	g.logger.WarnContext(ctx, "ai request failed, using fallback",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
