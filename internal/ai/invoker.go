package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/writediary/writediary/internal/correction"
	"github.com/writediary/writediary/internal/metrics"
)

// InvokerConfig controls the shared retry policy.
type InvokerConfig struct {
	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int
	// BackoffBase seeds the exponential schedule for throttling/transient
	// errors: BackoffBase << attempt, i.e. 2s/4s/8s with a 1s base.
	BackoffBase time.Duration
	// RetryPause is the fixed wait applied to every other failure.
	RetryPause time.Duration
}

// Invoker runs model invocations under a uniform retry and validation
// policy. Text correction and OCR share the policy; only the payload shapes
// and decoders differ. It exposes no cancellation of its own; the caller's
// context deadline is the only way to abandon an in-flight call.
type Invoker struct {
	client *Client
	cfg    InvokerConfig
}

// NewInvoker creates an Invoker around the given endpoint client.
func NewInvoker(client *Client, cfg InvokerConfig) *Invoker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.RetryPause <= 0 {
		cfg.RetryPause = 500 * time.Millisecond
	}
	return &Invoker{client: client, cfg: cfg}
}

// CorrectText invokes the model with a correction prompt pair and returns
// the validated, normalized result.
func (iv *Invoker) CorrectText(ctx context.Context, system, user string) (*correction.Result, error) {
	req := iv.client.textRequest(system + "\n\n" + user)

	var result *correction.Result
	err := iv.invoke(ctx, "correction", req, func(payload string) error {
		decoded, derr := decodeCorrection(payload)
		if derr != nil {
			return derr
		}
		result = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecognizeText invokes the vision model to transcribe handwriting.
// An empty string is a valid result: the image had no legible text.
func (iv *Invoker) RecognizeText(ctx context.Context, prompt, imageB64, mediaType string) (string, error) {
	req := iv.client.visionRequest(prompt, imageB64, mediaType)

	var text string
	err := iv.invoke(ctx, "ocr", req, func(payload string) error {
		decoded, derr := decodeTranscript(payload)
		if derr != nil {
			return derr
		}
		text = decoded
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// invoke runs the attempt loop. A decode/validation failure counts as a
// failed attempt exactly like a provider error. After the budget is spent it
// returns ErrModelUnavailable wrapping the last error.
func (iv *Invoker) invoke(ctx context.Context, kind string, req invokeRequest, decode func(payload string) error) error {
	var lastErr error

	for attempt := 1; attempt <= iv.cfg.MaxAttempts; attempt++ {
		payload, err := iv.client.Invoke(ctx, req)
		if err == nil {
			if derr := decode(payload); derr == nil {
				metrics.ModelAttemptsTotal.WithLabelValues(kind, "success").Inc()
				return nil
			} else {
				err = derr
			}
		}

		lastErr = err
		metrics.ModelAttemptsTotal.WithLabelValues(kind, "failure").Inc()
		slog.Warn("model invocation attempt failed",
			"kind", kind,
			"attempt", attempt,
			"max_attempts", iv.cfg.MaxAttempts,
			"error", err,
		)

		if attempt == iv.cfg.MaxAttempts {
			break
		}

		wait := iv.cfg.RetryPause
		if slowRetry(err) {
			wait = iv.cfg.BackoffBase << attempt
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("model invocation cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrModelUnavailable, iv.cfg.MaxAttempts, lastErr)
}
