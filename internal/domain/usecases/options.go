package usecases

import (
	"errors"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/classifier"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/domain/prompts"
)

// Option configures a use case. Options a use case has no use for are
// ignored.
type Option func(*options)

type options struct {
	metrics     ports.Metrics
	classifier  *classifier.ContentClassifier
	promptStyle string
}

func buildOptions(opts []Option) options {
	o := options{
		metrics:     nopMetrics{},
		promptStyle: prompts.StyleEnhanced,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMetrics reports counters and timings to m.
func WithMetrics(m ports.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClassifier replaces the default content classifier.
func WithClassifier(c *classifier.ContentClassifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithPromptStyle selects prompts.StyleEnhanced or prompts.StyleInApp.
func WithPromptStyle(style string) Option {
	return func(o *options) {
		if style != "" {
			o.promptStyle = style
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) DocumentIngested(string, string, string, int) {}
func (nopMetrics) DocumentSkipped(string)                       {}
func (nopMetrics) Retrieved(string, int, time.Duration)         {}
func (nopMetrics) QueryAnswered(string)                         {}
func (nopMetrics) LLMFailed(string)                             {}
func (nopMetrics) ActionDetected(string)                        {}

// failureKind labels a model error for metrics.
func failureKind(err error) string {
	var statusErr *domain.LLMStatusError
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrLLMTimeout):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "other"
	}
}
