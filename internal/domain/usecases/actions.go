package usecases

import (
	"context"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain/actions"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

const (
	actionTimeout    = 20 * time.Second
	actionNumPredict = 150
)

var actionTemperature = 0.1

// ActionUseCase decides which catalogue action, if any, a question asks
// for. The model is asked first; keyword and pattern matching is the
// fallback.
type ActionUseCase struct {
	matcher *actions.Matcher
	llm     ports.LLMService
	metrics ports.Metrics
}

// NewActionUseCase creates an ActionUseCase. llm may be nil to use pattern
// matching only.
func NewActionUseCase(catalog ports.ActionCatalog, llm ports.LLMService, opts ...Option) *ActionUseCase {
	o := buildOptions(opts)
	return &ActionUseCase{
		matcher: actions.NewMatcher(catalog.Actions()),
		llm:     llm,
		metrics: o.metrics,
	}
}

// Actions lists the catalogue.
func (uc *ActionUseCase) Actions() []actions.Action {
	return uc.matcher.Actions()
}

// Detect returns the action query asks for, or false when none fits.
func (uc *ActionUseCase) Detect(ctx context.Context, query string) (*actions.Detection, bool) {
	if det, ok := uc.detectWithModel(ctx, query); ok {
		uc.metrics.ActionDetected(det.Method)
		return det, true
	}
	if det, ok := uc.matcher.Match(query); ok {
		uc.metrics.ActionDetected(det.Method)
		return det, true
	}
	return nil, false
}

func (uc *ActionUseCase) detectWithModel(ctx context.Context, query string) (*actions.Detection, bool) {
	if uc.llm == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	reply, err := uc.llm.Generate(ctx, uc.matcher.Prompt(query), ports.GenerateOptions{
		Temperature: &actionTemperature,
		NumPredict:  actionNumPredict,
	})
	if err != nil {
		logger.Debugf("model action detection failed: %v", err)
		uc.metrics.LLMFailed(failureKind(err))
		return nil, false
	}
	return uc.matcher.ParseReply(reply)
}
