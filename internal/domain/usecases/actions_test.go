package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/actions"
)

type staticCatalog []actions.Action

func (c staticCatalog) Actions() []actions.Action { return c }

var testActions = staticCatalog{
	{
		ID:             "delete_contract",
		Name:           "Delete Contract",
		Description:    "Delete or remove an existing contract",
		Keywords:       []string{"delete", "remove", "contract"},
		Patterns:       []string{`delete.*contract`, `remove.*contract`},
		ExampleQueries: []string{"delete contract"},
	},
	{
		ID:             "setup_workflow",
		Name:           "Setup Workflow",
		Description:    "Configure a new workflow",
		Keywords:       []string{"setup", "workflow"},
		Patterns:       []string{`setup.*workflow`},
		ExampleQueries: []string{"setup new workflow"},
	},
}

func TestActionUseCase_ModelFirst(t *testing.T) {
	llm := &mockLLM{generateFn: func(string) (string, error) {
		return `Sure: {"action_id": "setup_workflow", "confidence": 0.9, "reasoning": "asks for a workflow"}`, nil
	}}
	metrics := &recordingMetrics{}
	uc := NewActionUseCase(testActions, llm, WithMetrics(metrics))

	det, ok := uc.Detect(context.Background(), "I need to delete a contract")
	require.True(t, ok)
	assert.Equal(t, "setup_workflow", det.ActionID)
	assert.Equal(t, actions.MethodAI, det.Method)
	assert.Equal(t, []string{actions.MethodAI}, metrics.actions)

	require.Len(t, llm.opts, 1)
	require.NotNil(t, llm.opts[0].Temperature)
	assert.Equal(t, 0.1, *llm.opts[0].Temperature)
	assert.Equal(t, 150, llm.opts[0].NumPredict)
	assert.Contains(t, llm.lastPrompt(), `USER QUERY: "I need to delete a contract"`)
}

func TestActionUseCase_FallsBackToPatterns(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"model down", "", domain.ErrLLMUnavailable},
		{"low confidence", `{"action_id": "setup_workflow", "confidence": 0.3}`, nil},
		{"null action", `{"action_id": null, "confidence": 0.9}`, nil},
		{"not json", "no idea", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{generateFn: func(string) (string, error) { return tt.reply, tt.err }}
			uc := NewActionUseCase(testActions, llm)

			det, ok := uc.Detect(context.Background(), "please delete contract 12")
			require.True(t, ok)
			assert.Equal(t, "delete_contract", det.ActionID)
			assert.Equal(t, actions.MethodPatternMatch, det.Method)
			assert.Equal(t, actions.PatternConfidence, det.Confidence)
		})
	}
}

func TestActionUseCase_NoModel(t *testing.T) {
	uc := NewActionUseCase(testActions, nil)

	det, ok := uc.Detect(context.Background(), "setup workflow for approvals")
	require.True(t, ok)
	assert.Equal(t, "setup_workflow", det.ActionID)

	_, ok = uc.Detect(context.Background(), "what is the weather")
	assert.False(t, ok)

	assert.Len(t, uc.Actions(), 2)
}
