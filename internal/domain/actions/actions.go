// Package actions recognises when a question asks the application to do
// something (add a user, create a contract, ...) rather than explain it.
package actions

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// Detection methods.
const (
	MethodAI           = "ai"
	MethodPatternMatch = "pattern_match"
)

const (
	patternScore = 3
	keywordScore = 1
	exampleScore = 2

	// MinPatternScore is the lowest pattern score accepted as a match.
	MinPatternScore = 2
	// PatternConfidence is reported for every pattern match.
	PatternConfidence = 0.8
	// MinAIConfidence is the lowest model confidence accepted.
	MinAIConfidence = 0.6
)

// Action is one entry of the action catalogue.
type Action struct {
	ID             string   `yaml:"id" json:"action_id"`
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	Keywords       []string `yaml:"keywords" json:"keywords,omitempty"`
	Patterns       []string `yaml:"patterns" json:"patterns,omitempty"`
	ExampleQueries []string `yaml:"example_queries" json:"example_queries"`
}

// Detection is a recognised action.
type Detection struct {
	ActionID   string  `json:"action_id"`
	QuestionID string  `json:"question_id"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
	Reasoning  string  `json:"reasoning"`
	Action     Action  `json:"action_info"`
}

type compiledAction struct {
	Action
	regexps []*regexp.Regexp
}

// Matcher scores questions against a catalogue with regex patterns,
// keywords and example questions. It is safe for concurrent use.
type Matcher struct {
	actions []compiledAction
}

// NewMatcher compiles the catalogue. Patterns are case-insensitive; one
// that does not compile is logged and ignored.
func NewMatcher(catalogue []Action) *Matcher {
	m := &Matcher{actions: make([]compiledAction, 0, len(catalogue))}
	for _, a := range catalogue {
		ca := compiledAction{Action: a}
		for _, p := range a.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				logger.Warnf("action %s: skipping pattern %q: %v", a.ID, p, err)
				continue
			}
			ca.regexps = append(ca.regexps, re)
		}
		m.actions = append(m.actions, ca)
	}
	return m
}

// Actions returns the catalogue in order.
func (m *Matcher) Actions() []Action {
	out := make([]Action, len(m.actions))
	for i, a := range m.actions {
		out[i] = a.Action
	}
	return out
}

// Lookup finds an action by ID.
func (m *Matcher) Lookup(id string) (Action, bool) {
	for _, a := range m.actions {
		if a.ID == id {
			return a.Action, true
		}
	}
	return Action{}, false
}

// Score returns the pattern score of every action, in catalogue order.
func (m *Matcher) Score(query string) []int {
	q := strings.ToLower(query)
	scores := make([]int, len(m.actions))
	for i, a := range m.actions {
		for _, re := range a.regexps {
			if re.MatchString(q) {
				scores[i] += patternScore
			}
		}
		for _, kw := range a.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				scores[i] += keywordScore
			}
		}
		for _, ex := range a.ExampleQueries {
			ex = strings.ToLower(ex)
			if strings.Contains(q, ex) || strings.Contains(ex, q) {
				scores[i] += exampleScore
			}
		}
	}
	return scores
}

// Match returns the best scoring action when it reaches MinPatternScore.
// Ties go to the action listed first.
func (m *Matcher) Match(query string) (*Detection, bool) {
	best, bestScore := -1, 0
	for i, s := range m.Score(query) {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore < MinPatternScore {
		return nil, false
	}
	a := m.actions[best].Action
	return &Detection{
		ActionID:   a.ID,
		QuestionID: a.ID,
		Confidence: PatternConfidence,
		Method:     MethodPatternMatch,
		Reasoning:  "Matched based on keywords and patterns",
		Action:     a,
	}, true
}

// Prompt asks the model to pick an action for query and answer in JSON.
func (m *Matcher) Prompt(query string) string {
	var sb strings.Builder
	for _, a := range m.actions {
		examples := a.ExampleQueries
		if len(examples) > 2 {
			examples = examples[:2]
		}
		fmt.Fprintf(&sb, "\nACTION_ID: %s\nNAME: %s\nDESCRIPTION: %s\nKEYWORDS: %s\nEXAMPLES: %s\n---\n",
			a.ID, a.Name, a.Description, strings.Join(a.Keywords, ", "), strings.Join(examples, ", "))
	}

	return fmt.Sprintf(`You are an action detection system. Analyze the user query and determine which action_id best matches their intent.

AVAILABLE ACTIONS:
%s

USER QUERY: "%s"

TASK: Determine which action_id best matches the user's intent. Consider:
1. Keywords and semantic meaning
2. User's goal and context
3. Action descriptions

RESPONSE FORMAT (JSON only):
{
    "action_id": "most_appropriate_action_id_or_null",
    "confidence": 0.95,
    "reasoning": "Brief explanation of why this action was chosen"
}

Rules:
- Only return action_ids that exist in the available actions
- Confidence should be 0.0 to 1.0 (1.0 = perfect match)
- If confidence < 0.7, set action_id to null
- Be precise - don't guess if unsure

Respond with JSON only:`, sb.String(), query)
}

type aiReply struct {
	ActionID   *string `json:"action_id"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseReply reads the model's answer to Prompt. The JSON object is taken
// from the first "{" to the last "}" so surrounding prose is tolerated.
// Unknown actions and confidences below MinAIConfidence are rejected.
func (m *Matcher) ParseReply(reply string) (*Detection, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var r aiReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		logger.Debugf("action reply is not JSON: %v", err)
		return nil, false
	}
	if r.ActionID == nil || r.Confidence < MinAIConfidence {
		return nil, false
	}
	a, ok := m.Lookup(*r.ActionID)
	if !ok {
		return nil, false
	}
	return &Detection{
		ActionID:   a.ID,
		QuestionID: a.ID,
		Confidence: r.Confidence,
		Method:     MethodAI,
		Reasoning:  r.Reasoning,
		Action:     a,
	}, true
}
