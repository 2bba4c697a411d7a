package prompts

import "github.com/0xcro3dile/adaptiverag/internal/domain/entities"

var intentAddOns = map[string]string{
	entities.IntentProcedure: `
SPECIAL FOCUS FOR PROCEDURAL QUERIES:

MANDATORY: All step information is present in the retrieved chunks. Your task is to assemble it completely.

- Ensure ALL steps are included in sequential order with complete details
- Include any prerequisites or setup requirements
- Mention expected outcomes or verification steps
- Include warnings or important notes
- ABSOLUTE REQUIREMENT: When you encounter "Follow the same steps outlined in sections X and Y above", you MUST search through ALL chunks to find those specific steps and include them with complete details. Never leave placeholder text.
- Extract exact UI element names: button names, tab names, field names, menu options
- Include specific role names, options, and selections mentioned
- NEVER write "[Missing Step]" or "follow steps above" - the information is in the chunks
- Every numbered step (Step 1, Step 2, Step 3, etc.) that appears in ANY chunk must be included in your final answer with full details

DEBUGGING: If you think information is missing, look again through ALL chunks - it's there.
`,
	entities.IntentComprehensiveList: `
SPECIAL FOCUS FOR COMPREHENSIVE LISTS:
- Include ALL items mentioned across all chunks
- Group related items logically
- Provide brief descriptions for each item when available
- Mention if the list appears to be complete or partial
`,
	entities.IntentComparison: `
SPECIAL FOCUS FOR COMPARATIVE QUERIES:
- Present information in a structured comparison format
- Highlight key differences and similarities
- Include pros/cons when mentioned in the source material
- Be objective and base comparisons only on provided information
`,
	entities.IntentTroubleshooting: `
SPECIAL FOCUS FOR TROUBLESHOOTING:
- List potential causes mentioned in the source material
- Provide step-by-step diagnostic or solution steps
- Include prevention tips if mentioned
- Suggest when to seek additional help if indicated
`,
	entities.IntentDefinition: `
SPECIAL FOCUS FOR DEFINITIONS:
- Provide clear, concise definitions
- Include context and usage examples when available
- Mention related concepts if they appear in the source material
`,
}

// ForIntent returns the extra instructions for a primary intent, or "" for
// general questions.
func ForIntent(primaryIntent string) string {
	return intentAddOns[primaryIntent]
}

// Specialized prompt keys.
const (
	CodeAnalysis      = "code_analysis"
	DataAnalysis      = "data_analysis"
	ProcedureAnalysis = "procedure_analysis"
	Troubleshooting   = "troubleshooting"
)

var specialized = map[string]string{
	CodeAnalysis: `You are analyzing code content. Focus on:
- Function/method purposes and parameters
- Code flow and logic
- Dependencies and imports
- Error handling and edge cases
- Usage examples where available`,
	DataAnalysis: `You are analyzing structured data (JSON, CSV, etc.). Focus on:
- Data schema and structure
- Key fields and their meanings
- Relationships between data elements
- Data types and constraints
- Sample values and patterns`,
	ProcedureAnalysis: `You are analyzing step-by-step procedures. Focus on:
- Complete sequential steps
- Prerequisites and setup requirements
- Expected outcomes for each step
- Important notes and warnings
- Alternative paths or options`,
	Troubleshooting: `You are helping with troubleshooting. Focus on:
- Problem identification
- Diagnostic steps
- Common causes and solutions
- Prevention measures
- When to escalate or seek additional help`,
}

// Specialized returns the focused prompt for a kind of analysis.
func Specialized(kind string) (string, bool) {
	p, ok := specialized[kind]
	return p, ok
}

// ForContentType picks the specialized prompt matching a chunk's content type.
func ForContentType(ct entities.ContentType) string {
	switch ct {
	case entities.ContentCode, entities.ContentTechnical:
		return specialized[CodeAnalysis]
	case entities.ContentData:
		return specialized[DataAnalysis]
	case entities.ContentProcedures:
		return specialized[ProcedureAnalysis]
	default:
		return ""
	}
}
