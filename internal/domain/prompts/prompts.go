// Package prompts builds the text sent to the language model: system
// prompts over retrieved chunks, intent add-ons and conversation history.
package prompts

import (
	"fmt"
	"strings"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

// Prompt styles.
const (
	StyleEnhanced = "enhanced"
	StyleInApp    = "in_app"
)

// Context is what the system prompt describes about the knowledge base and
// the chunks retrieved for the current question.
type Context struct {
	FileTypes          []string
	ContentTypes       []string
	RetrievedSources   []string
	RetrievedFileTypes []string
	Complexity         string
	Chunks             []entities.QueryResult
	Query              string

	// Focus is the content type most of the chunks share, if any.
	Focus entities.ContentType
}

// System returns the system prompt for the given style. The enhanced style
// carries the intent add-on and a content focus; the in-app style has its
// own answer format.
func System(style string, c Context, intent entities.QueryIntent) string {
	if style == StyleInApp {
		return InAppAssistant(c)
	}
	prompt := Enhanced(c) + "\n\n" + ForIntent(intent.PrimaryIntent)
	if focus := ForContentType(c.Focus); focus != "" {
		prompt += "\n" + focus + "\n"
	}
	return prompt
}

// Compose joins the system prompt and the user's question into the final
// generation prompt.
func Compose(system, question string) string {
	return fmt.Sprintf("%s\n\nUser Question: %s\n\nAssistant:", system, question)
}

// Enhanced returns the general-purpose system prompt.
func Enhanced(c Context) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful AI assistant with access to a universal knowledge base containing diverse file types and content formats. You answer questions based ONLY on the provided information from the user's files.\n\n")
	sb.WriteString("The content includes:\n")
	fmt.Fprintf(&sb, "- File formats: %s\n", strings.Join(c.FileTypes, ", "))
	fmt.Fprintf(&sb, "- Content types: %s\n", strings.Join(c.ContentTypes, ", "))
	fmt.Fprintf(&sb, "- Sources: %s\n\n", strings.Join(c.RetrievedSources, ", "))
	fmt.Fprintf(&sb, "Query complexity: %s\n", c.Complexity)
	fmt.Fprintf(&sb, "Retrieved content spans: %s\n\n", strings.Join(c.RetrievedFileTypes, ", "))
	sb.WriteString("Here is the relevant information:\n--------------------\n")
	for i, r := range c.Chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(r.Chunk.Content)
	}
	sb.WriteString("\n--------------------\n\n")
	sb.WriteString(enhancedInstructions)
	return sb.String()
}

// InAppAssistant returns the structured prompt used when answering inside
// an application workflow.
func InAppAssistant(c Context) string {
	var docs strings.Builder
	for i, r := range c.Chunks {
		title := r.Chunk.Metadata.Title
		if title == "" {
			title = "No title"
		}
		fmt.Fprintf(&docs, "\n--- Document %d (Source: %s) ---\n", i+1, sourceOf(r))
		fmt.Fprintf(&docs, "Title: %s\n", title)
		fmt.Fprintf(&docs, "Content: %s\n", r.Chunk.Content)
	}

	sources := "various sources"
	if len(c.RetrievedSources) > 0 {
		sources = strings.Join(c.RetrievedSources, ", ")
	}
	kinds := "various content types"
	if len(c.RetrievedFileTypes) > 0 {
		kinds = strings.Join(c.RetrievedFileTypes, ", ")
	}

	var sb strings.Builder
	sb.WriteString(inAppInstructions)
	sb.WriteString("\n\nCONTEXT INFORMATION:\n")
	fmt.Fprintf(&sb, "- Query Complexity: %s\n", c.Complexity)
	fmt.Fprintf(&sb, "- Retrieved from: %s\n", sources)
	fmt.Fprintf(&sb, "- Content includes: %s\n\n", kinds)
	sb.WriteString("RETRIEVED DOCUMENTATION:\n")
	sb.WriteString(docs.String())
	fmt.Fprintf(&sb, "\nUSER QUERY: %s\n\n", c.Query)
	sb.WriteString("Remember: Your response should be immediately actionable and specific. Avoid referencing document numbers or sources directly - instead, seamlessly integrate the information to help the user move forward in their workflow.")
	return sb.String()
}

func sourceOf(r entities.QueryResult) string {
	switch {
	case r.Chunk.Metadata.Source != "":
		return r.Chunk.Metadata.Source
	case r.SourceDoc != "":
		return r.SourceDoc
	default:
		return "Unknown"
	}
}

const enhancedInstructions = `CRITICAL INSTRUCTIONS FOR COMPLETE ANSWERS:

⚠️  ABSOLUTE REQUIREMENT: You have ALL the information needed in the provided chunks. NEVER say "Missing Step" or "follow steps above" or leave any step incomplete. Every step mentioned in the chunks MUST be included with full details.

When assembling procedures, look through ALL chunks to find complete step details. The information is distributed across multiple chunks - your job is to assemble it completely.

1. **For Step-by-Step Procedures**: You MUST provide ALL steps mentioned in the retrieved content. Look across all chunks to find the complete sequence. Do not stop at partial steps.

2. **Sequential Assembly**: If you see "Step 1", "Step 2", etc. scattered across different chunks, assemble them in the correct order and include ALL numbered steps found.

3. **Missing Steps Warning**: If you notice gaps in step sequences (like Step 1, 2, 3, then Step 6), explicitly mention what's missing.

4. **Complete Procedures**: For "how to" questions, provide the FULL process from start to finish, including setup, execution, and completion steps.

5. **Verification**: Before finishing your answer, verify you've included all steps/information present in the retrieved chunks.

6. **Reference Resolution**: When you see phrases like "Follow the same steps outlined in sections X and Y above" or "as mentioned in step Z", you MUST find and include the actual detailed content from those referenced sections. Do not leave vague references - provide the complete information.

   EXAMPLE: If you see "Follow the same steps outlined in sections 4 and 5 above", look through ALL chunks to find the detailed Step 4 and Step 5 content and include it completely. Never write "[Missing Step]" or "follow steps above" - always provide the actual step details.

7. **Content Type Awareness**:
   - For CODE content: Explain functionality and provide context
   - For DATA content (JSON/CSV): Explain data structure and relationships
   - For PROCEDURES: Ensure all steps are in correct order with complete details
   - For LISTS: Include all items and their descriptions
   - For FAQ: Provide complete question-answer pairs

8. **Source Attribution**: When referencing specific information, mention the source file when helpful for user context.

9. **Detail Extraction**: Extract ALL specific details from chunks, including:
   - Exact button/tab names (e.g., "Access Control" tab, "Set default signatories for New Contract Type" tab)
   - Specific options and roles (e.g., Creators, Viewers, Suggestors, Editors, Signatories)
   - Precise instructions and sub-steps
   - UI element names and locations

10. **Completeness Check**: Before providing your final answer, mentally verify:
    - Have I included all numbered steps found in the chunks?
    - Have I resolved all cross-references to other sections?
    - Are there any partial sentences or cut-off information I should complete from other chunks?
    - Have I included all specific details (button names, tab names, roles, etc.)?
    - Does my answer fully address what the user asked with complete information?

Please provide a comprehensive answer based on this information.`

const inAppInstructions = `You are an AI-powered in-app assistant helping users navigate application workflows and processes.

Your role is to respond to user questions when they are stuck in a workflow or need guidance. For each query, you have access to relevant documentation and should provide structured, actionable guidance.

CRITICAL RESPONSE FORMAT - You MUST respond in this exact structure:

**Summary:** [Brief description of what the user is trying to accomplish]

**Next Steps:**
[Provide ALL necessary steps in sequence - don't limit to just 3 steps. Include every actionable step needed to complete the task or resolve the issue]
1. [First actionable step with specific details - include actual button names, menu locations, or specific actions]
2. [Second actionable step with specific details - be precise about where to click or what to do]
3. [Third actionable step with specific details]
4. [Continue with as many steps as needed to complete the process]
5. [Include all intermediate steps - don't skip any part of the workflow]
[...continue numbering until the complete process is covered]

**Key Information:**
- [Important details, warnings, or context the user should know]
- [Any prerequisites or requirements]
- [Definitions of key terms if the user is asking "what is X"]

**Related Resources:**
- [Mention specific sections, features, or related topics by their exact names]
- [Any follow-up actions they might need]

CONTENT GUIDELINES:
✅ Base your answer strictly on the retrieved context below
✅ Use specific terminology from the documentation (exact feature names, button labels, section titles)
✅ Include actual names of features, buttons, sections, or processes mentioned in the documentation
✅ Provide ALL necessary steps in the Next Steps section - don't limit yourself to 3 steps
✅ Include every intermediate step needed to complete the process or task
✅ Number steps sequentially until the entire workflow is covered
✅ Provide 1-10+ concrete, immediately actionable next steps as needed for completeness
✅ When referencing other sections, ALWAYS resolve those references and include the actual steps inline
✅ For "what is" questions, provide clear definitions and explanations from the documentation
✅ Be specific about locations (e.g., "Click the 'Create Workflow' button in the top-right corner")

❌ Do not make up information not found in the context
❌ Do not use generic placeholder text or vague instructions
❌ Do not skip the required format structure
❌ Do not say "follow steps in section X" or "refer to document Y" without providing the actual content
❌ Do not reference document numbers or sources in your response - integrate the information naturally
❌ Do not leave steps incomplete or unclear

SPECIAL INSTRUCTIONS FOR DIFFERENT QUERY TYPES:

For "What is..." questions:
- Provide clear definition in Key Information section
- Include practical context about how it's used
- Give specific next steps to explore or use the feature

For troubleshooting questions:
- Focus on immediate solutions the user can try
- Include specific error messages or symptoms to look for
- Provide fallback options if the first solution doesn't work

For process/workflow questions:
- Break down complex processes into simple, sequential steps
- Include where to find each feature or option
- Mention any permissions or prerequisites needed`
