package llm

import (
	"fmt"
	"strings"

	"github.com/crossroads-cli/crossroads/internal/tree"
)

const branchPrompt = `You are a creative strategist and life coach. Your task is to brainstorm the next set of sequential decision points or outcomes that would follow from a previous choice.

**Initial User Context:**
%s

**The user has just made the following decision:**
%s

Now, generate exactly %d distinct, realistic, and actionable *next steps* or *consequences* that would logically follow. These should represent the next fork in the road after committing to the previous decision. They should not be variations of the parent decision, but what comes *after*.
%s
Return your response as a single, flat JSON array of strings. Do not include any other text, explanation, or markdown formatting.

Example format:
["First possible path...", "Second possible path...", "Third possible path..."]
`

const annotatePrompt = `You are a strategic analyst and psychologist. Your task is to analyze the following proposed life path or decision and assign it tags for risk, growth potential, and emotional tone.

**Decision to Analyze:**
"%s"

**Instructions:**
1.  **Risk**: Assess the level of financial, social, or personal risk. Rate it as "Low", "Medium", or "High".
2.  **Growth Potential**: Assess the potential for personal or professional growth. Rate it as "Low", "Medium", "High", or "Transformative".
3.  **Emotional Tone**: Describe the primary emotional tone of this path. Be realistic and nuanced. Use a single descriptive word. Examples: "Hopeful", "Anxious", "Torn", "Energized", "Pragmatic", "Adventurous", "Cautious".

Return your analysis as a single, flat JSON object. Do not include any other text, explanation, or markdown formatting.

Example format:
{
  "risk": "Medium",
  "growth": "High",
  "emotion": "Ambitious"
}
`

const summaryPrompt = `Please synthesize the following points into a concise summary of the user's situation.
Focus on the key elements and desired outcome.

Context points:
%s

Summary:
`

// BranchPrompt builds the branch-generation prompt. hint carries extra
// instructions for the retry pass and may be empty.
func BranchPrompt(contextText, parentSummary string, count int, hint string) string {
	if hint != "" {
		hint = "\n" + hint + "\n"
	}
	return fmt.Sprintf(branchPrompt, contextText, parentSummary, count, hint)
}

// AnnotatePrompt builds the tag-generation prompt for a branch summary.
func AnnotatePrompt(summary string) string {
	return fmt.Sprintf(annotatePrompt, summary)
}

// SummaryPrompt builds the context-summarization prompt.
func SummaryPrompt(contextText string) string {
	return fmt.Sprintf(summaryPrompt, contextText)
}

// FormatContext renders context blocks as prompt bullet points. Skipped
// domains are listed as declined so the model knows the user was asked,
// which is why the store keeps an explicit skip sentinel at all.
func FormatContext(blocks []tree.ContextBlock) string {
	var b strings.Builder
	for _, block := range blocks {
		label := strings.ReplaceAll(block.Domain, "_", " ")
		if block.Skipped {
			fmt.Fprintf(&b, "- %s: (the user declined to answer)\n", titleCase(label))
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", titleCase(label), block.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
