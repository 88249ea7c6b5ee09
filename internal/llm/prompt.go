package llm

import "strings"

// maxPromptChars bounds the subject text we send per call.
const maxPromptChars = 12000

// BuildSentimentSystemPrompt composes the fixed instruction for sentiment analysis.
func BuildSentimentSystemPrompt() string {
	parts := []string{
		"You are a customer-engagement analyst. Return ONLY JSON that matches the provided JSON Schema.",
		"Analyze the supplied text and report:",
		"'sentiment': the overall sentiment, exactly one of positive, neutral, negative.",
		"'score': a number between -1 (very negative) and 1 (very positive), sign consistent with the sentiment.",
		"'key_topics': the key topics mentioned, most important first.",
		"'risk_factors': any risk factors identified, most severe first.",
		"'business_impact': a one-sentence business impact assessment.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildActionItemsSystemPrompt composes the fixed instruction for action-item extraction.
func BuildActionItemsSystemPrompt() string {
	parts := []string{
		"You are a customer-engagement analyst. Return ONLY a JSON array that matches the provided JSON Schema.",
		"Extract every actionable commitment from the supplied text. For each item report:",
		"'description': a clear description of the action.",
		"'priority': high, medium, or low.",
		"'responsible_party': who should do it, if mentioned.",
		"'due_date': when it should be completed as YYYY-MM-DD, if mentioned.",
		"'status': pending, in_progress, or completed.",
		"'dependencies': other tasks this depends on, if any.",
		"'risk_level': high, medium, or low.",
		"Return an empty array if the text contains no actionable items.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the subject text plus the schema the response must match.
func BuildUserPrompt(text string, schema map[string]any) string {
	var b strings.Builder
	b.WriteString("Text:\n")
	if len(text) > maxPromptChars {
		b.WriteString(text[:maxPromptChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nJSON Schema:\n")
	b.WriteString(mustJSON(schema))
	b.WriteString("\n\nReturn ONLY JSON that matches the schema.")
	return b.String()
}
