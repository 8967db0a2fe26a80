package domain

import "strings"

// QuestionIntent classifies what kind of answer a question is asking for.
// The intent selects the system instruction used for generation.
type QuestionIntent string

const (
	IntentSummary        QuestionIntent = "summary"
	IntentComparison     QuestionIntent = "comparison"
	IntentClassification QuestionIntent = "classification"
	IntentGeneral        QuestionIntent = "general"
)

var intentKeywords = []struct {
	intent   QuestionIntent
	keywords []string
}{
	{IntentSummary, []string{"summary", "summarize", "summarise"}},
	{IntentComparison, []string{"compare", "comparison", "differences"}},
	{IntentClassification, []string{"classify", "classification", "topics"}},
}

// DetectQuestionIntent selects an intent by substring match on the lowercased
// question. First match wins, in summary, comparison, classification order;
// anything else is IntentGeneral.
func DetectQuestionIntent(question string) QuestionIntent {
	lowered := strings.ToLower(question)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lowered, kw) {
				return group.intent
			}
		}
	}
	return IntentGeneral
}
