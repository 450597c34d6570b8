package triage

import (
	"strings"
	"unicode"
)

// Canned replies for the deterministic local responder. Wording follows the
// support copy shipped with earlier revisions of this service.
const (
	crisisReplyText = "I'm concerned about what you're sharing. Please reach out to a " +
		"crisis support line immediately: National Suicide Prevention Lifeline at 988 " +
		"or 1-800-273-8255, or text HOME to 741741 to reach the Crisis Text Line. " +
		"Your life matters."

	greetingReplyText = "Hello! I'm here to support you. How are you feeling today?"

	depressionReplyText = "Depression can be challenging to deal with. Regular exercise, " +
		"maintaining a routine, and speaking with a professional can help. Would you " +
		"like to share more about how you're feeling?"

	anxietyReplyText = "Anxiety can feel overwhelming. Deep breathing exercises, " +
		"mindfulness, and speaking with a professional can be helpful. Remember that " +
		"you're not alone in this experience."

	sleepReplyText = "Sleep issues can affect our mental health. Try maintaining a " +
		"regular sleep schedule, avoiding screens before bed, and creating a relaxing " +
		"bedtime routine. If problems persist, consider speaking with a healthcare provider."

	therapyReplyText = "Seeking therapy can be a positive step toward better mental " +
		"health. Types include cognitive-behavioral therapy, psychodynamic therapy, " +
		"and others. Would you like more information about finding a therapist?"

	defaultReplyText = "I'm here to listen and support you. Would you like to tell me " +
		"more about what you're experiencing?"
)

var crisisKeywords = []string{
	"suicide", "kill myself", "end my life", "end it all",
	"self-harm", "hurt myself", "want to die", "better off dead",
}

var greetingKeywords = []string{"hey", "hi", "hello", "howdy", "greetings"}

var anxietyKeywords = []string{"anxious", "anxiety", "worried", "stress", "panic"}

var sleepKeywords = []string{"sleep", "insomnia", "tired", "exhausted", "fatigue"}

var therapyKeywords = []string{"therapy", "therapist", "counseling", "psychologist", "psychiatrist"}

// isGreeting matches greeting keywords as whole words only; substring
// matching would trip on words like "this" and "everything".
func isGreeting(lower string) bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		for _, g := range greetingKeywords {
			if w == g {
				return true
			}
		}
	}
	return false
}

// isCrisis reports whether the lowercased input contains a crisis keyword.
// Checked before any provider attempt: self-harm phrasing must never wait
// on an external backend.
func isCrisis(lower string) bool {
	return containsAny(lower, crisisKeywords)
}

// localFallback computes a deterministic canned reply for the lowercased
// input. Crisis keywords take absolute priority; it always returns a
// non-empty reply.
func localFallback(lower string) string {
	switch {
	case isCrisis(lower):
		return crisisReplyText
	case isGreeting(lower):
		return greetingReplyText
	case strings.Contains(lower, "depress"):
		return depressionReplyText
	case containsAny(lower, anxietyKeywords):
		return anxietyReplyText
	case containsAny(lower, sleepKeywords):
		return sleepReplyText
	case containsAny(lower, therapyKeywords):
		return therapyReplyText
	default:
		return defaultReplyText
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
