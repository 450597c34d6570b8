package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/mimohealth/triage/internal/session"
	"go.uber.org/zap"
)

const (
	metaReplyText = "I'm a supportive companion built by the MiMo care team to help you " +
		"talk through how you're feeling. I can listen, keep track of symptoms you " +
		"mention, and point you toward professional resources. I'm not a therapist " +
		"or a doctor."

	shareMoreReplyText = "I'd like to understand better before saying anything. Could " +
		"you share more about what you've been feeling or experiencing lately?"

	insufficientReplyText = "I don't see a clear pattern in what you've shared so far. " +
		"Could you tell me more about what you've been experiencing?"

	repromptText = "Could you tell me more about what's troubling you?"

	diagnosisDisclaimer = "This is not a medical diagnosis. Please speak with a " +
		"qualified mental health professional for a proper evaluation."
)

var metaPhrases = []string{
	"who are you", "what are you", "who made you", "who created you",
	"who developed you", "who designed you", "your creators", "your developers",
	"what can you do", "your purpose",
}

var diagnosisPhrases = []string{
	"diagnose", "diagnosis", "what do i have", "what do you think i have",
	"what's wrong with me", "whats wrong with me", "what condition",
	"do i have a disorder", "what disorder do i have",
}

func isMetaQuestion(lower string) bool {
	return containsAny(lower, metaPhrases)
}

func isDiagnosisRequest(lower string) bool {
	return containsAny(lower, diagnosisPhrases)
}

// resolve runs the per-turn priority ladder and returns the raw reply.
// Every turn starts the ladder from the top; the only state carried between
// turns lives in the session memory. May append newly reported symptoms to
// mem as a side effect; history updates belong to the caller.
func (e *Engine) resolve(ctx context.Context, mem *session.Memory, userText string) string {
	lower := strings.ToLower(userText)

	// Crisis phrasing pre-empts everything, including provider calls.
	if isCrisis(lower) {
		return crisisReplyText
	}

	if isMetaQuestion(lower) {
		return metaReplyText
	}

	if disorders := e.extractor.FindDisorders(userText); len(disorders) > 0 {
		return e.disorderReply(ctx, firstMentioned(lower, disorders))
	}

	if found := e.extractor.FindSymptoms(userText); len(found) > 0 {
		if added := mem.AddSymptoms(found); len(added) > 0 {
			return e.symptomReply(ctx, added)
		}
		// Nothing new reported; fall through to the remaining states.
	}

	if isDiagnosisRequest(lower) {
		return e.diagnosisReply(ctx, mem)
	}

	reply, err := e.chain.Generate(ctx, userText)
	if err != nil {
		return localFallback(lower)
	}
	return reply
}

// firstMentioned picks the name appearing earliest in the lowercased text.
// Extraction returns matches alphabetically; the reply should reference the
// disorder the user actually led with.
func firstMentioned(lower string, names []string) string {
	best := names[0]
	bestIdx := strings.Index(lower, strings.ToLower(best))
	for _, n := range names[1:] {
		if i := strings.Index(lower, strings.ToLower(n)); i >= 0 && i < bestIdx {
			best, bestIdx = n, i
		}
	}
	return best
}

func (e *Engine) disorderReply(ctx context.Context, disorder string) string {
	prompt := fmt.Sprintf("Provide specific information and support about %s, "+
		"focusing on symptoms, coping strategies, and when to seek professional help.",
		disorder)
	reply, err := e.chain.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("disorder prompt fell back to canned reply",
			zap.String("disorder", disorder), zap.Error(err))
		return fmt.Sprintf("%s affects many people, and effective support exists. "+
			"Learning about it is a strong first step, and a mental health "+
			"professional can help you figure out what applies to you. Would you "+
			"like to talk about what brought it to mind?", disorder)
	}
	return reply
}

func (e *Engine) symptomReply(ctx context.Context, symptoms []string) string {
	list := strings.Join(symptoms, ", ")
	prompt := fmt.Sprintf("Address these specific symptoms: %s. Provide practical "+
		"coping strategies and explain when professional help might be needed.", list)
	reply, err := e.chain.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("symptom prompt fell back to canned reply",
			zap.String("symptoms", list), zap.Error(err))
		return fmt.Sprintf("Thank you for sharing that. I've noted that you're "+
			"experiencing %s. These feelings are worth taking seriously, and a "+
			"professional can help if they persist. How long has this been going on?",
			list)
	}
	return reply
}

func (e *Engine) diagnosisReply(ctx context.Context, mem *session.Memory) string {
	if len(mem.ReportedSymptoms) == 0 {
		return shareMoreReplyText
	}

	matches, err := e.scorer.Score(ctx, mem.ReportedSymptoms)
	if err != nil {
		e.logger.Warn("scoring failed", zap.Error(err))
		return insufficientReplyText
	}
	if len(matches) == 0 {
		return insufficientReplyText
	}

	var b strings.Builder
	b.WriteString("Based on the symptoms you've shared, here are the closest matches in my knowledge base:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s: %.0f%%\n", m.Disorder, m.Percent)
	}
	b.WriteString(diagnosisDisclaimer)
	return b.String()
}
