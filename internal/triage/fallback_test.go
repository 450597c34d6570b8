package triage

import (
	"strings"
	"testing"
)

func TestLocalFallbackTable(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"greeting", "hello there", greetingReplyText},
		{"depression", "i have been so depressed", depressionReplyText},
		{"anxiety", "everything makes me anxious", anxietyReplyText},
		{"sleep", "i have insomnia again", sleepReplyText},
		{"therapy", "should i see a therapist", therapyReplyText},
		{"default", "my day was strange", defaultReplyText},
		{"greeting word inside another word", "everything is fine", defaultReplyText},
		{"crisis", "i want to end my life", crisisReplyText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := localFallback(tc.input); got != tc.want {
				t.Errorf("localFallback(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCrisisBeatsEveryOtherCategory(t *testing.T) {
	// Crisis keywords take absolute priority even when the message also
	// matches greeting or sleep keywords.
	input := "hello, i am so tired and i keep thinking about suicide"
	if got := localFallback(input); got != crisisReplyText {
		t.Errorf("got %q, want crisis reply", got)
	}
}

func TestIsCrisisKeywords(t *testing.T) {
	for _, phrase := range []string{
		"thinking about suicide",
		"i might hurt myself",
		"i want to die",
	} {
		if !isCrisis(phrase) {
			t.Errorf("isCrisis(%q) = false, want true", phrase)
		}
	}
	if isCrisis("i need help with my sleep") {
		t.Error("plain help request misclassified as crisis")
	}
}

func TestLocalFallbackNeverEmpty(t *testing.T) {
	for _, input := range []string{"", "???", strings.Repeat("x", 500)} {
		if localFallback(input) == "" {
			t.Errorf("empty fallback for %q", input)
		}
	}
}
