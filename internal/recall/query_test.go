package recall

import (
	"strings"
	"testing"
)

func TestExtractQueryDropsStopWordsAndNumerics(t *testing.T) {
	got := ExtractQuery("What is the deployment process for service 42?")
	want := "deployment OR process OR service"
	if got != want {
		t.Errorf("ExtractQuery = %q, want %q", got, want)
	}
}

func TestExtractQueryDeduplicatesPreservingOrder(t *testing.T) {
	got := ExtractQuery("deploy deploy rollback deploy")
	want := "deploy OR rollback"
	if got != want {
		t.Errorf("ExtractQuery = %q, want %q", got, want)
	}
}

func TestExtractQueryCapsAtTwentyTerms(t *testing.T) {
	prompt := ""
	for i := 0; i < 30; i++ {
		prompt += "term" + string(rune('a'+i%26)) + " "
	}
	got := ExtractQuery(prompt)
	terms := strings.Split(got, " OR ")
	if len(terms) != maxQueryTerms {
		t.Errorf("expected %d terms, got %d (%q)", maxQueryTerms, len(terms), got)
	}
}

func TestExtractQueryFallsBackToRawPromptWhenEmpty(t *testing.T) {
	got := ExtractQuery("the is a an 123 456")
	if got != "the is a an 123 456" {
		t.Errorf("expected fallback to raw prompt, got %q", got)
	}
}
