package service

import "testing"

func TestLexiconSentimentCounts(t *testing.T) {
	lex := DefaultLexicon()

	neg, pos := lex.SentimentCounts("I'm stuck and confused, I hate this")
	if neg != 3 || pos != 0 {
		t.Fatalf("expected 3 negatives / 0 positives, got %d/%d", neg, pos)
	}

	neg, pos = lex.SentimentCounts("thanks, got it, makes sense now")
	if neg != 0 || pos != 3 {
		t.Fatalf("expected 0 negatives / 3 positives, got %d/%d", neg, pos)
	}

	neg, pos = lex.SentimentCounts("")
	if neg != 0 || pos != 0 {
		t.Fatalf("expected empty text to count nothing, got %d/%d", neg, pos)
	}
}

func TestLexiconSentimentCounts_PhraseCountedOnce(t *testing.T) {
	lex := DefaultLexicon()
	neg, _ := lex.SentimentCounts("stuck stuck stuck")
	if neg != 1 {
		t.Fatalf("repeated phrase should count once, got %d", neg)
	}
}

func TestLexiconSentimentScore(t *testing.T) {
	lex := DefaultLexicon()

	if got := lex.SentimentScore("I'm stuck and confused, I hate this"); got != -1 {
		t.Fatalf("very negative text: score = %v, want -1", got)
	}
	if got := lex.SentimentScore("thanks, got it, makes sense now"); got != 1 {
		t.Fatalf("very positive text: score = %v, want 1", got)
	}
	if got := lex.SentimentScore("how does a binary tree rotate"); got != 0 {
		t.Fatalf("neutral text: score = %v, want 0", got)
	}
}

func TestLexiconMatchesHint(t *testing.T) {
	lex := DefaultLexicon()

	if !lex.MatchesHint("can you give me a hint about this loop") {
		t.Fatalf("expected hint match")
	}
	if !lex.MatchesHint("please just help, don't give answer") {
		t.Fatalf("expected hint-phrase match")
	}
	if lex.MatchesHint("what is a pointer") {
		t.Fatalf("did not expect hint match")
	}
}
