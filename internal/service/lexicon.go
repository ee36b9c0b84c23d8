package service

import "strings"

// Lexicon agrupa las listas de frases que usa el extractor. Se inyecta en la
// construcción para que los tests puedan sustituir listas alternativas sin
// depender de constantes escondidas.
type Lexicon struct {
	Negative []string
	Positive []string
	Hints    []string
}

// DefaultLexicon devuelve el léxico calibrado en producción.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Negative: []string{
			"stuck", "confused", "frustrated", "annoying", "hate",
			"can't", "won't", "doesn't make sense", "i'm lost",
			"give up", "hard", "i'm done", "this sucks",
		},
		Positive: []string{
			"got it", "thanks", "understand", "makes sense", "nice",
			"awesome", "great", "cool", "worked", "solved", "let's go",
		},
		Hints: []string{
			"hint", "clue", "nudge", "don't give answer", "no answer",
			"just help", "guide me",
		},
	}
}

// countPhrases cuenta cuántas frases de la lista aparecen en el texto.
// Cada frase cuenta una sola vez aunque se repita.
func countPhrases(text string, phrases []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			count++
		}
	}
	return count
}

// SentimentCounts devuelve cuántas frases negativas y positivas matchearon.
func (l Lexicon) SentimentCounts(text string) (negatives, positives int) {
	if strings.TrimSpace(text) == "" {
		return 0, 0
	}
	return countPhrases(text, l.Negative), countPhrases(text, l.Positive)
}

// SentimentScore puntúa el texto con el léxico en [-1,1], donde -1 es muy
// negativo: (positivas − negativas) recortado a [-3,3] y dividido por 3.
func (l Lexicon) SentimentScore(text string) float64 {
	negatives, positives := l.SentimentCounts(text)
	raw := clamp(float64(positives-negatives), -3, 3)
	return raw / 3
}

// MatchesHint responde si el texto pide pistas en vez de respuestas.
func (l Lexicon) MatchesHint(text string) bool {
	return countPhrases(text, l.Hints) > 0
}
