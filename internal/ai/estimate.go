package ai

import (
	"math"
	"strings"
)

// Token estimation constants, calibrated against provider tokenizers.
const (
	tokensPerWord = 1.3
	charsPerToken = 3.5
)

// EstimateTokens returns a conservative upper bound on the token count of
// the text. It combines a word-based and a character-based estimate and
// takes the larger; the estimate is monotonic in prompt length.
func EstimateTokens(text string) int64 {
	words := strings.Fields(text)

	wordBased := float64(len(words)) * tokensPerWord
	charBased := float64(len(text)) / charsPerToken

	return int64(math.Ceil(math.Max(wordBased, charBased)))
}
