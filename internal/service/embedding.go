package service

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding returns a simple deterministic embedding for the given
// text, counting total length, vowels and consonants. Good enough to order
// recipes by rough textual similarity without an external model.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	return pgvector.NewVector([]float32{float32(len(text)), vowels, consonants})
}
