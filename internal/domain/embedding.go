package domain

import "strings"

// EmbeddingInput joins the grammar fields into the canonical embedding text.
// Field order matters; changing it invalidates every stored vector.
func EmbeddingInput(formula, explanation, category1, category2 string) string {
	return strings.TrimSpace(strings.Join([]string{formula, explanation, category1, category2}, " "))
}
