package service

import (
	"strings"

	"ai-terminal/internal/model"
)

const titleWords = 5

// Title derives a session title from the first user message: the first five
// words, with "..." appended only when words were dropped.
func Title(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return model.DefaultSessionTitle
	}
	if len(words) <= titleWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWords], " ") + "..."
}
