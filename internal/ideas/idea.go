// Package ideas implements the drawing idea catalog for EmalfDraw.
// It provides the Idea type, the Store contract that persistence engines
// implement, the catalog System that owns uniqueness, seeding, and random
// selection, and the HTTP handler that exposes it.
package ideas

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// MaxTextLength is the maximum number of characters in an idea after trimming.
const MaxTextLength = 200

// Idea is a single drawing prompt.
type Idea struct {
	ID            uuid.UUID `json:"id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	UserSubmitted bool      `json:"user_submitted"`
}

// SubmitCommand carries the text of a client-submitted idea.
type SubmitCommand struct {
	Text string `json:"text"`
}

// Key returns the uniqueness key for an idea text: the trimmed text with
// Unicode case folding applied. Two ideas conflict when their keys are equal.
func Key(text string) string {
	return cases.Fold().String(strings.TrimSpace(text))
}
