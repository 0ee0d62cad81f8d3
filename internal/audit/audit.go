package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit record for a processed prompt. Decision and
// DetectionSummary are stored as opaque JSON-marshalable payloads so the log
// format survives pipeline changes.
type Entry struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	UserID           string    `json:"user_id"`
	Role             string    `json:"role,omitempty"`
	OriginalPrompt   string    `json:"original_prompt"`
	SanitizedPrompt  string    `json:"sanitized_prompt"`
	Decision         any       `json:"decision"`
	DetectionSummary any       `json:"detection_summary"`
	Narration        []string  `json:"narration"`
}

// NewEntry stamps an entry with a fresh ID and the current UTC time.
func NewEntry(userID, role, original, sanitized string, decision, summary any, narration []string) Entry {
	return Entry{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		UserID:           userID,
		Role:             role,
		OriginalPrompt:   original,
		SanitizedPrompt:  sanitized,
		Decision:         decision,
		DetectionSummary: summary,
		Narration:        narration,
	}
}

// Sink receives audit entries. Delivery failures are the caller's problem to
// log, never to propagate: a request must succeed even when its audit trail
// cannot be persisted.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Entry) error
	Close(ctx context.Context) error
}

// Discard is a Sink that drops every entry. Used when auditing is disabled
// and in tests.
type Discard struct{}

func (Discard) Name() string { return "discard" }

func (Discard) Deliver(context.Context, Entry) error { return nil }

func (Discard) Close(context.Context) error { return nil }
