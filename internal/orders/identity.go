package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const orderNumberPrefix = "ORD"

// DayKey returns the daily counter key for the given creation time.
func DayKey(t time.Time) string {
	return t.UTC().Format("20060102")
}

// FormatOrderNumber builds the human-facing daily sequence number, e.g.
// ORD-260828-0001. The sequence resets per calendar day.
func FormatOrderNumber(t time.Time, sequence int64) string {
	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, t.UTC().Format("060102"), sequence)
}

// NewReferenceID produces the system-facing unique order reference handed to
// external collaborators. Uniqueness is still enforced by the store; callers
// retry on collision.
func NewReferenceID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", t.UTC().Format("20060102T150405"), strings.ToUpper(suffix))
}
