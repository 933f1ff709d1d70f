package scheduler

import "github.com/google/uuid"

// newID generates a new unique identifier for queued requests, usage
// entries, and reservations.
func newID() string {
	return uuid.NewString()
}
