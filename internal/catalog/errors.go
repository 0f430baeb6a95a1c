package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProvider is returned when the embedding provider fails. It aborts the
// enclosing Add/Edit/Reindex operation entirely; a catalog with mixed old
// and new embeddings is worse than an aborted operation.
var ErrProvider = errors.New("embedding provider error")

// ValidationError reports the required fields missing from a submission.
// It is never retried automatically; the caller must fix and resubmit.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
