package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewFileID returns a time-ordered identifier for naming written objects.
func NewFileID() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}
