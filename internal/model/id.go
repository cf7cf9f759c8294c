package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NewTaskID returns a UUIDv7 string. Ids sort by creation time.
func NewTaskID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new task id: %w", err)
	}

	return id.String(), nil
}
