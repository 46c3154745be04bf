// Package audit builds change log entries from record snapshots.
package audit

import (
	"encoding/json"
	"fmt"

	"github.com/azattello/cargo3589-server/internal/models"
)

type LogOptions struct {
	UserID      uint
	EntityType  string
	EntityID    uint
	Description string
	Before      any
	After       any
}

// Snapshot serialises a record as it is right now. Taking it before a
// merge keeps the before state even though the merge mutates in place.
func Snapshot(record any) (string, error) {
	if record == nil {
		return "null", nil
	}
	b, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("snapshot %T: %w", record, err)
	}
	return string(b), nil
}

// NewLog builds the entry. Before is normally a string from Snapshot;
// any other value is serialised here.
func NewLog(opts LogOptions) (*models.AuditLog, error) {
	before, err := asJSON(opts.Before)
	if err != nil {
		return nil, err
	}
	after, err := asJSON(opts.After)
	if err != nil {
		return nil, err
	}

	return &models.AuditLog{
		UserID:      opts.UserID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Description: opts.Description,
		BeforeData:  before,
		AfterData:   after,
	}, nil
}

func asJSON(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return Snapshot(v)
}
