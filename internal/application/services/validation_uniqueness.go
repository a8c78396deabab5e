package services

import (
	"context"
	"fmt"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
)

// UniquenessChecker enforces is_unique across the records of one model
type UniquenessChecker struct {
	records ports.RecordReader
}

// NewUniquenessChecker creates a new UniquenessChecker
func NewUniquenessChecker(records ports.RecordReader) *UniquenessChecker {
	return &UniquenessChecker{records: records}
}

// Check scans every record of the model except excludingID (0 excludes nothing) and
// reports the first one holding an equal value under the field's slug.
func (u *UniquenessChecker) Check(ctx context.Context, modelID int64, field models.Field, value interface{}, excludingID int64) (string, error) {
	collision := false

	err := u.records.ScanModelRecords(ctx, modelID, func(id int64, doc models.Document) bool {
		if excludingID != 0 && id == excludingID {
			return true
		}
		existing, ok := doc[field.Slug]
		if ok && models.ValuesEqual(existing, value) {
			collision = true
			return false
		}
		return true
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan records of model %d: %w", modelID, err)
	}

	if collision {
		return MsgValueMustBeUnique, nil
	}
	return "", nil
}
