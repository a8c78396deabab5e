package services

import (
	"context"
	"fmt"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
)

// RelationResolver confirms that a relation value points at a record in scope
type RelationResolver struct {
	records ports.RecordReader
}

// NewRelationResolver creates a new RelationResolver
func NewRelationResolver(records ports.RecordReader) *RelationResolver {
	return &RelationResolver{records: records}
}

// Resolve returns "" when the candidate record exists and matches the field's workspace
// and model scope. The workspace check is skipped when no workspace is expected.
func (r *RelationResolver) Resolve(ctx context.Context, field models.Field, candidateID, defaultWorkspaceID int64) (string, error) {
	related, err := r.records.GetRecord(ctx, candidateID)
	if err != nil {
		return "", fmt.Errorf("failed to load related record %d: %w", candidateID, err)
	}
	if related == nil {
		return MsgRelatedNotFound, nil
	}

	cfg, _ := field.Settings().(models.RelationConfig)

	if expected := cfg.ExpectedWorkspace(defaultWorkspaceID); expected != 0 && related.WorkspaceID != expected {
		return MsgRelatedWorkspace, nil
	}

	if cfg.ModelID != 0 && related.ModelID != cfg.ModelID {
		return MsgRelatedModel, nil
	}

	return "", nil
}
