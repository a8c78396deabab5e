package services

import (
	"context"
	"fmt"

	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/errors"
)

// ensureMembership returns a PermissionError unless the user belongs to the workspace
func ensureMembership(ctx context.Context, workspaces ports.WorkspaceRepository, userID, workspaceID int64) error {
	ok, err := workspaces.IsMember(ctx, userID, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return errors.NewNotMemberError()
	}
	return nil
}
