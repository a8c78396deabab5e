package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CreateWorkspaceInput is the body of a workspace create request
type CreateWorkspaceInput struct {
	Name string `json:"name" binding:"required"`
}

// WorkspaceService manages workspaces and memberships
type WorkspaceService struct {
	workspaces ports.WorkspaceRepository
	tx         ports.TxManager
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(workspaces ports.WorkspaceRepository, tx ports.TxManager) *WorkspaceService {
	return &WorkspaceService{workspaces: workspaces, tx: tx}
}

// ListMemberships returns the caller's memberships with their workspaces
func (ws *WorkspaceService) ListMemberships(ctx context.Context, userID int64) ([]models.Membership, error) {
	list, err := ws.workspaces.ListMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return list, nil
}

// CreateWorkspace creates a workspace owned by the caller. Names are globally unique.
func (ws *WorkspaceService) CreateWorkspace(ctx context.Context, userID int64, in CreateWorkspaceInput) (*models.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "is required")
	}

	var workspace *models.Workspace
	err := ws.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := ws.workspaces.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check workspace name: %w", err)
		}
		if existing != nil {
			return errors.NewBadRequestConflict("Workspace", "Workspace name already exists")
		}

		workspace, err = createOwnedWorkspace(ctx, ws.workspaces, userID, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"workspace_id": workspace.ID, "user_id": userID}).Info("✅ workspace created")
	return workspace, nil
}

// createOwnedWorkspace inserts a workspace and makes userID its owner
func createOwnedWorkspace(ctx context.Context, workspaces ports.WorkspaceRepository, userID int64, name string) (*models.Workspace, error) {
	workspace := &models.Workspace{Name: name, CreatedBy: &userID}
	if err := workspaces.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	membership := &models.Membership{
		UserID:      userID,
		WorkspaceID: workspace.ID,
		Role:        constants.RoleOwner,
	}
	if err := workspaces.AddMember(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to add owner: %w", err)
	}
	return workspace, nil
}
