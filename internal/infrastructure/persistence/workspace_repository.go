package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/constants"
	apperrors "github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/jroneil/MI-Tool/pkg/query"
)

var _ ports.WorkspaceRepository = (*WorkspaceRepository)(nil)

// WorkspaceRepository stores workspaces and their members
type WorkspaceRepository struct {
	db *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	ws.CreatedAt = time.Now().UTC()
	q := query.Insert(constants.TableWorkspace, map[string]interface{}{
		constants.FieldName:      ws.Name,
		constants.FieldCreatedBy: ws.CreatedBy,
		constants.FieldCreatedAt: ws.CreatedAt,
	}).Build()

	res, err := executor(ctx, r.db).ExecContext(ctx, q.SQL, q.Params...)
	if isDuplicateKey(err) {
		return apperrors.NewBadRequestConflict("Workspace", "Workspace name already exists")
	}
	if err != nil {
		return err
	}
	ws.ID, err = res.LastInsertId()
	return err
}

func (r *WorkspaceRepository) GetByName(ctx context.Context, name string) (*models.Workspace, error) {
	q := query.From(constants.TableWorkspace).
		Select(constants.FieldID, constants.FieldName, constants.FieldCreatedBy, constants.FieldCreatedAt).
		WhereEq(constants.FieldName, name).
		Limit(1).
		Build()

	var ws models.Workspace
	var createdBy sql.NullInt64
	err := executor(ctx, r.db).QueryRowContext(ctx, q.SQL, q.Params...).
		Scan(&ws.ID, &ws.Name, &createdBy, &ws.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	ws.CreatedBy = nullableID(createdBy)
	return &ws, nil
}

func (r *WorkspaceRepository) AddMember(ctx context.Context, m *models.Membership) error {
	q := query.Insert(constants.TableWorkspaceMember, map[string]interface{}{
		constants.FieldUserID:      m.UserID,
		constants.FieldWorkspaceID: m.WorkspaceID,
		constants.FieldRole:        string(m.Role),
	}).Build()

	res, err := executor(ctx, r.db).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r *WorkspaceRepository) IsMember(ctx context.Context, userID, workspaceID int64) (bool, error) {
	var exists bool
	sqlStr := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ? AND %s = ?)",
		constants.TableWorkspaceMember, constants.FieldUserID, constants.FieldWorkspaceID)
	err := executor(ctx, r.db).QueryRowContext(ctx, sqlStr, userID, workspaceID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ListMemberships returns the user's memberships joined with their workspaces
func (r *WorkspaceRepository) ListMemberships(ctx context.Context, userID int64) ([]models.Membership, error) {
	sqlStr := fmt.Sprintf(`SELECT m.%s, m.%s, m.%s, m.%s, w.%s, w.%s, w.%s
		FROM %s m JOIN %s w ON w.%s = m.%s
		WHERE m.%s = ?
		ORDER BY m.%s`,
		constants.FieldID, constants.FieldUserID, constants.FieldWorkspaceID, constants.FieldRole,
		constants.FieldName, constants.FieldCreatedBy, constants.FieldCreatedAt,
		constants.TableWorkspaceMember, constants.TableWorkspace, constants.FieldID, constants.FieldWorkspaceID,
		constants.FieldUserID,
		constants.FieldID)

	rows, err := executor(ctx, r.db).QueryContext(ctx, sqlStr, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		var role string
		var ws models.Workspace
		var createdBy sql.NullInt64
		if err := rows.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &role, &ws.Name, &createdBy, &ws.CreatedAt); err != nil {
			return nil, err
		}
		if !constants.IsValidRole(role) {
			return nil, fmt.Errorf("membership %d has unknown role %q", m.ID, role)
		}
		m.Role = constants.WorkspaceRole(role)
		ws.ID = m.WorkspaceID
		ws.CreatedBy = nullableID(createdBy)
		m.Workspace = &ws
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
