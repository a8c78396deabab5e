package ports

import (
	"context"

	"github.com/jroneil/MI-Tool/internal/domain/models"
)

// Lookups return (nil, nil) when the row does not exist.

// UserRepository persists accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// WorkspaceRepository persists workspaces and answers membership questions
type WorkspaceRepository interface {
	Create(ctx context.Context, ws *models.Workspace) error
	GetByName(ctx context.Context, name string) (*models.Workspace, error)
	AddMember(ctx context.Context, m *models.Membership) error
	IsMember(ctx context.Context, userID, workspaceID int64) (bool, error)
	ListMemberships(ctx context.Context, userID int64) ([]models.Membership, error)
}

// ModelRepository persists models together with their ordered fields
type ModelRepository interface {
	Create(ctx context.Context, m *models.Model) error
	Get(ctx context.Context, id int64) (*models.Model, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.Model, error)
	// Update writes the model row; when replaceFields is set the field list is deleted
	// and recreated from m.Fields
	Update(ctx context.Context, m *models.Model, replaceFields bool) error
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, workspaceID int64, slug string, excludeID int64) (bool, error)
	// LockForWrite takes a row lock on the model for the current transaction.
	// It returns false when the model no longer exists.
	LockForWrite(ctx context.Context, id int64) (bool, error)
}

// RecordRepository persists record documents
type RecordRepository interface {
	RecordReader
	Create(ctx context.Context, r *models.Record) error
	Update(ctx context.Context, r *models.Record) error
	Delete(ctx context.Context, id int64) error
	CountByModel(ctx context.Context, modelID int64) (int, error)
	List(ctx context.Context, modelID int64, q models.RecordListQuery) ([]models.Record, int, error)
	UsageByModel(ctx context.Context) ([]models.ModelUsage, error)
}

// RecordReader is the read side used by the relation and uniqueness checkers
type RecordReader interface {
	GetRecord(ctx context.Context, id int64) (*models.Record, error)
	// ScanModelRecords calls fn for every record of the model until fn returns false
	ScanModelRecords(ctx context.Context, modelID int64, fn func(id int64, doc models.Document) bool) error
}

// TxManager runs fn in one transaction carried by the context passed to fn
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SchemaCache caches decoded models by id
type SchemaCache interface {
	Get(ctx context.Context, id int64) (*models.Model, bool)
	Set(ctx context.Context, m *models.Model)
	Invalidate(ctx context.Context, id int64)
}
