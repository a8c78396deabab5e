package rest

import (
	"context"

	"github.com/jroneil/MI-Tool/internal/application/services"
	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/auth"
)

// AuthAPI is the account surface the handlers depend on
type AuthAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.TokenResponse, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	Authenticate(token string) (*auth.UserSession, error)
}

type WorkspaceAPI interface {
	ListMemberships(ctx context.Context, userID int64) ([]models.Membership, error)
	CreateWorkspace(ctx context.Context, userID int64, in services.CreateWorkspaceInput) (*models.Workspace, error)
}

type ModelAPI interface {
	GetModel(ctx context.Context, userID, id int64) (*models.Model, error)
	ListModels(ctx context.Context, userID, workspaceID int64) ([]models.Model, error)
	CreateModel(ctx context.Context, userID int64, in services.CreateModelInput) (*models.Model, error)
	UpdateModel(ctx context.Context, userID, id int64, in services.UpdateModelInput) (*models.Model, error)
	DeleteModel(ctx context.Context, userID, id int64) error
}

type RecordAPI interface {
	CreateRecord(ctx context.Context, userID, modelID int64, data models.Document) (*models.Record, error)
	GetRecord(ctx context.Context, userID, recordID int64) (*models.Record, error)
	UpdateRecord(ctx context.Context, userID, recordID int64, data models.Document) (*models.Record, error)
	DeleteRecord(ctx context.Context, userID, recordID int64) error
	ListRecords(ctx context.Context, userID, modelID int64, q models.RecordListQuery) (*models.RecordPage, error)
}

// API groups the services served over HTTP
type API struct {
	Auth       AuthAPI
	Workspaces WorkspaceAPI
	Models     ModelAPI
	Records    RecordAPI
}

// APIFromServices exposes a wired ServiceManager
func APIFromServices(sm *services.ServiceManager) API {
	return API{
		Auth:       sm.Auth,
		Workspaces: sm.Workspaces,
		Models:     sm.Models,
		Records:    sm.Records,
	}
}
