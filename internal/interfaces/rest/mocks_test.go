package rest_test

import (
	"context"

	"github.com/jroneil/MI-Tool/internal/application/services"
	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in services.LoginInput) (*services.TokenResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(token string) (*auth.UserSession, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserSession), args.Error(1)
}

type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) ListMemberships(ctx context.Context, userID int64) ([]models.Membership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Membership), args.Error(1)
}

func (m *MockWorkspaceService) CreateWorkspace(ctx context.Context, userID int64, in services.CreateWorkspaceInput) (*models.Workspace, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

type MockModelService struct {
	mock.Mock
}

func (m *MockModelService) GetModel(ctx context.Context, userID, id int64) (*models.Model, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Model), args.Error(1)
}

func (m *MockModelService) ListModels(ctx context.Context, userID, workspaceID int64) ([]models.Model, error) {
	args := m.Called(ctx, userID, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Model), args.Error(1)
}

func (m *MockModelService) CreateModel(ctx context.Context, userID int64, in services.CreateModelInput) (*models.Model, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Model), args.Error(1)
}

func (m *MockModelService) UpdateModel(ctx context.Context, userID, id int64, in services.UpdateModelInput) (*models.Model, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Model), args.Error(1)
}

func (m *MockModelService) DeleteModel(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) CreateRecord(ctx context.Context, userID, modelID int64, data models.Document) (*models.Record, error) {
	args := m.Called(ctx, userID, modelID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockRecordService) GetRecord(ctx context.Context, userID, recordID int64) (*models.Record, error) {
	args := m.Called(ctx, userID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockRecordService) UpdateRecord(ctx context.Context, userID, recordID int64, data models.Document) (*models.Record, error) {
	args := m.Called(ctx, userID, recordID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockRecordService) DeleteRecord(ctx context.Context, userID, recordID int64) error {
	return m.Called(ctx, userID, recordID).Error(0)
}

func (m *MockRecordService) ListRecords(ctx context.Context, userID, modelID int64, q models.RecordListQuery) (*models.RecordPage, error) {
	args := m.Called(ctx, userID, modelID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecordPage), args.Error(1)
}
