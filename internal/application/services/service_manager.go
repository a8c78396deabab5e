package services

import (
	"context"

	"github.com/jroneil/MI-Tool/internal/domain/events"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/jroneil/MI-Tool/pkg/expression"
	"github.com/sirupsen/logrus"
)

// Dependencies are the infrastructure pieces the services are built on
type Dependencies struct {
	Users      ports.UserRepository
	Workspaces ports.WorkspaceRepository
	Models     ports.ModelRepository
	Records    ports.RecordRepository
	Tx         ports.TxManager
	Cache      ports.SchemaCache // optional
	Tokens     *auth.TokenManager

	RecordLimit      int
	UsageSchedule    string
	UsageWarnPercent int
}

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	EventBus   *EventBus
	Validation *ValidationService
	Auth       *AuthService
	Workspaces *WorkspaceService
	Models     *ModelService
	Records    *RecordService
	Usage      *UsageReporter
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(deps Dependencies) *ServiceManager {
	sm := &ServiceManager{}

	sm.EventBus = NewEventBus()
	rules := NewRuleEvaluator(expression.NewEngine())
	sm.Validation = NewValidationService(deps.Records, rules)

	sm.Auth = NewAuthService(deps.Users, deps.Workspaces, deps.Tx, deps.Tokens)
	sm.Workspaces = NewWorkspaceService(deps.Workspaces, deps.Tx)
	sm.Models = NewModelService(deps.Models, deps.Workspaces, deps.Tx, deps.Cache, rules, sm.EventBus)
	sm.Records = NewRecordService(deps.Records, deps.Models, deps.Workspaces, deps.Tx, sm.Models, sm.Validation, sm.EventBus, deps.RecordLimit)
	sm.Usage = NewUsageReporter(deps.Records, deps.UsageSchedule, deps.RecordLimit, deps.UsageWarnPercent)

	sm.registerAuditLog()
	return sm
}

// registerAuditLog writes one log line per record and model lifecycle event
func (sm *ServiceManager) registerAuditLog() {
	recordAudit := func(eventType events.EventType) EventHandler {
		return func(ctx context.Context, payload interface{}) error {
			evt, ok := payload.(events.RecordEvent)
			if !ok {
				return nil
			}
			logrus.WithFields(logrus.Fields{
				"event":        eventType.String(),
				"record_id":    evt.RecordID,
				"model_id":     evt.ModelID,
				"workspace_id": evt.WorkspaceID,
				"user_id":      evt.UserID,
			}).Info("📝 audit")
			return nil
		}
	}
	modelAudit := func(eventType events.EventType) EventHandler {
		return func(ctx context.Context, payload interface{}) error {
			evt, ok := payload.(events.ModelEvent)
			if !ok {
				return nil
			}
			logrus.WithFields(logrus.Fields{
				"event":        eventType.String(),
				"model_id":     evt.ModelID,
				"workspace_id": evt.WorkspaceID,
				"user_id":      evt.UserID,
			}).Info("📝 audit")
			return nil
		}
	}

	for _, et := range []events.EventType{events.RecordCreated, events.RecordUpdated, events.RecordDeleted} {
		sm.EventBus.Subscribe(et, recordAudit(et))
	}
	for _, et := range []events.EventType{events.ModelCreated, events.ModelUpdated, events.ModelDeleted} {
		sm.EventBus.Subscribe(et, modelAudit(et))
	}
}

// StartBackground starts the scheduled jobs
func (sm *ServiceManager) StartBackground() error {
	return sm.Usage.Start()
}

// StopBackground stops the scheduled jobs
func (sm *ServiceManager) StopBackground() {
	sm.Usage.Stop()
}
