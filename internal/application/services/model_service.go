package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jroneil/MI-Tool/internal/domain/events"
	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
	"github.com/sirupsen/logrus"
)

// FieldInput is one field definition in a model create or update request
type FieldInput struct {
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	DataType   string          `json:"data_type"`
	IsRequired *bool           `json:"is_required"`
	IsUnique   *bool           `json:"is_unique"`
	Position   *int            `json:"position"`
	Config     models.Document `json:"config"`
}

// CreateModelInput is the body of a model create request
type CreateModelInput struct {
	WorkspaceID int64                   `json:"workspace_id" binding:"required"`
	Name        string                  `json:"name" binding:"required"`
	Slug        string                  `json:"slug"`
	Description *string                 `json:"description"`
	Fields      []FieldInput            `json:"fields"`
	Rules       []models.ValidationRule `json:"rules"`
}

// UpdateModelInput is a partial model update. Fields, when present, replaces the whole list.
type UpdateModelInput struct {
	Name        *string                  `json:"name"`
	Slug        *string                  `json:"slug"`
	Description *string                  `json:"description"`
	Fields      *[]FieldInput            `json:"fields"`
	Rules       *[]models.ValidationRule `json:"rules"`
}

// ModelService manages model definitions and serves them, cached, to the record store
type ModelService struct {
	models     ports.ModelRepository
	workspaces ports.WorkspaceRepository
	tx         ports.TxManager
	cache      ports.SchemaCache
	rules      *RuleEvaluator
	events     *EventBus
}

// NewModelService creates a new ModelService. cache may be nil.
func NewModelService(
	modelRepo ports.ModelRepository,
	workspaces ports.WorkspaceRepository,
	tx ports.TxManager,
	cache ports.SchemaCache,
	rules *RuleEvaluator,
	eventBus *EventBus,
) *ModelService {
	ms := &ModelService{
		models:     modelRepo,
		workspaces: workspaces,
		tx:         tx,
		cache:      cache,
		rules:      rules,
		events:     eventBus,
	}
	ms.subscribe()
	return ms
}

func (ms *ModelService) subscribe() {
	if ms.events == nil || ms.cache == nil {
		return
	}
	invalidate := func(ctx context.Context, payload interface{}) error {
		if evt, ok := payload.(events.ModelEvent); ok {
			ms.cache.Invalidate(ctx, evt.ModelID)
		}
		return nil
	}
	ms.events.Subscribe(events.ModelUpdated, invalidate)
	ms.events.Subscribe(events.ModelDeleted, invalidate)
}

// Definition returns the model with decoded fields, or nil when it does not exist.
// It performs no authorization.
func (ms *ModelService) Definition(ctx context.Context, id int64) (*models.Model, error) {
	if ms.cache != nil {
		if m, ok := ms.cache.Get(ctx, id); ok {
			return m, nil
		}
	}

	m, err := ms.models.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %d: %w", id, err)
	}
	if m == nil {
		return nil, nil
	}
	models.DecodeFields(m.Fields)

	if ms.cache != nil {
		ms.cache.Set(ctx, m)
	}
	return m, nil
}

// loadAuthorized loads a model and checks the caller's membership in its workspace.
// A missing model yields the same PermissionError as a model in another workspace.
func (ms *ModelService) loadAuthorized(ctx context.Context, userID, id int64, fresh bool) (*models.Model, error) {
	var m *models.Model
	var err error
	if fresh {
		m, err = ms.models.Get(ctx, id)
	} else {
		m, err = ms.Definition(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewNotMemberError()
	}
	if err := ensureMembership(ctx, ms.workspaces, userID, m.WorkspaceID); err != nil {
		return nil, err
	}
	return m, nil
}

// GetModel returns a model the caller can see
func (ms *ModelService) GetModel(ctx context.Context, userID, id int64) (*models.Model, error) {
	return ms.loadAuthorized(ctx, userID, id, false)
}

// ListModels returns the workspace's models, newest first
func (ms *ModelService) ListModels(ctx context.Context, userID, workspaceID int64) ([]models.Model, error) {
	if err := ensureMembership(ctx, ms.workspaces, userID, workspaceID); err != nil {
		return nil, err
	}
	list, err := ms.models.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return list, nil
}

// CreateModel defines a new model with its fields and rules
func (ms *ModelService) CreateModel(ctx context.Context, userID int64, in CreateModelInput) (*models.Model, error) {
	if err := ensureMembership(ctx, ms.workspaces, userID, in.WorkspaceID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "is required")
	}

	modelSlug := strings.TrimSpace(in.Slug)
	if modelSlug == "" {
		modelSlug = slug.Make(name)
	}
	if modelSlug == "" {
		return nil, errors.NewValidationError("slug", "could not be derived from name")
	}

	fields, err := buildFields(in.Fields)
	if err != nil {
		return nil, err
	}
	if err := ms.rules.Compile(in.Rules, fields); err != nil {
		return nil, err
	}

	exists, err := ms.models.SlugExists(ctx, in.WorkspaceID, modelSlug, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check model slug: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("Model", "slug", modelSlug)
	}

	m := &models.Model{
		WorkspaceID: in.WorkspaceID,
		Name:        name,
		Slug:        modelSlug,
		Description: in.Description,
		Rules:       in.Rules,
		Fields:      fields,
		CreatedBy:   &userID,
	}
	err = ms.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return ms.models.Create(ctx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	models.DecodeFields(m.Fields)

	logrus.WithFields(logrus.Fields{"model_id": m.ID, "workspace_id": m.WorkspaceID, "fields": len(m.Fields)}).
		Info("✅ model created")
	ms.events.PublishAfterCommit(ctx, events.ModelCreated, events.ModelEvent{ModelID: m.ID, WorkspaceID: m.WorkspaceID, UserID: userID})
	return m, nil
}

// UpdateModel applies a partial update. A fields list replaces every existing field;
// field ids are not preserved.
func (ms *ModelService) UpdateModel(ctx context.Context, userID, id int64, in UpdateModelInput) (*models.Model, error) {
	m, err := ms.loadAuthorized(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", "must not be empty")
		}
		m.Name = name
	}
	if in.Description != nil {
		m.Description = in.Description
	}

	if in.Slug != nil {
		newSlug := strings.TrimSpace(*in.Slug)
		if newSlug == "" {
			return nil, errors.NewValidationError("slug", "must not be empty")
		}
		if newSlug != m.Slug {
			exists, err := ms.models.SlugExists(ctx, m.WorkspaceID, newSlug, m.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check model slug: %w", err)
			}
			if exists {
				return nil, errors.NewConflictError("Model", "slug", newSlug)
			}
		}
		m.Slug = newSlug
	}

	replaceFields := in.Fields != nil
	if replaceFields {
		fields, err := buildFields(*in.Fields)
		if err != nil {
			return nil, err
		}
		m.Fields = fields
	}
	if in.Rules != nil {
		m.Rules = *in.Rules
	}
	if replaceFields || in.Rules != nil {
		if err := ms.rules.Compile(m.Rules, m.Fields); err != nil {
			return nil, err
		}
	}

	err = ms.tx.WithTransaction(ctx, func(ctx context.Context) error {
		found, err := ms.models.LockForWrite(ctx, m.ID)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewNotFoundError("Model", "")
		}
		return ms.models.Update(ctx, m, replaceFields)
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update model: %w", err)
	}

	ms.events.PublishAfterCommit(ctx, events.ModelUpdated, events.ModelEvent{ModelID: m.ID, WorkspaceID: m.WorkspaceID, UserID: userID})

	updated, err := ms.models.Get(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload model: %w", err)
	}
	if updated == nil {
		return nil, errors.NewNotFoundError("Model", "")
	}
	models.DecodeFields(updated.Fields)
	return updated, nil
}

// DeleteModel removes a model; its fields and records go with it
func (ms *ModelService) DeleteModel(ctx context.Context, userID, id int64) error {
	m, err := ms.loadAuthorized(ctx, userID, id, true)
	if err != nil {
		return err
	}

	if err := ms.models.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}

	logrus.WithFields(logrus.Fields{"model_id": m.ID, "workspace_id": m.WorkspaceID}).Info("🗑️ model deleted")
	ms.events.PublishAfterCommit(ctx, events.ModelDeleted, events.ModelEvent{ModelID: m.ID, WorkspaceID: m.WorkspaceID, UserID: userID})
	return nil
}

// fieldSlug derives an identifier-safe slug from a field name
func fieldSlug(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

// buildFields checks field definitions and turns them into fields in request order
func buildFields(inputs []FieldInput) ([]models.Field, error) {
	fields := make([]models.Field, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))

	for i, in := range inputs {
		where := "fields[" + strconv.Itoa(i) + "]"

		name := strings.TrimSpace(in.Name)
		if name == "" || strings.TrimSpace(in.DataType) == "" {
			return nil, errors.NewValidationError(where, "fields must include name, slug, and data_type")
		}

		fieldSlugValue := strings.TrimSpace(in.Slug)
		if fieldSlugValue == "" {
			fieldSlugValue = fieldSlug(name)
		}
		if fieldSlugValue == "" {
			return nil, errors.NewValidationError(where, "slug could not be derived from name")
		}
		if seen[fieldSlugValue] {
			return nil, errors.NewValidationError(where, fmt.Sprintf("duplicate field slug '%s'", fieldSlugValue))
		}
		seen[fieldSlugValue] = true

		dataType, ok := fieldtypes.Parse(in.DataType)
		if !ok {
			return nil, errors.NewValidationError(where, MsgUnsupportedType)
		}
		if err := models.CheckFieldConfig(dataType, in.Config); err != nil {
			return nil, errors.NewValidationError(where, err.Error())
		}

		f := models.Field{
			Name:     name,
			Slug:     fieldSlugValue,
			DataType: dataType,
			Position: i,
			Config:   in.Config,
		}
		if in.IsRequired != nil {
			f.IsRequired = *in.IsRequired
		}
		if in.IsUnique != nil {
			f.IsUnique = *in.IsUnique
		}
		if in.Position != nil {
			f.Position = *in.Position
		}
		fields = append(fields, f)
	}
	return fields, nil
}
