package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jroneil/MI-Tool/internal/domain/events"
	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RecordService is the record store API: membership, quota, validation, audit stamps and
// atomic persistence for record documents
type RecordService struct {
	records     ports.RecordRepository
	models      ports.ModelRepository
	workspaces  ports.WorkspaceRepository
	tx          ports.TxManager
	schema      *ModelService
	validator   *ValidationService
	events      *EventBus
	recordLimit int
}

// NewRecordService creates a new RecordService. recordLimit is the per-model record quota.
func NewRecordService(
	records ports.RecordRepository,
	modelRepo ports.ModelRepository,
	workspaces ports.WorkspaceRepository,
	tx ports.TxManager,
	schema *ModelService,
	validator *ValidationService,
	eventBus *EventBus,
	recordLimit int,
) *RecordService {
	return &RecordService{
		records:     records,
		models:      modelRepo,
		workspaces:  workspaces,
		tx:          tx,
		schema:      schema,
		validator:   validator,
		events:      eventBus,
		recordLimit: recordLimit,
	}
}

// RecordLimit returns the per-model record quota
func (rs *RecordService) RecordLimit() int {
	return rs.recordLimit
}

// modelForCaller loads a model through the schema cache and checks membership.
// A missing model fails like a foreign one so ids cannot be enumerated.
func (rs *RecordService) modelForCaller(ctx context.Context, userID, modelID int64) (*models.Model, error) {
	m, err := rs.schema.Definition(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewNotMemberError()
	}
	if err := ensureMembership(ctx, rs.workspaces, userID, m.WorkspaceID); err != nil {
		return nil, err
	}
	return m, nil
}

// lockedModel takes the model row lock and reloads the definition inside the transaction,
// so the quota count, uniqueness scan and write all see the same fields
func (rs *RecordService) lockedModel(ctx context.Context, modelID int64) (*models.Model, error) {
	found, err := rs.models.LockForWrite(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock model: %w", err)
	}
	if !found {
		return nil, errors.NewNotFoundError("Model", "")
	}
	m, err := rs.models.Get(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	if m == nil {
		return nil, errors.NewNotFoundError("Model", "")
	}
	models.DecodeFields(m.Fields)
	return m, nil
}

// CreateRecord validates and stores a new record. The quota is checked before validation.
func (rs *RecordService) CreateRecord(ctx context.Context, userID, modelID int64, data models.Document) (*models.Record, error) {
	if _, err := rs.modelForCaller(ctx, userID, modelID); err != nil {
		return nil, err
	}
	if data == nil {
		data = models.Document{}
	}

	var record *models.Record
	err := rs.tx.WithTransaction(ctx, func(ctx context.Context) error {
		m, err := rs.lockedModel(ctx, modelID)
		if err != nil {
			return err
		}

		count, err := rs.records.CountByModel(ctx, modelID)
		if err != nil {
			return fmt.Errorf("failed to count records: %w", err)
		}
		if count >= rs.recordLimit {
			return errors.NewQuotaError(rs.recordLimit)
		}

		if err := rs.validator.Validate(ctx, m, data, 0); err != nil {
			return err
		}

		record = &models.Record{
			ModelID:     m.ID,
			WorkspaceID: m.WorkspaceID,
			Data:        data,
			CreatedBy:   &userID,
			UpdatedBy:   &userID,
		}
		if err := rs.records.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"record_id": record.ID, "model_id": modelID}).Debug("📝 record created")
	rs.events.PublishAfterCommit(ctx, events.RecordCreated, events.RecordEvent{
		RecordID: record.ID, ModelID: record.ModelID, WorkspaceID: record.WorkspaceID, UserID: userID,
	})
	return record, nil
}

// recordForCaller loads a record and authorizes the caller against its model's workspace
func (rs *RecordService) recordForCaller(ctx context.Context, userID, recordID int64) (*models.Record, *models.Model, error) {
	record, err := rs.records.GetRecord(ctx, recordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load record: %w", err)
	}
	if record == nil {
		return nil, nil, errors.NewNotMemberError()
	}
	m, err := rs.modelForCaller(ctx, userID, record.ModelID)
	if err != nil {
		return nil, nil, err
	}
	return record, m, nil
}

// GetRecord returns a record after re-validating it against the model's current fields.
// A stored document that no longer satisfies the model yields a RecordValidationError.
func (rs *RecordService) GetRecord(ctx context.Context, userID, recordID int64) (*models.Record, error) {
	record, m, err := rs.recordForCaller(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	if err := rs.validator.Validate(ctx, m, record.Data, record.ID); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateRecord replaces a record's document
func (rs *RecordService) UpdateRecord(ctx context.Context, userID, recordID int64, data models.Document) (*models.Record, error) {
	existing, _, err := rs.recordForCaller(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = models.Document{}
	}

	var record *models.Record
	err = rs.tx.WithTransaction(ctx, func(ctx context.Context) error {
		m, err := rs.lockedModel(ctx, existing.ModelID)
		if err != nil {
			return err
		}

		current, err := rs.records.GetRecord(ctx, recordID)
		if err != nil {
			return fmt.Errorf("failed to load record: %w", err)
		}
		if current == nil {
			return errors.NewNotFoundError("Record", "")
		}

		if err := rs.validator.Validate(ctx, m, data, current.ID); err != nil {
			return err
		}

		current.Data = data
		current.UpdatedBy = &userID
		if err := rs.records.Update(ctx, current); err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}
		record = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.events.PublishAfterCommit(ctx, events.RecordUpdated, events.RecordEvent{
		RecordID: record.ID, ModelID: record.ModelID, WorkspaceID: record.WorkspaceID, UserID: userID,
	})
	return record, nil
}

// DeleteRecord removes a record. Membership is checked against the record's own workspace.
func (rs *RecordService) DeleteRecord(ctx context.Context, userID, recordID int64) error {
	record, err := rs.records.GetRecord(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to load record: %w", err)
	}
	if record == nil {
		return errors.NewNotMemberError()
	}
	if err := ensureMembership(ctx, rs.workspaces, userID, record.WorkspaceID); err != nil {
		return err
	}

	if err := rs.records.Delete(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rs.events.PublishAfterCommit(ctx, events.RecordDeleted, events.RecordEvent{
		RecordID: record.ID, ModelID: record.ModelID, WorkspaceID: record.WorkspaceID, UserID: userID,
	})
	return nil
}

// NormalizeListQuery fills defaults and rejects out-of-range paging and sort options
func NormalizeListQuery(q models.RecordListQuery) (models.RecordListQuery, error) {
	if q.Skip < 0 {
		return q, errors.NewValidationError("skip", "must be greater than or equal to 0")
	}
	if q.Limit == 0 {
		q.Limit = constants.DefaultRecordPageSize
	}
	if q.Limit < 1 || q.Limit > constants.MaxRecordPageSize {
		return q, errors.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", constants.MaxRecordPageSize))
	}

	q.SortOrder = constants.SortOrder(strings.ToLower(string(q.SortOrder)))
	switch q.SortOrder {
	case "":
		q.SortOrder = constants.SortAsc
	case constants.SortAsc, constants.SortDesc:
	default:
		return q, errors.NewValidationError("sort_order", "must be asc or desc")
	}

	q.SortBy = strings.TrimSpace(q.SortBy)
	if q.FilterKey == "" {
		q.FilterValue = nil
	}
	return q, nil
}

// ListRecords returns one page of a model's records
func (rs *RecordService) ListRecords(ctx context.Context, userID, modelID int64, q models.RecordListQuery) (*models.RecordPage, error) {
	if _, err := rs.modelForCaller(ctx, userID, modelID); err != nil {
		return nil, err
	}

	q, err := NormalizeListQuery(q)
	if err != nil {
		return nil, err
	}

	items, total, err := rs.records.List(ctx, modelID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	if items == nil {
		items = []models.Record{}
	}

	return &models.RecordPage{
		Items:   items,
		Total:   total,
		HasMore: q.Skip+len(items) < total,
	}, nil
}
