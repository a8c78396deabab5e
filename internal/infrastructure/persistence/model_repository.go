package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/constants"
	apperrors "github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
	"github.com/jroneil/MI-Tool/pkg/query"
)

var _ ports.ModelRepository = (*ModelRepository)(nil)

var modelColumns = []string{
	constants.FieldID, constants.FieldWorkspaceID, constants.FieldName, constants.FieldSlug,
	constants.FieldDescription, constants.FieldRules, constants.FieldCreatedBy,
	constants.FieldCreatedAt, constants.FieldUpdatedAt,
}

var fieldColumns = []string{
	constants.FieldID, constants.FieldModelID, constants.FieldName, constants.FieldSlug,
	constants.FieldDataType, constants.FieldIsRequired, constants.FieldIsUnique,
	constants.FieldPosition, constants.FieldConfig,
}

// ModelRepository stores models and their ordered fields
type ModelRepository struct {
	db *sql.DB
}

func NewModelRepository(db *sql.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// Create inserts the model and its fields. Call it inside a transaction so both land together.
func (r *ModelRepository) Create(ctx context.Context, m *models.Model) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	rules, err := m.Rules.Value()
	if err != nil {
		return err
	}
	q := query.Insert(constants.TableModel, map[string]interface{}{
		constants.FieldWorkspaceID: m.WorkspaceID,
		constants.FieldName:        m.Name,
		constants.FieldSlug:        m.Slug,
		constants.FieldDescription: m.Description,
		constants.FieldRules:       rules,
		constants.FieldCreatedBy:   m.CreatedBy,
		constants.FieldCreatedAt:   m.CreatedAt,
		constants.FieldUpdatedAt:   m.UpdatedAt,
	}).Build()

	exec := executor(ctx, r.db)
	res, err := exec.ExecContext(ctx, q.SQL, q.Params...)
	if isDuplicateKey(err) {
		return apperrors.NewConflictError("Model", constants.FieldSlug, m.Slug)
	}
	if err != nil {
		return err
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	return r.insertFields(ctx, exec, m)
}

func (r *ModelRepository) insertFields(ctx context.Context, exec Executor, m *models.Model) error {
	for i := range m.Fields {
		f := &m.Fields[i]
		f.ModelID = m.ID
		config, err := f.Config.Value()
		if err != nil {
			return err
		}
		q := query.Insert(constants.TableModelField, map[string]interface{}{
			constants.FieldModelID:    f.ModelID,
			constants.FieldName:       f.Name,
			constants.FieldSlug:       f.Slug,
			constants.FieldDataType:   f.DataType.String(),
			constants.FieldIsRequired: f.IsRequired,
			constants.FieldIsUnique:   f.IsUnique,
			constants.FieldPosition:   f.Position,
			constants.FieldConfig:     config,
		}).Build()

		res, err := exec.ExecContext(ctx, q.SQL, q.Params...)
		if err != nil {
			return fmt.Errorf("failed to insert field %s: %w", f.Slug, err)
		}
		if f.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanModel(row rowScanner) (*models.Model, error) {
	var m models.Model
	var description sql.NullString
	var createdBy sql.NullInt64
	if err := row.Scan(&m.ID, &m.WorkspaceID, &m.Name, &m.Slug, &description, &m.Rules, &createdBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		m.Description = &description.String
	}
	m.CreatedBy = nullableID(createdBy)
	m.Fields = []models.Field{}
	return &m, nil
}

// Get returns the model with its fields ordered by position, then id
func (r *ModelRepository) Get(ctx context.Context, id int64) (*models.Model, error) {
	q := query.From(constants.TableModel).Select(modelColumns...).WhereEq(constants.FieldID, id).Limit(1).Build()

	exec := executor(ctx, r.db)
	m, err := scanModel(exec.QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	fields, err := r.loadFields(ctx, exec, []int64{m.ID})
	if err != nil {
		return nil, err
	}
	m.Fields = append(m.Fields, fields[m.ID]...)
	return m, nil
}

// loadFields returns the fields of the given models keyed by model id
func (r *ModelRepository) loadFields(ctx context.Context, exec Executor, modelIDs []int64) (map[int64][]models.Field, error) {
	out := make(map[int64][]models.Field, len(modelIDs))
	if len(modelIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(modelIDs)), ", ")
	args := make([]interface{}, len(modelIDs))
	for i, id := range modelIDs {
		args[i] = id
	}

	q := query.From(constants.TableModelField).
		Select(fieldColumns...).
		Where(fmt.Sprintf("`%s`.`%s` IN (%s)", constants.TableModelField, constants.FieldModelID, placeholders), args...).
		OrderBy(constants.FieldPosition, "ASC").
		OrderBy(constants.FieldID, "ASC").
		Build()

	rows, err := exec.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to load fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Field
		var dataType string
		if err := rows.Scan(&f.ID, &f.ModelID, &f.Name, &f.Slug, &dataType, &f.IsRequired, &f.IsUnique, &f.Position, &f.Config); err != nil {
			return nil, err
		}
		f.DataType = fieldtypes.FieldType(dataType)
		out[f.ModelID] = append(out[f.ModelID], f)
	}
	return out, rows.Err()
}

// ListByWorkspace returns the workspace's models, newest first, with their fields
func (r *ModelRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.Model, error) {
	q := query.From(constants.TableModel).
		Select(modelColumns...).
		WhereEq(constants.FieldWorkspaceID, workspaceID).
		OrderBy(constants.FieldCreatedAt, "DESC").
		OrderBy(constants.FieldID, "DESC").
		Build()

	exec := executor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}

	list := make([]models.Model, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, *m)
		ids = append(ids, m.ID)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	fields, err := r.loadFields(ctx, exec, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Fields = append(list[i].Fields, fields[list[i].ID]...)
	}
	return list, nil
}

// Update writes the model row; with replaceFields the field rows are deleted and
// recreated from m.Fields
func (r *ModelRepository) Update(ctx context.Context, m *models.Model, replaceFields bool) error {
	m.UpdatedAt = time.Now().UTC()
	rules, err := m.Rules.Value()
	if err != nil {
		return err
	}

	q := query.Update(constants.TableModel).Set(map[string]interface{}{
		constants.FieldName:        m.Name,
		constants.FieldSlug:        m.Slug,
		constants.FieldDescription: m.Description,
		constants.FieldRules:       rules,
		constants.FieldUpdatedAt:   m.UpdatedAt,
	}).WhereEq(constants.FieldID, m.ID).Build()

	exec := executor(ctx, r.db)
	_, err = exec.ExecContext(ctx, q.SQL, q.Params...)
	if isDuplicateKey(err) {
		return apperrors.NewConflictError("Model", constants.FieldSlug, m.Slug)
	}
	if err != nil {
		return err
	}
	if !replaceFields {
		return nil
	}

	del := query.Delete(constants.TableModelField).WhereEq(constants.FieldModelID, m.ID).Build()
	if _, err := exec.ExecContext(ctx, del.SQL, del.Params...); err != nil {
		return fmt.Errorf("failed to clear fields: %w", err)
	}
	return r.insertFields(ctx, exec, m)
}

// Delete removes the model; fields and records cascade
func (r *ModelRepository) Delete(ctx context.Context, id int64) error {
	q := query.Delete(constants.TableModel).WhereEq(constants.FieldID, id).Build()
	_, err := executor(ctx, r.db).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

func (r *ModelRepository) SlugExists(ctx context.Context, workspaceID int64, slug string, excludeID int64) (bool, error) {
	var exists bool
	sqlStr := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ? AND %s = ? AND %s != ?)",
		constants.TableModel, constants.FieldWorkspaceID, constants.FieldSlug, constants.FieldID)
	err := executor(ctx, r.db).QueryRowContext(ctx, sqlStr, workspaceID, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// LockForWrite takes the model row lock (SELECT ... FOR UPDATE). It must run inside a transaction.
func (r *ModelRepository) LockForWrite(ctx context.Context, id int64) (bool, error) {
	tx := ExtractTx(ctx)
	if tx == nil {
		return false, fmt.Errorf("transaction required for locking model %d", id)
	}

	q := query.From(constants.TableModel).Select(constants.FieldID).WhereEq(constants.FieldID, id).ForUpdate().Build()
	var got int64
	err := tx.QueryRowContext(ctx, q.SQL, q.Params...).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
