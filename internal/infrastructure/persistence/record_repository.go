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
	"github.com/jroneil/MI-Tool/pkg/query"
)

var _ ports.RecordRepository = (*RecordRepository)(nil)

var recordColumns = []string{
	constants.FieldID, constants.FieldModelID, constants.FieldWorkspaceID, constants.FieldData,
	constants.FieldCreatedBy, constants.FieldUpdatedBy, constants.FieldCreatedAt, constants.FieldUpdatedAt,
}

// RecordRepository stores record documents as JSON
type RecordRepository struct {
	db    *sql.DB
	guard *query.Guard
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db, guard: query.NewGuard(constants.TableRecord)}
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var rec models.Record
	var createdBy, updatedBy sql.NullInt64
	if err := row.Scan(&rec.ID, &rec.ModelID, &rec.WorkspaceID, &rec.Data, &createdBy, &updatedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.CreatedBy = nullableID(createdBy)
	rec.UpdatedBy = nullableID(updatedBy)
	if rec.Data == nil {
		rec.Data = models.Document{}
	}
	return &rec, nil
}

// GetRecord returns the record or nil when it does not exist
func (r *RecordRepository) GetRecord(ctx context.Context, id int64) (*models.Record, error) {
	q := query.From(constants.TableRecord).Select(recordColumns...).WhereEq(constants.FieldID, id).Limit(1).Build()

	rec, err := scanRecord(executor(ctx, r.db).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return rec, nil
}

// ScanModelRecords streams id and document of every record of the model in id order
func (r *RecordRepository) ScanModelRecords(ctx context.Context, modelID int64, fn func(id int64, doc models.Document) bool) error {
	q := query.From(constants.TableRecord).
		Select(constants.FieldID, constants.FieldData).
		WhereEq(constants.FieldModelID, modelID).
		OrderBy(constants.FieldID, "ASC").
		Build()

	rows, err := executor(ctx, r.db).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return fmt.Errorf("failed to scan records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var doc models.Document
		if err := rows.Scan(&id, &doc); err != nil {
			return err
		}
		if !fn(id, doc) {
			return nil
		}
	}
	return rows.Err()
}

// Create inserts a record and sets its id and timestamps
func (r *RecordRepository) Create(ctx context.Context, rec *models.Record) error {
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	data, err := rec.Data.Value()
	if err != nil {
		return err
	}
	q := query.Insert(constants.TableRecord, map[string]interface{}{
		constants.FieldModelID:     rec.ModelID,
		constants.FieldWorkspaceID: rec.WorkspaceID,
		constants.FieldData:        data,
		constants.FieldCreatedBy:   rec.CreatedBy,
		constants.FieldUpdatedBy:   rec.UpdatedBy,
		constants.FieldCreatedAt:   rec.CreatedAt,
		constants.FieldUpdatedAt:   rec.UpdatedAt,
	}).Build()

	res, err := executor(ctx, r.db).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// Update replaces the document and audit stamp of a record
func (r *RecordRepository) Update(ctx context.Context, rec *models.Record) error {
	rec.UpdatedAt = time.Now().UTC()

	data, err := rec.Data.Value()
	if err != nil {
		return err
	}
	q := query.Update(constants.TableRecord).Set(map[string]interface{}{
		constants.FieldData:      data,
		constants.FieldUpdatedBy: rec.UpdatedBy,
		constants.FieldUpdatedAt: rec.UpdatedAt,
	}).WhereEq(constants.FieldID, rec.ID).Build()

	_, err = executor(ctx, r.db).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

func (r *RecordRepository) Delete(ctx context.Context, id int64) error {
	q := query.Delete(constants.TableRecord).WhereEq(constants.FieldID, id).Build()
	_, err := executor(ctx, r.db).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

func (r *RecordRepository) CountByModel(ctx context.Context, modelID int64) (int, error) {
	q := query.From(constants.TableRecord).Count().WhereEq(constants.FieldModelID, modelID).Build()

	var n int
	if err := executor(ctx, r.db).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// jsonPath addresses one top-level key of the data column. The key is bound as a
// parameter, never spliced into the SQL text.
func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(strings.ReplaceAll(key, `\`, `\\`), `"`, `\"`) + `"`
}

// dataText is the text form of one document key
var dataText = fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(`%s`.`%s`, ?))", constants.TableRecord, constants.FieldData)

// applyListFilter adds the optional text-equality filter
func applyListFilter(b *query.Builder, q models.RecordListQuery) *query.Builder {
	if q.FilterKey != "" && q.FilterValue != nil {
		b.Where(dataText+" = ?", jsonPath(q.FilterKey), *q.FilterValue)
	}
	return b
}

// List returns one page of the model's records and the total matching the filter.
// Sorting by a document key compares the values as text.
func (r *RecordRepository) List(ctx context.Context, modelID int64, q models.RecordListQuery) ([]models.Record, int, error) {
	direction := "ASC"
	if q.SortOrder == constants.SortDesc {
		direction = "DESC"
	}

	countQ := applyListFilter(query.From(constants.TableRecord).Count().WhereEq(constants.FieldModelID, modelID), q).Build()
	if err := r.guard.Check(countQ.SQL); err != nil {
		return nil, 0, err
	}

	exec := executor(ctx, r.db)
	var total int
	if err := exec.QueryRowContext(ctx, countQ.SQL, countQ.Params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	b := applyListFilter(query.From(constants.TableRecord).Select(recordColumns...).WhereEq(constants.FieldModelID, modelID), q)
	switch q.SortBy {
	case "", constants.FieldCreatedAt:
		b.OrderBy(constants.FieldCreatedAt, direction)
	case constants.FieldUpdatedAt:
		b.OrderBy(constants.FieldUpdatedAt, direction)
	default:
		b.OrderByRaw(dataText, direction, jsonPath(q.SortBy))
	}
	pageQ := b.OrderBy(constants.FieldID, direction).Limit(q.Limit).Offset(q.Skip).Build()
	if err := r.guard.Check(pageQ.SQL); err != nil {
		return nil, 0, err
	}

	rows, err := exec.QueryContext(ctx, pageQ.SQL, pageQ.Params...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	items := make([]models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *rec)
	}
	return items, total, rows.Err()
}

// UsageByModel counts records per model, including models with none
func (r *RecordRepository) UsageByModel(ctx context.Context) ([]models.ModelUsage, error) {
	sqlStr := fmt.Sprintf(`SELECT m.%s, m.%s, m.%s, COUNT(r.%s)
		FROM %s m LEFT JOIN %s r ON r.%s = m.%s
		GROUP BY m.%s, m.%s, m.%s
		ORDER BY m.%s`,
		constants.FieldID, constants.FieldWorkspaceID, constants.FieldSlug, constants.FieldID,
		constants.TableModel, constants.TableRecord, constants.FieldModelID, constants.FieldID,
		constants.FieldID, constants.FieldWorkspaceID, constants.FieldSlug,
		constants.FieldID)

	rows, err := executor(ctx, r.db).QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ModelUsage, 0)
	for rows.Next() {
		var u models.ModelUsage
		if err := rows.Scan(&u.ModelID, &u.WorkspaceID, &u.Slug, &u.Records); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
