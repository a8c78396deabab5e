package services

import (
	"context"
	"sort"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
)

// ValidationService validates record documents against the current fields of their model.
// It is safe for concurrent use.
type ValidationService struct {
	relations  *RelationResolver
	uniqueness *UniquenessChecker
	rules      *RuleEvaluator
}

// NewValidationService creates a new ValidationService. rules may be nil.
func NewValidationService(records ports.RecordReader, rules *RuleEvaluator) *ValidationService {
	return &ValidationService{
		relations:  NewRelationResolver(records),
		uniqueness: NewUniquenessChecker(records),
		rules:      rules,
	}
}

// orderedFields returns the fields by position, then id
func orderedFields(fields []models.Field) []models.Field {
	out := make([]models.Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ValidateRecord checks every field independently and returns all field errors together.
// recordID is the record being updated, or 0 on create. The error return is reserved for
// storage failures; a document with problems yields a non-empty list and a nil error.
func (vs *ValidationService) ValidateRecord(ctx context.Context, model *models.Model, doc models.Document, recordID int64) ([]errors.FieldError, error) {
	var fieldErrs []errors.FieldError

	for _, field := range orderedFields(model.Fields) {
		value, present := doc[field.Slug]
		if !present {
			if field.IsRequired {
				fieldErrs = append(fieldErrs, errors.FieldError{Field: field.Slug, Message: MsgFieldRequired})
			}
			continue
		}

		if msg := CheckFieldValue(field, value); msg != "" {
			fieldErrs = append(fieldErrs, errors.FieldError{Field: field.Slug, Message: msg})
			continue
		}

		if field.DataType == fieldtypes.TypeRelation {
			id, _ := models.IntegerID(value)
			msg, err := vs.relations.Resolve(ctx, field, id, model.WorkspaceID)
			if err != nil {
				return nil, err
			}
			if msg != "" {
				fieldErrs = append(fieldErrs, errors.FieldError{Field: field.Slug, Message: msg})
				continue
			}
		}

		if field.IsUnique {
			msg, err := vs.uniqueness.Check(ctx, model.ID, field, value, recordID)
			if err != nil {
				return nil, err
			}
			if msg != "" {
				fieldErrs = append(fieldErrs, errors.FieldError{Field: field.Slug, Message: msg})
			}
		}
	}

	if len(fieldErrs) == 0 && vs.rules != nil {
		fieldErrs = vs.rules.Evaluate(model, doc)
	}

	return fieldErrs, nil
}

// Validate is ValidateRecord folded into a single error: nil, a RecordValidationError,
// or a storage failure.
func (vs *ValidationService) Validate(ctx context.Context, model *models.Model, doc models.Document, recordID int64) error {
	fieldErrs, err := vs.ValidateRecord(ctx, model, doc, recordID)
	if err != nil {
		return err
	}
	return errors.NewRecordValidationError(fieldErrs)
}
