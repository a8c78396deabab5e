package services

import (
	"fmt"
	"strings"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/jroneil/MI-Tool/pkg/expression"
	"github.com/sirupsen/logrus"
)

// RuleEvaluator runs model-level rules written as expr-lang conditions
type RuleEvaluator struct {
	engine *expression.Engine
}

// NewRuleEvaluator creates a new RuleEvaluator
func NewRuleEvaluator(engine *expression.Engine) *RuleEvaluator {
	return &RuleEvaluator{engine: engine}
}

// Compile checks every rule of a model definition. Rules may only reference field slugs.
func (re *RuleEvaluator) Compile(rules []models.ValidationRule, fields []models.Field) error {
	slugs := make(map[string]bool, len(fields))
	for _, f := range fields {
		slugs[f.Slug] = true
	}

	for i, rule := range rules {
		label := rule.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if strings.TrimSpace(rule.Condition) == "" {
			return errors.NewValidationError("rules", fmt.Sprintf("rule %s has no condition", label))
		}
		if strings.TrimSpace(rule.Message) == "" {
			return errors.NewValidationError("rules", fmt.Sprintf("rule %s has no message", label))
		}
		if rule.Field != "" && !slugs[rule.Field] {
			return errors.NewValidationError("rules", fmt.Sprintf("rule %s targets unknown field '%s'", label, rule.Field))
		}

		idents, err := expression.Identifiers(rule.Condition)
		if err != nil {
			return errors.NewValidationError("rules", fmt.Sprintf("rule %s: %v", label, err))
		}
		for _, ident := range idents {
			if !slugs[ident] {
				return errors.NewValidationError("rules", fmt.Sprintf("rule %s references unknown field '%s'", label, ident))
			}
		}

		if err := re.engine.Validate(rule.Condition); err != nil {
			return errors.NewValidationError("rules", fmt.Sprintf("rule %s: %v", label, err))
		}
	}
	return nil
}

// Evaluate returns one error per rule whose condition holds for the document.
// Rules that fail to evaluate are skipped.
func (re *RuleEvaluator) Evaluate(model *models.Model, doc models.Document) []errors.FieldError {
	if len(model.Rules) == 0 {
		return nil
	}

	env := doc.Plain()
	var out []errors.FieldError
	for _, rule := range model.Rules {
		failed, err := re.engine.EvaluateBool(rule.Condition, env)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"model_id": model.ID,
				"rule":     rule.Name,
			}).WithError(err).Warn("⚠️ rule evaluation failed, skipping")
			continue
		}
		if failed {
			out = append(out, errors.FieldError{Field: rule.ErrorField(), Message: rule.Message})
		}
	}
	return out
}
