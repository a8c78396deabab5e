package models

import (
	"fmt"

	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
)

// FieldConfig is the typed view of a field's config map.
// Exactly one of NoConfig, EnumConfig or RelationConfig.
type FieldConfig interface {
	fieldConfig()
}

// NoConfig is used by types that take no configuration
type NoConfig struct{}

// EnumConfig lists the permitted literal values of an enum field
type EnumConfig struct {
	Values []interface{}
}

// Permits reports whether v is one of the configured values
func (c EnumConfig) Permits(v interface{}) bool {
	for _, allowed := range c.Values {
		if ValuesEqual(allowed, v) {
			return true
		}
	}
	return false
}

// RelationConfig scopes a relation field. ModelID 0 means any model.
// When HasWorkspace is false the owning model's workspace applies; an explicit
// workspace_id of null or 0 disables the workspace check.
type RelationConfig struct {
	ModelID      int64
	WorkspaceID  int64
	HasWorkspace bool
}

// ExpectedWorkspace returns the workspace the related record must belong to, or 0 for any
func (c RelationConfig) ExpectedWorkspace(defaultWorkspaceID int64) int64 {
	if c.HasWorkspace {
		return c.WorkspaceID
	}
	return defaultWorkspaceID
}

func (NoConfig) fieldConfig()       {}
func (EnumConfig) fieldConfig()     {}
func (RelationConfig) fieldConfig() {}

// DecodeFieldConfig interprets raw config for the given type. It never fails: malformed
// entries decode to their empty form, so a bad enum permits nothing.
func DecodeFieldConfig(t fieldtypes.FieldType, raw Document) FieldConfig {
	switch t {
	case fieldtypes.TypeEnum:
		return EnumConfig{Values: enumValues(raw)}
	case fieldtypes.TypeRelation:
		cfg := RelationConfig{}
		if id, ok := IntegerID(raw[constants.ConfigModelID]); ok {
			cfg.ModelID = id
		}
		if v, ok := raw[constants.ConfigWorkspaceID]; ok {
			cfg.HasWorkspace = true
			if id, ok := IntegerID(v); ok {
				cfg.WorkspaceID = id
			}
		}
		return cfg
	}
	return NoConfig{}
}

// values wins unless it is missing or empty, then the legacy options key
func enumValues(raw Document) []interface{} {
	if vals, ok := raw[constants.ConfigValues].([]interface{}); ok && len(vals) > 0 {
		return vals
	}
	if vals, ok := raw[constants.ConfigOptions].([]interface{}); ok && len(vals) > 0 {
		return vals
	}
	return nil
}

// CheckFieldConfig is the strict check applied when a field definition is saved
func CheckFieldConfig(t fieldtypes.FieldType, raw Document) error {
	switch t {
	case fieldtypes.TypeEnum:
		if len(enumValues(raw)) == 0 {
			return fmt.Errorf("enum fields need a non-empty '%s' list", constants.ConfigValues)
		}
	case fieldtypes.TypeRelation:
		for _, key := range []string{constants.ConfigModelID, constants.ConfigWorkspaceID} {
			v, ok := raw[key]
			if !ok || v == nil {
				continue
			}
			if _, ok := IntegerID(v); !ok {
				return fmt.Errorf("relation config '%s' must be an integer", key)
			}
		}
	}
	return nil
}
