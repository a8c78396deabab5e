package fieldtypes

import (
	"embed"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

//go:embed fieldTypes.json
var fieldTypesFS embed.FS

// FieldTypeDefinition describes a field type for clients building model editors
type FieldTypeDefinition struct {
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	Icon           string   `json:"icon"`
	ConfigKeys     []string `json:"configKeys"`
	IsSortable     bool     `json:"isSortable"`
	SupportsUnique bool     `json:"supportsUnique"`
}

// Registry holds field type definitions
type Registry struct {
	types map[FieldType]FieldTypeDefinition
	mu    sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field types registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			types: make(map[FieldType]FieldTypeDefinition),
		}
		if err := defaultRegistry.loadFromEmbedded(); err != nil {
			logrus.WithError(err).Error("❌ failed to load field type catalogue")
		}
	})
	return defaultRegistry
}

func (r *Registry) loadFromEmbedded() error {
	data, err := fieldTypesFS.ReadFile("fieldTypes.json")
	if err != nil {
		return err
	}

	var types map[FieldType]FieldTypeDefinition
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = types
	return nil
}

// Get returns a field type definition by type
func (r *Registry) Get(t FieldType) (FieldTypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[t]
	return def, ok
}

// IsSortable returns whether records can be ordered by a field of this type
func (r *Registry) IsSortable(t FieldType) bool {
	def, ok := r.Get(t)
	return ok && def.IsSortable
}

// FieldTypeWithName includes the name in the field type definition
type FieldTypeWithName struct {
	Name string `json:"name"`
	FieldTypeDefinition
}

// GetAllFieldTypes returns the catalogue in a stable order
func GetAllFieldTypes() []FieldTypeWithName {
	registry := GetRegistry()
	result := make([]FieldTypeWithName, 0, len(AllTypes))
	for _, t := range AllTypes {
		def, ok := registry.Get(t)
		if !ok {
			continue
		}
		result = append(result, FieldTypeWithName{Name: t.String(), FieldTypeDefinition: def})
	}
	return result
}
