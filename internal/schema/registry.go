package schema

import (
	"regexp"
	"sort"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// TemplateFields extracts the {field} placeholders from a key template,
// in order of appearance.
func TemplateFields(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	fields := make([]string, 0, len(matches))
	for _, m := range matches {
		fields = append(fields, m[1])
	}
	return fields
}

// Registry holds flat name→node lookup tables over a schema document so
// cross-references resolve in O(1) instead of re-scanning the document per
// reference. References are at most one hop deep, so no graph traversal or
// cycle detection is needed.
type Registry struct {
	schema *Schema

	tables   map[string]*Table
	entities map[string]map[string]*Entity
	// fieldTypes maps a field name to its first declared type anywhere in
	// the schema. Used to cross-check same-named scalar parameters.
	fieldTypes map[string]FieldType
}

// NewRegistry builds the lookup tables for a parsed schema. Built once per
// generation run.
func NewRegistry(doc *Schema) *Registry {
	r := &Registry{
		schema:     doc,
		tables:     make(map[string]*Table),
		entities:   make(map[string]map[string]*Entity),
		fieldTypes: make(map[string]FieldType),
	}

	for _, table := range doc.Tables {
		name := table.Config.Name
		if name == "" {
			continue
		}
		r.tables[name] = table
		byEntity := make(map[string]*Entity, len(table.Entities))
		for entityName, entity := range table.Entities {
			byEntity[entityName] = entity
			for _, field := range entity.Fields {
				if _, seen := r.fieldTypes[field.Name]; !seen {
					r.fieldTypes[field.Name] = field.Type
				}
			}
		}
		r.entities[name] = byEntity
	}

	return r
}

// Table resolves a table by name.
func (r *Registry) Table(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Entity resolves an entity by table and entity name.
func (r *Registry) Entity(table, entity string) (*Entity, bool) {
	byEntity, ok := r.entities[table]
	if !ok {
		return nil, false
	}
	e, ok := byEntity[entity]
	return e, ok
}

// EntityByName resolves an entity by name across all tables, returning the
// owning table name as well.
func (r *Registry) EntityByName(entity string) (*Entity, string, bool) {
	for tableName, byEntity := range r.entities {
		if e, ok := byEntity[entity]; ok {
			return e, tableName, true
		}
	}
	return nil, "", false
}

// FieldType returns the declared type of the first field anywhere in the
// schema with the given name.
func (r *Registry) FieldType(name string) (FieldType, bool) {
	t, ok := r.fieldTypes[name]
	return t, ok
}

// TableNames returns the declared table names, sorted for deterministic
// iteration.
func (r *Registry) TableNames() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EntityNames returns the entity names of a table, sorted for deterministic
// iteration.
func (r *Registry) EntityNames(table string) []string {
	byEntity, ok := r.entities[table]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byEntity))
	for name := range byEntity {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeyFields returns the entity's key field names, extracted from its
// partition and sort key templates. The result is empty when the entity
// declares no key templates, which downstream conflict resolution treats
// as the legacy degraded mode.
func KeyFields(entity *Entity) []string {
	fields := TemplateFields(entity.PartitionKeyTemplate)
	fields = append(fields, TemplateFields(entity.SortKeyTemplate)...)
	return fields
}

// HasField reports whether the entity declares a field with the given name.
func HasField(entity *Entity, name string) bool {
	for _, f := range entity.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FieldByName returns the entity's field with the given name.
func FieldByName(entity *Entity, name string) (*Field, bool) {
	for _, f := range entity.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
