// Package generate turns a validated schema document into typed entity and
// repository source code. It maps access patterns to method descriptors,
// reconciles them with auto-derived CRUD methods, and renders source text
// for a target language.
package generate

import (
	"fmt"
	"strings"

	"github.com/tuanknguyen/dynagen/internal/schema"
	stringutil "github.com/tuanknguyen/dynagen/internal/util/strings"
)

// ReturnPaginatedRecords is the fixed return shape for mixed_data Query and
// Scan patterns: a paginated collection of untyped records. It is emitted
// without consulting the language type mapper.
const ReturnPaginatedRecords = "paginated_records"

// ReturnMixedData is the schema-level tag for untyped record results.
const ReturnMixedData = "mixed_data"

// NamingConvention holds per-language method name templates. Templates
// support both the {entity_name} snake_case and {EntityName} PascalCase
// placeholders.
type NamingConvention struct {
	Create     string
	Get        string
	Update     string
	Delete     string
	Put        string
	Repository string
}

// Language describes one code generation target: its naming conventions and
// its mapping from schema field types to language types.
type Language struct {
	Name   string
	Naming NamingConvention
	// Types maps schema type tags to language type names.
	Types map[string]string
	// UntypedRecord is the language type for a single untyped record.
	UntypedRecord string
	// snakeMethods selects snake_case method names; PascalCase otherwise.
	snakeMethods bool
}

// Python is the reference target: snake_case methods, PEP 8 style names.
var Python = &Language{
	Name: "python",
	Naming: NamingConvention{
		Create:     "create_{entity_name}",
		Get:        "get_{entity_name}",
		Update:     "update_{entity_name}",
		Delete:     "delete_{entity_name}",
		Put:        "put_{entity_name}",
		Repository: "{EntityName}Repository",
	},
	Types: map[string]string{
		"string":     "str",
		"integer":    "int",
		"decimal":    "Decimal",
		"boolean":    "bool",
		"array":      "list",
		"object":     "dict",
		"uuid":       "UUID",
		"mixed_data": "dict",
	},
	UntypedRecord: "dict",
	snakeMethods:  true,
}

// Go targets generated Go repositories over the AWS SDK.
var Go = &Language{
	Name: "go",
	Naming: NamingConvention{
		Create:     "Create{EntityName}",
		Get:        "Get{EntityName}",
		Update:     "Update{EntityName}",
		Delete:     "Delete{EntityName}",
		Put:        "Put{EntityName}",
		Repository: "{EntityName}Repository",
	},
	Types: map[string]string{
		"string":     "string",
		"integer":    "int64",
		"decimal":    "float64",
		"boolean":    "bool",
		"array":      "[]interface{}",
		"object":     "map[string]interface{}",
		"uuid":       "uuid.UUID",
		"mixed_data": "map[string]interface{}",
	},
	UntypedRecord: "map[string]interface{}",
	snakeMethods:  false,
}

// Languages indexes the built-in targets by name.
var Languages = map[string]*Language{
	Python.Name: Python,
	Go.Name:     Go,
}

// LanguageByName resolves a target language by name.
func LanguageByName(name string) (*Language, error) {
	lang, ok := Languages[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown target language %q (supported: go, python)", name)
	}
	return lang, nil
}

// ExpandNameTemplate substitutes an entity name into a naming template,
// honoring both placeholder styles.
func ExpandNameTemplate(template, entityName string) string {
	out := strings.ReplaceAll(template, "{entity_name}", stringutil.ToSnakeCase(entityName))
	out = strings.ReplaceAll(out, "{EntityName}", stringutil.ToPascalCase(entityName))
	return out
}

// FormatMethodName renders a schema-level pattern name in the language's
// method naming style.
func (l *Language) FormatMethodName(name string) string {
	if l.snakeMethods {
		return stringutil.ToSnakeCase(name)
	}
	return stringutil.ToPascalCase(name)
}

// RepositoryName derives the repository type name for an entity.
func (l *Language) RepositoryName(entityName string) string {
	return ExpandNameTemplate(l.Naming.Repository, entityName)
}

// TypeMapper maps schema type tags to language type names.
type TypeMapper struct {
	lang *Language
}

// NewTypeMapper creates a type mapper for the given language.
func NewTypeMapper(lang *Language) *TypeMapper {
	return &TypeMapper{lang: lang}
}

// Map converts a schema type tag to a language type. Entity-typed tags
// resolve to the target entity's type name.
func (tm *TypeMapper) Map(tag, entityType string) (string, error) {
	if schema.FieldType(tag) == schema.TypeEntity {
		if entityType == "" {
			return "", fmt.Errorf("entity type tag requires an entity_type")
		}
		return stringutil.ToPascalCase(entityType), nil
	}
	if mapped, ok := tm.lang.Types[tag]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("no %s type mapping for tag %q", tm.lang.Name, tag)
}
