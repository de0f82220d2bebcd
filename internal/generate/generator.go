package generate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanknguyen/dynagen/internal/schema"
	"github.com/tuanknguyen/dynagen/internal/validate"
)

// EntityOutput holds the generated source text for one entity.
type EntityOutput struct {
	EntitySource     string
	RepositorySource string
	// Dropped lists declared patterns absorbed into the CRUD surface.
	Dropped []DroppedPattern
}

// Result is the outcome of one generation run. When Validation reports
// errors, no sources are generated; warnings never block generation.
type Result struct {
	RunID      string
	Language   string
	Validation *validate.Result
	// Tables maps table name to its assembled source file text.
	Tables map[string]string
	// TableInputs maps table name to the JSON-serialized CreateTable
	// request that provisions it, written alongside the sources so a
	// schema drives table creation as well as code.
	TableInputs map[string]string
	// Entities maps entity name to its generated sources.
	Entities map[string]*EntityOutput
	// AccessPatternMapping is keyed by the decimal pattern id string and
	// spans every surviving pattern in the schema, cross-table included.
	AccessPatternMapping map[string]*MappedPattern
}

// Generator runs the full pipeline: validate, reconcile CRUD conflicts, map
// access patterns, and emit source text. It holds no state between runs.
type Generator struct {
	lang    *Language
	mapper  *Mapper
	emitter Emitter
}

// New creates a generator for the given target language.
func New(lang *Language) (*Generator, error) {
	emitter, err := NewEmitter(lang)
	if err != nil {
		return nil, err
	}
	return &Generator{
		lang:    lang,
		mapper:  NewMapper(lang),
		emitter: emitter,
	}, nil
}

// Generate runs the pipeline over one parsed schema document. The document
// is never mutated; conflict resolution renames operate on copies. When the
// document fails validation the result carries the validation outcome and
// nothing else.
func (g *Generator) Generate(doc *schema.Schema) (*Result, error) {
	result := &Result{
		RunID:      uuid.NewString(),
		Language:   g.lang.Name,
		Validation: validate.Schema(doc),
	}
	if !result.Validation.IsValid {
		return result, nil
	}

	registry := schema.NewRegistry(doc)
	result.Tables = make(map[string]string)
	result.TableInputs = make(map[string]string)
	result.Entities = make(map[string]*EntityOutput)
	result.AccessPatternMapping = make(map[string]*MappedPattern)

	for _, tableName := range registry.TableNames() {
		table, _ := registry.Table(tableName)

		var file strings.Builder
		file.WriteString(g.emitter.EmitSupport(table))

		for _, entityName := range registry.EntityNames(tableName) {
			entity, _ := registry.Entity(tableName, entityName)
			output, mapping, err := g.generateEntity(table, entityName, entity)
			if err != nil {
				return nil, fmt.Errorf("entity %s: %w", entityName, err)
			}

			result.Entities[entityName] = output
			for id, mapped := range mapping {
				result.AccessPatternMapping[id] = mapped
			}

			file.WriteString(output.EntitySource)
			file.WriteString("\n")
			file.WriteString(output.RepositorySource)
			file.WriteString("\n")
		}

		for _, pattern := range table.CrossTablePatterns {
			mapped, err := g.mapper.MapCrossTablePattern(pattern)
			if err != nil {
				return nil, err
			}
			result.AccessPatternMapping[strconv.Itoa(pattern.PatternID)] = mapped
		}

		result.Tables[tableName] = file.String()

		encoded, err := json.MarshalIndent(BuildCreateTableInput(table, registry), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tableName, err)
		}
		result.TableInputs[tableName] = string(encoded) + "\n"
	}

	return result, nil
}

// generateEntity reconciles one entity's declared patterns with its CRUD
// surface, maps the survivors, and emits its sources.
func (g *Generator) generateEntity(table *schema.Table, entityName string, entity *schema.Entity) (*EntityOutput, map[string]*MappedPattern, error) {
	filtered := FilterConflictingPatterns(entityName, entity, g.lang)

	mapping, err := g.mapper.GenerateMapping(entityName, filtered.Patterns)
	if err != nil {
		return nil, nil, err
	}

	patterns := make([]*MappedPattern, 0, len(mapping))
	for _, mapped := range mapping {
		patterns = append(patterns, mapped)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].PatternID < patterns[j].PatternID })

	entitySource, err := g.emitter.EmitEntity(entityName, entity)
	if err != nil {
		return nil, nil, err
	}

	repoSource, err := g.emitter.EmitRepository(&EmitContext{
		Table:              table,
		EntityName:         entityName,
		Entity:             entity,
		Patterns:           patterns,
		CRUDConsistentRead: filtered.CRUDConsistentRead,
	})
	if err != nil {
		return nil, nil, err
	}

	return &EntityOutput{
		EntitySource:     entitySource,
		RepositorySource: repoSource,
		Dropped:          filtered.Dropped,
	}, mapping, nil
}
