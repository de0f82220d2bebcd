package generate

import (
	"fmt"
	"strconv"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

// MappedParameter is one parameter of a mapped method, with its type already
// resolved to the target language.
type MappedParameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// EntityType carries the source entity for entity-typed parameters.
	EntityType string `json:"entity_type,omitempty"`
}

// MappedPattern is the canonical mapping record for one access pattern. It
// is everything the emitter needs to render a repository method.
//
// ConsistentRead is present (defaulting to false) for read operations and
// structurally absent for writes: consistency is not a meaningful write
// concept, so the key must not appear at all rather than appear as false.
type MappedPattern struct {
	PatternID      int                   `json:"pattern_id"`
	Description    string                `json:"description,omitempty"`
	Entity         string                `json:"entity,omitempty"`
	Repository     string                `json:"repository"`
	MethodName     string                `json:"method_name"`
	Parameters     []MappedParameter     `json:"parameters"`
	Operation      schema.Operation      `json:"operation"`
	ReturnType     string                `json:"return_type"`
	IndexName      string                `json:"index_name,omitempty"`
	RangeCondition schema.RangeCondition `json:"range_condition,omitempty"`
	ConsistentRead *bool                 `json:"consistent_read,omitempty"`
}

// Mapper converts validated access patterns into canonical mapping records
// for one target language.
type Mapper struct {
	lang  *Language
	types *TypeMapper
}

// NewMapper creates a mapper for the given language.
func NewMapper(lang *Language) *Mapper {
	return &Mapper{
		lang:  lang,
		types: NewTypeMapper(lang),
	}
}

// GenerateMapping produces the pattern_id→record mapping for one entity's
// access patterns. Keys are the decimal string form of the pattern id.
func (m *Mapper) GenerateMapping(entityName string, patterns []*schema.AccessPattern) (map[string]*MappedPattern, error) {
	mapping := make(map[string]*MappedPattern, len(patterns))
	for _, pattern := range patterns {
		mapped, err := m.MapPattern(entityName, pattern)
		if err != nil {
			return nil, err
		}
		mapping[strconv.Itoa(pattern.PatternID)] = mapped
	}
	return mapping, nil
}

// MapPattern converts one access pattern into its mapping record.
func (m *Mapper) MapPattern(entityName string, pattern *schema.AccessPattern) (*MappedPattern, error) {
	params, err := m.mapParameters(pattern.Parameters)
	if err != nil {
		return nil, fmt.Errorf("pattern '%s': %w", pattern.Name, err)
	}

	returnType, err := m.resolveReturnType(entityName, pattern.ReturnType, pattern.Operation)
	if err != nil {
		return nil, fmt.Errorf("pattern '%s': %w", pattern.Name, err)
	}

	mapped := &MappedPattern{
		PatternID:      pattern.PatternID,
		Description:    pattern.Description,
		Entity:         entityName,
		Repository:     m.lang.RepositoryName(entityName),
		MethodName:     m.lang.FormatMethodName(pattern.Name),
		Parameters:     params,
		Operation:      pattern.Operation,
		ReturnType:     returnType,
		IndexName:      pattern.IndexName,
		RangeCondition: pattern.RangeCondition,
	}

	if pattern.Operation.IsRead() {
		consistent := false
		if pattern.ConsistentRead != nil {
			consistent = *pattern.ConsistentRead
		}
		mapped.ConsistentRead = &consistent
	}

	return mapped, nil
}

// resolveReturnType resolves a return type tag. mixed_data combined with
// Query or Scan yields the fixed paginated untyped record shape without
// consulting the type mapper; every other tag goes through language type
// mapping. A return tag of "entity" resolves to the owning entity's type.
func (m *Mapper) resolveReturnType(entityName, tag string, op schema.Operation) (string, error) {
	if tag == ReturnMixedData && (op == schema.OpQuery || op == schema.OpScan) {
		return ReturnPaginatedRecords, nil
	}
	return m.types.Map(tag, entityName)
}

func (m *Mapper) mapParameters(params []*schema.Parameter) ([]MappedParameter, error) {
	mapped := make([]MappedParameter, 0, len(params))
	for _, p := range params {
		langType, err := m.types.Map(p.Type, p.EntityType)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", p.Name, err)
		}
		mapped = append(mapped, MappedParameter{
			Name:       p.Name,
			Type:       langType,
			EntityType: p.EntityType,
		})
	}
	return mapped, nil
}

// MapCrossTablePattern converts a cross-table pattern into a mapping record.
// Cross-table patterns have no owning entity; they render onto a shared
// transaction repository.
func (m *Mapper) MapCrossTablePattern(pattern *schema.CrossTablePattern) (*MappedPattern, error) {
	params, err := m.mapParameters(pattern.Parameters)
	if err != nil {
		return nil, fmt.Errorf("cross-table pattern '%s': %w", pattern.Name, err)
	}

	returnType, err := m.types.Map(pattern.ReturnType, "")
	if err != nil {
		return nil, fmt.Errorf("cross-table pattern '%s': %w", pattern.Name, err)
	}

	return &MappedPattern{
		PatternID:   pattern.PatternID,
		Description: pattern.Description,
		Repository:  "TransactionRepository",
		MethodName:  m.lang.FormatMethodName(pattern.Name),
		Parameters:  params,
		Operation:   pattern.Operation,
		ReturnType:  returnType,
	}, nil
}
