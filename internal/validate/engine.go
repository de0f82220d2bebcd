package validate

import (
	"fmt"
	"sort"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

// Schema runs every validator over a parsed document and returns the
// aggregated result. Validation is a pure function of its input: identical
// documents always produce identical results, and re-validating a valid
// document is idempotent.
//
// All validators run to completion and their issues are concatenated, so one
// invocation surfaces every discoverable problem. The single deliberate
// exception is range query validation, where an invalid condition literal
// suppresses the downstream parameter count and operation checks for that
// same pattern.
func Schema(doc *schema.Schema) *Result {
	registry := schema.NewRegistry(doc)
	seenIDs := make(map[int]string)
	crossTable := NewCrossTableValidator(registry, seenIDs)

	var issues []Issue

	for t, table := range doc.Tables {
		tablePath := fmt.Sprintf("tables[%d]", t)

		issues = append(issues, RequiredFields(tablePath+".table_config", map[string]interface{}{
			"name":          table.Config.Name,
			"partition_key": table.Config.PartitionKey,
		}, []string{"name", "partition_key"})...)

		entityNames := sortedEntityNames(table)

		// GSIs are validated against each entity of the table: in
		// single-table design every entity shares the table's indexes.
		for g, gsi := range table.GSIList {
			gsiPath := fmt.Sprintf("%s.gsi_list[%d]", tablePath, g)
			issues = append(issues, RequiredFields(gsiPath, map[string]interface{}{
				"name":          gsi.Name,
				"partition_key": gsi.PartitionKey,
			}, []string{"name", "partition_key"})...)
			for _, entityName := range entityNames {
				issues = append(issues, ValidateGSI(gsi, table.Entities[entityName], gsiPath)...)
			}
		}

		for _, entityName := range entityNames {
			entityPath := fmt.Sprintf("%s.entities.%s", tablePath, entityName)
			issues = append(issues, validateEntity(registry, table, table.Entities[entityName], seenIDs, entityPath)...)
		}

		for c, pattern := range table.CrossTablePatterns {
			patternPath := fmt.Sprintf("%s.cross_table_access_patterns[%d]", tablePath, c)
			issues = append(issues, crossTable.Validate(pattern, patternPath)...)
		}
	}

	return newResult(issues)
}

func sortedEntityNames(table *schema.Table) []string {
	names := make([]string, 0, len(table.Entities))
	for name := range table.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateEntity(registry *schema.Registry, table *schema.Table, entity *schema.Entity, seenIDs map[int]string, path string) []Issue {
	issues := RequiredFields(path, map[string]interface{}{
		"entity_type":            entity.EntityType,
		"partition_key_template": entity.PartitionKeyTemplate,
		"fields":                 fieldValues(entity.Fields),
	}, []string{"entity_type", "partition_key_template", "fields"})

	for f, field := range entity.Fields {
		fieldPath := fmt.Sprintf("%s.fields[%d]", path, f)
		issues = append(issues, RequiredFields(fieldPath, map[string]interface{}{
			"name": field.Name,
			"type": string(field.Type),
		}, []string{"name", "type"})...)
		if field.Type != "" && !schema.FieldTypes[field.Type] {
			issues = append(issues, errorf(ErrInvalidFieldType, fieldPath,
				"field '%s' has invalid type '%s'", field.Name, field.Type).
				WithSuggestion("valid types are: array, boolean, decimal, entity, integer, object, string, uuid"))
		}
	}

	for p, pattern := range entity.AccessPatterns {
		patternPath := fmt.Sprintf("%s.access_patterns[%d]", path, p)
		issues = append(issues, validateAccessPattern(registry, table, pattern, seenIDs, patternPath)...)
	}

	return issues
}

func validateAccessPattern(registry *schema.Registry, table *schema.Table, pattern *schema.AccessPattern, seenIDs map[int]string, path string) []Issue {
	issues := RequiredFields(path, map[string]interface{}{
		"pattern_id":  pattern.PatternID,
		"name":        pattern.Name,
		"operation":   string(pattern.Operation),
		"return_type": pattern.ReturnType,
	}, []string{"pattern_id", "name", "operation", "return_type"})

	if pattern.Operation != "" && !schema.EntityOperations[pattern.Operation] {
		issues = append(issues, errorf(ErrInvalidOperation, path,
			"invalid operation '%s' on access pattern '%s'", pattern.Operation, pattern.Name).
			WithSuggestion("valid operations are: DeleteItem, GetItem, PutItem, Query, Scan, UpdateItem"))
	}

	// Pattern ids live in one namespace across the entire schema, shared
	// with cross-table patterns.
	if pattern.PatternID != 0 {
		if firstPath, taken := seenIDs[pattern.PatternID]; taken {
			issues = append(issues, errorf(ErrDuplicatePatternID, path,
				"pattern_id %d of '%s' is already used at %s; pattern ids are unique across the whole schema",
				pattern.PatternID, pattern.Name, firstPath).
				WithSuggestion("assign '%s' an unused pattern_id", pattern.Name))
		} else {
			seenIDs[pattern.PatternID] = path
		}
	}

	if pattern.RangeCondition != "" {
		issues = append(issues, ValidateCompleteRangeQuery(pattern, path)...)
	}

	// GSIs never support strongly consistent reads.
	if pattern.ConsistentRead != nil && *pattern.ConsistentRead {
		if pattern.IndexName != "" {
			issues = append(issues, errorf(ErrConsistentReadOnIndex, path,
				"access pattern '%s' sets consistent_read on index '%s'; GSIs do not support consistent reads",
				pattern.Name, pattern.IndexName).
				WithSuggestion("remove consistent_read or query the main table instead"))
		} else if !pattern.Operation.IsRead() {
			issues = append(issues, errorf(ErrConsistentReadOnWrite, path,
				"access pattern '%s' sets consistent_read but '%s' is not a read operation",
				pattern.Name, pattern.Operation).
				WithSuggestion("remove consistent_read; it only applies to GetItem, Query, and Scan"))
		}
	}

	if pattern.IndexName != "" && !tableHasGSI(table, pattern.IndexName) {
		issues = append(issues, errorf(ErrUnknownIndex, path,
			"access pattern '%s' references unknown index '%s' on table '%s'",
			pattern.Name, pattern.IndexName, table.Config.Name).
			WithSuggestion("declare '%s' in gsi_list or remove index_name", pattern.IndexName))
	}

	for i, param := range pattern.Parameters {
		paramPath := fmt.Sprintf("%s.parameters[%d]", path, i)
		issues = append(issues, validateParameter(registry, param, paramPath)...)
	}

	return issues
}

// validateParameter resolves entity-typed parameters against declared
// entities and cross-checks scalar parameter types against any same-named
// field anywhere in the schema.
func validateParameter(registry *schema.Registry, param *schema.Parameter, path string) []Issue {
	var issues []Issue

	if param.IsEntity() {
		if param.EntityType != "" {
			if _, _, ok := registry.EntityByName(param.EntityType); !ok {
				issues = append(issues, errorf(ErrUnknownEntityType, path,
					"parameter '%s' references unknown entity type '%s'", param.Name, param.EntityType).
					WithSuggestion("declare the entity '%s' or fix the entity_type", param.EntityType))
			}
		}
		return issues
	}

	if declared, ok := registry.FieldType(param.Name); ok && string(declared) != param.Type {
		issues = append(issues, errorf(ErrParameterTypeMismatch, path,
			"parameter '%s' has type '%s' but field '%s' is declared as '%s'",
			param.Name, param.Type, param.Name, declared).
			WithSuggestion("change the parameter type to '%s'", declared))
	}

	return issues
}

func tableHasGSI(table *schema.Table, name string) bool {
	for _, gsi := range table.GSIList {
		if gsi.Name == name {
			return true
		}
	}
	return false
}

func fieldValues(fields []*schema.Field) []interface{} {
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}
