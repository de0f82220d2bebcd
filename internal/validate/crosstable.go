package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

// crossTableReturnTypes is the closed set of return type tags legal on a
// cross-table pattern.
var crossTableReturnTypes = map[string]bool{
	"boolean": true,
	"object":  true,
	"array":   true,
}

// CrossTableValidator validates cross-table transactional patterns. Table
// and entity references resolve through the registry's prebuilt lookup maps
// rather than re-scanning the schema per reference. The validator shares a
// pattern id reservation set with the rest of the run and records each id it
// sees, so later patterns observe earlier reservations.
type CrossTableValidator struct {
	registry *schema.Registry
	seenIDs  map[int]string
}

// NewCrossTableValidator creates a validator over the given registry.
// seenIDs is the run-global pattern id set, keyed by id with the path of the
// first pattern that claimed it.
func NewCrossTableValidator(registry *schema.Registry, seenIDs map[int]string) *CrossTableValidator {
	return &CrossTableValidator{
		registry: registry,
		seenIDs:  seenIDs,
	}
}

// Validate checks one cross-table pattern and returns every issue found.
func (v *CrossTableValidator) Validate(pattern *schema.CrossTablePattern, path string) []Issue {
	issues := RequiredFields(path, map[string]interface{}{
		"pattern_id":        pattern.PatternID,
		"name":              pattern.Name,
		"operation":         string(pattern.Operation),
		"entities_involved": involvedValues(pattern.EntitiesInvolved),
		"return_type":       pattern.ReturnType,
	}, []string{"pattern_id", "name", "operation", "entities_involved", "return_type"})

	operationKnown := schema.CrossTableOperations[pattern.Operation]
	if pattern.Operation != "" && !operationKnown {
		issues = append(issues, errorf(ErrInvalidOperation, path,
			"invalid cross-table operation '%s'", pattern.Operation).
			WithSuggestion("valid operations are: %s, %s", schema.OpTransactWrite, schema.OpTransactGet))
	}

	issues = append(issues, v.reserveID(pattern.PatternID, pattern.Name, path)...)

	for i, involved := range pattern.EntitiesInvolved {
		involvedPath := fmt.Sprintf("%s.entities_involved[%d]", path, i)
		issues = append(issues, v.validateInvolvement(pattern, involved, operationKnown, involvedPath)...)
	}

	issues = append(issues, v.validateParameters(pattern, path)...)

	if pattern.ReturnType != "" && !crossTableReturnTypes[pattern.ReturnType] {
		issues = append(issues, errorf(ErrInvalidReturnType, path,
			"invalid return_type '%s' for cross-table pattern '%s'", pattern.ReturnType, pattern.Name).
			WithSuggestion("valid return types are: array, boolean, object"))
	}

	return issues
}

// reserveID claims a pattern id in the run-global set, reporting a duplicate
// when another pattern anywhere in the schema already holds it.
func (v *CrossTableValidator) reserveID(id int, name, path string) []Issue {
	if id == 0 {
		return nil
	}
	if firstPath, taken := v.seenIDs[id]; taken {
		return []Issue{errorf(ErrDuplicatePatternID, path,
			"pattern_id %d of '%s' is already used at %s; pattern ids are unique across the whole schema",
			id, name, firstPath).
			WithSuggestion("assign '%s' an unused pattern_id", name)}
	}
	v.seenIDs[id] = path
	return nil
}

func (v *CrossTableValidator) validateInvolvement(pattern *schema.CrossTablePattern, involved *schema.EntityInvolvement, operationKnown bool, path string) []Issue {
	issues := RequiredFields(path, map[string]interface{}{
		"table":  involved.Table,
		"entity": involved.Entity,
		"action": string(involved.Action),
	}, []string{"table", "entity", "action"})

	if involved.Table != "" {
		if _, ok := v.registry.Table(involved.Table); !ok {
			issues = append(issues, errorf(ErrUnknownTable, path,
				"references unknown table '%s'", involved.Table).
				WithSuggestion("valid tables are: %s", joinNames(v.registry.TableNames())))
		} else if involved.Entity != "" {
			if _, ok := v.registry.Entity(involved.Table, involved.Entity); !ok {
				issues = append(issues, errorf(ErrUnknownEntity, path,
					"references unknown entity '%s' in table '%s'", involved.Entity, involved.Table).
					WithSuggestion("entities of '%s' are: %s", involved.Table,
						joinNames(v.registry.EntityNames(involved.Table))))
			}
		}
	}

	// Action legality is only meaningful once the operation itself is valid.
	if operationKnown && involved.Action != "" {
		if !schema.LegalActions[pattern.Operation][involved.Action] {
			issues = append(issues, errorf(ErrIllegalAction, path,
				"action '%s' is not legal for operation '%s'", involved.Action, pattern.Operation).
				WithSuggestion("legal actions for %s are: %s", pattern.Operation,
					legalActionList(pattern.Operation)))
		}
	}

	return issues
}

// validateParameters enforces parameter name uniqueness within the pattern
// and cross-checks scalar parameter types against any same-named field
// declared elsewhere in the schema.
func (v *CrossTableValidator) validateParameters(pattern *schema.CrossTablePattern, path string) []Issue {
	var issues []Issue

	seen := make(map[string]bool, len(pattern.Parameters))
	for i, param := range pattern.Parameters {
		paramPath := fmt.Sprintf("%s.parameters[%d]", path, i)

		if seen[param.Name] {
			issues = append(issues, errorf(ErrDuplicateParameterName, paramPath,
				"duplicate parameter name '%s' in pattern '%s'", param.Name, pattern.Name).
				WithSuggestion("rename one of the '%s' parameters", param.Name))
		}
		seen[param.Name] = true

		if param.IsEntity() {
			continue
		}
		if declared, ok := v.registry.FieldType(param.Name); ok && string(declared) != param.Type {
			issues = append(issues, errorf(ErrParameterTypeMismatch, paramPath,
				"parameter '%s' has type '%s' but field '%s' is declared as '%s'",
				param.Name, param.Type, param.Name, declared).
				WithSuggestion("change the parameter type to '%s'", declared))
		}
	}

	return issues
}

// involvedValues exposes the involvement list to RequiredFields as a generic
// slice so an empty list reads as missing.
func involvedValues(involved []*schema.EntityInvolvement) []interface{} {
	out := make([]interface{}, len(involved))
	for i, item := range involved {
		out[i] = item
	}
	return out
}

func legalActionList(op schema.Operation) string {
	actions := make([]string, 0, len(schema.LegalActions[op]))
	for action := range schema.LegalActions[op] {
		actions = append(actions, string(action))
	}
	sort.Strings(actions)
	return joinNames(actions)
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
