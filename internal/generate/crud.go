package generate

import (
	"fmt"
	"strings"

	"github.com/tuanknguyen/dynagen/internal/schema"
	stringutil "github.com/tuanknguyen/dynagen/internal/util/strings"
)

// CRUD action keys, used to index canonical method names and signatures.
const (
	ActionCreate = "create"
	ActionGet    = "get"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// CRUDMethodNames synthesizes the four canonical method names for an entity
// by substituting the entity name into the language's naming templates.
func CRUDMethodNames(entityName string, lang *Language) map[string]string {
	return map[string]string{
		ActionCreate: ExpandNameTemplate(lang.Naming.Create, entityName),
		ActionGet:    ExpandNameTemplate(lang.Naming.Get, entityName),
		ActionUpdate: ExpandNameTemplate(lang.Naming.Update, entityName),
		ActionDelete: ExpandNameTemplate(lang.Naming.Delete, entityName),
	}
}

// crudSignatures derives the canonical parameter type signature of each CRUD
// action: create and update take the entity itself, get and delete take the
// entity's key fields.
func crudSignatures(entity *schema.Entity, keyFields []string) map[string][]string {
	keyTypes := make([]string, 0, len(keyFields))
	for _, name := range keyFields {
		if field, ok := schema.FieldByName(entity, name); ok {
			keyTypes = append(keyTypes, string(field.Type))
		} else {
			// Key template fields without a declared field default to string.
			keyTypes = append(keyTypes, string(schema.TypeString))
		}
	}
	return map[string][]string{
		ActionCreate: {string(schema.TypeEntity)},
		ActionUpdate: {string(schema.TypeEntity)},
		ActionGet:    keyTypes,
		ActionDelete: keyTypes,
	}
}

// parameterSignature is the ordered list of a pattern's parameter types.
func parameterSignature(pattern *schema.AccessPattern) []string {
	sig := make([]string, len(pattern.Parameters))
	for i, p := range pattern.Parameters {
		sig[i] = p.Type
	}
	return sig
}

func signaturesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// namesCollide compares method names across naming conventions by
// normalizing both sides to snake_case.
func namesCollide(a, b string) bool {
	return stringutil.ToSnakeCase(a) == stringutil.ToSnakeCase(b)
}

// IsSemanticallyEquivalentToCRUD reports whether a declared pattern is a
// disguised CRUD method: its operation and parameter shape match canonical
// CRUD behavior even though its name differs. It returns the CRUD action the
// pattern duplicates.
//
// A GetItem whose only non-entity parameters are exactly the entity's key
// fields is the canonical get; a single-entity-parameter PutItem or
// UpdateItem is the canonical create or update; a key-only DeleteItem is the
// canonical delete.
func IsSemanticallyEquivalentToCRUD(pattern *schema.AccessPattern, keyFields []string) (string, bool) {
	entityParams := pattern.EntityParameters()
	scalarParams := pattern.ScalarParameters()

	switch pattern.Operation {
	case schema.OpGetItem:
		if len(keyFields) > 0 && len(entityParams) == 0 && matchesKeyFields(scalarParams, keyFields) {
			return ActionGet, true
		}
	case schema.OpPutItem:
		if len(entityParams) == 1 && len(scalarParams) == 0 {
			return ActionCreate, true
		}
	case schema.OpUpdateItem:
		if len(entityParams) == 1 && len(scalarParams) == 0 {
			return ActionUpdate, true
		}
	case schema.OpDeleteItem:
		if len(keyFields) > 0 && len(entityParams) == 0 && matchesKeyFields(scalarParams, keyFields) {
			return ActionDelete, true
		}
	}
	return "", false
}

// matchesKeyFields reports whether the parameter names are exactly the key
// field set, in any order.
func matchesKeyFields(params []*schema.Parameter, keyFields []string) bool {
	if len(params) != len(keyFields) {
		return false
	}
	keys := make(map[string]bool, len(keyFields))
	for _, k := range keyFields {
		keys[k] = true
	}
	for _, p := range params {
		if !keys[p.Name] {
			return false
		}
	}
	return true
}

// HasSignatureConflict reports a true duplicate: the pattern is safe to drop
// outright only when both its name and its parameter type signature equal
// the canonical CRUD method's.
func HasSignatureConflict(pattern *schema.AccessPattern, crudName string, crudSig []string) bool {
	return namesCollide(pattern.Name, crudName) &&
		signaturesEqual(parameterSignature(pattern), crudSig)
}

// GenerateRenamedMethodName resolves a genuine same-name different-signature
// conflict deterministically. Rule precedence is fixed so regeneration from
// an unchanged schema always produces byte-identical output:
//
//  1. multiple entity-typed parameters        -> _with_refs
//  2. Query/Scan colliding with the get name  -> _list
//  3. extra scalar parameters present         -> _with_<p1>_and_<p2>
//  4. fallback                                -> _pattern_<id>
func GenerateRenamedMethodName(pattern *schema.AccessPattern, getName string, keyFields []string) string {
	if len(pattern.EntityParameters()) > 1 {
		return pattern.Name + "_with_refs"
	}

	if (pattern.Operation == schema.OpQuery || pattern.Operation == schema.OpScan) &&
		namesCollide(pattern.Name, getName) {
		return pattern.Name + "_list"
	}

	if extras := extraScalarParameters(pattern, keyFields); len(extras) > 0 {
		if len(extras) == 1 {
			return fmt.Sprintf("%s_with_%s", pattern.Name, extras[0])
		}
		return fmt.Sprintf("%s_with_%s_and_%s", pattern.Name, extras[0], extras[1])
	}

	return fmt.Sprintf("%s_pattern_%d", pattern.Name, pattern.PatternID)
}

// extraScalarParameters returns the names of scalar parameters beyond the
// entity's key fields, capped at the first two.
func extraScalarParameters(pattern *schema.AccessPattern, keyFields []string) []string {
	keys := make(map[string]bool, len(keyFields))
	for _, k := range keyFields {
		keys[k] = true
	}
	var extras []string
	for _, p := range pattern.ScalarParameters() {
		if keys[p.Name] {
			continue
		}
		extras = append(extras, p.Name)
		if len(extras) == 2 {
			break
		}
	}
	return extras
}

// DroppedPattern records a pattern removed from the generated surface and
// why, so callers can report what a schema author should not expect to see.
type DroppedPattern struct {
	Pattern *schema.AccessPattern
	Action  string
	Reason  string
}

// FilterResult is the outcome of reconciling an entity's declared patterns
// with its auto-derived CRUD methods.
type FilterResult struct {
	// Patterns are the surviving patterns, renamed where needed. Entries
	// are copies; the input document is never mutated.
	Patterns []*schema.AccessPattern
	// CRUDConsistentRead carries consistent_read flags OR-merged from
	// absorbed patterns onto the retained canonical CRUD action, so a loss
	// of strong consistency never happens silently.
	CRUDConsistentRead map[string]bool
	// Dropped lists the patterns absorbed into CRUD methods or discarded
	// as true duplicates.
	Dropped []DroppedPattern
}

// FilterConflictingPatterns reconciles declared access patterns with the
// canonical CRUD surface. Per pattern, in fixed order: PutItem patterns are
// always kept, renamed to the put name when they collide with the create
// method and through the ordinary rules otherwise; remaining patterns
// equivalent to a CRUD method are dropped with consistency propagated;
// name-colliding true signature duplicates are dropped; name-colliding
// different-signature patterns are renamed and kept. Survivors that still
// share a name after reconciliation are renamed in declaration order so
// every generated method name is unique.
//
// When the entity declares no key templates the resolver degrades to the
// legacy mode: any pattern whose bare name collides with a CRUD name is
// dropped without a signature check.
func FilterConflictingPatterns(entityName string, entity *schema.Entity, lang *Language) *FilterResult {
	crudNames := CRUDMethodNames(entityName, lang)
	keyFields := schema.KeyFields(entity)
	signatures := crudSignatures(entity, keyFields)

	result := &FilterResult{
		CRUDConsistentRead: make(map[string]bool),
	}
	used := make(map[string]bool)
	keep := func(pattern *schema.AccessPattern) {
		ensureUniqueName(pattern, used, crudNames[ActionGet], keyFields)
		result.Patterns = append(result.Patterns, pattern)
	}

	for _, original := range entity.AccessPatterns {
		pattern := clonePattern(original)

		if pattern.Operation == schema.OpPutItem {
			if namesCollide(pattern.Name, crudNames[ActionCreate]) {
				renamePutPattern(pattern, entityName, lang)
			} else if _, collides := collidingAction(pattern.Name, crudNames); collides {
				pattern.Name = GenerateRenamedMethodName(pattern, crudNames[ActionGet], keyFields)
			}
			keep(pattern)
			continue
		}

		// Legacy degraded mode: without key templates there is nothing to
		// compare signatures against, so bare name collisions drop the
		// pattern outright.
		if len(keyFields) == 0 {
			if action, collides := collidingAction(pattern.Name, crudNames); collides {
				result.Dropped = append(result.Dropped, DroppedPattern{
					Pattern: pattern,
					Action:  action,
					Reason:  fmt.Sprintf("name collides with CRUD method '%s' (no key configuration to compare signatures)", crudNames[action]),
				})
				continue
			}
			keep(pattern)
			continue
		}

		if action, equivalent := IsSemanticallyEquivalentToCRUD(pattern, keyFields); equivalent {
			if pattern.ConsistentRead != nil && *pattern.ConsistentRead {
				result.CRUDConsistentRead[action] = true
			}
			result.Dropped = append(result.Dropped, DroppedPattern{
				Pattern: pattern,
				Action:  action,
				Reason:  fmt.Sprintf("semantically equivalent to CRUD method '%s'", crudNames[action]),
			})
			continue
		}

		if action, collides := collidingAction(pattern.Name, crudNames); collides {
			if signaturesEqual(parameterSignature(pattern), signatures[action]) {
				result.Dropped = append(result.Dropped, DroppedPattern{
					Pattern: pattern,
					Action:  action,
					Reason:  fmt.Sprintf("true duplicate of CRUD method '%s'", crudNames[action]),
				})
				continue
			}
			pattern.Name = GenerateRenamedMethodName(pattern, crudNames[ActionGet], keyFields)
		}

		keep(pattern)
	}

	return result
}

// ensureUniqueName disambiguates survivors whose names still collide with an
// earlier kept pattern, reapplying the rename rules and falling back to the
// pattern id. Processing follows declaration order, so regeneration from an
// unchanged schema yields the same names.
func ensureUniqueName(pattern *schema.AccessPattern, used map[string]bool, getName string, keyFields []string) {
	key := stringutil.ToSnakeCase(pattern.Name)
	if used[key] {
		pattern.Name = GenerateRenamedMethodName(pattern, getName, keyFields)
		key = stringutil.ToSnakeCase(pattern.Name)
	}
	if used[key] {
		pattern.Name = fmt.Sprintf("%s_pattern_%d", pattern.Name, pattern.PatternID)
		key = stringutil.ToSnakeCase(pattern.Name)
	}
	used[key] = true
}

// renamePutPattern applies the PutItem special case: a name collision with
// the create method always renames to the put name, reflecting upsert
// semantics, regardless of parameter signature. Descriptions beginning
// "Create " are rewritten to match. Collisions with the other CRUD names go
// through the ordinary rename rules instead.
func renamePutPattern(pattern *schema.AccessPattern, entityName string, lang *Language) {
	pattern.Name = ExpandNameTemplate(lang.Naming.Put, entityName)
	if strings.HasPrefix(pattern.Description, "Create ") {
		pattern.Description = "Put (upsert) " + strings.TrimPrefix(pattern.Description, "Create ")
	}
}

// collidingAction returns the CRUD action whose method name the pattern name
// collides with.
func collidingAction(name string, crudNames map[string]string) (string, bool) {
	// Fixed probe order keeps renaming deterministic.
	for _, action := range []string{ActionCreate, ActionGet, ActionUpdate, ActionDelete} {
		if namesCollide(name, crudNames[action]) {
			return action, true
		}
	}
	return "", false
}

func clonePattern(p *schema.AccessPattern) *schema.AccessPattern {
	clone := *p
	clone.Parameters = make([]*schema.Parameter, len(p.Parameters))
	for i, param := range p.Parameters {
		paramCopy := *param
		clone.Parameters[i] = &paramCopy
	}
	if p.ConsistentRead != nil {
		value := *p.ConsistentRead
		clone.ConsistentRead = &value
	}
	return &clone
}
