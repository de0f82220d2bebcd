package validate

import (
	"fmt"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

// ValidateGSI checks one GSI's projection configuration against one entity's
// declared fields. A missing projection defaults to ALL.
//
// INCLUDE requires a non-empty included_attributes whose entries all name
// declared entity fields; ALL and KEYS_ONLY forbid included_attributes
// entirely. A required entity field absent from an INCLUDE projection raises
// a non-fatal warning: reads through the index would silently drop it, but
// that is a data-shape concern, not a schema defect.
func ValidateGSI(gsi *schema.GSI, entity *schema.Entity, path string) []Issue {
	var issues []Issue

	projection := gsi.EffectiveProjection()

	switch projection {
	case schema.ProjectionInclude:
		if len(gsi.IncludedAttributes) == 0 {
			issues = append(issues, errorf(ErrProjectionMissingAttrs, path,
				"GSI '%s' uses INCLUDE projection but declares no included_attributes", gsi.Name).
				WithSuggestion("list the attributes to project, e.g. \"included_attributes\": [\"status\"]"))
			break
		}

		for _, attr := range gsi.IncludedAttributes {
			if !schema.HasField(entity, attr) {
				issues = append(issues, errorf(ErrUnknownField, path,
					"GSI '%s' includes attribute '%s' which is not a declared field of entity '%s'",
					gsi.Name, attr, entity.EntityType).
					WithSuggestion("declare '%s' as a field of '%s' or remove it from included_attributes",
						attr, entity.EntityType))
			}
		}

		included := make(map[string]bool, len(gsi.IncludedAttributes))
		for _, attr := range gsi.IncludedAttributes {
			included[attr] = true
		}
		for _, field := range entity.Fields {
			if field.Required && !included[field.Name] {
				issues = append(issues, warnf(WarnRequiredFieldNotProjected, path,
					"required field '%s' of entity '%s' is not projected into GSI '%s'",
					field.Name, entity.EntityType, gsi.Name).
					WithSuggestion("add '%s' to included_attributes if reads through '%s' need it",
						field.Name, gsi.Name))
			}
		}

	case schema.ProjectionAll, schema.ProjectionKeysOnly:
		if len(gsi.IncludedAttributes) > 0 {
			issues = append(issues, errorf(ErrProjectionForbidsAttrs, path,
				"GSI '%s' declares included_attributes but its projection is %s; included_attributes is only allowed for INCLUDE",
				gsi.Name, projection).
				WithSuggestion("remove included_attributes or change the projection to INCLUDE"))
		}

	default:
		issues = append(issues, errorf(ErrWrongType, path,
			"GSI '%s' has invalid projection '%s'", gsi.Name, gsi.Projection).
			WithSuggestion("valid projections are: %s", fmt.Sprintf("%s, %s, %s",
				schema.ProjectionAll, schema.ProjectionKeysOnly, schema.ProjectionInclude)))
	}

	return issues
}
