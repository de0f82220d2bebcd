package validate

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

func boolPtr(b bool) *bool { return &b }

// ordersSchema is the canonical end-to-end document: table Orders with a
// single Order entity and an INCLUDE-projected status index.
func ordersSchema() *schema.Schema {
	return &schema.Schema{
		Tables: []*schema.Table{
			{
				Config: schema.TableConfig{Name: "Orders", PartitionKey: "order_id"},
				GSIList: []*schema.GSI{
					{
						Name:               "StatusIndex",
						PartitionKey:       "status",
						Projection:         schema.ProjectionInclude,
						IncludedAttributes: []string{"status"},
					},
				},
				Entities: map[string]*schema.Entity{
					"Order": {
						EntityType:           "ORDER",
						PartitionKeyTemplate: "ORDER#{order_id}",
						Fields: []*schema.Field{
							{Name: "order_id", Type: schema.TypeString, Required: true},
							{Name: "status", Type: schema.TypeString, Required: true},
						},
					},
				},
			},
		},
	}
}

func TestSchema_EndToEnd(t *testing.T) {
	result := Schema(ordersSchema())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarnRequiredFieldNotProjected, result.Warnings[0].Code)
	assert.Contains(t, result.Warnings[0].Message, "'order_id'")
}

func TestSchema_Idempotent(t *testing.T) {
	doc := ordersSchema()

	first := Schema(doc)
	second := Schema(doc)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-validating the same document gave a different result:\n%v\n%v", first, second)
	}
	assert.Empty(t, second.Errors)
}

func TestSchema_DuplicatePatternID(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(doc *schema.Schema)
	}{
		{
			name: "within one entity",
			mutate: func(doc *schema.Schema) {
				entity := doc.Tables[0].Entities["Order"]
				entity.AccessPatterns = append(entity.AccessPatterns,
					queryPattern(1, "orders_by_status"),
					queryPattern(1, "orders_by_note"),
				)
			},
		},
		{
			name: "between entity and cross-table pattern",
			mutate: func(doc *schema.Schema) {
				entity := doc.Tables[0].Entities["Order"]
				entity.AccessPatterns = append(entity.AccessPatterns, queryPattern(1, "orders_by_status"))
				doc.Tables[0].CrossTablePatterns = []*schema.CrossTablePattern{
					{
						PatternID: 1,
						Name:      "place_order",
						Operation: schema.OpTransactWrite,
						EntitiesInvolved: []*schema.EntityInvolvement{
							{Table: "Orders", Entity: "Order", Action: schema.ActionPut},
						},
						ReturnType: "boolean",
					},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ordersSchema()
			tt.mutate(doc)

			result := Schema(doc)
			var duplicates int
			for _, issue := range result.Errors {
				if issue.Code == ErrDuplicatePatternID {
					duplicates++
				}
			}
			assert.Equal(t, 1, duplicates, "a shared id must produce exactly one duplicate error")
		})
	}
}

func queryPattern(id int, name string) *schema.AccessPattern {
	return &schema.AccessPattern{
		PatternID:  id,
		Name:       name,
		Operation:  schema.OpQuery,
		Parameters: []*schema.Parameter{{Name: "status", Type: "string"}},
		ReturnType: "mixed_data",
	}
}

func TestSchema_ConsistentReadRules(t *testing.T) {
	t.Run("consistent read on an index", func(t *testing.T) {
		doc := ordersSchema()
		pattern := queryPattern(1, "orders_by_status")
		pattern.IndexName = "StatusIndex"
		pattern.ConsistentRead = boolPtr(true)
		doc.Tables[0].Entities["Order"].AccessPatterns = []*schema.AccessPattern{pattern}

		result := Schema(doc)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrConsistentReadOnIndex, result.Errors[0].Code)
	})

	t.Run("consistent read on a write", func(t *testing.T) {
		doc := ordersSchema()
		pattern := &schema.AccessPattern{
			PatternID:      1,
			Name:           "save_order",
			Operation:      schema.OpPutItem,
			Parameters:     []*schema.Parameter{{Name: "order", Type: "entity", EntityType: "Order"}},
			ReturnType:     "object",
			ConsistentRead: boolPtr(true),
		}
		doc.Tables[0].Entities["Order"].AccessPatterns = []*schema.AccessPattern{pattern}

		result := Schema(doc)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrConsistentReadOnWrite, result.Errors[0].Code)
	})

	t.Run("consistent read on a main table read is legal", func(t *testing.T) {
		doc := ordersSchema()
		pattern := &schema.AccessPattern{
			PatternID:      1,
			Name:           "get_order_strict",
			Operation:      schema.OpGetItem,
			Parameters:     []*schema.Parameter{{Name: "order_id", Type: "string"}},
			ReturnType:     "object",
			ConsistentRead: boolPtr(true),
		}
		doc.Tables[0].Entities["Order"].AccessPatterns = []*schema.AccessPattern{pattern}

		result := Schema(doc)
		assert.True(t, result.IsValid, "errors: %v", result.Errors)
	})
}

func TestSchema_ReferenceChecks(t *testing.T) {
	t.Run("unknown index", func(t *testing.T) {
		doc := ordersSchema()
		pattern := queryPattern(1, "orders_by_status")
		pattern.IndexName = "GhostIndex"
		doc.Tables[0].Entities["Order"].AccessPatterns = []*schema.AccessPattern{pattern}

		result := Schema(doc)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrUnknownIndex, result.Errors[0].Code)
	})

	t.Run("unknown entity type on parameter", func(t *testing.T) {
		doc := ordersSchema()
		pattern := &schema.AccessPattern{
			PatternID:  1,
			Name:       "save_invoice",
			Operation:  schema.OpPutItem,
			Parameters: []*schema.Parameter{{Name: "invoice", Type: "entity", EntityType: "Invoice"}},
			ReturnType: "object",
		}
		doc.Tables[0].Entities["Order"].AccessPatterns = []*schema.AccessPattern{pattern}

		result := Schema(doc)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrUnknownEntityType, result.Errors[0].Code)
	})

	t.Run("parameter type mismatch with declared field", func(t *testing.T) {
		doc := ordersSchema()
		pattern := &schema.AccessPattern{
			PatternID:  1,
			Name:       "orders_by_status",
			Operation:  schema.OpQuery,
			Parameters: []*schema.Parameter{{Name: "status", Type: "integer"}},
			ReturnType: "mixed_data",
		}
		doc.Tables[0].Entities["Order"].AccessPatterns = []*schema.AccessPattern{pattern}

		result := Schema(doc)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrParameterTypeMismatch, result.Errors[0].Code)
	})
}

func TestSchema_MissingRequiredFields(t *testing.T) {
	doc := &schema.Schema{
		Tables: []*schema.Table{
			{
				Config: schema.TableConfig{},
				Entities: map[string]*schema.Entity{
					"Order": {},
				},
			},
		},
	}

	result := Schema(doc)
	assert.False(t, result.IsValid)

	// table_config is missing two fields, the entity three; every gap
	// surfaces in the same pass.
	var missing int
	for _, issue := range result.Errors {
		if issue.Code == ErrMissingRequiredField {
			missing++
		}
	}
	assert.Equal(t, 5, missing)
}
