package generate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

func TestMapPattern_ReadCarriesConsistentRead(t *testing.T) {
	mapper := NewMapper(Python)

	// Omitted in the schema: the mapping still carries the key, as false.
	mapped, err := mapper.MapPattern("User", &schema.AccessPattern{
		PatternID:  1,
		Name:       "get_user_profile",
		Operation:  schema.OpGetItem,
		Parameters: []*schema.Parameter{{Name: "user_id", Type: "string"}},
		ReturnType: "object",
	})
	require.NoError(t, err)
	require.NotNil(t, mapped.ConsistentRead)
	assert.False(t, *mapped.ConsistentRead)

	raw, err := json.Marshal(mapped)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"consistent_read":false`)
}

func TestMapPattern_WriteOmitsConsistentRead(t *testing.T) {
	mapper := NewMapper(Python)

	mapped, err := mapper.MapPattern("User", &schema.AccessPattern{
		PatternID:  2,
		Name:       "save_user",
		Operation:  schema.OpPutItem,
		Parameters: []*schema.Parameter{{Name: "user", Type: "entity", EntityType: "User"}},
		ReturnType: "object",
	})
	require.NoError(t, err)
	assert.Nil(t, mapped.ConsistentRead)

	// Structurally absent, not false.
	raw, err := json.Marshal(mapped)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "consistent_read")
}

func TestMapPattern_MixedDataPagination(t *testing.T) {
	mapper := NewMapper(Python)

	tests := []struct {
		op   schema.Operation
		want string
	}{
		{schema.OpQuery, ReturnPaginatedRecords},
		{schema.OpScan, ReturnPaginatedRecords},
		// Any other operation goes through the type mapper.
		{schema.OpGetItem, "dict"},
	}

	for _, tt := range tests {
		mapped, err := mapper.MapPattern("User", &schema.AccessPattern{
			PatternID:  3,
			Name:       "list_users",
			Operation:  tt.op,
			ReturnType: ReturnMixedData,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, mapped.ReturnType, "operation %s", tt.op)
	}
}

func TestMapPattern_ResolvesTypesAndNames(t *testing.T) {
	pattern := &schema.AccessPattern{
		PatternID:   4,
		Description: "Orders placed by a single user",
		Name:        "get_orders_for_user",
		Operation:   schema.OpQuery,
		IndexName:   "UserIndex",
		Parameters: []*schema.Parameter{
			{Name: "user_id", Type: "string"},
			{Name: "limit", Type: "integer"},
			{Name: "ref", Type: "entity", EntityType: "Order"},
		},
		RangeCondition: schema.RangeBeginsWith,
		ReturnType:     "array",
	}

	mapped, err := NewMapper(Python).MapPattern("Order", pattern)
	require.NoError(t, err)
	assert.Equal(t, "get_orders_for_user", mapped.MethodName)
	assert.Equal(t, "OrderRepository", mapped.Repository)
	assert.Equal(t, "Order", mapped.Entity)
	assert.Equal(t, "UserIndex", mapped.IndexName)
	assert.Equal(t, schema.RangeBeginsWith, mapped.RangeCondition)
	require.Len(t, mapped.Parameters, 3)
	assert.Equal(t, "str", mapped.Parameters[0].Type)
	assert.Equal(t, "int", mapped.Parameters[1].Type)
	assert.Equal(t, "Order", mapped.Parameters[2].Type)
	assert.Equal(t, "list", mapped.ReturnType)

	goMapped, err := NewMapper(Go).MapPattern("Order", pattern)
	require.NoError(t, err)
	assert.Equal(t, "GetOrdersForUser", goMapped.MethodName)
	assert.Equal(t, "string", goMapped.Parameters[0].Type)
	assert.Equal(t, "int64", goMapped.Parameters[1].Type)
}

func TestMapPattern_UnknownTypeTag(t *testing.T) {
	_, err := NewMapper(Python).MapPattern("User", &schema.AccessPattern{
		PatternID:  5,
		Name:       "broken",
		Operation:  schema.OpGetItem,
		Parameters: []*schema.Parameter{{Name: "blob", Type: "binary"}},
		ReturnType: "object",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob")
}

func TestGenerateMapping_KeyedByPatternID(t *testing.T) {
	patterns := []*schema.AccessPattern{
		{PatternID: 7, Name: "get_user_orders", Operation: schema.OpQuery, ReturnType: "array"},
		{PatternID: 12, Name: "archive_user", Operation: schema.OpUpdateItem, ReturnType: "boolean"},
	}

	mapping, err := NewMapper(Python).GenerateMapping("User", patterns)
	require.NoError(t, err)
	require.Len(t, mapping, 2)
	assert.Contains(t, mapping, "7")
	assert.Contains(t, mapping, "12")
	assert.Equal(t, "get_user_orders", mapping["7"].MethodName)
	assert.Nil(t, mapping["12"].ConsistentRead)
}

func TestMapCrossTablePattern(t *testing.T) {
	mapped, err := NewMapper(Python).MapCrossTablePattern(&schema.CrossTablePattern{
		PatternID:  20,
		Name:       "checkout_cart",
		Operation:  schema.OpTransactWrite,
		Parameters: []*schema.Parameter{{Name: "cart_id", Type: "string"}},
		ReturnType: "boolean",
	})
	require.NoError(t, err)
	assert.Equal(t, "TransactionRepository", mapped.Repository)
	assert.Empty(t, mapped.Entity)
	assert.Equal(t, "checkout_cart", mapped.MethodName)
	assert.Equal(t, "bool", mapped.ReturnType)
}
