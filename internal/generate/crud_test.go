package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

func boolPtr(b bool) *bool { return &b }

func userEntity(patterns ...*schema.AccessPattern) *schema.Entity {
	return &schema.Entity{
		EntityType:           "USER",
		PartitionKeyTemplate: "USER#{user_id}",
		Fields: []*schema.Field{
			{Name: "user_id", Type: schema.TypeString, Required: true},
			{Name: "email", Type: schema.TypeString, Required: true},
			{Name: "age", Type: schema.TypeInteger},
		},
		AccessPatterns: patterns,
	}
}

func TestCRUDMethodNames(t *testing.T) {
	tests := []struct {
		lang   *Language
		action string
		want   string
	}{
		{Python, ActionCreate, "create_user"},
		{Python, ActionGet, "get_user"},
		{Python, ActionUpdate, "update_user"},
		{Python, ActionDelete, "delete_user"},
		{Go, ActionCreate, "CreateUser"},
		{Go, ActionGet, "GetUser"},
	}

	for _, tt := range tests {
		names := CRUDMethodNames("User", tt.lang)
		if names[tt.action] != tt.want {
			t.Errorf("%s %s = %q, want %q", tt.lang.Name, tt.action, names[tt.action], tt.want)
		}
	}
}

func TestIsSemanticallyEquivalentToCRUD(t *testing.T) {
	keyFields := []string{"user_id"}

	tests := []struct {
		name       string
		pattern    *schema.AccessPattern
		wantAction string
		wantOK     bool
	}{
		{
			name: "key-only GetItem is the canonical get",
			pattern: &schema.AccessPattern{
				Name:       "get_user_by_id",
				Operation:  schema.OpGetItem,
				Parameters: []*schema.Parameter{{Name: "user_id", Type: "string"}},
			},
			wantAction: ActionGet,
			wantOK:     true,
		},
		{
			name: "GetItem with extra parameter is not",
			pattern: &schema.AccessPattern{
				Name:      "get_user_by_id_and_email",
				Operation: schema.OpGetItem,
				Parameters: []*schema.Parameter{
					{Name: "user_id", Type: "string"},
					{Name: "email", Type: "string"},
				},
			},
		},
		{
			name: "single entity PutItem is the canonical create",
			pattern: &schema.AccessPattern{
				Name:       "save_user",
				Operation:  schema.OpPutItem,
				Parameters: []*schema.Parameter{{Name: "user", Type: "entity", EntityType: "User"}},
			},
			wantAction: ActionCreate,
			wantOK:     true,
		},
		{
			name: "single entity UpdateItem is the canonical update",
			pattern: &schema.AccessPattern{
				Name:       "modify_user",
				Operation:  schema.OpUpdateItem,
				Parameters: []*schema.Parameter{{Name: "user", Type: "entity", EntityType: "User"}},
			},
			wantAction: ActionUpdate,
			wantOK:     true,
		},
		{
			name: "key-only DeleteItem is the canonical delete",
			pattern: &schema.AccessPattern{
				Name:       "remove_user",
				Operation:  schema.OpDeleteItem,
				Parameters: []*schema.Parameter{{Name: "user_id", Type: "string"}},
			},
			wantAction: ActionDelete,
			wantOK:     true,
		},
		{
			name: "Query never matches",
			pattern: &schema.AccessPattern{
				Name:       "users_by_id",
				Operation:  schema.OpQuery,
				Parameters: []*schema.Parameter{{Name: "user_id", Type: "string"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, ok := IsSemanticallyEquivalentToCRUD(tt.pattern, keyFields)
			if ok != tt.wantOK || action != tt.wantAction {
				t.Errorf("got (%q, %v), want (%q, %v)", action, ok, tt.wantAction, tt.wantOK)
			}
		})
	}
}

func TestFilterConflictingPatterns_AbsorbsDisguisedGet(t *testing.T) {
	entity := userEntity(&schema.AccessPattern{
		PatternID:      1,
		Name:           "get_user_by_id",
		Operation:      schema.OpGetItem,
		Parameters:     []*schema.Parameter{{Name: "user_id", Type: "string"}},
		ReturnType:     "object",
		ConsistentRead: boolPtr(true),
	})

	result := FilterConflictingPatterns("User", entity, Python)

	assert.Empty(t, result.Patterns, "disguised get must be absorbed")
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, ActionGet, result.Dropped[0].Action)
	// Strong consistency survives onto the canonical method.
	assert.True(t, result.CRUDConsistentRead[ActionGet])
}

func TestFilterConflictingPatterns_PutItemRename(t *testing.T) {
	entity := userEntity(&schema.AccessPattern{
		PatternID:   2,
		Name:        "create_user",
		Description: "Create a user from a signup form",
		Operation:   schema.OpPutItem,
		Parameters:  []*schema.Parameter{{Name: "user", Type: "entity", EntityType: "User"}},
		ReturnType:  "object",
	})

	result := FilterConflictingPatterns("User", entity, Python)

	require.Len(t, result.Patterns, 1)
	kept := result.Patterns[0]
	assert.Equal(t, "put_user", kept.Name)
	assert.Equal(t, "Put (upsert) a user from a signup form", kept.Description)
	assert.Empty(t, result.Dropped, "PutItem patterns are always kept")

	// The input document is never mutated.
	assert.Equal(t, "create_user", entity.AccessPatterns[0].Name)
}

func TestFilterConflictingPatterns_PutItemWithoutCollisionKeepsName(t *testing.T) {
	entity := userEntity(&schema.AccessPattern{
		PatternID:  2,
		Name:       "import_user",
		Operation:  schema.OpPutItem,
		Parameters: []*schema.Parameter{{Name: "user", Type: "entity", EntityType: "User"}},
		ReturnType: "object",
	})

	result := FilterConflictingPatterns("User", entity, Python)

	require.Len(t, result.Patterns, 1)
	assert.Equal(t, "import_user", result.Patterns[0].Name)
}

func TestFilterConflictingPatterns_PutItemNonCreateCollision(t *testing.T) {
	// The put rename is reserved for the create collision; a PutItem that
	// shadows another CRUD name goes through the ordinary rename rules.
	entity := userEntity(&schema.AccessPattern{
		PatternID:   9,
		Name:        "delete_user",
		Description: "Archive a user by overwriting its record",
		Operation:   schema.OpPutItem,
		Parameters:  []*schema.Parameter{{Name: "user", Type: "entity", EntityType: "User"}},
		ReturnType:  "object",
	})

	result := FilterConflictingPatterns("User", entity, Python)

	require.Len(t, result.Patterns, 1)
	kept := result.Patterns[0]
	assert.Equal(t, "delete_user_pattern_9", kept.Name)
	assert.Equal(t, "Archive a user by overwriting its record", kept.Description)
	assert.Empty(t, result.Dropped, "PutItem patterns are always kept")
}

func TestFilterConflictingPatterns_TrueDuplicateDropped(t *testing.T) {
	// Same name as the canonical get, same signature: safe to drop.
	entity := userEntity(&schema.AccessPattern{
		PatternID:  3,
		Name:       "get_user",
		Operation:  schema.OpQuery,
		Parameters: []*schema.Parameter{{Name: "user_id", Type: "string"}},
		ReturnType: "object",
	})

	result := FilterConflictingPatterns("User", entity, Python)

	assert.Empty(t, result.Patterns)
	require.Len(t, result.Dropped, 1)
	assert.Contains(t, result.Dropped[0].Reason, "true duplicate")
}

func TestFilterConflictingPatterns_RenamesGenuineConflicts(t *testing.T) {
	tests := []struct {
		name     string
		pattern  *schema.AccessPattern
		wantName string
	}{
		{
			name: "multiple entity parameters",
			pattern: &schema.AccessPattern{
				PatternID: 4,
				Name:      "update_user",
				Operation: schema.OpUpdateItem,
				Parameters: []*schema.Parameter{
					{Name: "user", Type: "entity", EntityType: "User"},
					{Name: "audit", Type: "entity", EntityType: "User"},
				},
				ReturnType: "object",
			},
			wantName: "update_user_with_refs",
		},
		{
			name: "query colliding with the get name",
			pattern: &schema.AccessPattern{
				PatternID: 5,
				Name:      "get_user",
				Operation: schema.OpQuery,
				Parameters: []*schema.Parameter{
					{Name: "user_id", Type: "string"},
					{Name: "email", Type: "string"},
				},
				ReturnType: "mixed_data",
			},
			wantName: "get_user_list",
		},
		{
			name: "extra scalar parameters",
			pattern: &schema.AccessPattern{
				PatternID: 6,
				Name:      "delete_user",
				Operation: schema.OpDeleteItem,
				Parameters: []*schema.Parameter{
					{Name: "user_id", Type: "string"},
					{Name: "email", Type: "string"},
					{Name: "age", Type: "integer"},
				},
				ReturnType: "boolean",
			},
			wantName: "delete_user_with_email_and_age",
		},
		{
			name: "fallback to pattern id",
			pattern: &schema.AccessPattern{
				PatternID:  7,
				Name:       "get_user",
				Operation:  schema.OpGetItem,
				Parameters: []*schema.Parameter{{Name: "user", Type: "entity", EntityType: "User"}},
				ReturnType: "object",
			},
			wantName: "get_user_pattern_7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity := userEntity(tt.pattern)
			result := FilterConflictingPatterns("User", entity, Python)

			require.Len(t, result.Patterns, 1)
			assert.Equal(t, tt.wantName, result.Patterns[0].Name)
		})
	}
}

func TestFilterConflictingPatterns_TwinQueriesSurviveDistinctly(t *testing.T) {
	// Two identically named Query patterns, one on the main table and one
	// on a GSI, with different signatures: both survive under distinct
	// deterministic names.
	entity := userEntity(
		&schema.AccessPattern{
			PatternID:  8,
			Name:       "find_users",
			Operation:  schema.OpQuery,
			Parameters: []*schema.Parameter{{Name: "user_id", Type: "string"}, {Name: "limit", Type: "integer"}},
			ReturnType: "mixed_data",
		},
		&schema.AccessPattern{
			PatternID: 9,
			Name:      "find_users",
			Operation: schema.OpQuery,
			IndexName: "EmailIndex",
			Parameters: []*schema.Parameter{
				{Name: "email", Type: "string"},
			},
			ReturnType: "mixed_data",
		},
	)

	result := FilterConflictingPatterns("User", entity, Python)

	require.Len(t, result.Patterns, 2)
	assert.Equal(t, "find_users", result.Patterns[0].Name)
	assert.Equal(t, "find_users_with_email", result.Patterns[1].Name)
	assert.Empty(t, result.Dropped)

	// Regeneration is deterministic.
	again := FilterConflictingPatterns("User", entity, Python)
	assert.Equal(t, "find_users", again.Patterns[0].Name)
	assert.Equal(t, "find_users_with_email", again.Patterns[1].Name)
}

func TestFilterConflictingPatterns_LegacyFallback(t *testing.T) {
	// Without key templates there is no signature to compare: any name
	// collision drops the pattern outright, even an intentionally
	// distinct one.
	entity := &schema.Entity{
		EntityType: "USER",
		Fields: []*schema.Field{
			{Name: "user_id", Type: schema.TypeString, Required: true},
		},
		AccessPatterns: []*schema.AccessPattern{
			{
				PatternID: 10,
				Name:      "get_user",
				Operation: schema.OpQuery,
				Parameters: []*schema.Parameter{
					{Name: "email", Type: "string"},
				},
				ReturnType: "mixed_data",
			},
			{
				PatternID:  11,
				Name:       "find_user_by_email",
				Operation:  schema.OpQuery,
				Parameters: []*schema.Parameter{{Name: "email", Type: "string"}},
				ReturnType: "mixed_data",
			},
		},
	}

	result := FilterConflictingPatterns("User", entity, Python)

	require.Len(t, result.Patterns, 1)
	assert.Equal(t, "find_user_by_email", result.Patterns[0].Name)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, "get_user", result.Dropped[0].Pattern.Name)
}
