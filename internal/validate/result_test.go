package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

func TestFromDecodeError_WrongTypedField(t *testing.T) {
	// A non-string table name fails typed decoding; the failure must read
	// like any other validation issue, not a raw parse error.
	_, err := schema.Load([]byte(`{"tables": [{"table_config": {"table_name": 42}}]}`))
	require.Error(t, err)

	result := FromDecodeError(err)
	require.NotNil(t, result)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)

	issue := result.Errors[0]
	assert.Equal(t, ErrWrongType, issue.Code)
	assert.Contains(t, issue.Path, "table_name")
	assert.Contains(t, issue.Message, "expected string")
	assert.NotEmpty(t, issue.Suggestion)
}

func TestFromDecodeError_NonTypeErrorsPassThrough(t *testing.T) {
	_, err := schema.Load([]byte(`{not json`))
	require.Error(t, err)
	assert.Nil(t, FromDecodeError(err), "syntax errors carry no field detail")

	assert.Nil(t, FromDecodeError(errors.New("read failed")))
}
