package validate

// Issue code constants organized by category
// V001-V099: structural errors
// V100-V199: reference errors
// V200-V299: semantic conflict errors
// W001-W099: non-fatal warnings

const (
	// Structural errors (V001-V099)
	ErrMissingRequiredField = "V001"
	ErrWrongType            = "V002"
	ErrInvalidFieldType     = "V003"
	ErrInvalidOperation     = "V004"
	ErrInvalidReturnType    = "V005"

	// Reference errors (V100-V199)
	ErrUnknownTable      = "V100"
	ErrUnknownEntity     = "V101"
	ErrUnknownField      = "V102"
	ErrUnknownIndex      = "V103"
	ErrUnknownEntityType = "V104"

	// Semantic conflict errors (V200-V299)
	ErrDuplicatePatternID      = "V200"
	ErrProjectionMissingAttrs  = "V201"
	ErrProjectionForbidsAttrs  = "V202"
	ErrInvalidRangeCondition   = "V203"
	ErrRangeConditionType      = "V204"
	ErrParameterCount          = "V205"
	ErrMissingParameters       = "V206"
	ErrOperationIncompatible   = "V207"
	ErrConsistentReadOnIndex   = "V208"
	ErrConsistentReadOnWrite   = "V209"
	ErrIllegalAction           = "V210"
	ErrParameterTypeMismatch   = "V211"
	ErrDuplicateParameterName  = "V212"

	// Warnings (W001-W099)
	WarnRequiredFieldNotProjected = "W001"
)
