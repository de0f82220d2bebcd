// Package schema defines the in-memory document model for a DynamoDB
// repository schema: tables, global secondary indexes, entities, fields,
// and the access patterns that drive generated repository methods.
package schema

// Operation identifies a DynamoDB operation an access pattern performs.
type Operation string

const (
	OpGetItem    Operation = "GetItem"
	OpPutItem    Operation = "PutItem"
	OpUpdateItem Operation = "UpdateItem"
	OpDeleteItem Operation = "DeleteItem"
	OpQuery      Operation = "Query"
	OpScan       Operation = "Scan"

	OpTransactWrite Operation = "TransactWrite"
	OpTransactGet   Operation = "TransactGet"
)

// EntityOperations lists the operations legal on an entity access pattern.
var EntityOperations = map[Operation]bool{
	OpGetItem:    true,
	OpPutItem:    true,
	OpUpdateItem: true,
	OpDeleteItem: true,
	OpQuery:      true,
	OpScan:       true,
}

// CrossTableOperations lists the operations legal on a cross-table pattern.
var CrossTableOperations = map[Operation]bool{
	OpTransactWrite: true,
	OpTransactGet:   true,
}

// IsRead reports whether the operation reads from the table. Only read
// operations carry a consistency flag in generated mappings.
func (op Operation) IsRead() bool {
	return op == OpGetItem || op == OpQuery || op == OpScan
}

// Action identifies an entity's role inside a cross-table transaction.
type Action string

const (
	ActionPut            Action = "Put"
	ActionUpdate         Action = "Update"
	ActionDelete         Action = "Delete"
	ActionConditionCheck Action = "ConditionCheck"
	ActionGet            Action = "Get"
)

// LegalActions maps each transactional operation to its allowed actions.
// Modeled as an explicit lookup table so validation stays exhaustive and
// adding an operation is a localized change.
var LegalActions = map[Operation]map[Action]bool{
	OpTransactWrite: {
		ActionPut:            true,
		ActionUpdate:         true,
		ActionDelete:         true,
		ActionConditionCheck: true,
	},
	OpTransactGet: {
		ActionGet: true,
	},
}

// FieldType enumerates the declarable field types.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeDecimal FieldType = "decimal"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
	TypeUUID    FieldType = "uuid"
	TypeEntity  FieldType = "entity"
)

// FieldTypes is the closed set of legal field type tags.
var FieldTypes = map[FieldType]bool{
	TypeString:  true,
	TypeInteger: true,
	TypeDecimal: true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
	TypeUUID:    true,
	TypeEntity:  true,
}

// ProjectionType enumerates GSI projection kinds.
type ProjectionType string

const (
	ProjectionAll      ProjectionType = "ALL"
	ProjectionKeysOnly ProjectionType = "KEYS_ONLY"
	ProjectionInclude  ProjectionType = "INCLUDE"
)

// RangeCondition enumerates sort-key conditions legal on Query patterns.
type RangeCondition string

const (
	RangeBeginsWith RangeCondition = "begins_with"
	RangeBetween    RangeCondition = "between"
	RangeGT         RangeCondition = ">"
	RangeLT         RangeCondition = "<"
	RangeGTE        RangeCondition = ">="
	RangeLTE        RangeCondition = "<="
)

// RangeConditions is the closed set of legal range condition literals.
var RangeConditions = map[RangeCondition]bool{
	RangeBeginsWith: true,
	RangeBetween:    true,
	RangeGT:         true,
	RangeLT:         true,
	RangeGTE:        true,
	RangeLTE:        true,
}

// Schema is the root of a parsed schema document.
type Schema struct {
	Tables []*Table `json:"tables"`
}

// Table describes one DynamoDB table, its indexes, and the entities it holds.
type Table struct {
	Config             TableConfig          `json:"table_config"`
	GSIList            []*GSI               `json:"gsi_list,omitempty"`
	Entities           map[string]*Entity   `json:"entities"`
	CrossTablePatterns []*CrossTablePattern `json:"cross_table_access_patterns,omitempty"`
}

// TableConfig holds the table name and primary key attribute names.
type TableConfig struct {
	Name         string `json:"name"`
	PartitionKey string `json:"partition_key"`
	SortKey      string `json:"sort_key,omitempty"`
}

// GSI describes one global secondary index.
type GSI struct {
	Name               string         `json:"name"`
	PartitionKey       string         `json:"partition_key"`
	SortKey            string         `json:"sort_key,omitempty"`
	Projection         ProjectionType `json:"projection,omitempty"`
	IncludedAttributes []string       `json:"included_attributes,omitempty"`
}

// EffectiveProjection returns the projection type, defaulting to ALL when
// the schema omits it.
func (g *GSI) EffectiveProjection() ProjectionType {
	if g.Projection == "" {
		return ProjectionAll
	}
	return g.Projection
}

// Entity describes one entity type stored in a table, including its key
// templates (string templates with {field} placeholders) and access patterns.
type Entity struct {
	EntityType           string                 `json:"entity_type"`
	PartitionKeyTemplate string                 `json:"partition_key_template"`
	SortKeyTemplate      string                 `json:"sort_key_template,omitempty"`
	Fields               []*Field               `json:"fields"`
	GSIMappings          map[string]*GSIMapping `json:"gsi_mappings,omitempty"`
	AccessPatterns       []*AccessPattern       `json:"access_patterns,omitempty"`
}

// GSIMapping describes how an entity projects its keys onto a GSI.
type GSIMapping struct {
	PartitionKeyTemplate string `json:"partition_key_template"`
	SortKeyTemplate      string `json:"sort_key_template,omitempty"`
}

// Field describes one declared entity attribute.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
}

// Parameter describes one ordered access pattern parameter.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// EntityType names the target entity when Type is "entity".
	EntityType string `json:"entity_type,omitempty"`
}

// IsEntity reports whether the parameter carries a whole entity value.
func (p *Parameter) IsEntity() bool {
	return FieldType(p.Type) == TypeEntity
}

// AccessPattern is one declared read or write operation on a single entity.
type AccessPattern struct {
	PatternID      int            `json:"pattern_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Operation      Operation      `json:"operation"`
	Parameters     []*Parameter   `json:"parameters,omitempty"`
	ReturnType     string         `json:"return_type"`
	IndexName      string         `json:"index_name,omitempty"`
	RangeCondition RangeCondition `json:"range_condition,omitempty"`
	ConsistentRead *bool          `json:"consistent_read,omitempty"`
}

// EntityParameters returns the parameters of type "entity".
func (p *AccessPattern) EntityParameters() []*Parameter {
	var out []*Parameter
	for _, param := range p.Parameters {
		if param.IsEntity() {
			out = append(out, param)
		}
	}
	return out
}

// ScalarParameters returns the parameters that are not of type "entity".
func (p *AccessPattern) ScalarParameters() []*Parameter {
	var out []*Parameter
	for _, param := range p.Parameters {
		if !param.IsEntity() {
			out = append(out, param)
		}
	}
	return out
}

// CrossTablePattern is an atomic multi-item transactional operation spanning
// one or more entities, possibly across tables. Its pattern_id shares the
// global namespace with entity-level access patterns.
type CrossTablePattern struct {
	PatternID        int                  `json:"pattern_id"`
	Name             string               `json:"name"`
	Description      string               `json:"description,omitempty"`
	Operation        Operation            `json:"operation"`
	EntitiesInvolved []*EntityInvolvement `json:"entities_involved"`
	Parameters       []*Parameter         `json:"parameters,omitempty"`
	ReturnType       string               `json:"return_type"`
}

// EntityInvolvement names one entity taking part in a cross-table pattern.
type EntityInvolvement struct {
	Table  string `json:"table"`
	Entity string `json:"entity"`
	Action Action `json:"action"`
}
