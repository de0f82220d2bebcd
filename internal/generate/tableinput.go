package generate

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tuanknguyen/dynagen/internal/schema"
)

// BuildCreateTableInput converts a validated table definition into the AWS
// SDK request that provisions it, so a schema drives table creation as well
// as code. Key attributes default to string; a declared field with the same
// name and a numeric type switches the attribute to N.
func BuildCreateTableInput(table *schema.Table, registry *schema.Registry) *dynamodb.CreateTableInput {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(table.Config.Name),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(table.Config.PartitionKey), KeyType: types.KeyTypeHash},
		},
	}

	attrs := map[string]types.ScalarAttributeType{
		table.Config.PartitionKey: attributeType(registry, table.Config.PartitionKey),
	}

	if table.Config.SortKey != "" {
		input.KeySchema = append(input.KeySchema, types.KeySchemaElement{
			AttributeName: aws.String(table.Config.SortKey),
			KeyType:       types.KeyTypeRange,
		})
		attrs[table.Config.SortKey] = attributeType(registry, table.Config.SortKey)
	}

	for _, gsi := range table.GSIList {
		index := types.GlobalSecondaryIndex{
			IndexName: aws.String(gsi.Name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(gsi.PartitionKey), KeyType: types.KeyTypeHash},
			},
			Projection: buildProjection(gsi),
		}
		attrs[gsi.PartitionKey] = attributeType(registry, gsi.PartitionKey)

		if gsi.SortKey != "" {
			index.KeySchema = append(index.KeySchema, types.KeySchemaElement{
				AttributeName: aws.String(gsi.SortKey),
				KeyType:       types.KeyTypeRange,
			})
			attrs[gsi.SortKey] = attributeType(registry, gsi.SortKey)
		}

		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, index)
	}

	// Deterministic attribute order: sorted by name.
	for _, name := range sortedKeys(attrs) {
		input.AttributeDefinitions = append(input.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: attrs[name],
		})
	}

	return input
}

func buildProjection(gsi *schema.GSI) *types.Projection {
	projection := &types.Projection{}
	switch gsi.EffectiveProjection() {
	case schema.ProjectionKeysOnly:
		projection.ProjectionType = types.ProjectionTypeKeysOnly
	case schema.ProjectionInclude:
		projection.ProjectionType = types.ProjectionTypeInclude
		projection.NonKeyAttributes = append([]string(nil), gsi.IncludedAttributes...)
	default:
		projection.ProjectionType = types.ProjectionTypeAll
	}
	return projection
}

func attributeType(registry *schema.Registry, name string) types.ScalarAttributeType {
	if fieldType, ok := registry.FieldType(name); ok {
		switch fieldType {
		case schema.TypeInteger, schema.TypeDecimal:
			return types.ScalarAttributeTypeN
		}
	}
	return types.ScalarAttributeTypeS
}

func sortedKeys(m map[string]types.ScalarAttributeType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
