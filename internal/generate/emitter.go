package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tuanknguyen/dynagen/internal/schema"
	stringutil "github.com/tuanknguyen/dynagen/internal/util/strings"
)

// EmitContext carries everything an emitter needs to render one entity's
// repository: the owning table, the entity, the conflict-resolved patterns,
// and the consistency flags absorbed from dropped patterns.
type EmitContext struct {
	Table              *schema.Table
	EntityName         string
	Entity             *schema.Entity
	Patterns           []*MappedPattern
	CRUDConsistentRead map[string]bool
}

// Emitter renders entity and repository source text for one language.
// Emission is a pure function of the validated mapping; no filesystem
// access happens here.
type Emitter interface {
	// EmitSupport renders the shared preamble (imports, helper types)
	// emitted once per generated file.
	EmitSupport(table *schema.Table) string
	EmitEntity(entityName string, entity *schema.Entity) (string, error)
	EmitRepository(ctx *EmitContext) (string, error)
}

// NewEmitter returns the emitter for a language.
func NewEmitter(lang *Language) (Emitter, error) {
	switch lang {
	case Python:
		return &pythonEmitter{lang: lang, types: NewTypeMapper(lang)}, nil
	case Go:
		return &goEmitter{lang: lang, types: NewTypeMapper(lang)}, nil
	default:
		return nil, fmt.Errorf("no emitter for language %q", lang.Name)
	}
}

// sortedPatterns returns the mapping records ordered by pattern id so
// regeneration from an unchanged schema produces byte-identical output.
func sortedPatterns(patterns []*MappedPattern) []*MappedPattern {
	out := make([]*MappedPattern, len(patterns))
	copy(out, patterns)
	sort.Slice(out, func(i, j int) bool { return out[i].PatternID < out[j].PatternID })
	return out
}

// keyParameters resolves an entity's key fields to typed parameters for the
// canonical get and delete methods.
func keyParameters(entity *schema.Entity, types *TypeMapper) []MappedParameter {
	var params []MappedParameter
	for _, name := range schema.KeyFields(entity) {
		fieldType := string(schema.TypeString)
		if field, ok := schema.FieldByName(entity, name); ok {
			fieldType = string(field.Type)
		}
		langType, err := types.Map(fieldType, "")
		if err != nil {
			langType = types.lang.UntypedRecord
		}
		params = append(params, MappedParameter{Name: name, Type: langType})
	}
	return params
}

// ---------------------------------------------------------------------------
// Python

type pythonEmitter struct {
	lang  *Language
	types *TypeMapper
}

func (e *pythonEmitter) EmitSupport(table *schema.Table) string {
	return fmt.Sprintf(`"""Generated repositories for table %s. DO NOT EDIT."""

from dataclasses import asdict, dataclass
from decimal import Decimal
from typing import Optional
from uuid import UUID

`, table.Config.Name)
}

func (e *pythonEmitter) EmitEntity(entityName string, entity *schema.Entity) (string, error) {
	var code strings.Builder

	className := stringutil.ToPascalCase(entityName)
	fmt.Fprintf(&code, "@dataclass\nclass %s:\n", className)
	fmt.Fprintf(&code, "    \"\"\"%s entity (entity_type: %s).\"\"\"\n\n", className, entity.EntityType)

	// Required fields first: Python dataclasses demand defaults trail.
	for _, field := range entity.Fields {
		if !field.Required {
			continue
		}
		pyType, err := e.types.Map(string(field.Type), "")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&code, "    %s: %s\n", field.Name, pyType)
	}
	for _, field := range entity.Fields {
		if field.Required {
			continue
		}
		pyType, err := e.types.Map(string(field.Type), "")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&code, "    %s: Optional[%s] = None\n", field.Name, pyType)
	}

	return code.String(), nil
}

func (e *pythonEmitter) EmitRepository(ctx *EmitContext) (string, error) {
	var code strings.Builder

	className := e.lang.RepositoryName(ctx.EntityName)
	entityClass := stringutil.ToPascalCase(ctx.EntityName)

	fmt.Fprintf(&code, "class %s:\n", className)
	fmt.Fprintf(&code, "    \"\"\"Repository for %s entities in table %s.\"\"\"\n\n",
		entityClass, ctx.Table.Config.Name)
	code.WriteString("    def __init__(self, table):\n        self._table = table\n\n")

	code.WriteString(e.emitKeyHelper(ctx))
	code.WriteString(e.emitCRUDMethods(ctx))

	for _, pattern := range sortedPatterns(ctx.Patterns) {
		code.WriteString(e.emitPatternMethod(ctx, pattern))
	}

	return code.String(), nil
}

// emitKeyHelper renders the private helper that materializes the entity's
// primary key from its key templates.
func (e *pythonEmitter) emitKeyHelper(ctx *EmitContext) string {
	var code strings.Builder
	code.WriteString("    def _key(self, **fields):\n")
	fmt.Fprintf(&code, "        key = {%q: %q.format(**fields)}\n",
		ctx.Table.Config.PartitionKey, ctx.Entity.PartitionKeyTemplate)
	if ctx.Table.Config.SortKey != "" && ctx.Entity.SortKeyTemplate != "" {
		fmt.Fprintf(&code, "        key[%q] = %q.format(**fields)\n",
			ctx.Table.Config.SortKey, ctx.Entity.SortKeyTemplate)
	}
	code.WriteString("        return key\n\n")
	return code.String()
}

func (e *pythonEmitter) emitCRUDMethods(ctx *EmitContext) string {
	var code strings.Builder

	names := CRUDMethodNames(ctx.EntityName, e.lang)
	entityClass := stringutil.ToPascalCase(ctx.EntityName)
	keys := keyParameters(ctx.Entity, e.types)
	keyArgs := parameterList(keys, ": ")
	keyKwargs := keywordArguments(keys)

	getConsistent := pythonBool(ctx.CRUDConsistentRead[ActionGet])

	fmt.Fprintf(&code, `    def %s(self, entity: %s) -> %s:
        """Create a %s item."""
        self._table.put_item(Item=asdict(entity))
        return entity

    def %s(self%s) -> Optional[%s]:
        """Fetch one %s by key."""
        response = self._table.get_item(Key=self._key(%s), ConsistentRead=%s)
        item = response.get("Item")
        return %s(**item) if item else None

    def %s(self, entity: %s) -> %s:
        """Update a %s item (full replace)."""
        self._table.put_item(Item=asdict(entity))
        return entity

    def %s(self%s) -> bool:
        """Delete one %s by key."""
        self._table.delete_item(Key=self._key(%s))
        return True

`,
		names[ActionCreate], entityClass, entityClass, entityClass,
		names[ActionGet], keyArgs, entityClass, entityClass, keyKwargs, getConsistent, entityClass,
		names[ActionUpdate], entityClass, entityClass, entityClass,
		names[ActionDelete], keyArgs, entityClass, keyKwargs)

	return code.String()
}

func (e *pythonEmitter) emitPatternMethod(ctx *EmitContext, pattern *MappedPattern) string {
	var code strings.Builder

	args := parameterList(pattern.Parameters, ": ")
	returnType := pattern.ReturnType
	if returnType == ReturnPaginatedRecords {
		returnType = "dict"
	}

	fmt.Fprintf(&code, "    def %s(self%s) -> %s:\n", pattern.MethodName, args, returnType)
	if pattern.Description != "" {
		fmt.Fprintf(&code, "        \"\"\"%s\"\"\"\n", pattern.Description)
	}

	switch pattern.Operation {
	case schema.OpGetItem:
		fmt.Fprintf(&code, "        response = self._table.get_item(Key=self._key(%s), ConsistentRead=%s)\n",
			keywordArguments(pattern.Parameters), pythonConsistent(pattern))
		code.WriteString("        return response.get(\"Item\")\n")
	case schema.OpPutItem, schema.OpUpdateItem:
		arg := "entity"
		if len(pattern.Parameters) > 0 {
			arg = pattern.Parameters[0].Name
		}
		fmt.Fprintf(&code, "        self._table.put_item(Item=asdict(%s))\n", arg)
		fmt.Fprintf(&code, "        return %s\n", arg)
	case schema.OpDeleteItem:
		fmt.Fprintf(&code, "        self._table.delete_item(Key=self._key(%s))\n",
			keywordArguments(pattern.Parameters))
		code.WriteString("        return True\n")
	case schema.OpQuery, schema.OpScan:
		verb := "query"
		if pattern.Operation == schema.OpScan {
			verb = "scan"
		}
		code.WriteString("        kwargs = {}\n")
		if pattern.IndexName != "" {
			fmt.Fprintf(&code, "        kwargs[\"IndexName\"] = %q\n", pattern.IndexName)
		} else {
			fmt.Fprintf(&code, "        kwargs[\"ConsistentRead\"] = %s\n", pythonConsistent(pattern))
		}
		fmt.Fprintf(&code, "        response = self._table.%s(**kwargs)\n", verb)
		if pattern.ReturnType == ReturnPaginatedRecords {
			code.WriteString("        return {\"items\": response.get(\"Items\", []), \"last_evaluated_key\": response.get(\"LastEvaluatedKey\")}\n")
		} else {
			code.WriteString("        return response.get(\"Items\", [])\n")
		}
	default:
		code.WriteString("        raise NotImplementedError\n")
	}

	code.WriteString("\n")
	return code.String()
}

func pythonConsistent(pattern *MappedPattern) string {
	if pattern.ConsistentRead != nil {
		return pythonBool(*pattern.ConsistentRead)
	}
	return pythonBool(false)
}

func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ---------------------------------------------------------------------------
// Go

type goEmitter struct {
	lang  *Language
	types *TypeMapper
}

func (e *goEmitter) EmitSupport(table *schema.Table) string {
	// Only import uuid when some entity field will reference it, so the
	// generated file always compiles.
	uuidImport := ""
	for _, entity := range table.Entities {
		for _, field := range entity.Fields {
			if field.Type == schema.TypeUUID {
				uuidImport = "\n\t\"github.com/google/uuid\""
			}
		}
	}

	return fmt.Sprintf(`// Code generated for table %s. DO NOT EDIT.
package repositories

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"%s
)

// PaginatedRecords is a page of untyped records plus the cursor for the
// next page.
type PaginatedRecords struct {
	Items            []map[string]types.AttributeValue
	LastEvaluatedKey map[string]types.AttributeValue
}

func newPaginatedRecords(items []map[string]types.AttributeValue, cursor map[string]types.AttributeValue) *PaginatedRecords {
	return &PaginatedRecords{Items: items, LastEvaluatedKey: cursor}
}

`, table.Config.Name, uuidImport)
}

// templateFormat converts a key template like "ORDER#{order_id}" into a
// fmt format string plus the placeholder order.
func templateFormat(template string) (string, []string) {
	fields := schema.TemplateFields(template)
	format := template
	for _, f := range fields {
		format = strings.Replace(format, "{"+f+"}", "%v", 1)
	}
	return format, fields
}

func (e *goEmitter) EmitEntity(entityName string, entity *schema.Entity) (string, error) {
	var code strings.Builder

	structName := stringutil.ToPascalCase(entityName)
	fmt.Fprintf(&code, "// %s is the %s entity (entity_type: %s).\n", structName, structName, entity.EntityType)
	fmt.Fprintf(&code, "type %s struct {\n", structName)
	for _, field := range entity.Fields {
		goType, err := e.types.Map(string(field.Type), "")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&code, "\t%s %s `dynamodbav:%q`\n",
			stringutil.ToPascalCase(field.Name), goType, field.Name)
	}
	code.WriteString("}\n")

	return code.String(), nil
}

func (e *goEmitter) EmitRepository(ctx *EmitContext) (string, error) {
	var code strings.Builder

	repoName := e.lang.RepositoryName(ctx.EntityName)
	entityType := stringutil.ToPascalCase(ctx.EntityName)

	fmt.Fprintf(&code, `// %s provides typed access to %s items in table %s.
type %s struct {
	client *dynamodb.Client
	table  string
}

// New%s creates a repository over the given DynamoDB client.
func New%s(client *dynamodb.Client, table string) *%s {
	return &%s{client: client, table: table}
}

`, repoName, entityType, ctx.Table.Config.Name, repoName,
		repoName, repoName, repoName, repoName)

	code.WriteString(e.emitKeyHelper(ctx, repoName, entityType))
	code.WriteString(e.emitCRUDMethods(ctx, repoName, entityType))

	for _, pattern := range sortedPatterns(ctx.Patterns) {
		code.WriteString(e.emitPatternMethod(ctx, repoName, entityType, pattern))
	}

	return code.String(), nil
}

// emitKeyHelper renders the private helper that materializes the entity's
// primary key from its key templates.
func (e *goEmitter) emitKeyHelper(ctx *EmitContext, repoName, entityType string) string {
	var code strings.Builder

	keys := keyParameters(ctx.Entity, e.types)
	pkFormat, pkFields := templateFormat(ctx.Entity.PartitionKeyTemplate)

	fmt.Fprintf(&code, "// key materializes the primary key for one %s.\n", entityType)
	fmt.Fprintf(&code, "func (r *%s) key(%s) map[string]types.AttributeValue {\n",
		repoName, strings.TrimPrefix(goParameterList(keys), ", "))
	fmt.Fprintf(&code, "\tkey := map[string]types.AttributeValue{\n")
	fmt.Fprintf(&code, "\t\t%q: &types.AttributeValueMemberS{Value: fmt.Sprintf(%q%s)},\n",
		ctx.Table.Config.PartitionKey, pkFormat, sprintfArgs(pkFields))
	if ctx.Table.Config.SortKey != "" && ctx.Entity.SortKeyTemplate != "" {
		skFormat, skFields := templateFormat(ctx.Entity.SortKeyTemplate)
		fmt.Fprintf(&code, "\t\t%q: &types.AttributeValueMemberS{Value: fmt.Sprintf(%q%s)},\n",
			ctx.Table.Config.SortKey, skFormat, sprintfArgs(skFields))
	}
	code.WriteString("\t}\n\treturn key\n}\n\n")

	return code.String()
}

func sprintfArgs(fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(", ")
		b.WriteString(goArgName(f))
	}
	return b.String()
}

func (e *goEmitter) emitCRUDMethods(ctx *EmitContext, repoName, entityType string) string {
	var code strings.Builder

	names := CRUDMethodNames(ctx.EntityName, e.lang)
	keys := keyParameters(ctx.Entity, e.types)
	keyArgs := goParameterList(keys)

	fmt.Fprintf(&code, `// %s writes a new %s item.
func (r *%s) %s(ctx context.Context, entity *%s) error {
	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &r.table, Item: item})
	return err
}

// %s fetches one %s by key.
func (r *%s) %s(ctx context.Context%s) (*%s, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.table,
		Key:            r.key(%s),
		ConsistentRead: aws.Bool(%t),
	})
	if err != nil || out.Item == nil {
		return nil, err
	}
	var entity %s
	if err := attributevalue.UnmarshalMap(out.Item, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// %s replaces an existing %s item.
func (r *%s) %s(ctx context.Context, entity *%s) error {
	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &r.table, Item: item})
	return err
}

// %s removes one %s by key.
func (r *%s) %s(ctx context.Context%s) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &r.table, Key: r.key(%s)})
	return err
}

`,
		names[ActionCreate], entityType, repoName, names[ActionCreate], entityType,
		names[ActionGet], entityType, repoName, names[ActionGet], keyArgs, entityType,
		argumentNames(keys), ctx.CRUDConsistentRead[ActionGet], entityType,
		names[ActionUpdate], entityType, repoName, names[ActionUpdate], entityType,
		names[ActionDelete], entityType, repoName, names[ActionDelete], keyArgs, argumentNames(keys))

	return code.String()
}

func (e *goEmitter) emitPatternMethod(ctx *EmitContext, repoName, entityType string, pattern *MappedPattern) string {
	var code strings.Builder

	args := goParameterList(pattern.Parameters)
	returnType := pattern.ReturnType
	if returnType == ReturnPaginatedRecords {
		returnType = "*PaginatedRecords"
	}

	if pattern.Description != "" {
		fmt.Fprintf(&code, "// %s %s\n", pattern.MethodName, pattern.Description)
	}

	switch pattern.Operation {
	case schema.OpQuery, schema.OpScan:
		verb := "Query"
		if pattern.Operation == schema.OpScan {
			verb = "Scan"
		}
		if pattern.ReturnType != ReturnPaginatedRecords {
			returnType = "[]" + entityType
		}
		fmt.Fprintf(&code, "func (r *%s) %s(ctx context.Context%s) (%s, error) {\n",
			repoName, pattern.MethodName, args, returnType)
		fmt.Fprintf(&code, "\tinput := &dynamodb.%sInput{TableName: &r.table}\n", verb)
		if pattern.IndexName != "" {
			fmt.Fprintf(&code, "\tinput.IndexName = aws.String(%q)\n", pattern.IndexName)
		} else {
			fmt.Fprintf(&code, "\tinput.ConsistentRead = aws.Bool(%t)\n",
				pattern.ConsistentRead != nil && *pattern.ConsistentRead)
		}
		fmt.Fprintf(&code, "\tout, err := r.client.%s(ctx, input)\n\tif err != nil {\n\t\treturn nil, err\n\t}\n", verb)
		if pattern.ReturnType == ReturnPaginatedRecords {
			code.WriteString("\treturn newPaginatedRecords(out.Items, out.LastEvaluatedKey), nil\n")
		} else {
			fmt.Fprintf(&code, "\tvar entities []%s\n\tif err := attributevalue.UnmarshalListOfMaps(out.Items, &entities); err != nil {\n\t\treturn nil, err\n\t}\n\treturn entities, nil\n", entityType)
		}
		code.WriteString("}\n\n")
	case schema.OpGetItem:
		fmt.Fprintf(&code, "func (r *%s) %s(ctx context.Context%s) (*%s, error) {\n",
			repoName, pattern.MethodName, args, entityType)
		fmt.Fprintf(&code, "\tout, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{\n\t\tTableName:      &r.table,\n\t\tKey:            r.key(%s),\n\t\tConsistentRead: aws.Bool(%t),\n\t})\n",
			argumentNames(pattern.Parameters), pattern.ConsistentRead != nil && *pattern.ConsistentRead)
		code.WriteString("\tif err != nil || out.Item == nil {\n\t\treturn nil, err\n\t}\n")
		fmt.Fprintf(&code, "\tvar entity %s\n\tif err := attributevalue.UnmarshalMap(out.Item, &entity); err != nil {\n\t\treturn nil, err\n\t}\n\treturn &entity, nil\n}\n\n", entityType)
	case schema.OpPutItem, schema.OpUpdateItem:
		fmt.Fprintf(&code, "func (r *%s) %s(ctx context.Context, entity *%s) error {\n", repoName, pattern.MethodName, entityType)
		code.WriteString("\titem, err := attributevalue.MarshalMap(entity)\n\tif err != nil {\n\t\treturn err\n\t}\n")
		code.WriteString("\t_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &r.table, Item: item})\n\treturn err\n}\n\n")
	case schema.OpDeleteItem:
		fmt.Fprintf(&code, "func (r *%s) %s(ctx context.Context%s) error {\n", repoName, pattern.MethodName, args)
		fmt.Fprintf(&code, "\t_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: &r.table, Key: r.key(%s)})\n\treturn err\n}\n\n",
			argumentNames(pattern.Parameters))
	}

	return code.String()
}

// ---------------------------------------------------------------------------
// shared rendering helpers

// parameterList renders ", name<sep>type" pairs for Python signatures.
func parameterList(params []MappedParameter, sep string) string {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(", ")
		b.WriteString(p.Name)
		b.WriteString(sep)
		b.WriteString(p.Type)
	}
	return b.String()
}

// goParameterList renders ", name type" pairs with camelCase names.
func goParameterList(params []MappedParameter) string {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(", ")
		b.WriteString(goArgName(p.Name))
		b.WriteString(" ")
		b.WriteString(p.Type)
	}
	return b.String()
}

// keywordArguments renders "a=a, b=b" keyword forwarding for Python.
func keywordArguments(params []MappedParameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name + "=" + p.Name
	}
	return strings.Join(names, ", ")
}

// argumentNames renders a plain comma separated argument list.
func argumentNames(params []MappedParameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = goArgName(p.Name)
	}
	return strings.Join(names, ", ")
}

func goArgName(name string) string {
	pascal := stringutil.ToPascalCase(name)
	if pascal == "" {
		return name
	}
	return strings.ToLower(pascal[0:1]) + pascal[1:]
}
