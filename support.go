package subgraph

import (
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
)

const (
	blockChangedFilter   = "BlockChangedFilter"
	blockType            = "_Block_"
	metaType             = "_Meta_"
	subgraphErrorPolicy  = "_SubgraphErrorPolicy_"
	orderDirection       = "OrderDirection"
	metaField            = "_meta"
	defaultErrorPolicy   = "deny"
	queryTypeName        = "Query"
	blockHeightHash      = "hash"
	blockHeightNumber    = "number"
	blockHeightNumberGte = "number_gte"
)

// BlockHeight is the block constraint input of query fields.
const BlockHeight = "Block_height"

// DefaultPageSize is the default of `first` on collection fields.
const DefaultPageSize = 100

// BlockHeightFields are the mutually exclusive selectors of Block_height.
var BlockHeightFields = []string{blockHeightHash, blockHeightNumber, blockHeightNumberGte}

func field(name, description string, t *ast.Type) *ast.FieldDefinition {
	return &ast.FieldDefinition{Name: name, Description: description, Type: t, Position: position}
}

func enumValue(name, description string) *ast.EnumValueDefinition {
	return &ast.EnumValueDefinition{Name: name, Description: description, Position: position}
}

// supportDefinitions are the types every subgraph query root refers to.
func supportDefinitions() ast.DefinitionList {
	return ast.DefinitionList{
		{
			Kind: ast.InputObject,
			Name: blockChangedFilter,
			Fields: ast.FieldList{
				field("number_gte", "", ast.NonNullNamedType("Int", position)),
			},
			Position: position,
		},
		{
			Kind: ast.InputObject,
			Name: BlockHeight,
			Fields: ast.FieldList{
				field(blockHeightHash, "", ast.NamedType("Bytes", position)),
				field(blockHeightNumber, "", ast.NamedType("Int", position)),
				field(blockHeightNumberGte, "", ast.NamedType("Int", position)),
			},
			Position: position,
		},
		{
			Kind:        ast.Enum,
			Name:        orderDirection,
			Description: "Defines the order direction, either ascending or descending",
			EnumValues: ast.EnumValueList{
				enumValue("asc", ""),
				enumValue("desc", ""),
			},
			Position: position,
		},
		{
			Kind: ast.Object,
			Name: blockType,
			Fields: ast.FieldList{
				field("hash", "The hash of the block", ast.NamedType("Bytes", position)),
				field("number", "The block number", ast.NonNullNamedType("Int", position)),
				field("timestamp", "Integer representation of the timestamp stored in blocks for the chain", ast.NamedType("Int", position)),
				field("parentHash", "The hash of the parent block", ast.NamedType("Bytes", position)),
			},
			Position: position,
		},
		{
			Kind:        ast.Object,
			Name:        metaType,
			Description: "The type for the top-level _meta field",
			Fields: ast.FieldList{
				field("block", "Information about a specific subgraph block. The hash of the block will be null if the _meta field has a block constraint that asks for a block number. It will be filled if the _meta field has no block constraint and therefore asks for the latest block", ast.NonNullNamedType(blockType, position)),
				field("deployment", "The deployment ID", ast.NonNullNamedType("String", position)),
				field("hasIndexingErrors", "If `true`, the subgraph encountered indexing errors at some past block", ast.NonNullNamedType("Boolean", position)),
			},
			Position: position,
		},
		{
			Kind: ast.Enum,
			Name: subgraphErrorPolicy,
			EnumValues: ast.EnumValueList{
				enumValue("allow", "Data will be returned even if the subgraph has indexing errors"),
				enumValue("deny", "If the subgraph has indexing errors, data will be omitted. The default."),
			},
			Position: position,
		},
	}
}

func argument(name, description string, t *ast.Type, defaultValue *ast.Value) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{
		Name:         name,
		Description:  description,
		Type:         t,
		DefaultValue: defaultValue,
		Position:     position,
	}
}

func blockArgument() *ast.ArgumentDefinition {
	return argument("block", "The block at which the query should be executed. Can either be a `{ hash: Bytes }` value containing a block hash, a `{ number: Int }` containing the block number, or a `{ number_gte: Int }` containing the minimum block number. In the case of `number_gte`, the query will be executed on the latest block only if the subgraph has progressed to or past the minimum block number. Defaults to the latest block when omitted.",
		ast.NamedType(BlockHeight, position), nil)
}

func errorPolicyArgument() *ast.ArgumentDefinition {
	return argument("subgraphError", "Set to `allow` to receive data even if the subgraph has skipped over errors while syncing.",
		ast.NamedType(subgraphErrorPolicy, position),
		&ast.Value{Raw: defaultErrorPolicy, Kind: ast.EnumValue, Position: position})
}

func intValue(n int) *ast.Value {
	return &ast.Value{Raw: strconv.Itoa(n), Kind: ast.IntValue, Position: position}
}

// singularField is `<singular>(id: ID!, block, subgraphError): <Entity>`.
func singularField(entity, singular string) *ast.FieldDefinition {
	return &ast.FieldDefinition{
		Name: singular,
		Arguments: ast.ArgumentDefinitionList{
			argument("id", "", ast.NonNullNamedType("ID", position), nil),
			blockArgument(),
			errorPolicyArgument(),
		},
		Type:     ast.NamedType(entity, position),
		Position: position,
	}
}

// pluralField is the paginated, filtered and ordered collection field.
func pluralField(entity, plural string, defaultFirst int) *ast.FieldDefinition {
	return &ast.FieldDefinition{
		Name: plural,
		Arguments: ast.ArgumentDefinitionList{
			argument("skip", "", ast.NamedType("Int", position), intValue(0)),
			argument("first", "", ast.NamedType("Int", position), intValue(defaultFirst)),
			argument("orderBy", "", ast.NamedType(orderByName(entity), position), nil),
			argument("orderDirection", "", ast.NamedType(orderDirection, position), nil),
			argument("where", "", ast.NamedType(filterName(entity), position), nil),
			blockArgument(),
			errorPolicyArgument(),
		},
		Type:     ast.NonNullListType(ast.NonNullNamedType(entity, position), position),
		Position: position,
	}
}

func metaQueryField() *ast.FieldDefinition {
	return &ast.FieldDefinition{
		Name:        metaField,
		Description: "Access to subgraph metadata",
		Arguments: ast.ArgumentDefinitionList{
			argument("block", "", ast.NamedType(BlockHeight, position), nil),
		},
		Type:     ast.NamedType(metaType, position),
		Position: position,
	}
}
