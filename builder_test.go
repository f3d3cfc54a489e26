package subgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	subgraph "github.com/AstarNetwork/yoki2-subgraph"
)

type Sample struct {
	ID     subgraph.Bytes    `graphql:"id"`
	Owner  subgraph.Bytes    `graphql:"owner"`
	Amount subgraph.BigInt   `graphql:"amount"`
	Label  string            `graphql:"label|desc=Free text"`
	Active bool              `graphql:"active"`
	Tags   []subgraph.BigInt `graphql:"tags"`
	Note   *string           `graphql:"note"`
	Count  int32             `graphql:"count"`
	Skip   string            `graphql:"-"`
	hidden int
}

type Minimal struct {
	ID subgraph.Bytes `graphql:"id"`
}

func sampleBuilder(opts ...subgraph.Option) *subgraph.SchemaBuilder {
	b := subgraph.NewSchema(opts...)
	b.Entity(Sample{}, subgraph.Description("A sample entity"))
	return b
}

func TestOperators(t *testing.T) {
	assert.Equal(t, []string{"", "_not", "_gt", "_lt", "_gte", "_lte", "_in", "_not_in", "_contains", "_not_contains"},
		subgraph.Operators(subgraph.CategoryBytes))
	assert.Equal(t, []string{"", "_not", "_gt", "_lt", "_gte", "_lte", "_in", "_not_in"},
		subgraph.Operators(subgraph.CategoryNumeric))
	assert.Equal(t, []string{"", "_not", "_in", "_not_in"},
		subgraph.Operators(subgraph.CategoryBoolean))
	assert.Equal(t, []string{"", "_not", "_contains", "_contains_nocase", "_not_contains", "_not_contains_nocase"},
		subgraph.Operators(subgraph.CategoryList))
	assert.Len(t, subgraph.Operators(subgraph.CategoryString), 20)
	assert.Empty(t, subgraph.Operators(subgraph.CategoryNone))

	t.Run("returns a copy", func(t *testing.T) {
		ops := subgraph.Operators(subgraph.CategoryBoolean)
		ops[0] = "mutated"
		assert.Equal(t, "", subgraph.Operators(subgraph.CategoryBoolean)[0])
	})
}

func TestEntity(t *testing.T) {
	t.Run("maps go fields", func(t *testing.T) {
		e := sampleBuilder().Entities()[0]
		assert.Equal(t, "Sample", e.Name)
		assert.True(t, e.Immutable)

		types := map[string]string{}
		for _, f := range e.Fields {
			types[f.Name] = f.Type.String()
		}
		assert.Equal(t, map[string]string{
			"id":     "Bytes!",
			"owner":  "Bytes!",
			"amount": "BigInt!",
			"label":  "String!",
			"active": "Boolean!",
			"tags":   "[BigInt!]!",
			"note":   "String",
			"count":  "Int!",
		}, types)
		assert.Equal(t, "Free text", e.Fields[3].Description)
	})

	t.Run("accessor names", func(t *testing.T) {
		b := subgraph.NewSchema()
		for _, name := range []string{"URI", "ContractURIUpdated", "TransferBatch", "AdminChanged", "URIValue", "ApprovalForAll"} {
			b.Entity(Minimal{}, subgraph.Name(name))
		}
		b.Entity(Minimal{}, subgraph.Name("Custom"), subgraph.Singular("one"), subgraph.Plural("many"))

		var got [][2]string
		for _, e := range b.Entities() {
			got = append(got, [2]string{e.Singular, e.Plural})
		}
		assert.Equal(t, [][2]string{
			{"uri", "uris"},
			{"contractURIUpdated", "contractURIUpdateds"},
			{"transferBatch", "transferBatches"},
			{"adminChanged", "adminChangeds"},
			{"uriValue", "uriValues"},
			{"approvalForAll", "approvalForAlls"},
			{"one", "many"},
		}, got)
	})

	t.Run("registration misuse panics", func(t *testing.T) {
		assert.Panics(t, func() { subgraph.NewSchema().Entity(1) })
		assert.Panics(t, func() {
			subgraph.NewSchema().Entity(struct {
				Owner subgraph.Bytes `graphql:"owner"`
			}{}, subgraph.Name("NoID"))
		})
		assert.Panics(t, func() {
			subgraph.NewSchema().Entity(struct {
				ID   subgraph.Bytes    `graphql:"id"`
				Meta map[string]string `graphql:"meta"`
			}{}, subgraph.Name("Unsupported"))
		})
		assert.Panics(t, func() {
			b := subgraph.NewSchema()
			b.Entity(Minimal{}, subgraph.Name("Same"))
			b.Entity(Sample{}, subgraph.Name("Same"))
		})
		assert.Panics(t, func() {
			subgraph.NewSchema().Entity(Minimal{}, subgraph.Name("BigInt"))
		})
		assert.NotPanics(t, func() {
			b := subgraph.NewSchema()
			b.Entity(Minimal{})
			b.Entity(&Minimal{})
			assert.Len(t, b.Entities(), 1)
		})
	})

	t.Run("custom scalar", func(t *testing.T) {
		type Color string
		type Painted struct {
			ID    subgraph.Bytes `graphql:"id"`
			Color Color          `graphql:"color"`
		}
		b := subgraph.NewSchema()
		scalar := b.Scalar(Color(""), subgraph.FilterCategory(subgraph.CategoryBoolean))
		assert.Equal(t, "Color", scalar.Name)
		b.Entity(Painted{})

		doc, err := b.Document()
		require.NoError(t, err)
		assert.NotNil(t, doc.Definitions.ForName("Color"))
		filter := doc.Definitions.ForName("Painted_filter")
		assert.NotNil(t, filter.Fields.ForName("color_not_in"))
		assert.Nil(t, filter.Fields.ForName("color_gt"))

		v, err := scalar.ParseLiteral(&ast.Value{Kind: ast.StringValue, Raw: "red"})
		require.NoError(t, err)
		assert.Equal(t, Color("red"), v)

		assert.Panics(t, func() { b.Scalar(Color("")) })
	})
}

func TestDocument(t *testing.T) {
	doc, err := sampleBuilder(subgraph.SubgraphID("QmTest")).Document()
	require.NoError(t, err)

	t.Run("entity type", func(t *testing.T) {
		def := doc.Definitions.ForName("Sample")
		require.NotNil(t, def)
		assert.Equal(t, ast.Object, def.Kind)
		assert.Equal(t, "A sample entity", def.Description)
		entity := def.Directives.ForName("entity")
		require.NotNil(t, entity)
		assert.Equal(t, "true", entity.Arguments.ForName("immutable").Value.Raw)
		assert.Equal(t, "QmTest", def.Directives.ForName("subgraphId").Arguments.ForName("id").Value.Raw)
	})

	t.Run("filter covers every field and operator", func(t *testing.T) {
		def := doc.Definitions.ForName("Sample")
		filter := doc.Definitions.ForName("Sample_filter")
		require.NotNil(t, filter)
		assert.Equal(t, ast.InputObject, filter.Kind)

		expected := 0
		for _, f := range def.Fields {
			category := subgraph.CategoryNone
			switch {
			case f.Type.Elem != nil:
				category = subgraph.CategoryList
			case f.Type.Name() == "Bytes":
				category = subgraph.CategoryBytes
			case f.Type.Name() == "BigInt", f.Type.Name() == "Int":
				category = subgraph.CategoryNumeric
			case f.Type.Name() == "String":
				category = subgraph.CategoryString
			case f.Type.Name() == "Boolean":
				category = subgraph.CategoryBoolean
			}
			for _, op := range subgraph.Operators(category) {
				expected++
				assert.NotNil(t, filter.Fields.ForName(f.Name+op), f.Name+op)
			}
		}
		assert.Len(t, filter.Fields, expected+3)

		n := len(filter.Fields)
		assert.Equal(t, "_change_block", filter.Fields[n-3].Name)
		assert.Equal(t, "BlockChangedFilter", filter.Fields[n-3].Type.String())
		assert.Equal(t, "and", filter.Fields[n-2].Name)
		assert.Equal(t, "[Sample_filter]", filter.Fields[n-2].Type.String())
		assert.Equal(t, "or", filter.Fields[n-1].Name)
	})

	t.Run("operand types", func(t *testing.T) {
		filter := doc.Definitions.ForName("Sample_filter")
		for name, typ := range map[string]string{
			"id":                    "Bytes",
			"amount_gte":            "BigInt",
			"amount_in":             "[BigInt!]",
			"owner_not_in":          "[Bytes!]",
			"owner_contains":        "Bytes",
			"label_starts_with":     "String",
			"active_not":            "Boolean",
			"tags":                  "[BigInt!]",
			"tags_contains":         "[BigInt!]",
			"tags_not_contains":     "[BigInt!]",
			"note_ends_with_nocase": "String",
		} {
			f := filter.Fields.ForName(name)
			if assert.NotNil(t, f, name) {
				assert.Equal(t, typ, f.Type.String(), name)
			}
		}
		assert.Nil(t, filter.Fields.ForName("active_gt"))
		assert.Nil(t, filter.Fields.ForName("tags_in"))
	})

	t.Run("orderBy lists every field", func(t *testing.T) {
		orderBy := doc.Definitions.ForName("Sample_orderBy")
		require.NotNil(t, orderBy)
		var values []string
		for _, v := range orderBy.EnumValues {
			values = append(values, v.Name)
		}
		assert.Equal(t, []string{"id", "owner", "amount", "label", "active", "tags", "note", "count"}, values)
	})

	t.Run("query root", func(t *testing.T) {
		query := doc.Definitions.ForName("Query")
		require.NotNil(t, query)

		single := query.Fields.ForName("sample")
		require.NotNil(t, single)
		assert.Equal(t, "Sample", single.Type.String())
		assert.Equal(t, "ID!", single.Arguments.ForName("id").Type.String())
		assert.Equal(t, "Block_height", single.Arguments.ForName("block").Type.String())
		assert.Equal(t, "deny", single.Arguments.ForName("subgraphError").DefaultValue.Raw)

		plural := query.Fields.ForName("samples")
		require.NotNil(t, plural)
		assert.Equal(t, "[Sample!]!", plural.Type.String())
		var args []string
		for _, a := range plural.Arguments {
			args = append(args, a.Name)
		}
		assert.Equal(t, []string{"skip", "first", "orderBy", "orderDirection", "where", "block", "subgraphError"}, args)
		assert.Equal(t, "0", plural.Arguments.ForName("skip").DefaultValue.Raw)
		assert.Equal(t, "100", plural.Arguments.ForName("first").DefaultValue.Raw)
		assert.Equal(t, "Sample_filter", plural.Arguments.ForName("where").Type.String())

		meta := query.Fields[len(query.Fields)-1]
		assert.Equal(t, "_meta", meta.Name)
		assert.Equal(t, "_Meta_", meta.Type.String())
	})

	t.Run("subgraph scalars are always declared", func(t *testing.T) {
		for _, name := range []string{"BigDecimal", "BigInt", "Bytes", "Int8", "Timestamp"} {
			def := doc.Definitions.ForName(name)
			if assert.NotNil(t, def, name) {
				assert.Equal(t, ast.Scalar, def.Kind)
			}
		}
		assert.Nil(t, doc.Definitions.ForName("String"))
	})

	t.Run("every node is positioned", func(t *testing.T) {
		for _, def := range doc.Definitions {
			require.NotNil(t, def.Position, def.Name)
			assert.Equal(t, subgraph.SourceName, def.Position.Src.Name)
			for _, f := range def.Fields {
				require.NotNil(t, f.Position, def.Name+"."+f.Name)
				for _, a := range f.Arguments {
					require.NotNil(t, a.Position)
					if a.DefaultValue != nil {
						require.NotNil(t, a.DefaultValue.Position)
					}
				}
			}
		}
		for _, dir := range doc.Directives {
			require.NotNil(t, dir.Position, dir.Name)
		}
	})

	t.Run("default first and mutable entities", func(t *testing.T) {
		b := subgraph.NewSchema(subgraph.DefaultFirst(25))
		b.Entity(Minimal{}, subgraph.Mutable())
		doc, err := b.Document()
		require.NoError(t, err)
		assert.Equal(t, "25", doc.Definitions.ForName("Query").Fields.ForName("minimals").Arguments.ForName("first").DefaultValue.Raw)
		entity := doc.Definitions.ForName("Minimal").Directives.ForName("entity")
		require.NotNil(t, entity)
		assert.Empty(t, entity.Arguments)
		assert.Nil(t, doc.Definitions.ForName("Minimal").Directives.ForName("subgraphId"))
	})

	t.Run("query field collisions", func(t *testing.T) {
		b := subgraph.NewSchema()
		b.Entity(Minimal{}, subgraph.Name("One"), subgraph.Plural("things"))
		b.Entity(Minimal{}, subgraph.Name("Two"), subgraph.Plural("things"))
		_, err := b.Document()
		assert.Error(t, err)
	})
}
