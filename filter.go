package subgraph

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// Category selects the filter operators generated for an entity field.
type Category int

const (
	CategoryNone Category = iota
	CategoryBytes
	CategoryNumeric
	CategoryString
	CategoryBoolean
	CategoryList
)

var categoryNames = [...]string{
	CategoryNone:    "none",
	CategoryBytes:   "bytes",
	CategoryNumeric: "numeric",
	CategoryString:  "string",
	CategoryBoolean: "boolean",
	CategoryList:    "list",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// operators is the closed operator table. The empty suffix is equality.
var operators = map[Category][]string{
	CategoryBytes: {
		"", "_not", "_gt", "_lt", "_gte", "_lte", "_in", "_not_in",
		"_contains", "_not_contains",
	},
	CategoryNumeric: {
		"", "_not", "_gt", "_lt", "_gte", "_lte", "_in", "_not_in",
	},
	CategoryString: {
		"", "_not", "_gt", "_lt", "_gte", "_lte", "_in", "_not_in",
		"_contains", "_contains_nocase", "_not_contains", "_not_contains_nocase",
		"_starts_with", "_starts_with_nocase", "_not_starts_with", "_not_starts_with_nocase",
		"_ends_with", "_ends_with_nocase", "_not_ends_with", "_not_ends_with_nocase",
	},
	CategoryBoolean: {
		"", "_not", "_in", "_not_in",
	},
	CategoryList: {
		"", "_not", "_contains", "_contains_nocase", "_not_contains", "_not_contains_nocase",
	},
}

// Operators returns the filter suffixes of a category in declaration order.
func Operators(c Category) []string {
	return append([]string(nil), operators[c]...)
}

// categoryOf resolves the category of a field type against the known scalars.
// Any list is CategoryList regardless of its element.
func categoryOf(t *ast.Type, scalars map[string]*ScalarBuilder) Category {
	if t.Elem != nil {
		return CategoryList
	}
	if scalar, ok := scalars[t.NamedType]; ok {
		return scalar.Category
	}
	return CategoryNone
}

// operandType is the argument type of the filter field `<field><suffix>`.
func operandType(c Category, suffix string, t *ast.Type) *ast.Type {
	named := t.Name()
	if c == CategoryList || suffix == "_in" || suffix == "_not_in" {
		return ast.ListType(ast.NonNullNamedType(named, position), position)
	}
	return ast.NamedType(named, position)
}

func filterName(entity string) string {
	return entity + "_filter"
}

// filterDefinition builds <Entity>_filter for an entity object definition.
func filterDefinition(def *ast.Definition, scalars map[string]*ScalarBuilder) *ast.Definition {
	filter := &ast.Definition{
		Kind:     ast.InputObject,
		Name:     filterName(def.Name),
		Position: position,
	}
	for _, field := range def.Fields {
		c := categoryOf(field.Type, scalars)
		for _, suffix := range operators[c] {
			filter.Fields = append(filter.Fields, &ast.FieldDefinition{
				Name:     field.Name + suffix,
				Type:     operandType(c, suffix, field.Type),
				Position: position,
			})
		}
	}
	filter.Fields = append(filter.Fields,
		&ast.FieldDefinition{
			Name:        "_change_block",
			Description: "Filter for the block changed event.",
			Type:        ast.NamedType(blockChangedFilter, position),
			Position:    position,
		},
		&ast.FieldDefinition{
			Name:     "and",
			Type:     ast.ListType(ast.NamedType(filter.Name, position), position),
			Position: position,
		},
		&ast.FieldDefinition{
			Name:     "or",
			Type:     ast.ListType(ast.NamedType(filter.Name, position), position),
			Position: position,
		},
	)
	return filter
}

func orderByName(entity string) string {
	return entity + "_orderBy"
}

// orderByDefinition builds <Entity>_orderBy with one value per field.
func orderByDefinition(def *ast.Definition) *ast.Definition {
	orderBy := &ast.Definition{
		Kind:     ast.Enum,
		Name:     orderByName(def.Name),
		Position: position,
	}
	for _, field := range def.Fields {
		orderBy.EnumValues = append(orderBy.EnumValues, &ast.EnumValueDefinition{
			Name:     field.Name,
			Position: position,
		})
	}
	return orderBy
}
