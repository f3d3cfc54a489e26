package subgraph

import (
	"go/ast"
	"reflect"
	"strings"
)

// fieldTag is the parsed form of a `graphql:"name|desc=..."` struct tag.
type fieldTag struct {
	name        string
	description string
	skip        bool
}

func parseFieldTag(field reflect.StructField) fieldTag {
	if field.Anonymous || !ast.IsExported(field.Name) {
		return fieldTag{skip: true}
	}
	tags, ok := field.Tag.Lookup("graphql")
	if !ok {
		return fieldTag{name: field.Name}
	}
	var tag fieldTag
	split := strings.Split(tags, "|")
	if split[0] == "-" {
		return fieldTag{skip: true}
	}
	for _, s := range split {
		ttag := strings.SplitN(s, "=", 2)
		if len(ttag) == 2 {
			switch ttag[0] {
			case "name":
				tag.name = ttag[1]
			case "desc":
				tag.description = ttag[1]
			}
		} else {
			tag.name = ttag[0]
		}
	}
	if tag.name == "" {
		tag.name = field.Name
	}
	return tag
}

// GetField returns the struct field of v exposed under the GraphQL name.
func GetField(v reflect.Value, name string) *reflect.Value {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		tag := parseFieldTag(v.Type().Field(i))
		if !tag.skip && tag.name == name {
			field := v.Field(i)
			return &field
		}
	}
	return nil
}
