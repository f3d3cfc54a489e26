package subgraph

import (
	"fmt"
	"reflect"

	"github.com/vektah/gqlparser/v2/ast"
)

// SourceName names the synthetic source every generated node points into.
const SourceName = "subgraph.graphql"

var source = &ast.Source{Name: SourceName}

// position is shared by every generated node. gqlparser dereferences
// positions when it reports errors, so none may be nil.
var position = &ast.Position{Src: source, Line: 1, Column: 1}

// getType is the "core" function of the entity builder. It maps a Go field
// type onto a GraphQL type: scalars are non-null unless behind a pointer,
// slices become lists of non-null elements.
func (s *SchemaBuilder) getType(nodeType reflect.Type) (*ast.Type, *ScalarBuilder, error) {
	nonNull := true
	if nodeType.Kind() == reflect.Ptr {
		nonNull = false
		nodeType = nodeType.Elem()
	}

	// Scalars have precedence over slices to have eg. Bytes function as a scalar.
	if scalar, ok := s.types[nodeType]; ok {
		if nonNull {
			return ast.NonNullNamedType(scalar.Name, position), scalar, nil
		}
		return ast.NamedType(scalar.Name, position), scalar, nil
	}

	if nodeType.Kind() == reflect.Slice {
		elemType := nodeType.Elem()
		elemNonNull := true
		if elemType.Kind() == reflect.Ptr {
			elemNonNull = false
			elemType = elemType.Elem()
		}
		scalar, ok := s.types[elemType]
		if !ok {
			return nil, nil, fmt.Errorf("bad type %s: list elements should be scalars", nodeType)
		}
		elem := ast.NamedType(scalar.Name, position)
		if elemNonNull {
			elem = ast.NonNullNamedType(scalar.Name, position)
		}
		if nonNull {
			return ast.NonNullListType(elem, position), scalar, nil
		}
		return ast.ListType(elem, position), scalar, nil
	}

	return nil, nil, fmt.Errorf("bad type %s: should be a scalar or slice type", nodeType)
}

func (s *SchemaBuilder) buildFields(entity *EntityBuilder) error {
	seen := make(map[string]bool)
	rtype := entity.Type
	for i := 0; i < rtype.NumField(); i++ {
		field := rtype.Field(i)
		tag := parseFieldTag(field)
		if tag.skip {
			continue
		}
		if seen[tag.name] {
			return fmt.Errorf("entity %s declares field %s twice", entity.Name, tag.name)
		}
		seen[tag.name] = true

		fType, scalar, err := s.getType(field.Type)
		if err != nil {
			return fmt.Errorf("entity %s field %s: %w", entity.Name, tag.name, err)
		}
		entity.Fields = append(entity.Fields, &FieldBuilder{
			Name:        tag.name,
			Description: tag.description,
			Index:       field.Index,
			Type:        fType,
			Scalar:      scalar,
		})
	}
	if !seen["id"] {
		return fmt.Errorf("entity %s must have an id field", entity.Name)
	}
	return nil
}

func (s *SchemaBuilder) entityDefinition(entity *EntityBuilder) *ast.Definition {
	def := &ast.Definition{
		Kind:        ast.Object,
		Name:        entity.Name,
		Description: entity.Description,
		Directives:  entityDirectives(entity.Immutable, s.subgraphID),
		Position:    position,
	}
	for _, f := range entity.Fields {
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name:        f.Name,
			Description: f.Description,
			Type:        f.Type,
			Position:    position,
		})
	}
	return def
}

// Document emits the declarative schema literal: directive declarations,
// the subgraph scalars, the support types, then per entity its object,
// filter and orderBy types, and finally the Query root.
func (s *SchemaBuilder) Document() (*ast.SchemaDocument, error) {
	doc := &ast.SchemaDocument{
		Directives: subgraphDirectives(),
	}

	for _, name := range sortedScalarNames(s.scalars) {
		if scalar := s.scalars[name]; !scalar.BuiltIn {
			doc.Definitions = append(doc.Definitions, scalar.definition())
		}
	}
	doc.Definitions = append(doc.Definitions, supportDefinitions()...)

	query := &ast.Definition{
		Kind:     ast.Object,
		Name:     queryTypeName,
		Position: position,
	}
	owners := make(map[string]string)
	for _, entity := range s.Entities() {
		for _, name := range []string{entity.Singular, entity.Plural} {
			if owner, ok := owners[name]; ok {
				return nil, fmt.Errorf("query field %s is declared by both %s and %s", name, owner, entity.Name)
			}
			owners[name] = entity.Name
		}

		def := s.entityDefinition(entity)
		doc.Definitions = append(doc.Definitions,
			def,
			filterDefinition(def, s.scalars),
			orderByDefinition(def),
		)
		query.Fields = append(query.Fields,
			singularField(entity.Name, entity.Singular),
			pluralField(entity.Name, entity.Plural, s.defaultFirst),
		)
	}
	if owner, ok := owners[metaField]; ok {
		return nil, fmt.Errorf("query field %s of %s is reserved", metaField, owner)
	}
	query.Fields = append(query.Fields, metaQueryField())
	doc.Definitions = append(doc.Definitions, query)
	return doc, nil
}
