package subgraph

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// Schema is an assembled, executable schema object. It is immutable once
// built and safe for concurrent readers.
type Schema struct {
	schema      *ast.Schema
	document    *ast.SchemaDocument
	scalars     map[string]*ScalarBuilder
	entities    []*Entity
	byName      map[string]*Entity
	assumeValid bool
}

// Entity is the manifest view of an @entity object type.
type Entity struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Singular    string         `json:"singular"`
	Plural      string         `json:"plural"`
	Immutable   bool           `json:"immutable"`
	SubgraphID  string         `json:"subgraphId,omitempty"`
	Fields      []*EntityField `json:"fields"`

	definition *ast.Definition
}

type EntityField struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Category    Category `json:"category"`
}

// Build turns a schema document into a schema object. The GraphQL prelude is
// merged in first.
//
// With AssumeValid the document is trusted: types, directives, root
// operation types, implements and possible types are filled in directly,
// duplicate names resolve last-wins and dangling type references stay
// dangling. Without it the document is fully validated.
func Build(doc *ast.SchemaDocument, opts ...Option) (*Schema, error) {
	return build(doc, defaultScalars(), opts...)
}

func build(doc *ast.SchemaDocument, scalars map[string]*ScalarBuilder, opts ...Option) (*Schema, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil schema document")
	}
	options := options{}
	for _, o := range opts {
		o(&options)
	}

	prelude, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		return nil, fmt.Errorf("parse prelude: %w", err)
	}

	var schema *ast.Schema
	if options.assumeValid {
		schema = assemble(prelude, doc)
	} else {
		merged := &ast.SchemaDocument{}
		merged.Merge(prelude)
		merged.Merge(detach(doc))
		validated, err := validator.ValidateSchemaDocument(merged)
		if err != nil {
			return nil, err
		}
		schema = validated
	}

	s := &Schema{
		schema:      schema,
		document:    doc,
		scalars:     scalars,
		byName:      make(map[string]*Entity),
		assumeValid: options.assumeValid,
	}
	s.entities = entitiesOf(doc, schema, scalars)
	for _, entity := range s.entities {
		s.byName[entity.Name] = entity
	}
	return s, nil
}

// assemble populates an ast.Schema without any semantic check.
func assemble(docs ...*ast.SchemaDocument) *ast.Schema {
	schema := &ast.Schema{
		Types:         map[string]*ast.Definition{},
		Directives:    map[string]*ast.DirectiveDefinition{},
		PossibleTypes: map[string][]*ast.Definition{},
		Implements:    map[string][]*ast.Definition{},
	}

	for _, doc := range docs {
		for _, def := range doc.Definitions {
			schema.Types[def.Name] = def
		}
		for _, dir := range doc.Directives {
			schema.Directives[dir.Name] = dir
		}
	}

	for _, doc := range docs {
		for _, ext := range doc.Extensions {
			def, ok := schema.Types[ext.Name]
			if !ok {
				schema.Types[ext.Name] = ext
				continue
			}
			extended := *def
			extended.Directives = append(append(ast.DirectiveList{}, def.Directives...), ext.Directives...)
			extended.Interfaces = append(append([]string{}, def.Interfaces...), ext.Interfaces...)
			extended.Fields = append(append(ast.FieldList{}, def.Fields...), ext.Fields...)
			extended.Types = append(append([]string{}, def.Types...), ext.Types...)
			extended.EnumValues = append(append(ast.EnumValueList{}, def.EnumValues...), ext.EnumValues...)
			schema.Types[ext.Name] = &extended
		}
	}

	names := make([]string, 0, len(schema.Types))
	for name := range schema.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := schema.Types[name]
		switch def.Kind {
		case ast.Union:
			for _, t := range def.Types {
				if member := schema.Types[t]; member != nil {
					schema.AddPossibleType(def.Name, member)
				}
				schema.AddImplements(t, def)
			}
		case ast.InputObject, ast.Object:
			for _, intf := range def.Interfaces {
				schema.AddPossibleType(intf, def)
				if iface := schema.Types[intf]; iface != nil {
					schema.AddImplements(def.Name, iface)
				}
			}
			schema.AddPossibleType(def.Name, def)
		case ast.Interface:
			for _, intf := range def.Interfaces {
				schema.AddPossibleType(intf, def)
				if iface := schema.Types[intf]; iface != nil {
					schema.AddImplements(def.Name, iface)
				}
			}
		}
	}

	for _, doc := range docs {
		for _, sd := range append(append(ast.SchemaDefinitionList{}, doc.Schema...), doc.SchemaExtension...) {
			for _, op := range sd.OperationTypes {
				def := schema.Types[op.Type]
				switch op.Operation {
				case ast.Query:
					schema.Query = def
				case ast.Mutation:
					schema.Mutation = def
				case ast.Subscription:
					schema.Subscription = def
				}
			}
		}
	}
	if schema.Query == nil {
		schema.Query = schema.Types["Query"]
	}
	if schema.Mutation == nil {
		schema.Mutation = schema.Types["Mutation"]
	}
	if schema.Subscription == nil {
		schema.Subscription = schema.Types["Subscription"]
	}
	if schema.Query != nil {
		query := *schema.Query
		query.Fields = append(append(ast.FieldList{}, query.Fields...),
			&ast.FieldDefinition{Name: "__schema", Type: ast.NonNullNamedType("__Schema", nil)},
			&ast.FieldDefinition{Name: "__type", Type: ast.NamedType("__Type", nil), Arguments: ast.ArgumentDefinitionList{
				{Name: "name", Type: ast.NonNullNamedType("String", nil)},
			}},
		)
		schema.Query = &query
		schema.Types[query.Name] = &query
	}
	return schema
}

// detach copies the definitions of doc so that validation, which extends
// types in place, leaves the caller's document untouched.
func detach(doc *ast.SchemaDocument) *ast.SchemaDocument {
	out := *doc
	out.Definitions = make(ast.DefinitionList, len(doc.Definitions))
	for i, def := range doc.Definitions {
		copied := *def
		copied.Fields = append(ast.FieldList{}, def.Fields...)
		copied.Interfaces = append([]string{}, def.Interfaces...)
		copied.Types = append([]string{}, def.Types...)
		copied.EnumValues = append(ast.EnumValueList{}, def.EnumValues...)
		copied.Directives = append(ast.DirectiveList{}, def.Directives...)
		out.Definitions[i] = &copied
	}
	return &out
}

// entitiesOf reads the manifest back out of a document: every object with
// @entity, with its accessor names taken from the Query root.
func entitiesOf(doc *ast.SchemaDocument, schema *ast.Schema, scalars map[string]*ScalarBuilder) []*Entity {
	query := schema.Query
	var entities []*Entity
	for _, def := range doc.Definitions {
		if def.Kind != ast.Object {
			continue
		}
		directive := def.Directives.ForName(entityDirective)
		if directive == nil {
			continue
		}
		entity := &Entity{
			Name:        def.Name,
			Description: def.Description,
			definition:  def,
		}
		if arg := directive.Arguments.ForName("immutable"); arg != nil && arg.Value != nil {
			entity.Immutable = arg.Value.Raw == "true"
		}
		if id := def.Directives.ForName(subgraphIDDirective); id != nil {
			if arg := id.Arguments.ForName("id"); arg != nil && arg.Value != nil {
				entity.SubgraphID = arg.Value.Raw
			}
		}
		for _, f := range def.Fields {
			entity.Fields = append(entity.Fields, &EntityField{
				Name:        f.Name,
				Description: f.Description,
				Type:        f.Type.String(),
				Category:    categoryOf(f.Type, scalars),
			})
		}
		if query != nil {
			for _, f := range query.Fields {
				switch {
				case f.Type.Elem == nil && !f.Type.NonNull && f.Type.NamedType == def.Name && entity.Singular == "":
					entity.Singular = f.Name
				case f.Type.Elem != nil && f.Type.Elem.NamedType == def.Name && entity.Plural == "":
					entity.Plural = f.Name
				}
			}
		}
		entities = append(entities, entity)
	}
	return entities
}

func sortedScalarNames(scalars map[string]*ScalarBuilder) []string {
	names := make([]string, 0, len(scalars))
	for name := range scalars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AST returns the assembled gqlparser schema.
func (s *Schema) AST() *ast.Schema {
	return s.schema
}

// Document returns the declared document, without the prelude.
func (s *Schema) Document() *ast.SchemaDocument {
	return s.document
}

// AssumedValid reports whether the schema was built without validation.
func (s *Schema) AssumedValid() bool {
	return s.assumeValid
}

func (s *Schema) QueryType() *ast.Definition {
	return s.schema.Query
}

// Entities returns the entity manifest in declaration order.
func (s *Schema) Entities() []*Entity {
	return s.entities
}

func (s *Schema) Entity(name string) *Entity {
	return s.byName[name]
}

// Scalar returns the codec of a scalar, or nil when the scalar is unknown.
func (s *Schema) Scalar(name string) *ScalarBuilder {
	return s.scalars[name]
}

// Serialize renders an entity record as its GraphQL response object, using
// the scalars' Serialize functions.
func (s *Schema) Serialize(name string, record interface{}) (map[string]interface{}, error) {
	entity := s.byName[name]
	if entity == nil {
		return nil, fmt.Errorf("unknown entity %s", name)
	}
	value := reflect.ValueOf(record)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil, fmt.Errorf("nil %s record", name)
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s record must be a struct, got %s", name, value.Kind())
	}

	out := make(map[string]interface{}, len(entity.Fields))
	for _, f := range entity.Fields {
		fv := GetField(value, f.Name)
		if fv == nil {
			return nil, fmt.Errorf("%s record has no field %s", name, f.Name)
		}
		v, err := s.serializeValue(entity.definition.Fields.ForName(f.Name).Type, *fv)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

func (s *Schema) serializeValue(t *ast.Type, v reflect.Value) (interface{}, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if t.Elem != nil {
		if v.Kind() != reflect.Slice {
			return nil, fmt.Errorf("expected a slice, got %s", v.Kind())
		}
		list := make([]interface{}, v.Len())
		for i := range list {
			item, err := s.serializeValue(t.Elem, v.Index(i))
			if err != nil {
				return nil, err
			}
			list[i] = item
		}
		return list, nil
	}
	scalar := s.scalars[t.NamedType]
	if scalar == nil {
		return nil, fmt.Errorf("type %s is not a scalar", t.NamedType)
	}
	return scalar.Serialize(v.Interface())
}
