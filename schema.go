package subgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
)

// SchemaBuilder.
//
// use to build go structs into subgraph entity types.
// include:
//
//	struct->entity object, <Entity>_filter, <Entity>_orderBy
//	scalar(BigInt, Bytes, ... eg.)
//	query root fields
type SchemaBuilder struct {
	scalars      map[string]*ScalarBuilder
	types        map[reflect.Type]*ScalarBuilder
	entities     map[string]*EntityBuilder
	order        []string
	subgraphID   string
	defaultFirst int
}

// EntityBuilder is a registered entity struct.
type EntityBuilder struct {
	Name        string
	Description string
	Singular    string
	Plural      string
	Immutable   bool
	Type        reflect.Type
	Fields      []*FieldBuilder
}

// FieldBuilder is one column of an entity.
type FieldBuilder struct {
	Name        string
	Description string
	Index       []int
	Type        *ast.Type
	Scalar      *ScalarBuilder
}

// NewSchema create a SchemaBuilder builder.
func NewSchema(opts ...Option) *SchemaBuilder {
	options := options{
		defaultFirst: DefaultPageSize,
	}
	for _, o := range opts {
		o(&options)
	}

	schema := &SchemaBuilder{
		scalars:      defaultScalars(),
		types:        make(map[reflect.Type]*ScalarBuilder),
		entities:     make(map[string]*EntityBuilder),
		subgraphID:   options.subgraphID,
		defaultFirst: options.defaultFirst,
	}
	for _, scalar := range schema.scalars {
		schema.types[scalar.Type] = scalar
	}
	schema.types[reflect.TypeOf(int(0))] = IntScalar
	return schema
}

// Scalar is used to register custom scalars. Custom scalars filter like
// strings unless FilterCategory says otherwise.
func (s *SchemaBuilder) Scalar(scalarType interface{}, opts ...Option) *ScalarBuilder {
	reflectType := reflect.TypeOf(scalarType)
	if reflectType.Kind() == reflect.Ptr {
		panic("scalarType must not be a ptr")
	}

	options := options{
		name: reflectType.Name(),
		serialize: func(value interface{}) (interface{}, error) {
			if v, ok := value.(fmt.Stringer); ok {
				return v.String(), nil
			}
			marshal, err := json.Marshal(value)
			if err != nil {
				return nil, err
			}
			return string(marshal), nil
		},
		parseValue: func(value interface{}) (interface{}, error) {
			var x []byte
			switch v := value.(type) {
			case string:
				x = []byte(strconv.Quote(v))
			case float64:
				x = []byte(strconv.FormatFloat(v, 'g', -1, 64))
			case json.Number:
				x = []byte(v)
			case bool:
				x = []byte(strconv.FormatBool(v))
			default:
				return nil, errors.New("unknown type")
			}
			r := reflect.New(reflectType).Interface()
			err := json.Unmarshal(x, r)
			return reflect.ValueOf(r).Elem().Interface(), err
		},
		parseLiteral: func(valueAST *ast.Value) (interface{}, error) {
			raw := valueAST.Raw
			if valueAST.Kind == ast.StringValue {
				raw = strconv.Quote(raw)
			}
			r := reflect.New(reflectType).Interface()
			err := json.Unmarshal([]byte(raw), r)
			return reflect.ValueOf(r).Elem().Interface(), err
		},
	}
	for _, o := range opts {
		o(&options)
	}

	if _, ok := s.scalars[options.name]; ok {
		panic("duplicate scalar name " + options.name)
	}
	if _, ok := s.entities[options.name]; ok {
		panic("scalar name " + options.name + " is already an entity")
	}

	category := CategoryString
	if options.category != nil {
		category = *options.category
	}
	scalar := &ScalarBuilder{
		Name:         options.name,
		Description:  options.description,
		Type:         reflectType,
		Category:     category,
		Serialize:    options.serialize,
		ParseValue:   options.parseValue,
		ParseLiteral: options.parseLiteral,
	}
	s.scalars[scalar.Name] = scalar
	s.types[reflectType] = scalar
	return scalar
}

// Entity register a struct as an immutable subgraph entity. Field types
// resolve when the entity is registered, so custom scalars must be
// registered first.
func (s *SchemaBuilder) Entity(entityType interface{}, opts ...Option) *EntityBuilder {
	reflectType := reflect.TypeOf(entityType)
	if reflectType != nil && reflectType.Kind() == reflect.Ptr {
		reflectType = reflectType.Elem()
	}
	if reflectType == nil || reflectType.Kind() != reflect.Struct {
		panic("entityType must be a struct")
	}

	options := options{
		name: reflectType.Name(),
	}
	for _, o := range opts {
		o(&options)
	}
	if options.name == "" {
		panic("entity must be named")
	}

	if entity, ok := s.entities[options.name]; ok {
		if entity.Type != reflectType {
			panic(fmt.Sprintf("re-registered entity with different type, already registered type: %s.%s", entity.Type.PkgPath(), entity.Type.Name()))
		}
		return entity
	}
	if _, ok := s.scalars[options.name]; ok {
		panic("entity name " + options.name + " is already a scalar")
	}

	entity := &EntityBuilder{
		Name:        options.name,
		Description: options.description,
		Singular:    options.singular,
		Plural:      options.plural,
		Immutable:   !options.mutable,
		Type:        reflectType,
	}
	if entity.Singular == "" {
		entity.Singular = singularName(entity.Name)
	}
	if entity.Plural == "" {
		entity.Plural = pluralName(entity.Singular)
	}

	if err := s.buildFields(entity); err != nil {
		panic(err.Error())
	}

	s.entities[entity.Name] = entity
	s.order = append(s.order, entity.Name)
	return entity
}

// Entities returns the registered entities in registration order.
func (s *SchemaBuilder) Entities() []*EntityBuilder {
	entities := make([]*EntityBuilder, 0, len(s.order))
	for _, name := range s.order {
		entities = append(entities, s.entities[name])
	}
	return entities
}

// Build emits the document and assembles it, see Build.
func (s *SchemaBuilder) Build(opts ...Option) (*Schema, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	scalars := make(map[string]*ScalarBuilder, len(s.scalars))
	for name, scalar := range s.scalars {
		scalars[name] = scalar
	}
	return build(doc, scalars, opts...)
}

// MustBuild builds a schema and panics if an error occurs.
func (s *SchemaBuilder) MustBuild(opts ...Option) *Schema {
	built, err := s.Build(opts...)
	if err != nil {
		panic(err)
	}
	return built
}
