package introspection

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	subgraph "github.com/AstarNetwork/yoki2-subgraph"
)

// A GraphQL server supports introspection over its schema.
// Tools such as code generators and explorers read the schema through the
// meta-fields __schema and __type of the query root.
//
// The result here is what a full introspection query would return:
//
// {
//   "__schema": {
//     "queryType": { "name": "Query" },
//     "types": [
//       {
//         "kind": "OBJECT",
//         "name": "URI",
//         "fields": [
//           {
//             "name": "id",
//             "type": { "kind": "NON_NULL", "ofType": { "kind": "SCALAR", "name": "Bytes" } }
//           },
//           ...
//         ]
//       },
//       ...
//     ]
//   }
// }
type Result struct {
	Schema Schema `json:"__schema"`
}

type DirectiveLocation string

const (
	LocationQuery                DirectiveLocation = "QUERY"
	LocationMutation             DirectiveLocation = "MUTATION"
	LocationSubscription         DirectiveLocation = "SUBSCRIPTION"
	LocationField                DirectiveLocation = "FIELD"
	LocationFragmentDefinition   DirectiveLocation = "FRAGMENT_DEFINITION"
	LocationFragmentSpread       DirectiveLocation = "FRAGMENT_SPREAD"
	LocationInlineFragment       DirectiveLocation = "INLINE_FRAGMENT"
	LocationVariableDefinition   DirectiveLocation = "VARIABLE_DEFINITION"
	LocationSchema               DirectiveLocation = "SCHEMA"
	LocationScalar               DirectiveLocation = "SCALAR"
	LocationObject               DirectiveLocation = "OBJECT"
	LocationFieldDefinition      DirectiveLocation = "FIELD_DEFINITION"
	LocationArgumentDefinition   DirectiveLocation = "ARGUMENT_DEFINITION"
	LocationInterface            DirectiveLocation = "INTERFACE"
	LocationUnion                DirectiveLocation = "UNION"
	LocationEnum                 DirectiveLocation = "ENUM"
	LocationEnumValue            DirectiveLocation = "ENUM_VALUE"
	LocationInputObject          DirectiveLocation = "INPUT_OBJECT"
	LocationInputFieldDefinition DirectiveLocation = "INPUT_FIELD_DEFINITION"
)

var directiveLocations = map[ast.DirectiveLocation]DirectiveLocation{
	ast.LocationQuery:                LocationQuery,
	ast.LocationMutation:             LocationMutation,
	ast.LocationSubscription:         LocationSubscription,
	ast.LocationField:                LocationField,
	ast.LocationFragmentDefinition:   LocationFragmentDefinition,
	ast.LocationFragmentSpread:       LocationFragmentSpread,
	ast.LocationInlineFragment:       LocationInlineFragment,
	ast.LocationVariableDefinition:   LocationVariableDefinition,
	ast.LocationSchema:               LocationSchema,
	ast.LocationScalar:               LocationScalar,
	ast.LocationObject:               LocationObject,
	ast.LocationFieldDefinition:      LocationFieldDefinition,
	ast.LocationArgumentDefinition:   LocationArgumentDefinition,
	ast.LocationInterface:            LocationInterface,
	ast.LocationUnion:                LocationUnion,
	ast.LocationEnum:                 LocationEnum,
	ast.LocationEnumValue:            LocationEnumValue,
	ast.LocationInputObject:          LocationInputObject,
	ast.LocationInputFieldDefinition: LocationInputFieldDefinition,
}

// There are several different kinds of type. In each kind, different fields are actually valid.
// These kinds are listed in the __TypeKind enumeration.
type TypeKind string

const (
	SCALAR       TypeKind = "SCALAR"
	OBJECT       TypeKind = "OBJECT"
	INTERFACE    TypeKind = "INTERFACE"
	UNION        TypeKind = "UNION"
	ENUM         TypeKind = "ENUM"
	INPUT_OBJECT TypeKind = "INPUT_OBJECT"
	LIST         TypeKind = "LIST"
	NON_NULL     TypeKind = "NON_NULL"
)

var kinds = map[ast.DefinitionKind]TypeKind{
	ast.Scalar:      SCALAR,
	ast.Object:      OBJECT,
	ast.Interface:   INTERFACE,
	ast.Union:       UNION,
	ast.Enum:        ENUM,
	ast.InputObject: INPUT_OBJECT,
}

type Schema struct {
	Description      *string     `json:"description"`
	QueryType        *TypeName   `json:"queryType"`
	MutationType     *TypeName   `json:"mutationType"`
	SubscriptionType *TypeName   `json:"subscriptionType"`
	Types            []Type      `json:"types"`
	Directives       []Directive `json:"directives"`
}

type TypeName struct {
	Name string `json:"name"`
}

// Type is a named type. Fields that do not apply to its kind are null.
type Type struct {
	Kind          TypeKind     `json:"kind"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// TypeRef is a reference to a type, with LIST and NON_NULL wrappers spelled
// out through ofType.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// The Field type represents each field in an Object or Interface type.
type Field struct {
	Name              string       `json:"name"`
	Description       *string      `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

// The InputValue type represents field and directive arguments as well as the inputFields of an input object.
type InputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

// The EnumValue type represents one of possible values of an enum.
type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

// The Directive type represents a Directive that a server supports.
type Directive struct {
	Name         string              `json:"name"`
	Description  *string             `json:"description"`
	Locations    []DirectiveLocation `json:"locations"`
	Args         []InputValue        `json:"args"`
	IsRepeatable bool                `json:"isRepeatable"`
}

// Introspect describes every type and directive of schema, prelude included.
func Introspect(schema *subgraph.Schema) *Result {
	s := schema.AST()
	result := &Result{}
	if s.Query != nil {
		result.Schema.QueryType = &TypeName{Name: s.Query.Name}
	}
	if s.Mutation != nil {
		result.Schema.MutationType = &TypeName{Name: s.Mutation.Name}
	}
	if s.Subscription != nil {
		result.Schema.SubscriptionType = &TypeName{Name: s.Subscription.Name}
	}

	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	result.Schema.Types = make([]Type, 0, len(names))
	for _, name := range names {
		result.Schema.Types = append(result.Schema.Types, typeOf(s, s.Types[name]))
	}

	names = names[:0]
	for name := range s.Directives {
		names = append(names, name)
	}
	sort.Strings(names)
	result.Schema.Directives = make([]Directive, 0, len(names))
	for _, name := range names {
		result.Schema.Directives = append(result.Schema.Directives, directiveOf(s, s.Directives[name]))
	}
	return result
}

// JSON returns the introspection result of schema encoded as JSON.
func JSON(schema *subgraph.Schema) ([]byte, error) {
	return json.Marshal(Introspect(schema))
}

func typeOf(s *ast.Schema, def *ast.Definition) Type {
	t := Type{
		Kind:        kinds[def.Kind],
		Name:        def.Name,
		Description: description(def.Description),
	}
	switch def.Kind {
	case ast.Object, ast.Interface:
		t.Fields = make([]Field, 0, len(def.Fields))
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			deprecated, reason := deprecation(f.Directives)
			t.Fields = append(t.Fields, Field{
				Name:              f.Name,
				Description:       description(f.Description),
				Args:              arguments(s, f.Arguments),
				Type:              typeRef(s, f.Type),
				IsDeprecated:      deprecated,
				DeprecationReason: reason,
			})
		}
		t.Interfaces = make([]TypeRef, 0, len(def.Interfaces))
		for _, name := range def.Interfaces {
			t.Interfaces = append(t.Interfaces, typeRef(s, ast.NamedType(name, nil)))
		}
		if def.Kind == ast.Interface {
			t.PossibleTypes = possibleTypes(s, def)
		}
	case ast.Union:
		t.PossibleTypes = possibleTypes(s, def)
	case ast.Enum:
		t.EnumValues = make([]EnumValue, 0, len(def.EnumValues))
		for _, v := range def.EnumValues {
			deprecated, reason := deprecation(v.Directives)
			t.EnumValues = append(t.EnumValues, EnumValue{
				Name:              v.Name,
				Description:       description(v.Description),
				IsDeprecated:      deprecated,
				DeprecationReason: reason,
			})
		}
	case ast.InputObject:
		t.InputFields = make([]InputValue, 0, len(def.Fields))
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, InputValue{
				Name:         f.Name,
				Description:  description(f.Description),
				Type:         typeRef(s, f.Type),
				DefaultValue: literal(f.DefaultValue),
			})
		}
	}
	return t
}

func possibleTypes(s *ast.Schema, def *ast.Definition) []TypeRef {
	refs := make([]TypeRef, 0)
	for _, member := range s.GetPossibleTypes(def) {
		if member.Name == def.Name {
			continue
		}
		refs = append(refs, typeRef(s, ast.NamedType(member.Name, nil)))
	}
	sort.Slice(refs, func(i, j int) bool { return *refs[i].Name < *refs[j].Name })
	return refs
}

func directiveOf(s *ast.Schema, d *ast.DirectiveDefinition) Directive {
	locations := make([]DirectiveLocation, 0, len(d.Locations))
	for _, loc := range d.Locations {
		if known, ok := directiveLocations[loc]; ok {
			locations = append(locations, known)
		}
	}
	return Directive{
		Name:         d.Name,
		Description:  description(d.Description),
		Locations:    locations,
		Args:         arguments(s, d.Arguments),
		IsRepeatable: d.IsRepeatable,
	}
}

func arguments(s *ast.Schema, args ast.ArgumentDefinitionList) []InputValue {
	out := make([]InputValue, 0, len(args))
	for _, arg := range args {
		out = append(out, InputValue{
			Name:         arg.Name,
			Description:  description(arg.Description),
			Type:         typeRef(s, arg.Type),
			DefaultValue: literal(arg.DefaultValue),
		})
	}
	return out
}

// typeRef spells out t. A named type absent from the schema keeps its name
// with an empty kind.
func typeRef(s *ast.Schema, t *ast.Type) TypeRef {
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		ofType := typeRef(s, &inner)
		return TypeRef{Kind: NON_NULL, OfType: &ofType}
	}
	if t.Elem != nil {
		ofType := typeRef(s, t.Elem)
		return TypeRef{Kind: LIST, OfType: &ofType}
	}
	name := t.NamedType
	ref := TypeRef{Name: &name}
	if def := s.Types[name]; def != nil {
		ref.Kind = kinds[def.Kind]
	}
	return ref
}

func deprecation(directives ast.DirectiveList) (bool, *string) {
	d := directives.ForName("deprecated")
	if d == nil {
		return false, nil
	}
	reason := "No longer supported"
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		reason = arg.Value.Raw
	}
	return true, &reason
}

func literal(v *ast.Value) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func description(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
