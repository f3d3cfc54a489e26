package subgraph

import (
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	entityDirective      = "entity"
	subgraphIDDirective  = "subgraphId"
	derivedFromDirective = "derivedFrom"
)

// subgraphDirectives declares the directives every subgraph schema carries.
func subgraphDirectives() ast.DirectiveDefinitionList {
	return ast.DirectiveDefinitionList{
		{
			Name:        entityDirective,
			Description: "Marks the GraphQL type as indexed by the subgraph.",
			Arguments: ast.ArgumentDefinitionList{
				{Name: "immutable", Type: ast.NamedType("Boolean", position), Position: position},
			},
			Locations: []ast.DirectiveLocation{ast.LocationObject},
			Position:  position,
		},
		{
			Name:        subgraphIDDirective,
			Description: "Defined a Subgraph ID for an object type",
			Arguments: ast.ArgumentDefinitionList{
				{Name: "id", Type: ast.NonNullNamedType("String", position), Position: position},
			},
			Locations: []ast.DirectiveLocation{ast.LocationObject},
			Position:  position,
		},
		{
			Name:        derivedFromDirective,
			Description: "creates a virtual field on the entity that may be queried but cannot be set manually through the mappings API.",
			Arguments: ast.ArgumentDefinitionList{
				{Name: "field", Type: ast.NonNullNamedType("String", position), Position: position},
			},
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
			Position:  position,
		},
	}
}

// entityDirectives annotates an entity object definition.
func entityDirectives(immutable bool, subgraphID string) ast.DirectiveList {
	entity := &ast.Directive{Name: entityDirective, Position: position, Location: ast.LocationObject}
	if immutable {
		entity.Arguments = ast.ArgumentList{
			{Name: "immutable", Value: &ast.Value{Raw: "true", Kind: ast.BooleanValue, Position: position}, Position: position},
		}
	}
	list := ast.DirectiveList{entity}
	if subgraphID != "" {
		list = append(list, &ast.Directive{
			Name: subgraphIDDirective,
			Arguments: ast.ArgumentList{
				{Name: "id", Value: &ast.Value{Raw: subgraphID, Kind: ast.StringValue, Position: position}, Position: position},
			},
			Position: position,
			Location: ast.LocationObject,
		})
	}
	return list
}
