package errors

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type GraphQLError struct {
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Rule       string                 `json:"-"`
	Err        error                  `json:"-"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func (err *GraphQLError) Error() string {
	if err == nil {
		return "<nil>"
	}
	str := fmt.Sprintf("graphql: %s", err.Message)
	for _, loc := range err.Locations {
		str += fmt.Sprintf(" (%d:%d)", loc.Line, loc.Column)
	}
	if err.Path != nil {
		str += fmt.Sprintf(" path: %v", err.Path)
	}
	return str
}

func (err *GraphQLError) Unwrap() error {
	return err.Err
}

// At attaches the position of a query node.
func (err *GraphQLError) At(pos *ast.Position) *GraphQLError {
	if pos != nil && pos.Line > 0 {
		err.Locations = append(err.Locations, Location{Line: pos.Line, Column: pos.Column})
	}
	return err
}

// WithRule tags the error with the validation rule that produced it.
func (err *GraphQLError) WithRule(rule string) *GraphQLError {
	err.Rule = rule
	if err.Extensions == nil {
		err.Extensions = map[string]interface{}{}
	}
	err.Extensions["rule"] = rule
	return err
}

type MultiError []*GraphQLError

func (m MultiError) Error() string {
	var res string
	for _, err := range m {
		res += err.Error() + "\n"
	}
	return res
}

// Sort orders errors by their first location.
func (m MultiError) Sort() {
	sort.SliceStable(m, func(i, j int) bool {
		if len(m[j].Locations) == 0 {
			return false
		}
		if len(m[i].Locations) == 0 {
			return true
		}
		return m[i].Locations[0].Before(m[j].Locations[0])
	})
}

var _ error = (*GraphQLError)(nil)
var _ error = MultiError(nil)

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (a Location) Before(b Location) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Column < b.Column)
}

func New(format string, arg ...interface{}) *GraphQLError {
	return &GraphQLError{
		Message: fmt.Sprintf(format, arg...),
	}
}

// Wrap turns any error into a GraphQLError, keeping GraphQL errors and
// gqlparser errors as they are.
func Wrap(err error) *GraphQLError {
	if err == nil {
		return nil
	}
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	var parserErr *gqlerror.Error
	if errors.As(err, &parserErr) {
		return fromGQLError(parserErr)
	}
	return &GraphQLError{Message: err.Error(), Err: err}
}

// FromGQL converts gqlparser errors.
func FromGQL(list gqlerror.List) MultiError {
	if len(list) == 0 {
		return nil
	}
	out := make(MultiError, 0, len(list))
	for _, err := range list {
		out = append(out, fromGQLError(err))
	}
	return out
}

func fromGQLError(err *gqlerror.Error) *GraphQLError {
	out := &GraphQLError{
		Message: err.Message,
		Rule:    err.Rule,
		Err:     err.Err,
	}
	for _, loc := range err.Locations {
		out.Locations = append(out.Locations, Location{Line: loc.Line, Column: loc.Column})
	}
	for _, p := range err.Path {
		switch p := p.(type) {
		case ast.PathName:
			out.Path = append(out.Path, string(p))
		case ast.PathIndex:
			out.Path = append(out.Path, int(p))
		}
	}
	if len(err.Extensions) > 0 {
		out.Extensions = make(map[string]interface{}, len(err.Extensions))
		for k, v := range err.Extensions {
			out.Extensions[k] = v
		}
	}
	if err.Rule != "" {
		if out.Extensions == nil {
			out.Extensions = map[string]interface{}{}
		}
		out.Extensions["rule"] = err.Rule
	}
	return out
}
