package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"runtime"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"

	subgraph "github.com/AstarNetwork/yoki2-subgraph"
	"github.com/AstarNetwork/yoki2-subgraph/errors"
	"github.com/AstarNetwork/yoki2-subgraph/metrics"
)

const (
	DefaultMaxFirst = 1000
	DefaultMaxSkip  = 5000
)

// Rule names reported on errors produced here. gqlparser's own errors keep
// the rule gqlparser assigns.
const (
	RuleParse          = "Parse"
	RuleOperation      = "Operation"
	RuleVariables      = "VariableValues"
	RuleKnownTypes     = "KnownFieldTypes"
	RuleBlockHeight    = "BlockHeight"
	RulePagination     = "Pagination"
	RuleScalarLiterals = "ScalarValues"
	RuleInternal       = "Internal"
)

// Params is a query request.
type Params struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type options struct {
	maxFirst int
	maxSkip  int
	logger   *zap.Logger
}

type Option func(*options)

// MaxFirst bounds the `first` argument of collection fields.
func MaxFirst(n int) Option {
	return func(o *options) {
		o.maxFirst = n
	}
}

// MaxSkip bounds the `skip` argument of collection fields.
func MaxSkip(n int) Option {
	return func(o *options) {
		o.maxSkip = n
	}
}

func Logger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Validator checks query documents against a schema. It holds no per-query
// state and may be shared.
type Validator struct {
	schema *subgraph.Schema
	options
}

func New(schema *subgraph.Schema, opts ...Option) *Validator {
	v := &Validator{
		schema: schema,
		options: options{
			maxFirst: DefaultMaxFirst,
			maxSkip:  DefaultMaxSkip,
			logger:   zap.NewNop(),
		},
	}
	for _, o := range opts {
		o(&v.options)
	}
	return v
}

// Validate checks params against schema with the default bounds.
func Validate(schema *subgraph.Schema, params Params) errors.MultiError {
	return New(schema).Validate(params)
}

// Validate parses and validates a query. It returns nil when the query is
// valid.
func (v *Validator) Validate(params Params) errors.MultiError {
	errs := v.validate(params)
	errs.Sort()

	if len(errs) == 0 {
		metrics.QueryValidations.WithLabelValues("valid").Inc()
		return nil
	}
	metrics.QueryValidations.WithLabelValues("invalid").Inc()
	for _, err := range errs {
		rule := err.Rule
		if rule == "" {
			rule = "unknown"
		}
		metrics.ValidationErrors.WithLabelValues(rule).Inc()
	}
	v.logger.Debug("query rejected",
		zap.String("operationName", params.OperationName),
		zap.Int("errors", len(errs)),
		zap.Error(errs),
	)
	return errs
}

func (v *Validator) validate(params Params) errors.MultiError {
	doc, parseErr := parser.ParseQuery(&ast.Source{Name: params.OperationName, Input: params.Query})
	if parseErr != nil {
		return errors.MultiError{errors.Wrap(parseErr).WithRule(RuleParse)}
	}

	if errs := v.validateDocument(doc); len(errs) > 0 {
		return errs
	}

	op, opErr := operation(doc, params.OperationName)
	if opErr != nil {
		return errors.MultiError{opErr}
	}

	vars, varErr := validator.VariableValues(v.schema.AST(), op, params.Variables)
	if varErr != nil {
		return errors.MultiError{errors.Wrap(varErr).WithRule(RuleVariables)}
	}

	return v.validateArguments(doc, op, vars)
}

// validateDocument runs gqlparser's rules and the known-type check. A schema
// built with AssumeValid may still be broken, so a panic inside the rules is
// reported as an error.
func (v *Validator) validateDocument(doc *ast.QueryDocument) (errs errors.MultiError) {
	schema := v.schema.AST()
	known := knownTypes(schema, doc)

	defer func() {
		if panicErr := recover(); panicErr != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			v.logger.Error("validation panic", zap.Any("panic", panicErr), zap.ByteString("stack", buf))
			errs = append(known, errors.New("validation aborted: %v", panicErr).WithRule(RuleInternal))
		}
	}()

	errs = append(known, errors.FromGQL(validator.Validate(schema, doc))...)
	return errs
}

func operation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, *errors.GraphQLError) {
	if len(doc.Operations) == 0 {
		return nil, errors.New("no operations in query document").WithRule(RuleOperation)
	}
	var op *ast.OperationDefinition
	if name == "" {
		if len(doc.Operations) > 1 {
			return nil, errors.New("more than one operation in query document and no operation name given").WithRule(RuleOperation)
		}
		op = doc.Operations[0]
	} else {
		op = doc.Operations.ForName(name)
		if op == nil {
			return nil, errors.New("no operation with name %q", name).WithRule(RuleOperation)
		}
	}
	if op.Operation != ast.Query {
		return nil, errors.New("%s operations are not supported", op.Operation).At(op.Position).WithRule(RuleOperation)
	}
	return op, nil
}

// knownTypes reports fields whose declared type is absent from the schema.
func knownTypes(schema *ast.Schema, doc *ast.QueryDocument) errors.MultiError {
	var errs errors.MultiError
	seen := map[*ast.Field]bool{}
	observers := &validator.Events{}
	observers.OnField(func(walker *validator.Walker, field *ast.Field) {
		if field.Definition == nil || field.ObjectDefinition == nil || seen[field] {
			return
		}
		seen[field] = true
		name := field.Definition.Type.Name()
		if _, ok := schema.Types[name]; ok {
			return
		}
		errs = append(errs, errors.New("type %q referenced by field \"%s.%s\" is not defined",
			name, field.ObjectDefinition.Name, field.Definition.Name).At(field.Position).WithRule(RuleKnownTypes))
	})
	validator.Walk(schema, doc, observers)
	return errs
}

// validateArguments applies the block, pagination and scalar rules to the
// selected operation and the fragments it spreads.
func (v *Validator) validateArguments(doc *ast.QueryDocument, op *ast.OperationDefinition, vars map[string]interface{}) (errs errors.MultiError) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			errs = append(errs, errors.New("invalid argument: %v", panicErr).WithRule(RuleInternal))
		}
	}()

	reached := reach(doc, op)

	// fragments are walked once per spread and once on their own
	seenFields := map[*ast.Field]bool{}
	seenValues := map[*ast.Value]bool{}

	observers := &validator.Events{}
	observers.OnField(func(_ *validator.Walker, field *ast.Field) {
		if field.Definition == nil || !reached.fields[field] || seenFields[field] {
			return
		}
		seenFields[field] = true
		args := field.ArgumentMap(vars)
		errs = append(errs, v.checkPagination(field, args)...)
		errs = append(errs, checkBlock(field, args)...)
	})
	observers.OnValue(func(_ *validator.Walker, value *ast.Value) {
		if !reached.values[value] || seenValues[value] {
			return
		}
		seenValues[value] = true
		if err := v.checkScalar(value, vars); err != nil {
			errs = append(errs, err)
		}
	})
	validator.Walk(v.schema.AST(), doc, observers)
	return errs
}

// scope holds the fields and values an operation reaches through its
// selections and fragment spreads.
type scope struct {
	doc       *ast.QueryDocument
	fields    map[*ast.Field]bool
	values    map[*ast.Value]bool
	fragments map[string]bool
}

func reach(doc *ast.QueryDocument, op *ast.OperationDefinition) *scope {
	s := &scope{
		doc:       doc,
		fields:    map[*ast.Field]bool{},
		values:    map[*ast.Value]bool{},
		fragments: map[string]bool{},
	}
	for _, varDef := range op.VariableDefinitions {
		s.addValue(varDef.DefaultValue)
		s.addDirectives(varDef.Directives)
	}
	s.addDirectives(op.Directives)
	s.addSelections(op.SelectionSet)
	return s
}

func (s *scope) addSelections(set ast.SelectionSet) {
	for _, selection := range set {
		switch sel := selection.(type) {
		case *ast.Field:
			s.fields[sel] = true
			for _, arg := range sel.Arguments {
				s.addValue(arg.Value)
			}
			s.addDirectives(sel.Directives)
			s.addSelections(sel.SelectionSet)
		case *ast.InlineFragment:
			s.addDirectives(sel.Directives)
			s.addSelections(sel.SelectionSet)
		case *ast.FragmentSpread:
			s.addDirectives(sel.Directives)
			if s.fragments[sel.Name] {
				continue
			}
			s.fragments[sel.Name] = true
			if def := s.doc.Fragments.ForName(sel.Name); def != nil {
				s.addDirectives(def.Directives)
				s.addSelections(def.SelectionSet)
			}
		}
	}
}

func (s *scope) addDirectives(directives ast.DirectiveList) {
	for _, d := range directives {
		for _, arg := range d.Arguments {
			s.addValue(arg.Value)
		}
	}
}

func (s *scope) addValue(value *ast.Value) {
	if value == nil {
		return
	}
	s.values[value] = true
	for _, child := range value.Children {
		s.addValue(child.Value)
	}
}

func (v *Validator) checkPagination(field *ast.Field, args map[string]interface{}) errors.MultiError {
	var errs errors.MultiError
	bounds := []struct {
		name string
		max  int
	}{
		{"first", v.maxFirst},
		{"skip", v.maxSkip},
	}
	for _, b := range bounds {
		if field.Definition.Arguments.ForName(b.name) == nil {
			continue
		}
		raw, ok := args[b.name]
		if !ok || raw == nil {
			continue
		}
		n, err := toInt(raw)
		if err != nil {
			errs = append(errs, errors.New("argument %q of field %q: %v", b.name, field.Name, err).
				At(argumentPosition(field, b.name)).WithRule(RulePagination))
			continue
		}
		if n < 0 || n > int64(b.max) {
			errs = append(errs, errors.New("argument %q of field %q must be between 0 and %d, got %d", b.name, field.Name, b.max, n).
				At(argumentPosition(field, b.name)).WithRule(RulePagination))
		}
	}
	return errs
}

func checkBlock(field *ast.Field, args map[string]interface{}) errors.MultiError {
	for _, argDef := range field.Definition.Arguments {
		if argDef.Type.Name() != subgraph.BlockHeight {
			continue
		}
		block, ok := args[argDef.Name].(map[string]interface{})
		if !ok {
			continue
		}
		var given []string
		for _, name := range subgraph.BlockHeightFields {
			if block[name] != nil {
				given = append(given, name)
			}
		}
		if len(given) > 1 {
			return errors.MultiError{errors.New("argument %q of field %q takes at most one of %v, got %v",
				argDef.Name, field.Name, subgraph.BlockHeightFields, given).
				At(argumentPosition(field, argDef.Name)).WithRule(RuleBlockHeight)}
		}
	}
	return nil
}

// checkScalar runs custom scalar parsers over literals and variable values.
// Built-in scalars are left to gqlparser.
func (v *Validator) checkScalar(value *ast.Value, vars map[string]interface{}) *errors.GraphQLError {
	if value.Definition == nil || value.ExpectedType == nil {
		return nil
	}

	if value.Kind == ast.Variable {
		raw, ok := vars[value.Raw]
		if !ok {
			return nil
		}
		if err := v.parseVariable(value.ExpectedType, raw); err != nil {
			return errors.New("variable $%s: %v", value.Raw, err).At(value.Position).WithRule(RuleScalarLiterals)
		}
		return nil
	}

	// object and list literals are checked item by item
	if value.Definition.Kind != ast.Scalar || value.Kind == ast.NullValue || value.Kind == ast.ListValue || value.Kind == ast.ObjectValue {
		return nil
	}
	scalar := v.schema.Scalar(value.Definition.Name)
	if scalar == nil || scalar.BuiltIn || scalar.ParseLiteral == nil {
		return nil
	}
	if _, err := scalar.ParseLiteral(value); err != nil {
		return errors.New("%v", err).At(value.Position).WithRule(RuleScalarLiterals)
	}
	return nil
}

// parseVariable checks a coerced variable value against t, descending into
// lists and input objects down to the custom scalar leaves.
func (v *Validator) parseVariable(t *ast.Type, raw interface{}) error {
	if raw == nil {
		return nil
	}
	if t.Elem != nil {
		list, ok := raw.([]interface{})
		if !ok {
			return v.parseVariable(t.Elem, raw)
		}
		for i, item := range list {
			if err := v.parseVariable(t.Elem, item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}

	def := v.schema.AST().Types[t.Name()]
	if def == nil {
		return nil
	}
	switch def.Kind {
	case ast.Scalar:
		scalar := v.schema.Scalar(def.Name)
		if scalar == nil || scalar.BuiltIn || scalar.ParseValue == nil {
			return nil
		}
		_, err := scalar.ParseValue(raw)
		return err
	case ast.InputObject:
		fields, ok := raw.(map[string]interface{})
		if !ok {
			return nil
		}
		for _, field := range def.Fields {
			item, ok := fields[field.Name]
			if !ok {
				continue
			}
			if err := v.parseVariable(field.Type, item); err != nil {
				return fmt.Errorf("field %q: %w", field.Name, err)
			}
		}
	}
	return nil
}

func argumentPosition(field *ast.Field, name string) *ast.Position {
	if arg := field.Arguments.ForName(name); arg != nil {
		return arg.Position
	}
	return field.Position
}

func toInt(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	}
	return 0, fmt.Errorf("unexpected type %T", value)
}
