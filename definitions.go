package subgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/vektah/gqlparser/v2/ast"
)

// SerializeFn is a function type for serializing a scalar value into its wire form.
type SerializeFn func(value interface{}) (interface{}, error)

// ParseValueFn is a function type for parsing a variable value decoded from JSON.
type ParseValueFn func(value interface{}) (interface{}, error)

// ParseLiteralFn is a function type for parsing a literal written in a query document.
type ParseLiteralFn func(valueAST *ast.Value) (interface{}, error)

// ScalarBuilder describes a leaf type: the Go type it maps from, the filter
// operators it gets and how its values cross the wire.
type ScalarBuilder struct {
	Name         string
	Description  string
	Type         reflect.Type
	Category     Category
	BuiltIn      bool
	Serialize    SerializeFn
	ParseValue   ParseValueFn
	ParseLiteral ParseLiteralFn
}

func (s *ScalarBuilder) definition() *ast.Definition {
	return &ast.Definition{
		Kind:        ast.Scalar,
		Name:        s.Name,
		Description: s.Description,
		Position:    position,
	}
}

var BooleanScalar = &ScalarBuilder{
	Name:     "Boolean",
	Type:     reflect.TypeOf(false),
	Category: CategoryBoolean,
	BuiltIn:  true,
	Serialize: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case bool:
			return v, nil
		case *bool:
			return *v, nil
		}
		return nil, fmt.Errorf("unexpected type %T for Boolean", value)
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		if v, ok := value.(bool); ok {
			return v, nil
		}
		return nil, errors.New("not a bool")
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.BooleanValue {
			return nil, literalError("Boolean", valueAST)
		}
		return valueAST.Raw == "true", nil
	},
}

var IntScalar = &ScalarBuilder{
	Name:     "Int",
	Type:     reflect.TypeOf(int32(0)),
	Category: CategoryNumeric,
	BuiltIn:  true,
	Serialize: func(value interface{}) (interface{}, error) {
		v, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		v, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		if v > math.MaxInt32 || v < math.MinInt32 {
			return nil, errors.New("value not int32")
		}
		return int32(v), nil
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.IntValue {
			return nil, literalError("Int", valueAST)
		}
		v, err := strconv.ParseInt(valueAST.Raw, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	},
}

var StringScalar = &ScalarBuilder{
	Name:     "String",
	Type:     reflect.TypeOf(""),
	Category: CategoryString,
	BuiltIn:  true,
	Serialize: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case string:
			return v, nil
		case *string:
			return *v, nil
		}
		return nil, fmt.Errorf("unexpected type %T for String", value)
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		if v, ok := value.(string); ok {
			return v, nil
		}
		return nil, errors.New("not a string")
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.StringValue && valueAST.Kind != ast.BlockValue {
			return nil, literalError("String", valueAST)
		}
		return valueAST.Raw, nil
	},
}

// ID is the GraphQL ID scalar.
type ID string

var IDScalar = &ScalarBuilder{
	Name:     "ID",
	Type:     reflect.TypeOf(ID("")),
	Category: CategoryBytes,
	BuiltIn:  true,
	Serialize: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case ID:
			return string(v), nil
		case string:
			return v, nil
		case Bytes:
			return v.String(), nil
		}
		return nil, fmt.Errorf("unexpected type %T for ID", value)
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case string:
			return ID(v), nil
		case float64:
			return ID(strconv.FormatFloat(v, 'f', -1, 64)), nil
		case json.Number:
			return ID(v.String()), nil
		}
		return nil, errors.New("not an ID")
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.StringValue && valueAST.Kind != ast.IntValue {
			return nil, literalError("ID", valueAST)
		}
		return ID(valueAST.Raw), nil
	},
}

var BigIntScalar = &ScalarBuilder{
	Name:     "BigInt",
	Type:     reflect.TypeOf(BigInt{}),
	Category: CategoryNumeric,
	Serialize: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case BigInt:
			return v.String(), nil
		case *BigInt:
			return v.String(), nil
		case *big.Int:
			return v.String(), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case int:
			return strconv.Itoa(v), nil
		}
		return nil, fmt.Errorf("unexpected type %T for BigInt", value)
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case string:
			return ParseBigInt(v)
		case json.Number:
			return ParseBigInt(v.String())
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("BigInt cannot represent %v", v)
			}
			f, _ := big.NewFloat(v).Int(nil)
			return BigIntFrom(f), nil
		case int, int32, int64:
			i, _ := toInt64(v)
			return NewBigInt(i), nil
		}
		return nil, fmt.Errorf("BigInt cannot represent %v", value)
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.StringValue && valueAST.Kind != ast.IntValue {
			return nil, literalError("BigInt", valueAST)
		}
		return ParseBigInt(valueAST.Raw)
	},
}

var BigDecimalScalar = &ScalarBuilder{
	Name:     "BigDecimal",
	Type:     reflect.TypeOf(BigDecimal{}),
	Category: CategoryNumeric,
	Serialize: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case BigDecimal:
			return v.String(), nil
		case decimal.Decimal:
			return v.String(), nil
		}
		return nil, fmt.Errorf("unexpected type %T for BigDecimal", value)
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case string:
			return ParseBigDecimal(v)
		case json.Number:
			return ParseBigDecimal(v.String())
		case float64:
			return BigDecimal{Decimal: decimal.NewFromFloat(v)}, nil
		}
		return nil, fmt.Errorf("BigDecimal cannot represent %v", value)
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		switch valueAST.Kind {
		case ast.StringValue, ast.IntValue, ast.FloatValue:
			return ParseBigDecimal(valueAST.Raw)
		}
		return nil, literalError("BigDecimal", valueAST)
	},
}

var BytesScalar = &ScalarBuilder{
	Name:     "Bytes",
	Type:     reflect.TypeOf(Bytes{}),
	Category: CategoryBytes,
	Serialize: func(value interface{}) (interface{}, error) {
		switch v := value.(type) {
		case Bytes:
			return v.String(), nil
		case []byte:
			return Bytes(v).String(), nil
		}
		return nil, fmt.Errorf("unexpected type %T for Bytes", value)
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		if v, ok := value.(string); ok {
			return ParseBytes(v)
		}
		return nil, fmt.Errorf("Bytes cannot represent %v", value)
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.StringValue {
			return nil, literalError("Bytes", valueAST)
		}
		return ParseBytes(valueAST.Raw)
	},
}

var Int8Scalar = &ScalarBuilder{
	Name:     "Int8",
	Type:     reflect.TypeOf(Int8(0)),
	Category: CategoryNumeric,
	Serialize: func(value interface{}) (interface{}, error) {
		v, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return strconv.FormatInt(v, 10), nil
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		v, err := toInt64(value)
		if err != nil {
			return nil, fmt.Errorf("Int8 cannot represent %v: %w", value, err)
		}
		return Int8(v), nil
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.StringValue && valueAST.Kind != ast.IntValue {
			return nil, literalError("Int8", valueAST)
		}
		v, err := strconv.ParseInt(valueAST.Raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return Int8(v), nil
	},
}

var TimestampScalar = &ScalarBuilder{
	Name:        "Timestamp",
	Description: "A timestamp in microseconds since the Unix epoch",
	Type:        reflect.TypeOf(Timestamp(0)),
	Category:    CategoryNumeric,
	Serialize: func(value interface{}) (interface{}, error) {
		v, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return strconv.FormatInt(v, 10), nil
	},
	ParseValue: func(value interface{}) (interface{}, error) {
		v, err := toInt64(value)
		if err != nil {
			return nil, fmt.Errorf("Timestamp cannot represent %v: %w", value, err)
		}
		return Timestamp(v), nil
	},
	ParseLiteral: func(valueAST *ast.Value) (interface{}, error) {
		if valueAST.Kind != ast.StringValue && valueAST.Kind != ast.IntValue {
			return nil, literalError("Timestamp", valueAST)
		}
		v, err := strconv.ParseInt(valueAST.Raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return Timestamp(v), nil
	},
}

// defaultScalars returns the builtin and subgraph scalars keyed by name.
func defaultScalars() map[string]*ScalarBuilder {
	return map[string]*ScalarBuilder{
		"Boolean":    BooleanScalar,
		"Int":        IntScalar,
		"String":     StringScalar,
		"ID":         IDScalar,
		"BigInt":     BigIntScalar,
		"BigDecimal": BigDecimalScalar,
		"Bytes":      BytesScalar,
		"Int8":       Int8Scalar,
		"Timestamp":  TimestampScalar,
	}
}

func literalError(name string, valueAST *ast.Value) error {
	return fmt.Errorf("%s cannot represent %s", name, valueAST.String())
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case Int8:
		return int64(v), nil
	case Timestamp:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("unexpected type %T", value)
}
