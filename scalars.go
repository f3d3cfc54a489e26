package subgraph

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// BigInt is an arbitrary precision signed integer. On the wire it is a
// decimal string.
type BigInt struct {
	i *big.Int
}

func NewBigInt(x int64) BigInt {
	return BigInt{i: big.NewInt(x)}
}

// BigIntFrom copies x.
func BigIntFrom(x *big.Int) BigInt {
	if x == nil {
		return BigInt{}
	}
	return BigInt{i: new(big.Int).Set(x)}
}

func ParseBigInt(s string) (BigInt, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return BigInt{}, fmt.Errorf("invalid BigInt %q", s)
	}
	return BigInt{i: i}, nil
}

// Int returns a copy of the underlying value. The zero BigInt is 0.
func (b BigInt) Int() *big.Int {
	if b.i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.i)
}

func (b BigInt) String() string {
	if b.i == nil {
		return "0"
	}
	return b.i.String()
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil {
		return err
	}
	v, err := ParseBigInt(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// BigDecimal is an arbitrary precision decimal. On the wire it is a
// decimal string.
type BigDecimal struct {
	decimal.Decimal
}

func ParseBigDecimal(s string) (BigDecimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return BigDecimal{}, fmt.Errorf("invalid BigDecimal %q: %w", s, err)
	}
	return BigDecimal{Decimal: d}, nil
}

// Bytes is a byte array. On the wire it is a 0x prefixed hex string.
type Bytes []byte

func ParseBytes(s string) (Bytes, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid Bytes %q: %w", s, err)
	}
	return Bytes(b), nil
}

func (b Bytes) String() string {
	return hexutil.Encode(b)
}

func (b Bytes) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b).MarshalText()
}

func (b *Bytes) UnmarshalText(input []byte) error {
	return (*hexutil.Bytes)(b).UnmarshalText(input)
}

// Int8 is a signed 64-bit integer. It is written as a decimal string so
// that JSON clients do not lose precision, and accepted as either form.
type Int8 int64

func (i Int8) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(i), 10))
}

func (i *Int8) UnmarshalJSON(data []byte) error {
	v, err := unmarshalInt64(data)
	if err != nil {
		return err
	}
	*i = Int8(v)
	return nil
}

// Timestamp counts microseconds since the Unix epoch.
type Timestamp int64

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixMicro())
}

func (ts Timestamp) Time() time.Time {
	return time.UnixMicro(int64(ts)).UTC()
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(ts), 10))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	v, err := unmarshalInt64(data)
	if err != nil {
		return err
	}
	*ts = Timestamp(v)
	return nil
}

func unquoteNumber(data []byte) (string, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(data), nil
}

func unmarshalInt64(data []byte) (int64, error) {
	s, err := unquoteNumber(data)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}
