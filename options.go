package subgraph

type Option func(*options)

type options struct {
	name         string
	description  string
	singular     string
	plural       string
	mutable      bool
	category     *Category
	serialize    SerializeFn
	parseValue   ParseValueFn
	parseLiteral ParseLiteralFn
	subgraphID   string
	defaultFirst int
	assumeValid  bool
}

func Name(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func Description(description string) Option {
	return func(o *options) {
		o.description = description
	}
}

// Singular overrides the single-entity query field name of an entity.
func Singular(name string) Option {
	return func(o *options) {
		o.singular = name
	}
}

// Plural overrides the collection query field name of an entity.
func Plural(name string) Option {
	return func(o *options) {
		o.plural = name
	}
}

// Mutable drops the immutable flag from an entity.
func Mutable() Option {
	return func(o *options) {
		o.mutable = true
	}
}

// FilterCategory sets the filter operators of a custom scalar.
func FilterCategory(c Category) Option {
	return func(o *options) {
		o.category = &c
	}
}

func Serialize(fn SerializeFn) Option {
	return func(o *options) {
		o.serialize = fn
	}
}

func ParseValue(fn ParseValueFn) Option {
	return func(o *options) {
		o.parseValue = fn
	}
}

func ParseLiteral(fn ParseLiteralFn) Option {
	return func(o *options) {
		o.parseLiteral = fn
	}
}

// SubgraphID annotates every entity with @subgraphId(id: ...).
func SubgraphID(id string) Option {
	return func(o *options) {
		o.subgraphID = id
	}
}

// DefaultFirst sets the default page size of collection fields.
func DefaultFirst(n int) Option {
	return func(o *options) {
		o.defaultFirst = n
	}
}

// AssumeValid makes Build trust the document and skip schema validation.
func AssumeValid() Option {
	return func(o *options) {
		o.assumeValid = true
	}
}
