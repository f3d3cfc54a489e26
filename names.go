package subgraph

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// singularName derives the single-entity query field from a type name.
// The leading upper-case run is lowercased, except for its last letter when
// that letter starts the next word: URI -> uri, URIValue -> uriValue,
// ContractURIUpdated -> contractURIUpdated.
func singularName(name string) string {
	runes := []rune(name)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n == 0 {
		return name
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	return strings.ToLower(string(runes[:n])) + string(runes[n:])
}

// pluralName derives the collection query field from the singular name.
func pluralName(singular string) string {
	return inflection.Plural(singular)
}
