package subgraph

import (
	"io"
	"strings"

	"github.com/vektah/gqlparser/v2/formatter"
)

// SDL prints the declared document. Prelude types are not printed.
func (s *Schema) SDL() string {
	var buf strings.Builder
	formatter.NewFormatter(&buf).FormatSchemaDocument(s.document)
	return buf.String()
}

func (s *Schema) WriteSDL(w io.Writer) error {
	_, err := io.WriteString(w, s.SDL())
	return err
}
