package mutation

import (
	"fmt"
	"strings"
)

// Gremlin renders an operation as a Gremlin traversal.
func Gremlin(op Operation) (string, error) {
	var b strings.Builder
	b.WriteString("g")

	for i, s := range op.Steps {
		switch step := s.(type) {
		case AddVertex:
			if i != 0 {
				return "", fmt.Errorf("%w: AddVertex must be the first step", ErrMalformedOperation)
			}
			fmt.Fprintf(&b, ".addV(%s)", quoteString(step.Label))
			writeProperties(&b, step.Properties)
		case MatchVertex:
			b.WriteString(".V()")
			writeHas(&b, step)
		case AddEdge:
			if i == 0 {
				return "", fmt.Errorf("%w: AddEdge needs a preceding MatchVertex", ErrMalformedOperation)
			}
			fmt.Fprintf(&b, ".addE(%s)", quoteString(step.Label))
			writeProperties(&b, step.Properties)
		case Connect:
			b.WriteString(".to(g.V()")
			writeHas(&b, step.To)
			b.WriteString(")")
		default:
			return "", fmt.Errorf("%w: unknown step %T", ErrMalformedOperation, s)
		}
	}

	return b.String(), nil
}

func writeHas(b *strings.Builder, m MatchVertex) {
	if m.Label == "" {
		fmt.Fprintf(b, ".has(%s, %s)", quoteString(m.Attribute), quoteString(m.Value))
		return
	}
	fmt.Fprintf(b, ".has(%s, %s, %s)", quoteString(m.Label), quoteString(m.Attribute), quoteString(m.Value))
}

func writeProperties(b *strings.Builder, props []Property) {
	for _, p := range props {
		fmt.Fprintf(b, ".property(%s, %s)", quoteString(p.Key), quoteString(p.Value))
	}
}

var gremlinEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteString(s string) string {
	return "'" + gremlinEscaper.Replace(s) + "'"
}
