package mutation

import (
	"fmt"
	"strings"
)

// Statement is a parameterized Cypher statement.
type Statement struct {
	Query  string
	Params map[string]any
}

// Cypher renders an operation as a parameterized Cypher statement.
// Labels and property names are quoted identifiers; every value is a parameter.
// The statement returns the element id of what it created, or no rows when an
// endpoint match fails.
func Cypher(op Operation) (Statement, error) {
	params := make(map[string]any)
	var b strings.Builder

	switch {
	case len(op.Steps) == 1:
		add, ok := op.Steps[0].(AddVertex)
		if !ok {
			return Statement{}, fmt.Errorf("%w: single step must be AddVertex, got %T", ErrMalformedOperation, op.Steps[0])
		}
		fmt.Fprintf(&b, "CREATE (v:%s)", quoteIdent(add.Label))
		writeSet(&b, "v", add.Properties, params)
		b.WriteString(" RETURN elementId(v) AS id")

	case len(op.Steps) == 3:
		src, ok1 := op.Steps[0].(MatchVertex)
		edge, ok2 := op.Steps[1].(AddEdge)
		conn, ok3 := op.Steps[2].(Connect)
		if !ok1 || !ok2 || !ok3 {
			return Statement{}, fmt.Errorf("%w: expected MatchVertex, AddEdge, Connect", ErrMalformedOperation)
		}
		writeMatch(&b, "s", src, "src", params)
		b.WriteString(" ")
		writeMatch(&b, "d", conn.To, "dst", params)
		fmt.Fprintf(&b, " CREATE (s)-[e:%s]->(d)", quoteIdent(edge.Label))
		writeSet(&b, "e", edge.Properties, params)
		b.WriteString(" RETURN elementId(e) AS id")

	default:
		return Statement{}, fmt.Errorf("%w: %d steps", ErrMalformedOperation, len(op.Steps))
	}

	return Statement{Query: b.String(), Params: params}, nil
}

func writeMatch(b *strings.Builder, variable string, m MatchVertex, param string, params map[string]any) {
	if m.Label == "" {
		fmt.Fprintf(b, "MATCH (%s {%s: $%s})", variable, quoteIdent(m.Attribute), param)
	} else {
		fmt.Fprintf(b, "MATCH (%s:%s {%s: $%s})", variable, quoteIdent(m.Label), quoteIdent(m.Attribute), param)
	}
	params[param] = m.Value
}

func writeSet(b *strings.Builder, variable string, props []Property, params map[string]any) {
	for i, p := range props {
		if i == 0 {
			b.WriteString(" SET ")
		} else {
			b.WriteString(", ")
		}
		name := fmt.Sprintf("p%d", i)
		fmt.Fprintf(b, "%s.%s = $%s", variable, quoteIdent(p.Key), name)
		params[name] = p.Value
	}
}

func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
