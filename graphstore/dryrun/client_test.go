package dryrun

import (
	"bytes"
	"context"
	"testing"

	"github.com/poiesic/graphload/mutation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personOp() mutation.Operation {
	return mutation.Operation{
		Entity: "Person",
		Steps: []mutation.Step{mutation.AddVertex{Label: "Person", Properties: []mutation.Property{
			{Key: "id", Value: "p1"},
		}}},
	}
}

func TestExecute_Gremlin(t *testing.T) {
	var buf bytes.Buffer
	c := NewClient(&buf, "")

	res, err := c.Execute(context.Background(), personOp())
	require.NoError(t, err)
	assert.True(t, mutation.Succeeded(res))
	assert.Equal(t, "g.addV('Person').property('id', 'p1')\n", buf.String())
}

func TestExecute_Cypher(t *testing.T) {
	var buf bytes.Buffer
	c := NewClient(&buf, SyntaxCypher)

	_, err := c.Execute(context.Background(), personOp())
	require.NoError(t, err)
	assert.Equal(t, "CREATE (v:`Person`) SET v.`id` = $p0 RETURN elementId(v) AS id {\"p0\":\"p1\"}\n", buf.String())
}

func TestExecute_Malformed(t *testing.T) {
	c := NewClient(&bytes.Buffer{}, SyntaxGremlin)
	_, err := c.Execute(context.Background(), mutation.Operation{Steps: []mutation.Step{mutation.AddEdge{}}})
	assert.ErrorIs(t, err, mutation.ErrMalformedOperation)
}

func TestParseSyntax(t *testing.T) {
	s, err := ParseSyntax("")
	require.NoError(t, err)
	assert.Equal(t, SyntaxGremlin, s)

	s, err = ParseSyntax("gremlin")
	require.NoError(t, err)
	assert.Equal(t, SyntaxGremlin, s)

	s, err = ParseSyntax("cypher")
	require.NoError(t, err)
	assert.Equal(t, SyntaxCypher, s)

	_, err = ParseSyntax("sparql")
	assert.Error(t, err)
}
