package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchStyleFor(t *testing.T) {
	cases := map[string]FetchStyle{
		"object":      FetchObject,
		"OBJ":         FetchObject,
		"assoc":       FetchAssoc,
		"Associative": FetchAssoc,
		"assoc_dup":   FetchAssocDup,
		"keep":        FetchAssocDup,
		"both":        FetchCombined,
		"combined":    FetchCombined,
		"num":         FetchIndexed,
		"":            FetchIndexed,
		"  assoc  ":   FetchAssoc,
		"nonsense":    FetchIndexed,
	}
	for hint, want := range cases {
		assert.Equal(t, want, FetchStyleFor(hint), "hint %q", hint)
	}
}

func TestShapeIndexed(t *testing.T) {
	row := shape([]string{"a", "b"}, []any{1, 2}, FetchIndexed)
	assert.Equal(t, []any{1, 2}, row.Values)
	assert.Nil(t, row.ByName)
	assert.Equal(t, 1, row.First())

	// Get falls back to a positional scan without a name-keyed view.
	v, ok := row.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestShapeAssocCollapsesDuplicates(t *testing.T) {
	row := shape([]string{"a", "a"}, []any{1, 2}, FetchAssoc)
	assert.Equal(t, map[string]any{"a": 2}, row.ByName)
	assert.Equal(t, []any{1, 2}, row.Values)
}

func TestShapeAssocDupKeepsDuplicates(t *testing.T) {
	row := shape([]string{"a", "a"}, []any{1, 2}, FetchAssocDup)
	assert.Equal(t, map[string]any{"a": 1, "a_1": 2}, row.ByName)
}

func TestRowFirstEmpty(t *testing.T) {
	assert.Nil(t, Row{}.First())
	_, ok := Row{}.Get("a")
	assert.False(t, ok)
}
