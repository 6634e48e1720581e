package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phyten/usagex/internal/model"
)

func fieldKeys(sel FieldSelection) []string {
	out := make([]string, len(sel.Fields))
	for i, f := range sel.Fields {
		out[i] = f.Key
	}
	return out
}

func TestResolveFieldsDefaults(t *testing.T) {
	sel, err := ResolveFields("", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"category", "location", "function", "class", "text"}, fieldKeys(sel))
	assert.False(t, sel.ShowURL)

	sel, err = ResolveFields("  ", true)
	require.NoError(t, err)
	assert.Equal(t, "url", sel.Fields[len(sel.Fields)-1].Key)
	assert.True(t, sel.ShowURL)
}

func TestResolveFieldsAliases(t *testing.T) {
	sel, err := ResolveFields("Kind, col ,language,loc", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"category", "column", "lang", "location"}, fieldKeys(sel))
	assert.Equal(t, []string{"CATEGORY", "COLUMN", "LANG", "LOCATION"}, Headers(sel.Fields))
}

func TestResolveFieldsErrors(t *testing.T) {
	cases := map[string]string{
		"unknown": "category,author",
		"empty":   "category,,text",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ResolveFields(raw, false); err == nil {
				t.Fatalf("%q はエラーになるはず", raw)
			}
		})
	}
}

func TestFieldValue(t *testing.T) {
	assert.Equal(t, "1", FieldValue(importItem, "line"))
	assert.Equal(t, "10", FieldValue(importItem, "column"))
	assert.Equal(t, "getTotal", FieldValue(importItem, "imports"))
	assert.Equal(t, "getTotal() {", FieldValue(defItem, "text"))
	assert.Equal(t, "Cart", FieldValue(defItem, "class"))
	assert.Equal(t, "", FieldValue(commentItem, "function"))
	assert.Equal(t, importItem.URL, FieldValue(importItem, "url"))
	assert.Equal(t, "", FieldValue(importItem, "nope"))

	multi := importItem
	multi.Context = model.MatchContext{ImportedItems: []string{"a", "b"}}
	assert.Equal(t, "a, b", FieldValue(multi, "imports"))
}
