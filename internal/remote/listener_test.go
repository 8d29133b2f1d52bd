package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChange(t *testing.T) {
	change, err := ParseChange(`{"collection":"messages","op":"INSERT","id":"m1","keys":["a_b","a","b"]}`)
	require.NoError(t, err)
	assert.Equal(t, CollectionMessages, change.Collection)
	assert.True(t, change.Inserted())
	assert.Equal(t, "a_b", change.Key(0))
	assert.Equal(t, "b", change.Key(2))
	assert.Equal(t, "", change.Key(3))
}

func TestParseChangeRejectsGarbage(t *testing.T) {
	_, err := ParseChange("not json")
	assert.Error(t, err)
}

func TestMessagePath(t *testing.T) {
	assert.Equal(t, "messages/a_b/messages/m1", MessagePath("a_b", "m1"))
}
