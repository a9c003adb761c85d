package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "123456789"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "123456789", cursor.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("!!not-base64!!")
	assert.Error(t, err)

	_, err = DecodeCursor("bm90IGpzb24")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(v int) string { return "cursor" }

	data, info := BuildCursorPageInfo([]int{1, 2, 3}, 2, extract)
	assert.Len(t, data, 2)
	assert.True(t, info.HasMore)
	assert.Equal(t, "cursor", info.NextPageToken)

	data, info = BuildCursorPageInfo([]int{1, 2}, 2, extract)
	assert.Len(t, data, 2)
	assert.False(t, info.HasMore)
	assert.Equal(t, "cursor", info.NextPageToken)

	data, info = BuildCursorPageInfo(nil, 2, extract)
	assert.Empty(t, data)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}
