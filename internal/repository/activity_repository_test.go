package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Records produced in one generation pass share a single timestamp, so the
// viewer queries must break ties on _id or page boundaries inside an
// equal-timestamp group become unstable.
func TestViewerSortNewestFirstBreaksTimestampTies(t *testing.T) {
	require.Len(t, viewerSortNewestFirst, 2)

	assert.Equal(t, "timestamp", viewerSortNewestFirst[0].Key)
	assert.Equal(t, -1, viewerSortNewestFirst[0].Value)
	assert.Equal(t, "_id", viewerSortNewestFirst[1].Key)
	assert.Equal(t, -1, viewerSortNewestFirst[1].Value)
}

func TestViewerSortOldestFirstBreaksTimestampTies(t *testing.T) {
	require.Len(t, viewerSortOldestFirst, 2)

	assert.Equal(t, "timestamp", viewerSortOldestFirst[0].Key)
	assert.Equal(t, 1, viewerSortOldestFirst[0].Value)
	assert.Equal(t, "_id", viewerSortOldestFirst[1].Key)
	assert.Equal(t, 1, viewerSortOldestFirst[1].Value)
}
