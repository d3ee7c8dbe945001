package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeID(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		a, b := NewNodeID(), NewNodeID()
		assert.True(t, strings.HasPrefix(a.String(), "peer-"))
		assert.NotEqual(t, a, b)
		assert.Len(t, a.ShortString(), 8)
	})

	t.Run("Short", func(t *testing.T) {
		assert.Equal(t, "p1", NodeID("p1").ShortString())
		assert.True(t, EmptyNodeID.IsEmpty())
	})
}

func TestDedupTopics(t *testing.T) {
	got := DedupTopics(TopicsFromStrings([]string{"a", " ", "b", "a", ""}))
	assert.Equal(t, []TopicName{"a", "b"}, got)
	assert.Equal(t, []string{"a", "b"}, TopicsToStrings(got))
	assert.Nil(t, TopicsFromStrings(nil))
}
