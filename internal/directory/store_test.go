package directory

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-topicmesh/pkg/types"
)

func topics(ss ...string) []types.TopicName {
	return types.TopicsFromStrings(ss)
}

// TestStore_Register 测试注册与查询
func TestStore_Register(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewStore(clk)

	entry, err := s.Register("p1", "http://127.0.0.1:8081", topics("a", "b", "a", ""))
	require.NoError(t, err)
	assert.Equal(t, topics("a", "b"), entry.Topics)
	assert.Equal(t, clk.Now(), entry.RegisteredAt)

	got, ok := s.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, types.NodeID("p1"), got.NodeID)
	assert.Equal(t, "http://127.0.0.1:8081", got.Address)

	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

// TestStore_Register_EmptyNodeID 测试空节点ID
func TestStore_Register_EmptyNodeID(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Register("", "", topics("a"))
	assert.ErrorIs(t, err, types.ErrEmptyNodeID)
}

// TestStore_Register_Overwrite 测试重复注册为覆盖语义
func TestStore_Register_Overwrite(t *testing.T) {
	clk := clock.NewMock()
	s := NewStore(clk)

	first, err := s.Register("p1", "http://a", topics("a", "b"))
	require.NoError(t, err)

	clk.Add(time.Minute)
	second, err := s.Register("p1", "", topics("c"))
	require.NoError(t, err)

	assert.Equal(t, topics("c"), second.Topics)
	assert.Equal(t, "http://a", second.Address, "empty address keeps the previous one")
	assert.Equal(t, first.RegisteredAt, second.RegisteredAt)

	_, ok := s.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Stats().Nodes)
}

// TestStore_Register_Conflict 测试主题唯一性
func TestStore_Register_Conflict(t *testing.T) {
	s := NewStore(nil)

	_, err := s.Register("p1", "", topics("a"))
	require.NoError(t, err)

	_, err = s.Register("p2", "", topics("b", "a"))
	require.ErrorIs(t, err, ErrTopicConflict)
	assert.Contains(t, err.Error(), "p1")

	_, ok := s.Get("p2")
	assert.False(t, ok, "rejected register leaves no entry")

	// 同一节点重复声明自己的主题不算冲突
	_, err = s.Register("p1", "", topics("a", "c"))
	assert.NoError(t, err)
}

// TestStore_UpdateTopics 测试更新主题
func TestStore_UpdateTopics(t *testing.T) {
	s := NewStore(nil)

	_, err := s.UpdateTopics("ghost", topics("x"))
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = s.Register("p1", "", topics("a", "b"))
	require.NoError(t, err)
	_, err = s.Register("p2", "", topics("c"))
	require.NoError(t, err)

	entry, err := s.UpdateTopics("p1", topics("b", "d"))
	require.NoError(t, err)
	assert.Equal(t, topics("b", "d"), entry.Topics)

	_, ok := s.Lookup("a")
	assert.False(t, ok, "update replaces rather than merges")

	_, err = s.UpdateTopics("p1", topics("c"))
	assert.ErrorIs(t, err, ErrTopicConflict)

	got, _ := s.Get("p1")
	assert.Equal(t, topics("b", "d"), got.Topics, "rejected update leaves topics intact")
}

// TestStore_AddTopics 测试追加主题为合并语义
func TestStore_AddTopics(t *testing.T) {
	s := NewStore(nil)

	_, err := s.AddTopics("ghost", topics("x"))
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, _ = s.Register("p1", "", topics("a"))
	_, _ = s.Register("p2", "", topics("b"))

	entry, err := s.AddTopics("p1", topics("c", "a", ""))
	require.NoError(t, err)
	assert.Equal(t, topics("a", "c"), entry.Topics)

	_, err = s.AddTopics("p1", topics("d", "b"))
	assert.ErrorIs(t, err, ErrTopicConflict)

	got, _ := s.Get("p1")
	assert.Equal(t, topics("a", "c"), got.Topics, "rejected add leaves topics intact")
}

// TestStore_Unregister_Migrates 测试注销后主题迁移到最早注册的节点
func TestStore_Unregister_Migrates(t *testing.T) {
	s := NewStore(nil)

	_, _ = s.Register("p1", "", topics("a"))
	_, _ = s.Register("p2", "", topics("b"))
	_, _ = s.Register("p3", "", topics("c", "d"))

	result, err := s.Unregister("p3")
	require.NoError(t, err)
	assert.True(t, result.Migrated())
	assert.Equal(t, types.NodeID("p1"), result.MigratedTo)
	assert.Equal(t, topics("c", "d"), result.Topics)
	assert.False(t, result.Deleted)

	for _, topic := range topics("c", "d") {
		entry, ok := s.Lookup(topic)
		require.True(t, ok, "topic %s should survive", topic)
		assert.Equal(t, types.NodeID("p1"), entry.NodeID)
	}

	p1, _ := s.Get("p1")
	assert.Equal(t, topics("a", "c", "d"), p1.Topics)

	_, ok := s.Get("p3")
	assert.False(t, ok)
}

// TestStore_Unregister_TieBreak 测试迁移目标选取的确定性
func TestStore_Unregister_TieBreak(t *testing.T) {
	for i := 0; i < 20; i++ {
		s := NewStore(nil)
		_, _ = s.Register("p1", "", topics("a"))
		_, _ = s.Register("p2", "", topics("b"))
		_, _ = s.Register("p3", "", topics("c"))

		result, err := s.Unregister("p1")
		require.NoError(t, err)
		assert.Equal(t, types.NodeID("p2"), result.MigratedTo)
	}
}

// TestStore_Unregister_LastNode 测试最后一个节点注销时删除主题
func TestStore_Unregister_LastNode(t *testing.T) {
	s := NewStore(nil)
	_, _ = s.Register("p1", "", topics("a", "b"))

	result, err := s.Unregister("p1")
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.False(t, result.Migrated())

	_, ok := s.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, s.Stats())
}

// TestStore_Unregister_NoTopics 测试无主题节点注销
func TestStore_Unregister_NoTopics(t *testing.T) {
	s := NewStore(nil)
	_, _ = s.Register("p1", "", topics("a"))
	_, _ = s.Register("p2", "", nil)

	result, err := s.Unregister("p2")
	require.NoError(t, err)
	assert.False(t, result.Migrated())
	assert.False(t, result.Deleted)

	p1, _ := s.Get("p1")
	assert.Equal(t, topics("a"), p1.Topics)
}

// TestStore_Unregister_NotFound 测试注销未知节点
func TestStore_Unregister_NotFound(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Unregister("ghost")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

// TestStore_Entries_Order 测试条目按注册顺序返回，且为副本
func TestStore_Entries_Order(t *testing.T) {
	s := NewStore(nil)
	_, _ = s.Register("p2", "", topics("b"))
	_, _ = s.Register("p1", "", topics("a"))

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, types.NodeID("p2"), entries[0].NodeID)
	assert.Equal(t, types.NodeID("p1"), entries[1].NodeID)

	entries[0].Topics[0] = "mutated"
	_, ok := s.Lookup("b")
	assert.True(t, ok)
}

// TestStore_Concurrent 测试并发注册与注销不破坏主题唯一性
func TestStore_Concurrent(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Register("anchor", "", topics("anchor-topic"))
	require.NoError(t, err)

	const n = 32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			id := types.NodeID(fmt.Sprintf("p%d", i))
			if _, err := s.Register(id, "", topics(fmt.Sprintf("t%d", i))); err != nil {
				return err
			}
			if _, ok := s.Lookup(types.TopicName(fmt.Sprintf("t%d", i))); !ok {
				return fmt.Errorf("topic t%d not visible after register", i)
			}
			if i%2 == 0 {
				_, err := s.Unregister(id)
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// 每个主题恰好出现一次
	seen := make(map[types.TopicName]types.NodeID)
	for _, e := range s.Entries() {
		for _, topic := range e.Topics {
			prev, dup := seen[topic]
			require.False(t, dup, "topic %s hosted by %s and %s", topic, prev, e.NodeID)
			seen[topic] = e.NodeID
		}
	}
	assert.Len(t, seen, n+1)
	assert.Equal(t, n/2+1, s.Stats().Nodes)

	// 偶数节点的主题都迁移到了 anchor
	for i := 0; i < n; i += 2 {
		entry, ok := s.Lookup(types.TopicName(fmt.Sprintf("t%d", i)))
		require.True(t, ok)
		assert.Equal(t, types.NodeID("anchor"), entry.NodeID)
	}
}
