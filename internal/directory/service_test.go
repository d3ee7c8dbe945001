package directory

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-topicmesh/pkg/types"
)

func newTestService(t *testing.T) (*Service, *Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	return NewService(NewStore(nil), m, DefaultServiceConfig()), m
}

// TestService_RegisterAndLookup 测试注册、查询与计数
func TestService_RegisterAndLookup(t *testing.T) {
	svc, m := newTestService(t)

	registered, err := svc.Register("p1", "http://p1", topics("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, types.NodeID("p1"), registered.NodeID)
	assert.Equal(t, topics("a", "b"), registered.Topics)

	entry, ok := svc.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "http://p1", entry.Address)

	_, ok = svc.Lookup("zzz")
	assert.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Nodes))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Topics))
}

// TestService_Rejections 测试拒绝计数
func TestService_Rejections(t *testing.T) {
	svc, m := newTestService(t)

	_, err := svc.Register("p1", "", topics("a"))
	require.NoError(t, err)

	_, err = svc.Register("p2", "", topics("a"))
	assert.ErrorIs(t, err, ErrTopicConflict)

	err = svc.UpdateTopics("ghost", topics("x"))
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = svc.Unregister("ghost")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("register", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("update_topics", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("unregister", "not_found")))
}

// TestService_UnregisterOutcomes 测试注销结果分类
func TestService_UnregisterOutcomes(t *testing.T) {
	svc, m := newTestService(t)

	_, _ = svc.Register("p1", "", topics("a"))
	_, _ = svc.Register("p2", "", topics("b"))
	_, _ = svc.Register("p3", "", nil)

	result, err := svc.Unregister("p3")
	require.NoError(t, err)
	assert.False(t, result.Migrated())

	result, err = svc.Unregister("p2")
	require.NoError(t, err)
	assert.Equal(t, types.NodeID("p1"), result.MigratedTo)

	result, err = svc.Unregister("p1")
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unregistrations.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unregistrations.WithLabelValues("migrated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unregistrations.WithLabelValues("deleted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Nodes))
}

// TestService_ReportMetrics 测试指标收集
func TestService_ReportMetrics(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Empty(t, svc.SnapshotMetrics())

	err := svc.ReportMetrics("", map[string]any{"x": 1})
	assert.ErrorIs(t, err, types.ErrEmptyNodeID)

	err = svc.ReportMetrics("ghost", map[string]any{"x": 1})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Empty(t, svc.SnapshotMetrics())

	_, _ = svc.Register("p1", "", nil)
	require.NoError(t, svc.ReportMetrics("p1", map[string]any{"number_of_topics": 1}))
	require.NoError(t, svc.ReportMetrics("p1", map[string]any{"number_of_topics": 2}))

	snap := svc.SnapshotMetrics()
	require.Contains(t, snap, types.NodeID("p1"))
	assert.Equal(t, 2, snap["p1"]["number_of_topics"], "later report replaces earlier")

	snap["p1"]["number_of_topics"] = 99
	assert.Equal(t, 2, svc.SnapshotMetrics()["p1"]["number_of_topics"], "snapshot is a copy")

	// 注销后清除指标，迟到的上报不会重新生成条目
	_, err = svc.Unregister("p1")
	require.NoError(t, err)
	assert.NotContains(t, svc.SnapshotMetrics(), types.NodeID("p1"))

	err = svc.ReportMetrics("p1", map[string]any{"number_of_topics": 3})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.NotContains(t, svc.SnapshotMetrics(), types.NodeID("p1"))
}

// TestService_AddTopics 测试追加主题保留已迁移的主题
func TestService_AddTopics(t *testing.T) {
	svc, m := newTestService(t)

	_, _ = svc.Register("p1", "", topics("a"))
	_, _ = svc.Register("p2", "", topics("b"))
	_, err := svc.Unregister("p2")
	require.NoError(t, err)

	entry, err := svc.AddTopics("p1", topics("c"))
	require.NoError(t, err)
	assert.Equal(t, topics("a", "b", "c"), entry.Topics)

	_, err = svc.AddTopics("ghost", topics("x"))
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("add_topics", "not_found")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Topics))
}

// TestService_ReportMetrics_TTL 测试指标过期
func TestService_ReportMetrics_TTL(t *testing.T) {
	svc := NewService(NewStore(nil), nil, ServiceConfig{MetricsCacheSize: 4, MetricsTTL: 50 * time.Millisecond})
	_, err := svc.Register("p1", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.ReportMetrics("p1", map[string]any{"k": "v"}))
	assert.Len(t, svc.SnapshotMetrics(), 1)

	assert.Eventually(t, func() bool {
		return len(svc.SnapshotMetrics()) == 0
	}, time.Second, 10*time.Millisecond)
}
