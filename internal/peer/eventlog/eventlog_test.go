package eventlog

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLog_AppendAndFormat 测试追加与格式化
func TestLog_AppendAndFormat(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	l := New(clk)

	l.Append(KindInitialized, "Node ID: peer-1")
	clk.Add(1500 * time.Millisecond)
	l.Appendf(KindTopicCreated, "Topic: %s", "news")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, KindInitialized, entries[0].Kind)
	assert.True(t, entries[1].Time.After(entries[0].Time))

	assert.Equal(t, []string{
		"2024-05-01T12:00:00Z - Event: Node Initialized, Details: Node ID: peer-1",
		"2024-05-01T12:00:01.5Z - Event: Topic Created, Details: Topic: news",
	}, l.Strings())
}

// TestLog_EntriesIsCopy 测试返回副本
func TestLog_EntriesIsCopy(t *testing.T) {
	l := New(nil)
	l.Append(KindPublished, "x")

	entries := l.Entries()
	entries[0].Detail = "mutated"
	assert.Equal(t, "x", l.Entries()[0].Detail)
}

// TestLog_Concurrent 测试并发追加
func TestLog_Concurrent(t *testing.T) {
	l := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Append(KindPublished, "m")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, l.Len())
}
