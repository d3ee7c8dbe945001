package topicmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVersionInfo 测试版本信息格式
func TestVersionInfo(t *testing.T) {
	oldCommit, oldDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = oldCommit, oldDate }()

	GitCommit, BuildDate = "", ""
	assert.Equal(t, "topicmesh "+Version, VersionInfo())

	GitCommit = "0123456789abcdef"
	BuildDate = "2024-05-01"
	assert.Equal(t, "topicmesh "+Version+" (01234567) built 2024-05-01", VersionInfo())

	GitCommit = "abc"
	assert.Contains(t, VersionInfo(), "(abc)")
}
