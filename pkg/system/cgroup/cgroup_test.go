//go:build linux

package cgroup

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	procLine = "22 1 0:21 / /proc rw,nosuid,nodev,noexec,relatime shared:12 - proc proc rw"
	v2Line   = "30 25 0:26 / /sys/fs/cgroup rw,nosuid,nodev,noexec,relatime shared:4 - cgroup2 cgroup2 rw,nsdelegate"
	v1Line   = "31 25 0:27 / /sys/fs/cgroup/cpu,cpuacct rw,nosuid shared:5 - cgroup cgroup rw,cpu,cpuacct"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  Layout
		ver   Version
	}{
		{"v2", []string{procLine, v2Line}, Layout{V2: []string{"/sys/fs/cgroup"}}, V2},
		{"v1", []string{procLine, v1Line}, Layout{V1: []string{"/sys/fs/cgroup/cpu,cpuacct"}}, V1},
		{"hybrid", []string{v1Line, v2Line}, Layout{V1: []string{"/sys/fs/cgroup/cpu,cpuacct"}, V2: []string{"/sys/fs/cgroup"}}, Hybrid},
		{"none", []string{procLine}, Layout{}, Unsupported},
		{"garbage", []string{"not a mountinfo line", "1 2 - cgroup2", "1 2 3 4 5 -"}, Layout{}, Unsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := Parse(strings.NewReader(strings.Join(tc.lines, "\n")))
			require.NoError(t, err)
			assert.Equal(t, tc.want, l)
			assert.Equal(t, tc.ver, l.Version())
		})
	}
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "cgroup v1", V1.String())
	assert.Equal(t, "cgroup v2", V2.String())
	assert.Equal(t, "cgroup hybrid", Hybrid.String())
	assert.Equal(t, "unsupported", Unsupported.String())
}

func TestLayout_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("host", "cgroup", Layout{V2: []string{"/sys/fs/cgroup"}})

	var rec struct {
		Cgroup map[string]any `json:"cgroup"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cgroup v2", rec.Cgroup["version"])
	assert.Equal(t, []any{"/sys/fs/cgroup"}, rec.Cgroup["v2"])
	assert.NotContains(t, rec.Cgroup, "v1")
}

func TestDetect_Fixture(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "self"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "self", "mountinfo"), []byte(v2Line+"\n"), 0o644))

	l, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, V2, l.Version())
}

func TestDetect_MissingRoot(t *testing.T) {
	_, err := Detect(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestDetect_Host(t *testing.T) {
	l, err := Detect("/proc")
	if err != nil {
		t.Skipf("skipping: mountinfo not available: %v", err)
	}
	t.Logf("detected %s: v1=%v v2=%v", l.Version(), l.V1, l.V2)
}
