package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/flock"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)

	// nil manager swallows writes
	assert.NoError(t, om.WriteStats([]FlockStats{{}}))
	assert.NoError(t, om.WritePerf(PerfStats{}, 1))
	assert.NoError(t, om.WriteBookmark(Bookmark{}))
	assert.NoError(t, om.WriteTrace(0, nil))
	assert.NoError(t, om.Close())
	assert.Equal(t, "", om.Dir())
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, om.WriteConfig(cfg))
	require.NoError(t, om.WriteManifest(Manifest{Strategy: "tree", Flocks: []string{"main"}}))

	require.NoError(t, om.WriteStats([]FlockStats{{Flock: "a", WindowEndStep: 100}, {Flock: "b", WindowEndStep: 100}}))
	require.NoError(t, om.WriteStats([]FlockStats{{Flock: "a", WindowEndStep: 200}}))
	require.NoError(t, om.WritePerf(PerfStats{}, 120))
	require.NoError(t, om.WriteBookmark(Bookmark{Type: BookmarkSaturation, Flock: "a", Step: 7}))

	f := flock.New("a", 2, flock.DefaultParams())
	f.Positions()[1] = r2.Vec{X: 1.5}
	require.NoError(t, om.WriteTrace(3, []*flock.Flock{f}))
	require.NoError(t, om.Close())

	stats, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(stats)), "\n")
	require.Len(t, lines, 4, "one header and three records")
	assert.True(t, strings.HasPrefix(lines[0], "window_end,sim_time,flock,count,"))
	assert.Equal(t, 1, strings.Count(string(stats), "window_end"), "header written once")

	trace, err := os.ReadFile(filepath.Join(dir, "trace.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(trace), "3,a,1,1.5,0,0,0,")

	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, "manifest.yaml"))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, om.RunID(), m.RunID)
	_, err = uuid.Parse(m.RunID)
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}
