package telemetry

import (
	"fmt"
	"math/cmplx"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/flock"
)

// Manifest identifies a run in its output directory.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	StartedAt time.Time `yaml:"started_at"`
	Strategy  string    `yaml:"strategy"`
	Workers   int       `yaml:"workers"`
	Flocks    []string  `yaml:"flocks"`
	Agents    int       `yaml:"agents"`
}

// TraceRow is one agent state in trace.csv.
type TraceRow struct {
	Step    int     `csv:"step"`
	Flock   string  `csv:"flock"`
	Agent   int     `csv:"agent"`
	X       float64 `csv:"x"`
	Y       float64 `csv:"y"`
	VelX    float64 `csv:"vel_x"`
	VelY    float64 `csv:"vel_y"`
	Heading float64 `csv:"heading"`
}

// csvFile is an output file whose first write carries the header.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir   string
	runID uuid.UUID

	statsFile    csvFile
	perfFile     csvFile
	bookmarkFile csvFile
	traceFile    csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: uuid.New()}

	files := []struct {
		name string
		dst  *csvFile
	}{
		{"stats.csv", &om.statsFile},
		{"perf.csv", &om.perfFile},
		{"bookmarks.csv", &om.bookmarkFile},
		{"trace.csv", &om.traceFile},
	}
	for _, spec := range files {
		f, err := os.Create(filepath.Join(dir, spec.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", spec.name, err)
		}
		spec.dst.f = f
	}

	return om, nil
}

// RunID returns the identifier written to the manifest.
func (om *OutputManager) RunID() string {
	if om == nil {
		return ""
	}
	return om.runID.String()
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteManifest saves the run manifest as YAML.
func (om *OutputManager) WriteManifest(m Manifest) error {
	if om == nil {
		return nil
	}
	m.RunID = om.runID.String()
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "manifest.yaml"), data, 0644); err != nil {
		return fmt.Errorf("writing manifest.yaml: %w", err)
	}
	return nil
}

// WriteStats writes one record per ensemble to stats.csv.
func (om *OutputManager) WriteStats(stats []FlockStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	if err := om.statsFile.write(stats); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := om.perfFile.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarkFile.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteTrace writes the state of every agent to trace.csv.
func (om *OutputManager) WriteTrace(step int, flocks []*flock.Flock) error {
	if om == nil {
		return nil
	}
	var rows []TraceRow
	for _, f := range flocks {
		pos, vel, h := f.Positions(), f.Velocities(), f.Headings()
		for i := 0; i < f.Len(); i++ {
			rows = append(rows, TraceRow{
				Step:    step,
				Flock:   f.Name(),
				Agent:   i,
				X:       pos[i].X,
				Y:       pos[i].Y,
				VelX:    vel[i].X,
				VelY:    vel[i].Y,
				Heading: cmplx.Phase(h[i]),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := om.traceFile.write(rows); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{&om.statsFile, &om.perfFile, &om.bookmarkFile, &om.traceFile} {
		if c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.f = nil
	}
	return firstErr
}
