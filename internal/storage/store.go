package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store persists simulation runs under a base directory, one
// subdirectory per run with a metadata.json and a trace.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Trace is the recorded trajectory of a run: one pose, gear and
// control row per step, plus the initial pose/gear at index 0.
type Trace struct {
	Times    []float64
	Poses    [][]float64
	Gears    []int
	Controls [][]float64
}

func (s *Store) Save(scenario string, dt float64, steps int, seed int64, metrics map[string]float64, trace *Trace) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  scenario,
		Timestamp: time.Now(),
		Seed:      seed,
		Dt:        dt,
		Steps:     steps,
		Metrics:   metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(trace.Poses) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := range trace.Poses[0] {
		header = append(header, fmt.Sprintf("q%d", i))
	}
	header = append(header, "gear")

	numControls := 0
	if len(trace.Controls) > 0 {
		numControls = len(trace.Controls[0])
		for i := 0; i < numControls; i++ {
			header = append(header, fmt.Sprintf("u%d", i))
		}
	}

	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range trace.Poses {
		row := []string{strconv.FormatFloat(trace.Times[i], 'f', 6, 64)}
		for _, val := range trace.Poses[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}

		gear := 0
		if i < len(trace.Gears) {
			gear = trace.Gears[i]
		}
		row = append(row, strconv.Itoa(gear))

		if i < len(trace.Controls) {
			for _, val := range trace.Controls[i] {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		} else {
			for j := 0; j < numControls; j++ {
				row = append(row, "0")
			}
		}

		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := &Trace{}
	if len(records) < 2 {
		return trace, nil
	}

	// Columns: time, q0..qN, gear, u0..uM. Pose width comes from the
	// header so short rows are skipped rather than misparsed.
	poseDim := 0
	gearCol := -1
	for j, name := range records[0] {
		if name == "gear" {
			gearCol = j
			poseDim = j - 1
			break
		}
	}
	if gearCol < 0 {
		return nil, fmt.Errorf("trace %s: missing gear column", runID)
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) <= gearCol {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		pose := make([]float64, 0, poseDim)
		for j := 1; j <= poseDim; j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				break
			}
			pose = append(pose, val)
		}
		if len(pose) != poseDim {
			continue
		}

		gear, err := strconv.Atoi(record[gearCol])
		if err != nil {
			continue
		}

		ctrl := make([]float64, 0)
		for j := gearCol + 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			ctrl = append(ctrl, val)
		}

		trace.Times = append(trace.Times, t)
		trace.Poses = append(trace.Poses, pose)
		trace.Gears = append(trace.Gears, gear)
		trace.Controls = append(trace.Controls, ctrl)
	}

	return trace, nil
}
