package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/kinoplan/internal/storage"
)

func testTrace() *storage.Trace {
	return &storage.Trace{
		Times:    []float64{0, 0.1, 0.2},
		Poses:    [][]float64{{0, 0, 0}, {1, 2, 0.1}, {2, 3, 0.2}},
		Gears:    []int{1, 1, 2},
		Controls: [][]float64{{1, 0, 0}, {1, 0.5, 1}, {0.5, 0.5, 0}},
	}
}

func TestTraceToSVG(t *testing.T) {
	svg := TraceToSVG(testTrace(), 400, 300)
	if !strings.HasPrefix(svg, `<?xml`) {
		t.Error("missing xml header")
	}
	if !strings.Contains(svg, "<polyline") {
		t.Error("missing trajectory polyline")
	}
	if strings.Count(svg, "<circle") != 2 {
		t.Error("expected start and end markers")
	}

	if TraceToSVG(&storage.Trace{}, 400, 300) != "" {
		t.Error("empty trace should render to empty string")
	}
}

func TestTraceToSVGDegenerate(t *testing.T) {
	// All points identical; must not divide by a zero span.
	trace := &storage.Trace{
		Poses: [][]float64{{5, 5, 0}, {5, 5, 0}},
	}
	svg := TraceToSVG(trace, 200, 200)
	if svg == "" {
		t.Fatal("degenerate trace should still render")
	}
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("degenerate trace produced non-finite coordinates")
	}
}

func TestJSONExport(t *testing.T) {
	meta := &storage.RunMetadata{
		ID:        "vehicle_1",
		Scenario:  "vehicle",
		Timestamp: time.Now(),
		Dt:        0.1,
		Steps:     2,
	}

	p := filepath.Join(t.TempDir(), "run.json")
	if err := JSON(p, meta, testTrace()); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data.Meta.ID != "vehicle_1" {
		t.Errorf("Meta.ID = %q", data.Meta.ID)
	}
	if len(data.Poses) != 3 || len(data.Gears) != 3 {
		t.Errorf("trace rows = (%d, %d), want 3", len(data.Poses), len(data.Gears))
	}
}

func TestSVGFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "run.svg")
	if err := SVG(p, testTrace(), 400, 300); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "<svg") {
		t.Error("file does not contain svg markup")
	}

	if err := SVG(filepath.Join(t.TempDir(), "bad.svg"), &storage.Trace{}, 10, 10); err == nil {
		t.Error("expected error for empty trace")
	}
}
