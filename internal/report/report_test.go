package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Times:      []float64{0, 0.05},
		Energy:     []float64{0, 0.25},
		Heights:    [][]float64{{0, 0.1}, {4, 4}},
		Final:      elevator.Snapshot{Time: 0.05, TotalEnergy: 0.25, AssignedCalls: 1},
		Metrics:    map[string]float64{"energy": 0.25},
		StepsTaken: 1,
	}
}

func TestWriteTrace(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTrace(&buf, testResult()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "time,energy,h0,h1" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[2] != "0.050000,0.250000,0.100000,4.000000" {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestNew_Trace(t *testing.T) {
	cfg := sim.Config{Dt: 0.05, Duration: 0.05, Seed: 7}
	r := New("demo", cfg, []float64{0, 4}, testResult(), false)
	if r.Times != nil || r.Heights != nil {
		t.Error("trace attached without withTrace")
	}
	if r.Steps != 1 || r.Seed != 7 {
		t.Errorf("unexpected report header %+v", r)
	}

	r = New("demo", cfg, []float64{0, 4}, testResult(), true)
	if len(r.Heights) != 2 {
		t.Errorf("expected heights for 2 cars, got %d", len(r.Heights))
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	r := New("demo", sim.Config{Dt: 0.05, Duration: 0.05}, []float64{0, 4}, testResult(), false)
	if err := Export(path, r); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Name != "demo" || got.Metrics["energy"] != 0.25 || got.Final.AssignedCalls != 1 {
		t.Errorf("unexpected round trip %+v", got)
	}
}

func TestExportTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := ExportTrace(path, testResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("trace not written: %v", err)
	}
}
