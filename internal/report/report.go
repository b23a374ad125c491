package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/san-kum/liftsim/internal/elevator"
	"github.com/san-kum/liftsim/internal/sim"
)

// Report is the summary of one finished run.
type Report struct {
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Floors    []float64          `json:"floors"`
	Metrics   map[string]float64 `json:"metrics"`
	Final     elevator.Snapshot  `json:"final"`
	Times     []float64          `json:"times,omitempty"`
	Energy    []float64          `json:"energy,omitempty"`
	Heights   [][]float64        `json:"heights,omitempty"`
}

// New builds a report from result. The trace is only attached when
// withTrace is set.
func New(name string, cfg sim.Config, floors []float64, result *sim.Result, withTrace bool) *Report {
	r := &Report{
		Name:      name,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Steps:     result.StepsTaken,
		Floors:    floors,
		Metrics:   result.Metrics,
		Final:     result.Final,
	}
	if withTrace {
		r.Times = result.Times
		r.Energy = result.Energy
		r.Heights = result.Heights
	}
	return r
}

func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTrace writes one CSV row per recorded sample: time, total energy,
// then the height of every car.
func WriteTrace(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"time", "energy"}
	for i := range result.Heights {
		header = append(header, fmt.Sprintf("h%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{
			strconv.FormatFloat(t, 'f', 6, 64),
			strconv.FormatFloat(result.Energy[i], 'f', 6, 64),
		}
		for _, h := range result.Heights {
			row = append(row, strconv.FormatFloat(h[i], 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Export writes the report as JSON to path, or to stdout when path is "-".
func Export(path string, r *Report) error {
	if path == "-" {
		return WriteJSON(os.Stdout, r)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, r)
}

// ExportTrace writes the CSV trace of result to path.
func ExportTrace(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteTrace(file, result)
}
