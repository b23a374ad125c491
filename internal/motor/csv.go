package motor

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var sampleColumns = []string{"kwp_in", "efficiency", "voltage", "current", "rpm", "tnm", "ih", "mo"}

// ReadSamples parses a characterization CSV. Columns are matched by header
// name; an index column named "i" or "_i" is optional.
func ReadSamples(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyTable
		}
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range sampleColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	idxCol, hasIdx := cols["i"]
	if !hasIdx {
		idxCol, hasIdx = cols["_i"]
	}

	samples := make([]Sample, 0)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		vals := make([]float64, len(sampleColumns))
		for j, name := range sampleColumns {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[cols[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("motor: line %d column %s: %w", line, name, err)
			}
			vals[j] = v
		}

		s := Sample{
			Index:      len(samples),
			InputPower: vals[0],
			Efficiency: vals[1],
			Voltage:    vals[2],
			Current:    vals[3],
			RPM:        vals[4],
			Torque:     vals[5],
			IH:         vals[6],
			MO:         vals[7],
		}
		if hasIdx {
			if idx, err := strconv.Atoi(strings.TrimSpace(record[idxCol])); err == nil {
				s.Index = idx
			}
		}
		samples = append(samples, s)
	}

	return samples, nil
}

// LoadTable reads and validates a characterization CSV file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, err := ReadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t, err := NewTable(samples)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
