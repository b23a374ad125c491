package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/liftsim/internal/elevator"
)

// RenderShafts draws one column per car and one row per floor, top floor
// first. A car sits on the row of the floor nearest to it; its pending
// target is marked with a dot.
func RenderShafts(snap elevator.Snapshot, floors []float64) string {
	var b strings.Builder
	for row := len(floors) - 1; row >= 0; row-- {
		b.WriteString(mutedStyle().Render(fmt.Sprintf("%3d %6.1fm ", row, floors[row])))
		for _, car := range snap.Cars {
			b.WriteString(" ")
			b.WriteString(cell(car, row, floors))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cell(car elevator.CarState, row int, floors []float64) string {
	if nearestFloor(floors, car.Height) == row {
		return carStyle(car.Direction).Render("[" + glyph(car.Direction) + "]")
	}
	if !car.Idle && nearestFloor(floors, car.Target) == row {
		return mutedStyle().Render(" · ")
	}
	return mutedStyle().Render(" │ ")
}

func glyph(d elevator.Direction) string {
	switch d {
	case elevator.Up:
		return "▲"
	case elevator.Down:
		return "▼"
	}
	return "■"
}

func nearestFloor(floors []float64, h float64) int {
	best := 0
	for i, f := range floors {
		if math.Abs(f-h) < math.Abs(floors[best]-h) {
			best = i
		}
	}
	return best
}
