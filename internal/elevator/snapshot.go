package elevator

// CarState is a copy of one car's observable state.
type CarState struct {
	Height       float64   `json:"height"`
	Target       float64   `json:"target"`
	Speed        float64   `json:"speed"`
	Acceleration float64   `json:"acceleration"`
	Direction    Direction `json:"direction"`
	Idle         bool      `json:"idle"`
	Load         float64   `json:"load"`
	MaxLoad      float64   `json:"max_load"`
	Energy       float64   `json:"energy"`
	Current      float64   `json:"current"`
	RPM          float64   `json:"rpm"`
	InputPower   float64   `json:"input_power"`
	Force        float64   `json:"force"`
}

type Snapshot struct {
	Time          float64    `json:"time"`
	TotalEnergy   float64    `json:"total_energy"`
	AssignedCalls int        `json:"assigned_calls"`
	DroppedCalls  int        `json:"dropped_calls"`
	ServedCalls   int        `json:"served_calls"`
	TotalWait     float64    `json:"total_wait"`
	Cars          []CarState `json:"cars"`
}

func (e *Elevator) State() CarState {
	sample := e.motor.Sample()
	return CarState{
		Height:       e.height,
		Target:       e.heightPID.Target(),
		Speed:        e.motor.Speed(),
		Acceleration: e.accel,
		Direction:    e.Direction(),
		Idle:         e.idle,
		Load:         e.load,
		MaxLoad:      e.maxLoad,
		Energy:       e.motor.Energy(),
		Current:      sample.Current,
		RPM:          sample.RPM,
		InputPower:   sample.InputPower,
		Force:        e.RequiredForce(),
	}
}

func (s *System) Snapshot() Snapshot {
	snap := Snapshot{
		Time:          s.elapsed,
		TotalEnergy:   s.totalEnergy,
		AssignedCalls: s.assigned,
		DroppedCalls:  s.dropped,
		ServedCalls:   s.served,
		TotalWait:     s.totalWait,
		Cars:          make([]CarState, len(s.cars)),
	}
	for i, car := range s.cars {
		snap.Cars[i] = car.State()
	}
	return snap
}
