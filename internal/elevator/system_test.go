package elevator_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/liftsim/internal/elevator"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var _ = Describe("System", func() {
	Describe("construction", func() {
		It("rejects an empty bank", func() {
			_, err := newSystem(0, []float64{0, 10})
			Expect(err).To(MatchError(elevator.ErrNoCars))
		})

		It("rejects a building without floors", func() {
			_, err := newSystem(1, nil)
			Expect(err).To(MatchError(elevator.ErrNoFloors))
		})

		It("reports which car failed to build", func() {
			failing := func([]float64) (*elevator.Elevator, error) {
				return nil, errors.New("no motor data")
			}
			_, err := elevator.NewSystem(elevator.SystemConfig{Cars: 2, Floors: []float64{0}}, failing, zerolog.Nop())

			var carErr *elevator.CarError
			Expect(errors.As(err, &carErr)).To(BeTrue())
			Expect(carErr.Car).To(Equal(0))
		})

		It("gives every car its own state", func() {
			sys, err := newSystem(3, []float64{0, 10})
			Expect(err).NotTo(HaveOccurred())
			cars := sys.Cars()
			Expect(cars).To(HaveLen(3))
			Expect(cars[0].Motor()).NotTo(BeIdenticalTo(cars[1].Motor()))
			Expect(cars[0].HeightPID()).NotTo(BeIdenticalTo(cars[2].HeightPID()))
		})
	})

	Describe("dispatch", func() {
		var sys *elevator.System

		BeforeEach(func() {
			var err error
			sys, err = newSystem(2, []float64{0, 100, 200})
			Expect(err).NotTo(HaveOccurred())
		})

		It("assigns a call to exactly one idle car", func() {
			car, err := sys.NewCall(0, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(car).To(Equal(0), "ties go to the first car")

			busy := 0
			for _, c := range sys.Cars() {
				if !c.Idle() {
					busy++
					Expect(c.Target()).To(Equal(200.0))
					Expect(c.CurrentLoad()).To(Equal(elevator.DefaultPassengerWeight))
				}
			}
			Expect(busy).To(Equal(1))
			Expect(sys.AssignedCalls()).To(Equal(1))
		})

		It("sends the next call to the remaining idle car", func() {
			Expect(sys.NewCall(0, 2)).To(Equal(0))
			Expect(sys.NewCall(1, 0)).To(Equal(1))
			Expect(sys.IdleCars()).To(BeZero())
		})

		It("drops a call when no car is idle", func() {
			Expect(sys.NewCall(0, 1)).To(Equal(0))
			Expect(sys.NewCall(0, 2)).To(Equal(1))

			car, err := sys.NewCall(2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(car).To(Equal(-1))
			Expect(sys.DroppedCalls()).To(Equal(1))
			Expect(sys.AssignedCalls()).To(Equal(2))
		})

		It("rejects floor indices outside the building", func() {
			_, err := sys.NewCall(0, 3)
			Expect(err).To(MatchError(elevator.ErrFloorOutOfRange))
			_, err = sys.NewCall(-1, 0)
			Expect(err).To(MatchError(elevator.ErrFloorOutOfRange))
			Expect(sys.IdleCars()).To(Equal(2))
		})
	})

	Describe("signed distance", func() {
		It("prefers the car below the origin", func() {
			sys, err := newSystem(2, []float64{0, 10, 20})
			Expect(err).NotTo(HaveOccurred())

			Expect(sys.NewCall(0, 2)).To(Equal(0))
			ticks, err := stepUntilIdle(sys, 1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticks).To(BeNumerically("<", 1000))
			Expect(sys.Cars()[0].Height()).To(BeNumerically("~", 20, 0.05))

			Expect(sys.Cars()[0].CurrentLoad()).To(BeZero(), "passenger leaves on arrival")
			Expect(sys.ServedCalls()).To(Equal(1))
			Expect(sys.MeanWait()).To(BeNumerically("~", float64(ticks)*tick, 1e-9))

			// Both cars are about 10 m from floor 1; the one below wins.
			Expect(sys.NewCall(1, 0)).To(Equal(1))
		})
	})

	Describe("stepping", func() {
		It("sums every car's tick energy", func() {
			sys, err := newSystem(2, []float64{0, 10, 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.NewCall(0, 2)).To(Equal(0))

			for i := 0; i < 200; i++ {
				Expect(sys.Step(tick)).To(Succeed())
			}

			sum := 0.0
			for _, c := range sys.Cars() {
				sum += c.Energy()
			}
			Expect(sys.TotalEnergy()).To(BeNumerically("~", sum, 1e-9))
			Expect(sys.Elapsed()).To(BeNumerically("~", 200*tick, 1e-9))
		})

		It("scales wall time by the multiplier", func() {
			clock := &manualClock{now: time.Unix(0, 0)}
			sys, err := elevator.NewSystem(elevator.SystemConfig{
				Cars:           1,
				Floors:         []float64{0, 10},
				TimeMultiplier: 4,
				Clock:          clock,
			}, newCar, zerolog.Nop())
			Expect(err).NotTo(HaveOccurred())

			clock.Advance(250 * time.Millisecond)
			dt, err := sys.Update()
			Expect(err).NotTo(HaveOccurred())
			Expect(dt).To(BeNumerically("~", 1.0, 1e-12))
			Expect(sys.Elapsed()).To(BeNumerically("~", 1.0, 1e-12))

			dt, err = sys.Update()
			Expect(err).NotTo(HaveOccurred())
			Expect(dt).To(BeZero())
			Expect(sys.Elapsed()).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("captures a consistent snapshot", func() {
			sys, err := newSystem(2, []float64{0, 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.NewCall(0, 1)).To(Equal(0))
			Expect(sys.Step(tick)).To(Succeed())

			snap := sys.Snapshot()
			Expect(snap.Cars).To(HaveLen(2))
			Expect(snap.Cars[0].Idle).To(BeFalse())
			Expect(snap.Cars[0].Direction).To(Equal(elevator.Up))
			Expect(snap.Cars[1].Idle).To(BeTrue())
			Expect(snap.AssignedCalls).To(Equal(1))
			Expect(snap.TotalEnergy).To(Equal(sys.TotalEnergy()))
		})
	})
})
