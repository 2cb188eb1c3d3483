// Package channels provides the named, unit-tagged Solution -> []float64
// functions that reporting and sensitivity analysis read: a registry of
// primitives plus combinators to build derived channels from them.
package channels

import (
	"math"

	"github.com/fsae-sim/laptimesim/internal/raceerr"
	"github.com/fsae-sim/laptimesim/internal/solution"
)

// Quantity is the physical dimension a channel's values represent; it
// drives default-unit labelling in reports.
type Quantity string

const (
	QuantityLength          Quantity = "Length"
	QuantityVelocity        Quantity = "Velocity"
	QuantityAcceleration    Quantity = "Acceleration"
	QuantityTime            Quantity = "Time"
	QuantityEnergy          Quantity = "Energy"
	QuantityPower           Quantity = "Power"
	QuantityAngle           Quantity = "Angle"
	QuantityCurvature       Quantity = "Curvature"
	QuantityForce           Quantity = "Force"
	QuantityDimensionless   Quantity = "Dimensionless"
	QuantityStateOfCharge   Quantity = "StateOfCharge"
)

// Channel is a named function from Solution to a sequence of floats, one
// per node, with a declared physical quantity and default unit.
type Channel struct {
	Name        string
	Quantity    Quantity
	DefaultUnit string
	Eval        func(*solution.Solution) []float64
}

var registry = map[string]Channel{}

// Register adds a channel to the process-wide registry. Intended to be
// called from init() for every primitive and pre-built combinator; callers
// building ad hoc combinators (e.g. parameter sweeps wanting a derivative
// with respect to a dynamically-chosen channel) can also call this directly.
func Register(c Channel) { registry[c.Name] = c }

// Get looks up a channel by name.
func Get(name string) (Channel, error) {
	c, ok := registry[name]
	if !ok {
		return Channel{}, raceerr.Channel(name)
	}
	return c, nil
}

// Eval looks up and evaluates a channel by name against a solution.
func Eval(name string, sol *solution.Solution) ([]float64, error) {
	c, err := Get(name)
	if err != nil {
		return nil, err
	}
	return c.Eval(sol), nil
}

func primitive(name string, quantity Quantity, unit string, f func(*solution.SolutionNode) float64) {
	Register(Channel{
		Name:        name,
		Quantity:    quantity,
		DefaultUnit: unit,
		Eval: func(sol *solution.Solution) []float64 {
			out := make([]float64, len(sol.Nodes))
			for i := range sol.Nodes {
				out[i] = f(&sol.Nodes[i])
			}
			return out
		},
	})
}

func init() {
	primitive("Position", QuantityLength, "m", func(n *solution.SolutionNode) float64 { return n.Node.Position })
	primitive("Length", QuantityLength, "m", func(n *solution.SolutionNode) float64 { return n.Node.Length })
	primitive("Velocity", QuantityVelocity, "m/s", func(n *solution.SolutionNode) float64 { return n.AvgVelocity() })
	primitive("InitialVelocity", QuantityVelocity, "m/s", func(n *solution.SolutionNode) float64 { return n.InitialVelocity })
	primitive("FinalVelocity", QuantityVelocity, "m/s", func(n *solution.SolutionNode) float64 { return n.FinalVelocity })
	primitive("MaxVelocity", QuantityVelocity, "m/s", func(n *solution.SolutionNode) float64 { return n.MaxVelocity })
	primitive("Curvature", QuantityCurvature, "1/m", func(n *solution.SolutionNode) float64 { return n.Node.Curvature })
	primitive("Banking", QuantityAngle, "rad", func(n *solution.SolutionNode) float64 { return n.Node.Banking })
	primitive("Inclination", QuantityAngle, "rad", func(n *solution.SolutionNode) float64 { return n.Node.Inclination })
	primitive("MotorTorque", QuantityForce, "N*m", func(n *solution.SolutionNode) float64 { return n.State.MotorTorque })
	primitive("MotorPower", QuantityPower, "W", func(n *solution.SolutionNode) float64 { return n.State.MotorPower })
	primitive("AccumulatorPower", QuantityPower, "W", func(n *solution.SolutionNode) float64 { return n.State.AccumulatorPower })
	primitive("NormalForce", QuantityForce, "N", func(n *solution.SolutionNode) float64 { return n.State.NormalForce })
	primitive("Downforce", QuantityForce, "N", func(n *solution.SolutionNode) float64 { return n.State.Downforce })
	primitive("Drag", QuantityForce, "N", func(n *solution.SolutionNode) float64 { return n.State.Drag })
	primitive("LongitudinalAcceleration", QuantityAcceleration, "m/s^2", func(n *solution.SolutionNode) float64 { return n.LongitudinalAcceleration() })
	primitive("LateralAcceleration", QuantityAcceleration, "m/s^2", func(n *solution.SolutionNode) float64 { return n.LateralAcceleration() })
	primitive("EnergyUsed", QuantityEnergy, "J", func(n *solution.SolutionNode) float64 { return n.EnergyUsed() })

	Register(Channel{
		Name:        "StateOfCharge",
		Quantity:    QuantityStateOfCharge,
		DefaultUnit: "-",
		Eval: func(sol *solution.Solution) []float64 {
			if sol.SOCProfile != nil {
				out := make([]float64, len(sol.SOCProfile))
				copy(out, sol.SOCProfile)
				return out
			}
			out := make([]float64, len(sol.Nodes))
			for i := range out {
				out[i] = 1.0
			}
			return out
		},
	})

	Register(Channel{
		Name:        "ResultantAcceleration",
		Quantity:    QuantityAcceleration,
		DefaultUnit: "m/s^2",
		Eval: func(sol *solution.Solution) []float64 {
			out := make([]float64, len(sol.Nodes))
			for i := range sol.Nodes {
				out[i] = sol.Nodes[i].ResultantAcceleration()
			}
			return out
		},
	})

	Register(Channel{
		Name:        "Time",
		Quantity:    QuantityTime,
		DefaultUnit: "s",
		Eval: func(sol *solution.Solution) []float64 {
			times := make([]float64, len(sol.Nodes))
			for i := range sol.Nodes {
				times[i] = sol.Nodes[i].Time()
			}
			return CumulativeSum(times)
		},
	})
}

// Negate returns -f(x) for every sample.
func Negate(f []float64) []float64 {
	out := make([]float64, len(f))
	for i, v := range f {
		out[i] = -v
	}
	return out
}

// Add returns a+b elementwise; panics on length mismatch, matching the
// spec's "same node count" invariant across channels of one Solution.
func Add(a, b []float64) []float64 { return combine(a, b, func(x, y float64) float64 { return x + y }) }

// Subtract returns a-b elementwise.
func Subtract(a, b []float64) []float64 {
	return combine(a, b, func(x, y float64) float64 { return x - y })
}

// Product returns a*b elementwise.
func Product(a, b []float64) []float64 {
	return combine(a, b, func(x, y float64) float64 { return x * y })
}

// Quotient returns a/b elementwise.
func Quotient(a, b []float64) []float64 {
	return combine(a, b, func(x, y float64) float64 { return x / y })
}

// Power returns a^p for every sample.
func Power(a []float64, p float64) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = math.Pow(v, p)
	}
	return out
}

// Sqrt returns sqrt(a) for every sample.
func Sqrt(a []float64) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = math.Sqrt(v)
	}
	return out
}

// Hypot returns hypot(a,b) elementwise.
func Hypot(a, b []float64) []float64 {
	return combine(a, b, math.Hypot)
}

func combine(a, b []float64, f func(x, y float64) float64) []float64 {
	if len(a) != len(b) {
		panic("channels: length mismatch combining channel samples")
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = f(a[i], b[i])
	}
	return out
}

// ForwardDifference returns the forward difference of f, with the last
// entry repeating the prior difference (so the result stays the same
// length as its input, matching the node count every channel carries).
func ForwardDifference(f []float64) []float64 {
	out := make([]float64, len(f))
	for i := 0; i < len(f)-1; i++ {
		out[i] = f[i+1] - f[i]
	}
	if len(f) > 1 {
		out[len(f)-1] = out[len(f)-2]
	}
	return out
}

// CumulativeSum returns the running total of f.
func CumulativeSum(f []float64) []float64 {
	out := make([]float64, len(f))
	sum := 0.0
	for i, v := range f {
		sum += v
		out[i] = sum
	}
	return out
}

// Derivative approximates d(f)/d(x) via forward differences of both
// sequences.
func Derivative(f, x []float64) []float64 {
	df := ForwardDifference(f)
	dx := ForwardDifference(x)
	return Quotient(df, dx)
}

// Integral approximates the running integral of f with respect to x via
// the trapezoidal rule.
func Integral(f, x []float64) []float64 {
	out := make([]float64, len(f))
	if len(f) == 0 {
		return out
	}
	sum := 0.0
	out[0] = 0
	for i := 1; i < len(f); i++ {
		sum += (f[i] + f[i-1]) / 2 * (x[i] - x[i-1])
		out[i] = sum
	}
	return out
}
