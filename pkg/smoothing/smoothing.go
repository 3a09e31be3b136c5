// Package smoothing implements Laplacian-family smoothing of triangle
// meshes: iterative local operators and a global least-squares solve.
//
// Every operator is built from L(v) = Σ w_vj (p_j − p_v) over the 1-ring of
// v, with uniform or cotangent weights normalized to sum to one. The
// functions here do not modify the mesh; they return new positions for the
// caller to install with SetVertices.
package smoothing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperator is returned by Global for operators other than
	// Laplacian.
	ErrUnsupportedOperator = errors.New("smoothing: operator not supported by global smoothing")
	// ErrNoConstantVertices is returned by Global when nothing anchors the
	// system, which would make it singular.
	ErrNoConstantVertices = errors.New("smoothing: no constant vertices")
	// ErrNoVariableVertices is returned by Global when every vertex is fixed.
	ErrNoVariableVertices = errors.New("smoothing: every vertex is constant")
	// ErrInvalidConfig is returned for malformed configurations.
	ErrInvalidConfig = errors.New("smoothing: invalid configuration")
)

// Weight selects how a vertex weighs its neighbours.
type Weight int

const (
	Uniform   Weight = iota // 1/|ring|
	Cotangent               // cot α + cot β, normalized over the ring
)

func (w Weight) String() string {
	switch w {
	case Uniform:
		return "uniform"
	case Cotangent:
		return "cotangent"
	default:
		return fmt.Sprintf("Weight(%d)", int(w))
	}
}

// ParseWeight converts a weight name to a Weight.
func ParseWeight(s string) (Weight, error) {
	switch s {
	case "uniform":
		return Uniform, nil
	case "cotangent", "cot":
		return Cotangent, nil
	}
	return 0, fmt.Errorf("%w: unknown weight %q, expected uniform or cotangent", ErrInvalidConfig, s)
}

// Operator selects how L is applied per iteration.
type Operator int

const (
	Laplacian   Operator = iota // p + λL
	BiLaplacian                 // p + λL, then p − λL
	TaubinLM                    // p + λL, then p + μL with μ = 1/(0.1 − 1/λ)
)

func (o Operator) String() string {
	switch o {
	case Laplacian:
		return "laplacian"
	case BiLaplacian:
		return "bilaplacian"
	case TaubinLM:
		return "taubin"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator converts an operator name to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "laplacian":
		return Laplacian, nil
	case "bilaplacian", "bi-laplacian":
		return BiLaplacian, nil
	case "taubin", "taubinlm", "TaubinLM":
		return TaubinLM, nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q, expected laplacian, bilaplacian or taubin", ErrInvalidConfig, s)
}

// TaubinPassBand is the pass-band frequency K_pb of the TaubinLM operator.
const TaubinPassBand = 0.1

// TaubinMu returns μ = 1/(K_pb − 1/λ). λ = 0 gives μ = 0.
func TaubinMu(lambda float64) float64 {
	if lambda == 0 {
		return 0
	}
	return 1 / (TaubinPassBand - 1/lambda)
}

// Config describes one local smoothing run.
type Config struct {
	Operator   Operator `json:"operator"`
	Weight     Weight   `json:"weight"`
	Lambda     float64  `json:"lambda"`
	Iterations int      `json:"iterations"`
	// Threads splits each pass over vertices across goroutines. Values
	// below 2 run sequentially.
	Threads int `json:"threads,omitempty"`
}

// Validate reports malformed configurations.
func (c Config) Validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf("%w: %d iterations", ErrInvalidConfig, c.Iterations)
	}
	switch c.Operator {
	case Laplacian, BiLaplacian, TaubinLM:
	default:
		return fmt.Errorf("%w: operator %v", ErrInvalidConfig, c.Operator)
	}
	switch c.Weight {
	case Uniform, Cotangent:
	default:
		return fmt.Errorf("%w: weight %v", ErrInvalidConfig, c.Weight)
	}
	return nil
}

// steps returns the λ of each pass of a single iteration.
func (c Config) steps() []float64 {
	switch c.Operator {
	case BiLaplacian:
		return []float64{c.Lambda, -c.Lambda}
	case TaubinLM:
		return []float64{c.Lambda, TaubinMu(c.Lambda)}
	default:
		return []float64{c.Lambda}
	}
}
