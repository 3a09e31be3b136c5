// Package config holds the process-wide defaults used when a script leaves
// a setting out. Defaults are read from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chazu/geoproc/pkg/linalg"
	"github.com/chazu/geoproc/pkg/parametrisation"
	"github.com/chazu/geoproc/pkg/smoothing"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for defaults outside their allowed range.
var ErrInvalid = errors.New("config: invalid defaults")

// Defaults are the settings applied to every evaluation.
type Defaults struct {
	Threads int           `yaml:"threads" json:"threads"` // goroutines per operation; below 2 is sequential
	Cells   int           `yaml:"cells" json:"cells"`     // marching cubes resolution for solids
	Weight  string        `yaml:"weight" json:"weight"`   // uniform or cotangent
	Shape   string        `yaml:"shape" json:"shape"`     // circle or square
	Solver  string        `yaml:"solver" json:"solver"`   // auto, cholesky or cg
	Timeout time.Duration `yaml:"timeout" json:"timeout"` // evaluation limit
}

// Default returns the built-in defaults.
func Default() Defaults {
	return Defaults{
		Threads: 1,
		Cells:   48,
		Weight:  "cotangent",
		Shape:   "square",
		Solver:  "auto",
		Timeout: 5 * time.Second,
	}
}

// Load reads defaults from a YAML file. Keys missing from the file keep
// their built-in value.
func Load(path string) (Defaults, error) {
	f, err := os.Open(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads defaults from YAML. Unknown keys are an error.
func Decode(r io.Reader) (Defaults, error) {
	d := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return Defaults{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Defaults{}, err
	}
	return d, nil
}

// Validate checks every field.
func (d Defaults) Validate() error {
	if d.Threads < 0 {
		return fmt.Errorf("%w: threads %d", ErrInvalid, d.Threads)
	}
	if d.Cells < 4 {
		return fmt.Errorf("%w: cells %d, need at least 4", ErrInvalid, d.Cells)
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("%w: timeout %s", ErrInvalid, d.Timeout)
	}
	if _, err := d.SmoothingWeight(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := d.BoundaryShape(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := d.SolverMethod(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// SmoothingWeight parses Weight.
func (d Defaults) SmoothingWeight() (smoothing.Weight, error) {
	return smoothing.ParseWeight(d.Weight)
}

// BoundaryShape parses Shape.
func (d Defaults) BoundaryShape() (parametrisation.Shape, error) {
	return parametrisation.ParseShape(d.Shape)
}

// SolverMethod parses Solver.
func (d Defaults) SolverMethod() (linalg.Method, error) {
	return linalg.ParseMethod(d.Solver)
}
