// Package filter builds frequency filters out of local smoothing runs.
package filter

import (
	"errors"
	"fmt"

	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/smoothing"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBandMismatch is returned when the number of band gains does not match
// the number of smoothing configurations.
var ErrBandMismatch = errors.New("filter: need exactly one gain between each pair of configurations")

// BandFrequencies returns M + Σ μ_i (S_i(M) − S_{i+1}(M)), where S_i is
// local smoothing with configs[i]. Smoother configurations should come
// later so each difference isolates one frequency band.
func BandFrequencies(m *mesh.TriangleMesh, configs []smoothing.Config, mus []float64) ([]r3.Vec, error) {
	if len(configs) < 2 || len(mus) != len(configs)-1 {
		return nil, fmt.Errorf("%w: %d configurations, %d gains", ErrBandMismatch, len(configs), len(mus))
	}
	out := append([]r3.Vec(nil), m.Vertices()...)
	prev, err := smoothing.Local(m, configs[0])
	if err != nil {
		return nil, fmt.Errorf("filter: band 0: %w", err)
	}
	for i := 1; i < len(configs); i++ {
		cur, err := smoothing.Local(m, configs[i])
		if err != nil {
			return nil, fmt.Errorf("filter: band %d: %w", i, err)
		}
		for v := range out {
			out[v] = r3.Add(out[v], r3.Scale(mus[i-1], r3.Sub(prev[v], cur[v])))
		}
		prev = cur
	}
	return out, nil
}

// HighFrequencyDetails returns M − S(M) per vertex: what smoothing with
// cfg removes.
func HighFrequencyDetails(m *mesh.TriangleMesh, cfg smoothing.Config) ([]r3.Vec, error) {
	smooth, err := smoothing.Local(m, cfg)
	if err != nil {
		return nil, err
	}
	vs := m.Vertices()
	for v := range smooth {
		smooth[v] = r3.Sub(vs[v], smooth[v])
	}
	return smooth, nil
}

// ExaggerateHighFrequencies returns M + scale·(M − S(M)).
func ExaggerateHighFrequencies(m *mesh.TriangleMesh, cfg smoothing.Config, scale float64) ([]r3.Vec, error) {
	details, err := HighFrequencyDetails(m, cfg)
	if err != nil {
		return nil, err
	}
	vs := m.Vertices()
	for v := range details {
		details[v] = r3.Add(vs[v], r3.Scale(scale, details[v]))
	}
	return details, nil
}
