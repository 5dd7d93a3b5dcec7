// SPDX-License-Identifier: MIT

// Package convergence records the residual history of an iterative solve
// and renders it as a log-scale convergence plot.
//
// A Recorder is a solvers.StopCriterion that never stops the solve; put it
// first in the iterator so it sees every evaluation:
//
//	rec := convergence.NewRecorder[float64]()
//	it, _ := solvers.NewIterator[float64](rec, residual, count)
//	...
//	_ = rec.SavePNG("bicgstab.png", "BiCgStab, ILU(0)")
package convergence

import (
	"io"
	"math"
	"os"
	"slices"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
	"github.com/katalvlaran/lvnum/solvers"
)

const (
	opPlot     = "Recorder.Plot"
	opWritePNG = "Recorder.WritePNG"
	opSavePNG  = "Recorder.SavePNG"
)

// PNG size used by WritePNG and SavePNG.
const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// Sample is one recorded evaluation.
type Sample struct {
	Iteration int
	// Residual is ‖r‖₂.
	Residual float64
	// Relative is ‖r‖₂/‖b‖₂, or ‖r‖₂ when b is zero.
	Relative float64
}

// Recorder collects one Sample per iteration. Re-evaluating an iteration
// replaces its sample; an earlier iteration number starts a new history.
// It is safe to read while a solve is running.
type Recorder[T numeric.Element] struct {
	mu      sync.Mutex
	samples []Sample
}

var _ solvers.StopCriterion[float64] = (*Recorder[float64])(nil)

// NewRecorder returns an empty recorder.
func NewRecorder[T numeric.Element]() *Recorder[T] { return &Recorder[T]{} }

// DetermineStatus implements solvers.StopCriterion; it always returns
// solvers.Running.
func (r *Recorder[T]) DetermineStatus(iteration int, _, source, residual *linalg.Vector[T]) solvers.Status {
	s := Sample{Iteration: iteration, Residual: residual.Norm2()}
	s.Relative = s.Residual
	if bn := source.Norm2(); bn > 0 {
		s.Relative /= bn
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.samples); n > 0 {
		switch last := r.samples[n-1].Iteration; {
		case last == iteration:
			r.samples[n-1] = s
			return solvers.Running
		case last > iteration:
			r.samples = r.samples[:0]
		}
	}
	r.samples = append(r.samples, s)

	return solvers.Running
}

// Reset implements solvers.StopCriterion.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	r.samples = r.samples[:0]
	r.mu.Unlock()
}

// History returns a copy of the recorded samples in iteration order.
func (r *Recorder[T]) History() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.samples)
}

// Len returns the number of recorded samples.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.samples)
}

// Plot draws log₁₀ of the relative residual against the iteration number.
// Samples with a zero or non-finite residual have no logarithm and are
// left out. An empty history is fault.ErrInvalidParameter.
func (r *Recorder[T]) Plot(title string) (*plot.Plot, error) {
	history := r.History()
	xys := make(plotter.XYs, 0, len(history))
	for _, s := range history {
		y := math.Log10(s.Relative)
		if math.IsInf(y, 0) || math.IsNaN(y) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(s.Iteration), Y: y})
	}
	if len(xys) == 0 {
		return nil, fault.Wrapf(opPlot, fault.ErrInvalidParameter, "no plottable samples in %d recorded", len(history))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "log10 ‖r‖/‖b‖"
	p.Add(plotter.NewGrid())
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fault.Wrap(opPlot, err)
	}
	points, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fault.Wrap(opPlot, err)
	}
	points.Radius = vg.Points(1.5)
	p.Add(line, points)

	return p, nil
}

// WritePNG renders the convergence plot as PNG into w.
func (r *Recorder[T]) WritePNG(w io.Writer, title string) error {
	p, err := r.Plot(title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fault.Wrap(opWritePNG, err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		return fault.Wrap(opWritePNG, err)
	}

	return nil
}

// SavePNG writes the convergence plot to the file at path as PNG,
// whatever the extension.
func (r *Recorder[T]) SavePNG(path, title string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(opSavePNG, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fault.Wrap(opSavePNG, cerr)
		}
	}()

	return r.WritePNG(f, title)
}
