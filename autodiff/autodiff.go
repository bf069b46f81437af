// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff records numeric programs on a tape and computes their
// derivatives by replaying it.
//
// Forward mode yields Taylor coefficients of any order, reverse mode the
// adjoints of a weighted sum of outputs, and the sparsity sweeps the
// dependency patterns of the Jacobian and Hessian.
//
// Example:
//
//	import "github.com/born-ml/adtape/autodiff"
//
//	func main() {
//	    rec := autodiff.NewRecorder()
//	    x := rec.Independent([]float64{0.5, 0.2})
//	    f, err := rec.Stop(rec.Sin(rec.Mul(x[0], x[1])))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    y, _ := f.Forward(0, []float64{0.5, 0.2}) // sin(0.1)
//	    g, _ := f.Reverse(1, []float64{1})        // gradient
//	}
package autodiff

import (
	"github.com/born-ml/adtape/internal/autodiff"
	"github.com/born-ml/adtape/internal/config"
	"github.com/born-ml/adtape/internal/tape"
)

// Recorder builds one tape.
type Recorder = autodiff.Recorder

// Var is a scalar seen by a Recorder.
type Var = autodiff.Var

// Vector is an indirectly addressed array recorded on a tape.
type Vector = autodiff.Vector

// Fun owns a finished tape and computes derivatives from it.
type Fun = autodiff.Fun

// IndexError reports an indirect vector index out of range at replay.
type IndexError = autodiff.IndexError

// CompareConfig selects how comparison changes are reported.
type CompareConfig = config.Compare

// Errors returned by Recorder and Fun.
var (
	ErrOrderSkipped      = autodiff.ErrOrderSkipped
	ErrNotComputed       = autodiff.ErrNotComputed
	ErrDimension         = autodiff.ErrDimension
	ErrNoForJac          = autodiff.ErrNoForJac
	ErrIndex             = autodiff.ErrIndex
	ErrComparisonChanged = autodiff.ErrComparisonChanged
	ErrRecorder          = autodiff.ErrRecorder
	ErrStopped           = autodiff.ErrStopped
	ErrOrdering          = autodiff.ErrOrdering
)

// NewRecorder starts a recording pass.
func NewRecorder() *Recorder {
	return autodiff.NewRecorder()
}

// Const returns a parameter with value v.
func Const(v float64) Var {
	return autodiff.Const(v)
}

// New returns a function object for a tape, for example one read back
// with package tape.
func New(t *tape.Tape) (*Fun, error) {
	return autodiff.New(t)
}
