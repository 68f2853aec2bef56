// Package operators defines the elliptic operator protocol used by the
// assembly routines: a weak form -div g(grad u) = f is described by its
// elliptic term g, the contraction of its derivative with vector pairs, and
// optionally an energy functional whose minimizer solves the weak form.
//
// Operators are parameterized over a payload type P carrying pointwise
// material data, so that material parameters flow through assembly without
// interface boxing.
package operators

import (
	"fmt"

	"github.com/fealab/fea/utils"
)

// Operator is the base protocol: the solution dimension s fixes the shape of
// gradients (d x s) and contraction blocks (s x s)
type Operator[P any] interface {
	SolutionDim() int
}

// EllipticOperator computes the elliptic term g(grad u), a d x s matrix
// matching the layout of the solution gradient
type EllipticOperator[P any] interface {
	Operator[P]
	ComputeEllipticTerm(gradU utils.Matrix, params P) utils.Matrix
}

// EllipticContraction computes s x s blocks a . (dg/dG) . b of the operator
// derivative contracted with vectors a and b of length d. These blocks are
// the building material of element stiffness matrices.
type EllipticContraction[P any] interface {
	Operator[P]
	Contract(gradU utils.Matrix, a, b []float64, params P) utils.Matrix
}

// EllipticEnergy computes the energy density whose stationarity condition is
// the weak form, used for error estimation and line searches
type EllipticEnergy[P any] interface {
	Operator[P]
	ComputeEnergy(gradU utils.Matrix, params P) float64
}

// ContractionBatcher is an optional fast path: operators that can fill a
// whole block matrix of contractions at once implement it and are picked up
// by AccumulateContractionBlocks
type ContractionBatcher[P any] interface {
	EllipticContraction[P]
	AccumulateContractions(out utils.Matrix, alpha float64, gradU utils.Matrix,
		a, b []float64, params P)
}

// AccumulateContractionBlocks accumulates alpha * Contract(gradU, a_I, b_J)
// into the (I,J) block of out for every pair of vectors packed in a and b.
// Vectors are packed contiguously, d entries each, so a holds len(a)/d
// vectors. out must be (s*M) x (s*N) where M and N are the vector counts.
//
// Operators implementing ContractionBatcher take over the whole loop.
func AccumulateContractionBlocks[P any](op EllipticContraction[P],
	out utils.Matrix, alpha float64, gradU utils.Matrix,
	a, b []float64, params P) {
	checkContractionDims(op, out, gradU, a, b)
	if batcher, ok := any(op).(ContractionBatcher[P]); ok {
		batcher.AccumulateContractions(out, alpha, gradU, a, b, params)
		return
	}
	var (
		d, _ = gradU.Dims()
		s    = op.SolutionDim()
		M    = len(a) / d
		N    = len(b) / d
	)
	for bigI := 0; bigI < M; bigI++ {
		aI := a[bigI*d : (bigI+1)*d]
		for bigJ := 0; bigJ < N; bigJ++ {
			bJ := b[bigJ*d : (bigJ+1)*d]
			C := op.Contract(gradU, aI, bJ, params)
			for i := 0; i < s; i++ {
				for j := 0; j < s; j++ {
					r, c := s*bigI+i, s*bigJ+j
					out.Set(r, c, out.At(r, c)+alpha*C.At(i, j))
				}
			}
		}
	}
}

func checkContractionDims[P any](op EllipticContraction[P],
	out, gradU utils.Matrix, a, b []float64) {
	var (
		d, _ = gradU.Dims()
		s    = op.SolutionDim()
	)
	if d == 0 || len(a)%d != 0 || len(b)%d != 0 {
		panic(fmt.Errorf("packed vector lengths %d, %d are not multiples of the gradient dimension %d",
			len(a), len(b), d))
	}
	var (
		M, N   = len(a) / d, len(b) / d
		nr, nc = out.Dims()
	)
	if nr != s*M || nc != s*N {
		panic(fmt.Errorf("output block matrix is %d x %d, need %d x %d for %d x %d vector pairs with solution dimension %d",
			nr, nc, s*M, s*N, M, N, s))
	}
}
