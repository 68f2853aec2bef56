// Package assembly turns elliptic operators into element and global
// matrices, vectors and energies by quadrature over mesh elements. Local
// degrees of freedom pack solution components contiguously per node, and
// global degree of freedom s*node+component follows the same convention.
package assembly

import (
	"fmt"
	"math"

	"github.com/fealab/fea/element"
	"github.com/fealab/fea/operators"
	"github.com/fealab/fea/quadrature"
	"github.com/fealab/fea/utils"
)

// pointGeometry evaluates the physical basis gradients and the Jacobian
// determinant at one reference point. Bphys is d x n with column j the
// physical gradient of basis function j.
func pointGeometry(e element.Element, ref []float64) (Bphys utils.Matrix, detJ float64, err error) {
	var (
		r = e.Shape.Dim()
	)
	if e.GeomDim != r {
		err = fmt.Errorf("volumetric assembly needs geometric dimension %d to match the reference dimension %d of shape %v",
			e.GeomDim, r, e.Shape)
		return
	}
	J := e.ReferenceJacobian(ref)
	detJ = J.Det()
	JInv, err := J.Inverse()
	if err != nil {
		err = fmt.Errorf("singular geometry Jacobian at reference point %v: %w", ref, err)
		return
	}
	G := element.BasisGradients(e.Shape, ref)
	Bphys = JInv.Transpose().Mul(G)
	return
}

// gradAtPoint computes the d x s solution gradient from the physical basis
// gradients and the packed local coefficients (s per node)
func gradAtPoint(Bphys utils.Matrix, uLocal []float64, s int) utils.Matrix {
	var (
		_, n = Bphys.Dims()
		U    = utils.NewMatrix(n, s)
	)
	for j := 0; j < n; j++ {
		for m := 0; m < s; m++ {
			U.Set(j, m, uLocal[j*s+m])
		}
	}
	return Bphys.Mul(U)
}

// packColumns flattens Bphys column by column, so vector j of the packed
// slice is the physical gradient of basis function j
func packColumns(Bphys utils.Matrix) []float64 {
	var (
		d, n = Bphys.Dims()
		a    = make([]float64, d*n)
	)
	for j := 0; j < n; j++ {
		for i := 0; i < d; i++ {
			a[j*d+i] = Bphys.At(i, j)
		}
	}
	return a
}

func checkLocal(e element.Element, s int, uLocal []float64) {
	if len(uLocal) != s*e.NumNodes() {
		panic(fmt.Errorf("local coefficient vector has %d entries, want %d for %d nodes with %d components",
			len(uLocal), s*e.NumNodes(), e.NumNodes(), s))
	}
}

// AssembleElementMatrix accumulates the element stiffness contribution
//
//	K_(I i)(J j) += sum_q w_q |det J| C_ij(grad u; grad phi_I, grad phi_J)
//
// into out, which must be (s n) x (s n). The current solution enters through
// uLocal so nonlinear operators are linearized about it; for linear
// operators uLocal may be all zeros.
func AssembleElementMatrix[P any](out utils.Matrix, e element.Element,
	op operators.EllipticContraction[P], uLocal []float64,
	q quadrature.Rule, params P) error {
	var (
		n, s = e.NumNodes(), op.SolutionDim()
	)
	checkLocal(e, s, uLocal)
	if nr, nc := out.Dims(); nr != s*n || nc != s*n {
		panic(fmt.Errorf("element matrix is %d x %d, want %d x %d", nr, nc, s*n, s*n))
	}
	for i := 0; i < q.NumPoints(); i++ {
		Bphys, detJ, err := pointGeometry(e, q.Point(i))
		if err != nil {
			return err
		}
		var (
			gradU = gradAtPoint(Bphys, uLocal, s)
			a     = packColumns(Bphys)
			alpha = q.Weights[i] * math.Abs(detJ)
		)
		operators.AccumulateContractionBlocks(op, out, alpha, gradU, a, a, params)
	}
	return nil
}

// AssembleElementVector accumulates the interior force contribution
//
//	f_(I m) += sum_q w_q |det J| g(grad u)_km Bphys_kI
//
// into out, which must have s n entries
func AssembleElementVector[P any](out []float64, e element.Element,
	op operators.EllipticOperator[P], uLocal []float64,
	q quadrature.Rule, params P) error {
	var (
		n, s = e.NumNodes(), op.SolutionDim()
	)
	checkLocal(e, s, uLocal)
	if len(out) != s*n {
		panic(fmt.Errorf("element vector has %d entries, want %d", len(out), s*n))
	}
	for i := 0; i < q.NumPoints(); i++ {
		Bphys, detJ, err := pointGeometry(e, q.Point(i))
		if err != nil {
			return err
		}
		var (
			gradU = gradAtPoint(Bphys, uLocal, s)
			g     = op.ComputeEllipticTerm(gradU, params)
			alpha = q.Weights[i] * math.Abs(detJ)
			cols  = make([]utils.Vector, n)
		)
		for bigI := 0; bigI < n; bigI++ {
			cols[bigI] = Bphys.Col(bigI)
		}
		for m := 0; m < s; m++ {
			gm := g.Col(m)
			for bigI := 0; bigI < n; bigI++ {
				out[bigI*s+m] += alpha * gm.Dot(cols[bigI])
			}
		}
	}
	return nil
}

// AssembleElementEnergy integrates the operator's energy density over the
// element at the given local solution
func AssembleElementEnergy[P any](e element.Element,
	op operators.EllipticEnergy[P], uLocal []float64,
	q quadrature.Rule, params P) (energy float64, err error) {
	s := op.SolutionDim()
	checkLocal(e, s, uLocal)
	for i := 0; i < q.NumPoints(); i++ {
		Bphys, detJ, perr := pointGeometry(e, q.Point(i))
		if perr != nil {
			err = perr
			return
		}
		gradU := gradAtPoint(Bphys, uLocal, s)
		energy += q.Weights[i] * math.Abs(detJ) * op.ComputeEnergy(gradU, params)
	}
	return
}

// TransformQuadratureToPhysical maps a reference rule onto one element:
// points become physical coordinates and weights pick up the |det J| volume
// scaling, so summing f over the result integrates f over the element
func TransformQuadratureToPhysical(e element.Element, q quadrature.Rule) (
	points utils.Matrix, weights []float64, err error) {
	var (
		np = q.NumPoints()
		d  = e.GeomDim
	)
	points = utils.NewMatrix(np, d)
	weights = make([]float64, np)
	for i := 0; i < np; i++ {
		ref := q.Point(i)
		x := e.MapReferenceCoords(ref)
		for k := 0; k < d; k++ {
			points.Set(i, k, x[k])
		}
		J := e.ReferenceJacobian(ref)
		detJ := J.Det()
		if detJ == 0 {
			err = fmt.Errorf("degenerate geometry Jacobian at reference point %v", ref)
			return
		}
		weights[i] = q.Weights[i] * math.Abs(detJ)
	}
	return
}
