package assembly

import (
	"fmt"
	"math"

	"github.com/fealab/fea/element"
	"github.com/fealab/fea/mesh"
	"github.com/fealab/fea/quadrature"
)

// EstimateElementL2Error integrates the squared pointwise difference between
// the finite element function with local coefficients uLocal (s components
// per node) and the exact solution over the element, returning its square
// root. The quadrature strength must cover the product of the basis degree
// and the smoothness of the error integrand for the estimate to be exact on
// polynomial data.
func EstimateElementL2Error(e element.Element, s int, uLocal []float64,
	exact func(x []float64) []float64, q quadrature.Rule) (l2 float64, err error) {
	checkLocal(e, s, uLocal)
	var (
		n   = e.NumNodes()
		sum float64
	)
	for i := 0; i < q.NumPoints(); i++ {
		ref := q.Point(i)
		phi := element.Basis(e.Shape, ref)
		// u_h at the quadrature point
		uh := make([]float64, s)
		for j := 0; j < n; j++ {
			p := phi.DataP[j]
			for m := 0; m < s; m++ {
				uh[m] += p * uLocal[j*s+m]
			}
		}
		x := e.MapReferenceCoords(ref)
		ux := exact(x)
		if len(ux) != s {
			err = fmt.Errorf("exact solution returned %d components, want %d", len(ux), s)
			return
		}
		J := e.ReferenceJacobian(ref)
		var diff2 float64
		for m := 0; m < s; m++ {
			d := uh[m] - ux[m]
			diff2 += d * d
		}
		sum += q.Weights[i] * math.Abs(J.Det()) * diff2
	}
	l2 = math.Sqrt(sum)
	return
}

// EstimateMeshL2Error accumulates per element squared errors over all
// elements of a function given by its global coefficient vector
func EstimateMeshL2Error(msh *mesh.Mesh, s int, u []float64,
	exact func(x []float64) []float64, q quadrature.Rule) (l2 float64, err error) {
	checkGlobal(msh, s, u)
	var sum float64
	for k := 0; k < msh.NumElements(); k++ {
		var eL2 float64
		eL2, err = EstimateElementL2Error(msh.Element(k), s,
			gatherLocal(msh, k, s, u), exact, q)
		if err != nil {
			err = fmt.Errorf("element %d: %w", k, err)
			return
		}
		sum += eL2 * eL2
	}
	l2 = math.Sqrt(sum)
	return
}
