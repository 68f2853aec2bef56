package assembly

import (
	"math"
	"testing"

	"github.com/fealab/fea/element"
	"github.com/fealab/fea/mesh"
	"github.com/fealab/fea/operators"
	"github.com/fealab/fea/quadrature"
	"github.com/fealab/fea/utils"
	"github.com/stretchr/testify/assert"
)

// skewedQuad is a bilinear element with nonconstant Jacobian
var skewedQuad = []float64{
	-1, -1,
	2, -2,
	4, 1,
	-2, 3,
}

func TestElementMatrixLaplace(t *testing.T) {
	var (
		e      = element.FromVertices(element.Quad4, 2, skewedQuad)
		q, err = quadrature.ForShape(element.Quad4, 5)
		op     = operators.Laplace{}
		n      = e.NumNodes()
		K      = utils.NewMatrix(n, n)
		zero   = make([]float64, n)
	)
	assert.NoError(t, err)
	assert.NoError(t, AssembleElementMatrix[operators.Unitless](K, e, op, zero, q, operators.Unitless{}))

	// Symmetric with zero row sums: constants lie in the kernel
	for i := 0; i < n; i++ {
		var rowSum float64
		for j := 0; j < n; j++ {
			assert.InDelta(t, K.At(i, j), K.At(j, i), 1.e-12)
			rowSum += K.At(i, j)
		}
		assert.InDelta(t, 0., rowSum, 1.e-12)
		assert.True(t, K.At(i, i) > 0)
	}
}

func TestElementVectorMatchesMatrix(t *testing.T) {
	// For a linear operator the interior force is K u
	var (
		e      = element.FromVertices(element.Quad4, 2, skewedQuad)
		q, _   = quadrature.ForShape(element.Quad4, 5)
		op     = operators.Laplace{}
		n      = e.NumNodes()
		uLocal = []float64{1, -2, 0.5, 3}
		K      = utils.NewMatrix(n, n)
		f      = make([]float64, n)
	)
	assert.NoError(t, AssembleElementMatrix[operators.Unitless](K, e, op, uLocal, q, operators.Unitless{}))
	assert.NoError(t, AssembleElementVector[operators.Unitless](f, e, op, uLocal, q, operators.Unitless{}))
	for i := 0; i < n; i++ {
		var ku float64
		for j := 0; j < n; j++ {
			ku += K.At(i, j) * uLocal[j]
		}
		assert.InDelta(t, ku, f[i], 1.e-12)
	}
}

func TestElementEnergyMatchesQuadraticForm(t *testing.T) {
	// Dirichlet energy is u^T K u / 2
	var (
		e      = element.FromVertices(element.Quad4, 2, skewedQuad)
		q, _   = quadrature.ForShape(element.Quad4, 5)
		op     = operators.Laplace{}
		n      = e.NumNodes()
		uLocal = []float64{1, -2, 0.5, 3}
		K      = utils.NewMatrix(n, n)
	)
	assert.NoError(t, AssembleElementMatrix[operators.Unitless](K, e, op, uLocal, q, operators.Unitless{}))
	energy, err := AssembleElementEnergy[operators.Unitless](e, op, uLocal, q, operators.Unitless{})
	assert.NoError(t, err)
	var quadForm float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			quadForm += uLocal[i] * K.At(i, j) * uLocal[j]
		}
	}
	assert.InDelta(t, 0.5*quadForm, energy, 1.e-12)
}

func TestElementMatrixElasticity(t *testing.T) {
	var (
		e = element.FromVertices(element.Tri3, 2, []float64{
			0, 0,
			2, 0,
			0, 1,
		})
		q, _ = quadrature.ForShape(element.Tri3, 2)
		op   = operators.LinearElasticity{Dim: 2}
		p    = operators.YoungPoisson(100., 0.3)
		nl   = 2 * e.NumNodes()
		K    = utils.NewMatrix(nl, nl)
		zero = make([]float64, nl)
	)
	assert.NoError(t, AssembleElementMatrix[operators.LameParameters](K, e, op, zero, q, p))
	// Symmetric, and rigid translations lie in the kernel
	for i := 0; i < nl; i++ {
		for j := 0; j < nl; j++ {
			assert.InDelta(t, K.At(i, j), K.At(j, i), 1.e-10)
		}
	}
	for m := 0; m < 2; m++ {
		trans := make([]float64, nl)
		for j := 0; j < e.NumNodes(); j++ {
			trans[2*j+m] = 1
		}
		for i := 0; i < nl; i++ {
			var ku float64
			for j := 0; j < nl; j++ {
				ku += K.At(i, j) * trans[j]
			}
			assert.InDelta(t, 0., ku, 1.e-12)
		}
	}
}

func TestSingularJacobianReportsError(t *testing.T) {
	// Collapsed triangle has a singular geometry Jacobian everywhere
	var (
		e = element.FromVertices(element.Tri3, 2, []float64{
			0, 0,
			1, 1,
			2, 2,
		})
		q, _ = quadrature.ForShape(element.Tri3, 2)
		op   = operators.Laplace{}
		K    = utils.NewMatrix(3, 3)
	)
	err := AssembleElementMatrix[operators.Unitless](K, e, op, make([]float64, 3), q, operators.Unitless{})
	assert.Error(t, err)
}

func TestTransformQuadratureToPhysical(t *testing.T) {
	var (
		e    = element.FromVertices(element.Quad4, 2, skewedQuad)
		q, _ = quadrature.ForShape(element.Quad4, 3)
	)
	pts, wts, err := TransformQuadratureToPhysical(e, q)
	assert.NoError(t, err)
	nr, nc := pts.Dims()
	assert.Equal(t, q.NumPoints(), nr)
	assert.Equal(t, 2, nc)
	// Physical weights integrate 1 to the quadrilateral area (shoelace 16.5)
	var area float64
	for _, w := range wts {
		area += w
	}
	assert.InDelta(t, 16.5, area, 1.e-12)
}

func TestInterpolationL2ErrorBilinear(t *testing.T) {
	// Interpolating u = 5xy + 3x - 2y - 5 with bilinear functions on the
	// skewed quadrilateral leaves an L2 error of exactly sqrt(9955/12),
	// integrable by a strength 11 tensor rule
	var (
		e      = element.FromVertices(element.Quad4, 2, skewedQuad)
		q, err = quadrature.ForShape(element.Quad4, 11)
		u      = func(x []float64) []float64 {
			return []float64{5*x[0]*x[1] + 3*x[0] - 2*x[1] - 5}
		}
		uLocal = make([]float64, 4)
	)
	assert.NoError(t, err)
	for j := 0; j < 4; j++ {
		uLocal[j] = u(e.Node(j))[0]
	}
	l2, err := EstimateElementL2Error(e, 1, uLocal, u, q)
	assert.NoError(t, err)
	assert.InDelta(t, math.Sqrt(9955./12.), l2, 1.e-9)
}

func TestInterpolationL2ErrorIsoparametricExact(t *testing.T) {
	// Linear functions are contained in the isoparametric bilinear space on
	// any quadrilateral, so interpolating one leaves no error
	var (
		e = element.FromVertices(element.Quad4, 2, []float64{
			5, 3,
			10, 4,
			11, 6,
			6, 4,
		})
		q, err = quadrature.ForShape(element.Quad4, 11)
		u      = func(x []float64) []float64 {
			return []float64{4*x[0] - 7*x[1] + 2}
		}
		uLocal = make([]float64, 4)
	)
	assert.NoError(t, err)
	for j := 0; j < 4; j++ {
		uLocal[j] = u(e.Node(j))[0]
	}
	l2, err := EstimateElementL2Error(e, 1, uLocal, u, q)
	assert.NoError(t, err)
	assert.True(t, l2 <= e.Diameter()*1.e-12, "l2 = %v", l2)
}

func TestInterpolationL2ErrorHexQuadraticExact(t *testing.T) {
	// The triquadratic Hex27 space contains per axis quadratics, and the
	// Hex20 serendipity space every complete quadratic, so interpolating
	// those fields on affinely mapped hexahedra leaves no error
	cases := []struct {
		shape element.Shape
		u     func(x []float64) []float64
	}{
		{element.Hex27, func(x []float64) []float64 {
			return []float64{x[0]*x[0]*x[1]*x[1]*x[2]*x[2] - 3*x[0]*x[1] + 2*x[2]*x[2] - 5}
		}},
		{element.Hex20, func(x []float64) []float64 {
			return []float64{x[0]*x[0] + 2*x[0]*x[1] - 3*x[2]*x[2] + x[1] - 1}
		}},
	}
	for _, c := range cases {
		var (
			nodes = c.shape.ReferenceNodes()
			n, _  = nodes.Dims()
			verts = make([]float64, 0, 3*n)
		)
		for i := 0; i < n; i++ {
			verts = append(verts,
				nodes.At(i, 0)+2,
				2*nodes.At(i, 1)-1,
				0.5*nodes.At(i, 2))
		}
		var (
			e      = element.FromVertices(c.shape, 3, verts)
			q, err = quadrature.ForShape(c.shape, 5)
			uLocal = make([]float64, n)
		)
		assert.NoError(t, err)
		for j := 0; j < n; j++ {
			uLocal[j] = c.u(e.Node(j))[0]
		}
		l2, err := EstimateElementL2Error(e, 1, uLocal, c.u, q)
		assert.NoError(t, err)
		assert.True(t, l2 <= e.Diameter()*1.e-12, "%v l2 = %v", c.shape, l2)
	}
}

func TestInterpolationL2ErrorAffineExact(t *testing.T) {
	// Linear functions are reproduced exactly on affine tetrahedra
	var (
		e = element.FromVertices(element.Tet4, 3, []float64{
			0, 0, 0,
			1, 0, 0,
			0, 2, 0,
			0, 0, 3,
		})
		q, _ = quadrature.ForShape(element.Tet4, 3)
		u    = func(x []float64) []float64 {
			return []float64{2*x[0] - x[1] + 4*x[2] + 1}
		}
		uLocal = make([]float64, 4)
	)
	for j := 0; j < 4; j++ {
		uLocal[j] = u(e.Node(j))[0]
	}
	l2, err := EstimateElementL2Error(e, 1, uLocal, u, q)
	assert.NoError(t, err)
	assert.InDelta(t, 0., l2, 1.e-12)
}

func TestGlobalAssembly(t *testing.T) {
	var (
		msh  = mesh.NewUnitSquareTriMesh(3)
		op   = operators.Laplace{}
		q, _ = quadrature.ForShape(element.Tri3, 2)
		nDof = msh.NumNodes()
		u    = make([]float64, nDof)
	)
	for i := range u {
		u[i] = float64(i%5) - 2
	}
	A, err := AssembleGlobalMatrix[operators.Unitless](msh, op, u, q, operators.Unitless{})
	assert.NoError(t, err)
	nr, nc := A.Dims()
	assert.Equal(t, nDof, nr)
	assert.Equal(t, nDof, nc)

	// Row sums vanish and the interior force equals A u
	f, err := AssembleGlobalVector[operators.Unitless](msh, op, u, q, operators.Unitless{})
	assert.NoError(t, err)
	for i := 0; i < nDof; i++ {
		var rowSum, au float64
		for j := 0; j < nDof; j++ {
			rowSum += A.At(i, j)
			au += A.At(i, j) * u[j]
		}
		assert.InDelta(t, 0., rowSum, 1.e-12)
		assert.InDelta(t, au, f[i], 1.e-12)
	}

	// Energy is the quadratic form
	energy, err := AssembleGlobalEnergy[operators.Unitless](msh, op, u, q, operators.Unitless{})
	assert.NoError(t, err)
	var quadForm float64
	for i := 0; i < nDof; i++ {
		for j := 0; j < nDof; j++ {
			quadForm += u[i] * A.At(i, j) * u[j]
		}
	}
	assert.InDelta(t, 0.5*quadForm, energy, 1.e-12)
}

func TestParallelAssemblyMatchesSerial(t *testing.T) {
	var (
		msh  = mesh.NewUnitSquareTriMesh(4)
		op   = operators.Laplace{}
		q, _ = quadrature.ForShape(element.Tri3, 2)
		u    = make([]float64, msh.NumNodes())
	)
	serial, err := AssembleGlobalMatrix[operators.Unitless](msh, op, u, q, operators.Unitless{})
	assert.NoError(t, err)
	for _, nThreads := range []int{1, 2, 3, 7} {
		parallel, perr := AssembleGlobalMatrixParallel[operators.Unitless](msh, op, u, q, operators.Unitless{}, nThreads)
		assert.NoError(t, perr)
		nDof := msh.NumNodes()
		for i := 0; i < nDof; i++ {
			for j := 0; j < nDof; j++ {
				// Deterministic merge order makes this exact
				assert.Equal(t, serial.At(i, j), parallel.At(i, j),
					"nThreads %d entry (%d,%d)", nThreads, i, j)
			}
		}
	}
}

func TestMeshL2Error(t *testing.T) {
	var (
		msh  = mesh.NewUnitSquareTriMesh(4)
		q, _ = quadrature.ForShape(element.Tri3, 4)
		u    = make([]float64, msh.NumNodes())
		lin  = func(x []float64) []float64 {
			return []float64{3*x[0] - 7*x[1] + 2}
		}
	)
	for i := 0; i < msh.NumNodes(); i++ {
		u[i] = lin(msh.Vertex(i))[0]
	}
	l2, err := EstimateMeshL2Error(msh, 1, u, lin, q)
	assert.NoError(t, err)
	assert.InDelta(t, 0., l2, 1.e-12)

	// A quadratic is not in the space: the interpolation error shrinks as
	// O(h^2) under refinement
	quadFn := func(x []float64) []float64 {
		return []float64{x[0] * x[0]}
	}
	errAt := func(n int) float64 {
		m := mesh.NewUnitSquareTriMesh(n)
		v := make([]float64, m.NumNodes())
		for i := 0; i < m.NumNodes(); i++ {
			v[i] = quadFn(m.Vertex(i))[0]
		}
		l2, lerr := EstimateMeshL2Error(m, 1, v, quadFn, q)
		assert.NoError(t, lerr)
		return l2
	}
	e1, e2 := errAt(4), errAt(8)
	assert.True(t, e1 > 0)
	assert.InDelta(t, 4., e1/e2, 0.1)
}
