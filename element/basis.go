package element

import (
	"fmt"

	"github.com/fealab/fea/utils"
)

// Basis evaluates all Lagrange basis functions of the shape at a reference
// point, returned as a 1 x n row vector. The functions satisfy the Kronecker
// delta property at the reference nodes and sum to one everywhere.
func Basis(s Shape, ref []float64) (phi utils.Matrix) {
	checkRefDim(s, ref)
	var (
		n = s.NumNodes()
		v = make([]float64, n)
	)
	switch s {
	case Line2:
		t := ref[0]
		v[0] = 0.5 * (1 - t)
		v[1] = 0.5 * (1 + t)
	case Tri3:
		L := triBary(ref)
		copy(v, L[:])
	case Tri6:
		L := triBary(ref)
		for i := 0; i < 3; i++ {
			v[i] = L[i] * (2*L[i] - 1)
		}
		for e, ij := range triEdges {
			v[3+e] = 4 * L[ij[0]] * L[ij[1]]
		}
	case Quad4:
		evalTensorLinear(s, ref, v)
	case Quad9:
		evalTensorQuadratic(s, ref, v)
	case Tet4:
		L := tetBary(ref)
		copy(v, L[:])
	case Tet10:
		L := tetBary(ref)
		for i := 0; i < 4; i++ {
			v[i] = L[i] * (2*L[i] - 1)
		}
		for e, ij := range tetEdges {
			v[4+e] = 4 * L[ij[0]] * L[ij[1]]
		}
	case Tet20:
		L := tetBary(ref)
		for i := 0; i < 4; i++ {
			v[i] = 0.5 * L[i] * (3*L[i] - 1) * (3*L[i] - 2)
		}
		for e, ij := range tetEdges {
			Li, Lj := L[ij[0]], L[ij[1]]
			v[4+2*e] = 4.5 * Li * Lj * (3*Li - 1)
			v[4+2*e+1] = 4.5 * Li * Lj * (3*Lj - 1)
		}
		for f, ijk := range tetFaces {
			v[16+f] = 27 * L[ijk[0]] * L[ijk[1]] * L[ijk[2]]
		}
	case Hex8:
		evalTensorLinear(s, ref, v)
	case Hex20:
		evalHex20(ref, v, nil)
	case Hex27:
		evalTensorQuadratic(s, ref, v)
	default:
		panic(fmt.Errorf("basis not implemented for shape %v", s))
	}
	phi = utils.NewMatrix(1, n, v)
	return
}

// BasisGradients evaluates the reference gradients of all basis functions at
// a reference point, returned as an r x n matrix with column j holding the
// gradient of basis function j.
func BasisGradients(s Shape, ref []float64) (grad utils.Matrix) {
	checkRefDim(s, ref)
	var (
		n, r = s.NumNodes(), s.Dim()
		g    = make([]float64, r*n) // row-major r x n
		set  = func(dim, j int, val float64) { g[dim*n+j] = val }
	)
	switch s {
	case Line2:
		set(0, 0, -0.5)
		set(0, 1, 0.5)
	case Tri3:
		for i := 0; i < 3; i++ {
			set(0, i, triBaryGrad[i][0])
			set(1, i, triBaryGrad[i][1])
		}
	case Tri6:
		L := triBary(ref)
		for i := 0; i < 3; i++ {
			c := 4*L[i] - 1
			set(0, i, c*triBaryGrad[i][0])
			set(1, i, c*triBaryGrad[i][1])
		}
		for e, ij := range triEdges {
			i, j := ij[0], ij[1]
			for d := 0; d < 2; d++ {
				set(d, 3+e, 4*(L[j]*triBaryGrad[i][d]+L[i]*triBaryGrad[j][d]))
			}
		}
	case Quad4:
		gradTensorLinear(s, ref, g)
	case Quad9:
		gradTensorQuadratic(s, ref, g)
	case Tet4:
		for i := 0; i < 4; i++ {
			for d := 0; d < 3; d++ {
				set(d, i, tetBaryGrad[i][d])
			}
		}
	case Tet10:
		L := tetBary(ref)
		for i := 0; i < 4; i++ {
			c := 4*L[i] - 1
			for d := 0; d < 3; d++ {
				set(d, i, c*tetBaryGrad[i][d])
			}
		}
		for e, ij := range tetEdges {
			i, j := ij[0], ij[1]
			for d := 0; d < 3; d++ {
				set(d, 4+e, 4*(L[j]*tetBaryGrad[i][d]+L[i]*tetBaryGrad[j][d]))
			}
		}
	case Tet20:
		L := tetBary(ref)
		for i := 0; i < 4; i++ {
			// d/dL of L(3L-1)(3L-2)/2
			c := 0.5 * (27*L[i]*L[i] - 18*L[i] + 2)
			for d := 0; d < 3; d++ {
				set(d, i, c*tetBaryGrad[i][d])
			}
		}
		for e, ij := range tetEdges {
			i, j := ij[0], ij[1]
			Li, Lj := L[i], L[j]
			for d := 0; d < 3; d++ {
				gi, gj := tetBaryGrad[i][d], tetBaryGrad[j][d]
				set(d, 4+2*e, 4.5*(Lj*(6*Li-1)*gi+Li*(3*Li-1)*gj))
				set(d, 4+2*e+1, 4.5*(Lj*(3*Lj-1)*gi+Li*(6*Lj-1)*gj))
			}
		}
		for f, ijk := range tetFaces {
			i, j, k := ijk[0], ijk[1], ijk[2]
			for d := 0; d < 3; d++ {
				set(d, 16+f, 27*(L[j]*L[k]*tetBaryGrad[i][d]+
					L[i]*L[k]*tetBaryGrad[j][d]+
					L[i]*L[j]*tetBaryGrad[k][d]))
			}
		}
	case Hex8:
		gradTensorLinear(s, ref, g)
	case Hex20:
		evalHex20(ref, nil, g)
	case Hex27:
		gradTensorQuadratic(s, ref, g)
	default:
		panic(fmt.Errorf("basis gradients not implemented for shape %v", s))
	}
	grad = utils.NewMatrix(r, n, g)
	return
}

func checkRefDim(s Shape, ref []float64) {
	if len(ref) != s.Dim() {
		panic(fmt.Errorf("reference point dimension %d does not match shape %v (dim %d)",
			len(ref), s, s.Dim()))
	}
}

// Barycentric coordinates of the reference triangle and their constant
// gradients with respect to (x,y)
var (
	triEdges    = [3][2]int{{0, 1}, {1, 2}, {2, 0}}
	triBaryGrad = [3][2]float64{{-0.5, -0.5}, {0.5, 0}, {0, 0.5}}
)

func triBary(ref []float64) (L [3]float64) {
	x, y := ref[0], ref[1]
	L[0] = -0.5 * (x + y)
	L[1] = 0.5 * (1 + x)
	L[2] = 0.5 * (1 + y)
	return
}

var (
	tetEdges    = [6][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}}
	tetFaces    = [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	tetBaryGrad = [4][3]float64{
		{-0.5, -0.5, -0.5}, {0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5},
	}
)

func tetBary(ref []float64) (L [4]float64) {
	x, y, z := ref[0], ref[1], ref[2]
	L[0] = -0.5 * (1 + x + y + z)
	L[1] = 0.5 * (1 + x)
	L[2] = 0.5 * (1 + y)
	L[3] = 0.5 * (1 + z)
	return
}

// 1D Lagrange factors on [-1,1]. lag2 is the linear hat pair keyed by the
// node coordinate c in {-1,1}, lag3 the quadratic triple keyed by c in
// {-1,0,1}.
func lag2(t, c float64) float64  { return 0.5 * (1 + c*t) }
func dLag2(_, c float64) float64 { return 0.5 * c }

func lag3(t, c float64) float64 {
	switch {
	case c < 0:
		return 0.5 * t * (t - 1)
	case c > 0:
		return 0.5 * t * (t + 1)
	default:
		return 1 - t*t
	}
}

func dLag3(t, c float64) float64 {
	switch {
	case c < 0:
		return t - 0.5
	case c > 0:
		return t + 0.5
	default:
		return -2 * t
	}
}

func evalTensorLinear(s Shape, ref []float64, v []float64) {
	tensorEval(s, ref, v, nil, lag2, dLag2)
}

func gradTensorLinear(s Shape, ref []float64, g []float64) {
	tensorEval(s, ref, nil, g, lag2, dLag2)
}

func evalTensorQuadratic(s Shape, ref []float64, v []float64) {
	tensorEval(s, ref, v, nil, lag3, dLag3)
}

func gradTensorQuadratic(s Shape, ref []float64, g []float64) {
	tensorEval(s, ref, nil, g, lag3, dLag3)
}

// tensorEval evaluates a tensor product basis and/or its gradients from a 1D
// factor and its derivative, driven by the shape's node table
func tensorEval(s Shape, ref []float64, v, g []float64,
	f, df func(t, c float64) float64) {
	var (
		nodes = refNodeTable(s)
		n, r  = s.NumNodes(), s.Dim()
	)
	for j, node := range nodes {
		if v != nil {
			val := 1.
			for d := 0; d < r; d++ {
				val *= f(ref[d], node[d])
			}
			v[j] = val
		}
		if g != nil {
			for d := 0; d < r; d++ {
				val := 1.
				for dd := 0; dd < r; dd++ {
					if dd == d {
						val *= df(ref[dd], node[dd])
					} else {
						val *= f(ref[dd], node[dd])
					}
				}
				g[d*n+j] = val
			}
		}
	}
}

// evalHex20 evaluates the 20 node serendipity hexahedron. Corner functions
// carry the (xi.x + eta.y + zeta.z - 2) factor that removes the interior
// modes, edge functions are the standard (1-t^2) bubbles.
func evalHex20(ref []float64, v, g []float64) {
	var (
		nodes   = refNodeTable(Hex20)
		x, y, z = ref[0], ref[1], ref[2]
		n       = 20
	)
	for j, node := range nodes {
		cx, cy, cz := node[0], node[1], node[2]
		if j < 8 {
			// Corner node
			px, py, pz := 1+cx*x, 1+cy*y, 1+cz*z
			q := cx*x + cy*y + cz*z - 2
			if v != nil {
				v[j] = 0.125 * px * py * pz * q
			}
			if g != nil {
				g[0*n+j] = 0.125 * cx * py * pz * (2*cx*x + cy*y + cz*z - 1)
				g[1*n+j] = 0.125 * cy * px * pz * (cx*x + 2*cy*y + cz*z - 1)
				g[2*n+j] = 0.125 * cz * px * py * (cx*x + cy*y + 2*cz*z - 1)
			}
			continue
		}
		// Edge node, exactly one zero coordinate
		switch {
		case cx == 0:
			py, pz := 1+cy*y, 1+cz*z
			if v != nil {
				v[j] = 0.25 * (1 - x*x) * py * pz
			}
			if g != nil {
				g[0*n+j] = -0.5 * x * py * pz
				g[1*n+j] = 0.25 * cy * (1 - x*x) * pz
				g[2*n+j] = 0.25 * cz * (1 - x*x) * py
			}
		case cy == 0:
			px, pz := 1+cx*x, 1+cz*z
			if v != nil {
				v[j] = 0.25 * (1 - y*y) * px * pz
			}
			if g != nil {
				g[0*n+j] = 0.25 * cx * (1 - y*y) * pz
				g[1*n+j] = -0.5 * y * px * pz
				g[2*n+j] = 0.25 * cz * (1 - y*y) * px
			}
		default:
			px, py := 1+cx*x, 1+cy*y
			if v != nil {
				v[j] = 0.25 * (1 - z*z) * px * py
			}
			if g != nil {
				g[0*n+j] = 0.25 * cx * (1 - z*z) * py
				g[1*n+j] = 0.25 * cy * (1 - z*z) * px
				g[2*n+j] = -0.5 * z * px * py
			}
		}
	}
}
