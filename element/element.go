package element

import (
	"fmt"
	"math"

	"github.com/fealab/fea/utils"
)

// Element is a single finite element embedded in physical space. Node
// coordinates live in a shared arena of interleaved physical coordinates,
// indexed by the element's node index map, so that many elements can share
// one vertex buffer without copying.
//
// GeomDim may exceed the reference dimension of the shape, e.g. a Tri3
// surface element embedded in 3D.
type Element struct {
	Shape   Shape
	GeomDim int
	arena   []float64   // interleaved node coordinates, GeomDim per node
	nodes   utils.Index // arena node numbers for this element
}

// NewElement builds an element over a shared coordinate arena. The arena
// holds GeomDim interleaved coordinates per node and nodes selects this
// element's corner/edge/face nodes in the shape's reference ordering.
func NewElement(s Shape, geomDim int, arena []float64, nodes utils.Index) (e Element) {
	if geomDim < s.Dim() {
		panic(fmt.Errorf("geometric dimension %d below reference dimension %d of shape %v",
			geomDim, s.Dim(), s))
	}
	if len(nodes) != s.NumNodes() {
		panic(fmt.Errorf("shape %v needs %d nodes, got %d", s, s.NumNodes(), len(nodes)))
	}
	for _, nn := range nodes {
		if (nn+1)*geomDim > len(arena) {
			panic(fmt.Errorf("node %d out of range for arena of %d nodes",
				nn, len(arena)/geomDim))
		}
	}
	e = Element{
		Shape:   s,
		GeomDim: geomDim,
		arena:   arena,
		nodes:   nodes,
	}
	return
}

// FromVertices builds a standalone element from an interleaved coordinate
// slice holding exactly the element's own nodes in reference order
func FromVertices(s Shape, geomDim int, verts []float64) Element {
	if len(verts) != geomDim*s.NumNodes() {
		panic(fmt.Errorf("shape %v in %dD needs %d coordinates, got %d",
			s, geomDim, geomDim*s.NumNodes(), len(verts)))
	}
	return NewElement(s, geomDim, verts, utils.NewRange(0, s.NumNodes()-1))
}

// Node returns the physical coordinates of local node i
func (e Element) Node(i int) []float64 {
	nn := e.nodes[i]
	return e.arena[nn*e.GeomDim : (nn+1)*e.GeomDim]
}

// NumNodes returns the node count of the element's shape
func (e Element) NumNodes() int { return e.Shape.NumNodes() }

// NodeIndex returns the element's arena node numbers
func (e Element) NodeIndex() utils.Index { return e.nodes }

// NodeCoordinates assembles the d x n matrix of node positions, one column
// per local node
func (e Element) NodeCoordinates() utils.Matrix {
	var (
		d, n = e.GeomDim, e.NumNodes()
		data = make([]float64, d*n)
	)
	for j := 0; j < n; j++ {
		x := e.Node(j)
		for i := 0; i < d; i++ {
			data[i*n+j] = x[i]
		}
	}
	return utils.NewMatrix(d, n, data)
}

// MapReferenceCoords maps a reference point through the isoparametric map
// x(xi) = sum_j N_j(xi) x_j into physical space
func (e Element) MapReferenceCoords(ref []float64) (x []float64) {
	var (
		phi = Basis(e.Shape, ref)
		d   = e.GeomDim
	)
	x = make([]float64, d)
	for j := 0; j < e.NumNodes(); j++ {
		xj := e.Node(j)
		p := phi.DataP[j]
		for i := 0; i < d; i++ {
			x[i] += p * xj[i]
		}
	}
	return
}

// ReferenceJacobian evaluates the d x r Jacobian of the isoparametric map,
// J = V G^T with V the d x n node coordinates and G the r x n reference
// basis gradients
func (e Element) ReferenceJacobian(ref []float64) utils.Matrix {
	var (
		G = BasisGradients(e.Shape, ref)
		V = e.NodeCoordinates()
	)
	return V.Mul(G.Transpose())
}

// Diameter returns the largest pairwise distance between element nodes, the
// natural length scale for tolerances on this element
func (e Element) Diameter() (h float64) {
	var (
		n, d = e.NumNodes(), e.GeomDim
	)
	for i := 0; i < n; i++ {
		xi := e.Node(i)
		for j := i + 1; j < n; j++ {
			xj := e.Node(j)
			var dist2 float64
			for k := 0; k < d; k++ {
				dx := xi[k] - xj[k]
				dist2 += dx * dx
			}
			if dist2 > h {
				h = dist2
			}
		}
	}
	h = math.Sqrt(h)
	return
}
