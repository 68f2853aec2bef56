// Package quadrature provides fixed point quadrature rules on the reference
// domains of the supported element shapes. A rule of strength s integrates
// every polynomial of total degree <= s exactly over the reference domain.
package quadrature

import (
	"errors"
	"fmt"

	"github.com/fealab/fea/element"
	"github.com/fealab/fea/utils"
)

// ErrStrengthNotAvailable is returned when no rule of the requested strength
// exists for the shape
var ErrStrengthNotAvailable = errors.New("no quadrature rule of the requested strength is available")

// Rule holds quadrature points in reference coordinates and their weights.
// Weights sum to the measure of the reference domain.
type Rule struct {
	Weights []float64
	Points  utils.Matrix // np x r, one reference point per row
}

// NumPoints returns the point count of the rule
func (q Rule) NumPoints() int { return len(q.Weights) }

// Point returns quadrature point i as a reference coordinate slice
func (q Rule) Point(i int) []float64 {
	var (
		_, r = q.Points.Dims()
	)
	return q.Points.DataP[i*r : (i+1)*r]
}

// maxGaussOrder bounds the tabulated 1D Gauss rules, giving tensor product
// strength up to 2*maxGaussOrder-1 = 11
const maxGaussOrder = 6

// ForShape returns a quadrature rule of at least the requested polynomial
// strength for the shape's reference domain, or ErrStrengthNotAvailable when
// the strength exceeds the tabulated rules
func ForShape(s element.Shape, strength int) (q Rule, err error) {
	if strength < 0 {
		err = fmt.Errorf("negative quadrature strength %d", strength)
		return
	}
	switch s {
	case element.Line2:
		return gaussTensor(1, strength)
	case element.Quad4, element.Quad9:
		return gaussTensor(2, strength)
	case element.Hex8, element.Hex20, element.Hex27:
		return gaussTensor(3, strength)
	case element.Tri3, element.Tri6:
		return triangleRule(strength)
	case element.Tet4, element.Tet10, element.Tet20:
		return tetrahedronRule(strength)
	}
	err = fmt.Errorf("no quadrature rules for shape %v", s)
	return
}

// gauss1D returns the n point Gauss Legendre nodes and weights on [-1,1]
func gauss1D(n int) (x, w []float64) {
	switch n {
	case 1:
		x = []float64{0}
		w = []float64{2}
	case 2:
		a := 0.5773502691896257645091488
		x = []float64{-a, a}
		w = []float64{1, 1}
	case 3:
		a := 0.7745966692414833770358531
		x = []float64{-a, 0, a}
		w = []float64{5. / 9., 8. / 9., 5. / 9.}
	case 4:
		a := 0.3399810435848562648026658
		b := 0.8611363115940525752239465
		wa := 0.6521451548625461426269361
		wb := 0.3478548451374538573730639
		x = []float64{-b, -a, a, b}
		w = []float64{wb, wa, wa, wb}
	case 5:
		a := 0.5384693101056830910363144
		b := 0.9061798459386639927976269
		w0 := 0.5688888888888888888888889
		wa := 0.4786286704993664680412915
		wb := 0.2369268850561890875142640
		x = []float64{-b, -a, 0, a, b}
		w = []float64{wb, wa, w0, wa, wb}
	case 6:
		a := 0.2386191860831969086305017
		b := 0.6612093864662645136613996
		c := 0.9324695142031520278123016
		wa := 0.4679139345726910473898703
		wb := 0.3607615730481386075698335
		wc := 0.1713244923791703450402961
		x = []float64{-c, -b, -a, a, b, c}
		w = []float64{wc, wb, wa, wa, wb, wc}
	default:
		panic(fmt.Errorf("no tabulated Gauss rule with %d points", n))
	}
	return
}

// gaussTensor builds the tensor product Gauss rule over [-1,1]^dim with per
// axis order ceil((strength+1)/2)
func gaussTensor(dim, strength int) (q Rule, err error) {
	n := (strength + 2) / 2
	if n < 1 {
		n = 1
	}
	if n > maxGaussOrder {
		err = ErrStrengthNotAvailable
		return
	}
	var (
		x1, w1 = gauss1D(n)
		np     = 1
	)
	for d := 0; d < dim; d++ {
		np *= n
	}
	var (
		pts = make([]float64, 0, np*dim)
		wts = make([]float64, 0, np)
		idx = make([]int, dim)
	)
	for k := 0; k < np; k++ {
		w := 1.
		for d := 0; d < dim; d++ {
			pts = append(pts, x1[idx[d]])
			w *= w1[idx[d]]
		}
		wts = append(wts, w)
		// Odometer increment
		for d := dim - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < n {
				break
			}
			idx[d] = 0
		}
	}
	q = Rule{Weights: wts, Points: utils.NewMatrix(np, dim, pts)}
	return
}

// baryTri converts barycentric weights on the reference triangle with
// vertices (-1,-1),(1,-1),(-1,1) into reference coordinates
func baryTri(l1, l2 float64) (x, y float64) {
	return 2*l1 - 1, 2*l2 - 1
}

// triangleRule returns a symmetric rule on the reference triangle, whose
// area is 2. Rules are tabulated up to strength 5.
func triangleRule(strength int) (q Rule, err error) {
	type bp struct {
		l0, l1, l2, w float64
	}
	var sets []bp
	switch {
	case strength <= 1:
		sets = []bp{{1. / 3., 1. / 3., 1. / 3., 2.}}
	case strength == 2:
		a, b := 2./3., 1./6.
		w := 2. / 3.
		sets = []bp{
			{a, b, b, w}, {b, a, b, w}, {b, b, a, w},
		}
	case strength == 3:
		a, b := 0.6, 0.2
		w := 25. / 24.
		sets = []bp{
			{1. / 3., 1. / 3., 1. / 3., -9. / 8.},
			{a, b, b, w}, {b, a, b, w}, {b, b, a, w},
		}
	case strength <= 5:
		var (
			a1, b1 = 0.059715871789770, 0.470142064105115
			w1     = 0.264788305577012
			a2, b2 = 0.797426985353087, 0.101286507323456
			w2     = 0.251878361089654
		)
		sets = []bp{
			{1. / 3., 1. / 3., 1. / 3., 0.45},
			{a1, b1, b1, w1}, {b1, a1, b1, w1}, {b1, b1, a1, w1},
			{a2, b2, b2, w2}, {b2, a2, b2, w2}, {b2, b2, a2, w2},
		}
	default:
		err = ErrStrengthNotAvailable
		return
	}
	var (
		np  = len(sets)
		pts = make([]float64, 0, 2*np)
		wts = make([]float64, 0, np)
	)
	for _, s := range sets {
		x, y := baryTri(s.l1, s.l2)
		pts = append(pts, x, y)
		wts = append(wts, s.w)
	}
	q = Rule{Weights: wts, Points: utils.NewMatrix(np, 2, pts)}
	return
}

// baryTet converts barycentric weights on the reference tetrahedron with
// vertices (-1,-1,-1),(1,-1,-1),(-1,1,-1),(-1,-1,1) into reference
// coordinates
func baryTet(l1, l2, l3 float64) (x, y, z float64) {
	return 2*l1 - 1, 2*l2 - 1, 2*l3 - 1
}

// tetrahedronRule returns a symmetric rule on the reference tetrahedron,
// whose volume is 4/3. Rules are tabulated up to strength 3.
func tetrahedronRule(strength int) (q Rule, err error) {
	type bp struct {
		l [4]float64
		w float64
	}
	var sets []bp
	quarter := 0.25
	switch {
	case strength <= 1:
		sets = []bp{{[4]float64{quarter, quarter, quarter, quarter}, 4. / 3.}}
	case strength == 2:
		var (
			a = 0.585410196624968
			b = 0.138196601125011
			w = 1. / 3.
		)
		sets = []bp{
			{[4]float64{a, b, b, b}, w},
			{[4]float64{b, a, b, b}, w},
			{[4]float64{b, b, a, b}, w},
			{[4]float64{b, b, b, a}, w},
		}
	case strength == 3:
		var (
			a, b = 0.5, 1. / 6.
			w    = 3. / 5.
		)
		sets = []bp{
			{[4]float64{quarter, quarter, quarter, quarter}, -16. / 15.},
			{[4]float64{a, b, b, b}, w},
			{[4]float64{b, a, b, b}, w},
			{[4]float64{b, b, a, b}, w},
			{[4]float64{b, b, b, a}, w},
		}
	default:
		err = ErrStrengthNotAvailable
		return
	}
	var (
		np  = len(sets)
		pts = make([]float64, 0, 3*np)
		wts = make([]float64, 0, np)
	)
	for _, s := range sets {
		x, y, z := baryTet(s.l[1], s.l[2], s.l[3])
		pts = append(pts, x, y, z)
		wts = append(wts, s.w)
	}
	q = Rule{Weights: wts, Points: utils.NewMatrix(np, 3, pts)}
	return
}

// MaxStrength returns the largest strength ForShape can satisfy for the
// shape
func MaxStrength(s element.Shape) int {
	switch s {
	case element.Line2, element.Quad4, element.Quad9,
		element.Hex8, element.Hex20, element.Hex27:
		return 2*maxGaussOrder - 1
	case element.Tri3, element.Tri6:
		return 5
	case element.Tet4, element.Tet10, element.Tet20:
		return 3
	}
	return -1
}
