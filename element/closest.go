package element

import (
	"fmt"
	"math"

	"github.com/fealab/fea/utils"
	"gonum.org/v1/gonum/mat"
)

// ClosestPointKind distinguishes interior projections from boundary ones
type ClosestPointKind int

const (
	// InElement means the point lies inside the element, RefCoords are the
	// exact (unclamped) preimage
	InElement ClosestPointKind = iota
	// OnBoundary means the point lies outside, RefCoords locate the nearest
	// point on the element boundary
	OnBoundary
)

func (k ClosestPointKind) String() string {
	if k == InElement {
		return "InElement"
	}
	return "OnBoundary"
}

type ClosestPointResult struct {
	Kind      ClosestPointKind
	RefCoords []float64
}

const (
	closestMaxIter = 100
	// Singular values below svdTruncation relative to the largest are
	// treated as zero, which keeps degenerate elements from blowing up the
	// Gauss Newton step
	svdTruncation = 1.e-12
)

// ClosestPoint finds the reference coordinates of the point on the element
// closest to p. The interior minimum is located by Gauss Newton iteration on
// the squared distance starting from the reference center. When the
// unconstrained minimum falls outside the reference domain the search
// recurses over the boundary facets (faces, then edges, then vertices), each
// an affine restriction of the reference domain, and returns the best
// boundary point. Ties between facets resolve to the lowest facet index.
//
// Degenerate elements (collapsed to a point or a line) are handled by the
// truncated pseudo inverse: the iteration simply stops moving in collapsed
// directions.
func (e Element) ClosestPoint(p []float64) ClosestPointResult {
	if len(p) != e.GeomDim {
		panic(fmt.Errorf("point dimension %d does not match element geometric dimension %d",
			len(p), e.GeomDim))
	}
	var (
		r  = e.Shape.Dim()
		id = identityEmbed(r)
	)
	ref, _, inside := e.closestInDomain(p, e.Shape, id)
	if inside {
		return ClosestPointResult{Kind: InElement, RefCoords: ref}
	}
	bestRef, bestDist2 := []float64(nil), math.Inf(1)
	for _, f := range refFacets(e.Shape) {
		fRef, fDist2 := e.closestOnFacet(p, f, id)
		if fDist2 < bestDist2 {
			bestRef, bestDist2 = fRef, fDist2
		}
	}
	return ClosestPointResult{Kind: OnBoundary, RefCoords: bestRef}
}

// affineEmbed maps facet parameters eta (dim q) into element reference
// coordinates, xi = origin + sum_k eta_k basis_k
type affineEmbed struct {
	origin []float64
	basis  [][]float64 // q columns of length r
}

func identityEmbed(r int) affineEmbed {
	em := affineEmbed{origin: make([]float64, r), basis: make([][]float64, r)}
	for k := 0; k < r; k++ {
		col := make([]float64, r)
		col[k] = 1
		em.basis[k] = col
	}
	return em
}

func (em affineEmbed) dim() int { return len(em.basis) }

func (em affineEmbed) apply(eta []float64) (xi []float64) {
	xi = make([]float64, len(em.origin))
	copy(xi, em.origin)
	for k, col := range em.basis {
		for i := range xi {
			xi[i] += eta[k] * col[i]
		}
	}
	return
}

// compose restricts em by a further embedding inner, so that the result maps
// inner's parameters directly into element reference coordinates
func (em affineEmbed) compose(inner affineEmbed) affineEmbed {
	out := affineEmbed{
		origin: em.apply(inner.origin),
		basis:  make([][]float64, inner.dim()),
	}
	for k, icol := range inner.basis {
		col := make([]float64, len(em.origin))
		for kk, ecol := range em.basis {
			for i := range col {
				col[i] += icol[kk] * ecol[i]
			}
		}
		out.basis[k] = col
	}
	return out
}

// closestInDomain runs the Gauss Newton iteration for the restriction of the
// element map to embed, over the reference domain of shape domain. It
// reports the element reference coordinates of the minimizer, its squared
// distance to p, and whether the unconstrained minimizer stayed inside the
// domain.
func (e Element) closestInDomain(p []float64, domain Shape, embed affineEmbed) (
	ref []float64, dist2 float64, inside bool) {
	var (
		q   = embed.dim()
		d   = e.GeomDim
		eta = make([]float64, q)
	)
	copy(eta, domain.ReferenceCenter())
	for iter := 0; iter < closestMaxIter; iter++ {
		xi := embed.apply(eta)
		x := e.MapReferenceCoords(xi)
		res := make([]float64, d)
		for i := 0; i < d; i++ {
			res[i] = p[i] - x[i]
		}
		// Jacobian of the restricted map, d x q
		J := e.ReferenceJacobian(xi)
		Jr := utils.NewMatrix(d, q)
		for k, col := range embed.basis {
			for i := 0; i < d; i++ {
				var val float64
				for ii := 0; ii < len(col); ii++ {
					val += J.At(i, ii) * col[ii]
				}
				Jr.Set(i, k, val)
			}
		}
		step := pinvSolve(Jr, res)
		for k := 0; k < q; k++ {
			eta[k] += step.DataP[k]
		}
		if step.Norm() < 100*utils.NODETOL {
			break
		}
	}
	ref = embed.apply(eta)
	dist2 = e.distanceSquared(ref, p)
	inside = domain.InReferenceDomain(eta, utils.NODETOL)
	return
}

// closestOnFacet minimizes over one boundary facet of the current domain,
// recursing into the facet's own boundary when the facet minimum escapes it
func (e Element) closestOnFacet(p []float64, f refFacet, outer affineEmbed) (
	ref []float64, dist2 float64) {
	embed := outer.compose(f.embed)
	if f.shape == Unknown {
		// Vertex facet, nothing to iterate
		ref = embed.origin
		dist2 = e.distanceSquared(ref, p)
		return
	}
	ref, dist2, inside := e.closestInDomain(p, f.shape, embed)
	if inside {
		return
	}
	dist2 = math.Inf(1)
	for _, sub := range refFacets(f.shape) {
		sRef, sDist2 := e.closestOnFacet(p, sub, embed)
		if sDist2 < dist2 {
			ref, dist2 = sRef, sDist2
		}
	}
	return
}

func (e Element) distanceSquared(ref, p []float64) (dist2 float64) {
	x := e.MapReferenceCoords(ref)
	for i := range x {
		dx := p[i] - x[i]
		dist2 += dx * dx
	}
	return
}

// pinvSolve computes the least norm least squares solution of J step = res
// through a truncated SVD pseudo inverse
func pinvSolve(J utils.Matrix, res []float64) (step utils.Vector) {
	var (
		d, q = J.Dims()
		svd  mat.SVD
	)
	step = utils.NewVector(q)
	if ok := svd.Factorize(J.M, mat.SVDThin); !ok {
		return
	}
	var (
		U, V   mat.Dense
		values = svd.Values(nil)
	)
	svd.UTo(&U)
	svd.VTo(&V)
	var maxSV float64
	for _, sv := range values {
		if sv > maxSV {
			maxSV = sv
		}
	}
	if maxSV == 0 {
		return
	}
	for k, sv := range values {
		if sv < maxSV*svdTruncation {
			continue
		}
		// step += v_k (u_k . res) / sv
		var proj float64
		for i := 0; i < d; i++ {
			proj += U.At(i, k) * res[i]
		}
		proj /= sv
		for j := 0; j < q; j++ {
			step.DataP[j] += V.At(j, k) * proj
		}
	}
	return
}

// refFacet is one boundary facet of a reference domain: the shape of its own
// parameter domain and the affine embedding into the parent domain. Vertex
// facets carry shape Unknown and an empty basis.
type refFacet struct {
	shape Shape
	embed affineEmbed
}

// refFacets enumerates the boundary facets of the shape's reference domain
// in a fixed order. Quadratic and cubic shapes share the facets of their
// linear counterparts since the reference domain is the same.
func refFacets(s Shape) []refFacet {
	switch s {
	case Line2:
		return vertexFacets([][]float64{{-1}, {1}})
	case Tri3, Tri6:
		return edgeFacets([][]float64{{-1, -1}, {1, -1}, {-1, 1}},
			[][2]int{{0, 1}, {1, 2}, {2, 0}})
	case Quad4, Quad9:
		return edgeFacets([][]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
			[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}})
	case Tet4, Tet10, Tet20:
		verts := [][]float64{{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}
		facets := make([]refFacet, 0, 4)
		for _, f := range tetFaces {
			facets = append(facets, triFaceFacet(
				verts[f[0]], verts[f[1]], verts[f[2]]))
		}
		return facets
	case Hex8, Hex20, Hex27:
		verts := [][]float64{
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
		}
		faces := [6][4]int{
			{0, 1, 2, 3}, {4, 5, 6, 7},
			{0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
		}
		facets := make([]refFacet, 0, 6)
		for _, f := range faces {
			facets = append(facets, quadFaceFacet(
				verts[f[0]], verts[f[1]], verts[f[2]], verts[f[3]]))
		}
		return facets
	}
	return nil
}

func vertexFacets(verts [][]float64) []refFacet {
	facets := make([]refFacet, len(verts))
	for i, v := range verts {
		facets[i] = refFacet{shape: Unknown, embed: affineEmbed{origin: v}}
	}
	return facets
}

// edgeFacets parameterizes each edge a->b as xi = (a+b)/2 + eta (b-a)/2 with
// eta on the Line2 reference segment
func edgeFacets(verts [][]float64, edges [][2]int) []refFacet {
	var (
		r      = len(verts[0])
		facets = make([]refFacet, len(edges))
	)
	for ei, ab := range edges {
		a, b := verts[ab[0]], verts[ab[1]]
		origin, tangent := make([]float64, r), make([]float64, r)
		for i := 0; i < r; i++ {
			origin[i] = 0.5 * (a[i] + b[i])
			tangent[i] = 0.5 * (b[i] - a[i])
		}
		facets[ei] = refFacet{
			shape: Line2,
			embed: affineEmbed{origin: origin, basis: [][]float64{tangent}},
		}
	}
	return facets
}

// triFaceFacet embeds the reference triangle onto the face with corners
// a, b, c so that its reference vertices land on a, b, c in order
func triFaceFacet(a, b, c []float64) refFacet {
	r := len(a)
	origin, u, v := make([]float64, r), make([]float64, r), make([]float64, r)
	for i := 0; i < r; i++ {
		u[i] = 0.5 * (b[i] - a[i])
		v[i] = 0.5 * (c[i] - a[i])
		origin[i] = a[i] + u[i] + v[i]
	}
	return refFacet{shape: Tri3, embed: affineEmbed{origin: origin, basis: [][]float64{u, v}}}
}

// quadFaceFacet embeds the reference square onto the bilinear face with
// corners a, b, c, d in cyclic order. Hex faces are planar in reference
// space so the embedding is exact.
func quadFaceFacet(a, b, c, d []float64) refFacet {
	r := len(a)
	origin, u, v := make([]float64, r), make([]float64, r), make([]float64, r)
	for i := 0; i < r; i++ {
		origin[i] = 0.25 * (a[i] + b[i] + c[i] + d[i])
		u[i] = 0.25 * (b[i] + c[i] - a[i] - d[i])
		v[i] = 0.25 * (c[i] + d[i] - a[i] - b[i])
	}
	return refFacet{shape: Quad4, embed: affineEmbed{origin: origin, basis: [][]float64{u, v}}}
}
