package quadrature

import (
	"testing"

	"github.com/fealab/fea/element"
	"github.com/stretchr/testify/assert"
)

func TestWeightsSumToReferenceMeasure(t *testing.T) {
	shapes := []element.Shape{
		element.Line2, element.Tri3, element.Quad4,
		element.Tet4, element.Hex8,
	}
	for _, s := range shapes {
		for strength := 0; strength <= MaxStrength(s); strength++ {
			q, err := ForShape(s, strength)
			assert.NoError(t, err, "%v strength %d", s, strength)
			var sum float64
			for _, w := range q.Weights {
				sum += w
			}
			assert.InDelta(t, s.ReferenceMeasure(), sum, 1.e-12,
				"%v strength %d", s, strength)
		}
	}
}

func TestStrengthNotAvailable(t *testing.T) {
	cases := []struct {
		shape    element.Shape
		strength int
	}{
		{element.Line2, 12},
		{element.Quad4, 12},
		{element.Hex27, 12},
		{element.Tri6, 6},
		{element.Tet10, 4},
	}
	for _, c := range cases {
		_, err := ForShape(c.shape, c.strength)
		assert.ErrorIs(t, err, ErrStrengthNotAvailable, "%v strength %d",
			c.shape, c.strength)
	}
}

func factorial(n int) float64 {
	f := 1.
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// integrate applies the rule to f over the reference domain
func integrate(q Rule, f func(ref []float64) float64) (sum float64) {
	for i := 0; i < q.NumPoints(); i++ {
		sum += q.Weights[i] * f(q.Point(i))
	}
	return
}

func TestTensorRuleExactness(t *testing.T) {
	// Exact integral of x^a over [-1,1] is 0 for odd a, 2/(a+1) for even a
	mono1D := func(a int) float64 {
		if a%2 == 1 {
			return 0
		}
		return 2. / float64(a+1)
	}
	for _, s := range []element.Shape{element.Line2, element.Quad9, element.Hex27} {
		dim := s.Dim()
		for strength := 0; strength <= MaxStrength(s); strength++ {
			q, err := ForShape(s, strength)
			assert.NoError(t, err)
			// All monomials of total degree <= strength
			powers := monomialPowers(dim, strength)
			for _, pw := range powers {
				exact := 1.
				for _, a := range pw {
					exact *= mono1D(a)
				}
				got := integrate(q, func(ref []float64) float64 {
					v := 1.
					for d, a := range pw {
						for k := 0; k < a; k++ {
							v *= ref[d]
						}
					}
					return v
				})
				assert.InDelta(t, exact, got, 1.e-12,
					"%v strength %d powers %v", s, strength, pw)
			}
		}
	}
}

func TestTriangleRuleExactness(t *testing.T) {
	// Exact integral of L0^a L1^b L2^c over a triangle of area A is
	// 2A a! b! c! / (a+b+c+2)!
	exactBary := func(a, b, c int) float64 {
		return 4. * factorial(a) * factorial(b) * factorial(c) /
			factorial(a+b+c+2)
	}
	bary := func(ref []float64) (L [3]float64) {
		L[0] = -0.5 * (ref[0] + ref[1])
		L[1] = 0.5 * (1 + ref[0])
		L[2] = 0.5 * (1 + ref[1])
		return
	}
	for strength := 0; strength <= 5; strength++ {
		q, err := ForShape(element.Tri3, strength)
		assert.NoError(t, err)
		for a := 0; a <= strength; a++ {
			for b := 0; a+b <= strength; b++ {
				c := strength - a - b
				got := integrate(q, func(ref []float64) float64 {
					L := bary(ref)
					v := 1.
					for k := 0; k < a; k++ {
						v *= L[0]
					}
					for k := 0; k < b; k++ {
						v *= L[1]
					}
					for k := 0; k < c; k++ {
						v *= L[2]
					}
					return v
				})
				assert.InDelta(t, exactBary(a, b, c), got, 1.e-12,
					"strength %d powers %d,%d,%d", strength, a, b, c)
			}
		}
	}
}

func TestTetrahedronRuleExactness(t *testing.T) {
	// Exact integral of L0^a L1^b L2^c L3^d over a tetrahedron of volume V
	// is 6V a! b! c! d! / (a+b+c+d+3)!
	exactBary := func(pw [4]int) float64 {
		num := 8.
		total := 3
		for _, a := range pw {
			num *= factorial(a)
			total += a
		}
		return num / factorial(total)
	}
	bary := func(ref []float64) (L [4]float64) {
		L[0] = -0.5 * (1 + ref[0] + ref[1] + ref[2])
		L[1] = 0.5 * (1 + ref[0])
		L[2] = 0.5 * (1 + ref[1])
		L[3] = 0.5 * (1 + ref[2])
		return
	}
	for strength := 0; strength <= 3; strength++ {
		q, err := ForShape(element.Tet4, strength)
		assert.NoError(t, err)
		for a := 0; a <= strength; a++ {
			for b := 0; a+b <= strength; b++ {
				for c := 0; a+b+c <= strength; c++ {
					pw := [4]int{a, b, c, strength - a - b - c}
					got := integrate(q, func(ref []float64) float64 {
						L := bary(ref)
						v := 1.
						for i, p := range pw {
							for k := 0; k < p; k++ {
								v *= L[i]
							}
						}
						return v
					})
					assert.InDelta(t, exactBary(pw), got, 1.e-12,
						"strength %d powers %v", strength, pw)
				}
			}
		}
	}
}

// monomialPowers enumerates all exponent tuples of total degree <= maxDeg
func monomialPowers(dim, maxDeg int) (out [][]int) {
	if dim == 0 {
		return [][]int{{}}
	}
	for a := 0; a <= maxDeg; a++ {
		for _, rest := range monomialPowers(dim-1, maxDeg-a) {
			pw := append([]int{a}, rest...)
			out = append(out, pw)
		}
	}
	return
}
