package utils

const (
	NODETOL = 1.e-12
)

type Index []int

func NewIndex(n int) Index {
	return make(Index, n)
}

// NewRange returns the inclusive index range [min, max]
func NewRange(min, max int) (I Index) {
	I = make(Index, max-min+1)
	for i := range I {
		I[i] = min + i
	}
	return
}

func (I Index) Copy() (R Index) {
	R = make(Index, len(I))
	copy(R, I)
	return
}

func (I Index) Max() (max int) {
	max = I[0]
	for _, val := range I {
		if val > max {
			max = val
		}
	}
	return
}
