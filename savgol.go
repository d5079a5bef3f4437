package luxpwm

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// NewSavitzkyGolay returns a Savitzky-Golay smoothing filter fitting a
// polynomial of the given order over window samples. An even window is
// widened by one. The kernel is computed once here; if the normal equations
// cannot be inverted the filter falls back to a uniform average of the same
// width.
func NewSavitzkyGolay(window, order int) (*Filter, error) {
	if window < 1 {
		return nil, fmt.Errorf("luxpwm: could not create Savitzky-Golay filter of %d: %w", window, ErrInvalidWindow)
	}
	if window%2 == 0 {
		window++
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("luxpwm: could not create Savitzky-Golay filter of order %d over %d: %w", order, window, ErrInvalidOrder)
	}

	coeffs, ok := savgolCoefficients(window, order, pivotTolerance)
	if !ok {
		log.WithFields(log.Fields{
			"window": window,
			"order":  order,
		}).Debug("savitzky-golay: singular normal matrix, using uniform kernel")
	}

	return &Filter{
		kind:    SavitzkyGolay,
		window:  make([]float64, window),
		coeffs:  coeffs,
		ordered: make([]float64, window),
	}, nil
}

// Coefficients returns a copy of the Savitzky-Golay kernel, oldest sample
// first. It returns nil for other filters.
func (f *Filter) Coefficients() []float64 {
	if f.kind != SavitzkyGolay {
		return nil
	}
	c := make([]float64, len(f.coeffs))
	copy(c, f.coeffs)
	return c
}

// savgolCoefficients returns the smoothing kernel of a least-squares fit of
// the given order over window symmetric positions, i.e. the first row of
// (AᵗA)⁻¹Aᵗ. It returns a uniform kernel and false when AᵗA is singular
// under tol.
func savgolCoefficients(window, order int, tol float64) ([]float64, bool) {
	half := (window - 1) / 2
	cols := order + 1

	a := mat.NewDense(window, cols, nil)
	for r := 0; r < window; r++ {
		j := float64(r - half)
		val := 1.0
		for p := 0; p < cols; p++ {
			a.Set(r, p, val)
			val *= j
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	inv, ok := gaussJordanInverse(&ata, tol)
	if !ok {
		return uniformKernel(window), false
	}

	var b mat.Dense
	b.Mul(inv, a.T())

	return mat.Row(nil, 0, &b), true
}

func uniformKernel(n int) []float64 {
	k := make([]float64, n)
	for i := range k {
		k[i] = 1 / float64(n)
	}
	return k
}

// gaussJordanInverse inverts the square matrix m with partial pivoting. It
// returns false when the largest available pivot is below tol.
func gaussJordanInverse(m mat.Matrix, tol float64) (*mat.Dense, bool) {
	n, cols := m.Dims()
	if n != cols {
		return nil, false
	}

	aug := mat.NewDense(n, 2*n, nil)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			aug.Set(r, c, m.At(r, c))
		}
		aug.Set(r, n+r, 1)
	}

	for col := 0; col < n; col++ {
		pivot := col
		maxval := math.Abs(aug.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug.At(r, col)); v > maxval {
				maxval = v
				pivot = r
			}
		}
		if maxval < tol {
			return nil, false
		}

		if pivot != col {
			pr, cr := aug.RawRowView(pivot), aug.RawRowView(col)
			for i := range cr {
				pr[i], cr[i] = cr[i], pr[i]
			}
		}

		row := aug.RawRowView(col)
		pv := row[col]
		for i := range row {
			row[i] /= pv
		}

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			other := aug.RawRowView(r)
			factor := other[col]
			if math.Abs(factor) < 1e-15 {
				continue
			}
			for i := range other {
				other[i] -= factor * row[i]
			}
		}
	}

	inv := mat.NewDense(n, n, nil)
	inv.Copy(aug.Slice(0, n, n, 2*n))

	return inv, true
}
