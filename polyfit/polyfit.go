package polyfit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrDegenerate = errors.New("degenerate polynomial fit")

//Polynomial holds the coefficients, lowest degree first: p[0] + p[1]*x + p[2]*x^2 ...
type Polynomial []float64

func (p Polynomial) Degree() int {
	return len(p) - 1
}

//Eval evaluates the polynomial at x using Horner's method.
func (p Polynomial) Eval(x float64) float64 {
	result := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		result = result*x + p[i]
	}
	return result
}

func (p Polynomial) EvalAll(xs []float64) []float64 {
	result := make([]float64, len(xs))
	for i, x := range xs {
		result[i] = p.Eval(x)
	}
	return result
}

//Distinct counts the distinct values of x.
func Distinct(x []float64) int {
	seen := make(map[float64]bool, len(x))
	for _, v := range x {
		seen[v] = true
	}
	return len(seen)
}

//Fit finds the least squares polynomial of the given degree through the points (x[i], y[i]).
// At least degree+1 distinct x values are required.
func Fit(x, y []float64, degree int) (Polynomial, error) {
	if len(x) != len(y) {
		panic(fmt.Sprintf("x and y must be the same length but found %v and %v", len(x), len(y)))
	}
	if degree < 0 {
		return nil, fmt.Errorf("%w: degree must be >=0 but found %v", ErrDegenerate, degree)
	}
	if d := Distinct(x); d < degree+1 {
		return nil, fmt.Errorf("%w: degree %v requires %v distinct points but found %v", ErrDegenerate, degree, degree+1, d)
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("%w: point %v is not finite (%v, %v)", ErrDegenerate, i, x[i], y[i])
		}
	}

	rows, cols := len(x), degree+1

	// Vandermonde matrix, every column scaled to unit norm to keep
	// the high powers of small x from dominating the conditioning
	A := mat.NewDense(rows, cols, nil)
	for i, v := range x {
		power := 1.0
		for j := 0; j < cols; j++ {
			A.Set(i, j, power)
			power *= v
		}
	}
	scale := make([]float64, cols)
	for j := 0; j < cols; j++ {
		scale[j] = mat.Norm(A.ColView(j), 2)
		if scale[j] == 0 {
			scale[j] = 1
		}
		for i := 0; i < rows; i++ {
			A.Set(i, j, A.At(i, j)/scale[j])
		}
	}

	b := mat.NewVecDense(rows, append([]float64(nil), y...))

	var coefficients mat.VecDense
	if err := coefficients.SolveVec(A, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	result := make(Polynomial, cols)
	for j := range result {
		result[j] = coefficients.AtVec(j) / scale[j]
	}
	return result, nil
}
