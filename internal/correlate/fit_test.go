package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitAll_Linear(t *testing.T) {
	fits := NewEngine().fitAll([]float64{1, 2, 3}, []float64{2, 4, 6})

	lin := fits[Linear]
	require.NotNil(t, lin)
	assert.InDelta(t, 0, lin.Coefficients[0], 1e-9)
	assert.InDelta(t, 2, lin.Coefficients[1], 1e-9)
	assert.InDelta(t, 1, lin.RSquared, 1e-9)
	assert.Equal(t, "y = 2.00000x + 0.00000", lin.Equation)

	require.Len(t, lin.Curve, defaultCurveSamples)
	assert.InDelta(t, 1, lin.Curve[0].X, 1e-12)
	assert.InDelta(t, 3, lin.Curve[len(lin.Curve)-1].X, 1e-12)
	assert.InDelta(t, 6, lin.Curve[len(lin.Curve)-1].Y, 1e-9)

	assert.NotNil(t, fits[Quadratic])
	assert.NotNil(t, fits[Exponential])
}

func TestFitAll_ExponentialOmittedForNonPositive(t *testing.T) {
	fits := NewEngine().fitAll([]float64{1, 2, 3}, []float64{-2, 4, 6})

	assert.NotNil(t, fits[Linear])
	assert.NotNil(t, fits[Quadratic])
	assert.NotContains(t, fits, Exponential)
}

func TestFitAll_QuadraticNeedsThreePoints(t *testing.T) {
	fits := NewEngine().fitAll([]float64{1, 2}, []float64{3, 5})

	assert.NotNil(t, fits[Linear])
	assert.NotContains(t, fits, Quadratic)
}

func TestFitPolynomial_RecoversQuadratic(t *testing.T) {
	xs := []float64{-2, -1, 0, 1, 2, 3}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3*x*x - 2*x + 1
	}

	f, err := NewEngine().fitPolynomial(xs, ys, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1, f.Coefficients[0], 1e-8)
	assert.InDelta(t, -2, f.Coefficients[1], 1e-8)
	assert.InDelta(t, 3, f.Coefficients[2], 1e-8)
	assert.Equal(t, "y = 3.00000x² - 2.00000x + 1.00000", f.Equation)
}

func TestFitPolynomial_LargeOffsets(t *testing.T) {
	xs := []float64{2000, 2001, 2002, 2003, 2004}
	ys := []float64{10, 12, 14, 16, 18}

	f, err := NewEngine().fitPolynomial(xs, ys, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2, f.Coefficients[1], 1e-8)
	assert.InDelta(t, -3990, f.Coefficients[0], 1e-5)
	assert.Equal(t, "y = 2.00000x - 3990.00000", f.Equation)
}

func TestFitExponential(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{2, 2 * 1.5, 2 * 1.5 * 1.5, 2 * 1.5 * 1.5 * 1.5}

	f, err := NewEngine().fitExponential(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 2, f.Coefficients[0], 1e-9)
	assert.InDelta(t, 0.405465, f.Coefficients[1], 1e-6)
	assert.InDelta(t, 1, f.RSquared, 1e-9)
	assert.Equal(t, "y = 2.00000·e^(0.40547x)", f.Equation)
}

func TestWithCurveSamples(t *testing.T) {
	fits := NewEngine(WithCurveSamples(5)).fitAll([]float64{1, 2, 3}, []float64{1, 3, 2})
	assert.Len(t, fits[Linear].Curve, 5)

	fits = NewEngine(WithCurveSamples(1)).fitAll([]float64{1, 2, 3}, []float64{1, 3, 2})
	assert.Len(t, fits[Linear].Curve, defaultCurveSamples)
}

func TestPolyEquation(t *testing.T) {
	assert.Equal(t, "y = -1.50000x + 2.25000", polyEquation([]float64{2.25, -1.5}))
	assert.Equal(t, "y = 0.00000x - 0.50000", polyEquation([]float64{-0.5, -0.000001}))
}
