package correlate

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Model names a regression family.
type Model string

// Supported models.
const (
	Linear      Model = "linear"
	Quadratic   Model = "quadratic"
	Exponential Model = "exponential"
)

// CurvePoint is one sample of a fitted curve.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fit is one regression model through the matched pairs. Coefficients are
// in ascending power order for polynomials and (a, b) of y = a·e^(bx) for
// the exponential model.
type Fit struct {
	Model        Model        `json:"model"`
	Coefficients []float64    `json:"coefficients"`
	RSquared     float64      `json:"r_squared"`
	Equation     string       `json:"equation"`
	Curve        []CurvePoint `json:"curve"`
}

// fitAll returns every model that could be solved.
func (e *Engine) fitAll(xs, ys []float64) map[Model]*Fit {
	out := make(map[Model]*Fit, 3)
	if f, err := e.fitPolynomial(xs, ys, 1); err == nil {
		out[Linear] = f
	}
	if len(xs) >= 3 {
		if f, err := e.fitPolynomial(xs, ys, 2); err == nil {
			out[Quadratic] = f
		}
	}
	if f, err := e.fitExponential(xs, ys); err == nil {
		out[Exponential] = f
	}
	return out
}

func (e *Engine) fitPolynomial(xs, ys []float64, degree int) (*Fit, error) {
	coef, err := polyfit(xs, ys, degree)
	if err != nil {
		return nil, err
	}
	predict := func(x float64) float64 { return polyval(coef, x) }

	model := Linear
	if degree == 2 {
		model = Quadratic
	}
	return e.finish(model, coef, xs, ys, predict, polyEquation(coef))
}

// fitExponential fits ln y linearly, so every y must be positive.
func (e *Engine) fitExponential(xs, ys []float64) (*Fit, error) {
	logs := make([]float64, len(ys))
	for i, y := range ys {
		if y <= 0 {
			return nil, eris.New("correlate: exponential fit needs positive y")
		}
		logs[i] = math.Log(y)
	}
	line, err := polyfit(xs, logs, 1)
	if err != nil {
		return nil, err
	}
	a, b := math.Exp(line[0]), line[1]
	predict := func(x float64) float64 { return a * math.Exp(b*x) }

	eq := fmt.Sprintf("y = %s·e^(%sx)", num(a), num(b))
	return e.finish(Exponential, []float64{a, b}, xs, ys, predict, eq)
}

func (e *Engine) finish(model Model, coef, xs, ys []float64, predict func(float64) float64, eq string) (*Fit, error) {
	for _, c := range coef {
		if !finite(c) {
			return nil, eris.Errorf("correlate: %s fit diverged", model)
		}
	}

	lo, _ := stats.Min(xs)
	hi, _ := stats.Max(xs)
	grid := make([]float64, e.curveSamples)
	floats.Span(grid, lo, hi)
	curve := make([]CurvePoint, 0, len(grid))
	for _, x := range grid {
		y := predict(x)
		if !finite(y) {
			return nil, eris.Errorf("correlate: %s curve is not finite", model)
		}
		curve = append(curve, CurvePoint{X: x, Y: y})
	}

	return &Fit{
		Model:        model,
		Coefficients: coef,
		RSquared:     rSquared(xs, ys, predict),
		Equation:     eq,
		Curve:        curve,
	}, nil
}

// polyfit solves the least squares polynomial of the given degree. x is
// centered and scaled before building the Vandermonde matrix, and the
// solution is expanded back to powers of x.
func polyfit(xs, ys []float64, degree int) ([]float64, error) {
	n := len(xs)
	if n <= degree {
		return nil, eris.Errorf("correlate: degree %d needs more than %d points", degree, n)
	}
	mean, _ := stats.Mean(xs)
	scale, _ := stats.StandardDeviationPopulation(xs)
	if scale == 0 || !finite(scale) {
		return nil, eris.New("correlate: x has no spread")
	}

	a := mat.NewDense(n, degree+1, nil)
	for i, x := range xs {
		t := (x - mean) / scale
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, mat.NewVecDense(n, append([]float64(nil), ys...))); err != nil {
		return nil, eris.Wrap(err, "correlate: least squares")
	}

	// c_j·((x-m)/s)^j = c_j/s^j · Σ_k C(j,k)·x^k·(-m)^(j-k)
	out := make([]float64, degree+1)
	for j := 0; j <= degree; j++ {
		cj := sol.AtVec(j) / math.Pow(scale, float64(j))
		for k := 0; k <= j; k++ {
			out[k] += cj * binomial(j, k) * math.Pow(-mean, float64(j-k))
		}
	}
	return out, nil
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}

func polyval(coef []float64, x float64) float64 {
	y := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		y = y*x + coef[i]
	}
	return y
}

func rSquared(xs, ys []float64, predict func(float64) float64) float64 {
	mean, _ := stats.Mean(ys)
	var ssRes, ssTot float64
	for i, x := range xs {
		d := ys[i] - predict(x)
		ssRes += d * d
		m := ys[i] - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// num formats a coefficient to five decimals without a negative zero.
func num(v float64) string {
	r, _ := stats.Round(v, 5)
	if r == 0 {
		r = 0
	}
	return fmt.Sprintf("%.5f", r)
}

// polyEquation renders coefficients as "y = 1.00000x² - 2.00000x + 3.00000".
func polyEquation(coef []float64) string {
	var b strings.Builder
	b.WriteString("y = ")
	for i := len(coef) - 1; i >= 0; i-- {
		s := num(coef[i])
		neg := strings.HasPrefix(s, "-")
		switch {
		case i == len(coef)-1 && neg:
			b.WriteString("-")
		case i == len(coef)-1:
		case neg:
			b.WriteString(" - ")
		default:
			b.WriteString(" + ")
		}
		b.WriteString(strings.TrimPrefix(s, "-"))
		switch i {
		case 0:
		case 1:
			b.WriteString("x")
		case 2:
			b.WriteString("x²")
		default:
			fmt.Fprintf(&b, "x^%d", i)
		}
	}
	return b.String()
}
