package ml

import (
	"fmt"
	"math"
)

// Default solver settings
const (
	DefaultC       = 1.0
	DefaultMaxIter = 100
	DefaultTol     = 1e-5
)

// LogisticRegression is an L2-regularised binary classifier. C is the
// inverse regularisation strength; the intercept is not penalised.
type LogisticRegression struct {
	C         float64   `json:"c"`
	MaxIter   int       `json:"max_iter"`
	Tol       float64   `json:"tol"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Iters     int       `json:"iterations"`
	Converged bool      `json:"converged"`
}

// NewLogisticRegression returns an unfitted classifier, applying defaults
// to non-positive settings.
func NewLogisticRegression(c float64, maxIter int, tol float64) *LogisticRegression {
	if c <= 0 {
		c = DefaultC
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	if tol <= 0 {
		tol = DefaultTol
	}
	return &LogisticRegression{C: c, MaxIter: maxIter, Tol: tol}
}

// Fit minimises mean log-loss plus ||w||^2 / (2·C·n) with damped Newton
// steps. Each step solves the regularised Hessian system by Cholesky and
// backtracks until the objective decreases, so the path is deterministic.
// Fit stops when every gradient component is below Tol; Converged reports
// whether that happened within MaxIter steps.
func (m *LogisticRegression) Fit(x [][]float64, y []int) error {
	n := len(x)
	if n == 0 {
		return ErrEmptyTrainingSet
	}
	if len(y) != n {
		return fmt.Errorf("got %d labels for %d rows", len(y), n)
	}
	d := len(x[0])

	var pos int
	for i, row := range x {
		if len(row) != d {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), d)
		}
		if y[i] == 1 {
			pos++
		}
	}
	if pos == 0 || pos == n {
		return ErrSingleClass
	}

	p := &logisticProblem{x: x, y: y, lambda: 1.0 / (m.C * float64(n))}

	// theta holds the weights followed by the intercept
	theta := make([]float64, d+1)
	trial := make([]float64, d+1)
	loss := p.objective(theta)

	m.Iters = m.MaxIter
	m.Converged = false
	for iter := 0; iter < m.MaxIter; iter++ {
		grad, hess := p.derivatives(theta)
		if maxAbs(grad) < m.Tol {
			m.Iters = iter
			m.Converged = true
			break
		}

		dir, err := solveNewton(hess, grad)
		if err != nil {
			return fmt.Errorf("newton step %d: %w", iter, err)
		}

		slope := dot(grad, dir)
		accepted := false
		for t := 1.0; t > 1e-12; t /= 2 {
			for k := range theta {
				trial[k] = theta[k] + t*dir[k]
			}
			next := p.objective(trial)
			// A full step whose change is lost in rounding is taken as is
			flat := t == 1 && next-loss <= 1e-15*math.Max(1, math.Abs(loss))
			if next <= loss+1e-4*t*slope || flat {
				copy(theta, trial)
				loss = next
				accepted = true
				break
			}
		}
		if !accepted {
			// No descent left at floating point precision
			grad, _ = p.derivatives(theta)
			m.Iters = iter + 1
			m.Converged = maxAbs(grad) < m.Tol
			break
		}
	}

	if !m.Converged && m.Iters == m.MaxIter {
		grad, _ := p.derivatives(theta)
		m.Converged = maxAbs(grad) < m.Tol
	}

	m.Weights = append([]float64(nil), theta[:d]...)
	m.Intercept = theta[d]
	return nil
}

// Gradient returns the objective gradient at the fitted parameters, weights
// first and intercept last.
func (m *LogisticRegression) Gradient(x [][]float64, y []int) []float64 {
	theta := append(append([]float64(nil), m.Weights...), m.Intercept)
	p := &logisticProblem{x: x, y: y, lambda: 1.0 / (m.C * float64(len(x)))}
	grad, _ := p.derivatives(theta)
	return grad
}

// Probability returns P(y = 1 | x)
func (m *LogisticRegression) Probability(x []float64) float64 {
	return sigmoid(dot(m.Weights, x) + m.Intercept)
}

func (m *LogisticRegression) validate(width int) error {
	if len(m.Weights) != width {
		return fmt.Errorf("classifier has %d weights, want %d", len(m.Weights), width)
	}
	for _, v := range m.Weights {
		if !finite(v) {
			return fmt.Errorf("classifier weights are not finite")
		}
	}
	if !finite(m.Intercept) {
		return fmt.Errorf("classifier intercept is not finite")
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

type logisticProblem struct {
	x      [][]float64
	y      []int
	lambda float64
}

func (p *logisticProblem) margin(theta []float64, row []float64) float64 {
	d := len(row)
	return dot(theta[:d], row) + theta[d]
}

func (p *logisticProblem) objective(theta []float64) float64 {
	d := len(theta) - 1
	var loss float64
	for i, row := range p.x {
		z := p.margin(theta, row)
		loss += softplus(z) - float64(p.y[i])*z
	}
	loss /= float64(len(p.x))
	var reg float64
	for _, w := range theta[:d] {
		reg += w * w
	}
	return loss + 0.5*p.lambda*reg
}

// derivatives returns the gradient and the Hessian of the objective
func (p *logisticProblem) derivatives(theta []float64) ([]float64, [][]float64) {
	d := len(theta) - 1
	dim := d + 1
	n := float64(len(p.x))

	grad := make([]float64, dim)
	hess := make([][]float64, dim)
	for k := range hess {
		hess[k] = make([]float64, dim)
	}

	for i, row := range p.x {
		prob := sigmoid(p.margin(theta, row))
		r := prob - float64(p.y[i])
		s := prob * (1 - prob)
		for a := 0; a < dim; a++ {
			va := 1.0
			if a < d {
				va = row[a]
			}
			grad[a] += r * va
			if s == 0 || va == 0 {
				continue
			}
			for b := 0; b <= a; b++ {
				vb := 1.0
				if b < d {
					vb = row[b]
				}
				hess[a][b] += s * va * vb
			}
		}
	}

	for a := 0; a < dim; a++ {
		grad[a] /= n
		for b := 0; b <= a; b++ {
			hess[a][b] /= n
			hess[b][a] = hess[a][b]
		}
		if a < d {
			grad[a] += p.lambda * theta[a]
			hess[a][a] += p.lambda
		}
	}
	return grad, hess
}

// solveNewton returns -H⁻¹g. A diagonal shift is added when saturated
// probabilities leave H numerically singular.
func solveNewton(hess [][]float64, grad []float64) ([]float64, error) {
	dim := len(grad)
	var trace float64
	for k := 0; k < dim; k++ {
		trace += hess[k][k]
	}
	scale := trace/float64(dim) + 1e-12

	for shift := 0.0; shift < scale*1e3; {
		l, ok := cholesky(hess, shift)
		if ok {
			dir := choleskySolve(l, grad)
			for k := range dir {
				dir[k] = -dir[k]
			}
			return dir, nil
		}
		if shift == 0 {
			shift = scale * 1e-10
		} else {
			shift *= 10
		}
	}
	return nil, fmt.Errorf("hessian is not positive definite")
}

func cholesky(a [][]float64, shift float64) ([][]float64, bool) {
	n := len(a)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			if i == j {
				sum += shift
			}
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 || !finite(sum) {
					return nil, false
				}
				l[i][i] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	return l, true
}

// choleskySolve solves L·Lᵀ·x = b
func choleskySolve(l [][]float64, b []float64) []float64 {
	n := len(b)
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * z[k]
		}
		z[i] = sum / l[i][i]
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * x[k]
		}
		x[i] = sum / l[i][i]
	}
	return x
}

func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
