package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Classifier is any fitted binary classifier.
type Classifier interface {
	Predict(x mat.Matrix) ([]int, error)
}

// Params holds logistic regression hyperparameters.
type Params struct {
	LearningRate   float64 `toml:"learning_rate"`
	MaxIterations  int     `toml:"max_iterations"`
	L2             float64 `toml:"l2"`
	Tolerance      float64 `toml:"tolerance"`
	Threshold      float64 `toml:"threshold"`
	BalanceClasses bool    `toml:"balance_classes"`
}

// DefaultParams returns the hyperparameters used when none are configured.
func DefaultParams() Params {
	return Params{
		LearningRate:   0.1,
		MaxIterations:  1000,
		L2:             0.0001,
		Tolerance:      1e-6,
		Threshold:      0.5,
		BalanceClasses: true,
	}
}

// LogisticRegression is a binary linear classifier fitted by batch gradient descent.
type LogisticRegression struct {
	Params     Params
	Weights    []float64
	Intercept  float64
	Iterations int
}

// NewLogisticRegression creates an unfitted classifier.
func NewLogisticRegression(p Params) *LogisticRegression {
	return &LogisticRegression{Params: p}
}

// Fit learns weights from x and binary labels y.
func (m *LogisticRegression) Fit(x mat.Matrix, y []int) error {
	n, d := x.Dims()
	if n == 0 {
		return fmt.Errorf("fit: no rows")
	}
	if d == 0 {
		return fmt.Errorf("fit: no features")
	}
	if len(y) != n {
		return fmt.Errorf("fit: %d labels for %d rows", len(y), n)
	}

	target := mat.NewVecDense(n, nil)
	var positives int
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("fit: label %d at row %d is not binary", label, i)
		}
		target.SetVec(i, float64(label))
		positives += label
	}

	sampleWeights := make([]float64, n)
	for i, label := range y {
		sampleWeights[i] = 1
		if m.Params.BalanceClasses && positives > 0 && positives < n {
			count := positives
			if label == 0 {
				count = n - positives
			}
			sampleWeights[i] = float64(n) / (2 * float64(count))
		}
	}

	w := mat.NewVecDense(d, nil)
	z := mat.NewVecDense(n, nil)
	residual := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	var b float64

	m.Iterations = 0
	for iter := 0; iter < m.Params.MaxIterations; iter++ {
		z.MulVec(x, w)
		for i := range n {
			p := sigmoid(z.AtVec(i) + b)
			residual.SetVec(i, (p-target.AtVec(i))*sampleWeights[i])
		}

		grad.MulVec(x.T(), residual)
		grad.ScaleVec(1/float64(n), grad)
		grad.AddScaledVec(grad, m.Params.L2, w)
		gradB := mat.Sum(residual) / float64(n)

		w.AddScaledVec(w, -m.Params.LearningRate, grad)
		b -= m.Params.LearningRate * gradB
		m.Iterations = iter + 1

		if math.Max(floats.Norm(grad.RawVector().Data, math.Inf(1)), math.Abs(gradB)) < m.Params.Tolerance {
			break
		}
	}

	m.Weights = make([]float64, d)
	copy(m.Weights, w.RawVector().Data)
	m.Intercept = b
	return nil
}

// PredictProba returns the positive-class probability for each row.
func (m *LogisticRegression) PredictProba(x mat.Matrix) ([]float64, error) {
	if m.Weights == nil {
		return nil, ErrNotFitted
	}

	n, d := x.Dims()
	if n == 0 {
		return []float64{}, nil
	}
	if d != len(m.Weights) {
		return nil, fmt.Errorf("classifier expects %d features, got %d", len(m.Weights), d)
	}

	z := mat.NewVecDense(n, nil)
	z.MulVec(x, mat.NewVecDense(d, m.Weights))

	probs := make([]float64, n)
	for i := range n {
		probs[i] = sigmoid(z.AtVec(i) + m.Intercept)
	}
	return probs, nil
}

// Predict returns 1 where the positive-class probability reaches the threshold.
func (m *LogisticRegression) Predict(x mat.Matrix) ([]int, error) {
	probs, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(probs))
	for i, p := range probs {
		if p >= m.Params.Threshold {
			labels[i] = 1
		}
	}
	return labels, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
