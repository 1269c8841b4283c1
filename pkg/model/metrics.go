package model

import (
	"fmt"
	"strconv"

	"github.com/sjwhitworth/golearn/evaluation"
)

const positiveClass = "1"

// Scores holds binary classification metrics for the positive class.
type Scores struct {
	F1        float64 `json:"f1_score" yaml:"f1_score"`
	Precision float64 `json:"precision_score" yaml:"precision_score"`
	Recall    float64 `json:"recall_score" yaml:"recall_score"`
}

// ConfusionMatrix tallies labels as [actual][predicted] counts keyed by the
// decimal label.
func ConfusionMatrix(actual, predicted []int) (evaluation.ConfusionMatrix, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("score: %d actual labels, %d predicted", len(actual), len(predicted))
	}

	cm := make(evaluation.ConfusionMatrix)
	for i := range actual {
		a, p := strconv.Itoa(actual[i]), strconv.Itoa(predicted[i])
		if cm[a] == nil {
			cm[a] = make(map[string]int)
		}
		cm[a][p]++
	}
	return cm, nil
}

// Score compares predicted labels against actual labels. Undefined ratios
// (no predicted or no actual positives) score 0.
func Score(actual, predicted []int) (Scores, error) {
	cm, err := ConfusionMatrix(actual, predicted)
	if err != nil {
		return Scores{}, err
	}

	tp := evaluation.GetTruePositives(positiveClass, cm)
	fp := evaluation.GetFalsePositives(positiveClass, cm)
	fn := evaluation.GetFalseNegatives(positiveClass, cm)

	var s Scores
	if tp+fp > 0 {
		s.Precision = evaluation.GetPrecision(positiveClass, cm)
	}
	if tp+fn > 0 {
		s.Recall = evaluation.GetRecall(positiveClass, cm)
	}
	if tp > 0 {
		s.F1 = evaluation.GetF1Score(positiveClass, cm)
	}
	return s, nil
}

// F1 returns only the F1 score of predicted against actual.
func F1(actual, predicted []int) (float64, error) {
	s, err := Score(actual, predicted)
	return s.F1, err
}
