package ml

// Accuracy computes the fraction of predictions matching the true labels.
// Returns 0.0 if the slices are empty or mismatched in length.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0.0
	}

	correct := 0
	for i, y := range yTrue {
		if y == yPred[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(yTrue))
}

// Precision computes the positive-class precision: of the visits predicted
// as shows, the fraction that actually were. Returns 0.0 with no positive
// predictions.
func Precision(yTrue, yPred []int) float64 {
	tp, fp := 0, 0
	for i, p := range yPred {
		if p == 1 {
			if yTrue[i] == 1 {
				tp++
			} else {
				fp++
			}
		}
	}
	if tp+fp == 0 {
		return 0.0
	}
	return float64(tp) / float64(tp+fp)
}

// Recall computes the positive-class recall: of the actual shows, the
// fraction the model predicted. Returns 0.0 with no positive labels.
func Recall(yTrue, yPred []int) float64 {
	tp, fn := 0, 0
	for i, y := range yTrue {
		if y == 1 {
			if yPred[i] == 1 {
				tp++
			} else {
				fn++
			}
		}
	}
	if tp+fn == 0 {
		return 0.0
	}
	return float64(tp) / float64(tp+fn)
}
