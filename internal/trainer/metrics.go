package trainer

import "math"

// rmse is the root-mean-squared error between actual and predicted values.
func rmse(actual, predicted []float64) float64 {
	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// mae is the mean absolute error between actual and predicted values.
func mae(actual, predicted []float64) float64 {
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// r2 is the coefficient of determination. A constant target yields 1 for a
// perfect fit and 0 otherwise.
func r2(actual, predicted []float64) float64 {
	var meanActual float64
	for _, v := range actual {
		meanActual += v
	}
	meanActual /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		t := actual[i] - meanActual
		ssTot += t * t
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
