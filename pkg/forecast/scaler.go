package forecast

import "math"

// scaler standardizes feature columns to zero mean and unit variance, the
// same transform the regressor was fitted against. Columns with zero
// variance are left unscaled to avoid division by zero.
type scaler struct {
	mean []float64
	std  []float64
}

// fitScaler computes per-column mean and population standard deviation over
// the training inputs. All rows must share the same width.
func fitScaler(xs [][]float64) *scaler {
	cols := len(xs[0])
	n := float64(len(xs))

	mean := make([]float64, cols)
	for _, row := range xs {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	std := make([]float64, cols)
	for _, row := range xs {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &scaler{mean: mean, std: std}
}

func (s *scaler) dim() int {
	return len(s.mean)
}

func (s *scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out
}
