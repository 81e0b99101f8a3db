// Package forecast implements the load prediction model: a standardizing
// scaler and a ridge regressor trained on sliding windows of the sample
// history, predicting the composite score a fixed number of steps ahead.
//
// The model is retrained from scratch on a fixed cadence rather than
// updated incrementally. Full refits keep the scaler statistics aligned
// with the data actually in the window and make every retrain reproducible:
// the same history always yields the same parameters.
package forecast

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/nexslice/scalecast/pkg/feature"
)

// Config controls window construction and retrain cadence.
type Config struct {
	// WindowSize is the number of consecutive samples flattened into one
	// model input.
	WindowSize int

	// Horizon is how many steps ahead the label is taken from.
	Horizon int

	// MinTrainingSamples is the history length required before any retrain
	// is attempted.
	MinTrainingSamples int

	// RetrainPeriod triggers a retrain every Nth observed sample once
	// MinTrainingSamples is reached.
	RetrainPeriod int

	// MinWindows is the minimum number of training windows a retrain needs;
	// with fewer the retrain is skipped silently.
	MinWindows int

	// Ridge is the L2 regularization strength. It keeps the solve
	// well-conditioned when windows are collinear (e.g. flat load).
	Ridge float64
}

// Defaults matching the controller's sampling cadence.
const (
	DefaultWindowSize         = 5
	DefaultHorizon            = 2
	DefaultMinTrainingSamples = 20
	DefaultRetrainPeriod      = 10
	DefaultMinWindows         = 10
	DefaultRidge              = 1e-4
)

func (c Config) withDefaults() Config {
	if c.WindowSize <= 0 {
		c.WindowSize = DefaultWindowSize
	}
	if c.Horizon <= 0 {
		c.Horizon = DefaultHorizon
	}
	if c.MinTrainingSamples <= 0 {
		c.MinTrainingSamples = DefaultMinTrainingSamples
	}
	if c.RetrainPeriod <= 0 {
		c.RetrainPeriod = DefaultRetrainPeriod
	}
	if c.MinWindows <= 0 {
		c.MinWindows = DefaultMinWindows
	}
	if c.Ridge <= 0 {
		c.Ridge = DefaultRidge
	}
	return c
}

// Model predicts the composite score Horizon steps ahead of the most recent
// WindowSize samples. It starts untrained; Predict reports ok=false until a
// retrain has succeeded. Owned by a single control loop.
type Model struct {
	cfg    Config
	logger *slog.Logger

	trained bool
	scaler  *scaler
	weights *mat.VecDense // bias first, then one weight per scaled input

	// observed counts samples seen via MaybeRetrain and drives the retrain
	// cadence. Owned here so history capacity cannot alias the schedule.
	observed int
}

// NewModel creates an untrained model.
func NewModel(cfg Config, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{cfg: cfg.withDefaults(), logger: logger}
}

// Trained reports whether a retrain has ever succeeded.
func (m *Model) Trained() bool {
	return m.trained
}

// MaybeRetrain counts one observed sample and retrains when the cadence is
// due: the history holds at least MinTrainingSamples and the sample counter
// is a multiple of RetrainPeriod. The training set is rebuilt from the
// given history only. A failed or skipped retrain leaves the previous
// trained state untouched. Returns whether a retrain completed.
func (m *Model) MaybeRetrain(history []feature.Sample) bool {
	m.observed++

	if len(history) < m.cfg.MinTrainingSamples || m.observed%m.cfg.RetrainPeriod != 0 {
		return false
	}

	xs, ys := m.buildWindows(history)
	if len(xs) < m.cfg.MinWindows {
		m.logger.Debug("skipping retrain, not enough windows",
			"windows", len(xs),
			"min_windows", m.cfg.MinWindows,
		)
		return false
	}

	sc := fitScaler(xs)
	weights, err := solveRidge(sc, xs, ys, m.cfg.Ridge)
	if err != nil {
		m.logger.Error("retrain failed, keeping previous model", "error", err)
		return false
	}

	// Replace scaler and regressor together so Predict never mixes old and
	// new parameters.
	m.scaler = sc
	m.weights = weights
	m.trained = true

	m.logger.Info("model retrained",
		"windows", len(xs),
		"samples", len(history),
	)
	return true
}

// Predict returns the forecast composite score for Horizon steps ahead of
// the latest window, clamped to be non-negative. ok=false means no
// prediction is available: the model is untrained, the history is shorter
// than one window, or the window no longer matches the fitted shape.
func (m *Model) Predict(history []feature.Sample) (float64, bool) {
	if !m.trained || len(history) < m.cfg.WindowSize {
		return 0, false
	}

	window := flatten(history[len(history)-m.cfg.WindowSize:])
	if len(window) != m.scaler.dim() {
		return 0, false
	}

	scaled := m.scaler.transform(window)
	yhat := m.weights.AtVec(0)
	for j, v := range scaled {
		yhat += m.weights.AtVec(j+1) * v
	}

	if yhat < 0 {
		yhat = 0
	}
	return yhat, true
}

// buildWindows derives the training set from the history: for each index i
// with WindowSize <= i < len-Horizon, the input is the flattened window
// ending at i and the label is the composite score Horizon steps later.
func (m *Model) buildWindows(history []feature.Sample) ([][]float64, []float64) {
	w, h := m.cfg.WindowSize, m.cfg.Horizon

	var xs [][]float64
	var ys []float64
	for i := w; i < len(history)-h; i++ {
		xs = append(xs, flatten(history[i-w:i]))
		ys = append(ys, history[i+h].Score)
	}
	return xs, ys
}

func flatten(window []feature.Sample) []float64 {
	out := make([]float64, 0, len(window)*feature.FeatureCount)
	for _, s := range window {
		out = append(out, s.Features()...)
	}
	return out
}

// solveRidge fits the regressor on scaled inputs by solving the ridge
// normal equations (XᵀX + λI)w = Xᵀy, with a bias column prepended.
func solveRidge(sc *scaler, xs [][]float64, ys []float64, lambda float64) (*mat.VecDense, error) {
	rows := len(xs)
	p := sc.dim() + 1

	x := mat.NewDense(rows, p, nil)
	for r, row := range xs {
		x.Set(r, 0, 1)
		for j, v := range sc.transform(row) {
			x.Set(r, j+1, v)
		}
	}
	y := mat.NewVecDense(rows, ys)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 0; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+lambda)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var weights mat.VecDense
	if err := weights.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}
	return &weights, nil
}
