// Package predictor wraps the frozen binary classifier that maps a feature
// vector to a slow/fast verdict with confidence.
package predictor

import (
	"fmt"
	"math"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/config"
	"github.com/sadop/sadop/internal/errors"
	"github.com/sadop/sadop/internal/features"
	"github.com/sadop/sadop/internal/onnx"
)

// Result is the outcome of one performance prediction. Request-scoped.
type Result struct {
	IsSlow          bool    `json:"is_slow"`
	SlowProbability float64 `json:"slow_probability"`
	Diagnosis       string  `json:"diagnosis"`
}

// Predictor serves the frozen slow-query classifier. A missing artifact is
// not fatal: the predictor initializes successfully in an unavailable state
// and every Predict call returns a model error. This differs deliberately
// from the index recommender, which fails fast at construction.
type Predictor struct {
	session *onnx.Session
	log     *zap.Logger
}

// New loads the classifier artifact if present. When the artifact file is
// absent the returned predictor is usable but unavailable.
func New(cfg config.ModelsConfig, log *zap.Logger) *Predictor {
	session, err := onnx.Load(cfg.ClassifierPath, cfg.RuntimeLib)
	if err != nil {
		log.Warn("performance classifier not loaded, predictions unavailable",
			zap.String("path", cfg.ClassifierPath),
			zap.Error(err))

		return &Predictor{log: log}
	}

	log.Info("performance classifier loaded", zap.String("path", cfg.ClassifierPath))

	return &Predictor{session: session, log: log}
}

// Loaded reports whether the classifier artifact was loaded.
func (p *Predictor) Loaded() bool {
	return p.session != nil
}

// Predict projects the feature vector into the classifier and returns the
// verdict. The input order is the fixed training field order; the vector
// length is enforced by the FeatureVector type itself.
func (p *Predictor) Predict(fv features.FeatureVector) (Result, error) {
	if p.session == nil {
		return Result{}, errors.New(errors.ErrTypeModel, "performance model not loaded")
	}

	input := fv.Vector()

	inTensor, err := ort.NewTensor(ort.NewShape(1, features.NumFeatures), input)
	if err != nil {
		return Result{}, errors.Wrap(err, errors.ErrTypeModel, "failed to create input tensor")
	}
	defer inTensor.Destroy()

	labelOut, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return Result{}, errors.Wrap(err, errors.ErrTypeModel, "failed to create label tensor")
	}
	defer labelOut.Destroy()

	probOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return Result{}, errors.Wrap(err, errors.ErrTypeModel, "failed to create probability tensor")
	}
	defer probOut.Destroy()

	if err := p.session.Run(
		[]ort.Value{inTensor},
		[]ort.Value{labelOut, probOut},
	); err != nil {
		return Result{}, errors.Wrap(err, errors.ErrTypeModel, "classifier inference failed")
	}

	label := labelOut.GetData()[0]
	probability := float64(probOut.GetData()[1]) // positive-class probability
	isSlow := label == 1

	return Result{
		IsSlow:          isSlow,
		SlowProbability: round3(probability),
		Diagnosis:       diagnosisFor(isSlow, probability),
	}, nil
}

// Close releases the classifier session, if loaded.
func (p *Predictor) Close() error {
	if p.session == nil {
		return nil
	}

	return p.session.Close()
}

// diagnosisFor renders one of the two fixed diagnosis phrasings with the
// confidence interpolated as a percentage.
func diagnosisFor(isSlow bool, probability float64) string {
	if isSlow {
		return fmt.Sprintf("Query is likely slow (ML confidence: %.1f%%)", probability*100)
	}

	return fmt.Sprintf("Query is likely fast (ML confidence: %.1f%%)", (1-probability)*100)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
