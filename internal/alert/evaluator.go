package alert

import (
	"context"

	"cryptodash/internal/model"

	"go.uber.org/zap"
)

// Notifier is the alert transport capability. A nil error means the
// alert was delivered.
type Notifier interface {
	SendAlert(ctx context.Context, symbol string, currentPrice, targetPrice float64, recipient string) error
}

// Evaluator compares the latest close against the configured threshold
// and triggers the notifier.
//
// Evaluation is stateless across cycles: every cycle where the
// condition holds re-sends the alert. This is a known limitation of
// the design, not an accident; callers wanting suppression must add it
// outside.
type Evaluator struct {
	notifier Notifier
	log      *zap.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(n Notifier, log *zap.Logger) *Evaluator {
	return &Evaluator{notifier: n, log: log}
}

// Evaluate fires the notifier at most once if the config is enabled
// and the series' latest close is at or below the threshold. It
// reports whether the alert fired and any transport error; a transport
// failure never affects the rest of the cycle.
func (e *Evaluator) Evaluate(ctx context.Context, cfg model.AlertConfig, series *model.Series) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	close, ok := series.LatestClose()
	if !ok {
		return false, nil
	}
	if close > cfg.TargetPrice {
		return false, nil
	}
	e.log.Info("price alert triggered",
		zap.String("symbol", series.Symbol),
		zap.Float64("close", close),
		zap.Float64("target", cfg.TargetPrice))
	if err := e.notifier.SendAlert(ctx, series.Symbol, close, cfg.TargetPrice, cfg.Email); err != nil {
		return true, err
	}
	return true, nil
}
