package predict

import (
	"context"
	"log/slog"

	"github.com/mpaterson/trackml/internal/domain"
	"github.com/mpaterson/trackml/internal/features"
)

// Assemble produces the full prediction set for a feature set. Every target
// in the catalog is attempted; a target whose vector cannot be built or
// whose model load/prediction fails is recorded as skipped (nil) and never
// aborts the remaining targets.
func Assemble(ctx context.Context, p Predictor, set features.Set) domain.PredictionSet {
	predictions := make(domain.PredictionSet, len(targetFields))

	for _, target := range Targets() {
		vec, ok := features.Vectorize(set, FieldsFor(target))
		if !ok {
			slog.Warn("target skipped, unusable vector", "target", target)
			predictions[target] = nil
			continue
		}

		raw, err := p.Predict(ctx, target, vec)
		if err != nil {
			slog.Warn("target skipped, prediction failed", "target", target, "error", err)
			predictions[target] = nil
			continue
		}

		value := Normalize(target, raw)
		predictions[target] = &value
	}

	return predictions
}
