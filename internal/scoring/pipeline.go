package scoring

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"wallet-credit-scores/internal/artifacts"
)

// NeutralScore is assigned whenever the chain cannot produce a
// discriminative result for a wallet.
const NeutralScore = 500

// Pipeline applies the frozen standardize → project → cluster → score-range
// chain to an aligned feature matrix. No fitting happens here; every step
// depends only on the pretrained artifact parameters.
type Pipeline struct {
	bundle *artifacts.Bundle
	logger zerolog.Logger
}

// NewPipeline wires a trained artifact bundle into a scoring pipeline.
func NewPipeline(bundle *artifacts.Bundle, logger zerolog.Logger) *Pipeline {
	return &Pipeline{bundle: bundle, logger: logger.With().Str("component", "pipeline").Logger()}
}

// Score maps each wallet row to an integer credit score. Per-wallet
// degradations (unmapped cluster ids) fall back to the neutral score;
// only artifact/schema skew aborts the batch.
func (p *Pipeline) Score(m *Matrix) (map[string]int, error) {
	scores := make(map[string]int, len(m.Wallets))
	if len(m.Wallets) == 0 {
		return scores, nil
	}

	// Nothing discriminative to work with: zero trained columns or a
	// projection with zero retained components.
	if len(m.Columns) == 0 || len(p.bundle.PCA.Components) == 0 {
		p.logger.Warn().Msg("no discriminative projection available, assigning neutral scores")
		return p.neutral(m), nil
	}

	if err := p.checkDimensions(len(m.Columns)); err != nil {
		return nil, err
	}

	if len(p.bundle.KMeans.Centroids) == 0 {
		p.logger.Warn().Msg("no cluster model available, assigning neutral scores")
		return p.neutral(m), nil
	}

	for i, wallet := range m.Wallets {
		point := p.project(p.standardize(m.Rows[i]))
		cluster := nearestCentroid(point, p.bundle.KMeans.Centroids)

		rng, ok := p.bundle.ClusterScores[cluster]
		if !ok {
			p.logger.Warn().Str("wallet", wallet).Int("cluster", cluster).Msg("cluster id has no score range, using neutral score")
			scores[wallet] = NeutralScore
			continue
		}
		scores[wallet] = int(math.Round((rng.Min + rng.Max) / 2))
	}

	return scores, nil
}

func (p *Pipeline) neutral(m *Matrix) map[string]int {
	scores := make(map[string]int, len(m.Wallets))
	for _, wallet := range m.Wallets {
		scores[wallet] = NeutralScore
	}
	return scores
}

// checkDimensions guards against version skew between the artifacts and
// the trained column list.
func (p *Pipeline) checkDimensions(columns int) error {
	if len(p.bundle.Scaler.Mean) != columns || len(p.bundle.Scaler.Scale) != columns {
		return fmt.Errorf("%w: scaler trained on %d columns, schema has %d", ErrSchemaMismatch, len(p.bundle.Scaler.Mean), columns)
	}
	if n := len(p.bundle.PCA.Mean); n != 0 && n != columns {
		return fmt.Errorf("%w: pca mean has %d columns, schema has %d", ErrSchemaMismatch, n, columns)
	}
	reduced := len(p.bundle.PCA.Components)
	for _, component := range p.bundle.PCA.Components {
		if len(component) != columns {
			return fmt.Errorf("%w: pca component has %d columns, schema has %d", ErrSchemaMismatch, len(component), columns)
		}
	}
	for _, centroid := range p.bundle.KMeans.Centroids {
		if len(centroid) != reduced {
			return fmt.Errorf("%w: centroid has %d components, projection retains %d", ErrSchemaMismatch, len(centroid), reduced)
		}
	}
	return nil
}

// standardize applies the frozen per-column center/scale transform. Any
// residual NaN or infinite cell is clamped to zero first; a zero scale
// entry (a column constant at training time) divides as one.
func (p *Pipeline) standardize(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		scale := p.bundle.Scaler.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - p.bundle.Scaler.Mean[i]) / scale
	}
	return out
}

// project applies the frozen linear projection into the reduced space. A
// single retained component yields a one-dimensional point, which still
// flows through clustering.
func (p *Pipeline) project(row []float64) []float64 {
	pca := p.bundle.PCA
	out := make([]float64, len(pca.Components))
	for j, component := range pca.Components {
		sum := 0.0
		for i, v := range row {
			if len(pca.Mean) == len(row) {
				v -= pca.Mean[i]
			}
			sum += v * component[i]
		}
		out[j] = sum
	}
	return out
}

// nearestCentroid assigns the point to the closest centroid by squared
// euclidean distance.
func nearestCentroid(point []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for id, centroid := range centroids {
		dist := 0.0
		for i, v := range point {
			d := v - centroid[i]
			dist += d * d
		}
		if dist < bestDist {
			best = id
			bestDist = dist
		}
	}
	return best
}
