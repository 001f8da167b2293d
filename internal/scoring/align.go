package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"wallet-credit-scores/internal/features"
)

// ErrSchemaMismatch indicates the trained feature schema cannot be
// structurally reconciled with the aggregator output.
var ErrSchemaMismatch = errors.New("scoring: aligned feature set cannot be produced")

// Matrix is an aligned feature table: one row per wallet, columns exactly
// matching the trained schema in trained order.
type Matrix struct {
	Wallets []string
	Columns []string
	Rows    [][]float64
}

// Aligner reconciles aggregator output against the trained column list.
type Aligner struct {
	logger zerolog.Logger
}

// NewAligner constructs an Aligner.
func NewAligner(logger zerolog.Logger) *Aligner {
	return &Aligner{logger: logger.With().Str("component", "aligner").Logger()}
}

// Align produces a Matrix with exactly the trained columns, in trained
// order, for every wallet. Trained columns absent from the aggregator
// output are filled with zero (a feature that never fires is "no
// activity"); aggregator columns absent from the trained schema are
// dropped and reported. Wallets are ordered deterministically.
func (a *Aligner) Align(vectors map[string]*features.WalletFeatures, trained []string) (*Matrix, error) {
	seen := make(map[string]struct{}, len(trained))
	for _, column := range trained {
		if _, dup := seen[column]; dup {
			return nil, fmt.Errorf("%w: duplicate trained column %q", ErrSchemaMismatch, column)
		}
		seen[column] = struct{}{}
	}

	wallets := make([]string, 0, len(vectors))
	for wallet := range vectors {
		wallets = append(wallets, wallet)
	}
	sort.Strings(wallets)

	a.reportDrift(trained, seen)

	rows := make([][]float64, len(wallets))
	for i, wallet := range wallets {
		values := vectors[wallet].Values()
		row := make([]float64, len(trained))
		for j, column := range trained {
			row[j] = values[column]
		}
		rows[i] = row
	}

	return &Matrix{Wallets: wallets, Columns: trained, Rows: rows}, nil
}

// reportDrift logs schema drift between the aggregator and the trained
// artifact set: filled columns mean the training data had features this
// batch never produced, dropped ones mean training-time feature selection
// removed columns the aggregator still computes.
func (a *Aligner) reportDrift(trained []string, trainedSet map[string]struct{}) {
	produced := features.Columns()
	producedSet := make(map[string]struct{}, len(produced))
	for _, column := range produced {
		producedSet[column] = struct{}{}
	}

	var filled, dropped []string
	for _, column := range trained {
		if _, ok := producedSet[column]; !ok {
			filled = append(filled, column)
		}
	}
	for _, column := range produced {
		if _, ok := trainedSet[column]; !ok {
			dropped = append(dropped, column)
		}
	}

	if len(filled) > 0 {
		a.logger.Warn().Strs("columns", filled).Msg("trained columns missing from aggregator output, filled with zero")
	}
	if len(dropped) > 0 {
		a.logger.Info().Strs("columns", dropped).Msg("aggregator columns not in trained schema, dropped")
	}
}
