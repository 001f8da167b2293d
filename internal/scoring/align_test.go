package scoring

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"wallet-credit-scores/internal/features"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestAlignExactSchema(t *testing.T) {
	vectors := map[string]*features.WalletFeatures{
		"0xB": {TotalTransactions: 2, TotalDeposit: 100},
		"0xA": {TotalTransactions: 5, TotalBorrow: 40},
	}
	trained := []string{
		features.ColTotalTransactions,
		features.ColTotalBorrow,
		features.ColTotalDeposit,
	}

	matrix, err := NewAligner(testLogger()).Align(vectors, trained)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}

	if len(matrix.Columns) != len(trained) {
		t.Fatalf("expected %d columns, got %d", len(trained), len(matrix.Columns))
	}
	for i, column := range trained {
		if matrix.Columns[i] != column {
			t.Fatalf("column %d should be %s, got %s", i, column, matrix.Columns[i])
		}
	}

	// Wallets are ordered deterministically.
	if matrix.Wallets[0] != "0xA" || matrix.Wallets[1] != "0xB" {
		t.Fatalf("unexpected wallet order: %v", matrix.Wallets)
	}
	if matrix.Rows[0][0] != 5 || matrix.Rows[0][1] != 40 || matrix.Rows[0][2] != 0 {
		t.Fatalf("unexpected row for 0xA: %v", matrix.Rows[0])
	}
	if matrix.Rows[1][2] != 100 {
		t.Fatalf("unexpected deposit for 0xB: %v", matrix.Rows[1])
	}
}

func TestAlignFillsMissingTrainedColumns(t *testing.T) {
	vectors := map[string]*features.WalletFeatures{
		"0xA": {TotalTransactions: 3},
	}
	// A column the aggregator never produces must be filled with zero,
	// not treated as missing data.
	trained := []string{features.ColTotalTransactions, "wallet_age_days"}

	matrix, err := NewAligner(testLogger()).Align(vectors, trained)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}
	if matrix.Rows[0][1] != 0 {
		t.Fatalf("unknown trained column should be zero-filled, got %f", matrix.Rows[0][1])
	}
}

func TestAlignDropsExtraColumns(t *testing.T) {
	vectors := map[string]*features.WalletFeatures{
		"0xA": {TotalTransactions: 3, TotalDeposit: 9, StdRepay: 7},
	}
	trained := []string{features.ColTotalDeposit}

	matrix, err := NewAligner(testLogger()).Align(vectors, trained)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}
	if len(matrix.Columns) != 1 || matrix.Rows[0][0] != 9 {
		t.Fatalf("aligner should keep exactly the trained columns: %v %v", matrix.Columns, matrix.Rows)
	}
}

func TestAlignDuplicateTrainedColumn(t *testing.T) {
	vectors := map[string]*features.WalletFeatures{"0xA": {}}
	trained := []string{features.ColTotalDeposit, features.ColTotalDeposit}

	_, err := NewAligner(testLogger()).Align(vectors, trained)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("duplicate trained column should be a schema mismatch, got %v", err)
	}
}

func TestAlignEmptyTrainedSchema(t *testing.T) {
	vectors := map[string]*features.WalletFeatures{"0xA": {}}

	matrix, err := NewAligner(testLogger()).Align(vectors, nil)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}
	if len(matrix.Columns) != 0 || len(matrix.Wallets) != 1 {
		t.Fatalf("empty schema should keep wallets with zero columns: %v", matrix)
	}
}
