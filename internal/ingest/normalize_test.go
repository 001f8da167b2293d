package ingest

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func record(walletField, wallet string, ts float64, action string, data map[string]any) Record {
	r := Record{
		walletField: wallet,
		"timestamp": ts,
		"action":    action,
	}
	if data != nil {
		r["actionData"] = data
	}
	return r
}

func TestNormalizeWalletField(t *testing.T) {
	n := NewNormalizer(testLogger())
	txs, err := n.Normalize([]Record{
		record("wallet", "0xA", 1000, "deposit", map[string]any{"amount": "100", "assetSymbol": "USDC"}),
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if len(txs) != 1 || txs[0].Wallet != "0xA" {
		t.Fatalf("expected one transaction for 0xA, got %#v", txs)
	}
	if txs[0].Amount != 100 {
		t.Fatalf("expected amount 100, got %f", txs[0].Amount)
	}
	if txs[0].Asset != "USDC" {
		t.Fatalf("expected asset USDC, got %s", txs[0].Asset)
	}
}

func TestNormalizeUserWalletFallback(t *testing.T) {
	n := NewNormalizer(testLogger())
	txs, err := n.Normalize([]Record{
		record("userWallet", "0xB", 1000, "borrow", nil),
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if txs[0].Wallet != "0xB" {
		t.Fatalf("userWallet should resolve as the wallet identity, got %s", txs[0].Wallet)
	}
}

func TestNormalizeFromFallback(t *testing.T) {
	n := NewNormalizer(testLogger())
	txs, err := n.Normalize([]Record{
		record("from", "0xC", 1000, "repay", nil),
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if txs[0].Wallet != "0xC" {
		t.Fatalf("from should resolve as the wallet identity, got %s", txs[0].Wallet)
	}
}

func TestNormalizeNoWalletField(t *testing.T) {
	n := NewNormalizer(testLogger())
	_, err := n.Normalize([]Record{
		{"timestamp": float64(1000), "action": "deposit"},
	})
	if !errors.Is(err, ErrNoWalletField) {
		t.Fatalf("expected ErrNoWalletField, got %v", err)
	}
}

func TestNormalizeFieldPriority(t *testing.T) {
	n := NewNormalizer(testLogger())
	r := Record{
		"wallet":     "0xWALLET",
		"userWallet": "0xUSER",
		"from":       "0xFROM",
		"timestamp":  float64(1000),
		"action":     "deposit",
	}
	txs, err := n.Normalize([]Record{r})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if txs[0].Wallet != "0xWALLET" {
		t.Fatalf("wallet must win over userWallet and from, got %s", txs[0].Wallet)
	}
}

func TestNormalizeMissingTimestamp(t *testing.T) {
	n := NewNormalizer(testLogger())
	if _, err := n.Normalize([]Record{{"wallet": "0xA", "action": "deposit"}}); err == nil {
		t.Fatal("missing timestamp should be fatal")
	}
}

func TestNormalizeEmptyBatch(t *testing.T) {
	n := NewNormalizer(testLogger())
	txs, err := n.Normalize(nil)
	if err != nil {
		t.Fatalf("empty batch should not error: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("empty batch should yield no transactions, got %d", len(txs))
	}
}

func TestParseAmountCoercion(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
	}{
		{"decimal string", "12.5", 12.5},
		{"wide integer string", "2000000000000000000", 2e18},
		{"json number", float64(42), 42},
		{"garbage string", "not-a-number", 0},
		{"missing", nil, 0},
		{"wrong type", []any{"1"}, 0},
	}
	for _, tc := range cases {
		if got := parseAmount(tc.value); got != tc.want {
			t.Fatalf("%s: expected %f, got %f", tc.name, tc.want, got)
		}
	}
}

func TestExtractActionDataDefaults(t *testing.T) {
	amount, asset := extractActionData(nil)
	if amount != 0 {
		t.Fatalf("missing actionData should yield amount 0, got %f", amount)
	}
	if asset != UnknownAsset {
		t.Fatalf("missing actionData should yield the sentinel asset, got %s", asset)
	}

	amount, asset = extractActionData(map[string]any{"amount": "7"})
	if amount != 7 || asset != UnknownAsset {
		t.Fatalf("missing assetSymbol should default to the sentinel, got %f/%s", amount, asset)
	}
}
