package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// canonical wallet field and its accepted aliases, in resolution order.
	fieldWallet     = "wallet"
	fieldUserWallet = "userWallet"
	fieldFrom       = "from"

	// UnknownAsset is the sentinel symbol for transactions without one.
	UnknownAsset = "unknown"
)

// ErrNoWalletField indicates that no field identifying the wallet exists
// anywhere in the batch.
var ErrNoWalletField = errors.New("ingest: no wallet identity field (wallet, userWallet, or from) present")

// Normalizer resolves heterogeneous input shapes into Transaction values
// keyed by a canonical wallet identifier.
type Normalizer struct {
	logger zerolog.Logger
}

// NewNormalizer constructs a Normalizer.
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger.With().Str("component", "normalizer").Logger()}
}

// Normalize resolves the wallet identity field and parses each record into a
// Transaction. Amounts and asset symbols are extracted leniently; the wallet
// field and the timestamp are the only hard requirements.
func (n *Normalizer) Normalize(records []Record) ([]Transaction, error) {
	if len(records) == 0 {
		return nil, nil
	}

	source, err := n.resolveWalletField(records)
	if err != nil {
		return nil, err
	}

	txs := make([]Transaction, 0, len(records))
	skipped := 0
	nonHex := 0
	for i, record := range records {
		wallet, ok := record[source].(string)
		if !ok || wallet == "" {
			skipped++
			continue
		}
		if !common.IsHexAddress(wallet) {
			nonHex++
		}

		ts, ok := record["timestamp"].(float64)
		if !ok {
			return nil, fmt.Errorf("record %d: missing or non-numeric timestamp", i)
		}

		action, _ := record["action"].(string)
		amount, asset := extractActionData(record["actionData"])

		txs = append(txs, Transaction{
			Wallet:    wallet,
			Timestamp: millisToTime(int64(ts)),
			Action:    action,
			Amount:    amount,
			Asset:     asset,
		})
	}

	if skipped > 0 {
		n.logger.Warn().Int("records", skipped).Msg("records without a wallet value skipped")
	}
	if nonHex > 0 {
		n.logger.Warn().Int("records", nonHex).Msg("wallet values are not valid hex addresses")
	}

	return txs, nil
}

// resolveWalletField picks the field carrying the wallet identity. Fallbacks
// are surfaced as warnings: "from" in particular names the transaction
// origin, which is not the affected wallet for multi-party actions such as
// liquidations.
func (n *Normalizer) resolveWalletField(records []Record) (string, error) {
	has := func(field string) bool {
		for _, record := range records {
			if _, ok := record[field]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case has(fieldWallet):
		return fieldWallet, nil
	case has(fieldUserWallet):
		n.logger.Warn().Msg("wallet field not found, using userWallet")
		return fieldUserWallet, nil
	case has(fieldFrom):
		n.logger.Warn().Msg("wallet field not found, using transaction origin (from); origin may differ from the affected wallet for multi-party actions")
		return fieldFrom, nil
	default:
		return "", ErrNoWalletField
	}
}

// extractActionData pulls the numeric amount and asset symbol out of the
// loosely structured actionData payload. Unparsable or missing amounts
// become zero, missing symbols become the sentinel token.
func extractActionData(raw any) (float64, string) {
	payload, ok := raw.(map[string]any)
	if !ok {
		return 0, UnknownAsset
	}

	asset := UnknownAsset
	if symbol, ok := payload["assetSymbol"].(string); ok && symbol != "" {
		asset = symbol
	}

	return parseAmount(payload["amount"]), asset
}

// parseAmount coerces an amount value to float64. Lending dumps usually
// carry amounts as decimal strings wider than float64 text, so strings go
// through decimal first.
func parseAmount(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	default:
		return 0
	}
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
