package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Record is one raw transaction object as it appears in the input dump.
// Field names vary between export formats, so it stays schemaless until
// the normalizer resolves the wallet identity.
type Record map[string]any

// Transaction is a normalized lending-protocol event attributed to a wallet.
type Transaction struct {
	Wallet    string
	Timestamp time.Time
	Action    string
	Amount    float64
	Asset     string
}

// ReadFile loads a JSON array of transaction records from disk.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer file.Close()

	var records []Record
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode batch file %s: %w", path, err)
	}
	return records, nil
}
