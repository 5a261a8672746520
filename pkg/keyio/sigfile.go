package keyio

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/mahdiidarabi/go-dsa/pkg/dsa"
)

// Record is one entry of a signature batch file: a signature over
// either a raw message or a pre-computed digest.
type Record struct {
	Message []byte // nil when Digest is set
	Digest  []byte // nil when Message is set
	Sig     *dsa.Signature
}

// ReadSignaturesJSON parses signature records from a JSON file.
//
// Expected format:
// [
//
//	{"message": "...", "r": "...", "s": "..."},
//	{"digest": "0x...", "r": "0x...", "s": "0x..."}
//
// ]
//
// Empty field names select the defaults shown above. r and s accept hex
// (with or without 0x) and decimal spellings.
func ReadSignaturesJSON(jsonFile string, messageField, digestField, rField, sField string) ([]*Record, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber() // Preserve large numbers as json.Number instead of float64

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if messageField == "" {
		messageField = "message"
	}
	if digestField == "" {
		digestField = "digest"
	}
	if rField == "" {
		rField = "r"
	}
	if sField == "" {
		sField = "s"
	}

	records := make([]*Record, 0, len(items))
	for _, item := range items {
		rec := &Record{}

		if dVal, ok := item[digestField]; ok {
			d, err := parseHexBytes(dVal)
			if err != nil {
				return nil, fmt.Errorf("failed to parse digest: %w", err)
			}
			rec.Digest = d
		} else if mVal, ok := item[messageField]; ok {
			s, ok := mVal.(string)
			if !ok {
				return nil, fmt.Errorf("message field must be a string")
			}
			rec.Message = []byte(s)
		} else {
			return nil, fmt.Errorf("missing message or digest field")
		}

		rVal, ok := item[rField]
		if !ok {
			return nil, fmt.Errorf("missing r field")
		}
		r, err := parseBigInt(rVal)
		if err != nil {
			return nil, fmt.Errorf("failed to parse r: %w", err)
		}

		sVal, ok := item[sField]
		if !ok {
			return nil, fmt.Errorf("missing s field")
		}
		s, err := parseBigInt(sVal)
		if err != nil {
			return nil, fmt.Errorf("failed to parse s: %w", err)
		}

		rec.Sig = &dsa.Signature{R: r, S: s}
		records = append(records, rec)
	}

	return records, nil
}

// ReadSignaturesCSV parses signature records from a CSV file with a
// header row. Empty column names select "message", "digest", "r", "s".
func ReadSignaturesCSV(csvFile string, messageCol, digestCol, rCol, sCol string) ([]*Record, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if messageCol == "" {
		messageCol = "message"
	}
	if digestCol == "" {
		digestCol = "digest"
	}
	if rCol == "" {
		rCol = "r"
	}
	if sCol == "" {
		sCol = "s"
	}

	messageIdx, digestIdx, rIdx, sIdx := -1, -1, -1, -1
	for i, col := range header {
		switch col {
		case messageCol:
			messageIdx = i
		case digestCol:
			digestIdx = i
		case rCol:
			rIdx = i
		case sCol:
			sIdx = i
		}
	}
	if rIdx == -1 || sIdx == -1 {
		return nil, fmt.Errorf("missing required columns: r or s")
	}

	var records []*Record
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		rec := &Record{}
		if digestIdx >= 0 && digestIdx < len(record) && record[digestIdx] != "" {
			d, err := parseHexBytes(record[digestIdx])
			if err != nil {
				return nil, fmt.Errorf("failed to parse digest: %w", err)
			}
			rec.Digest = d
		} else if messageIdx >= 0 && messageIdx < len(record) {
			rec.Message = []byte(record[messageIdx])
		} else {
			return nil, fmt.Errorf("missing message or digest column")
		}

		if rIdx >= len(record) || sIdx >= len(record) {
			return nil, fmt.Errorf("signature column index out of range")
		}
		r, err := parseBigInt(record[rIdx])
		if err != nil {
			return nil, fmt.Errorf("failed to parse r: %w", err)
		}
		s, err := parseBigInt(record[sIdx])
		if err != nil {
			return nil, fmt.Errorf("failed to parse s: %w", err)
		}

		rec.Sig = &dsa.Signature{R: r, S: s}
		records = append(records, rec)
	}

	return records, nil
}

// VerifyBatch checks every record against the key and returns the
// per-record verdicts. The first usage error aborts the batch.
func VerifyBatch(engine *dsa.Engine, key *dsa.Key, records []*Record) ([]bool, error) {
	verdicts := make([]bool, len(records))
	for i, rec := range records {
		var (
			ok  bool
			err error
		)
		if rec.Digest != nil {
			ok, err = engine.VerifyDigest(key, rec.Sig, rec.Digest)
		} else {
			ok, err = engine.Verify(key, rec.Sig, rec.Message)
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		verdicts[i] = ok
	}
	return verdicts, nil
}

// parseHexBytes decodes a hex string value, tolerating a 0x prefix.
func parseHexBytes(val interface{}) ([]byte, error) {
	s, ok := val.(string)
	if !ok {
		return nil, fmt.Errorf("expected a hex string, got %T", val)
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// parseBigInt parses a big integer from various formats (hex string, decimal string, number).
func parseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimPrefix(v, "0x")
		s = strings.TrimPrefix(s, "0X")

		// Long strings and strings with hex letters are treated as hex.
		if strings.ContainsAny(s, "abcdefABCDEF") || len(s) > 20 {
			if bytes, err := hex.DecodeString(s); err == nil {
				return new(big.Int).SetBytes(bytes), nil
			}
		}

		z := new(big.Int)
		if _, ok := z.SetString(s, 10); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case json.Number:
		z := new(big.Int)
		if _, ok := z.SetString(string(v), 10); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}
