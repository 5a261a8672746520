package keyio

import (
	"crypto/sha1"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/mahdiidarabi/go-dsa/pkg/dsa"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadSignaturesJSON(t *testing.T) {
	path := writeTemp(t, "sigs.json", `[
		{"message": "hello", "r": "123456789", "s": "987654321"},
		{"digest": "0xdeadbeef", "r": "0xff", "s": "0x10"}
	]`)

	records, err := ReadSignaturesJSON(path, "", "", "", "")
	if err != nil {
		t.Fatalf("ReadSignaturesJSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if string(records[0].Message) != "hello" {
		t.Errorf("record 0 message = %q", records[0].Message)
	}
	if records[0].Sig.R.Cmp(big.NewInt(123456789)) != 0 {
		t.Errorf("record 0 r = %v", records[0].Sig.R)
	}
	if records[0].Sig.S.Cmp(big.NewInt(987654321)) != 0 {
		t.Errorf("record 0 s = %v", records[0].Sig.S)
	}

	if fmt.Sprintf("%x", records[1].Digest) != "deadbeef" {
		t.Errorf("record 1 digest = %x", records[1].Digest)
	}
	if records[1].Sig.R.Cmp(big.NewInt(0xff)) != 0 {
		t.Errorf("record 1 r = %v", records[1].Sig.R)
	}
}

func TestReadSignaturesJSONCustomFields(t *testing.T) {
	path := writeTemp(t, "sigs.json", `[
		{"msg": "x", "sig_r": 42, "sig_s": 43}
	]`)

	records, err := ReadSignaturesJSON(path, "msg", "", "sig_r", "sig_s")
	if err != nil {
		t.Fatalf("ReadSignaturesJSON: %v", err)
	}
	if records[0].Sig.R.Cmp(big.NewInt(42)) != 0 || records[0].Sig.S.Cmp(big.NewInt(43)) != 0 {
		t.Errorf("custom fields not honored: r=%v s=%v", records[0].Sig.R, records[0].Sig.S)
	}
}

func TestReadSignaturesJSONErrors(t *testing.T) {
	missing := writeTemp(t, "sigs.json", `[{"message": "x", "s": "1"}]`)
	if _, err := ReadSignaturesJSON(missing, "", "", "", ""); err == nil {
		t.Error("missing r field accepted")
	}

	noBody := writeTemp(t, "sigs2.json", `[{"r": "1", "s": "2"}]`)
	if _, err := ReadSignaturesJSON(noBody, "", "", "", ""); err == nil {
		t.Error("record without message or digest accepted")
	}

	garbage := writeTemp(t, "sigs3.json", `not json`)
	if _, err := ReadSignaturesJSON(garbage, "", "", "", ""); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestReadSignaturesCSV(t *testing.T) {
	path := writeTemp(t, "sigs.csv", "message,r,s\nhello,123,456\nworld,0xab,0xcd\n")

	records, err := ReadSignaturesCSV(path, "", "", "", "")
	if err != nil {
		t.Fatalf("ReadSignaturesCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if string(records[0].Message) != "hello" || records[0].Sig.R.Cmp(big.NewInt(123)) != 0 {
		t.Errorf("record 0 = %q r=%v", records[0].Message, records[0].Sig.R)
	}
	if records[1].Sig.R.Cmp(big.NewInt(0xab)) != 0 || records[1].Sig.S.Cmp(big.NewInt(0xcd)) != 0 {
		t.Errorf("record 1 r=%v s=%v", records[1].Sig.R, records[1].Sig.S)
	}
}

func TestReadSignaturesCSVMissingColumns(t *testing.T) {
	path := writeTemp(t, "sigs.csv", "message,r\nhello,123\n")
	if _, err := ReadSignaturesCSV(path, "", "", "", ""); err == nil {
		t.Error("missing s column accepted")
	}
}

func TestVerifyBatch(t *testing.T) {
	engine := dsa.New()
	key := testKey(t)

	good := []byte("good message")
	sig, err := engine.Sign(key, good)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	digest := sha1.Sum(good)
	records := []*Record{
		{Message: good, Sig: sig},
		{Message: []byte("tampered"), Sig: sig},
		{Digest: digest[:], Sig: sig},
	}

	verdicts, err := VerifyBatch(engine, key.Public(), records)
	if err != nil {
		t.Fatalf("VerifyBatch: %v", err)
	}
	want := []bool{true, false, true}
	for i := range want {
		if verdicts[i] != want[i] {
			t.Errorf("record %d verdict = %v, want %v", i, verdicts[i], want[i])
		}
	}
}

func TestVerifyBatchUsageError(t *testing.T) {
	engine := dsa.New()
	key := testKey(t)

	records := []*Record{{Message: []byte("x"), Sig: nil}}
	if _, err := VerifyBatch(engine, key.Public(), records); err == nil {
		t.Error("nil signature did not abort the batch")
	}
}
