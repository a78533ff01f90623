package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

func sampleAccounts() []models.Account {
	ts := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	return []models.Account{
		{
			ID:        "0b6f7c1e-2f0a-4f0e-9a37-8f4c7f6b1d01",
			Name:      "Checking",
			Balance:   models.MustParseMoney("700.10"),
			CreatedAt: ts,
			Transactions: []models.TransactionRecord{
				{Kind: models.KindDeposit, Amount: models.MustParseMoney("1000.10"), Timestamp: ts},
				{Kind: models.KindTransferOut, Amount: models.MustParseMoney("300"), CounterpartyID: "5d1f1c2a-7a3c-4a4e-8a0f-3e9b2f1c6d02", Timestamp: ts.Add(time.Minute)},
			},
		},
		{
			ID:        "5d1f1c2a-7a3c-4a4e-8a0f-3e9b2f1c6d02",
			Name:      "Savings",
			Balance:   models.MustParseMoney("300"),
			CreatedAt: ts,
			Transactions: []models.TransactionRecord{
				{Kind: models.KindTransferIn, Amount: models.MustParseMoney("300"), CounterpartyID: "0b6f7c1e-2f0a-4f0e-9a37-8f4c7f6b1d01", Timestamp: ts.Add(time.Minute)},
			},
		},
		{ID: "9c0a1b2c-3d4e-4f50-8a6b-7c8d9e0f1a03", Name: "Empty", CreatedAt: ts},
	}
}

func TestJSONSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")
	g := NewGateway(path)

	want := sampleAccounts()
	if err := g.Save(ctx, want); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	got, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSavedDocumentHasNoFloats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := NewGateway(path).Save(context.Background(), sampleAccounts()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"balance_minor": 70010`) {
		t.Fatalf("balance not stored as minor units:\n%s", data)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	g := NewGateway(filepath.Join(t.TempDir(), "absent.json"))
	accounts, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("accounts=%v want none", accounts)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	valid := `{"version":1,"accounts":[{"id":"a","name":"A","balance_minor":5,"transactions":[{"kind":"deposit","amount_minor":5}]}]}`
	for name, payload := range map[string]string{
		"garbage":          "CORRUPTED_JSON",
		"empty file":       "",
		"truncated":        valid[:len(valid)/2],
		"null":             "null",
		"no version":       `{"accounts":[]}`,
		"trailing data":    valid + `{}`,
		"float balance":    strings.Replace(valid, `"balance_minor":5`, `"balance_minor":0.05`, 1),
		"balance mismatch": strings.Replace(valid, `"balance_minor":5`, `"balance_minor":6`, 1),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.json")
			if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
				t.Fatal(err)
			}
			accounts, err := NewGateway(path).Load(context.Background())
			if !errors.Is(err, models.ErrCorruptState) {
				t.Fatalf("err=%v want ErrCorruptState", err)
			}
			if accounts != nil {
				t.Fatalf("corrupt load returned accounts: %v", accounts)
			}
			// the corrupt file is left for the operator
			data, _ := os.ReadFile(path)
			if string(data) != payload {
				t.Fatalf("corrupt file was modified")
			}
		})
	}
}

func TestSaveFailureKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	g := NewGateway(path)
	if err := g.Save(ctx, sampleAccounts()[:1]); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)

	// a directory where the target file should be makes the final rename fail
	blocked := NewGateway(filepath.Join(dir, "blocked"))
	if err := os.Mkdir(filepath.Join(dir, "blocked"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := blocked.Save(ctx, sampleAccounts()); !errors.Is(err, models.ErrPersistenceFailure) {
		t.Fatalf("err=%v want ErrPersistenceFailure", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temporary file %s left behind", e.Name())
		}
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("existing snapshot changed by an unrelated failed save")
	}
}

func TestSaveIntoMissingDirectory(t *testing.T) {
	g := NewGateway(filepath.Join(t.TempDir(), "no", "such", "dir", "ledger.json"))
	if err := g.Save(context.Background(), nil); !errors.Is(err, models.ErrPersistenceFailure) {
		t.Fatalf("err=%v want ErrPersistenceFailure", err)
	}
}

func TestQuarantine(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("CORRUPTED_JSON"), 0o600); err != nil {
		t.Fatal(err)
	}
	g := NewGateway(path)
	g.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }

	dest, err := g.Quarantine(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := path + ".corrupt-20260102T150405Z"; dest != want {
		t.Fatalf("dest=%s want %s", dest, want)
	}
	if data, err := os.ReadFile(dest); err != nil || string(data) != "CORRUPTED_JSON" {
		t.Fatalf("quarantined content=%q err=%v", data, err)
	}
	accounts, err := g.Load(ctx)
	if err != nil || len(accounts) != 0 {
		t.Fatalf("after quarantine Load=%v,%v want empty", accounts, err)
	}
}

func TestQuarantineKeepsEarlierBackups(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")
	g := NewGateway(path)
	g.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }

	var dests []string
	for _, payload := range []string{"FIRST-CORRUPT", "SECOND-CORRUPT", "THIRD-CORRUPT"} {
		if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
			t.Fatal(err)
		}
		dest, err := g.Quarantine(ctx)
		if err != nil {
			t.Fatalf("Quarantine err=%v", err)
		}
		dests = append(dests, dest)
	}

	base := path + ".corrupt-20260102T150405Z"
	want := []string{base, base + "-1", base + "-2"}
	if diff := cmp.Diff(want, dests); diff != "" {
		t.Fatalf("quarantine paths mismatch (-want +got):\n%s", diff)
	}
	for i, payload := range []string{"FIRST-CORRUPT", "SECOND-CORRUPT", "THIRD-CORRUPT"} {
		if data, err := os.ReadFile(dests[i]); err != nil || string(data) != payload {
			t.Fatalf("%s holds %q err=%v want %q", dests[i], data, err, payload)
		}
	}
}

func TestQuarantineMissingFile(t *testing.T) {
	g := NewGateway(filepath.Join(t.TempDir(), "ledger.json"))
	if _, err := g.Quarantine(context.Background()); !errors.Is(err, models.ErrPersistenceFailure) {
		t.Fatalf("err=%v want ErrPersistenceFailure", err)
	}
}

func TestSyncDir(t *testing.T) {
	if err := syncDir(t.TempDir()); err != nil {
		t.Fatalf("syncDir err=%v", err)
	}
	if runtime.GOOS != "windows" {
		if err := syncDir(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Fatal("syncDir on a missing directory succeeded")
		}
	}
}

func TestDefaultPath(t *testing.T) {
	if got := NewGateway("").Path(); got != DefaultFileName {
		t.Fatalf("Path=%s want %s", got, DefaultFileName)
	}
}
