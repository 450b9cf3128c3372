package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vsinha/quotes/pkg/domain/entities"
)

func sampleQuote(id entities.QuoteID, name string) *entities.Quote {
	return &entities.Quote{
		ID:        id,
		Name:      name,
		CreatedAt: "2024-05-06T07:08:09.000000+00:00",
		PONumber:  "PO-1",
		Notes:     "line one\nline two",
		Items: []entities.LineItem{
			entities.NewLineItem("X", "widget", 3, entities.MustMoney("4.10"), entities.MustMoney("6.00"), "Acme", true),
			entities.NewLineItem("", "", 0, entities.Zero, entities.Zero, "", false),
		},
		Suppliers: map[string]entities.SupplierPolicy{"Acme": {TaxExempt: true}},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "data", "quotes.json"), "", nil)
	q := sampleQuote(42, "Saved Quote")

	if err := store.SaveQuotes([]*entities.Quote{q}); err != nil {
		t.Fatalf("SaveQuotes failed: %v", err)
	}

	loaded := store.LoadQuotes()
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 quote, got %d", len(loaded))
	}
	if !loaded[0].Equal(q) {
		t.Errorf("Round trip mismatch:\nsaved  %+v\nloaded %+v", q, loaded[0])
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "data"))
	if len(entries) != 1 {
		t.Errorf("Expected only the quotes file to remain, got %d entries", len(entries))
	}
}

func TestStore_PrefersUserThenBundled(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "user.json")
	bundledPath := filepath.Join(dir, "bundled.json")

	if err := WriteJSONAtomic(bundledPath, []*entities.Quote{sampleQuote(10, "bundled")}); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSONAtomic(userPath, []*entities.Quote{sampleQuote(20, "user")}); err != nil {
		t.Fatal(err)
	}

	store := NewStore(userPath, bundledPath, nil)
	out := store.LoadQuotes()
	if len(out) != 1 || out[0].Name != "user" {
		t.Fatalf("Expected user data, got %+v", out)
	}

	if err := os.Remove(userPath); err != nil {
		t.Fatal(err)
	}
	out = store.LoadQuotes()
	if len(out) != 1 || out[0].Name != "bundled" {
		t.Fatalf("Expected bundled data after removing user file, got %+v", out)
	}

	if err := os.WriteFile(userPath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	out = store.LoadQuotes()
	if len(out) != 1 || out[0].Name != "bundled" {
		t.Fatalf("Expected bundled data for malformed user file, got %+v", out)
	}

	if err := os.Remove(bundledPath); err != nil {
		t.Fatal(err)
	}
	out = store.LoadQuotes()
	if out == nil || len(out) != 0 {
		t.Fatalf("Expected empty collection when nothing is readable, got %+v", out)
	}
}

func TestStore_SaveFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zapcore.ErrorLevel)
	store := NewStore(filepath.Join(blocker, "quotes.json"), "", zap.New(core))

	err := store.SaveQuotes([]*entities.Quote{sampleQuote(1, "a")})
	if err == nil {
		t.Fatal("Expected error when data directory cannot be created")
	}
	if logs.FilterMessage("failed to save quotes").Len() != 1 {
		t.Errorf("Expected failure to be logged, got %v", logs.All())
	}
}

func TestStore_SaveKeepsPreviousFileOnEncodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes.json")
	if err := WriteJSONAtomic(path, []*entities.Quote{sampleQuote(1, "first")}); err != nil {
		t.Fatal(err)
	}

	if err := WriteJSONAtomic(path, map[string]interface{}{"bad": make(chan int)}); err == nil {
		t.Fatal("Expected encode failure")
	}

	quotes, err := ReadCollection(path)
	if err != nil || len(quotes) != 1 || quotes[0].Name != "first" {
		t.Errorf("Expected previous file intact, got %+v (err=%v)", quotes, err)
	}
}

func TestReadCollection_DropsNullEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.json")
	content := `[null, {"id": 5, "name": "n", "items": null}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	quotes, err := ReadCollection(path)
	if err != nil {
		t.Fatalf("ReadCollection failed: %v", err)
	}
	if len(quotes) != 1 || quotes[0].ID != 5 || quotes[0].Items == nil {
		t.Errorf("Unexpected result %+v", quotes)
	}
}

func TestExportQuote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	q := sampleQuote(9, "exported")

	if err := ExportQuote(path, q); err != nil {
		t.Fatalf("ExportQuote failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "{") || !strings.Contains(string(data), `"items"`) {
		t.Errorf("Expected a single quote object, got %s", data)
	}
}
