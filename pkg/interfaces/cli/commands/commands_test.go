package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/quotes/internal/config"
	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/infrastructure/repositories/jsonfile"
	testhelpers "github.com/vsinha/quotes/pkg/infrastructure/testing"
)

func testSettings(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		DataDir:     dir,
		QuotesFile:  filepath.Join(dir, "quotes.json"),
		BundledFile: filepath.Join(dir, "bundled", "quotes.json"),
		Backend:     config.BackendJSON,
		SQLitePath:  filepath.Join(dir, "quotes.db"),
		NamePrefix:  "ARCS",
	}
}

func runQuotes(t *testing.T, settings config.Config, args ...string) (string, error) {
	t.Helper()
	repo, closeRepo, err := OpenRepository(settings, nil)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	defer closeRepo()

	var out bytes.Buffer
	cmd := NewQuoteCommand(settings, repo, &out, nil).WithClock(testhelpers.FixedClock())
	err = cmd.Execute(context.Background(), args)
	return out.String(), err
}

func TestQuoteCommand_AddAutoCreatesAndSaves(t *testing.T) {
	settings := testSettings(t)

	out, err := runQuotes(t, settings, "add", "-part", "P1", "-qty", "2", "-unit", "3.25", "-source", "Acme")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Added item 0 to ARCS 2025-12-01") {
		t.Errorf("Unexpected output %q", out)
	}

	quotes, err := jsonfile.ReadCollection(settings.QuotesFile)
	if err != nil {
		t.Fatalf("Expected quotes file to be written: %v", err)
	}
	if len(quotes) != 1 || len(quotes[0].Items) != 1 {
		t.Fatalf("Expected one quote with one item, got %+v", quotes)
	}
	if quotes[0].Items[0].LineTotal.Fixed() != "6.50" {
		t.Errorf("Expected line total 6.50, got %s", quotes[0].Items[0].LineTotal.Fixed())
	}

	out, err = runQuotes(t, settings, "total")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "Total: $6.50" {
		t.Errorf("Unexpected total output %q", out)
	}
}

func TestQuoteCommand_AddWarnsOnCoercion(t *testing.T) {
	settings := testSettings(t)

	out, err := runQuotes(t, settings, "add", "-part", "P1", "-qty", "many")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Warning: invalid quantity, using default") {
		t.Errorf("Expected coercion warning, got %q", out)
	}
}

func TestQuoteCommand_EditDeleteErrors(t *testing.T) {
	settings := testSettings(t)
	if _, err := runQuotes(t, settings, "add", "-part", "P1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := runQuotes(t, settings, "edit", "-index", "4", "-part", "X"); !errors.Is(err, entities.ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
	if _, err := runQuotes(t, settings, "delete", "-index", "4"); !errors.Is(err, entities.ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
	if _, err := runQuotes(t, settings, "delete", "-index", "0"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	quotes, _ := jsonfile.ReadCollection(settings.QuotesFile)
	if len(quotes) != 1 || len(quotes[0].Items) != 0 {
		t.Errorf("Expected the item to be deleted, got %+v", quotes)
	}
}

func TestQuoteCommand_Suppliers(t *testing.T) {
	settings := testSettings(t)
	runQuotes(t, settings, "add", "-part", "A", "-source", "Acme")
	runQuotes(t, settings, "add", "-id", "1764601445", "-part", "B", "-source", "Globex")

	out, err := runQuotes(t, settings, "suppliers", "-set", "Acme=true")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Acme") || !strings.Contains(out, "Globex") {
		t.Errorf("Expected supplier listing, got %q", out)
	}

	quotes, _ := jsonfile.ReadCollection(settings.QuotesFile)
	for _, it := range quotes[0].Items {
		if it.TaxExempt != (it.Source == "Acme") {
			t.Errorf("Unexpected tax exempt flag on %+v", it)
		}
	}

	if _, err := runQuotes(t, settings, "suppliers", "-set", "Initech=true"); err == nil {
		t.Error("Expected error for supplier not on the quote")
	}
	if _, err := runQuotes(t, settings, "suppliers", "-set", "Acme"); err == nil {
		t.Error("Expected error for malformed -set value")
	}
}

func TestQuoteCommand_ImportExportRemove(t *testing.T) {
	settings := testSettings(t)
	runQuotes(t, settings, "new", "-po", "PO-1")

	exportPath := filepath.Join(t.TempDir(), "quote.json")
	if _, err := runQuotes(t, settings, "export", "-out", exportPath); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out, err := runQuotes(t, settings, "import", "-file", exportPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Imported quote 'ARCS 2025-12-01 [PO:PO-1]'") {
		t.Errorf("Unexpected import output %q", out)
	}

	quotes, _ := jsonfile.ReadCollection(settings.QuotesFile)
	if len(quotes) != 2 || quotes[0].ID == quotes[1].ID {
		t.Fatalf("Expected two quotes with distinct ids, got %+v", quotes)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte(`{"name": "no items"}`), 0644)
	if _, err := runQuotes(t, settings, "import", "-file", bad); !errors.Is(err, entities.ErrInvalidQuotePayload) {
		t.Errorf("Expected ErrInvalidQuotePayload, got %v", err)
	}

	if _, err := runQuotes(t, settings, "remove", "-id", "1764601445"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	quotes, _ = jsonfile.ReadCollection(settings.QuotesFile)
	if len(quotes) != 1 {
		t.Errorf("Expected one quote after remove, got %d", len(quotes))
	}
}

func TestQuoteCommand_ImportWarnsOnCoercedItems(t *testing.T) {
	settings := testSettings(t)
	payload := filepath.Join(t.TempDir(), "lenient.json")
	os.WriteFile(payload, []byte(`{"items":[{"quantity":2,"unit_cost":5},{"quantity":"abc","unit_cost":3,"line_total":99}]}`), 0644)

	out, err := runQuotes(t, settings, "import", "-file", payload)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Warning: item 2: invalid quantity, using default") {
		t.Errorf("Expected coercion warning, got %q", out)
	}

	quotes, _ := jsonfile.ReadCollection(settings.QuotesFile)
	if len(quotes) != 1 || quotes[0].Total().Fixed() != "13.00" {
		t.Errorf("Expected recomputed total 13.00, got %+v", quotes)
	}
}

func TestQuoteCommand_PrintAndShow(t *testing.T) {
	settings := testSettings(t)
	runQuotes(t, settings, "add", "-part", "P<1>", "-unit", "5")

	out, err := runQuotes(t, settings, "print")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "P&lt;1&gt;") || !strings.Contains(out, "Total: $5.00") {
		t.Errorf("Unexpected HTML %q", out)
	}

	htmlPath := filepath.Join(t.TempDir(), "quote.html")
	if _, err := runQuotes(t, settings, "print", "-out", htmlPath); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := os.Stat(htmlPath); err != nil {
		t.Errorf("Expected HTML file, got %v", err)
	}

	out, err = runQuotes(t, settings, "show")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Total: $5.00") {
		t.Errorf("Unexpected show output %q", out)
	}
}

func TestQuoteCommand_EmptyStore(t *testing.T) {
	settings := testSettings(t)

	if _, err := runQuotes(t, settings, "show"); !errors.Is(err, entities.ErrQuoteNotFound) {
		t.Errorf("Expected ErrQuoteNotFound, got %v", err)
	}
	if _, err := runQuotes(t, settings, "po", "-value", ""); !errors.Is(err, entities.ErrNoCurrentQuote) {
		t.Errorf("Expected ErrNoCurrentQuote, got %v", err)
	}
	if _, err := runQuotes(t, settings, "bogus"); err == nil {
		t.Error("Expected error for unknown command")
	}
}

func TestQuoteCommand_SQLiteBackend(t *testing.T) {
	settings := testSettings(t)
	settings.Backend = config.BackendSQLite

	if _, err := runQuotes(t, settings, "add", "-part", "P1", "-unit", "2"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out, err := runQuotes(t, settings, "list")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "1764601445") {
		t.Errorf("Expected stored quote in listing, got %q", out)
	}
	if _, err := os.Stat(settings.QuotesFile); !os.IsNotExist(err) {
		t.Error("Expected sqlite backend not to write the JSON file")
	}
}

func writeQuotes(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(testhelpers.BuildSampleQuotes())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func runPurchaseList(t *testing.T, cfg PurchaseListConfig, settings config.Config) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewPurchaseListCommand(cfg, settings, &out, nil).Execute(context.Background())
	return out.String(), err
}

func TestPurchaseListCommand_NoFile(t *testing.T) {
	settings := testSettings(t)

	out, err := runPurchaseList(t, PurchaseListConfig{}, settings)
	if !errors.Is(err, ErrNoQuotesFile) {
		t.Fatalf("Expected ErrNoQuotesFile, got %v", err)
	}
	if !strings.Contains(out, "No quotes file found") {
		t.Errorf("Unexpected output %q", out)
	}

	out, err = runPurchaseList(t, PurchaseListConfig{File: filepath.Join(settings.DataDir, "missing.json")}, settings)
	if !errors.Is(err, ErrNoQuotesFile) {
		t.Fatalf("Expected ErrNoQuotesFile, got %v", err)
	}
	if !strings.Contains(out, "Warning: requested file") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestPurchaseListCommand_FallsBackToBundled(t *testing.T) {
	settings := testSettings(t)
	writeQuotes(t, settings.BundledFile)

	out, err := runPurchaseList(t, PurchaseListConfig{Format: "text"}, settings)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "ARCS 2023-11-14 [PO:PO-1001]   [PO: PO-1001]") {
		t.Errorf("Expected per-quote report, got:\n%s", out)
	}
}

func TestPurchaseListCommand_AggregateJSON(t *testing.T) {
	settings := testSettings(t)
	writeQuotes(t, settings.QuotesFile)

	out, err := runPurchaseList(t, PurchaseListConfig{Aggregate: true, Format: "json"}, settings)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var groups []struct {
		Quote string `json:"quote"`
		Parts []struct {
			PartNumber string `json:"part_number"`
			Source     string `json:"source"`
			Quantity   int    `json:"quantity"`
		} `json:"parts"`
	}
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}
	if len(groups) != 1 || groups[0].Quote != "All quotes" {
		t.Fatalf("Expected one combined group, got %+v", groups)
	}
	if groups[0].Parts[0].PartNumber != "BOLT-M6" || groups[0].Parts[0].Quantity != 150 {
		t.Errorf("Unexpected first part %+v", groups[0].Parts[0])
	}
}

func TestPurchaseListCommand_MalformedFileIsEmpty(t *testing.T) {
	settings := testSettings(t)
	path := filepath.Join(settings.DataDir, "broken.json")
	os.WriteFile(path, []byte("{not json"), 0644)

	out, err := runPurchaseList(t, PurchaseListConfig{File: path}, settings)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "No quotes to show." {
		t.Errorf("Unexpected output %q", out)
	}
}
