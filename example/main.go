package main

import (
	"fmt"
	"os"

	"github.com/vsinha/quotes/pkg/application/services/editor"
	"github.com/vsinha/quotes/pkg/application/services/purchasing"
	"github.com/vsinha/quotes/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/quotes/pkg/interfaces/cli/output"
)

func main() {
	repo := memory.NewQuoteRepository()
	session := editor.NewSession(repo)

	// First add starts a quote
	session.AddItem(editor.ItemInput{
		PartNumber:  "NOZZLE-A",
		Description: "Injector nozzle",
		Quantity:    "12",
		UnitCost:    "4.75",
		ListPrice:   "7.00",
		Source:      "Acme",
	})
	session.AddItem(editor.ItemInput{
		PartNumber:  "GASKET-9",
		Description: "Copper gasket",
		Quantity:    "40",
		UnitCost:    "0.35",
		ListPrice:   "0.60",
		Source:      "Globex",
	})
	session.AddItem(editor.ItemInput{
		PartNumber: "NOZZLE-A",
		Quantity:   "6",
		UnitCost:   "4.50",
		ListPrice:  "7.00",
		Source:     "Acme",
	})
	session.SetPONumber("PO-2048")

	// Acme parts are bought tax exempt; the policy change saves the quote
	if err := session.SetSupplierPolicy(map[string]bool{"Acme": true, "Globex": false}); err != nil {
		fmt.Printf("❌ Save failed: %v\n", err)
		return
	}

	doc, err := session.Document()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	output.WriteQuoteTable(os.Stdout, doc)
	fmt.Printf("Suggested export name: %s\n\n", session.SuggestedExportName())

	report := purchasing.NewAggregator().Build(repo.LoadQuotes(), purchasing.PerQuote)
	if err := output.WritePurchaseReport(os.Stdout, report, output.FormatText); err != nil {
		fmt.Printf("❌ %v\n", err)
	}
}
