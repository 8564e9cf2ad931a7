// Command generate produces the sample statement and settlement extracts
// under testdata/, shaped like the real portal exports: banner rows above
// the header, a junk first data row on the statement side, and a seeded
// mix of anomalies (missing PINs, duplicates, zero rates, variances).
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
)

type entry struct {
	pin    string
	txType string
	desc   string
	amount float64
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	entries := buildStatementEntries(rng)
	writeStatementCSV(filepath.Join(baseDir, "statement.csv"), entries)
	fmt.Printf("Generated %d statement rows -> statement.csv\n", len(entries))

	n := writeSettlementCSV(rng, filepath.Join(baseDir, "settlement.csv"), entries)
	fmt.Printf("Generated %d settlement rows -> settlement.csv\n", n)

	fmt.Println("Test data generation complete.")
}

func buildStatementEntries(rng *rand.Rand) []entry {
	descTemplates := []string{
		"Wallet payout ref %s confirmed",
		"Cash pickup %s",
		"Remittance transfer %s branch NBO-04",
		"Order %s settled via partner channel",
	}

	var entries []entry
	for i := 0; i < 55; i++ {
		pin := fmt.Sprintf("%011d", 30000000000+rng.Int63n(9999999999))
		amount := math.Round((5+rng.Float64()*495)*100) / 100

		txType := "Payment"
		switch roll := rng.Float64(); {
		case roll < 0.10:
			txType = "Transfer"
		case roll < 0.18:
			txType = "Dollar Received"
		case roll < 0.24:
			txType = "Cancel"
		}

		desc := fmt.Sprintf(descTemplates[rng.Intn(len(descTemplates))], pin)
		entries = append(entries, entry{pin: pin, txType: txType, desc: desc, amount: amount})
	}

	// Rows with no extractable PIN: free text only, or digit runs of the
	// wrong length.
	entries = append(entries,
		entry{txType: "Payment", desc: "Monthly service charge", amount: 12.50},
		entry{txType: "Payment", desc: "Card settlement acct 4098211734562 pending", amount: 89.90},
	)

	// A duplicate group where only the Cancel row should stay eligible.
	dupPin := entries[3].pin
	entries[3].txType = "Payment"
	entries = append(entries,
		entry{pin: dupPin, txType: "Cancel", desc: "Reversal for order " + dupPin, amount: entries[3].amount},
		entry{pin: dupPin, txType: "Refund", desc: "Refund issued " + dupPin, amount: entries[3].amount},
	)

	// Two Cancel rows sharing a PIN: survives tagging, warned at join.
	ambPin := entries[7].pin
	entries = append(entries,
		entry{pin: ambPin, txType: "Cancel", desc: "Duplicate reversal " + ambPin, amount: entries[7].amount},
	)
	entries[7].txType = "Cancel"

	return entries
}

func writeStatementCSV(path string, entries []entry) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Nine banner rows above the header, as the portal exports them.
	banner := [][]string{
		{"Wakala Partner Services Ltd"},
		{"Daily Statement Export"},
		{""},
		{"Period:", "2024-01-08", "to", "2024-01-21"},
		{"Branch:", "ALL"},
		{"Currency:", "USD"},
		{""},
		{"CONFIDENTIAL - internal use only"},
		{""},
	}
	for _, row := range banner {
		w.Write(row)
	}

	w.Write([]string{"Date", "Branch", "Type", "PQsTrOptOons", "Settle.Amt", "Balance"})
	// The template repeats a separator as the first data row.
	w.Write([]string{"----------", "------", "----", "-----------", "----------", "-------"})

	balance := 120000.00
	for i, e := range entries {
		date := fmt.Sprintf("2024-01-%02d", 8+i%14)
		branch := fmt.Sprintf("BR%02d", 1+i%6)
		amount := ""
		if e.amount > 0 {
			amount = fmt.Sprintf("%.2f", e.amount)
			balance -= e.amount
		}
		w.Write([]string{date, branch, e.txType, e.desc, amount, fmt.Sprintf("%.2f", balance)})
	}
}

func writeSettlementCSV(rng *rand.Rand, path string, entries []entry) int {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Two banner rows above the header.
	w.Write([]string{"Partner Settlement Extract"})
	w.Write([]string{"Generated:", "2024-01-21T18:00:00Z"})
	w.Write([]string{"Partner_Pin", "Type", "PayoutRoundAmt", "APIRate", "Currency", "SettleDate"})

	count := 0
	write := func(pin, txType string, payout, rate float64, date string) {
		w.Write([]string{
			pin, txType,
			fmt.Sprintf("%.2f", payout),
			fmt.Sprintf("%.4f", rate),
			"KES", date,
		})
		count++
	}

	seen := make(map[string]bool)
	for i, e := range entries {
		if e.pin == "" || seen[e.pin] {
			continue
		}
		seen[e.pin] = true

		roll := rng.Float64()
		// 10% missing from the settlement side entirely.
		if roll > 0.90 {
			continue
		}

		rate := 128 + rng.Float64()*4
		usd := e.amount
		// 15% small variance against the statement amount.
		if roll > 0.75 && roll <= 0.90 {
			usd = math.Round(usd*(0.97+rng.Float64()*0.06)*100) / 100
		}
		payout := math.Round(usd*rate*100) / 100
		date := fmt.Sprintf("2024-01-%02d", 9+i%13)

		write(e.pin, e.txType, payout, rate, date)
	}

	// Settlement-only rows: PINs the statement never saw.
	for i := 0; i < 4; i++ {
		pin := fmt.Sprintf("%011d", 70000000000+rng.Int63n(9999999999))
		rate := 128 + rng.Float64()*4
		payout := math.Round((20+rng.Float64()*300)*rate*100) / 100
		write(pin, "Payment", payout, rate, "2024-01-18")
	}

	// One zero-rate row: excluded with a row error, never crashes a run.
	write(fmt.Sprintf("%011d", 70000000000+rng.Int63n(9999999999)), "Payment", 1500.00, 0, "2024-01-19")

	// One malformed PIN: too short to be matchable.
	write("123456789", "Payment", 900.00, 129.5, "2024-01-19")

	return count
}

func findTestdataDir() string {
	candidates := []string{
		"testdata",
		"./testdata",
		filepath.Join("..", "testdata"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
