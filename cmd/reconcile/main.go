package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wakala/partner-recon/internal/config"
	"github.com/wakala/partner-recon/internal/domain"
	"github.com/wakala/partner-recon/internal/logger"
	"github.com/wakala/partner-recon/internal/normalize"
	"github.com/wakala/partner-recon/internal/reconciliation"
	"github.com/wakala/partner-recon/internal/repository"
)

func main() {
	var (
		statementPath  string
		settlementPath string
		outputDir      string
		runReconcile   bool
		configPath     string
		logLevel       string
	)
	flag.StringVar(&statementPath, "statement", "", "path to the statement file (CSV or Excel)")
	flag.StringVar(&statementPath, "s", "", "shorthand for -statement")
	flag.StringVar(&settlementPath, "settlement", "", "path to the settlement file (CSV or Excel)")
	flag.StringVar(&settlementPath, "t", "", "shorthand for -settlement")
	flag.StringVar(&outputDir, "output-dir", "./output", "directory for processed files")
	flag.StringVar(&outputDir, "o", "./output", "shorthand for -output-dir")
	flag.BoolVar(&runReconcile, "reconcile", false, "run reconciliation when both files are provided")
	flag.BoolVar(&runReconcile, "r", false, "shorthand for -reconcile")
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&logLevel, "log-level", "", "override log level")
	flag.Parse()

	if statementPath == "" && settlementPath == "" {
		fmt.Println("No files specified. Use -h for usage information.")
		fmt.Println()
		fmt.Println("Example usage:")
		fmt.Println("  reconcile -statement statement.csv")
		fmt.Println("  reconcile -settlement settlement.xlsx")
		fmt.Println("  reconcile -s statement.csv -t settlement.xlsx -o ./results")
		fmt.Println("  reconcile -s statement.csv -t settlement.xlsx -r")
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Logging, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	// The run ledger is optional for one-shot CLI use.
	var runs *repository.RunRepo
	if cfg.Database.Path != "" {
		if db, err := repository.InitDB(cfg.Database.Path); err != nil {
			log.Warn("run ledger unavailable", zap.Error(err))
		} else {
			defer db.Close()
			runs = repository.NewRunRepo(db)
		}
	}

	svc := reconciliation.NewService(runs, log.Named("reconciliation"))
	p := cfg.Params()

	if runReconcile && (statementPath == "" || settlementPath == "") {
		fmt.Println("Reconciliation requires both statement and settlement files.")
		fmt.Println("Use: reconcile -s statement.csv -t settlement.csv -r")
		os.Exit(1)
	}

	if runReconcile {
		reconcileBoth(svc, p, statementPath, settlementPath, outputDir)
		return
	}

	if statementPath != "" {
		section("Processing Statement File...")
		res, cols, err := svc.ProcessStatement(mustRead(statementPath), p.StatementRead, p.StatementOptions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error processing statement: %v\n", err)
			os.Exit(1)
		}
		printStatement(res)
		save(outputDir, "processed_statement.csv", func(f *os.File) error {
			return reconciliation.WriteProcessedCSV(f, res, cols)
		})
	}

	if settlementPath != "" {
		section("Processing Settlement File...")
		res, cols, err := svc.ProcessSettlement(mustRead(settlementPath), p.SettlementRead, p.SettlementSchema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error processing settlement: %v\n", err)
			os.Exit(1)
		}
		printSettlement(res)
		save(outputDir, "processed_settlement.csv", func(f *os.File) error {
			return reconciliation.WriteProcessedCSV(f, res, cols)
		})
	}
}

func reconcileBoth(svc *reconciliation.Service, p reconciliation.Params, statementPath, settlementPath, outputDir string) {
	section("Running Reconciliation...")

	result, err := svc.Reconcile(mustRead(statementPath), mustRead(settlementPath), p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during reconciliation: %v\n", err)
		os.Exit(1)
	}

	printStatement(result.Statement)
	printSettlement(result.Settlement)
	save(outputDir, "processed_statement.csv", func(f *os.File) error {
		return reconciliation.WriteProcessedCSV(f, result.Statement, result.StatementColumns)
	})
	save(outputDir, "processed_settlement.csv", func(f *os.File) error {
		return reconciliation.WriteProcessedCSV(f, result.Settlement, result.SettlementColumns)
	})

	if err := reconciliation.WriteReport(os.Stdout, result.Summary); err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
	}

	categories := []struct {
		name    string
		records []*domain.JoinedRecord
	}{
		{"category_5_matched.csv", result.MatchedBoth},
		{"category_6_settlement_only.csv", result.SettlementOnly},
		{"category_7_statement_only.csv", result.StatementOnly},
	}
	for _, c := range categories {
		records := c.records
		save(outputDir, c.name, func(f *os.File) error {
			return reconciliation.WriteCategoryCSV(f, records, result.StatementColumns, result.SettlementColumns)
		})
	}

	fmt.Printf("\nSaved category files to: %s\n", outputDir)
}

func section(title string) {
	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n%s\n%s\n", line, title, line)
}

func printStatement(res *normalize.Result) {
	fmt.Printf("Loaded %d statement records\n", res.Stats.Records)
	fmt.Println("\nPartner Pin Extraction:")
	fmt.Printf("  - Found: %d\n", res.Stats.Records-res.Stats.MissingIdentifier)
	fmt.Printf("  - Missing: %d\n", res.Stats.MissingIdentifier)
	printTags(res.Stats)
}

func printSettlement(res *normalize.Result) {
	fmt.Printf("Loaded %d settlement records\n", res.Stats.Records)

	if min, max, mean := normalize.AmountStats(res.Records); min != nil {
		fmt.Println("\nEstimate Amount (USD) Stats:")
		fmt.Printf("  - Min: $%s\n", min.StringFixed(2))
		fmt.Printf("  - Max: $%s\n", max.StringFixed(2))
		fmt.Printf("  - Mean: $%s\n", mean.StringFixed(2))
	}
	if res.Stats.RowErrors > 0 {
		fmt.Printf("\nRow errors: %d (see processed file for reasons)\n", res.Stats.RowErrors)
	}
	printTags(res.Stats)
}

func printTags(stats domain.SourceStats) {
	fmt.Println("\nReconciliation Tags:")
	fmt.Printf("  - Should Reconcile: %d\n", stats.Eligible)
	fmt.Printf("  - Should Not Reconcile: %d\n", stats.Records-stats.Eligible)
}

func mustRead(path string) reconciliation.File {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}
	return reconciliation.File{Name: filepath.Base(path), Data: data}
}

func save(dir, name string, write func(*os.File) error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := write(f); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("\nSaved to: %s\n", path)
}
