// dbhealth verifies the local database is reachable and prints the stored
// aggregates, optionally exporting the spreadsheet report.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/export"
	"github.com/DAN-MYK/Deb/internal/repository"
)

func main() {
	reportPath := flag.String("report", "", "write the XLSX report to this path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	db, err := repository.Open(cfg.DBPath(), nil)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Printf("ERROR: closing db: %v", cerr)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Println("DB health: OK")

	acts := repository.NewActRepository(db, nil)
	payments := repository.NewPaymentRepository(db, nil)

	actSums, err := acts.Summary(ctx)
	if err != nil {
		log.Fatalf("act summary: %v", err)
	}
	log.Printf("act groups: %d", len(actSums))
	for _, s := range actSums {
		log.Printf("- %s %s: %.2f (%d)", s.Company, s.Period, s.Total, s.Count)
	}

	paySums, err := payments.Summary(ctx)
	if err != nil {
		log.Fatalf("payment summary: %v", err)
	}
	log.Printf("payment groups: %d", len(paySums))
	for _, s := range paySums {
		log.Printf("- %s %s: %.2f (%d)", s.Company, s.Period, s.Total, s.Count)
	}

	if *reportPath != "" {
		report := export.NewReport(acts, payments, nil)
		if err := report.WriteXLSX(ctx, *reportPath); err != nil {
			log.Fatalf("writing report: %v", err)
		}
		log.Printf("report written: %s", *reportPath)
	}
}
