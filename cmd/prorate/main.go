/*
main.go - Batch redistribution CLI

PURPOSE:
  Runs one redistribution over a ledger CSV using a project-codes CSV for
  classification, and writes the reallocated ledger back out. This is the
  offline counterpart to POST /api/redistribute.

COMMAND-LINE FLAGS:
  -codes   Project codes CSV (Code, Project ID, Activity ID, Award ID,
           Description, ProRate, Include). Required.
  -in      Input ledger CSV. Defaults to stdin.
  -out     Output ledger CSV. Defaults to stdout.

EXIT STATUS:
  0  redistribution succeeded (warnings, if any, are logged)
  1  bad input or a fatal engine error

EXAMPLES:
  ./prorate -codes=codes.csv -in=march.csv -out=march_prorated.csv
  cat march.csv | ./prorate -codes=codes.csv > march_prorated.csv

SEE ALSO:
  - store/csvio/csvio.go: CSV schemas
  - prorate/pipeline.go: The engine
*/
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/tidewater/timesheet-engine/prorate"
	"github.com/tidewater/timesheet-engine/store/csvio"
	"github.com/tidewater/timesheet-engine/timesheet"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("prorate: ")

	codesPath := flag.String("codes", "", "project codes CSV (required)")
	inPath := flag.String("in", "", "input ledger CSV (default stdin)")
	outPath := flag.String("out", "", "output ledger CSV (default stdout)")
	flag.Parse()

	if *codesPath == "" {
		log.Fatal("-codes is required")
	}

	book, err := readCodeBook(*codesPath)
	if err != nil {
		log.Fatalf("reading codes: %v", err)
	}

	grid, err := readLedger(*inPath)
	if err != nil {
		log.Fatalf("reading ledger: %v", err)
	}

	engine := prorate.NewEngine(prorate.Options{})
	result, err := engine.Run(prorate.Input{
		Grid:         grid,
		ProrateFlags: book.ProrateFlags(),
		Selection:    book.Selection(),
	})
	if err != nil {
		log.Fatalf("redistribution failed: %v", err)
	}

	for _, w := range result.Warnings {
		log.Printf("warning: %s", w)
	}
	s := result.Summary
	log.Printf("redistributed %d virtual row(s) onto %d target(s): %d synthesized, %d cell(s) repaired",
		s.VirtualRows, s.TargetRows, s.SynthesizedRows, s.CellsRepaired)

	if err := writeLedger(*outPath, result.Grid); err != nil {
		log.Fatalf("writing ledger: %v", err)
	}
}

func readCodeBook(path string) (*timesheet.CodeBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csvio.ReadCodeBook(f)
}

func readLedger(path string) (*prorate.Grid, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return csvio.ReadLedger(r)
}

func writeLedger(path string, g *prorate.Grid) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return csvio.WriteLedger(w, g)
}
