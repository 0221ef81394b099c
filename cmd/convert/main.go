// Command convert performs a one-off conversion against a historical rates
// dataset, with both fallback policies enabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/currency-api/internal/config"
	"github.com/ahmethakanbesel/currency-api/internal/ingest"
	"github.com/ahmethakanbesel/currency-api/internal/rate"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "convert:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var (
		to      = fs.String("to", "EUR", "target currency")
		dateStr = fs.String("date", "", "date of rate (YYYY-MM-DD), default is the source currency's last known date")
		file    = fs.String("file", "", "dataset file (.csv or .zip); the ECB history is fetched when empty")
		base    = fs.String("base", "EUR", "base currency of the dataset")
		verbose = fs.Bool("verbose", false, "list available currencies and their date ranges")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: convert [flags] AMOUNT CURRENCY")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("expected AMOUNT and CURRENCY arguments")
	}

	amount, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", fs.Arg(0))
	}
	from := strings.ToUpper(fs.Arg(1))

	var source ingest.Source
	if *file != "" {
		source = ingest.FileSource{Path: *file}
	} else {
		source = ingest.NewHTTPSource(config.DefaultDatasetURL)
	}

	rows, err := ingest.Load(context.Background(), source)
	if err != nil {
		return err
	}
	table := rate.NewTable(*base, rows)
	conv := rate.NewConverter(table,
		rate.WithWrongDateFallback(),
		rate.WithMissingRateFallback(),
	)

	if *verbose {
		printCurrencies(out, table)
	}

	if !table.Has(from) {
		return fmt.Errorf("%s is not a supported currency, use -verbose to list them", from)
	}

	var date time.Time
	if *dateStr != "" {
		date, err = time.Parse(time.DateOnly, *dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *dateStr)
		}
	} else if b, ok := table.Bounds(from); ok {
		date = b.Last
	}

	converted, err := conv.Convert(amount, from, *to, date)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%.3f %s = %.3f %s on %s\n",
		amount, from, converted, *to, date.Format(time.DateOnly))
	return nil
}

func printCurrencies(out io.Writer, table *rate.Table) {
	codes := table.Currencies()
	fmt.Fprintf(out, "%d available currencies:\n", len(codes))
	for i := 0; i < len(codes); i += 10 {
		end := min(i+10, len(codes))
		fmt.Fprintln(out, strings.Join(codes[i:end], " "))
	}
	fmt.Fprintln(out)

	byRange := append([]string(nil), codes...)
	sort.SliceStable(byRange, func(i, j int) bool {
		bi, _ := table.Bounds(byRange[i])
		bj, _ := table.Bounds(byRange[j])
		if !bi.First.Equal(bj.First) {
			return bi.First.Before(bj.First)
		}
		return bi.Last.After(bj.Last)
	})
	for _, code := range byRange {
		b, _ := table.Bounds(code)
		days := 1 + int(b.Last.Sub(b.First)/(24*time.Hour))
		fmt.Fprintf(out, "%s: from %s to %s (%d days)\n",
			code, b.First.Format(time.DateOnly), b.Last.Format(time.DateOnly), days)
	}
	fmt.Fprintln(out)
}
