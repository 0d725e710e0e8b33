// Command partsrecon compares an estimate document against a bill from the
// command line and prints the per-part status, optionally writing an XLSX
// report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/nkmathur/partsrecon/internal/common"
	"github.com/nkmathur/partsrecon/internal/export"
	"github.com/nkmathur/partsrecon/internal/extract"
	"github.com/nkmathur/partsrecon/internal/pipeline"
)

func main() {
	var (
		estimatePath = flag.String("estimate", "", "path to the estimate document (pdf or txt)")
		billPath     = flag.String("bill", "", "path to the bill document (pdf or txt)")
		profilePath  = flag.String("profile", "", "optional layout profile JSON")
		outPath      = flag.String("out", "", "optional XLSX output path")
		symbol       = flag.String("currency", "₹", "currency symbol for report amounts")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *estimatePath == "" || *billPath == "" {
		fmt.Fprintln(os.Stderr, "usage: partsrecon -estimate <file> -bill <file> [-profile <json>] [-out <xlsx>]")
		os.Exit(2)
	}

	profile := extract.DefaultProfile()
	if *profilePath != "" {
		p, err := extract.LoadProfile(*profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "layout profile: %v\n", err)
			os.Exit(1)
		}
		profile = p
	}

	extractor := extract.NewExtractor(profile, logger)
	comparator := pipeline.NewComparator(logger, nil, extractor, nil)

	result, err := comparator.Compare(context.Background(), *estimatePath, *billPath)
	if err != nil {
		if errors.Is(err, common.ErrNoUsableData) {
			fmt.Fprintln(os.Stderr, "one of the documents didn't contain usable data")
		} else {
			fmt.Fprintf(os.Stderr, "comparison failed: %v\n", err)
		}
		os.Exit(1)
	}

	exporter := export.NewService(*symbol, logger)

	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PART NUMBER\tDESCRIPTION\tAMOUNT ESTIMATE\tAMOUNT FINAL\tSTATUS")
	for _, r := range result.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Key,
			r.Description,
			exporter.FormatAmount(r.LeftAmount),
			exporter.FormatAmount(r.RightAmount),
			r.Status.Label(),
		)
	}
	tw.Flush()

	fmt.Printf("\n%d keys: %d increased, %d reduced, %d new, %d removed, %d same\n",
		len(result.Results),
		result.Buckets["increased"], result.Buckets["reduced"],
		result.Buckets["new"], result.Buckets["removed"],
		result.SameCount,
	)

	if *outPath != "" {
		data, err := exporter.ComparisonXLSX(result.Results)
		if err != nil {
			fmt.Fprintf(os.Stderr, "building workbook: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *outPath)
	}
}
