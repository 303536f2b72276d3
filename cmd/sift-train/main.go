// Sift-train builds a membership filter from a line-delimited text file and
// writes it to the filters directory for siftd to serve.
//
// Usage:
//
//	sift-train [flags] input.txt
//
// Flags:
//
//	-output-dir  Directory for filter files (default: "filters")
//	-rate        Target false-positive rate (default: 0.01)
//	-mode        Construction mode: bitset or xor (default: "bitset")
//	-format      Output format: json, json.zst, or sift (default: "json")
//	-exact       Retain the exact item list in the filter (always on for xor)
//
// Each non-blank line of the input file becomes one filter item. The filter
// is assigned a fresh UUID and written as <uuid>.<ext>.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/siftd/sift"
	"github.com/siftd/sift/registry"
)

func main() {
	dirFlag := flag.String("output-dir", "filters", "output directory for filter files")
	rateFlag := flag.Float64("rate", 0.01, "target false-positive rate in (0, 1)")
	modeFlag := flag.String("mode", "bitset", "construction mode: bitset or xor")
	formatFlag := flag.String("format", "json", "output format: json, json.zst, or sift")
	exactFlag := flag.Bool("exact", false, "retain the exact item list in the filter")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sift-train [flags] input.txt")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *dirFlag, *rateFlag, *modeFlag, *formatFlag, *exactFlag); err != nil {
		fmt.Fprintln(os.Stderr, "sift-train:", err)
		os.Exit(1)
	}
}

func run(input, outputDir string, rate float64, modeName, format string, exact bool) error {
	items, err := readLines(input)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no data found in %s", input)
	}

	opts := []sift.BuildOption{sift.WithRate(rate)}
	switch modeName {
	case "bitset":
		opts = append(opts, sift.WithMode(sift.ModeBitSet))
	case "xor":
		opts = append(opts, sift.WithMode(sift.ModeXORAccum))
	default:
		return fmt.Errorf("unknown mode %q", modeName)
	}
	if exact {
		opts = append(opts, sift.WithExactItems())
	}

	fmt.Printf("Building filter with %d entries...\n", len(items))
	filter, err := sift.Build(items, opts...)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	id := uuid.NewString()
	var path string
	switch format {
	case "sift":
		path = filepath.Join(outputDir, id+".sift")
		err = sift.WriteFile(path, filter)
	case "json", "json.zst":
		value, encErr := sift.Encode(filter)
		if encErr != nil {
			return encErr
		}
		path, err = registry.WriteEnvelope(outputDir, &registry.Envelope{
			UUID:       id,
			SourceFile: input,
			NumEntries: filter.Count(),
			FilterData: value,
		}, format == "json.zst")
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	stats, _ := sift.Describe(filter)
	fmt.Println("Filter created successfully!")
	fmt.Printf("UUID: %s\n", id)
	fmt.Printf("Output file: %s\n", path)
	fmt.Printf("Entries: %d (distinct of %d lines), table cells: %d, target rate: %g\n",
		filter.Count(), len(items), stats.FilterSize, stats.TargetRate)
	return nil
}

// readLines returns the non-blank, trimmed lines of path.
func readLines(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		items = append(items, []byte(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return items, nil
}
