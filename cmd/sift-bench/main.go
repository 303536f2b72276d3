// Sift-bench measures filter build time, query throughput, and observed
// false-positive rate.
//
// Usage:
//
//	go run ./cmd/sift-bench -items 1000000 -rate 0.01 -mode bitset
//
// Flags:
//
//	-items   Number of items to build from (default: 1,000,000)
//	-probes  Number of absent items to probe (default: 1,000,000)
//	-rate    Target false-positive rate (default: 0.01)
//	-mode    Construction mode: bitset or xor (default: "bitset")
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/siftd/sift"
)

func main() {
	itemsFlag := flag.Int("items", 1_000_000, "number of items to build from")
	probesFlag := flag.Int("probes", 1_000_000, "number of absent items to probe")
	rateFlag := flag.Float64("rate", 0.01, "target false-positive rate")
	modeFlag := flag.String("mode", "bitset", "construction mode: bitset or xor")
	flag.Parse()

	mode := sift.ModeBitSet
	switch *modeFlag {
	case "bitset":
	case "xor":
		mode = sift.ModeXORAccum
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *modeFlag)
		os.Exit(2)
	}

	// Members and probes draw from disjoint keyspaces so every probe is a
	// guaranteed non-member.
	items := make([][]byte, *itemsFlag)
	for i := range items {
		items[i] = fmt.Appendf(nil, "member-%016d", i)
	}

	start := time.Now()
	filter, err := sift.Build(items, sift.WithRate(*rateFlag), sift.WithMode(mode))
	if err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}
	buildTime := time.Since(start)

	stats, _ := sift.Describe(filter)
	fmt.Printf("build: %d items in %v (%.0f items/s)\n",
		filter.Count(), buildTime, float64(filter.Count())/buildTime.Seconds())
	fmt.Printf("table: %d cells, target rate %g\n", stats.FilterSize, stats.TargetRate)

	var positives int
	start = time.Now()
	for i := range *probesFlag {
		if filter.Contains(fmt.Appendf(nil, "absent-%016d", i)) {
			positives++
		}
	}
	queryTime := time.Since(start)

	fmt.Printf("query: %d probes in %v (%.0f probes/s)\n",
		*probesFlag, queryTime, float64(*probesFlag)/queryTime.Seconds())
	fmt.Printf("false positives: %d of %d (rate %.5f)\n",
		positives, *probesFlag, float64(positives)/float64(*probesFlag))
}
