// Command reportcheck validates a published run report against the
// pipeline's size invariant out-of-process, for use as a post-deploy
// gate independent of the aggregator binary itself.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"feedagg/internal/domain"
	"feedagg/internal/report"
)

func main() {
	path := "feed/report.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reportcheck: open %s: %v\n", path, err)
		os.Exit(2)
	}
	defer f.Close()

	var r domain.RunReport
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		fmt.Fprintf(os.Stderr, "reportcheck: decode %s: %v\n", path, err)
		os.Exit(2)
	}

	if err := report.Check(r); err != nil {
		fmt.Fprintf(os.Stderr, "reportcheck: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("reportcheck: ok (%d feeds)\n", len(r.FeedStats))
}
