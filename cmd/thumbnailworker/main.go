// Command thumbnailworker is the untrusted image decoder child process.
// It is never invoked directly by an operator: internal/thumbnail execs
// this binary as a subprocess for every decode, so that a crash in the
// decoder (a corrupt JPEG, a decompression bomb, a panic inside the
// image library) takes down only the child, never the pipeline.
//
// Protocol: the parent writes the raw image bytes to the child's stdin,
// and passes width, height, out_size and cache_path as positional
// arguments. On success the child writes exactly out_size-bounded bytes
// to cache_path+".pad" and exits 0. On any decode failure it writes the
// original bytes to cache_path+".failed" and exits 1.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"feedagg/internal/thumbnail"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 5 {
		fmt.Fprintln(os.Stderr, "usage: thumbnailworker <width> <height> <out_size> <cache_path>")
		return 2
	}

	width, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid width:", err)
		return 2
	}
	height, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid height:", err)
		return 2
	}
	outSize, err := strconv.Atoi(os.Args[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid out_size:", err)
		return 2
	}
	cachePath := os.Args[4]

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read stdin:", err)
		return 2
	}

	if err := thumbnail.DecodeResizeAndPad(input, width, height, outSize, cachePath); err != nil {
		fmt.Fprintln(os.Stderr, "decode failed:", err)
		if writeErr := os.WriteFile(cachePath+".failed", input, 0o644); writeErr != nil {
			fmt.Fprintln(os.Stderr, "write failure artifact:", writeErr)
		}
		return 1
	}
	return 0
}
