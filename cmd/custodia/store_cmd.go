package main

import (
	"flag"
	"fmt"
	"os"

	"custodia/internal/config"
)

func runStore(args []string) int {
	fs := flag.NewFlagSet("store", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var hash string
	var retention string
	var metadata string
	var metadataFile string
	var principal string
	var outPath string
	fs.StringVar(&hash, "hash", "", "content hash (lowercase hex)")
	fs.StringVar(&retention, "retention", "", "retention period in seconds")
	fs.StringVar(&metadata, "metadata", "", "metadata JSON object")
	fs.StringVar(&metadataFile, "metadata-file", "", "path to metadata JSON file")
	fs.StringVar(&principal, "principal", "", "invoking principal (default CUSTODIA_PRINCIPAL)")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if hash == "" || retention == "" {
		fmt.Fprintln(os.Stderr, "store requires --hash and --retention")
		return 1
	}
	if metadata != "" && metadataFile != "" {
		fmt.Fprintln(os.Stderr, "store accepts --metadata or --metadata-file, not both")
		return 1
	}
	if metadataFile != "" {
		raw, err := os.ReadFile(metadataFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read metadata: %v\n", err)
			return 1
		}
		metadata = string(raw)
	}

	rt, err := newRuntime(config.FromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}

	invokeArgs := []string{hash, retention}
	if metadata != "" {
		invokeArgs = append(invokeArgs, metadata)
	}
	payload, err := rt.invoke(principal, "StoreEvidence", invokeArgs...)
	if err != nil {
		return fail(err)
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
