package main

import (
	"flag"
	"fmt"
	"os"

	"custodia/internal/config"
)

func runExpire(args []string) int {
	fs := flag.NewFlagSet("expire", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var hash string
	var principal string
	var outPath string
	fs.StringVar(&hash, "hash", "", "content hash")
	fs.StringVar(&principal, "principal", "", "invoking principal (default CUSTODIA_PRINCIPAL)")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if hash == "" {
		fmt.Fprintln(os.Stderr, "expire requires --hash")
		return 1
	}

	rt, err := newRuntime(config.FromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}
	payload, err := rt.invoke(principal, "DeleteExpiredEvidence", hash)
	if err != nil {
		return fail(err)
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
