package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"custodia/internal/config"
)

func runGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var hash string
	var outPath string
	fs.StringVar(&hash, "hash", "", "content hash")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if hash == "" {
		fmt.Fprintln(os.Stderr, "get requires --hash")
		return 1
	}

	rt, err := newRuntime(config.FromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}
	payload, err := rt.invoke("", "QueryEvidence", hash)
	if err != nil {
		return fail(err)
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func runActive(args []string) int {
	fs := flag.NewFlagSet("active", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var hash string
	var outPath string
	fs.StringVar(&hash, "hash", "", "content hash")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if hash == "" {
		fmt.Fprintln(os.Stderr, "active requires --hash")
		return 1
	}

	rt, err := newRuntime(config.FromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}
	payload, err := rt.invoke("", "IsEvidenceActive", hash)
	if err != nil {
		return fail(err)
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var bookmark string
	var limit int
	var all bool
	var outPath string
	fs.StringVar(&bookmark, "bookmark", "", "continuation bookmark from a prior page")
	fs.IntVar(&limit, "limit", 0, "page size (default PAGE_LIMIT)")
	fs.BoolVar(&all, "all", false, "enumerate the whole table in one call")
	fs.StringVar(&outPath, "out", "", "output path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.FromEnv()
	rt, err := newRuntime(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}

	var payload []byte
	if all {
		payload, err = rt.invoke("", "QueryAllEvidence")
	} else {
		if limit <= 0 {
			limit = cfg.PageLimit
		}
		payload, err = rt.invoke("", "QueryEvidencePage", bookmark, strconv.Itoa(limit))
	}
	if err != nil {
		return fail(err)
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
