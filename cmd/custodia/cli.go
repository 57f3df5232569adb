package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "store":
		return runStore(args[2:])
	case "active":
		return runActive(args[2:])
	case "expire":
		return runExpire(args[2:])
	case "get":
		return runGet(args[2:])
	case "list":
		return runList(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "custodia"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s store --hash <hex> --retention <seconds> [--metadata <json>|--metadata-file <file>] [--principal <id>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s active --hash <hex> [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s expire --hash <hex> [--principal <id>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s get --hash <hex> [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s list [--bookmark <key>] [--limit <n>] [--all] [--out <file>]\n", name)
}
