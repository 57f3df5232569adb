package main

import (
	"fmt"
	"os"

	"custodia/internal/domain"
)

func writeOutput(path string, payload []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(payload); err != nil {
			return err
		}
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "%s: %v\n", domain.KindOf(err), err)
	return 1
}
