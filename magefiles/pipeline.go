//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// run executes the built CLI binary with the given arguments.
func run(args ...string) error {
	bin := filepath.Join(binDir, binName)
	if _, err := os.Stat(bin); err != nil {
		return fmt.Errorf("binary %s not found: run 'mage build' first", bin)
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Ingest fetches the whitelisted sources into the evidence pool.
func Ingest() error {
	return run("ingest")
}

// Export writes the validated catalog to catalog/export/ideas.yaml.
func Export() error {
	return run("catalog", "export")
}
