package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit status: 1 for a
// bare invocation, 255 for configuration or fatal errors, 0 otherwise.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, "Usage: ")
		fmt.Fprintln(stdout, usageHint)
		return 1
	}

	cfg := &Config{}
	cmd := NewRootCommand(cfg, func(cfg *Config) error {
		console := cfg.NewConsole(stdout)
		_, err := NewProcessor(cfg, console).Run()
		return err
	})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "\nError: %v\n\n", err)
		cmd.SetOut(stderr)
		_ = cmd.Help()
		return 255
	}

	return 0
}
