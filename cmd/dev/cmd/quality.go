package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func TestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run unit tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("unit tests", func() error { return test.Test() })
		},
	}
}

func LintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run linters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("lint", func() error { return test.Lint() })
		},
	}
}

// IntegrationTestCmd runs the tests that need a sensor attached to a real bus.
func IntegrationTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integration-test",
		Short: "Run hardware integration tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("integration tests", func() error { return test.Integ() })
		},
	}
}

func run(name string, step func() error) error {
	slog.Info("running", "step", name)
	err := step()
	if err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
