// Command dffctl is an operator tool for inspecting and validating the
// cluster configuration document of a dff deployment, grounded on
// petal-labs-petalflow's cmd/petalflow CLI shape: a cobra root command
// with subcommands, a persistent --verbose flag, and ExitError-style exit
// codes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "dffctl",
	Short:        "Inspect and validate dff cluster configuration documents",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("dffctl version %s\n", version))

	rootCmd.AddCommand(newValidateCmd())
}

// ExitError carries a specific process exit code, mirroring petalflow
// cli.ExitError.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }
