package cli

import (
	"github.com/spf13/cobra"
)

var version = "2.0.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "ocrbench",
	Short:   "Benchmark harness for OCR API servers",
	Version: version,
	Long: `ocrbench drives an OCR API server through repeatable workload
scenarios (latency, throughput, stress, stability, capacity) and reports
latency distributions, throughput, recognition yield, and accuracy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. It is called once, by main.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(initConfigCmd)
	RootCmd.AddCommand(validateCmd)
}
