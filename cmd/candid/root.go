package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/candidhq/candid/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "candid",
	Short: "Candid is a mock interview engine",
	Long:  `Candid runs simulated multi-round interviews: it profiles a candidate, asks tailored questions, evaluates answers, and writes a closing report. Sessions suspend between questions and survive restarts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")
}

// newLogger builds the process logger from the persistent flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	levelStr, _ := cmd.Flags().GetString("log-level")
	level := logging.ParseLevel(levelStr)
	if asJSON, _ := cmd.Flags().GetBool("log-json"); asJSON {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}
