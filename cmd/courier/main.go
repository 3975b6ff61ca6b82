package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kode4food/courier"
)

type options struct {
	configPath string
	envFiles   []string
	logLevel   string
	mode       string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   courier.Name,
		Short: "Dispatch flow state machine",
		Long: `Courier drives the customer and driver flows of a dispatch
session. It tracks the active step, follows job events pushed by the
dispatch server and exposes an inspector API.`,
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a session with the inspector API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(opts)
		},
	}
	flags := serveCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"YAML configuration file")
	flags.StringSliceVar(&opts.envFiles, "env-file", []string{".env"},
		"dotenv files loaded before the environment")
	flags.StringVar(&opts.logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	flags.StringVar(&opts.mode, "mode", "",
		"runtime mode (development, production)")

	cmd.AddCommand(serveCmd, stepsCmd(), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n",
				courier.Name, courier.Version)
		},
	}
}
