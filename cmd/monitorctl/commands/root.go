package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kolkov/monitor"
)

var ErrInvalidLogConfig = errors.New("invalid log configuration")

const (
	shortDesc = "Stress and diagnostic harness for the monitor library."
	longDesc  = `monitorctl exercises the monitor library (re-entrant lock plus condition
variables) under real contention and validates the goroutine-identity
machinery it depends on.

Scenarios fail loudly: any violation of mutual exclusion, wakeup delivery,
or re-entry depth restoration is reported and reflected in the exit code.
`
)

// NewRootCmd returns the monitorctl root command.
func NewRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:           "monitorctl",
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       monitor.Version,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log_format", "text", "Set the log format (text, logfmt, json)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLogConfig, err)
		}
		log.SetLevel(lvl)

		switch strings.ToLower(logFormat) {
		case "text":
			log.SetFormatter(log.TextFormatter)
		case "logfmt":
			log.SetFormatter(log.LogfmtFormatter)
		case "json":
			log.SetFormatter(log.JSONFormatter)
		default:
			return fmt.Errorf("%w: unknown log format %q", ErrInvalidLogConfig, logFormat)
		}
		log.SetOutput(cc.ErrOrStderr())

		return nil
	}

	cmd.AddCommand(NewStressCmd())
	cmd.AddCommand(NewDoctorCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
