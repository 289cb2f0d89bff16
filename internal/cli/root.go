package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"leave-portal/internal/app"
	"leave-portal/internal/bootstrap"
	"leave-portal/internal/config"
	"leave-portal/internal/shared/apperror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagServer   string
	flagLogLevel string

	portal *app.App
)

// defaultServer returns the API base URL, checking LEAVE_API_URL first.
func defaultServer() string {
	if s := os.Getenv("LEAVE_API_URL"); s != "" {
		return s
	}
	return "http://localhost:8080/api"
}

// NewRootCmd creates the root cobra command for leavectl.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leavectl",
		Short: "Leave management from the terminal",
		Long:  "leavectl signs in to the leave-management API and files, reviews and administers leave requests.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			apperror.Init()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.APIBaseURL = strings.TrimRight(flagServer, "/")
			cfg.LogLevel = flagLogLevel

			logger, err := bootstrap.NewLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			// PersistentPostRun is skipped when a command fails.
			if portal != nil {
				portal.Close()
			}
			portal, err = app.BuildApp(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if portal != nil {
				portal.Close()
				_ = portal.Logger.Sync()
				portal = nil
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Leave API base URL (or LEAVE_API_URL env)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newRegisterCmd(),
		newLeavesCmd(),
		newLeaveTypesCmd(),
	)

	return root
}

// Describe renders err for the terminal, listing field messages of a
// validation error one per line.
func Describe(err error) string {
	appErr, ok := apperror.As(err)
	if !ok {
		return err.Error()
	}
	if len(appErr.Fields) == 0 {
		return appErr.Message
	}
	keys := make([]string, 0, len(appErr.Fields))
	for k := range appErr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(appErr.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, appErr.Fields[k])
	}
	return b.String()
}
