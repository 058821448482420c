package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/shared/config"
	"contractguard-web/internal/shared/telemetry"
)

var (
	// Global flags
	verbose     bool
	profilePath string
	apiBase     string
	token       string
	jsonOutput  bool

	cfg config.Config
	api *auditapi.Client
)

var rootCmd = &cobra.Command{
	Use:   "contractguard",
	Short: "Run and review ContractGuard revenue leakage audits",
	Long: `contractguard drives the audit service from a terminal.

Upload a vendor's contracts and billing exports, follow the audit through its
processing stages, review the dashboard for one or more jobs and ask the
assistant about a finished audit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.DisableStacktrace = true
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		telemetry.SetLogger(logger)

		cfg = config.Load()
		profile, err := config.LoadProfile(profilePath)
		if err != nil {
			return err
		}
		if cfg, err = profile.Apply(cfg); err != nil {
			return fmt.Errorf("profile %s: %w", profilePath, err)
		}
		if apiBase != "" {
			cfg.APIBase = apiBase
		}
		if token == "" {
			token = profile.Token
		}
		api = auditapi.NewClient(cfg.APIBase, cfg.APITimeout)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", defaultProfilePath(), "Path to the TOML profile")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "Audit service base URL (overrides profile and env)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CONTRACTGUARD_TOKEN"), "Bearer token forwarded to the audit service")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(auditCmd, statusCmd, dashboardCmd, chatCmd, themeCmd)
}

func defaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "contractguard.toml"
	}
	return filepath.Join(dir, "contractguard", "profile.toml")
}

// commandContext is cancelled on interrupt and carries the bearer token.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return auditapi.WithBearerToken(ctx, token), cancel
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
