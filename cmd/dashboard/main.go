package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-employee/internal/client"
	"go-employee/internal/dashboard"
	"go-employee/internal/dashboard/tui"
	"go-employee/internal/demoauth"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	apiURL      string
	storagePath string
	startPath   string
	logFile     string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Terminal dashboard for the Employee Management API",
	Long: `dashboard browses, searches and edits employees through the REST API.

The employee pages sit behind a demo login: any valid email and a password of
six or more characters will do. The token is kept in the storage file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logFile == "" {
			return nil
		}
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.Named("dashboard")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), client.DefaultTimeout)
		defer cancel()

		h, err := client.NewEmployees(newClient()).Health(ctx)
		if err != nil {
			logger.Error("health check failed", zap.String("api_url", apiURL), zap.Error(err))
			return err
		}
		logger.Info("health check", zap.String("status", h.Status), zap.Float64("uptime", h.Uptime))
		fmt.Fprintf(cmd.OutOrStdout(), "%s (up %s)\n", h.Status, time.Duration(h.Uptime*float64(time.Second)).Round(time.Second))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored demo token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := demoauth.NewStore(storagePath).Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func newClient() *client.HTTPClient {
	return client.NewHTTPClient(apiURL, demoauth.NewStore(storagePath))
}

func runDashboard() error {
	store := demoauth.NewStore(storagePath)
	api := client.NewEmployees(client.NewHTTPClient(apiURL, store))

	var program *tea.Program
	dash := dashboard.New(api, dashboard.WithOnChange(func() {
		if program != nil {
			program.Send(tui.RefreshMsg{})
		}
	}))
	defer dash.Close()

	program = tea.NewProgram(tui.New(dash, demoauth.NewGuard(store), startPath), tea.WithAltScreen())
	logger.Info("dashboard started", zap.String("api_url", apiURL), zap.String("storage", store.Path()))

	if _, err := program.Run(); err != nil {
		logger.Error("dashboard stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func defaultAPIURL() string {
	if v := os.Getenv("EMPLOYEE_API_URL"); v != "" {
		return v
	}
	return client.DefaultBaseURL
}

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "API base URL (or set EMPLOYEE_API_URL env)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", demoauth.DefaultPath(), "File holding the demo auth token")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (default: no logs)")
	rootCmd.Flags().StringVar(&startPath, "path", demoauth.PathHome, "Page to open: /, /login, /employees")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(logoutCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
