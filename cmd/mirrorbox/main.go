package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/mirrorbox/mirrorbox/internal/client"
	"github.com/mirrorbox/mirrorbox/internal/client/config"
	"github.com/mirrorbox/mirrorbox/internal/disksdk"
	"github.com/mirrorbox/mirrorbox/internal/logging"
	"github.com/mirrorbox/mirrorbox/internal/utils"
	"github.com/mirrorbox/mirrorbox/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	home, _           = os.UserHomeDir()
	defaultLogDir     = filepath.Join(home, ".mirrorbox", "logs")
	defaultEnvFile    = ".env"
	defaultPeriodSecs = "60"
)

var cyan = color.New(color.FgHiCyan, color.Bold).SprintFunc()

var rootCmd = &cobra.Command{
	Use:     "mirrorbox",
	Short:   "One-way folder mirror for Yandex Disk",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			Token:        viper.GetString("access_token"),
			RemoteFolder: viper.GetString("remote_folder_name"),
			LocalDir:     viper.GetString("local_folder_path"),
			BaseURL:      viper.GetString("api_base_url"),
			LogDir:       viper.GetString("log_dir"),
		}

		logFile, err := logging.Setup(cfg.LogDir)
		if err != nil {
			return fmt.Errorf("setup logging: %w", err)
		}
		defer logFile.Close()

		cmd.SilenceUsage = true

		if cfg.LocalDir != "" {
			if cfg.LocalDir, err = utils.ResolvePath(cfg.LocalDir); err != nil {
				return fmt.Errorf("resolve local folder path: %w", err)
			}
		}

		cfg.SyncPeriod, err = config.PeriodFromSeconds(viper.GetString("sync_period_seconds"))
		if err != nil {
			// config mistakes are logged and end the process with status 0
			slog.Error("invalid sync period, expected a positive integer of seconds",
				"value", viper.GetString("sync_period_seconds"))
			return nil
		}

		if err := cfg.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			return nil
		}

		showHeader()

		c, err := client.New(cfg)
		if err != nil {
			return err
		}

		defer slog.Info("mirrorbox stopped")
		return c.Start(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("env", "e", defaultEnvFile, "dotenv file with configuration")
	rootCmd.Flags().StringP("local", "l", "", "local folder to mirror")
	rootCmd.Flags().StringP("remote", "r", "", "remote folder on the disk")
	rootCmd.Flags().StringP("period", "p", defaultPeriodSecs, "seconds between sync cycles")
	rootCmd.Flags().StringP("server", "s", disksdk.DefaultBaseURL, "disk API base URL")
	rootCmd.Flags().String("logdir", defaultLogDir, "directory for the rotating log file")
}

func main() {
	// stdout-only logging until the log directory is known
	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:   slog.LevelInfo,
		NoColor: !isatty.IsTerminal(os.Stdout.Fd()),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	// dotenv first, so AutomaticEnv picks the values up
	envFile, _ := cmd.Flags().GetString("env")
	if err := godotenv.Load(envFile); err != nil {
		// a missing default .env is fine, an explicitly requested one is not
		if cmd.Flag("env").Changed || !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %q: %w", envFile, err)
		}
	}

	viper.BindPFlag("local_folder_path", cmd.Flags().Lookup("local"))
	viper.BindPFlag("remote_folder_name", cmd.Flags().Lookup("remote"))
	viper.BindPFlag("sync_period_seconds", cmd.Flags().Lookup("period"))
	viper.BindPFlag("api_base_url", cmd.Flags().Lookup("server"))
	viper.BindPFlag("log_dir", cmd.Flags().Lookup("logdir"))

	viper.SetDefault("log_dir", defaultLogDir)
	viper.SetDefault("api_base_url", disksdk.DefaultBaseURL)

	// ACCESS_TOKEN, SYNC_PERIOD_SECONDS, LOCAL_FOLDER_PATH,
	// REMOTE_FOLDER_NAME, API_BASE_URL, LOG_DIR
	viper.AutomaticEnv()

	return nil
}

func showHeader() {
	fmt.Println(cyan(version.AppName + " " + version.Short()))
}
