package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/afr-space/core/internal/app"
	"github.com/afr-space/core/internal/config"
	"github.com/afr-space/core/internal/database"
	"github.com/afr-space/core/internal/modules/user"
	"github.com/afr-space/core/internal/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "afr-server",
		Short:         "AFR Space research site server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Path to YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				if err := database.EnsureSchema(cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the admin user and a demo article",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withUsers(configPath, func(env cliEnv) error {
					return database.Seed(cmd.Context(), env.db, env.users, env.cfg.Seed, env.log)
				})
			},
		},
		newPasswdCmd(&configPath),
		&cobra.Command{
			Use:   "role <username> <admin|editor>",
			Short: "Change a user's role",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withUsers(configPath, func(env cliEnv) error {
					u, err := env.users.SetRole(cmd.Context(), args[0], args[1])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Username, u.Role)
					return nil
				})
			},
		},
	)
	return root
}

func newPasswdCmd(configPath *string) *cobra.Command {
	var plain string
	cmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Set a user's password",
		Long:  "Set a user's password. Without --password the new password is read from the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain == "" {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				plain = line
			}
			return withUsers(*configPath, func(env cliEnv) error {
				if err := env.users.SetPassword(cmd.Context(), args[0], plain); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&plain, "password", "", "new password")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.MustNew(cfg.LogDir(), cfg.IsDev())
	defer func() { _ = log.Sync() }()

	application, err := app.New(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:              application.Addr(),
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		application.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	application.Shutdown()
	if err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

// cliEnv carries what the maintenance commands need.
type cliEnv struct {
	cfg   *config.AppConfig
	db    *gorm.DB
	users *user.Service
	log   *zap.Logger
}

func withUsers(configPath string, fn func(cliEnv) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.MustNew(cfg.LogDir(), cfg.IsDev())
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg, true)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close(db)

	return fn(cliEnv{cfg: cfg, db: db, users: user.NewService(user.NewRepository(db)), log: log})
}
