package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/server/services"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, false, func(ctx context.Context, e *env) error {
				if err := e.rm.RunMigrations(ctx); err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			})
		},
	}
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove blobs that have no file record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, true, func(ctx context.Context, e *env) error {
				grace := e.cfg.SweepGracePeriod
				if cmd.Flags().Changed("grace") {
					grace, _ = cmd.Flags().GetDuration("grace")
				}

				removed, err := services.NewSweeper(e.rm, e.blobs, grace, 0, e.logger).Sweep(ctx)
				if err != nil {
					return fmt.Errorf("sweeping: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphan blob(s).\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().Duration("grace", 0, "skip blobs younger than this (defaults to the configured grace period)")
	return cmd
}

func newUserAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "useradd <name>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromStdin, _ := cmd.Flags().GetBool("password-stdin")

			var (
				password []byte
				err      error
			)
			if fromStdin {
				password, err = readLine(bufio.NewReader(cmd.InOrStdin()))
			} else {
				password, err = getPassword(cmd.ErrOrStderr())
			}
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			defer common.WipeByteArray(password)

			return withEnv(cmd, false, func(ctx context.Context, e *env) error {
				user, err := services.NewUserService(e.rm, e.cfg, e.logger).Register(ctx, args[0], string(password))
				switch {
				case errors.Is(err, common.ErrAlreadyExists):
					return fmt.Errorf("user %q already exists", args[0])
				case err != nil:
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s created.\n", user.Name)
				return nil
			})
		},
	}
	cmd.Flags().Bool("password-stdin", false, "read the password from the first line of stdin")
	return cmd
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the database answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, false, func(ctx context.Context, e *env) error {
				ok, elapsed := services.NewFileService(e.rm, nil, e.logger).Ping(ctx)
				if !ok {
					return errors.New("database is not available")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok (%s)\n", elapsed.Round(time.Millisecond))
				return nil
			})
		},
	}
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
