// Command filestorectl runs maintenance tasks against a file storage
// deployment: migrations, orphan sweeps, account creation and health checks.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/filestorage/internal/logging"
	"github.com/dmitrijs2005/filestorage/internal/server/blobstore"
	"github.com/dmitrijs2005/filestorage/internal/server/config"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// env holds what every command needs. The caller must defer env.Close().
type env struct {
	cfg    *config.Config
	logger logging.Logger
	rm     repomanager.RepositoryManager
	blobs  blobstore.Store
}

// openEnv reads the config and opens the database and, when withBlobs is
// set, the blob store.
func openEnv(ctx context.Context, configPath string, withBlobs bool, stderr io.Writer) (*env, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	logger, err := logging.New(stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	rm, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	e := &env{cfg: cfg, logger: logger, rm: rm}
	if withBlobs {
		blobs, err := blobstore.NewFromConfig(ctx, cfg)
		if err != nil {
			rm.Close()
			return nil, fmt.Errorf("opening blob store: %w", err)
		}
		e.blobs = blobs
	}
	return e, nil
}

func (e *env) Close() error {
	return e.rm.Close()
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "filestorectl",
		Short:         "File storage administration",
		SilenceUsage:  true,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (.json or .toml)")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newUserAddCmd())
	rootCmd.AddCommand(newPingCmd())

	return rootCmd
}

// withEnv opens the environment for cmd and runs fn with it.
func withEnv(cmd *cobra.Command, withBlobs bool, fn func(ctx context.Context, e *env) error) error {
	configPath, _ := cmd.Flags().GetString("config")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := openEnv(ctx, configPath, withBlobs, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	return fn(ctx, e)
}
