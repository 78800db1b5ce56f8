package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/server"
	"github.com/matzehuels/heatmap/pkg/storage"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Layouts created through the API are kept in the store selected by
store.backend: memory (default), file (one JSON file per layout in store.dir)
or mongo (store.mongo_uri and store.database). Renders are cached in the
backend selected by cache.backend; use redis when running several replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.bindFlags(cmd, keyServerAddr, keyStoreBackend, keyStoreDir); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().String("addr", server.DefaultAddr, "listen address")
	cmd.Flags().String("backend", storeMemory, "layout store: memory, file, mongo")
	cmd.Flags().String("dir", "", "layout directory for the file store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api"), c.Logger)

	store, err := c.openStore(ctx)
	if err != nil {
		_ = runner.Close()
		return err
	}

	srv := server.New(server.Config{
		Runner: runner,
		Store:  store,
		Logger: c.Logger.WithPrefix("http"),
	})
	defer func() {
		if err := srv.Close(); err != nil {
			c.Logger.Warn("close server", "err", err)
		}
	}()

	addr := c.config.GetString(keyServerAddr)
	printSuccess("Serving on %s", addr)
	printDetail("store: %s", c.config.GetString(keyStoreBackend))
	return srv.ListenAndServe(ctx, addr)
}

// openStore opens the layout store selected by store.backend.
func (c *CLI) openStore(ctx context.Context) (storage.Store, error) {
	switch backend := c.config.GetString(keyStoreBackend); backend {
	case storeMemory, "":
		return storage.NewMemoryStore(), nil
	case storeFile:
		dir := c.config.GetString(keyStoreDir)
		if dir == "" {
			dataDir, err := xdgDir("XDG_DATA_HOME", ".local/share")
			if err != nil {
				return nil, fmt.Errorf("get data dir: %w", err)
			}
			dir = filepath.Join(dataDir, "layouts")
		}
		return storage.NewFileStore(dir)
	case storeMongo:
		uri := c.config.GetString(keyStoreMongoURI)
		if uri == "" {
			return nil, fmt.Errorf("store.backend is mongo but store.mongo_uri is not set")
		}
		return storage.NewMongoStore(ctx, uri, c.config.GetString(keyStoreDatabase), "")
	default:
		return nil, fmt.Errorf("unknown store backend %q (must be memory, file or mongo)", backend)
	}
}
