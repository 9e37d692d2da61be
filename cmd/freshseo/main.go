package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/scsmash3r/fresh-seo/config"
	"github.com/scsmash3r/fresh-seo/internal/api"
	"github.com/scsmash3r/fresh-seo/internal/manifest"
	"github.com/scsmash3r/fresh-seo/internal/sitemap"
	"github.com/scsmash3r/fresh-seo/internal/storage"
	"github.com/scsmash3r/fresh-seo/internal/utils"
)

var (
	cfgFile string
	verbose bool

	// Filesystem used for manifests and output; swapped in tests.
	appFs = afero.NewOsFs()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "freshseo",
		Short: "Generate sitemap.xml for a Fresh application",
		Long: `freshseo builds a sitemap from the route manifest of a Fresh
application, applies the add/set/remove overrides from the config file or
the override store, and prints, saves or serves the result.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	root.PersistentFlags().String("url", "", "Site base URL (overrides site.url)")
	root.PersistentFlags().String("manifest", "", "Manifest file or routes directory (overrides sitemap.manifest)")

	root.AddCommand(newGenerateCmd(), newSaveCmd(), newServeCmd(), newInspectCmd())
	return root
}

// app bundles what every command needs.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	manifest *manifest.Manifest
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if u, _ := cmd.Flags().GetString("url"); u != "" {
		cfg.Site.URL = u
	}
	if m, _ := cmd.Flags().GetString("manifest"); m != "" {
		cfg.Sitemap.Manifest = m
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: verbose,
		LogDir:  cfg.Log.Dir,
		Name:    "freshseo",
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	m, err := manifest.Open(appFs, cfg.Sitemap.Manifest)
	if err != nil {
		logger.Close()
		return nil, err
	}
	logger.Debug().Str("manifest", cfg.Sitemap.Manifest).Int("entries", len(m.Routes)).Msg("Manifest loaded")

	return &app{cfg: cfg, logger: logger, manifest: m}, nil
}

// build returns a context with the configured overrides applied.
func (a *app) build() *sitemap.Context {
	sm := sitemap.New(a.cfg.BaseURL(), a.manifest,
		sitemap.WithLogger(a.logger),
		sitemap.WithFs(appFs),
		sitemap.WithIgnore(a.cfg.Sitemap.Ignore...),
	)
	for _, o := range a.cfg.Sitemap.Overrides {
		sm.Apply(o)
	}
	return sm
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print the sitemap to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.logger.Close()

			_, err = io.WriteString(cmd.OutOrStdout(), a.build().Generate()+"\n")
			return err
		},
	}
}

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Write sitemap.xml into the static directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.logger.Close()

			if dir, _ := cmd.Flags().GetString("static"); dir != "" {
				a.cfg.Sitemap.StaticDir = dir
			}

			sm := a.build()
			sm.Save(a.cfg.Sitemap.StaticDir)
			a.logger.Info().Str("dir", a.cfg.Sitemap.StaticDir).Int("routes", len(sm.Routes())).Msg("Sitemap generated")
			return nil
		},
	}
	cmd.Flags().String("static", "", "Static directory (overrides sitemap.staticdir)")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /sitemap.xml and the override API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.logger.Close()

			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				a.cfg.Server.Port = port
			}

			var store storage.Store
			if a.cfg.Database.URL != "" {
				store, err = storage.New(a.cfg.Database.Driver, a.cfg.Database.URL)
				if err != nil {
					return fmt.Errorf("failed to initialize storage: %w", err)
				}
				defer store.Close()

				if err := store.Initialize(); err != nil {
					return fmt.Errorf("failed to initialize database tables: %w", err)
				}
			}

			server := api.NewServer(api.Options{
				Port:      a.cfg.Server.Port,
				BaseURL:   a.cfg.BaseURL(),
				Manifest:  a.manifest,
				Overrides: a.cfg.Sitemap.Overrides,
				StaticDir: a.cfg.Sitemap.StaticDir,
				Ignore:    a.cfg.Sitemap.Ignore,
				Store:     store,
				Logger:    a.logger,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			return waitForShutdown(a.logger, server, errCh)
		},
	}
	cmd.Flags().Int("port", 0, "Listen port (overrides server.port)")
	return cmd
}

func waitForShutdown(logger *utils.Logger, server *api.Server, errCh <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		return nil
	case <-sigChan:
	}

	logger.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	logger.Info().Msg("Server shut down gracefully")
	return nil
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file|url>",
		Short: "List the entries of an existing sitemap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client := &http.Client{Timeout: 30 * time.Second}
			doc, err := sitemap.Load(ctx, client, appFs, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total URLs found: %d\n", len(doc.URLs))
			for _, u := range doc.URLs {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", u.Loc, u.LastMod, u.ChangeFreq, u.Priority)
			}
			return nil
		},
	}
}
