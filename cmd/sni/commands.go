package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/sni"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve mempool pages over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := sni.New(siteConfig())
		defer app.Close()

		shutdown, err := sni.SetupTracing(ctx, "sni", app.Config.OTelEndpoint)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer flush(shutdown)

		slog.Info("serving", "addr", app.Config.Addr, "locales", app.Config.Locales)
		return app.Start(ctx)
	},
}

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Export the site as static files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app := sni.New(siteConfig())
		defer app.Close()

		shutdown, err := sni.SetupTracing(ctx, "sni", app.Config.OTelEndpoint)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer flush(shutdown)

		stats, err := app.Build(ctx)
		if err != nil {
			return err
		}
		slog.Info("build complete", "out", app.Config.OutDir,
			"posts", stats.Posts, "indexes", stats.Indexes, "assets", stats.Assets)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the markdown content tree into the SQLite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := siteConfig()
		app := sni.New(cfg)
		cfg = app.Config

		if viper.GetBool("check") {
			records, err := sni.NewImporter(nil, cfg).Load()
			if err != nil {
				return err
			}
			slog.Info("content tree is valid", "dir", cfg.ContentDir, "posts", len(records))
			return nil
		}

		store, err := sni.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := sni.NewImporter(store, cfg).Import(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("import complete", "dir", cfg.ContentDir, "db", cfg.DatabasePath, "posts", n)
		return nil
	},
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the (locale, slug) routes to pre-render",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := sni.New(siteConfig())
		defer app.Close()
		if err := app.Init(); err != nil {
			return err
		}
		params, err := app.Pages.StaticParams(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range params {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Locale, p.Slug)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sni version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sni %s\n", version)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	serveCmd.Flags().Bool("watch", false, "re-import the content tree on change")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("watch", serveCmd.Flags().Lookup("watch"))

	buildCmd.Flags().String("out", "", "output directory (default dist)")
	buildCmd.Flags().Int("concurrency", 0, "pages rendered in parallel (default 8)")
	viper.BindPFlag("out_dir", buildCmd.Flags().Lookup("out"))
	viper.BindPFlag("build_concurrency", buildCmd.Flags().Lookup("concurrency"))

	importCmd.Flags().String("dir", "", "content tree (default content/mempool)")
	importCmd.Flags().Bool("check", false, "validate the tree without writing")
	viper.BindPFlag("content_dir", importCmd.Flags().Lookup("dir"))
	viper.BindPFlag("check", importCmd.Flags().Lookup("check"))
}

func flush(shutdown func(context.Context) error) {
	if err := shutdown(context.Background()); err != nil {
		slog.Warn("flush traces", "error", err)
	}
}
