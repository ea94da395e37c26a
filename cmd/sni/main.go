// Command sni serves, exports and imports the mempool section.
//
// Configuration is read, in order of precedence, from flags, SNI_* environment
// variables (SNI_DATABASE_PATH, SNI_LOCALES=en,es ...) and an optional sni.yaml
// in the working directory or the file named by --config.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/sni"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sni",
	Short: "Serve and export the localized mempool section",
	Long: `sni renders the mempool posts of a multi-locale site.

Commands:
  sni import     Load the markdown content tree into the SQLite store
  sni serve      Serve pages over HTTP
  sni build      Export the site as static files
  sni params     List the (locale, slug) routes to pre-render`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log_level"))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sni.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	rootCmd.PersistentFlags().String("api", "", "remote content API base URL; replaces the database")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("content_api_url", rootCmd.PersistentFlags().Lookup("api"))

	rootCmd.AddCommand(serveCmd, buildCmd, importCmd, paramsCmd, versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("sni")
	}

	viper.SetEnvPrefix("SNI")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// siteConfig assembles the site configuration from viper. Zero values are
// filled by sni.New.
func siteConfig() sni.SiteConfig {
	return sni.SiteConfig{
		Name:             viper.GetString("name"),
		URL:              viper.GetString("url"),
		Description:      viper.GetString("description"),
		Addr:             viper.GetString("addr"),
		Locales:          stringList(viper.Get("locales")),
		DatabasePath:     viper.GetString("database_path"),
		ContentAPIURL:    viper.GetString("content_api_url"),
		ContentDir:       viper.GetString("content_dir"),
		ImagesDir:        viper.GetString("images_dir"),
		StaticDir:        viper.GetString("static_dir"),
		OutDir:           viper.GetString("out_dir"),
		PostCacheTTL:     viper.GetDuration("post_cache_ttl"),
		RequestTimeout:   viper.GetDuration("request_timeout"),
		RateLimit:        viper.GetInt("rate_limit"),
		RateWindow:       viper.GetDuration("rate_window"),
		BuildConcurrency: viper.GetInt("build_concurrency"),
		Watch:            viper.GetBool("watch"),
		OTelEndpoint:     viper.GetString("otel_endpoint"),
	}
}

// stringList accepts a YAML list or a comma-separated string.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return sni.FilterEmpty(strings.Split(t, ","))
	case []string:
		return sni.FilterEmpty(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprint(e))
		}
		return sni.FilterEmpty(out)
	default:
		return nil
	}
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}
