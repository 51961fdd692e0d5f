package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/quantmind-br/folio/internal/app"
	"github.com/quantmind-br/folio/internal/config"
	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/server"
	"github.com/quantmind-br/folio/internal/utils"
	"github.com/quantmind-br/folio/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// shutdownTimeout bounds how long serve waits for in-flight requests
const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for invalid input detected before any I/O and 1 otherwise
func exitCode(err error) int {
	if domain.IsConfigError(err) {
		return 2
	}
	return 1
}

// cli holds the state shared by all subcommands of one invocation
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	quiet   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Build books from a directory of documents",
		Long: `Folio turns a directory of markdown, HTML and semi-literate source files
into a static website, a JSON document or a flat markdown book.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ~/.folio/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "Only print errors")

	rootCmd.AddCommand(c.buildCmd())
	rootCmd.AddCommand(c.serveCmd())
	rootCmd.AddCommand(c.formatsCmd())
	rootCmd.AddCommand(c.configCmd())
	rootCmd.AddCommand(c.cacheCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// addBuildFlags registers the flags shared by build and serve
func addBuildFlags(flags *pflag.FlagSet) {
	flags.StringP("output", "o", config.DefaultOutputDir, "Output directory")
	flags.StringP("format", "f", config.DefaultFormat, "Output format (see 'folio formats')")
	flags.String("title", "", "Book title (default derived from the source directory)")
	flags.String("intro", "", "Introduction shown on a generated index page")
	flags.String("github", "", "Repository as owner/repo for edit links")
	flags.String("github-host", config.DefaultGitHubHost, "Repository web host")
	flags.String("theme", "", "Directory overriding page.html and style.css")
	flags.Bool("drafts", false, "Include pages with status: draft")
	flags.IntP("workers", "j", config.DefaultWorkers, "Number of concurrent workers")
	flags.Bool("no-cache", false, "Disable the render cache")
}

var flagKeys = map[string]string{
	"output":      "output.directory",
	"format":      "build.format",
	"title":       "build.title",
	"intro":       "build.intro",
	"github":      "github.repo",
	"github-host": "github.host",
	"theme":       "build.theme",
	"drafts":      "build.include_drafts",
	"workers":     "concurrency.workers",
	"port":        "server.port",
	"host":        "server.host",
}

// loadConfig binds the command's flags and loads the configuration
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := c.v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	}

	cfg, err := config.LoadFrom(c.v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (c *cli) logger(cfg *config.Config, w io.Writer) *utils.Logger {
	return utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  w,
		Verbose: c.verbose,
		Quiet:   c.quiet,
	})
}

// signalContext cancels the returned context on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// build runs one build for sourceDir using the command's flags
func (c *cli) build(ctx context.Context, cmd *cobra.Command, sourceDir string) (*config.Config, *domain.BuildResult, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log := c.logger(cfg, cmd.ErrOrStderr())
	noCache, _ := cmd.Flags().GetBool("no-cache")

	orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:   cfg,
		Logger:   log,
		Verbose:  c.verbose,
		Quiet:    c.quiet,
		NoCache:  noCache,
		Progress: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Close()

	result, err := orchestrator.Build(ctx, cfg.ToBuildConfig(sourceDir))
	if err != nil {
		return nil, nil, err
	}
	return cfg, result, nil
}

func (c *cli) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <source_dir>",
		Short: "Build a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			_, result, err := c.build(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			if !c.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages (%d files, %d bytes) into %s in %s\n",
					result.Pages, result.Files, result.Bytes, result.Config.OutputDir,
					result.Duration.Round(time.Millisecond))
			}
			if c.verbose && !c.quiet {
				for _, stage := range []string{"reading", "rendering", "writing"} {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", stage, result.Stages[stage].Round(time.Microsecond))
				}
			}
			return nil
		},
	}
	addBuildFlags(cmd.Flags())
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <source_dir>",
		Short: "Build a book and serve it locally",
		Long: `Build the book and serve the output directory over HTTP. Files are read
from disk on every request, so running 'folio build' again is picked up
without restarting the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			cfg, result, err := c.build(ctx, cmd, args[0])
			if err != nil {
				return err
			}

			log := c.logger(cfg, cmd.ErrOrStderr())
			handle, err := server.Serve(ctx, server.Options{
				Dir:    result.Config.OutputDir,
				Host:   cfg.Server.Host,
				Port:   cfg.Server.Port,
				Logger: log,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving book on %s\n", handle.URL())

			select {
			case <-ctx.Done():
			case <-waitChan(handle):
				return handle.Wait()
			}

			shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stop()
			if err := handle.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			return nil
		},
	}
	addBuildFlags(cmd.Flags())
	cmd.Flags().IntP("port", "p", config.DefaultServerPort, "Port to listen on")
	cmd.Flags().String("host", config.DefaultServerHost, "Host to listen on")
	return cmd
}

// waitChan closes when the server stops on its own
func waitChan(h *server.Handle) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		_ = h.Wait()
		close(ch)
	}()
	return ch
}

var (
	nameStyle = lipgloss.NewStyle().Bold(true).Width(12)
	descStyle = lipgloss.NewStyle().Faint(true)
)

func (c *cli) formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, desc := range app.DefaultRegistry(nil).Descriptors() {
				fmt.Fprintln(cmd.OutOrStdout(), nameStyle.Render(desc.Name)+descStyle.Render(desc.Description))
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
