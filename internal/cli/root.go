package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/scout/internal/agent"
	"github.com/FranksOps/scout/internal/config"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/report"
)

var version = "dev"

var (
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scout [topic]",
	Short: "Automated web research agent",
	Long: `scout researches a topic: it searches the web, reads the top results,
and synthesizes a cited report with a language model.

With a topic argument it runs once and exits; without one it enters an
interactive loop reading topics from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoot,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "emit results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the scout version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagVerbose)
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	a, err := agent.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.MetricsPort > 0 {
		srv := metrics.Start(cfg.MetricsPort)
		logger.Info("metrics server listening", "port", cfg.MetricsPort)
		g.Go(func() error {
			<-gCtx.Done()
			return srv.Stop(context.Background())
		})
	}

	g.Go(func() error {
		defer stop()
		if len(args) == 1 {
			return researchOnce(gCtx, a, args[0], cmd.OutOrStdout())
		}
		return interactiveLoop(gCtx, a, cmd.InOrStdin(), cmd.OutOrStdout())
	})

	return g.Wait()
}

// researcher runs one research request.
type researcher interface {
	Research(ctx context.Context, topic string) *report.Result
}

func researchOnce(ctx context.Context, a researcher, topic string, out io.Writer) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("no topic provided")
	}

	fmt.Fprintf(out, "Researching: %s\nThis may take a moment...\n\n", topic)
	res := a.Research(ctx, topic)
	return writeResult(res, out)
}

func interactiveLoop(ctx context.Context, a researcher, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "Enter a research topic (empty to quit): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		topic := strings.TrimSpace(scanner.Text())
		if topic == "" {
			return nil
		}

		if err := researchOnce(ctx, a, topic, out); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}

func writeResult(res *report.Result, out io.Writer) error {
	if flagJSON {
		return res.WriteJSON(out)
	}
	return res.WriteText(out)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
