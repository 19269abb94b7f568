// Command procsim runs a process-execution simulation from a declaration file
// and prints the final machine state.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/viant/afs"
	"github.com/viant/procsim"
	"github.com/viant/procsim/report"
	"github.com/viant/procsim/service/dispatcher"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("procsim", flag.ContinueOnError)
	flags.SetOutput(stderr)
	procsURL := flags.String("procs", "", "process declaration URL (required)")
	filesURL := flags.String("files", "", "file-system declaration URL")
	configURL := flags.String("config", "", "YAML configuration URL")
	maxTime := flags.Int("max-time", -1, "stop at this tick, 0 for no limit (overrides config)")
	trace := flags.Bool("trace", false, "print every executed instruction")
	dispatch := flags.Bool("dispatch", false, "print the dispatch block of every run")
	otelFile := flags.String("otel", "", "write OpenTelemetry spans to this file")
	format := flags.String("format", "text", "report format: text or yaml")
	golden := flags.String("golden", "", "compare the report with this golden URL")
	verbose := flags.Bool("verbose", false, "debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *procsURL == "" {
		flags.Usage()
		return fmt.Errorf("missing -procs")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	config := procsim.DefaultConfig()
	if *configURL != "" {
		var err error
		if config, err = procsim.LoadConfig(ctx, *configURL); err != nil {
			return err
		}
	}
	if *maxTime >= 0 {
		config.Simulation.MaxTime = *maxTime
	}

	options := []procsim.Option{procsim.WithConfig(config), procsim.WithLogger(logger)}
	if *trace {
		options = append(options, procsim.WithTrace(stdout))
	}
	if *dispatch {
		options = append(options, procsim.WithDispatchListener(dispatcher.WriterListener(stdout)))
	}
	if *otelFile != "" {
		options = append(options, procsim.WithTracing("procsim", "0.1.0", *otelFile))
	}
	srv, err := procsim.New(options...)
	if err != nil {
		return err
	}

	feed, err := srv.LoadArrivals(ctx, *procsURL)
	if err != nil {
		return err
	}
	simulator, result, err := srv.Run(ctx, feed)
	if err != nil {
		return err
	}
	snapshot, err := simulator.Snapshot(ctx)
	if err != nil {
		return err
	}
	var rendered []byte
	switch *format {
	case "yaml":
		if rendered, err = report.YAML(snapshot); err != nil {
			return err
		}
	case "text":
		rendered = []byte(snapshot.String())
	default:
		return fmt.Errorf("unsupported format %q", *format)
	}
	if _, err = stdout.Write(rendered); err != nil {
		return err
	}
	if result.TimedOut {
		fmt.Fprintf(stdout, "stopped at time limit %d\n", config.Simulation.MaxTime)
	}
	if result.IsStalled() {
		fmt.Fprintf(stdout, "stalled, blocked forever: %v\n", result.Stalled)
	}

	if *filesURL != "" {
		declaration, err := srv.LoadFileSystem(ctx, *filesURL)
		if err != nil {
			return err
		}
		fs, results, err := srv.RunFileSystem(ctx, simulator, declaration)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, "file system:")
		for _, result := range results {
			fmt.Fprintln(stdout, result.String())
		}
		fmt.Fprintf(stdout, "disk: %v\n", fs.DiskMap())
	}

	if *golden == "" {
		return nil
	}
	expected, err := afs.New().DownloadWithURL(ctx, *golden)
	if err != nil {
		return fmt.Errorf("failed to load golden report %v: %w", *golden, err)
	}
	diff, err := report.Diff(expected, rendered, *golden)
	if err != nil {
		return err
	}
	if diff != "" {
		fmt.Fprint(stdout, diff)
		return fmt.Errorf("report differs from %v", *golden)
	}
	return nil
}
