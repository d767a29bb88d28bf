package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/adrianliechti/narrator/config"
	"github.com/adrianliechti/narrator/pkg/assembler"
	"github.com/adrianliechti/narrator/pkg/client"
	"github.com/adrianliechti/narrator/pkg/otel"
	"github.com/adrianliechti/narrator/pkg/pipeline"
	"github.com/adrianliechti/narrator/pkg/scraper/file"
	"github.com/adrianliechti/narrator/server"
	"github.com/adrianliechti/narrator/server/api"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "config file (yaml)")
	envFlag := flag.String("env", ".env", "dotenv file")
	segmenterFlag := flag.String("segmenter", "", "segmentation policy: word or paragraph")
	serveFlag := flag.Bool("serve", false, "run the http api")
	remoteFlag := flag.String("remote", "", "narrate through a running server at this url")
	tokenFlag := flag.String("token", "", "server token for -remote")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: narrator [-config narrator.yaml] [-segmenter word|paragraph] [flags] <url-or-file>\n       narrator -serve\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if err := loadEnv(*envFlag); err != nil {
		fmt.Fprintln(os.Stderr, "narrator:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := otel.Setup(ctx, "narrator"); err != nil {
		fmt.Fprintln(os.Stderr, "narrator: telemetry:", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		otel.Shutdown(shutdownCtx)
	}()

	logger := newLogger()

	if *remoteFlag != "" {
		if flag.NArg() != 1 {
			flag.Usage()
			return 2
		}

		return remote(ctx, *remoteFlag, *tokenFlag, flag.Arg(0))
	}

	cfg, err := config.Parse(*configFlag, config.WithSegmenter(*segmenterFlag))

	if err != nil {
		fmt.Fprintln(os.Stderr, "narrator: config:", err)
		return 1
	}

	p, err := cfg.Pipeline(logger)

	if err != nil {
		fmt.Fprintln(os.Stderr, "narrator:", err)
		return 1
	}

	if *serveFlag {
		return serve(ctx, cfg, p, logger)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	output, err := p.Narrate(ctx, flag.Arg(0))

	if err != nil {
		printFailure(os.Stderr, err)
		return 1
	}

	printOutput(os.Stdout, output)

	return 0
}

func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) int {
	handler, err := api.New(p, cfg.OutputDir)

	if err != nil {
		fmt.Fprintln(os.Stderr, "narrator:", err)
		return 1
	}

	s := server.New(cfg.Address, handler, logger)

	if err := s.ListenAndServe(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "narrator:", err)
		return 1
	}

	return 0
}

func remote(ctx context.Context, url, token, source string) int {
	var options []client.RequestOption

	if token != "" {
		options = append(options, client.WithToken(token))
	}

	c := client.New(url, options...)

	request, err := remoteRequest(ctx, source)

	if err != nil {
		printFailure(os.Stderr, err)
		return 1
	}

	result, err := c.Narrations.New(ctx, *request)

	if err != nil {
		fmt.Fprintln(os.Stderr, "narrator:", err)
		return 1
	}

	output := &pipeline.Output{
		Path:  result.File,
		Title: result.Title,

		Duration: seconds(result.Duration),
	}

	for _, s := range result.Segments {
		output.Segments = append(output.Segments, assembler.SegmentReport{
			Index:    s.Index,
			Duration: seconds(s.Duration),
		})
	}

	printOutput(os.Stdout, output)

	return 0
}

// remoteRequest passes web sources through to the server. Local files are
// read here and sent as text, since the server only fetches http(s) urls.
func remoteRequest(ctx context.Context, source string) (*client.NarrationRequest, error) {
	lower := strings.ToLower(source)

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &client.NarrationRequest{URL: source}, nil
	}

	files, err := file.New()

	if err != nil {
		return nil, err
	}

	doc, err := files.Scrape(ctx, source, nil)

	if err != nil {
		return nil, &pipeline.Failure{
			Stage: pipeline.StageFetching,
			Err:   &pipeline.FetchError{Source: source, Err: err},
		}
	}

	return &client.NarrationRequest{
		Title: doc.Title,
		Text:  doc.Text,
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

func newLogger() *slog.Logger {
	if otel.EnableTelemetry {
		return slog.Default()
	}

	level := slog.LevelWarn

	if otel.EnableDebug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return logger
}

func printOutput(w io.Writer, output *pipeline.Output) {
	for _, s := range output.Segments {
		fmt.Fprintf(w, "Duration of segment %d: %s\n", s.Index, formatDuration(s.Duration))
	}

	fmt.Fprintf(w, "Total duration: %s\n", formatDuration(output.Duration))
	fmt.Fprintf(w, "Audio file created successfully: %s\n", output.Path)
}

func printFailure(w io.Writer, err error) {
	var failure *pipeline.Failure

	if !errors.As(err, &failure) {
		fmt.Fprintln(w, "narrator:", err)
		return
	}

	if index, ok := failure.Index(); ok {
		fmt.Fprintf(w, "narrator: %s failed (segment %d): %v\n", failure.Stage, index, failure.Err)
		return
	}

	fmt.Fprintf(w, "narrator: %s failed: %v\n", failure.Stage, failure.Err)
}

func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	seconds := (d - time.Duration(minutes)*time.Minute).Seconds()

	return fmt.Sprintf("%d minutes and %.2f seconds", minutes, seconds)
}
