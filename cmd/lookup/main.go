package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Clark-Hu/movie-lookup/internal/config"
	"github.com/Clark-Hu/movie-lookup/internal/domain"
	"github.com/Clark-Hu/movie-lookup/internal/logger"
	"github.com/Clark-Hu/movie-lookup/internal/lookup"
	"github.com/Clark-Hu/movie-lookup/internal/omdb"
)

const defaultID = "tt0317219"

func main() {
	var (
		id       = flag.String("id", defaultID, "IMDb id looked up on start")
		once     = flag.Bool("once", false, "exit after the first lookup instead of reading ids from stdin")
		logLevel = flag.String("log", "warn", "log level")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	sugar, err := logger.New(cfg.AppEnv, *logLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	client, err := omdb.NewHTTPClient(cfg.OMDbURL, cfg.OMDbAPIKey, cfg.LookupTimeout, sugar)
	if err != nil {
		log.Fatalf("init omdb client: %v", err)
	}
	controller := lookup.New(client, lookup.Options{
		Timeout:     cfg.LookupTimeout,
		SettleDelay: cfg.LookupSettleDelay,
		Logger:      sugar,
	})
	defer controller.Close()

	var in io.Reader = os.Stdin
	if *once {
		in = nil
	}
	if err := run(ctx, controller, *id, in, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("lookup: %v", err)
	}
}

// run performs the initial lookup for firstID and then one lookup per line
// read from in, until in is exhausted or ctx is cancelled.
func run(ctx context.Context, controller *lookup.Controller, firstID string, in io.Reader, out io.Writer) error {
	scr := newScreen(out)
	events, unsubscribe := controller.Subscribe()
	defer unsubscribe()
	go scr.consume(events)

	submit := func(raw string) error {
		_, err := controller.Lookup(ctx, raw)
		if err != nil && lookup.Kind(err) != domain.FailureInvalidInput {
			return err
		}
		select {
		case <-scr.settled:
		case <-ctx.Done():
			return ctx.Err()
		}
		return ctx.Err()
	}

	if err := submit(firstID); err != nil {
		return err
	}
	if in == nil {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "IMDb ID> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := submit(scanner.Text()); err != nil {
			return err
		}
	}
}
