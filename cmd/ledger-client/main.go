// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Ledger-client is an interactive client for an Interledger ledger. It
// connects to a ledger (five-bells over HTTP and websocket, or an
// in-process loopback ledger), reads one command per line from stdin,
// and logs incoming ledger events to stderr while the session runs.
//
// Usage:
//
//	ledger-client [--config path]
//
// The configuration file is named by --config or LEDGER_CLIENT_CONFIG.
// Without either, the client starts against a loopback ledger with the
// built-in defaults.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/ledgerclient/cmd/ledger-client/cli"
	"github.com/bureau-foundation/ledgerclient/cmd/ledger-client/commands"
	"github.com/bureau-foundation/ledgerclient/ledger"
	"github.com/bureau-foundation/ledgerclient/ledger/fivebells"
	"github.com/bureau-foundation/ledgerclient/lib/address"
	"github.com/bureau-foundation/ledgerclient/lib/clock"
	"github.com/bureau-foundation/ledgerclient/lib/config"
	"github.com/bureau-foundation/ledgerclient/lib/envelope"
	"github.com/bureau-foundation/ledgerclient/lib/metrics"
	"github.com/bureau-foundation/ledgerclient/lib/money"
	"github.com/bureau-foundation/ledgerclient/lib/secret"
	"github.com/bureau-foundation/ledgerclient/lib/version"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run starts the client and blocks until the session ends. Errors are
// startup failures; anything after the session starts is logged.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("ledger-client", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	configPath := flagSet.String("config", "", "path to the configuration file (default: $"+config.EnvironmentVariable+")")
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.Info())
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	level, _ := cfg.Log.SlogLevel()
	logger, err := cli.NewLogger(stderr, level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = logger.With("environment", cfg.Environment)

	currencies, err := money.Describe(cfg.Currencies)
	if err != nil {
		return err
	}
	format, err := envelope.ParseFormat(cfg.Ledger.MessageFormat)
	if err != nil {
		return err
	}
	codec, err := envelope.For(format)
	if err != nil {
		return err
	}

	recorder := metrics.New()
	if cfg.Metrics.Listen != "" {
		shutdown := serveMetrics(cfg.Metrics.Listen, recorder, logger)
		defer shutdown()
	}

	var credential *secret.Buffer
	if cfg.Ledger.Adapter == config.AdapterFiveBells {
		credential, err = resolvePassword(cfg, stdin, stderr)
		if err != nil {
			return err
		}
		// Deferred first so it runs after the adapter is closed.
		defer credential.Close()
	}

	adapter, err := newAdapter(cfg, credential, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if err := adapter.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to ledger: %w", err)
	}
	info, err := adapter.Info(ctx)
	if err != nil {
		return fmt.Errorf("reading ledger info: %w", err)
	}
	logger.Info("ledger ready",
		"adapter", cfg.Ledger.Adapter,
		"ledger", info.Prefix,
		"currency", info.Currency,
		"account", adapter.Account(),
	)

	registry, err := commands.NewRegistry(commands.Deps{
		Adapter:    adapter,
		Info:       info,
		Codec:      codec,
		Currencies: currencies,
		Recorder:   recorder,
		Out:        stdout,
	})
	if err != nil {
		return err
	}

	router := ledger.NewRouter(logger, codec, recorder)
	var routing sync.WaitGroup
	routing.Go(func() {
		if err := router.Run(ctx, adapter.Events()); err != nil {
			logger.Error("event router stopped", "error", err)
		}
	})

	session := cli.NewSession(cli.SessionConfig{
		Input:      stdin,
		Output:     stdout,
		Dispatcher: cli.NewDispatcher(registry, stdout, logger, clock.Real(), recorder),
		Registry:   registry,
		Quit:       cfg.Session.Quit,
		Prompt:     cfg.Session.Prompt,
		Currencies: currencies,
		Logger:     logger,
	})
	if err := session.Run(ctx); err != nil {
		logger.Error("session ended", "error", err)
	}

	// Closing the adapter closes its events channel; the router drains
	// what is left and returns.
	if err := adapter.Close(); err != nil {
		logger.Warn("closing ledger connection", "error", err)
	}
	routing.Wait()
	return nil
}

// loadConfig reads and validates the configuration from path, from
// LEDGER_CLIENT_CONFIG, or falls back to the defaults.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newAdapter creates the configured ledger adapter. password is only
// used by five-bells and may be nil.
func newAdapter(cfg *config.Config, password *secret.Buffer, logger *slog.Logger) (ledger.Adapter, error) {
	switch cfg.Ledger.Adapter {
	case config.AdapterLoopback:
		prefix, err := address.ParsePrefix(cfg.Ledger.Prefix)
		if err != nil {
			return nil, fmt.Errorf("loopback prefix: %w", err)
		}
		unit, err := money.ParseCurrency(cfg.Ledger.Currency)
		if err != nil {
			return nil, fmt.Errorf("loopback currency: %w", err)
		}
		account, err := cfg.Ledger.LoopbackAccount()
		if err != nil {
			return nil, fmt.Errorf("loopback account: %w", err)
		}
		return ledger.NewLoopback(ledger.Info{Prefix: prefix, Currency: unit, Scale: cfg.Ledger.Scale}, account)

	case config.AdapterFiveBells:
		return fivebells.New(fivebells.Config{
			URL:               cfg.Ledger.URL,
			Account:           cfg.Ledger.Account,
			Username:          cfg.Ledger.Username,
			Password:          password,
			RequestTimeout:    cfg.Ledger.Timeout(),
			KeepaliveInterval: cfg.Ledger.Keepalive(),
			Clock:             clock.Real(),
			Logger:            logger,
		})

	default:
		return nil, fmt.Errorf("unknown ledger adapter %q", cfg.Ledger.Adapter)
	}
}

// resolvePassword returns the five-bells password from the
// configuration, from the configured password file, or from a prompt
// when stdin is a terminal. It returns nil when none of these yield a
// password. The caller closes the returned buffer.
func resolvePassword(cfg *config.Config, stdin io.Reader, prompt io.Writer) (*secret.Buffer, error) {
	switch {
	case cfg.Ledger.Password != "":
		return secret.NewFromBytes([]byte(cfg.Ledger.Password))
	case cfg.Ledger.PasswordFile != "":
		buffer, err := secret.ReadFile(cfg.Ledger.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("ledger.password_file: %w", err)
		}
		return buffer, nil
	}
	return readPassword(stdin, prompt, cfg.Ledger.Account)
}

// readPassword prompts on a terminal stdin. A non-terminal stdin
// yields no password: the session reads commands from it, so it
// cannot also carry the secret.
func readPassword(stdin io.Reader, prompt io.Writer, account string) (*secret.Buffer, error) {
	file, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return nil, nil
	}
	fmt.Fprintf(prompt, "Password for %s: ", account)
	typed, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	if len(typed) == 0 {
		return nil, nil
	}
	return secret.NewFromBytes(typed)
}

// serveMetrics exposes the recorder on address under /metrics and
// returns a function that stops the server.
func serveMetrics(address string, recorder *metrics.Recorder, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", recorder.Handler())
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}
