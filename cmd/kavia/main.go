package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gai-kavia/kavia-console/internal/app"
	"github.com/gai-kavia/kavia-console/internal/config"
	"github.com/gai-kavia/kavia-console/internal/console"
	"github.com/gai-kavia/kavia-console/internal/logger"
	"github.com/spf13/pflag"
)

const usage = `usage: kavia [flags] <command>

commands:
  health    call the backend health check
  info      call /api/info
  welcome   call /
  base      print the resolved API base URL
  docs      print the backend docs URL
  watch     call every endpoint on an interval until interrupted
  history   print recorded calls, newest first

flags:
`

// errCallFailed signals a backend failure that was already printed.
var errCallFailed = errors.New("call failed")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errCallFailed) {
			fmt.Fprintf(os.Stderr, "kavia failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := config.NewFlagSet("kavia")
	limit := fs.Int("limit", 20, "number of records printed by history")
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one command")
	}
	command := strings.ToLower(fs.Arg(0))

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(ctx, cfg, log, app.Deps{})
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.ErrorObj("runtime close failed", "error", err)
		}
	}()

	switch command {
	case "base":
		fmt.Fprintln(stdout, rt.Console().APIBase())
		return nil
	case "docs":
		fmt.Fprintln(stdout, rt.Console().DocsURL())
		return nil
	case "watch":
		if err := rt.Watch(ctx); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		return nil
	case "history":
		return printHistory(rt, *limit, stdout)
	}

	which, err := console.ParseCall(command)
	if err != nil {
		fs.Usage()
		return err
	}
	out, err := rt.Call(ctx, which)
	if err != nil {
		return err
	}
	if out.Failed() {
		fmt.Fprintln(stderr, out.Error)
		return errCallFailed
	}
	fmt.Fprintln(stdout, out.Output)
	return nil
}

func printHistory(rt *app.Runtime, limit int, w io.Writer) error {
	records, err := rt.History(limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	for _, rec := range records {
		result := fmt.Sprintf("%d", rec.StatusCode)
		if rec.Failed() {
			result = "error: " + rec.Error
		}
		fmt.Fprintf(w, "%s  %-8s %5dms  %s  %s\n",
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"), rec.Call, rec.DurationMs, rec.URL, result)
	}
	return nil
}
