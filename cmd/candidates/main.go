// Command candidates is the command-line front end of the candidate tracker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"candidate-tracker/internal/config"
	"candidate-tracker/internal/datadir"
	"candidate-tracker/internal/events"
	"candidate-tracker/internal/logging"
	"candidate-tracker/internal/tracker"
)

const dataDirEnv = "CANDIDATES_DATA_DIR"

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "candidates:", err)
		os.Exit(1)
	}
}

type app struct {
	out      io.Writer
	dataDir  string
	user     string
	password string
	cfg      config.Config
	log      *logrus.Logger
	tr       *tracker.Tracker
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("candidates", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dataFlag := fs.String("data", "", "data directory (default $"+dataDirEnv+" or .)")
	user := fs.String("user", "", "username to log in as (default: remembered login)")
	password := fs.String("password", "", "password (default: remembered login)")
	fs.Usage = func() { printUsage(errOut, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(errOut, "unknown command %q\n\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	dataDir := resolveDataDir(*dataFlag)
	lock, err := datadir.Acquire(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	cfg, cfgPath, err := config.LoadDir(dataDir)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	log := logging.NewWithOutput(cfg.Log, errOut)
	for _, w := range res.Warnings {
		log.WithField("config", cfgPath).Warn(w)
	}
	if !res.OK() {
		return fmt.Errorf("config %s is invalid: %s", cfgPath, strings.Join(res.Errors, "; "))
	}

	tr, err := tracker.Open(ctx, cfg, log)
	if err != nil {
		return err
	}

	forwardCtx, stopForward := context.WithCancel(ctx)
	forwarded := tr.Events().Forward(forwardCtx, func(e events.Event) {
		log.WithFields(logrus.Fields{
			"component": "events",
			"type":      e.Type,
			"actor":     e.Actor,
			"data":      string(e.Data),
		}).Debug("event")
	})
	defer func() {
		stopForward()
		<-forwarded
	}()

	a := &app{
		out:      out,
		dataDir:  dataDir,
		user:     *user,
		password: *password,
		cfg:      cfg,
		log:      log,
		tr:       tr,
	}
	if err := cmd.run(ctx, a, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%s: %w", cmd.name, err)
	}
	return nil
}

// resolveDataDir picks the -data flag, then $CANDIDATES_DATA_DIR (a .env
// file in the working directory may set it), then the working directory.
func resolveDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	_ = godotenv.Load()
	if dir := os.Getenv(dataDirEnv); dir != "" {
		return dir
	}
	return "."
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: candidates [-data DIR] [-user U] [-password P] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "global flags:")
	fs.PrintDefaults()
}
