// Package cmd wires up the CLI flags and dispatches to the connstate core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"connstate/config"
	"connstate/internal/core"
	"connstate/internal/metrics"
	"connstate/internal/state"
	"connstate/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X connstate/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate connstate mode.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("connstate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── connection ───────────────────────────────────────────────
	fs.StringP("name", "N", config.DefaultName, "Connection name used in logs")
	fs.BoolP("udp", "u", false, "Use UDP for the link")
	fs.DurationP("timeout", "w", config.DefaultConnTimeout, "Per-dial timeout")
	fs.IntP("retries", "r", config.DefaultRetries, "Dial attempts per handshake")

	// ── script mode ──────────────────────────────────────────────
	fs.StringArrayP("script", "s", nil, "Step to replay (repeatable): connect, disconnect, establish, send:<payload>")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringP("tunnel", "T", "", "Dial through SSH gateway [user@]host[:port]")
	fs.String("ssh-key", "", "SSH private key file")
	fs.Bool("ssh-password", false, "Prompt for SSH password")
	fs.Bool("ssh-agent", false, "Use SSH agent")
	fs.Bool("strict-hostkey", false, "Verify SSH host keys")
	fs.String("known-hosts", "", "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountP("verbose", "v", "Increase verbosity (repeatable)")
	fs.Bool("table", false, "Print the transition table as JSON and exit")
	fs.Bool("metrics", false, "Print a metrics snapshot as JSON on exit")

	var configPath string
	var showVersion, showHelp, dryRun bool
	fs.StringVarP(&configPath, "config", "f", "", "Config file (yaml, toml, json)")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "connstate %s\n", version)
		return nil
	}

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return err
	}

	if cfg.ShowTable {
		data, err := state.TableJSON()
		if err != nil {
			return fmt.Errorf("table: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)

	if dryRun {
		if cfg.LinkMode() {
			fmt.Fprintf(stdout, "link %s → %s\n", cfg.Name, util.FormatAddr(cfg.Host, cfg.Port))
		} else {
			fmt.Fprintf(stdout, "script %s: %d steps\n", cfg.Name, len(cfg.Steps))
		}
		return nil
	}

	// ── build components ─────────────────────────────────────────
	collector := metrics.New()
	mode, err := core.Build(cfg, logger, collector)
	if err != nil {
		return err
	}
	if sm, ok := mode.(*core.ScriptMode); ok {
		sm.Stdout = stdout
	}
	if lm, ok := mode.(*core.LinkMode); ok {
		lm.Stdout = stdout
	}

	runErr := mode.Run(ctx)
	if cfg.ShowMetrics {
		fmt.Fprintln(stderr, collector.JSON())
	}
	return runErr
}

// ── helpers ──────────────────────────────────────────────────────────

func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0: // script mode, or host/port from env or config file
		return nil
	case 2:
		cfg.Host = remaining[0]
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
		return nil
	case 1:
		return fmt.Errorf("port required (use --help for usage)")
	default:
		return fmt.Errorf("too many arguments")
	}
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `connstate – connection state machine v%s

Replays a script against a Disconnected/Connecting/Connected state
machine, or drives a real link with it.

Usage:
  connstate [options]                          Replay the default walkthrough
  connstate -s connect -s establish -s send:hi  Replay a custom script
  connstate [options] <host> <port>            Drive a live link from stdin

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Link commands (stdin):
  /connect      re-run the handshake
  /disconnect   tear the link down
  /state        print the current mode
  anything else is sent as a payload

Environment:
  Every long option can be set as CONNSTATE_<NAME> (e.g. CONNSTATE_SSH_KEY).
`)
}
