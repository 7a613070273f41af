package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/flyingrobots/ledger-kernel/pkg/config"
	"github.com/flyingrobots/ledger-kernel/pkg/digest"
	"github.com/flyingrobots/ledger-kernel/pkg/docio"
	"github.com/flyingrobots/ledger-kernel/pkg/entry"
	"github.com/flyingrobots/ledger-kernel/pkg/observability"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

// Dispatcher
func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
//
// Exit codes:
//
//	0 = success
//	1 = a check found a problem (schema violations, replay mismatches)
//	2 = usage or runtime error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "canon":
		return runCanonCmd(args[2:], stdout, stderr)
	case "canon-cbor":
		return runCanonCBORCmd(args[2:], stdout, stderr)
	case "lint":
		return runLintCmd(args[2:], stdout, stderr)
	case "verify-proofs":
		return runVerifyProofsCmd(args[2:], stdout, stderr)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "lk %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `lk: ledger entry canonicalization and verification

Usage:
  lk canon [--cid] <entry.json>        print the entry id (or canonical bytes without a hash)
  lk canon-cbor <entry.json>           print the digest of the canonical CBOR preimage
  lk lint [--entry P] [--report P] [--schema P] [--json]
  lk verify-proofs --case P [--proof-dir D] [--mode branch|notes|private] [--replay]
  lk version
  lk help

Environment:
  LEDGER_CONFIG             YAML configuration file
  LEDGER_HASH               blake3 | none
  LEDGER_SCHEMA_VALIDATION  enabled | disabled
  LEDGER_SCHEMA_PATH        default schema for lint --report
  LEDGER_LOG_LEVEL          debug | info | warn | error
`)
}

// env is the per-invocation runtime assembled from configuration.
type env struct {
	cfg    *config.Config
	caps   config.Capabilities
	logger *slog.Logger
	engine *digest.Engine
}

func loadEnv(stderr io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	caps := cfg.Capabilities()
	return &env{
		cfg:    cfg,
		caps:   caps,
		logger: cfg.NewLogger(stderr),
		engine: digest.New(
			digest.WithHasher(caps.Hasher),
			digest.WithInstruments(observability.Default()),
		),
	}, nil
}

// parseFlags parses args into fs. It returns false with the exit code when
// the command should stop: 0 after --help, 2 on a flag error.
func parseFlags(fs *pflag.FlagSet, args []string, stderr io.Writer) (int, bool) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		_, _ = fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2, false
	}
	return 0, true
}

func fail(stderr io.Writer, err error) int {
	_, _ = fmt.Fprintf(stderr, "ERROR: %v\n", err)
	return 2
}

func readEntry(path string) (entry.Entry, error) {
	data, err := docio.ReadFile(docio.KindEntry, path)
	if err != nil {
		return entry.Entry{}, err
	}
	return entry.Parse(data)
}
