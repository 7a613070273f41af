package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/flyingrobots/ledger-kernel/pkg/digest"
)

// runCanonCmd implements `lk canon`.
//
// Prints the entry id. When the hash capability is disabled the canonical
// preimage bytes are printed instead, without a trailing newline.
func runCanonCmd(args []string, stdout, stderr io.Writer) int {
	cmd := pflag.NewFlagSet("canon", pflag.ContinueOnError)
	withCID := cmd.Bool("cid", false, "also print the CIDv1 form of the id")
	if code, ok := parseFlags(cmd, args, stderr); !ok {
		return code
	}
	if cmd.NArg() != 1 {
		_, _ = fmt.Fprintln(stderr, "Usage: lk canon [--cid] <entry.json>")
		return 2
	}

	e, err := loadEnv(stderr)
	if err != nil {
		return fail(stderr, err)
	}
	ent, err := readEntry(cmd.Arg(0))
	if err != nil {
		return fail(stderr, err)
	}

	if !digest.Available(e.caps.Hasher) {
		out, err := e.engine.Canonical(ent, digest.EncodingText)
		if err != nil {
			return fail(stderr, err)
		}
		e.logger.Debug("hash unavailable, printing canonical bytes", "component", "canon")
		if *withCID {
			_, _ = fmt.Fprintln(stderr, "WARN: --cid needs the blake3 hash; skipping")
		}
		_, _ = stdout.Write(out)
		return 0
	}

	id, err := e.engine.ComputeID(ent)
	if err != nil {
		return fail(stderr, err)
	}
	_, _ = fmt.Fprintln(stdout, id)

	if *withCID {
		c, err := digest.ContentID(id)
		if err != nil {
			return fail(stderr, err)
		}
		_, _ = fmt.Fprintf(stdout, "cid=%s\n", c)
	}
	return 0
}

// runCanonCBORCmd implements `lk canon-cbor`. The hash is mandatory here.
func runCanonCBORCmd(args []string, stdout, stderr io.Writer) int {
	cmd := pflag.NewFlagSet("canon-cbor", pflag.ContinueOnError)
	if code, ok := parseFlags(cmd, args, stderr); !ok {
		return code
	}
	if cmd.NArg() != 1 {
		_, _ = fmt.Fprintln(stderr, "Usage: lk canon-cbor <entry.json>")
		return 2
	}

	e, err := loadEnv(stderr)
	if err != nil {
		return fail(stderr, err)
	}
	ent, err := readEntry(cmd.Arg(0))
	if err != nil {
		return fail(stderr, err)
	}

	sum, err := e.engine.ComputeIDWith(ent, digest.EncodingBinary)
	if err != nil {
		return fail(stderr, err)
	}
	_, _ = fmt.Fprintln(stdout, sum)
	return 0
}
