package verifier

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flyingrobots/ledger-kernel/pkg/digest"
	"github.com/flyingrobots/ledger-kernel/pkg/docio"
)

const (
	idAB     = "3ae1df3be87788aca8ce6fdc722c35425f09e755338e455cc1da5a8579baf96e"
	idAppend = "821fc7a39eec5eb1f8e622217ba1925868927136f1838d473e43415cc6f432da"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []string{"branch", "notes", "private"} {
		if _, err := ParseMode(m); err != nil {
			t.Errorf("ParseMode(%q): %v", m, err)
		}
	}
	if _, err := ParseMode("tags"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPrepare(t *testing.T) {
	v := New(nil)

	report, err := v.Prepare(Request{CasePath: "cases/append.yaml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Mode != ModeBranch {
		t.Errorf("expected default mode branch, got %s", report.Mode)
	}
	if report.ProofDir != "" {
		t.Errorf("expected no proof dir, got %q", report.ProofDir)
	}

	dir := t.TempDir()
	report, err = v.Prepare(Request{CasePath: "c.yaml", ProofDir: dir, Mode: ModeNotes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ProofDir != dir || report.Mode != ModeNotes {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestPrepare_MissingProofDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := New(nil).Prepare(Request{CasePath: "c.yaml", ProofDir: missing})
	if !IsProofDirError(err) {
		t.Fatalf("expected ProofDirError, got %v", err)
	}
	if err.Error() != "proof dir not found: "+missing {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestPrepare_InvalidMode(t *testing.T) {
	_, err := New(nil).Prepare(Request{CasePath: "c.yaml", Mode: "tags"})
	if err == nil || !strings.Contains(err.Error(), "invalid mode") {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
}

func TestReplay_AllMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "entries", "0001.json"), `{"seq":1,"event":"append","attestations":[{"sig":"x"}]}`)
	writeFile(t, filepath.Join(dir, "entries", "0002.json"), `{"b":"x","a":1}`)
	casePath := filepath.Join(t.TempDir(), "case.yaml")
	writeFile(t, casePath, "name: append\nentries:\n  - file: entries/0001.json\n    id: "+idAppend+"\n  - file: entries/0002.json\n    id: "+idAB+"\n")

	report, err := New(digest.New()).Replay(Request{CasePath: casePath, ProofDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Verified {
		t.Fatalf("expected PASS, got %s", report.Summary)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(report.Checks))
	}
	if report.Summary != "PASS: 2/2 entries replayed" {
		t.Errorf("unexpected summary: %s", report.Summary)
	}
}

func TestReplay_Mismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "case.yaml"), "name: tampered\nentries:\n  - file: e.json\n    id: "+idAB+"\n")
	writeFile(t, filepath.Join(dir, "e.json"), `{"a":2,"b":"x"}`)

	// Without a proof dir, entries resolve next to the case file.
	report, err := New(nil).Replay(Request{CasePath: filepath.Join(dir, "case.yaml")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Verified {
		t.Fatal("expected FAIL for tampered entry")
	}
	if report.IssueCount != 1 {
		t.Errorf("expected 1 issue, got %d", report.IssueCount)
	}
	chk := report.Checks[0]
	if chk.Pass || chk.Expected != idAB || chk.Computed == idAB {
		t.Errorf("unexpected check: %+v", chk)
	}
}

func TestReplay_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing case", func(t *testing.T) {
		_, err := New(nil).Replay(Request{CasePath: filepath.Join(dir, "absent.yaml")})
		var ioe *docio.IOError
		if !errors.As(err, &ioe) || ioe.Kind != docio.KindCase {
			t.Fatalf("expected case IOError, got %v", err)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		casePath := filepath.Join(dir, "missing-entry.yaml")
		writeFile(t, casePath, "name: x\nentries:\n  - file: gone.json\n    id: abc\n")
		_, err := New(nil).Replay(Request{CasePath: casePath})
		var ioe *docio.IOError
		if !errors.As(err, &ioe) || ioe.Kind != docio.KindEntry {
			t.Fatalf("expected entry IOError, got %v", err)
		}
	})

	t.Run("float entry", func(t *testing.T) {
		casePath := filepath.Join(dir, "float.yaml")
		writeFile(t, casePath, "name: x\nentries:\n  - file: float.json\n    id: abc\n")
		writeFile(t, filepath.Join(dir, "float.json"), `{"amount":1.5}`)
		_, err := New(nil).Replay(Request{CasePath: casePath})
		if err == nil || !strings.Contains(err.Error(), "float.json") {
			t.Fatalf("expected error naming the entry, got %v", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		casePath := filepath.Join(dir, "unknown.yaml")
		writeFile(t, casePath, "name: x\nentires: []\n")
		if _, err := LoadCase(casePath); err == nil {
			t.Fatal("expected error for unknown field")
		}
	})

	t.Run("no entries", func(t *testing.T) {
		casePath := filepath.Join(dir, "empty.yaml")
		writeFile(t, casePath, "name: x\nentries: []\n")
		if _, err := LoadCase(casePath); err == nil {
			t.Fatal("expected error for empty case")
		}
	})

	t.Run("entry without id", func(t *testing.T) {
		casePath := filepath.Join(dir, "noid.yaml")
		writeFile(t, casePath, "name: x\nentries:\n  - file: a.json\n")
		if _, err := LoadCase(casePath); err == nil {
			t.Fatal("expected error for entry without id")
		}
	})

	t.Run("hash disabled", func(t *testing.T) {
		casePath := filepath.Join(dir, "ok.yaml")
		writeFile(t, casePath, "name: x\nentries:\n  - file: ok.json\n    id: "+idAB+"\n")
		writeFile(t, filepath.Join(dir, "ok.json"), `{"a":1,"b":"x"}`)
		eng := digest.New(digest.WithHasher(digest.Unavailable("off")))
		if _, err := New(eng).Replay(Request{CasePath: casePath}); err == nil {
			t.Fatal("expected error without hash capability")
		}
	})
}
