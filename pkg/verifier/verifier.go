// Package verifier checks emitted ledger proofs offline.
//
// No network access and no ledger backend: the verifier reads a test case
// descriptor and the proof files it names, and recomputes identifiers with
// the digest engine.
package verifier

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flyingrobots/ledger-kernel/pkg/digest"
	"github.com/flyingrobots/ledger-kernel/pkg/docio"
	"github.com/flyingrobots/ledger-kernel/pkg/entry"
)

// Mode is the storage mode of the ledger under test.
type Mode string

const (
	ModeBranch  Mode = "branch"
	ModeNotes   Mode = "notes"
	ModePrivate Mode = "private"
)

// Modes lists the accepted modes.
var Modes = []Mode{ModeBranch, ModeNotes, ModePrivate}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q (choose from branch, notes, private)", s)
}

// ProofDirError reports a proof directory that does not exist.
type ProofDirError struct {
	Path string
}

func (e *ProofDirError) Error() string {
	return "proof dir not found: " + e.Path
}

// Request describes one verification run.
type Request struct {
	CasePath string
	ProofDir string
	Mode     Mode
}

// Report is the outcome of a verification run.
type Report struct {
	Case     string        `json:"case"`
	Mode     Mode          `json:"mode"`
	ProofDir string        `json:"proof_dir,omitempty"`
	Verified bool          `json:"verified"`
	Checks   []CheckResult `json:"checks,omitempty"`
	Summary  string        `json:"summary,omitempty"`
	// IssueCount is the number of failed checks.
	IssueCount int `json:"issue_count"`
}

// CheckResult is one replayed entry.
type CheckResult struct {
	Name     string `json:"name"`
	Pass     bool   `json:"pass"`
	Expected string `json:"expected"`
	Computed string `json:"computed"`
}

// Verifier runs proof checks.
type Verifier struct {
	engine *digest.Engine
}

// New returns a verifier that recomputes identifiers with engine.
func New(engine *digest.Engine) *Verifier {
	if engine == nil {
		engine = digest.New()
	}
	return &Verifier{engine: engine}
}

// Prepare validates the request without reading the case. An empty proof
// directory is allowed; a named one must exist.
func (v *Verifier) Prepare(req Request) (*Report, error) {
	if req.Mode == "" {
		req.Mode = ModeBranch
	}
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return nil, err
	}
	if req.ProofDir != "" && !docio.IsDir(req.ProofDir) {
		return nil, &ProofDirError{Path: req.ProofDir}
	}
	return &Report{
		Case:     req.CasePath,
		Mode:     req.Mode,
		ProofDir: req.ProofDir,
		Verified: true,
	}, nil
}

// Case is a test case descriptor.
type Case struct {
	Name    string      `yaml:"name"`
	Entries []CaseEntry `yaml:"entries"`
}

// CaseEntry names an emitted entry file and its expected identifier.
type CaseEntry struct {
	File string `yaml:"file"`
	ID   string `yaml:"id"`
}

// LoadCase reads and validates a case descriptor.
func LoadCase(path string) (*Case, error) {
	data, err := docio.ReadFile(docio.KindCase, path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Case
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse case %s: %w", path, err)
	}
	if len(c.Entries) == 0 {
		return nil, fmt.Errorf("case %s lists no entries", path)
	}
	for i, e := range c.Entries {
		if e.File == "" {
			return nil, fmt.Errorf("case %s: entry %d has no file", path, i)
		}
		if e.ID == "" {
			return nil, fmt.Errorf("case %s: entry %d (%s) has no id", path, i, e.File)
		}
	}
	return &c, nil
}

// Replay recomputes the identifier of every entry listed by the case and
// compares it with the expected one. Entry files resolve against the proof
// directory, or against the case file's directory when none is given.
// Mismatches are failed checks; unreadable or invalid entries are errors.
func (v *Verifier) Replay(req Request) (*Report, error) {
	report, err := v.Prepare(req)
	if err != nil {
		return nil, err
	}
	c, err := LoadCase(req.CasePath)
	if err != nil {
		return nil, err
	}

	base := req.ProofDir
	if base == "" {
		base = filepath.Dir(req.CasePath)
	}

	for _, ce := range c.Entries {
		path := ce.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		data, err := docio.ReadFile(docio.KindEntry, path)
		if err != nil {
			return nil, err
		}
		ent, err := entry.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ce.File, err)
		}
		id, err := v.engine.ComputeID(ent)
		if err != nil {
			return nil, err
		}
		report.Checks = append(report.Checks, CheckResult{
			Name:     ce.File,
			Pass:     id == ce.ID,
			Expected: ce.ID,
			Computed: id,
		})
	}

	for _, chk := range report.Checks {
		if !chk.Pass {
			report.IssueCount++
		}
	}
	report.Verified = report.IssueCount == 0
	if report.Verified {
		report.Summary = fmt.Sprintf("PASS: %d/%d entries replayed", len(report.Checks), len(report.Checks))
	} else {
		report.Summary = fmt.Sprintf("FAIL: %d/%d entries mismatched", report.IssueCount, len(report.Checks))
	}
	return report, nil
}

// IsProofDirError reports whether err is a missing proof directory.
func IsProofDirError(err error) bool {
	var pe *ProofDirError
	return errors.As(err, &pe)
}
