package digest_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/flyingrobots/ledger-kernel/pkg/canonical"
	"github.com/flyingrobots/ledger-kernel/pkg/digest"
	"github.com/flyingrobots/ledger-kernel/pkg/entry"
)

// TestAttestationIndependence verifies that attaching attestations never
// changes an entry's identifier.
// Property: ComputeID(e) == ComputeID(e + attestations) for any e
func TestAttestationIndependence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	eng := digest.New()

	properties.Property("attestations do not affect the identifier", prop.ForAll(
		func(keys []string, values []string, sigs []string) bool {
			base := canonical.Map{}
			for i := 0; i < len(keys) && i < len(values); i++ {
				if keys[i] == entry.FieldAttestations {
					continue
				}
				base[keys[i]] = canonical.Text(values[i])
			}
			attested := base.Clone()
			seq := canonical.Seq{}
			for _, s := range sigs {
				seq = append(seq, canonical.Map{"sig": canonical.Text(s)})
			}
			attested[entry.FieldAttestations] = seq

			plain, err := entry.FromValue(base)
			if err != nil {
				return false
			}
			signed, err := entry.FromValue(attested)
			if err != nil {
				return false
			}

			id1, err1 := eng.ComputeID(plain)
			id2, err2 := eng.ComputeID(signed)
			if err1 != nil || err2 != nil {
				return false
			}
			return id1 == id2
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AnyString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestIdentifierSensitivity verifies that changing a preimage value changes
// the identifier.
// Property: a != b implies ComputeID({k:a}) != ComputeID({k:b})
func TestIdentifierSensitivity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	eng := digest.New()

	properties.Property("distinct payloads give distinct identifiers", prop.ForAll(
		func(a, b int64) bool {
			if a == b {
				return true
			}
			ea, err := entry.FromValue(canonical.Map{"seq": canonical.NewInt(a)})
			if err != nil {
				return false
			}
			eb, err := entry.FromValue(canonical.Map{"seq": canonical.NewInt(b)})
			if err != nil {
				return false
			}
			ida, err1 := eng.ComputeID(ea)
			idb, err2 := eng.ComputeID(eb)
			return err1 == nil && err2 == nil && ida != idb
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
