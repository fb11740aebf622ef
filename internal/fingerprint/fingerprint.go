// Package fingerprint derives a stable, non-identifying digest of the host
// the console runs on. The digest is sent to the service as a claimed device
// identity; the service decides what to trust, the client only transmits it.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// delimiter joins the ordered signals before hashing. Changing it changes
// every fingerprint ever issued.
const delimiter = "|"

// Signals is the fixed, ordered set of ambient characteristics that feed the
// digest. Unavailable signals stay empty strings so the ordering, and with it
// the digest, remains stable across hosts that lack a probe.
type Signals struct {
	UserAgent string
	Locale    string
	CPUCount  string
	MemoryGB  string
	Screen    string
	Timezone  string
}

func (s Signals) ordered() []string {
	return []string{s.UserAgent, s.Locale, s.CPUCount, s.MemoryGB, s.Screen, s.Timezone}
}

// Compute hashes the ordered signals into a lowercase 64-char hex digest.
// Same signals in, same digest out; any single signal change yields a
// different digest with overwhelming probability.
func Compute(s Signals) string {
	sum := sha256.Sum256([]byte(strings.Join(s.ordered(), delimiter)))
	return hex.EncodeToString(sum[:])
}

// Generator produces fingerprints from a signal probe. The probe is injected
// so tests can pin signals while production code reads the live host.
type Generator struct {
	probe func() Signals
}

// New returns a generator backed by the live host probe.
func New() *Generator {
	return &Generator{probe: HostSignals}
}

// NewWithProbe returns a generator with a custom signal source.
func NewWithProbe(probe func() Signals) *Generator {
	return &Generator{probe: probe}
}

// Fingerprint probes the signals and computes the digest.
func (g *Generator) Fingerprint() string {
	return Compute(g.probe())
}

// UserAgent exposes the probe's user-agent string so the HTTP layer can send
// the same value the fingerprint was derived from.
func (g *Generator) UserAgent() string {
	return g.probe().UserAgent
}
