package dsa

import (
	"fmt"
	"regexp"
	"strings"
)

// Standard selects which FIPS 186 revision drives parameter generation
// and digest selection.
type Standard int

const (
	// FIPS186v2 is the legacy SHA-1 regimen with N fixed at 160.
	FIPS186v2 Standard = iota + 1
	// FIPS186v4 is the SHA-2 regimen with configurable N.
	FIPS186v4
)

var modernStandard = regexp.MustCompile(`186-[34]`)

// ParseStandard maps a standard string to a Standard. Any value
// containing "186-3" or "186-4" selects FIPS186v4; everything else,
// including the empty string, selects the legacy FIPS186v2.
func ParseStandard(s string) Standard {
	if modernStandard.MatchString(s) {
		return FIPS186v4
	}
	return FIPS186v2
}

func (s Standard) String() string {
	if s == FIPS186v4 {
		return "FIPS 186-4"
	}
	return "FIPS 186-2"
}

// ProveMode selects which of the generated primes must carry an
// unconditional primality proof instead of the probable-prime regimen.
type ProveMode int

const (
	ProveNone ProveMode = iota
	ProveP
	ProveQ
	ProveBoth
)

// ParseProve maps the conventional option spellings to a ProveMode:
// "P" proves p, "Q" proves q, boolean-ish truthy values prove both,
// falsy values prove neither.
func ParseProve(s string) (ProveMode, error) {
	switch strings.TrimSpace(s) {
	case "", "0", "false":
		return ProveNone, nil
	case "P", "p":
		return ProveP, nil
	case "Q", "q":
		return ProveQ, nil
	case "1", "true", "both":
		return ProveBoth, nil
	}
	return ProveNone, fmt.Errorf("%w: prove option must be P, Q, or a boolean, got %q", ErrUsage, s)
}

func (m ProveMode) provesP() bool { return m == ProveP || m == ProveBoth }
func (m ProveMode) provesQ() bool { return m == ProveQ || m == ProveBoth }

// GenConfig configures a parameter-generation run.
type GenConfig struct {
	// Size is the bit length L of p. Required, at least 256.
	Size int

	// QSize is the bit length N of q. Zero selects the default for the
	// standard: 160 under FIPS186v2 (the only legal value there), and
	// under FIPS186v4 256 when Size >= 2048, otherwise 160.
	QSize int

	// Seed optionally supplies the starting domain-parameter seed.
	// Under FIPS186v2 it is used only if exactly 20 bytes long; under
	// FIPS186v4 only if at least QSize bits long. Otherwise it is
	// silently discarded and fresh randomness is used.
	Seed []byte

	// Standard overrides the engine's standard for this run. Zero keeps
	// the engine default.
	Standard Standard

	// Prove upgrades the selected primes to provable primality.
	Prove ProveMode
}

// ProgressFunc observes generation progress. It is invoked once per
// outer-loop iteration with the phase name ("q" or "p") and the
// iteration index. Returning a non-nil error stops the run; the error
// is surfaced wrapped in ErrCanceled.
type ProgressFunc func(phase string, iteration int) error
