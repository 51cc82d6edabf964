package types

import "strings"

type Quirk uint32

const (
	QuirkNoCredentialProvider Quirk = 1 << iota
	QuirkNoCredentialConfig
	QuirkNoTfsOnPremAuthCredentialProvider
	QuirkNoTfsOnPremAuthConfig
)

var quirkNames = []struct {
	quirk Quirk
	name  string
}{
	{QuirkNoCredentialProvider, "NoCredentialProvider"},
	{QuirkNoCredentialConfig, "NoCredentialConfig"},
	{QuirkNoTfsOnPremAuthCredentialProvider, "NoTfsOnPremAuthCredentialProvider"},
	{QuirkNoTfsOnPremAuthConfig, "NoTfsOnPremAuthConfig"},
}

func (q Quirk) String() string {
	for _, entry := range quirkNames {
		if entry.quirk == q {
			return entry.name
		}
	}
	return "Unknown"
}

// QuirkSet is the immutable set of quirks derived from one executable
// version. The zero value has no quirks.
type QuirkSet struct {
	bits Quirk
}

func NewQuirkSet(quirks ...Quirk) QuirkSet {
	var bits Quirk
	for _, quirk := range quirks {
		bits |= quirk
	}
	return QuirkSet{bits: bits}
}

func (s QuirkSet) Has(quirk Quirk) bool {
	return s.bits&quirk != 0
}

// SupportsCredentialProvider reports whether the executable can load a
// credential provider for feeds on the given kind of service.
func (s QuirkSet) SupportsCredentialProvider(onPremises bool) bool {
	if s.Has(QuirkNoCredentialProvider) {
		return false
	}
	return !(onPremises && s.Has(QuirkNoTfsOnPremAuthCredentialProvider))
}

// SupportsCredentialConfig reports whether credentials may be written into
// the package-source config file.
func (s QuirkSet) SupportsCredentialConfig(onPremises bool) bool {
	if s.Has(QuirkNoCredentialConfig) {
		return false
	}
	return !(onPremises && s.Has(QuirkNoTfsOnPremAuthConfig))
}

func (s QuirkSet) String() string {
	var names []string
	for _, entry := range quirkNames {
		if s.Has(entry.quirk) {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, ", ")
}
