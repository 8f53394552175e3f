package identity

import "strings"

const (
	DefaultSeparators = "_-. "
)

// DefaultPrefixes covers the key drift observed between the account and
// profile stores, e.g. emp_001 vs EMP001 vs 001.
var DefaultPrefixes = []string{"emp"}

// Normalizer implements the normalized-equality rule for employee keys:
// case folding, separator stripping, and removal of a configurable set of
// prefixes. It is a pure value; methods never touch shared state.
type Normalizer struct {
	separators string
	prefixes   []string
}

func NewNormalizer(separators string, prefixes []string) Normalizer {
	if separators == "" {
		separators = DefaultSeparators
	}
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	lowered := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = foldKey(p, separators)
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return Normalizer{separators: separators, prefixes: lowered}
}

// Fold lowercases a key and strips separator characters, leaving any prefix
// in place. This is the portion of normalization the store can mirror in SQL.
func (n Normalizer) Fold(key string) string {
	return foldKey(key, n.separators)
}

// Separators returns the configured separator set. Stores that mirror Fold
// in SQL must build their fold expression from this exact set, or their
// candidate filter stops being a superset of normalized matches.
func (n Normalizer) Separators() string {
	return n.separators
}

// Normalize returns the canonical comparison form of a key: folded, with at
// most one known prefix removed. Two keys refer to the same employee exactly
// when their normalized forms are equal.
func (n Normalizer) Normalize(key string) string {
	folded := n.Fold(key)
	for _, prefix := range n.prefixes {
		if len(folded) > len(prefix) && strings.HasPrefix(folded, prefix) {
			return folded[len(prefix):]
		}
	}
	return folded
}

// Variants expands a normalized key into every folded form that could appear
// in the profile store: the bare key plus each known prefix ahead of it.
// The store filters on these; the resolver re-validates each hit with
// Normalize before trusting the match.
func (n Normalizer) Variants(normalized string) []string {
	variants := make([]string, 0, len(n.prefixes)+1)
	variants = append(variants, normalized)
	for _, prefix := range n.prefixes {
		variants = append(variants, prefix+normalized)
	}
	return variants
}

func foldKey(key, separators string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if strings.ContainsRune(separators, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
