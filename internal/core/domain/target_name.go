package domain

import "unique"

// TargetName identifies a make target.
// Names are interned since the same dependency is usually listed by many targets.
type TargetName struct {
	h unique.Handle[string]
}

// NewTargetName interns s as a TargetName.
func NewTargetName(s string) TargetName {
	return TargetName{h: unique.Make(s)}
}

// NewTargetNames interns every string in s.
func NewTargetNames(s []string) []TargetName {
	res := make([]TargetName, len(s))
	for i, name := range s {
		res[i] = NewTargetName(name)
	}
	return res
}

// TargetNameStrings converts names back to plain strings.
func TargetNameStrings(names []TargetName) []string {
	res := make([]string, len(names))
	for i, name := range names {
		res[i] = name.String()
	}
	return res
}

// String returns the underlying name.
func (n TargetName) String() string {
	var zero unique.Handle[string]
	if n.h == zero {
		return ""
	}
	return n.h.Value()
}

// IsZero reports whether n was never set.
func (n TargetName) IsZero() bool {
	var zero unique.Handle[string]
	return n.h == zero
}

// MarshalText implements encoding.TextMarshaler.
func (n TargetName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *TargetName) UnmarshalText(text []byte) error {
	n.h = unique.Make(string(text))
	return nil
}
