package calculations

import (
	"fmt"
	"strings"
)

// Kind is the discriminator selecting a calculation variant. Stored values
// are always the canonical lower-case form.
type Kind string

const (
	Addition       Kind = "addition"
	Subtraction    Kind = "subtraction"
	Multiplication Kind = "multiplication"
	Division       Kind = "division"
)

// Kinds returns every supported discriminator in canonical form.
func Kinds() []Kind {
	return []Kind{Addition, Subtraction, Multiplication, Division}
}

// ParseKind normalizes a raw discriminator (surrounding whitespace trimmed,
// case folded) and returns the canonical Kind. Unknown discriminators fail
// with ErrUnknownType, never a silent default.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case Addition, Subtraction, Multiplication, Division:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case Addition, Subtraction, Multiplication, Division:
		return true
	}
	return false
}
