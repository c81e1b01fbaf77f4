package enums

import "fmt"

// SequenceKind selects which shared counter a caller is incrementing.
type SequenceKind string

const (
	SequenceKindOrder   SequenceKind = "order"
	SequenceKindInvoice SequenceKind = "invoice"
)

var validSequenceKinds = []SequenceKind{
	SequenceKindOrder,
	SequenceKindInvoice,
}

// String implements fmt.Stringer.
func (s SequenceKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SequenceKind.
func (s SequenceKind) IsValid() bool {
	for _, candidate := range validSequenceKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSequenceKind converts raw input into a SequenceKind.
func ParseSequenceKind(value string) (SequenceKind, error) {
	for _, candidate := range validSequenceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sequence kind %q", value)
}
