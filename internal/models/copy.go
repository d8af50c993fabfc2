package models

import (
	"fmt"
	"strings"
)

// CopyVariant selects which labelled copy of an invoice is rendered.
type CopyVariant string

const (
	CopyOriginal  CopyVariant = "original"
	CopyDuplicate CopyVariant = "duplicate"
)

// AllCopyVariants lists every variant in export order.
var AllCopyVariants = []CopyVariant{CopyOriginal, CopyDuplicate}

// Label returns the caption printed above the title.
func (c CopyVariant) Label() string {
	if c == CopyDuplicate {
		return "DUPLICATE FOR TRANSPORTER"
	}
	return "ORIGINAL FOR RECIPIENT"
}

// Suffix returns the file name suffix for exported copies.
func (c CopyVariant) Suffix() string {
	if c == CopyDuplicate {
		return "Duplicate"
	}
	return "Original"
}

// ParseCopyVariant parses "original" or "duplicate". Anything else falls back
// to the original copy and reports false.
func ParseCopyVariant(s string) (CopyVariant, bool) {
	switch CopyVariant(strings.ToLower(strings.TrimSpace(s))) {
	case CopyOriginal:
		return CopyOriginal, true
	case CopyDuplicate:
		return CopyDuplicate, true
	}
	return CopyOriginal, false
}

// ParseCopySelection parses an export selection: "original", "duplicate" or
// "both". An empty selection means both.
func ParseCopySelection(s string) ([]CopyVariant, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "both":
		return append([]CopyVariant(nil), AllCopyVariants...), nil
	default:
		c, ok := ParseCopyVariant(v)
		if !ok {
			return nil, fmt.Errorf("unknown copy %q (want original, duplicate or both)", s)
		}
		return []CopyVariant{c}, nil
	}
}
