// Package tariff implements the tariff catalog core: hierarchy resolution for
// dotted codes, sibling lookup, residual-category exclusion terms, bulk import
// and the hierarchy backfill pass.
package tariff

import (
	"strings"

	apperrors "github.com/micasillero/courier/internal/errors"
)

// MaxHierarchyLevel caps the derived level; tariff nomenclatures do not nest
// deeper than chapter/heading/subheading/detail.
const MaxHierarchyLevel = 4

const zeroSegment = "00"

// Hierarchy holds the structural metadata derived from a tariff code. It is a
// pure function of the code string and can be re-derived at any time.
type Hierarchy struct {
	ChapterCode     string `json:"chapterCode"`               // First segment, left-padded to 4 digits
	HeadingCode     string `json:"headingCode"`               // "chapter.subheading", or the chapter alone
	ParentCode      string `json:"parentCode,omitempty"`      // "" for top-level items
	GrandparentCode string `json:"grandparentCode,omitempty"` // "" when fewer than two significant non-chapter segments
	Level           int    `json:"level"`                     // 1 (chapter) .. 4 (detail)
	IsLeaf          bool   `json:"isLeaf"`
}

// ResolveHierarchy derives hierarchy metadata from a dotted tariff code.
//
// The code is split on dots. A segment is significant when it is neither "00"
// nor "0". The level is one plus the number of significant non-chapter
// segments, capped at MaxHierarchyLevel. The parent code is the code with its
// last significant segment replaced by "00"; the grandparent additionally
// zeroes the second-to-last. Both require the code to have at least three
// segments, matching the canonical AAAA.BB.CC.DD form; legacy five-segment
// codes go through the same scan.
//
// An empty code or one containing anything but ASCII digits and dots is
// rejected with a MalformedCodeError.
func ResolveHierarchy(code string) (Hierarchy, error) {
	trimmed := strings.TrimSpace(code)
	if err := validateCode(trimmed); err != nil {
		return Hierarchy{}, err
	}

	parts := strings.Split(trimmed, ".")

	var chapter string
	if parts[0] != "" {
		chapter = leftPad(parts[0], 4)
	} else if len(trimmed) >= 4 {
		chapter = trimmed[:4]
	} else {
		chapter = leftPad(trimmed, 4)
	}

	heading := chapter
	if len(parts) >= 2 && parts[1] != "" {
		heading = parts[0] + "." + parts[1]
	}

	// Indices of significant segments, chapter included.
	var significant []int
	for i, part := range parts {
		if isSignificant(part) {
			significant = append(significant, i)
		}
	}

	level := 1
	for _, idx := range significant {
		if idx > 0 {
			level++
		}
	}
	if level > MaxHierarchyLevel {
		level = MaxHierarchyLevel
	}

	var parent, grandparent string
	if len(parts) >= 3 && len(significant) > 0 {
		last := significant[len(significant)-1]
		if last > 0 { // the chapter itself has no parent
			parentParts := append([]string(nil), parts...)
			parentParts[last] = zeroSegment
			parent = strings.Join(parentParts, ".")
		}
		if len(significant) >= 2 {
			secondLast := significant[len(significant)-2]
			if secondLast > 0 {
				gpParts := append([]string(nil), parts...)
				gpParts[last] = zeroSegment
				gpParts[secondLast] = zeroSegment
				grandparent = strings.Join(gpParts, ".")
			}
		}
	}

	return Hierarchy{
		ChapterCode:     chapter,
		HeadingCode:     heading,
		ParentCode:      parent,
		GrandparentCode: grandparent,
		Level:           level,
		// Non-leaf nodes are not tracked; every resolved code is a leaf.
		IsLeaf: true,
	}, nil
}

func validateCode(code string) error {
	if code == "" {
		return &apperrors.MalformedCodeError{Code: code}
	}
	hasDigit := false
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '.':
		default:
			return &apperrors.MalformedCodeError{Code: code}
		}
	}
	if !hasDigit {
		return &apperrors.MalformedCodeError{Code: code}
	}
	return nil
}

func isSignificant(segment string) bool {
	return segment != "" && segment != "00" && segment != "0"
}

// leftPad pads s with leading zeros up to width, like Python's zfill.
func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
