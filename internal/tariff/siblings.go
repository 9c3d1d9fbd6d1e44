package tariff

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/micasillero/courier/internal/tariff/model"
)

// residualPrefixes mark catch-all ("all others") categories in the Spanish
// tariff nomenclature.
var residualPrefixes = []string{"los demás", "las demás"}

const exceptionMarker = "excepto"

// CatalogSource is the subset of the store the sibling catalog reads from.
type CatalogSource interface {
	StructuralSiblings(ctx context.Context, chapterCode string, level int, excludeID uuid.UUID) ([]model.TariffItem, error)
	DescriptionSiblings(ctx context.Context, parentDescription string, excludeID uuid.UUID) ([]model.TariffItem, error)
}

// SiblingCatalog finds the tariff items that share a structural level with a
// given item. Structural chapter/level lookup is preferred; when the hierarchy
// fields have not been backfilled yet it falls back to matching on the parent
// description text.
type SiblingCatalog struct {
	src CatalogSource
}

func NewSiblingCatalog(src CatalogSource) *SiblingCatalog {
	return &SiblingCatalog{src: src}
}

// Siblings returns the items sharing the target's chapter and hierarchy level.
// Items without backfilled hierarchy fields fall back to the description-chain
// match, which is bounded and ordered by code. An item with neither hierarchy
// fields nor a parent description has no determinable siblings and yields an
// empty slice, not an error.
func (c *SiblingCatalog) Siblings(ctx context.Context, item *model.TariffItem) ([]model.TariffItem, error) {
	if item == nil {
		return nil, nil
	}
	if item.ChapterCode != "" && item.HierarchyLevel > 0 {
		return c.src.StructuralSiblings(ctx, item.ChapterCode, item.HierarchyLevel, item.ID)
	}
	if parent := item.ParentDescription(); parent != "" {
		return c.src.DescriptionSiblings(ctx, parent, item.ID)
	}
	return nil, nil
}

// IsResidualDescription reports whether a specific description segment names a
// residual ("Los demás"/"Las demás") category.
func IsResidualDescription(specific string) bool {
	lowered := strings.ToLower(strings.TrimSpace(specific))
	for _, prefix := range residualPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}

// ExceptionTerm extracts the text after "excepto" from a residual description,
// trimmed and with a trailing period removed. Returns "" when no exception
// clause is present.
func ExceptionTerm(specific string) string {
	lowered := strings.ToLower(specific)
	_, after, found := strings.Cut(lowered, exceptionMarker)
	if !found {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(after), "."))
}

// ExclusionTerms computes the exclusion term set for a residual item: the
// specific descriptions of its non-residual siblings plus the item's own
// "excepto" clause, case-normalized, deduplicated and sorted. Non-residual
// items and items without siblings yield an empty set; this never fails.
func ExclusionTerms(item *model.TariffItem, siblings []model.TariffItem) []string {
	if item == nil {
		return nil
	}
	specific := item.SpecificDescription()
	if !IsResidualDescription(specific) {
		return nil
	}

	seen := make(map[string]struct{})
	for _, sibling := range siblings {
		desc := sibling.SpecificDescription()
		if desc == "" || IsResidualDescription(desc) {
			continue
		}
		seen[strings.ToLower(desc)] = struct{}{}
	}
	if term := ExceptionTerm(specific); term != "" {
		seen[term] = struct{}{}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// SiblingDescriptions returns the specific description segment of every
// sibling, bounded to maxSiblings (-1 for unlimited). Used as generation
// context for the keyword collaborator.
func SiblingDescriptions(siblings []model.TariffItem, maxSiblings int) []string {
	descs := make([]string, 0, len(siblings))
	for _, sibling := range siblings {
		if desc := sibling.SpecificDescription(); desc != "" {
			descs = append(descs, desc)
		}
		if maxSiblings >= 0 && len(descs) >= maxSiblings {
			break
		}
	}
	return descs
}
