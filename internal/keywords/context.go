package keywords

import (
	"context"
	"log/slog"

	"github.com/micasillero/courier/internal/tariff"
	"github.com/micasillero/courier/internal/tariff/model"
)

// DefaultMaxSiblings caps how many sibling descriptions go into a prompt so
// residual categories under large chapters do not blow up the token count.
const DefaultMaxSiblings = 25

// Context is everything the generator needs to know about one tariff item.
// SiblingDescriptions is a bounded display list for the prompt; ExclusionTerms
// is only populated for residual categories ("los demás"), where the keywords
// must steer searches away from the named siblings.
type Context struct {
	Code                string
	Description         string
	SpecificDescription string
	ParentDescription   string
	IsResidual          bool
	SiblingDescriptions []string
	ExclusionTerms      []string
}

// ContextBuilder assembles generation contexts from the tariff catalog.
type ContextBuilder struct {
	catalog     *tariff.SiblingCatalog
	maxSiblings int
}

func NewContextBuilder(catalog *tariff.SiblingCatalog, maxSiblings int) *ContextBuilder {
	if maxSiblings <= 0 {
		maxSiblings = DefaultMaxSiblings
	}
	return &ContextBuilder{catalog: catalog, maxSiblings: maxSiblings}
}

// Build never fails: sibling lookup errors are logged and the context
// degrades to the item's own description.
func (b *ContextBuilder) Build(ctx context.Context, item *model.TariffItem) Context {
	out := Context{
		Code:                item.Code,
		Description:         item.Description,
		SpecificDescription: item.SpecificDescription(),
		ParentDescription:   item.ParentDescription(),
		IsResidual:          tariff.IsResidualDescription(item.SpecificDescription()),
	}

	siblings, err := b.catalog.Siblings(ctx, item)
	if err != nil {
		slog.Warn("sibling lookup failed, generating without sibling context", "code", item.Code, "error", err)
		return out
	}

	// The prompt display list is bounded, but exclusion terms must cover every
	// sibling or a residual partida would keep keywords it should exclude.
	out.SiblingDescriptions = tariff.SiblingDescriptions(siblings, b.maxSiblings)
	if out.IsResidual {
		out.ExclusionTerms = tariff.ExclusionTerms(item, siblings)
	}
	return out
}
