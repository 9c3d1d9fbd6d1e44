package tariff

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/micasillero/courier/internal/errors"
	"github.com/micasillero/courier/internal/tariff/model"
)

// ImportRow is one bulk-import source row. Rates arrive as decimal fractions
// ("0.15" for 15%); "-" or blank normalize to zero.
type ImportRow struct {
	Code        string
	Description string
	RateDAI     string
	RateISC     string
	RateISPC    string
	RateISV     string
	Category    string
}

// ImportError records one rejected row.
type ImportError struct {
	Line int
	Code string
	Err  error
}

func (e ImportError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Line, e.Code, e.Err)
}

// ImportResult summarizes one bulk import run.
type ImportResult struct {
	Imported int
	Failed   int
	Errors   []ImportError
}

// Importer loads tariff catalog rows. Hierarchy metadata is resolved at import
// time so the catalog is immediately queryable by chapter and level; a later
// backfill run over the same rows is a no-op.
type Importer struct {
	store *Store
}

func NewImporter(store *Store) *Importer {
	return &Importer{store: store}
}

// Import validates and inserts the given rows. Rows that fail validation are
// recorded and skipped; the batch never aborts because one row is bad.
func (im *Importer) Import(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	result := &ImportResult{}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item, err := im.buildItem(row)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportError{Line: i + 1, Code: row.Code, Err: err})
			continue
		}

		if err := im.store.Create(ctx, item); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportError{Line: i + 1, Code: row.Code, Err: err})
			continue
		}
		result.Imported++
	}

	return result, nil
}

func (im *Importer) buildItem(row ImportRow) (*model.TariffItem, error) {
	h, err := ResolveHierarchy(row.Code)
	if err != nil {
		return nil, err
	}

	dai, err := ParseRate("dai", row.RateDAI)
	if err != nil {
		return nil, err
	}
	isc, err := ParseRate("isc", row.RateISC)
	if err != nil {
		return nil, err
	}
	ispc, err := ParseRate("ispc", row.RateISPC)
	if err != nil {
		return nil, err
	}
	isv, err := ParseRate("isv", row.RateISV)
	if err != nil {
		return nil, err
	}

	category, err := parseCategory(row.Category)
	if err != nil {
		return nil, err
	}

	return &model.TariffItem{
		Code:            strings.TrimSpace(row.Code),
		Description:     strings.TrimSpace(row.Description),
		RateDAI:         dai,
		RateISC:         isc,
		RateISPC:        ispc,
		RateISV:         isv,
		CourierCategory: category,
		ChapterCode:     h.ChapterCode,
		HeadingCode:     h.HeadingCode,
		ParentCode:      h.ParentCode,
		GrandparentCode: h.GrandparentCode,
		HierarchyLevel:  h.Level,
		IsLeaf:          h.IsLeaf,
	}, nil
}

// ParseRate normalizes one tax-rate cell: "-" and blank mean zero, anything
// else must parse as a decimal fraction inside [0,1].
func ParseRate(field, raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" {
		return decimal.Zero, nil
	}

	rate, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, &apperrors.InvalidInputError{
			Field:  field,
			Reason: fmt.Sprintf("not a decimal: %q", raw),
		}
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, &apperrors.InvalidInputError{
			Field:  field,
			Reason: fmt.Sprintf("rate %s outside [0,1]", rate),
		}
	}
	return rate, nil
}

func parseCategory(raw string) (model.CourierCategory, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(model.CourierCategoryAllowed):
		return model.CourierCategoryAllowed, nil
	case string(model.CourierCategoryRestricted):
		return model.CourierCategoryRestricted, nil
	case string(model.CourierCategoryProhibited):
		return model.CourierCategoryProhibited, nil
	default:
		return "", &apperrors.InvalidInputError{Field: "category", Reason: fmt.Sprintf("unknown courier category %q", raw)}
	}
}
