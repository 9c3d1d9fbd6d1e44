package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/micasillero/courier/internal/errors"
)

// TaxRates are the four import tax fractions of a tariff item, each in [0,1].
type TaxRates struct {
	DAI  decimal.Decimal
	ISC  decimal.Decimal
	ISPC decimal.Decimal
	ISV  decimal.Decimal
}

// TaxInput carries everything the cascade needs. The freight rate is an
// explicit parameter, not a hidden configuration read, so the computation is
// testable without a database.
type TaxInput struct {
	DeclaredValue       decimal.Decimal
	WeightToUse         decimal.Decimal
	FreightRatePerPound decimal.Decimal
	Rates               TaxRates
}

// TaxBreakdown is the result of the cascade. Intermediate amounts keep full
// decimal precision; callers round to 2 places only for presentation.
type TaxBreakdown struct {
	FreightCost     decimal.Decimal `json:"freightCost"`
	CIFValue        decimal.Decimal `json:"cifValue"`
	DAI             decimal.Decimal `json:"dai"`
	ISC             decimal.Decimal `json:"isc"`
	ISPC            decimal.Decimal `json:"ispc"`
	ISV             decimal.Decimal `json:"isv"`
	TotalTax        decimal.Decimal `json:"totalTax"`
	TotalLandedCost decimal.Decimal `json:"totalLandedCost"`
}

// ComputeTaxes runs the cascading duty computation on a CIF base, in fixed
// order: freight, CIF, then DAI/ISC/ISPC on the CIF value, then ISV on
// CIF plus the three prior duties. Reordering the stages changes the result.
//
// The nomenclature also admits a flat variant that taxes the declared value
// alone; the live quotation flow uses the CIF cascade, which is the only one
// implemented here.
//
// Inputs are rejected before any arithmetic: negative value, weight or rate,
// or a rate above 1, yields an InvalidInputError.
func ComputeTaxes(in TaxInput) (TaxBreakdown, error) {
	if in.DeclaredValue.IsNegative() {
		return TaxBreakdown{}, &apperrors.InvalidInputError{Field: "declaredValue", Reason: "must not be negative"}
	}
	if in.WeightToUse.IsNegative() {
		return TaxBreakdown{}, &apperrors.InvalidInputError{Field: "weightToUse", Reason: "must not be negative"}
	}
	if in.FreightRatePerPound.IsNegative() {
		return TaxBreakdown{}, &apperrors.InvalidInputError{Field: "freightRatePerPound", Reason: "must not be negative"}
	}
	if err := validateRates(in.Rates); err != nil {
		return TaxBreakdown{}, err
	}

	freightCost := in.WeightToUse.Mul(in.FreightRatePerPound)
	cifValue := in.DeclaredValue.Add(freightCost)

	dai := cifValue.Mul(in.Rates.DAI)
	isc := cifValue.Mul(in.Rates.ISC)
	ispc := cifValue.Mul(in.Rates.ISPC)

	isvBase := cifValue.Add(dai).Add(isc).Add(ispc)
	isv := isvBase.Mul(in.Rates.ISV)

	totalTax := dai.Add(isc).Add(ispc).Add(isv)
	totalLandedCost := in.DeclaredValue.Add(freightCost).Add(totalTax)

	return TaxBreakdown{
		FreightCost:     freightCost,
		CIFValue:        cifValue,
		DAI:             dai,
		ISC:             isc,
		ISPC:            ispc,
		ISV:             isv,
		TotalTax:        totalTax,
		TotalLandedCost: totalLandedCost,
	}, nil
}

// Rounded returns a copy with every amount rounded to 2 decimal places for
// presentation.
func (b TaxBreakdown) Rounded() TaxBreakdown {
	return TaxBreakdown{
		FreightCost:     b.FreightCost.Round(2),
		CIFValue:        b.CIFValue.Round(2),
		DAI:             b.DAI.Round(2),
		ISC:             b.ISC.Round(2),
		ISPC:            b.ISPC.Round(2),
		ISV:             b.ISV.Round(2),
		TotalTax:        b.TotalTax.Round(2),
		TotalLandedCost: b.TotalLandedCost.Round(2),
	}
}

func validateRates(rates TaxRates) error {
	one := decimal.NewFromInt(1)
	for _, r := range []struct {
		name string
		rate decimal.Decimal
	}{
		{"dai", rates.DAI},
		{"isc", rates.ISC},
		{"ispc", rates.ISPC},
		{"isv", rates.ISV},
	} {
		if r.rate.IsNegative() || r.rate.GreaterThan(one) {
			return &apperrors.InvalidInputError{
				Field:  r.name,
				Reason: fmt.Sprintf("rate %s outside [0,1]", r.rate),
			}
		}
	}
	return nil
}
