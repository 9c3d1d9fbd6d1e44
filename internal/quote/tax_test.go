package quote

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/micasillero/courier/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "want %s, got %s", want, got)
}

func TestComputeTaxes_Cascade(t *testing.T) {
	breakdown, err := ComputeTaxes(TaxInput{
		DeclaredValue:       d("100.00"),
		WeightToUse:         d("5"),
		FreightRatePerPound: d("2.50"),
		Rates: TaxRates{
			DAI: d("0.10"),
			ISV: d("0.15"),
		},
	})
	assert.NoError(t, err)

	assertDecimalEqual(t, "12.50", breakdown.FreightCost)
	assertDecimalEqual(t, "112.50", breakdown.CIFValue)
	assertDecimalEqual(t, "11.25", breakdown.DAI)
	assertDecimalEqual(t, "0", breakdown.ISC)
	assertDecimalEqual(t, "0", breakdown.ISPC)
	// ISV applies to CIF plus the prior duties: (112.50 + 11.25) * 0.15
	assertDecimalEqual(t, "18.5625", breakdown.ISV)
	assertDecimalEqual(t, "29.8125", breakdown.TotalTax)
	assertDecimalEqual(t, "142.3125", breakdown.TotalLandedCost)
}

func TestComputeTaxes_AllRates(t *testing.T) {
	breakdown, err := ComputeTaxes(TaxInput{
		DeclaredValue:       d("200"),
		WeightToUse:         d("10"),
		FreightRatePerPound: d("3"),
		Rates: TaxRates{
			DAI:  d("0.15"),
			ISC:  d("0.20"),
			ISPC: d("0.05"),
			ISV:  d("0.15"),
		},
	})
	assert.NoError(t, err)

	assertDecimalEqual(t, "30", breakdown.FreightCost)
	assertDecimalEqual(t, "230", breakdown.CIFValue)
	assertDecimalEqual(t, "34.5", breakdown.DAI)
	assertDecimalEqual(t, "46", breakdown.ISC)
	assertDecimalEqual(t, "11.5", breakdown.ISPC)
	// isvBase = 230 + 34.5 + 46 + 11.5 = 322
	assertDecimalEqual(t, "48.3", breakdown.ISV)
	assertDecimalEqual(t, "140.3", breakdown.TotalTax)
	assertDecimalEqual(t, "370.3", breakdown.TotalLandedCost)
}

func TestComputeTaxes_Conservation(t *testing.T) {
	breakdown, err := ComputeTaxes(TaxInput{
		DeclaredValue:       d("57.34"),
		WeightToUse:         d("3.2"),
		FreightRatePerPound: d("2.75"),
		Rates: TaxRates{
			DAI: d("0.1"),
			ISC: d("0.03"),
			ISV: d("0.15"),
		},
	})
	assert.NoError(t, err)

	sum := breakdown.DAI.Add(breakdown.ISC).Add(breakdown.ISPC).Add(breakdown.ISV)
	assert.True(t, sum.Equal(breakdown.TotalTax))

	landed := d("57.34").Add(breakdown.FreightCost).Add(breakdown.TotalTax)
	assert.True(t, landed.Equal(breakdown.TotalLandedCost))
}

func TestComputeTaxes_ZeroRatesAreNeutral(t *testing.T) {
	breakdown, err := ComputeTaxes(TaxInput{
		DeclaredValue:       d("80"),
		WeightToUse:         d("4"),
		FreightRatePerPound: d("2.5"),
	})
	assert.NoError(t, err)

	assertDecimalEqual(t, "0", breakdown.TotalTax)
	// Landed cost is declared value plus freight only.
	assertDecimalEqual(t, "90", breakdown.TotalLandedCost)
}

func TestComputeTaxes_ZeroWeight(t *testing.T) {
	breakdown, err := ComputeTaxes(TaxInput{
		DeclaredValue:       d("100"),
		WeightToUse:         decimal.Zero,
		FreightRatePerPound: d("2.5"),
		Rates:               TaxRates{ISV: d("0.15")},
	})
	assert.NoError(t, err)
	assertDecimalEqual(t, "0", breakdown.FreightCost)
	assertDecimalEqual(t, "100", breakdown.CIFValue)
	assertDecimalEqual(t, "15", breakdown.ISV)
}

func TestComputeTaxes_RejectsInvalidInputs(t *testing.T) {
	valid := TaxInput{
		DeclaredValue:       d("100"),
		WeightToUse:         d("5"),
		FreightRatePerPound: d("2.5"),
		Rates:               TaxRates{ISV: d("0.15")},
	}

	tests := []struct {
		name   string
		mutate func(*TaxInput)
	}{
		{"negative declared value", func(in *TaxInput) { in.DeclaredValue = d("-1") }},
		{"negative weight", func(in *TaxInput) { in.WeightToUse = d("-0.5") }},
		{"negative freight rate", func(in *TaxInput) { in.FreightRatePerPound = d("-2.5") }},
		{"negative rate", func(in *TaxInput) { in.Rates.DAI = d("-0.1") }},
		{"rate above one", func(in *TaxInput) { in.Rates.ISV = d("1.15") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := ComputeTaxes(in)
			assert.Error(t, err)
			assert.True(t, apperrors.IsInvalidInput(err))
		})
	}
}

func TestTaxBreakdown_Rounded(t *testing.T) {
	breakdown, err := ComputeTaxes(TaxInput{
		DeclaredValue:       d("100.00"),
		WeightToUse:         d("5"),
		FreightRatePerPound: d("2.50"),
		Rates:               TaxRates{DAI: d("0.10"), ISV: d("0.15")},
	})
	assert.NoError(t, err)

	rounded := breakdown.Rounded()
	assertDecimalEqual(t, "18.56", rounded.ISV)
	assertDecimalEqual(t, "29.81", rounded.TotalTax)
	assertDecimalEqual(t, "142.31", rounded.TotalLandedCost)
}
