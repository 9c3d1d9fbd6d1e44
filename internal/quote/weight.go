// Package quote implements landed-cost computation for courier shipments:
// volumetric-vs-actual weight selection and the CIF-based tax cascade, plus
// the quotation service that persists the results.
package quote

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/micasillero/courier/internal/errors"
)

// DefaultVolumetricDivisor is the standard courier volumetric factor in cubic
// inches per pound.
const DefaultVolumetricDivisor = 166

// Dimensions holds one article's physical attributes, dimensions in a shared
// linear unit and the actual scale weight.
type Dimensions struct {
	Length decimal.Decimal
	Width  decimal.Decimal
	Height decimal.Decimal
	Weight decimal.Decimal
}

// VolumetricWeight computes (length × width × height) / divisor. Zero
// dimensions are fine and yield zero; negative ones are rejected.
func VolumetricWeight(length, width, height, divisor decimal.Decimal) (decimal.Decimal, error) {
	if err := validateDimensions(length, width, height); err != nil {
		return decimal.Decimal{}, err
	}
	if !divisor.IsPositive() {
		return decimal.Decimal{}, &apperrors.InvalidInputError{Field: "volumetricDivisor", Reason: "must be positive"}
	}
	volume := length.Mul(width).Mul(height)
	return volume.DivRound(divisor, 8), nil
}

// SelectWeight returns the greater of the actual and volumetric weights.
func SelectWeight(actual, volumetric decimal.Decimal) decimal.Decimal {
	if volumetric.GreaterThan(actual) {
		return volumetric
	}
	return actual
}

// ArticleWeight resolves the billable weight for a single article.
func ArticleWeight(d Dimensions, divisor decimal.Decimal) (decimal.Decimal, error) {
	if d.Weight.IsNegative() {
		return decimal.Decimal{}, &apperrors.InvalidInputError{Field: "weight", Reason: "must not be negative"}
	}
	volumetric, err := VolumetricWeight(d.Length, d.Width, d.Height, divisor)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return SelectWeight(d.Weight, volumetric), nil
}

// ShipmentWeight resolves the billable weight for a multi-article shipment.
// The volumetric side is the sum of every article's volume divided once by the
// divisor - aggregation happens before the max against the total actual
// weight, not after per-article rounding.
func ShipmentWeight(articles []Dimensions, divisor decimal.Decimal) (decimal.Decimal, error) {
	if !divisor.IsPositive() {
		return decimal.Decimal{}, &apperrors.InvalidInputError{Field: "volumetricDivisor", Reason: "must be positive"}
	}

	totalVolume := decimal.Zero
	totalActual := decimal.Zero
	for _, d := range articles {
		if err := validateDimensions(d.Length, d.Width, d.Height); err != nil {
			return decimal.Decimal{}, err
		}
		if d.Weight.IsNegative() {
			return decimal.Decimal{}, &apperrors.InvalidInputError{Field: "weight", Reason: "must not be negative"}
		}
		totalVolume = totalVolume.Add(d.Length.Mul(d.Width).Mul(d.Height))
		totalActual = totalActual.Add(d.Weight)
	}

	totalVolumetric := totalVolume.DivRound(divisor, 8)
	return SelectWeight(totalActual, totalVolumetric), nil
}

func validateDimensions(length, width, height decimal.Decimal) error {
	if length.IsNegative() {
		return &apperrors.InvalidInputError{Field: "length", Reason: "must not be negative"}
	}
	if width.IsNegative() {
		return &apperrors.InvalidInputError{Field: "width", Reason: "must not be negative"}
	}
	if height.IsNegative() {
		return &apperrors.InvalidInputError{Field: "height", Reason: "must not be negative"}
	}
	return nil
}
