package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/micasillero/courier/internal/errors"
	"github.com/micasillero/courier/internal/quote/model"
	"github.com/micasillero/courier/internal/tariff"
	tariffmodel "github.com/micasillero/courier/internal/tariff/model"
)

// Config carries the pricing configuration the service needs. The freight
// rate has no default: a nil rate is rejected before any computation, never
// silently treated as zero.
type Config struct {
	FreightRatePerPound *decimal.Decimal
	VolumetricDivisor   decimal.Decimal
	ValidityDays        int
}

// Service builds and persists quotations. Computation is pure and happens
// first; persistence is a single subsequent transaction, so no lock is held
// across the cascade.
type Service struct {
	db      *gorm.DB
	tariffs *tariff.Store
	cfg     Config
}

func NewService(db *gorm.DB, tariffs *tariff.Store, cfg Config) *Service {
	return &Service{db: db, tariffs: tariffs, cfg: cfg}
}

// CreateQuotation validates the request, resolves each article's tariff item,
// computes per-article taxes and shipment totals, and persists everything in
// one transaction.
func (s *Service) CreateQuotation(ctx context.Context, req *model.CreateQuotationDTO) (*model.Quotation, error) {
	if req == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if req.CustomerID == "" {
		return nil, fmt.Errorf("customer ID cannot be empty")
	}
	if len(req.Articles) == 0 {
		return nil, fmt.Errorf("quotation must have at least one article")
	}

	freightRate, err := s.freightRate()
	if err != nil {
		return nil, err
	}

	quotation := &model.Quotation{
		CustomerID: req.CustomerID,
		ValidUntil: time.Now().UTC().AddDate(0, 0, s.cfg.ValidityDays),
	}

	dims := make([]Dimensions, 0, len(req.Articles))
	totalDeclared := decimal.Zero
	totalTaxes := decimal.Zero

	for i, dto := range req.Articles {
		item, err := s.tariffs.GetByCode(ctx, dto.TariffCode)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("article %d: unknown tariff code %q", i, dto.TariffCode)
		}
		if item.CourierCategory == tariffmodel.CourierCategoryProhibited {
			return nil, fmt.Errorf("article %d: item %q is prohibited for courier shipping", i, item.Code)
		}
		if item.CourierCategory == tariffmodel.CourierCategoryRestricted {
			quotation.HasRestrictedItems = true
		}

		article, err := s.buildArticle(dto, item, freightRate)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}

		dims = append(dims, Dimensions{Length: dto.Length, Width: dto.Width, Height: dto.Height, Weight: dto.Weight})
		totalDeclared = totalDeclared.Add(dto.DeclaredValue)
		totalTaxes = totalTaxes.Add(article.TaxTotal)
		quotation.Articles = append(quotation.Articles, *article)
	}

	// Shipment weight aggregates volumes before the max against total actual
	// weight; the shipment freight is billed on that aggregate.
	totalWeight, err := ShipmentWeight(dims, s.cfg.VolumetricDivisor)
	if err != nil {
		return nil, err
	}
	quotation.TotalWeight = totalWeight
	quotation.TotalFreight = totalWeight.Mul(freightRate)
	quotation.TotalTaxes = totalTaxes
	quotation.TotalLandedCost = totalDeclared.Add(quotation.TotalFreight).Add(totalTaxes)

	if err := s.db.WithContext(ctx).Create(quotation).Error; err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}
	return quotation, nil
}

// GetQuotation returns one quotation with its articles and their tariff items,
// or nil when absent.
func (s *Service) GetQuotation(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	var quotation model.Quotation
	err := s.db.WithContext(ctx).
		Preload("Articles").
		Preload("Articles.TariffItem").
		First(&quotation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query quotation %s: %w", id, err)
	}
	return &quotation, nil
}

// RecomputeQuotation re-runs the cascade for every article of a stored
// quotation, picking up current tariff rates and freight configuration.
// Recomputation is idempotent: unchanged inputs produce unchanged amounts.
func (s *Service) RecomputeQuotation(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	freightRate, err := s.freightRate()
	if err != nil {
		return nil, err
	}

	quotation, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, fmt.Errorf("quotation %s not found", id)
	}

	dims := make([]Dimensions, 0, len(quotation.Articles))
	totalDeclared := decimal.Zero
	totalTaxes := decimal.Zero

	for i := range quotation.Articles {
		article := &quotation.Articles[i]
		recomputed, err := s.computeArticle(article.DeclaredValue, Dimensions{
			Length: article.Length,
			Width:  article.Width,
			Height: article.Height,
			Weight: article.Weight,
		}, &article.TariffItem, freightRate)
		if err != nil {
			return nil, fmt.Errorf("article %s: %w", article.ID, err)
		}
		applyBreakdown(article, recomputed)

		dims = append(dims, Dimensions{Length: article.Length, Width: article.Width, Height: article.Height, Weight: article.Weight})
		totalDeclared = totalDeclared.Add(article.DeclaredValue)
		totalTaxes = totalTaxes.Add(article.TaxTotal)
	}

	totalWeight, err := ShipmentWeight(dims, s.cfg.VolumetricDivisor)
	if err != nil {
		return nil, err
	}
	quotation.TotalWeight = totalWeight
	quotation.TotalFreight = totalWeight.Mul(freightRate)
	quotation.TotalTaxes = totalTaxes
	quotation.TotalLandedCost = totalDeclared.Add(quotation.TotalFreight).Add(totalTaxes)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range quotation.Articles {
			if err := tx.Save(&quotation.Articles[i]).Error; err != nil {
				return fmt.Errorf("failed to save article: %w", err)
			}
		}
		if err := tx.Save(quotation).Error; err != nil {
			return fmt.Errorf("failed to save quotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

type articleAmounts struct {
	weightToUse decimal.Decimal
	breakdown   TaxBreakdown
}

func (s *Service) buildArticle(dto model.CreateArticleDTO, item *tariffmodel.TariffItem, freightRate decimal.Decimal) (*model.Article, error) {
	if dto.Description == "" {
		return nil, fmt.Errorf("article description cannot be empty")
	}
	amounts, err := s.computeArticle(dto.DeclaredValue, Dimensions{
		Length: dto.Length,
		Width:  dto.Width,
		Height: dto.Height,
		Weight: dto.Weight,
	}, item, freightRate)
	if err != nil {
		return nil, err
	}

	article := &model.Article{
		Description:   dto.Description,
		DeclaredValue: dto.DeclaredValue,
		Length:        dto.Length,
		Width:         dto.Width,
		Height:        dto.Height,
		Weight:        dto.Weight,
		TariffItemID:  item.ID,
	}
	applyBreakdown(article, amounts)
	return article, nil
}

func (s *Service) computeArticle(declaredValue decimal.Decimal, d Dimensions, item *tariffmodel.TariffItem, freightRate decimal.Decimal) (articleAmounts, error) {
	weightToUse, err := ArticleWeight(d, s.cfg.VolumetricDivisor)
	if err != nil {
		return articleAmounts{}, err
	}

	breakdown, err := ComputeTaxes(TaxInput{
		DeclaredValue:       declaredValue,
		WeightToUse:         weightToUse,
		FreightRatePerPound: freightRate,
		Rates: TaxRates{
			DAI:  item.RateDAI,
			ISC:  item.RateISC,
			ISPC: item.RateISPC,
			ISV:  item.RateISV,
		},
	})
	if err != nil {
		return articleAmounts{}, err
	}
	return articleAmounts{weightToUse: weightToUse, breakdown: breakdown}, nil
}

func applyBreakdown(article *model.Article, amounts articleAmounts) {
	article.WeightToUse = amounts.weightToUse
	article.FreightCost = amounts.breakdown.FreightCost
	article.TaxDAI = amounts.breakdown.DAI
	article.TaxISC = amounts.breakdown.ISC
	article.TaxISPC = amounts.breakdown.ISPC
	article.TaxISV = amounts.breakdown.ISV
	article.TaxTotal = amounts.breakdown.TotalTax
}

func (s *Service) freightRate() (decimal.Decimal, error) {
	if s.cfg.FreightRatePerPound == nil {
		return decimal.Decimal{}, &apperrors.MissingConfigurationError{Key: "FREIGHT_RATE_PER_POUND"}
	}
	if s.cfg.FreightRatePerPound.IsNegative() {
		return decimal.Decimal{}, &apperrors.InvalidInputError{Field: "freightRatePerPound", Reason: "must not be negative"}
	}
	return *s.cfg.FreightRatePerPound, nil
}
