package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	tariffmodel "github.com/micasillero/courier/internal/tariff/model"
)

// BaseModel defines the base model structure with common fields for the quote package.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	base.CreatedAt = time.Now().UTC()
	base.UpdatedAt = time.Now().UTC()
	return
}

// BeforeUpdate is a GORM hook that is triggered before an existing record is updated.
func (base *BaseModel) BeforeUpdate(tx *gorm.DB) (err error) {
	base.UpdatedAt = time.Now().UTC()
	return
}

// Quotation is one customer landed-cost quotation with its line articles.
// All totals are derived: they are recomputed whenever an article or its
// referenced rates change and are never edited independently.
type Quotation struct {
	BaseModel
	CustomerID         string          `gorm:"type:varchar(100);column:customer_id;not null;index:quotation_customer_idx" json:"customerId"`
	ValidUntil         time.Time       `gorm:"type:timestamptz;column:valid_until;not null" json:"validUntil"`
	TotalWeight        decimal.Decimal `gorm:"type:numeric(10,4);column:total_weight;not null;default:0" json:"totalWeight"`         // Shipment weight-to-use: max(actual total, aggregate volumetric)
	TotalFreight       decimal.Decimal `gorm:"type:numeric(10,4);column:total_freight;not null;default:0" json:"totalFreight"`
	TotalTaxes         decimal.Decimal `gorm:"type:numeric(10,4);column:total_taxes;not null;default:0" json:"totalTaxes"`
	TotalLandedCost    decimal.Decimal `gorm:"type:numeric(10,4);column:total_landed_cost;not null;default:0" json:"totalLandedCost"`
	HasRestrictedItems bool            `gorm:"type:boolean;column:has_restricted_items;not null;default:false" json:"hasRestrictedItems"`
	Articles           []Article       `gorm:"foreignKey:QuotationID" json:"articles"`
}

func (q *Quotation) TableName() string {
	return "quotations"
}

// Article is one line item in a quotation. Dimensions share one linear unit
// (inches); weights are pounds.
type Article struct {
	BaseModel
	QuotationID   uuid.UUID       `gorm:"type:uuid;column:quotation_id;not null;index:article_quotation_idx" json:"quotationId"`
	Description   string          `gorm:"type:varchar(255);column:description;not null" json:"description"` // Product description as invoiced
	DeclaredValue decimal.Decimal `gorm:"type:numeric(10,2);column:declared_value;not null" json:"declaredValue"`
	Length        decimal.Decimal `gorm:"type:numeric(5,2);column:length;not null" json:"length"`
	Width         decimal.Decimal `gorm:"type:numeric(5,2);column:width;not null" json:"width"`
	Height        decimal.Decimal `gorm:"type:numeric(5,2);column:height;not null" json:"height"`
	Weight        decimal.Decimal `gorm:"type:numeric(5,2);column:weight;not null" json:"weight"`

	TariffItemID uuid.UUID              `gorm:"type:uuid;column:tariff_item_id;not null" json:"tariffItemId"`
	TariffItem   tariffmodel.TariffItem `gorm:"foreignKey:TariffItemID" json:"tariffItem,omitempty"`

	// Computed amounts, written in one pass after the cascade runs.
	WeightToUse decimal.Decimal `gorm:"type:numeric(10,4);column:weight_to_use;not null;default:0" json:"weightToUse"`
	FreightCost decimal.Decimal `gorm:"type:numeric(10,4);column:freight_cost;not null;default:0" json:"freightCost"`
	TaxDAI      decimal.Decimal `gorm:"type:numeric(10,4);column:tax_dai;not null;default:0" json:"taxDai"`
	TaxISC      decimal.Decimal `gorm:"type:numeric(10,4);column:tax_isc;not null;default:0" json:"taxIsc"`
	TaxISPC     decimal.Decimal `gorm:"type:numeric(10,4);column:tax_ispc;not null;default:0" json:"taxIspc"`
	TaxISV      decimal.Decimal `gorm:"type:numeric(10,4);column:tax_isv;not null;default:0" json:"taxIsv"`
	TaxTotal    decimal.Decimal `gorm:"type:numeric(10,4);column:tax_total;not null;default:0" json:"taxTotal"`
}

func (a *Article) TableName() string {
	return "quotation_articles"
}

// CreateArticleDTO is one article in a quotation request.
type CreateArticleDTO struct {
	Description   string          `json:"description"`
	DeclaredValue decimal.Decimal `json:"declaredValue"`
	Length        decimal.Decimal `json:"length"`
	Width         decimal.Decimal `json:"width"`
	Height        decimal.Decimal `json:"height"`
	Weight        decimal.Decimal `json:"weight"`
	TariffCode    string          `json:"tariffCode"`
}

// CreateQuotationDTO is the payload for creating a quotation.
type CreateQuotationDTO struct {
	CustomerID string             `json:"customerId"`
	Articles   []CreateArticleDTO `json:"articles"`
}
