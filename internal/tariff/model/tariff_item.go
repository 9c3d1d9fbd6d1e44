package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CourierCategory determines whether an item can be shipped by courier.
type CourierCategory string

const (
	CourierCategoryAllowed    CourierCategory = "ALLOWED"
	CourierCategoryRestricted CourierCategory = "RESTRICTED"
	CourierCategoryProhibited CourierCategory = "PROHIBITED"
)

// TariffItem represents one customs classification entry of the national
// tariff. The description is pipe-joined as "specific | parent | grandparent".
// Hierarchy columns are derived from the code by the resolver and persisted by
// the backfill pass; they are re-derivable from the code alone at any time.
type TariffItem struct {
	BaseModel
	Code        string `gorm:"type:varchar(50);column:code;not null;unique" json:"code"`   // Dotted tariff code, canonical form AAAA.BB.CC.DD
	Description string `gorm:"type:varchar(1255);column:description" json:"description"`   // "specific | parent | grandparent" description chain

	RateDAI  decimal.Decimal `gorm:"type:numeric(5,4);column:rate_dai;not null;default:0" json:"rateDai"`   // Derechos Arancelarios a la Importación, fraction in [0,1]
	RateISC  decimal.Decimal `gorm:"type:numeric(5,4);column:rate_isc;not null;default:0" json:"rateIsc"`   // Impuesto Selectivo al Consumo
	RateISPC decimal.Decimal `gorm:"type:numeric(5,4);column:rate_ispc;not null;default:0" json:"rateIspc"` // Impuesto de Solidaridad para la Protección del Consumidor
	RateISV  decimal.Decimal `gorm:"type:numeric(5,4);column:rate_isv;not null;default:0" json:"rateIsv"`   // Impuesto Sobre Ventas

	CourierCategory         CourierCategory  `gorm:"type:varchar(20);column:courier_category;not null;default:'ALLOWED';index:tariff_category_idx" json:"courierCategory"`
	Restrictions            StringArray      `gorm:"type:jsonb;column:restrictions" json:"restrictions,omitempty"`
	PackageType             string           `gorm:"type:varchar(100);column:package_type" json:"packageType,omitempty"`
	MaxWeightAllowed        *decimal.Decimal `gorm:"type:numeric(8,2);column:max_weight_allowed" json:"maxWeightAllowed,omitempty"`
	RequiresSpecialHandling bool             `gorm:"type:boolean;column:requires_special_handling;not null;default:false" json:"requiresSpecialHandling"`
	SpecialInstructions     string           `gorm:"type:text;column:special_instructions" json:"specialInstructions,omitempty"`

	SearchKeywords StringArray `gorm:"type:jsonb;column:search_keywords" json:"searchKeywords,omitempty"` // Externally generated retrieval keywords

	// Hierarchy fields, written as a single atomic update per item.
	ChapterCode     string `gorm:"type:varchar(4);column:chapter_code;index:tariff_chapter_idx" json:"chapterCode,omitempty"`       // First 4 digits (e.g. "0101", "8471")
	HeadingCode     string `gorm:"type:varchar(15);column:heading_code;index:tariff_heading_idx" json:"headingCode,omitempty"`      // Chapter + first subheading (e.g. "0101.21")
	ParentCode      string `gorm:"type:varchar(50);column:parent_code" json:"parentCode,omitempty"`                                 // Code with the last significant segment zeroed
	GrandparentCode string `gorm:"type:varchar(50);column:grandparent_code" json:"grandparentCode,omitempty"`                       // Code with the last two significant segments zeroed
	HierarchyLevel  int    `gorm:"type:integer;column:hierarchy_level;not null;default:0;index:tariff_level_idx" json:"hierarchyLevel"` // 1=chapter .. 4=detail, 0 until backfilled
	IsLeaf          bool   `gorm:"type:boolean;column:is_leaf;not null;default:true" json:"isLeaf"`
}

func (t *TariffItem) TableName() string {
	return "tariff_items"
}

// IsCourierSafe reports whether the item may be shipped without restrictions.
func (t *TariffItem) IsCourierSafe() bool {
	return t.CourierCategory == CourierCategoryAllowed
}

// SpecificDescription returns the most specific description level, the text
// before the first pipe of the description chain.
func (t *TariffItem) SpecificDescription() string {
	specific, _, _ := strings.Cut(t.Description, "|")
	return strings.TrimSpace(specific)
}

// ParentDescription returns the parent description level (the text between the
// first and second pipes), or "" when the chain has a single level.
func (t *TariffItem) ParentDescription() string {
	_, rest, found := strings.Cut(t.Description, "|")
	if !found {
		return ""
	}
	parent, _, _ := strings.Cut(rest, "|")
	return strings.TrimSpace(parent)
}

// ShippingRequirements summarizes courier handling constraints for callers
// outside the tariff package.
type ShippingRequirements struct {
	Category            CourierCategory `json:"category"`
	Restrictions        []string        `json:"restrictions"`
	PackageType         string          `json:"packageType,omitempty"`
	SpecialHandling     bool            `json:"specialHandling"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

func (t *TariffItem) ShippingRequirements() ShippingRequirements {
	return ShippingRequirements{
		Category:            t.CourierCategory,
		Restrictions:        t.Restrictions,
		PackageType:         t.PackageType,
		SpecialHandling:     t.RequiresSpecialHandling,
		SpecialInstructions: t.SpecialInstructions,
	}
}

// TariffItemFilter will be used when querying as batch
type TariffItemFilter struct {
	CodeStartsWith *string `json:"codeStartsWith,omitempty"`
	Category       *CourierCategory `json:"category,omitempty"`
	Offset         *int    `json:"offset,omitempty"`
	Limit          *int    `json:"limit,omitempty"`
}

// TariffItemListResult represents the result of querying tariff items with pagination
type TariffItemListResult struct {
	TotalCount int64        `json:"totalCount"`
	Items      []TariffItem `json:"items"`
	Offset     int          `json:"offset"`
	Limit      int          `json:"limit"`
}
