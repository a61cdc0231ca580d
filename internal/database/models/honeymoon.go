package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type HoneymoonItemType string

const (
	HoneymoonItemFlight   HoneymoonItemType = "flight"
	HoneymoonItemHotel    HoneymoonItemType = "hotel"
	HoneymoonItemActivity HoneymoonItemType = "activity"
	HoneymoonItemOther    HoneymoonItemType = "other"
)

// Valid reports whether t is one of the known item types.
func (t HoneymoonItemType) Valid() bool {
	switch t {
	case HoneymoonItemFlight, HoneymoonItemHotel, HoneymoonItemActivity, HoneymoonItemOther:
		return true
	}
	return false
}

type HoneymoonPlan struct {
	Base
	EventID            uint            `gorm:"not null;uniqueIndex" json:"event_id"`
	DestinationCountry string          `gorm:"size:100" json:"destination_country"`
	DestinationCity    string          `gorm:"size:100" json:"destination_city"`
	StartDate          *datatypes.Date `json:"start_date,omitempty"`
	EndDate            *datatypes.Date `json:"end_date,omitempty"`
	Notes              string          `json:"notes"`
	TotalPlanned       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_planned"`
	TotalSpent         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_spent"`

	Event *Event          `gorm:"foreignKey:EventID" json:"-"`
	Items []HoneymoonItem `gorm:"foreignKey:HoneymoonPlanID" json:"items,omitempty"`
}

func (HoneymoonPlan) TableName() string {
	return "honeymoon_plans"
}

type HoneymoonItem struct {
	Base
	SoftDelete
	HoneymoonPlanID uint                `gorm:"not null;index" json:"honeymoon_plan_id"`
	Type            HoneymoonItemType   `gorm:"size:20;default:'other'" json:"type"`
	Label           string              `gorm:"size:255;not null" json:"label"`
	StartDate       *datatypes.Date     `json:"start_date,omitempty"`
	EndDate         *datatypes.Date     `json:"end_date,omitempty"`
	PlannedAmount   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"planned_amount"`
	ActualAmount    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"actual_amount"`
	ProviderName    string              `gorm:"size:255" json:"provider_name"`
	BookingRef      string              `gorm:"size:255" json:"booking_ref"`
	Notes           string              `json:"notes"`

	HoneymoonPlan *HoneymoonPlan `gorm:"foreignKey:HoneymoonPlanID" json:"-"`
}

func (HoneymoonItem) TableName() string {
	return "honeymoon_items"
}
