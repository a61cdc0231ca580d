package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type EventBudget struct {
	Base
	EventID      uint            `gorm:"not null;uniqueIndex" json:"event_id"`
	CurrencyCode string          `gorm:"size:3;default:'USD'" json:"currency_code"`
	TotalPlanned decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_planned"`
	TotalSpent   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_spent"`

	Event      *Event                `gorm:"foreignKey:EventID" json:"-"`
	Categories []EventBudgetCategory `gorm:"foreignKey:EventBudgetID" json:"categories,omitempty"`
}

func (EventBudget) TableName() string {
	return "event_budgets"
}

// BudgetCategory is catalog data, seeded at startup.
type BudgetCategory struct {
	Base
	Key               string `gorm:"size:50;uniqueIndex;not null" json:"key"`
	Label             string `gorm:"size:100" json:"label"`
	SortOrder         int    `json:"sort_order"`
	IsDefaultForOmani bool   `json:"is_default_for_omani"`
}

func (BudgetCategory) TableName() string {
	return "budget_categories"
}

type EventBudgetCategory struct {
	Base
	EventBudgetID uint            `gorm:"not null;uniqueIndex:idx_event_budget_categories_budget_category" json:"event_budget_id"`
	CategoryID    uint            `gorm:"not null;uniqueIndex:idx_event_budget_categories_budget_category" json:"category_id"`
	PlannedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"planned_amount"`
	SpentAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"spent_amount"`

	EventBudget *EventBudget     `gorm:"foreignKey:EventBudgetID" json:"-"`
	Category    *BudgetCategory  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	LineItems   []BudgetLineItem `gorm:"foreignKey:EventBudgetCategoryID" json:"line_items,omitempty"`
}

func (EventBudgetCategory) TableName() string {
	return "event_budget_categories"
}

type BudgetLineItem struct {
	Base
	SoftDelete
	EventBudgetCategoryID uint                `gorm:"not null;index" json:"event_budget_category_id"`
	Label                 string              `gorm:"size:255;not null" json:"label"`
	PlannedAmount         decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"planned_amount"`
	ActualAmount          decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"actual_amount"`
	Notes                 string              `json:"notes"`
	PaidOn                *datatypes.Date     `json:"paid_on,omitempty"`
	ReceiptMediaID        *uint               `json:"receipt_media_id,omitempty"`
	CreatedByID           *uint               `json:"created_by,omitempty"`

	EventBudgetCategory *EventBudgetCategory `gorm:"foreignKey:EventBudgetCategoryID" json:"-"`
	ReceiptMedia        *MediaFile           `gorm:"foreignKey:ReceiptMediaID" json:"-"`
}

func (BudgetLineItem) TableName() string {
	return "budget_line_items"
}
