package models

import "gorm.io/datatypes"

// EngagementKey is the event type that never takes part in onboarding selection.
const EngagementKey = "engagement"

// EventType is catalog data, seeded at startup.
type EventType struct {
	Base
	Key                     string `gorm:"size:50;uniqueIndex;not null" json:"key"`
	NameEn                  string `gorm:"size:100" json:"name_en"`
	NameAr                  string `gorm:"size:100" json:"name_ar"`
	DefaultColorHex         string `gorm:"size:7;default:'#FFC0CB'" json:"default_color_hex"`
	DefaultMoodboardEnabled bool   `json:"default_moodboard_enabled"`
}

func (EventType) TableName() string {
	return "event_types"
}

type Event struct {
	Base
	SoftDelete
	CoupleID    uint            `gorm:"not null;uniqueIndex:idx_events_couple_type" json:"couple_id"`
	EventTypeID uint            `gorm:"not null;uniqueIndex:idx_events_couple_type" json:"event_type_id"`
	Title       string          `gorm:"size:255" json:"title"`
	Description string          `json:"description"`
	StartDate   *datatypes.Date `json:"start_date,omitempty"`
	EndDate     *datatypes.Date `json:"end_date,omitempty"`
	IsActive    bool            `gorm:"index" json:"is_active"`

	Couple    *Couple    `gorm:"foreignKey:CoupleID" json:"-"`
	EventType *EventType `gorm:"foreignKey:EventTypeID" json:"event_type,omitempty"`
}

func (Event) TableName() string {
	return "events"
}
