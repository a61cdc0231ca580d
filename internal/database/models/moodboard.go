package models

const DefaultReaction = "heart"

type MoodBoard struct {
	Base
	EventID   uint `gorm:"not null;uniqueIndex" json:"event_id"`
	IsEnabled bool `json:"is_enabled"`

	Event *Event          `gorm:"foreignKey:EventID" json:"-"`
	Items []MoodBoardItem `gorm:"foreignKey:MoodBoardID" json:"items,omitempty"`
}

func (MoodBoard) TableName() string {
	return "mood_boards"
}

type MoodBoardItem struct {
	Base
	SoftDelete
	MoodBoardID uint   `gorm:"not null;index" json:"mood_board_id"`
	MediaID     uint   `gorm:"not null" json:"media_id"`
	Caption     string `gorm:"size:255" json:"caption"`
	Position    *int   `json:"position,omitempty"`
	CreatedByID *uint  `json:"created_by,omitempty"`

	MoodBoard *MoodBoard          `gorm:"foreignKey:MoodBoardID" json:"-"`
	Media     *MediaFile          `gorm:"foreignKey:MediaID" json:"media,omitempty"`
	Reactions []MoodBoardReaction `gorm:"foreignKey:MoodBoardItemID" json:"reactions,omitempty"`
}

func (MoodBoardItem) TableName() string {
	return "mood_board_items"
}

type MoodBoardReaction struct {
	Base
	MoodBoardItemID uint   `gorm:"not null;uniqueIndex:idx_mood_reactions_item_user_type" json:"mood_board_item_id"`
	UserID          uint   `gorm:"not null;uniqueIndex:idx_mood_reactions_item_user_type" json:"user_id"`
	ReactionType    string `gorm:"size:20;default:'heart';uniqueIndex:idx_mood_reactions_item_user_type" json:"reaction_type"`
}

func (MoodBoardReaction) TableName() string {
	return "mood_board_reactions"
}
