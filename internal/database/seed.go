package database

import (
	"context"
	"fmt"

	"github.com/hugh/muse/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var defaultEventTypes = []models.EventType{
	{Key: models.EngagementKey, NameEn: "Engagement", NameAr: "الخطوبة", DefaultColorHex: "#FFB6C1", DefaultMoodboardEnabled: false},
	{Key: "malka", NameEn: "Malka", NameAr: "الملكة", DefaultColorHex: "#FFC0CB", DefaultMoodboardEnabled: true},
	{Key: "henna_night", NameEn: "Henna Night", NameAr: "ليلة الحناء", DefaultColorHex: "#FF69B4", DefaultMoodboardEnabled: true},
	{Key: "bride_prep", NameEn: "Bride Preparation", NameAr: "تحضيرات العروس", DefaultColorHex: "#FF1493", DefaultMoodboardEnabled: true},
	{Key: "wedding_night", NameEn: "Wedding Night", NameAr: "ليلة الزفاف", DefaultColorHex: "#DC143C", DefaultMoodboardEnabled: true},
	{Key: "honeymoon", NameEn: "Honeymoon", NameAr: "شهر العسل", DefaultColorHex: "#FF6347", DefaultMoodboardEnabled: true},
}

var defaultBudgetCategories = []models.BudgetCategory{
	{Key: "venue", Label: "Venue", SortOrder: 1, IsDefaultForOmani: true},
	{Key: "catering", Label: "Catering", SortOrder: 2, IsDefaultForOmani: true},
	{Key: "photography", Label: "Photography & Videography", SortOrder: 3, IsDefaultForOmani: true},
	{Key: "decorations", Label: "Decorations & Flowers", SortOrder: 4, IsDefaultForOmani: true},
	{Key: "music", Label: "Music & Entertainment", SortOrder: 5, IsDefaultForOmani: true},
	{Key: "attire", Label: "Bridal & Groom Attire", SortOrder: 6, IsDefaultForOmani: true},
	{Key: "makeup", Label: "Hair & Makeup", SortOrder: 7, IsDefaultForOmani: true},
	{Key: "transportation", Label: "Transportation", SortOrder: 8, IsDefaultForOmani: true},
	{Key: "invitations", Label: "Invitations & Stationery", SortOrder: 9, IsDefaultForOmani: true},
	{Key: "gifts", Label: "Gifts & Favors", SortOrder: 10, IsDefaultForOmani: true},
	{Key: "officiant", Label: "Officiant & Legal", SortOrder: 11},
	{Key: "accommodation", Label: "Accommodation", SortOrder: 12},
	{Key: "other", Label: "Other Expenses", SortOrder: 99},
}

// SeedCatalog upserts the event type and budget category catalogs by key.
// Safe to run on every boot.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, et := range defaultEventTypes {
			et := et
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"name_en", "name_ar", "default_color_hex", "default_moodboard_enabled", "updated_at"}),
			}).Create(&et).Error; err != nil {
				return fmt.Errorf("seeding event type %s: %w", et.Key, err)
			}
		}

		for _, bc := range defaultBudgetCategories {
			bc := bc
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"label", "sort_order", "is_default_for_omani", "updated_at"}),
			}).Create(&bc).Error; err != nil {
				return fmt.Errorf("seeding budget category %s: %w", bc.Key, err)
			}
		}

		return nil
	})
}
