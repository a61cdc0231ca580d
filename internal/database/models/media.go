package models

type MediaFile struct {
	Base
	CoupleID     uint   `gorm:"not null;index" json:"couple_id"`
	StorageKey   string `gorm:"size:500;not null" json:"storage_key"`
	URL          string `gorm:"size:1000" json:"url"`
	MimeType     string `gorm:"size:100" json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
	UploadedByID *uint  `json:"uploaded_by,omitempty"`

	Couple *Couple `gorm:"foreignKey:CoupleID" json:"-"`
}

func (MediaFile) TableName() string {
	return "media_files"
}
