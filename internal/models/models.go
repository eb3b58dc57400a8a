package models

import (
	"time"
)

const (
	MediaKindVideo = "video"
	MediaKindAudio = "audio"
)

// ValidMediaKind reports whether kind is one of the two supported media kinds.
func ValidMediaKind(kind string) bool {
	return kind == MediaKindVideo || kind == MediaKindAudio
}

// MediaAsset is an uploaded audio or video payload. ID and StorageKey are
// immutable once the row exists.
type MediaAsset struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title      string    `gorm:"type:text;not null;index" json:"title"`
	Kind       string    `gorm:"type:varchar(10);not null;index" json:"type"`
	FileURL    string    `gorm:"type:text;not null" json:"file_url"`
	StorageKey string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt  time.Time `gorm:"index;not null" json:"created_at"`
}

// ViewLog is one access event against a media asset. Rows are append-only and
// removed only by the retention purger.
type ViewLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	MediaID   string    `gorm:"type:varchar(64);not null;index" json:"media_id"`
	ClientIP  string    `gorm:"type:varchar(45);not null" json:"client_ip"`
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

type AdminUser struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}

func (ViewLog) TableName() string {
	return "media_view_logs"
}

func (AdminUser) TableName() string {
	return "admin_users"
}
