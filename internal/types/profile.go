package types

import (
	"regexp"
	"strings"
	"time"
)

// Profile is a named, isolated idea collection. The name is free text; the
// Key is the storage-safe token derived from it.
type Profile struct {
	Key        string    `gorm:"primaryKey;column:key" json:"key"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	LastActive bool      `gorm:"not null;default:false;column:last_active" json:"last_active"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}

var profileKeyRe = regexp.MustCompile(`[^a-z0-9_-]+`)

// ProfileKey sanitizes a free-text profile name into its storage token.
// Returns "" for names that contain nothing usable.
func ProfileKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	key = profileKeyRe.ReplaceAllString(key, "")
	return key
}
