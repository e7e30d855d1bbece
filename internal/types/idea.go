package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IdeaStatus string

const (
	StatusNew         IdeaStatus = "new"
	StatusPrioritized IdeaStatus = "prioritized"
	StatusInProgress  IdeaStatus = "in_progress"
	StatusVideoMade   IdeaStatus = "video_made"
	StatusDiscarded   IdeaStatus = "discarded"
)

// AllStatuses is the fixed board column order.
var AllStatuses = []IdeaStatus{
	StatusNew,
	StatusPrioritized,
	StatusInProgress,
	StatusVideoMade,
	StatusDiscarded,
}

func (s IdeaStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPrioritized, StatusInProgress, StatusVideoMade, StatusDiscarded:
		return true
	}
	return false
}

type IdeaPriority string

const (
	PriorityLow    IdeaPriority = "low"
	PriorityMedium IdeaPriority = "medium"
	PriorityHigh   IdeaPriority = "high"
)

func (p IdeaPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Saturation is the heuristic market-saturation score. High means least
// contested.
type Saturation string

const (
	SaturationNotAssessed Saturation = "not_assessed"
	SaturationHigh        Saturation = "high"
	SaturationMedium      Saturation = "medium"
	SaturationLow         Saturation = "low"
	SaturationError       Saturation = "error"
)

// Scored reports whether the saturation holds a real assessment.
func (s Saturation) Scored() bool {
	return s == SaturationHigh || s == SaturationMedium || s == SaturationLow
}

type Idea struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Profile    string       `gorm:"index;not null;column:profile" json:"profile"`
	Text       string       `gorm:"not null;column:text" json:"text"`
	Niche      string       `gorm:"column:niche" json:"niche"`
	Tool       string       `gorm:"column:tool" json:"tool"`
	Provenance string       `gorm:"column:provenance" json:"provenance"`
	Status     IdeaStatus   `gorm:"index;not null;column:status" json:"status"`
	Priority   IdeaPriority `gorm:"not null;column:priority" json:"priority"`

	// Version is an optimistic counter; every mutation bumps it and a
	// mutation carrying a stale version is rejected.
	Version int `gorm:"not null;default:0" json:"version"`

	Rationale             string         `gorm:"column:rationale" json:"rationale,omitempty"`
	Keywords              datatypes.JSON `gorm:"column:keywords" json:"keywords,omitempty"`
	ResearchedKeywords    datatypes.JSON `gorm:"column:researched_keywords" json:"researched_keywords,omitempty"`
	TitleSuggestions      datatypes.JSON `gorm:"column:title_suggestions" json:"title_suggestions,omitempty"`
	Script                string         `gorm:"column:script" json:"script,omitempty"`
	ProductionNotes       string         `gorm:"column:production_notes" json:"production_notes,omitempty"`
	ResourceLinks         datatypes.JSON `gorm:"column:resource_links" json:"resource_links,omitempty"`
	ScriptDurationMinutes int            `gorm:"column:script_duration_minutes" json:"script_duration_minutes,omitempty"`

	Saturation        Saturation     `gorm:"not null;default:not_assessed" json:"saturation"`
	SaturationSummary string         `gorm:"column:saturation_summary" json:"saturation_summary,omitempty"`
	CompetitiveAngle  string         `gorm:"column:competitive_angle" json:"competitive_angle,omitempty"`
	CompetingVideos   datatypes.JSON `gorm:"column:competing_videos" json:"competing_videos,omitempty"`
	ValidatedAt       *time.Time     `gorm:"column:validated_at" json:"validated_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Idea) TableName() string {
	return "idea"
}

// IdeaDraft is the pre-persistence shape accepted by creation.
type IdeaDraft struct {
	Text       string   `json:"text"`
	Niche      string   `json:"niche"`
	Tool       string   `json:"tool"`
	Provenance string   `json:"provenance"`
	Keywords   []string `json:"keywords,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
}

// CompetingVideo is one candidate competitor returned by the video-search
// service.
type CompetingVideo struct {
	Title               string     `json:"title"`
	Link                string     `json:"link,omitempty"`
	Channel             string     `json:"channel"`
	ViewCountText       string     `json:"view_count_text"`
	SubscriberCountText string     `json:"subscriber_count_text"`
	PublishedText       string     `json:"published_text"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
	Thumbnail           string     `json:"thumbnail,omitempty"`
	Description         string     `json:"description,omitempty"`
}

type TitleSuggestion struct {
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
}

// ResearchedKeyword carries a keyword plus the provenance citation the
// search-augmented reply attached to it.
type ResearchedKeyword struct {
	Keyword string `json:"keyword"`
	Source  string `json:"source,omitempty"`
}
