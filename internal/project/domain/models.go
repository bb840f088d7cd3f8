package domain

import (
	"strings"
	"time"
)

// Project is a user's working state for one thumbnail style: the stored
// thumbnail and the generated YouTube metadata. One row per (user, style).
type Project struct {
	ID                     int64     `gorm:"primaryKey" json:"id,string"`
	UserID                 string    `gorm:"index:idx_projects_user_style,unique" json:"userId"`
	SelectedStyleID        string    `gorm:"index:idx_projects_user_style,unique" json:"selectedStyleId"`
	ThumbnailStoragePath   string    `json:"thumbnailStoragePath,omitempty"`
	GeneratedYtTitle       string    `json:"generatedYtTitle,omitempty"`
	GeneratedYtDescription string    `json:"generatedYtDescription,omitempty"`
	GeneratedYtTags        string    `json:"-"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// Tags splits the stored comma-delimited tag column.
func (p Project) Tags() []string {
	if strings.TrimSpace(p.GeneratedYtTags) == "" {
		return nil
	}
	parts := strings.Split(p.GeneratedYtTags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags renders a tag list into the stored column format.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}
