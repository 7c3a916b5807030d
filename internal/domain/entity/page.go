package entity

import (
	"time"
)

// PageStatus 页面状态
type PageStatus string

const (
	PageStatusPublished PageStatus = "published"
	PageStatusArchived  PageStatus = "archived"
)

// Page 已发布的组合页面
type Page struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug        string     `json:"slug" gorm:"type:varchar(128);uniqueIndex;not null"`
	Path        string     `json:"path" gorm:"type:varchar(160);index;not null"`
	Title       string     `json:"title" gorm:"type:varchar(255)"`
	Query       string     `json:"query" gorm:"type:text"`
	LayoutID    string     `json:"layout_id" gorm:"type:varchar(64)"`
	HTML        string     `json:"html" gorm:"type:text"`
	BlockCount  int        `json:"block_count" gorm:"default:0"`
	ImageCount  int        `json:"image_count" gorm:"default:0"`
	Status      PageStatus `json:"status" gorm:"type:varchar(32);default:'published'"`
	PublishedAt time.Time  `json:"published_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Page) TableName() string {
	return "pages"
}
