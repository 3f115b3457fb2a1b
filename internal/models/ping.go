package models

// PingModel records one successful outbound link notification. The composite
// unique index keeps a given URL at most once per article; failed sends never
// create a row, so a later dispatch retries them.
type PingModel struct {
	Base
	ArticleID string `json:"article_id" gorm:"uniqueIndex:idx_pings_article_url;not null"`
	URL       string `json:"url"        gorm:"uniqueIndex:idx_pings_article_url;not null"`
}

func (PingModel) TableName() string { return "pings" }
