package models

// CommentModel is reader feedback on an article, removed with it.
type CommentModel struct {
	Base
	ArticleID string `json:"article_id" gorm:"index;not null"`
	Author    string `json:"author"`
	Email     string `json:"email"`
	URL       string `json:"url"`
	Body      string `json:"body" gorm:"type:longtext"`
}

func (CommentModel) TableName() string { return "comments" }

// TrackbackModel is an inbound link notification from another site, removed
// with its article.
type TrackbackModel struct {
	Base
	ArticleID string `json:"article_id" gorm:"index;not null"`
	BlogName  string `json:"blog_name"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	URL       string `json:"url"`
}

func (TrackbackModel) TableName() string { return "trackbacks" }
