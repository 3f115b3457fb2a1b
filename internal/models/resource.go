package models

// ResourceModel is uploaded-file metadata. Deleting an article detaches its
// resources (ArticleID goes NULL); the rows and the stored content survive.
type ResourceModel struct {
	Base
	ArticleID *string `json:"article_id,omitempty" gorm:"index"`
	Filename  string  `json:"filename" gorm:"not null"`
	Mime      string  `json:"mime"`
	Size      int64   `json:"size"`
}

func (ResourceModel) TableName() string { return "resources" }
