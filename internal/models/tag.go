package models

// TagModel is a freeform label; looked up or created on demand, so Name is
// the natural key.
type TagModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null"`

	Articles []ArticleModel `json:"articles,omitempty" gorm:"many2many:article_tags;joinForeignKey:TagID;joinReferences:ArticleID"`
}

func (TagModel) TableName() string { return "tags" }

// CategoryModel is an editorial grouping of articles.
type CategoryModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`

	Articles []ArticleModel `json:"articles,omitempty" gorm:"many2many:article_categories;joinForeignKey:CategoryID;joinReferences:ArticleID"`
}

func (CategoryModel) TableName() string { return "categories" }
