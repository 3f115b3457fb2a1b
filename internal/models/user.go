package models

// UserModel is an author account.
type UserModel struct {
	Base
	Login        string `json:"login" gorm:"uniqueIndex;not null"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"     gorm:"not null"`

	Articles []ArticleModel `json:"articles,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }
