package domain

// User mirrors the Casdoor account fields the backend stores locally.
type User struct {
	UserID       string `gorm:"column:user_id;type:varchar(50);primaryKey" json:"user_id"`
	Nickname     string `gorm:"column:nickname;not null" json:"nickname"`
	Phone        string `gorm:"column:phone" json:"phone"`
	Email        string `gorm:"column:email" json:"email"`
	WeChat       string `gorm:"column:wechat" json:"wechat"`
	AccountLevel int    `gorm:"column:account_level" json:"account_level"`
}

func (User) TableName() string { return "user_info" }
