package models

import "time"

type Contacts struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Phone         string `json:"phone"`
	WhatsappPhone string `json:"whatsappPhone"`
	WhatsappLink  string `json:"whatsappLink"`
	Instagram     string `json:"instagram"`
	TelegramID    string `json:"telegramId"`
	TelegramLink  string `json:"telegramLink"`
}

func (Contacts) TableName() string {
	return "contacts"
}
