package models

import "time"

// Branch (filial) carries per-location overrides of the global settings
// and contacts. Branches are provisioned elsewhere and only updated here.
type Branch struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FilialText    string    `gorm:"size:255;not null;index" json:"filialText"`
	FilialID      string    `gorm:"size:100;not null" json:"filialId"`
	UserPhone     string    `gorm:"size:50;not null;uniqueIndex" json:"userPhone"`
	FilialAddress string    `gorm:"size:255;not null" json:"filialAddress"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	LogoPath      *string   `gorm:"size:255" json:"logoPath"`
	CreatedAt     time.Time `json:"createdAt"`

	// Settings group
	VideoLink           string `json:"videoLink"`
	ChinaAddress        string `json:"chinaAddress"`
	WhatsappNumber      string `json:"whatsappNumber"`
	AboutUsText         string `gorm:"type:text" json:"aboutUsText"`
	ProhibitedItemsText string `gorm:"type:text" json:"prohibitedItemsText"`
	DeliveryTime        string `json:"deliveryTime"`
	CargoResponsibility string `gorm:"type:text" json:"cargoResponsibility"`
	ContractFilePath    string `json:"contractFilePath"`

	// Contacts group
	Phone         string `json:"phone"`
	WhatsappPhone string `json:"whatsappPhone"`
	WhatsappLink  string `json:"whatsappLink"`
	Instagram     string `json:"instagram"`
	TelegramID    string `json:"telegramId"`
	TelegramLink  string `json:"telegramLink"`
}

func (Branch) TableName() string {
	return "filials"
}
