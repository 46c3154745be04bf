package models

import "time"

// SingletonID is the fixed primary key of the single-row tables
// (global_settings, contacts). Upserts conflict on it.
const SingletonID uint = 1

type GlobalSettings struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	VideoLink           string `json:"videoLink"`
	ChinaAddress        string `json:"chinaAddress"`
	WhatsappNumber      string `json:"whatsappNumber"`
	AboutUsText         string `gorm:"type:text" json:"aboutUsText"`
	ProhibitedItemsText string `gorm:"type:text" json:"prohibitedItemsText"`
	DeliveryTime        string `json:"deliveryTime"`
	CargoResponsibility string `gorm:"type:text" json:"cargoResponsibility"`
	ContractFilePath    string `json:"contractFilePath"`

	Price    string `gorm:"size:64" json:"price"`
	Currency string `gorm:"size:16" json:"currency"`

	GlobalReferralBonusPercentage float64 `gorm:"default:0" json:"globalReferralBonusPercentage"`
}

func (GlobalSettings) TableName() string {
	return "global_settings"
}
