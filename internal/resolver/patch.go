package resolver

import "github.com/azattello/cargo3589-server/internal/models"

// Patches are sparse: an empty string means "not supplied" and leaves the
// stored value alone. Clients post HTML forms where blank inputs arrive as
// "", so a field can be changed but never cleared through these routes.

// SettingsPatch carries the settings group fields.
type SettingsPatch struct {
	VideoLink           string
	ChinaAddress        string
	WhatsappNumber      string
	AboutUsText         string
	ProhibitedItemsText string
	DeliveryTime        string
	CargoResponsibility string
	ContractFilePath    string
}

// ContactsPatch carries the contacts group fields.
type ContactsPatch struct {
	Phone         string
	WhatsappPhone string
	WhatsappLink  string
	Instagram     string
	TelegramID    string
	TelegramLink  string
}

// PricePatch applies to the global settings only.
type PricePatch struct {
	Price    string
	Currency string
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Apply merges p into the resolved record. It reports false when the
// target holds no writable settings record.
func (p SettingsPatch) Apply(t *Target) bool {
	switch {
	case t.Branch != nil:
		b := t.Branch
		set(&b.VideoLink, p.VideoLink)
		set(&b.ChinaAddress, p.ChinaAddress)
		set(&b.WhatsappNumber, p.WhatsappNumber)
		set(&b.AboutUsText, p.AboutUsText)
		set(&b.ProhibitedItemsText, p.ProhibitedItemsText)
		set(&b.DeliveryTime, p.DeliveryTime)
		set(&b.CargoResponsibility, p.CargoResponsibility)
		set(&b.ContractFilePath, p.ContractFilePath)
	case t.Settings != nil:
		s := t.Settings
		set(&s.VideoLink, p.VideoLink)
		set(&s.ChinaAddress, p.ChinaAddress)
		set(&s.WhatsappNumber, p.WhatsappNumber)
		set(&s.AboutUsText, p.AboutUsText)
		set(&s.ProhibitedItemsText, p.ProhibitedItemsText)
		set(&s.DeliveryTime, p.DeliveryTime)
		set(&s.CargoResponsibility, p.CargoResponsibility)
		set(&s.ContractFilePath, p.ContractFilePath)
	default:
		return false
	}
	return true
}

// Apply merges p into the resolved record. It reports false when the
// target holds no writable contacts record.
func (p ContactsPatch) Apply(t *Target) bool {
	switch {
	case t.Branch != nil:
		b := t.Branch
		set(&b.Phone, p.Phone)
		set(&b.WhatsappPhone, p.WhatsappPhone)
		set(&b.WhatsappLink, p.WhatsappLink)
		set(&b.Instagram, p.Instagram)
		set(&b.TelegramID, p.TelegramID)
		set(&b.TelegramLink, p.TelegramLink)
	case t.Contacts != nil:
		c := t.Contacts
		set(&c.Phone, p.Phone)
		set(&c.WhatsappPhone, p.WhatsappPhone)
		set(&c.WhatsappLink, p.WhatsappLink)
		set(&c.Instagram, p.Instagram)
		set(&c.TelegramID, p.TelegramID)
		set(&c.TelegramLink, p.TelegramLink)
	default:
		return false
	}
	return true
}

// ApplyTo merges the price fields into the global settings.
func (p PricePatch) ApplyTo(gs *models.GlobalSettings) {
	set(&gs.Price, p.Price)
	set(&gs.Currency, p.Currency)
}
