package settings

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/azattello/cargo3589-server/internal/apperror"
	"github.com/azattello/cargo3589-server/internal/resolver"

	"github.com/go-playground/validator/v10"
)

type UpdateSettingsRequest struct {
	UserID              string `json:"userId" form:"userId" validate:"required"`
	VideoLink           string `json:"videoLink" form:"videoLink" validate:"omitempty,max=2048"`
	ChinaAddress        string `json:"chinaAddress" form:"chinaAddress" validate:"omitempty,max=1024"`
	WhatsappNumber      string `json:"whatsappNumber" form:"whatsappNumber" validate:"omitempty,max=64"`
	AboutUsText         string `json:"aboutUsText" form:"aboutUsText" validate:"omitempty,max=20000"`
	ProhibitedItemsText string `json:"prohibitedItemsText" form:"prohibitedItemsText" validate:"omitempty,max=20000"`
	DeliveryTime        string `json:"deliveryTime" form:"deliveryTime" validate:"omitempty,max=255"`
	CargoResponsibility string `json:"cargoResponsibility" form:"cargoResponsibility" validate:"omitempty,max=20000"`
}

func (r UpdateSettingsRequest) Patch() resolver.SettingsPatch {
	return resolver.SettingsPatch{
		VideoLink:           r.VideoLink,
		ChinaAddress:        r.ChinaAddress,
		WhatsappNumber:      r.WhatsappNumber,
		AboutUsText:         r.AboutUsText,
		ProhibitedItemsText: r.ProhibitedItemsText,
		DeliveryTime:        r.DeliveryTime,
		CargoResponsibility: r.CargoResponsibility,
	}
}

type UpdateContactsRequest struct {
	UserID        string `json:"userId" form:"userId" validate:"required"`
	Phone         string `json:"phone" form:"phone" validate:"omitempty,max=64"`
	WhatsappPhone string `json:"whatsappPhone" form:"whatsappPhone" validate:"omitempty,max=64"`
	WhatsappLink  string `json:"whatsappLink" form:"whatsappLink" validate:"omitempty,max=2048"`
	Instagram     string `json:"instagram" form:"instagram" validate:"omitempty,max=255"`
	TelegramID    string `json:"telegramId" form:"telegramId" validate:"omitempty,max=255"`
	TelegramLink  string `json:"telegramLink" form:"telegramLink" validate:"omitempty,max=2048"`
}

func (r UpdateContactsRequest) Patch() resolver.ContactsPatch {
	return resolver.ContactsPatch{
		Phone:         r.Phone,
		WhatsappPhone: r.WhatsappPhone,
		WhatsappLink:  r.WhatsappLink,
		Instagram:     r.Instagram,
		TelegramID:    r.TelegramID,
		TelegramLink:  r.TelegramLink,
	}
}

type UpdatePriceRequest struct {
	Price    string `json:"price" form:"price" validate:"omitempty,max=64"`
	Currency string `json:"currency" form:"currency" validate:"omitempty,max=16"`
}

type GlobalBonusRequest struct {
	GlobalReferralBonusPercentage *float64 `json:"globalReferralBonusPercentage" form:"globalReferralBonusPercentage" validate:"required,gte=0,lte=100"`
}

type UserQuery struct {
	UserID string `query:"userId" validate:"required"`
}

const defaultAuditLimit = 50

type AuditLogQuery struct {
	UserID     string `query:"userId" validate:"required"`
	EntityType string `query:"entityType" validate:"omitempty,oneof=global_settings contacts branch"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=200"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under the names clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// check validates req and converts failures into a validation error.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Internal("server error", err)
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return apperror.Validation("invalid request", fields...)
}

// parseUserID turns the userId string into a users primary key.
func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid request", apperror.FieldError{Field: "userId", Rule: "id"})
	}
	return uint(id), nil
}
