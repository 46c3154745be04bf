package settings

import (
	"mime/multipart"
	"strings"

	"github.com/azattello/cargo3589-server/internal/apperror"
	"github.com/azattello/cargo3589-server/internal/auth"
	"github.com/azattello/cargo3589-server/internal/models"
	"github.com/azattello/cargo3589-server/internal/resolver"

	"github.com/gofiber/fiber/v2"
)

// Register mounts the settings routes on r. jwtSecret guards the price
// and bonus management routes; empty leaves them open.
func Register(r fiber.Router, svc *Service, jwtSecret string) {
	r.Post("/updateSettings", UpdateSettingsHandler(svc))
	r.Get("/getSettings", GetSettingsHandler(svc))

	r.Get("/getPrice", GetPriceHandler(svc))
	r.Post("/updatePrice",
		auth.JWTMiddleware(jwtSecret), auth.RequireRole(jwtSecret, models.RoleAdmin),
		UpdatePriceHandler(svc))

	r.Put("/globalBonus",
		auth.JWTMiddleware(jwtSecret), auth.RequireRole(jwtSecret, models.RoleAdmin),
		GlobalBonusHandler(svc))
	r.Get("/getGlobalBonus", GetGlobalBonusHandler(svc))

	r.Post("/updateContacts", UpdateContactsHandler(svc))
	r.Get("/getContacts", GetContactsHandler(svc))

	r.Get("/auditLog", AuditLogHandler(svc))
}

// parseBody accepts JSON, urlencoded and multipart bodies. An empty body
// parses to the zero request so that validation reports what is missing.
func parseBody(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return apperror.Validation("invalid request body")
	}
	return nil
}

func contractFile(c *fiber.Ctx) *multipart.FileHeader {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	if files := form.File["contract"]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// actor is the JWT user of a guarded route, 0 with the guard disabled.
func actor(c *fiber.Ctx) uint {
	id, _ := c.Locals(auth.CtxUserIDKey).(uint)
	return id
}

func userFromQuery(c *fiber.Ctx) (uint, error) {
	q := UserQuery{UserID: c.Query("userId")}
	if err := check(q); err != nil {
		return 0, err
	}
	return parseUserID(q.UserID)
}

// POST /api/settings/updateSettings
// multipart/form-data with an optional "contract" file, or JSON
func UpdateSettingsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateSettingsRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}
		if err := check(body); err != nil {
			return err
		}
		userID, err := parseUserID(body.UserID)
		if err != nil {
			return err
		}

		target, err := svc.UpdateSettings(c.UserContext(), userID, body.Patch(), contractFile(c))
		if err != nil {
			return err
		}
		return c.JSON(target.Record())
	}
}

// GET /api/settings/getSettings?userId=
func GetSettingsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userFromQuery(c)
		if err != nil {
			return err
		}

		target, err := svc.Read(c.UserContext(), userID, resolver.GroupSettings)
		if err != nil {
			return err
		}
		return c.JSON(target.Record())
	}
}

// GET /api/settings/getPrice
func GetPriceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gs, err := svc.GlobalSettings(c.UserContext())
		if err != nil {
			return err
		}
		if gs == nil {
			return c.JSON(nil)
		}
		return c.JSON(gs)
	}
}

// POST /api/settings/updatePrice
func UpdatePriceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdatePriceRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}
		if err := check(body); err != nil {
			return err
		}

		gs, err := svc.UpdatePrice(c.UserContext(), actor(c), resolver.PricePatch{Price: body.Price, Currency: body.Currency})
		if err != nil {
			return err
		}
		return c.JSON(gs)
	}
}

// PUT /api/settings/globalBonus
func GlobalBonusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GlobalBonusRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}
		if err := check(body); err != nil {
			return err
		}

		if err := svc.SetGlobalBonus(c.UserContext(), actor(c), *body.GlobalReferralBonusPercentage); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "global bonus percentage updated"})
	}
}

// GET /api/settings/getGlobalBonus
func GetGlobalBonusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pct, err := svc.GlobalBonus(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"globalReferralBonusPercentage": pct})
	}
}

// POST /api/settings/updateContacts
func UpdateContactsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateContactsRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}
		if err := check(body); err != nil {
			return err
		}
		userID, err := parseUserID(body.UserID)
		if err != nil {
			return err
		}

		target, err := svc.UpdateContacts(c.UserContext(), userID, body.Patch())
		if err != nil {
			return err
		}
		return c.JSON(target.Record())
	}
}

// GET /api/settings/getContacts?userId=
// Clients reading through their selected branch get {"filial": {...}};
// admins and branch managers get the record itself. Existing mobile
// clients rely on both shapes.
func GetContactsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userFromQuery(c)
		if err != nil {
			return err
		}

		target, err := svc.Read(c.UserContext(), userID, resolver.GroupContacts)
		if err != nil {
			return err
		}
		if target.Selected {
			return c.JSON(fiber.Map{"filial": target.Branch})
		}
		return c.JSON(target.Record())
	}
}

// GET /api/settings/auditLog?userId=&entityType=&limit=
func AuditLogHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q AuditLogQuery
		if err := c.QueryParser(&q); err != nil {
			return apperror.Validation("invalid query")
		}
		if err := check(q); err != nil {
			return err
		}
		userID, err := parseUserID(q.UserID)
		if err != nil {
			return err
		}
		if q.Limit == 0 {
			q.Limit = defaultAuditLimit
		}

		logs, err := svc.AuditLogs(c.UserContext(), userID, q.EntityType, q.Limit)
		if err != nil {
			return err
		}
		return c.JSON(logs)
	}
}
