package newsletter

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lunelle.GO/api"
	"lunelle.GO/app"
	"lunelle.GO/service/newsletter"
)

func init() {
	api.RegisterModule(RegisterNewsletterRoutes)
}

func RegisterNewsletterRoutes(apiGroup *echo.Group, svc *app.Services) {
	// POST /api/newsletter {"email": "a@b.co", "source": "footer"}
	apiGroup.POST("/newsletter", func(c echo.Context) error {
		var body struct {
			Email  string `json:"email" form:"email"`
			Source string `json:"source" form:"source"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Source == "" {
			body.Source = newsletter.SourceAPI
		}
		_, err := svc.Newsletter.Subscribe(c.Request().Context(), body.Email, body.Source)
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, echo.Map{"message": newsletter.SuccessMessage, "request_duration_ms": api.Elapsed(c)})
		case errors.Is(err, newsletter.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": newsletter.Message(err)})
		case errors.Is(err, newsletter.ErrNotConfigured):
			c.Logger().Error(err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": newsletter.Message(err)})
		default:
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": newsletter.Message(err)})
		}
	})
}
