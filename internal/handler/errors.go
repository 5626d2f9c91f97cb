package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/apperr"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := apperr.As(err); ok {
		if ae.Status() >= http.StatusInternalServerError {
			c.Set(middleware.CtxErrorKey, err)
		}
		return c.JSON(ae.Status(), ae.Response())
	}

	//500
	c.Set(middleware.CtxErrorKey, err)
	return c.JSON(http.StatusInternalServerError, apperr.Response{Error: apperr.Body{
		Kind:    "INTERNAL",
		Code:    "INTERNAL_ERROR",
		Message: "internal error",
	}})
}

func badRequest(c echo.Context, msg string) error {
	return writeError(c, apperr.Validation(apperr.CodeInvalidInput, msg))
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// トークンのsub。未認証なら空
func customerIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxCustomerIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
