package middleware

import (
	"strings"

	"storefront/internal/apperr"

	"github.com/labstack/echo/v4"
)

const RoleAdmin = "admin"

//contextに入っているroleがadminかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(CtxCustomerIDKey).(string); !ok {
				return unauthorized(c)
			}

			//admin以外は拒否
			role, _ := c.Get(CtxRoleKey).(string)
			if !strings.EqualFold(role, RoleAdmin) {
				e := &apperr.Error{Kind: apperr.KindForbidden, Code: apperr.CodeAdminOnly, Message: "admin only"}
				return c.JSON(e.Status(), e.Response())
			}

			return next(c)
		}
	}
}
