package middleware

import (
	"errors"
	"strings"

	"storefront/internal/apperr"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxCustomerIDKey = "customer_id"   // string（トークンのsub）
	CtxRoleKey       = "role"          // string
	CtxErrorKey      = "handler_error" // 5xxの原因（アクセスログ用）
)

// 認証は外部のバックエンドが発行したHS256トークンを検証するだけ。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sub, role, err := parseBearer(c, secret)
			if err != nil {
				return unauthorized(c)
			}

			//contextへ保存
			c.Set(CtxCustomerIDKey, sub)
			c.Set(CtxRoleKey, role)

			return next(c)
		}
	}
}

// トークンが無ければ匿名で通す。あれば検証する
func OptionalAuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}

			sub, role, err := parseBearer(c, secret)
			if err != nil {
				return unauthorized(c)
			}
			c.Set(CtxCustomerIDKey, sub)
			c.Set(CtxRoleKey, role)

			return next(c)
		}
	}
}

func parseBearer(c echo.Context, secret string) (string, string, error) {
	//Authorizationヘッダを取得
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		return "", "", errors.New("missing authorization")
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "", errors.New("not bearer")
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return "", "", errors.New("empty token")
	}

	//JWTをパースして検証する
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return "", "", errors.New("invalid sub")
	}

	// roleは無くてもよい
	role, _ := claims["role"].(string)

	return sub, role, nil
}

func unauthorized(c echo.Context) error {
	e := &apperr.Error{Kind: apperr.KindUnauthorized, Code: apperr.CodeUnauthorized, Message: "unauthorized"}
	return c.JSON(e.Status(), e.Response())
}
