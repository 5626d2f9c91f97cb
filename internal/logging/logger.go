package logging

import (
	"go.uber.org/zap"
)

// 本番はJSON、それ以外は読みやすい開発用
func New(prod bool) (*zap.Logger, error) {
	if prod {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
