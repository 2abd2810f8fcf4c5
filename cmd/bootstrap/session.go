package bootstrap

import (
	"stockroom/internal/pkg/config"
	"stockroom/internal/pkg/jwt"

	"go.uber.org/fx"
)

var SessionModule = fx.Module("session",
	fx.Provide(
		NewSessionTokens,
	),
)

func NewSessionTokens(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.Session.Secret)
}
