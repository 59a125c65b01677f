package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/authwebsvc/internal/config"
	httpx "github.com/you/authwebsvc/internal/http"
	"github.com/you/authwebsvc/internal/http/handlers"
	"github.com/you/authwebsvc/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	if err := c.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	authH := handlers.NewAuthHandlers(
		c.PasswordAuth,
		c.OtpAuth,
		c.OAuthSvc,
		c.OAuthProvider,
		c.StateStore,
		c.TokenSvc,
		cfg.JWTTTL,
	)
	productH := handlers.NewProductHandlers(c.ProductRepo)
	jwtMW := middleware.NewAuthMW(c.TokenSvc)

	r := httpx.BuildRouter(authH, productH, jwtMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
