package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/authwebsvc/internal/http/handlers"
	"github.com/you/authwebsvc/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, ph *handlers.ProductHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/api/auth/web")
	auth.POST("/sign-in", ah.SignIn)
	auth.POST("/sign-up", ah.SignUp)
	auth.POST("/verify-account/:verificationKey", ah.VerifyAccount)
	auth.POST("/verify-account/resend/:oldVerificationKey", ah.ResendOtp)
	auth.POST("/request-reset-password", ah.RequestResetPassword)
	auth.POST("/reset-password/:encodedToken", ah.ResetPassword)
	auth.GET("/sign-in/google", ah.GoogleSignIn)
	auth.GET("/sign-in/google/callback", ah.GoogleCallback)

	session := r.Group("/api/auth/web").Use(jwtmw.WithJWT())
	session.POST("/sign-out", ah.SignOut)
	session.GET("/me", ah.Me)

	products := r.Group("/api/products").Use(jwtmw.WithJWT())
	products.GET("", ph.List)
	products.GET("/:id", ph.Get)
	products.POST("", ph.Create)
	products.PUT("/:id", ph.Update)
	products.DELETE("/:id", ph.Delete)

	return r
}
