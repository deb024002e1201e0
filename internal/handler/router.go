package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deephumans/deephumans/internal/middleware"
)

type RouterDeps struct {
	Auth          *AuthHandler
	PasswordReset *PasswordResetHandler
	Chat          *ChatHandler
	Characters    *CharacterHandler
	Users         middleware.UserLookup
	JWTSecret     []byte
	ForgotWindow  time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)
	api.POST("/auth/logout", deps.Auth.Logout)

	api.POST("/password/forgot", middleware.RateLimit(deps.ForgotWindow), deps.PasswordReset.Forgot)
	api.POST("/password/verify", deps.PasswordReset.Verify)
	api.POST("/password/reset", deps.PasswordReset.Reset)

	api.GET("/characters", deps.Characters.List)
	api.GET("/characters/avatars/:key", deps.Characters.Avatar)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret, deps.Users))
	authGroup.POST("/chat/messages", deps.Chat.Send)
	authGroup.GET("/chat/history", deps.Chat.History)
	authGroup.DELETE("/chat/messages/:id", deps.Chat.Delete)
	authGroup.DELETE("/chat/history", deps.Chat.Clear)
	authGroup.POST("/characters/:name/avatar", deps.Characters.UploadAvatar)
}
