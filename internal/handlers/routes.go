package handlers

import (
	"github.com/gin-gonic/gin"

	"bondhub/internal/middleware"
	"bondhub/internal/telemetry"
	"bondhub/internal/usecase"
)

// Routes holds what RegisterRoutes wires.
type Routes struct {
	UseCases *usecase.Set
	Tokens   middleware.TokenValidator
	Audit    *telemetry.AuditEmitter
	Marker   ReadMarker
}

// RegisterRoutes mounts the REST API. Everything except sign-up and sign-in
// requires a bearer token.
func RegisterRoutes(router gin.IRouter, r Routes) {
	auth := NewAuthHandler(r.UseCases, r.Audit)
	profiles := NewProfileHandler(r.UseCases)
	conns := NewConnectionHandler(r.UseCases)
	chats := NewChatHandler(r.UseCases)

	router.POST("/auth/signup", auth.SignUp)
	router.POST("/auth/signin", auth.SignIn)

	authorized := router.Group("/")
	authorized.Use(middleware.AuthMiddleware(r.Tokens))

	authorized.POST("/auth/signout", auth.SignOut)
	authorized.PUT("/auth/fcm-token", auth.UpdateFCMToken)

	authorized.GET("/profile/:user_id", profiles.GetProfile)
	authorized.PUT("/profile", profiles.UpdateProfile)
	authorized.GET("/users/search", profiles.SearchUsers)

	authorized.GET("/connections", conns.ListConnections)
	authorized.POST("/connections", conns.SendRequest)
	authorized.POST("/connections/:id/accept", conns.Accept)
	authorized.POST("/connections/:id/reject", conns.Reject)
	authorized.POST("/connections/:id/read", conns.MarkRead)

	authorized.GET("/chats", chats.ListChats)
	authorized.GET("/chats/:chat_id", chats.GetChat)
	authorized.DELETE("/chats/:chat_id", chats.DeleteChat)
	authorized.GET("/chats/:chat_id/messages", chats.GetChatMessages)
	authorized.POST("/chats/:chat_id/messages", chats.PostChatMessage)
	authorized.PATCH("/chats/:chat_id/messages/:message_id/status", chats.UpdateMessageStatus)
	authorized.DELETE("/chats/:chat_id/messages/:message_id", chats.DeleteMessage)

	if r.Marker != nil {
		authorized.POST("/notifications/:chat_id/read", NewNotificationHandler(r.Marker).MarkAsRead)
	}
}
