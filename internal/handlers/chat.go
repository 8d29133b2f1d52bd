package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bondhub/internal/middleware"
	"bondhub/internal/models"
	"bondhub/internal/usecase"
)

// ChatHandler manages chats and their messages. Chat ids in paths are the
// caller's chat copy ids.
type ChatHandler struct {
	uc *usecase.Set
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(uc *usecase.Set) *ChatHandler {
	return &ChatHandler{uc: uc}
}

// ListChats returns the chats visible to the authenticated user.
func (h *ChatHandler) ListChats(c *gin.Context) {
	ctx := c.Request.Context()
	chats, err := snapshot(ctx, h.uc.ObserveChats.Execute(ctx, middleware.UserID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	chat, err := h.uc.GetChat.Execute(c.Request.Context(), c.Param("chat_id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// DeleteChat removes the caller's copy only.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	if err := h.uc.DeleteChat.Execute(c.Request.Context(), c.Param("chat_id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetChatMessages returns the newest messages of the chat, oldest first.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := h.uc.GetMessages.Execute(c.Request.Context(), chat.BaseChatID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostChatMessage sends a message to the other participant. A failed send
// answers with the error and the message as stored, status FAILED.
func (h *ChatHandler) PostChatMessage(c *gin.Context) {
	var req struct {
		Content       string             `json:"content"`
		Type          models.MessageType `json:"type"`
		AttachmentURL string             `json:"attachment_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = models.MessageText
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message type: " + string(req.Type)})
		return
	}
	if req.Content == "" && req.AttachmentURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		return
	}

	msg, err := h.uc.SendMessage.Execute(c.Request.Context(), c.Param("chat_id"), middleware.UserID(c), models.ChatMessage{
		Content:       req.Content,
		Type:          req.Type,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		if msg.Status == models.StatusFailed {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "message": msg})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) UpdateMessageStatus(c *gin.Context) {
	var req struct {
		Status models.MessageStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message status: " + string(req.Status)})
		return
	}
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}
	if err := h.uc.UpdateMessageStatus.Execute(c.Request.Context(), chat.BaseChatID, c.Param("message_id"), middleware.UserID(c), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMessage removes a message the caller sent.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}
	if err := h.uc.DeleteMessage.Execute(c.Request.Context(), chat.BaseChatID, c.Param("message_id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) ownedChat(c *gin.Context) (models.Chat, bool) {
	chat, err := h.uc.GetChat.Execute(c.Request.Context(), c.Param("chat_id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return models.Chat{}, false
	}
	return chat, true
}
