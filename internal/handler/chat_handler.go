package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/deephumans/deephumans/internal/model"
	"github.com/deephumans/deephumans/internal/pkg/errcode"
	"github.com/deephumans/deephumans/internal/pkg/response"
	"github.com/deephumans/deephumans/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type sendMessageRequest struct {
	CharacterName string `json:"character_name"`
	Content       string `json:"content"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.chat.Send(c.Request.Context(), getUserID(c), req.CharacterName, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *ChatHandler) History(c *gin.Context) {
	characterName := c.Query("character")
	if characterName == "" {
		response.Error(c, errcode.ErrInvalid, "character is required")
		return
	}
	items, err := h.chat.History(c.Request.Context(), getUserID(c), characterName)
	if err != nil {
		handleError(c, err)
		return
	}
	if items == nil {
		items = []model.ChatMessage{}
	}
	response.Success(c, gin.H{"items": items})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	messageID := c.Param("id")
	if err := h.chat.DeleteMessage(c.Request.Context(), getUserID(c), messageID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ChatHandler) Clear(c *gin.Context) {
	characterName := c.Query("character")
	if characterName == "" {
		response.Error(c, errcode.ErrInvalid, "character is required")
		return
	}
	if err := h.chat.ClearCharacter(c.Request.Context(), getUserID(c), characterName); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
