package admin

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wkchat/internal/chat"
	"wkchat/internal/keystore"
)

type newChatRequest struct {
	Model string `json:"model"`
}

type sendMessageRequest struct {
	ChatID  string `json:"chat_id"`
	Model   string `json:"model" binding:"required"`
	Content string `json:"content"`
}

func (h *Handler) ListChatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": chat.GroupByAge(h.Chats.List(), time.Now())})
}

func (h *Handler) CreateChatHandler(c *gin.Context) {
	var req newChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	c.JSON(http.StatusCreated, h.Chats.NewChat(req.Model))
}

func (h *Handler) DeleteChatHandler(c *gin.Context) {
	if err := h.Chats.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListMessagesHandler(c *gin.Context) {
	msgs, err := h.Chats.Messages(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) SendMessageHandler(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	send, err := h.Chats.PrepareSend(req.ChatID, req.Model, req.Content)
	var missing *chat.MissingKeyError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusPreconditionFailed, gin.H{
			"error":    fmt.Sprintf("You need to add an API key for %s to use this model.", missing.ProviderName),
			"provider": missing.ProviderID,
		})
		return
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	case errors.Is(err, chat.ErrChatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	case err != nil:
		h.logger.Error("Failed to prepare message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"chat_id":    send.ChatID,
		"model":      send.Model,
		"provider":   send.Provider,
		"masked_key": keystore.Mask(send.APIKey),
		"message":    send.Message,
	})
}
