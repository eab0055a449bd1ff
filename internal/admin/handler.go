package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"wkchat/internal/chat"
	"wkchat/internal/keycheck"
	"wkchat/internal/keystore"
	"wkchat/internal/provider"
	"wkchat/internal/validator"
)

// Deps are the services the API exposes.
type Deps struct {
	Keys     *keystore.Store
	Registry *provider.Registry
	Checker  *keycheck.Checker
	Chats    *chat.Service
	Logger   *slog.Logger
}

type Handler struct {
	Deps
	logger *slog.Logger
}

func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps, logger: deps.Logger.With("component", "admin")}
}

type saveKeyRequest struct {
	Key string `json:"key"`
}

type providerView struct {
	provider.Provider
	Connected bool   `json:"connected"`
	MaskedKey string `json:"maskedKey,omitempty"`
}

func wantReveal(c *gin.Context) bool {
	return c.Query("reveal") == "true"
}

func (h *Handler) ListProvidersHandler(c *gin.Context) {
	providers := h.Registry.Providers()
	views := make([]providerView, len(providers))
	for i, p := range providers {
		views[i] = providerView{Provider: p}
		if cred, ok := h.Keys.Find(p.ID); ok {
			views[i].Connected = true
			views[i].MaskedKey = keystore.Mask(cred.Key)
		}
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) ListModelsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Registry.Models())
}

func (h *Handler) ModelProviderHandler(c *gin.Context) {
	modelID := c.Param("model")
	providerID := h.Registry.ProviderForModel(modelID)
	resp := gin.H{
		"model":         modelID,
		"provider":      providerID,
		"provider_name": h.Registry.DisplayName(providerID),
	}
	// Unknown models fall back to the default provider and carry no display name.
	if m, ok := h.Registry.Model(modelID); ok {
		resp["model_name"] = m.Name
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListKeysHandler(c *gin.Context) {
	reveal := wantReveal(c)
	creds := h.Keys.List()
	views := make([]keystore.View, len(creds))
	for i, cred := range creds {
		views[i] = keystore.NewView(cred, reveal)
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetKeyHandler(c *gin.Context) {
	cred, ok := h.Keys.Find(c.Param("provider"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No API key stored for provider"})
		return
	}
	c.JSON(http.StatusOK, keystore.NewView(cred, wantReveal(c)))
}

func (h *Handler) SaveKeyHandler(c *gin.Context) {
	providerID := c.Param("provider")
	var req saveKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	p, ok := h.Registry.Provider(providerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	}
	cred, err := h.Checker.SaveKey(c.Request.Context(), p.ID, req.Key)
	switch {
	case errors.Is(err, keystore.ErrEmptyKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Key cannot be empty"})
	case errors.Is(err, validator.ErrInvalidKey):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "API key was rejected by " + p.Name})
	case err != nil:
		h.logger.Error("Failed to save API key", "provider", p.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save API key"})
	default:
		c.JSON(http.StatusOK, keystore.NewView(cred, false))
	}
}

func (h *Handler) DeleteKeyHandler(c *gin.Context) {
	err := h.Keys.Delete(c.Param("provider"))
	switch {
	case errors.Is(err, keystore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No API key stored for provider"})
	case err != nil:
		h.logger.Error("Failed to delete API key", "provider", c.Param("provider"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete API key"})
	default:
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) CheckKeyHandler(c *gin.Context) {
	result, err := h.Checker.Check(c.Request.Context(), c.Param("provider"))
	if errors.Is(err, keystore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No API key stored for provider"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CheckAllKeysHandler(c *gin.Context) {
	h.Checker.CheckAllAsync()
	c.JSON(http.StatusAccepted, gin.H{"message": "Key check started"})
}
