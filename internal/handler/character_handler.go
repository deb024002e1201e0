package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deephumans/deephumans/internal/filestore"
	"github.com/deephumans/deephumans/internal/persona"
	"github.com/deephumans/deephumans/internal/pkg/errcode"
	"github.com/deephumans/deephumans/internal/pkg/response"
)

const maxAvatarSize = 2 << 20

type CharacterHandler struct {
	store filestore.Store
}

func NewCharacterHandler(store filestore.Store) *CharacterHandler {
	return &CharacterHandler{store: store}
}

type characterItem struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *CharacterHandler) List(c *gin.Context) {
	baseURL := requestBaseURL(c)
	personas := persona.List()
	items := make([]characterItem, 0, len(personas))
	for _, p := range personas {
		items = append(items, characterItem{
			Name:      p.Name,
			AvatarURL: h.store.URL(persona.AvatarKey(p.Name), baseURL),
		})
	}
	response.Success(c, gin.H{"items": items})
}

func (h *CharacterHandler) Avatar(c *gin.Context) {
	key := c.Param("key")
	if h.store.Type() != "local" {
		c.Redirect(http.StatusFound, h.store.URL(key, requestBaseURL(c)))
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		response.Error(c, errcode.ErrNotFound, "avatar not found")
		return
	}
	defer file.Close()
	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func (h *CharacterHandler) UploadAvatar(c *gin.Context) {
	name := c.Param("name")
	if strings.TrimSpace(name) == "" {
		response.Error(c, errcode.ErrInvalid, "character name is required")
		return
	}
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "avatar file is required")
		return
	}
	if fileHeader.Size > maxAvatarSize {
		response.Error(c, errcode.ErrInvalid, "avatar too large")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid avatar file")
		return
	}
	defer file.Close()
	key := persona.AvatarKey(name)
	if err := h.store.Save(c.Request.Context(), key, file, fileHeader.Size); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"avatar_url": h.store.URL(key, requestBaseURL(c))})
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
