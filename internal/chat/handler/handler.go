package handler

import (
	"net/http"

	"genba_backend/internal/chat/service"
	"genba_backend/internal/chat/transport"
	"genba_backend/platform/httpkit"
	"genba_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the chat surface.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new chat handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/messages", h.Message)
	rg.POST("/tools", h.Tool)
}

// Message runs one chat turn and returns the rendered blocks.
func (h *Handler) Message(c *gin.Context) {
	var req transport.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.HandleMessage(c.Request.Context(), service.MessageInput{
		UserID: identity.UserID(),
		SiteID: req.SiteID,
		Text:   req.Text,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Tool executes one allow-listed tool action.
func (h *Handler) Tool(c *gin.Context) {
	var req transport.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.DispatchTool(c.Request.Context(), identity.UserID(), req.Action, req.Params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
