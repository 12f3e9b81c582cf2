package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/cgsmiles/internal/application/resolution"
	"github.com/turtacn/cgsmiles/pkg/types/molecule"
)

// ResolutionHandler serves the notation endpoints.
type ResolutionHandler struct {
	svc resolution.Service
}

func NewResolutionHandler(svc resolution.Service) *ResolutionHandler {
	return &ResolutionHandler{svc: svc}
}

// RegisterRoutes mounts the handler on rg (normally /api/v1).
//
//	POST /resolve    notation -> meta molecule and atomistic molecule
//	POST /validate   notation -> parse report, no bonding
//	POST /fragments  notation -> parsed dictionary templates
func (h *ResolutionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resolve", h.Resolve)
	rg.POST("/validate", h.Validate)
	rg.POST("/fragments", h.Fragments)
}

func (h *ResolutionHandler) Resolve(c *gin.Context) {
	var req molecule.ResolveRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Resolve(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *ResolutionHandler) Validate(c *gin.Context) {
	var req molecule.ValidateRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Validate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *ResolutionHandler) Fragments(c *gin.Context) {
	var req molecule.TemplatesRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	templates, err := h.svc.Templates(c.Request.Context(), req.Notation)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, templates)
}
