package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.geoview.io/geoview/internal/domain"
	"go.geoview.io/geoview/internal/usecase"
)

// Handler handles HTTP requests for the viewer session.
type Handler struct {
	session *usecase.Session
}

// NewHandler creates a new HTTP handler.
func NewHandler(session *usecase.Session) *Handler {
	return &Handler{
		session: session,
	}
}

// OpenRequest is the body for POST /v1/open.
type OpenRequest struct {
	Path string `json:"path" binding:"required"`
}

// OpenFile handles POST /v1/open.
func (h *Handler) OpenFile(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	kind, err := h.session.OpenFile(req.Path)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, usecase.ErrUnsupportedType) {
			status = http.StatusUnsupportedMediaType
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"kind": kind, "path": req.Path})
}

// GetMetadata handles GET /v1/metadata.
func (h *Handler) GetMetadata(c *gin.Context) {
	text, err := h.session.MetadataText()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": h.session.Kind(), "text": text})
}

// GetVariables handles GET /v1/variables.
func (h *Handler) GetVariables(c *gin.Context) {
	vars, err := h.session.Variables()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	type VariableInfo struct {
		Name  string `json:"name"`
		Label string `json:"label"`
		Rank  int    `json:"rank"`
	}
	response := make([]VariableInfo, len(vars))
	for i, v := range vars {
		response[i] = VariableInfo{Name: v.Name, Label: v.Label(), Rank: v.Rank()}
	}

	c.JSON(http.StatusOK, gin.H{"variables": response, "count": len(response)})
}

// SelectRequest is the body for POST /v1/variables/select.
type SelectRequest struct {
	Variable string `json:"variable" binding:"required"`
}

// SelectVariable handles POST /v1/variables/select.
func (h *Handler) SelectVariable(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	result, err := h.session.SelectVariable(req.Variable)
	if err != nil {
		respondRenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PlanRequest is the body for POST /v1/plot.
type PlanRequest struct {
	Variable string         `json:"variable" binding:"required"`
	XDim     string         `json:"x_dim" binding:"required"`
	YDim     string         `json:"y_dim" binding:"required"`
	NavDim   string         `json:"nav_dim"`
	Indices  map[string]int `json:"indices"`
}

// ConfirmPlan handles POST /v1/plot.
func (h *Handler) ConfirmPlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	frame, err := h.session.ConfirmPlan(req.Variable, req.Indices, req.XDim, req.YDim, req.NavDim)
	if err != nil {
		respondRenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, frame)
}

// StepRequest is the body for POST /v1/plot/step.
type StepRequest struct {
	Direction int `json:"direction" binding:"required"`
}

// Step handles POST /v1/plot/step.
func (h *Handler) Step(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if req.Direction != 1 && req.Direction != -1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be 1 or -1"})
		return
	}

	frame, err := h.session.Step(req.Direction)
	if err != nil {
		respondRenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, frame)
}

// GetFramePNG handles GET /v1/plot/frame.
func (h *Handler) GetFramePNG(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.session.FramePNG(&buf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetLegendPNG handles GET /v1/plot/legend.
func (h *Handler) GetLegendPNG(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.session.LegendPNG(&buf); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Probe handles GET /v1/plot/probe.
func (h *Handler) Probe(c *gin.Context) {
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}

	result, err := h.session.Probe(lon, lat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"text":      result.String(),
		"in_bounds": result.InBounds,
		"masked":    result.Masked,
		"value":     result.Value,
	})
}

// Home handles POST /v1/home.
func (h *Handler) Home(c *gin.Context) {
	h.session.Home()
	c.JSON(http.StatusOK, gin.H{"kind": h.session.Kind()})
}

// GetHistory handles GET /v1/history.
func (h *Handler) GetHistory(c *gin.Context) {
	entries := h.session.History()
	c.JSON(http.StatusOK, gin.H{"history": entries, "count": len(entries)})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// respondRenderError maps domain errors onto HTTP statuses and includes
// the failure reason so the UI can word its dialog.
func respondRenderError(c *gin.Context, err error) {
	var rerr *domain.RenderError
	if errors.As(err, &rerr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  rerr.Error(),
			"reason": rerr.Reason.String(),
		})
		return
	}
	if errors.Is(err, domain.ErrInvalidDimensionChoice) || errors.Is(err, domain.ErrCoordinatesNotFound) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
