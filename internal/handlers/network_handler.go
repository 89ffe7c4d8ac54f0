package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/htm-project/cortical-api/internal/cortical/network"
	"github.com/htm-project/cortical-api/internal/domain/htm"
	"github.com/htm-project/cortical-api/internal/services"
)

// setInputRequest is the wire body for PUT .../input-spaces/:input_space_id.
type setInputRequest struct {
	Active []network.Coordinate `json:"active" validate:"required"`
}

// NetworkHandler exposes the CLA learning engine (internal/cortical/network)
// over HTTP: describe a network, step it, and read back its diagnostic
// state through JSON request/response domain types.
type NetworkHandler struct {
	service *services.NetworkService
}

// NewNetworkHandler creates a NetworkHandler bound to service.
func NewNetworkHandler(service *services.NetworkService) *NetworkHandler {
	return &NetworkHandler{service: service}
}

// CreateNetwork handles POST /api/v1/networks.
func (h *NetworkHandler) CreateNetwork(c *gin.Context) {
	var cfg htm.NetworkConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": htm.NewAPIError(htm.ErrorCodeInvalidJSON, err.Error())})
		return
	}

	id, err := h.service.CreateNetwork(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": htm.NewValidationError(err.Error(), nil)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"network_id": id})
}

// SetInput handles PUT /api/v1/networks/:id/input-spaces/:input_space_id,
// overwriting that InputSpace's active bitmap ahead of the next Step call.
func (h *NetworkHandler) SetInput(c *gin.Context) {
	var body setInputRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": htm.NewAPIError(htm.ErrorCodeInvalidJSON, err.Error())})
		return
	}

	if err := h.service.SetInput(c.Param("id"), c.Param("input_space_id"), body.Active); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": htm.NewValidationError(err.Error(), nil)})
		return
	}
	c.Status(http.StatusNoContent)
}

// StepNetwork handles POST /api/v1/networks/:id/step.
func (h *NetworkHandler) StepNetwork(c *gin.Context) {
	id := c.Param("id")
	t, err := h.service.Step(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": htm.NewValidationError(err.Error(), nil)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"network_id": id, "time": t})
}

// GetRegionSnapshot handles GET /api/v1/networks/:id/regions/:region_id.
func (h *NetworkHandler) GetRegionSnapshot(c *gin.Context) {
	snap, err := h.service.RegionSnapshot(c.Param("id"), c.Param("region_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": htm.NewValidationError(err.Error(), nil)})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetPoolStats handles GET /api/v1/networks/:id/pool-stats.
func (h *NetworkHandler) GetPoolStats(c *gin.Context) {
	stats, err := h.service.PoolStats(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": htm.NewValidationError(err.Error(), nil)})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeleteNetwork handles DELETE /api/v1/networks/:id.
func (h *NetworkHandler) DeleteNetwork(c *gin.Context) {
	h.service.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RegisterRoutes attaches the engine's routes under /api/v1/networks.
func (h *NetworkHandler) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/v1/networks")
	group.POST("", h.CreateNetwork)
	group.PUT("/:id/input-spaces/:input_space_id", h.SetInput)
	group.POST("/:id/step", h.StepNetwork)
	group.GET("/:id/regions/:region_id", h.GetRegionSnapshot)
	group.GET("/:id/pool-stats", h.GetPoolStats)
	group.DELETE("/:id", h.DeleteNetwork)
}
