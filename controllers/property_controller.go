package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gate-access-backend/services"
	"gate-access-backend/utils"
)

type PropertyController struct {
	Properties *services.PropertyService
}

func NewPropertyController(props *services.PropertyService) *PropertyController {
	return &PropertyController{Properties: props}
}

type propertyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// GET /api/properties
func (p *PropertyController) List(ctx *gin.Context) {
	props, err := p.Properties.ListProperties()
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to list properties")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, props)
}

// POST /api/properties
func (p *PropertyController) Create(ctx *gin.Context) {
	var req propertyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	ownerID := currentUserID(ctx)
	prop, err := p.Properties.CreateProperty(ownerID, req.Name, req.Address)
	switch {
	case errors.Is(err, services.ErrNameRequired):
		utils.JSONError(ctx, http.StatusBadRequest, "name is required")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to create property")
	default:
		utils.JSONSuccess(ctx, http.StatusCreated, prop)
	}
}

// PUT /api/properties/:id
func (p *PropertyController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req propertyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	prop, err := p.Properties.UpdateProperty(id, req.Name, req.Address)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "property not found")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to update property")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, prop)
	}
}

// DELETE /api/properties/:id
func (p *PropertyController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := p.Properties.DeleteProperty(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "property not found")
			return
		}
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to delete property")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}

type roomRequest struct {
	PropertyID  uint   `json:"property_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GET /api/rooms?property_id=N
func (p *PropertyController) ListRooms(ctx *gin.Context) {
	var propertyID uint
	if q := ctx.Query("property_id"); q != "" {
		v, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid property_id")
			return
		}
		propertyID = uint(v)
	}
	rooms, err := p.Properties.ListRooms(propertyID)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, rooms)
}

// POST /api/rooms
func (p *PropertyController) CreateRoom(ctx *gin.Context) {
	var req roomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	room, err := p.Properties.CreateRoom(req.PropertyID, req.Name, req.Description)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "property not found")
	case errors.Is(err, services.ErrNameRequired):
		utils.JSONError(ctx, http.StatusBadRequest, "name is required")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to create room")
	default:
		utils.JSONSuccess(ctx, http.StatusCreated, room)
	}
}

// PUT /api/rooms/:id
func (p *PropertyController) UpdateRoom(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req roomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	room, err := p.Properties.UpdateRoom(id, req.Name, req.Description)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "room not found")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to update room")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, room)
	}
}

// DELETE /api/rooms/:id
func (p *PropertyController) DeleteRoom(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := p.Properties.DeleteRoom(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "room not found")
			return
		}
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to delete room")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}

type checkpointRequest struct {
	PropertyID uint   `json:"property_id"`
	Name       string `json:"name"`
}

// GET /api/checkpoints
func (p *PropertyController) ListCheckpoints(ctx *gin.Context) {
	cps, err := p.Properties.ListCheckpoints()
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to list checkpoints")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, cps)
}

// GET /api/checkpoints/:id
func (p *PropertyController) GetCheckpoint(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	cp, err := p.Properties.GetCheckpoint(id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "checkpoint not found")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load checkpoint")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, cp)
	}
}

// POST /api/checkpoints
func (p *PropertyController) CreateCheckpoint(ctx *gin.Context) {
	var req checkpointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	cp, err := p.Properties.CreateCheckpoint(req.PropertyID, req.Name)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "property not found")
	case errors.Is(err, services.ErrNameRequired):
		utils.JSONError(ctx, http.StatusBadRequest, "name is required")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to create checkpoint")
	default:
		utils.JSONSuccess(ctx, http.StatusCreated, cp)
	}
}

// PUT /api/checkpoints/:id
func (p *PropertyController) UpdateCheckpoint(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req checkpointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	cp, err := p.Properties.UpdateCheckpoint(id, req.Name)
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "checkpoint not found")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to update checkpoint")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, cp)
	}
}

// DELETE /api/checkpoints/:id
func (p *PropertyController) DeleteCheckpoint(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := p.Properties.DeleteCheckpoint(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "checkpoint not found")
			return
		}
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to delete checkpoint")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}
