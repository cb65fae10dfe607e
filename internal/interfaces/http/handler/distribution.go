package handler

import (
	invapp "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// DistributionHandler serves warehouse to branch transfers
type DistributionHandler struct {
	BaseHandler
	distributionService *invapp.DistributionService
}

// NewDistributionHandler creates a new DistributionHandler
func NewDistributionHandler(distributionService *invapp.DistributionService) *DistributionHandler {
	return &DistributionHandler{distributionService: distributionService}
}

// DistributionQuery are the query parameters of the distribution list
type DistributionQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING RECEIVED"`
	BranchID string `form:"branch_id"`
}

// Distribute godoc
// @Summary      Send stock to a branch
// @Description  Deducts the warehouse and opens a PENDING distribution (owner only)
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Param        request body invapp.DistributeRequest true "Distribution"
// @Success      201 {object} APIResponse[invapp.DistributionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /distributions [post]
func (h *DistributionHandler) Distribute(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var req invapp.DistributeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	distribution, err := h.distributionService.Distribute(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, distribution)
}

// Confirm godoc
// @Summary      Confirm receipt of a distribution
// @Description  Credits the branch stock; a distribution is received once
// @Tags         distributions
// @Produce      json
// @Param        id path string true "Distribution ID"
// @Success      200 {object} APIResponse[invapp.DistributionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /distributions/{id}/confirm [post]
func (h *DistributionHandler) Confirm(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	distribution, err := h.distributionService.Confirm(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, distribution)
}

// GetByID godoc
// @Summary      Get a distribution
// @Tags         distributions
// @Produce      json
// @Param        id path string true "Distribution ID"
// @Success      200 {object} APIResponse[invapp.DistributionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /distributions/{id} [get]
func (h *DistributionHandler) GetByID(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	distribution, err := h.distributionService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, distribution)
}

// List godoc
// @Summary      List distributions
// @Description  Newest first; employees only see their own branch
// @Tags         distributions
// @Produce      json
// @Param        status    query string false "PENDING or RECEIVED"
// @Param        branch_id query string false "Branch ID"
// @Success      200 {object} APIResponse[[]invapp.DistributionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /distributions [get]
func (h *DistributionHandler) List(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var q DistributionQuery
	if !h.bindQuery(c, &q) {
		return
	}
	branchID, err := optionalUUID("branch_id", q.BranchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	rows, err := h.distributionService.List(c.Request.Context(), actor, invapp.DistributionListFilter{
		Status:   q.Status,
		BranchID: branchID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}
