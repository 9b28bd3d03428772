package api

import (
	"net/http"

	reqdto "storefront/internal/handler/dto/request"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	cmds commands.ConfigCommands
}

func NewConfigHandler(cmds commands.ConfigCommands) *ConfigHandler {
	return &ConfigHandler{cmds: cmds}
}

// @Summary Prepare configuration
// @Description Returns the configuration form for a new selection (pricing_id+group_id), a cart item (item) or a queued entry (q_item). Entries with nothing to configure are promoted and the next step is returned instead.
// @Tags config
// @Produce json
// @Param form path string true "Order form label"
// @Param pricing_id query string false "Pricing ID"
// @Param group_id query string false "Package group ID"
// @Param item query int false "Cart item index"
// @Param q_item query int false "Queue index"
// @Param ajax query bool false "Never auto-promote"
// @Success 200 {object} resdto.ConfigResponse
// @Failure 400 {object} httperr.Response
// @Router /order/{form}/config [get]
func (h *ConfigHandler) Prepare(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var q reqdto.PrepareConfigQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortBadRequest(c, err)
		return
	}
	req, err := q.ToConfigRequest()
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	result, err := h.cmds.Prepare(c.Request.Context(), sid, commands.PrepareInput{
		FormLabel: c.Param("form"),
		ClientID:  middleware.OptionalClientID(c),
		Request:   req,
		Ajax:      q.Ajax,
	})
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.render(c, result)
}

// @Summary Submit configuration
// @Description Validates service fields, options and addons, then moves the entry into the cart. Resubmitting an already promoted nonce is a no-op.
// @Tags config
// @Accept json
// @Produce json
// @Param form path string true "Order form label"
// @Param request body reqdto.SubmitConfigRequest true "Configuration"
// @Success 200 {object} resdto.ConfigResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /order/{form}/config [post]
func (h *ConfigHandler) Submit(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req reqdto.SubmitConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	in, err := req.ToInput(c.Param("form"), middleware.OptionalClientID(c))
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	result, err := h.cmds.Submit(c.Request.Context(), sid, in)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.render(c, result)
}

// @Summary Evaluate package options
// @Description Re-evaluates option rules for the given selection
// @Tags config
// @Accept json
// @Produce json
// @Param form path string true "Order form label"
// @Param request body reqdto.PackageOptionsRequest true "Selected options"
// @Success 200 {object} resdto.PackageOptionsResponse
// @Failure 422 {object} httperr.Response
// @Router /order/{form}/config/package-options [post]
func (h *ConfigHandler) PackageOptions(c *gin.Context) {
	var req reqdto.PackageOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	states, fieldErrs, err := h.cmds.PackageOptions(c.Request.Context(), req.ToInput())
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.PackageOptionsResponse{
		Options: resdto.FromOptionStates(states),
		Errors:  fieldErrs,
	})
}

func (h *ConfigHandler) render(c *gin.Context, result *commands.ConfigResult) {
	res, err := resdto.FromConfigResult(result)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, res)
}
