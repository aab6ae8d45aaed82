package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-contracts/internal/api/metrics"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// ContractHandler handles HTTP requests addressed to a single contract.
type ContractHandler struct {
	contracts ports.ContractService
}

func NewContractHandler(contracts ports.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

// Create handles POST /v1/contracts.
//
// @Summary      Create a contract for an active client
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Replays the first result for a repeated key"
// @Param        body             body      createContractRequest  true   "Contract details"
// @Success      201              {object}  contractResponse
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/contracts [post]
func (h *ContractHandler) Create(c echo.Context) error {
	var req createContractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in, err := toCreateContractInput(req, c.Request().Header.Get(headerIdempotencyKey))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "dates must be formatted as 2006-01-02")
	}

	result, err := h.contracts.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		metrics.IdempotentReplaysTotal.WithLabelValues("contract").Inc()
		c.Response().Header().Set(headerReplayed, "true")
	} else {
		metrics.ContractsCreatedTotal.Inc()
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/contracts/"+result.Contract.ID)
	return c.JSON(http.StatusCreated, toContractResponse(result.Contract))
}

// Get handles GET /v1/contracts/:id.
//
// @Summary      Get a contract
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract id"
// @Success      200  {object}  contractResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/contracts/{id} [get]
func (h *ContractHandler) Get(c echo.Context) error {
	contract, err := h.contracts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContractResponse(contract))
}

// Update handles PUT /v1/contracts/:id.
//
// @Summary      Update the cost of a contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Contract id"
// @Param        body  body      updateContractRequest  true  "New cost amount"
// @Success      200   {object}  contractResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/contracts/{id} [put]
func (h *ContractHandler) Update(c echo.Context) error {
	var req updateContractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	contract, err := h.contracts.Update(c.Request().Context(), ports.UpdateContractInput{
		ID:         c.Param("id"),
		CostAmount: req.CostAmount,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContractResponse(contract))
}
