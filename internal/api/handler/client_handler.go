package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-contracts/internal/api/metrics"
	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/ports"
)

// ClientHandler handles HTTP requests for clients and their contract views.
type ClientHandler struct {
	clients   ports.ClientService
	lifecycle ports.LifecycleService
	contracts ports.ContractService
	now       func() time.Time
}

func NewClientHandler(clients ports.ClientService, lifecycle ports.LifecycleService, contracts ports.ContractService) *ClientHandler {
	return &ClientHandler{clients: clients, lifecycle: lifecycle, contracts: contracts, now: time.Now}
}

// CreatePerson handles POST /v1/clients/person.
//
// @Summary      Create a person client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Replays the first result for a repeated key"
// @Param        body             body      createPersonRequest  true   "Person details"
// @Success      201              {object}  clientResponse
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /v1/clients/person [post]
func (h *ClientHandler) CreatePerson(c echo.Context) error {
	var req createPersonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in, err := toCreatePersonInput(req, c.Request().Header.Get(headerIdempotencyKey))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "birthdate must be a date formatted as 2006-01-02")
	}

	result, err := h.clients.CreatePerson(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return h.created(c, result)
}

// CreateCompany handles POST /v1/clients/company.
//
// @Summary      Create a company client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Replays the first result for a repeated key"
// @Param        body             body      createCompanyRequest  true   "Company details"
// @Success      201              {object}  clientResponse
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /v1/clients/company [post]
func (h *ClientHandler) CreateCompany(c echo.Context) error {
	var req createCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.clients.CreateCompany(c.Request().Context(), toCreateCompanyInput(req, c.Request().Header.Get(headerIdempotencyKey)))
	if err != nil {
		return err
	}
	return h.created(c, result)
}

func (h *ClientHandler) created(c echo.Context, result *ports.ClientResult) error {
	if result.AlreadyExisted {
		metrics.IdempotentReplaysTotal.WithLabelValues("client").Inc()
		c.Response().Header().Set(headerReplayed, "true")
	} else {
		metrics.ClientsCreatedTotal.WithLabelValues(string(result.Client.Variant)).Inc()
	}
	c.Response().Header().Set(echo.HeaderLocation, clientLocation(result.Client.ID))
	return c.JSON(http.StatusCreated, toClientResponse(result.Client))
}

// Get handles GET /v1/clients/:id.
//
// @Summary      Get an active client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  clientResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if err := authorizeClient(c, id); err != nil {
		return err
	}

	client, err := h.clients.ReadActive(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Update handles PUT /v1/clients/:id.
//
// @Summary      Update contact info of an active client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client id"
// @Param        body  body      updateClientRequest  true  "Contact info"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if err := authorizeClient(c, id); err != nil {
		return err
	}

	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.clients.UpdateContactInfo(c.Request().Context(), toUpdateContactInput(id, req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Delete handles DELETE /v1/clients/:id.
//
// @Summary      Delete a client and close its active contracts
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      204
// @Header       204  {integer}  X-Contracts-Closed  "Number of contracts closed"
// @Failure      404  {object}  errorResponse
// @Router       /v1/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	closed, err := h.lifecycle.DeleteClient(c.Request().Context(), id)
	if err != nil {
		return err
	}

	metrics.ClientsDeletedTotal.Inc()
	metrics.ContractsClosedTotal.Add(float64(closed))
	c.Response().Header().Set(headerContractsClosed, strconv.FormatInt(closed, 10))
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/clients.
//
// @Summary      List active clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "0-based page"
// @Param        size  query     int  false  "Page size (max 200)"
// @Success      200   {array}   clientResponse
// @Success      206   {array}   clientResponse
// @Failure      400   {object}  errorResponse
// @Header       200,206  {integer}  X-Total-Count  "Number of active clients"
// @Router       /v1/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return err
	}

	result, err := h.clients.ListActive(c.Request().Context(), ports.ListClientsInput{Page: page, Size: size})
	if err != nil {
		return err
	}
	return writePage(c, "clients", toClientResponses(result.Items), len(result.Items), result.Page, result.Size, result.Total)
}

// ListContracts handles GET /v1/clients/:id/contracts.
//
// @Summary      List every contract of an active client
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Client id"
// @Param        page  query     int     false  "0-based page"
// @Param        size  query     int     false  "Page size (max 200)"
// @Success      200   {array}   contractResponse
// @Success      206   {array}   contractResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/clients/{id}/contracts [get]
func (h *ClientHandler) ListContracts(c echo.Context) error {
	id, err := h.activeClient(c)
	if err != nil {
		return err
	}
	page, size, err := pageParams(c)
	if err != nil {
		return err
	}

	result, err := h.contracts.ListForClient(c.Request().Context(), id, ports.ListContractsInput{Page: page, Size: size})
	if err != nil {
		return err
	}
	return writePage(c, "contracts", toContractResponses(result.Items), len(result.Items), result.Page, result.Size, result.Total)
}

// ListActiveContracts handles GET /v1/clients/:id/contracts/active.
//
// @Summary      List active contracts of a client
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true   "Client id"
// @Param        updatedSince  query     string  false  "Only contracts updated at or after this instant"
// @Success      200           {array}   contractResponse
// @Failure      400           {object}  errorResponse
// @Failure      404           {object}  errorResponse
// @Router       /v1/clients/{id}/contracts/active [get]
func (h *ClientHandler) ListActiveContracts(c echo.Context) error {
	id, err := h.activeClient(c)
	if err != nil {
		return err
	}
	since, hasSince, err := queryInstant(c, "updatedSince")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var items []*domain.Contract
	if hasSince {
		items, err = h.contracts.ListActiveForClientSince(ctx, id, since, time.Time{})
	} else {
		items, err = h.contracts.ListActiveForClient(ctx, id, time.Time{})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContractResponses(items))
}

// SumActiveCost handles GET /v1/clients/:id/contracts/active/sum.
//
// @Summary      Sum the cost of a client's active contracts
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Client id"
// @Param        asOf  query     string  false  "Reference date (defaults to today)"
// @Success      200   {object}  activeCostSumResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/clients/{id}/contracts/active/sum [get]
func (h *ClientHandler) SumActiveCost(c echo.Context) error {
	id, err := h.activeClient(c)
	if err != nil {
		return err
	}
	asOf, err := queryDate(c, "asOf")
	if err != nil {
		return err
	}
	if asOf.IsZero() {
		asOf = domain.DateOf(h.now().UTC())
	}

	start := time.Now()
	total, err := h.contracts.SumActiveCost(c.Request().Context(), id, asOf)
	metrics.ActiveCostSumDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActiveCostSumResponse(id, asOf, total))
}

// History handles GET /v1/clients/:id/history.
//
// @Summary      Audit trail of a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Client id"
// @Param        limit  query     int     false  "Maximum number of events (default 50)"
// @Success      200    {array}   historyEventResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/clients/{id}/history [get]
func (h *ClientHandler) History(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	events, err := h.clients.History(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toHistoryResponses(events))
}

// activeClient authorizes the caller for the path client and checks the
// client is active. Contracts of a deleted client are not listed here.
func (h *ClientHandler) activeClient(c echo.Context) (string, error) {
	id := c.Param("id")
	if err := authorizeClient(c, id); err != nil {
		return "", err
	}
	if _, err := h.clients.ReadActive(c.Request().Context(), id); err != nil {
		return "", err
	}
	return id, nil
}
