package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// ProposalHandler handles bids: engineers submit, negotiate and withdraw;
// the project owner accepts or rejects.
type ProposalHandler struct {
	service ports.ProposalService
}

func NewProposalHandler(service ports.ProposalService) *ProposalHandler {
	return &ProposalHandler{service: service}
}

// Submit handles POST /v1/projects/:id/proposals. A second submission by the
// same engineer overwrites the first and resets it to sent.
//
// @Summary      Submit or update a proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Project ID"
// @Param        body  body      submitProposalRequest  true  "Bid"
// @Success      201   {object}  proposalResponse
// @Success      200   {object}  proposalResponse  "Existing proposal updated"
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/projects/{id}/proposals [post]
func (h *ProposalHandler) Submit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req submitProposalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.SubmitProposal(c.Request().Context(), ports.SubmitProposalInput{
		ProjectID:  c.Param("id"),
		EngineerID: actor.ID,
		BidAmount:  req.BidAmount,
		EtaDays:    req.EtaDays,
		Details:    req.Details,
	})
	if err != nil {
		return err
	}

	resp := proposalResponse{Proposal: result.Proposal, Updated: result.Updated}
	if result.Updated {
		metrics.ProposalsSubmittedTotal.WithLabelValues("updated").Inc()
		return c.JSON(http.StatusOK, resp)
	}
	metrics.ProposalsSubmittedTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, resp)
}

// Get handles GET /v1/proposals/:id.
//
// @Summary      Get a proposal
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  proposalResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/proposals/{id} [get]
func (h *ProposalHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	p, err := h.service.GetProposal(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, proposalResponse{Proposal: p})
}

// Mine handles GET /v1/proposals/mine.
//
// @Summary      Proposals sent by the current engineer
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[domain.Proposal]
// @Router       /v1/proposals/mine [get]
func (h *ProposalHandler) Mine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	proposals, err := h.service.ListMyProposals(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(proposals))
}

// Accept handles POST /v1/proposals/:id/accept.
//
// @Summary      Accept a proposal
// @Description  Moves the project to in_progress and rejects every other proposal of the project.
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  proposalResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/proposals/{id}/accept [post]
func (h *ProposalHandler) Accept(c echo.Context) error {
	return h.transition(c, domain.ProposalAccepted, h.service.AcceptProposal)
}

// Reject handles POST /v1/proposals/:id/reject.
//
// @Summary      Reject a proposal
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  proposalResponse
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/proposals/{id}/reject [post]
func (h *ProposalHandler) Reject(c echo.Context) error {
	return h.transition(c, domain.ProposalRejected, h.service.RejectProposal)
}

// Negotiate handles POST /v1/proposals/:id/negotiate.
//
// @Summary      Move a proposal into negotiation
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  proposalResponse
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/proposals/{id}/negotiate [post]
func (h *ProposalHandler) Negotiate(c echo.Context) error {
	return h.transition(c, domain.ProposalNegotiating, h.service.NegotiateProposal)
}

// Withdraw handles POST /v1/proposals/:id/withdraw.
//
// @Summary      Withdraw a proposal
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  proposalResponse
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/proposals/{id}/withdraw [post]
func (h *ProposalHandler) Withdraw(c echo.Context) error {
	return h.transition(c, domain.ProposalWithdrawn, h.service.WithdrawProposal)
}

type proposalTransition func(ctx context.Context, actor ports.Actor, id string) (*domain.Proposal, error)

func (h *ProposalHandler) transition(c echo.Context, to domain.ProposalStatus, apply proposalTransition) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	p, err := apply(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		metrics.ProposalTransitionsTotal.WithLabelValues(string(to), "error").Inc()
		return err
	}
	metrics.ProposalTransitionsTotal.WithLabelValues(string(to), "ok").Inc()
	return c.JSON(http.StatusOK, proposalResponse{Proposal: p})
}
