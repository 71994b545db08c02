package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/negotiation"
	"github.com/wheeldeal/wheeldeal-backend/internal/service"
)

type OfferHandler struct {
	svc service.OfferService
}

func NewOfferHandler(svc service.OfferService) *OfferHandler {
	return &OfferHandler{svc: svc}
}

type CreateOfferRequest struct {
	Price int64 `json:"price"`
}

type RespondOfferRequest struct {
	Action       string `json:"action"`
	CounterPrice int64  `json:"counterPrice"`
}

type OfferResponse struct {
	ID             uint64  `json:"id"`
	ConversationID uint64  `json:"conversationId"`
	MessageID      uint64  `json:"messageId"`
	SenderUID      string  `json:"senderUid"`
	Price          int64   `json:"price"`
	CounterPrice   *int64  `json:"counterPrice,omitempty"`
	SupersedesID   *uint64 `json:"supersedesId,omitempty"`
	Status         string  `json:"status"`
	DealCode       string  `json:"dealCode,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

func toOfferResponse(o *model.Offer) OfferResponse {
	return OfferResponse{
		ID:             o.ID,
		ConversationID: o.ConversationID,
		MessageID:      o.MessageID,
		SenderUID:      o.SenderUID,
		Price:          o.Price,
		CounterPrice:   o.CounterPrice,
		SupersedesID:   o.SupersedesID,
		Status:         string(o.Status),
		DealCode:       o.DealCode,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
}

func offerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "offer not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse(codeForbidden, "not allowed to act on this offer"))
	case errors.Is(err, service.ErrOfferResolved):
		return c.JSON(http.StatusConflict, NewErrorResponse(codeConflict, "this offer was already resolved"))
	case errors.Is(err, service.ErrOfferPending):
		return c.JSON(http.StatusConflict, NewErrorResponse(codeConflict, "a pending offer already exists"))
	case errors.Is(err, negotiation.ErrInvalidPrice),
		errors.Is(err, negotiation.ErrCounterUnchanged),
		errors.Is(err, negotiation.ErrUnknownAction):
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, err.Error()))
	}
	return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to process offer"))
}

func (h *OfferHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	var req CreateOfferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid json"))
	}
	off, err := h.svc.Create(c.Request().Context(), convID, uid, req.Price)
	if err != nil {
		return offerError(c, err)
	}
	return c.JSON(http.StatusCreated, toOfferResponse(off))
}

// Latest returns the newest offer in the thread together with the caller's
// view: labels plus the actions this caller may take.
func (h *OfferHandler) Latest(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	view, err := h.svc.LatestView(c.Request().Context(), convID, uid)
	if err != nil {
		return offerError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"offer": toOfferResponse(&view.Offer),
		"view":  view.View,
	})
}

func (h *OfferHandler) Respond(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	offerID, err := strconv.ParseUint(c.Param("offerId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid offer id"))
	}
	var req RespondOfferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid json"))
	}
	action, err := negotiation.ParseAction(req.Action)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "action must be accept, reject, or counter"))
	}
	off, err := h.svc.Respond(c.Request().Context(), convID, offerID, uid, action, req.CounterPrice)
	if err != nil {
		return offerError(c, err)
	}
	return c.JSON(http.StatusOK, toOfferResponse(off))
}
