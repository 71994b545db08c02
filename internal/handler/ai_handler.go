package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wheeldeal/wheeldeal-backend/internal/ai"
	"github.com/wheeldeal/wheeldeal-backend/internal/reqctx"
	"github.com/wheeldeal/wheeldeal-backend/internal/service"
)

type AIHandler struct {
	client     *ai.SuggestClient
	vehicleSvc service.VehicleService
	convSvc    service.ConversationService
	offerSvc   service.OfferService
}

func NewAIHandler(client *ai.SuggestClient, vehicleSvc service.VehicleService, convSvc service.ConversationService, offerSvc service.OfferService) *AIHandler {
	return &AIHandler{client: client, vehicleSvc: vehicleSvc, convSvc: convSvc, offerSvc: offerSvc}
}

type SuggestPriceResponse struct {
	SuggestedPrice int64 `json:"suggestedPrice"`
}

// SuggestPrice asks the model for a fair asking price for a listing.
// Only the listing's seller may call it.
func (h *AIHandler) SuggestPrice(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	vehicleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid vehicle id"))
	}
	v, err := h.vehicleSvc.Get(c.Request().Context(), vehicleID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "vehicle not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to load vehicle"))
	}
	if v.SellerUID != uid {
		return c.JSON(http.StatusForbidden, NewErrorResponse(codeForbidden, "only the seller may request a price suggestion"))
	}

	ctx := reqctx.WithRID(c.Request().Context(), uuid.NewString())
	ctx = reqctx.WithVehicleID(ctx, vehicleID)
	price, err := h.client.SuggestPrice(ctx, v)
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse(codeUpstreamError, "price suggestion unavailable"))
	}
	return c.JSON(http.StatusOK, SuggestPriceResponse{SuggestedPrice: price})
}

// SuggestReply drafts a negotiation response for the seller over the thread
// history and the latest offer.
func (h *AIHandler) SuggestReply(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	cv, err := h.convSvc.Get(c.Request().Context(), convID, uid)
	if err != nil {
		return convError(c, err, "failed to fetch conversation")
	}
	if cv.SellerUID != uid {
		return c.JSON(http.StatusForbidden, NewErrorResponse(codeForbidden, "only the seller may request a reply suggestion"))
	}
	latest, err := h.offerSvc.LatestView(c.Request().Context(), convID, uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "no offer to respond to"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to load offer"))
	}

	msgs, err := h.convSvc.ListMessages(c.Request().Context(), convID, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to load messages"))
	}
	history := make([]ai.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		sender := "seller"
		if m.SenderUID == cv.BuyerUID {
			sender = "buyer"
		}
		history = append(history, ai.HistoryEntry{Sender: sender, Text: m.Body})
	}

	listingPrice := int64(0)
	if v, err := h.vehicleSvc.Get(c.Request().Context(), cv.VehicleID); err == nil {
		listingPrice = v.Price
	}

	ctx := reqctx.WithRID(c.Request().Context(), uuid.NewString())
	sug, err := h.client.SuggestReply(ctx, listingPrice, latest.Offer.Price, history)
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse(codeUpstreamError, "reply suggestion unavailable"))
	}
	return c.JSON(http.StatusOK, sug)
}
