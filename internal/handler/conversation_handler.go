package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/service"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type ConversationResponse struct {
	ConversationID uint64  `json:"conversationId"`
	VehicleID      uint64  `json:"vehicleId"`
	SellerUID      string  `json:"sellerUid"`
	BuyerUID       string  `json:"buyerUid"`
	Flagged        bool    `json:"flagged,omitempty"`
	FlagReason     *string `json:"flagReason,omitempty"`
	LastMessageAt  *string `json:"lastMessageAt,omitempty"`
	HasUnread      bool    `json:"hasUnread,omitempty"`
}

type MessageResponse struct {
	ID             uint64 `json:"id"`
	ConversationID uint64 `json:"conversationId"`
	SenderUID      string `json:"senderUid"`
	Kind           string `json:"kind"`
	Body           string `json:"body"`
	CreatedAt      string `json:"createdAt"`
}

type PostMessageRequest struct {
	Body string `json:"body"`
}

type FlagRequest struct {
	Reason string `json:"reason"`
}

func toConversationResponse(cv *model.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ConversationID: cv.ID,
		VehicleID:      cv.VehicleID,
		SellerUID:      cv.SellerUID,
		BuyerUID:       cv.BuyerUID,
		Flagged:        cv.Flagged,
		FlagReason:     cv.FlagReason,
	}
	if cv.LastMessageAt != nil {
		s := cv.LastMessageAt.Format(time.RFC3339)
		resp.LastMessageAt = &s
	}
	return resp
}

func toMessageResponse(m model.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderUID:      m.SenderUID,
		Kind:           string(m.Kind),
		Body:           m.Body,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}

func convError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, service.ErrNotFound) {
		return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "conversation not found"))
	}
	if errors.Is(err, service.ErrForbidden) {
		return c.JSON(http.StatusForbidden, NewErrorResponse(codeForbidden, "not a participant"))
	}
	return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, fallback))
}

func (h *ConversationHandler) CreateFromVehicle(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	vehicleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid vehicle id"))
	}
	cv, err := h.svc.CreateOrGet(c.Request().Context(), vehicleID, uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "vehicle not found"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, err.Error()))
	}
	return c.JSON(http.StatusOK, toConversationResponse(cv))
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convs, err := h.svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to fetch conversations"))
	}
	resp := make([]ConversationResponse, 0, len(convs))
	for i := range convs {
		r := toConversationResponse(&convs[i].Conversation)
		r.HasUnread = convs[i].HasUnread
		resp = append(resp, r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	cv, err := h.svc.Get(c.Request().Context(), convID, uid)
	if err != nil {
		return convError(c, err, "failed to fetch conversation")
	}
	return c.JSON(http.StatusOK, toConversationResponse(cv))
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), convID, uid)
	if err != nil {
		return convError(c, err, "failed to fetch messages")
	}
	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) PostMessage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid json"))
	}
	msg, err := h.svc.PostMessage(c.Request().Context(), convID, uid, req.Body)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrForbidden) {
			return convError(c, err, "")
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, err.Error()))
	}
	return c.JSON(http.StatusCreated, toMessageResponse(*msg))
}

func (h *ConversationHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	if err := h.svc.MarkRead(c.Request().Context(), convID, uid); err != nil {
		return convError(c, err, "failed to mark read")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ConversationHandler) Flag(c echo.Context) error {
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	var req FlagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid json"))
	}
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "reason is required"))
	}
	if err := h.svc.Flag(c.Request().Context(), convID, req.Reason); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "conversation not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to flag conversation"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
