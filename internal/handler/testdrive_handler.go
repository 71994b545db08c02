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

type TestDriveHandler struct {
	svc service.TestDriveService
}

func NewTestDriveHandler(svc service.TestDriveService) *TestDriveHandler {
	return &TestDriveHandler{svc: svc}
}

type RequestTestDriveRequest struct {
	ProposedAt string `json:"proposedAt"` // RFC3339
}

type RespondTestDriveRequest struct {
	Action string `json:"action"` // confirm | decline
}

type TestDriveResponse struct {
	ID             uint64 `json:"id"`
	ConversationID uint64 `json:"conversationId"`
	MessageID      uint64 `json:"messageId"`
	SenderUID      string `json:"senderUid"`
	ProposedAt     string `json:"proposedAt"`
	Status         string `json:"status"`
}

func toTestDriveResponse(td *model.TestDriveRequest) TestDriveResponse {
	return TestDriveResponse{
		ID:             td.ID,
		ConversationID: td.ConversationID,
		MessageID:      td.MessageID,
		SenderUID:      td.SenderUID,
		ProposedAt:     td.ProposedAt.Format(time.RFC3339),
		Status:         string(td.Status),
	}
}

func (h *TestDriveHandler) Request(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	var req RequestTestDriveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid json"))
	}
	proposedAt, err := time.Parse(time.RFC3339, req.ProposedAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "proposedAt must be RFC3339"))
	}
	td, err := h.svc.Request(c.Request().Context(), convID, uid, proposedAt)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "conversation not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse(codeForbidden, "only the buyer may request a test drive"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, err.Error()))
	}
	return c.JSON(http.StatusCreated, toTestDriveResponse(td))
}

func (h *TestDriveHandler) Respond(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid conversation id"))
	}
	tdID, err := strconv.ParseUint(c.Param("tdId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid test drive id"))
	}
	var req RespondTestDriveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid json"))
	}
	var confirm bool
	switch req.Action {
	case "confirm":
		confirm = true
	case "decline":
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "action must be confirm or decline"))
	}
	td, err := h.svc.Respond(c.Request().Context(), convID, tdID, uid, confirm)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "test drive request not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse(codeForbidden, "only the seller may respond"))
		}
		if errors.Is(err, service.ErrTestDriveResolved) {
			return c.JSON(http.StatusConflict, NewErrorResponse(codeConflict, "this request was already answered"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to respond"))
	}
	return c.JSON(http.StatusOK, toTestDriveResponse(td))
}
