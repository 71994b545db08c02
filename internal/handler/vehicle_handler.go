package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wheeldeal/wheeldeal-backend/internal/currency"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/service"
	"github.com/wheeldeal/wheeldeal-backend/internal/storage"
)

const maxPhotoBytes = 8 << 20

type VehicleHandler struct {
	svc    service.VehicleService
	photos *storage.PhotoStore
}

func NewVehicleHandler(svc service.VehicleService, photos *storage.PhotoStore) *VehicleHandler {
	return &VehicleHandler{svc: svc, photos: photos}
}

type VehicleResponse struct {
	ID           uint64  `json:"id"`
	SellerUID    string  `json:"sellerUid"`
	Title        string  `json:"title"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	MileageKM    int     `json:"mileageKm"`
	FuelType     string  `json:"fuelType,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	City         string  `json:"city,omitempty"`
	Price        int64   `json:"price"`
	PriceLabel   string  `json:"priceLabel"`
	Description  string  `json:"description"`
	PhotoURL     *string `json:"photoUrl,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type VehicleListResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
	Total    int64             `json:"total"`
}

type CreateVehicleRequest struct {
	Title        string  `json:"title"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	MileageKM    int     `json:"mileageKm"`
	FuelType     string  `json:"fuelType"`
	Transmission string  `json:"transmission"`
	City         string  `json:"city"`
	Price        int64   `json:"price"`
	Description  string  `json:"description"`
	PhotoURL     *string `json:"photoUrl"`
}

func toVehicleResponse(v *model.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           v.ID,
		SellerUID:    v.SellerUID,
		Title:        v.Title,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		MileageKM:    v.MileageKM,
		FuelType:     v.FuelType,
		Transmission: v.Transmission,
		City:         v.City,
		Price:        v.Price,
		PriceLabel:   currency.FormatINR(v.Price),
		Description:  v.Description,
		PhotoURL:     v.PhotoURL,
		Status:       string(v.Status),
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *VehicleHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	var req CreateVehicleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid json"))
	}
	v, err := h.svc.Create(c.Request().Context(), uid, service.VehicleInput{
		Title:        req.Title,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		MileageKM:    req.MileageKM,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		City:         req.City,
		Price:        req.Price,
		Description:  req.Description,
		PhotoURL:     req.PhotoURL,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, err.Error()))
	}
	return c.JSON(http.StatusCreated, toVehicleResponse(v))
}

func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid id"))
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "vehicle not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to fetch vehicle"))
	}
	return c.JSON(http.StatusOK, toVehicleResponse(v))
}

func (h *VehicleHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	city := c.QueryParam("city")
	list, total, err := h.svc.List(c.Request().Context(), limit, offset, city)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to fetch vehicles"))
	}
	resp := VehicleListResponse{
		Vehicles: make([]VehicleResponse, 0, len(list)),
		Total:    total,
	}
	for i := range list {
		resp.Vehicles = append(resp.Vehicles, toVehicleResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	list, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to fetch vehicles"))
	}
	resp := make([]VehicleResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toVehicleResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *VehicleHandler) UploadPhoto(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse(codeUnauthorized, "missing uid"))
	}
	if h.photos == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse(codeInternalError, "photo storage is not configured"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "invalid id"))
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "photo file is required"))
	}
	if fh.Size > maxPhotoBytes {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "photo too large"))
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(codeBadRequest, "cannot read photo"))
	}
	defer src.Close()

	url, err := h.photos.UploadVehiclePhoto(c.Request().Context(), id, fh.Header.Get("Content-Type"), src)
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse(codeUpstreamError, "upload failed"))
	}
	if err := h.svc.AttachPhoto(c.Request().Context(), id, uid, url); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse(codeNotFound, "vehicle not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse(codeForbidden, "not the seller"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse(codeInternalError, "failed to attach photo"))
	}
	return c.JSON(http.StatusOK, map[string]string{"photoUrl": url})
}
