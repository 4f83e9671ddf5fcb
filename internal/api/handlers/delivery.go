package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rxkart/pharmacy-backend/internal/api/middleware"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	service "github.com/rxkart/pharmacy-backend/internal/services"
	"github.com/rxkart/pharmacy-backend/internal/utils/response"
)

type DeliveryHandler struct {
	deliveryService *service.DeliveryService
}

func NewDeliveryHandler(deliveryService *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// QuoteFee godoc
//	@Summary		Quote the delivery fee for a location
//	@Description	Computes the distance-tiered delivery fee from the store to the given coordinates. The checkout recomputes this server-side; the quote is informational.
//	@Tags			Delivery
//	@Produce		json
//	@Param			lat	query		number					true	"Latitude"
//	@Param			lng	query		number					true	"Longitude"
//	@Success		200	{object}	models.DeliveryQuote	"Fee quote"
//	@Failure		400	{object}	response.ErrorResponse	"Missing or malformed coordinates"
//	@Router			/delivery/quote [get]
func (h *DeliveryHandler) QuoteFee() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		if err != nil {
			response.Error(w, errors.BadRequestError("lat must be a number"))
			return
		}

		lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if err != nil {
			response.Error(w, errors.BadRequestError("lng must be a number"))
			return
		}

		quote, err := h.deliveryService.Quote(&lat, &lng)
		if err != nil {
			logger.Error("Failed to quote delivery fee", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, quote)
	}
}

func (h *DeliveryHandler) ListSlots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, map[string]any{
			"slots": h.deliveryService.DeliverySlots(),
		})
	}
}
