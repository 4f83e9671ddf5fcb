package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rxkart/pharmacy-backend/internal/api/middleware"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	service "github.com/rxkart/pharmacy-backend/internal/services"
	"github.com/rxkart/pharmacy-backend/internal/utils"
	"github.com/rxkart/pharmacy-backend/internal/utils/response"
)

type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New()}
}

// UpdateContact godoc
//	@Summary		Save the caller's contact details
//	@Description	Saves the email, name and phone order confirmations are sent to, creating the record on first write.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			contact	body		models.UpdateContactRequest	true	"Contact details"
//	@Success		200		{object}	models.User					"Contact details saved"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Security		BearerAuth
//	@Router			/users/me [put]
func (h *UserHandler) UpdateContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized contact update attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.UpdateContactRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid contact details input")
			return
		}

		user, err := h.userService.UpdateContact(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to save contact details", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Contact details saved", slog.String("userId", user.ID.String()))
		response.Success(w, http.StatusOK, user)
	}
}

// GetContact godoc
//	@Summary		Get the caller's contact details
//	@Description	Returns the contact record order confirmations are sent to.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	models.User				"Contact details"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"No contact details on record"
//	@Security		BearerAuth
//	@Router			/users/me [get]
func (h *UserHandler) GetContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized contact read attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		user, err := h.userService.GetContact(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to get contact details", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}
