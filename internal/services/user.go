package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	repository "github.com/rxkart/pharmacy-backend/internal/repositories"
)

// UserService maintains the contact records order notifications are
// addressed to. Identity comes from the auth provider's JWT; this store only
// keeps what the token cannot carry.
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// UpdateContact saves the caller's contact details, creating the record on
// first write.
func (s *UserService) UpdateContact(ctx context.Context, userID uuid.UUID, req *models.UpdateContactRequest) (*models.User, error) {

	user := &models.User{
		ID:    userID,
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
	}

	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return nil, errors.DatabaseError("Failed to save contact details").WithError(err)
	}

	return user, nil
}

func (s *UserService) GetContact(ctx context.Context, userID uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("No contact details on record").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to retrieve contact details").WithError(err)
	}

	return user, nil
}
