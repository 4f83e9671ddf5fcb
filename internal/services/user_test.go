package service_test

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	appErrors "github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	"github.com/rxkart/pharmacy-backend/internal/repositories/mocks"
	service "github.com/rxkart/pharmacy-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUserServiceTest(t *testing.T) (*service.UserService, *mocks.UserRepository) {
	t.Helper()

	mockUserRepo := mocks.NewUserRepository()

	return service.NewUserService(mockUserRepo), mockUserRepo
}

func TestUpdateContact_PersistsRecord(t *testing.T) {
	// Arrange
	userService, mockUserRepo := setupUserServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()

	mockUserRepo.On("UpsertUser", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == userID && u.Email == "asha@example.com" &&
			u.Name == "Asha" && u.Phone == "+919800000000"
	})).Return(nil).Once()

	req := &models.UpdateContactRequest{
		Email: "asha@example.com",
		Name:  "Asha",
		Phone: "+919800000000",
	}

	// Act
	user, err := userService.UpdateContact(ctx, userID, req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "asha@example.com", user.Email)

	mockUserRepo.AssertExpectations(t)
}

func TestUpdateContact_DatabaseError(t *testing.T) {
	// Arrange
	userService, mockUserRepo := setupUserServiceTest(t)
	ctx := t.Context()

	mockUserRepo.On("UpsertUser", ctx, mock.Anything).Return(sql.ErrConnDone).Once()

	req := &models.UpdateContactRequest{Email: "asha@example.com", Name: "Asha"}

	// Act
	user, err := userService.UpdateContact(ctx, uuid.New(), req)

	// Assert
	require.Error(t, err)
	assert.Nil(t, user)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
}

func TestGetContact_NoRecord(t *testing.T) {
	// Arrange
	userService, mockUserRepo := setupUserServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()

	mockUserRepo.On("GetUserByID", ctx, userID).Return(nil, sql.ErrNoRows).Once()

	// Act
	user, err := userService.GetContact(ctx, userID)

	// Assert
	require.Error(t, err)
	assert.Nil(t, user)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
}

func TestGetContact_ReturnsRecord(t *testing.T) {
	// Arrange
	userService, mockUserRepo := setupUserServiceTest(t)
	ctx := t.Context()
	userID := uuid.New()

	stored := &models.User{ID: userID, Email: "asha@example.com", Name: "Asha"}
	mockUserRepo.On("GetUserByID", ctx, userID).Return(stored, nil).Once()

	// Act
	user, err := userService.GetContact(ctx, userID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
}
