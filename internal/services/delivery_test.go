package service_test

import (
	"math"
	"testing"

	appErrors "github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
	service "github.com/rxkart/pharmacy-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStore = models.Coordinate{Lat: 12.9716, Lng: 77.5946}

// coordinateAtKm returns a point the given distance due north of the store.
// A pure latitude offset makes the haversine distance equal the offset.
func coordinateAtKm(km float64) models.Coordinate {
	degPerKm := 180 / (math.Pi * 6371)

	return models.Coordinate{Lat: testStore.Lat + km*degPerKm, Lng: testStore.Lng}
}

func TestHaversineKm(t *testing.T) {
	t.Run("Zero distance for identical points", func(t *testing.T) {
		assert.Zero(t, service.HaversineKm(testStore, testStore))
	})

	t.Run("One degree of longitude at the equator", func(t *testing.T) {
		a := models.Coordinate{Lat: 0, Lng: 0}
		b := models.Coordinate{Lat: 0, Lng: 1}

		assert.InDelta(t, 111.19, service.HaversineKm(a, b), 0.05)
	})

	t.Run("Symmetric", func(t *testing.T) {
		customer := coordinateAtKm(4.2)

		assert.InDelta(t,
			service.HaversineKm(testStore, customer),
			service.HaversineKm(customer, testStore),
			1e-9)
	})
}

func TestComputeDeliveryFee(t *testing.T) {
	tests := []struct {
		name        string
		distanceKm  float64
		wantFee     float64
		deliverable bool
	}{
		{"At the store", 0, 0, true},
		{"Inside free radius", 0.4, 0, true},
		{"Just inside free boundary", 0.4999, 0, true},
		{"Just past free boundary", 0.5001, 20, true},
		{"Middle of first paid tier", 2, 20, true},
		{"Just inside 3km boundary", 2.9999, 20, true},
		{"Just past 3km boundary", 3.0001, 40, true},
		{"Middle of 7km tier", 5, 40, true},
		{"Just past 7km boundary", 7.0001, 70, true},
		{"Middle of 15km tier", 12, 70, true},
		{"Just past 15km boundary", 15.0001, 100, true},
		{"Just inside outer boundary", 19.9999, 100, true},
		{"Past the outer boundary", 20.5, 0, false},
		{"Far outside range", 45, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := service.ComputeDeliveryFee(testStore, coordinateAtKm(tt.distanceKm))

			assert.Equal(t, tt.deliverable, quote.Deliverable)
			assert.InDelta(t, tt.distanceKm, quote.DistanceKm, 0.001)

			if tt.deliverable {
				assert.Equal(t, tt.wantFee, quote.Fee)
			}
		})
	}

	t.Run("Free delivery message", func(t *testing.T) {
		quote := service.ComputeDeliveryFee(testStore, coordinateAtKm(0.3))

		assert.Equal(t, "Free delivery", quote.Message)
	})

	t.Run("Charge message carries the fee", func(t *testing.T) {
		quote := service.ComputeDeliveryFee(testStore, coordinateAtKm(5))

		assert.Contains(t, quote.Message, "40")
	})

	t.Run("Out of range message names the limit", func(t *testing.T) {
		quote := service.ComputeDeliveryFee(testStore, coordinateAtKm(25))

		assert.Contains(t, quote.Message, "20 km")
		assert.Zero(t, quote.Fee)
	})
}

func TestDeliveryService_Quote(t *testing.T) {
	deliveryService := service.NewDeliveryService(testStore.Lat, testStore.Lng)

	t.Run("Missing coordinates", func(t *testing.T) {
		// Act
		quote, err := deliveryService.Quote(nil, nil)

		// Assert
		require.Error(t, err)
		assert.Nil(t, quote)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
	})

	t.Run("Missing longitude only", func(t *testing.T) {
		lat := testStore.Lat

		quote, err := deliveryService.Quote(&lat, nil)

		require.Error(t, err)
		assert.Nil(t, quote)
	})

	t.Run("Deliverable address", func(t *testing.T) {
		customer := coordinateAtKm(2)

		quote, err := deliveryService.Quote(&customer.Lat, &customer.Lng)

		require.NoError(t, err)
		require.NotNil(t, quote)
		assert.True(t, quote.Deliverable)
		assert.Equal(t, 20.0, quote.Fee)
	})
}

func TestDeliveryService_DeliverySlots(t *testing.T) {
	deliveryService := service.NewDeliveryService(testStore.Lat, testStore.Lng)

	slots := deliveryService.DeliverySlots()

	require.NotEmpty(t, slots)
	assert.Equal(t, "9 AM - 12 PM", slots[0])
}
