package service

import (
	"fmt"
	"math"

	"github.com/rxkart/pharmacy-backend/internal/errors"
	"github.com/rxkart/pharmacy-backend/internal/models"
)

const earthRadiusKm = 6371.0

// MaxDeliveryDistanceKm is the outer bound of the last fee tier; anything
// beyond it is not deliverable.
const MaxDeliveryDistanceKm = 20.0

// feeTier maps an inclusive upper distance bound to a flat fee. Tiers are
// evaluated in ascending order and a boundary hit belongs to the cheaper
// tier.
type feeTier struct {
	maxKm float64
	fee   float64
}

var feeTiers = []feeTier{
	{maxKm: 0.5, fee: 0},
	{maxKm: 3, fee: 20},
	{maxKm: 7, fee: 40},
	{maxKm: 15, fee: 70},
	{maxKm: 20, fee: 100},
}

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKm(a, b models.Coordinate) float64 {

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// ComputeDeliveryFee is the pure tier lookup: deterministic, no side
// effects.
func ComputeDeliveryFee(store, customer models.Coordinate) models.DeliveryQuote {

	distance := HaversineKm(store, customer)

	if distance > MaxDeliveryDistanceKm {
		return models.DeliveryQuote{
			DistanceKm:  distance,
			Deliverable: false,
			Message:     fmt.Sprintf("Sorry, we do not deliver beyond %.0f km", MaxDeliveryDistanceKm),
		}
	}

	for _, tier := range feeTiers {
		if distance <= tier.maxKm {

			message := fmt.Sprintf("Delivery charge: ₹%.0f", tier.fee)
			if tier.fee == 0 {
				message = "Free delivery"
			}

			return models.DeliveryQuote{
				DistanceKm:  distance,
				Fee:         tier.fee,
				Message:     message,
				Deliverable: true,
			}
		}
	}

	// Unreachable: the last tier bound equals MaxDeliveryDistanceKm.
	return models.DeliveryQuote{DistanceKm: distance, Deliverable: false}
}

// DeliveryService quotes fees against the fixed store location.
type DeliveryService struct {
	store models.Coordinate
}

func NewDeliveryService(storeLat, storeLng float64) *DeliveryService {
	return &DeliveryService{store: models.Coordinate{Lat: storeLat, Lng: storeLng}}
}

// Quote computes a fee for the given customer coordinates. A missing
// coordinate means the fee is unknown, never silently zero.
func (s *DeliveryService) Quote(lat, lng *float64) (*models.DeliveryQuote, error) {

	if lat == nil || lng == nil {
		return nil, errors.BadRequestError("Delivery location is required to compute the delivery charge")
	}

	quote := ComputeDeliveryFee(s.store, models.Coordinate{Lat: *lat, Lng: *lng})

	return &quote, nil
}

// DeliverySlots is the static slot list the storefront offers at checkout.
func (s *DeliveryService) DeliverySlots() []string {
	return []string{
		"9 AM - 12 PM",
		"12 PM - 3 PM",
		"3 PM - 6 PM",
		"6 PM - 9 PM",
	}
}
