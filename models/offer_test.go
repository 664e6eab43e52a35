package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseOffer() *Offer {
	return &Offer{
		ID:     "offer-1",
		Status: OfferStatusPending,
		Round:  1,
		Listing: ListingSummary{
			ID:    "listing-1",
			Title: "Road bike",
			Price: 100,
		},
		ExpiresAt: time.Now().Add(48 * time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestOffer_CanCounter(t *testing.T) {
	now := time.Now()

	t.Run("happy path - pending offer within rounds", func(t *testing.T) {
		offer := baseOffer()
		assert.NoError(t, offer.CanCounter(now))
	})

	t.Run("sad path - round limit reached", func(t *testing.T) {
		offer := baseOffer()
		offer.Status = OfferStatusCountered
		offer.Round = MaxCounterRounds
		assert.ErrorIs(t, offer.CanCounter(now), ErrRoundLimitReached)
	})

	t.Run("sad path - round limit applies regardless of status", func(t *testing.T) {
		offer := baseOffer()
		offer.Round = MaxCounterRounds
		assert.ErrorIs(t, offer.CanCounter(now), ErrRoundLimitReached)
	})

	t.Run("sad path - expired offer", func(t *testing.T) {
		offer := baseOffer()
		offer.ExpiresAt = now.Add(-time.Hour)
		assert.ErrorIs(t, offer.CanCounter(now), ErrOfferExpired)
	})

	t.Run("sad path - terminal status", func(t *testing.T) {
		offer := baseOffer()
		offer.Status = OfferStatusDeclined
		assert.ErrorIs(t, offer.CanCounter(now), ErrOfferNotActive)
	})
}

func TestOffer_ValidateAmount(t *testing.T) {
	offer := baseOffer() // 标价100，允许区间 [10, 100]

	t.Run("happy path - amount within bounds", func(t *testing.T) {
		assert.NoError(t, offer.ValidateAmount(10))
		assert.NoError(t, offer.ValidateAmount(55.5))
		assert.NoError(t, offer.ValidateAmount(100))
	})

	t.Run("sad path - below minimum", func(t *testing.T) {
		assert.ErrorIs(t, offer.ValidateAmount(9.99), ErrAmountOutOfRange)
	})

	t.Run("sad path - above listing price", func(t *testing.T) {
		assert.ErrorIs(t, offer.ValidateAmount(100.01), ErrAmountOutOfRange)
	})

	t.Run("sad path - zero or negative", func(t *testing.T) {
		assert.ErrorIs(t, offer.ValidateAmount(0), ErrAmountOutOfRange)
		assert.ErrorIs(t, offer.ValidateAmount(-5), ErrAmountOutOfRange)
	})
}

func TestOffer_TimeRemaining(t *testing.T) {
	now := time.Now()

	t.Run("more than a day", func(t *testing.T) {
		offer := baseOffer()
		offer.ExpiresAt = now.Add(25 * time.Hour)
		assert.Equal(t, "1d 1h", offer.TimeRemaining(now))
	})

	t.Run("less than a day", func(t *testing.T) {
		offer := baseOffer()
		offer.ExpiresAt = now.Add(5*time.Hour + 30*time.Minute)
		assert.Equal(t, "5h", offer.TimeRemaining(now))
	})

	t.Run("already expired", func(t *testing.T) {
		offer := baseOffer()
		offer.ExpiresAt = now.Add(-time.Minute)
		assert.Equal(t, "Expired", offer.TimeRemaining(now))
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		offer := baseOffer()
		offer.ExpiresAt = now
		assert.Equal(t, "Expired", offer.TimeRemaining(now))
	})
}

func TestOfferStatusBadge(t *testing.T) {
	t.Run("known statuses", func(t *testing.T) {
		assert.Equal(t, "Accepted", OfferStatusBadge(OfferStatusAccepted).Label)
		assert.Equal(t, "badge-declined", OfferStatusBadge(OfferStatusDeclined).Class)
	})

	t.Run("unknown status falls back to pending style", func(t *testing.T) {
		badge := OfferStatusBadge("something-new")
		assert.Equal(t, "Pending", badge.Label)
		assert.Equal(t, "badge-pending", badge.Class)
	})
}

func TestOffer_NegotiationState(t *testing.T) {
	now := time.Now()

	t.Run("expiry overlays stored status", func(t *testing.T) {
		offer := baseOffer()
		offer.Status = OfferStatusCountered
		offer.ExpiresAt = now.Add(-time.Hour)
		assert.Equal(t, StateExpired, offer.NegotiationState(now))
	})

	t.Run("countered at round limit is locked", func(t *testing.T) {
		offer := baseOffer()
		offer.Status = OfferStatusCountered
		offer.Round = MaxCounterRounds
		assert.Equal(t, StateCounterLocked, offer.NegotiationState(now))
	})

	t.Run("unknown status treated as pending", func(t *testing.T) {
		offer := baseOffer()
		offer.Status = "whatever"
		assert.Equal(t, StatePending, offer.NegotiationState(now))
	})
}

func TestOffer_Badge_ExpiredOverlay(t *testing.T) {
	now := time.Now()

	offer := baseOffer()
	offer.ExpiresAt = now.Add(-time.Hour)
	assert.Equal(t, "Expired", offer.Badge(now).Label)

	// 终态不受过期叠加影响
	offer.Status = OfferStatusAccepted
	assert.Equal(t, "Accepted", offer.Badge(now).Label)
}
