package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fleamarket_go/backend"
	"fleamarket_go/config"
	"fleamarket_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOfferService 指向本地fake后端的报价服务
func newTestOfferService(t *testing.T, handler http.Handler) (*OfferService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := backend.NewClient(&config.BackendConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	return NewOfferService(client), server
}

func sessionCtx() context.Context {
	return config.WithSessionToken(context.Background(), "test-session-token")
}

func makeOffer(id, listingID, status string, isRead bool, createdAt time.Time) models.Offer {
	return models.Offer{
		ID:     id,
		Status: status,
		Round:  1,
		Listing: models.ListingSummary{
			ID:    listingID,
			Title: "Listing " + listingID,
			Price: 100,
		},
		IsRead:    isRead,
		ExpiresAt: createdAt.Add(72 * time.Hour),
		CreatedAt: createdAt,
	}
}

func TestGroupReceivedOffers_Partition(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	offers := []models.Offer{
		makeOffer("o1", "l1", models.OfferStatusPending, true, base.Add(3*time.Hour)),
		makeOffer("o2", "l2", models.OfferStatusAccepted, true, base.Add(2*time.Hour)),
		makeOffer("o3", "l3", models.OfferStatusCountered, true, base.Add(1*time.Hour)),
		makeOffer("o4", "l4", models.OfferStatusDeclined, true, base),
	}

	grouped := GroupReceivedOffers(offers)

	// pending和countered进活跃分区，其余进历史分区，相对顺序保持
	require.Len(t, grouped.Active, 2)
	assert.Equal(t, "o1", grouped.Active[0].Offers[0].ID)
	assert.Equal(t, "o3", grouped.Active[1].Offers[0].ID)

	require.Len(t, grouped.Past, 2)
	assert.Equal(t, "o2", grouped.Past[0].Offers[0].ID)
	assert.Equal(t, "o4", grouped.Past[1].Offers[0].ID)
}

func TestGroupReceivedOffers_UnreadGroupFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// l1组的报价更新，但l2组含未读，应排在前面
	offers := []models.Offer{
		makeOffer("o1", "l1", models.OfferStatusPending, true, base.Add(5*time.Hour)),
		makeOffer("o2", "l1", models.OfferStatusPending, true, base.Add(4*time.Hour)),
		makeOffer("o3", "l2", models.OfferStatusPending, false, base),
	}

	grouped := GroupReceivedOffers(offers)

	require.Len(t, grouped.Active, 2)
	assert.Equal(t, "l2", grouped.Active[0].Listing.ID)
	assert.True(t, grouped.Active[0].HasUnread)
	assert.Equal(t, "l1", grouped.Active[1].Listing.ID)
	assert.False(t, grouped.Active[1].HasUnread)
}

func TestGroupReceivedOffers_UnreadFirstWithinGroup(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// 未读的旧报价排在已读的新报价之前
	offers := []models.Offer{
		makeOffer("newer-read", "l1", models.OfferStatusPending, true, base.Add(6*time.Hour)),
		makeOffer("older-unread", "l1", models.OfferStatusPending, false, base),
		makeOffer("middle-read", "l1", models.OfferStatusPending, true, base.Add(3*time.Hour)),
	}

	grouped := GroupReceivedOffers(offers)

	require.Len(t, grouped.Active, 1)
	group := grouped.Active[0]
	require.Len(t, group.Offers, 3)
	assert.Equal(t, "older-unread", group.Offers[0].ID)
	assert.Equal(t, "newer-read", group.Offers[1].ID)
	assert.Equal(t, "middle-read", group.Offers[2].ID)
}

func TestGroupReceivedOffers_GroupsByNewestDesc(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	offers := []models.Offer{
		makeOffer("o1", "l1", models.OfferStatusPending, true, base),
		makeOffer("o2", "l2", models.OfferStatusPending, true, base.Add(2*time.Hour)),
	}

	grouped := GroupReceivedOffers(offers)

	require.Len(t, grouped.Active, 2)
	assert.Equal(t, "l2", grouped.Active[0].Listing.ID)
	assert.Equal(t, "l1", grouped.Active[1].Listing.ID)
}

func TestGroupReceivedOffers_ManyGroupsKeepRecencyOrder(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// 七个分组，创建时间打乱，l2和l5含未读
	offers := []models.Offer{
		makeOffer("o0", "l0", models.OfferStatusPending, true, base.Add(1*time.Hour)),
		makeOffer("o1", "l1", models.OfferStatusPending, true, base.Add(2*time.Hour)),
		makeOffer("o2", "l2", models.OfferStatusPending, false, base.Add(7*time.Hour)),
		makeOffer("o3", "l3", models.OfferStatusPending, true, base.Add(6*time.Hour)),
		makeOffer("o4", "l4", models.OfferStatusPending, true, base.Add(9*time.Hour)),
		makeOffer("o5", "l5", models.OfferStatusPending, false, base.Add(3*time.Hour)),
		makeOffer("o6", "l6", models.OfferStatusPending, true, base.Add(5*time.Hour)),
	}

	grouped := GroupReceivedOffers(offers)

	require.Len(t, grouped.Active, 7)
	var order []string
	for _, group := range grouped.Active {
		order = append(order, group.Listing.ID)
	}

	// 未读组在前（各自按最新时间倒序），之后是已读组按最新时间倒序
	assert.Equal(t, []string{"l2", "l5", "l4", "l3", "l6", "l1", "l0"}, order)
}

func TestGroupReceivedOffers_MultiOfferGroupsRecencyKey(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// 组间排序键是组内最新一条报价的时间：
	// l1的首条报价最旧，但后来的报价最新，应排在l2和l3之前
	offers := []models.Offer{
		makeOffer("o1", "l1", models.OfferStatusPending, true, base),
		makeOffer("o2", "l2", models.OfferStatusPending, true, base.Add(4*time.Hour)),
		makeOffer("o3", "l3", models.OfferStatusPending, true, base.Add(2*time.Hour)),
		makeOffer("o4", "l1", models.OfferStatusPending, true, base.Add(8*time.Hour)),
	}

	grouped := GroupReceivedOffers(offers)

	require.Len(t, grouped.Active, 3)
	assert.Equal(t, "l1", grouped.Active[0].Listing.ID)
	assert.Equal(t, "l2", grouped.Active[1].Listing.ID)
	assert.Equal(t, "l3", grouped.Active[2].Listing.ID)
}

func TestNegotiate_LocalValidationSkipsNetwork(t *testing.T) {
	var calls int64
	service, _ := newTestOfferService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"success":true}`))
	}))

	t.Run("round limit reached", func(t *testing.T) {
		offer := makeOffer("o1", "l1", models.OfferStatusCountered, true, time.Now())
		offer.Round = models.MaxCounterRounds

		err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionCounter, CounterAmount: "50"})
		assert.ErrorIs(t, err, models.ErrRoundLimitReached)
	})

	t.Run("amount out of bounds", func(t *testing.T) {
		offer := makeOffer("o2", "l1", models.OfferStatusPending, true, time.Now())

		err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionCounter, CounterAmount: "5"})
		assert.ErrorIs(t, err, models.ErrAmountOutOfRange)
	})

	t.Run("unparseable amount", func(t *testing.T) {
		offer := makeOffer("o3", "l1", models.OfferStatusPending, true, time.Now())

		err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionCounter, CounterAmount: "abc"})
		assert.ErrorIs(t, err, ErrInvalidCounterInput)
	})

	t.Run("accept on expired offer", func(t *testing.T) {
		offer := makeOffer("o4", "l1", models.OfferStatusPending, true, time.Now().Add(-96*time.Hour))

		err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionAccept})
		assert.ErrorIs(t, err, models.ErrOfferExpired)
	})

	t.Run("unknown action", func(t *testing.T) {
		offer := makeOffer("o5", "l1", models.OfferStatusPending, true, time.Now())

		err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: "explode"})
		assert.ErrorIs(t, err, ErrInvalidAction)
	})

	// 以上全部在本地被拒，后端一次请求都不应收到
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestNegotiate_CounterReachesBackend(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}

	service, _ := newTestOfferService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"success":true}`))
	}))

	offer := makeOffer("offer-9", "l1", models.OfferStatusPending, true, time.Now())

	err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionCounter, CounterAmount: " 80 "})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/offers/offer-9/counter", gotPath)
	assert.Equal(t, 80.0, gotBody["counter_amount"])
}

func TestNegotiate_BackendRejection(t *testing.T) {
	service, _ := newTestOfferService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"offer was already accepted"}`))
	}))

	offer := makeOffer("o1", "l1", models.OfferStatusPending, true, time.Now())

	err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionAccept})
	require.Error(t, err)

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "offer was already accepted", apiErr.Message)
}

func TestNegotiate_InFlightGuard(t *testing.T) {
	service, _ := newTestOfferService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))

	offer := makeOffer("o1", "l1", models.OfferStatusPending, true, time.Now())

	// 同一报价同一动作已有请求在途时直接拒绝
	service.inFlight.Store("o1:"+ActionAccept, struct{}{})
	err := service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionAccept})
	assert.ErrorIs(t, err, ErrActionInFlight)

	// 标记清除后恢复正常
	service.inFlight.Delete("o1:" + ActionAccept)
	assert.NoError(t, service.Negotiate(sessionCtx(), &offer, NegotiateInput{Action: ActionAccept}))
}

func TestWithdraw(t *testing.T) {
	var calls int64
	service, _ := newTestOfferService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"success":true}`))
	}))

	t.Run("sad path - only pending offers can be withdrawn", func(t *testing.T) {
		offer := makeOffer("o1", "l1", models.OfferStatusCountered, true, time.Now())
		assert.ErrorIs(t, service.Withdraw(sessionCtx(), &offer), ErrNotPendingOffer)
		assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
	})

	t.Run("happy path", func(t *testing.T) {
		offer := makeOffer("o2", "l1", models.OfferStatusPending, true, time.Now())
		assert.NoError(t, service.Withdraw(sessionCtx(), &offer))
		assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	})
}

func TestFindReceived(t *testing.T) {
	service, _ := newTestOfferService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"offers": []models.Offer{
				makeOffer("o1", "l1", models.OfferStatusPending, true, time.Now()),
				makeOffer("o2", "l2", models.OfferStatusCountered, false, time.Now()),
			},
		})
	}))

	t.Run("happy path", func(t *testing.T) {
		offer, err := service.FindReceived(sessionCtx(), "o2")
		require.NoError(t, err)
		assert.Equal(t, "l2", offer.Listing.ID)
	})

	t.Run("sad path - unknown offer", func(t *testing.T) {
		_, err := service.FindReceived(sessionCtx(), "nope")
		assert.ErrorIs(t, err, ErrOfferNotFound)
	})
}

func TestParseAmountInput(t *testing.T) {
	amount, err := parseAmountInput(" 42.5 ")
	assert.NoError(t, err)
	assert.Equal(t, 42.5, amount)

	for _, raw := range []string{"", "  ", "abc", "-3", "0"} {
		_, err := parseAmountInput(raw)
		assert.ErrorIs(t, err, ErrInvalidCounterInput, "input %q", raw)
	}
}
