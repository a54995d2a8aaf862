package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/srgjo27/community_ticket/internal/adapter/handler"
	"github.com/srgjo27/community_ticket/internal/core/domain"
	"github.com/srgjo27/community_ticket/internal/core/ports"
	"github.com/srgjo27/community_ticket/internal/core/ports/mocks"
	"github.com/srgjo27/community_ticket/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type server struct {
	routes http.Handler
	repo   *mocks.EventRepository
	locker *mocks.Locker
	cache  *mocks.AvailabilityCache
}

func newServer(t *testing.T) server {
	repo := mocks.NewEventRepository(t)
	locker := mocks.NewLocker(t)
	cache := mocks.NewAvailabilityCache(t)
	svc := services.NewEventService(repo, locker, cache, nil, services.Options{})
	return server{
		routes: handler.NewEventHandler(svc, nil).Routes(),
		repo:   repo,
		locker: locker,
		cache:  cache,
	}
}

func (s server) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)
	return rec
}

func (s server) expectLock(eventID uuid.UUID) {
	key := "lock:event:" + eventID.String()
	s.locker.On("Lock", mock.Anything, key, mock.Anything).Return("token", nil).Once()
	s.locker.On("Unlock", mock.Anything, key, "token").Return(nil).Once()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func freeEvent(t *testing.T, capacity int) *domain.Event {
	t.Helper()
	ev, err := domain.NewEvent("Community garden day", uuid.New(), capacity, nil)
	require.NoError(t, err)
	require.NoError(t, ev.Publish())
	ev.PullDomainEvents()
	return ev
}

func paidEvent(t *testing.T, capacity int) *domain.Event {
	t.Helper()
	price, err := domain.NewSinglePrice(domain.MustMoney("12", domain.CurrencyUSD))
	require.NoError(t, err)
	ev, err := domain.NewEvent("Cooking class", uuid.New(), capacity, price)
	require.NoError(t, err)
	require.NoError(t, ev.Publish())
	ev.PullDomainEvents()
	return ev
}

func registerBody(userID uuid.UUID) string {
	return fmt.Sprintf(`{
		"user_id": %q,
		"attendees": [{"name": "Ana", "age": 34}],
		"contact": {"email": "ana@example.com", "phone": "0771234567"}
	}`, userID)
}

func TestHealthCheck(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateEvent_Success(t *testing.T) {
	s := newServer(t)
	s.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Event"), mock.Anything).Return(nil)

	body := fmt.Sprintf(`{
		"title": "Harvest dinner",
		"organizer_id": %q,
		"capacity": 40,
		"pricing": {"type": "SINGLE", "price": {"amount": "25", "currency": "USD"}}
	}`, uuid.New())
	rec := s.do(http.MethodPost, "/events", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Title   string `json:"title"`
		IsFree  bool   `json:"is_free"`
		Pricing struct {
			Type string `json:"type"`
		} `json:"pricing"`
		Availability domain.Availability `json:"availability"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Harvest dinner", resp.Title)
	assert.False(t, resp.IsFree)
	assert.Equal(t, "SINGLE", resp.Pricing.Type)
	assert.Equal(t, 40, resp.Availability.Remaining)
}

func TestCreateEvent_ValidationErrors(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/events", `{"title": "", "capacity": 0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Messages, "Title is required")
	assert.Contains(t, resp.Messages, "Capacity must be greater than 0")
	s.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateEvent_BadPricing(t *testing.T) {
	s := newServer(t)

	body := fmt.Sprintf(`{"title": "Quiz night", "organizer_id": %q, "capacity": 10, "pricing": {"type": "BARTER"}}`, uuid.New())
	rec := s.do(http.MethodPost, "/events", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Messages, `Unknown pricing type "BARTER"`)
}

func TestCreateEvent_UnknownFieldRejected(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/events", `{"title": "Quiz night", "venue": "hall"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "invalid request body")
}

func TestGetEvent_InvalidID(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/events/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", decodeError(t, rec).Error)
}

func TestGetEvent_NotFound(t *testing.T) {
	s := newServer(t)
	eventID := uuid.New()
	s.repo.On("GetByID", mock.Anything, eventID).Return(nil, fmt.Errorf("event %s: %w", eventID, ports.ErrNotFound))

	rec := s.do(http.MethodGet, "/events/"+eventID.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegister_Created(t *testing.T) {
	s := newServer(t)
	ev := freeEvent(t, 5)
	s.expectLock(ev.ID)
	s.repo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	s.repo.On("Save", mock.Anything, ev, mock.Anything).Return(nil)
	s.cache.On("Invalidate", mock.Anything, ev.ID).Return(nil)

	rec := s.do(http.MethodPost, "/events/"+ev.ID.String()+"/registrations", registerBody(uuid.New()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Status   string `json:"status"`
		Quantity int    `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, 1, resp.Quantity)
}

func TestRegister_EventFullIsConflict(t *testing.T) {
	s := newServer(t)
	ev := freeEvent(t, 1)
	_, err := ev.Register(domain.RegistrationRequest{
		UserID:    uuid.New(),
		Attendees: []domain.AttendeeDetails{{Name: "Ben", Age: 40}},
		Contact:   &domain.Contact{Email: "ben@example.com", Phone: "0770000000"},
	})
	require.NoError(t, err)
	ev.PullDomainEvents()

	s.expectLock(ev.ID)
	s.repo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)

	rec := s.do(http.MethodPost, "/events/"+ev.ID.String()+"/registrations", registerBody(uuid.New()))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient capacity", decodeError(t, rec).Error)
	s.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_EventBusy(t *testing.T) {
	s := newServer(t)
	eventID := uuid.New()
	s.locker.On("Lock", mock.Anything, "lock:event:"+eventID.String(), mock.Anything).Return("", ports.ErrLockNotAcquired)

	rec := s.do(http.MethodPost, "/events/"+eventID.String()+"/registrations", registerBody(uuid.New()))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ports.ErrLockNotAcquired.Error(), decodeError(t, rec).Error)
}

func TestCompletePayment_UnknownRegistration(t *testing.T) {
	s := newServer(t)
	regID := uuid.New()
	s.repo.On("EventIDForRegistration", mock.Anything, regID).Return(uuid.Nil, fmt.Errorf("registration %s: %w", regID, ports.ErrNotFound))

	rec := s.do(http.MethodPost, "/registrations/"+regID.String()+"/payment", `{"payment_intent_id": "pi_123"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinWaitingList_ReturnsPosition(t *testing.T) {
	s := newServer(t)
	ev := freeEvent(t, 1)
	_, err := ev.Register(domain.RegistrationRequest{
		UserID:    uuid.New(),
		Attendees: []domain.AttendeeDetails{{Name: "Ben", Age: 40}},
		Contact:   &domain.Contact{Email: "ben@example.com", Phone: "0770000000"},
	})
	require.NoError(t, err)
	ev.PullDomainEvents()

	s.expectLock(ev.ID)
	s.repo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	s.repo.On("Save", mock.Anything, ev, mock.Anything).Return(nil)
	s.cache.On("Invalidate", mock.Anything, ev.ID).Return(nil)

	userID := uuid.New()
	rec := s.do(http.MethodPost, "/events/"+ev.ID.String()+"/waiting-list", fmt.Sprintf(`{"user_id": %q}`, userID))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"user_id": %q, "position": 1}`, userID), rec.Body.String())
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	s := newServer(t)
	eventID := uuid.New()
	s.cache.On("Get", mock.Anything, eventID).Return(domain.Availability{}, ports.ErrCacheMiss)
	s.repo.On("GetByID", mock.Anything, eventID).Return(nil, errors.New("pq: connection refused"))

	rec := s.do(http.MethodGet, "/events/"+eventID.String()+"/availability", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec).Error)
}

func TestWaitingListPosition_UserNotWaiting(t *testing.T) {
	s := newServer(t)
	ev := freeEvent(t, 1)
	s.repo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)

	userID := uuid.New()
	rec := s.do(http.MethodGet, "/events/"+ev.ID.String()+"/waiting-list/"+userID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"user_id": %q, "position": 0}`, userID), rec.Body.String())
}

func TestGetRegistration_IncludesRefundWithdrawalAndUpdate(t *testing.T) {
	s := newServer(t)
	ev := paidEvent(t, 5)
	reg, err := ev.Register(domain.RegistrationRequest{
		UserID:    uuid.New(),
		Attendees: []domain.AttendeeDetails{{Name: "Cleo", Age: 29}},
		Contact:   &domain.Contact{Email: "cleo@example.com", Phone: "0771111111"},
	})
	require.NoError(t, err)
	require.NoError(t, reg.CompletePayment("pi_9"))
	require.NoError(t, reg.RequestRefund())
	require.NoError(t, reg.WithdrawRefundRequest())
	ev.PullDomainEvents()

	s.repo.On("EventIDForRegistration", mock.Anything, reg.ID).Return(ev.ID, nil)
	s.repo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)

	rec := s.do(http.MethodGet, "/registrations/"+reg.ID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp["status"])
	assert.NotEmpty(t, resp["refund_requested_at"])
	assert.NotEmpty(t, resp["refund_withdrawn_at"])
	assert.NotEmpty(t, resp["updated_at"])
}

func TestFailPayment_CancelsRegistration(t *testing.T) {
	s := newServer(t)
	ev := paidEvent(t, 2)
	reg, err := ev.Register(domain.RegistrationRequest{
		UserID:    uuid.New(),
		Attendees: []domain.AttendeeDetails{{Name: "Dev", Age: 51}},
		Contact:   &domain.Contact{Email: "dev@example.com", Phone: "0772222222"},
	})
	require.NoError(t, err)
	ev.PullDomainEvents()

	s.repo.On("EventIDForRegistration", mock.Anything, reg.ID).Return(ev.ID, nil)
	s.repo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	s.expectLock(ev.ID)
	s.repo.On("Save", mock.Anything, ev, mock.Anything).Return(nil).Once()
	s.cache.On("Invalidate", mock.Anything, ev.ID).Return(nil).Once()

	rec := s.do(http.MethodPost, "/registrations/"+reg.ID.String()+"/payment-failure", `{"reason": "card declined"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Status)

	s.expectLock(ev.ID)
	rec = s.do(http.MethodPost, "/registrations/"+reg.ID.String()+"/payment-failure", `{}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEventLifecycleEndpoints(t *testing.T) {
	s := newServer(t)
	ev, err := domain.NewEvent("Open mic", uuid.New(), 20, nil)
	require.NoError(t, err)
	s.repo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)
	s.repo.On("Save", mock.Anything, ev, mock.Anything).Return(nil)
	s.cache.On("Invalidate", mock.Anything, ev.ID).Return(nil)
	base := "/events/" + ev.ID.String()

	s.expectLock(ev.ID)
	rec := s.do(http.MethodPost, base+"/registrations", registerBody(uuid.New()))
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, decodeError(t, rec).Messages, "Cannot register for draft event")

	s.expectLock(ev.ID)
	rec = s.do(http.MethodPost, base+"/publish", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s.expectLock(ev.ID)
	rec = s.do(http.MethodPost, base+"/cancel", `{"reason": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.expectLock(ev.ID)
	rec = s.do(http.MethodPost, base+"/cancel", `{"reason": "Rain"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Status       string `json:"status"`
		StatusReason string `json:"status_reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "Rain", resp.StatusReason)
}
