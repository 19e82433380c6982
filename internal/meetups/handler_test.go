package meetups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
)

type fakeStore struct {
	meetups map[uuid.UUID]*models.Meetup
}

func newFakeStore() *fakeStore {
	return &fakeStore{meetups: make(map[uuid.UUID]*models.Meetup)}
}

func (s *fakeStore) Create(_ context.Context, m *models.Meetup) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	cp := *m
	s.meetups[m.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Meetup, error) {
	m, ok := s.meetups[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) List(context.Context) ([]models.Meetup, error) {
	out := make([]models.Meetup, 0, len(s.meetups))
	for _, m := range s.meetups {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, m *models.Meetup) error {
	if _, ok := s.meetups[m.ID]; !ok {
		return errors.New("not found")
	}
	cp := *m
	s.meetups[m.ID] = &cp
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.meetups[id]; !ok {
		return errors.New("not found")
	}
	delete(s.meetups, id)
	return nil
}

type fakeRegs struct {
	byUser map[uuid.UUID][]models.Registration
}

func (f *fakeRegs) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Registration, error) {
	return f.byUser[userID], nil
}

type listResponse struct {
	Data []models.MeetupWithRegistration `json:"data"`
}

func seedMeetup(t *testing.T, store *fakeStore, title string, startsIn time.Duration) *models.Meetup {
	t.Helper()
	m := &models.Meetup{Title: title, StartsAt: time.Now().Add(startsIn)}
	require.NoError(t, store.Create(context.Background(), m))
	return m
}

func TestList_OrderedByStart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newFakeStore()
	later := seedMeetup(t, store, "later", 48*time.Hour)
	sooner := seedMeetup(t, store, "sooner", 2*time.Hour)
	h := NewHandler(store, &fakeRegs{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/meetups", nil)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, sooner.ID, resp.Data[0].ID)
	assert.Equal(t, later.ID, resp.Data[1].ID)
	assert.False(t, resp.Data[0].Registered)
}

func TestList_MergesRegistrationState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newFakeStore()
	registered := seedMeetup(t, store, "registered", 2*time.Hour)
	seedMeetup(t, store, "other", 4*time.Hour)

	userID := uuid.New()
	regs := &fakeRegs{byUser: map[uuid.UUID][]models.Registration{
		userID: {{
			ID:       uuid.New(),
			MeetupID: registered.ID,
			UserID:   userID,
			UserName: "Alice Kumar",
			Token:    "sometoken12345",
		}},
	}}
	h := NewHandler(store, regs)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/meetups", nil)
	c.Set(middleware.ContextUserID, userID)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)

	byID := map[uuid.UUID]models.MeetupWithRegistration{}
	for _, row := range resp.Data {
		byID[row.ID] = row
	}
	row := byID[registered.ID]
	assert.True(t, row.Registered)
	require.NotNil(t, row.Registration)
	assert.Equal(t, "sometoken12345", row.Registration.Token)
	assert.Equal(t, models.ShortCode("sometoken12345"), row.Registration.ShortCode)

	for id, r := range byID {
		if id != registered.ID {
			assert.False(t, r.Registered)
			assert.Nil(t, r.Registration)
		}
	}
}

func TestCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newFakeStore()
	h := NewHandler(store, &fakeRegs{})

	body := `{"title":"Go Meetup","venue":"Lab 2","starts_at":"2026-10-01T18:00:00Z"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/meetups", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserID, uuid.New())
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, store.meetups, 1)
}

func TestCreate_BadTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newFakeStore(), &fakeRegs{})

	body := `{"title":"Go Meetup","starts_at":"next tuesday"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/meetups", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserID, uuid.New())
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdate_PartialPatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newFakeStore()
	m := seedMeetup(t, store, "original", 24*time.Hour)
	m.Venue = "Hall A"
	require.NoError(t, store.Update(context.Background(), m))
	h := NewHandler(store, &fakeRegs{})

	body := `{"title":"renamed"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/meetups/"+m.ID.String(), strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: m.ID.String()}}
	h.Update(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := store.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "Hall A", got.Venue, "absent fields keep their values")
}
