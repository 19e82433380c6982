package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
)

// fakeStore is an in-memory Store honoring the same constraints as the
// SQL implementation: one registration per (meetup, user), checked_in_at
// set exactly when is_checked_in.
type fakeStore struct {
	mu   sync.Mutex
	regs map[uuid.UUID]*models.Registration
	now  func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{regs: make(map[uuid.UUID]*models.Registration), now: time.Now}
}

func (s *fakeStore) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.MeetupID == reg.MeetupID && r.UserID == reg.UserID {
			return ErrAlreadyRegistered
		}
	}
	reg.ID = uuid.New()
	reg.CreatedAt = s.now()
	cp := *reg
	s.regs[reg.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) GetByToken(_ context.Context, token string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.Token == token {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GetByMeetupAndUser(_ context.Context, meetupID, userID uuid.UUID) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.MeetupID == meetupID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Registration
	for _, r := range s.regs {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByMeetup(_ context.Context, meetupID uuid.UUID, search string, limit, offset int) ([]models.AttendeeRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.AttendeeRow
	for _, r := range s.regs {
		if r.MeetupID != meetupID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.UserName), strings.ToLower(search)) &&
			!strings.Contains(strings.ToLower(r.UserEmail), strings.ToLower(search)) {
			continue
		}
		rows = append(rows, models.AttendeeRow{Registration: *r})
	}
	total := len(rows)
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (s *fakeStore) CountByMeetup(_ context.Context, meetupID uuid.UUID) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, checked := 0, 0
	for _, r := range s.regs {
		if r.MeetupID == meetupID {
			total++
			if r.IsCheckedIn {
				checked++
			}
		}
	}
	return total, checked, nil
}

func (s *fakeStore) ToggleCheckIn(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.IsCheckedIn {
		r.IsCheckedIn = false
		r.CheckedInAt = nil
	} else {
		at := s.now()
		r.IsCheckedIn = true
		r.CheckedInAt = &at
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) CheckInByToken(_ context.Context, meetupID uuid.UUID, token string) (*models.Registration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.MeetupID == meetupID && r.Token == token {
			if r.IsCheckedIn {
				cp := *r
				return &cp, true, nil
			}
			at := s.now()
			r.IsCheckedIn = true
			r.CheckedInAt = &at
			cp := *r
			return &cp, false, nil
		}
	}
	return nil, false, ErrNotFound
}

type fakeMeetups struct {
	meetups map[uuid.UUID]*models.Meetup
}

func (f *fakeMeetups) GetByID(_ context.Context, id uuid.UUID) (*models.Meetup, error) {
	m, ok := f.meetups[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

type fakeUsers struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []uuid.UUID
}

func (n *recordingNotifier) NotifyCheckIn(meetupID uuid.UUID, _ *models.Registration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, meetupID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type fixture struct {
	handler  *Handler
	store    *fakeStore
	notifier *recordingNotifier
	meetup   *models.Meetup
	user     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	meetup := &models.Meetup{
		ID:       uuid.New(),
		Title:    "Go Meetup",
		StartsAt: time.Now().Add(24 * time.Hour),
	}
	user := &models.User{
		ID:       uuid.New(),
		FullName: "Alice Kumar",
		Email:    "alice@example.com",
		Role:     models.RoleStudent,
	}

	store := newFakeStore()
	notifier := &recordingNotifier{}
	h := NewHandler(store,
		&fakeMeetups{meetups: map[uuid.UUID]*models.Meetup{meetup.ID: meetup}},
		&fakeUsers{users: map[uuid.UUID]*models.User{user.ID: user}},
		notifier, nil)

	return &fixture{handler: h, store: store, notifier: notifier, meetup: meetup, user: user}
}

func performAs(h gin.HandlerFunc, userID uuid.UUID, role, method, path string, params gin.Params, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if userID != uuid.Nil {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
	}
	h(c)
	return w
}

func (f *fixture) register(t *testing.T) *models.Registration {
	t.Helper()
	w := performAs(f.handler.Register, f.user.ID, string(models.RoleStudent),
		http.MethodPost, "/meetups/"+f.meetup.ID.String()+"/register",
		gin.Params{{Key: "id", Value: f.meetup.ID.String()}}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	reg, err := f.store.GetByMeetupAndUser(context.Background(), f.meetup.ID, f.user.ID)
	require.NoError(t, err)
	return reg
}

func TestRegister_CreatesTicket(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t)

	assert.NotEmpty(t, reg.Token)
	assert.False(t, reg.IsCheckedIn)
	assert.Nil(t, reg.CheckedInAt)
	assert.Equal(t, "Alice Kumar", reg.UserName)
	assert.Equal(t, "alice@example.com", reg.UserEmail)
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	w := performAs(f.handler.Register, f.user.ID, string(models.RoleStudent),
		http.MethodPost, "/meetups/"+f.meetup.ID.String()+"/register",
		gin.Params{{Key: "id", Value: f.meetup.ID.String()}}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	total, _, err := f.store.CountByMeetup(context.Background(), f.meetup.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "duplicate attempt must not add a row")
}

func TestRegister_UnknownMeetup(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()
	w := performAs(f.handler.Register, f.user.ID, string(models.RoleStudent),
		http.MethodPost, "/meetups/"+other.String()+"/register",
		gin.Params{{Key: "id", Value: other.String()}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister_WindowClosed(t *testing.T) {
	f := newFixture(t)
	past := time.Now().Add(-2 * time.Hour)
	f.meetup.StartsAt = past

	w := performAs(f.handler.Register, f.user.ID, string(models.RoleStudent),
		http.MethodPost, "/meetups/"+f.meetup.ID.String()+"/register",
		gin.Params{{Key: "id", Value: f.meetup.ID.String()}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_RequiresDisplayName(t *testing.T) {
	f := newFixture(t)
	f.user.FullName = "   "

	w := performAs(f.handler.Register, f.user.ID, string(models.RoleStudent),
		http.MethodPost, "/meetups/"+f.meetup.ID.String()+"/register",
		gin.Params{{Key: "id", Value: f.meetup.ID.String()}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "display name")
}

func TestMyTicket(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t)

	w := performAs(f.handler.MyTicket, f.user.ID, string(models.RoleStudent),
		http.MethodGet, "/meetups/"+f.meetup.ID.String()+"/ticket",
		gin.Params{{Key: "id", Value: f.meetup.ID.String()}}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.RegistrationTicket `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, reg.Token, resp.Data.Token)
	assert.Equal(t, models.ShortCode(reg.Token), resp.Data.ShortCode)
}

func TestToggleCheckIn_RoundTrip(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t)

	params := gin.Params{{Key: "id", Value: reg.ID.String()}}
	admin := uuid.New()

	w := performAs(f.handler.ToggleCheckIn, admin, string(models.RoleAdmin),
		http.MethodPost, "/registrations/"+reg.ID.String()+"/toggle-checkin", params, nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := f.store.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCheckedIn)
	assert.NotNil(t, got.CheckedInAt)

	// Toggling back restores the never-checked-in shape.
	w = performAs(f.handler.ToggleCheckIn, admin, string(models.RoleAdmin),
		http.MethodPost, "/registrations/"+reg.ID.String()+"/toggle-checkin", params, nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err = f.store.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCheckedIn)
	assert.Nil(t, got.CheckedInAt)

	// Only the check-in direction notifies live viewers.
	assert.Equal(t, 1, f.notifier.count())
}

func TestToggleCheckIn_Unknown(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	w := performAs(f.handler.ToggleCheckIn, uuid.New(), string(models.RoleAdmin),
		http.MethodPost, "/registrations/"+id.String()+"/toggle-checkin",
		gin.Params{{Key: "id", Value: id.String()}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckInByToken(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t)

	body, _ := json.Marshal(CheckInRequest{Token: reg.Token})
	params := gin.Params{{Key: "id", Value: f.meetup.ID.String()}}

	w := performAs(f.handler.CheckInByToken, uuid.New(), string(models.RoleAdmin),
		http.MethodPost, "/meetups/"+f.meetup.ID.String()+"/checkin", params, body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Already bool `json:"already_checked_in"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Already)

	// A second scan reports the repeat instead of failing.
	w = performAs(f.handler.CheckInByToken, uuid.New(), string(models.RoleAdmin),
		http.MethodPost, "/meetups/"+f.meetup.ID.String()+"/checkin", params, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Already)

	got, err := f.store.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCheckedIn)
	assert.Equal(t, 1, f.notifier.count(), "repeat scans must not re-notify")
}

func TestCheckInByToken_WrongMeetup(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t)

	other := uuid.New()
	body, _ := json.Marshal(CheckInRequest{Token: reg.Token})
	w := performAs(f.handler.CheckInByToken, uuid.New(), string(models.RoleAdmin),
		http.MethodPost, "/meetups/"+other.String()+"/checkin",
		gin.Params{{Key: "id", Value: other.String()}}, body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateToken(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t)

	w := performAs(f.handler.ValidateToken, uuid.Nil, "",
		http.MethodGet, "/tickets/"+reg.Token+"/validate",
		gin.Params{{Key: "token", Value: reg.Token}}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), f.meetup.Title)

	w = performAs(f.handler.ValidateToken, uuid.Nil, "",
		http.MethodGet, "/tickets/bogus/validate",
		gin.Params{{Key: "token", Value: "bogus"}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListByMeetup_SearchAndPaging(t *testing.T) {
	f := newFixture(t)

	// Seed 12 registrations directly; names bob-00..bob-11 plus one carol.
	for i := 0; i < 12; i++ {
		reg := &models.Registration{
			MeetupID:  f.meetup.ID,
			UserID:    uuid.New(),
			UserName:  "Bob Attendee",
			UserEmail: "bob@example.com",
			Token:     uuid.NewString(),
		}
		require.NoError(t, f.store.Create(context.Background(), reg))
	}
	carol := &models.Registration{
		MeetupID:  f.meetup.ID,
		UserID:    uuid.New(),
		UserName:  "Carol Singh",
		UserEmail: "carol@example.com",
		Token:     uuid.NewString(),
	}
	require.NoError(t, f.store.Create(context.Background(), carol))

	params := gin.Params{{Key: "id", Value: f.meetup.ID.String()}}

	w := performAs(f.handler.ListByMeetup, uuid.New(), string(models.RoleAdmin),
		http.MethodGet, "/meetups/"+f.meetup.ID.String()+"/registrations?page=2", params, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Registrations []models.AttendeeRow `json:"registrations"`
			Total         int                  `json:"total"`
			Page          int                  `json:"page"`
			PageSize      int                  `json:"page_size"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 13, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Page)
	assert.Equal(t, PageSize, resp.Data.PageSize)
	assert.Len(t, resp.Data.Registrations, 3)

	w = performAs(f.handler.ListByMeetup, uuid.New(), string(models.RoleAdmin),
		http.MethodGet, "/meetups/"+f.meetup.ID.String()+"/registrations?search=carol", params, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "Carol Singh", resp.Data.Registrations[0].UserName)
}
