package api_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/d9705996/hrportal/internal/api"
	"github.com/d9705996/hrportal/internal/api/handler"
	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/config"
	"github.com/d9705996/hrportal/internal/db"
	"github.com/d9705996/hrportal/internal/health"
	"github.com/d9705996/hrportal/internal/model"
	"github.com/d9705996/hrportal/internal/sla"
	"github.com/d9705996/hrportal/internal/storage"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-at-least-32-bytes-long!"

func slaConfig() config.SLAConfig {
	return config.SLAConfig{UrgentHours: 12, UnderReviewDays: 3, VendorWarnDays: 5, SweepInterval: time.Hour}
}

func newTestServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))

	store, err := storage.New(t.TempDir(), 1024*1024)
	require.NoError(t, err)

	sweeper := sla.NewSweeper(gdb, slaConfig())
	handlers := api.Handlers{
		Health:        health.New(db.NewPinger(gdb), "test"),
		Auth:          handler.NewAuthHandler(gdb, testSecret, 30*time.Minute, 7*24*time.Hour),
		Users:         handler.NewUserHandler(gdb),
		Admin:         handler.NewAdminHandler(gdb, sweeper, slaConfig()),
		Feedback:      handler.NewFeedbackHandler(gdb, slaConfig()),
		Channels:      handler.NewChannelHandler(gdb),
		Memberships:   handler.NewMembershipHandler(gdb),
		Announcements: handler.NewAnnouncementHandler(gdb),
		Notifications: handler.NewNotificationHandler(gdb),
		Conversations: handler.NewConversationHandler(gdb),
		Birthday:      handler.NewBirthdayHandler(gdb),
		Files:         handler.NewFileHandler(gdb, store),
		Vendor:        handler.NewVendorHandler(gdb),
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, handlers, testSecret)
	return mux, gdb
}

var userSeq int

func createUser(t *testing.T, gdb *gorm.DB, role string, active bool) *model.User {
	t.Helper()
	userSeq++
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	u := &model.User{
		EmployeeID:   fmt.Sprintf("EMP-%03d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		FullName:     fmt.Sprintf("User %d", userSeq),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(u).Error)
	if !active {
		// A zero-valued bool is skipped on insert when the column has a
		// default, so flip it explicitly.
		require.NoError(t, gdb.Model(u).Update("is_active", false).Error)
		u.IsActive = false
	}
	return u
}

func accessToken(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := auth.IssueAccessToken(u, testSecret, 30*time.Minute)
	require.NoError(t, err)
	return tok
}

func doJSON(t *testing.T, srv http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// --- Auth ------------------------------------------------------------------

func TestLogin_EndToEnd(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": u.Email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.Equal(t, "bearer", body["token_type"])
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, true)

	wrongPass := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": u.Email, "password": "nope-nope",
	})
	unknown := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ghost@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, decode(t, wrongPass)["message"], decode(t, unknown)["message"])
}

func TestLogin_DeactivatedUserForbidden(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, false)

	w := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": u.Email, "password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefresh_ExchangesForAccessTokenOnly(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, true)
	refresh, err := auth.IssueRefreshToken(u, testSecret, time.Hour)
	require.NoError(t, err)

	w := doJSON(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["access_token"])
	_, hasRefresh := body["refresh_token"]
	assert.False(t, hasRefresh)

	// An access token is not accepted in the refresh exchange.
	w = doJSON(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refresh_token": accessToken(t, u)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"employee_id":      "EMP-900",
		"full_name":        "Dup User",
		"email":            u.Email,
		"password":         "secret12",
		"confirm_password": "secret12",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Guards ----------------------------------------------------------------

func TestUnauthenticatedWriteDoesNotMutate(t *testing.T) {
	srv, gdb := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/feedback", "", map[string]any{
		"title": "No token", "description": "should not persist",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, gdb.Model(&model.Feedback{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRoleGuard_EmployeeCannotListUsers(t *testing.T) {
	srv, gdb := newTestServer(t)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodGet, "/api/users", accessToken(t, emp), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoleGuard_SuperadminOnlyForRoleChange(t *testing.T) {
	srv, gdb := newTestServer(t)
	admin := createUser(t, gdb, model.RoleAdmin, true)
	target := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", target.ID),
		accessToken(t, admin), map[string]any{"role": model.RoleHR})
	assert.Equal(t, http.StatusForbidden, w.Code)

	super := createUser(t, gdb, model.RoleSuperAdmin, true)
	w = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", target.ID),
		accessToken(t, super), map[string]any{"role": model.RoleHR})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got model.User
	require.NoError(t, gdb.First(&got, target.ID).Error)
	assert.Equal(t, model.RoleHR, got.Role)
}

// --- Feedback --------------------------------------------------------------

func TestFeedbackCreate_AutoAssignsAndNotifies(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPost, "/api/feedback", accessToken(t, emp), map[string]any{
		"title": "Parking lot lights", "description": "Two lights are out",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var fb model.Feedback
	require.NoError(t, gdb.First(&fb).Error)
	require.NotNil(t, fb.AssignedTo)
	assert.Equal(t, hr.ID, *fb.AssignedTo)

	var note model.Notification
	require.NoError(t, gdb.Where("user_id = ?", hr.ID).First(&note).Error)
	assert.Equal(t, model.NotificationFeedback, note.Type)
}

func TestFeedbackUpdate_OnlyWhileSubmitted(t *testing.T) {
	srv, gdb := newTestServer(t)
	emp := createUser(t, gdb, model.RoleEmployee, true)
	fb := model.Feedback{
		Title: "Old title", Description: "d", Category: "GENERAL",
		Status: model.FeedbackInProgress, Priority: model.PriorityMedium,
		SubmittedBy: emp.ID,
	}
	require.NoError(t, gdb.Create(&fb).Error)

	w := doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/feedback/%d", fb.ID),
		accessToken(t, emp), map[string]any{"title": "New title"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var got model.Feedback
	require.NoError(t, gdb.First(&got, fb.ID).Error)
	assert.Equal(t, "Old title", got.Title)
}

func TestFeedbackVisibility_EmployeeSeesOnlyOwn(t *testing.T) {
	srv, gdb := newTestServer(t)
	a := createUser(t, gdb, model.RoleEmployee, true)
	b := createUser(t, gdb, model.RoleEmployee, true)
	for _, owner := range []*model.User{a, a, b} {
		fb := model.Feedback{
			Title: "t", Description: "d", Category: "GENERAL",
			Status: model.FeedbackSubmitted, Priority: model.PriorityMedium,
			SubmittedBy: owner.ID,
		}
		require.NoError(t, gdb.Create(&fb).Error)
	}

	w := doJSON(t, srv, http.MethodGet, "/api/feedback", accessToken(t, a), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 2, body["total"])
}

func TestFeedbackComments_InternalHiddenFromSubmitter(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)
	fb := model.Feedback{
		Title: "t", Description: "d", Category: "GENERAL",
		Status: model.FeedbackSubmitted, Priority: model.PriorityMedium,
		SubmittedBy: emp.ID, AssignedTo: &hr.ID,
	}
	require.NoError(t, gdb.Create(&fb).Error)

	w := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/feedback/%d/comments", fb.ID),
		accessToken(t, hr), map[string]any{"comment": "internal note", "is_internal": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/feedback/%d/comments", fb.ID),
		accessToken(t, hr), map[string]any{"comment": "public reply"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/feedback/%d/comments", fb.ID),
		accessToken(t, emp), nil)
	require.Equal(t, http.StatusOK, w.Code)
	comments := decode(t, w)["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, "public reply", comments[0].(map[string]any)["comment"])

	// Employees cannot post internal comments either.
	w = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/feedback/%d/comments", fb.ID),
		accessToken(t, emp), map[string]any{"comment": "sneaky", "is_internal": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Channels & memberships ------------------------------------------------

func TestChannelCreate_AutoJoinsCreatorAsModerator(t *testing.T) {
	srv, gdb := newTestServer(t)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPost, "/api/channels", accessToken(t, emp), map[string]any{
		"name": "Book Club",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Len(t, body["join_code"], 8)

	var member model.ChannelMember
	require.NoError(t, gdb.Where("user_id = ?", emp.ID).First(&member).Error)
	assert.Equal(t, model.MemberRoleModerator, member.Role)
}

func TestMembershipJoin_StatusTaxonomy(t *testing.T) {
	srv, gdb := newTestServer(t)
	creator := createUser(t, gdb, model.RoleEmployee, true)
	joiner := createUser(t, gdb, model.RoleEmployee, true)

	public := model.Channel{Name: "Public", ChannelType: "general", JoinCode: "PUB12345", CreatedBy: creator.ID}
	private := model.Channel{Name: "Private", ChannelType: "team", IsPrivate: true, JoinCode: "PRV12345", CreatedBy: creator.ID}
	require.NoError(t, gdb.Create(&public).Error)
	require.NoError(t, gdb.Create(&private).Error)

	tok := accessToken(t, joiner)

	// Unknown channel → 404
	w := doJSON(t, srv, http.MethodPost, "/api/memberships/join", tok, map[string]any{"channel_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Private channel → 403
	w = doJSON(t, srv, http.MethodPost, "/api/memberships/join", tok, map[string]any{"channel_id": private.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Public channel → 201, repeat → 409
	w = doJSON(t, srv, http.MethodPost, "/api/memberships/join", tok, map[string]any{"channel_id": public.ID})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, srv, http.MethodPost, "/api/memberships/join", tok, map[string]any{"channel_id": public.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Announcements ---------------------------------------------------------

func TestAnnouncements_ActiveOnlyPinnedFirst(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	past := time.Now().Add(-time.Hour)
	expired := model.Announcement{Title: "Expired", Content: "c", Category: "OTHER", IsActive: true, ExpiresAt: &past, CreatedBy: hr.ID}
	inactive := model.Announcement{Title: "Inactive", Content: "c", Category: "OTHER", IsActive: false, CreatedBy: hr.ID}
	plain := model.Announcement{Title: "Plain", Content: "c", Category: "OTHER", IsActive: true, CreatedBy: hr.ID}
	pinned := model.Announcement{Title: "Pinned", Content: "c", Category: "OTHER", IsActive: true, IsPinned: true, CreatedBy: hr.ID}
	for _, a := range []*model.Announcement{&expired, &inactive, &plain, &pinned} {
		require.NoError(t, gdb.Create(a).Error)
	}

	w := doJSON(t, srv, http.MethodGet, "/api/announcements", accessToken(t, emp), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	items := body["announcements"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Pinned", items[0].(map[string]any)["title"])
	assert.Equal(t, "Plain", items[1].(map[string]any)["title"])
}

func TestAnnouncementCreate_FansOutNotifications(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp1 := createUser(t, gdb, model.RoleEmployee, true)
	emp2 := createUser(t, gdb, model.RoleEmployee, true)
	createUser(t, gdb, model.RoleEmployee, false) // inactive, no notification

	w := doJSON(t, srv, http.MethodPost, "/api/announcements", accessToken(t, hr), map[string]any{
		"title": "Holiday schedule", "content": "Office closed Friday",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var count int64
	require.NoError(t, gdb.Model(&model.Notification{}).
		Where("type = ?", model.NotificationAnnouncement).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	for _, u := range []*model.User{emp1, emp2} {
		var n model.Notification
		require.NoError(t, gdb.Where("user_id = ?", u.ID).First(&n).Error)
	}
}

// --- Notifications ---------------------------------------------------------

func TestNotificationOwnership_ForeignDeleteForbidden(t *testing.T) {
	srv, gdb := newTestServer(t)
	owner := createUser(t, gdb, model.RoleEmployee, true)
	other := createUser(t, gdb, model.RoleEmployee, true)

	n := model.Notification{UserID: owner.ID, Type: model.NotificationSystem, Title: "t", Message: "m"}
	require.NoError(t, gdb.Create(&n).Error)

	w := doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", n.ID),
		accessToken(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The row survives the attempt.
	var count int64
	require.NoError(t, gdb.Model(&model.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Reading someone else's notification is forbidden the same way.
	w = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", n.ID),
		accessToken(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, true)
	for i := 0; i < 3; i++ {
		n := model.Notification{UserID: u.ID, Type: model.NotificationSystem, Title: "t", Message: "m"}
		require.NoError(t, gdb.Create(&n).Error)
	}

	tok := accessToken(t, u)
	w := doJSON(t, srv, http.MethodPost, "/api/notifications/mark-all-read", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["updated"])

	w = doJSON(t, srv, http.MethodPost, "/api/notifications/mark-all-read", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["updated"])
}

func TestNotificationList_UnreadCount(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, true)
	read := model.Notification{UserID: u.ID, Type: model.NotificationSystem, Title: "t", Message: "m", IsRead: true}
	unread := model.Notification{UserID: u.ID, Type: model.NotificationSystem, Title: "t", Message: "m"}
	require.NoError(t, gdb.Create(&read).Error)
	require.NoError(t, gdb.Create(&unread).Error)

	w := doJSON(t, srv, http.MethodGet, "/api/notifications?unread_only=true", accessToken(t, u), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["unread_count"])
	assert.Len(t, body["notifications"].([]any), 1)
}

// --- Pagination ------------------------------------------------------------

func TestPagination_BoundsAndIndependentTotal(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	for i := 0; i < 120; i++ {
		createUser(t, gdb, model.RoleEmployee, true)
	}
	tok := accessToken(t, hr)

	// limit above the cap clamps to 100
	w := doJSON(t, srv, http.MethodGet, "/api/users?limit=500", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["users"].([]any), 100)
	assert.EqualValues(t, 121, body["total"])

	// negative values fall back to defaults
	w = doJSON(t, srv, http.MethodGet, "/api/users?skip=-5&limit=-1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["users"].([]any), 50)
}

// --- Birthdays -------------------------------------------------------------

func TestBirthdayUpsert_ReconcilesRegistrations(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)
	dob := time.Date(1991, time.June, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Model(emp).Update("date_of_birth", &dob).Error)

	body := map[string]any{
		"year": 2026, "month": 6,
		"event_date": "2026-06-20T17:00:00Z",
		"title":      "June birthdays",
	}
	w := doJSON(t, srv, http.MethodPost, "/api/birthday/events", accessToken(t, hr), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg model.BirthdayRegistration
	require.NoError(t, gdb.Where("user_id = ?", emp.ID).First(&reg).Error)
	assert.Equal(t, model.RsvpPending, reg.RsvpStatus)

	var invite model.Notification
	require.NoError(t, gdb.Where("user_id = ? AND type = ?", emp.ID, model.NotificationBirthdayInvite).
		First(&invite).Error)

	// Posting the same (year, month) again updates in place: one event, one
	// registration.
	body["title"] = "June party"
	w = doJSON(t, srv, http.MethodPost, "/api/birthday/events", accessToken(t, hr), body)
	require.Equal(t, http.StatusOK, w.Code)

	var events, regs int64
	require.NoError(t, gdb.Model(&model.BirthdayEvent{}).Count(&events).Error)
	require.NoError(t, gdb.Model(&model.BirthdayRegistration{}).Count(&regs).Error)
	assert.EqualValues(t, 1, events)
	assert.EqualValues(t, 1, regs)
}

func TestBirthdayRsvp_RegistrantOnly(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	registrant := createUser(t, gdb, model.RoleEmployee, true)
	outsider := createUser(t, gdb, model.RoleEmployee, true)

	event := model.BirthdayEvent{Year: 2026, Month: 3, EventDate: time.Now(), Title: "March", CreatedBy: hr.ID}
	require.NoError(t, gdb.Create(&event).Error)
	reg := model.BirthdayRegistration{EventID: event.ID, UserID: registrant.ID, RsvpStatus: model.RsvpPending}
	require.NoError(t, gdb.Create(&reg).Error)

	path := fmt.Sprintf("/api/birthday/events/%d/rsvp", event.ID)
	w := doJSON(t, srv, http.MethodPost, path, accessToken(t, outsider), map[string]any{"rsvp_status": "going"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodPost, path, accessToken(t, registrant), map[string]any{"rsvp_status": "going"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got model.BirthdayRegistration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, model.RsvpGoing, got.RsvpStatus)
}

// --- Vendor ----------------------------------------------------------------

func TestVendorReply_FlowAndGuards(t *testing.T) {
	srv, gdb := newTestServer(t)
	super := createUser(t, gdb, model.RoleSuperAdmin, true)
	vendor := createUser(t, gdb, model.RoleVendor, true)
	otherVendor := createUser(t, gdb, model.RoleVendor, true)

	pending := model.VendorPending
	due := time.Now().Add(48 * time.Hour)
	fb := model.Feedback{
		Title: "AC maintenance", Description: "d", Category: "WORKPLACE",
		Status: model.FeedbackInProgress, Priority: model.PriorityHigh,
		SubmittedBy: super.ID, VendorAssignedTo: &vendor.ID,
		VendorStatus: &pending, VendorDueAt: &due,
	}
	require.NoError(t, gdb.Create(&fb).Error)

	// Staff never reach vendor routes, even SUPERADMIN.
	w := doJSON(t, srv, http.MethodGet, "/api/vendor/feedback", accessToken(t, super), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A vendor only sees its own queue.
	w = doJSON(t, srv, http.MethodGet, "/api/vendor/feedback", accessToken(t, otherVendor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["total"])

	// Replying on someone else's assignment is forbidden.
	path := fmt.Sprintf("/api/vendor/feedback/%d/reply", fb.ID)
	w = doJSON(t, srv, http.MethodPost, path, accessToken(t, otherVendor), map[string]any{"reply": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The assigned vendor's reply stamps the response and notifies superadmins.
	w = doJSON(t, srv, http.MethodPost, path, accessToken(t, vendor), map[string]any{"reply": "Scheduled for Monday"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got model.Feedback
	require.NoError(t, gdb.First(&got, fb.ID).Error)
	require.NotNil(t, got.VendorStatus)
	assert.Equal(t, model.VendorReplied, *got.VendorStatus)
	assert.NotNil(t, got.VendorLastResponseAt)

	var comment model.FeedbackComment
	require.NoError(t, gdb.Where("feedback_id = ?", fb.ID).First(&comment).Error)
	assert.True(t, comment.IsInternal)

	var note model.Notification
	require.NoError(t, gdb.Where("user_id = ? AND type = ?", super.ID, model.NotificationVendorReply).
		First(&note).Error)
}

// --- Admin sweep endpoint --------------------------------------------------

func TestAdminVendorSweep_OnDemand(t *testing.T) {
	srv, gdb := newTestServer(t)
	admin := createUser(t, gdb, model.RoleAdmin, true)
	vendor := createUser(t, gdb, model.RoleVendor, true)

	pending := model.VendorPending
	due := time.Now().Add(-time.Hour)
	fb := model.Feedback{
		Title: "Late delivery", Description: "d", Category: "GENERAL",
		Status: model.FeedbackInProgress, Priority: model.PriorityMedium,
		SubmittedBy: admin.ID, VendorAssignedTo: &vendor.ID,
		VendorStatus: &pending, VendorDueAt: &due,
	}
	require.NoError(t, gdb.Create(&fb).Error)

	w := doJSON(t, srv, http.MethodPost, "/api/admin/vendor-sla-sweep", accessToken(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 1, body["overdue"])

	var got model.Feedback
	require.NoError(t, gdb.First(&got, fb.ID).Error)
	assert.Equal(t, model.VendorPastDue, *got.VendorStatus)
}

// --- Profile ---------------------------------------------------------------

func TestChangePassword_WrongCurrentForbidden(t *testing.T) {
	srv, gdb := newTestServer(t)
	u := createUser(t, gdb, model.RoleEmployee, true)
	tok := accessToken(t, u)

	w := doJSON(t, srv, http.MethodPost, "/api/users/profile/password", tok, map[string]any{
		"current_password": "wrong-password",
		"new_password":     "newsecret",
		"confirm_password": "newsecret",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/users/profile/password", tok, map[string]any{
		"current_password": "password123",
		"new_password":     "newsecret",
		"confirm_password": "newsecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The new password works for login; the old one does not.
	var got model.User
	require.NoError(t, gdb.First(&got, u.ID).Error)
	assert.True(t, auth.VerifyPassword("newsecret", got.PasswordHash))
	assert.False(t, auth.VerifyPassword("password123", got.PasswordHash))
}

// --- Feedback routing and filters ------------------------------------------

func TestFeedbackCreate_CategoryRoutesByRole(t *testing.T) {
	srv, gdb := newTestServer(t)
	admin := createUser(t, gdb, model.RoleAdmin, true)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	// WORKPLACE prefers HR even though the admin has the lower id.
	w := doJSON(t, srv, http.MethodPost, "/api/feedback", accessToken(t, emp), map[string]any{
		"title": "Broken chair", "description": "d", "category": "WORKPLACE",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var workplace model.Feedback
	require.NoError(t, gdb.Where("title = ?", "Broken chair").First(&workplace).Error)
	require.NotNil(t, workplace.AssignedTo)
	assert.Equal(t, hr.ID, *workplace.AssignedTo)

	// MANAGEMENT goes to an admin first.
	w = doJSON(t, srv, http.MethodPost, "/api/feedback", accessToken(t, emp), map[string]any{
		"title": "Team lead concerns", "description": "d", "category": "MANAGEMENT",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var management model.Feedback
	require.NoError(t, gdb.Where("title = ?", "Team lead concerns").First(&management).Error)
	require.NotNil(t, management.AssignedTo)
	assert.Equal(t, admin.ID, *management.AssignedTo)
}

func TestFeedbackList_AssignedFilter(t *testing.T) {
	srv, gdb := newTestServer(t)
	super := createUser(t, gdb, model.RoleSuperAdmin, true)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	assigned := model.Feedback{
		Title: "assigned", Description: "d", Category: "GENERAL",
		Status: model.FeedbackSubmitted, Priority: model.PriorityMedium,
		SubmittedBy: emp.ID, AssignedTo: &hr.ID,
	}
	unassigned := model.Feedback{
		Title: "unassigned", Description: "d", Category: "GENERAL",
		Status: model.FeedbackSubmitted, Priority: model.PriorityMedium,
		SubmittedBy: emp.ID,
	}
	require.NoError(t, gdb.Create(&assigned).Error)
	require.NoError(t, gdb.Create(&unassigned).Error)

	w := doJSON(t, srv, http.MethodGet, "/api/feedback?assigned=true", accessToken(t, super), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = doJSON(t, srv, http.MethodGet, "/api/feedback?assigned=false", accessToken(t, super), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	items := body["feedback"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "unassigned", items[0].(map[string]any)["title"])
}

// --- Duplicate-key translation ---------------------------------------------

func TestDuplicateInsert_TranslatesToConflict(t *testing.T) {
	srv, gdb := newTestServer(t)
	emp := createUser(t, gdb, model.RoleEmployee, true)
	creator := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPost, "/api/channels", accessToken(t, creator), map[string]any{
		"name": "general",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The driver reports unique violations as gorm.ErrDuplicatedKey, so a
	// second writer losing an insert race gets a mappable error rather than
	// an opaque one.
	var channel model.Channel
	require.NoError(t, gdb.First(&channel).Error)
	require.NoError(t, gdb.Create(&model.ChannelMember{UserID: emp.ID, ChannelID: channel.ID, Role: "MEMBER"}).Error)
	err := gdb.Create(&model.ChannelMember{UserID: emp.ID, ChannelID: channel.ID, Role: "MEMBER"}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

// --- Vendor review lifecycle -----------------------------------------------

func TestVendorLifecycle_ForwardThroughApproval(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	super := createUser(t, gdb, model.RoleSuperAdmin, true)
	vendor := createUser(t, gdb, model.RoleVendor, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	fb := model.Feedback{
		Title: "Leaking roof", Description: "d", Category: "WORKPLACE",
		Status: model.FeedbackInProgress, Priority: model.PriorityHigh,
		SubmittedBy: emp.ID, AssignedTo: &hr.ID,
	}
	require.NoError(t, gdb.Create(&fb).Error)

	forwardPath := fmt.Sprintf("/api/admin/feedback/%d/forward-vendor", fb.ID)
	approvePath := fmt.Sprintf("/api/superadmin/feedback/%d/vendor-approve", fb.ID)

	// Employees never reach the forwarding route.
	w := doJSON(t, srv, http.MethodPost, forwardPath, accessToken(t, emp),
		map[string]any{"vendor_id": vendor.ID, "message": "Please inspect"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Only active vendors can be targets.
	w = doJSON(t, srv, http.MethodPost, forwardPath, accessToken(t, hr),
		map[string]any{"vendor_id": emp.ID, "message": "Please inspect"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No decision is possible before the item reaches the review queue.
	w = doJSON(t, srv, http.MethodPost, approvePath, accessToken(t, super),
		map[string]any{"action": "APPROVE"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// HR forwards with the default seven-day deadline.
	w = doJSON(t, srv, http.MethodPost, forwardPath, accessToken(t, hr),
		map[string]any{"vendor_id": vendor.ID, "message": "Please inspect"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got model.Feedback
	require.NoError(t, gdb.First(&got, fb.ID).Error)
	require.NotNil(t, got.VendorAssignedTo)
	assert.Equal(t, vendor.ID, *got.VendorAssignedTo)
	assert.Equal(t, model.VendorPending, *got.VendorStatus)
	require.NotNil(t, got.VendorDueAt)
	assert.True(t, got.VendorDueAt.After(time.Now().Add(6*24*time.Hour)))

	var comment model.FeedbackComment
	require.NoError(t, gdb.Where("feedback_id = ?", fb.ID).First(&comment).Error)
	assert.True(t, comment.IsInternal)
	assert.Equal(t, "Please inspect", comment.Comment)

	var forwarded model.AuditLog
	require.NoError(t, gdb.Where("action = ?", "FORWARD_VENDOR").First(&forwarded).Error)
	require.NotNil(t, forwarded.EntityID)
	assert.EqualValues(t, fb.ID, *forwarded.EntityID)

	// Sending for review flips the state and notifies every superadmin.
	reviewPath := fmt.Sprintf("/api/admin/feedback/%d/request-approval", fb.ID)
	w = doJSON(t, srv, http.MethodPost, reviewPath, accessToken(t, hr), map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, gdb.First(&got, fb.ID).Error)
	assert.Equal(t, model.VendorAwaitingApproval, *got.VendorStatus)

	var note model.Notification
	require.NoError(t, gdb.Where("user_id = ? AND type = ?", super.ID, model.NotificationSuperAdminReview).
		First(&note).Error)

	// Re-requesting review from the queue is rejected.
	w = doJSON(t, srv, http.MethodPost, reviewPath, accessToken(t, hr), map[string]any{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The superadmin decision closes the loop.
	w = doJSON(t, srv, http.MethodPost, approvePath, accessToken(t, super),
		map[string]any{"action": "APPROVE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, gdb.First(&got, fb.ID).Error)
	assert.Equal(t, model.VendorApproved, *got.VendorStatus)

	// A second decision has nothing left to decide.
	w = doJSON(t, srv, http.MethodPost, approvePath, accessToken(t, super),
		map[string]any{"action": "REJECT"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFeedbackTimeline_StaffAndAssignedVendorOnly(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	vendor := createUser(t, gdb, model.RoleVendor, true)
	otherVendor := createUser(t, gdb, model.RoleVendor, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	fb := model.Feedback{
		Title: "Elevator outage", Description: "d", Category: "WORKPLACE",
		Status: model.FeedbackInProgress, Priority: model.PriorityHigh,
		SubmittedBy: emp.ID, AssignedTo: &hr.ID,
	}
	require.NoError(t, gdb.Create(&fb).Error)

	w := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/admin/feedback/%d/forward-vendor", fb.ID),
		accessToken(t, hr), map[string]any{"vendor_id": vendor.ID, "message": "Fix it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	path := fmt.Sprintf("/api/feedback/%d/timeline", fb.ID)

	// Submitters outside the staff band see statuses, not the audit trail.
	w = doJSON(t, srv, http.MethodGet, path, accessToken(t, emp), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Vendors only see the trail of their own assignments.
	w = doJSON(t, srv, http.MethodGet, path, accessToken(t, otherVendor), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodGet, path, accessToken(t, vendor), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, srv, http.MethodGet, path, accessToken(t, hr), nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode(t, w)["events"].([]any)
	require.NotEmpty(t, events)
	assert.Equal(t, "FORWARD_VENDOR", events[0].(map[string]any)["action"])
}

// --- Direct conversations --------------------------------------------------

func TestDirectConversations_StartAndReuse(t *testing.T) {
	srv, gdb := newTestServer(t)
	a := createUser(t, gdb, model.RoleEmployee, true)
	b := createUser(t, gdb, model.RoleEmployee, true)
	inactive := createUser(t, gdb, model.RoleEmployee, false)

	w := doJSON(t, srv, http.MethodPost, "/api/direct-conversations", accessToken(t, a),
		map[string]any{"target_user_id": a.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/direct-conversations", accessToken(t, a),
		map[string]any{"target_user_id": inactive.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/direct-conversations", accessToken(t, a),
		map[string]any{"target_user_id": b.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	require.Len(t, created["participants"].([]any), 2)

	// The same pair resolves to the existing thread, whoever starts it.
	w = doJSON(t, srv, http.MethodPost, "/api/direct-conversations", accessToken(t, b),
		map[string]any{"target_user_id": a.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, created["id"], decode(t, w)["id"])
}

func TestDirectConversations_MessagingFlow(t *testing.T) {
	srv, gdb := newTestServer(t)
	a := createUser(t, gdb, model.RoleEmployee, true)
	b := createUser(t, gdb, model.RoleEmployee, true)
	outsider := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPost, "/api/direct-conversations", accessToken(t, a),
		map[string]any{"target_user_id": b.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	conversationID := decode(t, w)["id"].(float64)

	messagesPath := fmt.Sprintf("/api/direct-conversations/%.0f/messages", conversationID)

	// Non-participants are locked out.
	w = doJSON(t, srv, http.MethodGet, messagesPath, accessToken(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodPost, messagesPath, accessToken(t, a),
		map[string]any{"content": "Lunch at noon?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msgID := decode(t, w)["id"].(float64)

	// The other party is notified and sees the thread as unread.
	var note model.Notification
	require.NoError(t, gdb.Where("user_id = ? AND type = ?", b.ID, model.NotificationDirectMessage).
		First(&note).Error)

	w = doJSON(t, srv, http.MethodGet, "/api/direct-conversations", accessToken(t, b), nil)
	require.Equal(t, http.StatusOK, w.Code)
	threads := decode(t, w)["conversations"].([]any)
	require.Len(t, threads, 1)
	assert.Equal(t, true, threads[0].(map[string]any)["has_unread"])

	// A bare read receipt advances to the latest message.
	w = doJSON(t, srv, http.MethodPatch,
		fmt.Sprintf("/api/direct-conversations/%.0f/read-receipt", conversationID),
		accessToken(t, b), map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, msgID, decode(t, w)["last_read_message_id"])

	w = doJSON(t, srv, http.MethodGet, "/api/direct-conversations", accessToken(t, b), nil)
	require.Equal(t, http.StatusOK, w.Code)
	threads = decode(t, w)["conversations"].([]any)
	assert.Equal(t, false, threads[0].(map[string]any)["has_unread"])

	// Receipts outside the thread do not stick.
	w = doJSON(t, srv, http.MethodPatch,
		fmt.Sprintf("/api/direct-conversations/%.0f/read-receipt", conversationID),
		accessToken(t, b), map[string]any{"last_read_message_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDirectConversations_RecipientSearch(t *testing.T) {
	srv, gdb := newTestServer(t)
	a := createUser(t, gdb, model.RoleEmployee, true)
	b := createUser(t, gdb, model.RoleEmployee, true)
	createUser(t, gdb, model.RoleEmployee, false) // deactivated, never listed

	w := doJSON(t, srv, http.MethodGet, "/api/direct-conversations/recipients", accessToken(t, a), nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode(t, w)["users"].([]any)
	require.Len(t, users, 1)
	assert.EqualValues(t, b.ID, users[0].(map[string]any)["id"])

	w = doJSON(t, srv, http.MethodGet, "/api/direct-conversations/recipients?q="+b.Email, accessToken(t, a), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["users"].([]any), 1)

	w = doJSON(t, srv, http.MethodGet, "/api/direct-conversations/recipients?q=no-such-person", accessToken(t, a), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["users"])
}

// --- Audit trail and dashboard ---------------------------------------------

func TestAdminAuditLogs_RecordsPrivilegedActions(t *testing.T) {
	srv, gdb := newTestServer(t)
	super := createUser(t, gdb, model.RoleSuperAdmin, true)
	admin := createUser(t, gdb, model.RoleAdmin, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	w := doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", emp.ID),
		accessToken(t, super), map[string]any{"role": "HR"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, srv, http.MethodGet, "/api/admin/audit-logs", accessToken(t, emp), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/admin/audit-logs", accessToken(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["page"])
	logs := body["logs"].([]any)
	require.Len(t, logs, 1)
	entry := logs[0].(map[string]any)
	assert.Equal(t, "UPDATE_USER_ROLE", entry["action"])
	assert.Contains(t, entry["details"], "EMPLOYEE")
	assert.Contains(t, entry["details"], "HR")
}

func TestAdminFeedbackStats_Dashboard(t *testing.T) {
	srv, gdb := newTestServer(t)
	hr := createUser(t, gdb, model.RoleHR, true)
	emp := createUser(t, gdb, model.RoleEmployee, true)

	rows := []model.Feedback{
		{Title: "done", Description: "d", Category: "GENERAL",
			Status: model.FeedbackResolved, Priority: model.PriorityMedium, SubmittedBy: emp.ID},
		{Title: "urgent", Description: "d", Category: "WORKPLACE",
			Status: model.FeedbackSubmitted, Priority: model.PriorityUrgent, SubmittedBy: emp.ID},
		{Title: "open", Description: "d", Category: "GENERAL",
			Status: model.FeedbackSubmitted, Priority: model.PriorityMedium, SubmittedBy: emp.ID},
	}
	for i := range rows {
		require.NoError(t, gdb.Create(&rows[i]).Error)
	}

	w := doJSON(t, srv, http.MethodGet, "/api/admin/feedback-stats", accessToken(t, emp), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/admin/feedback-stats", accessToken(t, hr), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 3, body["total_complaints"])
	assert.EqualValues(t, 1, body["urgent_count"])
	assert.Equal(t, "33.3", body["resolution_rate"])
	assert.Equal(t, "100.0%", body["sla_compliance"])
	assert.Equal(t, "0.0h", body["avg_response_time"])

	distribution := body["status_distribution"].([]any)
	require.Len(t, distribution, 2)
	assert.Equal(t, model.FeedbackSubmitted, distribution[0].(map[string]any)["name"])
	assert.EqualValues(t, 2, distribution[0].(map[string]any)["value"])

	trends := body["trends"].([]any)
	require.Len(t, trends, 7)
	today := trends[6].(map[string]any)
	assert.EqualValues(t, 3, today["complaints"])
	assert.EqualValues(t, 1, today["resolved"])
}
