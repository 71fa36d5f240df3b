package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"appointly/internal/core/auth"
	"appointly/internal/domain"
	"appointly/internal/repo"
	"appointly/internal/repo/sqlitetest"
	"appointly/internal/service"
	"appointly/internal/service/ports/mocks"
	"appointly/internal/storage"
	"appointly/internal/transport/http/handler"
	"appointly/internal/transport/http/router"
)

func init() { gin.SetMode(gin.TestMode) }

const cookieName = "appointly_session"

type envelope struct {
	Code  int             `json:"code"`
	Msg   string          `json:"msg"`
	Field string          `json:"field"`
	Data  json.RawMessage `json:"data"`
}

type app struct {
	api, admin *gin.Engine
	jwt        *auth.JWTer
	users      *repo.UserRepo
	mailer     *mocks.Mailer
	uploadDir  string
	lastOTP    string
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := sqlitetest.Open(t)
	log := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "appointly", TTL: time.Hour}

	notifier := &mocks.Notifier{}
	notifier.On("NotifyAdminNewBooking", mock.Anything, mock.Anything).Return().Maybe()
	notifier.On("NotifyUserConfirmed", mock.Anything, mock.Anything).Return().Maybe()
	notifier.On("NotifyUserCancelled", mock.Anything, mock.Anything).Return().Maybe()
	notifier.On("NotifyWelcome", mock.Anything, mock.Anything).Return().Maybe()

	a := &app{jwt: jwter, users: repo.NewUserRepo(db), mailer: &mocks.Mailer{}, uploadDir: t.TempDir()}
	a.mailer.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { a.lastOTP = args.String(2) }).
		Return(nil).Maybe()

	files, err := storage.NewLocal(a.uploadDir, "/uploads")
	require.NoError(t, err)

	slotRepo := repo.NewSlotRepo(db)
	blockedRepo := repo.NewBlockedDateRepo(db)
	slots := service.NewSlotService(slotRepo, blockedRepo, log)
	bookings := service.NewBookingService(repo.NewTransactor(db), repo.NewBookingRepo(db), slots, notifier, log)
	blocked := service.NewBlockedDateService(blockedRepo, log)
	accounts := service.NewAccountService(service.AccountDeps{
		Users:    a.users,
		OTPs:     repo.NewOTPRepo(db),
		Mailer:   a.mailer,
		Tokens:   jwter,
		Files:    files,
		Notifier: notifier,
		Log:      log,
		OTPTTL:   10 * time.Minute,
	})

	reg := (&router.Registry{}).Register(
		handler.NewAccountHandler(accounts, log, handler.Cookie{Name: cookieName, TTL: time.Hour}, 1<<20),
		handler.NewSlotHandler(slots, log),
		handler.NewBookingHandler(bookings, log),
		handler.NewBlockedDateHandler(blocked, log),
	)
	opt := router.Options{CookieName: cookieName, UploadDir: a.uploadDir}
	a.api = router.NewAPIEngine(log, jwter, opt, reg)
	a.admin = router.NewAdminEngine(log, jwter, opt, reg)
	return a
}

func (a *app) user(t *testing.T, name string, role domain.Role) string {
	t.Helper()
	u := &domain.User{ID: uuid.NewString(), Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role, Name: name}
	require.NoError(t, a.users.Create(context.Background(), u))
	tok, err := a.jwt.Issue(u.ID, string(role))
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func createSlot(t *testing.T, a *app, admin, date string, capacity int) domain.TimeSlot {
	t.Helper()
	w, env := call(t, a.api, http.MethodPost, "/api/v1/slots", admin, gin.H{
		"date": date, "startTime": "09:00", "endTime": "10:00", "capacity": capacity,
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Msg)
	return decode[domain.TimeSlot](t, env)
}

func TestSlots(t *testing.T) {
	a := newApp(t)
	admin := a.user(t, "root", domain.RoleAdmin)
	alice := a.user(t, "alice", domain.RoleCustomer)

	w, env := call(t, a.api, http.MethodGet, "/api/v1/slots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	in := gin.H{"date": "2030-01-02", "startTime": "09:00", "endTime": "10:00"}
	w, _ = call(t, a.api, http.MethodPost, "/api/v1/slots", "", in)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = call(t, a.api, http.MethodPost, "/api/v1/slots", alice, in)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = call(t, a.api, http.MethodPost, "/api/v1/slots", admin, gin.H{"date": "02/01/2030", "startTime": "09:00", "endTime": "10:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "date", env.Field)

	w, env = call(t, a.api, http.MethodPost, "/api/v1/slots", admin, in)
	require.Equal(t, http.StatusCreated, w.Code)
	slot := decode[domain.TimeSlot](t, env)
	assert.Equal(t, 1, slot.Capacity)
	assert.Equal(t, 0, slot.BookedCount)

	createSlot(t, a, admin, "2030-01-05", 2)
	w, env = call(t, a.api, http.MethodGet, "/api/v1/slots?date=2030-01-02", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.TimeSlot](t, env), 1)
	_, env = call(t, a.api, http.MethodGet, "/api/v1/slots?startDate=2030-01-01&endDate=2030-01-31", "", nil)
	assert.Len(t, decode[[]domain.TimeSlot](t, env), 2)

	w, _ = call(t, a.api, http.MethodDelete, "/api/v1/slots/"+slot.ID, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(t, a.api, http.MethodDelete, "/api/v1/slots/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(t, a.api, http.MethodPost, "/api/v1/bookings", alice, gin.H{"slotId": slot.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = call(t, a.api, http.MethodDelete, "/api/v1/slots/"+slot.ID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	free := createSlot(t, a, admin, "2030-01-03", 1)
	w, _ = call(t, a.api, http.MethodDelete, "/api/v1/slots/"+free.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBlockedDates(t *testing.T) {
	a := newApp(t)
	admin := a.user(t, "root", domain.RoleAdmin)
	alice := a.user(t, "alice", domain.RoleCustomer)

	w, _ := call(t, a.api, http.MethodPost, "/api/v1/blocked-dates", alice, gin.H{"date": "2030-12-25"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := call(t, a.api, http.MethodPost, "/api/v1/blocked-dates", admin, gin.H{"date": "2030-12-25", "reason": "holiday"})
	require.Equal(t, http.StatusCreated, w.Code)
	d := decode[domain.BlockedDate](t, env)
	assert.Equal(t, "holiday", d.Reason)

	w, env = call(t, a.api, http.MethodPost, "/api/v1/slots", admin, gin.H{"date": "2030-12-25", "startTime": "09:00", "endTime": "10:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Msg, "blocked")

	_, env = call(t, a.api, http.MethodGet, "/api/v1/blocked-dates", "", nil)
	assert.Len(t, decode[[]domain.BlockedDate](t, env), 1)

	w, _ = call(t, a.api, http.MethodDelete, "/api/v1/blocked-dates/"+d.ID, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(t, a.api, http.MethodDelete, "/api/v1/blocked-dates/"+d.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = call(t, a.api, http.MethodDelete, "/api/v1/blocked-dates/"+d.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	createSlot(t, a, admin, "2030-12-25", 1)
}

func TestBookings(t *testing.T) {
	a := newApp(t)
	admin := a.user(t, "root", domain.RoleAdmin)
	alice := a.user(t, "alice", domain.RoleCustomer)
	bob := a.user(t, "bob", domain.RoleCustomer)
	slot := createSlot(t, a, admin, "2030-02-01", 1)

	w, _ := call(t, a.api, http.MethodPost, "/api/v1/bookings", "", gin.H{"slotId": slot.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = call(t, a.api, http.MethodPost, "/api/v1/bookings", alice, gin.H{"slotId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := call(t, a.api, http.MethodPost, "/api/v1/bookings", alice, gin.H{"slotId": slot.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[domain.Booking](t, env)
	assert.Equal(t, domain.BookingPending, b.Status)
	require.NotNil(t, b.Slot)
	assert.Equal(t, "2030-02-01", b.Slot.Date)

	w, _ = call(t, a.api, http.MethodPost, "/api/v1/bookings", bob, gin.H{"slotId": slot.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, a.api, http.MethodGet, "/api/v1/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, env = call(t, a.api, http.MethodGet, "/api/v1/bookings", bob, nil)
	assert.Empty(t, decode[[]domain.Booking](t, env))
	_, env = call(t, a.api, http.MethodGet, "/api/v1/bookings", alice, nil)
	assert.Len(t, decode[[]domain.Booking](t, env), 1)
	_, env = call(t, a.api, http.MethodGet, "/api/v1/bookings", admin, nil)
	assert.Len(t, decode[[]domain.Booking](t, env), 1)

	w, _ = call(t, a.api, http.MethodGet, "/api/v1/bookings/"+b.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(t, a.api, http.MethodGet, "/api/v1/bookings/"+b.ID, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	confirm := "/api/v1/bookings/" + b.ID + "/confirm"
	w, _ = call(t, a.api, http.MethodPatch, confirm, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = call(t, a.api, http.MethodPatch, "/api/v1/bookings/missing/confirm", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, env = call(t, a.api, http.MethodPatch, confirm, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.BookingConfirmed, decode[domain.Booking](t, env).Status)
	w, _ = call(t, a.api, http.MethodPatch, confirm, admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	cancel := "/api/v1/bookings/" + b.ID + "/cancel"
	w, _ = call(t, a.api, http.MethodPatch, cancel, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = call(t, a.api, http.MethodPatch, cancel, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.BookingCancelled, decode[domain.Booking](t, env).Status)
	w, _ = call(t, a.api, http.MethodPatch, cancel, alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = call(t, a.api, http.MethodPatch, "/api/v1/bookings/missing/cancel", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 取消后名额释放
	w, _ = call(t, a.api, http.MethodPost, "/api/v1/bookings", bob, gin.H{"slotId": slot.ID})
	assert.Equal(t, http.StatusCreated, w.Code)
	_, env = call(t, a.api, http.MethodGet, "/api/v1/slots?date=2030-02-01", "", nil)
	slots := decode[[]domain.TimeSlot](t, env)
	require.Len(t, slots, 1)
	assert.Equal(t, 1, slots[0].BookedCount)
}

func TestAccount(t *testing.T) {
	a := newApp(t)

	w, env := call(t, a.api, http.MethodPost, "/api/v1/send-otp", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", env.Field)

	w, _ = call(t, a.api, http.MethodPost, "/api/v1/send-otp", "", gin.H{"email": "Dana@Example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, a.lastOTP, 6)

	reg := gin.H{"username": "dana", "password": "secret1", "email": "dana@example.com", "name": "Dana", "otp": "000000x"}
	w, env = call(t, a.api, http.MethodPost, "/api/v1/register", "", reg)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "otp", env.Field)

	reg["otp"] = a.lastOTP
	w, env = call(t, a.api, http.MethodPost, "/api/v1/register", "", reg)
	require.Equal(t, http.StatusCreated, w.Code, env.Msg)
	var sess struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "dana", sess.User.Username)
	assert.Equal(t, domain.RoleCustomer, sess.User.Role)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// cookie 会话
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	a.api.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w, _ = call(t, a.api, http.MethodGet, "/api/v1/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = call(t, a.api, http.MethodPatch, "/api/v1/user", sess.Token, gin.H{"name": "Dana S", "phone": "0812345678"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dana S", decode[domain.User](t, env).Name)
	w, env = call(t, a.api, http.MethodPatch, "/api/v1/user", sess.Token, gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", env.Field)
	w, _ = call(t, a.api, http.MethodPatch, "/api/v1/user", "", gin.H{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, a.api, http.MethodPost, "/api/v1/login", "", gin.H{"username": "dana", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = call(t, a.api, http.MethodPost, "/api/v1/login", "", gin.H{"username": "dana", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, a.api, http.MethodPost, "/api/v1/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Result().Cookies())
	assert.True(t, w.Result().Cookies()[0].MaxAge < 0)

	w, _ = call(t, a.api, http.MethodPost, "/api/v1/send-otp", "", gin.H{"email": "dana@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func upload(t *testing.T, r *gin.Engine, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	a := newApp(t)
	alice := a.user(t, "alice", domain.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, upload(t, a.api, "", "a.png", "img").Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, a.api, alice, "a.exe", "bin").Code)

	w := upload(t, a.api, alice, "avatar.PNG", "img")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	out := decode[struct {
		URL string `json:"url"`
	}](t, env)
	require.True(t, strings.HasPrefix(out.URL, "/uploads/"))

	b, err := os.ReadFile(filepath.Join(a.uploadDir, strings.TrimPrefix(out.URL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))

	rec := httptest.NewRecorder()
	a.api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, out.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminEngine(t *testing.T) {
	a := newApp(t)
	admin := a.user(t, "root", domain.RoleAdmin)
	alice := a.user(t, "alice", domain.RoleCustomer)

	w, _ := call(t, a.admin, http.MethodGet, "/admin/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = call(t, a.admin, http.MethodGet, "/admin/v1/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := call(t, a.admin, http.MethodGet, "/admin/v1/users?q=ali", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[struct {
		Total int64         `json:"total"`
		Items []domain.User `json:"items"`
	}](t, env)
	assert.EqualValues(t, 1, users.Total)
	require.Len(t, users.Items, 1)
	assert.Equal(t, "alice", users.Items[0].Username)

	w, env = call(t, a.admin, http.MethodPost, "/admin/v1/slots", admin, gin.H{"date": "2030-03-01", "startTime": "09:00", "endTime": "10:00"})
	require.Equal(t, http.StatusCreated, w.Code)
	slot := decode[domain.TimeSlot](t, env)

	w, _ = call(t, a.api, http.MethodPost, "/api/v1/bookings", alice, gin.H{"slotId": slot.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	_, env = call(t, a.admin, http.MethodGet, "/admin/v1/bookings", admin, nil)
	assert.Len(t, decode[[]domain.Booking](t, env), 1)

	// 后台没有注册/登录接口
	w, _ = call(t, a.admin, http.MethodPost, "/admin/v1/login", admin, gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)
	for _, r := range []*gin.Engine{a.api, a.admin} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "appointly_http_requests_total")
	}
}
