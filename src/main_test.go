package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/arslanhfz7-dot/taxi-reserve/src/db"
	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminSecret = "admin-secret-test"
	testCronSecret  = "cron-secret-test"
	testEmail       = "owner@example.com"
	testPassword    = "correct-horse-battery"
)

type recordingSender struct {
	sent []string
}

func (r *recordingSender) Send(to, subject, htmlBody string) error {
	r.sent = append(r.sent, to)
	return nil
}

type ApiTestSuite struct {
	suite.Suite
	router *gin.Engine
	gdb    *gorm.DB
	sender *recordingSender
	token  string
}

func (s *ApiTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("ADMIN_SECRET", testAdminSecret)
	os.Setenv("CRON_SECRET", testCronSecret)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().Nil(err)
	s.Require().Nil(gdb.AutoMigrate(&models.User{}, &models.Reservation{}, &models.Reminder{}))
	db.NewDB(gdb)
	s.gdb = gdb

	registerValidators()
	s.sender = &recordingSender{}
	router := setupRouter()
	guestAuthRoutes(router)
	userRoutes(router)
	adminHandlers(router)
	cronHandlers(router, s.sender)
	s.router = router

	w := s.do(http.MethodPost, "/api/v1/auth/register", fmt.Sprintf(`{"email":%q,"password":%q}`, testEmail, testPassword), "")
	s.Require().Equal(http.StatusCreated, w.Code)
	s.token = s.login(testEmail, testPassword)
}

func (s *ApiTestSuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ApiTestSuite) login(email, password string) string {
	w := s.do(http.MethodPost, "/api/v1/auth/login", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	s.Require().Equal(http.StatusOK, w.Code)
	token := gjson.Get(w.Body.String(), "token").String()
	s.Require().NotEmpty(token)
	return token
}

func (s *ApiTestSuite) createReservation(body string) string {
	w := s.do(http.MethodPost, "/api/v1/reservations", body, s.token)
	s.Require().Equal(http.StatusCreated, w.Code)
	return gjson.Get(w.Body.String(), "reservation.id").String()
}

func (s *ApiTestSuite) TestPing() {
	w := s.do(http.MethodGet, "/", "", "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *ApiTestSuite) TestRegisterRejectsDuplicateAndBadInput() {
	w := s.do(http.MethodPost, "/api/v1/auth/register", fmt.Sprintf(`{"email":%q,"password":%q}`, testEmail, testPassword), "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "already in use")

	w = s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"not-an-email","password":"longenough1"}`, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"new@example.com","password":"short"}`, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ApiTestSuite) TestLoginRejectsBadCredentials() {
	w := s.do(http.MethodPost, "/api/v1/auth/login", fmt.Sprintf(`{"email":%q,"password":"wrong-password"}`, testEmail), "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", `{"email":"nobody@example.com","password":"wrong-password"}`, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ApiTestSuite) TestAuthRequired() {
	w := s.do(http.MethodGet, "/api/v1/reservations", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/reservations", "", "not-a-jwt")
	s.Equal(http.StatusUnauthorized, w.Code)

	// Malformed Authorization headers are rejected, never a server error.
	for _, header := range []string{"Bearer", "Bearer ", "Bearerxyz", "Basic dXNlcjpwdw=="} {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func (s *ApiTestSuite) TestReservationLifecycle() {
	w := s.do(http.MethodPost, "/api/v1/reservations",
		`{"startAt":"2025-06-15T10:00","pickupText":"Airport T1","dropoffText":"Hotel Arts","pax":2}`, s.token)
	s.Require().Equal(http.StatusCreated, w.Code)
	body := w.Body.String()
	id := gjson.Get(body, "reservation.id").String()
	s.Require().NotEmpty(id)

	// Summer wall clock 10:00 resolves to 08:00 UTC.
	s.Equal("2025-06-15T08:00:00Z", gjson.Get(body, "reservation.start_at").String())
	s.Equal("PENDING", gjson.Get(body, "reservation.status").String())

	w = s.do(http.MethodGet, "/api/v1/reservations/"+id, "", s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "data.reminders.#").Int())

	w = s.do(http.MethodPatch, "/api/v1/reservations/"+id, `{"pax":150,"status":"ASSIGNED"}`, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	var reservation models.Reservation
	s.Require().Nil(s.gdb.First(&reservation, "id = ?", id).Error)
	s.Equal(99, reservation.Pax)

	w = s.do(http.MethodDelete, "/api/v1/reservations/"+id, "", s.token)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/reservations/"+id, "", s.token)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ApiTestSuite) TestReservationRejectsInvalidBody() {
	w := s.do(http.MethodPost, "/api/v1/reservations", `{"startAt":"2025-06-15T10:00","pax":0}`, s.token)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/reservations", `{"startAt":"garbage","pax":2}`, s.token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ApiTestSuite) TestReservationOwnershipIsOpaque() {
	id := s.createReservation(`{"startAt":"2025-08-01T12:00","pax":1}`)

	w := s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"intruder@example.com","password":"longenough1"}`, "")
	s.Require().Equal(http.StatusCreated, w.Code)
	otherToken := s.login("intruder@example.com", "longenough1")

	// Someone else's reservation is indistinguishable from a missing one.
	w = s.do(http.MethodGet, "/api/v1/reservations/"+id, "", otherToken)
	s.Equal(http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/reservations/"+id, "", otherToken)
	s.Equal(http.StatusNotFound, w.Code)

	// The row is untouched for the owner.
	w = s.do(http.MethodGet, "/api/v1/reservations/"+id, "", s.token)
	s.Equal(http.StatusOK, w.Code)
}

func (s *ApiTestSuite) TestReservationBulkDelete() {
	a := s.createReservation(`{"startAt":"2025-09-01T09:00","pax":1}`)
	b := s.createReservation(`{"startAt":"2025-09-02T09:00","pax":1}`)

	w := s.do(http.MethodPost, "/api/v1/reservations/bulk-delete",
		fmt.Sprintf(`{"ids":[%q,%q]}`, a, b), s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(2), gjson.Get(w.Body.String(), "deleted").Int())

	var count int64
	s.gdb.Model(&models.Reservation{}).Where("id IN (?)", []string{a, b}).Count(&count)
	s.Equal(int64(0), count)
	s.gdb.Model(&models.Reminder{}).Where("reservation_id IN (?)", []string{a, b}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *ApiTestSuite) TestReminderLifecycle() {
	w := s.do(http.MethodPost, "/api/v1/reminders",
		`{"title":"Confirm driver","dueAt":"2025-06-15T09:00","note":"Call Manolo"}`, s.token)
	s.Require().Equal(http.StatusCreated, w.Code)
	body := w.Body.String()
	id := gjson.Get(body, "data.id").String()
	s.Require().NotEmpty(id)
	s.Equal("2025-06-15T07:00:00Z", gjson.Get(body, "data.due_at").String())

	w = s.do(http.MethodPatch, "/api/v1/reminders/"+id, `{"isDone":true}`, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	var reminder models.Reminder
	s.Require().Nil(s.gdb.First(&reminder, "id = ?", id).Error)
	s.True(reminder.IsDone)

	w = s.do(http.MethodDelete, "/api/v1/reminders/"+id, "", s.token)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/reminders/"+id, "", s.token)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ApiTestSuite) TestReminderIgnoresForeignReservationLink() {
	id := s.createReservation(`{"startAt":"2025-11-20T08:00","pickupText":"Secret pickup","pax":1}`)

	w := s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"linker@example.com","password":"longenough1"}`, "")
	s.Require().Equal(http.StatusCreated, w.Code)
	otherToken := s.login("linker@example.com", "longenough1")

	// Linking someone else's reservation is silently dropped.
	w = s.do(http.MethodPost, "/api/v1/reminders",
		fmt.Sprintf(`{"title":"Peek","dueAt":"2025-11-20T07:30","reservationId":%q}`, id), otherToken)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.False(gjson.Get(w.Body.String(), "data.reservation_id").Exists())

	// The owner's own link sticks.
	w = s.do(http.MethodPost, "/api/v1/reminders",
		fmt.Sprintf(`{"title":"Own","dueAt":"2025-11-20T07:30","reservationId":%q}`, id), s.token)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Equal(id, gjson.Get(w.Body.String(), "data.reservation_id").String())
}

func (s *ApiTestSuite) TestAdminGate() {
	w := s.do(http.MethodGet, "/admin/users", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("x-admin-secret", "wrong")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	// The cron credential does not grant user reads.
	w = s.do(http.MethodGet, "/admin/users?key="+testCronSecret, "", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("x-admin-secret", testAdminSecret)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.GreaterOrEqual(gjson.Get(rec.Body.String(), "count").Int(), int64(1))
}

func (s *ApiTestSuite) TestCronRunGateAndDispatch() {
	w := s.do(http.MethodGet, "/cron/run", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	var owner models.User
	s.Require().Nil(s.gdb.First(&owner, "email = ?", testEmail).Error)
	reminder := models.Reminder{
		UserID: owner.ID,
		Title:  "Pickup soon",
		DueAt:  time.Now().UTC().Add(-time.Minute),
	}
	s.Require().Nil(s.gdb.Create(&reminder).Error)

	before := len(s.sender.sent)
	w = s.do(http.MethodGet, "/cron/run?key="+testCronSecret, "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.GreaterOrEqual(gjson.Get(w.Body.String(), "summary.sent").Int(), int64(1))
	s.Greater(len(s.sender.sent), before)

	var got models.Reminder
	s.Require().Nil(s.gdb.First(&got, "id = ?", reminder.ID).Error)
	s.True(got.IsDone)

	// Dry run previews without sending or marking.
	dry := models.Reminder{
		UserID: owner.ID,
		Title:  "Pickup soon",
		DueAt:  time.Now().UTC().Add(-time.Minute),
	}
	s.Require().Nil(s.gdb.Create(&dry).Error)
	before = len(s.sender.sent)
	w = s.do(http.MethodGet, "/cron/run?dry=true&key="+testCronSecret, "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.True(gjson.Get(w.Body.String(), "summary.dry_run").Bool())
	s.GreaterOrEqual(gjson.Get(w.Body.String(), "summary.items.#").Int(), int64(1))
	s.Equal(before, len(s.sender.sent))
	// A fresh destination struct: gorm folds a populated primary key on the
	// destination into the WHERE clause, which would wrongly exclude dry.ID.
	var gotDry models.Reminder
	s.Require().Nil(s.gdb.First(&gotDry, "id = ?", dry.ID).Error)
	s.False(gotDry.IsDone)
	s.Require().Nil(s.gdb.Delete(&models.Reminder{}, "id = ?", dry.ID).Error)
}

func (s *ApiTestSuite) TestIcsExport() {
	id := s.createReservation(`{"startAt":"2025-10-10T18:00","pickupText":"Plaça Catalunya","pax":4}`)

	w := s.do(http.MethodGet, "/api/v1/ics/"+id, "", s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/calendar")
	s.Contains(w.Header().Get("Content-Disposition"), "placa-catalunya")
	body := w.Body.String()
	s.Contains(body, "BEGIN:VCALENDAR")
	s.Contains(body, "BEGIN:VALARM")
	s.Contains(body, "TRIGGER:-PT45M")
	// 18:00 Madrid summer time is 16:00 UTC.
	s.Contains(body, "DTSTART:20251010T160000Z")

	w = s.do(http.MethodGet, "/api/v1/ics/"+id, "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ApiTestSuite) TestChangePassword() {
	w := s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"rotate@example.com","password":"firstpassword"}`, "")
	s.Require().Equal(http.StatusCreated, w.Code)
	token := s.login("rotate@example.com", "firstpassword")

	w = s.do(http.MethodPost, "/api/v1/user/change-password",
		`{"currentPassword":"wrong","newPassword":"secondpassword"}`, token)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/user/change-password",
		`{"currentPassword":"firstpassword","newPassword":"secondpassword"}`, token)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", `{"email":"rotate@example.com","password":"firstpassword"}`, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.login("rotate@example.com", "secondpassword")
}

func TestApiTestSuite(t *testing.T) {
	suite.Run(t, new(ApiTestSuite))
}
