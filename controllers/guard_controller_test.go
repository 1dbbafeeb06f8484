package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gate-access-backend/middleware"
	"gate-access-backend/models"
	"gate-access-backend/services"
)

var ctlDBSeq int64

func setupGuardTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctlDBSeq++
	dsn := fmt.Sprintf("file:ctl_test_%d?mode=memory&cache=shared&_busy_timeout=5000", ctlDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Room{}, &models.Checkpoint{},
		&models.Guest{}, &models.Booking{}, &models.AccessLog{},
		&models.Luggage{}, &models.LuggageScanLog{},
	))

	guard := models.User{Name: "Guard", Email: "guard@ctl.local", Role: models.RoleGuard}
	require.NoError(t, db.Create(&guard).Error)

	access := services.NewAccessService(db)
	luggage := services.NewLuggageService(db)
	gc := NewGuardController(access, luggage, services.NewBookingService(db), services.NewOCRClient())

	r := gin.New()
	// Stand-in for the JWT middleware: resolve the seeded guard directly.
	authAs := func(c *gin.Context) {
		var u models.User
		require.NoError(t, db.First(&u, guard.ID).Error)
		c.Set("currentUser", &u)
		c.Next()
	}
	api := r.Group("/api/guard", authAs, middleware.RequireRole(models.RoleGuard))
	api.POST("/scan", gc.ScanPerson)
	api.POST("/scan-qr", gc.ScanBookingQR)
	api.POST("/scan-luggage", gc.ScanLuggage)
	return r, db
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func seedActiveBooking(t *testing.T, db *gorm.DB, nationalID, token string) *models.Booking {
	t.Helper()
	host := models.User{Name: "Host", Email: fmt.Sprintf("host%d@ctl.local", ctlDBSeq), Role: models.RoleHost}
	require.NoError(t, db.Create(&host).Error)
	prop := models.Property{OwnerID: host.ID, Name: "Harbour View"}
	require.NoError(t, db.Create(&prop).Error)
	room := models.Room{PropertyID: prop.ID, Name: "Suite 2"}
	require.NoError(t, db.Create(&room).Error)
	guest := models.Guest{FullName: "Jane Visitor", NationalIDNumber: nationalID}
	require.NoError(t, db.Create(&guest).Error)
	now := time.Now()
	booking := models.Booking{
		GuestID:     guest.ID,
		RoomID:      room.ID,
		CheckIn:     now.Add(-time.Hour),
		CheckOut:    now.Add(24 * time.Hour),
		Status:      models.BookingBooked,
		GuestsCount: 1,
		QRToken:     &token,
	}
	require.NoError(t, db.Create(&booking).Error)
	return &booking
}

func TestScanEndpointAllowsDetectedID(t *testing.T) {
	r, db := setupGuardTest(t)
	seedActiveBooking(t, db, "12345678", "ctl-token-1")

	w := postJSON(t, r, "/api/guard/scan", gin.H{"checkpoint_id": 1, "detected_id": "12345678"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK       bool   `json:"ok"`
		Decision string `json:"decision"`
		Info     *struct {
			GuestName string `json:"guest_name"`
			Property  string `json:"property"`
		} `json:"info"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, models.DecisionAllow, resp.Decision)
	require.NotNil(t, resp.Info)
	assert.Equal(t, "Jane Visitor", resp.Info.GuestName)
	assert.Equal(t, "Harbour View", resp.Info.Property)
}

func TestScanEndpointDenyIsStillOK(t *testing.T) {
	r, _ := setupGuardTest(t)

	w := postJSON(t, r, "/api/guard/scan", gin.H{"checkpoint_id": 1, "detected_id": "00000000"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, models.DecisionDeny, resp["decision"])
	assert.Equal(t, "no_active_booking", resp["reason"])
}

func TestScanEndpointRequiresCheckpoint(t *testing.T) {
	r, _ := setupGuardTest(t)

	w := postJSON(t, r, "/api/guard/scan", gin.H{"detected_id": "12345678"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanQREndpoint(t *testing.T) {
	r, db := setupGuardTest(t)
	seedActiveBooking(t, db, "12345678", "ctl-token-2")

	w := postJSON(t, r, "/api/guard/scan-qr", gin.H{"checkpoint_id": 1, "token": "ctl-token-2"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.DecisionAllow, resp["decision"])

	w = postJSON(t, r, "/api/guard/scan-qr", gin.H{"checkpoint_id": 1, "token": "nope"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.DecisionDeny, resp["decision"])
	assert.Equal(t, "QR not recognized.", resp["message"])
}

func TestScanLuggageEndpoint(t *testing.T) {
	r, db := setupGuardTest(t)
	booking := seedActiveBooking(t, db, "12345678", "ctl-token-3")

	lug := models.Luggage{BookingID: booking.ID, Label: "Duffel", Size: "medium", QRToken: "lug-token-1", Status: models.LuggagePending}
	require.NoError(t, db.Create(&lug).Error)

	w := postJSON(t, r, "/api/guard/scan-luggage", gin.H{"checkpoint_id": 1, "token": "lug-token-1"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.DecisionAllow, resp["decision"])

	w = postJSON(t, r, "/api/guard/scan-luggage", gin.H{"checkpoint_id": 1, "token": "lug-token-1"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.DecisionDeny, resp["decision"])
	assert.Equal(t, "Already exited.", resp["message"])
}

func TestGuardRoutesRejectNonGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	asHost := func(c *gin.Context) {
		c.Set("currentUser", &models.User{ID: 7, Role: models.RoleHost})
		c.Next()
	}
	r.POST("/api/guard/scan", asHost, middleware.RequireRole(models.RoleGuard), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := postJSON(t, r, "/api/guard/scan", gin.H{"checkpoint_id": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"ok": false, "error": "insufficient role"}`, w.Body.String())
}
