package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gate-access-backend/models"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh named in-memory SQLite database. The shared cache
// keeps every pooled connection on the same store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared&_busy_timeout=5000", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Room{},
		&models.Checkpoint{},
		&models.Guest{},
		&models.Booking{},
		&models.AccessLog{},
		&models.Luggage{},
		&models.LuggageScanLog{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedStay creates a host, property, room and one guest with a booking in the
// given window. Returns the booking with its QR token populated.
func seedStay(t *testing.T, db *gorm.DB, nationalID string, checkIn, checkOut time.Time, status string) (*models.Booking, *models.Guest) {
	t.Helper()
	host := models.User{Name: "Host", Email: fmt.Sprintf("host%d@test.local", testDBSeq.Add(1)), Role: models.RoleHost}
	if err := db.Create(&host).Error; err != nil {
		t.Fatalf("seed host: %v", err)
	}
	prop := models.Property{OwnerID: host.ID, Name: "Test Villas"}
	if err := db.Create(&prop).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	room := models.Room{PropertyID: prop.ID, Name: "Room 1"}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	guest := models.Guest{FullName: "Test Guest", NationalIDNumber: nationalID}
	if err := db.Create(&guest).Error; err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	token := fmt.Sprintf("tok-%d", testDBSeq.Add(1))
	booking := models.Booking{
		GuestID:     guest.ID,
		RoomID:      room.ID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Status:      status,
		GuestsCount: 1,
		QRToken:     &token,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return &booking, &guest
}
