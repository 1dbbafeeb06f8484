package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gate-access-backend/models"
)

func countAccessLogs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.AccessLog{}).Count(&n).Error)
	return n
}

func TestScanPersonAllowsActiveBooking(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	checkIn := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	seedStay(t, db, "12345678", checkIn, checkOut, models.BookingBooked)

	at := time.Date(2025, 1, 11, 9, 0, 0, 0, time.UTC)
	res, err := svc.ScanPerson(1, 1, PersonScanInput{DetectedID: "12345678"}, at)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionAllow, res.Decision)
	require.NotNil(t, res.Info)
	assert.Equal(t, "Test Guest", res.Info.GuestName)
	assert.Equal(t, "12345678", res.Info.NationalID)
	assert.Equal(t, "Test Villas", res.Info.Property)
	assert.Equal(t, "Room 1", res.Info.Room)
	assert.EqualValues(t, 1, countAccessLogs(t, db))
}

func TestScanPersonDeniesUnknownID(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	res, err := svc.ScanPerson(1, 1, PersonScanInput{DetectedID: "99999999"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, ReasonNoActiveBooking, res.Reason)
	assert.Nil(t, res.Info)

	var logged models.AccessLog
	require.NoError(t, db.First(&logged).Error)
	assert.Equal(t, "99999999", logged.NationalIDNumber)
	assert.Equal(t, models.DecisionDeny, logged.Decision)
	assert.Nil(t, logged.GuestID)
	assert.Nil(t, logged.BookingID)
}

func TestScanPersonDeniesOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	checkIn := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	_, guest := seedStay(t, db, "12345678", checkIn, checkOut, models.BookingBooked)

	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	res, err := svc.ScanPerson(1, 1, PersonScanInput{DetectedID: "12345678"}, at)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, ReasonNoActiveBooking, res.Reason)

	// Guest resolved even though no window matched.
	var logged models.AccessLog
	require.NoError(t, db.First(&logged).Error)
	require.NotNil(t, logged.GuestID)
	assert.Equal(t, guest.ID, *logged.GuestID)
	assert.Nil(t, logged.BookingID)
}

func TestScanPersonDeniesCancelledBooking(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	checkIn := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	seedStay(t, db, "12345678", checkIn, checkOut, models.BookingCancelled)

	at := time.Date(2025, 1, 11, 9, 0, 0, 0, time.UTC)
	res, err := svc.ScanPerson(1, 1, PersonScanInput{DetectedID: "12345678"}, at)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, ReasonNoActiveBooking, res.Reason)
}

func TestScanPersonOverlappingWindowsPicksLatestCheckout(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	checkIn := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	shortOut := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	longOut := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	_, guest := seedStay(t, db, "12345678", checkIn, shortOut, models.BookingBooked)

	var room models.Room
	require.NoError(t, db.First(&room).Error)
	longer := models.Booking{
		GuestID:  guest.ID,
		RoomID:   room.ID,
		CheckIn:  checkIn,
		CheckOut: longOut,
		Status:   models.BookingBooked,
	}
	require.NoError(t, db.Create(&longer).Error)

	at := time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC)
	res, err := svc.ScanPerson(1, 1, PersonScanInput{DetectedID: "12345678"}, at)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionAllow, res.Decision)
	require.NotNil(t, res.Info)
	assert.Equal(t, longer.ID, res.Info.BookingID)
}

func TestScanPersonEmptyInputStillLogged(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	res, err := svc.ScanPerson(1, 1, PersonScanInput{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, ReasonNoID, res.Reason)
	assert.EqualValues(t, 1, countAccessLogs(t, db))
}

func TestScanPersonOCRTextExtraction(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	checkIn := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	seedStay(t, db, "10345978", checkIn, checkOut, models.BookingBooked)

	at := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	res, err := svc.ScanPerson(1, 1, PersonScanInput{OCRText: "KENYA ID IO345g78 HOLDER"}, at)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionAllow, res.Decision)
}

func TestScanPersonOCRGarbageDenied(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	res, err := svc.ScanPerson(1, 1, PersonScanInput{OCRText: "nothing numeric here"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, ReasonOCRNoIDDetected, res.Reason)
	assert.EqualValues(t, 1, countAccessLogs(t, db))
}

func TestScanBookingQRAllow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	checkIn := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	booking, _ := seedStay(t, db, "12345678", checkIn, checkOut, models.BookingBooked)

	at := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	res, err := svc.ScanBookingQR(1, 1, *booking.QRToken, at)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionAllow, res.Decision)
	require.NotNil(t, res.Info)
	assert.Equal(t, booking.ID, res.Info.BookingID)
	assert.EqualValues(t, 1, countAccessLogs(t, db))
}

func TestScanBookingQRUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	res, err := svc.ScanBookingQR(1, 1, "does-not-exist", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, ReasonQRNotFound, res.Reason)
	assert.EqualValues(t, 1, countAccessLogs(t, db))
}

func TestScanBookingQROutsideWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccessService(db)

	checkIn := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	booking, _ := seedStay(t, db, "12345678", checkIn, checkOut, models.BookingBooked)

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.ScanBookingQR(1, 1, *booking.QRToken, at)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, ReasonNotActive, res.Reason)

	// The deny still resolved the entities for the audit trail.
	var logged models.AccessLog
	require.NoError(t, db.First(&logged).Error)
	require.NotNil(t, logged.BookingID)
	assert.Equal(t, booking.ID, *logged.BookingID)
}

func TestBookingActiveAtBoundaries(t *testing.T) {
	checkIn := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	b := models.Booking{CheckIn: checkIn, CheckOut: checkOut, Status: models.BookingBooked}

	assert.True(t, b.ActiveAt(checkIn), "inclusive lower bound")
	assert.True(t, b.ActiveAt(checkOut), "inclusive upper bound")
	assert.False(t, b.ActiveAt(checkIn.Add(-time.Second)))
	assert.False(t, b.ActiveAt(checkOut.Add(time.Second)))

	b.Status = models.BookingCancelled
	assert.False(t, b.ActiveAt(checkIn.Add(time.Hour)))
}
