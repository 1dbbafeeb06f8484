package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gate-access-backend/models"
)

func countLuggageLogs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.LuggageScanLog{}).Count(&n).Error)
	return n
}

func seedLuggage(t *testing.T, db *gorm.DB, status string) *models.Luggage {
	t.Helper()
	booking, _ := seedStay(t, db, "12345678",
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		models.BookingBooked)
	svc := NewLuggageService(db)
	lug, err := svc.Register(booking.ID, "Black duffel", "large", "")
	require.NoError(t, err)
	if status != models.LuggagePending {
		require.NoError(t, db.Model(lug).Update("status", status).Error)
		lug.Status = status
	}
	return lug
}

func TestLuggageRegisterDefaults(t *testing.T) {
	db := newTestDB(t)
	lug := seedLuggage(t, db, models.LuggagePending)

	assert.Equal(t, models.LuggagePending, lug.Status)
	assert.Equal(t, "large", lug.Size)
	assert.NotEmpty(t, lug.QRToken)
}

func TestLuggageScanPendingExits(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)
	lug := seedLuggage(t, db, models.LuggagePending)

	res, err := svc.Scan(1, 1, lug.QRToken, time.Now())
	require.NoError(t, err)

	assert.Equal(t, models.DecisionAllow, res.Decision)
	assert.Equal(t, "Authorized to exit.", res.Message)
	require.NotNil(t, res.Info)
	assert.Equal(t, models.LuggageExited, res.Info.Status)
	assert.Equal(t, "Test Guest", res.Info.GuestName)

	var stored models.Luggage
	require.NoError(t, db.First(&stored, lug.ID).Error)
	assert.Equal(t, models.LuggageExited, stored.Status)
	assert.EqualValues(t, 1, countLuggageLogs(t, db))
}

func TestLuggageScanTwiceDeniesSecond(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)
	lug := seedLuggage(t, db, models.LuggagePending)

	first, err := svc.Scan(1, 1, lug.QRToken, time.Now())
	require.NoError(t, err)
	require.Equal(t, models.DecisionAllow, first.Decision)

	second, err := svc.Scan(1, 1, lug.QRToken, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, second.Decision)
	assert.Equal(t, "Already exited.", second.Message)

	// One row per scan, allow and deny alike.
	assert.EqualValues(t, 2, countLuggageLogs(t, db))
}

func TestLuggageScanBlocked(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)
	lug := seedLuggage(t, db, models.LuggageBlocked)

	res, err := svc.Scan(1, 1, lug.QRToken, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, "Blocked item.", res.Message)

	var stored models.Luggage
	require.NoError(t, db.First(&stored, lug.ID).Error)
	assert.Equal(t, models.LuggageBlocked, stored.Status)
}

func TestLuggageScanUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)

	res, err := svc.Scan(1, 1, "bogus-token", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, "QR not recognized.", res.Message)

	var logged models.LuggageScanLog
	require.NoError(t, db.First(&logged).Error)
	assert.EqualValues(t, 0, logged.LuggageID)
}

func TestLuggageScanEmptyTokenLogged(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)

	res, err := svc.Scan(1, 1, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeny, res.Decision)
	assert.Equal(t, "no_qr", res.Reason)
	assert.EqualValues(t, 1, countLuggageLogs(t, db))
}

func TestLuggageBlockUnblockRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)
	lug := seedLuggage(t, db, models.LuggagePending)

	blocked, err := svc.Block(lug.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LuggageBlocked, blocked.Status)

	unblocked, err := svc.Unblock(lug.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LuggagePending, unblocked.Status)
}

func TestLuggageExitedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)
	lug := seedLuggage(t, db, models.LuggageExited)

	_, err := svc.Block(lug.ID)
	assert.ErrorIs(t, err, ErrLuggageExited)

	_, err = svc.Unblock(lug.ID)
	assert.ErrorIs(t, err, ErrLuggageExited)

	var stored models.Luggage
	require.NoError(t, db.First(&stored, lug.ID).Error)
	assert.Equal(t, models.LuggageExited, stored.Status)
}

func TestLuggageConcurrentScansSingleAllow(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)
	lug := seedLuggage(t, db, models.LuggagePending)

	results := make([]*LuggageScanResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Scan(1, 1, lug.QRToken, time.Now())
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	allows := 0
	for _, r := range results {
		if r.Decision == models.DecisionAllow {
			allows++
		}
	}
	assert.Equal(t, 1, allows, "exactly one scan may authorize the exit")

	var allowLogs int64
	require.NoError(t, db.Model(&models.LuggageScanLog{}).
		Where("decision = ?", models.DecisionAllow).Count(&allowLogs).Error)
	assert.EqualValues(t, 1, allowLogs)
	assert.EqualValues(t, 2, countLuggageLogs(t, db))
}

func TestLuggageDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewLuggageService(db)
	lug := seedLuggage(t, db, models.LuggagePending)

	require.NoError(t, svc.Delete(lug.ID))
	assert.ErrorIs(t, svc.Delete(lug.ID), ErrLuggageNotFound)
}
