package services

import (
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"gate-access-backend/models"
	"gate-access-backend/utils"
)

var (
	ErrLuggageNotFound = errors.New("luggage not found")
	ErrLuggageExited   = errors.New("luggage already exited")
)

// LuggageScanResult mirrors ScanResult for the luggage path.
type LuggageScanResult struct {
	Decision string           `json:"decision"`
	Reason   string           `json:"reason,omitempty"`
	Message  string           `json:"message,omitempty"`
	Info     *LuggageExitInfo `json:"info,omitempty"`
}

// LuggageExitInfo is the display payload for a luggage checkpoint.
type LuggageExitInfo struct {
	LuggageID uint   `json:"luggage_id"`
	Label     string `json:"label"`
	Size      string `json:"size"`
	Photo     string `json:"photo,omitempty"`
	Status    string `json:"status"`
	BookingID uint   `json:"booking_id"`
	GuestName string `json:"guest_name"`
	Room      string `json:"room"`
	Property  string `json:"property"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

// LuggageService owns the pending/blocked/exited lifecycle. Exited is
// terminal: it is entered exactly once, on a successful guard scan, and no
// host action moves an item out of it.
type LuggageService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewLuggageService(db *gorm.DB) *LuggageService {
	return &LuggageService{DB: db, Now: LocalNow}
}

// Register creates a pending item with a fresh QR token. A token collision is
// retried once with a new token.
func (s *LuggageService) Register(bookingID uint, label, size, photoPath string) (*models.Luggage, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		return nil, fmt.Errorf("booking lookup: %w", err)
	}
	if size == "" {
		size = "medium"
	}

	for attempt := 0; ; attempt++ {
		token, err := utils.GenerateSecureToken(16)
		if err != nil {
			return nil, err
		}
		lug := models.Luggage{
			BookingID: booking.ID,
			Label:     label,
			Size:      size,
			PhotoPath: photoPath,
			QRToken:   token,
			Status:    models.LuggagePending,
		}
		err = s.DB.Create(&lug).Error
		if err == nil {
			return &lug, nil
		}
		var mysqlErr *mysqldrv.MySQLError
		if attempt == 0 && errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			continue // token collision, regenerate
		}
		return nil, fmt.Errorf("luggage create: %w", err)
	}
}

// Scan decides a luggage checkpoint attempt and writes exactly one
// LuggageScanLog row, whatever the outcome. The pending->exited transition is
// a compare-and-swap on status committed in the same transaction as its log
// row, so two concurrent scans of one token can never both pass: the loser's
// UPDATE matches no row and its verdict degrades to "Already exited.".
func (s *LuggageService) Scan(guardID, checkpointID uint, token string, at time.Time) (*LuggageScanResult, error) {
	if token == "" {
		if err := s.recordScan(s.DB, guardID, checkpointID, 0, models.DecisionDeny, "No QR token detected.", at); err != nil {
			return nil, err
		}
		return &LuggageScanResult{
			Decision: models.DecisionDeny,
			Reason:   "no_qr",
			Message:  "No QR token detected.",
		}, nil
	}

	var lug models.Luggage
	err := s.DB.Where("qr_token = ?", token).First(&lug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.recordScan(s.DB, guardID, checkpointID, 0, models.DecisionDeny, "QR not found", at); err != nil {
			return nil, err
		}
		return &LuggageScanResult{
			Decision: models.DecisionDeny,
			Reason:   ReasonQRNotFound,
			Message:  "QR not recognized.",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("luggage lookup: %w", err)
	}

	decision := models.DecisionDeny
	var message string
	switch lug.Status {
	case models.LuggageExited:
		message = "Already exited."
	case models.LuggageBlocked:
		message = "Blocked item."
	case models.LuggagePending:
		exited, terr := s.tryExit(guardID, checkpointID, lug.ID, at)
		if terr != nil {
			return nil, terr
		}
		if exited {
			decision = models.DecisionAllow
			message = "Authorized to exit."
			lug.Status = models.LuggageExited
		} else {
			message = "Already exited."
		}
	default:
		message = "Blocked item."
	}

	// The allow path already logged inside its transaction.
	if decision == models.DecisionDeny {
		if err := s.recordScan(s.DB, guardID, checkpointID, lug.ID, decision, message, at); err != nil {
			return nil, err
		}
	}

	info, err := s.exitInfo(&lug)
	if err != nil {
		return nil, err
	}
	return &LuggageScanResult{Decision: decision, Message: message, Info: info}, nil
}

// tryExit performs the atomic pending->exited swap plus its audit row.
// Returns false when another scan won the race.
func (s *LuggageService) tryExit(guardID, checkpointID, luggageID uint, at time.Time) (bool, error) {
	won := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Luggage{}).
			Where("id = ? AND status = ?", luggageID, models.LuggagePending).
			Update("status", models.LuggageExited)
		if res.Error != nil {
			return fmt.Errorf("luggage exit update: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil // race lost; caller logs the deny
		}
		won = true
		return s.recordScan(tx, guardID, checkpointID, luggageID, models.DecisionAllow, "Authorized to exit.", at)
	})
	return won, err
}

// Block puts an item on hold. Exited items stay exited.
func (s *LuggageService) Block(luggageID uint) (*models.Luggage, error) {
	return s.setStatus(luggageID, models.LuggageBlocked)
}

// Unblock returns a blocked item to pending. Exited items stay exited; this
// never downgrades a completed exit.
func (s *LuggageService) Unblock(luggageID uint) (*models.Luggage, error) {
	return s.setStatus(luggageID, models.LuggagePending)
}

func (s *LuggageService) setStatus(luggageID uint, status string) (*models.Luggage, error) {
	var lug models.Luggage
	err := s.DB.First(&lug, luggageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLuggageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("luggage lookup: %w", err)
	}
	if lug.Status == models.LuggageExited {
		return &lug, ErrLuggageExited
	}
	if lug.Status == status {
		return &lug, nil
	}
	if err := s.DB.Model(&lug).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("luggage status update: %w", err)
	}
	lug.Status = status
	return &lug, nil
}

// Delete removes a luggage item. Scan logs referencing it are untouched.
func (s *LuggageService) Delete(luggageID uint) error {
	res := s.DB.Delete(&models.Luggage{}, luggageID)
	if res.Error != nil {
		return fmt.Errorf("luggage delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLuggageNotFound
	}
	return nil
}

func (s *LuggageService) GetByID(luggageID uint) (*models.Luggage, []models.LuggageScanLog, error) {
	var lug models.Luggage
	err := s.DB.Preload("Booking.Guest").Preload("Booking.Room.Property").First(&lug, luggageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrLuggageNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	var scans []models.LuggageScanLog
	if err := s.DB.Where("luggage_id = ?", lug.ID).Order("id DESC").Limit(50).Find(&scans).Error; err != nil {
		return nil, nil, err
	}
	return &lug, scans, nil
}

func (s *LuggageService) List(limit int) ([]models.Luggage, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var items []models.Luggage
	err := s.DB.Preload("Booking.Guest").Preload("Booking.Room.Property").
		Order("created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (s *LuggageService) recordScan(tx *gorm.DB, guardID, checkpointID, luggageID uint, decision, note string, at time.Time) error {
	entry := models.LuggageScanLog{
		Timestamp:    at,
		GuardID:      guardID,
		CheckpointID: checkpointID,
		LuggageID:    luggageID,
		Decision:     decision,
		Note:         note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("luggage scan log write: %w", err)
	}
	return nil
}

func (s *LuggageService) exitInfo(lug *models.Luggage) (*LuggageExitInfo, error) {
	var booking models.Booking
	if err := s.DB.Preload("Guest").Preload("Room.Property").First(&booking, lug.BookingID).Error; err != nil {
		return nil, fmt.Errorf("booking lookup: %w", err)
	}
	return &LuggageExitInfo{
		LuggageID: lug.ID,
		Label:     lug.Label,
		Size:      lug.Size,
		Photo:     lug.PhotoPath,
		Status:    lug.Status,
		BookingID: booking.ID,
		GuestName: booking.Guest.FullName,
		Room:      booking.Room.Name,
		Property:  booking.Room.Property.Name,
		CheckIn:   booking.CheckIn.Format(time.RFC3339),
		CheckOut:  booking.CheckOut.Format(time.RFC3339),
	}, nil
}

// RecentScanLogs returns the newest luggage scan entries for audit views.
func (s *LuggageService) RecentScanLogs(limit int) ([]models.LuggageScanLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var logs []models.LuggageScanLog
	err := s.DB.Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
