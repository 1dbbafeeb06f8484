package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"gate-access-backend/models"
)

// Deny reason codes surfaced in scan responses.
const (
	ReasonNoID            = "no_id"
	ReasonOCRNoIDDetected = "ocr_no_id_detected"
	ReasonNoActiveBooking = "no_active_booking"
	ReasonQRNotFound      = "qr_not_found"
	ReasonNotActive       = "booking_not_active"
)

// PersonScanInput carries whatever identity signal the checkpoint produced.
// DetectedID comes from client-side OCR or manual entry; OCRText is the raw
// server-side OCR output. Either may be empty.
type PersonScanInput struct {
	DetectedID string
	OCRText    string
	ImagePath  string
}

// ScanResult is the verdict of one scan attempt plus the display payload for
// the checkpoint screen.
type ScanResult struct {
	Decision string            `json:"decision"`
	Reason   string            `json:"reason,omitempty"`
	Message  string            `json:"message,omitempty"`
	Info     *BookingEntryInfo `json:"info,omitempty"`
	LogID    uint              `json:"-"`
}

// BookingEntryInfo is what the guard sees on an allow.
type BookingEntryInfo struct {
	GuestName    string `json:"guest_name"`
	NationalID   string `json:"national_id"`
	Property     string `json:"property"`
	Room         string `json:"room"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	BookingID    uint   `json:"booking_id"`
	GuestsCount  int    `json:"guests_count"`
	OwnsVehicle  bool   `json:"owns_vehicle"`
	VehiclePlate string `json:"vehicle_plate,omitempty"`
}

// AccessService resolves identity signals against bookings and records every
// attempt. The acting guard and checkpoint are always explicit arguments;
// nothing here reads ambient session state or checks roles.
type AccessService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db, Now: LocalNow}
}

// LocalNow returns the current time in the deployment's fixed zone. All
// booking timestamps are stored and compared in this one zone; nothing in the
// scan paths mixes UTC in.
func LocalNow() time.Time {
	return time.Now().In(localLocation())
}

func localLocation() *time.Location {
	name := os.Getenv("TZ")
	if name == "" {
		name = "Africa/Nairobi"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// FindActiveBooking resolves identity -> guest by exact national-ID match,
// then picks the booking whose stay interval contains at and whose status is
// not cancelled. When several windows overlap the one with the latest
// check_out wins. Returns (nil, nil) on any lookup miss.
//
// The caller must pass at in the same clock convention as the stored
// check_in/check_out values; no zone conversion happens here.
func (s *AccessService) FindActiveBooking(identity string, at time.Time) (*models.Booking, *models.Guest, error) {
	var guest models.Guest
	err := s.DB.Where("national_id_number = ?", identity).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("guest lookup: %w", err)
	}

	var booking models.Booking
	err = s.DB.
		Where("guest_id = ? AND check_in <= ? AND check_out >= ? AND status <> ?",
			guest.ID, at, at, models.BookingCancelled).
		Order("check_out DESC").
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &guest, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("booking lookup: %w", err)
	}
	return &booking, &guest, nil
}

// ScanPerson decides a person checkpoint attempt and writes exactly one
// AccessLog row, whatever the outcome. Failed scans are a normal business
// outcome; only storage faults return an error.
func (s *AccessService) ScanPerson(guardID, checkpointID uint, in PersonScanInput, at time.Time) (*ScanResult, error) {
	identity := in.DetectedID
	diag := in.OCRText
	if identity != "" {
		diag = "[client_ocr]"
		log.Printf("[SCAN] client-detected id=%s checkpoint=%d", identity, checkpointID)
	} else if in.OCRText != "" {
		if id, ok := NormalizeNationalID(in.OCRText); ok {
			identity = id
		}
		log.Printf("[SCAN] server ocr extracted id=%q checkpoint=%d", identity, checkpointID)
	}

	if identity == "" {
		reason := ReasonNoID
		if in.OCRText != "" {
			reason = ReasonOCRNoIDDetected
		}
		logID, err := s.record(guardID, checkpointID, nil, nil, "", models.DecisionDeny, in.ImagePath, diag, at)
		if err != nil {
			return nil, err
		}
		return &ScanResult{
			Decision: models.DecisionDeny,
			Reason:   reason,
			Message:  "No national ID could be read from the scan.",
			LogID:    logID,
		}, nil
	}

	booking, guest, err := s.FindActiveBooking(identity, at)
	if err != nil {
		return nil, err
	}

	var guestID, bookingID *uint
	if guest != nil {
		guestID = &guest.ID
	}
	decision := models.DecisionDeny
	if booking != nil {
		decision = models.DecisionAllow
		bookingID = &booking.ID
	}

	logID, err := s.record(guardID, checkpointID, guestID, bookingID, identity, decision, in.ImagePath, diag, at)
	if err != nil {
		return nil, err
	}

	if booking == nil {
		return &ScanResult{
			Decision: models.DecisionDeny,
			Reason:   ReasonNoActiveBooking,
			Message:  "No valid booking in the current time window for this ID.",
			LogID:    logID,
		}, nil
	}

	info, err := s.entryInfo(booking, guest)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Decision: models.DecisionAllow, Info: info, LogID: logID}, nil
}

// ScanBookingQR decides a booking-QR attempt. Unknown tokens are denied and
// still logged, with no resolved entities. A found booking is allowed iff
// Booking.ActiveAt holds, the same predicate the person path uses.
func (s *AccessService) ScanBookingQR(guardID, checkpointID uint, token string, at time.Time) (*ScanResult, error) {
	var booking models.Booking
	err := s.DB.Where("qr_token = ?", token).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logID, lerr := s.record(guardID, checkpointID, nil, nil, "", models.DecisionDeny, "", "[qr] token not found", at)
		if lerr != nil {
			return nil, lerr
		}
		return &ScanResult{
			Decision: models.DecisionDeny,
			Reason:   ReasonQRNotFound,
			Message:  "QR not recognized.",
			LogID:    logID,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking lookup: %w", err)
	}

	var guest models.Guest
	if err := s.DB.First(&guest, booking.GuestID).Error; err != nil {
		return nil, fmt.Errorf("guest lookup: %w", err)
	}

	decision := models.DecisionDeny
	if booking.ActiveAt(at) {
		decision = models.DecisionAllow
	}

	logID, err := s.record(guardID, checkpointID, &guest.ID, &booking.ID, guest.NationalIDNumber, decision, "", "[qr]", at)
	if err != nil {
		return nil, err
	}

	if decision == models.DecisionDeny {
		return &ScanResult{
			Decision: models.DecisionDeny,
			Reason:   ReasonNotActive,
			Message:  "Booking is cancelled or outside its stay window.",
			LogID:    logID,
		}, nil
	}

	info, err := s.entryInfo(&booking, &guest)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Decision: models.DecisionAllow, Info: info, LogID: logID}, nil
}

// record appends one AccessLog row. Append-only: nothing in this service
// updates or deletes log rows.
func (s *AccessService) record(guardID, checkpointID uint, guestID, bookingID *uint, identity, decision, imagePath, diag string, at time.Time) (uint, error) {
	entry := models.AccessLog{
		Timestamp:        at,
		GuardID:          guardID,
		CheckpointID:     checkpointID,
		GuestID:          guestID,
		BookingID:        bookingID,
		NationalIDNumber: identity,
		Decision:         decision,
		ImagePath:        imagePath,
		OCRText:          diag,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("access log write: %w", err)
	}
	return entry.ID, nil
}

func (s *AccessService) entryInfo(booking *models.Booking, guest *models.Guest) (*BookingEntryInfo, error) {
	var room models.Room
	if err := s.DB.First(&room, booking.RoomID).Error; err != nil {
		return nil, fmt.Errorf("room lookup: %w", err)
	}
	var prop models.Property
	if err := s.DB.First(&prop, room.PropertyID).Error; err != nil {
		return nil, fmt.Errorf("property lookup: %w", err)
	}
	return &BookingEntryInfo{
		GuestName:    guest.FullName,
		NationalID:   guest.NationalIDNumber,
		Property:     prop.Name,
		Room:         room.Name,
		CheckIn:      booking.CheckIn.Format(time.RFC3339),
		CheckOut:     booking.CheckOut.Format(time.RFC3339),
		BookingID:    booking.ID,
		GuestsCount:  booking.GuestsCount,
		OwnsVehicle:  booking.OwnsVehicle,
		VehiclePlate: booking.VehiclePlate,
	}, nil
}

// RecentAccessLogs returns the newest entries for the audit views.
func (s *AccessService) RecentAccessLogs(limit int) ([]models.AccessLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var logs []models.AccessLog
	err := s.DB.Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
