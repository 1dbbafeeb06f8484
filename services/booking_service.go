package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"gate-access-backend/models"
	"gate-access-backend/utils"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidRoom     = errors.New("invalid room selection")
	ErrPlateRequired   = errors.New("vehicle plate required when owns_vehicle is set")
)

type CreateBookingInput struct {
	GuestName    string
	NationalID   string
	Phone        string
	Email        string
	RoomID       uint
	CheckIn      time.Time
	CheckOut     time.Time
	GuestsCount  int
	OwnsVehicle  bool
	VehiclePlate string
	SendEmail    bool
}

// BookingEvent is one calendar entry.
type BookingEvent struct {
	ID           uint   `json:"id"`
	Guest        string `json:"guest"`
	NationalID   string `json:"national_id"`
	RoomID       uint   `json:"room_id"`
	Room         string `json:"room"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	GuestsCount  int    `json:"guests_count"`
	OwnsVehicle  bool   `json:"owns_vehicle"`
	VehiclePlate string `json:"vehicle_plate"`
	Status       string `json:"status"`
	QRToken      string `json:"qr_token"`
}

type BookingService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db, Now: LocalNow}
}

// ParseLocalDateTime accepts the datetime shapes the booking form sends and
// interprets them in the deployment zone.
func ParseLocalDateTime(value string) (time.Time, error) {
	s := strings.TrimSpace(strings.ReplaceAll(value, "T", " "))
	s = strings.Join(strings.Fields(s), " ")
	loc := localLocation()
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", value)
}

// Create registers the guest and booking in one transaction, generates the
// entry QR token, and best-effort emails the confirmation. hostID scopes the
// room choice to properties the host owns.
func (s *BookingService) Create(hostID uint, in CreateBookingInput) (*models.Booking, error) {
	if in.OwnsVehicle && strings.TrimSpace(in.VehiclePlate) == "" {
		return nil, ErrPlateRequired
	}
	if in.GuestsCount <= 0 {
		in.GuestsCount = 1
	}

	var room models.Room
	err := s.DB.Joins("JOIN properties ON properties.id = rooms.property_id AND properties.owner_id = ?", hostID).
		Where("rooms.id = ?", in.RoomID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidRoom
	}
	if err != nil {
		return nil, fmt.Errorf("room lookup: %w", err)
	}

	var booking models.Booking
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		guest := models.Guest{
			FullName:         strings.TrimSpace(in.GuestName),
			NationalIDNumber: strings.TrimSpace(in.NationalID),
			Phone:            strings.TrimSpace(in.Phone),
			Email:            strings.TrimSpace(in.Email),
		}
		if err := tx.Create(&guest).Error; err != nil {
			return fmt.Errorf("guest create: %w", err)
		}

		booking = models.Booking{
			GuestID:      guest.ID,
			RoomID:       room.ID,
			CheckIn:      in.CheckIn,
			CheckOut:     in.CheckOut,
			Status:       models.BookingBooked,
			GuestsCount:  in.GuestsCount,
			OwnsVehicle:  in.OwnsVehicle,
			VehiclePlate: strings.TrimSpace(in.VehiclePlate),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("booking create: %w", err)
		}

		token, err := s.ensureQRToken(tx, &booking)
		if err != nil {
			return err
		}
		booking.QRToken = &token
		booking.Guest = guest
		booking.Room = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.SendEmail {
		s.sendConfirmation(&booking)
	}
	return &booking, nil
}

func (s *BookingService) ensureQRToken(tx *gorm.DB, booking *models.Booking) (string, error) {
	for attempt := 0; ; attempt++ {
		token, err := utils.GenerateSecureToken(16)
		if err != nil {
			return "", err
		}
		err = tx.Model(booking).Update("qr_token", token).Error
		if err == nil {
			return token, nil
		}
		var mysqlErr *mysqldrv.MySQLError
		if attempt == 0 && errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			continue // token collision, regenerate
		}
		return "", fmt.Errorf("qr token update: %w", err)
	}
}

func (s *BookingService) sendConfirmation(booking *models.Booking) {
	var prop models.Property
	if err := s.DB.First(&prop, booking.Room.PropertyID).Error; err != nil {
		log.Printf("warning: property lookup for email failed: %v", err)
		return
	}
	token := ""
	if booking.QRToken != nil {
		token = *booking.QRToken
	}
	png, err := utils.QRPNG(token, 256)
	if err != nil {
		log.Printf("warning: qr render for email failed: %v", err)
		png = nil
	}
	data := utils.BookingEmailData{
		GuestName:    booking.Guest.FullName,
		GuestEmail:   booking.Guest.Email,
		NationalID:   booking.Guest.NationalIDNumber,
		PropertyName: prop.Name,
		RoomName:     booking.Room.Name,
		CheckIn:      booking.CheckIn.Format("2006-01-02 15:04"),
		CheckOut:     booking.CheckOut.Format("2006-01-02 15:04"),
		GuestsCount:  booking.GuestsCount,
		VehiclePlate: booking.VehiclePlate,
		BookingID:    booking.ID,
	}
	if err := utils.SendBookingConfirmation(data, png); err != nil {
		log.Printf("warning: booking email failed: %v", err)
	}
}

// CalendarRange returns bookings overlapping [start, end]. Hosts see only
// their own properties' bookings; admins see everything.
func (s *BookingService) CalendarRange(actor *models.User, start, end time.Time) ([]BookingEvent, error) {
	q := s.DB.Preload("Guest").Preload("Room").
		Where("check_in <= ? AND check_out >= ?", end, start).
		Order("check_in ASC")
	if actor.Role == models.RoleHost {
		q = q.Joins("JOIN rooms r ON r.id = bookings.room_id").
			Joins("JOIN properties p ON p.id = r.property_id AND p.owner_id = ?", actor.ID)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}

	events := make([]BookingEvent, 0, len(bookings))
	for _, b := range bookings {
		token := ""
		if b.QRToken != nil {
			token = *b.QRToken
		}
		events = append(events, BookingEvent{
			ID:           b.ID,
			Guest:        b.Guest.FullName,
			NationalID:   b.Guest.NationalIDNumber,
			RoomID:       b.RoomID,
			Room:         b.Room.Name,
			CheckIn:      b.CheckIn.Format(time.RFC3339),
			CheckOut:     b.CheckOut.Format(time.RFC3339),
			GuestsCount:  b.GuestsCount,
			OwnsVehicle:  b.OwnsVehicle,
			VehiclePlate: b.VehiclePlate,
			Status:       b.Status,
			QRToken:      token,
		})
	}
	return events, nil
}

func (s *BookingService) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Preload("Guest").Preload("Room.Property").First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	return &booking, err
}

func (s *BookingService) GetByQRToken(token string) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Preload("Guest").Where("qr_token = ?", token).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	return &booking, err
}

// Cancel marks a booking cancelled. Historical access logs that reference it
// are untouched.
func (s *BookingService) Cancel(id uint) (*models.Booking, error) {
	booking, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingCancelled {
		return booking, nil
	}
	if err := s.DB.Model(booking).Update("status", models.BookingCancelled).Error; err != nil {
		return nil, fmt.Errorf("booking cancel: %w", err)
	}
	booking.Status = models.BookingCancelled
	return booking, nil
}
