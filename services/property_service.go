package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"gate-access-backend/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrNameRequired = errors.New("name is required")
)

// PropertyService covers properties, rooms, and checkpoints: plain CRUD over
// the entities the decision engine reads.
type PropertyService struct {
	DB *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{DB: db}
}

// ---------- Properties ----------

func (s *PropertyService) ListProperties() ([]models.Property, error) {
	var props []models.Property
	err := s.DB.Preload("Owner").Order("name ASC").Find(&props).Error
	return props, err
}

func (s *PropertyService) CreateProperty(ownerID uint, name, address string) (*models.Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	prop := models.Property{OwnerID: ownerID, Name: name, Address: strings.TrimSpace(address)}
	if err := s.DB.Create(&prop).Error; err != nil {
		return nil, fmt.Errorf("property create: %w", err)
	}
	return &prop, nil
}

func (s *PropertyService) UpdateProperty(id uint, name, address string) (*models.Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	var prop models.Property
	if err := s.DB.First(&prop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	prop.Name = name
	prop.Address = strings.TrimSpace(address)
	if err := s.DB.Save(&prop).Error; err != nil {
		return nil, fmt.Errorf("property update: %w", err)
	}
	return &prop, nil
}

func (s *PropertyService) DeleteProperty(id uint) error {
	res := s.DB.Delete(&models.Property{}, id)
	if res.Error != nil {
		return fmt.Errorf("property delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Rooms ----------

func (s *PropertyService) ListRooms(propertyID uint) ([]models.Room, error) {
	q := s.DB.Preload("Property").Order("property_id ASC, name ASC")
	if propertyID != 0 {
		q = q.Where("property_id = ?", propertyID)
	}
	var rooms []models.Room
	err := q.Find(&rooms).Error
	return rooms, err
}

func (s *PropertyService) CreateRoom(propertyID uint, name, desc string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.DB.First(&models.Property{}, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	room := models.Room{PropertyID: propertyID, Name: name, Desc: strings.TrimSpace(desc)}
	if err := s.DB.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("room create: %w", err)
	}
	return &room, nil
}

func (s *PropertyService) UpdateRoom(id uint, name, desc string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	room.Name = name
	room.Desc = strings.TrimSpace(desc)
	if err := s.DB.Save(&room).Error; err != nil {
		return nil, fmt.Errorf("room update: %w", err)
	}
	return &room, nil
}

func (s *PropertyService) DeleteRoom(id uint) error {
	res := s.DB.Delete(&models.Room{}, id)
	if res.Error != nil {
		return fmt.Errorf("room delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Checkpoints ----------

func (s *PropertyService) ListCheckpoints() ([]models.Checkpoint, error) {
	var cps []models.Checkpoint
	err := s.DB.Preload("Property").Order("property_id ASC, name ASC").Find(&cps).Error
	return cps, err
}

func (s *PropertyService) GetCheckpoint(id uint) (*models.Checkpoint, error) {
	var cp models.Checkpoint
	err := s.DB.First(&cp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &cp, err
}

func (s *PropertyService) CreateCheckpoint(propertyID uint, name string) (*models.Checkpoint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.DB.First(&models.Property{}, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	cp := models.Checkpoint{PropertyID: propertyID, Name: name}
	if err := s.DB.Create(&cp).Error; err != nil {
		return nil, fmt.Errorf("checkpoint create: %w", err)
	}
	return &cp, nil
}

func (s *PropertyService) UpdateCheckpoint(id uint, name string) (*models.Checkpoint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	var cp models.Checkpoint
	if err := s.DB.First(&cp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	cp.Name = name
	if err := s.DB.Save(&cp).Error; err != nil {
		return nil, fmt.Errorf("checkpoint update: %w", err)
	}
	return &cp, nil
}

// DeleteCheckpoint removes a gate. Historical logs that reference it keep
// their checkpoint id; log rows carry no FK constraint, so nothing cascades.
func (s *PropertyService) DeleteCheckpoint(id uint) error {
	res := s.DB.Delete(&models.Checkpoint{}, id)
	if res.Error != nil {
		return fmt.Errorf("checkpoint delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
