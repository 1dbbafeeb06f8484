package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"gate-access-backend/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already exists")
	ErrInvalidRole    = errors.New("invalid role")
	ErrSelfDeletion   = errors.New("you cannot delete yourself")
	ErrBadCredentials = errors.New("invalid credentials")
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Authenticate checks email/password and returns the user. The caller issues
// the session token; this layer never sees HTTP.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrBadCredentials
	}
	return &user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("role ASC, name ASC").Find(&users).Error
	return users, err
}

func (s *UserService) Create(name, email, role, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email, password required")
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := models.User{Name: name, Email: email, Role: role, Plan: models.PlanFree}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("user create: %w", err)
	}
	return &user, nil
}

func (s *UserService) Update(id uint, name, email, role, newPassword string) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role != "" {
		if !models.ValidRole(role) {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		user.Email = email
	}
	if newPassword != "" {
		if err := user.SetPassword(newPassword); err != nil {
			return nil, err
		}
	}
	if err := s.DB.Save(user).Error; err != nil {
		return nil, fmt.Errorf("user update: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(id, actingID uint) error {
	if id == actingID {
		return ErrSelfDeletion
	}
	res := s.DB.Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("user delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetPlan records a plan change after a confirmed payment.
func (s *UserService) SetPlan(id uint, plan string) error {
	if plan != models.PlanFree && plan != models.PlanBasic && plan != models.PlanPremium {
		return fmt.Errorf("invalid plan %q", plan)
	}
	res := s.DB.Model(&models.User{}).Where("id = ?", id).Update("plan", plan)
	if res.Error != nil {
		return fmt.Errorf("plan update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
