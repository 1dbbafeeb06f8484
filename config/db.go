package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gate-access-backend/models"
	"gate-access-backend/utils"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "gate_access")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}
	DB = db

	// Parent tables before children.
	if err := DB.AutoMigrate(
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
		return err
	}

	SeedDatabase()
	return nil
}

func seedUser(name, email, role, password string) *models.User {
	var existing models.User
	if err := DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return &existing
	}
	user := models.User{Name: name, Email: email, Role: role, Plan: models.PlanFree}
	if role == models.RoleAdmin {
		user.Plan = models.PlanPremium
	}
	if err := user.SetPassword(password); err != nil {
		log.Printf("warning: failed to hash seed password for %s: %v", email, err)
		return nil
	}
	if err := DB.Create(&user).Error; err != nil {
		log.Printf("warning: failed to seed user %s: %v", email, err)
		return nil
	}
	log.Printf("Seeded %s user %s", role, email)
	return &user
}

// SeedDatabase creates the default accounts and one demo property with an
// active booking so a fresh install is immediately scannable.
func SeedDatabase() {
	admin := seedUser("Admin", "admin@gate.local", models.RoleAdmin, envOrDefault("SEED_ADMIN_PASSWORD", "admin123"))
	host := seedUser("Demo Host", "host@gate.local", models.RoleHost, envOrDefault("SEED_HOST_PASSWORD", "host123"))
	seedUser("Gate Guard", "guard@gate.local", models.RoleGuard, envOrDefault("SEED_GUARD_PASSWORD", "guard123"))
	if admin == nil || host == nil {
		return
	}

	var propCount int64
	DB.Model(&models.Property{}).Count(&propCount)
	if propCount > 0 {
		return
	}

	prop := models.Property{OwnerID: host.ID, Name: "Seafront Suites", Address: "1 Beach Road"}
	if err := DB.Create(&prop).Error; err != nil {
		log.Printf("warning: failed to seed property: %v", err)
		return
	}
	room := models.Room{PropertyID: prop.ID, Name: "Room 1A", Desc: "Ground floor, sea view"}
	if err := DB.Create(&room).Error; err != nil {
		log.Printf("warning: failed to seed room: %v", err)
		return
	}
	cp := models.Checkpoint{PropertyID: prop.ID, Name: "Main Gate"}
	if err := DB.Create(&cp).Error; err != nil {
		log.Printf("warning: failed to seed checkpoint: %v", err)
	}

	guest := models.Guest{FullName: "Jane Visitor", NationalIDNumber: "12345678", Phone: "254700000000"}
	if err := DB.Create(&guest).Error; err != nil {
		log.Printf("warning: failed to seed guest: %v", err)
		return
	}

	token, err := utils.GenerateSecureToken(16)
	if err != nil {
		log.Printf("warning: failed to generate seed QR token: %v", err)
		return
	}
	now := time.Now()
	booking := models.Booking{
		GuestID:     guest.ID,
		RoomID:      room.ID,
		CheckIn:     now.Add(-24 * time.Hour),
		CheckOut:    now.Add(48 * time.Hour),
		Status:      models.BookingBooked,
		GuestsCount: 2,
		QRToken:     &token,
	}
	if err := DB.Create(&booking).Error; err != nil {
		log.Printf("warning: failed to seed booking: %v", err)
		return
	}
	log.Println("Demo property, guest and booking seeded")
}
