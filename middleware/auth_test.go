package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gate-access-backend/models"
)

func authTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:mw_auth_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestTokenRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := authTestDB(t)

	user := models.User{Name: "Guard", Email: "guard@mw.local", Role: models.RoleGuard}
	require.NoError(t, db.Create(&user).Error)

	token, err := IssueToken(&user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	r := gin.New()
	r.GET("/whoami", AuthRequired(db), func(c *gin.Context) {
		u := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"guard"`)
}

func TestAuthRequiredRejections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := authTestDB(t)

	r := gin.New()
	r.GET("/whoami", AuthRequired(db), func(c *gin.Context) { c.Status(http.StatusOK) })

	// No header.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token for a user that no longer exists.
	ghost := models.User{Name: "Ghost", Email: "ghost@mw.local", Role: models.RoleHost}
	require.NoError(t, db.Create(&ghost).Error)
	token, err := IssueToken(&ghost)
	require.NoError(t, err)
	require.NoError(t, db.Unscoped().Delete(&ghost).Error)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleAdminBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	asAdmin := func(c *gin.Context) {
		c.Set("currentUser", &models.User{ID: 1, Role: models.RoleAdmin})
		c.Next()
	}
	r.GET("/guard-only", asAdmin, RequireRole(models.RoleGuard), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/guard-only", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
