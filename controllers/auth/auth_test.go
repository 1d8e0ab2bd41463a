package authController_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"lms/config"
	"lms/database"
	"lms/models"
	authRoutes "lms/routers/authRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	config.LoadConfig()

	dsn := filepath.Join(t.TempDir(), "lms_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func TestSignupAndLogin(t *testing.T) {
	app := newAuthApp(t)

	code, _ := postJSON(t, app, "/auth/signup", map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret12345",
	})
	require.Equal(t, http.StatusCreated, code)

	var user models.User
	require.NoError(t, database.Database.Db.Where("email = ?", "asha@example.com").First(&user).Error)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "secret12345", user.Password) // stored hashed

	code, body := postJSON(t, app, "/auth/login", map[string]string{
		"email":    "asha@example.com",
		"password": "secret12345",
	})
	require.Equal(t, http.StatusOK, code)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	app := newAuthApp(t)

	payload := map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret12345",
	}
	code, _ := postJSON(t, app, "/auth/signup", payload)
	require.Equal(t, http.StatusCreated, code)

	code, _ = postJSON(t, app, "/auth/signup", payload)
	assert.Equal(t, http.StatusConflict, code)
}

func TestSignupValidation(t *testing.T) {
	app := newAuthApp(t)

	code, _ := postJSON(t, app, "/auth/signup", map[string]string{
		"name":     "Asha",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = postJSON(t, app, "/auth/signup", map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret12345",
		"role":     "ADMIN",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app := newAuthApp(t)

	code, _ := postJSON(t, app, "/auth/signup", map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret12345",
	})
	require.Equal(t, http.StatusCreated, code)

	code, _ = postJSON(t, app, "/auth/login", map[string]string{
		"email":    "asha@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}
