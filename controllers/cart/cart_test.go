package cartController_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	cartRoutes "lms/routers/cartRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newCartApp(t *testing.T) *fiber.App {
	t.Helper()

	config.LoadConfig()

	dsn := filepath.Join(t.TempDir(), "lms_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.PurchasedCourse{},
		&models.CartItem{},
		&models.WishlistItem{},
	))
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	cartRoutes.SetupCartRoutes(app)
	return app
}

func seedStudentAndCourse(t *testing.T) (models.User, models.Course) {
	t.Helper()
	db := database.Database.Db

	student := models.User{Name: "Asha", Email: "asha@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	instructor := models.User{Name: "Ravi", Email: "ravi@example.com", Password: "x", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&instructor).Error)

	course := models.Course{Title: "Go Basics", Description: "a", Price: 10000, InstructorID: instructor.ID, Status: "ACTIVE", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	return student, course
}

func request(t *testing.T, app *fiber.App, method, target string, user models.User) *http.Response {
	t.Helper()
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAddToCart(t *testing.T) {
	app := newCartApp(t)
	student, course := seedStudentAndCourse(t)

	resp := request(t, app, http.MethodPost, fmt.Sprintf("/cart/%d", course.ID), student)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items int64
	require.NoError(t, database.Database.Db.Model(&models.CartItem{}).
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&items).Error)
	assert.EqualValues(t, 1, items)

	// Adding again keeps a single row
	resp = request(t, app, http.MethodPost, fmt.Sprintf("/cart/%d", course.ID), student)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, database.Database.Db.Model(&models.CartItem{}).
		Where("user_id = ?", student.ID).Count(&items).Error)
	assert.EqualValues(t, 1, items)
}

func TestAddToCartRejectsUnpublishedCourse(t *testing.T) {
	app := newCartApp(t)
	student, course := seedStudentAndCourse(t)

	require.NoError(t, database.Database.Db.Model(&models.Course{}).
		Where("id = ?", course.ID).Update("is_published", false).Error)

	resp := request(t, app, http.MethodPost, fmt.Sprintf("/cart/%d", course.ID), student)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddToCartRejectsOwnedCourse(t *testing.T) {
	app := newCartApp(t)
	student, course := seedStudentAndCourse(t)

	require.NoError(t, database.Database.Db.Create(&models.PurchasedCourse{
		UserID:      student.ID,
		CourseID:    course.ID,
		PurchasedAt: time.Now(),
	}).Error)

	resp := request(t, app, http.MethodPost, fmt.Sprintf("/cart/%d", course.ID), student)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRemoveFromCartAllowsReAdd(t *testing.T) {
	app := newCartApp(t)
	student, course := seedStudentAndCourse(t)

	resp := request(t, app, http.MethodPost, fmt.Sprintf("/cart/%d", course.ID), student)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, app, http.MethodDelete, fmt.Sprintf("/cart/%d", course.ID), student)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items int64
	require.NoError(t, database.Database.Db.Model(&models.CartItem{}).
		Where("user_id = ?", student.ID).Count(&items).Error)
	require.EqualValues(t, 0, items)

	// The unique index must not block a fresh add after removal
	resp = request(t, app, http.MethodPost, fmt.Sprintf("/cart/%d", course.ID), student)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWishlistRoundTrip(t *testing.T) {
	app := newCartApp(t)
	student, course := seedStudentAndCourse(t)

	resp := request(t, app, http.MethodPost, fmt.Sprintf("/wishlist/%d", course.ID), student)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items int64
	require.NoError(t, database.Database.Db.Model(&models.WishlistItem{}).
		Where("user_id = ?", student.ID).Count(&items).Error)
	assert.EqualValues(t, 1, items)

	resp = request(t, app, http.MethodDelete, fmt.Sprintf("/wishlist/%d", course.ID), student)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, database.Database.Db.Model(&models.WishlistItem{}).
		Where("user_id = ?", student.ID).Count(&items).Error)
	assert.EqualValues(t, 0, items)
}
