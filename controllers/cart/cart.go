package cartController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// AddToCart puts a course in the user's cart. Duplicate adds and
// already-owned courses are rejected before checkout ever sees them.
func AddToCart(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false AND is_published = true", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var owned models.PurchasedCourse
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&owned).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already own this course!", nil)
	}

	var existing models.CartItem
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Course already in cart!", nil)
	}

	item := models.CartItem{UserID: userID, CourseID: courseID}
	if err := db.Create(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add to cart!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Added to cart!", item)
}

func RemoveFromCart(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	if err := database.Database.Db.Unscoped().
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.CartItem{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove from cart!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Removed from cart!", nil)
}

func GetCart(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var items []models.CartItem
	if err := database.Database.Db.Where("user_id = ?", userID).Preload("Course").Find(&items).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch cart!", nil)
	}

	var total int64
	for _, item := range items {
		total += item.Course.Price
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cart fetched!", fiber.Map{
		"items": items,
		"total": total,
	})
}

// AddToWishlist saves a course for later
func AddToWishlist(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false AND is_published = true", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var existing models.WishlistItem
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Course already in wishlist!", nil)
	}

	item := models.WishlistItem{UserID: userID, CourseID: courseID}
	if err := db.Create(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add to wishlist!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Added to wishlist!", item)
}

func RemoveFromWishlist(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	if err := database.Database.Db.Unscoped().
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove from wishlist!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Removed from wishlist!", nil)
}

func GetWishlist(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var items []models.WishlistItem
	if err := database.Database.Db.Where("user_id = ?", userID).Preload("Course").Find(&items).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch wishlist!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wishlist fetched!", items)
}
