package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published courses with pagination
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourseList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.Course{}).
		Where("is_deleted = false AND is_published = true")

	var total int64
	db.Count(&total)

	var courses []models.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseDetails returns one published course with its instructor
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := database.Database.Db.
		Where("id = ? AND is_deleted = false AND is_published = true", courseID).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var instructor models.User
	if err := database.Database.Db.
		Select("id", "name", "bio", "headline", "expertise", "profile_image").
		Where("id = ? AND is_deleted = false", course.InstructorID).
		First(&instructor).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
			"course":     course,
			"instructor": instructor,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course": course,
	})
}

// CreateCourse lets an instructor publish a new course
func CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var instructor models.User
	if err := database.Database.Db.
		Where("id = ? AND is_deleted = false AND role = ?", userID, models.RoleInstructor).
		First(&instructor).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Instructor role required!", nil)
	}

	reqData, ok := c.Locals("validatedCreateCourse").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Price       int64  `json:"price"`
		ImageURL    string `json:"imageUrl"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := models.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Price:        reqData.Price,
		ImageURL:     reqData.ImageURL,
		InstructorID: userID,
		Status:       "ACTIVE",
		IsPublished:  true,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// GetMyCourses returns the authenticated user's purchased courses with
// their progress entries
func GetMyCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var purchases []models.PurchasedCourse
	if err := database.Database.Db.
		Where("user_id = ?", userID).
		Preload("Course").
		Order("purchased_at desc").
		Find(&purchases).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch purchased courses!", nil)
	}

	var progress []models.CourseProgress
	if err := database.Database.Db.
		Where("user_id = ?", userID).
		Find(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course progress!", nil)
	}

	progressByCourse := make(map[uint]models.CourseProgress, len(progress))
	for _, p := range progress {
		progressByCourse[p.CourseID] = p
	}

	type enrolledCourse struct {
		models.PurchasedCourse
		Progress float64 `json:"progress"`
	}

	result := make([]enrolledCourse, 0, len(purchases))
	for _, purchase := range purchases {
		result = append(result, enrolledCourse{
			PurchasedCourse: purchase,
			Progress:        progressByCourse[purchase.CourseID].Progress,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", result)
}
