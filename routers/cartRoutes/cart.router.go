package cartRoutes

import (
	cartController "lms/controllers/cart"
	"lms/middleware"
	cartValidator "lms/validators/cart"

	"github.com/gofiber/fiber/v2"
)

func SetupCartRoutes(app *fiber.App) {
	cartGroup := app.Group("/cart")

	cartGroup.Get("/", middleware.JWTMiddleware, cartController.GetCart)
	cartGroup.Post("/:id", middleware.JWTMiddleware, cartValidator.CourseID(), cartController.AddToCart)
	cartGroup.Delete("/:id", middleware.JWTMiddleware, cartValidator.CourseID(), cartController.RemoveFromCart)

	wishlistGroup := app.Group("/wishlist")

	wishlistGroup.Get("/", middleware.JWTMiddleware, cartController.GetWishlist)
	wishlistGroup.Post("/:id", middleware.JWTMiddleware, cartValidator.CourseID(), cartController.AddToWishlist)
	wishlistGroup.Delete("/:id", middleware.JWTMiddleware, cartValidator.CourseID(), cartController.RemoveFromWishlist)
}
