package service

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the handlers into a gin engine. activity may be nil, in which case no
// activity is recorded and /activity is not served.
func SetupRoutes(books *BookHandler, activity *ActivityHandler, logger *slog.Logger) *gin.Engine {
	routes := gin.New()
	routes.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	if activity != nil {
		routes.GET("/activity/:username", activity.Activity)
	}

	bookRoutes := routes.Group("/books")
	{
		if activity != nil {
			bookRoutes.Use(activity.CacheUserRequest)
		}

		bookRoutes.GET("", books.ListBooks)
		bookRoutes.POST("", books.CreateBook)
		bookRoutes.GET("/:id", books.GetBookById)
		bookRoutes.PUT("/:id", books.UpdateBookById)
		bookRoutes.DELETE("/:id", books.DeleteBookById)
	}

	return routes
}
