package employee

import (
	"go-employee/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts the employee endpoints. The literal /search route is
// registered before /:id so "search" is never read as an identifier.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
) {
	employees := r.Group("/employees")
	{
		employees.GET("", handler.List)
		employees.GET("/search", handler.Search)
		employees.GET("/:id", handler.GetByID)

		create := []gin.HandlerFunc{middleware.RateLimitByIP(2, 10)}
		if rdb != nil {
			create = append(create, middleware.Idempotency(rdb))
		}
		employees.POST("", append(create, handler.Create)...)

		employees.PUT("/:id",
			middleware.RateLimitByIP(2, 10),
			handler.Update,
		)

		employees.DELETE("/:id",
			middleware.RateLimitByIP(1, 5),
			handler.Delete,
		)
	}
}
