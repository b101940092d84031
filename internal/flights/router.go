package flights

import "github.com/gin-gonic/gin"

// SetupFlightRoutes configures the flight search and airport lookup routes.
// Search is public; booking requires authentication further down the flow.
func SetupFlightRoutes(rg *gin.RouterGroup, controller *Controller) {
	flights := rg.Group("/flights")
	{
		flights.POST("/search", controller.Search) // POST /api/v1/flights/search
		flights.POST("/filter", controller.Filter) // POST /api/v1/flights/filter
	}

	rg.GET("/airports", controller.LookupAirports) // GET /api/v1/airports?keyword=
}
