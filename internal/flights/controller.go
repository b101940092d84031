package flights

import (
	"errors"
	"net/http"
	"strings"

	"skybook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Search handles POST /api/v1/flights/search
func (c *Controller) Search(ctx *gin.Context) {
	var req SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := c.service.Search(ctx.Request.Context(), req.ToCriteria())
	if err != nil {
		if errors.Is(err, ErrInvalidCriteria) {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid search criteria", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Flight search failed", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Flight offers retrieved successfully", resp, nil)
}

// Filter handles POST /api/v1/flights/filter
func (c *Controller) Filter(ctx *gin.Context) {
	var req FilterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	resp, err := c.service.Filter(ctx.Request.Context(), req.Search.ToCriteria(), req.ToFilterState())
	if err != nil {
		if errors.Is(err, ErrInvalidCriteria) {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid search criteria", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Flight filtering failed", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Filtered offers retrieved successfully", resp, nil)
}

// LookupAirports handles GET /api/v1/airports?keyword=
func (c *Controller) LookupAirports(ctx *gin.Context) {
	keyword := strings.TrimSpace(ctx.Query("keyword"))

	airports, err := c.service.LookupAirports(ctx.Request.Context(), keyword)
	if err != nil {
		if errors.Is(err, ErrInvalidCriteria) {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid lookup keyword", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Airport lookup failed", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Airports retrieved successfully", gin.H{
		"airports": airports,
		"count":    len(airports),
	}, nil)
}
