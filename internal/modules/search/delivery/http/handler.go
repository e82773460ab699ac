package handler

import (
	"net/http"

	searchDto "anoa.com/codediary/internal/modules/search/dto"
	search "anoa.com/codediary/internal/modules/search/service"
	"anoa.com/codediary/pkg/apperror"
	"anoa.com/codediary/pkg/response"
	"anoa.com/codediary/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchService search.SearchService
}

// NewSearchHandler accepts a nil service; searches then answer 503.
func NewSearchHandler(searchService search.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) Search(c *gin.Context) {
	if h.searchService == nil {
		response.ResponseError(c, apperror.New(http.StatusServiceUnavailable, "search is not configured", apperror.ErrUnavailable))
		return
	}

	var query searchDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.searchService.Search(query.Q, query.Limit)
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadGateway, "search failed", err))
		return
	}

	c.JSON(http.StatusOK, res)
}
