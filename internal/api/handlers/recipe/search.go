package recipe

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	recipeService "recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"
)

// Handler 食譜處理程序
type Handler struct {
	service *recipeService.Service
	debug   bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(service *recipeService.Service, debug bool) *Handler {
	return &Handler{service: service, debug: debug}
}

// HandleSearch 依食材搜尋食譜
func (h *Handler) HandleSearch(c *gin.Context) {
	requestID := requestid.Get(c)

	var req recipeService.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.respondError(c, common.ErrInvalidRequest.WithErr(err))
		return
	}

	common.LogDebug("開始處理食材搜尋請求",
		zap.String("request_id", requestID),
		zap.Strings("ingredients", req.Ingredients),
		zap.String("query", req.Query),
	)

	recipes, err := h.service.Search(c.Request.Context(), req.Ingredients, req.Query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeService.NewSearchResponse(recipes))
}

// HandleDefault 預設食譜，可用 ?q= 過濾
func (h *Handler) HandleDefault(c *gin.Context) {
	recipes, err := h.service.Default(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeService.NewSearchResponse(recipes))
}

// HandleLookup 以 id 取得單一食譜
func (h *Handler) HandleLookup(c *gin.Context) {
	recipe, err := h.service.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// HandleSuggestedIngredients 建議食材清單
func (h *Handler) HandleSuggestedIngredients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ingredients": h.service.SuggestedIngredients(),
	})
}

// respondError 將錯誤轉成對應的 HTTP 回應
func (h *Handler) respondError(c *gin.Context, err error) {
	apiErr := toCustomError(err)
	_ = c.Error(err)

	if apiErr.Status >= http.StatusInternalServerError {
		common.LogError("食譜請求失敗",
			zap.Error(err),
			zap.String("code", apiErr.Code),
			zap.String("request_id", requestid.Get(c)),
		)
	}

	c.AbortWithStatusJSON(apiErr.Status, apiErr.Response(h.debug))
}

func toCustomError(err error) *common.CustomError {
	var apiErr *common.CustomError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case common.IsValidationError(err):
		return common.ErrInvalidRequest.WithErr(err)
	case errors.Is(err, common.ErrNotFound):
		return common.ErrRecipeNotFound.WithErr(err)
	case errors.Is(err, recipeService.ErrMalformedRecord):
		return common.ErrMalformedRecord.WithErr(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.WithErr(err)
	case recipeService.IsSearchError(err):
		return common.ErrSourceUnavailable.WithErr(err)
	default:
		return common.ErrInternalError.WithErr(err)
	}
}
