package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/service"
	"github.com/opsboard/backend/internal/types"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
}

func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.GET("/:id/availability", h.CheckAvailability)
		recipes.POST("/:id/use", h.UseRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		Search:   c.Query("q"),
		Category: c.Query("category"),
	}
	if v := c.Query("subrecipes"); v != "" {
		isSub := v == "true"
		filter.Subrecipes = &isSub
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	recipe.UserID = userID

	created, err := h.recipeService.CreateRecipe(c.Request.Context(), &recipe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, &recipe)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id,
	})
}

func (h *RecipeHandler) CheckAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	servings := 0.0
	if v := c.Query("servings"); v != "" {
		servings, err = strconv.ParseFloat(v, 64)
		if err != nil || servings <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "servings must be a positive number"})
			return
		}
	}

	issues, err := h.recipeService.CheckAvailability(c.Request.Context(), id, servings)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available": len(issues) == 0,
		"issues":    issues,
	})
}

func (h *RecipeHandler) UseRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req types.UseRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Servings <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "servings must be a positive number"})
		return
	}

	records, issues, err := h.recipeService.UseRecipe(c.Request.Context(), id, req.Servings, userID, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		case errors.Is(err, service.ErrRecipeBlocked):
			c.JSON(http.StatusConflict, gin.H{
				"error":  "recipe has ingredient issues",
				"issues": issues,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to use recipe"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consumed": records,
		"issues":   issues,
	})
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	limit := 5
	if v := c.Query("n"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	recipes, err := h.recipeService.SimilarRecipes(c.Request.Context(), id, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch similar recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
