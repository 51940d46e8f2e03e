package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/service"
	"github.com/opsboard/backend/internal/testhelpers"
)

type testClock struct{ t time.Time }

func (c testClock) Now() time.Time { return c.t }

// identity stands in for the auth middleware in handler tests.
func identity(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("username", "tester")
		c.Set("role", "staff")
	}
}

func newRecipeTestServer(t *testing.T) (*gin.Engine, *service.RecipeService, *gorm.DB, uuid.UUID) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)
	clock := testClock{time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	recipes := service.NewRecipeService(db, clock, zap.NewNop())

	userID := uuid.New()
	r := gin.New()
	group := r.Group("/api/v1", identity(userID))
	NewRecipeHandler(recipes).RegisterRoutes(group)
	return r, recipes, db, userID
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetRecipe(t *testing.T) {
	r, _, db, userID := newRecipeTestServer(t)

	supply := testhelpers.CreateTestSupply(t, db, "Flour", 50, 2)

	w := doJSON(t, r, http.MethodPost, "/api/v1/recipes", gin.H{
		"name":     "Bread",
		"servings": 2,
		"ingredients": []gin.H{
			{"food_supply_id": supply.ID, "name": "Flour", "quantity": 3},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 6.0, created.TotalCost)
	assert.Equal(t, userID, created.UserID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "Bread", fetched.Name)
	require.Len(t, fetched.Ingredients, 1)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	r, recipes, db, userID := newRecipeTestServer(t)

	supply := testhelpers.CreateTestSupply(t, db, "Rice", 5, 1)
	recipe, err := recipes.CreateRecipe(context.Background(), &model.Recipe{
		Name:     "Pilaf",
		Servings: 2,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supply.ID, Name: "Rice", Quantity: 3},
		},
		UserID: userID,
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%s/availability?servings=2", recipe.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Available bool                      `json:"available"`
		Issues    []service.IngredientIssue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	assert.Empty(t, resp.Issues)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%s/availability?servings=4", recipe.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, service.IssueInsufficient, resp.Issues[0].Reason)
}

func TestUseRecipeEndpointConflict(t *testing.T) {
	r, recipes, db, userID := newRecipeTestServer(t)

	supply := testhelpers.CreateTestSupply(t, db, "Cream", 1, 3)
	recipe, err := recipes.CreateRecipe(context.Background(), &model.Recipe{
		Name:     "Panna Cotta",
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supply.ID, Name: "Cream", Quantity: 2},
		},
		UserID: userID,
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/use", recipe.ID), gin.H{"servings": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient")

	// Force pushes it through anyway.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/use", recipe.ID), gin.H{"servings": 1, "force": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "consumed")
}

func TestUseRecipeEndpointRejectsBadServings(t *testing.T) {
	r, _, _, _ := newRecipeTestServer(t)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/use", uuid.New()), gin.H{"servings": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecipeNotFound(t *testing.T) {
	r, _, _, _ := newRecipeTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/recipes/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
