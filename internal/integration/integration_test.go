package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/api"
	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/router"
	"github.com/opsboard/backend/internal/service"
	"github.com/opsboard/backend/internal/testhelpers"
)

func setupServer(t *testing.T, db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	authService := service.NewAuthService(db, "integration-secret", logger)
	recipeService := service.NewRecipeService(db, nil, logger)
	supplyService := service.NewSupplyService(db, nil, logger)
	fleetService := service.NewFleetService(db, nil, logger)
	vendorService := service.NewVendorService(db)
	activityService := service.NewActivityService(db, logger)
	insightService := service.NewInsightService(db, nil, nil, nil, logger)
	reportService := service.NewReportService(db, nil)

	return router.SetupRouter(router.Handlers{
		Auth:     api.NewAuthHandler(authService),
		Recipe:   api.NewRecipeHandler(recipeService),
		Supply:   api.NewSupplyHandler(supplyService, 7),
		Fleet:    api.NewFleetHandler(fleetService),
		Vendor:   api.NewVendorHandler(vendorService),
		Activity: api.NewActivityHandler(activityService),
		Insight:  api.NewInsightHandler(insightService),
		Report:   api.NewReportHandler(reportService),
	}, router.Options{
		TokenValidator:   authService,
		ActivityRecorder: activityService,
	})
}

func request(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestKitchenFlowEndToEnd(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	r := setupServer(t, db)

	w := request(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Protected routes reject anonymous callers.
	w = request(t, r, http.MethodGet, "/api/v1/recipes", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Casey Vaughn",
		"email":    "casey@example.com",
		"password": "integration-pw",
		"username": "caseyv",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))

	w = request(t, r, http.MethodPost, "/api/v1/food-supply", auth.Token, gin.H{
		"name": "Tomatoes", "category": "produce", "quantity": 10, "unit": "kg", "price_per_unit": 2.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var supply model.FoodSupply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &supply))

	w = request(t, r, http.MethodPost, "/api/v1/recipes", auth.Token, gin.H{
		"name":     "Tomato Soup",
		"servings": 2,
		"ingredients": []gin.H{
			{"food_supply_id": supply.ID, "name": "Tomatoes", "quantity": 4},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var recipe model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, 10.0, recipe.TotalCost)

	w = request(t, r, http.MethodGet, "/api/v1/recipes/"+recipe.ID.String()+"/availability", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":true`)

	w = request(t, r, http.MethodPost, "/api/v1/recipes/"+recipe.ID.String()+"/use", auth.Token, gin.H{"servings": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, http.MethodGet, "/api/v1/food-supply/"+supply.ID.String(), auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"quantity":6`)

	// The mutations above were captured in the activity log.
	w = request(t, r, http.MethodGet, "/api/v1/staff-activity", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipes")
	assert.Contains(t, w.Body.String(), "food-supply")

	w = request(t, r, http.MethodGet, "/api/v1/insights/consumption?days=7", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "produce")
}

func TestPostgresSmoke(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	r := setupServer(t, db)

	w := request(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Casey Vaughn",
		"email":    "casey-pg@example.com",
		"password": "integration-pw",
		"username": "caseypg",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))

	// Embeddings count text length, vowels and consonants, so these names
	// sit at increasing distance from Salsa Roja.
	recipeService := service.NewRecipeService(db, nil, zap.NewNop())
	base, err := recipeService.CreateRecipe(context.Background(), &model.Recipe{
		Name: "Salsa Roja", Category: "sauce", Servings: 4,
	})
	require.NoError(t, err)
	for _, name := range []string{"Hollandaise Emulsion Base", "Romesco Sauce", "Salsa Verde"} {
		_, err = recipeService.CreateRecipe(context.Background(), &model.Recipe{
			Name: name, Category: "sauce", Servings: 4,
		})
		require.NoError(t, err)
	}

	w = request(t, r, http.MethodGet, "/api/v1/recipes/"+base.ID.String()+"/similar", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var similar struct {
		Recipes []model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &similar))
	require.Len(t, similar.Recipes, 3)
	assert.Equal(t, "Salsa Verde", similar.Recipes[0].Name)
	assert.Equal(t, "Romesco Sauce", similar.Recipes[1].Name)
	assert.Equal(t, "Hollandaise Emulsion Base", similar.Recipes[2].Name)
}
