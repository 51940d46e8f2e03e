package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/model"
)

func testEnv(now time.Time, supplies map[uuid.UUID]*model.FoodSupply, recipes map[uuid.UUID]*model.Recipe) *availabilityEnv {
	return &availabilityEnv{
		now: now,
		stock: func(id uuid.UUID) (*model.FoodSupply, bool) {
			s, ok := supplies[id]
			return s, ok
		},
		subrecipe: func(id uuid.UUID) (*model.Recipe, bool) {
			r, ok := recipes[id]
			return r, ok
		},
		logger: zap.NewNop(),
	}
}

func TestCheckIngredientIssuesAllAvailable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	supplyID := uuid.New()
	env := testEnv(now, map[uuid.UUID]*model.FoodSupply{
		supplyID: {ID: supplyID, Name: "Flour", Quantity: 10},
	}, nil)

	recipe := &model.Recipe{
		ID:       uuid.New(),
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supplyID, Name: "Flour", Quantity: 2},
		},
	}

	issues := checkIngredientIssues(env, recipe, 1, map[uuid.UUID]bool{recipe.ID: true})
	assert.Empty(t, issues)
}

func TestCheckIngredientIssuesExpiredAndInsufficientAreIndependent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-48 * time.Hour)
	supplyID := uuid.New()
	env := testEnv(now, map[uuid.UUID]*model.FoodSupply{
		supplyID: {ID: supplyID, Name: "Milk", Quantity: 1, ExpirationDate: &expired},
	}, nil)

	recipe := &model.Recipe{
		ID:       uuid.New(),
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supplyID, Name: "Milk", Quantity: 3},
		},
	}

	issues := checkIngredientIssues(env, recipe, 1, map[uuid.UUID]bool{recipe.ID: true})
	assert.Len(t, issues, 2)
	assert.Equal(t, IssueExpired, issues[0].Reason)
	assert.True(t, issues[0].Expired)
	assert.Equal(t, IssueInsufficient, issues[1].Reason)
	assert.Equal(t, 3.0, issues[1].Required)
	assert.Equal(t, 1.0, issues[1].Available)
}

func TestCheckIngredientIssuesMissingData(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := testEnv(now, nil, nil)

	missingSupply := uuid.New()
	missingSub := uuid.New()
	recipe := &model.Recipe{
		ID:       uuid.New(),
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &missingSupply, Name: "Ghost Supply", Quantity: 1},
			{SubrecipeID: &missingSub, Name: "Ghost Subrecipe", Quantity: 1},
			{Name: "Untracked", Quantity: 1},
		},
	}

	issues := checkIngredientIssues(env, recipe, 1, map[uuid.UUID]bool{recipe.ID: true})
	assert.Len(t, issues, 3)
	for _, issue := range issues {
		assert.Equal(t, IssueNotFound, issue.Reason)
	}
}

func TestCheckIngredientIssuesSubrecipeMultiplierCompounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	supplyID := uuid.New()
	subID := uuid.New()

	sub := &model.Recipe{
		ID:       subID,
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supplyID, Name: "Butter", Quantity: 3},
		},
	}
	env := testEnv(now, map[uuid.UUID]*model.FoodSupply{
		supplyID: {ID: supplyID, Name: "Butter", Quantity: 5},
	}, map[uuid.UUID]*model.Recipe{subID: sub})

	recipe := &model.Recipe{
		ID:       uuid.New(),
		Servings: 1,
		Ingredients: model.IngredientList{
			{SubrecipeID: &subID, Name: "Base", Quantity: 2},
		},
	}

	issues := checkIngredientIssues(env, recipe, 1, map[uuid.UUID]bool{recipe.ID: true})
	assert.Len(t, issues, 1)
	assert.Equal(t, IssueInsufficient, issues[0].Reason)
	assert.Equal(t, 6.0, issues[0].Required)
	assert.Equal(t, 5.0, issues[0].Available)
}

func TestCheckIngredientIssuesCycleTerminates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	supplyID := uuid.New()
	aID := uuid.New()
	bID := uuid.New()

	a := &model.Recipe{
		ID:       aID,
		Servings: 1,
		Ingredients: model.IngredientList{
			{SubrecipeID: &bID, Name: "B", Quantity: 1},
		},
	}
	b := &model.Recipe{
		ID:       bID,
		Servings: 1,
		Ingredients: model.IngredientList{
			{SubrecipeID: &aID, Name: "A", Quantity: 1},
			{FoodSupplyID: &supplyID, Name: "Salt", Quantity: 10},
		},
	}
	env := testEnv(now, map[uuid.UUID]*model.FoodSupply{
		supplyID: {ID: supplyID, Name: "Salt", Quantity: 1},
	}, map[uuid.UUID]*model.Recipe{aID: a, bID: b})

	issues := checkIngredientIssues(env, a, 1, map[uuid.UUID]bool{aID: true})
	assert.Len(t, issues, 1)
	assert.Equal(t, IssueInsufficient, issues[0].Reason)
	assert.Equal(t, "Salt", issues[0].Name)
}

func TestGatherRequirementsFlattensAndAccumulates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	supplyID := uuid.New()
	subID := uuid.New()

	sub := &model.Recipe{
		ID:       subID,
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supplyID, Name: "Sugar", Quantity: 2},
		},
	}
	env := testEnv(now, map[uuid.UUID]*model.FoodSupply{
		supplyID: {ID: supplyID, Name: "Sugar", Quantity: 100},
	}, map[uuid.UUID]*model.Recipe{subID: sub})

	recipe := &model.Recipe{
		ID:       uuid.New(),
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supplyID, Name: "Sugar", Quantity: 1},
			{SubrecipeID: &subID, Name: "Syrup", Quantity: 3},
		},
	}

	acc := make(map[uuid.UUID]float64)
	gatherRequirements(env, recipe, 2, map[uuid.UUID]bool{recipe.ID: true}, acc)

	// 1*2 direct plus 2*3*2 through the subrecipe.
	assert.Equal(t, 14.0, acc[supplyID])
}

func TestComputeCostWithSubrecipesAndCycles(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	flourID := uuid.New()
	butterID := uuid.New()
	subID := uuid.New()
	parentID := uuid.New()

	sub := &model.Recipe{
		ID:       subID,
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &butterID, Name: "Butter", Quantity: 2},
			{SubrecipeID: &parentID, Name: "Parent", Quantity: 1},
		},
	}
	env := testEnv(now, map[uuid.UUID]*model.FoodSupply{
		flourID:  {ID: flourID, Name: "Flour", PricePerUnit: 1.5},
		butterID: {ID: butterID, Name: "Butter", PricePerUnit: 4},
	}, map[uuid.UUID]*model.Recipe{subID: sub})

	parent := &model.Recipe{
		ID:       parentID,
		Servings: 1,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &flourID, Name: "Flour", Quantity: 2},
			{SubrecipeID: &subID, Name: "Base", Quantity: 3},
		},
	}

	total := computeCost(env, parent, map[uuid.UUID]bool{parentID: true})

	// 2*1.5 flour plus 3*(2*4) subrecipe batches; the back-reference to the
	// parent contributes nothing.
	assert.Equal(t, 27.0, total)
}
