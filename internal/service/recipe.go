package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsboard/backend/internal/model"
)

// ErrRecipeBlocked is returned when a recipe cannot be used because of
// outstanding ingredient issues.
var ErrRecipeBlocked = errors.New("recipe has ingredient issues")

// RecipeFilter narrows recipe listings.
type RecipeFilter struct {
	Search     string
	Category   string
	Subrecipes *bool
}

// RecipeService handles recipe CRUD, costing, availability checks and stock
// consumption.
type RecipeService struct {
	db     *gorm.DB
	clock  Clock
	logger *zap.Logger
}

func NewRecipeService(db *gorm.DB, clock Clock, logger *zap.Logger) *RecipeService {
	if clock == nil {
		clock = systemClock{}
	}
	return &RecipeService{db: db, clock: clock, logger: logger}
}

// env builds the lookup environment the ingredient walkers use, reading
// supplies and subrecipes through the service's DB handle.
func (s *RecipeService) env(ctx context.Context) *availabilityEnv {
	return &availabilityEnv{
		now: s.clock.Now(),
		stock: func(id uuid.UUID) (*model.FoodSupply, bool) {
			var supply model.FoodSupply
			if err := s.db.WithContext(ctx).First(&supply, "id = ?", id).Error; err != nil {
				return nil, false
			}
			return &supply, true
		},
		subrecipe: func(id uuid.UUID) (*model.Recipe, bool) {
			var recipe model.Recipe
			if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
				return nil, false
			}
			return &recipe, true
		},
		logger: s.logger,
	}
}

// CreateRecipe stores a recipe with computed cost and embedding.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	if recipe.Servings <= 0 {
		recipe.Servings = 1
	}
	s.recost(ctx, recipe)
	recipe.Embedding = GenerateEmbedding(recipe.Name + " " + recipe.Description)

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe applies changes and refreshes cost and embedding.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, recipe *model.Recipe) (*model.Recipe, error) {
	if _, err := s.GetRecipe(ctx, id); err != nil {
		return nil, err
	}
	recipe.ID = id
	s.recost(ctx, recipe)
	recipe.Embedding = GenerateEmbedding(recipe.Name + " " + recipe.Description)

	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Updates(recipe).Error; err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

// DeleteRecipe deletes a recipe
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error
}

// ListRecipes lists recipes matching the filter.
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]model.Recipe, error) {
	query := s.db.WithContext(ctx)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Subrecipes != nil {
		query = query.Where("is_subrecipe = ?", *filter.Subrecipes)
	}

	var recipes []model.Recipe
	if err := query.Order("name").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SimilarRecipes orders other recipes by embedding distance on Postgres, with
// a category-match fallback elsewhere.
func (s *RecipeService) SimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]model.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	var recipes []model.Recipe
	if s.db.Dialector.Name() == "postgres" {
		err = s.db.WithContext(ctx).
			Where("id <> ?", id).
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{recipe.Embedding}},
			}).
			Limit(limit).
			Find(&recipes).Error
	} else {
		err = s.db.WithContext(ctx).
			Where("id <> ? AND category = ?", id, recipe.Category).
			Limit(limit).
			Find(&recipes).Error
	}
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// CheckAvailability reports ingredient issues for preparing the recipe at the
// given serving count. The multiplier is servings relative to the recipe's
// own serving size.
func (s *RecipeService) CheckAvailability(ctx context.Context, id uuid.UUID, servings float64) ([]IngredientIssue, error) {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	multiplier := s.multiplier(recipe, servings)
	visited := map[uuid.UUID]bool{recipe.ID: true}
	issues := checkIngredientIssues(s.env(ctx), recipe, multiplier, visited)
	if issues == nil {
		issues = []IngredientIssue{}
	}
	return issues, nil
}

// UseRecipe consumes stock for preparing the recipe at the given serving
// count. Any ingredient issue blocks consumption unless force is set; expired
// or short stock consumed under force is still decremented (floored at zero)
// and recorded.
func (s *RecipeService) UseRecipe(ctx context.Context, id uuid.UUID, servings float64, actorID uuid.UUID, force bool) ([]model.ConsumptionRecord, []IngredientIssue, error) {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	multiplier := s.multiplier(recipe, servings)
	env := s.env(ctx)

	issues := checkIngredientIssues(env, recipe, multiplier, map[uuid.UUID]bool{recipe.ID: true})
	if len(issues) > 0 && !force {
		return nil, issues, ErrRecipeBlocked
	}

	required := make(map[uuid.UUID]float64)
	gatherRequirements(env, recipe, multiplier, map[uuid.UUID]bool{recipe.ID: true}, required)

	var records []model.ConsumptionRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for supplyID, qty := range required {
			var supply model.FoodSupply
			if err := tx.First(&supply, "id = ?", supplyID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}

			consumed := qty
			if consumed > supply.Quantity {
				consumed = supply.Quantity
			}
			if err := tx.Model(&model.FoodSupply{}).Where("id = ?", supplyID).
				Update("quantity", gorm.Expr("quantity - ?", consumed)).Error; err != nil {
				return err
			}

			record := model.ConsumptionRecord{
				ID:           uuid.New(),
				FoodSupplyID: supply.ID,
				SupplyName:   supply.Name,
				Category:     supply.Category,
				Quantity:     consumed,
				Unit:         supply.Unit,
				CostValue:    consumed * supply.PricePerUnit,
				Kind:         model.ConsumptionUsed,
				RecipeID:     &recipe.ID,
				ActorID:      actorID,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("recipe used",
		zap.String("recipe_id", recipe.ID.String()),
		zap.Float64("servings", servings),
		zap.Int("supplies", len(records)))
	return records, issues, nil
}

// RecomputeCosts refreshes stored costs for all recipes, deepest subrecipes
// first so parent costs see fresh child values.
func (s *RecipeService) RecomputeCosts(ctx context.Context) error {
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Order("is_subrecipe DESC").Find(&recipes).Error; err != nil {
		return err
	}
	for i := range recipes {
		r := &recipes[i]
		s.recost(ctx, r)
		if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", r.ID).
			Updates(map[string]interface{}{
				"total_cost":       r.TotalCost,
				"cost_per_serving": r.CostPerServing,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) multiplier(recipe *model.Recipe, servings float64) float64 {
	if servings <= 0 {
		return 1
	}
	base := recipe.Servings
	if base <= 0 {
		base = 1
	}
	return servings / float64(base)
}

func (s *RecipeService) recost(ctx context.Context, recipe *model.Recipe) {
	visited := map[uuid.UUID]bool{recipe.ID: true}
	recipe.TotalCost = computeCost(s.env(ctx), recipe, visited)
	servings := recipe.Servings
	if servings <= 0 {
		servings = 1
	}
	recipe.CostPerServing = recipe.TotalCost / float64(servings)
}
