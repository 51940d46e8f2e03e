package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/model"
)

// IssueReason classifies why an ingredient blocks preparing a recipe.
type IssueReason string

const (
	IssueNotFound     IssueReason = "not_found"
	IssueExpired      IssueReason = "expired"
	IssueInsufficient IssueReason = "insufficient"
)

// IngredientIssue is one problem found while checking a recipe's ingredients.
// Expired and insufficient are independent conditions; a single ingredient can
// produce both entries.
type IngredientIssue struct {
	Name      string      `json:"name"`
	Reason    IssueReason `json:"reason"`
	Required  float64     `json:"required,omitempty"`
	Available float64     `json:"available,omitempty"`
	Expired   bool        `json:"expired,omitempty"`
}

// availabilityEnv supplies the lookups the walkers need. Keeping them as
// functions lets the walk stay free of persistence concerns.
type availabilityEnv struct {
	now       time.Time
	stock     func(id uuid.UUID) (*model.FoodSupply, bool)
	subrecipe func(id uuid.UUID) (*model.Recipe, bool)
	logger    *zap.Logger
}

// checkIngredientIssues walks a recipe's ingredient list, recursing into
// subrecipes with the multiplier compounded by the subrecipe quantity.
// The visited set guards against circular subrecipe references: a branch that
// would revisit a recipe is skipped, so the walk terminates on any graph.
// Missing data becomes an issue entry, never an error.
func checkIngredientIssues(env *availabilityEnv, r *model.Recipe, multiplier float64, visited map[uuid.UUID]bool) []IngredientIssue {
	var issues []IngredientIssue

	for _, ing := range r.Ingredients {
		if ing.IsSubrecipe() {
			subID := *ing.SubrecipeID
			if visited[subID] {
				env.logger.Warn("subrecipe cycle skipped",
					zap.String("recipe_id", r.ID.String()),
					zap.String("subrecipe_id", subID.String()))
				continue
			}
			visited[subID] = true

			sub, ok := env.subrecipe(subID)
			if !ok {
				issues = append(issues, IngredientIssue{Name: ing.Name, Reason: IssueNotFound})
				continue
			}
			issues = append(issues, checkIngredientIssues(env, sub, multiplier*ing.Quantity, visited)...)
			continue
		}

		if ing.FoodSupplyID == nil {
			issues = append(issues, IngredientIssue{Name: ing.Name, Reason: IssueNotFound})
			continue
		}

		stock, ok := env.stock(*ing.FoodSupplyID)
		if !ok {
			issues = append(issues, IngredientIssue{Name: ing.Name, Reason: IssueNotFound})
			continue
		}

		if stock.Expired(env.now) {
			issues = append(issues, IngredientIssue{Name: ing.Name, Reason: IssueExpired, Expired: true})
		}
		if required := ing.Quantity * multiplier; stock.Quantity < required {
			issues = append(issues, IngredientIssue{
				Name:      ing.Name,
				Reason:    IssueInsufficient,
				Required:  required,
				Available: stock.Quantity,
			})
		}
	}

	return issues
}

// gatherRequirements accumulates the total food-supply quantities a recipe
// needs at the given multiplier, flattening subrecipes with the same cycle
// guard as the availability check.
func gatherRequirements(env *availabilityEnv, r *model.Recipe, multiplier float64, visited map[uuid.UUID]bool, acc map[uuid.UUID]float64) {
	for _, ing := range r.Ingredients {
		if ing.IsSubrecipe() {
			subID := *ing.SubrecipeID
			if visited[subID] {
				continue
			}
			visited[subID] = true
			if sub, ok := env.subrecipe(subID); ok {
				gatherRequirements(env, sub, multiplier*ing.Quantity, visited, acc)
			}
			continue
		}
		if ing.FoodSupplyID != nil {
			acc[*ing.FoodSupplyID] += ing.Quantity * multiplier
		}
	}
}

// computeCost returns the cost of one batch of the recipe at current supply
// prices. Subrecipe ingredients contribute quantity times the subrecipe's own
// batch cost; cyclic branches contribute nothing.
func computeCost(env *availabilityEnv, r *model.Recipe, visited map[uuid.UUID]bool) float64 {
	var total float64
	for _, ing := range r.Ingredients {
		if ing.IsSubrecipe() {
			subID := *ing.SubrecipeID
			if visited[subID] {
				continue
			}
			visited[subID] = true
			if sub, ok := env.subrecipe(subID); ok {
				total += ing.Quantity * computeCost(env, sub, visited)
			}
			continue
		}
		if ing.FoodSupplyID != nil {
			if stock, ok := env.stock(*ing.FoodSupplyID); ok {
				total += ing.Quantity * stock.PricePerUnit
			}
		}
	}
	return total
}
