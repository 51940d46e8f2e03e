package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsboard/backend/config"
	"github.com/opsboard/backend/internal/database"
	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/service"
)

// Seeds a development database with a demo user, vendors, supplies, vehicles
// and a recipe with one subrecipe.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	logger := zap.NewNop()

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	user := model.User{
		ID:           uuid.New(),
		Name:         "Demo Manager",
		Email:        "manager@example.com",
		PasswordHash: string(hashed),
		Role:         "manager",
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	vendor := model.Vendor{
		ID:          uuid.New(),
		Name:        "Harbor Produce Co",
		Category:    "produce",
		ContactName: "Sam Figueroa",
		Email:       "orders@harborproduce.example.com",
		Phone:       "555-0142",
	}
	if err := db.Create(&vendor).Error; err != nil {
		log.Fatalf("Failed to seed vendor: %v", err)
	}

	nextWeek := time.Now().AddDate(0, 0, 7)
	supplies := []model.FoodSupply{
		{ID: uuid.New(), Name: "Tomatoes", Category: "produce", Quantity: 40, Unit: "kg", PricePerUnit: 2.5, ExpirationDate: &nextWeek, MinThreshold: 10, VendorID: &vendor.ID},
		{ID: uuid.New(), Name: "Olive Oil", Category: "pantry", Quantity: 20, Unit: "l", PricePerUnit: 8, MinThreshold: 5},
		{ID: uuid.New(), Name: "Basil", Category: "produce", Quantity: 3, Unit: "kg", PricePerUnit: 12, ExpirationDate: &nextWeek, MinThreshold: 1, VendorID: &vendor.ID},
	}
	for i := range supplies {
		if err := db.Create(&supplies[i]).Error; err != nil {
			log.Fatalf("Failed to seed supply: %v", err)
		}
	}

	vehicles := []model.Vehicle{
		{ID: uuid.New(), Name: "Delivery Van 1", Model: "Sprinter 316", PlateNumber: "OPS-101", Category: "van", Status: model.VehicleAvailable, DailyRate: 85, OdometerKm: 42100},
		{ID: uuid.New(), Name: "Catering Truck", Model: "Transit 350", PlateNumber: "OPS-102", Category: "truck", Status: model.VehicleAvailable, DailyRate: 120, OdometerKm: 18750},
	}
	for i := range vehicles {
		if err := db.Create(&vehicles[i]).Error; err != nil {
			log.Fatalf("Failed to seed vehicle: %v", err)
		}
	}

	recipes := service.NewRecipeService(db, nil, logger)

	sauce, err := recipes.CreateRecipe(ctx, &model.Recipe{
		Name:        "Tomato Base Sauce",
		Description: "House tomato sauce used across the menu",
		Category:    "sauce",
		Servings:    10,
		IsSubrecipe: true,
		Ingredients: model.IngredientList{
			{FoodSupplyID: &supplies[0].ID, Name: "Tomatoes", Quantity: 5, Unit: "kg"},
			{FoodSupplyID: &supplies[1].ID, Name: "Olive Oil", Quantity: 0.5, Unit: "l"},
		},
		Instructions: model.JSONBStringArray{"Blanch and peel tomatoes", "Simmer with oil for 40 minutes"},
		UserID:       user.ID,
	})
	if err != nil {
		log.Fatalf("Failed to seed subrecipe: %v", err)
	}

	if _, err := recipes.CreateRecipe(ctx, &model.Recipe{
		Name:        "Margherita Pasta",
		Description: "Pasta with house tomato sauce and basil",
		Category:    "main",
		Servings:    4,
		Ingredients: model.IngredientList{
			{SubrecipeID: &sauce.ID, Name: "Tomato Base Sauce", Quantity: 0.4},
			{FoodSupplyID: &supplies[2].ID, Name: "Basil", Quantity: 0.1, Unit: "kg"},
		},
		Instructions: model.JSONBStringArray{"Cook pasta", "Toss with sauce and basil"},
		UserID:       user.ID,
	}); err != nil {
		log.Fatalf("Failed to seed recipe: %v", err)
	}

	log.Println("Seed data created successfully")
}
