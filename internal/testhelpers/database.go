package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opsboard/backend/internal/model"
)

// sqliteSchema mirrors the application models for SQLite, which cannot run
// the Postgres AutoMigrate DDL (gen_random_uuid defaults, jsonb, vector).
var sqliteSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		name TEXT,
		email TEXT UNIQUE,
		password_hash TEXT,
		role TEXT DEFAULT 'staff'
	);`,
	`CREATE TABLE user_profiles (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		user_id TEXT,
		username TEXT,
		job_title TEXT,
		photo_url TEXT
	);`,
	`CREATE TABLE recipes (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		name TEXT,
		description TEXT,
		category TEXT,
		servings INTEGER DEFAULT 1,
		prep_time_minutes INTEGER,
		ingredients TEXT DEFAULT '[]',
		instructions TEXT DEFAULT '[]',
		is_subrecipe BOOLEAN DEFAULT FALSE,
		total_cost REAL,
		cost_per_serving REAL,
		image_url TEXT,
		embedding TEXT,
		user_id TEXT
	);`,
	`CREATE TABLE food_supplies (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		name TEXT,
		category TEXT,
		quantity REAL DEFAULT 0,
		unit TEXT,
		price_per_unit REAL,
		expiration_date DATETIME,
		min_threshold REAL,
		barcode TEXT,
		vendor_id TEXT
	);`,
	`CREATE TABLE consumption_records (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		food_supply_id TEXT,
		supply_name TEXT,
		category TEXT,
		quantity REAL,
		unit TEXT,
		cost_value REAL,
		kind TEXT,
		reason TEXT,
		recipe_id TEXT,
		actor_id TEXT
	);`,
	`CREATE TABLE vehicles (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		name TEXT,
		model TEXT,
		plate_number TEXT UNIQUE,
		category TEXT,
		status TEXT DEFAULT 'available',
		daily_rate REAL,
		odometer_km REAL,
		photo_url TEXT
	);`,
	`CREATE TABLE vehicle_rentals (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		vehicle_id TEXT,
		renter_name TEXT,
		renter_contact TEXT,
		start_at DATETIME,
		due_at DATETIME,
		returned_at DATETIME,
		start_odometer_km REAL,
		end_odometer_km REAL,
		total_price REAL
	);`,
	`CREATE TABLE vendors (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		name TEXT UNIQUE,
		category TEXT,
		contact_name TEXT,
		email TEXT,
		phone TEXT,
		address TEXT,
		notes TEXT
	);`,
	`CREATE TABLE staff_activities (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		actor_id TEXT,
		actor_name TEXT,
		action TEXT,
		entity TEXT,
		entity_id TEXT,
		method TEXT,
		path TEXT,
		detail TEXT
	);`,
}

// SetupTestDB opens an in-memory SQLite database with the application schema.
// It is the fast path for service and handler tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}
	return db
}

// SetupPostgresDatabase starts a containerized PostgreSQL with pgvector and
// returns a connected gorm handle. Tests using it are skipped when docker is
// not installed.
func SetupPostgresDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	const (
		dbUser     = "postgres"
		dbPassword = "postpass"
		dbName     = "opsboard_test"
	)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
				"POSTGRES_DB":       dbName,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, mappedPort.Port(), dbUser, dbPassword, dbName)

	var db *gorm.DB
	for attempt := 0; attempt < 10; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector;").Error; err != nil {
		t.Fatalf("failed to install pgvector extension: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Recipe{},
		&model.FoodSupply{},
		&model.ConsumptionRecord{},
		&model.Vehicle{},
		&model.VehicleRental{},
		&model.Vendor{},
		&model.StaffActivity{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
