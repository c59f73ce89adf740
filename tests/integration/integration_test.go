package integration_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/calcforge/calcdb/internal/calculations"
	"github.com/calcforge/calcdb/internal/config"
	"github.com/calcforge/calcdb/internal/database"
	"github.com/calcforge/calcdb/internal/handlers"
	"github.com/calcforge/calcdb/internal/models"
	"github.com/calcforge/calcdb/internal/services"
	"github.com/calcforge/calcdb/tests/helpers"
)

// envOr returns the environment value or the fallback when unset, so the
// suite runs without a .env file.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestWithMariaDB tests the service with a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("DB_IMAGE", "mariadb:11"),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	// Get container host and port
	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create config
	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Run tests
	t.Run("CreateAndRetrieveCalculation", func(t *testing.T) {
		testCreateAndRetrieveCalculation(t, db)
	})

	t.Run("PolymorphicFilterAndStats", func(t *testing.T) {
		testPolymorphicFilterAndStats(t, db)
	})

	t.Run("UpdateRecomputesResult", func(t *testing.T) {
		testUpdateRecomputesResult(t, db)
	})

	t.Run("CascadeDelete", func(t *testing.T) {
		testCascadeDelete(t, db)
	})

	t.Run("StoredRowsValidateOnEvaluation", func(t *testing.T) {
		testStoredRowsValidateOnEvaluation(t, db)
	})

	t.Run("OrderedInputsRoundTrip", func(t *testing.T) {
		testOrderedInputsRoundTrip(t, db)
	})

	t.Run("MissingOwnerRejected", func(t *testing.T) {
		testMissingOwnerRejected(t, db)
	})

	t.Run("Handler204Behavior", func(t *testing.T) {
		testHandler204Behavior(t, db)
	})
}

// TestWithPostgreSQL tests the service with a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("POSTGRES_IMAGE", "postgres:16-alpine"),
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	// Get container host and port
	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create config
	cfg := &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(2 * time.Second)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Run tests
	t.Run("CreateAndRetrieveCalculation", func(t *testing.T) {
		testCreateAndRetrieveCalculation(t, db)
	})

	t.Run("PolymorphicFilterAndStats", func(t *testing.T) {
		testPolymorphicFilterAndStats(t, db)
	})

	t.Run("UpdateRecomputesResult", func(t *testing.T) {
		testUpdateRecomputesResult(t, db)
	})

	t.Run("Handler204Behavior", func(t *testing.T) {
		testHandler204Behavior(t, db)
	})
}

// testCreateAndRetrieveCalculation runs a calculation through the factory,
// the result cache, and a read back from storage
func testCreateAndRetrieveCalculation(t *testing.T, db *gorm.DB) {
	user := helpers.CreateTestUser(t, db, "int-crud", "int-crud@example.com", "pw-int-crud1")

	calc, err := services.CreateCalculation(db, "addition", user.ID, []float64{10, 5})
	if err != nil {
		t.Fatalf("Failed to create calculation: %v", err)
	}
	if calc.Result == nil || *calc.Result != 15 {
		t.Errorf("Expected cached result 15, got %v", calc.Result)
	}

	stored, err := services.GetCalculation(db, user.ID, calc.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve calculation: %v", err)
	}
	if stored.Type != calculations.Addition {
		t.Errorf("Expected type addition, got %s", stored.Type)
	}
	if len(stored.Inputs) != 2 || stored.Inputs[0] != 10 || stored.Inputs[1] != 5 {
		t.Errorf("Expected inputs [10 5], got %v", stored.Inputs)
	}
	if stored.Result == nil || *stored.Result != 15 {
		t.Errorf("Expected stored result 15, got %v", stored.Result)
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set on insert")
	}
}

// testPolymorphicFilterAndStats exercises the type filter and the
// per-variant counts over a mixed set of rows
func testPolymorphicFilterAndStats(t *testing.T, db *gorm.DB) {
	user := helpers.CreateTestUser(t, db, "int-filter", "int-filter@example.com", "pw-int-filter1")

	helpers.CreateTestCalculation(t, db, user.ID, "addition", []float64{1, 2})
	helpers.CreateTestCalculation(t, db, user.ID, "addition", []float64{3, 4})
	helpers.CreateTestCalculation(t, db, user.ID, "subtraction", []float64{10, 5, 2})
	helpers.CreateTestCalculation(t, db, user.ID, "division", []float64{100, 5, 2})

	all, err := services.ListCalculations(db, user.ID, "")
	if err != nil {
		t.Fatalf("Failed to list calculations: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 calculations, got %d", len(all))
	}

	additions, err := services.ListCalculations(db, user.ID, calculations.Addition)
	if err != nil {
		t.Fatalf("Failed to list filtered calculations: %v", err)
	}
	if len(additions) != 2 {
		t.Errorf("Expected 2 additions, got %d", len(additions))
	}
	for _, c := range additions {
		if c.Type != calculations.Addition {
			t.Errorf("Filter leaked type %s", c.Type)
		}
	}

	counts, err := services.CountCalculationsByType(db, user.ID)
	if err != nil {
		t.Fatalf("Failed to count by type: %v", err)
	}
	want := map[calculations.Kind]int64{
		calculations.Addition:    2,
		calculations.Subtraction: 1,
		calculations.Division:    1,
	}
	if len(counts) != len(want) {
		t.Fatalf("Expected %d type rows, got %d", len(want), len(counts))
	}
	for _, tc := range counts {
		if want[tc.Type] != tc.Count {
			t.Errorf("Type %s count = %d, want %d", tc.Type, tc.Count, want[tc.Type])
		}
	}
}

// testUpdateRecomputesResult verifies the stored result cache follows the
// inputs and never drifts, even across a rejected update
func testUpdateRecomputesResult(t *testing.T, db *gorm.DB) {
	user := helpers.CreateTestUser(t, db, "int-update", "int-update@example.com", "pw-int-update1")
	calc := helpers.CreateTestCalculation(t, db, user.ID, "division", []float64{100, 5})

	updated, err := services.UpdateCalculationInputs(db, user.ID, calc.ID, []float64{50, 2})
	if err != nil {
		t.Fatalf("Failed to update calculation: %v", err)
	}
	if updated.Result == nil || *updated.Result != 25 {
		t.Errorf("Expected recomputed result 25, got %v", updated.Result)
	}
	if updated.Type != calculations.Division {
		t.Errorf("Update changed type to %s", updated.Type)
	}

	// A zero divisor rejects the update and leaves the row untouched.
	_, err = services.UpdateCalculationInputs(db, user.ID, calc.ID, []float64{10, 0})
	if !errors.Is(err, calculations.ErrDivisionByZero) {
		t.Fatalf("Expected ErrDivisionByZero, got %v", err)
	}

	stored, err := services.GetCalculation(db, user.ID, calc.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve calculation: %v", err)
	}
	if len(stored.Inputs) != 2 || stored.Inputs[0] != 50 || stored.Inputs[1] != 2 {
		t.Errorf("Rejected update mutated inputs: %v", stored.Inputs)
	}
	if stored.Result == nil || *stored.Result != 25 {
		t.Errorf("Rejected update mutated result: %v", stored.Result)
	}
}

// testCascadeDelete verifies deleting a user removes its calculations and
// nothing else
func testCascadeDelete(t *testing.T, db *gorm.DB) {
	victim := helpers.CreateTestUser(t, db, "int-victim", "int-victim@example.com", "pw-int-victim1")
	bystander := helpers.CreateTestUser(t, db, "int-bystander", "int-bystander@example.com", "pw-int-bystander1")

	helpers.CreateTestCalculation(t, db, victim.ID, "addition", []float64{1, 2})
	helpers.CreateTestCalculation(t, db, victim.ID, "multiplication", []float64{2, 3, 4})
	kept := helpers.CreateTestCalculation(t, db, bystander.ID, "subtraction", []float64{9, 4})

	if err := services.DeleteUser(db, victim.ID); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	var userCount int64
	db.Model(&models.User{}).Where("id = ?", victim.ID).Count(&userCount)
	if userCount != 0 {
		t.Error("Expected victim user row to be gone")
	}

	var orphanCount int64
	db.Model(&models.Calculation{}).Where("user_id = ?", victim.ID).Count(&orphanCount)
	if orphanCount != 0 {
		t.Errorf("Expected 0 orphaned calculations, got %d", orphanCount)
	}

	if _, err := services.GetCalculation(db, bystander.ID, kept.ID); err != nil {
		t.Errorf("Bystander's calculation should survive: %v", err)
	}
}

// testStoredRowsValidateOnEvaluation writes a division row around the
// factory and verifies evaluation still rejects it after a database read
func testStoredRowsValidateOnEvaluation(t *testing.T, db *gorm.DB) {
	user := helpers.CreateTestUser(t, db, "int-tamper", "int-tamper@example.com", "pw-int-tamper1")

	raw := models.NewDivision(user.ID, []float64{10, 0})
	if err := db.Create(raw).Error; err != nil {
		t.Fatalf("Failed to insert raw row: %v", err)
	}

	stored, err := services.GetCalculation(db, user.ID, raw.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve calculation: %v", err)
	}
	if _, err := stored.GetResult(); !errors.Is(err, calculations.ErrDivisionByZero) {
		t.Errorf("Expected ErrDivisionByZero from stored row, got %v", err)
	}
}

// testOrderedInputsRoundTrip verifies element order survives the JSON column
// on a list long enough to make reordering visible
func testOrderedInputsRoundTrip(t *testing.T, db *gorm.DB) {
	user := helpers.CreateTestUser(t, db, "int-order", "int-order@example.com", "pw-int-order1")

	// 100 elements with negatives and fractions
	inputs := make([]float64, 100)
	inputs[0] = 10000
	for i := 1; i < len(inputs); i++ {
		inputs[i] = float64(i) * 0.5
		if i%3 == 0 {
			inputs[i] = -inputs[i]
		}
	}
	want := inputs[0]
	for _, v := range inputs[1:] {
		want -= v
	}

	calc := helpers.CreateTestCalculation(t, db, user.ID, "subtraction", inputs)

	stored, err := services.GetCalculation(db, user.ID, calc.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve calculation: %v", err)
	}
	if len(stored.Inputs) != len(inputs) {
		t.Fatalf("Expected %d inputs, got %d", len(inputs), len(stored.Inputs))
	}
	for i := range inputs {
		if stored.Inputs[i] != inputs[i] {
			t.Fatalf("Input %d = %v, want %v", i, stored.Inputs[i], inputs[i])
		}
	}
	if stored.Result == nil || *stored.Result != want {
		t.Errorf("Expected left-fold result %v, got %v", want, stored.Result)
	}
}

// testMissingOwnerRejected verifies a calculation cannot be created for a
// user id that does not exist
func testMissingOwnerRejected(t *testing.T, db *gorm.DB) {
	ghost := uuid.New()

	_, err := services.CreateCalculation(db, "addition", ghost, []float64{1, 2})
	if err == nil || err.Error() != "not found" {
		t.Fatalf("Expected not found, got %v", err)
	}

	var count int64
	db.Model(&models.Calculation{}).Where("user_id = ?", ghost).Count(&count)
	if count != 0 {
		t.Errorf("Expected 0 rows for the ghost user, got %d", count)
	}
}

// testHandler204Behavior tests the handler's 204 No Content response with a real database
func testHandler204Behavior(t *testing.T, db *gorm.DB) {
	user := helpers.CreateTestUser(t, db, "int-empty", "int-empty@example.com", "pw-int-empty1")

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", user.ID)
		return c.Next()
	})
	handler := &handlers.CalculationHandler{DB: db}
	app.Get("/api/calculations", handler.ListCalculations)
	app.Get("/api/calculations/stats", handler.GetCalculationStats)

	// No calculations yet -> 204
	req := httptest.NewRequest("GET", "/api/calculations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 204)
	helpers.AssertNoContent(t, resp)

	// Stats over zero rows -> 204
	req = httptest.NewRequest("GET", "/api/calculations/stats", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 204)
	helpers.AssertNoContent(t, resp)
}

// TestHealthCheck tests the health check functionality
func TestHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("DB_IMAGE", "mariadb:11"),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run health check against the live database
	result := services.HealthCheck(cfg, db)

	if result.Status != "healthy" {
		t.Errorf("Expected status to be healthy, got: %s", result.Status)
	}
	if result.Database != "ok" {
		t.Errorf("Expected database to be ok, got: %s", result.Database)
	}
	if result.Details["database_type"] != "mysql" {
		t.Errorf("Expected database_type mysql, got: %s", result.Details["database_type"])
	}

	// Close the pool and check again; the ping failure must surface
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("Failed to close pool: %v", err)
	}

	result = services.HealthCheck(cfg, db)
	if result.Status != "unhealthy" {
		t.Errorf("Expected status to be unhealthy, got: %s", result.Status)
	}
	if result.Database != "unreachable" {
		t.Errorf("Expected database to be unreachable, got: %s", result.Database)
	}
}
