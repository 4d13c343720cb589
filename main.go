package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var (
	config        *Config
	protocolTable ProtocolTable
	capacityTable CapacityTable
	store         RecordStore
)

func init() {
	var err error

	// Extract necessary environment variables
	timeoutEnv := os.Getenv("TIMEOUT")
	appVersion = os.Getenv("APP_VERSION")

	// Set default value if not set
	if timeoutEnv == "" {
		globalTimeout = 30
	} else {
		// Convert timeout to integer
		globalTimeout, err = strconv.Atoi(timeoutEnv)
		if err != nil {
			log.Fatalf("Failed to convert timeout environment variable to integer")
		}
	}

	// Read rule table overrides
	config, err = readConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Build effective rule tables
	protocolTable = buildProtocolTable(config)
	capacityTable = buildCapacityTable(config)
	if config.DefaultCapacity != nil {
		defaultDailyCapacity = *config.DefaultCapacity
	}
}

func main() {
	// Create new Echo object
	e := echo.New()

	// Add basic middleware to log all requests
	e.Use(middleware.Logger())

	// Configure elastic apm logging
	initAPM(e)

	// Sets CORS headers to allow all origins, but restrict HTTP method type
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	// Middleware to provide more control over response status for APM transactions
	// This must go after the Elastic APM middleware
	e.Use(filterError)

	// Postgres when a database is configured, in-memory store otherwise
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := newPGStore(context.Background(), databaseURL)
		if err != nil {
			e.Logger.Fatal(err)
		}
		defer pg.Close()
		store = pg
	} else {
		zapLogger.Info("DATABASE_URL not set, using in-memory record store")
		store = newMemoryStore()
	}

	// Adds a heartbeat handler
	e.GET("/heartbeat", heartbeat)

	// Creates API group to simplify middleware declaration
	schedulingGroup := e.Group("/scheduling")

	// Add a GET handler describing the scheduling service
	schedulingGroup.GET("", services)

	// Validation and scheduling handlers
	schedulingGroup.POST("/validate", validateRecordHandler, openId)
	schedulingGroup.POST("/schedule", scheduleHandler, openId)
	schedulingGroup.POST("/import", importRecords, openId)

	// Start server
	e.Logger.Fatal(e.Start(":8000"))
}
