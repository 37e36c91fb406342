package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mcp-tool-shop-org/budgetwise/internal/config"
	"github.com/mcp-tool-shop-org/budgetwise/internal/database"
	"github.com/mcp-tool-shop-org/budgetwise/internal/engine"
	"github.com/mcp-tool-shop-org/budgetwise/internal/handlers"
	"github.com/mcp-tool-shop-org/budgetwise/internal/logger"
	"github.com/mcp-tool-shop-org/budgetwise/internal/middleware"
	"github.com/mcp-tool-shop-org/budgetwise/internal/store"
	"github.com/mcp-tool-shop-org/budgetwise/internal/validator"
)

func main() {
	logger.Init(os.Getenv("BUDGETWISE_ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	factory := store.NewFactory(dbManager.DB())
	orchestrator := engine.NewOrchestrator(factory)

	accountHandler := handlers.NewAccountHandler(factory)
	envelopeHandler := handlers.NewEnvelopeHandler(factory)
	payeeHandler := handlers.NewPayeeHandler(factory)
	transactionHandler := handlers.NewTransactionHandler(orchestrator, factory)
	allocationHandler := handlers.NewAllocationHandler(orchestrator)
	csvImportHandler := handlers.NewCSVImportHandler(orchestrator)
	reconciliationHandler := handlers.NewReconciliationHandler(orchestrator)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware. This engine is local-first and single-user, but the
	// API is still served to a browser-based UI on a different origin.
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.POST("/:id/close", accountHandler.CloseAccount)
	accounts.GET("/:id/transactions", transactionHandler.ListAccountTransactions)
	accounts.POST("/:id/import/preview", csvImportHandler.PreviewImport)
	accounts.POST("/:id/import/commit", csvImportHandler.CommitImport)
	accounts.POST("/:id/reconcile", reconciliationHandler.Reconcile)

	envelopes := v1.Group("/envelopes")
	envelopes.POST("", envelopeHandler.CreateEnvelope)
	envelopes.GET("", envelopeHandler.ListEnvelopes)
	envelopes.GET("/groups", envelopeHandler.ListGroups)
	envelopes.GET("/:id", envelopeHandler.GetEnvelope)
	envelopes.PATCH("/:id", envelopeHandler.UpdateEnvelope)
	envelopes.PUT("/:id/allocation", allocationHandler.SetAllocation)
	envelopes.POST("/:id/allocation/adjust", allocationHandler.AdjustAllocation)
	envelopes.POST("/:id/allocation/move", allocationHandler.MoveAllocation)
	envelopes.PUT("/:id/goal", allocationHandler.SetGoal)

	budgetPeriods := v1.Group("/budget-periods")
	budgetPeriods.POST("/auto-assign", allocationHandler.AutoAssignToGoals)
	budgetPeriods.POST("/rollover", allocationHandler.Rollover)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/clear", transactionHandler.MarkCleared)
	transactions.POST("/:id/unclear", transactionHandler.MarkUncleared)
	transactions.POST("/:id/envelope", transactionHandler.AssignToEnvelope)

	payees := v1.Group("/payees")
	payees.GET("", payeeHandler.SearchPayees)
	payees.GET("/:id", payeeHandler.GetPayee)

	log.Infof("Starting BudgetWise backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
