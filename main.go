package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"attendance-backend/checkin"
	"attendance-backend/config"
	"attendance-backend/contracts"
	"attendance-backend/handlers"
	"attendance-backend/logger"
	"attendance-backend/store"
)

func connectToEthereum(rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum client: %w", err)
	}
	return client, nil
}

func main() {
	// Optional .env file; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer log.Sync()

	// Database connection
	pool, err := store.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()
	log.Info("connected to database")

	if err := store.Migrate(context.Background(), pool); err != nil {
		log.Fatal("unable to apply schema", zap.Error(err))
	}

	// Ledger gateway. Missing mint configuration is not fatal: reads still
	// work, and check-ins report the misconfiguration distinctly.
	var gateway checkin.LedgerGateway
	if cfg.Ledger.Complete() {
		ethClient, err := connectToEthereum(cfg.Ledger.RPCURL)
		if err != nil {
			log.Fatal("unable to connect to Ethereum node", zap.Error(err))
		}
		defer ethClient.Close()
		log.Info("connected to Ethereum node", zap.String("rpc_url", cfg.Ledger.RPCURL))

		nft, err := contracts.NewAttendanceNFT(ethClient, contracts.Config{
			ContractAddress: cfg.Ledger.ContractAddress,
			MinterKey:       cfg.Ledger.MinterKey,
			MintTimeout:     cfg.Ledger.MintTimeout,
		}, log)
		if err != nil {
			log.Fatal("unable to set up attendance NFT contract", zap.Error(err))
		}
		gateway = nft
	} else {
		log.Warn("mint configuration incomplete, check-ins will fail until RPC_URL, NFT_CONTRACT_ADDRESS and NFT_MINTER_PRIVATE_KEY are set")
	}

	// Stores
	sessionStore := store.NewSessionStore(pool)
	attendanceStore := store.NewAttendanceStore(pool)
	adminStore := store.NewAdminStore(pool)
	studentStore := store.NewStudentStore(pool)

	// Core
	lifecycle := checkin.NewLifecycle(sessionStore, log)
	coordinator := checkin.NewCoordinator(lifecycle, attendanceStore, adminStore, gateway, log)

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionStore, lifecycle, log)
	attendanceHandler := handlers.NewAttendanceHandler(coordinator, attendanceStore, log)
	exportHandler := handlers.NewExportHandler(lifecycle, attendanceStore, studentStore, adminStore, log)
	studentHandler := handlers.NewStudentHandler(studentStore, log)
	adminHandler := handlers.NewAdminHandler(adminStore, log)
	statsHandler := handlers.NewStatsHandler(sessionStore, attendanceStore, lifecycle, log)

	// Setup Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// API routes
	api := router.Group("/api/v1")
	{
		// Session routes
		api.POST("/sessions", sessionHandler.CreateSession)
		api.GET("/sessions", sessionHandler.GetSessions)
		api.GET("/sessions/:id", sessionHandler.GetSession)
		api.PATCH("/sessions/:id", sessionHandler.UpdateSession)
		api.DELETE("/sessions/:id", sessionHandler.DeleteSession)
		api.GET("/sessions/:id/export", exportHandler.ExportRoster)

		// Attendance routes
		api.POST("/attendances", attendanceHandler.CheckIn)
		api.GET("/attendances", attendanceHandler.GetAttendances)

		// Student profile routes
		api.POST("/students", studentHandler.UpsertStudent)
		api.GET("/students/:walletAddress", studentHandler.GetStudent)

		// Admin registry routes
		api.POST("/admins", adminHandler.AddAdmin)
		api.GET("/admins", adminHandler.GetAdmins)

		// Stats route
		api.GET("/stats", statsHandler.GetStats)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
