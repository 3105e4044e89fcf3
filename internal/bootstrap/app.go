package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "collaborative-whiteboard/internal/handler/http"
	wsHandler "collaborative-whiteboard/internal/handler/websocket"
	"collaborative-whiteboard/internal/hub"
	gormpersistence "collaborative-whiteboard/internal/infra/persistence/gorm"
	"collaborative-whiteboard/internal/infra/setup"
	"collaborative-whiteboard/internal/middleware"
	"collaborative-whiteboard/internal/service"
	"collaborative-whiteboard/internal/tasks"
	"collaborative-whiteboard/internal/worker"
)

// Config holds everything loaded from the environment at startup.
type Config struct {
	DBUser             string
	DBPassword         string
	DBHost             string
	DBPort             string
	DBName             string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	ServerPort         string
	LogLevel           string
	AppEnv             string // development / production
	CORSAllowedOrigin  string
	RateLimitMax       int
	RateLimitWindow    time.Duration
	DefaultCursorColor string
	RoomRetentionHours int
	PurgeSchedule      string // cron expression for the room purge task
}

// LoadConfig reads configuration from the environment, with .env support.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             os.Getenv("DB_PORT"),
		DBName:             os.Getenv("DB_NAME"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		ServerPort:         os.Getenv("SERVER_PORT"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		AppEnv:             os.Getenv("APP_ENV"),
		CORSAllowedOrigin:  os.Getenv("CORS_ALLOWED_ORIGIN"),
		DefaultCursorColor: os.Getenv("DEFAULT_CURSOR_COLOR"),
		PurgeSchedule:      os.Getenv("ROOM_PURGE_SCHEDULE"),
		RateLimitMax:       100,
		RateLimitWindow:    1 * time.Second,
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.CORSAllowedOrigin == "" {
		cfg.CORSAllowedOrigin = "http://localhost:3000"
	}
	if cfg.DefaultCursorColor == "" {
		cfg.DefaultCursorColor = hub.DefaultCursorColor
	}
	if cfg.PurgeSchedule == "" {
		cfg.PurgeSchedule = "0 0 * * *" // daily at midnight
	}
	cfg.RoomRetentionHours = 24
	if v := os.Getenv("ROOM_RETENTION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid ROOM_RETENTION_HOURS value '%s'", v)
		}
		cfg.RoomRetentionHours = hours
	}

	if cfg.DBHost == "" {
		cfg.DBHost = "127.0.0.1"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "3306"
	}
	if cfg.DBName == "" {
		cfg.DBName = "whiteboard_db"
	}
	if cfg.DBUser == "" {
		return nil, fmt.Errorf("environment variable DB_USER must be set")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App holds all application components for startup and shutdown.
type App struct {
	Config         *Config
	Log            *logrus.Logger
	DB             *gorm.DB
	RedisClient    *redis.Client
	AsynqClient    *asynq.Client
	WorkerServer   *worker.WorkerServer
	Hub            *hub.Hub
	HttpServer     *http.Server
	redisClientOpt asynq.RedisClientOpt
	scheduler      *asynq.Scheduler
}

// NewApp creates and wires all application components.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(logLevel)
	log.Info("Configuration loaded successfully")

	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Asynq client initialized")

	roomRepo := gormpersistence.NewGormRoomRepository(db)

	roomService := service.NewRoomService(roomRepo)
	canvasService := service.NewCanvasService(roomRepo)
	log.Info("Services initialized")

	presence := hub.NewPresence()
	hubInstance := hub.NewHub(presence, canvasService, cfg.DefaultCursorColor)
	log.Info("Hub initialized")

	roomHandler := httpHandler.NewRoomHandler(roomService)
	websocketHandler := wsHandler.NewWebSocketHandler(hubInstance)

	workerServer := worker.NewWorkerServer(redisClientOpt, roomService, log)
	log.Info("Worker server initialized")

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(corsMiddleware(cfg.CORSAllowedOrigin))
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))

	api := router.Group("/api")
	roomRoutes := api.Group("/rooms")
	{
		roomRoutes.POST("/join", roomHandler.JoinRoom)
		roomRoutes.GET("/:roomId", roomHandler.GetRoom)
	}
	router.GET("/ws", websocketHandler.HandleConnection)
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	return &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		WorkerServer:   workerServer,
		Hub:            hubInstance,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}, nil
}

// Start launches the hub loop, the worker, the periodic purge scheduler and
// the HTTP server.
func (a *App) Start() {
	a.Log.Info("Starting application background routines...")
	go a.Hub.Run()
	go a.WorkerServer.Start()

	a.registerPeriodicTasks()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	a.scheduler = asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{})

	payload, err := tasks.NewRoomPurgeTask(a.Config.RoomRetentionHours)
	if err != nil {
		a.Log.Errorf("Failed to create room purge task payload: %v", err)
		return
	}
	task := asynq.NewTask(tasks.TypeRoomPurge, payload)

	entryID, err := a.scheduler.Register(a.Config.PurgeSchedule, task, asynq.Queue("low"))
	if err != nil {
		a.Log.Errorf("Could not register periodic room purge task: %v", err)
	} else {
		a.Log.Infof("Periodic room purge task registered with schedule '%s' (EntryID: %s)", a.Config.PurgeSchedule, entryID)
	}

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := a.scheduler.Run(); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
		}
	}()
}

// Shutdown stops all components gracefully.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}
	if a.WorkerServer != nil {
		a.WorkerServer.Shutdown()
	}

	a.Log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware logs each HTTP request with status, latency and caller.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}

func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
