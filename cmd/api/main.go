package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/gchris96/Quiz-Forge/internal/config"
	"github.com/gchris96/Quiz-Forge/internal/domain/repository"
	"github.com/gchris96/Quiz-Forge/internal/handler"
	"github.com/gchris96/Quiz-Forge/internal/middleware"
	pgRepo "github.com/gchris96/Quiz-Forge/internal/repository/postgres"
	redisRepo "github.com/gchris96/Quiz-Forge/internal/repository/redis"
	"github.com/gchris96/Quiz-Forge/internal/service"
	"github.com/gchris96/Quiz-Forge/internal/service/generation"
	"github.com/gchris96/Quiz-Forge/pkg/auth"
	"github.com/gchris96/Quiz-Forge/pkg/database"
)

func main() {
	// Подхватываем .env, если он есть (локальная разработка)
	if err := godotenv.Load(); err == nil {
		log.Println("Загружены переменные окружения из .env")
	}

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis (опционально).
	// Без Redis приложение работает: кеш и rate limiting отключаются.
	var cacheRepo repository.CacheRepository
	var rateLimiter *middleware.RateLimiter
	if cfg.Redis.Enabled {
		redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}

		cache, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize cache repository: %v", err)
			os.Exit(1)
		}
		cacheRepo = cache
		rateLimiter = middleware.NewRateLimiter(redisClient)
	} else {
		log.Println("Redis отключен: кеширование и rate limiting неактивны")
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	unitOfWork := pgRepo.NewUnitOfWork(db)

	// Инициализируем JWT сервис
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)

	// Инициализируем генератор викторин
	generator := generation.NewService(generation.Config{
		Provider:       cfg.AI.Provider,
		OpenAIAPIKey:   cfg.AI.OpenAIAPIKey,
		OpenAIModel:    cfg.AI.OpenAIModel,
		ClaudeAPIKey:   cfg.AI.ClaudeAPIKey,
		ClaudeModel:    cfg.AI.ClaudeModel,
		RequestTimeout: time.Duration(cfg.AI.RequestTimeoutSec) * time.Second,
	})
	if generator.Configured() {
		log.Printf("AI генерация активна: провайдер %s", cfg.AI.Provider)
	} else {
		log.Printf("AI генерация не настроена (%s не задан): используется placeholder-контент", generator.APIKeyEnvVar())
	}

	// Инициализируем сервисы
	userService := service.NewUserService(userRepo, jwtService)
	quizService := service.NewQuizService(quizRepo, userRepo, cacheRepo, generator)
	answerService := service.NewAnswerService(unitOfWork, cacheRepo)
	resultService := service.NewResultService(quizRepo)

	// Инициализируем обработчики
	userHandler := handler.NewUserHandler(userService)
	quizHandler := handler.NewQuizHandler(quizService, answerService, resultService)

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if gin.Mode() == gin.ReleaseMode {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	// limited оборачивает обработчик rate limiting'ом, если Redis доступен
	limited := func(cfg middleware.RateLimitConfig, h gin.HandlerFunc) []gin.HandlerFunc {
		if rateLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{rateLimiter.Limit(cfg), h}
	}

	// Настраиваем маршруты
	router.POST("/users", limited(middleware.DefaultAuthRateLimitConfig(), userHandler.CreateUser)...)
	router.POST("/sessions", limited(middleware.DefaultAuthRateLimitConfig(), userHandler.CreateSession)...)

	quizzes := router.Group("/quizzes")
	{
		quizzes.POST("", quizHandler.CreateQuiz)
		quizzes.POST("/placeholder", quizHandler.CreatePlaceholderQuiz)
		quizzes.POST("/generate", limited(middleware.GenerateRateLimitConfig(), quizHandler.GenerateQuiz)...)
		quizzes.GET("", quizHandler.ListQuizzes)

		quizWithID := quizzes.Group("/:id")
		quizWithID.Use(middleware.ExtractUUIDParam("id", "quizID"))
		{
			quizWithID.GET("", quizHandler.GetQuiz)
			quizWithID.POST("/answers", quizHandler.SubmitAnswer)
			quizWithID.GET("/results", quizHandler.GetResults)
			quizWithID.GET("/results/export", quizHandler.ExportResults)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	readTimeout := cfg.Server.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout == 0 {
		// Генерация через внешнего провайдера может занимать до минуты
		writeTimeout = cfg.AI.RequestTimeoutSec + 30
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
