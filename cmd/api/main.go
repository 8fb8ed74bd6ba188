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
	"github.com/yourusername/classroom-api/internal/config"
	"github.com/yourusername/classroom-api/internal/handler"
	"github.com/yourusername/classroom-api/internal/middleware"
	pgRepo "github.com/yourusername/classroom-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/classroom-api/internal/repository/redis"
	"github.com/yourusername/classroom-api/internal/service"
	"github.com/yourusername/classroom-api/pkg/auth"
	"github.com/yourusername/classroom-api/pkg/database"
)

func main() {
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

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	performanceRepo := pgRepo.NewPerformanceRepo(db)
	assignmentRepo := pgRepo.NewAssignmentRepo(db)
	announcementRepo := pgRepo.NewAnnouncementRepo(db)
	subjectRepo := pgRepo.NewSubjectRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Выбираем провайдера почты
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Provider == "resend" {
		resendService, err := service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName)
		if err != nil {
			log.Printf("Failed to initialize Resend email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
		log.Println("Email delivery: resend")
	} else {
		log.Println("Email delivery: disabled (noop)")
	}

	// AI сервис опционален: без ключа возвращается nil, а обработчики
	// отвечают на такие запросы ошибкой валидации
	aiService := service.NewAIService(cfg.AI.APIKey, cfg.AI.Model)
	if aiService.Enabled() {
		log.Println("AI tools: enabled")
	} else {
		log.Println("AI tools: disabled (no API key)")
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo)
	quizService := service.NewQuizService(quizRepo, questionRepo, userRepo, emailService)
	attemptService := service.NewAttemptService(attemptRepo, quizRepo, performanceRepo, userRepo, emailService, db)
	assignmentService := service.NewAssignmentService(assignmentRepo, userRepo, emailService, db)
	announcementService := service.NewAnnouncementService(announcementRepo, userRepo, emailService)
	dashboardService := service.NewDashboardService(userRepo, performanceRepo, cacheRepo, db)
	subjectService := service.NewSubjectService(subjectRepo, userRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, userService)
	quizHandler := handler.NewQuizHandler(quizService, attemptService, userService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	aiHandler := handler.NewAIHandler(aiService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit(middleware.DefaultAuthRateLimitConfig()))
		{
			// Строгий лимит на login/register против перебора паролей
			strict := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strict, authHandler.Register)
			authGroup.POST("/login", strict, authHandler.Login)
			authGroup.GET("/validate-tutor-code/:code", authHandler.ValidateTutorCode)

			authedAuth := authGroup.Group("")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.GET("/me", authHandler.Me)
				authedAuth.PUT("/me", authHandler.UpdateMe)
				authedAuth.DELETE("/me", authHandler.DeactivateMe)
				authedAuth.GET("/me/tutor-code", authMiddleware.TeacherOnly(), authHandler.MyTutorCode)
				authedAuth.POST("/link-tutor", authMiddleware.StudentOnly(), authHandler.LinkTutor)
			}
		}

		// Ученики текущего учителя
		students := api.Group("/students")
		students.Use(authMiddleware.RequireAuth(), authMiddleware.TeacherOnly())
		{
			students.GET("", authHandler.MyStudents)
		}

		// Викторины
		quizzes := api.Group("/quizzes")
		quizzes.Use(authMiddleware.RequireAuth())
		{
			quizzes.POST("", authMiddleware.TeacherOnly(), quizHandler.CreateQuiz)
			quizzes.GET("", quizHandler.ListQuizzes)

			quizWithID := quizzes.Group("/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.GET("", quizHandler.GetQuiz)

				// Попытки прохождения (только ученики)
				studentQuiz := quizWithID.Group("")
				studentQuiz.Use(authMiddleware.StudentOnly())
				{
					studentQuiz.POST("/start", quizHandler.StartAttempt)
					studentQuiz.POST("/submit", quizHandler.SubmitAttempt)
				}

				// Управление викториной (только учитель-автор)
				teacherQuiz := quizWithID.Group("")
				teacherQuiz.Use(authMiddleware.TeacherOnly())
				{
					teacherQuiz.PUT("", quizHandler.UpdateQuiz)
					teacherQuiz.PUT("/active", quizHandler.SetQuizActive)
					teacherQuiz.DELETE("", quizHandler.DeleteQuiz)
					teacherQuiz.POST("/questions", quizHandler.AddQuestions)
					teacherQuiz.DELETE("/questions/:questionId",
						middleware.ExtractUintParam("questionId", "questionID"), quizHandler.DeleteQuestion)
					teacherQuiz.GET("/analytics", quizHandler.GetAnalytics)
					teacherQuiz.GET("/attempts", quizHandler.ListAttempts)
					teacherQuiz.GET("/attempts/export", quizHandler.ExportAttempts)
				}
			}
		}

		// Задания
		assignments := api.Group("/assignments")
		assignments.Use(authMiddleware.RequireAuth())
		{
			assignments.POST("", authMiddleware.TeacherOnly(), assignmentHandler.CreateAssignment)
			assignments.GET("", assignmentHandler.ListAssignments)

			assignmentWithID := assignments.Group("/:id")
			assignmentWithID.Use(middleware.ExtractUintParam("id", "assignmentID"))
			{
				assignmentWithID.GET("", assignmentHandler.GetAssignment)
				assignmentWithID.POST("/submit", authMiddleware.StudentOnly(), assignmentHandler.SubmitAssignment)
				assignmentWithID.GET("/submissions", authMiddleware.TeacherOnly(), assignmentHandler.ListSubmissions)
			}
		}

		// Сдачи заданий
		submissions := api.Group("/submissions")
		submissions.Use(authMiddleware.RequireAuth())
		{
			submissions.GET("/my", authMiddleware.StudentOnly(), assignmentHandler.MySubmissions)
			submissions.PUT("/:id/grade",
				authMiddleware.TeacherOnly(),
				middleware.ExtractUintParam("id", "submissionID"),
				assignmentHandler.GradeSubmission)
		}

		// Объявления
		announcements := api.Group("/announcements")
		announcements.Use(authMiddleware.RequireAuth())
		{
			announcements.POST("", authMiddleware.TeacherOnly(), announcementHandler.CreateAnnouncement)
			announcements.GET("", announcementHandler.ListAnnouncements)
			announcements.GET("/:id",
				middleware.ExtractUintParam("id", "announcementID"), announcementHandler.GetAnnouncement)
		}

		// Публичная лента объявлений, без аутентификации
		public := api.Group("/public")
		{
			public.GET("/announcements", announcementHandler.ListAnnouncements)
			public.GET("/announcements/:id",
				middleware.ExtractUintParam("id", "announcementID"), announcementHandler.GetAnnouncement)
		}

		// Панель учителя и ученика
		dashboard := api.Group("/dashboard")
		dashboard.Use(authMiddleware.RequireAuth())
		{
			dashboard.GET("/overview", authMiddleware.TeacherOnly(), dashboardHandler.TeacherOverview)
			dashboard.GET("/students", authMiddleware.TeacherOnly(), dashboardHandler.StudentPerformances)
			dashboard.GET("/students/:id/diagnostic",
				authMiddleware.TeacherOnly(),
				middleware.ExtractUintParam("id", "studentID"),
				dashboardHandler.StudentDiagnostic)
			dashboard.GET("/leaderboard", dashboardHandler.Leaderboard)
			dashboard.GET("/my-performance", authMiddleware.StudentOnly(), dashboardHandler.MyPerformance)
		}

		// Предметы и классы
		subjects := api.Group("/subjects")
		subjects.Use(authMiddleware.RequireAuth())
		{
			subjects.POST("", authMiddleware.TeacherOnly(), subjectHandler.CreateSubject)
			subjects.GET("", subjectHandler.ListSubjects)

			subjectWithID := subjects.Group("/:id")
			subjectWithID.Use(middleware.ExtractUintParam("id", "subjectID"))
			{
				subjectWithID.DELETE("", authMiddleware.TeacherOnly(), subjectHandler.DeactivateSubject)
				subjectWithID.POST("/grades", authMiddleware.TeacherOnly(), subjectHandler.CreateGrade)
				subjectWithID.GET("/grades", subjectHandler.ListGrades)
			}
		}

		grades := api.Group("/grades/:id")
		grades.Use(authMiddleware.RequireAuth(), authMiddleware.TeacherOnly(), middleware.ExtractUintParam("id", "gradeID"))
		{
			grades.POST("/students", subjectHandler.EnrollStudent)
			grades.GET("/students", subjectHandler.ListGradeStudents)
			grades.DELETE("/students/:studentId",
				middleware.ExtractUintParam("studentId", "studentID"), subjectHandler.UnenrollStudent)
		}

		// AI-инструменты учителя: отдельный лимит, запросы к внешнему API дорогие
		ai := api.Group("/ai")
		ai.Use(authMiddleware.RequireAuth(), authMiddleware.TeacherOnly())
		ai.Use(rateLimiter.Limit(middleware.AIRateLimitConfig()))
		{
			ai.POST("/generate-quiz", aiHandler.GenerateQuiz)
			ai.POST("/suggest-feedback", aiHandler.SuggestFeedback)
			ai.POST("/lesson-plan", aiHandler.LessonPlan)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждем сигнала остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown с таймаутом
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
