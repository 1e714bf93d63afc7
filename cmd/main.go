package main

import (
	"context"
	"net/http"
	"time"

	"github.com/edupress/quizengine/config"
	"github.com/edupress/quizengine/database"
	_ "github.com/edupress/quizengine/docs" // Swagger docs
	"github.com/edupress/quizengine/internal/controller/student"
	"github.com/edupress/quizengine/internal/controller/teacher"
	"github.com/edupress/quizengine/internal/logger"
	"github.com/edupress/quizengine/internal/model"
	"github.com/edupress/quizengine/internal/notification"
	"github.com/edupress/quizengine/internal/platform"
	"github.com/edupress/quizengine/internal/repository"
	"github.com/edupress/quizengine/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quiz Assessment Engine API
// @version 1.0
// @description Quiz authoring, attempt management, and grading for the learning platform.
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			NewNotifier,
		),

		fx.Provide(
			repository.NewQuizRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
		),

		fx.Provide(
			platform.NewCourseResolver,
			platform.NewStudentDirectory,
		),

		fx.Provide(
			service.NewQuizService,
			service.NewQuestionService,
			service.NewAttemptService,
			service.NewGradingService,
		),

		fx.Provide(
			teacher.NewQuizController,
			student.NewQuizController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(MigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// NewNotifier picks the AMQP-backed sink when a broker is configured and
// falls back to a no-op sink otherwise. Either way delivery runs behind
// an async queue so request handlers never wait on the broker.
func NewNotifier(lc fx.Lifecycle, cfg *config.Config) notification.Notifier {
	var sink notification.Notifier = notification.NopNotifier{}
	var amqpSink *notification.AMQPNotifier

	if cfg.AMQP.URL != "" {
		publisher, err := notification.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("AMQP broker unreachable, notifications will be dropped")
		} else {
			sink = publisher
			amqpSink = publisher
		}
	}

	async := notification.NewAsyncNotifier(sink, 256)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			async.Close()
			if amqpSink != nil {
				amqpSink.Close()
			}
			return nil
		},
	})
	return async
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	teacherCtrl *teacher.QuizController,
	studentCtrl *student.QuizController,
) {
	teacherCtrl.RegisterRoutes(router.Group("/api/v1/teacher"))
	studentCtrl.RegisterRoutes(router.Group("/api/v1"))

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quiz engine server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func MigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Quiz{},
		&model.Question{},
		&model.QuestionOption{},
		&model.QuizAttempt{},
		&model.StudentAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}

	// Partial unique index backing AttemptRepository.CreateInProgress: at
	// most one in-progress attempt per (quiz, student).
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_attempt_in_progress
		ON quiz_attempts (quiz_id, student_id)
		WHERE status = 'in_progress' AND deleted_at IS NULL`).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to create in-progress attempt index")
		return err
	}

	log.Info().Msg("Database migration completed successfully.")
	return nil
}
