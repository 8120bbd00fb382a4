package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/config"
	"github.com/sistira/sistira/database"
	_ "github.com/sistira/sistira/docs" // Swagger docs - auto-generated
	"github.com/sistira/sistira/internal/controller"
	"github.com/sistira/sistira/internal/logger"
	"github.com/sistira/sistira/internal/model"
	"github.com/sistira/sistira/internal/repository"
	"github.com/sistira/sistira/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title SisTIRA API
// @version 1.0
// @description Exam authoring platform with question banks, shared exam access and AI-assisted correction of subjective answers.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewQuestionRepository,
			repository.NewDisciplineRepository,
			repository.NewQuestionBankRepository,
			repository.NewExamRepository,
			repository.NewExamAccessRepository,
			repository.NewExamResponseRepository,
		),

		fx.Provide(
			service.NewDisciplineService,
			service.NewBankAggregator,
			service.NewQuestionService,
			service.NewQuestionBankService,
			service.NewExamService,
			service.NewExamAccessService,
			service.NewExamResponseService,
			service.NewGeminiTextGenerator,
			service.NewCorrectionService,
		),

		fx.Provide(
			controller.NewQuestionController,
			controller.NewQuestionBankController,
			controller.NewExamController,
			controller.NewRespondController,
			controller.NewCorrectionController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
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

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the
// server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	questionCtrl *controller.QuestionController,
	bankCtrl *controller.QuestionBankController,
	examCtrl *controller.ExamController,
	respondCtrl *controller.RespondController,
	correctionCtrl *controller.CorrectionController,
) {
	questionCtrl.RegisterRoutes(router)
	bankCtrl.RegisterRoutes(router)
	examCtrl.RegisterRoutes(router)
	respondCtrl.RegisterRoutes(router)
	correctionCtrl.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("SisTIRA API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
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

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Discipline{},
		&model.Question{},
		&model.Alternative{},
		&model.ModelAnswer{},
		&model.QuestionDiscipline{},
		&model.QuestionBank{},
		&model.QuestionBankQuestion{},
		&model.QuestionBankDiscipline{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.ExamQuestionBank{},
		&model.ExamAccess{},
		&model.ExamResponse{},
		&model.ExamAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
