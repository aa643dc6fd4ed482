package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/darsapp/backend/internal/auth/http"
	authservice "github.com/darsapp/backend/internal/auth/service"
	"github.com/darsapp/backend/internal/auth/token"
	"github.com/darsapp/backend/internal/common/clock"
	"github.com/darsapp/backend/internal/common/config"
	"github.com/darsapp/backend/internal/common/crypto"
	"github.com/darsapp/backend/internal/common/db"
	commonhttp "github.com/darsapp/backend/internal/common/http"
	"github.com/darsapp/backend/internal/common/httpclient"
	"github.com/darsapp/backend/internal/common/logger"
	"github.com/darsapp/backend/internal/common/server"
	"github.com/darsapp/backend/internal/genai"
	"github.com/darsapp/backend/internal/quiz"
	quizhttp "github.com/darsapp/backend/internal/quiz/http"
	"github.com/darsapp/backend/internal/schedule/extractor"
	schedulehttp "github.com/darsapp/backend/internal/schedule/http"
	schedulerepo "github.com/darsapp/backend/internal/schedule/repository"
	scheduleservice "github.com/darsapp/backend/internal/schedule/service"
	userhttp "github.com/darsapp/backend/internal/user/http"
	userrepo "github.com/darsapp/backend/internal/user/repository"
	userservice "github.com/darsapp/backend/internal/user/service"
)

const serviceName = "api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogDir, serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		appLogger.Fatalf("failed to run migrations: %v", err)
	}
	pool := db.NewPool(appLogger, cfg.DatabaseURL)
	defer pool.Close()

	users := userrepo.NewPgRepository(pool)
	schedules := schedulerepo.NewPgRepository(pool)

	hasher := &crypto.BcryptHasher{}
	idGenerator := crypto.NewUUIDGenerator()

	tokens := token.NewService(cfg.JWTSecret, clock.NewRealClock())
	auth := authservice.NewAuthService(users, tokens, hasher, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, appLogger)
	guard := authhttp.NewGuard(auth, authhttp.CookieExtractor{Name: authhttp.AccessTokenCookie}, appLogger)

	userService := userservice.NewUserService(users, schedules, hasher, idGenerator, appLogger)
	scheduleService := scheduleservice.NewScheduleService(schedules, idGenerator, appLogger)

	generator := genai.NewClient(
		httpclient.NewSafeClient(cfg.GenerateTimeout),
		cfg.GenAIBaseURL,
		cfg.GenAIModel,
		cfg.GenAIAPIKey,
		appLogger,
	)
	scheduleExtractor := extractor.NewExtractor(generator, appLogger)

	verses := quiz.NewHTTPVerseClient(
		httpclient.NewSafeClient(cfg.VerseTimeout),
		cfg.VerseAPIBaseURL,
		appLogger,
	)
	quizService := quiz.NewService(verses, rand.New(rand.NewSource(time.Now().UnixNano())), appLogger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(appLogger))
	mux.Handle("/metrics", promhttp.Handler())

	authhttp.NewHandler(auth, guard, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.RequestTimeout, appLogger).Register(mux)
	userhttp.NewHandler(userService, guard, appLogger).Register(mux)
	schedulehttp.NewHandler(scheduleService, scheduleExtractor, guard, cfg.RequestTimeout, cfg.GenerateTimeout, appLogger).Register(mux)
	// One question needs four verse lookups, so the quiz runs on the verse
	// client's budget rather than the default request timeout.
	quizhttp.NewHandler(quizService, 4*cfg.VerseTimeout, appLogger).Register(mux)

	rateLimiter := commonhttp.NewRateLimiter(10, 20)
	handler := commonhttp.RecoveryMiddleware(appLogger)(rateLimiter.Middleware(mux))

	srv := server.NewServer(cfg.HTTPPort, handler)

	// Hooks run before the listener drains, so the pool must stay open here;
	// it closes via the defer above once shutdown completes.
	server.StartWithGracefulShutdown(srv, appLogger, serviceName, nil)
}
