package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"farmtech/database"
	"farmtech/pkg/ai"
	authCtrlImp "farmtech/pkg/auth/controllerImp"
	chatCtrlImp "farmtech/pkg/chatbot/controllerImp"
	chatSvcImp "farmtech/pkg/chatbot/serviceImp"
	gameCtrlImp "farmtech/pkg/gamification/controllerImp"
	gameSvcImp "farmtech/pkg/gamification/serviceImp"
	healthCtrlImp "farmtech/pkg/health/controllerImp"
	"farmtech/pkg/irrigation"
	kbCtrlImp "farmtech/pkg/kb/controllerImp"
	kbEmbedder "farmtech/pkg/kb/embedder"
	kbRepoImp "farmtech/pkg/kb/repositoryImp"
	kbSvcImp "farmtech/pkg/kb/serviceImp"
	"farmtech/pkg/middleware"
	profileCtrlImp "farmtech/pkg/profile/controllerImp"
	profileRepo "farmtech/pkg/profile/repository"
	profileRepoImp "farmtech/pkg/profile/repositoryImp"
	profileSvcImp "farmtech/pkg/profile/serviceImp"
	resourceCtrlImp "farmtech/pkg/resource/controllerImp"
	resourceRepo "farmtech/pkg/resource/repository"
	resourceRepoImp "farmtech/pkg/resource/repositoryImp"
	resourceSvcImp "farmtech/pkg/resource/serviceImp"
	"farmtech/pkg/weather"
	"farmtech/router"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the local database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.OpenSQLite(cfg.DBPath, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			log.Info("database migrated", zap.String("path", cfg.DBPath))
			return nil
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1) Stores
	db, err := database.OpenSQLite(cfg.DBPath, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	pingers := map[string]healthCtrlImp.Pinger{}

	var resources resourceRepo.ResourceRepository = resourceRepoImp.NewGorm(db)
	if cfg.MongoURI != "" {
		client, mdb, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer func(c *mongo.Client) { _ = c.Disconnect(context.Background()) }(client)
		resources = resourceRepoImp.NewMongo(mdb)
		pingers["mongo"] = healthCtrlImp.MongoPinger(client)
		log.Info("resources stored in mongo", zap.String("db", cfg.MongoDatabase))
	}

	var profiles profileRepo.ProfileRepository = profileRepoImp.NewGorm(db)
	if cfg.ProfileDSN != "" {
		pg, err := database.OpenPostgres(ctx, cfg.ProfileDSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		profiles = profileRepoImp.NewPostgres(pg)
		pingers["postgres"] = pg.PingContext
		log.Info("profiles stored in postgres")
	}

	// 2) Engines and upstreams
	crops, err := irrigation.LoadCrops(cfg.CropProfilesPath)
	if err != nil {
		return err
	}
	engine := irrigation.NewEngine(crops)

	wx := weather.NewClient(weather.Options{
		BaseURL:    cfg.WeatherBaseURL,
		APIKey:     cfg.OpenWeatherKey,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
	})
	if cfg.OpenWeatherKey == "" {
		log.Warn("OPENWEATHER_API_KEY not set; weather endpoints will fail")
	}
	current := weather.NewCurrentCache(wx, cfg.WeatherCity, cfg.WeatherRefresh, log)
	if err := current.Start(); err != nil {
		return err
	}
	defer current.Stop()

	// 3) LLM (mock fallback) and KB embeddings share one Gemini client
	var (
		llm      ai.Client = ai.NewMock()
		docEmb   kbEmbedder.Embedder
		queryEmb kbEmbedder.Embedder
		gemini   *genai.Client
	)
	if cfg.GoogleAPIKey != "" {
		if gemini, err = ai.NewGenAIClient(ctx, cfg.GoogleAPIKey); err != nil {
			return err
		}
		llm = ai.NewGenAI(gemini, cfg.ChatModel)
		docEmb = kbEmbedder.NewGenAI(gemini, cfg.EmbeddingModel, kbEmbedder.TaskDocument)
		queryEmb = kbEmbedder.NewGenAI(gemini, cfg.EmbeddingModel, kbEmbedder.TaskQuery)
	} else {
		log.Warn("GOOGLE_API_KEY not set; using offline advisor and keyword search")
	}
	kbSvc := kbSvcImp.New(kbRepoImp.New(db), docEmb, queryEmb, log)

	// 4) Auth
	auth := middleware.DevLogin()
	if !cfg.DevAuth {
		auth = middleware.Bearer(middleware.BearerConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.Issuer(),
			Audience: cfg.JWTAudience,
			Log:      log,
		})
	} else {
		log.Warn("dev auth enabled; requests are trusted without tokens")
	}

	// 5) Controllers + router
	e := router.New(echo.New(), router.Controllers{
		Auth:         authCtrlImp.NewAuthController(),
		Health:       healthCtrlImp.NewHealthCtrl(db, pingers),
		Resource:     resourceCtrlImp.NewResourceController(resourceSvcImp.NewResourceService(resources), log),
		Profile:      profileCtrlImp.NewProfileController(profileSvcImp.NewProfileService(profiles), log),
		Gamification: gameCtrlImp.NewGamificationController(gameSvcImp.NewGamificationService(wx, engine), log),
		Chatbot:      chatCtrlImp.NewChatbotController(chatSvcImp.NewChatbotService(current, kbSvc, llm, cfg.WeatherCity, log), log),
		KB:           kbCtrlImp.New(kbSvc, cfg.KBAllowedDomains, cfg.KBMaxBytes, &http.Client{Timeout: 2 * cfg.HTTPTimeout}, log),
	}, router.Options{
		Auth:      auth,
		DevLogin:  cfg.DevAuth,
		BodyLimit: cfg.BodyLimit,
		Log:       log,
	})

	// 6) Start, then drain on signal
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
