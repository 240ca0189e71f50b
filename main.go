package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	fboauth "golang.org/x/oauth2/facebook"
	googleoauth "golang.org/x/oauth2/google"
	lioauth "golang.org/x/oauth2/linkedin"
	"golang.org/x/sync/errgroup"
	yt "google.golang.org/api/youtube/v3"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/cache"
	fbclient "social-scheduler/infrastructure/clients/facebook"
	liclient "social-scheduler/infrastructure/clients/linkedin"
	"social-scheduler/infrastructure/clients/stub"
	twclient "social-scheduler/infrastructure/clients/twitter"
	ytclient "social-scheduler/infrastructure/clients/youtube"
	"social-scheduler/infrastructure/configuration"
	"social-scheduler/infrastructure/crypto"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/infrastructure/persistence"
	"social-scheduler/infrastructure/pubsub"
	httpHandler "social-scheduler/interfaces/http"
	"social-scheduler/server"
	"social-scheduler/usecase"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	if err := persistence.EnsureSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring database schema")
		os.Exit(1)
	}

	tokenCipher, err := crypto.NewTokenCipher(configuration.C.Crypto.TokenKey)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid token encryption key")
		os.Exit(1)
	}

	// Optional infrastructure. Each degrades to nil and the dispatcher runs
	// without the corresponding feature.
	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without dispatch audit")
		mongoDb = nil
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without dispatch audit")
		mongoDb = nil
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without dispatch lock")
		redisClient = nil
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without outcome notifications")
		pubSubClient = nil
	}

	credentialRepository := persistence.NewCredentialRepository(psqlDb, tokenCipher)
	scheduleRepository := persistence.NewScheduleRepository(psqlDb)
	userRepository := persistence.NewUserRepository(psqlDb)

	var auditRepository repository.IDispatchAudit
	if mongoDb != nil {
		auditRepository = persistence.NewDispatchAuditRepository(mongoDb, configuration.C.Database.Mongo.Name)
	}
	var dispatchLock usecase.DispatchLocker
	if redisClient != nil {
		dispatchLock = cache.NewDispatchLock(redisClient)
	}
	var outcomeNotifier pubsub.IOutcomeNotifier
	if pubSubClient != nil {
		outcomeNotifier = pubsub.NewOutcomeNotifier(pubSubClient, configuration.C.Pubsub.Topic)
	}

	adapters := buildRegistry()
	oauthConfigs := buildOAuthConfigs()

	userUsecase := usecase.NewUserUsecase(userRepository, app.SecretKey)
	scheduleUsecase := usecase.NewScheduleUsecase(scheduleRepository)
	connectUsecase := usecase.NewConnectUsecase(credentialRepository, adapters, oauthConfigs, app.SecretKey)
	dispatchUsecase := usecase.NewDispatchUsecase(
		scheduleRepository,
		credentialRepository,
		adapters,
		dispatchLock,
		auditRepository,
		outcomeNotifier,
		time.Duration(configuration.C.Autopost.PublishTimeoutSeconds)*time.Second,
	)

	userHandler := httpHandler.NewUserHandler(userUsecase)
	scheduleHandler := httpHandler.NewScheduleHandler(scheduleUsecase)
	accountHandler := httpHandler.NewAccountHandler(connectUsecase)
	connectHandler := httpHandler.NewConnectHandler(connectUsecase)
	autopostHandler := httpHandler.NewAutopostHandler(dispatchUsecase)

	gin.SetMode(gin.ReleaseMode)
	router := server.InitiateRouter(
		userHandler,
		scheduleHandler,
		accountHandler,
		connectHandler,
		autopostHandler,
		configuration.C.Autopost.Secret,
	)

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// buildRegistry wires one adapter per platform. Platforms without a wire
// implementation get the documented stub so scheduling them stays possible
// while publishing fails cleanly.
func buildRegistry() publisher.Registry {
	oauth := configuration.C.OAuth
	return publisher.Registry{
		model.PlatformLinkedIn:  liclient.NewClient(),
		model.PlatformFacebook:  fbclient.NewClient(oauth.Facebook.ClientID, oauth.Facebook.ClientSecret),
		model.PlatformTwitter:   twclient.NewClient(),
		model.PlatformYouTube:   ytclient.NewClient(),
		model.PlatformInstagram: stub.NewClient(model.PlatformInstagram),
		model.PlatformTikTok:    stub.NewClient(model.PlatformTikTok),
	}
}

func buildOAuthConfigs() map[model.Platform]*oauth2.Config {
	oauth := configuration.C.OAuth
	return map[model.Platform]*oauth2.Config{
		model.PlatformLinkedIn: {
			ClientID:     oauth.LinkedIn.ClientID,
			ClientSecret: oauth.LinkedIn.ClientSecret,
			RedirectURL:  redirectURI(oauth.LinkedIn, model.PlatformLinkedIn),
			Scopes:       []string{"openid", "profile", "w_member_social"},
			Endpoint:     lioauth.Endpoint,
		},
		model.PlatformFacebook: {
			ClientID:     oauth.Facebook.ClientID,
			ClientSecret: oauth.Facebook.ClientSecret,
			RedirectURL:  redirectURI(oauth.Facebook, model.PlatformFacebook),
			Scopes:       []string{"public_profile", "pages_show_list", "pages_read_engagement", "pages_manage_posts"},
			Endpoint:     fboauth.Endpoint,
		},
		model.PlatformTwitter: {
			ClientID:     oauth.Twitter.ClientID,
			ClientSecret: oauth.Twitter.ClientSecret,
			RedirectURL:  redirectURI(oauth.Twitter, model.PlatformTwitter),
			Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://twitter.com/i/oauth2/authorize",
				TokenURL: "https://api.twitter.com/2/oauth2/token",
			},
		},
		model.PlatformYouTube: {
			ClientID:     oauth.YouTube.ClientID,
			ClientSecret: oauth.YouTube.ClientSecret,
			RedirectURL:  redirectURI(oauth.YouTube, model.PlatformYouTube),
			Scopes:       []string{yt.YoutubeReadonlyScope},
			Endpoint:     googleoauth.Endpoint,
		},
	}
}

func redirectURI(client configuration.OAuthClient, platform model.Platform) string {
	if client.RedirectURI != "" {
		return client.RedirectURI
	}
	return fmt.Sprintf("%s/oauth/%s/callback", configuration.C.App.PublicURL, platform)
}
