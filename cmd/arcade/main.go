package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/vibearcade/arcade/adapters/events"
	"github.com/vibearcade/arcade/adapters/localauth"
	"github.com/vibearcade/arcade/adapters/sqlstore"
	"github.com/vibearcade/arcade/adapters/store"
	"github.com/vibearcade/arcade/adapters/supabase"
	"github.com/vibearcade/arcade/adapters/tokenizer"
	"github.com/vibearcade/arcade/internal/config"
	"github.com/vibearcade/arcade/ports"
	"github.com/vibearcade/arcade/service"
	"github.com/vibearcade/arcade/transport/http"
)

func main() {
	logger := log.New(os.Stderr, "[arcade] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	eventPub := newEventPublisher(cfg, redisClient, logger)

	var (
		profiles ports.ProfileStore
		admin    ports.AuthAdmin
		games    ports.GameStore
		issuer   ports.SessionIssuer
		auth     *service.AuthService
	)

	switch cfg.Backend {
	case config.BackendSupabase:
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
		if err != nil {
			logger.Fatalf("Failed to create Supabase client: %v", err)
		}
		profiles, admin, games = client, client, client

	case config.BackendLocal:
		db, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			logger.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()

		privateKey, err := loadSigningKey(cfg.JWTKeyFile, logger)
		if err != nil {
			logger.Fatalf("Failed to load JWT key: %v", err)
		}
		tk := tokenizer.NewJWTTokenizer(privateKey, cfg.JWTIssuer)
		backend := localauth.NewBackend(db, tk, localauth.WithTTLs(cfg.AccessTTL, cfg.RefreshTTL))

		var revocations ports.Store
		if cfg.Revocation == config.RevocationRedis {
			revocations = store.NewRedisStore(redisClient)
		} else {
			revocations = store.NewMemoryStore()
		}

		profiles, admin, games, issuer = backend, backend, db, backend
		auth = service.NewAuthService(tk, revocations, backend, backend, eventPub, logger)
	}

	minter := service.NewSessionMinter(admin, logger)
	if cfg.SessionMode == config.SessionModeDirect {
		minter.WithIssuer(issuer)
	}

	bridge := service.NewWalletBridge(
		service.NewSignatureVerifier(),
		service.NewIdentityResolver(profiles, admin, cfg.WalletDomain, logger),
		minter,
		eventPub,
		logger,
	)
	arcade := service.NewArcadeService(games, logger)

	router := http.SetupRouter(http.NewHandlers(bridge, auth, arcade, logger), logger)

	logger.Printf("listening on %s (backend=%s, session mode=%s)", cfg.HTTPAddr, cfg.Backend, cfg.SessionMode)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

func newEventPublisher(cfg config.Config, client *redis.Client, logger *log.Logger) ports.EventPublisher {
	if cfg.Events != config.EventsRedis {
		return events.NopPublisher{}
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		watermill.NewStdLogger(cfg.Debug, false),
	)
	if err != nil {
		logger.Fatalf("Failed to create Redis publisher: %v", err)
	}
	return events.NewWatermillPublisher(publisher)
}

// loadSigningKey reads a PEM encoded EC key. Without a file a throwaway key is
// generated, so tokens do not survive a restart.
func loadSigningKey(path string, logger *log.Logger) (*ecdsa.PrivateKey, error) {
	if path == "" {
		logger.Printf("ARCADE_JWT_KEY_FILE not set, generating an ephemeral signing key")
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return key, nil
}
