package main

import (
	"context"
	"encoding/base64"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/org/recordvault/internal/api"
	"github.com/org/recordvault/internal/auth"
	"github.com/org/recordvault/internal/core"
	"github.com/org/recordvault/internal/crypto"
	"github.com/org/recordvault/internal/record"
	"github.com/org/recordvault/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type config struct {
	ListenAddr      string   `yaml:"listen_addr"`
	TLSCertFile     string   `yaml:"tls_cert"`
	TLSKeyFile      string   `yaml:"tls_key"`
	DBUrl           string   `yaml:"db_url"`
	MigrationsDir   string   `yaml:"migrations_dir"`
	LogLevel        string   `yaml:"log_level"`
	EncryptFields   bool     `yaml:"encrypt_fields"`
	SensitiveFields []string `yaml:"sensitive_fields"`
	TokenTTL        string   `yaml:"token_ttl"`
	MasterKey       string   `yaml:"master_key"` // base64, optional
}

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load config
	cfgFile := "config.yaml"
	if v := os.Getenv("RECORDVAULT_CONFIG"); v != "" {
		cfgFile = v
	}

	cfg := config{
		ListenAddr:      ":8300",
		MigrationsDir:   "migrations",
		LogLevel:        "info",
		SensitiveFields: []string{"empName", "password", "department"},
	}

	if data, err := os.ReadFile(cfgFile); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to parse config")
		}
	} else {
		log.Warn().Str("file", cfgFile).Msg("config file not found, using defaults")
	}

	// Env overrides
	if v := os.Getenv("RECORDVAULT_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DBUrl = v
	}
	if v := os.Getenv("RECORDVAULT_MASTER_KEY"); v != "" {
		cfg.MasterKey = v
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.DBUrl == "" {
		log.Fatal().Msg("db_url must be configured (or DATABASE_URL env var)")
	}

	tokenTTL := auth.DefaultTTL
	if cfg.TokenTTL != "" {
		tokenTTL, err = time.ParseDuration(cfg.TokenTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid token_ttl")
		}
	}

	// Build the keyring. Without a configured master key, tokens and any
	// encrypted fields die with the process.
	var rootKey []byte
	if cfg.MasterKey != "" {
		rootKey, err = base64.StdEncoding.DecodeString(cfg.MasterKey)
		if err != nil {
			log.Fatal().Err(err).Msg("master_key must be base64")
		}
	} else {
		rootKey, err = core.GenerateRootKey()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate root key")
		}
		log.Warn().Msg("no master_key configured, generated an ephemeral root key")
	}
	keyring, err := core.NewKeyring(rootKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build keyring")
	}

	ctx := context.Background()

	// Connect to database
	store, err := storage.NewPostgresBackend(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	// Run migrations
	if err := storage.ApplyMigrations(cfg.DBUrl, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	// Wire services
	tokens := auth.NewTokenService(keyring.TokenSecret(), tokenTTL, clockwork.NewRealClock())
	cipher, err := crypto.NewFieldCipher(keyring.FieldKey())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create field cipher")
	}
	gate := record.NewGate(cipher, cfg.SensitiveFields, cfg.EncryptFields)
	records := record.NewService(store, gate)

	api.SetEncryptionModeMetric(cfg.EncryptFields)
	if err := api.InitRecordCountMetric(ctx, store); err != nil {
		log.Warn().Err(err).Msg("failed to seed record count metric")
	}
	log.Info().
		Bool("encrypt_fields", cfg.EncryptFields).
		Strs("sensitive_fields", cfg.SensitiveFields).
		Msg("field encryption configured")

	srv := api.NewServer(store, tokens, records, api.Config{
		ListenAddr:  cfg.ListenAddr,
		TLSCertFile: cfg.TLSCertFile,
		TLSKeyFile:  cfg.TLSKeyFile,
	})

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("server started")
	<-quit

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
