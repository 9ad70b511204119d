package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlphaCLabs/LeadPipe/internal/api"
	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/crm"
	"github.com/AlphaCLabs/LeadPipe/internal/engine"
	"github.com/AlphaCLabs/LeadPipe/internal/extraction"
	"github.com/AlphaCLabs/LeadPipe/internal/inventory"
	"github.com/AlphaCLabs/LeadPipe/internal/lockfile"
	"github.com/AlphaCLabs/LeadPipe/internal/messaging"
	"github.com/AlphaCLabs/LeadPipe/internal/recovery"
	"github.com/AlphaCLabs/LeadPipe/internal/store"
	"github.com/AlphaCLabs/LeadPipe/internal/twiliowhatsapp"
	"github.com/AlphaCLabs/LeadPipe/internal/util"
	"github.com/AlphaCLabs/LeadPipe/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for LeadPipe state data
	DefaultStateDir = "/var/lib/leadpipe"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "leadpipe.db"
	// BackendWhatsmeow connects directly to WhatsApp via whatsmeow.
	BackendWhatsmeow = "whatsmeow"
	// BackendTwilio sends and receives through the Twilio WhatsApp API.
	BackendTwilio = "twilio"
	// shutdownTimeout bounds graceful HTTP server shutdown.
	shutdownTimeout = 15 * time.Second
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if err := run(flags); err != nil {
		slog.Error("LeadPipe failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("LeadPipe exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseDSN  string
	StateDir     string
	OpenAIKey    string
	OpenAIModel  string
	APIAddr      string
	VerifyToken  string
	HubSpotToken string
	Backend      string
	CatalogPath  string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput     *string
	numeric      *bool
	stateDir     *string
	dbDSN        *string
	openaiKey    *string
	openaiModel  *string
	apiAddr      *string
	verifyToken  *string
	hubspotToken *string
	backend      *string
	catalogPath  *string
}

// initializeLogger sets up structured logging. LEADPIPE_DEBUG enables debug
// level output.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("LEADPIPE_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseDSN:  os.Getenv("DATABASE_URL"),
		StateDir:     os.Getenv("LEADPIPE_STATE_DIR"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),
		APIAddr:      os.Getenv("API_ADDR"),
		VerifyToken:  os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		HubSpotToken: os.Getenv("HUBSPOT_ACCESS_TOKEN"),
		Backend:      os.Getenv("MESSAGING_BACKEND"),
		CatalogPath:  os.Getenv("LEADPIPE_CATALOG"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No LEADPIPE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DatabaseDSN == "" {
		config.DatabaseDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseDSN)
	}
	if config.Backend == "" {
		config.Backend = BackendWhatsmeow
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseDSN != "",
		"LEADPIPE_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"WHATSAPP_VERIFY_TOKEN_SET", config.VerifyToken != "",
		"HUBSPOT_ACCESS_TOKEN_SET", config.HubSpotToken != "",
		"MESSAGING_BACKEND", config.Backend)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:     flag.String("qr-output", "", "path to write login QR code"),
		numeric:      flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for LeadPipe data (overrides $LEADPIPE_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseDSN, "database DSN for conversation and WhatsApp state (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "OpenAI model name (overrides $OPENAI_MODEL)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		verifyToken:  flag.String("verify-token", config.VerifyToken, "Meta webhook verification token (overrides $WHATSAPP_VERIFY_TOKEN)"),
		hubspotToken: flag.String("hubspot-token", config.HubSpotToken, "HubSpot private app token (overrides $HUBSPOT_ACCESS_TOKEN)"),
		backend:      flag.String("messaging-backend", config.Backend, "messaging backend, whatsmeow or twilio (overrides $MESSAGING_BACKEND)"),
		catalogPath:  flag.String("catalog", config.CatalogPath, "path to a JSON product catalog (overrides $LEADPIPE_CATALOG, default built-in)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"backend", *flags.backend)

	// Follow an overridden state directory when the DSN was left at the
	// SQLite default derived from it.
	if *flags.dbDSN == config.DatabaseDSN && config.DatabaseDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildWhatsAppOptions constructs whatsmeow client configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.dbDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.dbDSN))
	}
	return waOpts
}

// buildMessagingService selects the transport backend.
func buildMessagingService(flags Flags) (messaging.Service, *messaging.TwilioService, error) {
	if *flags.backend == BackendTwilio {
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, nil, err
		}
		svc := messaging.NewTwilioService(client)
		return svc, svc, nil
	}
	client, err := whatsapp.NewClient(buildWhatsAppOptions(flags)...)
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewWhatsAppService(client), nil, nil
}

// buildNotifier wires the CRM integration when a HubSpot token is configured.
func buildNotifier(flags Flags) (engine.Notifier, error) {
	if *flags.hubspotToken == "" {
		slog.Info("No HubSpot token configured, CRM sync disabled")
		return crm.Noop{}, nil
	}
	return crm.NewHubSpot(*flags.hubspotToken)
}

func run(flags Flags) error {
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if *flags.catalogPath != "" {
		cat, err = catalog.LoadFile(*flags.catalogPath)
		if err != nil {
			return err
		}
		slog.Info("Loaded product catalog", "path", *flags.catalogPath, "types", len(cat.TypeIDs()))
	}

	st, err := store.NewStore(buildStoreOptions(flags)...)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := recovery.NewSweeper(cat, st).Run(ctx); err != nil {
		slog.Error("State recovery reported errors, continuing", "error", err)
	}

	var extractionOpts []extraction.Option
	if *flags.openaiKey != "" {
		extractionOpts = append(extractionOpts, extraction.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		extractionOpts = append(extractionOpts, extraction.WithModel(*flags.openaiModel))
	}
	aiClient, err := extraction.NewClient(cat, extractionOpts...)
	if err != nil {
		return err
	}

	advisor := inventory.NewAdvisor(aiClient, inventory.NewService(cat, nil))

	notifier, err := buildNotifier(flags)
	if err != nil {
		return err
	}

	msgService, twilioService, err := buildMessagingService(flags)
	if err != nil {
		return err
	}

	eng := engine.New(cat, st,
		engine.WithExtractor(aiClient),
		engine.WithReplier(aiClient),
		engine.WithInventoryAdvisor(advisor),
		engine.WithNotifier(notifier),
		engine.WithDeliverer(messaging.NewDeliverer(msgService)),
	)

	if err := msgService.Start(ctx); err != nil {
		return err
	}
	defer msgService.Stop()

	respHandler := messaging.NewResponseHandler(eng, msgService)
	respHandler.Start(ctx)

	apiOpts := []api.Option{api.WithVerifyToken(*flags.verifyToken)}
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if twilioService != nil {
		apiOpts = append(apiOpts, api.WithTwilioWebhook(twilioService.WebhookHandler))
	}
	srv := api.NewServer(eng, st, msgService, respHandler, apiOpts...)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()
	slog.Info("LeadPipe started", "backend", *flags.backend)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
