package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bremer-sv/camp-registration/api"
	"github.com/bremer-sv/camp-registration/dynamo"
)

func main() {
	ctx := context.Background()

	settings := getServerSettingsFromEnv()

	logger := createLogger(settings.Env)
	slog.SetDefault(logger)

	if err := fillSecretsFromSSM(ctx, &settings); err != nil {
		logger.Error("Failed to load secrets from SSM", slog.String("error", err.Error()))
		os.Exit(1)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("Failed to load AWS config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db := dynamo.NewDB(dynamodb.NewFromConfig(awsCfg), settings.TableName, logger)

	emailSender, err := createEmailSender(ctx, logger, settings.Env)
	if err != nil {
		logger.Error("Failed to create email sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	campAPI := api.NewAPI(db, emailSender, logger, settings.Env, api.Config{
		FromAddress:  settings.FromAddress,
		StaffAddress: settings.StaffAddress,
		AdminToken:   settings.AdminToken,
	})

	go warmUp(ctx, db, logger)

	s := &http.Server{
		Handler:           campAPI.Handler(),
		Addr:              net.JoinHostPort(settings.Host, settings.Port),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	logger.Info("Starting server", slog.String("addr", s.Addr))
	log.Fatal(s.ListenAndServe())
}

// warmUp touches the camp catalogue and the per-camp sheets once at boot so
// the first real form load doesn't pay for cold clients. Purely advisory,
// failures are logged and ignored.
func warmUp(ctx context.Context, db api.DB, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := db.GetCamps(ctx, 50, nil)
	if err != nil {
		logger.Warn("Warm-up camp fetch failed", slog.String("error", err.Error()))
		return
	}

	for _, camp := range result.Data {
		if _, err := db.CountRegistrations(ctx, camp.Name); err != nil {
			logger.Warn("Warm-up registration count failed",
				slog.String("camp", camp.Name), slog.String("error", err.Error()))
			return
		}
	}

	logger.Info("Warm-up complete", slog.Int("camps", len(result.Data)))
}

func createLogger(env api.Environment) *slog.Logger {
	if env == api.PROD {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type ServerSettings struct {
	Host         string
	Port         string
	Env          api.Environment
	TableName    string
	FromAddress  string
	StaffAddress string
	AdminToken   string
}

func getServerSettingsFromEnv() ServerSettings {
	return ServerSettings{
		Host:         getEnvOrDefault("HOST", "0.0.0.0"),
		Port:         getEnvOrDefault("PORT", "8080"),
		Env:          parseEnvironment(getEnvOrDefault("ENV", "local")),
		TableName:    getEnvOrDefault("TABLE_NAME", "camp-registration"),
		FromAddress:  getEnvOrDefault("FROM_ADDRESS", "fussballschule@bremer-sv.de"),
		StaffAddress: getEnvOrDefault("STAFF_ADDRESS", "fussballschule@bremer-sv.de"),
		AdminToken:   os.Getenv("ADMIN_TOKEN"),
	}
}

func parseEnvironment(v string) api.Environment {
	if v == "prod" {
		return api.PROD
	}

	return api.LOCAL
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}
