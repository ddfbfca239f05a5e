package core

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the app-wide configuration. It is loaded once at startup.
var Conf *Config

type (
	ServerConfig struct {
		Host               string
		Port               int
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	GenAIConfig struct {
		BaseURL     string
		APIKey      string
		MaxAttempts int
		Timeout     time.Duration
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		SendgridApiKey string
		RollbarToken   string

		MaxDocumentSize   int64
		AllowedDocTypes   []string
		DigestCronEnabled bool

		Server   ServerConfig
		Database DatabaseConfig
		GenAI    GenAIConfig
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

const defaultSecretKey = "k2g^$r4t!ba-9(dz&uoxh2qh!x)#*c2#yg4h^cegm2emy"

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("env", "DEV") // DEV (local; default), TEST, QA, PROD
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Ratiba")
	v.SetDefault("secretKey", defaultSecretKey)
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("maxDocumentSize", int64(10<<20)) // 10 MiB
	v.SetDefault("allowedDocTypes", []string{
		"application/pdf", "image/png", "image/jpeg",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	})
	v.SetDefault("digestCronEnabled", false)

	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("serverDebugHost", "0.0.0.0:9000")
	v.SetDefault("serverShutdownTimeout", 20*time.Second)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "ratiba")
	v.SetDefault("dbUser", "ratiba")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("genaiBaseURL", "")
	v.SetDefault("genaiMaxAttempts", 3)
	v.SetDefault("genaiTimeout", 90*time.Second)

	// load .env if it exists (ignore if it does not)
	_ = godotenv.Load()

	v.AutomaticEnv()

	env := strings.ToUpper(v.GetString("env"))
	Conf = &Config{
		Debug:    v.GetBool("debug"),
		TestMode: env == "TEST",
		Env:      env,
		Build:    v.GetString("build"),

		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},

		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),

		MaxDocumentSize:   v.GetInt64("maxDocumentSize"),
		AllowedDocTypes:   v.GetStringSlice("allowedDocTypes"),
		DigestCronEnabled: v.GetBool("digestCronEnabled"),

		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetInt("serverPort"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		GenAI: GenAIConfig{
			BaseURL:     v.GetString("genaiBaseURL"),
			APIKey:      v.GetString("genaiAPIKey"),
			MaxAttempts: v.GetInt("genaiMaxAttempts"),
			Timeout:     v.GetDuration("genaiTimeout"),
		},
	}

	if Conf.Env == "PROD" && Conf.SecretKey == defaultSecretKey {
		log.Println("WARNING: running in PROD with the default secret key")
	}
}
