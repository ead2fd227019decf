package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrNoSecretKey is returned when tokens would be signed without a configured key.
var ErrNoSecretKey = errors.New("server.secretKey is required outside DEV and TEST")

type (
	Config struct {
		AppName          string
		Build            string
		Env              string // DEV (local; default), TEST, PROD
		Debug            bool
		TestMode         bool
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string

		Server       ServerConfig
		Database     DatabaseConfig
		Mail         MailConfig
		AI           AIConfig
		TTS          TTSConfig
		Verification VerificationConfig
		Admin        AdminConfig
		Webhook      WebhookConfig
		Reminder     ReminderConfig
	}

	ServerConfig struct {
		Host               string
		Port               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		SecretKey          string
		JWTExpirationDelta time.Duration
		CORSAllowOrigins   []string
		CORSAllowHeaders   []string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	MailConfig struct {
		Provider       string // console | sendgrid | smtp
		SendgridApiKey string
		SMTPHost       string
		SMTPPort       int
		SMTPUser       string
		SMTPPassword   string
	}

	AIConfig struct {
		BaseURL string
		APIKey  string
		Model   string
		Timeout time.Duration
	}

	TTSConfig struct {
		BaseURL      string
		APIKey       string
		LanguageCode string
		Voice        string
		Timeout      time.Duration
	}

	VerificationConfig struct {
		CodeTTL time.Duration
	}

	AdminConfig struct {
		ProtectedIDs    []string
		ProtectedEmails []string
	}

	WebhookConfig struct {
		Secret string
	}

	ReminderConfig struct {
		Hour       int
		StatePath  string
		Permission string
		Interval   time.Duration
	}
)

func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// NewConfig loads the app configuration from defaults, `config/.env.<env>` and the environment.
// Environment variables are prefixed with the uppercased env name, eg: DEV_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	setDefaults(v, env)

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := os.Getenv(env + "_WORKDIR")
	if wd == "" {
		wd, _ = os.Getwd()
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		WorkDir:         wd,
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Port:               v.GetString("server.port"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			SecretKey:          v.GetString("server.secretKey"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			CORSAllowOrigins:   v.GetStringSlice("server.corsAllowOrigins"),
			CORSAllowHeaders:   v.GetStringSlice("server.corsAllowHeaders"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Mail: MailConfig{
			Provider:       v.GetString("mail.provider"),
			SendgridApiKey: v.GetString("mail.sendgridApiKey"),
			SMTPHost:       v.GetString("mail.smtpHost"),
			SMTPPort:       v.GetInt("mail.smtpPort"),
			SMTPUser:       v.GetString("mail.smtpUser"),
			SMTPPassword:   v.GetString("mail.smtpPassword"),
		},
		AI: AIConfig{
			BaseURL: v.GetString("ai.baseURL"),
			APIKey:  v.GetString("ai.apiKey"),
			Model:   v.GetString("ai.model"),
			Timeout: v.GetDuration("ai.timeout"),
		},
		TTS: TTSConfig{
			BaseURL:      v.GetString("tts.baseURL"),
			APIKey:       v.GetString("tts.apiKey"),
			LanguageCode: v.GetString("tts.languageCode"),
			Voice:        v.GetString("tts.voice"),
			Timeout:      v.GetDuration("tts.timeout"),
		},
		Verification: VerificationConfig{
			CodeTTL: v.GetDuration("verification.codeTTL"),
		},
		Admin: AdminConfig{
			ProtectedIDs:    v.GetStringSlice("admin.protectedIDs"),
			ProtectedEmails: v.GetStringSlice("admin.protectedEmails"),
		},
		Webhook: WebhookConfig{
			Secret: v.GetString("webhook.secret"),
		},
		Reminder: ReminderConfig{
			Hour:       v.GetInt("reminder.hour"),
			StatePath:  v.GetString("reminder.statePath"),
			Permission: v.GetString("reminder.permission"),
			Interval:   v.GetDuration("reminder.interval"),
		},
	}
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("appName", "Aprovia")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "nao-responda@aprovia.app")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.secretKey", "")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.corsAllowOrigins", []string{"*"})
	v.SetDefault("server.corsAllowHeaders", []string{"authorization", "x-client-info", "apikey", "content-type"})

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "aprovia")
	v.SetDefault("database.user", "aprovia")
	v.SetDefault("database.password", "aprovia")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("mail.provider", "console")
	v.SetDefault("mail.sendgridApiKey", "")
	v.SetDefault("mail.smtpHost", "smtp.gmail.com")
	v.SetDefault("mail.smtpPort", 587)
	v.SetDefault("mail.smtpUser", "")
	v.SetDefault("mail.smtpPassword", "")

	v.SetDefault("ai.baseURL", "https://ai.gateway.lovable.dev/v1/chat/completions")
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.model", "google/gemini-2.5-flash")
	v.SetDefault("ai.timeout", 60*time.Second)

	v.SetDefault("tts.baseURL", "https://texttospeech.googleapis.com/v1/text:synthesize")
	v.SetDefault("tts.apiKey", "")
	v.SetDefault("tts.languageCode", "pt-BR")
	v.SetDefault("tts.voice", "pt-BR-Neural2-A")
	v.SetDefault("tts.timeout", 30*time.Second)

	v.SetDefault("verification.codeTTL", 10*time.Minute)

	v.SetDefault("admin.protectedIDs", []string{})
	v.SetDefault("admin.protectedEmails", []string{})

	v.SetDefault("webhook.secret", "")

	v.SetDefault("reminder.hour", 19)
	v.SetDefault("reminder.statePath", "reminder.db")
	v.SetDefault("reminder.permission", "granted")
	v.SetDefault("reminder.interval", time.Hour)
}

// NewTestConfig returns the configuration used by tests: no I/O, fixed secrets.
func NewTestConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v, "TEST")
	conf := &Config{
		AppName:         v.GetString("appName"),
		Env:             "TEST",
		TestMode:        true,
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
	}
	conf.Server.SecretKey = "test-secret"
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.CORSAllowOrigins = v.GetStringSlice("server.corsAllowOrigins")
	conf.Server.CORSAllowHeaders = v.GetStringSlice("server.corsAllowHeaders")
	conf.AI.Model = v.GetString("ai.model")
	conf.Verification.CodeTTL = v.GetDuration("verification.codeTTL")
	conf.Reminder.Hour = v.GetInt("reminder.hour")
	return conf
}

// EnsureSecretKey fails when no JWT signing key is configured, except in DEV and TEST
// where a random per-process key is used; tokens then do not survive a restart.
func (c *Config) EnsureSecretKey() error {
	if c.Server.SecretKey != "" {
		return nil
	}
	if !(c.Debug || c.TestMode || c.Env == "DEV" || c.Env == "TEST") {
		return ErrNoSecretKey
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return errors.Wrap(err, "generating secret key")
	}
	c.Server.SecretKey = hex.EncodeToString(key)
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (%s) env=%s debug=%v", c.AppName, c.Build, c.Env, c.Debug)
}
