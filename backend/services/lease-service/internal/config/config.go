package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string

	// Database
	DBUrl string

	// Twilio / SendGrid for lease notifications
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string

	// Auth
	RSAPublicKey *rsa.PublicKey

	// Cron spec for the daily expiry sweep
	LeaseExpiryCron string

	// LaunchDarkly flags
	LDFlag_TwilioFromPhone         string
	LDFlag_SendgridFromEmail       string
	LDFlag_SendgridSandboxMode     bool
	LDFlag_SMSNotificationsEnabled bool
	LDFlag_SeedDbWithTestData      bool
	LDFlag_CORSHighSecurity        bool
	LDFlag_ApplySchemaOnBoot       bool
}

// envConfig is what the process environment (or .env) supplies.
type envConfig struct {
	AppName             string `env:"APP_NAME"`
	AppPort             string `env:"APP_PORT" envDefault:"8080"`
	AppUrl              string `env:"APP_URL_FROM_ANYWHERE,required,notEmpty"`
	DBUrl               string `env:"DB_URL,required,notEmpty"`
	RSAPublicKeyBase64  string `env:"RSA_PUBLIC_KEY_BASE64,required,notEmpty"`
	SendGridAPIKey      string `env:"SENDGRID_API_KEY"`
	TwilioAccountSID    string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken     string `env:"TWILIO_AUTH_TOKEN"`
	LDSDKKey            string `env:"LD_SDK_KEY"`
	LDServerContextKey  string `env:"LD_SERVER_CONTEXT_KEY" envDefault:"lease-service"`
	LDServerContextKind string `env:"LD_SERVER_CONTEXT_KIND" envDefault:"service"`
	LeaseExpiryCron     string `env:"LEASE_EXPIRY_CRON" envDefault:"0 6 * * *"`
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	defaultTwilioFromPhone   = "+10005550006"
	defaultSendgridFromEmail = "no-reply@keystonepm.com"
)

// build-time override
var AppName string

// FlagSource is the slice of the LaunchDarkly client config reads from.
type FlagSource interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
	StringVariation(key string, context ldcontext.Context, defaultVal string) (string, error)
}

// LoadConfig is Load with fatal logging, for main.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load config")
	}
	return cfg
}

// Load reads an optional .env, parses the environment and evaluates flags.
// Without LD_SDK_KEY the LaunchDarkly client runs offline and every flag takes its default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file loaded, using process environment")
	}

	ec, err := env.ParseAs[envConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	appName := AppName
	if appName == "" {
		appName = ec.AppName
	}
	if appName == "" {
		return nil, errors.New("AppName ldflag and APP_NAME env var both missing")
	}
	utils.Logger.Info("Loading config for app: ", appName)

	pubKey, err := ParseRSAPublicKeyBase64(ec.RSAPublicKeyBase64)
	if err != nil {
		return nil, err
	}

	ldClient, err := newLDClient(ec.LDSDKKey)
	if err != nil {
		return nil, err
	}
	defer ldClient.Close()

	cfg := &Config{
		OrganizationName: OrganizationName,
		AppName:          appName,
		AppPort:          ec.AppPort,
		AppUrl:           ec.AppUrl,
		DBUrl:            ec.DBUrl,
		TwilioAccountSID: ec.TwilioAccountSID,
		TwilioAuthToken:  ec.TwilioAuthToken,
		SendGridAPIKey:   ec.SendGridAPIKey,
		RSAPublicKey:     pubKey,
		LeaseExpiryCron:  ec.LeaseExpiryCron,
	}
	ldCtx := ldcontext.NewWithKind(ldcontext.Kind(ec.LDServerContextKind), ec.LDServerContextKey)
	if err := applyFlags(cfg, ldClient, ldCtx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLDClient(sdkKey string) (*ld.LDClient, error) {
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set, LaunchDarkly running offline with flag defaults")
		return ld.MakeCustomClient("", ld.Config{Offline: true}, 0)
	}
	client, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		return nil, fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	if !client.Initialized() {
		client.Close()
		return nil, errors.New("LaunchDarkly client failed to initialize")
	}
	return client, nil
}

func applyFlags(cfg *Config, flags FlagSource, ctx ldcontext.Context) error {
	var err error

	if cfg.LDFlag_TwilioFromPhone, err = flags.StringVariation("twilio_from_phone", ctx, ""); err != nil {
		return fmt.Errorf("twilio_from_phone flag: %w", err)
	}
	if cfg.LDFlag_TwilioFromPhone == "" {
		utils.Logger.Warnf("twilio_from_phone flag is empty, defaulting to %s", defaultTwilioFromPhone)
		cfg.LDFlag_TwilioFromPhone = defaultTwilioFromPhone
	}

	if cfg.LDFlag_SendgridFromEmail, err = flags.StringVariation("sendgrid_from_email", ctx, ""); err != nil {
		return fmt.Errorf("sendgrid_from_email flag: %w", err)
	}
	if cfg.LDFlag_SendgridFromEmail == "" {
		utils.Logger.Warnf("sendgrid_from_email flag is empty, defaulting to %s", defaultSendgridFromEmail)
		cfg.LDFlag_SendgridFromEmail = defaultSendgridFromEmail
	}

	bools := []struct {
		key string
		def bool
		dst *bool
	}{
		{"sendgrid_sandbox_mode", true, &cfg.LDFlag_SendgridSandboxMode},
		{"sms_notifications_enabled", false, &cfg.LDFlag_SMSNotificationsEnabled},
		{"seed_db_with_test_data", false, &cfg.LDFlag_SeedDbWithTestData},
		{"cors_high_security", false, &cfg.LDFlag_CORSHighSecurity},
		{"apply_schema_on_boot", true, &cfg.LDFlag_ApplySchemaOnBoot},
	}
	for _, b := range bools {
		if *b.dst, err = flags.BoolVariation(b.key, ctx, b.def); err != nil {
			return fmt.Errorf("%s flag: %w", b.key, err)
		}
		utils.Logger.Debugf("%s flag: %t", b.key, *b.dst)
	}
	return nil
}

// ParseRSAPublicKeyBase64 decodes a base64-wrapped PEM public key.
func ParseRSAPublicKeyBase64(b64 string) (*rsa.PublicKey, error) {
	pubPEM, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("RSA_PUBLIC_KEY_BASE64 is not base64: %w", err)
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		return nil, errors.New("failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse RSA public key: %w", err)
	}
	return pubKey, nil
}
