// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for QuestHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, webhook_url, etc.
//   - Environment variables: QUESTHUB_MONGO_URI, QUESTHUB_WEBHOOK_URL, etc.
//   - Command-line flags: --mongo_uri, --webhook_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "questhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_token_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HS256 key for verifying session tokens (must match the auth frontend)"},
	{Name: "session_token_issuer", Default: "questhub-auth", Desc: "Expected issuer of session tokens"},

	{Name: "verified_email_domain", Default: "gsv.ac.in", Desc: "Org email domain for team verification (blank disables the check)"},
	{Name: "invite_code_length", Default: 8, Desc: "Team invite code length"},
	{Name: "team_leave_cutoff", Default: "", Desc: "RFC3339 time after which leaving a team is locked (blank means never)"},

	{Name: "webhook_url", Default: "", Desc: "Webhook URL for new user/team announcements (blank disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, QUESTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "QUESTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionTokenKey:    appValues.String("session_token_key"),
		SessionTokenIssuer: appValues.String("session_token_issuer"),

		VerifiedEmailDomain: appValues.String("verified_email_domain"),
		InviteCodeLength:    appValues.Int("invite_code_length"),

		WebhookURL: appValues.String("webhook_url"),
	}

	if raw := appValues.String("team_leave_cutoff"); raw != "" {
		cutoff, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, AppConfig{}, fmt.Errorf("invalid team_leave_cutoff %q: %w", raw, err)
		}
		appCfg.TeamLeaveCutoff = cutoff
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. Return nil to
// accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.InviteCodeLength < 4 {
		return fmt.Errorf("invite_code_length %d is too short; 4 is the minimum", appCfg.InviteCodeLength)
	}

	if len(appCfg.SessionTokenKey) < 32 {
		logger.Warn("session token key is short; 32+ chars recommended",
			zap.Int("length", len(appCfg.SessionTokenKey)))
	}

	return nil
}
