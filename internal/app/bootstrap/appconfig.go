// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging level, CORS, body limits).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session token verification. The auth frontend issues a signed token in
	// the __session cookie; we verify it, we never issue it.
	SessionTokenKey    string // HS256 signing key shared with the auth frontend
	SessionTokenIssuer string // expected iss claim

	// Event rules
	VerifiedEmailDomain string    // org email domain for the team verified flag (blank disables)
	InviteCodeLength    int       // invite code length
	TeamLeaveCutoff     time.Time // roster freeze cutoff (zero means no freeze)

	// Outbound announcement webhook (blank disables)
	WebhookURL string
}
