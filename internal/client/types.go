// ABOUTME: Response types for the identity and metadata endpoints
// ABOUTME: Timestamps accept RFC 3339 as well as zone-less ISO 8601 values

package client

import (
	"encoding/json"
	"fmt"
	"time"
)

// TokenResponse is the body of a successful POST /api/auth/token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorResponse is the body of a non-2xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// AppMetadata is the aggregate returned by GET /api/auth/metadata
type AppMetadata struct {
	User        *UserMetadata        `json:"user,omitempty"`
	Health      *HealthResponse      `json:"health,omitempty"`
	Application *ApplicationMetadata `json:"application,omitempty"`
	Auth        *AuthMetadata        `json:"auth,omitempty"`
}

// UserMetadata describes the account behind the bearer token
type UserMetadata struct {
	ID          *int       `json:"id,omitempty"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *Timestamp `json:"last_login,omitempty"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
}

// HealthResponse is returned by GET /health and embedded in AppMetadata
type HealthResponse struct {
	Status            string            `json:"status"`
	ApplicationName   string            `json:"application_name"`
	Version           string            `json:"version"`
	DatabaseStatus    string            `json:"database_status"`
	Timestamp         Timestamp         `json:"timestamp"`
	Environment       EnvironmentInfo   `json:"environment"`
	SystemDiagnostics SystemDiagnostics `json:"system_diagnostics"`
}

// Healthy reports whether the service declared itself healthy
func (h *HealthResponse) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// EnvironmentInfo carries service-side runtime settings
type EnvironmentInfo struct {
	Debug       string   `json:"debug"`
	CORSOrigins []string `json:"cors_origins"`
}

// SystemDiagnostics describes the host running the identity service
type SystemDiagnostics struct {
	RuntimeVersion string `json:"runtime_version,omitempty"`
	// PythonVersion is what Python deployments of the service report instead
	PythonVersion string     `json:"python_version,omitempty"`
	OS            OSInfo     `json:"os"`
	CPU           CPUInfo    `json:"cpu"`
	Memory        MemoryInfo `json:"memory"`
}

// Runtime returns the reported runtime version under either key
func (s SystemDiagnostics) Runtime() string {
	if s.RuntimeVersion != "" {
		return s.RuntimeVersion
	}
	return s.PythonVersion
}

type OSInfo struct {
	System  string `json:"system"`
	Release string `json:"release"`
	Machine string `json:"machine"`
}

type CPUInfo struct {
	Cores        int     `json:"cores"`
	UsagePercent float64 `json:"usage_percent"`
}

// MemoryInfo sizes are in bytes
type MemoryInfo struct {
	Total       float64 `json:"total"`
	Available   float64 `json:"available"`
	PercentUsed float64 `json:"percent_used"`
}

// ApplicationMetadata describes the deployed service build
type ApplicationMetadata struct {
	Name           string    `json:"name"`
	Version        string    `json:"version"`
	Environment    string    `json:"environment"`
	BuildTimestamp Timestamp `json:"build_timestamp"`
	Dependencies   []string  `json:"dependencies,omitempty"`
}

// AuthMetadata describes the session as seen by the service
type AuthMetadata struct {
	TokenType   string     `json:"token_type"`
	AccessToken string     `json:"access_token"`
	ExpiresAt   *Timestamp `json:"expires_at,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
}

// Timestamp decodes RFC 3339 values and zone-less ISO 8601 values, the
// latter interpreted as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
