package logging

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditEvent records one tool invocation. It never carries credential
// material; callers pass the tenant only as a boolean presence flag.
type AuditEvent struct {
	Action    string
	Outcome   string
	Target    string
	Transport string
	RequestID string
	ErrorKind string
	HasTenant bool
	Duration  time.Duration
}

// Audit writes an audit event at INFO level under the "Audit" subsystem.
func Audit(event AuditEvent) {
	l := logger()
	if l == nil || !l.Enabled(context.Background(), slog.LevelInfo) {
		return
	}

	attrs := []slog.Attr{
		slog.String("subsystem", "Audit"),
		slog.String("action", event.Action),
		slog.String("outcome", event.Outcome),
		slog.String("target", event.Target),
	}
	if event.Transport != "" {
		attrs = append(attrs, slog.String("transport", event.Transport))
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if event.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", event.ErrorKind))
	}
	attrs = append(attrs,
		slog.Bool("tenant_scoped", event.HasTenant),
		slog.Duration("duration", event.Duration),
	)

	l.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}

// RedactedPlaceholder replaces secrets in text.
const RedactedPlaceholder = "[REDACTED]"

// Redact replaces every occurrence of each non-empty secret in s. Longer
// secrets are replaced first so a secret embedded in another is fully masked.
func Redact(s string, secrets ...string) string {
	ordered := slices.Clone(secrets)
	slices.SortFunc(ordered, func(a, b string) int { return len(b) - len(a) })
	for _, secret := range ordered {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, RedactedPlaceholder)
	}
	return s
}

// MaskSecret returns a fixed-shape mask that reveals whether a value is set
// without revealing any of its characters.
func MaskSecret(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return RedactedPlaceholder
}
