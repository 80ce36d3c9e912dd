//go:build !protogen

package policy

import "log/slog"

func NewPlatformPolicyProvider(_ *slog.Logger, fallback Policy, _ string) (Provider, error) {
	return NewStaticProvider(fallback), nil
}
