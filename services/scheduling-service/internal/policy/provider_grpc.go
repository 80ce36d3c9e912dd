//go:build protogen

package policy

import (
	"context"
	"log/slog"
	"time"

	"github.com/rafid-karim/counselhub/libs/grpcx"
	policyv1 "github.com/rafid-karim/counselhub/protos/gen/policy/v1"
)

type grpcProvider struct {
	client   policyv1.SchedulingPolicyServiceClient
	fallback Policy
}

// NewPlatformPolicyProvider dials the platform admin service for per-counselor
// scheduling policy; on dial failure it degrades to the static fallback.
func NewPlatformPolicyProvider(logger *slog.Logger, fallback Policy, addr string) (Provider, error) {
	if addr == "" {
		return NewStaticProvider(fallback), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("grpc policy provider unavailable, using fallback", "err", err)
		return NewStaticProvider(fallback), nil
	}

	logger.Info("grpc policy provider enabled", "addr", addr)
	return &grpcProvider{client: policyv1.NewSchedulingPolicyServiceClient(conn), fallback: fallback}, nil
}

func (p *grpcProvider) BookingPolicy(ctx context.Context, counselorID string) (Policy, error) {
	resp, err := p.client.GetBookingPolicy(ctx, &policyv1.BookingPolicyRequest{CounselorId: counselorID})
	if err != nil {
		return Policy{}, err
	}
	out := p.fallback
	if v := int(resp.GetHorizonDays()); v > 0 {
		out.HorizonDays = v
	}
	if v := int(resp.GetGranularityMinutes()); v > 0 {
		out.GranularityMinutes = v
	}
	if v := int(resp.GetDefaultMaxSessionsPerDay()); v > 0 {
		out.DefaultMaxSessionsPerDay = v
	}
	return out, nil
}
