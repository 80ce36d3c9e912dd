package policy

import "context"

// Policy is the scheduling configuration applied to a counselor's bookings.
type Policy struct {
	// HorizonDays bounds how far ahead a student may book, today inclusive.
	HorizonDays int
	// GranularityMinutes is the slot step used to subdivide availability
	// windows. Fixed platform-wide today, parameterized for reuse.
	GranularityMinutes int
	// DefaultMaxSessionsPerDay applies to counselors without an explicit
	// daily limit configured.
	DefaultMaxSessionsPerDay int
}

// Default mirrors the platform's admin-service defaults.
func Default() Policy {
	return Policy{
		HorizonDays:              30,
		GranularityMinutes:       60,
		DefaultMaxSessionsPerDay: 8,
	}
}

type Provider interface {
	BookingPolicy(ctx context.Context, counselorID string) (Policy, error)
}

type staticProvider struct {
	policy Policy
}

func NewStaticProvider(p Policy) Provider {
	if p.HorizonDays <= 0 {
		p.HorizonDays = Default().HorizonDays
	}
	if p.GranularityMinutes <= 0 {
		p.GranularityMinutes = Default().GranularityMinutes
	}
	if p.DefaultMaxSessionsPerDay <= 0 {
		p.DefaultMaxSessionsPerDay = Default().DefaultMaxSessionsPerDay
	}
	return &staticProvider{policy: p}
}

func (p *staticProvider) BookingPolicy(_ context.Context, _ string) (Policy, error) {
	return p.policy, nil
}
