package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
)

// StepClock returns a strictly increasing time on every call
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStepClock starts at start and advances by step per Now call
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start, step: step}
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// FixedClock always returns the same time
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// SequentialIDs generates "id-1", "id-2", ...
type SequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// MockIdentityProvider keeps the session in memory
type MockIdentityProvider struct {
	mu      sync.Mutex
	current *domain.Identity
}

func NewMockIdentityProvider(current *domain.Identity) *MockIdentityProvider {
	return &MockIdentityProvider{current: current}
}

func (p *MockIdentityProvider) Current(ctx context.Context) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, domain.ErrNotSignedIn
	}
	id := *p.current
	return &id, nil
}

func (p *MockIdentityProvider) SignIn(ctx context.Context, identity domain.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &identity
	return nil
}

func (p *MockIdentityProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
	return nil
}
