package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
)

// session is the on-disk shape of session.yaml
type session struct {
	Identity   domain.Identity `yaml:"identity"`
	SignedInAt time.Time       `yaml:"signed_in_at"`
}

// ProfileProvider keeps the signed-in identity in a YAML file
type ProfileProvider struct {
	path string
	mu   sync.Mutex
}

// NewProfileProvider creates a provider backed by the session file at path
func NewProfileProvider(path string) *ProfileProvider {
	return &ProfileProvider{path: path}
}

// Ensure it implements the interface
var _ ports.IdentityProvider = (*ProfileProvider)(nil)

func (p *ProfileProvider) Current(ctx context.Context) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.read()
	if err != nil {
		return nil, err
	}
	return &s.Identity, nil
}

// SignedInAt returns when the current session started
func (p *ProfileProvider) SignedInAt() (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.read()
	if err != nil {
		return time.Time{}, err
	}
	return s.SignedInAt, nil
}

func (p *ProfileProvider) SignIn(ctx context.Context, identity domain.Identity) error {
	if _, err := domain.NewIdentity(identity.UID, identity.Email); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := yaml.Marshal(session{Identity: identity, SignedInAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (p *ProfileProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (p *ProfileProvider) read() (*session, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotSignedIn
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if s.Identity.UID == "" {
		return nil, domain.ErrNotSignedIn
	}
	return &s, nil
}
