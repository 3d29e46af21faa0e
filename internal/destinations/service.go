package destinations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-press/internal/validation"
	"github.com/goliatone/go-press/pkg/storage"
)

var (
	// ErrRepositoryRequired reports a missing repository dependency.
	ErrRepositoryRequired = errors.New("destinations: repository required")
	// ErrProfileInvalid wraps schema validation failures on upsert.
	ErrProfileInvalid = errors.New("destinations: profile invalid")
	// ErrNoDefaultDestination indicates no profile is flagged as the default.
	ErrNoDefaultDestination = errors.New("destinations: no default destination")
)

// Service manages publish destination profiles. Upserts are validated
// against storage.ProfileJSONSchema before they reach the repository, and
// at most one profile holds the default flag at a time.
type Service interface {
	List(ctx context.Context) ([]storage.Profile, error)
	Get(ctx context.Context, name string) (*storage.Profile, error)
	Upsert(ctx context.Context, profile storage.Profile) (*storage.Profile, error)
	Delete(ctx context.Context, name string) error

	// Resolve returns the named profile, or the default profile when name is
	// empty. Build workflows use it to turn BuildOptions.Destination into an
	// output root.
	Resolve(ctx context.Context, name string) (*storage.Profile, error)
	Default(ctx context.Context) (*storage.Profile, error)

	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

type service struct {
	repo Repository

	schemaOnce sync.Once
	schema     map[string]any
	schemaErr  error
}

// NewService constructs a destination profile service.
func NewService(repo Repository) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]storage.Profile, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, name string) (*storage.Profile, error) {
	return s.repo.Get(ctx, name)
}

func (s *service) Upsert(ctx context.Context, profile storage.Profile) (*storage.Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, ErrProfileNameRequired
	}
	if err := s.validate(profile); err != nil {
		return nil, err
	}

	if profile.Default {
		if err := s.clearOtherDefaults(ctx, profile.Name); err != nil {
			return nil, err
		}
	}
	return s.repo.Upsert(ctx, profile)
}

func (s *service) Delete(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

func (s *service) Resolve(ctx context.Context, name string) (*storage.Profile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		return s.repo.Get(ctx, trimmed)
	}
	return s.Default(ctx)
}

func (s *service) Default(ctx context.Context) (*storage.Profile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		if profile.Default {
			cloned := cloneProfile(profile)
			return &cloned, nil
		}
	}
	return nil, ErrNoDefaultDestination
}

func (s *service) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.repo.Subscribe(ctx)
}

// clearOtherDefaults demotes any other profile currently holding the
// default flag so Resolve("") stays unambiguous.
func (s *service) clearOtherDefaults(ctx context.Context, keep string) error {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, profile := range profiles {
		if !profile.Default || profile.Name == keep {
			continue
		}
		profile.Default = false
		if _, err := s.repo.Upsert(ctx, profile); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) validate(profile storage.Profile) error {
	schema, err := s.profileSchema()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProfileInvalid, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileInvalid, err)
	}

	if err := validation.ValidatePayload(schema, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileInvalid, err)
	}
	return nil
}

func (s *service) profileSchema() (map[string]any, error) {
	s.schemaOnce.Do(func() {
		var schema map[string]any
		if err := json.Unmarshal([]byte(storage.ProfileJSONSchema), &schema); err != nil {
			s.schemaErr = fmt.Errorf("destinations: parse profile schema: %w", err)
			return
		}
		s.schema = schema
	})
	return s.schema, s.schemaErr
}
