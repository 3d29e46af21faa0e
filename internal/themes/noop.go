package themes

import (
	"context"

	"github.com/google/uuid"
)

type noopService struct{}

// NewNoOpService returns a Service that rejects every call. It stands in
// when the themes feature is disabled.
func NewNoOpService() Service {
	return noopService{}
}

func (noopService) RegisterTheme(context.Context, RegisterThemeInput) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) GetTheme(context.Context, uuid.UUID) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) GetThemeByName(context.Context, string) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) ListThemes(context.Context) ([]*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) ActivateTheme(context.Context, uuid.UUID) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) DeactivateTheme(context.Context, uuid.UUID) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) ActiveTheme(context.Context) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) ActiveSummary(context.Context) (*ThemeSummary, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) RegisterTemplate(context.Context, RegisterTemplateInput) (*Template, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) UpdateTemplate(context.Context, UpdateTemplateInput) (*Template, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) DeleteTemplate(context.Context, uuid.UUID) error {
	return ErrFeatureDisabled
}

func (noopService) GetTemplate(context.Context, uuid.UUID) (*Template, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) ListTemplates(context.Context, uuid.UUID) ([]*Template, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) ResolveTemplate(context.Context, string) (string, error) {
	return "", ErrFeatureDisabled
}
