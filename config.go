package press

import (
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/pkg/storage"
)

var (
	ErrThemesFeatureRequired        = runtimeconfig.ErrThemesFeatureRequired
	ErrMarkdownFeatureRequired      = runtimeconfig.ErrMarkdownFeatureRequired
	ErrMarkdownContentDirRequired   = runtimeconfig.ErrMarkdownContentDirRequired
	ErrGeneratorFeatureRequired     = runtimeconfig.ErrGeneratorFeatureRequired
	ErrGeneratorOutputDirRequired   = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrGeneratorWorkersInvalid      = runtimeconfig.ErrGeneratorWorkersInvalid
	ErrIntegrityMaxIssuesInvalid    = runtimeconfig.ErrIntegrityMaxIssuesInvalid
	ErrActivityFeatureRequired      = runtimeconfig.ErrActivityFeatureRequired
	ErrStorageDriverUnknown         = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired           = runtimeconfig.ErrStorageDSNRequired
	ErrDestinationNameRequired      = runtimeconfig.ErrDestinationNameRequired
	ErrDestinationProviderRequired  = runtimeconfig.ErrDestinationProviderRequired
	ErrDestinationDSNRequired       = runtimeconfig.ErrDestinationDSNRequired
	ErrDestinationFallbackUnknown   = runtimeconfig.ErrDestinationFallbackUnknown
	ErrDestinationMultipleDefaults  = runtimeconfig.ErrDestinationMultipleDefaults
	ErrCommandsCronRequiresSchedule = runtimeconfig.ErrCommandsCronRequiresSchedule
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	GeneratorConfig      = runtimeconfig.GeneratorConfig
	IntegrityConfig      = runtimeconfig.IntegrityConfig
	ThemesConfig         = runtimeconfig.ThemesConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	DestinationsConfig   = runtimeconfig.DestinationsConfig
	ActivityConfig       = runtimeconfig.ActivityConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
	Features             = runtimeconfig.Features

	// DestinationProfile describes a named publish destination.
	DestinationProfile = storage.Profile
	// DestinationConfig carries the storage coordinates of a destination.
	DestinationConfig = storage.Config
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
