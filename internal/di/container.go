package di

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	activitylog "github.com/goliatone/go-press/internal/activity"
	"github.com/goliatone/go-press/internal/adapters/crudschema"
	"github.com/goliatone/go-press/internal/assets"
	"github.com/goliatone/go-press/internal/destinations"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/integrity"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/logging/console"
	"github.com/goliatone/go-press/internal/logging/gologger"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/internal/schema"
	"github.com/goliatone/go-press/internal/storageconfig"
	"github.com/goliatone/go-press/internal/themes"
	pressactivity "github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/activity/usersink"
	"github.com/goliatone/go-press/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Container wires the press services from runtime configuration. Overrides
// come in through options; anything not supplied falls back to memory
// repositories, console logging, and feature-gated no-op services.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	clock       func() time.Time
	idGenerator posts.IDGenerator

	template   interfaces.TemplateRenderer
	genStorage interfaces.StorageProvider
	assetFS    fs.FS
	contentFS  fs.FS

	postRepo        posts.Repository
	themeRepo       themes.ThemeRepository
	templateRepo    themes.TemplateRepository
	destinationRepo destinations.Repository

	postSvc        posts.Service
	markdownSvc    interfaces.MarkdownService
	themeSvc       themes.Service
	assetSvc       assets.Service
	generatorSvc   generator.Service
	integritySvc   integrity.Service
	destinationSvc destinations.Service

	activityHooks   pressactivity.Hooks
	activityEmitter *pressactivity.Emitter

	themeSeeds     []themes.ThemeSeed
	schemaRegistry schema.Registry
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLogger overrides the root logger. Module loggers still come from the
// provider; supply WithLoggerProvider to redirect those as well.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithLoggerProvider overrides the logger provider every module logger is
// drawn from.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithGeneratorStorage sets the storage provider build artifacts are written
// through.
func WithGeneratorStorage(provider interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.genStorage = provider
	}
}

// WithTemplateRenderer sets the renderer used for page generation. Builds
// fail without one.
func WithTemplateRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = renderer
	}
}

// WithAssetFS sets the filesystem asset references resolve against.
func WithAssetFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.assetFS = fsys
	}
}

// WithContentFS supplies the Markdown content tree directly instead of
// reading Markdown.ContentDir from disk.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.contentFS = fsys
	}
}

// WithActivityNotifier appends a notifier to the activity fan-out.
func WithActivityNotifier(notifier pressactivity.Notifier) Option {
	return func(c *Container) {
		if notifier != nil {
			c.activityHooks = append(c.activityHooks, notifier)
		}
	}
}

// WithActivityHooks replaces the activity fan-out entirely.
func WithActivityHooks(hooks pressactivity.Hooks) Option {
	return func(c *Container) {
		c.activityHooks = hooks
	}
}

// WithActivitySink forwards activity events into an ActivitySink, typically a
// go-users backed trail.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		if sink != nil {
			c.activityHooks = append(c.activityHooks, usersink.Hook{Sink: sink})
		}
	}
}

// WithClock fixes the time source used by services that stamp records.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides how post identifiers are derived.
func WithIDGenerator(generator posts.IDGenerator) Option {
	return func(c *Container) {
		c.idGenerator = generator
	}
}

// WithPostsService overrides the default posts service binding.
func WithPostsService(svc posts.Service) Option {
	return func(c *Container) {
		c.postSvc = svc
	}
}

// WithMarkdownService overrides the default markdown service binding.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) {
		c.markdownSvc = svc
	}
}

func WithThemeService(svc themes.Service) Option {
	return func(c *Container) {
		c.themeSvc = svc
	}
}

// WithIntegrityService overrides the default integrity service binding.
func WithIntegrityService(svc integrity.Service) Option {
	return func(c *Container) {
		c.integritySvc = svc
	}
}

// WithDestinationsRepository overrides where destination profiles persist.
func WithDestinationsRepository(repo destinations.Repository) Option {
	return func(c *Container) {
		if repo != nil {
			c.destinationRepo = repo
		}
	}
}

// WithThemeSeeds registers theme definitions installed during start-up.
func WithThemeSeeds(seeds ...themes.ThemeSeed) Option {
	return func(c *Container) {
		c.themeSeeds = append(c.themeSeeds, seeds...)
	}
}

// WithSchemaRegistry overrides the registry post projections are published
// to.
func WithSchemaRegistry(registry schema.Registry) Option {
	return func(c *Container) {
		c.schemaRegistry = registry
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:          cfg,
		cacheTTL:        cacheTTL,
		clock:           time.Now,
		postRepo:        posts.NewMemoryRepository(),
		themeRepo:       themes.NewMemoryThemeRepository(),
		templateRepo:    themes.NewMemoryTemplateRepository(),
		destinationRepo: destinations.NewMemoryRepository(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()

	ctx := context.Background()
	if err := c.configureDatabase(ctx); err != nil {
		return nil, err
	}
	c.configureRepositories()
	c.configureActivity()

	if err := c.configureServices(); err != nil {
		return nil, err
	}
	if err := c.seedDestinations(ctx); err != nil {
		return nil, err
	}
	if err := c.bootstrapThemes(ctx); err != nil {
		return nil, err
	}
	if err := c.registerSchemas(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil {
		switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     c.Config.Logging.Level,
				Format:    c.Config.Logging.Format,
				AddSource: c.Config.Logging.AddSource,
				Focus:     c.Config.Logging.Focus,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		default:
			level := consoleLevel(c.Config.Logging.Level)
			c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
		}
	}
	if c.logger == nil {
		c.logger = logging.ModuleLogger(c.loggerProvider, "press")
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureDatabase(ctx context.Context) error {
	if c.bunDB != nil || !c.Config.Features.Persistence {
		return nil
	}
	if !storageconfig.HasDatabase(c.Config.Storage) {
		return nil
	}

	db, err := storageconfig.OpenDB(c.Config.Storage)
	if err != nil {
		return err
	}
	if err := storageconfig.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	c.bunDB = db
	c.ownsDB = true
	c.logger.Info("storage.configured", "driver", c.Config.Storage.Driver)
	return nil
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}

	c.postRepo = posts.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.themeRepo = themes.NewBunThemeRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.templateRepo = themes.NewBunTemplateRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.destinationRepo = destinations.NewBunRepository(c.bunDB)
}

func (c *Container) configureActivity() {
	enabled := c.Config.Features.Activity && c.Config.Activity.Enabled
	if enabled && len(c.activityHooks) == 0 {
		c.activityHooks = pressactivity.Hooks{
			activitylog.NewLoggerNotifier(logging.ModuleLogger(c.loggerProvider, "press.activity")),
		}
	}
	c.activityEmitter = pressactivity.NewEmitter(c.activityHooks, pressactivity.Config{
		Enabled: enabled,
		Channel: c.Config.Activity.Channel,
	})
}

func (c *Container) configureServices() error {
	if c.postSvc == nil {
		postOpts := []posts.ServiceOption{posts.WithClock(c.clock)}
		if locale := strings.TrimSpace(c.Config.Site.DefaultLocale); locale != "" {
			postOpts = append(postOpts, posts.WithDefaultLocale(locale))
		}
		if c.idGenerator != nil {
			postOpts = append(postOpts, posts.WithIDGenerator(c.idGenerator))
		}
		c.postSvc = posts.NewService(c.postRepo, postOpts...)
	}

	if c.themeSvc == nil {
		if !c.Config.Features.Themes {
			c.themeSvc = themes.NewNoOpService()
		} else {
			c.themeSvc = themes.NewService(c.themeRepo, c.templateRepo, themes.WithNow(c.clock))
		}
	}

	if c.markdownSvc == nil && c.Config.Features.Markdown && c.Config.Markdown.Enabled {
		svc, err := c.buildMarkdownService()
		if err != nil {
			return err
		}
		c.markdownSvc = svc
	}

	if c.assetSvc == nil {
		source := c.assetFS
		if source == nil {
			source = c.contentFS
		}
		if source == nil {
			source = os.DirFS(".")
		}
		assetOpts := []assets.ServiceOption{}
		if len(c.Config.Generator.AssetDirs) > 0 {
			assetOpts = append(assetOpts, assets.WithDirs(c.Config.Generator.AssetDirs...))
		}
		c.assetSvc = assets.NewService(source, assetOpts...)
	}

	if c.destinationSvc == nil {
		c.destinationSvc = destinations.NewService(c.destinationRepo)
	}

	if c.integritySvc == nil && c.Config.Features.Integrity && c.markdownSvc != nil {
		contentFS := c.contentFS
		if contentFS == nil {
			if dir := strings.TrimSpace(c.Config.Markdown.ContentDir); dir != "" {
				contentFS = os.DirFS(dir)
			}
		}
		c.integritySvc = integrity.NewService(integrity.Config{
			Pattern:   c.Config.Markdown.Pattern,
			Recursive: c.Config.Markdown.Recursive,
			Strict:    c.Config.Integrity.Strict,
			MaxIssues: c.Config.Integrity.MaxIssues,
		}, integrity.Dependencies{
			Markdown: c.markdownSvc,
			Content:  contentFS,
			Assets:   c.assetSvc,
			Logger:   logging.IntegrityLogger(c.loggerProvider),
		})
	}

	if c.generatorSvc == nil {
		if c.Config.Features.Generator && c.Config.Generator.Enabled {
			c.generatorSvc = generator.NewService(c.GeneratorConfig(), c.GeneratorDependencies())
		} else {
			c.generatorSvc = generator.NewDisabledService()
		}
	}

	return nil
}

func (c *Container) buildMarkdownService() (*markdown.Service, error) {
	md := c.Config.Markdown

	locale := strings.TrimSpace(md.DefaultLocale)
	if locale == "" {
		locale = c.Config.Site.DefaultLocale
	}
	locales := md.Locales
	if len(locales) == 0 {
		locales = c.Config.Site.Locales
	}

	mdCfg := markdown.Config{
		DefaultLocale:  locale,
		Locales:        locales,
		LocalePatterns: md.LocalePatterns,
		Pattern:        md.Pattern,
		Recursive:      md.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions:       md.Parser.Extensions,
			Sanitize:         md.Parser.Sanitize,
			HardWraps:        md.Parser.HardWraps,
			SafeMode:         md.Parser.SafeMode,
			DiagramLanguages: md.Parser.DiagramLanguages,
		},
		Posts:  c.postSvc,
		Logger: logging.MarkdownLogger(c.loggerProvider),
	}

	if c.contentFS != nil {
		return markdown.NewServiceWithFS(mdCfg, nil, c.contentFS)
	}
	mdCfg.BasePath = md.ContentDir
	return markdown.NewService(mdCfg, nil)
}

func (c *Container) seedDestinations(ctx context.Context) error {
	profiles := c.Config.Destinations.Profiles
	if len(profiles) == 0 || !c.Config.Features.Destinations {
		return nil
	}

	logger := logging.DestinationsLogger(c.loggerProvider)
	defaultName := ""
	for _, profile := range profiles {
		stored, err := c.destinationSvc.Upsert(ctx, profile)
		if err != nil {
			return fmt.Errorf("di: seed destination %q: %w", profile.Name, err)
		}
		if stored.Default {
			defaultName = stored.Name
		}
	}

	logger.Info("destinations.configured", "count", len(profiles), "default", defaultName)
	return nil
}

func (c *Container) bootstrapThemes(ctx context.Context) error {
	if len(c.themeSeeds) == 0 || !c.Config.Features.Themes {
		return nil
	}
	return themes.Bootstrap(ctx, c.themeSvc, c.themeSeeds)
}

func (c *Container) registerSchemas(ctx context.Context) error {
	if !c.Config.Features.SchemaRegistry {
		return nil
	}
	if c.schemaRegistry == nil {
		c.schemaRegistry = &crudschema.Registry{}
	}
	projection, err := schema.PostProjection()
	if err != nil {
		return err
	}
	return schema.RegisterProjections(ctx, c.schemaRegistry, []*schema.Projection{projection})
}

// GeneratorConfig projects the runtime configuration into the generator's
// config shape. Site identity fills the fields feeds and sitemaps render.
func (c *Container) GeneratorConfig() generator.Config {
	gen := c.Config.Generator
	site := c.Config.Site

	baseURL := strings.TrimSpace(gen.BaseURL)
	if baseURL == "" {
		baseURL = site.BaseURL
	}

	return generator.Config{
		OutputDir:       gen.OutputDir,
		BaseURL:         baseURL,
		Title:           site.Title,
		Description:     site.Description,
		Author:          site.Author,
		CleanBuild:      gen.CleanBuild,
		Incremental:     gen.Incremental,
		CopyAssets:      gen.CopyAssets,
		GenerateSitemap: gen.GenerateSitemap,
		GenerateRobots:  gen.GenerateRobots,
		GenerateFeeds:   gen.GenerateFeeds,
		Workers:         gen.Workers,
		DefaultLocale:   site.DefaultLocale,
		Locales:         site.Locales,
		Destination:     gen.Destination,
		Theming: generator.ThemingConfig{
			DefaultTheme:   c.Config.Themes.DefaultTheme,
			DefaultVariant: c.Config.Themes.DefaultVariant,
		},
	}
}

// GeneratorDependencies assembles the generator's collaborators from the
// container's wired services.
func (c *Container) GeneratorDependencies() generator.Dependencies {
	deps := generator.Dependencies{
		Posts:    c.postSvc,
		Themes:   c.themeSvc,
		Renderer: c.template,
		Storage:  c.genStorage,
		Assets:   c.assetSvc,
	}
	if c.Config.Features.Destinations {
		deps.Destinations = c.destinationSvc
	}
	if c.Config.Features.Themes {
		if dir := strings.TrimSpace(c.Config.Themes.Dir); dir != "" {
			deps.ThemeAssets = themes.FileSystemAssetResolver{FS: os.DirFS(dir)}
		}
	}
	return deps
}

// Close releases resources the container opened itself. Databases supplied
// through WithBunDB stay open.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		c.ownsDB = false
		return err
	}
	return nil
}

// Logger returns the root module logger.
func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

// LoggerProvider returns the provider module loggers are drawn from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// PostsService returns the configured posts service.
func (c *Container) PostsService() posts.Service {
	return c.postSvc
}

// MarkdownService returns the configured markdown service, nil when the
// feature is disabled.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdownSvc
}

func (c *Container) ThemeService() themes.Service {
	return c.themeSvc
}

// AssetsService returns the configured asset resolver.
func (c *Container) AssetsService() assets.Service {
	return c.assetSvc
}

// GeneratorService returns the configured generator service.
func (c *Container) GeneratorService() generator.Service {
	return c.generatorSvc
}

// IntegrityService returns the configured integrity service, nil when the
// feature is disabled.
func (c *Container) IntegrityService() integrity.Service {
	return c.integritySvc
}

// DestinationsService returns the destination profile service.
func (c *Container) DestinationsService() destinations.Service {
	return c.destinationSvc
}

// ActivityEmitter returns the configured activity emitter. The emitter is
// always non-nil; it reports disabled when the feature is off.
func (c *Container) ActivityEmitter() *pressactivity.Emitter {
	return c.activityEmitter
}

// StorageProvider exposes the generator artifact storage.
func (c *Container) StorageProvider() interfaces.StorageProvider {
	return c.genStorage
}

// TemplateRenderer exposes the configured template renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.template
}

func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// SchemaRegistry returns the registry post projections were published to,
// nil when the schema feature is disabled.
func (c *Container) SchemaRegistry() schema.Registry {
	return c.schemaRegistry
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}
