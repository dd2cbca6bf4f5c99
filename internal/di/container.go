package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/auth"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	contentcmd "github.com/autophileaozora/smk-kristen5-website-sub003/internal/commands/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	porthttp "github.com/autophileaozora/smk-kristen5-website-sub003/internal/http"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging/gologger"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/notifications"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/runtimeconfig"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/activity"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/activity/usersink"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/storage"
	"github.com/go-chi/chi/v5"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrResolverRequired is returned by Router when neither a JWT secret nor an
// explicit resolver is configured.
var ErrResolverRequired = errors.New("di: admin api requires PORTAL_JWT_SECRET or a resolver override")

// Container wires the portal modules from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	repo      content.Repository
	clock     func() time.Time
	sender    notifications.Sender
	directory notifications.Directory
	notifier  *notifications.Dispatcher

	activitySink  interfaces.ActivitySink
	activityHooks activity.Hooks
	emitter       *activity.Emitter

	contentSvc content.Service
	commands   *contentcmd.HandlerSet
	registry   contentcmd.CommandRegistry
	resolver   auth.Resolver
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database instead of dialling Config.Storage.
// The caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache provider.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRepository bypasses storage selection entirely.
func WithRepository(repo content.Repository) Option {
	return func(c *Container) {
		c.repo = repo
	}
}

// WithClock overrides the time source used by the service and dispatcher.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithSender overrides the notification sender selected by Config.
func WithSender(sender notifications.Sender) Option {
	return func(c *Container) {
		c.sender = sender
	}
}

// WithDirectory overrides the recipient directory built from Config.
func WithDirectory(directory notifications.Directory) Option {
	return func(c *Container) {
		c.directory = directory
	}
}

// WithActivitySink forwards activity events to a go-users sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithActivityHooks adds hooks next to the optional sink.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithCommandRegistry registers the content command handlers with reg.
func WithCommandRegistry(reg contentcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithResolver overrides the JWT resolver used by the admin API.
func WithResolver(resolver auth.Resolver) Option {
	return func(c *Container) {
		c.resolver = resolver
	}
}

// WithContentService overrides the default content service binding.
func WithContentService(svc content.Service) Option {
	return func(c *Container) {
		c.contentSvc = svc
	}
}

// NewContainer validates cfg and builds every module it enables.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureRepository(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureNotifications(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureActivity()
	if err := c.configureResolver(); err != nil {
		c.Close()
		return nil, err
	}

	if c.contentSvc == nil {
		c.contentSvc = content.NewService(c.repo, c.serviceOptions()...)
	}

	set, err := contentcmd.RegisterContentCommands(c.registry, c.contentSvc, c.loggerProvider)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.commands = set
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	logCfg := c.Config.Logging
	if !c.Config.Features.Logger || strings.EqualFold(strings.TrimSpace(logCfg.Provider), "noop") {
		c.loggerProvider = noopProvider{}
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     logCfg.Level,
		Format:    logCfg.Format,
		AddSource: logCfg.AddSource,
		Focus:     logCfg.Focus,
	})
	if err != nil {
		return fmt.Errorf("di: logger: %w", err)
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureRepository() error {
	if c.repo != nil {
		return nil
	}
	driver := strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
	if driver == "memory" && c.bunDB == nil {
		c.repo = content.NewMemoryRepository()
		return nil
	}

	if c.bunDB == nil {
		db, err := storage.Open(storage.Config{Driver: driver, DSN: c.Config.Storage.DSN})
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.Config.Storage.AutoMigrate {
		if err := content.EnsureSchema(context.Background(), c.bunDB); err != nil {
			return fmt.Errorf("di: migrate content schema: %w", err)
		}
	}

	c.configureCacheDefaults()
	c.repo = content.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			logging.ContentLogger(c.loggerProvider).Warn("content.cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureNotifications() error {
	notifyCfg := c.Config.Notifications
	if !notifyCfg.Enabled {
		return nil
	}
	logger := logging.NotificationsLogger(c.loggerProvider)

	if c.sender == nil {
		switch strings.ToLower(strings.TrimSpace(notifyCfg.Sender)) {
		case "memory":
			c.sender = notifications.NewMemorySender()
		case "smtp":
			sender, err := notifications.NewSMTPSender(notifications.SMTPConfig{
				Host:     notifyCfg.SMTP.Host,
				Port:     notifyCfg.SMTP.Port,
				Username: notifyCfg.SMTP.Username,
				Password: notifyCfg.SMTP.Password,
				From:     notifyCfg.SMTP.From,
			})
			if err != nil {
				return fmt.Errorf("di: notifications: %w", err)
			}
			c.sender = sender
		default:
			c.sender = notifications.NewLogSender(logger)
		}
	}
	if c.directory == nil {
		c.directory = directoryFromConfig(notifyCfg)
	}

	dispatcherOpts := []notifications.Option{
		notifications.WithLogger(logger),
		notifications.WithSiteName(notifyCfg.SiteName),
		notifications.WithTimeout(notifyCfg.Timeout),
	}
	if notifyCfg.HistorySize > 0 {
		dispatcherOpts = append(dispatcherOpts, notifications.WithHistory(notifications.NewHistory(notifyCfg.HistorySize)))
	}
	if c.clock != nil {
		dispatcherOpts = append(dispatcherOpts, notifications.WithClock(c.clock))
	}
	c.notifier = notifications.NewDispatcher(c.sender, c.directory, dispatcherOpts...)
	return nil
}

func directoryFromConfig(cfg runtimeconfig.NotificationsConfig) *notifications.StaticDirectory {
	admins := make([]notifications.Recipient, 0, len(cfg.Admins))
	for _, address := range cfg.Admins {
		admins = append(admins, notifications.Recipient{Address: strings.TrimSpace(address)})
	}
	users := make(map[uuid.UUID]notifications.Recipient, len(cfg.Users))
	for key, address := range cfg.Users {
		id, err := uuid.Parse(strings.TrimSpace(key))
		if err != nil {
			continue
		}
		users[id] = notifications.Recipient{Address: strings.TrimSpace(address)}
	}
	return notifications.NewStaticDirectory(admins, users)
}

func (c *Container) configureActivity() {
	hooks := append(activity.Hooks{}, c.activityHooks...)
	if c.activitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: c.activitySink})
	}
	c.emitter = activity.NewEmitter(hooks, activity.Config{
		Enabled: c.Config.Features.Activity,
		Channel: "portal",
	})
}

func (c *Container) configureResolver() error {
	if c.resolver != nil {
		return nil
	}
	secret := strings.TrimSpace(c.Config.Auth.JWTSecret)
	if secret == "" {
		return nil
	}
	resolver, err := auth.NewJWTResolver([]byte(secret))
	if err != nil {
		return fmt.Errorf("di: auth: %w", err)
	}
	c.resolver = resolver
	return nil
}

func (c *Container) serviceOptions() []content.ServiceOption {
	opts := []content.ServiceOption{
		content.WithLogger(logging.ContentLogger(c.loggerProvider)),
		content.WithActivityEmitter(c.emitter),
		content.WithBulkOptions(bulk.WithConcurrency(c.Config.Bulk.Concurrency)),
		content.WithMaxBulkItems(c.Config.Bulk.MaxItems),
	}
	if c.notifier != nil {
		opts = append(opts, content.WithNotifier(c.notifier))
	}
	if c.clock != nil {
		opts = append(opts, content.WithClock(c.clock))
	}
	return opts
}

// ContentService returns the lifecycle service.
func (c *Container) ContentService() content.Service {
	return c.contentSvc
}

// Commands returns the registered content command handlers.
func (c *Container) Commands() *contentcmd.HandlerSet {
	return c.commands
}

// Notifications returns the dispatcher, or nil when notifications are disabled.
func (c *Container) Notifications() *notifications.Dispatcher {
	return c.notifier
}

// Sender returns the configured notification sender.
func (c *Container) Sender() notifications.Sender {
	return c.sender
}

// ActivityEmitter returns the emitter shared with the content service.
func (c *Container) ActivityEmitter() *activity.Emitter {
	return c.emitter
}

// LoggerProvider returns the provider every module logger is derived from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BunDB returns the database backing the store, or nil for the memory store.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// Resolver returns the admin API actor resolver, if any.
func (c *Container) Resolver() auth.Resolver {
	return c.resolver
}

// Router builds the HTTP handler mounting the admin and public APIs.
func (c *Container) Router() (chi.Router, error) {
	if c.resolver == nil {
		return nil, ErrResolverRequired
	}
	httpCfg := c.Config.HTTP
	logger := logging.HTTPLogger(c.loggerProvider)
	admin := porthttp.NewAdminAPI(
		porthttp.WithBasePath(httpCfg.AdminBasePath),
		porthttp.WithContentService(c.contentSvc),
		porthttp.WithResolver(c.resolver),
		porthttp.WithLogger(logger),
	)
	public := porthttp.NewPublicAPI(c.contentSvc, httpCfg.PublicBasePath)
	return porthttp.NewRouter(logger, admin, public)
}

// Close waits for in-flight notifications and releases the database when the
// container opened it.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.notifier != nil {
		c.notifier.Wait()
	}
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		return err
	}
	return nil
}

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger {
	return logging.NoOp()
}
