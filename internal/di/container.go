package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	backendauth "github.com/lumen-gear/storefront/internal/backend/auth"
	backenddata "github.com/lumen-gear/storefront/internal/backend/data"
	"github.com/lumen-gear/storefront/internal/handlers"
	"github.com/lumen-gear/storefront/internal/platform/config"
	pfirestore "github.com/lumen-gear/storefront/internal/platform/firestore"
	"github.com/lumen-gear/storefront/internal/platform/localstore"
	"github.com/lumen-gear/storefront/internal/platform/observability"
	"github.com/lumen-gear/storefront/internal/repositories"
	localrepo "github.com/lumen-gear/storefront/internal/repositories/localstore"
	"github.com/lumen-gear/storefront/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Carts    services.CartService
	Pending  services.PendingActionService
	Guard    services.RouteGuard
	Sessions services.SessionService
	Profiles services.ProfileService
	Admin    services.AdminService
}

// Container wires repositories, backend clients, services, and the HTTP
// router for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
	Router       http.Handler

	firestoreProvider *pfirestore.Provider
}

// NewContainer constructs the runtime dependencies from configuration.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := localstore.New(cfg.LocalStore.Dir)
	if err != nil {
		return nil, fmt.Errorf("build local store: %w", err)
	}
	registry, err := localrepo.NewRegistry(store)
	if err != nil {
		return nil, fmt.Errorf("build repository registry: %w", err)
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	dataClient, err := backenddata.NewClient(firestoreProvider)
	if err != nil {
		return nil, fmt.Errorf("build data client: %w", err)
	}

	identityClient, err := backendauth.NewIdentityClient(cfg.Firebase.WebAPIKey)
	if err != nil {
		return nil, fmt.Errorf("build identity client: %w", err)
	}
	verifier, err := backendauth.NewVerifier(ctx, cfg.Firebase,
		backendauth.WithVerifyTimeout(cfg.Session.AuthTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("build session verifier: %w", err)
	}

	svc, err := buildServices(cfg, logger, registry, dataClient, identityClient, verifier)
	if err != nil {
		return nil, err
	}

	router := buildRouter(cfg, logger, svc)

	return &Container{
		Config:            cfg,
		Repositories:      registry,
		Services:          svc,
		Router:            router,
		firestoreProvider: firestoreProvider,
	}, nil
}

// Close releases repository clients and backend connections.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Repositories != nil {
		if err := c.Repositories.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.firestoreProvider != nil {
		if err := c.firestoreProvider.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildServices(
	cfg config.Config,
	logger *zap.Logger,
	registry repositories.Registry,
	dataClient *backenddata.Client,
	identityClient *backendauth.IdentityClient,
	verifier *backendauth.Verifier,
) (Services, error) {
	var svc Services

	carts, err := services.NewCartService(services.CartServiceDeps{
		Repository: registry.Carts(),
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("cart")),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Carts = carts

	svc.Pending = services.NewPendingActionService(services.PendingActionDeps{
		Clock:  time.Now,
		Logger: observability.EventLogger(logger.Named("pending")),
	})

	svc.Guard = services.NewRouteGuard(services.RouteGuardDeps{
		Logger: observability.EventLogger(logger.Named("guard")),
	})

	sessions, err := services.NewSessionService(services.SessionServiceDeps{
		Auth:              identityClient,
		Verifier:          verifier,
		Admin:             dataClient,
		Pending:           svc.Pending,
		Carts:             carts,
		ResetRedirectURL:  cfg.Session.ResetRedirectURL,
		AdminCheckTimeout: cfg.Session.AdminCheckTimeout,
		Clock:             time.Now,
		Logger:            observability.EventLogger(logger.Named("session")),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build session service: %w", err)
	}
	svc.Sessions = sessions

	profiles, err := services.NewProfileService(services.ProfileServiceDeps{
		Backend:           dataClient,
		Orders:            dataClient,
		ProfileCache:      registry.Profiles(),
		OrderCache:        registry.Orders(),
		DefaultOrderLimit: cfg.Orders.DefaultListLimit,
		Clock:             time.Now,
		Logger:            observability.EventLogger(logger.Named("profile")),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build profile service: %w", err)
	}
	svc.Profiles = profiles

	admin, err := services.NewAdminService(services.AdminServiceDeps{
		Backend: dataClient,
		Claims:  verifier,
		Logger:  observability.EventLogger(logger.Named("admin")),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build admin service: %w", err)
	}
	svc.Admin = admin

	return svc, nil
}

func buildRouter(cfg config.Config, logger *zap.Logger, svc Services) http.Handler {
	authenticator := handlers.NewAuthenticator(svc.Sessions)

	authOnly := []func(http.Handler) http.Handler{
		authenticator.RequireAuth(),
		handlers.RouteGuardMiddleware(svc.Guard, svc.Sessions, services.ViewAuthOnly),
	}
	adminOnly := []func(http.Handler) http.Handler{
		authenticator.RequireAuth(),
		handlers.RouteGuardMiddleware(svc.Guard, svc.Sessions, services.ViewAdminOnly),
	}

	httpLogger := logger.Named("http")
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(httpLogger),
		observability.TraceMiddleware(cfg.Firebase.ProjectID),
		observability.RecoveryMiddleware(httpLogger),
		observability.RequestLoggerMiddleware(),
	}

	return handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(cfg.Environment)),
		handlers.WithSessionRoutes(handlers.NewSessionHandlers(svc.Sessions).Routes),
		handlers.WithPendingRoutes(handlers.NewPendingHandlers(svc.Pending).Routes),
		handlers.WithCartRoutes(handlers.NewCartHandlers(svc.Carts).Routes),
		handlers.WithCartMiddlewares(authOnly...),
		handlers.WithProfileRoutes(handlers.NewProfileHandlers(svc.Profiles).Routes),
		handlers.WithProfileMiddlewares(authOnly...),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(svc.Profiles, svc.Carts).Routes),
		handlers.WithOrderMiddlewares(authOnly...),
		handlers.WithAdminRoutes(handlers.NewAdminHandlers(svc.Admin).Routes),
		handlers.WithAdminMiddlewares(adminOnly...),
	)
}
