// Package app provides application-level wiring and dependency injection
// for the itemvault application following hexagonal architecture.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"itemvault/internal/api"
	"itemvault/internal/config"
	"itemvault/internal/db/repository"
	"itemvault/internal/domain"
	"itemvault/internal/graph"
	"itemvault/internal/middleware"
	"itemvault/internal/service"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles and config.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application. Router is the complete HTTP
// surface; the repositories are exposed for the CLI subcommands.
type App struct {
	Router   http.Handler
	UserRepo domain.UserRepository
	ItemRepo domain.ItemRepository
}

// New wires repositories, services, identity resolution, and both API
// surfaces from the provided deps.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === Repositories ===
	// Mutations go through the single-writer pool; reads (including the
	// graph surface and the batch loaders) use the read pool.
	userRepo := repository.NewUserRepo(deps.WriteDB)
	itemRepo := repository.NewItemRepo(deps.WriteDB)
	userReadRepo := repository.NewUserRepo(deps.ReadDB)
	itemReadRepo := repository.NewItemRepo(deps.ReadDB)

	// === Services ===
	userSvc := service.NewUserService(userRepo)
	itemSvc := service.NewItemService(itemRepo)
	healthSvc := service.NewHealthService(deps.WriteDB, deps.ReadDB)

	// === Identity resolution ===
	source, err := identitySource(cfg)
	if err != nil {
		return nil, err
	}
	identity := middleware.Identity(source, userSvc, cfg.Auth.AdminGroup, deps.Logger)

	// === Graph surface ===
	schema, err := graph.NewSchema(itemReadRepo, userReadRepo)
	if err != nil {
		return nil, fmt.Errorf("build graph schema: %w", err)
	}
	guard := graph.NewGuard(graph.GuardConfig{
		MaxDepth:   cfg.Graph.MaxQueryDepth,
		MaxCost:    cfg.Graph.MaxQueryCost,
		ListFields: graph.GuardListFields(),
	})
	graphHandler := graph.NewHandler(schema, guard, userReadRepo, itemReadRepo, deps.Logger)

	// === REST surface ===
	handler := api.NewHandler(itemSvc, userSvc, healthSvc, deps.Logger)
	router := api.NewRouter(handler, graphHandler, identity, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	return &App{
		Router:   router,
		UserRepo: userRepo,
		ItemRepo: itemRepo,
	}, nil
}

// identitySource builds the configured identity source. Config validation
// already rejected inconsistent modes, so failures here are construction
// errors only.
func identitySource(cfg *config.Config) (domain.IdentitySource, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeTrustedHeader:
		return middleware.NewTrustedHeaderSource(), nil
	case config.AuthModeDev:
		return middleware.NewDevSource(), nil
	case config.AuthModeBearer:
		validator, err := middleware.NewHS256Validator(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("build jwt validator: %w", err)
		}
		return middleware.NewBearerTokenSource(validator), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
