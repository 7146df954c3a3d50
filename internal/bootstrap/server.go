package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/api"
	"github.com/blix057/afdver-Bot/internal/config"
	"github.com/blix057/afdver-Bot/internal/database"
	"github.com/blix057/afdver-Bot/internal/handler"
	"github.com/blix057/afdver-Bot/internal/httpserver"
	"github.com/blix057/afdver-Bot/internal/identity"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/ratelimit"
	"github.com/blix057/afdver-Bot/internal/repository"
	"github.com/blix057/afdver-Bot/internal/telemetry"
	"github.com/blix057/afdver-Bot/internal/usage"
)

// SetupHTTPServer wires repositories, handlers, and routes into a server.
// The returned usage recorder is not yet started; the caller starts it and
// closes it on shutdown.
func SetupHTTPServer(
	cfg *config.Config,
	db *database.DB,
	limiter *ratelimit.Limiter,
	log logger.Logger,
) (*httpserver.Server, *usage.Recorder) {
	linkRepo := repository.NewLinkRepository(db.DB(), cfg.Database.LinksTable)
	botRepo := repository.NewBotRepository(db.DB())

	rec := usage.New(botRepo, log,
		usage.DefaultCapacity, usage.DefaultFlushInterval, usage.DefaultFlushThreshold)
	tel := telemetry.NewProvider()

	deps := api.Deps{
		Ingest:      handler.NewIngestHandler(linkRepo, rec, tel, log),
		Links:       handler.NewLinksHandler(linkRepo, log),
		Stats:       handler.NewStatsHandler(linkRepo, log),
		Register:    handler.NewRegisterHandler(botRepo, log),
		Health:      handler.NewHealthHandler(cfg.Service.Name, cfg.Service.Version),
		Registry:    identity.NewRegistry(cfg.Auth.BotTokens),
		Limiter:     limiter,
		AdminSecret: cfg.Auth.AdminSecret,
		Telemetry:   tel,
		Logger:      log,
	}

	server := httpserver.NewServer(cfg, log, tel, func(router *gin.Engine) {
		api.SetupRoutes(router, deps)
	})

	return server, rec
}
