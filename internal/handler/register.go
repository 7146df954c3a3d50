package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/repository"
)

// RegisterRequest is the admin provisioning payload.
type RegisterRequest struct {
	BotName     string `json:"bot_name" binding:"required"`
	Owner       string `json:"owner"    binding:"required"`
	Description string `json:"description"`
}

// BotRegistrar persists new bot identities.
type BotRegistrar interface {
	Register(ctx context.Context, bot *domain.Bot) error
}

// RegisterHandler provisions bot identities. The issued token is returned
// exactly once in the response and never retrievable afterwards.
type RegisterHandler struct {
	bots   BotRegistrar
	logger logger.Logger
}

// NewRegisterHandler creates a RegisterHandler backed by the given store.
func NewRegisterHandler(bots BotRegistrar, log logger.Logger) *RegisterHandler {
	return &RegisterHandler{
		bots:   bots,
		logger: log,
	}
}

// Handle serves POST /register behind the admin credential. The stored name
// is the sanitized form of bot_name, which makes it byte-identical to the
// identity later derived from the issued token.
func (h *RegisterHandler) Handle(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			domain.NewErrorResponse(domain.ErrCodeValidation, "bot_name and owner are required"))
		return
	}

	name := repository.SanitizeBotName(req.BotName)
	if name == "" {
		c.JSON(http.StatusBadRequest,
			domain.NewErrorResponse(domain.ErrCodeValidation,
				"bot_name must contain at least one alphanumeric character"))
		return
	}

	bot := &domain.Bot{
		Name:        name,
		Owner:       req.Owner,
		Description: req.Description,
	}
	if err := h.bots.Register(c.Request.Context(), bot); err != nil {
		if errors.Is(err, repository.ErrDuplicateBot) {
			c.JSON(http.StatusConflict,
				domain.NewErrorResponse(domain.ErrCodeConflict, "a bot with this name is already registered"))
			return
		}
		h.logger.Error("Failed to register bot",
			logger.String("bot_name", name),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError,
			internalError("failed to register bot", err))
		return
	}

	h.logger.Info("Bot registered",
		logger.String("bot_name", name),
		logger.String("identity_id", bot.IdentityID),
		logger.String("owner", bot.Owner),
	)

	c.JSON(http.StatusCreated, gin.H{
		"identity_id": bot.IdentityID,
		"token":       bot.Token,
	})
}
