package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/handler"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/repository"
)

type fakeRegistrar struct {
	err error
	got *domain.Bot
}

func (f *fakeRegistrar) Register(_ context.Context, bot *domain.Bot) error {
	f.got = bot
	if f.err != nil {
		return f.err
	}
	bot.IdentityID = "11111111-2222-3333-4444-555555555555"
	bot.Token = bot.Name + "_" + strings.Repeat("ab", 16)
	return nil
}

func newRegisterRouter(registrar handler.BotRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewRegisterHandler(registrar, logger.NewNop())
	router := gin.New()
	router.POST("/register", h.Handle)
	return router
}

func TestRegisterHandler(t *testing.T) {
	registrar := &fakeRegistrar{}
	router := newRegisterRouter(registrar)

	w := postJSON(t, router, "/register", handler.RegisterRequest{
		BotName:     "AfD Watch",
		Owner:       "ops",
		Description: "primary collector",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		IdentityID string `json:"identity_id"`
		Token      string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", resp.IdentityID)
	assert.True(t, strings.HasPrefix(resp.Token, "afdwatch_"))

	require.NotNil(t, registrar.got)
	assert.Equal(t, "afdwatch", registrar.got.Name)
	assert.Equal(t, "ops", registrar.got.Owner)
	assert.Equal(t, "primary collector", registrar.got.Description)
}

func TestRegisterHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body handler.RegisterRequest
	}{
		{
			name: "missing bot_name",
			body: handler.RegisterRequest{Owner: "ops"},
		},
		{
			name: "missing owner",
			body: handler.RegisterRequest{BotName: "bot1"},
		},
		{
			name: "name sanitizes to nothing",
			body: handler.RegisterRequest{BotName: "___--!!", Owner: "ops"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := &fakeRegistrar{}
			router := newRegisterRouter(registrar)

			w := postJSON(t, router, "/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, domain.ErrCodeValidation, decodeErrorCode(t, w))
			assert.Nil(t, registrar.got)
		})
	}
}

func TestRegisterHandlerDuplicateName(t *testing.T) {
	router := newRegisterRouter(&fakeRegistrar{err: repository.ErrDuplicateBot})

	w := postJSON(t, router, "/register", handler.RegisterRequest{
		BotName: "bot1",
		Owner:   "ops",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.ErrCodeConflict, decodeErrorCode(t, w))
}

func TestRegisterHandlerStorageError(t *testing.T) {
	router := newRegisterRouter(&fakeRegistrar{err: errors.New("connection refused")})

	w := postJSON(t, router, "/register", handler.RegisterRequest{
		BotName: "bot1",
		Owner:   "ops",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, domain.ErrCodeInternal, decodeErrorCode(t, w))
}
