// Package http wires REST routes and the websocket upgrade endpoint.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/adapters/ws"
	"github.com/dkeye/Parley/internal/auth"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/store"
)

// Deps carries everything the routes need.
type Deps struct {
	Tokens   *auth.TokenService
	Hasher   *auth.PasswordHasher
	Users    *store.UserRepo
	Messages *store.MessageRepo
	Registry *core.Registry
	Chat     *ws.ChatController
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CORSMiddleware allows any origin. Development posture, same as the
// frontend expects; tighten per deployment.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())

	r.POST("/signup", func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username & password required"})
			return
		}
		if err := domain.ValidateUsername(req.Username); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hash, err := deps.Hasher.Hash(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		user, err := domain.NewUser(req.Username, hash)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := deps.Users.Create(user); err != nil {
			if errors.Is(err, store.ErrUserExists) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
				return
			}
			log.Error().Err(err).Str("module", "adapters.http").Msg("signup create user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		issueToken(c, deps.Tokens, req.Username)
	})

	r.POST("/login", func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username & password required"})
			return
		}
		user, err := deps.Users.FindByUsername(req.Username)
		if err != nil || !deps.Hasher.Verify(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
			return
		}
		issueToken(c, deps.Tokens, req.Username)
	})

	r.GET("/messages/:room", func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultHistoryLimit)))
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		msgs, err := deps.Messages.History(c.Param("room"), limit)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("load history")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, msgs)
	})

	api := r.Group("/api")
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": deps.Registry.Rooms()})
	})

	r.GET("/ws/:room/:username", func(c *gin.Context) {
		deps.Chat.HandleChat(ctx, c)
	})

	return r
}

func issueToken(c *gin.Context, tokens *auth.TokenService, username string) {
	token, err := tokens.Issue(username)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
