package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig configures the Redis-backed session.
type SessionConfig struct {
	Secret            string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "sfms.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour

	sessionDataLocal      = "session_data"
	sessionIDLocal        = "session_id"
	sessionDestroyedLocal = "session_destroyed"
)

// SessionPrincipal is the identity handed to the session at start.
type SessionPrincipal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Session loads session data from Redis into Locals and writes it back after
// the handler runs. Visitors without a valid cookie get a fresh session id so
// per-session flags work before any principal is attached.
func Session(cfg SessionConfig, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()
		incoming := unsignSessionID(c.Cookies(SessionCookieName), cfg.Secret)

		var data map[string]interface{}
		if incoming != "" {
			b, err := rdb.Get(ctx, SessionRedisPrefix+incoming).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("session load failed")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}
		sessionID := incoming
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		c.Locals(sessionDataLocal, data)
		c.Locals(userLocal, data["user"])
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		sid := GetSessionID(c)
		if destroyed, _ := c.Locals(sessionDestroyedLocal).(bool); destroyed {
			rdb.Del(ctx, SessionRedisPrefix+sid)
			if incoming != "" && incoming != sid {
				rdb.Del(ctx, SessionRedisPrefix+incoming)
			}
			cookie := SessionCookieConfig(cfg)
			cookie.MaxAge = -1
			cookie.Expires = time.Unix(0, 0)
			c.Cookie(&cookie)
			return nil
		}

		if incoming != "" && incoming != sid {
			rdb.Del(ctx, SessionRedisPrefix+incoming)
		}
		updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
		b, _ := json.Marshal(updated)
		if err := rdb.Set(ctx, SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
			log.Warn().Err(err).Msg("session save failed")
		}
		if sid != incoming {
			cookie := SessionCookieConfig(cfg)
			cookie.Value = signSessionID(sid, cfg.Secret)
			c.Cookie(&cookie)
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionPrincipal stores the principal under "user".
// Call RegenerateSessionID first when starting a new session.
func SetSessionPrincipal(c *fiber.Ctx, p SessionPrincipal) {
	SetSessionValue(c, "user", map[string]interface{}{
		"user_id": p.UserID,
		"role":    p.Role,
	})
	c.Locals(userLocal, sessionData(c)["user"])
}

// SetSessionValue stores an arbitrary JSON-encodable value in the session.
func SetSessionValue(c *fiber.Ctx, key string, v interface{}) {
	data := sessionData(c)
	data[key] = v
	c.Locals(sessionDataLocal, data)
}

// GetSessionValue reads a value stored with SetSessionValue.
func GetSessionValue(c *fiber.Ctx, key string) interface{} {
	return sessionData(c)[key]
}

func sessionData(c *fiber.Ctx) map[string]interface{} {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
		c.Locals(sessionDataLocal, data)
	}
	return data
}

// RegenerateSessionID swaps in a new session ID; the old Redis key is removed
// and a new cookie is sent once the handler returns.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	c.Locals(sessionDestroyedLocal, false)
	return newID
}

// DestroySession clears session data; the Redis key and cookie are removed
// once the handler returns.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(sessionDestroyedLocal, true)
}

// SessionCookieConfig returns the session cookie options.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	secure := cfg.IsProduction || cfg.AllowCrossSiteDev
	return fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

// Cookie values look like "s:<id>.<sig>" where sig is the unpadded base64url
// HMAC-SHA256 of the id. Without a secret the bare id is used.
func signSessionID(id, secret string) string {
	if secret == "" {
		return id
	}
	return "s:" + id + "." + sessionSignature(id, secret)
}

func unsignSessionID(raw, secret string) string {
	if raw == "" {
		return ""
	}
	if secret == "" {
		return strings.TrimPrefix(raw, "s:")
	}
	if !strings.HasPrefix(raw, "s:") {
		return ""
	}
	parts := strings.SplitN(raw[2:], ".", 2)
	if len(parts) != 2 {
		return ""
	}
	if !hmac.Equal([]byte(parts[1]), []byte(sessionSignature(parts[0], secret))) {
		return ""
	}
	return parts[0]
}

func sessionSignature(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
