package testutil

import (
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// NewRedis returns a client on a miniredis instance closed at test end.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

// Browser replays the session cookie across requests like a browser would.
type Browser struct {
	App        *fiber.App
	CookieName string
	cookie     string
}

func (b *Browser) Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if b.cookie != "" {
		req.Header.Set("Cookie", b.cookie)
	}
	resp, err := b.App.Test(req)
	require.NoError(t, err)
	for _, v := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(v, b.CookieName+"=") {
			pair := strings.SplitN(v, ";", 2)[0]
			if strings.TrimPrefix(pair, b.CookieName+"=") == "" {
				b.cookie = ""
			} else {
				b.cookie = pair
			}
		}
	}
	return resp
}
