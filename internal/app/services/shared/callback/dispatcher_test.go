package callback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/services/shared/jwtmanager"
	"citamed-service/internal/app/services/shared/ratelimiter"
	redisrepo "citamed-service/internal/app/services/shared/redis"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/responses"
	"citamed-service/internal/pkg/exceptions"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T, server *miniredis.Miniredis) *Dispatcher {
	t.Helper()

	cfg := &config.InternalConfig{
		JWT: config.AppJWT{Secret: "callback-signing-secret", ExpTimeInHour: 1},
		Callback: config.AppCallback{
			HTTPTimeoutInSeconds:      5,
			RatePerSecond:             100,
			Burst:                     100,
			DeliveredMarkerTTLInHours: 24,
		},
	}

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	repo := redisrepo.NewRedisRepository(client)
	jwtMgr, err := jwtmanager.NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)

	return NewDispatcher(zap.NewNop(), cfg, repo, jwtMgr, ratelimiter.NewResourceLimiter(repo, zap.NewNop()))
}

func TestDispatcherDeliver(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the payload once and keeps the delivery marker", func(t *testing.T) {
		server := miniredis.RunT(t)

		var mu sync.Mutex
		var hits int64
		var lastAuth, lastContentType string
		var lastBody responses.CallbackPayload
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			hits++
			lastAuth = r.Header.Get(constvars.HeaderAuthorization)
			lastContentType = r.Header.Get(constvars.HeaderContentType)
			_ = json.NewDecoder(r.Body).Decode(&lastBody)
			w.WriteHeader(http.StatusOK)
		}))
		defer target.Close()

		dispatcher := newTestDispatcher(t, server)
		in := &DeliverInput{
			ResumeToken: "token-1",
			CallbackURL: target.URL,
			Payload: responses.CallbackPayload{
				ResumeToken: "token-1",
				Status:      constvars.CallbackStatusOK,
				Message:     constvars.CreateBookingCompletedMessage,
			},
		}

		out, err := dispatcher.Deliver(ctx, in)
		require.NoError(t, err)
		assert.False(t, out.AlreadyDelivered)

		mu.Lock()
		assert.EqualValues(t, 1, hits)
		assert.True(t, strings.HasPrefix(lastAuth, "Bearer "))
		assert.Equal(t, constvars.MIMEApplicationJSON, lastContentType)
		assert.Equal(t, constvars.CallbackStatusOK, lastBody.Status)
		mu.Unlock()
		assert.True(t, server.Exists(constvars.RedisKeyCallbackDelivered+"token-1"))

		// A redelivered callback job finds the token consumed and posts nothing.
		out, err = dispatcher.Deliver(ctx, in)
		require.NoError(t, err)
		assert.True(t, out.AlreadyDelivered)
		mu.Lock()
		assert.EqualValues(t, 1, hits)
		mu.Unlock()
	})

	t.Run("failed post releases the marker for the retry attempt", func(t *testing.T) {
		server := miniredis.RunT(t)

		var hits int64
		var failing atomic.Bool
		failing.Store(true)
		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&hits, 1)
			if failing.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer target.Close()

		dispatcher := newTestDispatcher(t, server)
		in := &DeliverInput{
			ResumeToken: "token-2",
			CallbackURL: target.URL,
			Payload:     responses.CallbackPayload{ResumeToken: "token-2", Status: constvars.CallbackStatusOK},
		}

		_, err := dispatcher.Deliver(ctx, in)
		require.Error(t, err)
		assert.True(t, exceptions.IsRetryable(err))
		assert.False(t, server.Exists(constvars.RedisKeyCallbackDelivered+"token-2"))

		failing.Store(false)
		out, err := dispatcher.Deliver(ctx, in)
		require.NoError(t, err)
		assert.False(t, out.AlreadyDelivered)
		assert.EqualValues(t, 2, atomic.LoadInt64(&hits))
		assert.True(t, server.Exists(constvars.RedisKeyCallbackDelivered+"token-2"))
	})
}
