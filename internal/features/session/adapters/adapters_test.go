package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/cache"
	"envios-web/internal/features/session/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	store := NewRedisTokenStore(c)
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "sid", "tok", time.Minute))
	assert.True(t, mr.Exists("session:sid"))
	assert.Equal(t, time.Minute, mr.TTL("session:sid"))

	tok, ok, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)

	mr.FastForward(time.Minute)
	_, ok, err = store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok, "token expires with its ttl")

	require.NoError(t, store.Save(ctx, "sid", "tok", time.Minute))
	require.NoError(t, store.Delete(ctx, "sid"))
	assert.False(t, mr.Exists("session:sid"))
	assert.NoError(t, store.Ping(ctx))
}

func TestAPIAuthenticator_Login(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"accessToken":"abc.def.ghi","user":{"id":3,"firstName":"Ana","role":"BASIC"}}`))
	}))
	defer srv.Close()

	auth := NewAPIAuthenticator(apiclient.New(srv.URL, "x_header_access_token", srv.Client()))
	res, err := auth.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", body["username"])
	assert.Equal(t, "pw", body["password"])
	assert.Equal(t, "abc.def.ghi", res.AccessToken)
	assert.Equal(t, "Ana", res.User.FirstName)
}

func TestAPIAuthenticator_Login_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{}}`))
	}))
	defer srv.Close()

	auth := NewAPIAuthenticator(apiclient.New(srv.URL, "x_header_access_token", srv.Client()))
	_, err := auth.Login(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

func TestAPIAuthenticator_Register(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/register", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	auth := NewAPIAuthenticator(apiclient.New(srv.URL, "x_header_access_token", srv.Client()))
	err := auth.Register(context.Background(), domain.Registration{
		Email: "ana@example.com", DocumentType: "V", DocumentNumber: "123",
	})
	require.NoError(t, err)

	assert.Equal(t, "BASIC", body["role"])
	assert.Equal(t, "V", body["document_type"])
	assert.Equal(t, "123", body["document_number"])
}
