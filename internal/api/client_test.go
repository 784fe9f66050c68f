package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/energyviz/internal/session"
	"github.com/jgoulah/energyviz/pkg/models"
)

func TestLoginSavesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "me@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "abc", TokenType: "bearer"})
	}))
	defer srv.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.yaml"))
	c := New(srv.URL, 5*time.Second, store)

	tok, err := c.Login(context.Background(), "me@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)

	sess, err := session.NewStore(store.Path()).Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, "me@example.com", sess.Email)
}

func TestLoginBadCredentialsLeavesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	}))
	defer srv.Close()

	store := session.NewStore("")
	require.NoError(t, store.Save(session.Session{Token: "old"}))
	c := New(srv.URL, 5*time.Second, store)

	_, err := c.Login(context.Background(), "me@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Contains(t, authErr.Message, "Incorrect email or password")
	assert.Equal(t, "old", store.Token())
}

func TestRegisterPasswordMismatchSendsNoRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	err := c.Register(context.Background(), "me@example.com", "a", "b")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, "passwords do not match", err.Error())
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRegisterSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "me@example.com", "password": "pw"}, body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	require.NoError(t, c.Register(context.Background(), "me@example.com", "pw", "pw"))
}

func TestRegisterConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Email already registered"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, 5*time.Second, nil).Register(context.Background(), "me@example.com", "pw", "pw")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "Email already registered", statusErr.Body)
}

func TestRecordsSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/energy/generation", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"1","timestamp":"2023-01-01T23:59:00","energy_kwh":4.5,"source":"solar","location":"north","system_id":"s1"}]`))
	}))
	defer srv.Close()

	store := session.NewStore("")
	require.NoError(t, store.Save(session.Session{Token: "tok"}))

	records, err := New(srv.URL+"/", 5*time.Second, store).Records(context.Background(), models.Generation)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2023-01-01", records[0].Day())
	assert.Equal(t, 4.5, records[0].EnergyKWh)
	assert.Equal(t, "solar", records[0].Source)
	assert.Equal(t, "s1", records[0].SystemID)
}

func TestRecordsWithoutSessionOmitsAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	records, err := New(srv.URL, 5*time.Second, nil).Records(context.Background(), models.Consumption)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 5*time.Second, nil).Records(context.Background(), models.Consumption)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}
