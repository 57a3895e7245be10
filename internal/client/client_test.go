package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListConferencesSendsQuery(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		_ = json.NewEncoder(w).Encode([]models.Conference{{ID: 1, Name: "ICML"}})
	}))
	defer srv.Close()

	confs, err := New(srv.URL+"/").ListConferences(context.Background(), "  machine learning ")
	require.NoError(t, err)
	assert.Equal(t, "/api/conferences", gotPath)
	assert.Equal(t, "machine learning", gotQuery)
	require.Len(t, confs, 1)
	assert.Equal(t, "ICML", confs[0].Name)
}

func TestClient_LoginKeepsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/verify-login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@example.com", body["email"])
		_ = json.NewEncoder(w).Encode(LoginResult{Token: "tok-1", User: models.User{ID: 4, Username: "a"}})
	})
	mux.HandleFunc("/api/users/4/favorites/9", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.User.ID)

	require.NoError(t, c.RemoveFavorite(context.Background(), 4, 9))
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":"error","message":"email already registered"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SignUp(context.Background(), SignUpRequest{Username: "a", Email: "a@example.com", Password: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "email already registered", ServerMessage(err))
}

func TestClient_APIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetConference(context.Background(), 1)
	require.Error(t, err)
	assert.Empty(t, ServerMessage(err))
	assert.Contains(t, err.Error(), "500")
}

func TestClient_NetworkErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListPapers(context.Background(), 3)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Empty(t, ServerMessage(err))
}
