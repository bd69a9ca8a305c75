package rest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/domain/models"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/services/session"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (t staticTokens) Token() string { return string(t) }

// fakeBackend mimics the catalog server's surface closely enough for the
// client: raw JSON entities on success, {"message": ...} envelopes on error.
func fakeBackend(t *testing.T) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r)
			next.ServeHTTP(w, r)
		})
	})

	router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, render.DecodeJSON(r.Body, &creds))
		if creds["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		render.JSON(w, r, map[string]string{
			"token": "issued-token",
			"email": creds["email"],
			"name":  "Alice",
			"role":  "USER",
		})
	})
	router.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, render.DecodeJSON(r.Body, &body))
		if body["email"] == "taken@x.com" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"message": "email already registered"})
			return
		}
		render.JSON(w, r, map[string]string{
			"token": "issued-token", "email": body["email"], "name": body["name"], "role": "USER",
		})
	})
	router.Get("/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer issued-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/movies/{imdbId}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "imdbId") != "tt0111161" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		render.JSON(w, r, models.Movie{ImdbID: "tt0111161", Title: "The Shawshank Redemption"})
	})
	router.Get("/reviews/{imdbId}", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, []models.Review{
			{ID: "r1", Body: "great", Rating: 5, ImdbID: chi.URLParam(r, "imdbId")},
		})
	})
	router.Post("/reviews", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, render.DecodeJSON(r.Body, &payload))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, models.Review{
			ID:     "created",
			Body:   payload["reviewBody"].(string),
			Rating: int(payload["rating"].(float64)),
			ImdbID: payload["imdbId"].(string),
		})
	})
	router.Put("/reviews/{id}", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, models.Review{ID: chi.URLParam(r, "id"), Body: "updated"})
	})
	router.Delete("/reviews/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, &seen
}

func newTestClient(t *testing.T, addr string) *Client {
	t.Helper()
	return New(slog.Default(), addr, time.Second, 1, nil)
}

func TestLogin(t *testing.T) {
	server, _ := fakeBackend(t)
	client := newTestClient(t, server.URL)

	sess, err := client.Login(context.Background(), "a@x.com", "right")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", sess.Token)
	assert.Equal(t, models.User{Email: "a@x.com", Name: "Alice", Role: "USER"}, sess.User)
}

func TestLoginBadCredentials(t *testing.T) {
	server, _ := fakeBackend(t)
	client := newTestClient(t, server.URL)

	_, err := client.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

func TestRegisterServerMessageSurfaced(t *testing.T) {
	server, _ := fakeBackend(t)
	client := newTestClient(t, server.URL)

	_, err := client.Register(context.Background(), "taken@x.com", "Alice", "pass")
	require.Error(t, err)
	assert.Equal(t, "email already registered", err.Error())
}

func TestValidateUsesBearerToken(t *testing.T) {
	server, _ := fakeBackend(t)
	client := newTestClient(t, server.URL)

	assert.ErrorIs(t, client.Validate(context.Background()), ErrUnauthorized)

	client.SetTokenSource(staticTokens("issued-token"))
	assert.NoError(t, client.Validate(context.Background()))
}

func TestGetMovieNotFound(t *testing.T) {
	server, _ := fakeBackend(t)
	client := newTestClient(t, server.URL)

	_, err := client.GetMovie(context.Background(), "tt0000000")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	movie, err := client.GetMovie(context.Background(), "tt0111161")
	require.NoError(t, err)
	assert.Equal(t, "The Shawshank Redemption", movie.Title)
}

func TestListReviewsEncodesSortQuery(t *testing.T) {
	server, seen := fakeBackend(t)
	client := newTestClient(t, server.URL)

	reviews, err := client.ListReviews(context.Background(), "tt0111161", "highest-rated")
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	last := (*seen)[len(*seen)-1]
	assert.Equal(t, "highest-rated", last.URL.Query().Get("sortBy"))
	assert.NotEmpty(t, last.Header.Get("X-Request-Id"))
}

func TestCreateReviewPayload(t *testing.T) {
	server, _ := fakeBackend(t)
	client := newTestClient(t, server.URL)

	created, err := client.CreateReview(context.Background(), "loved it", 5, "tt0111161")
	require.NoError(t, err)
	assert.Equal(t, "created", created.ID)
	assert.Equal(t, "loved it", created.Body)
	assert.Equal(t, 5, created.Rating)
}

func TestDeleteReviewUnauthorized(t *testing.T) {
	server, _ := fakeBackend(t)
	client := newTestClient(t, server.URL)

	assert.ErrorIs(t, client.DeleteReview(context.Background(), "r1"), ErrUnauthorized)

	client.SetTokenSource(staticTokens("issued-token"))
	assert.NoError(t, client.DeleteReview(context.Background(), "r1"))
}

func TestGetRetriesOnTransportFailure(t *testing.T) {
	// nothing listens on this address: every attempt fails at transport level
	client := New(slog.Default(), "http://127.0.0.1:1", 100*time.Millisecond, 2, nil)

	start := time.Now()
	_, err := client.GetMovie(context.Background(), "tt0111161")
	require.Error(t, err)
	assert.ErrorContains(t, err, "backend unreachable")
	assert.Less(t, time.Since(start), 5*time.Second)
}
