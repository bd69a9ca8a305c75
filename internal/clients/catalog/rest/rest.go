package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/domain/models"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/services/session"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"golang.org/x/time/rate"
)

// TokenSource yields the bearer token for the current session, or an empty
// string when unauthenticated. The session store implements it.
type TokenSource interface {
	Token() string
}

type anonymousTokens struct{}

func (anonymousTokens) Token() string { return "" }

type Client struct {
	log          *slog.Logger
	http         *http.Client
	baseURL      string
	tokens       TokenSource
	limiter      *rate.Limiter
	encoder      *schema.Encoder
	timeout      time.Duration
	retriesCount int
}

/*
	New creates a new Client instance.

It takes a logger, the backend base address, a per-attempt timeout,
and a retries count (applied to idempotent GET calls only) as parameters.
*/
func New(
	log *slog.Logger,
	addr string,
	timeout time.Duration,
	retriesCount int,
	limiter *rate.Limiter,
) *Client {
	encoder := schema.NewEncoder()
	return &Client{
		log:          log,
		http:         &http.Client{},
		baseURL:      strings.TrimSuffix(addr, "/"),
		tokens:       anonymousTokens{},
		limiter:      limiter,
		encoder:      encoder,
		timeout:      timeout,
		retriesCount: retriesCount,
	}
}

// SetTokenSource wires the session store in after construction. The store
// itself is built on top of this client, so the dependency is set late.
func (c *Client) SetTokenSource(tokens TokenSource) {
	if tokens != nil {
		c.tokens = tokens
	}
}

type authResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (r authResponse) session() *models.Session {
	return &models.Session{
		Token: r.Token,
		User:  models.User{Email: r.Email, Name: r.Name, Role: r.Role},
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "rest.Client.Login"
	log := c.log.With("op", op, "email", email)
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, session.ErrInvalidCredentials
		}
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return resp.session(), nil
}

func (c *Client) Register(ctx context.Context, email, name, password string) (*models.Session, error) {
	const op = "rest.Client.Register"
	log := c.log.With("op", op, "email", email)
	var resp authResponse
	body := map[string]string{"email": email, "name": name, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &resp); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, session.ErrInvalidCredentials
		}
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return resp.session(), nil
}

// Validate asks the backend whether the current bearer token is still good.
func (c *Client) Validate(ctx context.Context) error {
	const op = "rest.Client.Validate"
	log := c.log.With("op", op)
	if err := c.do(ctx, http.MethodGet, "/auth/validate", nil, nil, nil); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return err
	}
	return nil
}

func (c *Client) GetMovie(ctx context.Context, imdbID string) (*models.Movie, error) {
	const op = "rest.Client.GetMovie"
	log := c.log.With("op", op, "imdbId", imdbID)
	var movie models.Movie
	if err := c.do(ctx, http.MethodGet, "/movies/"+url.PathEscape(imdbID), nil, nil, &movie); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return &movie, nil
}

func (c *Client) ListMovies(ctx context.Context) ([]models.Movie, error) {
	const op = "rest.Client.ListMovies"
	log := c.log.With("op", op)
	var movies []models.Movie
	if err := c.do(ctx, http.MethodGet, "/movies", nil, nil, &movies); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return movies, nil
}

func (c *Client) CreateMovie(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	const op = "rest.Client.CreateMovie"
	log := c.log.With("op", op, "imdbId", movie.ImdbID)
	var created models.Movie
	if err := c.do(ctx, http.MethodPost, "/movies", nil, movie, &created); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return &created, nil
}

type listReviewsQuery struct {
	SortBy string `schema:"sortBy"`
}

func (c *Client) ListReviews(ctx context.Context, imdbID string, sortBy string) ([]models.Review, error) {
	const op = "rest.Client.ListReviews"
	log := c.log.With("op", op, "imdbId", imdbID, "sortBy", sortBy)
	query := url.Values{}
	if err := c.encoder.Encode(listReviewsQuery{SortBy: sortBy}, query); err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/"+url.PathEscape(imdbID), query, nil, &reviews); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return reviews, nil
}

type reviewPayload struct {
	ReviewBody string `json:"reviewBody"`
	Rating     int    `json:"rating"`
	ImdbID     string `json:"imdbId"`
}

func (c *Client) CreateReview(ctx context.Context, body string, rating int, imdbID string) (*models.Review, error) {
	const op = "rest.Client.CreateReview"
	log := c.log.With("op", op, "imdbId", imdbID)
	var created models.Review
	payload := reviewPayload{ReviewBody: body, Rating: rating, ImdbID: imdbID}
	if err := c.do(ctx, http.MethodPost, "/reviews", nil, payload, &created); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateReview(ctx context.Context, id string, body string, rating int, imdbID string) (*models.Review, error) {
	const op = "rest.Client.UpdateReview"
	log := c.log.With("op", op, "id", id)
	var updated models.Review
	payload := reviewPayload{ReviewBody: body, Rating: rating, ImdbID: imdbID}
	if err := c.do(ctx, http.MethodPut, "/reviews/"+url.PathEscape(id), nil, payload, &updated); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	const op = "rest.Client.DeleteReview"
	log := c.log.With("op", op, "id", id)
	if err := c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil, nil); err != nil {
		log.Error("Error", "errMsg", err.Error())
		return err
	}
	return nil
}

// errorBody is the message envelope the backend uses for failed requests.
type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.retriesCount
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := c.attempt(ctx, method, path, query, payload)
		if err != nil {
			// transport-level failure, safe to retry idempotent calls
			lastErr = err
			continue
		}
		return c.handleResponse(resp, out)
	}
	return fmt.Errorf("backend unreachable: %w", lastErr)
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Response, error) {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// the response is drained here so the attempt context can be released
	// before the caller decodes it
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

func (c *Client) handleResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return storage.ErrNotFound
	case http.StatusConflict:
		return storage.ErrConflict
	}

	var errBody errorBody
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Message != "" {
		return ErrInvalidData.SetMessage(errBody.Message)
	}
	return errors.New(FallbackMessage)
}
