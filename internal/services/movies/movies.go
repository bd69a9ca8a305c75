package movies

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/domain/models"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/storage"
)

type CatalogProvider interface {
	GetMovie(ctx context.Context, imdbID string) (*models.Movie, error)
	ListMovies(ctx context.Context) ([]models.Movie, error)
	CreateMovie(ctx context.Context, movie *models.Movie) (*models.Movie, error)
}

type SessionReader interface {
	User() (models.User, bool)
}

type MovieService struct {
	log      *slog.Logger
	provider CatalogProvider
	session  SessionReader
}

func New(log *slog.Logger, provider CatalogProvider, sessionReader SessionReader) *MovieService {
	return &MovieService{
		log:      log,
		provider: provider,
		session:  sessionReader,
	}
}

func (s *MovieService) Get(ctx context.Context, imdbID string) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "imdbId", imdbID)
	movie, err := s.provider.GetMovie(ctx, imdbID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) List(ctx context.Context) ([]models.Movie, error) {
	const op = "movies.MovieService.List"
	log := s.log.With("op", op)
	movies, err := s.provider.ListMovies(ctx)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return movies, nil
}

// Create adds a movie to the catalog. Gated on the ADMIN/DEVELOPER roles
// locally; the backend enforces the same rule for real.
func (s *MovieService) Create(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	const op = "movies.MovieService.Create"
	log := s.log.With("op", op, "imdbId", movie.ImdbID, "title", movie.Title)
	user, ok := s.session.User()
	if !ok || !user.CanCreateMovies() {
		log.Warn("movie creation rejected by role check")
		return nil, ErrNotPermitted
	}
	created, err := s.provider.CreateMovie(ctx, movie)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("movie already exists")
			return nil, ErrMovieAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return created, nil
}
