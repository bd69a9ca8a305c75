package movies

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/domain/models"
)

// ChangedSignal is the review collection's changed-event surface.
type ChangedSignal interface {
	Subscribe(fn func()) (unsubscribe func())
}

// DetailView drives one movie detail screen: it holds the fetched record,
// rotates the backdrop on a fixed interval while open, and re-fetches the
// record whenever the review set changes so aggregate counters stay in
// sync. Close releases the ticker and the subscription; nothing keeps
// running for a view the user has left.
type DetailView struct {
	log     *slog.Logger
	service *MovieService
	imdbID  string

	mu          sync.Mutex
	movie       *models.Movie
	backdropIdx int

	stop        chan struct{}
	unsubscribe func()
	closeOnce   sync.Once
}

// OpenDetailView fetches the movie and starts the backdrop rotation.
// signal may be nil when no review collection backs the view.
func OpenDetailView(
	ctx context.Context,
	log *slog.Logger,
	service *MovieService,
	imdbID string,
	rotation time.Duration,
	signal ChangedSignal,
) (*DetailView, error) {
	const op = "movies.OpenDetailView"
	movie, err := service.Get(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	v := &DetailView{
		log:     log.With("op", op, "imdbId", imdbID),
		service: service,
		imdbID:  imdbID,
		movie:   movie,
		stop:    make(chan struct{}),
	}
	if rotation > 0 {
		go v.rotate(rotation)
	}
	if signal != nil {
		v.unsubscribe = signal.Subscribe(func() {
			if err := v.Refresh(context.Background()); err != nil {
				v.log.Error("Error refreshing movie after review change", "errMsg", err.Error())
			}
		})
	}
	return v, nil
}

// Refresh re-fetches the movie record. The backdrop rotation index is kept
// when the backdrop list is unchanged, so a review-triggered refresh does
// not visibly restart the slideshow. On failure the last fetched record
// stays in place.
func (v *DetailView) Refresh(ctx context.Context) error {
	movie, err := v.service.Get(ctx, v.imdbID)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !slices.Equal(movie.Backdrops, v.movie.Backdrops) {
		v.backdropIdx = 0
	}
	v.movie = movie
	return nil
}

// Close stops the rotation and unsubscribes from the changed signal.
// Safe to call more than once.
func (v *DetailView) Close() {
	v.closeOnce.Do(func() {
		close(v.stop)
		if v.unsubscribe != nil {
			v.unsubscribe()
		}
	})
}

func (v *DetailView) Movie() *models.Movie {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.movie
}

// Backdrop returns the image currently shown by the rotation.
func (v *DetailView) Backdrop() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.movie.Backdrops) == 0 {
		return ""
	}
	return v.movie.Backdrops[v.backdropIdx%len(v.movie.Backdrops)]
}

func (v *DetailView) ReviewCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.movie.ReviewIDs)
}

func (v *DetailView) rotate(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-v.stop:
			return
		case <-ticker.C:
			v.mu.Lock()
			if n := len(v.movie.Backdrops); n > 1 {
				v.backdropIdx = (v.backdropIdx + 1) % n
			}
			v.mu.Unlock()
		}
	}
}
