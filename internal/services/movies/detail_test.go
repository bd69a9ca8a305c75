package movies

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSignal struct {
	fn           func()
	unsubscribed int
}

func (s *stubSignal) Subscribe(fn func()) func() {
	s.fn = fn
	return func() { s.unsubscribed++ }
}

func (s *stubSignal) fire() {
	if s.fn != nil {
		s.fn()
	}
}

func openTestView(t *testing.T, catalog *stubCatalog, rotation time.Duration, signal ChangedSignal) *DetailView {
	t.Helper()
	svc := New(slog.Default(), catalog, &stubSession{})
	view, err := OpenDetailView(context.Background(), slog.Default(), svc, "tt0111161", rotation, signal)
	require.NoError(t, err)
	t.Cleanup(view.Close)
	return view
}

func TestBackdropRotation(t *testing.T) {
	view := openTestView(t, &stubCatalog{movie: testMovie()}, 5*time.Millisecond, nil)
	assert.Equal(t, "b1.jpg", view.Backdrop())

	assert.Eventually(t, func() bool {
		return view.Backdrop() != "b1.jpg"
	}, time.Second, time.Millisecond)
}

func TestRotationStopsOnClose(t *testing.T) {
	view := openTestView(t, &stubCatalog{movie: testMovie()}, 5*time.Millisecond, nil)
	view.Close()
	current := view.Backdrop()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, current, view.Backdrop())

	// closing again is fine
	view.Close()
}

func TestChangedSignalRefreshesMovie(t *testing.T) {
	catalog := &stubCatalog{movie: testMovie()}
	signal := &stubSignal{}
	view := openTestView(t, catalog, 0, signal)
	assert.Equal(t, 2, view.ReviewCount())

	catalog.movie.ReviewIDs = append(catalog.movie.ReviewIDs, "r3")
	signal.fire()
	assert.Equal(t, 3, view.ReviewCount())
	assert.Equal(t, 2, catalog.getCalls)
}

func TestRefreshKeepsBackdropIndexWhenListUnchanged(t *testing.T) {
	catalog := &stubCatalog{movie: testMovie()}
	view := openTestView(t, catalog, 2*time.Millisecond, nil)

	assert.Eventually(t, func() bool {
		return view.Backdrop() != "b1.jpg"
	}, time.Second, time.Millisecond)
	view.Close() // freeze the rotation so the index is stable
	before := view.Backdrop()

	require.NoError(t, view.Refresh(context.Background()))
	assert.Equal(t, before, view.Backdrop())
}

func TestRefreshResetsIndexOnNewBackdrops(t *testing.T) {
	catalog := &stubCatalog{movie: testMovie()}
	view := openTestView(t, catalog, 2*time.Millisecond, nil)
	assert.Eventually(t, func() bool {
		return view.Backdrop() != "b1.jpg"
	}, time.Second, time.Millisecond)
	view.Close()

	catalog.movie.Backdrops = []string{"new1.jpg", "new2.jpg"}
	require.NoError(t, view.Refresh(context.Background()))
	assert.Equal(t, "new1.jpg", view.Backdrop())
}

func TestCloseUnsubscribes(t *testing.T) {
	signal := &stubSignal{}
	view := openTestView(t, &stubCatalog{movie: testMovie()}, 0, signal)
	view.Close()
	assert.Equal(t, 1, signal.unsubscribed)
	view.Close()
	assert.Equal(t, 1, signal.unsubscribed)
}

func TestRefreshFailureKeepsLastKnownGood(t *testing.T) {
	catalog := &stubCatalog{movie: testMovie()}
	view := openTestView(t, catalog, 0, nil)

	catalog.getErr = context.DeadlineExceeded
	assert.Error(t, view.Refresh(context.Background()))
	assert.Equal(t, "The Shawshank Redemption", view.Movie().Title)
	assert.Equal(t, 2, view.ReviewCount())
}
