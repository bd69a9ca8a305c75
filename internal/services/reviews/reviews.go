package reviews

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/domain/models"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/lib/validator"

	govalidator "github.com/go-playground/validator/v10"
)

type Sort string

const (
	SortNewest       Sort = "newest"
	SortOldest       Sort = "oldest"
	SortHighestRated Sort = "highest-rated"
)

const DefaultPageSize = 5

type ReviewsProvider interface {
	ListReviews(ctx context.Context, imdbID string, sortBy string) ([]models.Review, error)
	CreateReview(ctx context.Context, body string, rating int, imdbID string) (*models.Review, error)
	UpdateReview(ctx context.Context, id string, body string, rating int, imdbID string) (*models.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// SessionReader is the slice of the session store the collection needs to
// gate edit/delete by ownership. Advisory only, the backend enforces.
type SessionReader interface {
	User() (models.User, bool)
}

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(prompt string) bool

// Collection owns the review list of exactly one movie: the fetched data,
// the display window, the sort key and the single in-progress edit.
type Collection struct {
	log      *slog.Logger
	provider ReviewsProvider
	session  SessionReader
	confirm  ConfirmFunc
	validate *govalidator.Validate
	imdbID   string
	pageSize int

	mu          sync.Mutex
	all         []models.Review
	windowSize  int
	sort        Sort
	loading     bool
	loadSeq     uint64
	editingID   string
	editRating  int
	editBody    string
	draftRating int
	draftBody   string

	subsMu  sync.Mutex
	subs    map[int]func()
	nextSub int
}

func New(
	log *slog.Logger,
	provider ReviewsProvider,
	sessionReader SessionReader,
	imdbID string,
	pageSize int,
	confirm ConfirmFunc,
) *Collection {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	v.RegisterValidation("notblank", validator.ValidateNotBlank)
	v.RegisterValidation("reviewsort", validator.ValidateReviewSort)
	return &Collection{
		log:      log,
		provider: provider,
		session:  sessionReader,
		confirm:  confirm,
		validate: v,
		imdbID:   imdbID,
		pageSize: pageSize,
		sort:     SortNewest,
		subs:     make(map[int]func()),
	}
}

type loadParams struct {
	SortBy string `json:"sortBy" validate:"required,reviewsort"`
}

// Load fetches the full review set for the collection's movie under the
// given sort key. The backend performs the sort; the result is taken as-is.
// Issuing a Load abandons any in-progress edit immediately and resets the
// display window to the first page. Overlapping Loads resolve
// last-issued-wins: a slower, older call's result is discarded on arrival.
func (c *Collection) Load(ctx context.Context, sortKey Sort) error {
	const op = "reviews.Collection.Load"
	log := c.log.With("op", op, "imdbId", c.imdbID, "sortBy", sortKey)

	if errs := validator.ValidateStruct(c.validate, loadParams{SortBy: string(sortKey)}); errs != nil {
		return &ValidationError{Fields: errs}
	}

	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.sort = sortKey
	c.loading = true
	c.clearEditLocked()
	c.mu.Unlock()

	fetched, err := c.provider.ListReviews(ctx, c.imdbID, string(sortKey))

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		// a newer load was issued while this one was in flight
		log.Debug("discarding stale load result", "seq", seq, "latest", c.loadSeq)
		return nil
	}
	c.loading = false
	if err != nil {
		log.Error("Error fetching reviews", "errMsg", err.Error())
		return err
	}
	c.all = fetched
	c.windowSize = min(c.pageSize, len(fetched))
	log.Debug("reviews loaded", "count", len(fetched))
	return nil
}

// Reload re-fetches under the current sort key.
func (c *Collection) Reload(ctx context.Context) error {
	c.mu.Lock()
	sortKey := c.sort
	c.mu.Unlock()
	return c.Load(ctx, sortKey)
}

// ShowMore grows the display window by one page. It never fetches; the
// full collection is already in memory. Once the window covers everything
// it is a no-op.
func (c *Collection) ShowMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.windowSize >= len(c.all) {
		return
	}
	c.windowSize = min(c.windowSize+c.pageSize, len(c.all))
}

// Visible returns the displayed prefix of the collection.
func (c *Collection) Visible() []models.Review {
	c.mu.Lock()
	defer c.mu.Unlock()
	visible := make([]models.Review, c.windowSize)
	copy(visible, c.all[:c.windowSize])
	return visible
}

func (c *Collection) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windowSize < len(c.all)
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.all)
}

func (c *Collection) Sort() Sort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// BeginEdit puts the targeted review into edit mode and seeds the edit
// draft from its current rating and body. Only the review's author may
// edit it; for anyone else the call is a silent no-op. Reports whether
// edit mode was entered.
func (c *Collection) BeginEdit(reviewID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := c.findLocked(reviewID)
	if target == nil || !c.ownsLocked(target) {
		return false
	}
	c.editingID = target.ID
	c.editRating = target.Rating
	c.editBody = target.Body
	return true
}

// Editing returns the id of the review in edit mode, if any.
func (c *Collection) Editing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID, c.editingID != ""
}

// EditDraft returns the in-progress edit fields.
func (c *Collection) EditDraft() (rating int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editRating, c.editBody
}

// UpdateEditDraft replaces the in-progress edit fields. No-op when
// nothing is being edited.
func (c *Collection) UpdateEditDraft(rating int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editingID == "" {
		return
	}
	c.editRating = rating
	c.editBody = body
}

type draftParams struct {
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
	Body   string `json:"body" validate:"notblank"`
}

// SaveEdit submits the edit draft for the review in edit mode. On success
// the edit is closed and the whole collection re-fetched: an edited rating
// can change the review's rank under the highest-rated sort, so patching
// in place would show a stale order. On failure the edit stays open so
// the user can retry or cancel.
func (c *Collection) SaveEdit(ctx context.Context) error {
	const op = "reviews.Collection.SaveEdit"

	c.mu.Lock()
	id := c.editingID
	rating := c.editRating
	body := c.editBody
	c.mu.Unlock()
	if id == "" {
		return ErrNoActiveEdit
	}
	log := c.log.With("op", op, "id", id)

	if errs := validator.ValidateStruct(c.validate, draftParams{Rating: rating, Body: body}); errs != nil {
		return &ValidationError{Fields: errs}
	}

	if _, err := c.provider.UpdateReview(ctx, id, body, rating, c.imdbID); err != nil {
		log.Error("Error updating review", "errMsg", err.Error())
		return err
	}

	c.mu.Lock()
	if c.editingID == id {
		c.clearEditLocked()
	}
	c.mu.Unlock()
	return c.Reload(ctx)
}

// CancelEdit closes edit mode and discards the edit draft. No network call.
func (c *Collection) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearEditLocked()
}

// Delete removes the targeted review after user confirmation. The same
// ownership gate as BeginEdit applies; a non-owner call is a silent no-op.
// On success the collection is re-fetched; on failure it is left unchanged.
func (c *Collection) Delete(ctx context.Context, reviewID string) error {
	const op = "reviews.Collection.Delete"
	log := c.log.With("op", op, "id", reviewID)

	c.mu.Lock()
	target := c.findLocked(reviewID)
	allowed := target != nil && c.ownsLocked(target)
	c.mu.Unlock()
	if !allowed {
		log.Warn("delete rejected by ownership check")
		return nil
	}
	if c.confirm != nil && !c.confirm("Delete this review?") {
		return nil
	}

	if err := c.provider.DeleteReview(ctx, reviewID); err != nil {
		log.Error("Error deleting review", "errMsg", err.Error())
		return err
	}
	return c.Reload(ctx)
}

// SetDraft stores the new-review form fields.
func (c *Collection) SetDraft(rating int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draftRating = rating
	c.draftBody = body
}

// Draft returns the new-review form fields.
func (c *Collection) Draft() (rating int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftRating, c.draftBody
}

// SubmitNew posts the new-review draft. A blank body or an out-of-range
// rating is rejected locally with a ValidationError before any request is
// issued. On success the draft is cleared, subscribers are notified that
// the review set changed, and the collection re-fetched so the new review
// shows up under the active sort.
func (c *Collection) SubmitNew(ctx context.Context) error {
	const op = "reviews.Collection.SubmitNew"
	log := c.log.With("op", op, "imdbId", c.imdbID)

	c.mu.Lock()
	rating := c.draftRating
	body := c.draftBody
	c.mu.Unlock()

	if errs := validator.ValidateStruct(c.validate, draftParams{Rating: rating, Body: body}); errs != nil {
		return &ValidationError{Fields: errs}
	}

	if _, err := c.provider.CreateReview(ctx, body, rating, c.imdbID); err != nil {
		log.Error("Error creating review", "errMsg", err.Error())
		return err
	}

	c.mu.Lock()
	c.draftRating = 0
	c.draftBody = ""
	c.mu.Unlock()

	c.notifyChanged()
	return c.Reload(ctx)
}

// Subscribe registers a callback fired after the review set changed on the
// backend (a new review was posted). The returned func unsubscribes; it is
// safe to call more than once.
func (c *Collection) Subscribe(fn func()) (unsubscribe func()) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Collection) notifyChanged() {
	c.subsMu.Lock()
	subs := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (c *Collection) findLocked(reviewID string) *models.Review {
	for i := range c.all {
		if c.all[i].ID == reviewID {
			return &c.all[i]
		}
	}
	return nil
}

func (c *Collection) ownsLocked(review *models.Review) bool {
	user, ok := c.session.User()
	return ok && user.Email == review.User.Email
}

func (c *Collection) clearEditLocked() {
	c.editingID = ""
	c.editRating = 0
	c.editBody = ""
}
