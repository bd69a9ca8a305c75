package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"log/slog"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/clients/catalog/rest"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/config"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/domain/models"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/services/movies"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/services/reviews"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/services/session"

	"github.com/fatih/color"
)

type Application struct {
	cfg     *config.Config
	log     *slog.Logger
	Session *session.Store
	movies  *movies.MovieService
	backend *rest.Client
	in      *bufio.Reader
}

func NewApplication(cfg *config.Config, log *slog.Logger, store *session.Store, backend *rest.Client) *Application {
	return &Application{
		cfg:     cfg,
		log:     log,
		Session: store,
		movies:  movies.New(log, backend, store),
		backend: backend,
		in:      bufio.NewReader(os.Stdin),
	}
}

func (app *Application) run() error {
	color.Cyan("Movie Review client v%s (type 'help')", version)
	for {
		fmt.Print("> ")
		line, err := app.in.ReadString('\n')
		if err != nil {
			return nil // stdin closed
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()
		switch args[0] {
		case "help":
			app.printHelp()
		case "movies":
			app.listMovies(ctx)
		case "movie":
			if len(args) < 2 {
				color.Red("usage: movie <imdbId>")
				continue
			}
			app.movieDetail(ctx, args[1])
		case "add-movie":
			app.addMovie(ctx)
		case "login":
			app.login(ctx)
		case "register":
			app.register(ctx)
		case "logout":
			if err := app.Session.Logout(ctx); err != nil {
				color.Red(err.Error())
			}
		case "whoami":
			if user, ok := app.Session.User(); ok {
				fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
			} else {
				fmt.Println("not logged in")
			}
		case "quit", "exit":
			return nil
		default:
			color.Red("unknown command %q", args[0])
		}
	}
}

func (app *Application) printHelp() {
	fmt.Println(`commands:
  movies              list the catalog
  movie <imdbId>      open a movie (reviews, trailer, platforms)
  add-movie           add a catalog entry (admin/developer)
  login | register | logout | whoami
  quit`)
}

func (app *Application) listMovies(ctx context.Context) {
	all, err := app.movies.List(ctx)
	if err != nil {
		color.Red(err.Error())
		return
	}
	for _, m := range all {
		fmt.Printf("%-12s %s (%s)\n", m.ImdbID, m.Title, m.ReleaseDate)
	}
}

// movieDetail runs the per-movie sub-loop: the review collection and the
// detail view live exactly as long as the user stays on this screen.
func (app *Application) movieDetail(ctx context.Context, imdbID string) {
	collection := reviews.New(app.log, app.backend, app.Session, imdbID, app.cfg.Reviews.PageSize, app.confirmPrompt)
	view, err := movies.OpenDetailView(ctx, app.log, app.movies, imdbID, app.cfg.Movies.BackdropRotation, collection)
	if err != nil {
		color.Red(err.Error())
		return
	}
	defer view.Close()
	if err := collection.Load(ctx, reviews.SortNewest); err != nil {
		color.Red(err.Error())
	}
	app.printMovie(view.Movie())
	app.printReviews(collection)

	for {
		fmt.Printf("[%s] ", imdbID)
		line, err := app.in.ReadString('\n')
		if err != nil {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "back":
			return
		case "more":
			collection.ShowMore()
			app.printReviews(collection)
		case "sort":
			if len(args) < 2 {
				color.Red("usage: sort newest|oldest|highest-rated")
				continue
			}
			if err := collection.Load(ctx, reviews.Sort(args[1])); err != nil {
				color.Red(err.Error())
				continue
			}
			app.printReviews(collection)
		case "review":
			if len(args) < 3 {
				color.Red("usage: review <rating 1-5> <text>")
				continue
			}
			rating, _ := strconv.Atoi(args[1])
			collection.SetDraft(rating, strings.Join(args[2:], " "))
			if err := collection.SubmitNew(ctx); err != nil {
				color.Red(err.Error())
				continue
			}
			fmt.Printf("%d reviews now\n", view.ReviewCount())
			app.printReviews(collection)
		case "edit":
			if len(args) < 2 {
				color.Red("usage: edit <reviewId>")
				continue
			}
			app.editReview(ctx, collection, args[1])
		case "delete":
			if len(args) < 2 {
				color.Red("usage: delete <reviewId>")
				continue
			}
			if err := collection.Delete(ctx, args[1]); err != nil {
				color.Red(err.Error())
				continue
			}
			app.printReviews(collection)
		default:
			fmt.Println("movie commands: more, sort, review, edit, delete, back")
		}
	}
}

func (app *Application) editReview(ctx context.Context, collection *reviews.Collection, reviewID string) {
	if !collection.BeginEdit(reviewID) {
		color.Red("you can only edit your own reviews")
		return
	}
	rating, body := collection.EditDraft()
	fmt.Printf("editing %s (rating %d): %s\n", reviewID, rating, body)
	newRating := app.promptInt("new rating (1-5): ")
	newBody := app.prompt("new text: ")
	collection.UpdateEditDraft(newRating, newBody)
	if err := collection.SaveEdit(ctx); err != nil {
		color.Red(err.Error())
		collection.CancelEdit()
		return
	}
	app.printReviews(collection)
}

func (app *Application) login(ctx context.Context) {
	email := app.prompt("email: ")
	password := app.prompt("password: ")
	sess, err := app.Session.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			color.Red("invalid email or password")
		} else {
			color.Red(err.Error())
		}
		return
	}
	color.Green("welcome back, %s", sess.User.Name)
}

func (app *Application) register(ctx context.Context) {
	email := app.prompt("email: ")
	name := app.prompt("name: ")
	password := app.prompt("password: ")
	sess, err := app.Session.Register(ctx, email, name, password)
	if err != nil {
		color.Red(err.Error())
		return
	}
	color.Green("welcome, %s", sess.User.Name)
}

func (app *Application) addMovie(ctx context.Context) {
	movie := &models.Movie{
		ImdbID:      app.prompt("imdb id: "),
		Title:       app.prompt("title: "),
		ReleaseDate: app.prompt("release date: "),
		TrailerLink: app.prompt("trailer link: "),
		Poster:      app.prompt("poster url: "),
	}
	if genres := app.prompt("genres (comma separated): "); genres != "" {
		movie.Genres = strings.Split(genres, ",")
	}
	created, err := app.movies.Create(ctx, movie)
	if err != nil {
		color.Red(err.Error())
		return
	}
	color.Green("added %s", created.Title)
}

func (app *Application) printMovie(m *models.Movie) {
	color.Cyan("%s (%s)", m.Title, m.ReleaseDate)
	if len(m.Genres) > 0 {
		fmt.Println(strings.Join(m.Genres, ", "))
	}
	if m.TrailerLink != "" {
		fmt.Println("trailer:", m.TrailerLink)
	}
	for _, p := range m.OTTPlatforms {
		fmt.Printf("watch on %s: %s\n", p.Name, p.Link)
	}
}

func (app *Application) printReviews(c *reviews.Collection) {
	fmt.Printf("%d reviews (%s)\n", c.Len(), c.Sort())
	for _, r := range c.Visible() {
		stars := strings.Repeat("*", r.Rating)
		fmt.Printf("  [%s] %-5s %s: %s\n", r.ID, stars, r.User.Name, r.Body)
	}
	if c.HasMore() {
		fmt.Println("  (type 'more' to show more)")
	}
}

func (app *Application) prompt(label string) string {
	fmt.Print(label)
	line, err := app.in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (app *Application) promptInt(label string) int {
	n, _ := strconv.Atoi(app.prompt(label))
	return n
}

func (app *Application) confirmPrompt(prompt string) bool {
	answer := app.prompt(prompt + " [y/N] ")
	return strings.EqualFold(answer, "y")
}
