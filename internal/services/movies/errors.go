package movies

import "errors"

var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieAlreadyExists = errors.New("movie with that imdb id already exists")
	ErrNotPermitted       = errors.New("only admins and developers can add movies")
)
