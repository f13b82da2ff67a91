package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEmptyDataFile = errors.New("data file is empty")
	ErrNotArray      = errors.New("data file is not a JSON array")
	ErrBadRecord     = errors.New("malformed movie record")
)

//go:embed movies.json
var bundledMovies []byte

// FileSource reads a JSON array of movies. An empty Path means the data file
// bundled into the binary.
type FileSource struct {
	Path string
}

func BundledSource() FileSource { return FileSource{} }

func (s FileSource) Name() string {
	if s.Path == "" {
		return "bundled:movies.json"
	}
	return "file:" + s.Path
}

func (s FileSource) Movies(_ context.Context) ([]Movie, error) {
	data := bundledMovies
	if s.Path != "" {
		b, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return decodeMovies(data)
}

// movieRecord is the on-disk shape of a movie. Pointers tell a missing field
// apart from a zero value; every field must be present.
type movieRecord struct {
	ID          *int64   `json:"id" validate:"required"`
	Title       *string  `json:"movieName" validate:"required"`
	Director    *string  `json:"director" validate:"required"`
	Year        *int     `json:"year" validate:"required"`
	Genre       *string  `json:"genre" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Duration    *int     `json:"duration" validate:"required"`
	Rating      *float64 `json:"imdbRating" validate:"required"`
}

func (r *movieRecord) movie() Movie {
	return Movie{
		ID:          *r.ID,
		Title:       *r.Title,
		Director:    *r.Director,
		Year:        *r.Year,
		Genre:       *r.Genre,
		Description: *r.Description,
		Duration:    *r.Duration,
		Rating:      *r.Rating,
	}
}

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	return v
}

// decodeMovies parses a data file. Anything other than an array of complete
// records fails the whole file.
func decodeMovies(data []byte) ([]Movie, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDataFile
	}

	var records []*movieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("decode movies: %w", ErrNotArray)
	}

	movies := make([]Movie, 0, len(records))
	for i, r := range records {
		if err := checkRecord(r); err != nil {
			return nil, fmt.Errorf("decode movies: record %d: %w", i, err)
		}
		movies = append(movies, r.movie())
	}
	return movies, nil
}

func checkRecord(r *movieRecord) error {
	if r == nil {
		return fmt.Errorf("%w: null", ErrBadRecord)
	}

	err := recordValidator.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return fmt.Errorf("%w: missing %s", ErrBadRecord, strings.Join(missing, ", "))
}
