package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MoviePageSize   = 12
	MaxPageSize     = 100

	PageParam     = "page"
	PageSizeParam = "page_size"
	lastPage      = "last"
)

var ErrInvalidPage = errors.New("invalid page")

// Request is the page window asked for by a client, plus the URL used to
// build next/previous links.
type Request struct {
	RawPage string
	Size    int
	base    url.URL
}

// FromRequest reads page and page_size from r. A missing or malformed
// page_size falls back to defaultSize; sizes above MaxPageSize are capped.
func FromRequest(r *http.Request, defaultSize int) Request {
	q := r.URL.Query()
	size := defaultSize
	if raw := strings.TrimSpace(q.Get(PageSizeParam)); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	base := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}

	return Request{RawPage: strings.TrimSpace(q.Get(PageParam)), Size: size, base: base}
}

// Window is a resolved page over a counted collection.
type Window struct {
	Count      int64
	Page       int
	TotalPages int
	Size       int
}

func (w Window) Offset() int {
	return (w.Page - 1) * w.Size
}

// Resolve validates the requested page against count. An empty collection
// still has one page.
func (r Request) Resolve(count int64) (Window, error) {
	size := r.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	total := int((count + int64(size) - 1) / int64(size))
	if total < 1 {
		total = 1
	}

	page := 1
	switch r.RawPage {
	case "":
	case lastPage:
		page = total
	default:
		n, err := strconv.Atoi(r.RawPage)
		if err != nil || n < 1 || n > total {
			return Window{}, ErrInvalidPage
		}
		page = n
	}
	return Window{Count: count, Page: page, TotalPages: total, Size: size}, nil
}

// Paginate counts q, resolves the window, and loads that window into dest.
func Paginate(q *gorm.DB, r Request, dest any) (Window, error) {
	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return Window{}, fmt.Errorf("count: %w", err)
	}
	w, err := r.Resolve(count)
	if err != nil {
		return Window{}, err
	}
	if err := q.Limit(w.Size).Offset(w.Offset()).Find(dest).Error; err != nil {
		return Window{}, fmt.Errorf("find: %w", err)
	}
	return w, nil
}

// Page is the list envelope returned by every collection endpoint.
type Page[T any] struct {
	Count      int64   `json:"count"`
	Next       *string `json:"next"`
	Previous   *string `json:"previous"`
	TotalPages int     `json:"total_pages"`
	Results    []T     `json:"results"`
}

func NewPage[T any](r Request, w Window, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	p := Page[T]{Count: w.Count, TotalPages: w.TotalPages, Results: results}
	if w.Page < w.TotalPages {
		p.Next = r.link(w.Page + 1)
	}
	if w.Page > 1 {
		p.Previous = r.link(w.Page - 1)
	}
	return p
}

func (r Request) link(page int) *string {
	u := r.base
	q := u.Query()
	if page == 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
