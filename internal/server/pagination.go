package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const pageSize = 10

var errInvalidPage = errors.New("invalid page")

// Page is a page-number paginated list response
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// paginate loads one page of query into models of type M and converts each
// row with render. The next/previous links are absolute.
func paginate[M any, R any](c *gin.Context, query *gorm.DB, render func(*M) R, preloads ...string) (*Page[R], error) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, errInvalidPage
		}
		page = n
	}

	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	offset := (page - 1) * pageSize
	if page > 1 && int64(offset) >= count {
		return nil, errInvalidPage
	}

	find := query.Session(&gorm.Session{})
	for _, preload := range preloads {
		find = find.Preload(preload)
	}
	var rows []M
	if err := find.Offset(offset).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	results := make([]R, len(rows))
	for i := range rows {
		results[i] = render(&rows[i])
	}

	out := &Page[R]{Count: count, Results: results}
	if int64(offset+pageSize) < count {
		link := pageLink(c, page+1)
		out.Next = &link
	}
	if page > 1 {
		link := pageLink(c, page-1)
		out.Previous = &link
	}
	return out, nil
}

// pageLink builds the absolute URL of the given page of the current request.
// Page one is addressed without a page parameter.
func pageLink(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
