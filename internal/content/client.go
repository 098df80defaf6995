package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fiveheart_storefront/internal/models"

	"go.uber.org/zap"
)

const CourseCacheTTL = 10 * time.Minute

var ErrCourseNotFound = errors.New("course not found")

// Cache est satisfait par cache.RedisCache
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Client lit les fiches cours exposées par le CMS
type Client struct {
	base  *url.URL
	http  *http.Client
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid content API base URL %q", baseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: base, http: httpClient, log: log, ttl: CourseCacheTTL}, nil
}

func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	c.cache = cache
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// CourseDetail renvoie le premier résultat de course-search-detail pour ce nid
func (c *Client) CourseDetail(ctx context.Context, nid string) (models.Course, error) {
	nid = strings.TrimSpace(nid)
	if nid == "" {
		return models.Course{}, ErrCourseNotFound
	}

	key := "course:" + nid
	if c.cache != nil {
		var cached models.Course
		if hit, err := c.cache.Get(ctx, key, &cached); err != nil {
			c.log.Warn("⚠️ Lecture cache cours impossible", zap.String("nid", nid), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	course, err := c.fetchCourse(ctx, nid)
	if err != nil {
		return models.Course{}, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, course, c.ttl); err != nil {
			c.log.Warn("⚠️ Mise en cache cours impossible", zap.String("nid", nid), zap.Error(err))
		}
	}
	return course, nil
}

func (c *Client) fetchCourse(ctx context.Context, nid string) (models.Course, error) {
	u := c.base.JoinPath("api", "course-search-detail", url.PathEscape(nid))
	u.RawQuery = url.Values{"_format": {"json"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Course{}, fmt.Errorf("build course request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("🔄 Récupération du cours", zap.String("url", u.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Course{}, fmt.Errorf("fetch course %s: %w", nid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Course{}, ErrCourseNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.Course{}, fmt.Errorf("fetch course %s: upstream status %d", nid, resp.StatusCode)
	}

	var payload models.CourseSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Course{}, fmt.Errorf("decode course %s: %w", nid, err)
	}
	if len(payload.SearchResults) == 0 {
		return models.Course{}, ErrCourseNotFound
	}
	return payload.SearchResults[0], nil
}
