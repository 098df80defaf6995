package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fiveheart_storefront/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseJSON = `{"search_results":[{"nid":"12","title":"AWS Solutions Architect","field_course_price":"1200.00","field_brands_name":"AWS","field_course_image_url":"/files/aws.png","field_star_rating":4.5}]}`

func TestCourseDetail_FirstSearchResult(t *testing.T) {
	var path, query string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(courseJSON))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL+"/", ts.Client(), nil)
	require.NoError(t, err)

	course, err := c.CourseDetail(context.Background(), "12")
	require.NoError(t, err)

	assert.Equal(t, "/api/course-search-detail/12", path)
	assert.Equal(t, "_format=json", query)
	assert.EqualValues(t, "12", course.NID)
	assert.Equal(t, "AWS Solutions Architect", course.Title)
	assert.EqualValues(t, "1200.00", course.Price)
	assert.EqualValues(t, "4.5", course.StarRating)
}

func TestCourseDetail_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/course-search-detail/404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"search_results":[]}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, ts.Client(), nil)
	require.NoError(t, err)

	_, err = c.CourseDetail(context.Background(), "1")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	_, err = c.CourseDetail(context.Background(), "404")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	_, err = c.CourseDetail(context.Background(), " ")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseDetail_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, ts.Client(), nil)
	require.NoError(t, err)

	_, err = c.CourseDetail(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseDetail_UsesCache(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(courseJSON))
	}))
	defer ts.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	c, err := NewClient(ts.URL, ts.Client(), nil)
	require.NoError(t, err)
	c.WithCache(cache.NewRedisCache(rdb, ""), time.Minute)

	for i := 0; i < 3; i++ {
		course, err := c.CourseDetail(context.Background(), "12")
		require.NoError(t, err)
		assert.Equal(t, "AWS Solutions Architect", course.Title)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.True(t, mr.Exists("course:12"))
}

func TestNewClient_RejectsRelativeBase(t *testing.T) {
	_, err := NewClient("/api", nil, nil)
	assert.Error(t, err)
}
