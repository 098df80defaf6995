package proxy

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	formatParam = "_format"
	formatJSON  = "json"
)

// Rule associe un chemin local (syntaxe :param de gin) à un chemin du CMS
type Rule struct {
	Source      string
	Destination string
}

// Rules est la table de réécriture vers l'API de contenu
var Rules = []Rule{
	// Courses
	{Source: "/api/courses", Destination: "/api/courses"},
	{Source: "/api/course-search-detail/:id", Destination: "/api/course-search-detail/:id"},
	{Source: "/api/course-search/:brand", Destination: "/api/course-search/:brand"},

	// News
	{Source: "/api/news/:siteUrl", Destination: "/api/news/:siteUrl"},

	// Paragraphs
	{Source: "/api/paragraph/:id", Destination: "/paragraph-api/:id"},

	// Menus
	{Source: "/api/menu/:slug", Destination: "/api/menu_items/:slug"},

	// Partners
	{Source: "/api/partners", Destination: "/api/partners"},
}

// Rewrite calcule l'URL upstream. La query entrante est conservée et
// _format=json est toujours imposé.
func (r Rule) Rewrite(base *url.URL, params map[string]string, query url.Values) (*url.URL, error) {
	segments := strings.Split(strings.TrimPrefix(r.Destination, "/"), "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		value, ok := params[seg[1:]]
		if !ok || value == "" || value == "." || value == ".." {
			return nil, fmt.Errorf("missing path parameter %q for %s", seg[1:], r.Source)
		}
		segments[i] = url.PathEscape(value)
	}

	root := *base
	if root.Path == "" {
		root.Path = "/"
	}
	target := root.JoinPath(segments...)

	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set(formatParam, formatJSON)
	target.RawQuery = q.Encode()
	return target, nil
}
