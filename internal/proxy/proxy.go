package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Proxy relaie les routes de lecture du CMS sans logique métier
type Proxy struct {
	base      *url.URL
	transport http.RoundTripper
	log       *zap.Logger
}

func New(baseURL string, transport http.RoundTripper, log *zap.Logger) (*Proxy, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid content API base URL %q", baseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Proxy{base: base, transport: transport, log: log}, nil
}

// Register déclare une route GET par règle
func (p *Proxy) Register(r gin.IRoutes) {
	for _, rule := range Rules {
		r.GET(rule.Source, p.Handler(rule))
	}
}

func (p *Proxy) Handler(rule Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, param := range c.Params {
			params[param.Key] = param.Value
		}

		target, err := rule.Rewrite(p.base, params, c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rp := &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.Out.URL = target
				pr.Out.Host = target.Host
				pr.SetXForwarded()
			},
			Transport: p.transport,
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				p.log.Error("❌ Erreur proxy contenu",
					zap.String("source", r.URL.Path), zap.String("target", target.String()), zap.Error(err))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"error":"content service unavailable"}`))
			},
		}
		rp.ServeHTTP(c.Writer, c.Request)
	}
}
