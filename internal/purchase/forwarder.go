package purchase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fiveheart_storefront/internal/models"

	"go.uber.org/zap"
)

const DefaultUpstreamURL = "http://dev-fiveheart.pantheonsite.io/api/log-purchase?_format=json"

// body d'erreur upstream recopié dans le message, tronqué
const maxErrorBody = 2048

// Forwarder relaie les commandes vers l'endpoint de logging du CMS.
// Une erreur réseau et un refus upstream remontent de la même façon.
type Forwarder struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewForwarder(upstreamURL string, client *http.Client, log *zap.Logger) *Forwarder {
	if upstreamURL == "" {
		upstreamURL = DefaultUpstreamURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Forwarder{url: upstreamURL, client: client, log: log}
}

// Forward envoie le JSON tel quel, avec le cookie de session de l'appelant
func (f *Forwarder) Forward(ctx context.Context, payload []byte, cookie string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build purchase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	f.log.Debug("🔄 Logging de la commande upstream", zap.String("url", f.url), zap.Int("bytes", len(payload)))

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to log purchase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("failed to log purchase: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Send fait du Forwarder l'émetteur de commandes du checkout
func (f *Forwarder) Send(ctx context.Context, order models.Order, cookie string) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	return f.Forward(ctx, payload, cookie)
}
