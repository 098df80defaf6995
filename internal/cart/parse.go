package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fiveheart_storefront/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultTitle = "Untitled Course"
	DefaultBrand = "Unknown Brand"

	fallbackIDPrefix = "cart-item-"
)

var (
	ErrCorruptCart     = errors.New("stored cart is corrupt")
	ErrInvalidItem     = errors.New("cart entry is not an object")
	ErrIndexOutOfRange = errors.New("cart index out of range")
)

// Même tolérance que parseFloat côté navigateur : seul le préfixe numérique compte
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseItem convertit une entrée stockée, quelle que soit sa forme historique,
// en ligne canonique.
func ParseItem(raw json.RawMessage) (models.CartItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.CartItem{}, ErrInvalidItem
	}

	var nid models.FlexString
	if v, ok := fields["nid"]; ok {
		// un nid illisible (objet, tableau) retombe sur la clé vide
		_ = json.Unmarshal(v, &nid)
	}

	item := models.CartItem{
		NID:       string(nid),
		Title:     resolveTitle(fields["title"]),
		BrandName: resolveString(fields["field_brands_name"], DefaultBrand),
		ImageURL:  resolveImage(fields["field_course_image_url"]),
	}

	// price prime sur field_course_price dès que la clé existe, même à null
	if v, ok := fields["price"]; ok {
		item.Price = ParsePrice(v)
	} else if v, ok := fields["field_course_price"]; ok {
		item.Price = ParsePrice(v)
	}

	var id models.FlexString
	if v, ok := fields["id"]; ok {
		_ = json.Unmarshal(v, &id)
	}
	switch {
	case id != "":
		item.ID = string(id)
	case item.NID != "":
		item.ID = item.NID
	default:
		item.ID = fallbackIDPrefix + uuid.NewString()
	}

	return item, nil
}

// ParsePrice accepte une chaîne ou un nombre JSON. Tout ce qui n'est pas un
// nombre fini positif vaut 0.
func ParsePrice(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
	}
	return parseAmount(text)
}

func parseAmount(text string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func resolveTitle(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return DefaultTitle
	}

	switch raw[0] {
	case '{':
		var wrapped struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return DefaultTitle
		}
		return resolveTitle(wrapped.Value)
	case '[':
		// format champ Drupal : [{"value": "..."}]
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return DefaultTitle
		}
		return resolveTitle(list[0])
	}

	return resolveString(raw, DefaultTitle)
}

func resolveString(raw json.RawMessage, fallback string) string {
	var s models.FlexString
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return fallback
	}
	return string(s)
}

func resolveImage(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// Normalize décode le panier stocké et le ramène à une ligne par nid.
// Le dernier doublon fournit la valeur, la position reste celle de la première
// occurrence. Les données illisibles donnent un panier vide et ErrCorruptCart ;
// des entrées isolées invalides sont écartées, avec la même erreur.
func Normalize(data []byte) ([]models.CartItem, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.CartItem{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return []models.CartItem{}, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}

	items := make([]models.CartItem, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		item, err := ParseItem(entry)
		if err != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}

	items = collapse(items)
	if skipped > 0 {
		return items, fmt.Errorf("%w: %d entries skipped", ErrCorruptCart, skipped)
	}
	return items, nil
}

func collapse(items []models.CartItem) []models.CartItem {
	index := make(map[string]int, len(items))
	out := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.NID]; ok {
			out[i] = item
			continue
		}
		index[item.NID] = len(out)
		out = append(out, item)
	}
	return out
}

// Total additionne les prix ; il n'y a pas de quantité par ligne
func Total(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price
	}
	return total
}
