package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString accepte une chaîne, un nombre ou null côté JSON (Drupal n'est pas constant sur les nid)
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("valeur non textuelle: %s", data)
	}
	if _, err := strconv.ParseFloat(num.String(), 64); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

type Course struct {
	NID         FlexString `json:"nid"`
	Title       string     `json:"title"`
	Price       FlexString `json:"field_course_price"`
	BrandName   string     `json:"field_brands_name,omitempty"`
	BrandLogo   string     `json:"field_brand_logo,omitempty"`
	ImageURL    string     `json:"field_course_image_url,omitempty"`
	Category    string     `json:"field_course_category,omitempty"`
	Level       string     `json:"field_course_level,omitempty"`
	Duration    string     `json:"field_duration,omitempty"`
	StarRating  FlexString `json:"field_star_rating,omitempty"`
	Reviews     FlexString `json:"field_course_reviews,omitempty"`
	Description string     `json:"field_course_description,omitempty"`
}

type CourseSearchResponse struct {
	SearchResults []Course `json:"search_results"`
}
