package models

// CartItem est la ligne canonique d'un panier : une seule par nid
type CartItem struct {
	ID        string  `json:"id"`
	NID       string  `json:"nid"`
	Title     string  `json:"title"`
	BrandName string  `json:"field_brands_name"`
	ImageURL  *string `json:"field_course_image_url"`
	Price     float64 `json:"price"`
}

type CartView struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}
