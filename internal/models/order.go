package models

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// Valid indique si le moyen de paiement fait partie de ceux proposés au checkout
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer:
		return true
	}
	return false
}

type PurchasedCourse struct {
	CourseID string  `json:"course_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
}

// Order n'est jamais persistée : elle est construite puis envoyée au logging upstream
type Order struct {
	Title            string            `json:"title"`
	BillingName      string            `json:"billing_name"`
	UserEmail        string            `json:"user_email"`
	ShippingAddress  string            `json:"shipping_address"`
	PaymentMethod    PaymentMethod     `json:"payment_method"`
	PaymentDetails   string            `json:"payment_details"`
	TotalAmount      float64           `json:"total_amount"`
	PurchasedCourses []PurchasedCourse `json:"purchased_courses"`
}
