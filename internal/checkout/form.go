package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"fiveheart_storefront/internal/models"
)

type Field string

const (
	FieldName           Field = "name"
	FieldEmail          Field = "email"
	FieldAddress        Field = "address"
	FieldPaymentMethod  Field = "paymentMethod"
	FieldPaymentDetails Field = "paymentDetails"
)

// FieldErrors associe un message à chaque champ invalide du formulaire
type FieldErrors map[Field]string

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

type Form struct {
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Address        string               `json:"address"`
	PaymentMethod  models.PaymentMethod `json:"paymentMethod"`
	PaymentDetails string               `json:"paymentDetails"`
}

// Validate évalue toutes les règles, sans s'arrêter à la première erreur
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = "Full name is required."
	}
	if email := strings.TrimSpace(f.Email); email == "" || !emailPattern.MatchString(email) {
		errs[FieldEmail] = "Valid email is required."
	}
	if strings.TrimSpace(f.Address) == "" {
		errs[FieldAddress] = "Shipping address is required."
	}
	if !f.PaymentMethod.Valid() {
		errs[FieldPaymentMethod] = "Please select a payment method."
	}
	if strings.TrimSpace(f.PaymentDetails) == "" {
		errs[FieldPaymentDetails] = "Payment details are required."
	}
	return errs
}

func (f *Form) Set(field Field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldAddress:
		f.Address = value
	case FieldPaymentMethod:
		f.PaymentMethod = models.PaymentMethod(value)
	case FieldPaymentDetails:
		f.PaymentDetails = value
	default:
		return fmt.Errorf("unknown checkout field %q", field)
	}
	return nil
}

// BuildOrder fige le contenu du panier au moment de la soumission
func BuildOrder(f Form, items []models.CartItem) models.Order {
	name := strings.TrimSpace(f.Name)
	order := models.Order{
		Title:            "Order by " + name,
		BillingName:      name,
		UserEmail:        strings.TrimSpace(f.Email),
		ShippingAddress:  strings.TrimSpace(f.Address),
		PaymentMethod:    f.PaymentMethod,
		PaymentDetails:   strings.TrimSpace(f.PaymentDetails),
		PurchasedCourses: make([]models.PurchasedCourse, 0, len(items)),
	}
	for _, item := range items {
		order.TotalAmount += item.Price
		order.PurchasedCourses = append(order.PurchasedCourses, models.PurchasedCourse{
			CourseID: item.NID,
			Title:    item.Title,
			Price:    item.Price,
		})
	}
	return order
}
