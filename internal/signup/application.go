package signup

import (
	"fmt"
	"strings"

	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/wizard"
	"go.uber.org/zap"
)

// Application is a signup as sent to the server.
type Application struct {
	PlanID   string   `json:"plan"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Shipping Shipping `json:"shipping"`
	Payment  Payment  `json:"payment"`
}

// Shipping is the delivery address.
type Shipping struct {
	LastName   string `json:"lastName"`
	FirstName  string `json:"firstName"`
	ZipCode    string `json:"zipCode"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Address    string `json:"address"`
	Building   string `json:"building,omitempty"`
	Phone      string `json:"phone"`
}

// Payment holds the card details.
type Payment struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	CardName   string `json:"cardName"`
}

// Confirmation is returned for an accepted application.
type Confirmation struct {
	ID      string `json:"id"`
	PlanID  string `json:"plan"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Receipt converts the confirmation for the wizard engine.
func (c *Confirmation) Receipt() *wizard.Receipt {
	return &wizard.Receipt{
		ID:      c.ID,
		Message: c.Message,
		Data: map[string]string{
			"plan":  c.PlanID,
			"email": c.Email,
		},
	}
}

// NewApplication builds an application from form values. Values are
// trimmed; the confirmation password is dropped.
func NewApplication(planID string, values wizard.Values) *Application {
	v := func(field string) string { return strings.TrimSpace(values[field]) }
	return &Application{
		PlanID:   planID,
		Email:    v(FieldEmail),
		Password: values[FieldPassword],
		Shipping: Shipping{
			LastName:   v(FieldLastName),
			FirstName:  v(FieldFirstName),
			ZipCode:    v(FieldZipCode),
			Prefecture: v(FieldPrefecture),
			City:       v(FieldCity),
			Address:    v(FieldAddress),
			Building:   v(FieldBuilding),
			Phone:      v(FieldPhone),
		},
		Payment: Payment{
			CardNumber: v(FieldCardNumber),
			ExpiryDate: v(FieldExpiryDate),
			CVV:        v(FieldCVV),
			CardName:   v(FieldCardName),
		},
	}
}

// Values flattens the application back into form values so it can be
// validated with the form rules. The confirmation field mirrors the
// password.
func (a *Application) Values() wizard.Values {
	return wizard.Values{
		FieldEmail:           a.Email,
		FieldPassword:        a.Password,
		FieldConfirmPassword: a.Password,
		FieldLastName:        a.Shipping.LastName,
		FieldFirstName:       a.Shipping.FirstName,
		FieldZipCode:         a.Shipping.ZipCode,
		FieldPrefecture:      a.Shipping.Prefecture,
		FieldCity:            a.Shipping.City,
		FieldAddress:         a.Shipping.Address,
		FieldBuilding:        a.Shipping.Building,
		FieldPhone:           a.Shipping.Phone,
		FieldCardNumber:      a.Payment.CardNumber,
		FieldExpiryDate:      a.Payment.ExpiryDate,
		FieldCVV:             a.Payment.CVV,
		FieldCardName:        a.Payment.CardName,
	}
}

// String describes the application without secrets.
func (a *Application) String() string {
	return fmt.Sprintf("Application{plan=%s email=%s card=%s}",
		a.PlanID, logging.MaskEmail(a.Email), logging.MaskCardNumber(a.Payment.CardNumber))
}

// LogFields returns zap fields safe to log. The password and CVV are
// never included.
func (a *Application) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("plan", a.PlanID),
		zap.String("email", logging.MaskEmail(a.Email)),
		zap.String("prefecture", a.Shipping.Prefecture),
		zap.String("card", logging.MaskCardNumber(a.Payment.CardNumber)),
	}
}
