package signup

import (
	"context"
	"regexp"
	"time"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/wizard"
)

// Step identifiers.
const (
	StepAccount  = "account"
	StepShipping = "shipping"
	StepPayment  = "payment"
	StepReview   = "review"
)

// Field names. They double as the JSON keys of the API error response.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldZipCode         = "zipCode"
	FieldPrefecture      = "prefecture"
	FieldCity            = "city"
	FieldAddress         = "address"
	FieldBuilding        = "building"
	FieldPhone           = "phone"
	FieldCardNumber      = "cardNumber"
	FieldExpiryDate      = "expiryDate"
	FieldCVV             = "cvv"
	FieldCardName        = "cardName"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipCodePattern    = regexp.MustCompile(`^\d{3}-?\d{4}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{4}\s?\d{4}\s?\d{4}\s?\d{4}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// Steps returns the signup form: account, shipping, payment and a review
// page without fields where the application is submitted.
func Steps() []wizard.Step {
	return []wizard.Step{
		{
			ID:     StepAccount,
			Title:  "Account",
			Fields: []string{FieldEmail, FieldPassword, FieldConfirmPassword},
			Rules: []wizard.Rule{
				wizard.Required(FieldEmail, "Please enter your email address"),
				wizard.Matches(FieldEmail, emailPattern, "Please enter a valid email address"),
				wizard.Required(FieldPassword, "Please enter a password"),
				wizard.MinLength(FieldPassword, MinPasswordLength, "Password must be at least 8 characters"),
				wizard.Required(FieldConfirmPassword, "Please confirm your password"),
				wizard.EqualsField(FieldConfirmPassword, FieldPassword, "Passwords do not match"),
			},
		},
		{
			ID:    StepShipping,
			Title: "Shipping",
			Fields: []string{
				FieldLastName, FieldFirstName, FieldZipCode, FieldPrefecture,
				FieldCity, FieldAddress, FieldBuilding, FieldPhone,
			},
			Rules: []wizard.Rule{
				wizard.Required(FieldLastName, "Please enter your last name"),
				wizard.Required(FieldFirstName, "Please enter your first name"),
				wizard.Required(FieldZipCode, "Please enter your postal code"),
				wizard.Matches(FieldZipCode, zipCodePattern, "Postal code must look like 123-4567"),
				wizard.Required(FieldPrefecture, "Please choose a prefecture"),
				wizard.Required(FieldCity, "Please enter your city"),
				wizard.Required(FieldAddress, "Please enter your street address"),
				wizard.Required(FieldPhone, "Please enter your phone number"),
			},
		},
		{
			ID:     StepPayment,
			Title:  "Payment",
			Fields: []string{FieldCardNumber, FieldExpiryDate, FieldCVV, FieldCardName},
			Rules: []wizard.Rule{
				wizard.Required(FieldCardNumber, "Please enter your card number"),
				wizard.Matches(FieldCardNumber, cardNumberPattern, "Card number must be 16 digits"),
				wizard.Required(FieldExpiryDate, "Please enter the expiry date"),
				wizard.Matches(FieldExpiryDate, expiryPattern, "Expiry date must be MM/YY"),
				wizard.Required(FieldCVV, "Please enter the security code"),
				wizard.Matches(FieldCVV, cvvPattern, "Security code must be 3 or 4 digits"),
				wizard.Required(FieldCardName, "Please enter the name on the card"),
			},
		},
		{
			ID:    StepReview,
			Title: "Review",
		},
	}
}

// Validate runs every step's rules over values and merges the results.
func Validate(values wizard.Values) wizard.Errors {
	errs := make(wizard.Errors)
	for _, step := range Steps() {
		for f, msg := range step.Validate(values) {
			errs[f] = msg
		}
	}
	return errs
}

// Submitter delivers a completed application.
type Submitter interface {
	Submit(ctx context.Context, app *Application) (*Confirmation, error)
}

// Form is the signup wizard for one plan.
type Form struct {
	*wizard.Engine
	Plan catalog.Plan
}

// NewForm creates a signup form for plan. The submitter receives the
// application built from the form values when Submit is called on the
// review step.
func NewForm(plan catalog.Plan, s Submitter, timeout time.Duration) *Form {
	f := &Form{Plan: plan}
	f.Engine = wizard.MustNew(wizard.Config{
		Name:    "signup",
		Steps:   Steps(),
		Timeout: timeout,
		Submitter: wizard.SubmitterFunc(func(ctx context.Context, values wizard.Values) (*wizard.Receipt, error) {
			conf, err := s.Submit(ctx, NewApplication(plan.ID, values))
			if err != nil {
				return nil, err
			}
			return conf.Receipt(), nil
		}),
	})
	return f
}
