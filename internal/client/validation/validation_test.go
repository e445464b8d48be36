package validation

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr.Fields
}

func TestLoginForm(t *testing.T) {
	require.NoError(t, Struct(LoginForm{Email: "ann@example.com", Password: "secret1"}))

	fields := fieldErrors(t, Struct(LoginForm{Email: "not-an-email", Password: "123"}))
	assert.Equal(t, map[string]string{
		"email":    "Please enter a valid email address",
		"password": "Password must be at least 6 characters",
	}, fields)
}

func TestRegisterForm(t *testing.T) {
	require.NoError(t, Struct(RegisterForm{Name: "Bo", Email: "bo@example.com", Password: "secret1"}))

	fields := fieldErrors(t, Struct(RegisterForm{Name: "B", Email: "bo@example.com", Password: "secret1"}))
	assert.Equal(t, "Name must be at least 2 characters", fields["name"])
	assert.Len(t, fields, 1)

	fields = fieldErrors(t, Struct(RegisterForm{}))
	assert.Equal(t, "Name is required", fields["name"])
	assert.Equal(t, "Email is required", fields["email"])
	assert.Equal(t, "Password is required", fields["password"])
}

func TestNewValidatorRegistersOTPRule(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })
	assert.NoError(t, v.Var("123456", "otp"))
	assert.Error(t, v.Var("12345", "otp"))
}

func TestOTPForm(t *testing.T) {
	require.NoError(t, Struct(OTPForm{Code: "123456"}))
	require.NoError(t, Struct(OTPForm{Code: "000000"}))

	for _, code := range []string{"12345", "1234567", "12a456", " 12345"} {
		fields := fieldErrors(t, Struct(OTPForm{Code: code}))
		assert.Equal(t, "Code must be exactly 6 digits", fields["otp"], code)
	}

	fields := fieldErrors(t, Struct(OTPForm{}))
	assert.Equal(t, "Code is required", fields["otp"])
}

func TestListingInput(t *testing.T) {
	ok := models.ListingInput{
		Title:       "Old laptop",
		Description: "Works, battery is weak",
		Category:    "Electronics",
		Condition:   "like new",
		Quantity:    1,
		Location:    "Riga",
		ContactInfo: "ann@example.com",
	}
	require.NoError(t, Struct(ok))

	bad := ok
	bad.Title = "TV"
	bad.Description = "short"
	bad.Condition = "broken"
	bad.Quantity = 0
	bad.ContactInfo = ""
	neg := -1.0
	bad.Price = &neg

	fields := fieldErrors(t, Struct(bad))
	assert.Equal(t, "Title must be at least 3 characters", fields["title"])
	assert.Equal(t, "Description must be at least 10 characters", fields["description"])
	assert.Equal(t, "Condition must be one of: new like new good fair poor", fields["condition"])
	assert.Equal(t, "Quantity must be at least 1", fields["quantity"])
	assert.Equal(t, "Contact info is required", fields["contactInfo"])
	assert.Equal(t, "Price must not be negative", fields["price"])
}

func TestTransactionInput(t *testing.T) {
	ok := models.TransactionInput{
		WasteType: "Batteries",
		Quantity:  2.5,
		Unit:      "kg",
		Date:      "2026-03-01",
		Location:  "Riga",
		Status:    "pending",
	}
	require.NoError(t, Struct(ok))

	bad := ok
	bad.Quantity = 0
	bad.Date = "01/03/2026"
	bad.Status = "done"

	fields := fieldErrors(t, Struct(bad))
	assert.Equal(t, "Quantity must be greater than 0", fields["quantity"])
	assert.Equal(t, "Date must be a date in YYYY-MM-DD format", fields["date"])
	assert.Equal(t, "Status must be one of: pending completed cancelled", fields["status"])
}

func TestReviewInput(t *testing.T) {
	ok := models.ReviewInput{Title: "Great", Rating: 5, Comment: "Smooth pickup, thanks"}
	require.NoError(t, Struct(ok))

	bad := ok
	bad.Rating = 6
	bad.Comment = "meh"
	fields := fieldErrors(t, Struct(bad))
	assert.Equal(t, "Rating cannot exceed 5", fields["rating"])
	assert.Equal(t, "Comment must be at least 10 characters", fields["comment"])

	bad = ok
	bad.Rating = 0
	fields = fieldErrors(t, Struct(bad))
	assert.Equal(t, "Rating must be at least 1", fields["rating"])
}

func TestPasswordChange(t *testing.T) {
	require.NoError(t, Struct(models.PasswordChange{CurrentPassword: "old123", NewPassword: "new123"}))

	fields := fieldErrors(t, Struct(models.PasswordChange{CurrentPassword: "same12", NewPassword: "same12"}))
	assert.Equal(t, "New password must differ from the current password", fields["newPassword"])
}

func TestProfileAndReset(t *testing.T) {
	require.NoError(t, Struct(models.ProfileInput{Name: "Ann", Email: "ann@example.com"}))
	require.Error(t, Struct(models.ProfileInput{Name: "A", Email: "ann@example.com"}))
	require.Error(t, Struct(ResetForm{Email: "nope"}))
}

func TestError_MessageIsSortedByField(t *testing.T) {
	err := &Error{Fields: map[string]string{"password": "B", "email": "A"}}
	assert.Equal(t, "A; B", err.Error())
	assert.Equal(t, "B", err.Field("password"))
	assert.Empty(t, err.Field("name"))
}

func TestStruct_NonStructIsInvalid(t *testing.T) {
	err := Struct(42)
	require.Error(t, err)
	var verr *Error
	assert.False(t, errors.As(err, &verr))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Contact info", humanize("ContactInfo"))
	assert.Equal(t, "Email", humanize("Email"))
	assert.Equal(t, "Current password", humanize("CurrentPassword"))
}
