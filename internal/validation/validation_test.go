package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Email string  `json:"email" validate:"required,email"`
	Name  string  `json:"name" validate:"notblank"`
	Phone *string `json:"phone" validate:"omitempty,usphone"`
	State string  `json:"state" validate:"usstate"`
	Zip   string  `json:"zip_code" validate:"zip5"`
	Lines []line  `json:"lines" validate:"min=1,dive"`
}

type line struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

func str(s string) *string { return &s }

func validContact() contact {
	return contact{
		Email: "pink@floyd.com",
		Name:  "Pink",
		Phone: str("555-123-4567"),
		State: "NY",
		Zip:   "10001",
		Lines: []line{{Quantity: 1}},
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(validContact()))

	c := validContact()
	c.Phone = nil
	assert.NoError(t, Struct(c))
}

func TestStructReportsEveryFieldByJSONPath(t *testing.T) {
	c := contact{
		Email: "not-an-email",
		Name:  "   ",
		Phone: str("5551234567"),
		State: "ny",
		Zip:   "1234",
		Lines: []line{{Quantity: 2}, {Quantity: 0}},
	}

	err := Struct(c)

	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, FieldErrors{
		"email":             "must be a valid email address",
		"name":              "is required",
		"phone":             "must match DDD-DDD-DDDD",
		"state":             "must be a US state abbreviation",
		"zip_code":          "must be a 5-digit zip code",
		"lines[1].quantity": "must be greater than 0",
	}, fields)
	assert.Contains(t, err.Error(), "email: must be a valid email address")
}

func TestIsUSState(t *testing.T) {
	for _, code := range []string{"CA", "TX", "DC", "PR"} {
		assert.True(t, IsUSState(code), code)
	}
	for _, code := range []string{"", "XX", "ca", "CAL"} {
		assert.False(t, IsUSState(code), code)
	}
}
