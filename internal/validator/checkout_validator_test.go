package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validInput() CustomerInput {
	return CustomerInput{
		Name:       "山田 太郎",
		Email:      "taro@example.com",
		Address:    "1-2-3 Chiyoda",
		City:       "Tokyo",
		PostalCode: "100-0001",
		Country:    "JP",
	}
}

func TestValidateCustomer_OK(t *testing.T) {
	field, ok := ValidateCustomer(validInput())
	assert.True(t, ok)
	assert.Equal(t, "", field)
}

func TestValidateCustomer_ReportsFirstBadField(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(in *CustomerInput)
		wantField string
	}{
		{"empty name", func(in *CustomerInput) { in.Name = "   " }, "name"},
		{"bad email", func(in *CustomerInput) { in.Email = "taro@nodot" }, "email"},
		{"email with space", func(in *CustomerInput) { in.Email = "ta ro@example.com" }, "email"},
		{"short address", func(in *CustomerInput) { in.Address = "abc" }, "address"},
		{"empty city", func(in *CustomerInput) { in.City = "" }, "city"},
		{"short postal", func(in *CustomerInput) { in.PostalCode = "12" }, "postal_code"},
		{"empty country", func(in *CustomerInput) { in.Country = " " }, "country"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			field, ok := ValidateCustomer(in)
			assert.False(t, ok)
			assert.Equal(t, tc.wantField, field)
		})
	}
}
