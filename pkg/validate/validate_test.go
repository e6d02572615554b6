package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sdscatalog/pkg/validate"
)

type itemInput struct {
	SdsID    uint    `json:"sds_id"   validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type checkoutInput struct {
	ProductName       string      `json:"product_name"       validate:"required,max=20"`
	CertificationDate string      `json:"certification_date" validate:"required,date"`
	Sensitivity       string      `json:"sensitivity"        validate:"required,in=public confidential"`
	Website           string      `json:"website"            validate:"nullable,url"`
	Items             []itemInput `json:"items"              validate:"required,min=1,max=3,dive"`
}

func valid() checkoutInput {
	return checkoutInput{
		ProductName:       "Solvent Kit",
		CertificationDate: "2023-04-04",
		Sensitivity:       "public",
		Items:             []itemInput{{SdsID: 1, Quantity: 10}},
	}
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(valid())
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(checkoutInput{})
	assert.Contains(t, errs, "product_name")
	assert.Contains(t, errs, "certification_date")
	assert.Contains(t, errs, "sensitivity")
	assert.Contains(t, errs, "items")
	assert.NotContains(t, errs, "website", "nullable skips empty fields")
}

func TestPointerInput(t *testing.T) {
	in := valid()
	assert.Empty(t, validate.Struct(&in))

	var nilIn *checkoutInput
	assert.Empty(t, validate.Struct(nilIn))
}

func TestInRule(t *testing.T) {
	in := valid()
	in.Sensitivity = "secret"
	errs := validate.Struct(in)
	assert.Equal(t, "The selected sensitivity is invalid.", errs["sensitivity"])

	in.Sensitivity = "confidential"
	assert.Empty(t, validate.Struct(in))
}

func TestDateRule(t *testing.T) {
	for _, tc := range []struct {
		value string
		ok    bool
	}{
		{"2023-04-04", true},
		{"2023-04-04T10:00:00Z", true},
		{"04/04/2023", false},
		{"yesterday", false},
	} {
		in := valid()
		in.CertificationDate = tc.value
		errs := validate.Struct(in)
		if tc.ok {
			assert.NotContains(t, errs, "certification_date", tc.value)
		} else {
			assert.Contains(t, errs, "certification_date", tc.value)
		}
	}
}

func TestStringLength(t *testing.T) {
	in := valid()
	in.ProductName = "a product name that is far too long"
	errs := validate.Struct(in)
	assert.Equal(t, "The product_name must not exceed 20 characters.", errs["product_name"])
}

func TestSliceBounds(t *testing.T) {
	in := valid()
	in.Items = []itemInput{{1, 1}, {2, 1}, {3, 1}, {4, 1}}
	errs := validate.Struct(in)
	assert.Equal(t, "The items must not have more than 3 items.", errs["items"])
}

func TestDiveReportsElementPath(t *testing.T) {
	in := valid()
	in.Items = []itemInput{{SdsID: 1, Quantity: 5}, {SdsID: 0, Quantity: -1}}
	errs := validate.Struct(in)

	assert.Equal(t, "The items[1].sds_id field is required.", errs["items[1].sds_id"])
	assert.Equal(t, "The items[1].quantity must be greater than 0.", errs["items[1].quantity"])
	assert.NotContains(t, errs, "items[0].quantity")
}

func TestURLRule(t *testing.T) {
	in := valid()
	in.Website = "ftp://example.com"
	assert.Contains(t, validate.Struct(in), "website")

	in.Website = "https://example.com/sds"
	assert.NotContains(t, validate.Struct(in), "website")
}

func TestParseDate(t *testing.T) {
	d, err := validate.ParseDate(" 2023-04-04 ")
	assert.NoError(t, err)
	assert.Equal(t, 2023, d.Year())

	_, err = validate.ParseDate("")
	assert.Error(t, err)
}

func TestRequiredPointer(t *testing.T) {
	type in struct {
		Quantity *float64 `json:"quantity" validate:"required,gt=0"`
	}
	zero, five := 0.0, 5.0

	assert.Equal(t, "The quantity field is required.", validate.Struct(in{})["quantity"])
	assert.Equal(t, "The quantity must be greater than 0.", validate.Struct(in{Quantity: &zero})["quantity"])
	assert.Empty(t, validate.Struct(in{Quantity: &five}))
}
