package models

type CustomerInfo struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address,omitempty"`
	City          string `json:"city,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Customer field names, shared by validation errors and field setters.
const (
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldStreetAddress = "street_address"
	FieldCity          = "city"
	FieldPostalCode    = "postal_code"
	FieldNotes         = "notes"
)

// Set assigns value to the named field. It reports false for unknown names.
func (c *CustomerInfo) Set(field, value string) bool {
	switch field {
	case FieldFirstName:
		c.FirstName = value
	case FieldLastName:
		c.LastName = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	case FieldStreetAddress:
		c.StreetAddress = value
	case FieldCity:
		c.City = value
	case FieldPostalCode:
		c.PostalCode = value
	case FieldNotes:
		c.Notes = value
	default:
		return false
	}
	return true
}
