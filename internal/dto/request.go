package dto

import "github.com/Eursukkul/booking-microservice/wizard-service/internal/models"

type SelectDateRequest struct {
	// Date is YYYY-MM-DD.
	Date string `json:"date"`
}

type SelectServiceRequest struct {
	ServiceID string `json:"service_id"`
}

// CountRequest sets the guest count or the additional hours directly.
type CountRequest struct {
	Value *int `json:"value"`
}

// CustomerRequest updates one contact field when Field is set, otherwise
// replaces the whole contact block with Info.
type CustomerRequest struct {
	Field string               `json:"field,omitempty"`
	Value string               `json:"value,omitempty"`
	Info  *models.CustomerInfo `json:"customer_info,omitempty"`
}
