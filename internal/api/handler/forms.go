package handler

import "strings"

type signupForm struct {
	Name     string `form:"fullname" validate:"required"`
	Email    string `form:"email"    validate:"required"`
	Password string `form:"password" validate:"required"`
	Role     string `form:"role"`
}

type loginForm struct {
	Email    string `form:"email"    validate:"required"`
	Password string `form:"password" validate:"required"`
}

type createRequestForm struct {
	Title       string `form:"title"       validate:"required"`
	Category    string `form:"category"    validate:"required,oneof=Plumbing Electrical Carpentry Painting Cleaning HVAC Landscaping Roofing Other"`
	Description string `form:"description" validate:"required"`
	Nonce       string `form:"nonce"`
}

type offerForm struct {
	Price   string `form:"price"   validate:"required,numeric"`
	Message string `form:"message" validate:"required"`
	Nonce   string `form:"nonce"`
}

type acceptForm struct {
	ExpertName string `form:"expertName"`
}

// trim strips surrounding whitespace from every field a form copies into storage.
func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
