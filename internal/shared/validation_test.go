package shared

import (
	"errors"
	"testing"
)

type sampleForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Website  string `form:"website" validate:"omitempty,url"`
}

func TestFieldErrorsUseFormNames(t *testing.T) {
	v := NewValidator()
	errs := FieldErrors(v.Struct(sampleForm{Email: "nope", Password: "abc", Website: "not a link"}))
	if errs["email"] != "Enter a valid email address" {
		t.Fatalf("unexpected email error %q", errs["email"])
	}
	if errs["password"] != "password must be at least 6 characters" {
		t.Fatalf("unexpected password error %q", errs["password"])
	}
	if errs["website"] != "Enter a valid link" {
		t.Fatalf("unexpected website error %q", errs["website"])
	}
}

func TestFieldErrorsRequired(t *testing.T) {
	errs := FieldErrors(NewValidator().Struct(sampleForm{}))
	if errs["email"] != "email is required" || errs["password"] != "password is required" {
		t.Fatalf("unexpected errors %v", errs)
	}
	if _, ok := errs["website"]; ok {
		t.Fatalf("optional field must not fail")
	}
}

func TestFieldErrorsGeneral(t *testing.T) {
	errs := FieldErrors(errors.New("boom"))
	if errs["general"] != "boom" {
		t.Fatalf("unexpected errors %v", errs)
	}
	if len(FieldErrors(nil)) != 0 {
		t.Fatalf("expected no errors for nil")
	}
}
