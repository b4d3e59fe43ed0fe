package auth

import (
	"errors"
	"testing"
)

func TestSignupFormValidate(t *testing.T) {
	t.Parallel()

	valid := SignupForm{LoginID: "mina01", Password: "secret!12", ConfirmPassword: "secret!12", UserName: "Mina"}

	tests := []struct {
		name  string
		edit  func(*SignupForm)
		ok    bool
		field string
	}{
		{name: "valid", edit: func(*SignupForm) {}, ok: true},
		{name: "hangul name", edit: func(f *SignupForm) { f.UserName = "김민아" }, ok: true},
		{name: "missing field", edit: func(f *SignupForm) { f.UserName = "" }, field: ""},
		{name: "short login", edit: func(f *SignupForm) { f.LoginID = "abc" }, field: "loginId"},
		{name: "login symbols", edit: func(f *SignupForm) { f.LoginID = "mina_01" }, field: "loginId"},
		{name: "mismatch", edit: func(f *SignupForm) { f.ConfirmPassword = "secret!13" }, field: "confirmPassword"},
		{name: "short password", edit: func(f *SignupForm) { f.Password, f.ConfirmPassword = "a1!", "a1!" }, field: "password"},
		{name: "password without special", edit: func(f *SignupForm) { f.Password, f.ConfirmPassword = "secret123", "secret123" }, field: "password"},
		{name: "password without digit", edit: func(f *SignupForm) { f.Password, f.ConfirmPassword = "secret!!!", "secret!!!" }, field: "password"},
		{name: "name with digits", edit: func(f *SignupForm) { f.UserName = "Mina1" }, field: "userName"},
		{name: "name too long", edit: func(f *SignupForm) { f.UserName = "Abcdefghijklm" }, field: "userName"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := valid
			tt.edit(&form)
			err := form.Validate()

			if tt.ok {
				if err != nil {
					t.Fatalf("expected valid form, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("expected field %q, got %q (%s)", tt.field, verr.Field, verr.Message)
			}
		})
	}
}
