package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// passwordSpecials are the characters the backend accepts as "special".
const passwordSpecials = "@#$%^&+=!"

// ValidationError is a local form error. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type LoginForm struct {
	LoginID  string
	Password string
}

func (f LoginForm) Validate() error {
	if strings.TrimSpace(f.LoginID) == "" {
		return &ValidationError{Field: "loginId", Message: "login ID is required"}
	}
	if f.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

type SignupForm struct {
	LoginID         string
	Password        string
	ConfirmPassword string
	UserName        string
}

func (f SignupForm) Validate() error {
	if f.LoginID == "" || f.Password == "" || f.ConfirmPassword == "" || f.UserName == "" {
		return &ValidationError{Message: "please fill in all fields"}
	}

	if n := utf8.RuneCountInString(f.LoginID); n < 4 || n > 20 {
		return &ValidationError{Field: "loginId", Message: "login ID must be 4 to 20 characters long"}
	}
	for _, r := range f.LoginID {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return &ValidationError{Field: "loginId", Message: "login ID may only contain latin letters and digits"}
		}
	}

	if f.Password != f.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	if err := validatePassword(f.Password); err != nil {
		return err
	}

	if n := utf8.RuneCountInString(f.UserName); n < 2 || n > 12 {
		return &ValidationError{Field: "userName", Message: "name must be 2 to 12 characters long"}
	}
	for _, r := range f.UserName {
		if !isNameRune(r) {
			return &ValidationError{Field: "userName", Message: "name may only contain Hangul and latin letters"}
		}
	}

	return nil
}

func validatePassword(p string) error {
	if n := utf8.RuneCountInString(p); n < 8 || n > 20 {
		return &ValidationError{Field: "password", Message: "password must be 8 to 20 characters long"}
	}

	var letter, digit, special bool
	for _, r := range p {
		switch {
		case r <= unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	if !letter || !digit || !special {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password needs at least one letter, one digit and one of %s", passwordSpecials),
		}
	}

	return nil
}

func isNameRune(r rune) bool {
	if r >= '가' && r <= '힣' {
		return true
	}
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
