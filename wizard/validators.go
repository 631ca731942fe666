package wizard

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"carbonlens/web/models"
)

// Field names a UserData attribute as the browser sends it.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldEmail           Field = "email"
	FieldCompanyName     Field = "companyName"
	FieldCompanySize     Field = "companySize"
	FieldIndustry        Field = "industry"
	FieldPhone           Field = "phone"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

const MinPasswordLength = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps an invalid field of the current step to its message.
type FieldErrors map[Field]string

func (e FieldErrors) OK() bool { return len(e) == 0 }

// Validate checks only the fields owned by step. Step 3 is checked only when the
// tier collects a password there.
func Validate(step int, u models.UserData, requiresPassword bool) FieldErrors {
	errs := FieldErrors{}
	switch step {
	case 1:
		if blank(u.FirstName) {
			errs[FieldFirstName] = "First name is required"
		}
		if blank(u.LastName) {
			errs[FieldLastName] = "Last name is required"
		}
		if blank(u.Email) {
			errs[FieldEmail] = "Email is required"
		} else if !emailRe.MatchString(u.Email) {
			errs[FieldEmail] = "Please enter a valid email address"
		}
	case 2:
		if blank(u.CompanyName) {
			errs[FieldCompanyName] = "Company name is required"
		}
		if blank(u.CompanySize) {
			errs[FieldCompanySize] = "Company size is required"
		} else if !models.IsCompanySize(u.CompanySize) {
			errs[FieldCompanySize] = "Please select a valid company size"
		}
		if blank(u.Industry) {
			errs[FieldIndustry] = "Industry is required"
		} else if !models.IsIndustry(u.Industry) {
			errs[FieldIndustry] = "Please select a valid industry"
		}
	case 3:
		if !requiresPassword {
			break
		}
		if u.Password == "" {
			errs[FieldPassword] = "Password is required"
		} else if utf8.RuneCountInString(u.Password) < MinPasswordLength {
			errs[FieldPassword] = "Password must be at least 8 characters"
		}
		if u.ConfirmPassword == "" {
			errs[FieldConfirmPassword] = "Please confirm your password"
		} else if u.ConfirmPassword != u.Password {
			errs[FieldConfirmPassword] = "Passwords do not match"
		}
	}
	return errs
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
