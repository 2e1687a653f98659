package utils

import "regexp"

var (
	emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPhone accepts exactly 10 ASCII digits.
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}
