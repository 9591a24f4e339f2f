// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"
	"unicode"
)

// IsValidOrderNumber проверяет формат номера заказа ORD-<millis>-<6 символов base36>.
func IsValidOrderNumber(number string) bool {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return false
	}

	if parts[0] != "ORD" {
		return false
	}

	if len(parts[1]) == 0 {
		return false
	}
	for _, ch := range parts[1] {
		if !unicode.IsDigit(ch) {
			return false
		}
	}

	if len(parts[2]) != 6 {
		return false
	}
	for _, ch := range parts[2] {
		if !unicode.IsDigit(ch) && (ch < 'A' || ch > 'Z') {
			return false
		}
	}

	return true
}

// IsValidEmail выполняет минимальную структурную проверку адреса почты.
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// IsValidPincode проверяет шестизначный почтовый индекс.
func IsValidPincode(pincode string) bool {
	if len(pincode) != 6 {
		return false
	}
	for _, ch := range pincode {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return pincode[0] != '0'
}

// IsValidPromoCode проверяет формат промокода: 3-20 символов, буквы и цифры.
func IsValidPromoCode(code string) bool {
	if len(code) < 3 || len(code) > 20 {
		return false
	}
	for _, ch := range code {
		if !unicode.IsUpper(ch) && !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}
