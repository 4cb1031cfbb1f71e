package validator

import (
	"regexp"
	"strings"
)

// チェックアウト時の顧客・配送先の構造チェックの入力
type CustomerInput struct {
	Name       string
	Email      string
	Address    string
	City       string
	PostalCode string
	Country    string
}

const (
	minAddressLen = 5
	minPostalLen  = 3
)

// 最初に引っかかったフィールド名とokを返す。
// ビジネスルール（在庫など）はここでは見ない。
func ValidateCustomer(in CustomerInput) (string, bool) {
	if strings.TrimSpace(in.Name) == "" {
		return "name", false
	}
	if !isEmailLike(in.Email) {
		return "email", false
	}
	if len(strings.TrimSpace(in.Address)) < minAddressLen {
		return "address", false
	}
	if strings.TrimSpace(in.City) == "" {
		return "city", false
	}
	if len(strings.TrimSpace(in.PostalCode)) < minPostalLen {
		return "postal_code", false
	}
	if strings.TrimSpace(in.Country) == "" {
		return "country", false
	}
	return "", true
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(strings.TrimSpace(s))
}
