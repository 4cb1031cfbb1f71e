package usecase

import (
	"errors"
	"fmt"
)

// 構造化エラーコード
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
	CodeUpdateFailed      = "UPDATE_FAILED"
	CodePaymentFailed     = "PAYMENT_FAILED"
)

// usecase層のHTTPエラー。handlerのwriteErrorがそのままJSONにする。
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// コードと詳細つき（在庫不足など、フロントが分岐したいエラー向け）
func NewCodedError(status int, code string, message string, details map[string]interface{}) error {
	return &HTTPError{Status: status, Code: code, Message: message, Details: details}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
