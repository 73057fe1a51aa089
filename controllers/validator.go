package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	apperrors "storefront-service/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type SubcategoryRequest struct {
	Category        string `json:"category" validate:"required"`
	SubCategoryName string `json:"subCategoryName" validate:"required"`
}

// CartRequest is the body of the cart dispatch and removal endpoints.
// Quantity may be sent as a number or a numeric string.
type CartRequest struct {
	ProductID string          `json:"productId"`
	Action    string          `json:"action"`
	Quantity  json.RawMessage `json:"quantity"`
}

type WishlistRequest struct {
	ProductID string `json:"productId"`
}

// RequestValidator binds JSON bodies and applies validate tags.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Bind decodes the body into dst. An empty body decodes to the zero value so
// that validation reports the missing fields.
func (rv *RequestValidator) Bind(c *gin.Context, dst any) error {
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(dst); err != nil {
			return apperrors.InvalidInput("Invalid request body")
		}
	}
	if err := rv.validate.Struct(dst); err != nil {
		return apperrors.InvalidInput(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// ParsePagination reads page and limit, leaving bad values at zero for the
// service to default.
func ParsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

// parseQuantity accepts a JSON number or numeric string; anything else is 0.
func parseQuantity(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(f >= 1 && f <= 1e9) {
		return 0
	}
	return int(f)
}
