// Package validate wraps go-playground/validator with the catalog's custom
// rules (isbn, phone, notfuture) and turns failures into per-field messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	isbnRe  = regexp.MustCompile(`^(?:\d{10}|\d{13})$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)
	emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

	once sync.Once
	v    *validator.Validate
)

// Engine 返回进程内共享的 validator（规则只注册一次）
func Engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
			return isbnRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || phoneRe.MatchString(s)
		})
		_ = v.RegisterValidation("mail", func(fl validator.FieldLevel) bool {
			return emailRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() <= int64(time.Now().Year())
		})
	})
	return v
}

// Struct 校验结构体；失败时返回 字段名 -> 提示
func Struct(s any) map[string]string {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(ves))
	for _, fe := range ves {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "isbn":
		return "ISBN must contain 10 or 13 digits"
	case "phone":
		return "please enter a valid phone number"
	case "mail":
		return "please enter a valid email"
	case "notfuture":
		return "year cannot be later than the current year"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
