package validator

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// CustomValidator は記録フォーム用のバリデーションを提供
type CustomValidator struct {
	validator *validator.Validate
	idPattern *regexp.Regexp
}

// ValidationError はバリデーションエラーの詳細情報
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors は複数のバリデーションエラー
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

// NewCustomValidator creates a new custom validator instance
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	cv := &CustomValidator{
		validator: v,
		idPattern: regexp.MustCompile(`^\d{1,10}$`),
	}

	v.RegisterValidation("mood_id", validateMoodID)
	v.RegisterValidation("safe_text", validateSafeText)
	v.RegisterValidation("bool_flag", validateBoolFlag)

	return cv
}

// Validate validates a struct and returns detailed error information
func (cv *CustomValidator) Validate(s interface{}) error {
	err := cv.validator.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	result := ValidationErrors{}
	for _, fe := range fieldErrors {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: generateErrorMessage(fe),
		})
	}
	return result
}

var moodIDPattern = regexp.MustCompile(`^\d{1,10}$`)

// validateMoodID 整数のみ（"2.0" などは不可）
func validateMoodID(fl validator.FieldLevel) bool {
	return moodIDPattern.MatchString(fl.Field().String())
}

func validateSafeText(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r < 32 && r != 9 && r != 10 && r != 13 { // タブ、改行、復帰以外の制御文字を拒否
			return false
		}
		if r == 0x7f {
			return false
		}
	}
	return true
}

// validateBoolFlag フォームのチェックボックス値
func validateBoolFlag(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || value == "on" {
		return true
	}
	_, err := strconv.ParseBool(value)
	return err == nil
}

// generateErrorMessage generates user-friendly error messages
func generateErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s は必須項目です", field)
	case "max":
		return fmt.Sprintf("%s は %s 文字以下で入力してください", field, err.Param())
	case "mood_id":
		return fmt.Sprintf("%s は整数で指定してください", field)
	case "safe_text":
		return fmt.Sprintf("%s に不正な文字が含まれています", field)
	case "bool_flag":
		return fmt.Sprintf("%s は true / false で指定してください", field)
	default:
		return fmt.Sprintf("%s が無効です", field)
	}
}

// ValidateID validates ID path parameters
func (cv *CustomValidator) ValidateID(idStr string) (int, error) {
	if !cv.idPattern.MatchString(idStr) {
		return 0, fmt.Errorf("ID must be a positive integer")
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid ID format")
	}
	if id <= 0 {
		return 0, fmt.Errorf("ID must be positive")
	}
	return id, nil
}

// ParseFlag interprets a form checkbox value
func ParseFlag(value string) bool {
	if value == "on" {
		return true
	}
	b, _ := strconv.ParseBool(value)
	return b
}
