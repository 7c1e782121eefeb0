package validation

import (
	"net/http"
	"testing"

	apperrors "github.com/kbukum/feedback/errors"
)

type signup struct {
	Username string `json:"username" validate:"required,max=64,handle"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Nickname string `validate:"omitempty,max=4"`
}

func fields(t *testing.T, err error) []FieldError {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", appErr.HTTPStatus)
	}
	fs, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("missing field details: %v", appErr.Details)
	}
	return fs
}

func TestValidate_Valid(t *testing.T) {
	s := signup{Username: "ana.b", Email: "ana@example.com", Password: "pw"}
	if err := Validate(s); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(signup{Email: "not-an-email", Nickname: "toolong"})
	got := map[string]string{}
	for _, f := range fields(t, err) {
		got[f.Field] = f.Message
	}

	want := map[string]string{
		"username": "is required",
		"email":    "must be a valid email address",
		"password": "is required",
		"nickname": "must be at most 4 characters",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: got %q, want %q", field, got[field], msg)
		}
	}
}

func TestValidate_Handle(t *testing.T) {
	for _, name := range []string{"ana b", "ana/b", "ana💥"} {
		err := Validate(signup{Username: name, Email: "a@b.co", Password: "pw"})
		if err == nil {
			t.Errorf("%q should be rejected", name)
		}
	}
}

func TestValidator_Fluent(t *testing.T) {
	v := New().
		Required("username", "  ").
		MaxLength("email", "abcdef", 3).
		OneOf("role", "superuser", []string{"admin", "student"}).
		Custom(true, "ok", "never")

	if len(v.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %v", v.Errors())
	}
	if err := v.Validate(); err == nil || err.Code != apperrors.ErrCodeInvalidInput {
		t.Errorf("unexpected error %v", err)
	}
	if New().Validate() != nil {
		t.Error("empty validator should yield nil")
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("CreatedAt"); got != "created_at" {
		t.Errorf("got %q", got)
	}
}
