package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,username"`
	Password    string `json:"password" validate:"required,pwd"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,adult"`
	Gender      string `json:"gender" validate:"required,gender"`
}

type codeForm struct {
	Code string `json:"code" validate:"required,confirmcode"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func validForm() registerForm {
	return registerForm{
		Email:       "user@x.com",
		Username:    "alice_01",
		Password:    "Passw0rd1",
		DateOfBirth: "1990-05-17",
		Gender:      "female",
	}
}

func TestRegisterFormRules(t *testing.T) {
	v := newValidate()
	require.NoError(t, v.Struct(validForm()))

	cases := []struct {
		name  string
		mut   func(*registerForm)
		field string
	}{
		{"username too short", func(f *registerForm) { f.Username = "al" }, "username"},
		{"username with dash", func(f *registerForm) { f.Username = "al-ice" }, "username"},
		{"password without digit", func(f *registerForm) { f.Password = "Password" }, "password"},
		{"password without upper", func(f *registerForm) { f.Password = "passw0rd1" }, "password"},
		{"password too long", func(f *registerForm) { f.Password = "Aa1" + strings.Repeat("a", 30) }, "password"},
		{"bad email", func(f *registerForm) { f.Email = "nope" }, "email"},
		{"bad date", func(f *registerForm) { f.DateOfBirth = "17/05/1990" }, "dateOfBirth"},
		{"too young", func(f *registerForm) { f.DateOfBirth = time.Now().AddDate(-5, 0, 0).Format(DateLayout) }, "dateOfBirth"},
		{"unknown gender", func(f *registerForm) { f.Gender = "other" }, "gender"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mut(&f)
			details := ToDetails(v.Struct(f))
			assert.Contains(t, details, tc.field)
		})
	}
}

func TestConfirmCodeRule(t *testing.T) {
	v := newValidate()
	assert.NoError(t, v.Struct(codeForm{Code: "AB12CD"}))
	assert.Error(t, v.Struct(codeForm{Code: "ab12cd"}))
	assert.Error(t, v.Struct(codeForm{Code: "AB12C"}))
	assert.Error(t, v.Struct(codeForm{Code: "AB-2CD"}))

	details := ToDetails(v.Struct(codeForm{Code: "x"}))
	assert.Equal(t, "must be 6 uppercase letters or digits", details["code"])
}

func TestIsOldEnough(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, IsOldEnough(time.Date(2011, 6, 15, 0, 0, 0, 0, time.UTC), now, 13))
	assert.False(t, IsOldEnough(time.Date(2011, 6, 16, 0, 0, 0, 0, time.UTC), now, 13))
	assert.False(t, IsOldEnough(now.AddDate(0, 0, 1), now, 0))
}

func TestToDetailsPayloadErrors(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte(`{"a":}`), &dst)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("EOF")))

	assert.Nil(t, ToDetails(nil))
}
