package account

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/hajerbook/backend/core"
)

func Test_passwordPolicy(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		uname   string
		wantTag string
	}{
		{name: "min len", pwd: "lol", wantTag: pwdMinLenTag},
		{name: "no whitespace", pwd: "l o loll", wantTag: pwdNoSpaceTag},
		{name: "not all numeric", pwd: "12345678", wantTag: pwdNotAllNumTag},
		{name: "complexity", pwd: "lol12345", wantTag: pwdComplexityTag},
		{name: "similar to username", pwd: "Sarra@2024", uname: "sarra2024", wantTag: pwdAttrSimTag},
		{name: "too common", pwd: "P@$$w0rd", wantTag: pwdNoCommonTag},
		{name: "valid", pwd: "LolC@t123", uname: "hajer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTag, passwordPolicy(tt.pwd, "", tt.uname, ""))
		})
	}
}

func TestNewAccount_validation(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		acc     NewAccount
		wantErr map[string]string
	}{
		{
			name: "required fields",
			acc:  NewAccount{},
			wantErr: map[string]string{
				"name":             "this field is required",
				"username":         "one of username or email is required",
				"email":            "one of username or email is required",
				"password":         "password must contain at least 8 characters",
				"password_confirm": "this field is required",
			},
		},
		{
			name:    "invalid roles",
			acc:     NewAccount{Name: "Amine", Username: "amine", Password: "LolC@t123", PasswordConfirm: "LolC@t123", Roles: []string{"pilot:"}},
			wantErr: map[string]string{"roles": "invalid roles"},
		},
		{
			name: "valid",
			acc:  NewAccount{Name: "Amine", Username: "amine", Password: "LolC@t123", PasswordConfirm: "LolC@t123", Roles: []string{RoleStudent}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.acc)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("validate.Struct() error = %v; want validator.ValidationErrors", err)
			}
			assert.Equal(t, tt.wantErr, core.TranslateErrors(vErrs, translator))
		})
	}
}

func TestAccount_roles(t *testing.T) {
	admin := Account{Roles: []string{RoleAdminOwner}}
	student := Account{Roles: []string{RoleStudent}}

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsStudent())
	assert.True(t, student.IsStudent())
	assert.Equal(t, 30, MaxRolePriority(admin.Roles))
	assert.Equal(t, 1, MaxRolePriority(student.Roles))
	assert.True(t, student.Active())

	student.SetActive(false)
	assert.False(t, student.Active())
}
