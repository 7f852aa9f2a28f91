package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hajerbook/backend/core/account"
	"github.com/hajerbook/backend/testutil"
)

func Test_accountApi_login(t *testing.T) {
	app := setup(t)
	testutil.CreateAccount(t, app.accRepo, "Amine", "amine", "amine@test.tn", "LolC@t123", []string{account.RoleStudent}, true)
	testutil.CreateAccount(t, app.accRepo, "Sonia", "sonia", "sonia@test.tn", "LolC@t123", []string{account.RoleStudent}, false)

	failed := httpErr{Error: "authentication failed"}
	app.run(t, []httpTest{
		{name: "missing fields", method: http.MethodPost, path: "/v1/accounts/login", body: LoginRequest{}, wantCode: http.StatusBadRequest},
		{name: "unknown account", method: http.MethodPost, path: "/v1/accounts/login", body: LoginRequest{Username: "nobody", Password: "x"}, wantCode: http.StatusBadRequest, wantData: failed},
		{name: "wrong password", method: http.MethodPost, path: "/v1/accounts/login", body: LoginRequest{Username: "amine", Password: "nope"}, wantCode: http.StatusBadRequest, wantData: failed},
		{name: "deactivated", method: http.MethodPost, path: "/v1/accounts/login", body: LoginRequest{Username: "sonia", Password: "LolC@t123"}, wantCode: http.StatusForbidden, wantData: httpErr{Error: "account deactivated"}},
	})

	t.Run("by username or email", func(t *testing.T) {
		for _, uname := range []string{"AMINE", "amine@test.tn"} {
			rec := app.do(t, httpTest{method: http.MethodPost, path: "/v1/accounts/login", body: LoginRequest{Username: uname, Password: "LolC@t123"}})
			assert.Equal(t, http.StatusOK, rec.Code)
			var res LoginResponse
			decode(t, rec, &res)
			assert.NotEmpty(t, res.Token)
		}
	})
}

func Test_accountApi_access(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "admin@test.tn", "", []string{account.RoleAdmin}, true)
	instructor := testutil.CreateAccount(t, app.accRepo, "Karim", "karim", "karim@test.tn", "", []string{account.RoleInstructor}, true)
	student := testutil.CreateAccount(t, app.accRepo, "Amine", "amine", "amine@test.tn", "", []string{account.RoleStudent}, true)
	other := testutil.CreateAccount(t, app.accRepo, "Sonia", "sonia", "sonia@test.tn", "", []string{account.RoleStudent}, true)

	forbidden := httpErr{Error: "permission denied"}
	notFound := httpErr{Error: "not found"}
	app.run(t, []httpTest{
		{name: "auth required", path: "/v1/accounts", wantCode: http.StatusUnauthorized, wantData: errMissingToken},
		{name: "staff required", path: "/v1/accounts", token: app.token(t, student), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "instructor lists", path: "/v1/accounts?role=student:&ordering=username", token: app.token(t, instructor), wantCode: http.StatusOK, wantData: []account.Account{student, other}},
		{name: "bad ordering", path: "/v1/accounts?ordering=password_hash", token: app.token(t, admin), wantCode: http.StatusBadRequest, wantData: map[string]string{"ordering": account.ErrInvalidOrder.Error()}},
		{name: "roles need admin", path: "/v1/accounts/roles", token: app.token(t, instructor), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "roles", path: "/v1/accounts/roles", token: app.token(t, admin), wantCode: http.StatusOK, wantData: account.Roles},
		{name: "self", path: "/v1/accounts/" + student.ID, token: app.token(t, student), wantCode: http.StatusOK, wantData: student},
		{name: "other student is hidden", path: "/v1/accounts/" + other.ID, token: app.token(t, student), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "instructor reads students", path: "/v1/accounts/" + other.ID, token: app.token(t, instructor), wantCode: http.StatusOK, wantData: other},
		{name: "unknown", path: "/v1/accounts/nope", token: app.token(t, admin), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "cannot delete self", method: http.MethodDelete, path: "/v1/accounts/" + admin.ID, token: app.token(t, admin), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "student cannot change roles", method: http.MethodPut, path: "/v1/accounts/" + student.ID, token: app.token(t, student), body: map[string]interface{}{"roles": []string{account.RoleAdmin}}, wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: "/v1/accounts/" + other.ID, token: app.token(t, admin), wantCode: http.StatusNoContent},
	})
}

func Test_accountApi_register(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "admin@test.tn", "", []string{account.RoleAdmin}, true)
	token := app.token(t, admin)

	app.run(t, []httpTest{
		{
			name: "owner role is above admin", method: http.MethodPost, path: "/v1/accounts/register", token: token,
			body:     account.NewAccount{Name: "Boss", Username: "boss", Password: "LolC@t123", PasswordConfirm: "LolC@t123", Roles: []string{account.RoleAdminOwner}},
			wantCode: http.StatusBadRequest, wantData: map[string]string{"roles": errNoPermsToSetRoles},
		},
		{
			name: "duplicate username", method: http.MethodPost, path: "/v1/accounts/register", token: token,
			body:     account.NewAccount{Name: "Admin 2", Username: "admin", Password: "LolC@t123", PasswordConfirm: "LolC@t123"},
			wantCode: http.StatusBadRequest,
		},
	})

	rec := app.do(t, httpTest{
		method: http.MethodPost, path: "/v1/accounts/register", token: token,
		body: account.NewAccount{Name: "Amine", Username: "amine", Email: "amine@test.tn", Password: "LolC@t123", PasswordConfirm: "LolC@t123"},
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var acc account.Account
	decode(t, rec, &acc)
	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, []string{account.RoleStudent}, acc.Roles)
	assert.True(t, acc.Active())
}

func Test_accountApi_refreshToken(t *testing.T) {
	app := setup(t)
	student := testutil.CreateAccount(t, app.accRepo, "Amine", "amine", "amine@test.tn", "", []string{account.RoleStudent}, true)

	app.run(t, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/accounts/token-refresh", wantCode: http.StatusUnauthorized, wantData: errMissingToken},
		{name: "ok", method: http.MethodPost, path: "/v1/accounts/token-refresh", token: app.token(t, student), wantCode: http.StatusOK},
	})
}
