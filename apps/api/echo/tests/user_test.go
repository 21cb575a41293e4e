package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/tuition/apps/api/echo"
	"github.com/trezcool/tuition/core/user"
	testutil "github.com/trezcool/tuition/tests"
)

const pwd = "Pwd.1234"

func TestUserAPI_Login(t *testing.T) {
	e := setup(t)
	testutil.CreateUser(t, e.usrRepo, "Awe", "awe", "awe@test.com", pwd, []string{user.RoleAdmin}, true)
	testutil.CreateUser(t, e.usrRepo, "Gone", "gone", "gone@test.com", pwd, []string{user.RoleTeacher}, false)

	tests := []httpTest{
		{
			name:     "required fields",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username":"this field is required","password":"this field is required"}`),
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username":"nobody","password":"` + pwd + `"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username":"awe","password":"wrong"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "inactive user",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username":"gone","password":"` + pwd + `"}`),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, e.app, tests)

	for _, uname := range []string{"awe", " AWE ", "awe@test.com"} {
		t.Run("success "+uname, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", []byte(`{"username":"`+uname+`","password":"`+pwd+`"}`))
			e.app.ServeHTTP(rec, req)

			if assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String()) {
				var resp echoapi.LoginResponse
				decode(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func TestUserAPI_Query(t *testing.T) {
	e := setup(t)
	now := time.Now().UTC()
	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin", "admin@test.com", pwd, []string{user.RoleAdmin}, true, now.Add(-3*time.Hour))
	teacher := testutil.CreateUser(t, e.usrRepo, "Teacher", "teacher", "teacher@test.com", pwd, []string{user.RoleTeacher}, true, now.Add(-2*time.Hour))
	gone := testutil.CreateUser(t, e.usrRepo, "Gone", "gone", "gone@test.com", pwd, []string{user.RoleTeacher}, false, now.Add(-1*time.Hour))

	adminToken := e.token(t, admin)
	teacherToken := e.token(t, teacher)

	tests := []httpTest{
		{
			name:     "auth required",
			path:     "/v1/users",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "admin required",
			path:     "/v1/users",
			token:    teacherToken,
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "newest first",
			path:     "/v1/users",
			token:    adminToken,
			wantData: marshalList(t, gone, teacher, admin),
		},
		{
			name:     "ordering",
			path:     "/v1/users?ordering=username",
			token:    adminToken,
			wantData: marshalList(t, admin, gone, teacher),
		},
		{
			name:     "filter by role",
			path:     "/v1/users?role=admin:",
			token:    adminToken,
			wantData: marshalList(t, admin),
		},
		{
			name:     "filter by active",
			path:     "/v1/users?is_active=false",
			token:    adminToken,
			wantData: marshalList(t, gone),
		},
		{
			name:     "search",
			path:     "/v1/users?search=teach",
			token:    adminToken,
			wantData: marshalList(t, teacher),
		},
		{
			name:     "roles",
			path:     "/v1/users/roles",
			token:    adminToken,
			wantData: marshalObj(t, user.Roles),
		},
	}
	runHTTPTests(t, e.app, tests)
}

func TestUserAPI_Retrieve(t *testing.T) {
	e := setup(t)
	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin", "admin@test.com", pwd, []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, e.usrRepo, "Teacher", "teacher", "teacher@test.com", pwd, []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, e.usrRepo, "Other", "other", "other@test.com", pwd, []string{user.RoleTeacher}, true)

	tests := []httpTest{
		{
			name:     "self",
			path:     "/v1/users/" + teacher.ID,
			token:    e.token(t, teacher),
			wantData: marshalObj(t, teacher),
		},
		{
			name:     "someone else",
			path:     "/v1/users/" + other.ID,
			token:    e.token(t, teacher),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "admin",
			path:     "/v1/users/" + other.ID,
			token:    e.token(t, admin),
			wantData: marshalObj(t, other),
		},
		{
			name:     "unknown",
			path:     "/v1/users/9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f",
			token:    e.token(t, admin),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "teacher cannot change roles",
			method:   http.MethodPut,
			path:     "/v1/users/" + teacher.ID,
			body:     []byte(`{"roles":["admin:"]}`),
			token:    e.token(t, teacher),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "admin cannot delete self",
			method:   http.MethodDelete,
			path:     "/v1/users/" + admin.ID,
			token:    e.token(t, admin),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "admin deletes",
			method:   http.MethodDelete,
			path:     "/v1/users/" + other.ID,
			token:    e.token(t, admin),
			wantCode: http.StatusNoContent,
		},
	}
	runHTTPTests(t, e.app, tests)
}

func TestUserAPI_RefreshToken(t *testing.T) {
	e := setup(t)
	usr := testutil.CreateUser(t, e.usrRepo, "Teacher", "teacher", "teacher@test.com", pwd, []string{user.RoleTeacher}, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", e.token(t, usr))
	e.app.ServeHTTP(rec, req)

	if assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String()) {
		var resp echoapi.LoginResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	}

	t.Run("expired refresh", func(t *testing.T) {
		e.conf.Server.JWTRefreshExpirationDelta = -time.Minute
		defer func() { e.conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour }()

		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", e.token(t, usr))
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "refresh has expired"}),
		}, rec)
	})
}
