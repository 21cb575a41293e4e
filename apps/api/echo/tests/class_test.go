package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/user"
	testutil "github.com/trezcool/tuition/tests"
)

func TestClassAPI(t *testing.T) {
	e := setup(t)
	nine := testutil.CreateClass(t, e.classRepo, "9")
	six := testutil.CreateClass(t, e.classRepo, "6")
	teacher := testutil.CreateTeacher(t, e.empRepo, "Rahim", "Uddin", "01711000001", testutil.Rate("100", six))

	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin", "admin@test.com", pwd, []string{user.RoleAdmin}, true)
	rahimUsr := testutil.CreateUser(t, e.usrRepo, "Rahim", "rahim", "rahim@test.com", pwd, []string{user.RoleTeacher}, true)
	rahimUsr = testutil.LinkEmployee(t, e.usrRepo, rahimUsr, teacher.ID)
	stranger := testutil.CreateUser(t, e.usrRepo, "Stranger", "stranger", "stranger@test.com", pwd, []string{user.RoleTeacher}, true)

	adminToken := e.token(t, admin)
	rahimToken := e.token(t, rahimUsr)

	tests := []httpTest{
		{
			name:     "auth required",
			path:     "/v1/classes",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "unlinked teacher",
			path:     "/v1/classes",
			token:    e.token(t, stranger),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "teacher lists by name",
			path:     "/v1/classes",
			token:    rahimToken,
			wantData: marshalList(t, six, nine),
		},
		{
			name:     "search",
			path:     "/v1/classes?search=9",
			token:    adminToken,
			wantData: marshalList(t, nine),
		},
		{
			name:     "teacher cannot create",
			method:   http.MethodPost,
			path:     "/v1/classes",
			body:     []byte(`{"name":"10"}`),
			token:    rahimToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "name required",
			method:   http.MethodPost,
			path:     "/v1/classes",
			body:     []byte(`{"name":"  "}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"this field is required"}`),
		},
		{
			name:     "duplicate name",
			method:   http.MethodPost,
			path:     "/v1/classes",
			body:     []byte(`{"name":"9"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"` + class.ErrNameExists.Error() + `"}`),
		},
		{
			name:     "unknown class",
			path:     "/v1/classes/9b0b3d7c-4bb0-4a4e-9f57-1e1a2d2a0c3f",
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: class.ErrNotFound.Error()}),
		},
		{
			name:     "retrieve",
			path:     "/v1/classes/" + six.ID,
			token:    rahimToken,
			wantData: marshalObj(t, six),
		},
		{
			name:     "rename onto an existing name",
			method:   http.MethodPut,
			path:     "/v1/classes/" + six.ID,
			body:     []byte(`{"name":"9"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"` + class.ErrNameExists.Error() + `"}`),
		},
		{
			name:     "teacher cannot delete",
			method:   http.MethodDelete,
			path:     "/v1/classes/" + six.ID,
			token:    rahimToken,
			wantCode: http.StatusForbidden,
		},
	}
	runHTTPTests(t, e.app, tests)

	t.Run("create, rename and delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", adminToken, []byte(`{"name":" 10 Science "}`))
		e.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

		var created class.Class
		decode(t, rec, &created)
		assert.Equal(t, "10 Science", created.Name)
		n, ok := created.Numeral()
		assert.True(t, ok)
		assert.Equal(t, 10, n)

		req, rec = newAuthRequest(http.MethodPut, "/v1/classes/"+created.ID, adminToken, []byte(`{"name":"10 Arts"}`))
		e.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

		var renamed class.Class
		decode(t, rec, &renamed)
		assert.Equal(t, created.ID, renamed.ID)
		assert.Equal(t, "10 Arts", renamed.Name)

		req, rec = newAuthRequest(http.MethodDelete, "/v1/classes/"+created.ID, adminToken)
		e.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/classes/"+created.ID, adminToken)
		e.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
