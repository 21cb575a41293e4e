package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/tuition/apps/api/echo"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/class"
	"github.com/trezcool/tuition/core/classcount"
	"github.com/trezcool/tuition/core/employee"
	"github.com/trezcool/tuition/core/payroll"
	"github.com/trezcool/tuition/core/user"
	logsvc "github.com/trezcool/tuition/services/logger"
	inmemdb "github.com/trezcool/tuition/storage/database/inmem"
	testutil "github.com/trezcool/tuition/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type env struct {
	app  *echoapi.Server
	conf *core.Config

	usrRepo   user.Repository
	classRepo class.Repository
	empRepo   employee.Repository
	countRepo classcount.Repository
}

// setup builds a server over a fresh in-memory database.
// payrollSvc, when given, replaces the payroll service computed from that database.
func setup(t *testing.T, payrollSvc ...payroll.Service) *env {
	t.Helper()

	conf := core.NewTestConfig("UTC")
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "API : ", 0), conf)
	validate, translator := testutil.NewValidator()

	db := inmemdb.Open()
	e := &env{
		conf:      conf,
		usrRepo:   inmemdb.NewUserRepository(db),
		classRepo: inmemdb.NewClassRepository(db),
		empRepo:   inmemdb.NewEmployeeRepository(db),
		countRepo: inmemdb.NewClassCountRepository(db),
	}

	classSvc := class.NewService(e.classRepo)
	empSvc := employee.NewService(e.empRepo, classSvc)
	countSvc := classcount.NewService(e.countRepo, classSvc, empSvc, conf.Location())
	paySvc := payroll.NewService(empSvc, countSvc, conf.Location())
	if len(payrollSvc) > 0 {
		paySvc = payrollSvc[0]
	}

	e.app = echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        user.NewService(e.usrRepo),
		ClassSvc:       classSvc,
		EmployeeSvc:    empSvc,
		ClassCountSvc:  countSvc,
		PayrollSvc:     paySvc,
	})
	return e
}

func (e *env) token(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := e.app.Token(usr)
	require.NoError(t, err)
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshalList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData checks the status code, and the body when tt.wantData is set.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if assert.NoError(t, err, "body: %s", rec.Body.String()) {
		assert.True(t, ok, "data = %s; wantData %s", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	t.Helper()

	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}
