package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
	"github.com/hajerbook/backend/core/course"
	cachesvc "github.com/hajerbook/backend/services/cache"
	notifysvc "github.com/hajerbook/backend/services/notify"
	dummydb "github.com/hajerbook/backend/storage/database/dummy"
	"github.com/hajerbook/backend/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	srv      *Server
	accRepo  account.Repository
	recorder *notifysvc.Recorder
}

func setup(t *testing.T, conf ...*core.Config) testApp {
	t.Helper()
	cfg := core.NewTestConfig()
	if len(conf) > 0 {
		cfg = conf[0]
	}

	// set up DB & repos
	db := dummydb.Open()
	app := testApp{
		accRepo:  dummydb.NewAccountRepository(db),
		recorder: notifysvc.NewRecorder(),
	}

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	logger := testutil.NewLogger()
	courseSvc := course.NewService(dummydb.NewCourseRepository(db), cachesvc.NewMemoryCache(cfg), app.recorder, logger, cfg)

	// set up server
	app.srv = NewServer(&ServerDeps{
		Conf:           cfg,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		AccountSvc:     account.NewService(app.accRepo),
		CourseSvc:      courseSvc,
		DisableReqLogs: true,
	})
	return app
}

func (app testApp) token(t *testing.T, acc account.Account) string {
	t.Helper()
	token, err := app.srv.auth.Token(acc)
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
	body     interface{}
	token    string
	ifMatch  string
	wantCode int
	wantData interface{}
	wantETag string // quoted, e.g. `"2"`
}

func (app testApp) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if tt.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(tt.body))
	}
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, tt.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if tt.token != "" {
		req.Header.Set("Authorization", "Bearer "+tt.token)
	}
	if tt.ifMatch != "" {
		req.Header.Set("If-Match", tt.ifMatch)
	}
	rec := httptest.NewRecorder()
	app.srv.ServeHTTP(rec, req)
	return rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(marshalObj(t, tt.wantData)), rec.Body.String())
	}
	if tt.wantETag != "" {
		assert.Equal(t, tt.wantETag, rec.Header().Get("ETag"))
	}
}

func (app testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}
}

func TestServer_home(t *testing.T) {
	app := setup(t)
	rec := app.do(t, httpTest{path: "/"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Hajer Book API!", rec.Body.String())
}
