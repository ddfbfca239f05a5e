package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/volatiletech/null/v8"

	. "github.com/okapitech/ratiba/apps/api/echo"
	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/attendance"
	"github.com/okapitech/ratiba/core/curriculum"
	"github.com/okapitech/ratiba/core/document"
	"github.com/okapitech/ratiba/core/lesson"
	"github.com/okapitech/ratiba/core/provider"
	"github.com/okapitech/ratiba/core/schedule"
	emailsvc "github.com/okapitech/ratiba/services/email"
	inmemdb "github.com/okapitech/ratiba/storage/database/inmem"
	testutil "github.com/okapitech/ratiba/tests"
)

var (
	db  *inmemdb.DB
	app *Server

	provRepo provider.Repository
	sessRepo schedule.Repository
	currRepo curriculum.Repository
	lessRepo lesson.Repository
	docRepo  document.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

// fakeGenerator satisfies lesson.Generator; generateFunc is swapped per test.
type fakeGenerator struct{}

var generateFunc = func(ctx context.Context, req lesson.GenerationRequest, idemKey string, onAttempt func(int)) (lesson.Generated, error) {
	return lesson.Generated{
		Content: lesson.Content{
			Objectives: []string{"decode CVC words"},
			Materials:  []string{"letter tiles"},
			Activities: []string{"blending drill"},
			Assessment: "exit ticket",
		},
	}, nil
}

func (fakeGenerator) Generate(ctx context.Context, req lesson.GenerationRequest, idemKey string, onAttempt func(int)) (lesson.Generated, error) {
	return generateFunc(ctx, req, idemKey, onAttempt)
}

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	var err error
	if db, err = inmemdb.Open(); err != nil {
		os.Exit(1)
	}
	provRepo = inmemdb.NewProviderRepository(db)
	sessRepo = inmemdb.NewSessionRepository(db)
	currRepo = inmemdb.NewCurriculumRepository(db)
	lessRepo = inmemdb.NewLessonRepository(db)
	docRepo = inmemdb.NewDocumentRepository(db)

	logger := testutil.NopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock()

	provSvc := provider.NewService(provRepo)
	lessSvc := lesson.NewService(lessRepo, logger)

	app = NewServer(ServerDeps{
		Logger:         logger,
		ProviderSvc:    provSvc,
		ScheduleSvc:    schedule.NewService(sessRepo, provSvc, mailSvc, logger),
		CurriculumSvc:  curriculum.NewService(currRepo, logger),
		LessonSvc:      lessSvc,
		Orchestrator:   lesson.NewOrchestrator(fakeGenerator{}, lessSvc, logger),
		AttendanceSvc:  attendance.NewService(inmemdb.NewAttendanceRepository(db), logger),
		DocumentSvc:    document.NewService(docRepo, logger),
		DisableReqLogs: true,
	})

	os.Exit(m.Run())
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
	extra    interface{}
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
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func createProvider(t *testing.T, name, email, role string, scope ...string) provider.Provider {
	t.Helper()
	prov := provider.Provider{
		Name:  name,
		Email: email,
		Role:  role,
	}
	active := true
	prov.IsActive = &active
	if len(scope) > 0 {
		prov.SchoolID = null.StringFrom(scope[0])
	}
	if len(scope) > 1 {
		prov.DistrictID = null.StringFrom(scope[1])
	}
	prov, err := provRepo.CreateProvider(context.Background(), prov)
	if err != nil {
		t.Fatalf("createProvider(): %v", err)
	}
	return prov
}

func getToken(t *testing.T, prov provider.Provider) string {
	t.Helper()
	token, err := GenerateToken(GetProviderClaims(prov))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList(): %v", err)
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

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
