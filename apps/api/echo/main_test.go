package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/igortacu/summer-hackathon-sub000/core"
	"github.com/igortacu/summer-hackathon-sub000/core/activity"
	"github.com/igortacu/summer-hackathon-sub000/core/gitlog"
	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
	"github.com/igortacu/summer-hackathon-sub000/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// fakeFetcher serves canned commits instead of cloning.
type fakeFetcher struct {
	mu      sync.Mutex
	commits map[string][]gitlog.Commit
	err     error
	urls    []string
}

var _ CommitFetcher = (*fakeFetcher)(nil) // interface compliance check

func (f *fakeFetcher) FetchAll(_ context.Context, urls ...string) ([]gitlog.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, urls...)
	if f.err != nil {
		return nil, f.err
	}
	var (
		all   []gitlog.Commit
		found bool
	)
	for _, u := range urls {
		if u == "" {
			continue
		}
		found = true
		all = append(all, f.commits[u]...)
	}
	if !found {
		return nil, gitlog.ErrNoRepository
	}
	return gitlog.Dedupe(all), nil
}

type testApp struct {
	conf    *core.Config
	server  *Server
	stores  testutil.Stores
	fetcher *fakeFetcher
}

// setup builds a server on in-memory stores; activity is pinned to `today`.
func setup(t *testing.T, today string) testApp {
	t.Helper()

	conf := testutil.NewConfig()
	validate, translator := testutil.NewValidator()
	stores := testutil.NewStores()
	fetcher := &fakeFetcher{commits: make(map[string][]gitlog.Commit)}

	if today != "" {
		now := activity.MustParseDate(today).Time().Add(12 * time.Hour)
		activity.NowFunc = func() time.Time { return now }
		t.Cleanup(func() { activity.NowFunc = time.Now })
	}

	srv := NewServer(&Deps{
		Conf:        conf,
		Logger:      testutil.NewLogger(conf),
		Validate:    validate,
		Translator:  translator,
		UserSvc:     user.NewService(stores.User, validate),
		ActivitySvc: activity.NewService(stores.Activity, activity.OptionsFromConfig(conf.Activity)),
		TaskSvc:     task.NewService(stores.Task, validate),
		Fetcher:     fetcher,
	})
	t.Cleanup(func() { _ = srv.Close() })

	return testApp{conf: conf, server: srv, stores: stores, fetcher: fetcher}
}

func (app testApp) do(req *http.Request, rec *httptest.ResponseRecorder) {
	app.server.ServeHTTP(rec, req)
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
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, NewClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
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
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
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

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_home(t *testing.T) {
	app := setup(t, "")
	req, rec := newRequest(http.MethodGet, "/")
	app.do(req, rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	if got, want := rec.Body.String(), "Welcome to Bublink API!"; got != want {
		t.Errorf("body = %q; want %q", got, want)
	}
}
