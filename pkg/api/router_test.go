package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/marmos91/idrecon/pkg/api/handlers"
	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/reconciler"
	"github.com/marmos91/idrecon/pkg/store"
)

const directoryCSV = `sAMAccountName,DisplayName,mail,employeeID,Enabled,DistinguishedName,MemberOf
ivanov,Ivanov I.,a@x.com,E1,True,"CN=Ivanov,OU=Users,DC=izh,DC=example,DC=com",VPN;Domain Users
svc-backup,Backup,,,True,"CN=svc,OU=Service,DC=izh,DC=example,DC=com",
`

const mfaCSV = "Identity;Email;Name;IsEnrolled\nivanov;a@x.com;Ivanov I.;true\nghost;ghost@x.com;Ghost;false\n"

const hrCSV = "UUID,Name,Email\nE1,Ivanov Ivan,b@x.com\n"

type recordedRequest struct {
	route  string
	status int
}

type fakeHTTPMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *fakeHTTPMetrics) RecordRequest(route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{route, status})
}

type testServer struct {
	handler http.Handler
	metrics *fakeHTTPMetrics
}

func newTestServer(t *testing.T, opts reconciler.Options, maxUpload int64) *testServer {
	t.Helper()
	return newTestServerWith(t, opts, RouterOptions{MaxUploadSize: maxUpload})
}

func newTestServerWith(t *testing.T, opts reconciler.Options, ro RouterOptions) *testServer {
	t.Helper()
	st, err := store.New(context.Background(), &store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	opts.Domains = []reconciler.Domain{
		{Key: "izhevsk", Label: "Izhevsk", DNSuffix: "DC=izh,DC=example,DC=com"},
		{Key: "kostroma", Label: "Kostroma"},
		{Key: "moscow", Label: "Moscow"},
	}
	m := &fakeHTTPMetrics{}
	ro.Metrics = m
	h := NewRouter(reconciler.New(st, opts), ro)
	return &testServer{handler: h, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return s.do(t, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func (s *testServer) seed(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusCreated, s.upload(t, "/api/v1/upload/directory?domain=izhevsk", "izh.csv", directoryCSV).Code)
	require.Equal(t, http.StatusCreated, s.upload(t, "/api/v1/upload/mfa", "mfa.csv", mfaCSV).Code)
	require.Equal(t, http.StatusCreated, s.upload(t, "/api/v1/upload/hr", "hr.csv", hrCSV).Code)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func assertProblem(t *testing.T, w *httptest.ResponseRecorder, status int) handlers.Problem {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, handlers.ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	p := decode[handlers.Problem](t, w)
	assert.Equal(t, status, p.Status)
	return p
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)

	w := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.HealthReport](t, w)
	assert.Equal(t, handlers.StateHealthy, resp.Status)

	w = s.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics are disabled")
}

func TestUploads(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)

	t.Run("directory", func(t *testing.T) {
		w := s.upload(t, "/api/v1/upload/directory?domain=izhevsk", "izh.csv", directoryCSV)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res := decode[reconciler.ImportResult](t, w)
		assert.Equal(t, 2, res.Upload.RowCount)
		assert.Equal(t, "izh.csv", res.Upload.Filename)
		assert.Equal(t, 2, res.Report.Rows)
	})

	t.Run("missing domain", func(t *testing.T) {
		w := s.upload(t, "/api/v1/upload/directory", "izh.csv", directoryCSV)
		assertProblem(t, w, http.StatusBadRequest)
	})

	t.Run("unknown domain", func(t *testing.T) {
		w := s.upload(t, "/api/v1/upload/directory?domain=paris", "p.csv", directoryCSV)
		p := assertProblem(t, w, http.StatusBadRequest)
		assert.Contains(t, p.Detail, "unknown domain")
	})

	t.Run("unsupported format", func(t *testing.T) {
		w := s.upload(t, "/api/v1/upload/mfa", "mfa.pdf", mfaCSV)
		assertProblem(t, w, http.StatusBadRequest)
	})

	t.Run("empty file", func(t *testing.T) {
		w := s.upload(t, "/api/v1/upload/hr", "hr.csv", "")
		assertProblem(t, w, http.StatusBadRequest)
	})

	t.Run("not multipart", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/upload/hr", strings.NewReader(hrCSV), "text/csv")
		assertProblem(t, w, http.StatusBadRequest)
	})

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())
		w := s.do(t, http.MethodPost, "/api/v1/upload/hr", &buf, mw.FormDataContentType())
		assertProblem(t, w, http.StatusBadRequest)
	})
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 64)
	w := s.upload(t, "/api/v1/upload/hr", "hr.csv", strings.Repeat("E1,Name,mail@x.com\n", 20))
	assertProblem(t, w, http.StatusRequestEntityTooLarge)
}

func TestStatsAndDomains(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)
	s.seed(t)

	w := s.do(t, http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[store.Stats](t, w)
	assert.Equal(t, 2, stats.Directory)
	assert.Equal(t, 2, stats.Mfa)
	assert.Equal(t, 1, stats.Hr)
	assert.Equal(t, "izh.csv", stats.LastUploads["directory:izhevsk"].Filename)

	w = s.do(t, http.MethodGet, "/api/v1/domains", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	domains := decode[[]reconciler.Domain](t, w)
	require.Len(t, domains, 3)
	assert.Equal(t, "izhevsk", domains[0].Key)
	assert.False(t, domains[0].Sync)
}

func TestConsolidatedRoute(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)
	s.seed(t)

	t.Run("json", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/consolidated", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		rows := decode[[]model.ConsolidatedRow](t, w)
		require.Len(t, rows, 3)
		assert.Equal(t, "ivanov", rows[0].Login)
	})

	t.Run("xlsx", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/consolidated?format=xlsx", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

		f, err := excelize.OpenReader(w.Body)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Consolidated")
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("csv", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/consolidated?format=csv", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
		assert.Equal(t, 4, strings.Count(w.Body.String(), "\n"))
	})

	t.Run("bad format", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/consolidated?format=pdf", nil, "")
		assertProblem(t, w, http.StatusBadRequest)
	})
}

type fakeBucket struct {
	keys []string
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b.keys = append(b.keys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveRoute(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t, reconciler.Options{}, 0)
		w := s.do(t, http.MethodPost, "/api/v1/consolidated/archive", nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, handlers.ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	})

	t.Run("uploads report", func(t *testing.T) {
		bucket := &fakeBucket{}
		archiver := export.NewArchiver(bucket, export.S3Config{Enabled: true, Bucket: "reports", Prefix: "idrecon"}, nil)
		s := newTestServerWith(t, reconciler.Options{}, RouterOptions{Archiver: archiver})
		s.seed(t)

		w := s.do(t, http.MethodPost, "/api/v1/consolidated/archive?format=csv", nil, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		report := decode[export.ArchivedReport](t, w)
		assert.Equal(t, "reports", report.Bucket)
		assert.Equal(t, export.FormatCSV, report.Format)
		assert.True(t, strings.HasPrefix(report.Key, "idrecon/consolidated"), report.Key)
		assert.Greater(t, report.Size, 0)
		assert.Equal(t, []string{report.Key}, bucket.keys)
	})

	t.Run("bad format", func(t *testing.T) {
		archiver := export.NewArchiver(&fakeBucket{}, export.S3Config{Bucket: "reports"}, nil)
		s := newTestServerWith(t, reconciler.Options{}, RouterOptions{Archiver: archiver})
		w := s.do(t, http.MethodPost, "/api/v1/consolidated/archive?format=pdf", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIdentityRoutes(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)
	s.seed(t)

	w := s.do(t, http.MethodGet, "/api/v1/identities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.IdentitySummary](t, w)
	assert.NotEmpty(t, list)

	w = s.do(t, http.MethodGet, "/api/v1/identities/E1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	card := decode[model.IdentityCard](t, w)
	require.Len(t, card.Directory, 1)
	assert.NotNil(t, card.Hr)

	w = s.do(t, http.MethodGet, "/api/v1/identities/nobody", nil, "")
	require.Equal(t, http.StatusOK, w.Code, "an unknown key is an empty card")
	emptyCard := decode[model.IdentityCard](t, w)
	assert.True(t, emptyCard.IsEmpty())

	w = s.do(t, http.MethodGet, "/api/v1/identities/nobody/duplicates", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestBrowseRoutes(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)
	s.seed(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/duplicates/logins", http.StatusOK},
		{"/api/v1/security/findings", http.StatusOK},
		{"/api/v1/groups/tree", http.StatusOK},
		{"/api/v1/groups/members?domain=izhevsk&group=VPN", http.StatusOK},
		{"/api/v1/groups/members?domain=izhevsk", http.StatusBadRequest},
		{"/api/v1/org/tree", http.StatusOK},
		{"/api/v1/org/members", http.StatusOK},
		{"/api/v1/structure/tree", http.StatusOK},
		{"/api/v1/structure/members?domain=izhevsk&path=Service", http.StatusOK},
		{"/api/v1/structure/members?path=Service", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/groups/members?domain=izhevsk&group=VPN", nil, "")
	members := decode[[]map[string]any](t, w)
	require.Len(t, members, 1)
	assert.Equal(t, "ivanov", members[0]["login"])
}

func TestOURulesRoutes(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)

	w := s.do(t, http.MethodGet, "/api/v1/settings/ou-rules", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, classify.DefaultRules(), decode[classify.RuleSet](t, w))

	body := `{"izhevsk": [["OU=Robots", "Service"]]}`
	w = s.do(t, http.MethodPut, "/api/v1/settings/ou-rules", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/settings/ou-rules", nil, "")
	rules := decode[classify.RuleSet](t, w)
	assert.Equal(t, classify.RuleSet{"izhevsk": {{Pattern: "OU=Robots", Type: classify.TypeService}}}, rules)

	t.Run("invalid type", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/settings/ou-rules",
			strings.NewReader(`{"izhevsk": [["OU=X", "Robot"]]}`), "application/json")
		assertProblem(t, w, http.StatusBadRequest)
	})

	t.Run("unknown domain", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/settings/ou-rules",
			strings.NewReader(`{"paris": [["OU=X", "User"]]}`), "application/json")
		assertProblem(t, w, http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/settings/ou-rules", strings.NewReader(`{`), "application/json")
		assertProblem(t, w, http.StatusBadRequest)
	})

	w = s.do(t, http.MethodPost, "/api/v1/settings/ou-rules/reset", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, classify.DefaultRules(), decode[classify.RuleSet](t, w))
}

func TestSyncRoute(t *testing.T) {
	syncer := dirsync.New(map[string]dirsync.LDAPConfig{
		"moscow": {Server: "dc.msk.example.com", BindDN: "svc", SearchBase: "DC=msk,DC=example,DC=com"},
	}).WithDialer(func(context.Context, dirsync.LDAPConfig) (dirsync.Conn, error) {
		return nil, io.ErrUnexpectedEOF
	})
	s := newTestServer(t, reconciler.Options{Syncer: syncer}, 0)

	assertProblem(t, s.do(t, http.MethodPost, "/api/v1/sync/paris", nil, ""), http.StatusBadRequest)
	assertProblem(t, s.do(t, http.MethodPost, "/api/v1/sync/kostroma", nil, ""), http.StatusNotFound)
	assertProblem(t, s.do(t, http.MethodPost, "/api/v1/sync/moscow", nil, ""), http.StatusBadGateway)
}

func TestRequestMetrics(t *testing.T) {
	s := newTestServer(t, reconciler.Options{}, 0)

	s.do(t, http.MethodGet, "/api/v1/identities/abc", nil, "")
	s.do(t, http.MethodGet, "/api/v1/nope", nil, "")

	s.metrics.mu.Lock()
	defer s.metrics.mu.Unlock()
	require.Len(t, s.metrics.requests, 2)
	assert.Equal(t, recordedRequest{"/api/v1/identities/{key}", http.StatusOK}, s.metrics.requests[0])
	assert.Equal(t, http.StatusNotFound, s.metrics.requests[1].status)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	assert.True(t, cfg.IsEnabled())
	cfg.ApplyDefaults()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 120*time.Second, cfg.WriteTimeout)

	disabled := false
	cfg.Enabled = &disabled
	assert.False(t, cfg.IsEnabled())

	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "127.0.0.1:9000", (&Config{Bind: "127.0.0.1", Port: 9000}).Address())
	assert.Equal(t, "[::1]:9000", (&Config{Bind: "::1", Port: 9000}).Address())

	srv := NewServer(Config{Port: 9999}, nil, RouterOptions{})
	assert.Equal(t, 9999, srv.Port())
	assert.NotNil(t, srv.Handler())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServerStartAndShutdown(t *testing.T) {
	port := freePort(t)
	srv := NewServer(Config{Port: port}, nil, RouterOptions{}).WithShutdownTimeout(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/nope", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.NoError(t, srv.Stop(context.Background()), "second stop is a no-op")
}

func TestServerStartFailsOnBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	srv := NewServer(Config{Port: l.Addr().(*net.TCPAddr).Port}, nil, RouterOptions{})
	err = srv.Start(context.Background())
	assert.ErrorContains(t, err, "API server failed")
}
