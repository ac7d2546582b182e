package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govlk/citizenport/internal/log"
	"github.com/govlk/citizenport/internal/portal"
)

// fakePool implements portal.Querier just far enough for the handler tests.
type fakePool struct {
	execTag  string
	execErr  error
	execArgs [][]any

	queryRows [][]any
	queryErr  error

	rowVals []any
	rowErr  error
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execArgs = append(f.execArgs, args)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	tag := f.execTag
	if tag == "" {
		tag = "INSERT 0 1"
	}
	return pgconn.NewCommandTag(tag), nil
}

func (f *fakePool) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakePoolRows{rows: f.queryRows}, nil
}

func (f *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return &fakePoolRow{vals: f.rowVals, err: f.rowErr}
}

type fakePoolRows struct {
	rows [][]any
	idx  int
}

func (r *fakePoolRows) Close()                                       {}
func (r *fakePoolRows) Err() error                                   { return nil }
func (r *fakePoolRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakePoolRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakePoolRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakePoolRows) RawValues() [][]byte                          { return nil }
func (r *fakePoolRows) Conn() *pgx.Conn                              { return nil }

func (r *fakePoolRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakePoolRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i, d := range dest {
		if i >= len(row) || row[i] == nil {
			continue
		}
		switch out := d.(type) {
		case *json.RawMessage:
			*out = row[i].(json.RawMessage)
		case *string:
			*out = row[i].(string)
		case *int64:
			*out = row[i].(int64)
		default:
			return errors.New("unsupported scan destination")
		}
	}
	return nil
}

type fakePoolRow struct {
	vals []any
	err  error
}

func (r *fakePoolRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	rows := &fakePoolRows{rows: [][]any{r.vals}}
	rows.Next()
	return rows.Scan(dest...)
}

// handlerFixture wires a full route table around the fake pool, with an
// authenticated admin cookie ready to use.
type handlerFixture struct {
	mux      *http.ServeMux
	sessions *sessionManager
	cookie   *http.Cookie
	pool     *fakePool
}

func newHandlerFixture(t *testing.T, pool *fakePool) *handlerFixture {
	t.Helper()

	sessions := newSessionManager(testSecret, false)
	store := portal.NewStore(pool, log.NewNop())
	logger := log.NewNop()

	mux := http.NewServeMux()
	NewServiceHandler(store, sessions, logger).RegisterRoutes(mux)
	NewEngagementHandler(store, sessions, logger).RegisterRoutes(mux)
	NewAdminHandler(store, &stubAnswers{}, sessions, logger).RegisterRoutes(mux)

	return &handlerFixture{
		mux:      mux,
		sessions: sessions,
		cookie:   issueCookie(t, sessions, "admin"),
		pool:     pool,
	}
}

func (f *handlerFixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.AddCookie(f.cookie)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestServiceHandler_List(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{queryRows: [][]any{
		{json.RawMessage(`{"id":"ministry_it"}`)},
		{json.RawMessage(`{"id":"ministry_education"}`)},
	}})

	rec := f.do(http.MethodGet, "/api/services", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}

func TestServiceHandler_GetNotFound(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{rowErr: pgx.ErrNoRows})
	rec := f.do(http.MethodGet, "/api/services/missing", "", false)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestServiceHandler_Upsert(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{})
	rec := f.do(http.MethodPost, "/api/admin/services",
		`{"id":"ministry_it","name":{"en":"Ministry of IT"}}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"ministry_it"`)
	assert.Len(t, f.pool.execArgs, 1)
}

func TestServiceHandler_UpsertRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{broken`},
		{"missing id", `{"name":{"en":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newHandlerFixture(t, &fakePool{})
			rec := f.do(http.MethodPost, "/api/admin/services", tt.body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServiceHandler_UpsertRequiresSession(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{})
	rec := f.do(http.MethodPost, "/api/admin/services", `{"id":"x"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.pool.execArgs)
}

func TestServiceHandler_DeleteNotFound(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{execTag: "DELETE 0"})
	rec := f.do(http.MethodDelete, "/api/admin/services/missing", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEngagementHandler_Log(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{})
	rec := f.do(http.MethodPost, "/api/engagement",
		`{"user_id":"visitor-1","age":"34","job":"teacher","desires":["passport"],"service":"ministry_education"}`,
		false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	require.Len(t, f.pool.execArgs, 1)

	age, ok := f.pool.execArgs[0][2].(*int)
	require.True(t, ok, "age arg type %T", f.pool.execArgs[0][2])
	assert.Equal(t, 34, *age)
}

func TestEngagementHandler_LogDropsBadAge(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{})
	rec := f.do(http.MethodPost, "/api/engagement", `{"age":"unknown"}`, false)

	require.Equal(t, http.StatusOK, rec.Code)
	age, ok := f.pool.execArgs[0][2].(*int)
	require.True(t, ok)
	assert.Nil(t, age)
}

func TestParseAge(t *testing.T) {
	t.Parallel()

	intp := func(n int) *int { return &n }
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{"number", `42`, intp(42)},
		{"numeric string", `"27"`, intp(27)},
		{"empty string", `""`, nil},
		{"word", `"young"`, nil},
		{"null", `null`, nil},
		{"absent", ``, nil},
		{"object", `{"years":30}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseAge(json.RawMessage(tt.raw))
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestAdminHandler_Login(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{rowVals: []any{portal.PasswordDigest("admin123")}})
	rec := f.do(http.MethodPost, "/api/admin/login", `{"username":"admin","password":"admin123"}`, false)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	username, err := f.sessions.verify(requestWithCookie(cookies[0]))
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}

func TestAdminHandler_LoginRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pool     *fakePool
		body     string
		wantCode int
	}{
		{
			name:     "wrong password",
			pool:     &fakePool{rowVals: []any{portal.PasswordDigest("admin123")}},
			body:     `{"username":"admin","password":"letmein"}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown username",
			pool:     &fakePool{rowErr: pgx.ErrNoRows},
			body:     `{"username":"ghost","password":"admin123"}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "missing fields",
			pool:     &fakePool{},
			body:     `{"username":"admin"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "database failure",
			pool:     &fakePool{rowErr: errors.New("timeout")},
			body:     `{"username":"admin","password":"admin123"}`,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newHandlerFixture(t, tt.pool)
			rec := f.do(http.MethodPost, "/api/admin/login", tt.body, false)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Empty(t, rec.Result().Cookies(), "no session on failed login")
		})
	}
}

func TestAdminHandler_Logout(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{})
	rec := f.do(http.MethodPost, "/api/admin/logout", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAdminHandler_ManageData(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{rowVals: []any{int64(12)}})
	rec := f.do(http.MethodGet, "/api/admin/manage/data", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "connected", body.Data["database"])
	assert.Equal(t, "online", body.Data["ai_system"])
	assert.EqualValues(t, 6, body.Data["knowledge_base_size"])
	assert.NotEmpty(t, body.Data["timestamp"])
}

func TestAdminHandler_IndexDocuments(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{})
	rec := f.do(http.MethodPost, "/api/admin/index-documents",
		`{"documents":[{"text":"passport guide","source":"https://gov.lk/a","title":"Passports"}]}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully indexed 1 documents")
}

func TestAdminHandler_IndexDocumentsEmpty(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, &fakePool{})
	rec := f.do(http.MethodPost, "/api/admin/index-documents", `{"documents":[]}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
