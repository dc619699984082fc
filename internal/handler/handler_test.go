package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mobility-ops/console/backend/internal/config"
	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-prueba"

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.CookieName = "__mobility_console_token"
	cfg.Dispatch.TimeZone = "UTC"
	cfg.Dispatch.EveningHour = 21
	cfg.Dispatch.MorningHour = 7
	cfg.Dispatch.SundayMorningHour = 8
	cfg.Server.MaxUploadSize = 1 << 20

	h, err := NewHandler(cfg, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func signToken(t *testing.T, role domain.Role, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "0b9f6c1e-3a52-4c8e-9d7a-5f1b2c3d4e5f",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h *Handler, method, target, token, body string) testResponse {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthRequiresToken(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodGet, "/shift-codes", "", "")

	assert.False(t, resp.Success)
	assert.Equal(t, "sesión no iniciada", resp.Message)
}

func TestAuthRejectsForeignToken(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodGet, "/shift-codes", signToken(t, domain.RoleAdmin, "otro-secreto"), "")

	assert.False(t, resp.Success)
	assert.Equal(t, "token inválido", resp.Message)
}

func TestAuthAcceptsCookie(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/shift-codes", nil)
	req.AddCookie(&http.Cookie{Name: "__mobility_console_token", Value: signToken(t, domain.RoleAgent, testSecret)})
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestGetShiftCodes(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodGet, "/shift-codes", signToken(t, domain.RoleAgent, testSecret), "")
	require.True(t, resp.Success)

	var entries []struct {
		Code    string `json:"code"`
		Working bool   `json:"working"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, "ADM", entries[0].Code)
	assert.True(t, entries[0].Working)
}

func TestResolveShiftCode(t *testing.T) {
	h := newTestHandler(t)
	token := signToken(t, domain.RoleAgent, testSecret)

	resp := do(t, h, http.MethodGet, "/shift-codes/resolve?code=n2206&date=2024-03-04", token, "")
	require.True(t, resp.Success)

	var interval struct {
		Code  string     `json:"code"`
		Start *time.Time `json:"start"`
		End   *time.Time `json:"end"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &interval))
	assert.Equal(t, "N2206", interval.Code)
	require.NotNil(t, interval.Start)
	require.NotNil(t, interval.End)
	assert.True(t, interval.Start.Equal(time.Date(2024, time.March, 4, 22, 0, 0, 0, time.UTC)))
	assert.True(t, interval.End.Equal(time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC)))

	resp = do(t, h, http.MethodGet, "/shift-codes/resolve?code=M0715&date=04-03-2024", token, "")
	assert.False(t, resp.Success)

	resp = do(t, h, http.MethodGet, "/shift-codes/resolve", token, "")
	assert.False(t, resp.Success)
}

func TestPutShiftCodeRejectsInvalidHours(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodPut, "/shift-codes/cap", signToken(t, domain.RoleAdmin, testSecret),
		`{"description":"Capacitación","working":true,"start":"25:00","end":"18:00"}`)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "hora de inicio inválida")
}

func TestRoleRestrictions(t *testing.T) {
	h := newTestHandler(t)
	agent := signToken(t, domain.RoleAgent, testSecret)
	supervisor := signToken(t, domain.RoleSupervisor, testSecret)

	for _, tc := range []struct {
		method, target, token string
	}{
		{http.MethodPost, "/rosters/import", agent},
		{http.MethodGet, "/manifests/dispatch", agent},
		{http.MethodPost, "/identity/resolve", agent},
		{http.MethodPut, "/shift-codes/CAP", supervisor},
		{http.MethodGet, "/backfill-suggestions", supervisor},
		{http.MethodPost, "/predata/import", supervisor},
	} {
		resp := do(t, h, tc.method, tc.target, tc.token, "")
		assert.False(t, resp.Success, tc.target)
		assert.Equal(t, "permisos insuficientes", resp.Message, tc.target)
	}
}

func TestImportRosterRequiresCSVUpload(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodPost, "/rosters/import", signToken(t, domain.RoleSupervisor, testSecret), "")

	assert.False(t, resp.Success)
	assert.Equal(t, "no se pudo leer el formulario o el archivo es demasiado grande", resp.Message)
}

func TestDispatchManifestRejectsBadDate(t *testing.T) {
	h := newTestHandler(t)

	resp := do(t, h, http.MethodGet, "/manifests/dispatch?date=manana", signToken(t, domain.RoleSupervisor, testSecret), "")

	assert.False(t, resp.Success)
	assert.Equal(t, "fecha inválida, usa el formato AAAA-MM-DD", resp.Message)
}

func TestNewMatchDataFlattensRecord(t *testing.T) {
	rec := &identity.IdentityRecord{
		Identifier: "150000005",
		Name:       "Marta Díaz",
		Address:    "PASAJE LAS ROSAS 12",
		ProfileID:  "p-4",
		Sources:    []identity.Source{identity.SourceProfile, identity.SourcePredata},
	}

	data := newMatchData(&identity.Match{Record: rec, Strategy: identity.StrategyName, Score: 1}, "")
	assert.Equal(t, "p-4", data.ProfileID)
	assert.Equal(t, "PASAJE LAS ROSAS 12", data.Address)
	assert.Equal(t, identity.StrategyName, data.Strategy)
	assert.Empty(t, data.SuggestedIdentifier)

	data = newMatchData(&identity.Match{Record: rec, Strategy: identity.StrategyFuzzyName, Weak: true, Backfill: true}, "16.000.000-1")
	assert.True(t, data.Backfill)
	assert.Equal(t, "160000001", data.SuggestedIdentifier)
	assert.Equal(t, "150000005", data.Identifier)

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"profileId":"p-4"`)
	assert.NotContains(t, string(raw), `"record"`)
}

func TestWriteAttachmentSetsDownloadHeaders(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/manifests/dispatch", nil)

	h.writeAttachment(rec, req, "despacho_2024-03-01.csv", "text/csv; charset=utf-8", []byte("a;b\n"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="despacho_2024-03-01.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a;b\n", rec.Body.String())
}
