package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	memcache "github.com/digipraman/loantrack/internal/cache/memory"
	"github.com/digipraman/loantrack/internal/http/controllers"
	"github.com/digipraman/loantrack/internal/http/router"
	"github.com/digipraman/loantrack/internal/store/core"
	"github.com/digipraman/loantrack/internal/store/memory"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctrls := controllers.New(memory.New(), memcache.New(time.Minute), time.Minute, controllers.Limits{})
	srv := httptest.NewServer(router.New(router.Deps{Controllers: ctrls}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func doGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func createOrg(t *testing.T, base, name string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/organizations/", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return body["id"].(string)
}

func createUser(t *testing.T, base, orgID, mobile string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/users/", map[string]any{
		"_org_id": orgID, "role": "beneficiary", "name": "u-" + mobile, "mobile": mobile,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return body["id"].(string)
}

func TestWorkflowEndToEnd(t *testing.T) {
	srv := newServer(t)
	base := srv.URL

	orgID := createOrg(t, base, "Dept of Rural Development")

	// Scheme under the org; duplicate code conflicts.
	resp, scheme := doJSON(t, http.MethodPost, base+"/schemes/", map[string]any{
		"_org_id": orgID, "code": "PMAY-2025", "name": "Housing Subsidy",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, orgID, scheme["_org_id"])

	resp, body := doJSON(t, http.MethodPost, base+"/schemes/", map[string]any{
		"_org_id": orgID, "code": "PMAY-2025", "name": "Duplicate",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "SCHEME_CODE_TAKEN", body["code"])

	// Code lookup, twice to cover the cached path.
	for i := 0; i < 2; i++ {
		resp, raw := doGet(t, base+"/schemes/code/PMAY-2025")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var sc core.Scheme
		require.NoError(t, json.Unmarshal(raw, &sc))
		require.Equal(t, "Housing Subsidy", sc.Name)
	}

	userID := createUser(t, base, orgID, "9876543210")

	resp, device := doJSON(t, http.MethodPost, base+"/devices/", map[string]any{
		"_user_id": userID, "device_fingerprint": "fp-android-001", "trust_score": 0.75,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	deviceID := device["id"].(string)
	require.Equal(t, userID, device["_user_id"])

	// Deleting the user cascades to its devices.
	req, _ := http.NewRequest(http.MethodDelete, base+"/users/"+userID, nil)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	require.Equal(t, http.StatusNoContent, delResp.StatusCode)

	resp, _ = doGet(t, base+"/devices/"+deviceID)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrganizationDeleteWithDependents(t *testing.T) {
	srv := newServer(t)
	base := srv.URL

	orgID := createOrg(t, base, "org")
	createUser(t, base, orgID, "9876543210")

	req, _ := http.NewRequest(http.MethodDelete, base+"/organizations/"+orgID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ORGANIZATION_IN_USE", body["code"])
}

func TestUserValidation(t *testing.T) {
	srv := newServer(t)
	base := srv.URL
	orgID := createOrg(t, base, "org")

	cases := []struct {
		name       string
		payload    map[string]any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing mobile",
			payload:    map[string]any{"_org_id": orgID, "role": "beneficiary", "name": "x"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FIELDS",
		},
		{
			name:       "mobile too short",
			payload:    map[string]any{"_org_id": orgID, "role": "beneficiary", "name": "x", "mobile": "12345"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "bad role",
			payload:    map[string]any{"_org_id": orgID, "role": "superuser", "name": "x", "mobile": "9876543210"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "bad email",
			payload:    map[string]any{"_org_id": orgID, "role": "beneficiary", "name": "x", "mobile": "9876543210", "email": "not-an-email"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unknown org",
			payload:    map[string]any{"_org_id": "00000000-0000-0000-0000-000000000000", "role": "beneficiary", "name": "x", "mobile": "9876543210"},
			wantStatus: http.StatusNotFound,
			wantCode:   "ORGANIZATION_NOT_FOUND",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, base+"/users/", tc.payload)
			require.Equal(t, tc.wantStatus, resp.StatusCode, "body: %v", body)
			require.Equal(t, tc.wantCode, body["code"])
		})
	}
}

func TestUserMobileFormatted(t *testing.T) {
	srv := newServer(t)
	base := srv.URL
	orgID := createOrg(t, base, "org")

	// Formatting characters don't count against the digit rule.
	resp, body := doJSON(t, http.MethodPost, base+"/users/", map[string]any{
		"_org_id": orgID, "role": "officer", "name": "x", "mobile": "+91-98765-43210",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
}

func TestUserConflicts(t *testing.T) {
	srv := newServer(t)
	base := srv.URL
	orgID := createOrg(t, base, "org")

	email := "a@example.com"
	resp, body := doJSON(t, http.MethodPost, base+"/users/", map[string]any{
		"_org_id": orgID, "role": "beneficiary", "name": "a", "mobile": "1111111111", "email": email,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	resp, body = doJSON(t, http.MethodPost, base+"/users/", map[string]any{
		"_org_id": orgID, "role": "beneficiary", "name": "b", "mobile": "1111111111",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "MOBILE_TAKEN", body["code"])

	resp, body = doJSON(t, http.MethodPost, base+"/users/", map[string]any{
		"_org_id": orgID, "role": "beneficiary", "name": "c", "mobile": "2222222222", "email": email,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "EMAIL_TAKEN", body["code"])
}

func TestUserGetByMobileAndPartialUpdate(t *testing.T) {
	srv := newServer(t)
	base := srv.URL
	orgID := createOrg(t, base, "org")
	userID := createUser(t, base, orgID, "9876543210")

	resp, raw := doGet(t, base+"/users/mobile/9876543210")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u core.User
	require.NoError(t, json.Unmarshal(raw, &u))
	require.Equal(t, userID, u.ID)
	require.Equal(t, "en", u.Locale)
	require.Equal(t, "active", u.Status)

	// PATCH one field, rest untouched.
	resp, body := doJSON(t, http.MethodPatch, base+"/users/"+userID, map[string]any{"name": "Asha"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	require.Equal(t, "Asha", body["name"])
	require.Equal(t, "9876543210", body["mobile"])
	require.Equal(t, "active", body["status"])
}

func TestDeviceTrustScoreValidation(t *testing.T) {
	srv := newServer(t)
	base := srv.URL
	orgID := createOrg(t, base, "org")
	userID := createUser(t, base, orgID, "9876543210")

	for _, score := range []float64{1.01, -0.01, 0.123} {
		resp, body := doJSON(t, http.MethodPost, base+"/devices/", map[string]any{
			"_user_id": userID, "device_fingerprint": fmt.Sprintf("fp-%v", score), "trust_score": score,
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "score=%v body=%v", score, body)
		require.Equal(t, "VALIDATION_FAILED", body["code"])
	}

	// Boundary values pass.
	for i, score := range []float64{0, 1, 0.75} {
		resp, body := doJSON(t, http.MethodPost, base+"/devices/", map[string]any{
			"_user_id": userID, "device_fingerprint": fmt.Sprintf("fp-ok-%d", i), "trust_score": score,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "score=%v body=%v", score, body)
	}
}

func TestDeviceFingerprintLookupAndConflict(t *testing.T) {
	srv := newServer(t)
	base := srv.URL
	orgID := createOrg(t, base, "org")
	userID := createUser(t, base, orgID, "1111111111")
	otherID := createUser(t, base, orgID, "2222222222")

	resp, body := doJSON(t, http.MethodPost, base+"/devices/", map[string]any{
		"_user_id": userID, "device_fingerprint": "fp-shared",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	resp, body = doJSON(t, http.MethodPost, base+"/devices/", map[string]any{
		"_user_id": otherID, "device_fingerprint": "fp-shared",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "FINGERPRINT_TAKEN", body["code"])

	for i := 0; i < 2; i++ {
		resp, raw := doGet(t, base+"/devices/fingerprint/fp-shared")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var d core.Device
		require.NoError(t, json.Unmarshal(raw, &d))
		require.Equal(t, userID, d.UserID)
	}

	resp, raw := doGet(t, base+"/devices/user/"+userID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var devices []core.Device
	require.NoError(t, json.Unmarshal(raw, &devices))
	require.Len(t, devices, 1)
}

func TestUserDeleteInvalidatesFingerprintCache(t *testing.T) {
	srv := newServer(t)
	base := srv.URL
	orgID := createOrg(t, base, "org")
	userID := createUser(t, base, orgID, "9876543210")

	resp, body := doJSON(t, http.MethodPost, base+"/devices/", map[string]any{
		"_user_id": userID, "device_fingerprint": "fp-cached",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	// Warm the fingerprint cache.
	resp, _ = doGet(t, base+"/devices/fingerprint/fp-cached")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodDelete, base+"/users/"+userID, nil)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	require.Equal(t, http.StatusNoContent, delResp.StatusCode)

	// The cascade removed the device; the cached entry must not outlive it.
	resp, _ = doGet(t, base+"/devices/fingerprint/fp-cached")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPagination(t *testing.T) {
	srv := newServer(t)
	base := srv.URL

	for i := 0; i < 5; i++ {
		createOrg(t, base, fmt.Sprintf("org-%d", i))
	}

	resp, raw := doGet(t, base+"/organizations/?skip=1&limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orgs []core.Organization
	require.NoError(t, json.Unmarshal(raw, &orgs))
	require.Len(t, orgs, 2)
	require.Equal(t, "org-1", orgs[0].Name)
	require.Equal(t, "org-2", orgs[1].Name)

	resp, _ = doGet(t, base+"/organizations/?skip=-1")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doGet(t, base+"/organizations/?limit=0")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvalidIDAndUnknownRoutes(t *testing.T) {
	srv := newServer(t)
	base := srv.URL

	resp, body := doJSON(t, http.MethodPatch, base+"/organizations/not-a-uuid", map[string]any{"name": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INVALID_PARAMETER", body["code"])

	resp, _ = doGet(t, base+"/organizations/00000000-0000-0000-0000-000000000000")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doGet(t, base+"/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRejectsUnknownJSONFields(t *testing.T) {
	srv := newServer(t)
	base := srv.URL

	resp, body := doJSON(t, http.MethodPost, base+"/organizations/", map[string]any{
		"name": "org", "surprise": true,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %v", body)
	require.Equal(t, "INVALID_JSON", body["code"])
}

func TestHealthEndpoints(t *testing.T) {
	srv := newServer(t)
	base := srv.URL

	resp, raw := doGet(t, base+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "healthy")

	resp, raw = doGet(t, base+"/health/db")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "connected")

	resp, raw = doGet(t, base+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "Loan Verification Workflow API")
}
