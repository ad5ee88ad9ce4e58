package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/config"
	"volunteer-match/internal/pkg/jwt"
	"volunteer-match/internal/repository/memory"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type caller struct {
	id    uuid.UUID
	token string
}

type testAPI struct {
	t         *testing.T
	app       *App
	admin     caller
	org       caller
	volunteer caller
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := config.Config{
		App:    config.AppConfig{AppName: "volunteer-match", Environment: "test", HTTPPort: "0", StorageDriver: "memory"},
		Auth:   config.AuthConfig{AccessSecret: "test-access-secret", AccessExpiresIn: time.Hour},
		Search: config.SearchConfig{DefaultLimit: 50, MaxLimit: 200},
	}
	c := NewContainerWithStore(cfg, nil, memory.NewStore())
	a := New(c)
	t.Cleanup(func() { _ = c.Close() })

	mint := func(role jwt.Role) caller {
		id := uuid.New()
		tok, err := c.JWT.GenerateAccessToken(id, role)
		require.NoError(t, err)
		return caller{id: id, token: tok}
	}

	return &testAPI{
		t:         t,
		app:       a,
		admin:     mint(jwt.RoleAdmin),
		org:       mint(jwt.RoleOrganization),
		volunteer: mint(jwt.RoleVolunteer),
	}
}

func (api *testAPI) do(as *caller, method, path string, body any) (int, envelope) {
	api.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(api.t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+as.token)
	}

	resp, err := api.app.Fiber.Test(req)
	require.NoError(api.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(api.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (api *testAPI) ok(as *caller, method, path string, body any, out any) {
	api.t.Helper()
	status, env := api.do(as, method, path, body)
	require.Less(api.t, status, 300, "%s %s: %s", method, path, env.Message)
	if out != nil {
		require.NoError(api.t, json.Unmarshal(env.Data, out))
	}
}

type idOnly struct {
	ID uuid.UUID `json:"id"`
}

func (api *testAPI) catalog(skills map[string]string) map[string]uuid.UUID {
	api.t.Helper()
	var cat idOnly
	api.ok(&api.admin, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Technical"}, &cat)

	ids := map[string]uuid.UUID{}
	for name, verification := range skills {
		var s idOnly
		api.ok(&api.admin, http.MethodPost, "/api/v1/skills", map[string]any{
			"name":                     name,
			"category_id":              cat.ID,
			"verification_requirement": verification,
		}, &s)
		ids[name] = s.ID
	}
	return ids
}

func TestAPI_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(nil, http.MethodGet, "/api/v1/skills", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.Status)

	status, _ = api.do(&caller{token: "garbage"}, http.MethodGet, "/api/v1/skills", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_RoleChecks(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(&api.volunteer, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Medical"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(&api.admin, http.MethodGet, "/api/v1/me/skills", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_VerificationFlow(t *testing.T) {
	api := newTestAPI(t)
	ids := api.catalog(map[string]string{"Python": "document"})

	var vs struct {
		ID                 uuid.UUID `json:"id"`
		VerificationStatus string    `json:"verification_status"`
	}
	api.ok(&api.volunteer, http.MethodPost, "/api/v1/me/skills", map[string]any{
		"skill_id":          ids["Python"],
		"proficiency_level": "advanced",
	}, &vs)
	assert.Equal(t, "pending", vs.VerificationStatus)

	var req struct {
		ID           uuid.UUID `json:"id"`
		ReviewStatus string    `json:"review_status"`
	}
	api.ok(&api.volunteer, http.MethodPost, "/api/v1/me/skills/"+vs.ID.String()+"/verification-requests",
		map[string]any{"document_ref": "cert-123", "links": []string{"https://example.org/cert"}}, &req)
	assert.Equal(t, "pending", req.ReviewStatus)

	var outcome struct {
		Request struct {
			ReviewStatus string `json:"review_status"`
		} `json:"request"`
		VolunteerSkill struct {
			VerificationStatus    string `json:"verification_status"`
			VerificationRequested bool   `json:"verification_requested"`
		} `json:"volunteer_skill"`
	}
	api.ok(&api.admin, http.MethodPost, "/api/v1/verification-requests/"+req.ID.String()+"/review",
		map[string]any{"decision": "approved", "review_notes": "looks good"}, &outcome)
	assert.Equal(t, "approved", outcome.Request.ReviewStatus)
	assert.Equal(t, "verified", outcome.VolunteerSkill.VerificationStatus)
	assert.False(t, outcome.VolunteerSkill.VerificationRequested)

	status, env := api.do(&api.volunteer, http.MethodPost, "/api/v1/me/skills/"+vs.ID.String()+"/verification-requests",
		map[string]any{"notes": "again"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(env.Data), `"code":"already_verified"`)
}

func TestAPI_MissionCandidatesAndEligibility(t *testing.T) {
	api := newTestAPI(t)
	ids := api.catalog(map[string]string{"Python": "none", "JavaScript": "none"})
	mission := uuid.New()
	base := "/api/v1/missions/" + mission.String()

	api.ok(&api.org, http.MethodPost, base+"/requirements/bulk", map[string]any{
		"skills": []map[string]any{
			{"skill_id": ids["Python"], "requirement_level": "required", "min_proficiency_level": "intermediate"},
			{"skill_id": ids["JavaScript"], "requirement_level": "preferred"},
		},
	}, nil)
	api.ok(&api.volunteer, http.MethodPost, "/api/v1/me/skills", map[string]any{
		"skill_id":          ids["Python"],
		"proficiency_level": "advanced",
	}, nil)

	var candidates []struct {
		VolunteerID      uuid.UUID `json:"volunteer_id"`
		RequiredScore    float64   `json:"required_score"`
		PreferredScore   float64   `json:"preferred_score"`
		OverallScore     float64   `json:"overall_score"`
		IsFullyQualified bool      `json:"is_fully_qualified"`
		Eligibility      struct {
			CanApply bool `json:"can_apply"`
		} `json:"eligibility"`
	}
	api.ok(&api.org, http.MethodGet, base+"/candidates", nil, &candidates)
	assert.Empty(t, candidates, "unverified holdings do not count by default")

	api.ok(&api.org, http.MethodGet, base+"/candidates?verified_only=false", nil, &candidates)
	require.Len(t, candidates, 1)
	assert.Equal(t, api.volunteer.id, candidates[0].VolunteerID)
	assert.Equal(t, 100.0, candidates[0].RequiredScore)
	assert.Equal(t, 0.0, candidates[0].PreferredScore)
	assert.Equal(t, 70.0, candidates[0].OverallScore)
	assert.True(t, candidates[0].IsFullyQualified)
	assert.True(t, candidates[0].Eligibility.CanApply)

	var mine struct {
		CanApply       bool     `json:"can_apply"`
		MissingReasons []string `json:"missing_reasons"`
	}
	api.ok(&api.volunteer, http.MethodGet, base+"/eligibility", nil, &mine)
	assert.True(t, mine.CanApply)
	assert.Empty(t, mine.MissingReasons)
}

func TestAPI_ErrorEnvelope(t *testing.T) {
	api := newTestAPI(t)
	api.catalog(map[string]string{"Python": "none"})

	var cat idOnly
	api.ok(&api.admin, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Medical"}, &cat)

	status, env := api.do(&api.admin, http.MethodPost, "/api/v1/skills",
		map[string]any{"name": "python", "category_id": cat.ID})
	assert.Equal(t, http.StatusConflict, status)
	var data struct {
		Code   string `json:"code"`
		Entity string `json:"entity"`
		Field  string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "duplicate", data.Code)
	assert.Equal(t, "skill", data.Entity)
	assert.Equal(t, "name", data.Field)

	status, _ = api.do(&api.admin, http.MethodPost, "/api/v1/categories", `{"name":"X","colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = api.do(&api.admin, http.MethodPost, "/api/v1/skills",
		map[string]any{"name": "CPR", "category_id": cat.ID, "verification_requirement": "notarised"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Data), `"code":"invalid_enum_value"`)

	status, _ = api.do(&api.admin, http.MethodGet, "/api/v1/skills/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(&api.admin, http.MethodGet, "/api/v1/skills/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_CategoryDeleteReassign(t *testing.T) {
	api := newTestAPI(t)

	var root, mid, a, b idOnly
	api.ok(&api.admin, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Root"}, &root)
	api.ok(&api.admin, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Mid", "parent_id": root.ID}, &mid)
	api.ok(&api.admin, http.MethodPost, "/api/v1/categories", map[string]any{"name": "A", "parent_id": mid.ID}, &a)
	api.ok(&api.admin, http.MethodPost, "/api/v1/categories", map[string]any{"name": "B", "parent_id": mid.ID}, &b)

	status, _ := api.do(&api.admin, http.MethodDelete, "/api/v1/categories/"+mid.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, status)

	api.ok(&api.admin, http.MethodDelete, "/api/v1/categories/"+mid.ID.String()+"?reassign=true", nil, nil)

	var got struct {
		ParentID *uuid.UUID `json:"parent_id"`
	}
	api.ok(&api.admin, http.MethodGet, "/api/v1/categories/"+a.ID.String(), nil, &got)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)

	status, env := api.do(&api.admin, http.MethodPut, "/api/v1/categories/"+root.ID.String()+"/parent",
		map[string]any{"parent_id": b.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Data), `"code":"circular_reference"`)
}

func TestAPI_SearchDefaults(t *testing.T) {
	api := newTestAPI(t)
	ids := api.catalog(map[string]string{"Python": "none", "JavaScript": "none"})
	api.ok(&api.volunteer, http.MethodPost, "/api/v1/me/skills", map[string]any{
		"skill_id":          ids["Python"],
		"proficiency_level": "Advanced",
	}, nil)

	var matches []struct {
		VolunteerID uuid.UUID `json:"volunteer_id"`
	}
	bySkills := func(body map[string]any) int {
		t.Helper()
		matches = nil
		api.ok(&api.org, http.MethodPost, "/api/v1/search/volunteers/by-skills", body, &matches)
		return len(matches)
	}
	both := []uuid.UUID{ids["Python"], ids["JavaScript"]}

	assert.Zero(t, bySkills(map[string]any{"skill_ids": []uuid.UUID{ids["Python"]}}))
	assert.Equal(t, 1, bySkills(map[string]any{"skill_ids": []uuid.UUID{ids["Python"]}, "verified_only": false}))
	assert.Zero(t, bySkills(map[string]any{"skill_ids": both, "verified_only": false}))
	assert.Equal(t, 1, bySkills(map[string]any{"skill_ids": both, "verified_only": false, "match_type": "any"}))
	assert.Equal(t, 1, bySkills(map[string]any{
		"skill_ids": both, "verified_only": false, "match_type": "ANY", "min_proficiency": "Intermediate",
	}))

	status, env := api.do(&api.org, http.MethodPost, "/api/v1/search/volunteers/by-skills",
		map[string]any{"skill_ids": both, "min_proficiency": "guru"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Data), `"field":"min_proficiency"`)

	var py struct {
		CategoryID uuid.UUID `json:"category_id"`
	}
	api.ok(&api.admin, http.MethodGet, "/api/v1/skills/"+ids["Python"].String(), nil, &py)
	byCategory := "/api/v1/search/volunteers/by-category/" + py.CategoryID.String()

	api.ok(&api.org, http.MethodGet, byCategory, nil, &matches)
	assert.Empty(t, matches)
	api.ok(&api.org, http.MethodGet, byCategory+"?verified_only=false&min_proficiency=ADVANCED", nil, &matches)
	assert.Len(t, matches, 1)

	status, _ = api.do(&api.org, http.MethodGet, byCategory+"?min_proficiency=guru", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(nil, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, status)

	api.do(&api.admin, http.MethodGet, "/api/v1/categories", nil)

	resp, err := api.app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "skills_http_requests_total")
}
