package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igortacu/summer-hackathon-sub000/core/task"
	"github.com/igortacu/summer-hackathon-sub000/core/user"
	"github.com/igortacu/summer-hackathon-sub000/tests"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t, "")
	testutil.CreateUser(t, app.stores.User, "Taken", "taken@test.md", testutil.Password, "", "", true)

	newUser := func(email, role, pwd string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            "Ana Popescu",
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            role,
			PBLGroup:        "FAF-231",
			GithubURL:       "https://github.com/ana/pbl",
		})
	}

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/v1/users/register", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":             "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "admin role refused", method: http.MethodPost, path: "/v1/users/register",
			body:     newUser("ana@test.md", user.RoleAdmin, testutil.Password),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": errNoPermsToSetRole}),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/users/register",
			body:     newUser("TAKEN@test.md", "", testutil.Password),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/users/register",
			body:     newUser("ana@test.md", "", "short"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("mentor registered", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/register", newUser(" Ana@Test.md ", user.RoleMentor, testutil.Password))
		app.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "ana@test.md", got.Email)
		assert.Equal(t, user.RoleMentor, got.Role)
		assert.Equal(t, "FAF-231", got.PBLGroup)
		assert.True(t, got.IsActive)
		assert.NotContains(t, rec.Body.String(), "password")

		stored, err := app.stores.User.GetUserByEmail(context.Background(), "ana@test.md")
		require.NoError(t, err)
		assert.NoError(t, stored.CheckPassword(testutil.Password))
	})
}

func Test_userApi_login(t *testing.T) {
	app := setup(t, "")
	testutil.CreateUser(t, app.stores.User, "Active", "active@test.md", testutil.Password, "", "", true)
	testutil.CreateUser(t, app.stores.User, "Gone", "gone@test.md", testutil.Password, "", "", false)

	login := func(email, pwd string) []byte {
		return marchallObj(t, LoginRequest{Email: email, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "invalid email", method: http.MethodPost, path: "/v1/users/login", body: login("nope", "x"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/users/login", body: login("who@test.md", testutil.Password),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login", body: login("active@test.md", "wrong"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/users/login", body: login("gone@test.md", testutil.Password),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", login("ACTIVE@test.md", testutil.Password))
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		usr, err := app.stores.User.GetUserByEmail(context.Background(), "active@test.md")
		require.NoError(t, err)
		assert.False(t, usr.LastLogin.IsZero(), "last login should be set")

		// the issued token is usable
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+usr.ID, resp.Token)
		app.do(req, rec)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t, "")
	usr := testutil.CreateUser(t, app.stores.User, "Student", "student@test.md", "", "", "", true)
	gone := testutil.CreateUser(t, app.stores.User, "Gone", "gone@test.md", "", "", "", false)

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/users/token-refresh", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/users/token-refresh", token: getToken(t, app.conf, gone),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("refresh expired", func(t *testing.T) {
		old := NewClaims(app.conf, usr, time.Now().Add(-8*24*time.Hour).Unix())
		token, err := GenerateToken(app.conf, old)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
		app.do(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})}, rec)
	})

	t.Run("success", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, app.conf, usr))
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})
}

func Test_userApi_query(t *testing.T) {
	app := setup(t, "")
	repo := app.stores.User

	now := time.Now()
	ana := testutil.CreateUser(t, repo, "Ana", "ana@test.md", "", user.RoleStudent, "FAF-231", true, now.Add(1*time.Hour))
	ion := testutil.CreateUser(t, repo, "Ion", "ion@test.md", "", user.RoleStudent, "FAF-232", true, now.Add(2*time.Hour))
	dan := testutil.CreateUser(t, repo, "Dan", "dan@test.md", "", user.RoleStudent, "FAF-231", false, now.Add(3*time.Hour))
	mentor := testutil.CreateUser(t, repo, "Maria", "maria@test.md", "", user.RoleMentor, "", true, now.Add(4*time.Hour))

	path := func(params ...string) string {
		v := make(url.Values)
		for i := 0; i+1 < len(params); i += 2 {
			v.Add(params[i], params[i+1])
		}
		return "/v1/users?" + v.Encode()
	}
	mentorToken := getToken(t, app.conf, mentor)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "mentor required", path: "/v1/users", token: getToken(t, app.conf, ana),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "get all", path: "/v1/users", token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, mentor, dan, ion, ana)},
		{name: "search (unknown)", path: path("search", "zzz"), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "search=AN", path: path("search", "AN"), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, dan, ana)},
		{name: "group", path: path("group", "FAF-231"), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, dan, ana)},
		{name: "role", path: path("role", user.RoleMentor), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, mentor)},
		{
			name: "unknown role", path: path("role", "principal"), token: mentorToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": "invalid role"}),
		},
		{name: "is_active=false", path: path("is_active", "false"), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, dan)},
		{
			name: "group + is_active", path: path("group", "FAF-231", "is_active", "true"), token: mentorToken,
			wantCode: http.StatusOK, wantData: marchallList(t, ana),
		},
		{name: "order by name", path: path("ordering", "name"), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, ana, dan, ion, mentor)},
		{name: "order by -name", path: path("ordering", "-name"), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, mentor, ion, dan, ana)},
		{name: "order by created_at", path: path("ordering", "created_at"), token: mentorToken, wantCode: http.StatusOK, wantData: marchallList(t, ana, ion, dan, mentor)},
	}
	runHTTPTests(t, app, tests)
}

func Test_userApi_retrieve(t *testing.T) {
	app := setup(t, "")
	repo := app.stores.User
	ana := testutil.CreateUser(t, repo, "Ana", "ana@test.md", "", user.RoleStudent, "", true)
	ion := testutil.CreateUser(t, repo, "Ion", "ion@test.md", "", user.RoleStudent, "", true)
	mentor := testutil.CreateUser(t, repo, "Maria", "maria@test.md", "", user.RoleMentor, "", true)

	anaToken := getToken(t, app.conf, ana)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/" + ana.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "self", path: "/v1/users/" + ana.ID, token: anaToken, wantCode: http.StatusOK, wantData: marchallObj(t, ana)},
		{
			name: "other student is hidden", path: "/v1/users/" + ion.ID, token: anaToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "mentor", path: "/v1/users/" + ion.ID, token: getToken(t, app.conf, mentor), wantCode: http.StatusOK, wantData: marchallObj(t, ion)},
		{
			name: "unknown", path: "/v1/users/nope", token: getToken(t, app.conf, mentor),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "deleted token owner", path: "/v1/users/ghost",
			token:    getToken(t, app.conf, user.User{ID: "ghost", Role: user.RoleStudent}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_userApi_update(t *testing.T) {
	app := setup(t, "")
	repo := app.stores.User
	ana := testutil.CreateUser(t, repo, "Ana", "ana@test.md", "", user.RoleStudent, "FAF-231", true)
	ion := testutil.CreateUser(t, repo, "Ion", "ion@test.md", "", user.RoleStudent, "", true)
	mentor := testutil.CreateUser(t, repo, "Maria", "maria@test.md", "", user.RoleMentor, "", true)
	admin := testutil.CreateUser(t, repo, "Root", "root@test.md", "", user.RoleAdmin, "", true)

	anaToken := getToken(t, app.conf, ana)
	mentorToken := getToken(t, app.conf, mentor)
	bPtr := func(b bool) *bool { return &b }

	tests := []httpTest{
		{
			name: "student cannot change role", method: http.MethodPut, path: "/v1/users/" + ana.ID, token: anaToken,
			body: marchallObj(t, user.UpdateUser{Role: user.RoleMentor}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "student cannot deactivate", method: http.MethodPut, path: "/v1/users/" + ana.ID, token: anaToken,
			body: marchallObj(t, user.UpdateUser{IsActive: bPtr(false)}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "mentor cannot grant admin", method: http.MethodPut, path: "/v1/users/" + ion.ID, token: mentorToken,
			body: marchallObj(t, user.UpdateUser{Role: user.RoleAdmin}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": errNoPermsToSetRole}),
		},
		{
			name: "mentor cannot edit admin", method: http.MethodPut, path: "/v1/users/" + admin.ID, token: mentorToken,
			body: marchallObj(t, user.UpdateUser{Name: "Nope"}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "email taken", method: http.MethodPut, path: "/v1/users/" + ana.ID, token: anaToken,
			body: marchallObj(t, user.UpdateUser{Email: "ion@test.md"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "bad group", method: http.MethodPut, path: "/v1/users/" + ana.ID, token: anaToken,
			body: marchallObj(t, user.UpdateUser{PBLGroup: "FAF 231"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"pbl_group": "only letters, digits, dashes and underscores are allowed"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("student updates own profile", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{ProjectName: "Bublink", GithubURL: "https://github.com/ana/bublink"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+ana.ID, anaToken, body)
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Bublink", got.ProjectName)
		assert.Equal(t, "https://github.com/ana/bublink", got.GithubURL)
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, "FAF-231", got.PBLGroup)
		assert.Equal(t, user.RoleStudent, got.Role)
	})

	t.Run("mentor promotes and deactivates", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Role: user.RoleMentor, IsActive: bPtr(false)})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+ion.ID, mentorToken, body)
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		stored, err := repo.GetUserByID(context.Background(), ion.ID)
		require.NoError(t, err)
		assert.Equal(t, user.RoleMentor, stored.Role)
		assert.False(t, stored.IsActive)
	})
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t, "")
	repo := app.stores.User
	ana := testutil.CreateUser(t, repo, "Ana", "ana@test.md", "", user.RoleStudent, "", true)
	mentor := testutil.CreateUser(t, repo, "Maria", "maria@test.md", "", user.RoleMentor, "", true)
	admin := testutil.CreateUser(t, repo, "Root", "root@test.md", "", user.RoleAdmin, "", true)
	adminToken := getToken(t, app.conf, admin)
	anaTask := testutil.CreateTask(t, app.stores.Task, "Write the report", ana, "2024-03-15")
	mentorTask := testutil.CreateTask(t, app.stores.Task, "Review the report", mentor, "2024-03-16")

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodDelete, path: "/v1/users/" + ana.ID, token: getToken(t, app.conf, mentor),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "cannot delete self", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/users/" + ana.ID, token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "already deleted", method: http.MethodDelete, path: "/v1/users/" + ana.ID, token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	runHTTPTests(t, app, tests)

	_, err := repo.GetUserByID(context.Background(), ana.ID)
	assert.Equal(t, user.ErrNotFound, err)

	// tasks assigned to the deleted user go with them
	_, err = app.stores.Task.GetTaskByID(context.Background(), anaTask.ID)
	assert.Equal(t, task.ErrNotFound, err)
	_, err = app.stores.Task.GetTaskByID(context.Background(), mentorTask.ID)
	assert.NoError(t, err)
}
