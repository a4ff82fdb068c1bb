// internal/handlers/handlers_test.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flasktaskr/flasktaskr/internal/config"
	"github.com/flasktaskr/flasktaskr/internal/models"
	"github.com/flasktaskr/flasktaskr/internal/service"
	"github.com/flasktaskr/flasktaskr/internal/session"
)

type testApp struct {
	t       *testing.T
	server  *httptest.Server
	client  *http.Client
	helpers *service.TestHelpers
	tasks   *service.TaskService
}

func newTestApp(t *testing.T) *testApp {
	helpers := service.NewTestHelpers(t)

	auth := service.NewAuthService(helpers.UserRepo())
	tasks := service.NewTaskService(helpers.TaskRepo())
	sessions := session.NewManager(config.SessionConfig{
		Secret:     "test-secret",
		CookieName: "flasktaskr_session",
		TTL:        time.Hour,
	})

	server := httptest.NewServer(New(auth, tasks, sessions).Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		t:       t,
		server:  server,
		client:  &http.Client{Jar: jar},
		helpers: helpers,
		tasks:   tasks,
	}
}

func (a *testApp) get(path string) (int, string) {
	a.t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, string(body)
}

func (a *testApp) postForm(path string, form url.Values) (int, string) {
	a.t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, string(body)
}

// login creates the user and signs the client's cookie jar in as them.
func (a *testApp) login(name string) *models.User {
	a.t.Helper()
	user := a.helpers.CreateTestUser(name, name+"@example.com", "password")
	_, body := a.postForm("/", url.Values{"name": {name}, "password": {"password"}})
	require.Contains(a.t, body, "Welcome, "+name)
	return user
}

func (a *testApp) loginAdmin(name string) *models.User {
	a.t.Helper()
	user := a.helpers.CreateAdminUser(name, name+"@example.com", "password")
	_, body := a.postForm("/", url.Values{"name": {name}, "password": {"password"}})
	require.Contains(a.t, body, "Welcome, "+name)
	return user
}

func TestLoginPage(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please login to access your task list.")
}

func TestRegisterPage(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get("/register/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please create an account to access FlaskTaskr.")
}

func TestRegisterAndLoginFlow(t *testing.T) {
	app := newTestApp(t)

	_, body := app.postForm("/register/", url.Values{
		"name":     {"tonyhat"},
		"email":    {"tony@hat.com"},
		"password": {"tonyhat"},
		"confirm":  {"tonyhat"},
	})
	// Redirected to the login page with the registration flash.
	assert.Contains(t, body, "Thanks for registering, tonyhat")

	_, body = app.postForm("/", url.Values{"name": {"tonyhat"}, "password": {"tonyhat"}})
	assert.Contains(t, body, "Welcome, tonyhat")
	assert.Contains(t, body, "Logged in as <strong>tonyhat</strong>")
	assert.Contains(t, body, "Save new task")
}

func TestRegisterDuplicate(t *testing.T) {
	app := newTestApp(t)
	app.helpers.CreateTestUser("tonyhat", "tony@hat.com", "tonyhat")

	_, body := app.postForm("/register/", url.Values{
		"name":     {"tonyhat"},
		"email":    {"other@hat.com"},
		"password": {"tonyhat"},
		"confirm":  {"tonyhat"},
	})
	assert.Contains(t, body, "That username and/or email already exists.")
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	_, body := app.postForm("/register/", url.Values{
		"name":     {"short"},
		"email":    {"short@e.com"},
		"password": {"longenough"},
		"confirm":  {"longenough"},
	})
	assert.Contains(t, body, "username must be at least 6 characters")
}

func TestLoginEmptyFields(t *testing.T) {
	app := newTestApp(t)

	_, body := app.postForm("/", url.Values{"name": {""}, "password": {""}})
	assert.Contains(t, body, "Both fields are required.")
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	app.helpers.CreateTestUser("tonyhat", "tony@hat.com", "tonyhat")

	_, body := app.postForm("/", url.Values{"name": {"tonyhat"}, "password": {"wrong"}})
	assert.Contains(t, body, "Invalid credentials.  Please try again.")

	_, body = app.postForm("/", url.Values{"name": {"nobody"}, "password": {"whatever"}})
	assert.Contains(t, body, "Invalid credentials.  Please try again.")
}

func TestTasksRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/tasks/", "/complete/1/", "/delete/1/", "/logout/"} {
		t.Run(path, func(t *testing.T) {
			_, body := app.get(path)
			assert.Contains(t, body, "You need to login first")
			assert.Contains(t, body, "Please login to access your task list.")
		})
	}
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	app.login("tonyhat")

	_, body := app.get("/logout/")
	assert.Contains(t, body, "Peace!")

	// The session is anonymous again.
	_, body = app.get("/tasks/")
	assert.Contains(t, body, "You need to login first")
}

func TestAddTask(t *testing.T) {
	app := newTestApp(t)
	app.login("tonyhat")

	_, body := app.postForm("/add/", url.Values{
		"name":     {"Goto the bank"},
		"due_date": {"02/05/2014"},
		"priority": {"1"},
	})
	assert.Contains(t, body, "Goto the bank was successfully posted. Thanks.")
	assert.Contains(t, body, "Goto the bank")

	open, err := app.tasks.OpenTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Goto the bank", open[0].Name)
}

func TestAddTaskValidation(t *testing.T) {
	app := newTestApp(t)
	app.login("tonyhat")

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{"missing name", url.Values{"name": {""}, "due_date": {"02/05/2014"}, "priority": {"1"}},
			"this field is required"},
		{"bad due date", url.Values{"name": {"Goto the bank"}, "due_date": {"soon"}, "priority": {"1"}},
			"must be a date in MM/DD/YYYY format"},
		{"bad priority", url.Values{"name": {"Goto the bank"}, "due_date": {"02/05/2014"}, "priority": {"99"}},
			"must be a number between 1 and 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body := app.postForm("/add/", tt.form)
			assert.Contains(t, body, tt.wantMsg)
		})
	}

	open, err := app.tasks.OpenTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open, "rejected forms must not create tasks")
}

func TestCompleteAndDeleteOwnTask(t *testing.T) {
	app := newTestApp(t)
	owner := app.login("tonyhat")
	task := app.helpers.CreateTestTask("Goto the bank",
		time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), 1, owner.ID)

	_, body := app.get(fmt.Sprintf("/complete/%d/", task.TaskID))
	assert.Contains(t, body, "Goto the bank was completed. Nice")

	_, body = app.get(fmt.Sprintf("/delete/%d/", task.TaskID))
	assert.Contains(t, body, "Goto the bank was deleted. Nice")

	_, err := app.tasks.GetTask(context.Background(), task.TaskID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCompleteForeignTask(t *testing.T) {
	app := newTestApp(t)
	other := app.helpers.CreateTestUser("mikethebear", "mike@bear.com", "password")
	task := app.helpers.CreateTestTask("Goto the bank",
		time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), 1, other.ID)

	app.login("tonyhat")

	_, body := app.get(fmt.Sprintf("/complete/%d/", task.TaskID))
	assert.Contains(t, body, "You can only update tasks that belong to you.")

	_, body = app.get(fmt.Sprintf("/delete/%d/", task.TaskID))
	assert.Contains(t, body, "You can only delete tasks that belong to you.")

	got, err := app.tasks.GetTask(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status, "denied actions leave the task untouched")
}

func TestAdminModifiesForeignTask(t *testing.T) {
	app := newTestApp(t)
	owner := app.helpers.CreateTestUser("tonyhat", "tony@hat.com", "password")
	task := app.helpers.CreateTestTask("Goto the bank",
		time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), 1, owner.ID)

	app.loginAdmin("superuser")

	_, body := app.get(fmt.Sprintf("/complete/%d/", task.TaskID))
	assert.Contains(t, body, "Goto the bank was completed. Nice")

	_, body = app.get(fmt.Sprintf("/delete/%d/", task.TaskID))
	assert.Contains(t, body, "Goto the bank was deleted. Nice")
}

func TestTaskLinksOnlyForModifiableTasks(t *testing.T) {
	app := newTestApp(t)
	other := app.helpers.CreateTestUser("mikethebear", "mike@bear.com", "password")
	app.helpers.CreateTestTask("Goto the bank",
		time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), 1, other.ID)

	app.login("tonyhat")

	_, body := app.get("/tasks/")
	assert.Contains(t, body, "Goto the bank")
	assert.NotContains(t, body, "Complete")
	assert.NotContains(t, body, "Delete")

	app.loginAdmin("superuser")

	_, body = app.get("/tasks/")
	assert.Contains(t, body, "Complete")
	assert.Contains(t, body, "Delete")
}

func TestCompleteUnknownTask(t *testing.T) {
	app := newTestApp(t)
	app.login("tonyhat")

	resp, err := app.client.Get(app.server.URL + "/complete/9999/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Sorry, there's nothing here.")
}

func TestNotFoundPage(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get("/no-such-page/")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Sorry, there's nothing here.")
}

func TestAPITaskCollection(t *testing.T) {
	app := newTestApp(t)
	owner := app.helpers.CreateTestUser("tonyhat", "tony@hat.com", "password")
	for i := 0; i < 12; i++ {
		app.helpers.CreateTestTask(fmt.Sprintf("task %d", i),
			time.Date(2030, 1, 1+i, 0, 0, 0, 0, time.UTC), 1, owner.ID)
	}

	resp, err := http.Get(app.server.URL + "/api/v1/tasks/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.Items, service.APIPageSize)
}

func TestAPITaskResource(t *testing.T) {
	app := newTestApp(t)
	owner := app.helpers.CreateTestUser("tonyhat", "tony@hat.com", "password")
	task := app.helpers.CreateTestTask("Goto the bank",
		time.Date(2014, 2, 5, 0, 0, 0, 0, time.UTC), 1, owner.ID)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/tasks/%d", app.server.URL, task.TaskID))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Goto the bank", payload["task name"])
	assert.Equal(t, "2014-02-05", payload["due date"])
	assert.Equal(t, float64(1), payload["priority"])
	assert.Equal(t, float64(models.StatusOpen), payload["status"])
	assert.Equal(t, float64(owner.ID), payload["user id"])
}

func TestAPITaskResourceNotFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/tasks/9999", "/api/v1/tasks/abc"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(app.server.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			var payload map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			assert.Equal(t, "Element does not exist", payload["error"])
		})
	}
}
