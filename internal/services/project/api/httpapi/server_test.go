package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/taskboard/internal/services/project/api/httpapi"
	"github.com/louisbranch/taskboard/internal/services/project/domain/engine"
	"github.com/louisbranch/taskboard/internal/services/project/storage/memory"
)

// ---- helpers ---------------------------------------------------------------

// unknownID is well formed but never issued by the test id generator.
const unknownID = "ffffffff-ffff-4fff-bfff-ffffffffffff"

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	commands, events, err := engine.NewRegistries()
	require.NoError(t, err)

	store := memory.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var next int
	srv := httpapi.NewServer(httpapi.Config{
		Projects: engine.Handler{
			Commands: commands,
			Events:   events,
			Journal:  store,
			Now:      clock,
			Logger:   logger,
		},
		Events: store,
		Index:  store,
		Users:  store,
		NewID: func() (string, error) {
			next++
			return fmt.Sprintf("00000000-0000-4000-8000-%012d", next), nil
		},
		Now:    clock,
		Logger: logger,
	})
	return &testAPI{t: t, handler: srv.Handler(), store: store}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) createUser(name string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/users", map[string]string{"name": name})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[httpapi.UserView](a.t, rec).ID
}

func (a *testAPI) createProject(creatorID, title string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/projects?creatorId="+creatorID, map[string]string{"projectTitle": title})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[httpapi.EventView](a.t, rec).ProjectID
}

func (a *testAPI) createTask(projectID, name string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/projects/"+projectID+"/tasks", map[string]string{"taskName": name})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[httpapi.EventView](a.t, rec).EntityID
}

func (a *testAPI) createTag(projectID, creatorID, name string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/projects/"+projectID+"/tags?creatorId="+creatorID, map[string]string{"name": name, "color": "green"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[httpapi.EventView](a.t, rec).EntityID
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[httpapi.ErrorResponse](t, rec)
	assert.Equal(t, code, body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}

// ---- tests -----------------------------------------------------------------

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestUsers_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)
	userID := api.createUser("  Ada  ")

	rec := api.do(http.MethodGet, "/users/"+userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[httpapi.UserView](t, rec)
	assert.Equal(t, userID, got.ID)
	assert.Equal(t, "Ada", got.Name)
}

func TestUsers_EmptyName_400(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/users", map[string]string{"name": "   "})
	requireErrorCode(t, rec, http.StatusBadRequest, "USER_NAME_EMPTY")
}

func TestUsers_Unknown_404(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/users/"+unknownID, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "USER_NOT_FOUND")
}

func TestCreateProject_201(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")

	rec := api.do(http.MethodPost, "/projects?creatorId="+creatorID, map[string]string{
		"projectTitle": "Launch",
		"description":  "ship it",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	evt := decode[httpapi.EventView](t, rec)
	assert.Equal(t, "project.created", evt.Type)
	assert.EqualValues(t, 1, evt.Seq)
	assert.NotEmpty(t, evt.Hash)
	assert.NotEmpty(t, evt.ChainHash)
	assert.Equal(t, "/projects/"+evt.ProjectID, rec.Header().Get("Location"))

	rec = api.do(http.MethodGet, "/projects/"+evt.ProjectID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[httpapi.ProjectView](t, rec)
	assert.Equal(t, "Launch", view.Title)
	assert.Equal(t, "ship it", view.Description)
	assert.Equal(t, creatorID, view.CreatorID)
	assert.Equal(t, []string{creatorID}, view.Members)
	assert.Zero(t, view.TaskCount)
	assert.Zero(t, view.TagCount)
}

func TestCreateProject_UnknownCreator_404(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/projects?creatorId="+unknownID, map[string]string{"projectTitle": "Launch"})
	requireErrorCode(t, rec, http.StatusNotFound, "USER_NOT_FOUND")
}

func TestCreateProject_MissingCreator_400(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/projects", map[string]string{"projectTitle": "Launch"})
	requireErrorCode(t, rec, http.StatusBadRequest, "REQUEST_INVALID")
}

func TestCreateProject_EmptyTitle_400(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	rec := api.do(http.MethodPost, "/projects?creatorId="+creatorID, map[string]string{"projectTitle": "  "})
	requireErrorCode(t, rec, http.StatusBadRequest, "PROJECT_TITLE_EMPTY")
}

func TestCreateProject_MalformedBody_400(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	req := httptest.NewRequest(http.MethodPost, "/projects?creatorId="+creatorID, strings.NewReader("{"))
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	requireErrorCode(t, rec, http.StatusBadRequest, "REQUEST_INVALID")
}

func TestUpdateProject(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")

	rec := api.do(http.MethodPatch, "/projects/"+projectID, map[string]string{"title": "Relaunch"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "project.updated", decode[httpapi.EventView](t, rec).Type)

	rec = api.do(http.MethodPatch, "/projects/"+projectID, map[string]string{"title": "Relaunch"})
	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "PROJECT_UPDATE_NOOP")
}

func TestUpdateProject_Unknown_404(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPatch, "/projects/"+unknownID, map[string]string{"title": "x"})
	requireErrorCode(t, rec, http.StatusNotFound, "PROJECT_NOT_FOUND")
}

func TestGetProject_Unknown_404(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/projects/"+unknownID, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "PROJECT_NOT_FOUND")
}

func TestParticipants(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	memberID := api.createUser("Grace")
	projectID := api.createProject(creatorID, "Launch")

	rec := api.do(http.MethodPost, "/projects/"+projectID+"/participants/"+memberID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "project.member_added", decode[httpapi.EventView](t, rec).Type)

	rec = api.do(http.MethodPost, "/projects/"+projectID+"/participants/"+memberID, nil)
	requireErrorCode(t, rec, http.StatusConflict, "PROJECT_ALREADY_MEMBER")

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/participants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decode[[]httpapi.UserView](t, rec)
	require.Len(t, members, 2)
	names := []string{members[0].Name, members[1].Name}
	assert.ElementsMatch(t, []string{"Ada", "Grace"}, names)

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/project_creator", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, creatorID, decode[httpapi.UserView](t, rec).ID)

	rec = api.do(http.MethodDelete, "/projects/"+projectID+"/participants/"+memberID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "project.member_removed", decode[httpapi.EventView](t, rec).Type)

	rec = api.do(http.MethodDelete, "/projects/"+projectID+"/participants/"+creatorID, nil)
	requireErrorCode(t, rec, http.StatusConflict, "PROJECT_CANNOT_REMOVE_CREATOR")
}

func TestAddParticipant_UnknownUser_404(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")

	rec := api.do(http.MethodPost, "/projects/"+projectID+"/participants/"+unknownID, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "USER_NOT_FOUND")
}

func TestTasks_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")
	taskID := api.createTask(projectID, "Write docs")

	rec := api.do(http.MethodPatch, "/projects/"+projectID+"/tasks/"+taskID, map[string]string{"taskDescription": "all of them"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/projects/"+projectID+"/tasks/"+taskID+"/assignTo/"+creatorID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "task.assigned", decode[httpapi.EventView](t, rec).Type)

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tasks/"+taskID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task := decode[httpapi.TaskView](t, rec)
	assert.Equal(t, "Write docs", task.Name)
	assert.Equal(t, "all of them", task.Description)
	assert.Equal(t, creatorID, task.AssigneeID)
	assert.Empty(t, task.TagIDs)

	rec = api.do(http.MethodDelete, "/projects/"+projectID+"/tasks/"+taskID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tasks/"+taskID, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "TASK_NOT_FOUND")

	rec = api.do(http.MethodPatch, "/projects/"+projectID+"/tasks/"+taskID, map[string]string{"taskName": "again"})
	requireErrorCode(t, rec, http.StatusNotFound, "TASK_NOT_FOUND")

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]httpapi.TaskView](t, rec))
}

func TestAssignTask_NonMember_422(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	outsiderID := api.createUser("Mallory")
	projectID := api.createProject(creatorID, "Launch")
	taskID := api.createTask(projectID, "Write docs")

	rec := api.do(http.MethodPost, "/projects/"+projectID+"/tasks/"+taskID+"/assignTo/"+outsiderID, nil)
	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "TASK_ASSIGNEE_NOT_MEMBER")
}

func TestTags_AttachAndDeleteDetaches(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")
	taskID := api.createTask(projectID, "Write docs")
	tagID := api.createTag(projectID, creatorID, "docs")

	rec := api.do(http.MethodPost, "/projects/"+projectID+"/tasks/"+taskID+"/addTag/"+tagID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode[[]httpapi.TagView](t, rec)
	require.Len(t, tags, 1)
	assert.Equal(t, "docs", tags[0].Name)
	assert.Equal(t, "green", tags[0].Color)
	assert.Equal(t, creatorID, tags[0].CreatorID)

	rec = api.do(http.MethodDelete, "/projects/"+projectID+"/tags/"+tagID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	deleted := decode[httpapi.EventView](t, rec)
	assert.Equal(t, "tag.deleted", deleted.Type)
	assert.JSONEq(t, fmt.Sprintf(`{"tag_id":%q,"name":"docs","detached_task_ids":[%q]}`, tagID, taskID), string(deleted.Payload))

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tasks/"+taskID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[httpapi.TaskView](t, rec).TagIDs)
}

func TestCreateTag_UnknownCreator_404(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")

	rec := api.do(http.MethodPost, "/projects/"+projectID+"/tags?creatorId="+unknownID, map[string]string{"name": "docs"})
	requireErrorCode(t, rec, http.StatusNotFound, "USER_NOT_FOUND")
}

func TestListEvents_Paging(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")
	api.createTask(projectID, "one")
	api.createTask(projectID, "two")

	rec := api.do(http.MethodGet, "/projects/"+projectID+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]httpapi.EventView](t, rec)
	require.Len(t, all, 3)
	for i, evt := range all {
		assert.EqualValues(t, i+1, evt.Seq)
	}
	assert.Equal(t, all[0].ChainHash, all[1].PrevHash)

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/events?after=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]httpapi.EventView](t, rec)
	require.Len(t, page, 1)
	assert.EqualValues(t, 2, page[0].Seq)

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/events?limit=abc", nil)
	requireErrorCode(t, rec, http.StatusBadRequest, "REQUEST_INVALID")
}

func TestActorAndRequestIDRecorded(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")

	body, err := json.Marshal(map[string]string{"projectTitle": "Launch"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/projects?creatorId="+creatorID, bytes.NewReader(body))
	req.Header.Set("X-Actor-ID", creatorID)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	evt := decode[httpapi.EventView](t, rec)
	assert.Equal(t, creatorID, evt.ActorID)
	assert.Equal(t, "req-42", evt.RequestID)
}

func TestListProjects(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")

	rec := api.do(http.MethodGet, "/projects/all_projects", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]httpapi.ProjectView](t, rec))

	first := api.createProject(creatorID, "Launch")
	second := api.createProject(creatorID, "Retro")
	api.createTask(second, "Collect notes")

	rec = api.do(http.MethodGet, "/projects/all_projects", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	projects := decode[[]httpapi.ProjectView](t, rec)
	require.Len(t, projects, 2)
	assert.Equal(t, first, projects[0].ID)
	assert.Equal(t, "Launch", projects[0].Title)
	assert.Equal(t, second, projects[1].ID)
	assert.Equal(t, 1, projects[1].TaskCount)
}

func TestTaskAssignee(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")
	taskID := api.createTask(projectID, "Write docs")
	path := "/projects/" + projectID + "/tasks/" + taskID + "/assignee"

	rec := api.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, "null", rec.Body.String())

	rec = api.do(http.MethodPost, "/projects/"+projectID+"/tasks/"+taskID+"/assignTo/"+creatorID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assignee := decode[httpapi.UserView](t, rec)
	assert.Equal(t, creatorID, assignee.ID)
	assert.Equal(t, "Ada", assignee.Name)

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tasks/"+unknownID+"/assignee", nil)
	requireErrorCode(t, rec, http.StatusNotFound, "TASK_NOT_FOUND")
}

func TestTaskTagsAndGetTag(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")
	taskID := api.createTask(projectID, "Write docs")
	docsID := api.createTag(projectID, creatorID, "docs")
	api.createTag(projectID, creatorID, "unused")

	rec := api.do(http.MethodGet, "/projects/"+projectID+"/tasks/"+taskID+"/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]httpapi.TagView](t, rec))

	rec = api.do(http.MethodPost, "/projects/"+projectID+"/tasks/"+taskID+"/addTag/"+docsID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tasks/"+taskID+"/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tags := decode[[]httpapi.TagView](t, rec)
	require.Len(t, tags, 1)
	assert.Equal(t, docsID, tags[0].ID)
	assert.Equal(t, "docs", tags[0].Name)

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tags/"+docsID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "green", decode[httpapi.TagView](t, rec).Color)

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tags/"+unknownID, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "TAG_NOT_FOUND")
}

func TestMalformedIDs_400(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	projectID := api.createProject(creatorID, "Launch")
	taskID := api.createTask(projectID, "Write docs")

	cases := []struct {
		name   string
		method string
		path   string
		param  string
	}{
		{"user", http.MethodGet, "/users/nobody", "userId"},
		{"project", http.MethodGet, "/projects/missing", "projectId"},
		{"project update", http.MethodPatch, "/projects/missing", "projectId"},
		{"creator", http.MethodPost, "/projects?creatorId=ghost", "creatorId"},
		{"participant", http.MethodPost, "/projects/" + projectID + "/participants/ghost", "participantId"},
		{"task", http.MethodGet, "/projects/" + projectID + "/tasks/42", "taskId"},
		{"assignee", http.MethodPost, "/projects/" + projectID + "/tasks/" + taskID + "/assignTo/ghost", "assigneeId"},
		{"tag", http.MethodPost, "/projects/" + projectID + "/tasks/" + taskID + "/addTag/red", "tagId"},
		{"uppercase", http.MethodGet, "/projects/" + strings.ToUpper(unknownID), "projectId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body any
			if tc.method != http.MethodGet {
				body = map[string]string{"title": "x", "projectTitle": "x"}
			}
			rec := api.do(tc.method, tc.path, body)
			requireErrorCode(t, rec, http.StatusBadRequest, "REQUEST_INVALID")
			assert.Equal(t, tc.param, decode[httpapi.ErrorResponse](t, rec).Error.Metadata["param"])
		})
	}
}

func TestUserIDsAreTrimmed(t *testing.T) {
	api := newTestAPI(t)
	creatorID := api.createUser("Ada")
	padded := url.QueryEscape("  " + creatorID + " ")

	rec := api.do(http.MethodPost, "/projects?creatorId="+padded, map[string]string{"projectTitle": "Launch"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	projectID := decode[httpapi.EventView](t, rec).ProjectID

	rec = api.do(http.MethodGet, "/projects/"+projectID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[httpapi.ProjectView](t, rec)
	assert.Equal(t, creatorID, view.CreatorID)
	assert.Equal(t, []string{creatorID}, view.Members)

	rec = api.do(http.MethodPost, "/projects/"+projectID+"/tags?creatorId="+padded, map[string]string{"name": "docs"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/projects/"+projectID+"/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode[[]httpapi.TagView](t, rec)
	require.Len(t, tags, 1)
	assert.Equal(t, creatorID, tags[0].CreatorID)
}

func TestErrorBodyCarriesStatusDetails(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/projects/"+unknownID, nil)
	requireErrorCode(t, rec, http.StatusNotFound, "PROJECT_NOT_FOUND")

	detail := decode[httpapi.ErrorResponse](t, rec).Error
	assert.Equal(t, "NotFound", detail.Status)
	assert.Equal(t, "PROJECT_NOT_FOUND", detail.Reason)
	assert.Equal(t, "github.com/louisbranch/taskboard", detail.Domain)
	assert.Equal(t, unknownID, detail.Metadata["project_id"])
}
