package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/middleware"
	"github.com/cppla/miniblog/models"
	"github.com/cppla/miniblog/repositories"
)

const (
	callerID = "9bc47e64-8830-416b-9b15-0ad1458cf1ff"
	postID   = "e1d148a0-b074-41c7-b61c-7c781c129042"
	commID   = "5f0e2a43-6f8a-4b55-a0e9-2f0f4b1b9d11"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePosts struct {
	calls    int
	page     models.PostPage
	post     models.Post
	err      error
	gotPost  models.Post
	gotToken string
	gotList  repositories.ListParams
}

func (f *fakePosts) GetAllPosts(_ context.Context, p repositories.ListParams) (models.PostPage, error) {
	f.calls++
	f.gotList = p
	return f.page, f.err
}

func (f *fakePosts) GetPostByID(context.Context, string) (models.Post, error) {
	f.calls++
	return f.post, f.err
}

func (f *fakePosts) CreatePost(_ context.Context, post models.Post, token string) (models.Post, error) {
	f.calls++
	f.gotPost, f.gotToken = post, token
	post.ID = postID
	return post, f.err
}

func (f *fakePosts) UpdatePost(_ context.Context, _ string, post models.Post, token string) (models.Post, error) {
	f.calls++
	f.gotPost, f.gotToken = post, token
	return post, f.err
}

func (f *fakePosts) DeletePost(context.Context, string, string) (models.Post, error) {
	f.calls++
	return f.post, f.err
}

type fakeComments struct {
	calls    int
	comments []models.Comment
	err      error
	got      models.Comment
}

func (f *fakeComments) GetCommentsByPostID(context.Context, string) ([]models.Comment, error) {
	f.calls++
	return f.comments, f.err
}

func (f *fakeComments) CreateComment(_ context.Context, c models.Comment, _ string) (models.Comment, error) {
	f.calls++
	f.got = c
	c.ID = commID
	return c, f.err
}

func (f *fakeComments) UpdateComment(_ context.Context, _, _ string, c models.Comment, _ string) (models.Comment, error) {
	f.calls++
	f.got = c
	return c, f.err
}

func (f *fakeComments) DeleteComment(context.Context, string, string, string) (models.Comment, error) {
	f.calls++
	return models.Comment{}, f.err
}

var verifier = auth.VerifierFunc(func(_ context.Context, token string) (auth.Identity, error) {
	if token != "good" {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return auth.Identity{ID: callerID, Email: "caller@example.com"}, nil
})

// newRouter mounts the controllers the way the application does. With
// withAuth false the mutating handlers run without the auth middleware.
func newRouter(posts PostStore, comments CommentStore, withAuth bool) *gin.Engine {
	pc := NewPostController(posts, nil)
	cc := NewCommentController(comments, nil)

	r := gin.New()
	api := r.Group("/api/posts")
	api.GET("", pc.ListPosts)
	api.GET("/:id", pc.GetPost)
	api.GET("/:id/comments", cc.ListComments)

	protected := api.Group("")
	if withAuth {
		protected.Use(middleware.AuthRequired(verifier, nil, nil))
	}
	protected.POST("", pc.CreatePost)
	protected.PUT("/:id", pc.UpdatePost)
	protected.DELETE("/:id", pc.DeletePost)
	protected.POST("/:id/comments", cc.CreateComment)
	protected.PUT("/:id/comments/:commentId", cc.UpdateComment)
	protected.DELETE("/:id/comments/:commentId", cc.DeleteComment)
	return r
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListPosts(t *testing.T) {
	posts := &fakePosts{page: models.PostPage{
		Posts:      []models.Post{{ID: postID, Title: "T"}},
		TotalCount: 1,
		Page:       1,
		PageSize:   10,
	}}
	r := newRouter(posts, &fakeComments{}, true)

	w := do(r, http.MethodGet, "/api/posts?page=1&pageSize=10&search=%20go%20", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["totalCount"])
	assert.Len(t, body["posts"], 1)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["pageSize"])
	assert.Equal(t, repositories.ListParams{Page: 1, PageSize: 10, Search: "go"}, posts.gotList)
}

func TestListPosts_BadPagingFallsBackToDefaults(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(posts, &fakeComments{}, true)

	w := do(r, http.MethodGet, "/api/posts?page=zero&pageSize=5000", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, posts.gotList.Page)
	assert.Equal(t, repositories.DefaultPageSize, posts.gotList.PageSize)
}

func TestListPosts_StorageFailure(t *testing.T) {
	r := newRouter(&fakePosts{err: repositories.ErrStorage}, &fakeComments{}, true)

	w := do(r, http.MethodGet, "/api/posts", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An error occurred while retrieving posts."}`, w.Body.String())
}

func TestGetPost(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "found", wantStatus: http.StatusOK},
		{name: "absent", err: repositories.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "storage failure", err: errors.Join(repositories.ErrStorage, errors.New("timeout")), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakePosts{post: models.Post{ID: postID}, err: tt.err}, &fakeComments{}, true)
			w := do(r, http.MethodGet, "/api/posts/"+postID, "", "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestMutationsWithoutTokenAreRejected(t *testing.T) {
	routes := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/posts", `{"title":"T","content":"C"}`},
		{http.MethodPut, "/api/posts/" + postID, `{"title":"T","content":"C"}`},
		{http.MethodDelete, "/api/posts/" + postID, ""},
		{http.MethodPost, "/api/posts/" + postID + "/comments", `{"content":"hi"}`},
		{http.MethodPut, "/api/posts/" + postID + "/comments/" + commID, `{"content":"hi"}`},
		{http.MethodDelete, "/api/posts/" + postID + "/comments/" + commID, ""},
	}

	for _, withAuth := range []bool{true, false} {
		for _, rt := range routes {
			posts, comments := &fakePosts{}, &fakeComments{}
			r := newRouter(posts, comments, withAuth)

			w := do(r, rt.method, rt.path, rt.body, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s (middleware=%v)", rt.method, rt.path, withAuth)
			assert.Zero(t, posts.calls+comments.calls, "%s %s reached storage", rt.method, rt.path)
		}
	}
}

func TestMutationsWithInvalidToken(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(posts, &fakeComments{}, true)

	w := do(r, http.MethodPost, "/api/posts", `{"title":"T","content":"C"}`, "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, posts.calls)
}

func TestCreatePost(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(posts, &fakeComments{}, true)

	body := `{"title":"Hello","content":"World","heroImageUrl":"https://img.test/a.png","userId":"00000000-0000-0000-0000-000000000000"}`
	w := do(r, http.MethodPost, "/api/posts", body, "good")
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, callerID, posts.gotPost.UserID, "owner comes from the verified identity")
	assert.Equal(t, "caller@example.com", posts.gotPost.Email)
	assert.Equal(t, "good", posts.gotToken)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, postID, created["id"])
	assert.Equal(t, "https://img.test/a.png", created["hero_image_url"])
}

func TestCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{name: "empty body", body: "", wantFields: []string{"title", "content"}},
		{name: "missing title", body: `{"content":"C"}`, wantFields: []string{"title"}},
		{name: "bad url", body: `{"title":"T","content":"C","heroImageUrl":"nope"}`, wantFields: []string{"heroImageUrl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &fakePosts{}
			r := newRouter(posts, &fakeComments{}, true)

			w := do(r, http.MethodPost, "/api/posts", tt.body, "good")
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, posts.calls)

			var resp struct {
				Error []struct {
					Field   string `json:"field"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			var fields []string
			for _, e := range resp.Error {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestCreatePost_MalformedJSON(t *testing.T) {
	r := newRouter(&fakePosts{}, &fakeComments{}, true)
	w := do(r, http.MethodPost, "/api/posts", `{"title":`, "good")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePost_StorageFailure(t *testing.T) {
	r := newRouter(&fakePosts{err: repositories.ErrStorage}, &fakeComments{}, true)
	w := do(r, http.MethodPost, "/api/posts", `{"title":"T","content":"C"}`, "good")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateAndDeletePost(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		err        error
		wantStatus int
	}{
		{name: "update", method: http.MethodPut, body: `{"title":"T","content":"C"}`, wantStatus: http.StatusOK},
		{name: "update missing", method: http.MethodPut, body: `{"title":"T","content":"C"}`, err: repositories.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "update invalid", method: http.MethodPut, body: `{"title":"","content":"C"}`, wantStatus: http.StatusBadRequest},
		{name: "update failure", method: http.MethodPut, body: `{"title":"T","content":"C"}`, err: repositories.ErrStorage, wantStatus: http.StatusInternalServerError},
		{name: "delete", method: http.MethodDelete, wantStatus: http.StatusOK},
		{name: "delete missing", method: http.MethodDelete, err: repositories.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "delete failure", method: http.MethodDelete, err: repositories.ErrStorage, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakePosts{err: tt.err}, &fakeComments{}, true)
			w := do(r, tt.method, "/api/posts/"+postID, tt.body, "good")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	r := newRouter(&fakePosts{}, &fakeComments{}, true)
	w := do(r, http.MethodDelete, "/api/posts/"+postID, "", "good")
	assert.JSONEq(t, `{"message":"Post deleted successfully"}`, w.Body.String())
}

func TestMissingIDIsBadRequest(t *testing.T) {
	posts := &fakePosts{}
	comments := &fakeComments{}
	r := newRouter(posts, comments, true)

	for _, path := range []string{
		"/api/posts/%20",
		"/api/posts/%20/comments",
	} {
		w := do(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	w := do(r, http.MethodDelete, "/api/posts/"+postID+"/comments/%20", "", "good")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, posts.calls+comments.calls)
}

func TestListComments(t *testing.T) {
	tests := []struct {
		name       string
		comments   []models.Comment
		err        error
		wantStatus int
		wantLen    int
	}{
		{name: "some", comments: []models.Comment{{ID: commID}}, wantStatus: http.StatusOK, wantLen: 1},
		{name: "unknown post", err: repositories.ErrNotFound, wantStatus: http.StatusOK},
		{name: "failure", err: repositories.ErrStorage, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakePosts{}, &fakeComments{comments: tt.comments, err: tt.err}, true)
			w := do(r, http.MethodGet, "/api/posts/"+postID+"/comments", "", "")
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var list []models.Comment
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
				assert.Len(t, list, tt.wantLen)
			}
		})
	}
}

func TestCreateComment(t *testing.T) {
	comments := &fakeComments{}
	r := newRouter(&fakePosts{}, comments, true)

	w := do(r, http.MethodPost, "/api/posts/"+postID+"/comments", `{"content":"Nice <b>post</b>","postId":"ignored"}`, "good")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, postID, comments.got.PostID)
	assert.Equal(t, callerID, comments.got.UserID)
	assert.Equal(t, "caller@example.com", comments.got.Email)
	assert.Equal(t, "Nice <b>post</b>", comments.got.Content)
}

func TestCreateComment_Validation(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantFields []string
	}{
		{name: "no content", path: "/api/posts/" + postID + "/comments", body: `{}`, wantFields: []string{"content"}},
		{name: "blank content", path: "/api/posts/" + postID + "/comments", body: `{"content":"   "}`, wantFields: []string{"content"}},
		{name: "bad post id and no content", path: "/api/posts/42/comments", body: `{}`, wantFields: []string{"postId", "content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := &fakeComments{}
			r := newRouter(&fakePosts{}, comments, true)

			w := do(r, http.MethodPost, tt.path, tt.body, "good")
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, comments.calls)

			var resp struct {
				Error []struct {
					Field string `json:"field"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			var fields []string
			for _, e := range resp.Error {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestUpdateAndDeleteComment(t *testing.T) {
	path := "/api/posts/" + postID + "/comments/" + commID
	tests := []struct {
		name       string
		method     string
		body       string
		err        error
		wantStatus int
	}{
		{name: "update", method: http.MethodPut, body: `{"content":"edited"}`, wantStatus: http.StatusOK},
		{name: "update missing", method: http.MethodPut, body: `{"content":"edited"}`, err: repositories.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "update failure", method: http.MethodPut, body: `{"content":"edited"}`, err: repositories.ErrStorage, wantStatus: http.StatusInternalServerError},
		{name: "delete", method: http.MethodDelete, wantStatus: http.StatusOK},
		{name: "delete missing", method: http.MethodDelete, err: repositories.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakePosts{}, &fakeComments{err: tt.err}, true)
			w := do(r, tt.method, path, tt.body, "good")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
