package blog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/comments"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/middleware"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/metrics"
)

type handlerTestSetup struct {
	posts    *repoMock
	comments *comments.RepoMock
	router   *mux.Router
}

func newHandlerTestSetup(t *testing.T) *handlerTestSetup {
	t.Helper()

	renderer, err := render.New()
	require.NoError(t, err)

	commentsMock := comments.NewRepoMock()
	postsMock := newRepoMock(commentsMock)
	handler := NewHandler(postsMock, commentsMock, renderer, metrics.NewTestManager())

	router := mux.NewRouter()
	handler.SetupRoutes(router, middleware.AdminOnly(renderer))

	return &handlerTestSetup{
		posts:    postsMock,
		comments: commentsMock,
		router:   router,
	}
}

var (
	adminPrincipal = auth.Principal{
		UserID:   1,
		Name:     "Site Owner",
		Role:     auth.RoleAdmin,
		LoggedIn: true,
	}
	memberPrincipal = auth.Principal{
		UserID:   2,
		Name:     "Mila",
		Role:     auth.RoleMember,
		LoggedIn: true,
	}
)

func (s *handlerTestSetup) serve(method, path string, form url.Values, principal auth.Principal) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *handlerTestSetup) addPost(t *testing.T, title string) *Post {
	t.Helper()
	authorID := adminPrincipal.UserID
	post := &Post{
		Title:      title,
		Subtitle:   "a subtitle",
		Body:       "<p>some body</p>",
		ImgURL:     "https://example.com/img.png",
		AuthorID:   authorID,
		AuthorName: adminPrincipal.Name,
		Date:       time.Now().Format(DisplayDateFormat),
	}
	require.NoError(t, s.posts.AddPost(context.Background(), post))
	return post
}

func TestHandler_Routes(t *testing.T) {
	setup := newHandlerTestSetup(t)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"index": {
			name:   "index",
			path:   "/",
			method: "GET",
		},
		"about": {
			name:   "about",
			path:   "/about",
			method: "GET",
		},
		"show-post": {
			name:   "show-post",
			path:   "/post/1",
			method: "GET",
		},
		"add-comment": {
			name:   "add-comment",
			path:   "/post/1",
			method: "POST",
		},
		"new-post-page": {
			name:   "new-post-page",
			path:   "/new-post",
			method: "GET",
		},
		"new-post": {
			name:   "new-post",
			path:   "/new-post",
			method: "POST",
		},
		"edit-post-page": {
			name:   "edit-post-page",
			path:   "/edit-post/1",
			method: "GET",
		},
		"edit-post": {
			name:   "edit-post",
			path:   "/edit-post/1",
			method: "POST",
		},
		"delete-post": {
			name:   "delete-post",
			path:   "/delete/1",
			method: "GET",
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)

			routeMatch := &mux.RouteMatch{}
			isMatch := setup.router.Get(route.name).Match(req, routeMatch)
			assert.True(t, isMatch, caseName)
		})
	}
}

func TestHandler_handleIndex(t *testing.T) {
	setup := newHandlerTestSetup(t)
	setup.addPost(t, "First Post")
	setup.addPost(t, "Second Post")

	rr := setup.serve("GET", "/", nil, auth.Anonymous)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "First Post")
	assert.Contains(t, rr.Body.String(), "Second Post")
	// anonymous visitors get no admin controls
	assert.NotContains(t, rr.Body.String(), "/new-post")

	rr = setup.serve("GET", "/", nil, adminPrincipal)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/new-post")
	assert.Contains(t, rr.Body.String(), "/delete/")
}

func TestHandler_handleShowPost(t *testing.T) {
	setup := newHandlerTestSetup(t)
	post := setup.addPost(t, "First Post")

	setup.comments.KnownIDs.Users[memberPrincipal.UserID] = memberPrincipal.Name
	require.NoError(t, setup.comments.Add(context.Background(), &comments.Comment{
		Text:     "nice one",
		AuthorID: memberPrincipal.UserID,
		PostID:   post.ID,
	}))

	rr := setup.serve("GET", "/post/1", nil, auth.Anonymous)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "First Post")
	assert.Contains(t, rr.Body.String(), "nice one")
	assert.Contains(t, rr.Body.String(), memberPrincipal.Name)
	// anonymous visitors are pointed to the login page instead of a form
	assert.Contains(t, rr.Body.String(), "/login")
}

func TestHandler_handleShowPost_notFound(t *testing.T) {
	setup := newHandlerTestSetup(t)

	rr := setup.serve("GET", "/post/42", nil, auth.Anonymous)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = setup.serve("GET", "/post/not-a-number", nil, auth.Anonymous)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_handleAddComment(t *testing.T) {
	setup := newHandlerTestSetup(t)
	post := setup.addPost(t, "First Post")
	setup.comments.KnownIDs.Users[memberPrincipal.UserID] = memberPrincipal.Name

	rr := setup.serve("POST", "/post/1", url.Values{
		"comment": {"well said"},
	}, memberPrincipal)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/post/1", rr.Header().Get("Location"))

	postComments, err := setup.comments.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, postComments, 1)
	assert.Equal(t, "well said", postComments[0].Text)
	assert.Equal(t, memberPrincipal.UserID, postComments[0].AuthorID)
	assert.Equal(t, memberPrincipal.Name, postComments[0].AuthorName)
}

func TestHandler_handleAddComment_anonymous(t *testing.T) {
	setup := newHandlerTestSetup(t)
	setup.addPost(t, "First Post")

	rr := setup.serve("POST", "/post/1", url.Values{
		"comment": {"well said"},
	}, auth.Anonymous)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Empty(t, setup.comments.Comments)
}

func TestHandler_handleAddComment_empty(t *testing.T) {
	setup := newHandlerTestSetup(t)
	setup.addPost(t, "First Post")
	setup.comments.KnownIDs.Users[memberPrincipal.UserID] = memberPrincipal.Name

	rr := setup.serve("POST", "/post/1", url.Values{
		"comment": {""},
	}, memberPrincipal)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Comment cannot be empty")
	assert.Empty(t, setup.comments.Comments)
}

func TestHandler_handleNewPost(t *testing.T) {
	setup := newHandlerTestSetup(t)

	rr := setup.serve("POST", "/new-post", url.Values{
		"title":    {"Fresh Post"},
		"subtitle": {"with a subtitle"},
		"body":     {"<p>the body</p>"},
		"img_url":  {"https://example.com/img.png"},
	}, adminPrincipal)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	require.Len(t, setup.posts.Posts, 1)
	post := setup.posts.Posts[1]
	assert.Equal(t, "Fresh Post", post.Title)
	assert.Equal(t, adminPrincipal.UserID, post.AuthorID)
	assert.Equal(t, time.Now().Format(DisplayDateFormat), post.Date)
}

func TestHandler_handleNewPost_forbidden(t *testing.T) {
	setup := newHandlerTestSetup(t)

	form := url.Values{
		"title":    {"Fresh Post"},
		"subtitle": {"with a subtitle"},
		"body":     {"<p>the body</p>"},
		"img_url":  {"https://example.com/img.png"},
	}

	// members and anonymous visitors get the same refusal
	rr := setup.serve("POST", "/new-post", form, memberPrincipal)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = setup.serve("POST", "/new-post", form, auth.Anonymous)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = setup.serve("GET", "/new-post", nil, auth.Anonymous)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	assert.Empty(t, setup.posts.Posts)
}

func TestHandler_handleNewPost_duplicateTitle(t *testing.T) {
	setup := newHandlerTestSetup(t)
	setup.addPost(t, "Fresh Post")

	rr := setup.serve("POST", "/new-post", url.Values{
		"title":    {"Fresh Post"},
		"subtitle": {"with a subtitle"},
		"body":     {"<p>the body</p>"},
		"img_url":  {"https://example.com/img.png"},
	}, adminPrincipal)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A post with that title already exists")
	assert.Len(t, setup.posts.Posts, 1)
}

func TestHandler_handleNewPost_missingFields(t *testing.T) {
	setup := newHandlerTestSetup(t)

	rr := setup.serve("POST", "/new-post", url.Values{
		"title": {"Fresh Post"},
	}, adminPrincipal)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "All fields are required")
	assert.Empty(t, setup.posts.Posts)
}

func TestHandler_handleEditPost(t *testing.T) {
	setup := newHandlerTestSetup(t)
	post := setup.addPost(t, "First Post")
	originalDate := post.Date

	// the edit form comes prefilled
	rr := setup.serve("GET", "/edit-post/1", nil, adminPrincipal)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "First Post")
	assert.Contains(t, rr.Body.String(), "Edit Post")

	rr = setup.serve("POST", "/edit-post/1", url.Values{
		"title":    {"Retitled Post"},
		"subtitle": {"new subtitle"},
		"body":     {"<p>new body</p>"},
		"img_url":  {"https://example.com/new.png"},
	}, adminPrincipal)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/post/1", rr.Header().Get("Location"))

	updated := setup.posts.Posts[post.ID]
	assert.Equal(t, "Retitled Post", updated.Title)
	assert.Equal(t, "new subtitle", updated.Subtitle)
	assert.Equal(t, adminPrincipal.UserID, updated.AuthorID)
	// the display date keeps the original publication day
	assert.Equal(t, originalDate, updated.Date)
}

func TestHandler_handleEditPost_notFound(t *testing.T) {
	setup := newHandlerTestSetup(t)

	rr := setup.serve("GET", "/edit-post/42", nil, adminPrincipal)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_handleDeletePost(t *testing.T) {
	setup := newHandlerTestSetup(t)
	post := setup.addPost(t, "First Post")

	setup.comments.KnownIDs.Users[memberPrincipal.UserID] = memberPrincipal.Name
	require.NoError(t, setup.comments.Add(context.Background(), &comments.Comment{
		Text:     "nice one",
		AuthorID: memberPrincipal.UserID,
		PostID:   post.ID,
	}))

	rr := setup.serve("GET", "/delete/1", nil, adminPrincipal)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	assert.Empty(t, setup.posts.Posts)
	// comments of the deleted post go with it
	assert.Empty(t, setup.comments.Comments)
}

func TestHandler_handleDeletePost_notFound(t *testing.T) {
	setup := newHandlerTestSetup(t)

	rr := setup.serve("GET", "/delete/42", nil, adminPrincipal)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_handleDeletePost_forbidden(t *testing.T) {
	setup := newHandlerTestSetup(t)
	setup.addPost(t, "First Post")

	rr := setup.serve("GET", "/delete/1", nil, memberPrincipal)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Len(t, setup.posts.Posts, 1)
}
