package blog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/comments"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/metrics"
)

type postsRepo interface {
	AddPost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, id int, params UpdatePostParams) error
	DeletePost(ctx context.Context, id int) error
	All(ctx context.Context) ([]*Post, error)
	GetPost(ctx context.Context, id int) (*Post, error)
}

type commentsRepo interface {
	Add(ctx context.Context, comment *comments.Comment) error
	ListByPost(ctx context.Context, postID int) ([]comments.Comment, error)
}

type Handler struct {
	posts          postsRepo
	comments       commentsRepo
	renderer       *render.Renderer
	metricsManager *metrics.Manager
}

func NewHandler(
	posts postsRepo,
	comments commentsRepo,
	renderer *render.Renderer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		posts:          posts,
		comments:       comments,
		renderer:       renderer,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the blog routes. The write routes take the admin
// guard explicitly, so the policy of each route is readable at the
// registration site instead of being buried inside the handlers.
func (handler *Handler) SetupRoutes(router *mux.Router, adminOnly mux.MiddlewareFunc) {
	router.HandleFunc("/", handler.handleIndex).Methods("GET").Name("index")
	router.HandleFunc("/about", handler.handleAbout).Methods("GET").Name("about")
	router.HandleFunc("/post/{id}", handler.handleShowPost).Methods("GET").Name("show-post")
	router.HandleFunc("/post/{id}", handler.handleAddComment).Methods("POST").Name("add-comment")

	router.Handle("/new-post", adminOnly(http.HandlerFunc(handler.handleNewPostPage))).Methods("GET").Name("new-post-page")
	router.Handle("/new-post", adminOnly(http.HandlerFunc(handler.handleNewPost))).Methods("POST").Name("new-post")
	router.Handle("/edit-post/{id}", adminOnly(http.HandlerFunc(handler.handleEditPostPage))).Methods("GET").Name("edit-post-page")
	router.Handle("/edit-post/{id}", adminOnly(http.HandlerFunc(handler.handleEditPost))).Methods("POST").Name("edit-post")
	router.Handle("/delete/{id}", adminOnly(http.HandlerFunc(handler.handleDeletePost))).Methods("GET").Name("delete-post")
}

type indexView struct {
	Posts []*Post
}

func (handler *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := handler.posts.All(r.Context())
	if err != nil {
		log.Errorf("index, list posts: %s", err)
		http.Error(w, "failed to load posts", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, r, http.StatusOK, "index.gohtml", &render.Data{
		Title:     "Home",
		Principal: auth.PrincipalFromContext(r.Context()),
		View:      indexView{Posts: posts},
	})
}

func (handler *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "about.gohtml", &render.Data{
		Title:     "About Me",
		Principal: auth.PrincipalFromContext(r.Context()),
	})
}

type postView struct {
	Post     *Post
	Comments []comments.Comment
}

func (handler *Handler) handleShowPost(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	post, ok := handler.getRequestedPost(w, r, principal)
	if !ok {
		return
	}

	postComments, err := handler.comments.ListByPost(r.Context(), post.ID)
	if err != nil {
		log.Errorf("show post %d, list comments: %s", post.ID, err)
		http.Error(w, "failed to load post", http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, r, http.StatusOK, "post.gohtml", &render.Data{
		Title:     post.Title,
		Principal: principal,
		View: postView{
			Post:     post,
			Comments: postComments,
		},
	})
}

func (handler *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if !principal.LoggedIn {
		render.SetFlash(w, "Log in first to be able to comment")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	post, ok := handler.getRequestedPost(w, r, principal)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("add comment, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	commentText := r.Form.Get("comment")
	if commentText == "" {
		postComments, err := handler.comments.ListByPost(r.Context(), post.ID)
		if err != nil {
			log.Errorf("add comment, list comments: %s", err)
			http.Error(w, "failed to load post", http.StatusInternalServerError)
			return
		}
		handler.renderer.Render(w, r, http.StatusOK, "post.gohtml", &render.Data{
			Title:     post.Title,
			Principal: principal,
			FormError: "Comment cannot be empty",
			View: postView{
				Post:     post,
				Comments: postComments,
			},
		})
		return
	}

	comment := &comments.Comment{
		Text:     commentText,
		AuthorID: principal.UserID,
		PostID:   post.ID,
	}
	if err := handler.comments.Add(r.Context(), comment); err != nil {
		if errors.Is(err, comments.ErrPostNotFound) {
			handler.renderer.RenderError(w, r, http.StatusNotFound, principal)
			return
		}
		log.Errorf("add comment on post %d: %s", post.ID, err)
		http.Error(w, "failed to save comment", http.StatusInternalServerError)
		return
	}

	log.Tracef("user %d commented on post %d", principal.UserID, post.ID)
	handler.metricsManager.CounterCommentsCreated.Inc()

	http.Redirect(w, r, "/post/"+strconv.Itoa(post.ID), http.StatusSeeOther)
}

type makePostView struct {
	IsEdit bool
	Action string
}

func (handler *Handler) handleNewPostPage(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "make-post.gohtml", &render.Data{
		Title:     "New Post",
		Principal: auth.PrincipalFromContext(r.Context()),
		View: makePostView{
			IsEdit: false,
			Action: "/new-post",
		},
	})
}

func (handler *Handler) handleNewPost(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	form, formErr, ok := handler.readPostForm(w, r)
	if !ok {
		return
	}
	if formErr != "" {
		handler.renderer.Render(w, r, http.StatusOK, "make-post.gohtml", &render.Data{
			Title:     "New Post",
			Principal: principal,
			FormError: formErr,
			FormData:  form,
			View: makePostView{
				IsEdit: false,
				Action: "/new-post",
			},
		})
		return
	}

	post := &Post{
		Title:    form["title"],
		Subtitle: form["subtitle"],
		Body:     form["body"],
		ImgURL:   form["img_url"],
		AuthorID: principal.UserID,
		Date:     time.Now().Format(DisplayDateFormat),
	}
	if err := handler.posts.AddPost(r.Context(), post); err != nil {
		if errors.Is(err, ErrDuplicateTitle) {
			handler.renderer.Render(w, r, http.StatusOK, "make-post.gohtml", &render.Data{
				Title:     "New Post",
				Principal: principal,
				FormError: "A post with that title already exists",
				FormData:  form,
				View: makePostView{
					IsEdit: false,
					Action: "/new-post",
				},
			})
			return
		}
		log.Errorf("new post: %s", err)
		http.Error(w, "failed to save post", http.StatusInternalServerError)
		return
	}

	log.Tracef("user %d created post %d", principal.UserID, post.ID)
	handler.metricsManager.CounterPostsCreated.Inc()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) handleEditPostPage(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	post, ok := handler.getRequestedPost(w, r, principal)
	if !ok {
		return
	}

	handler.renderer.Render(w, r, http.StatusOK, "make-post.gohtml", &render.Data{
		Title:     "Edit Post",
		Principal: principal,
		FormData: map[string]string{
			"title":    post.Title,
			"subtitle": post.Subtitle,
			"body":     post.Body,
			"img_url":  post.ImgURL,
		},
		View: makePostView{
			IsEdit: true,
			Action: "/edit-post/" + strconv.Itoa(post.ID),
		},
	})
}

func (handler *Handler) handleEditPost(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	post, ok := handler.getRequestedPost(w, r, principal)
	if !ok {
		return
	}

	form, formErr, ok := handler.readPostForm(w, r)
	if !ok {
		return
	}
	if formErr != "" {
		handler.renderer.Render(w, r, http.StatusOK, "make-post.gohtml", &render.Data{
			Title:     "Edit Post",
			Principal: principal,
			FormError: formErr,
			FormData:  form,
			View: makePostView{
				IsEdit: true,
				Action: "/edit-post/" + strconv.Itoa(post.ID),
			},
		})
		return
	}

	// editing reassigns the post to the editing admin, matching the
	// single author model of the site
	params := UpdatePostParams{
		Title:    form["title"],
		Subtitle: form["subtitle"],
		Body:     form["body"],
		ImgURL:   form["img_url"],
		AuthorID: principal.UserID,
	}
	if err := handler.posts.UpdatePost(r.Context(), post.ID, params); err != nil {
		switch {
		case errors.Is(err, ErrPostNotFound):
			handler.renderer.RenderError(w, r, http.StatusNotFound, principal)
		case errors.Is(err, ErrDuplicateTitle):
			handler.renderer.Render(w, r, http.StatusOK, "make-post.gohtml", &render.Data{
				Title:     "Edit Post",
				Principal: principal,
				FormError: "A post with that title already exists",
				FormData:  form,
				View: makePostView{
					IsEdit: true,
					Action: "/edit-post/" + strconv.Itoa(post.ID),
				},
			})
		default:
			log.Errorf("edit post %d: %s", post.ID, err)
			http.Error(w, "failed to save post", http.StatusInternalServerError)
		}
		return
	}

	log.Tracef("user %d edited post %d", principal.UserID, post.ID)

	http.Redirect(w, r, "/post/"+strconv.Itoa(post.ID), http.StatusSeeOther)
}

func (handler *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	postID, err := postIDFromRequest(r)
	if err != nil {
		handler.renderer.RenderError(w, r, http.StatusNotFound, principal)
		return
	}

	if err := handler.posts.DeletePost(r.Context(), postID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			handler.renderer.RenderError(w, r, http.StatusNotFound, principal)
			return
		}
		log.Errorf("delete post %d: %s", postID, err)
		http.Error(w, "failed to delete post", http.StatusInternalServerError)
		return
	}

	log.Tracef("user %d deleted post %d", principal.UserID, postID)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// getRequestedPost loads the post addressed by the route, rendering the
// not found page when the id is not a number or no such post exists.
func (handler *Handler) getRequestedPost(
	w http.ResponseWriter,
	r *http.Request,
	principal auth.Principal,
) (*Post, bool) {
	postID, err := postIDFromRequest(r)
	if err != nil {
		handler.renderer.RenderError(w, r, http.StatusNotFound, principal)
		return nil, false
	}

	post, err := handler.posts.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			handler.renderer.RenderError(w, r, http.StatusNotFound, principal)
			return nil, false
		}
		log.Errorf("get post %d: %s", postID, err)
		http.Error(w, "failed to load post", http.StatusInternalServerError)
		return nil, false
	}

	return post, true
}

func (handler *Handler) readPostForm(w http.ResponseWriter, r *http.Request) (map[string]string, string, bool) {
	if err := r.ParseForm(); err != nil {
		log.Errorf("post form, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return nil, "", false
	}

	form := map[string]string{
		"title":    r.Form.Get("title"),
		"subtitle": r.Form.Get("subtitle"),
		"body":     r.Form.Get("body"),
		"img_url":  r.Form.Get("img_url"),
	}

	if form["title"] == "" || form["subtitle"] == "" || form["body"] == "" || form["img_url"] == "" {
		return form, "All fields are required", true
	}

	return form, "", true
}

func postIDFromRequest(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}
