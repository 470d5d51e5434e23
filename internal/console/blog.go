// ABOUTME: Blog panel: post list, markdown preview, create/edit forms and publication toggle
// ABOUTME: Post content is markdown rendered with goldmark; raw HTML in posts is not passed through

package console

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/panel"
	"github.com/2389/lot-admin/internal/session"
)

var postKinds = map[model.Action]session.Kind{
	model.ActionPublish:   session.KindPostPublish,
	model.ActionUnpublish: session.KindPostUnpublish,
	model.ActionDelete:    session.KindPostDelete,
}

type postRow struct {
	model.Post
	Actions []rowAction
}

type postsTableData struct {
	listState
	Rows []postRow
}

type blogPageData struct {
	pageData
	Table postsTableData
}

type postDetailData struct {
	pageData
	Post    model.Post
	Preview template.HTML
	Actions []rowAction
}

type postFormData struct {
	pageData
	Post     *model.Post // nil when creating
	Form     model.PostForm
	Errors   model.ValidationErrors
	Statuses []model.PostStatus
}

func (c *Console) handleBlogPage(w http.ResponseWriter, r *http.Request) {
	data := blogPageData{pageData: c.enter(w, r, SectionBlog, "Blog")}

	posts, err := c.posts.Load(r.Context(), getSession(r).ID, c.api(r).ListPosts)
	table, ok := c.postsTable(w, r, posts, err)
	if !ok {
		return
	}
	data.Table = table
	c.renderPage(w, http.StatusOK, "blog.html", data)
}

func (c *Console) handleBlogRows(w http.ResponseWriter, r *http.Request) {
	posts, err := cached(r.Context(), c.posts, getSession(r).ID, c.api(r).ListPosts)
	table, ok := c.postsTable(w, r, posts, err)
	if !ok {
		return
	}
	c.renderPartial(w, http.StatusOK, "posts_table", table)
}

func (c *Console) postsTable(w http.ResponseWriter, r *http.Request, posts []model.Post, err error) (postsTableData, bool) {
	table := postsTableData{listState: listStateFrom(r)}
	if err != nil {
		if table.LoadError = c.loadFailed(w, r, err, "Failed to load posts"); table.LoadError == "" {
			return table, false
		}
		return table, true
	}
	for _, p := range panel.Filter(posts, table.Query) {
		if table.Status != "" && string(p.Status) != table.Status {
			continue
		}
		table.Rows = append(table.Rows, postRow{Post: p, Actions: actionsFor(model.PostLifecycle, p.Status)})
	}
	return table, true
}

func (c *Console) findPost(w http.ResponseWriter, r *http.Request) (model.Post, bool) {
	posts, err := cached(r.Context(), c.posts, getSession(r).ID, c.api(r).ListPosts)
	if err != nil {
		if msg := c.loadFailed(w, r, err, "Failed to load posts"); msg != "" {
			http.Error(w, msg, http.StatusBadGateway)
		}
		return model.Post{}, false
	}
	id := r.PathValue("id")
	p, ok := find(posts, func(p model.Post) bool { return p.ID == id })
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)
	}
	return p, ok
}

// renderMarkdown converts post content to HTML. goldmark drops raw HTML by default.
func (c *Console) renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		c.logger.Error("failed to convert markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(buf.String())
}

func (c *Console) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	p, ok := c.findPost(w, r)
	if !ok {
		return
	}
	c.renderPage(w, http.StatusOK, "post.html", postDetailData{
		pageData: c.enter(w, r, SectionBlog, p.Title),
		Post:     p,
		Preview:  c.renderMarkdown(p.Content),
		Actions:  actionsFor(model.PostLifecycle, p.Status),
	})
}

func (c *Console) renderPostForm(w http.ResponseWriter, r *http.Request, status int, data postFormData) {
	data.pageData = c.enter(w, r, SectionBlog, "New post")
	if data.Post != nil {
		data.Title = "Edit " + data.Post.Title
	}
	data.Statuses = []model.PostStatus{model.PostDraft, model.PostPublished}
	c.renderPage(w, status, "post_form.html", data)
}

func (c *Console) handlePostNew(w http.ResponseWriter, r *http.Request) {
	c.renderPostForm(w, r, http.StatusOK, postFormData{Form: model.PostForm{Status: string(model.PostDraft)}})
}

func (c *Console) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	form := postFormFrom(r)
	in, err := model.ValidatePost(form)
	var errs model.ValidationErrors
	if errors.As(err, &errs) {
		c.renderPostForm(w, r, http.StatusUnprocessableEntity, postFormData{Form: form, Errors: errs})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.propose(w, r, session.CreatePost(in))
}

func (c *Console) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := c.findPost(w, r)
	if !ok {
		return
	}
	c.renderPostForm(w, r, http.StatusOK, postFormData{
		Post: &p,
		Form: model.PostForm{
			Title:       p.Title,
			Description: p.Description,
			Content:     p.Content,
			Status:      string(p.Status),
		},
	})
}

func (c *Console) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	p, ok := c.findPost(w, r)
	if !ok {
		return
	}
	form := postFormFrom(r)
	in, err := model.ValidatePost(form)
	var errs model.ValidationErrors
	if errors.As(err, &errs) {
		c.renderPostForm(w, r, http.StatusUnprocessableEntity, postFormData{Post: &p, Form: form, Errors: errs})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.propose(w, r, session.UpdatePost(p.ID, in))
}

func (c *Console) handlePostAction(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	action := model.Action(r.PathValue("action"))
	kind, ok := postKinds[action]
	if !ok {
		http.Error(w, "Unknown action", http.StatusNotFound)
		return
	}
	p, ok := c.findPost(w, r)
	if !ok {
		return
	}
	if !model.PostLifecycle.Allowed(p.Status, action) {
		http.Error(w, "That action is not available for this post", http.StatusConflict)
		return
	}
	c.propose(w, r, session.Transition(kind, p.ID, p.Title))
}

func postFormFrom(r *http.Request) model.PostForm {
	return model.PostForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Content:     r.FormValue("content"),
		Status:      r.FormValue("status"),
	}
}
