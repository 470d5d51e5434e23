// ABOUTME: Blog posts published on the storefront
// ABOUTME: Posts toggle between draft and published; content is markdown

package model

import (
	"strings"
	"time"
)

// PostStatus is the publication state of a blog post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// PostLifecycle toggles publication; deletion is allowed from both states.
var PostLifecycle = NewMachine("post",
	Transition[PostStatus]{From: PostDraft, Action: ActionPublish, To: PostPublished},
	Transition[PostStatus]{From: PostPublished, Action: ActionUnpublish, To: PostDraft},
	Transition[PostStatus]{From: PostDraft, Action: ActionDelete, To: "", Destructive: true},
	Transition[PostStatus]{From: PostPublished, Action: ActionDelete, To: "", Destructive: true},
)

// Post is a blog entry.
type Post struct {
	ID          string
	Title       string
	Description string
	Content     string
	Status      PostStatus
	Date        time.Time
}

// Matches reports whether the title contains the query, case-insensitively.
func (p Post) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return q == "" || strings.Contains(strings.ToLower(p.Title), q)
}

// PostForm is the raw blog form as submitted.
type PostForm struct {
	Title       string
	Description string
	Content     string
	Status      string
}

// PostInput is a validated create or update request.
type PostInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Status      PostStatus `json:"status"`
}

// ValidatePost trims and checks the required fields. A missing status means draft.
func ValidatePost(f PostForm) (PostInput, error) {
	var errs ValidationErrors

	in := PostInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Content:     strings.TrimSpace(f.Content),
		Status:      PostStatus(strings.TrimSpace(f.Status)),
	}
	if in.Title == "" {
		errs.add("title", "Title is required")
	}
	if in.Description == "" {
		errs.add("description", "Description is required")
	}
	if in.Content == "" {
		errs.add("content", "Content is required")
	}
	switch in.Status {
	case "":
		in.Status = PostDraft
	case PostDraft, PostPublished:
	default:
		errs.add("status", "Status must be draft or published")
	}

	if err := errs.orNil(); err != nil {
		return PostInput{}, err
	}
	return in, nil
}

// Apply returns a copy of p with the input's fields applied.
func (in PostInput) Apply(p Post) Post {
	p.Title = in.Title
	p.Description = in.Description
	p.Content = in.Content
	p.Status = in.Status
	return p
}
