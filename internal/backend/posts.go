// ABOUTME: Blog endpoints for the blog panel

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/2389/lot-admin/internal/model"
)

// ListPosts returns every blog post, drafts included.
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/blogs", nil)
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wirePost](env, "blogs", "posts", "items")
	if err != nil {
		return nil, err
	}
	posts := make([]model.Post, len(wire))
	for i, w := range wire {
		posts[i] = w.toModel()
	}
	return posts, nil
}

// CreatePost adds a blog post. The returned post is nil when the backend does not echo it.
func (c *Client) CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error) {
	env, err := c.do(ctx, http.MethodPost, "/admin/blogs", in)
	if err != nil {
		return nil, err
	}
	return echoedPost(env), nil
}

// UpdatePost replaces a blog post's content. The returned post is nil when not echoed.
func (c *Client) UpdatePost(ctx context.Context, id string, in model.PostInput) (*model.Post, error) {
	env, err := c.do(ctx, http.MethodPut, "/admin/blogs/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	return echoedPost(env), nil
}

// SetPostStatus publishes or unpublishes a blog post.
func (c *Client) SetPostStatus(ctx context.Context, id string, status model.PostStatus) error {
	_, err := c.do(ctx, http.MethodPatch, "/admin/blogs/"+url.PathEscape(id)+"/status",
		map[string]string{"status": string(status)})
	return err
}

// DeletePost removes a blog post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/admin/blogs/"+url.PathEscape(id), nil)
	return err
}

func echoedPost(env *envelope) *model.Post {
	var w wirePost
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &w) != nil {
		return nil
	}
	p := w.toModel()
	if p.ID == "" {
		return nil
	}
	return &p
}
