package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// ListPosts lists a tenant's posts, newest first.
func (c *Client) ListPosts(ctx context.Context, token, tenantID string) ([]domain.Post, error) {
	env, err := c.call(ctx, http.MethodGet, tenantPostsPath(tenantID), token, func(req *resty.Request) {
		req.SetQueryParams(map[string]string{"sort": "date", "order": "desc"})
	})
	if err != nil {
		return nil, err
	}
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	return p.Posts, nil
}

// GetPost fetches one post.
func (c *Client) GetPost(ctx context.Context, token, tenantID, id string) (*domain.Post, error) {
	env, err := c.callJSON(ctx, http.MethodGet, tenantPostPath(tenantID, id), token, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	p, err := env.payload()
	if err != nil {
		return nil, err
	}
	if p.Post == nil {
		return nil, domain.ErrPostNotFound
	}
	return p.Post, nil
}

// CreatePost creates a post from a multipart form.
func (c *Client) CreatePost(ctx context.Context, token, tenantID string, in domain.PostInput) error {
	_, err := c.call(ctx, http.MethodPost, tenantPostsPath(tenantID), token, postForm(in))
	return err
}

// UpdatePost updates a post. The image part is sent only when a new file was chosen.
func (c *Client) UpdatePost(ctx context.Context, token, tenantID, id string, in domain.PostInput) error {
	_, err := c.call(ctx, http.MethodPatch, tenantPostPath(tenantID, id), token, postForm(in))
	return err
}

// DeletePostImage deletes a stored post image.
func (c *Client) DeletePostImage(ctx context.Context, token, imageName string) error {
	_, err := c.callJSON(ctx, http.MethodDelete, "/posts/deleteImg/"+url.PathEscape(imageName), token, nil)
	return err
}

// DeletePost deletes a post record. The stored image is left alone; see RemovePost.
func (c *Client) DeletePost(ctx context.Context, token, tenantID, id string) error {
	_, err := c.callJSON(ctx, http.MethodDelete, tenantPostPath(tenantID, id), token, nil)
	return err
}

// RemovePost deletes a post together with its image: fetch, delete image,
// delete record. A failed image delete is logged and does not stop the record
// delete. If the record delete fails after the image is gone, the returned
// error wraps domain.ErrOrphanedImage.
func (c *Client) RemovePost(ctx context.Context, token, tenantID, id string) error {
	post, err := c.GetPost(ctx, token, tenantID, id)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}

	imageDeleted := false
	if post.ImageName != "" {
		if err := c.DeletePostImage(ctx, token, post.ImageName); err != nil {
			c.logger.Warn("failed to delete post image",
				"post_id", id,
				"image", post.ImageName,
				"error", err,
			)
		} else {
			imageDeleted = true
		}
	}

	if err := c.DeletePost(ctx, token, tenantID, id); err != nil {
		if imageDeleted {
			c.logger.Error("post record kept after image delete",
				"post_id", id,
				"image", post.ImageName,
				"error", err,
			)
			return fmt.Errorf("%w: post %s: %v", domain.ErrOrphanedImage, id, err)
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func postForm(in domain.PostInput) func(*resty.Request) {
	return func(req *resty.Request) {
		req.SetMultipartFormData(map[string]string{
			"title":       in.Title,
			"slug":        in.Slug(),
			"description": in.Description,
		})
		if in.Image != nil {
			req.SetFileReader("image", in.Image.Filename, in.Image.Reader)
		}
	}
}

func tenantPostsPath(tenantID string) string {
	return "/tenants/" + url.PathEscape(tenantID) + "/posts"
}

func tenantPostPath(tenantID, id string) string {
	return tenantPostsPath(tenantID) + "/" + url.PathEscape(id)
}
