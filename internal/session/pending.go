// ABOUTME: Pending confirmation actions as a tagged variant
// ABOUTME: A mutation is recorded here first and only executed once the operator confirms it

package session

import (
	"encoding/json"
	"fmt"

	"github.com/2389/lot-admin/internal/model"
)

// Kind tags a pending action. The payload fields that must be present depend on it.
type Kind string

const (
	KindUserApprove   Kind = "user.approve"
	KindUserReject    Kind = "user.reject"
	KindUserDisable   Kind = "user.disable"
	KindUserEnable    Kind = "user.enable"
	KindProductCreate Kind = "product.create"
	KindProductUpdate Kind = "product.update"
	KindProductDelete Kind = "product.delete"
	KindEstimateSend  Kind = "estimate.send"
	KindEstimateClose Kind = "estimate.close"
	KindPostCreate    Kind = "post.create"
	KindPostUpdate    Kind = "post.update"
	KindPostDelete    Kind = "post.delete"
	KindPostPublish   Kind = "post.publish"
	KindPostUnpublish Kind = "post.unpublish"
	KindLogout        Kind = "logout"
)

// Image is an uploaded product image carried until the create is confirmed.
type Image struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// PendingAction is the mutation awaiting confirmation.
type PendingAction struct {
	ID         string `json:"-"`
	Kind       Kind   `json:"kind"`
	TargetID   string `json:"target_id,omitempty"`
	TargetName string `json:"target_name,omitempty"`

	NewProduct    *model.NewProduct    `json:"new_product,omitempty"`
	ProductUpdate *model.ProductUpdate `json:"product_update,omitempty"`
	Image         *Image               `json:"image,omitempty"`
	Post          *model.PostInput     `json:"post,omitempty"`
}

// Transition builds a pending status change or deletion on an existing entity.
func Transition(kind Kind, targetID, targetName string) PendingAction {
	return PendingAction{Kind: kind, TargetID: targetID, TargetName: targetName}
}

// CreateProduct builds a pending product creation. img may be nil.
func CreateProduct(p model.NewProduct, img *Image) PendingAction {
	return PendingAction{Kind: KindProductCreate, TargetName: p.Name, NewProduct: &p, Image: img}
}

// UpdateProduct builds a pending product edit.
func UpdateProduct(id, name string, u model.ProductUpdate) PendingAction {
	return PendingAction{Kind: KindProductUpdate, TargetID: id, TargetName: name, ProductUpdate: &u}
}

// CreatePost builds a pending blog post creation.
func CreatePost(in model.PostInput) PendingAction {
	return PendingAction{Kind: KindPostCreate, TargetName: in.Title, Post: &in}
}

// UpdatePost builds a pending blog post edit.
func UpdatePost(id string, in model.PostInput) PendingAction {
	return PendingAction{Kind: KindPostUpdate, TargetID: id, TargetName: in.Title, Post: &in}
}

// Logout builds a pending sign-out.
func Logout() PendingAction {
	return PendingAction{Kind: KindLogout}
}

// TargetType is the entity family the action touches, used for audit records.
func (a PendingAction) TargetType() string {
	switch a.Kind {
	case KindUserApprove, KindUserReject, KindUserDisable, KindUserEnable:
		return "user"
	case KindProductCreate, KindProductUpdate, KindProductDelete:
		return "product"
	case KindEstimateSend, KindEstimateClose:
		return "estimate"
	case KindPostCreate, KindPostUpdate, KindPostDelete, KindPostPublish, KindPostUnpublish:
		return "post"
	default:
		return "session"
	}
}

// Validate checks that the payload required by Kind is present.
func (a PendingAction) Validate() error {
	switch a.Kind {
	case KindUserApprove, KindUserReject, KindUserDisable, KindUserEnable,
		KindProductDelete, KindEstimateSend, KindEstimateClose,
		KindPostDelete, KindPostPublish, KindPostUnpublish:
		if a.TargetID == "" {
			return fmt.Errorf("%s: target id is required", a.Kind)
		}
	case KindProductCreate:
		if a.NewProduct == nil {
			return fmt.Errorf("%s: product is required", a.Kind)
		}
	case KindProductUpdate:
		if a.TargetID == "" || a.ProductUpdate == nil {
			return fmt.Errorf("%s: target id and update are required", a.Kind)
		}
	case KindPostCreate:
		if a.Post == nil {
			return fmt.Errorf("%s: post is required", a.Kind)
		}
	case KindPostUpdate:
		if a.TargetID == "" || a.Post == nil {
			return fmt.Errorf("%s: target id and post are required", a.Kind)
		}
	case KindLogout:
	default:
		return fmt.Errorf("unknown pending action kind %q", a.Kind)
	}
	return nil
}

func (a PendingAction) encode() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(a)
}

func decodePending(id string, data []byte) (PendingAction, error) {
	var a PendingAction
	if err := json.Unmarshal(data, &a); err != nil {
		return PendingAction{}, fmt.Errorf("decoding pending action: %w", err)
	}
	a.ID = id
	if err := a.Validate(); err != nil {
		return PendingAction{}, err
	}
	return a, nil
}
