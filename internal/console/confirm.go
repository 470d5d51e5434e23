// ABOUTME: Confirmation dialog and execution of confirmed pending actions
// ABOUTME: Nothing reaches a backend mutation endpoint except through handleConfirm

package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/2389/lot-admin/internal/backend"
	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/session"
	"github.com/2389/lot-admin/internal/store"
)

// Dialog is the confirmation modal for the pending action. Destructive only
// changes how it looks.
type Dialog struct {
	ActionID     string
	Title        string
	Description  string
	ConfirmLabel string
	CancelLabel  string
	Destructive  bool
}

type dialogData struct {
	Dialog    *Dialog
	CSRFToken string
}

// kindInfo describes how a pending action is presented and reported.
type kindInfo struct {
	section     string
	title       string
	confirm     string
	describe    func(a session.PendingAction) string
	destructive bool
	succeeded   string
	failed      string
}

func quoted(a session.PendingAction) string {
	if a.TargetName == "" {
		return "this item"
	}
	return fmt.Sprintf("%q", a.TargetName)
}

var kinds = map[session.Kind]kindInfo{
	session.KindUserApprove: {
		section: SectionUsers,
		title:   "Approve user",
		confirm: "Approve",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Approve %s? The account will be able to sign in and request estimates.", quoted(a))
		},
		destructive: model.UserLifecycle.Destructive(model.ActionApprove),
		succeeded:   "User approved",
		failed:      "Failed to approve user",
	},
	session.KindUserReject: {
		section: SectionUsers,
		title:   "Reject user",
		confirm: "Reject",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Reject %s? This cannot be undone.", quoted(a))
		},
		destructive: model.UserLifecycle.Destructive(model.ActionReject),
		succeeded:   "User rejected",
		failed:      "Failed to reject user",
	},
	session.KindUserDisable: {
		section: SectionUsers,
		title:   "Disable user",
		confirm: "Disable",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Disable %s? The account will no longer be able to sign in.", quoted(a))
		},
		destructive: model.UserLifecycle.Destructive(model.ActionDisable),
		succeeded:   "User disabled",
		failed:      "Failed to disable user",
	},
	session.KindUserEnable: {
		section: SectionUsers,
		title:   "Enable user",
		confirm: "Enable",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Re-enable %s?", quoted(a))
		},
		destructive: model.UserLifecycle.Destructive(model.ActionEnable),
		succeeded:   "User enabled",
		failed:      "Failed to enable user",
	},
	session.KindProductCreate: {
		section: SectionProducts,
		title:   "Create product",
		confirm: "Create",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Add %s to the catalog?", quoted(a))
		},
		succeeded: "Product created",
		failed:    "Failed to create product",
	},
	session.KindProductUpdate: {
		section: SectionProducts,
		title:   "Save product",
		confirm: "Save",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Update price, quantity and description of %s?", quoted(a))
		},
		succeeded: "Product updated",
		failed:    "Failed to update product",
	},
	session.KindProductDelete: {
		section: SectionProducts,
		title:   "Delete product",
		confirm: "Delete",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Delete %s? It will be removed from the catalog.", quoted(a))
		},
		destructive: model.ProductLifecycle.Destructive(model.ActionDelete),
		succeeded:   "Product deleted",
		failed:      "Failed to delete product",
	},
	session.KindEstimateSend: {
		section: SectionEstimates,
		title:   "Mark estimate as sent",
		confirm: "Mark sent",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Mark estimate %s for %s as sent?", a.TargetID, a.TargetName)
		},
		destructive: model.EstimateLifecycle.Destructive(model.ActionSend),
		succeeded:   "Estimate marked as sent",
		failed:      "Failed to update estimate",
	},
	session.KindEstimateClose: {
		section: SectionEstimates,
		title:   "Close estimate",
		confirm: "Close",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Close estimate %s for %s? Closed estimates cannot be reopened.", a.TargetID, a.TargetName)
		},
		destructive: model.EstimateLifecycle.Destructive(model.ActionClose),
		succeeded:   "Estimate closed",
		failed:      "Failed to update estimate",
	},
	session.KindPostCreate: {
		section: SectionBlog,
		title:   "Create post",
		confirm: "Create",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Create %s as %s?", quoted(a), a.Post.Status)
		},
		succeeded: "Post created",
		failed:    "Failed to create post",
	},
	session.KindPostUpdate: {
		section: SectionBlog,
		title:   "Save post",
		confirm: "Save",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Save changes to %s?", quoted(a))
		},
		succeeded: "Post updated",
		failed:    "Failed to update post",
	},
	session.KindPostDelete: {
		section: SectionBlog,
		title:   "Delete post",
		confirm: "Delete",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Delete %s? This cannot be undone.", quoted(a))
		},
		destructive: model.PostLifecycle.Destructive(model.ActionDelete),
		succeeded:   "Post deleted",
		failed:      "Failed to delete post",
	},
	session.KindPostPublish: {
		section: SectionBlog,
		title:   "Publish post",
		confirm: "Publish",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Publish %s on the storefront?", quoted(a))
		},
		destructive: model.PostLifecycle.Destructive(model.ActionPublish),
		succeeded:   "Post published",
		failed:      "Failed to publish post",
	},
	session.KindPostUnpublish: {
		section: SectionBlog,
		title:   "Unpublish post",
		confirm: "Unpublish",
		describe: func(a session.PendingAction) string {
			return fmt.Sprintf("Move %s back to drafts?", quoted(a))
		},
		destructive: model.PostLifecycle.Destructive(model.ActionUnpublish),
		succeeded:   "Post moved to drafts",
		failed:      "Failed to unpublish post",
	},
	session.KindLogout: {
		title:   "Sign out",
		confirm: "Sign out",
		describe: func(session.PendingAction) string {
			return "Sign out of the console?"
		},
		succeeded: "You have been signed out",
		failed:    "Failed to sign out",
	},
}

func dialogFor(a session.PendingAction) Dialog {
	info := kinds[a.Kind]
	return Dialog{
		ActionID:     a.ID,
		Title:        info.title,
		Description:  info.describe(a),
		ConfirmLabel: info.confirm,
		CancelLabel:  "Cancel",
		Destructive:  info.destructive,
	}
}

// propose records a as the pending action and opens the dialog for it. No backend
// call is made until the operator confirms.
func (c *Console) propose(w http.ResponseWriter, r *http.Request, a session.PendingAction) {
	proposed, err := c.handle(r).Propose(r.Context(), a)
	if err != nil {
		c.logger.Error("failed to store pending action", "kind", a.Kind, "error", err)
		http.Error(w, "Failed to prepare action", http.StatusInternalServerError)
		return
	}

	if isHTMX(r) {
		d := dialogFor(proposed)
		c.renderPartial(w, http.StatusOK, "dialog", dialogData{Dialog: &d, CSRFToken: getCSRFToken(r)})
		return
	}
	http.Redirect(w, r, sectionPath(getSession(r).ActiveSection), http.StatusSeeOther)
}

// handleCancel discards the pending action.
func (c *Console) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	if err := c.handle(r).Cancel(r.Context()); err != nil {
		c.logger.Error("failed to cancel pending action", "error", err)
	}
	if isHTMX(r) {
		c.renderPartial(w, http.StatusOK, "dialog", dialogData{CSRFToken: getCSRFToken(r)})
		return
	}
	http.Redirect(w, r, sectionPath(getSession(r).ActiveSection), http.StatusSeeOther)
}

// handleConfirm executes the pending action if, and only if, its id matches. The
// action is consumed before it runs, so a repeated confirm does nothing.
func (c *Console) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	sess := getSession(r)

	a, err := c.handle(r).Take(r.Context(), r.PathValue("id"))
	if errors.Is(err, session.ErrNotPending) {
		c.logger.Info("confirmation for an action that is no longer pending", "action_id", r.PathValue("id"))
		c.setFlash(w, r, "error", "That action is no longer pending")
		c.redirect(w, r, sectionPath(sess.ActiveSection))
		return
	}
	if err != nil {
		c.logger.Error("failed to take pending action", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if a.Kind == session.KindLogout {
		c.audit(r, a, nil)
		c.signOut(w, r)
		return
	}

	info := kinds[a.Kind]
	ctx, cancel := c.detached(r)
	defer cancel()

	err = c.execute(ctx, c.api(r), sess.ID, a)
	c.audit(r, a, err)

	if c.expired(w, r, err) {
		return
	}
	if err != nil {
		c.logger.Error("confirmed action failed", "kind", a.Kind, "target_id", a.TargetID, "error", err)
		c.setFlash(w, r, "error", backend.UserMessage(err, info.failed))
		c.redirect(w, r, sectionPath(info.section))
		return
	}

	c.logger.Info("confirmed action executed", "kind", a.Kind, "target_id", a.TargetID, "username", sess.Operator)
	c.setFlash(w, r, "notice", info.succeeded)
	c.redirect(w, r, sectionPath(info.section))
}

// detached returns a context that survives the browser going away, so a mutation
// that reached the backend is always reflected in the cache.
func (c *Console) detached(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), c.config.MutationTimeout)
}

// execute issues the backend mutation for a and updates the panel caches. Users and
// products are refetched on next view; estimates and posts are patched in place.
func (c *Console) execute(ctx context.Context, api *backend.Client, sessionID string, a session.PendingAction) error {
	switch a.Kind {
	case session.KindUserApprove, session.KindUserReject, session.KindUserDisable, session.KindUserEnable:
		if err := api.SetUserStatus(ctx, a.TargetID, userStatusFor(a.Kind)); err != nil {
			return err
		}
		c.users.Invalidate(sessionID)

	case session.KindProductCreate:
		var img *backend.Image
		if a.Image != nil {
			img = &backend.Image{Filename: a.Image.Filename, ContentType: a.Image.ContentType, Data: a.Image.Data}
		}
		if _, err := api.CreateProduct(ctx, *a.NewProduct, img); err != nil {
			return err
		}
		c.products.Invalidate(productsKey(sessionID, model.ProductActive))

	case session.KindProductUpdate:
		if err := api.UpdateProduct(ctx, a.TargetID, *a.ProductUpdate); err != nil {
			return err
		}
		c.products.Invalidate(productsKey(sessionID, model.ProductActive))

	case session.KindProductDelete:
		if err := api.DeleteProduct(ctx, a.TargetID); err != nil {
			return err
		}
		c.products.Invalidate(productsKey(sessionID, model.ProductActive))
		c.products.Invalidate(productsKey(sessionID, model.ProductInactive))

	case session.KindEstimateSend, session.KindEstimateClose:
		status := model.EstimateSent
		if a.Kind == session.KindEstimateClose {
			status = model.EstimateClosed
		}
		if err := api.SetEstimateStatus(ctx, a.TargetID, status); err != nil {
			return err
		}
		c.estimates.Patch(sessionID, func(items []model.Estimate) []model.Estimate {
			for i := range items {
				if items[i].ID == a.TargetID {
					items[i].Status = status
				}
			}
			return items
		})

	case session.KindPostCreate:
		created, err := api.CreatePost(ctx, *a.Post)
		if err != nil {
			return err
		}
		if created == nil || !c.posts.Patch(sessionID, func(items []model.Post) []model.Post {
			return append([]model.Post{*created}, items...)
		}) {
			c.posts.Invalidate(sessionID)
		}

	case session.KindPostUpdate:
		updated, err := api.UpdatePost(ctx, a.TargetID, *a.Post)
		if err != nil {
			return err
		}
		c.posts.Patch(sessionID, func(items []model.Post) []model.Post {
			for i := range items {
				if items[i].ID != a.TargetID {
					continue
				}
				if updated != nil {
					items[i] = *updated
				} else {
					items[i] = a.Post.Apply(items[i])
				}
			}
			return items
		})

	case session.KindPostDelete:
		if err := api.DeletePost(ctx, a.TargetID); err != nil {
			return err
		}
		c.posts.Patch(sessionID, func(items []model.Post) []model.Post {
			out := items[:0]
			for _, p := range items {
				if p.ID != a.TargetID {
					out = append(out, p)
				}
			}
			return out
		})

	case session.KindPostPublish, session.KindPostUnpublish:
		status := model.PostPublished
		if a.Kind == session.KindPostUnpublish {
			status = model.PostDraft
		}
		if err := api.SetPostStatus(ctx, a.TargetID, status); err != nil {
			return err
		}
		c.posts.Patch(sessionID, func(items []model.Post) []model.Post {
			for i := range items {
				if items[i].ID == a.TargetID {
					items[i].Status = status
				}
			}
			return items
		})

	default:
		return fmt.Errorf("no executor for %q", a.Kind)
	}
	return nil
}

func userStatusFor(k session.Kind) model.UserStatus {
	switch k {
	case session.KindUserReject:
		return model.UserRejected
	case session.KindUserDisable:
		return model.UserDisabled
	default:
		return model.UserApproved
	}
}

// audit appends the outcome of a confirmed action to the local audit log.
func (c *Console) audit(r *http.Request, a session.PendingAction, err error) {
	sess := getSession(r)
	entry := &store.AuditEntry{
		SessionID:  sess.ID,
		Actor:      sess.Operator,
		Action:     string(a.Kind),
		TargetType: a.TargetType(),
		TargetID:   a.TargetID,
		Outcome:    store.OutcomeSuccess,
		Message:    kinds[a.Kind].succeeded,
	}
	if a.TargetName != "" {
		entry.Detail = map[string]any{"target_name": a.TargetName}
	}
	if err != nil {
		entry.Outcome = store.OutcomeFailure
		entry.Message = backend.UserMessage(err, kinds[a.Kind].failed)
	}

	ctx, cancel := c.detached(r)
	defer cancel()
	if err := c.store.AppendAuditLog(ctx, entry); err != nil {
		c.logger.Warn("failed to append audit entry", "kind", a.Kind, "error", err)
	}
}
