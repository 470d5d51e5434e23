// ABOUTME: Dashboard section: stat cards fetched concurrently and recent console activity
// ABOUTME: A failing card shows a placeholder; only an expired session fails the whole view

package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/2389/lot-admin/internal/backend"
	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/store"
)

const (
	statUnavailable = "—"
	recentActivity  = 10
)

type statCard struct {
	Label string
	Value string
	Path  string
}

type dashboardData struct {
	pageData
	Activity []store.AuditEntry
}

type statsData struct {
	Cards []statCard
}

func (c *Console) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{pageData: c.enter(w, r, SectionDashboard, "Dashboard")}

	activity, err := c.store.ListAuditLog(r.Context(), store.AuditFilter{Limit: recentActivity})
	if err != nil {
		c.logger.Warn("failed to load recent activity", "error", err)
	}
	data.Activity = activity

	c.renderPage(w, http.StatusOK, "dashboard.html", data)
}

// handleDashboardStats renders the stat cards partial. The lookups run
// concurrently; an expired credential cancels the rest.
func (c *Console) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	cards, err := c.stats(r)
	if c.expired(w, r, err) {
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("failed to load dashboard stats", "error", err)
	}
	c.renderPartial(w, http.StatusOK, "stats", statsData{Cards: cards})
}

func (c *Console) stats(r *http.Request) ([]statCard, error) {
	api := c.api(r)
	sessionID := getSession(r).ID

	cards := []statCard{
		{Label: "Pending users", Value: statUnavailable, Path: "/users?status=pending"},
		{Label: "Approved users", Value: statUnavailable, Path: "/users?status=approved"},
		{Label: "Total products", Value: statUnavailable, Path: "/products"},
		{Label: "New estimates", Value: statUnavailable, Path: "/estimates?status=new"},
	}

	g, ctx := errgroup.WithContext(r.Context())
	// soft reports a card failure without cancelling its siblings.
	soft := func(name string, err error) error {
		if errors.Is(err, backend.ErrSessionExpired) {
			return err
		}
		c.logger.Warn("dashboard stat unavailable", "stat", name, "error", err)
		return nil
	}

	g.Go(func() error {
		users, err := c.users.Load(ctx, sessionID, api.ListUsers)
		if err != nil {
			return soft("users", err)
		}
		counts := model.CountByStatus(users)
		cards[0].Value = strconv.Itoa(counts[model.UserPending])
		cards[1].Value = strconv.Itoa(counts[model.UserApproved])
		return nil
	})
	g.Go(func() error {
		n, err := api.TotalProducts(ctx)
		if err != nil {
			return soft("total_products", err)
		}
		cards[2].Value = strconv.Itoa(n)
		return nil
	})
	g.Go(func() error {
		n, err := api.NewEstimates(ctx)
		if err != nil {
			return soft("new_estimates", err)
		}
		cards[3].Value = strconv.Itoa(n)
		return nil
	})

	err := g.Wait()
	return cards, err
}
