// ABOUTME: Users panel: account approval table with search and status filter
// ABOUTME: Approve, reject, disable and enable are proposed here and executed on confirm

package console

import (
	"net/http"

	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/panel"
	"github.com/2389/lot-admin/internal/session"
)

var userKinds = map[model.Action]session.Kind{
	model.ActionApprove: session.KindUserApprove,
	model.ActionReject:  session.KindUserReject,
	model.ActionDisable: session.KindUserDisable,
	model.ActionEnable:  session.KindUserEnable,
}

type userRow struct {
	model.User
	Actions []rowAction
}

type userCounts struct {
	Pending, Approved, Rejected, Disabled int
}

type usersTableData struct {
	listState
	Rows   []userRow
	Counts userCounts
}

type usersPageData struct {
	pageData
	Table    usersTableData
	Statuses []model.UserStatus
}

func (c *Console) handleUsersPage(w http.ResponseWriter, r *http.Request) {
	data := usersPageData{
		pageData: c.enter(w, r, SectionUsers, "Users"),
		Statuses: []model.UserStatus{model.UserPending, model.UserApproved, model.UserRejected, model.UserDisabled},
	}

	users, err := c.users.Load(r.Context(), getSession(r).ID, c.api(r).ListUsers)
	table, ok := c.usersTable(w, r, users, err)
	if !ok {
		return
	}
	data.Table = table
	c.renderPage(w, http.StatusOK, "users.html", data)
}

// handleUsersRows renders the filtered table from the cached collection.
func (c *Console) handleUsersRows(w http.ResponseWriter, r *http.Request) {
	users, err := cached(r.Context(), c.users, getSession(r).ID, c.api(r).ListUsers)
	table, ok := c.usersTable(w, r, users, err)
	if !ok {
		return
	}
	c.renderPartial(w, http.StatusOK, "users_table", table)
}

func (c *Console) usersTable(w http.ResponseWriter, r *http.Request, users []model.User, err error) (usersTableData, bool) {
	table := usersTableData{listState: listStateFrom(r)}
	if err != nil {
		if table.LoadError = c.loadFailed(w, r, err, "Failed to load users"); table.LoadError == "" {
			return table, false
		}
		return table, true
	}

	counts := model.CountByStatus(users)
	table.Counts = userCounts{
		Pending:  counts[model.UserPending],
		Approved: counts[model.UserApproved],
		Rejected: counts[model.UserRejected],
		Disabled: counts[model.UserDisabled],
	}
	for _, u := range panel.Filter(users, table.Query) {
		if table.Status != "" && string(u.Status) != table.Status {
			continue
		}
		table.Rows = append(table.Rows, userRow{User: u, Actions: actionsFor(model.UserLifecycle, u.Status)})
	}
	return table, true
}

// handleUserAction proposes a status change for one account.
func (c *Console) handleUserAction(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	id := r.PathValue("id")
	action := model.Action(r.PathValue("action"))

	kind, ok := userKinds[action]
	if !ok {
		http.Error(w, "Unknown action", http.StatusNotFound)
		return
	}

	users, err := cached(r.Context(), c.users, getSession(r).ID, c.api(r).ListUsers)
	if err != nil {
		if msg := c.loadFailed(w, r, err, "Failed to load users"); msg != "" {
			http.Error(w, msg, http.StatusBadGateway)
		}
		return
	}
	user, ok := find(users, func(u model.User) bool { return u.ID == id })
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if !model.UserLifecycle.Allowed(user.Status, action) {
		http.Error(w, "That action is not available for this user", http.StatusConflict)
		return
	}

	name := user.Company
	if name == "" {
		name = user.Email
	}
	c.propose(w, r, session.Transition(kind, user.ID, name))
}
