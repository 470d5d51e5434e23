// ABOUTME: Estimates panel: quote list, line-item detail, send/close and file exports
// ABOUTME: Exports are projections of the cached estimate and never call the backend

package console

import (
	"fmt"
	"net/http"

	"github.com/2389/lot-admin/internal/export"
	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/panel"
	"github.com/2389/lot-admin/internal/session"
)

var estimateKinds = map[model.Action]session.Kind{
	model.ActionSend:  session.KindEstimateSend,
	model.ActionClose: session.KindEstimateClose,
}

type estimateRow struct {
	model.Estimate
	Actions []rowAction
}

type estimatesTableData struct {
	listState
	Rows []estimateRow
}

type estimatesPageData struct {
	pageData
	Table    estimatesTableData
	Statuses []model.EstimateStatus
}

type estimateDetailData struct {
	pageData
	Estimate model.Estimate
	Actions  []rowAction
}

func (c *Console) handleEstimatesPage(w http.ResponseWriter, r *http.Request) {
	data := estimatesPageData{
		pageData: c.enter(w, r, SectionEstimates, "Estimates"),
		Statuses: []model.EstimateStatus{model.EstimateNew, model.EstimateSent, model.EstimateClosed},
	}

	estimates, err := c.estimates.Load(r.Context(), getSession(r).ID, c.api(r).ListEstimates)
	table, ok := c.estimatesTable(w, r, estimates, err)
	if !ok {
		return
	}
	data.Table = table
	c.renderPage(w, http.StatusOK, "estimates.html", data)
}

func (c *Console) handleEstimatesRows(w http.ResponseWriter, r *http.Request) {
	estimates, err := cached(r.Context(), c.estimates, getSession(r).ID, c.api(r).ListEstimates)
	table, ok := c.estimatesTable(w, r, estimates, err)
	if !ok {
		return
	}
	c.renderPartial(w, http.StatusOK, "estimates_table", table)
}

func (c *Console) estimatesTable(w http.ResponseWriter, r *http.Request, estimates []model.Estimate, err error) (estimatesTableData, bool) {
	table := estimatesTableData{listState: listStateFrom(r)}
	if err != nil {
		if table.LoadError = c.loadFailed(w, r, err, "Failed to load estimates"); table.LoadError == "" {
			return table, false
		}
		return table, true
	}
	for _, e := range panel.Filter(estimates, table.Query) {
		if table.Status != "" && string(e.Status) != table.Status {
			continue
		}
		table.Rows = append(table.Rows, estimateRow{Estimate: e, Actions: actionsFor(model.EstimateLifecycle, e.Status)})
	}
	return table, true
}

// findEstimate looks the estimate up in the cached list, fetching it when the
// cache is cold.
func (c *Console) findEstimate(w http.ResponseWriter, r *http.Request) (model.Estimate, bool) {
	estimates, err := cached(r.Context(), c.estimates, getSession(r).ID, c.api(r).ListEstimates)
	if err != nil {
		if msg := c.loadFailed(w, r, err, "Failed to load estimates"); msg != "" {
			http.Error(w, msg, http.StatusBadGateway)
		}
		return model.Estimate{}, false
	}
	id := r.PathValue("id")
	e, ok := find(estimates, func(e model.Estimate) bool { return e.ID == id })
	if !ok {
		http.Error(w, "Estimate not found", http.StatusNotFound)
	}
	return e, ok
}

func (c *Console) handleEstimateDetail(w http.ResponseWriter, r *http.Request) {
	e, ok := c.findEstimate(w, r)
	if !ok {
		return
	}
	data := estimateDetailData{
		pageData: c.enter(w, r, SectionEstimates, "Estimate "+e.ID),
		Estimate: e,
		Actions:  actionsFor(model.EstimateLifecycle, e.Status),
	}
	c.renderPage(w, http.StatusOK, "estimate.html", data)
}

func (c *Console) handleEstimateAction(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	action := model.Action(r.PathValue("action"))
	kind, ok := estimateKinds[action]
	if !ok {
		http.Error(w, "Unknown action", http.StatusNotFound)
		return
	}

	e, ok := c.findEstimate(w, r)
	if !ok {
		return
	}
	if !model.EstimateLifecycle.Allowed(e.Status, action) {
		http.Error(w, fmt.Sprintf("A %s estimate cannot be marked %s", e.Status, action), http.StatusConflict)
		return
	}
	c.propose(w, r, session.Transition(kind, e.ID, e.Customer.Label()))
}

// cachedEstimate returns an estimate only from already-fetched data.
func (c *Console) cachedEstimate(w http.ResponseWriter, r *http.Request) (model.Estimate, bool) {
	estimates, ok := c.estimates.Get(getSession(r).ID)
	if !ok {
		c.setFlash(w, r, "error", "Estimates are no longer loaded; open the list and try again")
		http.Redirect(w, r, "/estimates", http.StatusSeeOther)
		return model.Estimate{}, false
	}
	id := r.PathValue("id")
	e, ok := find(estimates, func(e model.Estimate) bool { return e.ID == id })
	if !ok {
		http.Error(w, "Estimate not found", http.StatusNotFound)
	}
	return e, ok
}

func (c *Console) handleEstimateSpreadsheet(w http.ResponseWriter, r *http.Request) {
	e, ok := c.cachedEstimate(w, r)
	if !ok {
		return
	}
	data, err := export.Spreadsheet(e)
	if err != nil {
		c.logger.Error("failed to build spreadsheet", "estimate_id", e.ID, "error", err)
		http.Error(w, "Failed to export estimate", http.StatusInternalServerError)
		return
	}
	c.download(w, export.ContentTypeXLSX, export.Filename(e, "xlsx", c.now()), data)
}

func (c *Console) handleEstimatePDF(w http.ResponseWriter, r *http.Request) {
	e, ok := c.cachedEstimate(w, r)
	if !ok {
		return
	}
	data, err := export.PDF(e, c.config.Issuer)
	if err != nil {
		c.logger.Error("failed to build pdf", "estimate_id", e.ID, "error", err)
		http.Error(w, "Failed to export estimate", http.StatusInternalServerError)
		return
	}
	c.download(w, export.ContentTypePDF, export.Filename(e, "pdf", c.now()), data)
}

func (c *Console) download(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
