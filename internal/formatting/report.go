package formatting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"git-sync-operator/internal/app"
	"git-sync-operator/internal/reconciler"
	"git-sync-operator/pkg/strings"
)

// VersionRow is one ledger record.
type VersionRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Applied   string `json:"applied,omitempty"`
	Deployed  string `json:"deployed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusReport is the ledger content of the managed namespaces.
type StatusReport struct {
	Records []VersionRow `json:"records"`
}

// NewStatusReport flattens statuses into rows. A namespace that could not
// be read yields a single row carrying the error; one without records
// yields an empty placeholder row.
func NewStatusReport(statuses []app.NamespaceStatus) StatusReport {
	report := StatusReport{Records: []VersionRow{}}
	for _, st := range statuses {
		if st.Err != nil {
			report.Records = append(report.Records, VersionRow{Namespace: st.Namespace, Error: st.Err.Error()})
			continue
		}
		if len(st.Records) == 0 {
			report.Records = append(report.Records, VersionRow{Namespace: st.Namespace})
			continue
		}
		for _, rec := range st.Records {
			report.Records = append(report.Records, VersionRow{
				Namespace: st.Namespace,
				Name:      rec.Name,
				Applied:   string(rec.Applied),
				Deployed:  string(rec.Deployed),
			})
		}
	}
	return report
}

func (StatusReport) Title() string { return "" }

func (StatusReport) Header() table.Row {
	return table.Row{"NAMESPACE", "NAME", "APPLIED", "DEPLOYED", "ERROR"}
}

func (r StatusReport) Rows() []table.Row {
	rows := make([]table.Row, 0, len(r.Records))
	for _, rec := range r.Records {
		rows = append(rows, table.Row{rec.Namespace, orDash(rec.Name), orDash(rec.Applied), orDash(rec.Deployed), strings.SingleLine(rec.Error, strings.DefaultMaxLen)})
	}
	return rows
}

// NamespaceRow is the outcome of one namespace in a pass.
type NamespaceRow struct {
	Namespace  string   `json:"namespace"`
	Previous   string   `json:"previous,omitempty"`
	Stale      bool     `json:"stale"`
	Recorded   bool     `json:"recorded"`
	Gated      bool     `json:"gated"`
	Annotated  []string `json:"annotated,omitempty"`
	RollingOut []string `json:"rollingOut,omitempty"`
	Deployed   []string `json:"deployed,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// PassReport summarises one reconciliation pass.
type PassReport struct {
	ID           string         `json:"id"`
	Revision     string         `json:"revision"`
	RefreshError string         `json:"refreshError,omitempty"`
	Namespaces   []NamespaceRow `json:"namespaces"`
}

func NewPassReport(pass reconciler.PassResult) PassReport {
	report := PassReport{
		ID:         pass.ID,
		Revision:   string(pass.Revision),
		Namespaces: []NamespaceRow{},
	}
	if pass.RefreshErr != nil {
		report.RefreshError = pass.RefreshErr.Error()
	}
	for _, ns := range pass.Namespaces {
		row := NamespaceRow{
			Namespace:  ns.Namespace,
			Previous:   string(ns.Applied),
			Stale:      ns.Stale,
			Recorded:   ns.Recorded,
			Gated:      ns.Rollout.Gated,
			Annotated:  ns.Rollout.Annotated,
			RollingOut: ns.Rollout.RollingOut,
			Deployed:   ns.Rollout.Deployed,
		}
		if ns.Err != nil {
			row.Error = ns.Err.Error()
		}
		report.Namespaces = append(report.Namespaces, row)
	}
	return report
}

func (r PassReport) Title() string {
	title := fmt.Sprintf("Pass %s at %s", r.ID, orDash(r.Revision))
	if r.RefreshError != "" {
		title += " (refresh failed)"
	}
	return title
}

func (PassReport) Header() table.Row {
	return table.Row{"NAMESPACE", "PREVIOUS", "APPLIED", "ANNOTATED", "ROLLING OUT", "DEPLOYED", "ERROR"}
}

func (r PassReport) Rows() []table.Row {
	rows := make([]table.Row, 0, len(r.Namespaces))
	for _, ns := range r.Namespaces {
		applied := "no"
		switch {
		case ns.Recorded:
			applied = "yes"
		case !ns.Stale && ns.Error == "":
			applied = "current"
		}
		rows = append(rows, table.Row{
			ns.Namespace, orDash(ns.Previous), applied,
			len(ns.Annotated), len(ns.RollingOut), len(ns.Deployed), strings.SingleLine(ns.Error, strings.DefaultMaxLen),
		})
	}
	return rows
}
