package ui

import (
	"covtrack/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type metricRowData struct {
	Filter       string
	Name         string
	Category     string
	Expiration   string
	SearchMetric bool
	EditURL      string
}

func metricsListPage(principal domain.ContextPrincipal, v domain.Variant, rows []metricRowData, csrf Node) Node {
	isAdmin := principal.IsAdmin()
	tableRows := make([]Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		search := Node(Text("-"))
		if row.SearchMetric {
			search = statusLabel("search", "accent")
		}
		cells := []Node{
			data.Show(containsExpr(row.Filter)),
			Td(Text(row.Name)),
			Td(Text(row.Category)),
			Td(Text(row.Expiration)),
			Td(search),
		}
		if isAdmin {
			cells = append(cells, Td(A(Href(row.EditURL), Class("btn btn-sm"), Text("Edit"))))
		}
		tableRows = append(tableRows, Tr(cells...))
	}
	tableNode := Node(emptyStateCard("No " + v.Label() + " metrics recorded yet."))
	if len(tableRows) > 0 {
		header := []Node{Th(Text("Name")), Th(Text("Category")), Th(Text("Expiration")), Th(Text("Type"))}
		if isAdmin {
			header = append(header, Th(Text("")))
		}
		tableNode = Div(Class(cardClass()), Table(Class("data-table"),
			THead(Tr(header...)),
			TBody(Group(tableRows)),
		))
	}

	body := []Node{}
	if principal.IsAdmin() {
		body = append(body,
			Div(
				Class(cardClass("toolbar")),
				A(Href("/ui/metrics/"+string(v)+"/new"), Class(primaryButtonClass()), Text("New metric")),
				A(Href("/v1/metrics/"+string(v)+"/export"), Class("btn"), Text("Export CSV")),
			),
			importFormCard("/ui/metrics/"+string(v)+"/import",
				"Bulk import metric definitions (name, category, expiration, ...).", csrf),
		)
	}
	body = append(body, quickFilterCard("Filter by metric name or category"), tableNode)

	return appPage(
		v.Label()+" Metrics",
		navKeyForVariant(v),
		principal,
		body...,
	)
}
