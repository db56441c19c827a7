package ui

import (
	"fmt"

	"covtrack/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type reportRowData struct {
	Name    string
	Size    string
	ModTime string
}

func reportsPage(principal domain.ContextPrincipal, rows []reportRowData) Node {
	tableRows := make([]Node, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, Tr(
			Td(A(Href("/ui/reports/"+row.Name), Text(row.Name))),
			Td(Text(row.Size)),
			Td(Text(row.ModTime)),
		))
	}
	tableNode := Node(emptyStateCard("No import reports yet. Reports appear after a CSV bulk import."))
	if len(tableRows) > 0 {
		tableNode = Div(Class(cardClass()), Table(Class("data-table"),
			THead(Tr(Th(Text("File")), Th(Text("Size")), Th(Text("Created")))),
			TBody(Group(tableRows)),
		))
	}
	return appPage(
		"Import Reports",
		"reports",
		principal,
		Div(
			Class(cardClass()),
			P(Class(mutedClass()), Text("Each bulk import stores an annotated copy of its input with a per-row status column. Old reports are purged automatically.")),
		),
		tableNode,
	)
}

type activityRowData struct {
	Filter    string
	Username  string
	Action    string
	TableName string
	RecordKey string
	Details   string
	CreatedAt string
}

func activityPage(principal domain.ContextPrincipal, rows []activityRowData, page domain.PageRequest, total int64) Node {
	tableRows := make([]Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		tableRows = append(tableRows, Tr(
			data.Show(containsExpr(row.Filter)),
			Td(Text(row.CreatedAt)),
			Td(Text(row.Username)),
			Td(statusLabel(row.Action, "accent")),
			Td(Text(row.TableName)),
			Td(Text(row.RecordKey)),
			Td(Text(row.Details)),
		))
	}
	tableNode := Node(emptyStateCard("No activity recorded yet."))
	if len(tableRows) > 0 {
		tableNode = Div(Class(cardClass()), Table(Class("data-table"),
			THead(Tr(Th(Text("When")), Th(Text("User")), Th(Text("Action")), Th(Text("Table")), Th(Text("Record")), Th(Text("Details")))),
			TBody(Group(tableRows)),
		))
	}

	pagination := Node(nil)
	next := domain.NextPageToken(page.Offset(), page.Limit(), total)
	if next != "" {
		pagination = Div(
			Class(cardClass()),
			P(Class(mutedClass()), Text(fmt.Sprintf("Showing up to %d of %d entries.", page.Limit(), total))),
			A(Href(fmt.Sprintf("/ui/activity?max_results=%d&page_token=%s", page.Limit(), next)), Text("Next page ->")),
		)
	}

	return appPage(
		"Activity",
		"activity",
		principal,
		quickFilterCard("Filter by user, action, or record"),
		tableNode,
		pagination,
	)
}
