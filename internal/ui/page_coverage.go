package ui

import (
	"fmt"
	"strconv"

	"covtrack/internal/domain"
	"covtrack/internal/service/coverage"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type linkRowData struct {
	LinkID int64
	TCID   string
	Title  string
	Region string
	Engine string
}

type coverageRowData struct {
	Filter      string
	MetricName  string
	TCIDCount   int
	RegionCount int
	EngineCount int
	Details     []linkRowData
}

func coverageListPage(principal domain.ContextPrincipal, v domain.Variant, rows []coverageRowData, csrf Node) Node {
	isAdmin := principal.IsAdmin()
	blocks := make([]Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		detailRows := make([]Node, 0, len(row.Details))
		for _, d := range row.Details {
			cells := []Node{
				Td(Text(d.TCID)),
				Td(Text(d.Title)),
				Td(Text(d.Region)),
				Td(Text(d.Engine)),
			}
			if isAdmin {
				cells = append(cells, Td(
					deleteForm("/ui/deletions", string(domain.DeleteCoverageLink),
						strconv.FormatInt(d.LinkID, 10), "/ui/coverage/"+string(v), "Remove", csrf),
				))
			}
			detailRows = append(detailRows, Tr(cells...))
		}
		header := []Node{Th(Text("TCID")), Th(Text("Title")), Th(Text("Region")), Th(Text("Engine"))}
		if isAdmin {
			header = append(header, Th(Text("")))
		}
		blocks = append(blocks, Div(
			Class(cardClass()),
			data.Show(containsExpr(row.Filter)),
			Div(
				Class("toolbar"),
				H2(Text(row.MetricName)),
				P(Class(mutedClass()), Text(fmt.Sprintf("%d TCs, %d regions, %d engines",
					row.TCIDCount, row.RegionCount, row.EngineCount))),
			),
			Table(Class("data-table"), THead(Tr(header...)), TBody(Group(detailRows))),
		))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, emptyStateCard("No "+v.Label()+" coverage recorded yet."))
	}

	body := []Node{variantTabs("/ui/coverage", v)}
	if isAdmin {
		body = append(body,
			Div(
				Class(cardClass("toolbar")),
				A(Href("/ui/coverage/"+string(v)+"/new"), Class(primaryButtonClass()), Text("Add coverage")),
				A(Href("/ui/coverage/"+string(v)+"/report"), Class("btn"), Text("Report")),
				A(Href("/v1/coverage/"+string(v)+"/export"), Class("btn"), Text("Export CSV")),
			),
			importFormCard("/ui/coverage/import",
				"Bulk import coverage rows (tc_id, title, metrics, metric_variant, region, engine).", csrf),
		)
	} else {
		body = append(body, Div(
			Class(cardClass("toolbar")),
			A(Href("/ui/coverage/"+string(v)+"/report"), Class("btn"), Text("Report")),
		))
	}
	body = append(body, quickFilterCard("Filter by metric name"))
	body = append(body, blocks...)

	return appPage(v.Label()+" Coverage", "coverage", principal, body...)
}

func deleteForm(action, kind, key, back, label string, csrf Node) Node {
	return Form(
		Method("post"),
		Action(action),
		Class("inline-form"),
		csrf,
		Input(Type("hidden"), Name("kind"), Value(kind)),
		Input(Type("hidden"), Name("key"), Value(key)),
		Input(Type("hidden"), Name("back"), Value(back)),
		Button(Type("submit"), Class("btn btn-sm btn-danger"), Text(label)),
	)
}

func coverageNewPage(principal domain.ContextPrincipal, v domain.Variant, engines []string, csrf Node) Node {
	engineBoxes := make([]Node, 0, len(engines))
	for _, e := range engines {
		engineBoxes = append(engineBoxes, Label(
			Input(Type("checkbox"), Name("engines"), Value(e)),
			Text(" "+e),
		))
	}

	return appPage(
		"Add "+v.Label()+" Coverage",
		"coverage",
		principal,
		Div(
			Class(cardClass()),
			Form(
				Method("post"),
				Action("/ui/coverage"),
				Class("form-grid"),
				csrf,
				Input(Type("hidden"), Name("variant"), Value(string(v))),
				Label(Text("Test case id")),
				Input(Name("tc_id"), Required(), Placeholder("C1042")),
				Label(Text("Title")),
				Input(Name("title")),
				Label(Text("Metrics (comma or newline separated)")),
				Textarea(Name("metrics"), Required()),
				Label(Text("Regions (comma separated)")),
				Input(Name("regions"), Placeholder("US, DE")),
				Label(Text("Engines")),
				Div(Group(engineBoxes)),
				Div(Button(Type("submit"), Class(primaryButtonClass()), Text("Record coverage"))),
			),
		),
	)
}

func coverageResultPage(principal domain.ContextPrincipal, v domain.Variant, res *coverage.AddEntryResult) Node {
	skipped := Node(nil)
	if len(res.SkippedMetrics) > 0 {
		items := make([]Node, 0, len(res.SkippedMetrics))
		for _, m := range res.SkippedMetrics {
			items = append(items, Li(Text(m)))
		}
		skipped = Div(
			P(Text("Unknown metrics were skipped:")),
			Ul(Group(items)),
		)
	}
	return appPage(
		"Coverage Recorded",
		"coverage",
		principal,
		Div(
			Class(cardClass()),
			P(Text(res.Message)),
			P(Class(mutedClass()), Text(fmt.Sprintf("TC %s: %d links inserted, %d duplicates.",
				res.TCID, res.Inserted, res.Duplicates))),
			skipped,
			P(A(Href("/ui/coverage/"+string(v)), Text("Back to coverage"))),
		),
	)
}

func coverageReportPage(principal domain.ContextPrincipal, v domain.Variant, rows []domain.ReportRow) Node {
	tableRows := make([]Node, 0, len(rows))
	for _, row := range rows {
		tone := "danger"
		if row.TCIDCount > 0 {
			tone = "success"
		}
		tableRows = append(tableRows, Tr(
			data.Show(containsExpr(row.MetricName)),
			Td(Text(row.MetricName)),
			Td(statusLabel(strconv.FormatInt(row.TCIDCount, 10), tone)),
		))
	}
	tableNode := Node(emptyStateCard("No " + v.Label() + " metrics to report on."))
	if len(tableRows) > 0 {
		tableNode = Div(Class(cardClass()), Table(Class("data-table"),
			THead(Tr(Th(Text("Metric")), Th(Text("Covered TCs")))),
			TBody(Group(tableRows)),
		))
	}
	return appPage(
		v.Label()+" Coverage Report",
		"coverage",
		principal,
		variantTabs("/ui/coverage", v),
		quickFilterCard("Filter by metric name"),
		tableNode,
	)
}
