package ui

import (
	"fmt"
	"strconv"

	"covtrack/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

func planningPage(principal domain.ContextPrincipal, v domain.Variant, rows []domain.PlanningRow, csrf Node) Node {
	isAdmin := principal.IsAdmin()
	backURL := "/ui/planning/" + string(v)

	blocks := make([]Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		blocks = append(blocks, planningMetricCard(row, v, backURL, isAdmin, csrf))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, emptyStateCard("No "+v.Label()+" metrics to plan for."))
	}

	body := []Node{
		variantTabs("/ui/planning", v),
		quickFilterCard("Filter by metric name"),
	}
	body = append(body, blocks...)
	return appPage(v.Label()+" Planning", "planning", principal, body...)
}

func planningMetricCard(row domain.PlanningRow, v domain.Variant, backURL string, isAdmin bool, csrf Node) Node {
	head := Div(
		Class("toolbar"),
		H2(Text(row.MetricName)),
		P(Class(mutedClass()), Text(fmt.Sprintf("%d TCs, %d regions, %d engines covered",
			row.TCIDCount, row.RegionCount, row.EngineCount))),
	)

	meta := Div(
		P(
			Text("Priority: "),
			statusLabel(strOrDash(row.Priority), "accent"),
		),
		P(Class(mutedClass()), Text("Notes: "+strOrDash(row.Notes))),
	)
	if isAdmin {
		meta = Div(
			Form(
				Method("post"),
				Action("/ui/planning/"+string(v)+"/"+row.MetricName+"/priority"),
				Class("toolbar"),
				csrf,
				Label(Text("Priority")),
				Input(Name("priority"), Value(derefOrEmpty(row.Priority)), Placeholder("P1")),
				Button(Type("submit"), Class("btn btn-sm"), Text("Save")),
			),
			Form(
				Method("post"),
				Action("/ui/planning/"+string(v)+"/"+row.MetricName+"/notes"),
				Class("toolbar"),
				csrf,
				Label(Text("Notes")),
				Input(Name("notes"), Value(derefOrEmpty(row.Notes))),
				Button(Type("submit"), Class("btn btn-sm"), Text("Save")),
			),
		)
	}

	planned := make([]Node, 0, len(row.Planned))
	for _, p := range row.Planned {
		cells := []Node{
			Td(Text(derefOr(p.Region, domain.NoRegion))),
			Td(Text(derefOr(p.Engine, domain.NoEngine))),
		}
		if isAdmin {
			id := strconv.FormatInt(p.ID, 10)
			cells = append(cells, Td(
				Form(
					Method("post"),
					Action("/ui/planning/plans/"+id+"/promote"),
					Class("inline-form"),
					csrf,
					Input(Type("hidden"), Name("back"), Value(backURL)),
					Input(Name("tc_id"), Required(), Placeholder("C1042")),
					Button(Type("submit"), Class("btn btn-sm btn-primary"), Text("Promote")),
				),
				Form(
					Method("post"),
					Action("/ui/planning/plans/"+id+"/remove"),
					Class("inline-form"),
					csrf,
					Input(Type("hidden"), Name("back"), Value(backURL)),
					Button(Type("submit"), Class("btn btn-sm btn-danger"), Text("Remove")),
				),
			))
		}
		planned = append(planned, Tr(cells...))
	}

	plansSection := Node(P(Class(mutedClass()), Text("No outstanding plans.")))
	if len(planned) > 0 {
		header := []Node{Th(Text("Region")), Th(Text("Engine"))}
		if isAdmin {
			header = append(header, Th(Text("")))
		}
		plansSection = Table(Class("data-table"), THead(Tr(header...)), TBody(Group(planned)))
	}

	addPlan := Node(nil)
	if isAdmin {
		addPlan = Form(
			Method("post"),
			Action("/ui/planning/"+string(v)+"/"+row.MetricName+"/plans"),
			Class("toolbar"),
			csrf,
			Input(Name("regions"), Placeholder("Regions: US, DE")),
			Input(Name("engines"), Placeholder("Engines: google, bing")),
			Button(Type("submit"), Class("btn btn-sm"), Text("Plan combinations")),
		)
	}

	return Div(
		Class(cardClass()),
		data.Show(containsExpr(row.MetricName)),
		head,
		meta,
		plansSection,
		addPlan,
	)
}
