package ui

import (
	"fmt"
	"net/http"

	"covtrack/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func renderFormPage(w http.ResponseWriter, r *http.Request, title, active, action string, fields ...Node) {
	p := principalFromContext(r.Context())
	nodes := []Node{csrfField(r)}
	nodes = append(nodes, fields...)
	renderHTML(w, http.StatusOK, appPage(
		title,
		active,
		p,
		Div(
			Class(cardClass()),
			Form(
				Method("post"),
				Action(action),
				Class("form-grid"),
				Group(nodes),
				Div(Button(Type("submit"), Class(primaryButtonClass()), Text("Save"))),
			),
		),
	))
}

// importFormCard renders the CSV upload form shared by the metric and
// coverage import flows.
func importFormCard(action, legend string, csrf Node) Node {
	return Div(
		Class(cardClass()),
		Form(
			Method("post"),
			Action(action),
			EncType("multipart/form-data"),
			Class("toolbar"),
			csrf,
			Span(Class(mutedClass()), Text(legend)),
			Input(Type("file"), Name("file"), Accept(".csv"), Required()),
			Button(Type("submit"), Class("btn"), Text("Import CSV")),
		),
	)
}

func importResultPage(principal domain.ContextPrincipal, active, title string, report *domain.ImportReport) Node {
	return appPage(
		"Import Result",
		active,
		principal,
		Div(
			Class(cardClass()),
			H2(Text(title)),
			P(Text(fmt.Sprintf("%d rows processed: %d inserted, %d duplicates, %d errors.",
				report.Total, report.Inserted, report.Duplicates, report.Errors))),
			P(
				Text("Each row is annotated in the stored report file: "),
				A(Href("/ui/reports/"+report.ReportFile), Text(report.ReportFile)),
			),
		),
	)
}
