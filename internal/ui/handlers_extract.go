package ui

import (
	"net/http"

	"covtrack/internal/domain"
	"covtrack/internal/service/extract"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func (h *Handler) ExtractPage(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, extractPage(principalFromContext(r.Context()), "", nil, "", "", csrfField(r)))
}

func (h *Handler) ExtractSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	text := first(r.Form["text"])

	res, err := h.Extract.Analyze(r.Context(), text)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	region, engine, err := h.Extract.Rotation(r.Context(), text)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, extractPage(principalFromContext(r.Context()), text, res, region, engine, csrfField(r)))
}

func extractPage(principal domain.ContextPrincipal, text string, res *extract.Result, region, engine string, csrf Node) Node {
	result := Node(nil)
	if res != nil {
		result = Div(
			Class(cardClass()),
			H2(Text("Extraction result")),
			P(Text("Probes: "+extract.RenderProbes(res.Probes))),
			P(Text("Regions: "+joinOrNothing(res.Regions))),
			P(Text("Engines: "+joinOrNothing(res.Engines))),
			P(Text("Rotation: region "+region+", engine "+engine)),
		)
	}
	return appPage(
		"Extract",
		"extract",
		principal,
		Div(
			Class(cardClass()),
			P(Class(mutedClass()), Text("Paste test case text to pull out telemetry probes, regions, and search engines.")),
			Form(
				Method("post"),
				Action("/ui/extract"),
				Class("form-grid"),
				csrf,
				Textarea(Name("text"), Required(), Text(text)),
				Div(Button(Type("submit"), Class(primaryButtonClass()), Text("Analyze"))),
			),
		),
		result,
	)
}

func joinOrNothing(values []string) string {
	if len(values) == 0 {
		return extract.NothingFound
	}
	out := values[0]
	for i := 1; i < len(values); i++ {
		out += ", " + values[i]
	}
	return out
}
