package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"covtrack/internal/domain"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

func uiVariant(r *http.Request) (domain.Variant, error) {
	return domain.ParseVariant(chi.URLParam(r, "variant"))
}

func (h *Handler) MetricsList(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	list, err := h.Metrics.List(r.Context(), v)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	rows := make([]metricRowData, 0, len(list))
	for _, m := range list {
		rows = append(rows, metricRowData{
			Filter:       m.Name + " " + m.Category,
			Name:         m.Name,
			Category:     m.Category,
			Expiration:   strOrDash(m.Expiration),
			SearchMetric: m.SearchMetric,
			EditURL:      "/ui/metrics/" + string(v) + "/" + m.Name + "/edit",
		})
	}
	renderHTML(w, http.StatusOK, metricsListPage(principalFromContext(r.Context()), v, rows, csrfField(r)))
}

func (h *Handler) MetricsNew(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderFormPage(w, r, "New "+v.Label()+" Metric", navKeyForVariant(v), "/ui/metrics/"+string(v),
		html.Label(gomponents.Text("Name")),
		html.Input(html.Name("name"), html.Required()),
		html.Label(gomponents.Text("Category")),
		html.Input(html.Name("category"), html.Placeholder(domain.DefaultCategory)),
		html.Label(gomponents.Text("Expiration")),
		html.Input(html.Name("expiration")),
		html.Label(gomponents.Text("Description")),
		html.Textarea(html.Name("description")),
		html.Label(gomponents.Text("Cross reference")),
		html.Input(html.Name("cross_reference")),
		html.Label(
			html.Input(html.Type("checkbox"), html.Name("search_metric")),
			gomponents.Text(" Search metric"),
		),
	)
}

func (h *Handler) MetricsCreate(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	_, err = h.Metrics.Add(r.Context(), &domain.Metric{
		Name:           formString(r.Form, "name"),
		Variant:        v,
		Category:       formString(r.Form, "category"),
		Expiration:     formOptionalString(r.Form, "expiration"),
		Description:    formOptionalString(r.Form, "description"),
		CrossReference: formOptionalString(r.Form, "cross_reference"),
		SearchMetric:   formBool(r.Form, "search_metric"),
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/metrics/"+string(v), http.StatusSeeOther)
}

func (h *Handler) MetricsEdit(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	m, err := h.Metrics.Get(r.Context(), name, v)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	searchBox := html.Input(html.Type("checkbox"), html.Name("search_metric"))
	if m.SearchMetric {
		searchBox = html.Input(html.Type("checkbox"), html.Name("search_metric"), html.Checked())
	}
	renderFormPage(w, r, "Edit "+m.Name, navKeyForVariant(v),
		"/ui/metrics/"+string(v)+"/"+name+"/update",
		html.Label(gomponents.Text("Category")),
		html.Input(html.Name("category"), html.Value(m.Category)),
		html.Label(gomponents.Text("Expiration")),
		html.Input(html.Name("expiration"), html.Value(derefOrEmpty(m.Expiration))),
		html.Label(gomponents.Text("Description")),
		html.Textarea(html.Name("description"), gomponents.Text(derefOrEmpty(m.Description))),
		html.Label(gomponents.Text("Cross reference")),
		html.Input(html.Name("cross_reference"), html.Value(derefOrEmpty(m.CrossReference))),
		html.Label(searchBox, gomponents.Text(" Search metric")),
	)
}

func (h *Handler) MetricsUpdate(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	searchMetric := formBool(r.Form, "search_metric")
	_, err = h.Metrics.Update(r.Context(), name, v, domain.MetricPatch{
		Category:       formOptionalString(r.Form, "category"),
		Expiration:     formOptionalString(r.Form, "expiration"),
		Description:    formOptionalString(r.Form, "description"),
		CrossReference: formOptionalString(r.Form, "cross_reference"),
		SearchMetric:   &searchMetric,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/metrics/"+string(v), http.StatusSeeOther)
}

func (h *Handler) MetricsImport(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Choose a CSV file to import."))
		return
	}
	defer file.Close()

	report, err := h.MetricImporter.Import(r.Context(), v, file)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, importResultPage(principalFromContext(r.Context()),
		navKeyForVariant(v), v.Label()+" metric import", report))
}

func navKeyForVariant(v domain.Variant) string {
	if v == domain.VariantLegacy {
		return "legacy"
	}
	return "glean"
}

func derefOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
