package ui

import (
	"strconv"
	"strings"
	"time"

	"covtrack/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Overview", Href: "/ui", Key: "home"},
	{Label: "Glean", Href: "/ui/metrics/glean", Key: "glean"},
	{Label: "Legacy", Href: "/ui/metrics/legacy", Key: "legacy"},
	{Label: "Coverage", Href: "/ui/coverage/glean", Key: "coverage"},
	{Label: "Planning", Href: "/ui/planning/glean", Key: "planning"},
	{Label: "Extract", Href: "/ui/extract", Key: "extract"},
	{Label: "Reports", Href: "/ui/reports", Key: "reports"},
	{Label: "Activity", Href: "/ui/activity", Key: "activity"},
}

var adminNavItems = []navItem{
	{Label: "Admin", Href: "/ui/admin", Key: "admin"},
}

func appPage(title, active string, principal domain.ContextPrincipal, body ...Node) Node {
	items := navItems
	if principal.IsAdmin() {
		items = append(append([]navItem{}, navItems...), adminNavItems...)
	}
	nav := make([]Node, 0, len(items))
	for _, item := range items {
		className := "app-nav-link"
		if item.Key == active {
			className += " active"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}

	principalLabel := principal.Name
	if principalLabel == "" {
		principalLabel = "unknown"
	}

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Coverage Tracker")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/ui/static/app.css")),
			Script(
				Type("module"),
				Src("https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"),
			),
		),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text("Coverage Tracker")),
						P(Class("muted"), Text("Telemetry test coverage")),
					),
					Nav(Class("app-nav"), Group(nav)),
				),
				Section(
					Class("app-main"),
					Div(
						Class("topbar"),
						H1(Class("page-title"), Text(title)),
						Div(
							P(Class("muted"), Text("Signed in as "+principalLabel+" ("+principal.Role+")")),
							Form(
								Method("post"),
								Action("/ui/logout"),
								Button(Type("submit"), Class("btn btn-sm"), Text("Sign out")),
							),
						),
					),
					Div(Class("content"), Group(body)),
				),
			),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Coverage Tracker")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/ui/static/app.css")),
		),
		Body(
			Main(
				Class("app-main"),
				H1(Class("page-title"), Text(title)),
				P(Text(message)),
				P(A(Href("/ui"), Text("Back to overview"))),
			),
		),
	)
}

func loginPage(errMsg string) Node {
	content := []Node{
		H1(Text("Coverage Tracker")),
		P(Class("muted"), Text("Sign in to browse telemetry test coverage.")),
		Form(
			Method("post"),
			Action("/ui/login"),
			Class("login-form"),
			Label(Text("Username")),
			Input(Name("username"), Required(), AutoComplete("username")),
			Label(Text("Password")),
			Input(Type("password"), Name("password"), Required(), AutoComplete("current-password")),
			Button(Type("submit"), Class("btn btn-primary"), Text("Sign In")),
		),
	}
	if errMsg != "" {
		content = append([]Node{P(Class("error"), Text("Error: "+errMsg))}, content...)
	}

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text("Sign in | Coverage Tracker")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href("/ui/static/app.css")),
		),
		Body(
			Class("login-body"),
			Main(Class("login-wrap"), Group(content)),
		),
	)
}

func cardClass(extra ...string) string {
	parts := []string{"card"}
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

func mutedClass() string {
	return "muted"
}

func primaryButtonClass() string {
	return "btn btn-primary"
}

func strOrDash(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "-"
	}
	return *v
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}

func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}

func quickFilterCard(placeholder string, extraControls ...Node) Node {
	controls := []Node{
		Input(Type("search"), Placeholder(placeholder), data.Bind("q"), AutoComplete("off")),
	}
	controls = append(controls, extraControls...)
	return Div(
		Class(cardClass("toolbar")),
		data.Signals(map[string]any{"q": ""}),
		Group(controls),
	)
}

func emptyStateCard(message string) Node {
	return Div(
		Class(cardClass()),
		P(Class(mutedClass()), Text(message)),
	)
}

func statusLabel(text, tone string) Node {
	className := "label"
	if tone != "" {
		className += " label-" + tone
	}
	return Span(Class(className), Text(text))
}

// variantTabs links the glean/legacy flavors of one page.
func variantTabs(basePath string, active domain.Variant) Node {
	tabs := make([]Node, 0, 2)
	for _, v := range []domain.Variant{domain.VariantGlean, domain.VariantLegacy} {
		class := "btn btn-sm"
		if v == active {
			class = "btn btn-sm btn-primary"
		}
		tabs = append(tabs, A(Href(basePath+"/"+string(v)), Class(class), Text(v.Label())))
	}
	return Div(Class(cardClass("toolbar")), Group(tabs))
}
