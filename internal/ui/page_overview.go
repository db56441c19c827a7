package ui

import (
	"strconv"

	"covtrack/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type overviewData struct {
	GleanMetrics     int64
	LegacyMetrics    int64
	GleanCoveredTCs  int64
	LegacyCoveredTCs int64
}

func overviewPage(principal domain.ContextPrincipal, d overviewData) Node {
	stat := func(label string, value int64, href string) Node {
		return Div(
			Class(cardClass("stat-card")),
			P(Class(mutedClass()), Text(label)),
			Div(Class("stat-value"), Text(strconv.FormatInt(value, 10))),
			A(Href(href), Text("Browse ->")),
		)
	}
	return appPage(
		"Overview",
		"home",
		principal,
		Div(
			Class("stat-grid"),
			stat("Glean metrics", d.GleanMetrics, "/ui/metrics/glean"),
			stat("Legacy metrics", d.LegacyMetrics, "/ui/metrics/legacy"),
			stat("Glean covered TCs", d.GleanCoveredTCs, "/ui/coverage/glean"),
			stat("Legacy covered TCs", d.LegacyCoveredTCs, "/ui/coverage/legacy"),
		),
		Div(
			Class(cardClass()),
			P(Text("Record which manual test cases exercise which telemetry metrics, "+
				"by region and search engine. Plan missing combinations and promote "+
				"them to real coverage once a test case lands.")),
		),
	)
}
