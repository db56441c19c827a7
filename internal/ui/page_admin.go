package ui

import (
	"covtrack/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type exceptionRowData struct {
	TCID   string
	Reason string
}

type userRowData struct {
	ID       string
	Username string
	Email    string
	Role     string
}

type adminPageData struct {
	Engines    []string
	Exceptions []exceptionRowData
	Users      []userRowData
	CSRF       Node
}

func adminPage(principal domain.ContextPrincipal, d adminPageData) Node {
	return appPage(
		"Admin",
		"admin",
		principal,
		enginesCard(d),
		exceptionsCard(d),
		usersCard(d),
	)
}

func enginesCard(d adminPageData) Node {
	rows := make([]Node, 0, len(d.Engines))
	for _, name := range d.Engines {
		rows = append(rows, Tr(
			Td(Text(name)),
			Td(Form(
				Method("post"),
				Action("/ui/admin/engines/"+name+"/remove"),
				Class("inline-form"),
				d.CSRF,
				Button(Type("submit"), Class("btn btn-sm btn-danger"), Text("Remove")),
			)),
		))
	}
	return Div(
		Class(cardClass()),
		H2(Text("Supported engines")),
		P(Class(mutedClass()), Text("Engines recognized by extraction and offered on coverage forms.")),
		Table(Class("data-table"), TBody(Group(rows))),
		Form(
			Method("post"),
			Action("/ui/admin/engines"),
			Class("toolbar"),
			d.CSRF,
			Input(Name("name"), Required(), Placeholder("startpage")),
			Button(Type("submit"), Class("btn"), Text("Add engine")),
		),
	)
}

func exceptionsCard(d adminPageData) Node {
	rows := make([]Node, 0, len(d.Exceptions))
	for _, e := range d.Exceptions {
		rows = append(rows, Tr(
			Td(Text(e.TCID)),
			Td(Text(e.Reason)),
			Td(Form(
				Method("post"),
				Action("/ui/admin/exceptions/"+e.TCID+"/remove"),
				Class("inline-form"),
				d.CSRF,
				Button(Type("submit"), Class("btn btn-sm btn-danger"), Text("Remove")),
			)),
		))
	}
	table := Node(P(Class(mutedClass()), Text("No excluded test cases.")))
	if len(rows) > 0 {
		table = Table(Class("data-table"),
			THead(Tr(Th(Text("TCID")), Th(Text("Reason")), Th(Text("")))),
			TBody(Group(rows)),
		)
	}
	return Div(
		Class(cardClass()),
		H2(Text("Exceptions")),
		P(Class(mutedClass()), Text("Excluded TCIDs are hidden from coverage reads and rejected on writes.")),
		table,
		Form(
			Method("post"),
			Action("/ui/admin/exceptions"),
			Class("toolbar"),
			d.CSRF,
			Input(Name("tc_id"), Required(), Placeholder("C1042")),
			Input(Name("reason"), Placeholder("Reason")),
			Button(Type("submit"), Class("btn"), Text("Exclude")),
		),
	)
}

func usersCard(d adminPageData) Node {
	rows := make([]Node, 0, len(d.Users))
	for _, u := range d.Users {
		roleForm := Form(
			Method("post"),
			Action("/ui/admin/users/"+u.ID+"/role"),
			Class("inline-form"),
			d.CSRF,
			Select(
				Name("role"),
				roleOption(domain.RoleViewer, u.Role),
				roleOption(domain.RoleAdmin, u.Role),
			),
			Button(Type("submit"), Class("btn btn-sm"), Text("Set role")),
		)
		rows = append(rows, Tr(
			Td(Text(u.Username)),
			Td(Text(u.Email)),
			Td(statusLabel(u.Role, "accent")),
			Td(
				roleForm,
				Form(
					Method("post"),
					Action("/ui/admin/users/"+u.ID+"/remove"),
					Class("inline-form"),
					d.CSRF,
					Button(Type("submit"), Class("btn btn-sm btn-danger"), Text("Delete")),
				),
			),
		))
	}
	return Div(
		Class(cardClass()),
		H2(Text("Users")),
		Table(Class("data-table"),
			THead(Tr(Th(Text("Username")), Th(Text("Email")), Th(Text("Role")), Th(Text("")))),
			TBody(Group(rows)),
		),
		Form(
			Method("post"),
			Action("/ui/admin/users"),
			Class("form-grid"),
			d.CSRF,
			Label(Text("Username")),
			Input(Name("username"), Required()),
			Label(Text("Email")),
			Input(Type("email"), Name("email"), Required()),
			Label(Text("Password")),
			Input(Type("password"), Name("password"), Required()),
			Label(Text("Role")),
			Select(
				Name("role"),
				Option(Value(domain.RoleViewer), Text(domain.RoleViewer)),
				Option(Value(domain.RoleAdmin), Text(domain.RoleAdmin)),
			),
			Div(Button(Type("submit"), Class(primaryButtonClass()), Text("Create user"))),
		),
	)
}

func roleOption(role, current string) Node {
	if role == current {
		return Option(Value(role), Selected(), Text(role))
	}
	return Option(Value(role), Text(role))
}
