package ui

import (
	"fmt"
	"net/url"

	"flexidb/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type historyPageData struct {
	Database string
	Table    string
	Columns  *domain.ColumnsResult
	History  *domain.HistoryPage
}

func historyPage(principal domain.ContextPrincipal, d historyPageData) Node {
	body := []Node{tableForm(d.Database, d.Table)}
	if d.Table == "" {
		body = append(body, card(P(Class("muted"), Text("Pick a table to see its live columns and change history."))))
		return appPage("Column history", "history", principal, body...)
	}
	if d.Columns != nil {
		body = append(body, columnsCard(d.Columns))
	}
	if d.History != nil {
		q := url.Values{}
		q.Set("table", d.Table)
		if d.Database != "" {
			q.Set("database", d.Database)
		}
		body = append(body, historyCard(d.History), pager("/ui/history", q, d.History.Pagination))
	}
	return appPage("Column history", "history", principal, body...)
}

func tableForm(database, table string) Node {
	return card(Form(
		Class("inline"),
		Method("get"),
		Action("/ui/history"),
		Div(Label(For("table"), Text("Table")), Br(), Input(ID("table"), Name("table"), Value(table), Required())),
		Div(Label(For("database"), Text("Database")), Br(), Input(ID("database"), Name("database"), Value(database), Placeholder("default"))),
		Button(Type("submit"), Text("Show")),
	))
}

func columnsCard(cols *domain.ColumnsResult) Node {
	rows := make([]Node, 0, len(cols.Columns))
	for _, c := range cols.Columns {
		rows = append(rows, Tr(
			Td(Code(Text(c.Name))),
			Td(Code(Text(c.Type))),
			Td(Text(domain.Nullability(c.Nullable))),
			Td(Text(strOrDash(c.Default))),
			Td(Text(c.Key)),
			Td(Text(c.Comment)),
		))
	}
	return card(
		H2(Text(fmt.Sprintf("%s.%s", cols.Database, cols.Table))),
		Table(
			THead(Tr(Th(Text("Column")), Th(Text("Type")), Th(Text("Nullable")), Th(Text("Default")), Th(Text("Key")), Th(Text("Comment")))),
			TBody(Group(rows)),
		),
	)
}

func historyCard(page *domain.HistoryPage) Node {
	if len(page.Records) == 0 {
		return card(P(Class("muted"), Text("No column changes recorded for this table.")))
	}
	rows := make([]Node, 0, len(page.Records))
	for _, rec := range page.Records {
		rows = append(rows, Tr(
			Td(Text(formatTime(rec.ChangedAt))),
			Td(actionLabel(rec.Action)),
			Td(Code(Text(rec.Column))),
			Td(Text(change(rec.OldType, rec.NewType))),
			Td(Text(change(rec.OldNullable, rec.NewNullable))),
			Td(Text(change(rec.OldDefault, rec.NewDefault))),
			Td(Text(strOrDash(rec.RenamedTo))),
		))
	}
	return card(
		H2(Text("Changes")),
		Table(
			THead(Tr(Th(Text("When")), Th(Text("Action")), Th(Text("Column")), Th(Text("Type")), Th(Text("Nullable")), Th(Text("Default")), Th(Text("Renamed to")))),
			TBody(Group(rows)),
		),
	)
}

func actionLabel(a domain.ChangeAction) Node {
	switch a {
	case domain.ActionDrop:
		return statusLabel(string(a), "bad")
	case domain.ActionModify, domain.ActionRename:
		return statusLabel(string(a), "warn")
	default:
		return statusLabel(string(a), "ok")
	}
}

func change(from, to *string) string {
	if from == nil && to == nil {
		return "-"
	}
	if from == nil {
		return strOrDash(to)
	}
	if to == nil || *from == *to {
		return strOrDash(from)
	}
	return strOrDash(from) + " -> " + strOrDash(to)
}
