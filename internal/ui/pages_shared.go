package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"flexidb/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Column history", Href: "/ui/history", Key: "history"},
	{Label: "Audit log", Href: "/ui/audit", Key: "audit"},
}

func appPage(title, active string, principal domain.ContextPrincipal, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := ""
		if item.Key == active {
			className = "active"
		}
		nav = append(nav, A(Href(item.Href), Class(className), Text(item.Label)))
	}

	return Doctype(HTML(
		Lang("en"),
		head(title),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Strong(Text("FlexiDB")),
					P(Class("muted"), Text("Schema and row mutation engine")),
					Nav(Class("app-nav"), Group(nav)),
				),
				Section(
					Class("app-main"),
					Div(
						Class("topbar"),
						H1(Text(title)),
						P(Class("muted"), Text("Signed in as "+principal.Name)),
					),
					Group(body),
				),
			),
		),
	))
}

func errorPage(title, message string) Node {
	return Doctype(HTML(
		Lang("en"),
		head(title),
		Body(
			Main(
				Class("app-main"),
				H1(Text(title)),
				P(Text(message)),
				P(A(Href("/ui/history"), Text("Back to column history"))),
			),
		),
	))
}

func head(title string) Node {
	return Head(
		Meta(Charset("utf-8")),
		Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
		TitleEl(Text(title+" | FlexiDB")),
		Link(Rel("icon"), Href("data:,")),
		StyleEl(Raw(stylesheet)),
		Script(Raw(themeInitScript)),
	)
}

func card(children ...Node) Node {
	return Div(Class("card"), Group(children))
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.DateTime)
}

func strOrDash(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "-"
	}
	return *v
}

func statusLabel(text, tone string) Node {
	return Span(Class("label label-"+tone), Text(text))
}

// pager renders previous/next links that keep the current query string.
func pager(basePath string, query url.Values, p domain.Pagination) Node {
	link := func(page int, label string) Node {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", fmt.Sprint(page))
		q.Set("limit", fmt.Sprint(p.Limit))
		return A(Href(basePath+"?"+q.Encode()), Text(label))
	}

	nodes := []Node{
		Span(Class("muted"), Text(fmt.Sprintf("Page %d of %d (%d entries)", p.CurrentPage, max(p.TotalPages, 1), p.TotalRows))),
	}
	if p.CurrentPage > 1 {
		nodes = append(nodes, Text(" "), link(p.CurrentPage-1, "<- Previous"))
	}
	if int64(p.CurrentPage) < p.TotalPages {
		nodes = append(nodes, Text(" "), link(p.CurrentPage+1, "Next ->"))
	}
	return P(Group(nodes))
}
