package ui

import (
	"fmt"
	"net/url"

	"flexidb/internal/domain"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

func auditPage(principal domain.ContextPrincipal, query url.Values, page *domain.AuditPage) gomponents.Node {
	if len(page.Entries) == 0 {
		return appPage("Audit log", "audit", principal,
			card(html.P(html.Class("muted"), gomponents.Text("No operations recorded yet."))))
	}

	rows := make([]gomponents.Node, 0, len(page.Entries))
	for _, e := range page.Entries {
		tone := "ok"
		switch e.Status {
		case domain.AuditStatusRejected:
			tone = "warn"
		case domain.AuditStatusError:
			tone = "bad"
		}
		rows = append(rows, html.Tr(
			html.Td(gomponents.Text(formatTime(e.CreatedAt))),
			html.Td(html.Code(gomponents.Text(e.Action))),
			html.Td(gomponents.Text(e.Database+"."+e.Table)),
			html.Td(statusLabel(e.Status, tone)),
			html.Td(gomponents.Text(e.Message)),
			html.Td(gomponents.Text(e.PrincipalName)),
			html.Td(gomponents.Text(fmt.Sprintf("%d ms", e.DurationMs))),
		))
	}
	return appPage("Audit log", "audit", principal,
		card(html.Table(
			html.THead(html.Tr(
				html.Th(gomponents.Text("When")), html.Th(gomponents.Text("Operation")), html.Th(gomponents.Text("Target")),
				html.Th(gomponents.Text("Status")), html.Th(gomponents.Text("Message")), html.Th(gomponents.Text("Principal")),
				html.Th(gomponents.Text("Duration")),
			)),
			html.TBody(gomponents.Group(rows)),
		)),
		pager("/ui/audit", query, page.Pagination),
	)
}
