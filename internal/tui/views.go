package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusAssembled = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusExported  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	statusFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusPending   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	familyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (a *App) View() string {
	var s string
	switch a.view {
	case ViewSessionList:
		s = a.viewSessionList()
	case ViewSessionDetail:
		s = a.viewSessionDetail()
	case ViewPipelines:
		s = a.viewPipelines()
	case ViewCatalog:
		s = a.viewCatalog()
	}
	return s + "\n" + a.help.View(a.keys.forView(a.view))
}

func (a *App) viewSessionList() string {
	s := titleStyle.Render("pmtrain") + "\n\n"

	if a.err != nil {
		s += errorStyle.Render(fmt.Sprintf("Error: %v", a.err)) + "\n\n"
	}

	if len(a.sessions) == 0 {
		s += "No sessions yet. Press 'n' to assemble a pipeline.\n"
		return s
	}

	s += "Recent Sessions\n"
	s += "───────────────\n"
	for i, session := range a.sessions {
		line := a.formatSessionLine(session)
		switch {
		case i == a.selectedIdx:
			line = selectedStyle.Render("▶ " + line)
		case session.Status == models.SessionStatusExported:
			line = "  " + dimStyle.Render(line)
		default:
			line = "  " + line
		}
		s += line + "\n"
	}
	return s
}

func (a *App) formatSessionLine(session *models.Session) string {
	status := formatStatus(session.Status)
	age := formatAge(session.CreatedAt)
	return fmt.Sprintf("#%-3d %-20s %s  %-6s  %d stages", session.ID, truncate(session.DocumentName, 20), status, age, session.StageCount)
}

func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%dd", days)
	}
}

func formatStatus(status models.SessionStatus) string {
	switch status {
	case models.SessionStatusAssembled:
		return statusAssembled.Render("✓ assembled")
	case models.SessionStatusExported:
		return statusExported.Render("➜ exported ")
	case models.SessionStatusFailed:
		return statusFailed.Render("✗ failed   ")
	case models.SessionStatusPending:
		return statusPending.Render("○ pending  ")
	default:
		return string(status)
	}
}

func (a *App) viewSessionDetail() string {
	if a.selectedSession == nil {
		return "No session selected\n"
	}
	session := a.selectedSession

	header := fmt.Sprintf("Session #%d: %s", session.ID, session.DocumentName)
	s := titleStyle.Render(header) + "  " + formatStatus(session.Status) + "\n\n"

	s += labelStyle.Render("ID:        ") + dimStyle.Render(session.UUID) + "\n"
	if session.SourcePath != "" {
		s += labelStyle.Render("Source:    ") + dimStyle.Render(session.SourcePath) + "\n"
	}
	if session.WorkspacePath != "" {
		s += labelStyle.Render("Workspace: ") + dimStyle.Render(session.WorkspacePath) + "\n"
	}
	if session.Error != "" {
		s += "\n" + errorStyle.Render(session.Error) + "\n"
	}

	s += "\nStages\n"
	s += "──────\n"
	if len(a.stages) == 0 {
		s += "(no stages)\n"
		return s
	}

	for i, stage := range a.stages {
		line := fmt.Sprintf("%d. %-38s %s", stage.StageIndex, stage.Kind,
			familyStyle.Render(mlctx.StageInfo{Family: stage.Family, Algorithm: stage.Algorithm}.String()))
		if i == a.selectedStageIdx {
			s += selectedStyle.Render("▶ "+line) + "\n"
			for _, arg := range stage.Args {
				s += "     " + labelStyle.Render(arg.Name+" = ") + formatArg(arg.Value) + "\n"
			}
		} else {
			s += "  " + line + "\n"
		}
	}
	return s
}

func formatArg(v any) string {
	if v == nil {
		return dimStyle.Render("<none>")
	}
	return fmt.Sprint(v)
}

func (a *App) viewPipelines() string {
	s := titleStyle.Render("New Session") + "\n\n"

	if len(a.docNames) == 0 {
		s += "  (no pipelines found)\n"
		return s
	}

	s += "Available pipelines:\n"
	for i, name := range a.docNames {
		doc := a.docs[name]
		line := fmt.Sprintf("%-24s %d components", name, len(doc.Components))
		if doc.Description != "" {
			line += "  " + dimStyle.Render(truncate(doc.Description, 40))
		}
		if i == a.pipelineIdx {
			s += selectedStyle.Render("▶ "+line) + "\n"
		} else {
			s += "  " + line + "\n"
		}
	}
	return s
}

func (a *App) viewCatalog() string {
	s := titleStyle.Render("Trainer Catalog") + "\n\n"

	var family mlctx.Family
	for i, d := range a.catalog {
		if d.Family != family {
			family = d.Family
			s += familyStyle.Render(string(family)) + "\n"
		}
		name := d.Kind
		if len(d.Aliases) > 0 {
			name += dimStyle.Render(" (" + strings.Join(d.Aliases, ", ") + ")")
		}
		if i != a.catalogIdx {
			s += "    " + name + "\n"
			continue
		}
		s += selectedStyle.Render("  ▶ "+d.Kind) + "\n"
		for _, p := range d.Params {
			req := "required"
			if p.Optional {
				req = "optional"
			}
			s += fmt.Sprintf("        %-28s %-8s %s\n", p.Name, p.Type, labelStyle.Render(req))
		}
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
