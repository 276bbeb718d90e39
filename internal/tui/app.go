package tui

import (
	"context"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riahtu/pmtrain/internal/models"
	"github.com/riahtu/pmtrain/internal/orchestrator"
)

type View int

const (
	ViewSessionList View = iota
	ViewSessionDetail
	ViewPipelines
	ViewCatalog
)

type App struct {
	orchestrator *orchestrator.Orchestrator
	docs         map[string]*models.Document
	docNames     []string
	catalog      []models.Descriptor

	keys keyMap
	help help.Model

	view             View
	sessions         []*models.Session
	selectedIdx      int
	selectedSession  *models.Session
	stages           []*models.StageRecord
	selectedStageIdx int
	pipelineIdx      int
	catalogIdx       int

	width  int
	height int
	err    error
}

func NewApp(orch *orchestrator.Orchestrator, docs map[string]*models.Document) *App {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	return &App{
		orchestrator: orch,
		docs:         docs,
		docNames:     names,
		catalog:      orch.Assembler().Registry().Descriptors(),
		keys:         defaultKeys(),
		help:         help.New(),
		view:         ViewSessionList,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadSessions
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQ) {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case sessionsLoadedMsg:
		a.sessions = msg.sessions
		a.err = msg.err
		if a.selectedIdx >= len(a.sessions) {
			a.selectedIdx = max(len(a.sessions)-1, 0)
		}
		return a, nil

	case sessionDetailMsg:
		a.selectedSession = msg.session
		a.stages = msg.stages
		a.err = msg.err
		if a.err == nil {
			a.selectedStageIdx = 0
			a.view = ViewSessionDetail
		}
		return a, nil

	case sessionStartedMsg:
		// Assembly failures are recorded on the session itself
		a.err = msg.err
		a.view = ViewSessionList
		a.selectedIdx = 0
		return a, a.loadSessions

	case sessionDeletedMsg:
		a.err = msg.err
		if a.selectedIdx >= len(a.sessions)-1 && a.selectedIdx > 0 {
			a.selectedIdx--
		}
		return a, a.loadSessions
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.view {
	case ViewSessionList:
		return a.handleSessionListKey(msg)
	case ViewSessionDetail:
		return a.handleSessionDetailKey(msg)
	case ViewPipelines:
		return a.handlePipelinesKey(msg)
	case ViewCatalog:
		return a.handleCatalogKey(msg)
	}
	return a, nil
}

func (a *App) handleSessionListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		a.selectedIdx = moveUp(a.selectedIdx)
	case key.Matches(msg, a.keys.Down):
		a.selectedIdx = moveDown(a.selectedIdx, len(a.sessions))
	case key.Matches(msg, a.keys.Enter):
		if s := a.currentSession(); s != nil {
			return a, a.loadSessionDetail(s.ID)
		}
	case key.Matches(msg, a.keys.New):
		a.view = ViewPipelines
	case key.Matches(msg, a.keys.Catalog):
		a.view = ViewCatalog
	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadSessions
	case key.Matches(msg, a.keys.Delete):
		if s := a.currentSession(); s != nil {
			return a, a.deleteSession(s.ID)
		}
	}
	return a, nil
}

func (a *App) handleSessionDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.view = ViewSessionList
		a.selectedSession = nil
		a.stages = nil
		a.selectedStageIdx = 0
	case key.Matches(msg, a.keys.Up):
		a.selectedStageIdx = moveUp(a.selectedStageIdx)
	case key.Matches(msg, a.keys.Down):
		a.selectedStageIdx = moveDown(a.selectedStageIdx, len(a.stages))
	}
	return a, nil
}

func (a *App) handlePipelinesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.view = ViewSessionList
	case key.Matches(msg, a.keys.Up):
		a.pipelineIdx = moveUp(a.pipelineIdx)
	case key.Matches(msg, a.keys.Down):
		a.pipelineIdx = moveDown(a.pipelineIdx, len(a.docNames))
	case key.Matches(msg, a.keys.Enter):
		if a.pipelineIdx < len(a.docNames) {
			return a, a.startSession(a.docs[a.docNames[a.pipelineIdx]])
		}
	}
	return a, nil
}

func (a *App) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.view = ViewSessionList
	case key.Matches(msg, a.keys.Up):
		a.catalogIdx = moveUp(a.catalogIdx)
	case key.Matches(msg, a.keys.Down):
		a.catalogIdx = moveDown(a.catalogIdx, len(a.catalog))
	}
	return a, nil
}

func (a *App) currentSession() *models.Session {
	if a.selectedIdx < len(a.sessions) {
		return a.sessions[a.selectedIdx]
	}
	return nil
}

func moveUp(i int) int {
	if i > 0 {
		return i - 1
	}
	return i
}

func moveDown(i, n int) int {
	if i < n-1 {
		return i + 1
	}
	return i
}

// Messages

type sessionsLoadedMsg struct {
	sessions []*models.Session
	err      error
}

type sessionDetailMsg struct {
	session *models.Session
	stages  []*models.StageRecord
	err     error
}

type sessionStartedMsg struct {
	session *models.Session
	err     error
}

type sessionDeletedMsg struct {
	sessionID int64
	err       error
}

// Commands

func (a *App) loadSessions() tea.Msg {
	sessions, err := a.orchestrator.ListSessions(20)
	return sessionsLoadedMsg{sessions: sessions, err: err}
}

func (a *App) loadSessionDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		session, err := a.orchestrator.GetSession(id)
		if err != nil {
			return sessionDetailMsg{err: err}
		}

		stages, err := a.orchestrator.GetStages(id)
		return sessionDetailMsg{session: session, stages: stages, err: err}
	}
}

func (a *App) startSession(doc *models.Document) tea.Cmd {
	return func() tea.Msg {
		session, err := a.orchestrator.Run(context.Background(), doc)
		return sessionStartedMsg{session: session, err: err}
	}
}

func (a *App) deleteSession(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.orchestrator.DeleteSession(id); err != nil {
			return sessionDeletedMsg{err: err}
		}
		return sessionDeletedMsg{sessionID: id}
	}
}
