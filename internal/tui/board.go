// Package tui renders the live order board for operators.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/popeat/popeat/internal/repository"
	"github.com/popeat/popeat/internal/repository/sqlite"
	"github.com/popeat/popeat/internal/service"
)

const boardLimit = 50

// Model is the order board TUI model. It polls the store directly and
// refreshes every few seconds.
type Model struct {
	store  *sqlite.Store
	table  table.Model
	counts map[string]int64

	width  int
	height int

	loading bool
	err     error

	keys keyMap
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
	Refresh key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// NewModel creates the order board model.
func NewModel(store *sqlite.Store) Model {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Status", Width: 12},
		{Title: "Client", Width: 8},
		{Title: "Restaurant", Width: 10},
		{Title: "Courier", Width: 8},
		{Title: "Total", Width: 12},
		{Title: "Updated", Width: 19},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())
	return Model{
		store:   store,
		table:   t,
		counts:  map[string]int64{},
		keys:    defaultKeyMap(),
		loading: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadOrders(), tickCmd())
}

type ordersLoadedMsg struct {
	rows   []table.Row
	counts map[string]int64
}

type errorMsg struct {
	err error
}

type tickMsg time.Time

func (m Model) loadOrders() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		orders, err := m.store.Orders().List(ctx, repository.OrderFilter{Limit: boardLimit})
		if err != nil {
			return errorMsg{err: err}
		}
		statusCounts, err := m.store.Orders().CountByStatus(ctx)
		if err != nil {
			return errorMsg{err: err}
		}

		rows := make([]table.Row, 0, len(orders))
		for _, order := range orders {
			courier := "-"
			if order.DeliveryPersonID != nil {
				courier = strconv.FormatInt(*order.DeliveryPersonID, 10)
			}
			rows = append(rows, table.Row{
				strconv.FormatInt(order.ID, 10),
				string(order.Status),
				strconv.FormatInt(order.ClientID, 10),
				strconv.FormatInt(order.RestaurantID, 10),
				courier,
				service.FormatCents(order.TotalCents),
				time.Unix(order.UpdatedAt, 0).Format("2006-01-02 15:04:05"),
			})
		}

		counts := make(map[string]int64, len(statusCounts))
		for _, c := range statusCounts {
			counts[string(c.Status)] = c.Count
		}
		return ordersLoadedMsg{rows: rows, counts: counts}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Height > 10 {
			m.table.SetHeight(msg.Height - 8)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.loadOrders()
		}

	case ordersLoadedMsg:
		m.loading = false
		m.err = nil
		m.table.SetRows(msg.rows)
		m.counts = msg.counts
		return m, nil

	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadOrders(), tickCmd())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	header := styleTitle.Render("PopEat — order board")

	summary := styleHelp.Render(fmt.Sprintf(
		"pending %d  accepted %d  in_progress %d  ready %d  delivered %d  canceled %d",
		m.counts[string(repository.StatusPending)],
		m.counts[string(repository.StatusAccepted)],
		m.counts[string(repository.StatusInProgress)],
		m.counts[string(repository.StatusReady)],
		m.counts[string(repository.StatusDelivered)],
		m.counts[string(repository.StatusCanceled)],
	))

	body := m.table.View()
	if m.loading {
		body = styleHelp.Render("loading orders...")
	}
	if m.err != nil {
		body = styleError.Render("error: " + m.err.Error())
	}

	help := styleHelp.Render("↑/↓ navigate · r refresh · q quit")
	return header + "\n" + summary + "\n\n" + body + "\n" + help
}
