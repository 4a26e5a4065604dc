package tui

import (
	"context"
	"fmt"
	"strings"

	"go-employee/internal/client"
	"go-employee/internal/dashboard"
	"go-employee/internal/demoauth"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RefreshMsg asks the model to re-read dashboard state. The dashboard's
// change hook sends it when a fetch finishes or a toast expires.
type RefreshMsg struct{}

type submitDoneMsg struct{ err error }

type deleteDoneMsg struct{ err error }

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
	modeConfirm
)

var sortKeys = []dashboard.SortKey{
	dashboard.SortFirstName,
	dashboard.SortLastName,
	dashboard.SortEmail,
	dashboard.SortPosition,
	dashboard.SortSalary,
}

var columnTitles = []string{"First", "Last", "Email", "Position", "Salary"}

var fieldLabels = map[string]string{
	dashboard.FieldFirstName: "First name",
	dashboard.FieldLastName:  "Last name",
	dashboard.FieldEmail:     "Email",
	dashboard.FieldPosition:  "Position",
	dashboard.FieldSalary:    "Salary",
}

// Model is the terminal front end: home, login, the employee directory and
// a not-found page, switched through the demo auth guard.
type Model struct {
	dash   *dashboard.Dashboard
	guard  *demoauth.Guard
	route  demoauth.Route
	path   string
	styles Styles

	mode      mode
	table     table.Model
	search    textinput.Model
	inputs    []textinput.Model
	focus     int
	confirmID string

	loginInputs []textinput.Model
	loginFocus  int
	loginErr    string

	view dashboard.View
}

func New(dash *dashboard.Dashboard, guard *demoauth.Guard, startPath string) Model {
	t := table.New(
		table.WithColumns(columns(dashboard.DefaultSort)),
		table.WithFocused(true),
		table.WithHeight(dashboard.PageSize+1),
	)

	search := textinput.New()
	search.Placeholder = "Search by name, email or position..."
	search.CharLimit = 80
	search.Width = 40

	inputs := make([]textinput.Model, len(dashboard.Fields))
	for i, field := range dashboard.Fields {
		in := textinput.New()
		in.Placeholder = fieldLabels[field]
		in.CharLimit = 120
		in.Width = 32
		inputs[i] = in
	}
	inputs[len(inputs)-1].Placeholder = "e.g., 65000"

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Width = 32
	password := textinput.New()
	password.Placeholder = "at least 6 characters"
	password.EchoMode = textinput.EchoPassword
	password.Width = 32

	m := Model{
		dash:        dash,
		guard:       guard,
		styles:      DefaultStyles(),
		table:       t,
		search:      search,
		inputs:      inputs,
		loginInputs: []textinput.Model{email, password},
	}
	m.route, m.path = guard.Navigate(startPath)
	if m.route == demoauth.RouteLogin {
		m.loginInputs[0].Focus()
	}
	return m
}

func (m Model) Route() demoauth.Route { return m.route }

func (m Model) Init() tea.Cmd {
	if m.route == demoauth.RouteEmployees {
		m.dash.Load()
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg:
		m.refresh()
		return m, nil
	case submitDoneMsg:
		if msg.err == nil {
			m.mode = modeBrowse
			m.blurForm()
		}
		m.refresh()
		return m, nil
	case deleteDoneMsg:
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.route {
		case demoauth.RouteHome:
			return m.updateHome(msg)
		case demoauth.RouteLogin:
			return m.updateLogin(msg)
		case demoauth.RouteEmployees:
			return m.updateEmployees(msg)
		default:
			return m.navigate(demoauth.PathHome)
		}
	}
	return m, nil
}

func (m Model) navigate(path string) (tea.Model, tea.Cmd) {
	m.route, m.path = m.guard.Navigate(path)
	m.loginErr = ""
	switch m.route {
	case demoauth.RouteLogin:
		m.loginFocus = 0
		m.loginInputs[1].Blur()
		cmd := m.loginInputs[0].Focus()
		return m, cmd
	case demoauth.RouteEmployees:
		m.mode = modeBrowse
		m.dash.Load()
		m.refresh()
	}
	return m, nil
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "e":
		return m.navigate(demoauth.PathEmployees)
	case "l":
		return m.navigate(demoauth.PathLogin)
	case "L":
		return m.logout()
	}
	return m, nil
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	next, err := m.guard.Logout()
	if err != nil {
		m.dash.PushToast(dashboard.ToastError, err.Error())
		return m, nil
	}
	m.dash.PushToast(dashboard.ToastInfo, "Logged out.")
	model, cmd := m.navigate(next)
	mm := model.(Model)
	mm.refresh()
	return mm, cmd
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.navigate(demoauth.PathHome)
	case "tab", "shift+tab", "up", "down":
		m.loginInputs[m.loginFocus].Blur()
		m.loginFocus = (m.loginFocus + 1) % len(m.loginInputs)
		cmd := m.loginInputs[m.loginFocus].Focus()
		return m, cmd
	case "enter":
		next, err := m.guard.Login(m.loginInputs[0].Value(), m.loginInputs[1].Value())
		if err != nil {
			m.loginErr = err.Error()
			return m, nil
		}
		m.loginInputs[0].SetValue("")
		m.loginInputs[1].SetValue("")
		return m.navigate(next)
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m Model) updateEmployees(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.updateSearch(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}

	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case "1", "2", "3", "4", "5":
		m.dash.ToggleSort(sortKeys[key[0]-'1'])
		m.refresh()
		return m, nil
	case "n", "right":
		m.dash.NextPage()
		m.refresh()
		return m, nil
	case "p", "left":
		m.dash.PrevPage()
		m.refresh()
		return m, nil
	case "a":
		m.dash.ResetForm()
		m.refresh()
		cmd := m.focusForm(0)
		return m, cmd
	case "e":
		if row, ok := m.selected(); ok {
			m.dash.Edit(row)
			m.refresh()
			cmd := m.focusForm(0)
			return m, cmd
		}
		return m, nil
	case "d":
		if row, ok := m.selected(); ok {
			m.confirmID = row.ID
			m.mode = modeConfirm
		}
		return m, nil
	case "r":
		m.dash.Load()
		return m, nil
	case "h":
		return m.navigate(demoauth.PathHome)
	case "L":
		return m.logout()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.dash.SetSearch(m.search.Value())
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.dash.ResetForm()
		m.mode = modeBrowse
		m.blurForm()
		m.refresh()
		return m, nil
	case "tab", "down":
		cmd := m.focusForm((m.focus + 1) % len(m.inputs))
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusForm((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, cmd
	case "enter":
		dash := m.dash
		return m, func() tea.Msg {
			return submitDoneMsg{err: dash.Submit(context.Background())}
		}
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if v := m.inputs[m.focus].Value(); v != before {
		m.dash.SetField(dashboard.Fields[m.focus], v)
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	m.mode = modeBrowse
	m.confirmID = ""

	switch msg.String() {
	case "y", "Y":
		dash := m.dash
		return m, func() tea.Msg {
			err := dash.Delete(context.Background(), id, func(string) bool { return true })
			return deleteDoneMsg{err: err}
		}
	}
	return m, nil
}

func (m *Model) focusForm(i int) tea.Cmd {
	m.mode = modeForm
	m.table.Blur()
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) blurForm() {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.table.Focus()
}

func (m Model) selected() (client.Employee, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.view.Rows) {
		return client.Employee{}, false
	}
	return m.view.Rows[i], true
}

// refresh copies dashboard state into the widgets.
func (m *Model) refresh() {
	m.view = m.dash.Snapshot()

	m.table.SetColumns(columns(m.view.Sort))
	rows := make([]table.Row, 0, len(m.view.Rows))
	for _, e := range m.view.Rows {
		rows = append(rows, table.Row{e.FirstName, e.LastName, e.Email, e.Position, formatSalary(e.Salary)})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}

	for i, field := range dashboard.Fields {
		if v := m.view.Form.Get(field); m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
		}
	}
}

func columns(s dashboard.Sort) []table.Column {
	widths := []int{14, 14, 26, 18, 12}
	cols := make([]table.Column, len(columnTitles))
	for i, title := range columnTitles {
		if sortKeys[i] == s.Key {
			if s.Dir == dashboard.Asc {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		cols[i] = table.Column{Title: fmt.Sprintf("%d %s", i+1, title), Width: widths[i]}
	}
	return cols
}

var salaryPrinter = message.NewPrinter(language.English)

func formatSalary(v *float64) string {
	if v == nil {
		return ""
	}
	return salaryPrinter.Sprintf("$%.2f", *v)
}

func (m Model) View() string {
	var b strings.Builder

	switch m.route {
	case demoauth.RouteHome:
		m.viewHome(&b)
	case demoauth.RouteLogin:
		m.viewLogin(&b)
	case demoauth.RouteEmployees:
		m.viewEmployees(&b)
	default:
		b.WriteString(m.styles.Title.Render("404") + "\n")
		b.WriteString(m.styles.Subtitle.Render("This page drifted into the void.") + "\n")
		b.WriteString(m.styles.Muted.Render("press any key to go home") + "\n")
	}

	if t := m.dash.Snapshot().Toast; t != nil {
		style := m.styles.ToastInfo
		switch t.Kind {
		case dashboard.ToastSuccess:
			style = m.styles.ToastSuccess
		case dashboard.ToastError:
			style = m.styles.ToastError
		}
		b.WriteString("\n" + style.Render(t.Message) + "\n")
	}
	return b.String()
}

func (m Model) viewHome(b *strings.Builder) {
	b.WriteString(m.styles.Title.Render("Employee Management") + "\n")
	b.WriteString(m.styles.Subtitle.Render("A small employee directory backed by the REST API.") + "\n\n")
	if m.guard.IsAuthed() {
		b.WriteString(m.styles.Muted.Render("enter: employees • L: logout • q: quit") + "\n")
	} else {
		b.WriteString(m.styles.Muted.Render("enter: employees • l: login • q: quit") + "\n")
	}
}

func (m Model) viewLogin(b *strings.Builder) {
	b.WriteString(m.styles.Title.Render("Login (Demo)") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Any valid email and a 6+ character password works.") + "\n\n")
	b.WriteString(m.styles.Label.Render("Email") + m.loginInputs[0].View() + "\n")
	b.WriteString(m.styles.Label.Render("Password") + m.loginInputs[1].View() + "\n")
	if m.loginErr != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.loginErr) + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("tab: next field • enter: sign in • esc: back") + "\n")
}

func (m Model) viewEmployees(b *strings.Builder) {
	v := m.view
	b.WriteString(m.styles.Title.Render("Employees") + "\n")

	// form
	heading := "Add Employee"
	if v.Editing {
		heading = "Edit Employee"
	}
	var form strings.Builder
	form.WriteString(m.styles.Title.Render(heading) + "\n")
	for i, field := range dashboard.Fields {
		form.WriteString(m.styles.Label.Render(fieldLabels[field]) + m.inputs[i].View())
		if msg := v.FormErrors[field]; msg != "" {
			form.WriteString(" " + m.styles.FieldError.Render(msg))
		}
		form.WriteString("\n")
	}
	b.WriteString(m.styles.Panel.Render(strings.TrimRight(form.String(), "\n")) + "\n")

	// directory
	b.WriteString("Search: " + m.search.View() + "\n")
	if v.Error != "" {
		b.WriteString(m.styles.Error.Render(v.Error) + "\n")
	}
	switch {
	case v.Loading:
		b.WriteString(m.styles.Muted.Render("Loading…") + "\n")
	case len(v.Rows) == 0:
		b.WriteString(m.styles.Muted.Render("No employees found.") + "\n")
	default:
		b.WriteString(m.table.View() + "\n")
	}
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Page %d of %d • %d total", v.Page, v.TotalPages, v.Total)) + "\n")

	switch m.mode {
	case modeConfirm:
		b.WriteString(m.styles.Error.Render(dashboard.MsgConfirmDrop+" (y/n)") + "\n")
	case modeForm:
		b.WriteString(m.styles.Muted.Render("tab: next field • enter: save • esc: cancel") + "\n")
	case modeSearch:
		b.WriteString(m.styles.Muted.Render("type to search • enter/esc: done") + "\n")
	default:
		b.WriteString(m.styles.Muted.Render("/: search • 1-5: sort • n/p: page • a: add • e: edit • d: delete • h: home • L: logout • q: quit") + "\n")
	}
}
