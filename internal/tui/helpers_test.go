package tui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/testutil"
)

var testToday = domain.NewDate(2025, time.March, 10)

// useASCIIProfile renders styles without escape sequences for the duration of the test.
func useASCIIProfile(t *testing.T) {
	t.Helper()
	prev := lipgloss.DefaultRenderer().ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(prev)
	})
}

// newTestModel creates a Model over store and runs its initial load.
func newTestModel(t *testing.T, store *testutil.MockTaskStore) *Model {
	t.Helper()
	c := app.NewWithDeps(
		app.Config{},
		nil,
		store,
		&testutil.MockClock{NowTime: testToday.Time(time.UTC)},
		testutil.FixedCalendar(testToday),
		nil,
	)
	m := New(c)
	t.Cleanup(m.Close)
	feed(t, m, m.Init())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// collect runs cmd and returns the planner messages it produces. Commands that
// do not finish promptly, such as ticks and the day change wait, are dropped.
func collect(cmd tea.Cmd) []Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		var (
			mu  sync.Mutex
			wg  sync.WaitGroup
			out = make([][]Msg, len(msg))
		)
		for i, c := range msg {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got := collect(c)
				mu.Lock()
				out[i] = got
				mu.Unlock()
			}()
		}
		wg.Wait()
		var all []Msg
		for _, o := range out {
			all = append(all, o...)
		}
		return all
	case Msg:
		return []Msg{msg}
	}
	return nil
}

// feed runs cmd and feeds every planner message it produces back into m.
func feed(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range collect(cmd) {
		_, next := m.Update(msg)
		feed(t, m, next)
	}
}

// press sends a key to m and feeds the resulting command back.
func press(t *testing.T, m *Model, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(msg)
	feed(t, m, cmd)
}

// typeKeys sends s to m one rune at a time.
func typeKeys(t *testing.T, m *Model, s string) {
	t.Helper()
	for _, r := range s {
		press(t, m, runeKey(r))
	}
}

func runeKey(r rune) tea.KeyMsg {
	if r == ' ' {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyUp       = tea.KeyMsg{Type: tea.KeyUp}
	keySpaceBar = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

// fillSubtask types a subtask into the focused subtask form.
func fillSubtask(t *testing.T, m *Model, desc, date, hours string) {
	t.Helper()
	typeKeys(t, m, desc)
	press(t, m, keyTab)
	typeKeys(t, m, date)
	press(t, m, keyTab)
	typeKeys(t, m, hours)
}
