package updates

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
	"github.com/bnema/esoctl/internal/download"
	"github.com/bnema/esoctl/internal/reconcile"
)

type staticDetails map[int][]catalog.FileDetails

func (s staticDetails) FileDetails(_ context.Context, id int) ([]catalog.FileDetails, error) {
	return s[id], nil
}

func testPlan() reconcile.Plan {
	plan := reconcile.Plan{}
	for id, name := range map[int]string{1: "Alpha", 2: "Beta"} {
		a := &addons.InstalledAddon{Name: name, Path: addons.NormalizePath(name)}
		plan[a.Path] = reconcile.PlanItem{Install: a, Entry: catalog.Entry{ID: id, Title: name}}
	}
	return plan
}

func TestModelProcessesEveryItem(t *testing.T) {
	lookup := staticDetails{
		1: {{ID: 1, FileName: "Alpha.zip"}},
		// 2 resolves to no details and fails
	}
	d := download.New(t.TempDir(), lookup, log.New(io.Discard), download.WithDryRun(true))

	var m Model = New(context.Background(), d, testPlan())

	next, cmd := m.Update(startMsg{})
	m = next.(Model)
	for cmd != nil && !m.done {
		msg := cmd()
		done, ok := msg.(itemDoneMsg)
		require.True(t, ok, "expected item result, got %T", msg)
		next, cmd = m.Update(done)
		m = next.(Model)
		if !m.done {
			cmd = m.processNext()
		}
	}

	require.True(t, m.done)
	res := m.Result()
	require.Len(t, res.Items, 2)
	assert.Equal(t, "alpha", res.Items[0].Path)
	assert.Equal(t, download.StatusPlanned, res.Items[0].Status)
	assert.Equal(t, download.StatusFailed, res.Items[1].Status)
	assert.Contains(t, m.View(), "Failed: 1")
}

func TestModelEmptyPlan(t *testing.T) {
	d := download.New(t.TempDir(), staticDetails{}, log.New(io.Discard))
	m := New(context.Background(), d, reconcile.Plan{})

	next, _ := m.Update(startMsg{})
	m = next.(Model)

	assert.True(t, m.done)
	assert.Empty(t, m.Result().Items)
	assert.Contains(t, m.View(), "Everything is up to date")
}

func TestModelResultFailsUnreachedItems(t *testing.T) {
	d := download.New(t.TempDir(), staticDetails{}, log.New(io.Discard))
	m := New(context.Background(), d, testPlan())
	m.cancel()

	res := m.Result()
	require.Len(t, res.Items, 2)
	assert.Len(t, res.Failed(), 2)
	assert.ErrorIs(t, res.Items[0].Err, context.Canceled)
}
