package repl

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/esgmatch/internal/storage"
)

func newTestREPL(t *testing.T, store storage.Storage) (*REPL, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	r, err := New(&Config{Tracker: newTestTracker(t), Store: store, Out: &out, Plain: true})
	require.NoError(t, err)
	r.start(context.Background())
	return r, &out
}

func TestNewRequiresTracker(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
	_, err = New(nil)
	assert.Error(t, err)
}

func TestREPLCommands(t *testing.T) {
	r, out := newTestREPL(t, nil)
	assert.Contains(t, out.String(), "Let's talk about **Water Management**")

	out.Reset()
	require.NoError(t, r.processInput("/progress"))
	assert.Contains(t, out.String(), "topic 1 of 10 (0% covered), 0 field(s) recorded")

	out.Reset()
	require.NoError(t, r.processInput("/HELP"))
	assert.Contains(t, out.String(), "/summary")

	out.Reset()
	require.NoError(t, r.processInput("/bogus"))
	assert.Contains(t, out.String(), "Unknown command /bogus")

	out.Reset()
	require.NoError(t, r.processInput("/topic"))
	assert.Contains(t, out.String(), "Water Management")

	out.Reset()
	require.NoError(t, r.processInput("Water Stress Areas resonate with me"))
	assert.Contains(t, out.String(), "(recorded 1 field(s))")
	assert.Contains(t, out.String(), "Air Quality")

	out.Reset()
	require.NoError(t, r.processInput("/summary"))
	assert.Contains(t, out.String(), "Water Stress Areas (`ENV002`)")
}

func TestREPLQuitSavesProfile(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewStorage(ctx, &storage.Config{Path: filepath.Join(t.TempDir(), "repl.db")})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	r, out := newTestREPL(t, store)
	require.NoError(t, r.processInput("Water Stress Areas resonate with me"))

	out.Reset()
	err = r.processInput("/quit")
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out.String(), "# Your ESG Investment Preference Profile")
	assert.Contains(t, out.String(), "Profile saved as "+r.dialogue.Session().ID)
	assert.Contains(t, out.String(), "Goodbye!")

	list, err := store.ListProfiles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].FieldCount)

	// finishing twice saves once
	require.NoError(t, r.finish())
}
