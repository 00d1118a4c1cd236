package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/history"
	"inkwell-cli/internal/model"
	"inkwell-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu      sync.Mutex
	data    model.Collections
	loadErr error
	saveErr error
	saves   []string
	saved   map[string]any
}

func (g *fakeGateway) LoadAll(context.Context) (model.Collections, error) {
	if g.loadErr != nil {
		return model.Collections{}, g.loadErr
	}
	return g.data, nil
}

func (g *fakeGateway) SaveCollection(_ context.Context, name string, data any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := gateway.ValidateName(name); err != nil {
		return err
	}
	g.saves = append(g.saves, name)
	if g.saveErr != nil {
		return g.saveErr
	}
	if g.saved == nil {
		g.saved = map[string]any{}
	}
	g.saved[name] = data
	return nil
}

type recorder struct {
	notices []gateway.Notice
	events  []history.Event
}

func (r *recorder) Notify(n gateway.Notice) { r.notices = append(r.notices, n) }

func (r *recorder) Record(_ context.Context, ev history.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func newSession(t *testing.T, gw *fakeGateway) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	n := 0
	st := store.New(store.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}))
	s := New(gw, WithNotifier(rec), WithJournal(rec), WithStore(st))
	require.NoError(t, s.Open(context.Background()))
	return s, rec
}

func TestOpenFailureLeavesEmptyState(t *testing.T) {
	gw := &fakeGateway{loadErr: errors.New("connection refused")}
	rec := &recorder{}
	s := New(gw, WithNotifier(rec))

	err := s.Open(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, s.LoadErr(), gw.loadErr)
	assert.False(t, s.Store.Loaded())
	snap := s.Snapshot()
	assert.Empty(t, snap.Pens)
	assert.Empty(t, snap.Inks)
	assert.Empty(t, snap.RefillLog)
	require.Len(t, rec.notices, 1)
	assert.Equal(t, gateway.NoticeError, rec.notices[0].Kind)
}

func TestAddPenSavesWholeCollection(t *testing.T) {
	gw := &fakeGateway{data: model.Collections{Pens: []model.Pen{{ID: "p1", Brand: "Lamy", Model: "2000"}}}}
	s, rec := newSession(t, gw)

	p, err := s.AddPen(context.Background(), model.Pen{Brand: "Pilot", Model: "Custom 74", NibSize: "F"})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", p.ID)

	assert.Equal(t, []string{model.ResourcePens}, gw.saves)
	saved, ok := gw.saved[model.ResourcePens].([]model.Pen)
	require.True(t, ok)
	require.Len(t, saved, 2)
	assert.Equal(t, "p1", saved[0].ID)
	assert.Equal(t, "gen-1", saved[1].ID)

	assert.True(t, s.Dirty().Dirty())
	require.Len(t, rec.notices, 1)
	assert.Equal(t, gateway.NoticeSuccess, rec.notices[0].Kind)
	require.Len(t, rec.events, 1)
	assert.Equal(t, history.KindSave, rec.events[0].Kind)
	assert.True(t, rec.events[0].OK)
}

func TestValidationBlocksMutation(t *testing.T) {
	gw := &fakeGateway{}
	s, rec := newSession(t, gw)
	ctx := context.Background()

	_, err := s.AddPen(ctx, model.Pen{Brand: "Lamy"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"model"}, verr.Fields)

	_, err = s.AddInk(ctx, model.Ink{Name: "Blue"})
	require.ErrorAs(t, err, &verr)

	_, err = s.AddRefill(ctx, model.RefillLogEntry{PenID: "p1", Date: model.MustParseDate("2024-01-01")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"inkIds"}, verr.Fields)

	assert.Empty(t, gw.saves)
	assert.Empty(t, rec.notices)
	assert.False(t, s.Dirty().Dirty())
	assert.Empty(t, s.Snapshot().Pens)
}

func TestSaveFailureKeepsOptimisticChange(t *testing.T) {
	gw := &fakeGateway{saveErr: errors.New("disk full")}
	s, rec := newSession(t, gw)

	ink, err := s.AddInk(context.Background(), model.Ink{Brand: "Diamine", Name: "Oxblood"})
	require.ErrorIs(t, err, gw.saveErr)
	assert.NotEmpty(t, ink.ID)

	inks := s.Snapshot().Inks
	require.Len(t, inks, 1)
	assert.Equal(t, "Oxblood", inks[0].Name)

	require.Len(t, rec.notices, 1)
	assert.Equal(t, gateway.NoticeError, rec.notices[0].Kind)
	assert.Equal(t, model.ResourceInks, rec.notices[0].Resource)
	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].OK)
}

func TestEditAndRemoveRefill(t *testing.T) {
	gw := &fakeGateway{data: model.Collections{
		Pens:      []model.Pen{{ID: "p1", Brand: "TWSBI", Model: "Eco"}},
		Inks:      []model.Ink{{ID: "i1", Brand: "Pilot", Name: "Kon-peki"}},
		RefillLog: []model.RefillLogEntry{{ID: "r1", PenID: "p1", InkIDs: []string{"i1"}, Date: model.MustParseDate("2024-02-01")}},
	}}
	s, _ := newSession(t, gw)
	ctx := context.Background()

	e, err := s.EditRefill(ctx, model.RefillLogEntry{ID: "r1", PenID: "p1", InkIDs: []string{"i1"}, Date: model.MustParseDate("2024-02-03"), Notes: "flushed"})
	require.NoError(t, err)
	assert.Equal(t, "flushed", e.Notes)

	_, err = s.EditRefill(ctx, model.RefillLogEntry{ID: "missing", PenID: "p1", InkIDs: []string{"i1"}, Date: model.Today()})
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.RemoveRefill(ctx, "r1"))
	require.ErrorIs(t, s.RemoveRefill(ctx, "r1"), store.ErrNotFound)
	assert.Equal(t, []string{model.ResourceRefillLog, model.ResourceRefillLog}, gw.saves)
	assert.Empty(t, gw.saved[model.ResourceRefillLog])
}

func TestRemovePenKeepsRefills(t *testing.T) {
	gw := &fakeGateway{data: model.Collections{
		Pens:      []model.Pen{{ID: "p1", Brand: "TWSBI", Model: "Eco"}},
		RefillLog: []model.RefillLogEntry{{ID: "r1", PenID: "p1", InkIDs: []string{"i1"}, Date: model.MustParseDate("2024-02-01")}},
	}}
	s, _ := newSession(t, gw)

	require.NoError(t, s.RemovePen(context.Background(), "p1"))
	assert.Len(t, s.Snapshot().RefillLog, 1)
	assert.Equal(t, []string{model.ResourcePens}, gw.saves)
}

func TestReplaceRejectsUnknownResource(t *testing.T) {
	gw := &fakeGateway{}
	s, _ := newSession(t, gw)

	err := s.Replace(context.Background(), model.Collections{}, "../etc")
	require.ErrorIs(t, err, gateway.ErrInvalidName)
	assert.Empty(t, gw.saves)

	err = s.Replace(context.Background(), model.Collections{Inks: []model.Ink{{ID: "i7", Brand: "Sailor", Name: "Yama-dori"}}}, model.ResourceInks)
	require.NoError(t, err)
	assert.Equal(t, "i7", s.Snapshot().Inks[0].ID)
}

type failingJournal struct{}

func (failingJournal) Record(context.Context, history.Event) error {
	return errors.New("database is locked")
}

func TestJournalFailureIsReported(t *testing.T) {
	gw := &fakeGateway{}
	rec := &recorder{}
	s := New(gw, WithNotifier(rec), WithJournal(failingJournal{}))
	require.NoError(t, s.Open(context.Background()))

	_, err := s.AddInk(context.Background(), model.Ink{Brand: "Sailor", Name: "Yama-dori"})
	require.NoError(t, err, "a journal failure does not fail the save")

	require.Len(t, rec.notices, 2)
	assert.Equal(t, gateway.NoticeSuccess, rec.notices[0].Kind)
	assert.Equal(t, gateway.NoticeError, rec.notices[1].Kind)
	assert.Equal(t, "Failed to record history", rec.notices[1].Message)
	assert.ErrorContains(t, rec.notices[1].Err, "database is locked")
}

func TestConcurrentAddsLastSaveHasEveryPen(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw)
	require.NoError(t, s.Open(context.Background()))

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddPen(context.Background(), model.Pen{Brand: "Platinum", Model: fmt.Sprintf("3776 #%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	saved, ok := gw.saved[model.ResourcePens].([]model.Pen)
	require.True(t, ok)
	assert.Len(t, saved, n)
}
