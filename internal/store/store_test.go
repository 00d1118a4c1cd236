package store

import (
	"errors"
	"fmt"
	"testing"

	"inkwell-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestInkRoundTrip(t *testing.T) {
	s := New(WithIDFunc(seqIDs()))
	require.NoError(t, s.Load(model.Collections{}))

	created := s.CreateInk(model.Ink{Brand: "Sailor", Collection: "Shikiori", Name: "Yozakura"})
	require.NotEmpty(t, created.ID)

	inks := s.Inks()
	require.Len(t, inks, 1)
	want := created
	assert.Equal(t, want, inks[0])

	created.Name = "Yodaki"
	_, err := s.UpdateInk(created)
	require.NoError(t, err)
	got, ok := s.Ink(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Yodaki", got.Name)
	assert.Equal(t, "Shikiori", got.Collection)

	require.NoError(t, s.DeleteInk(created.ID))
	assert.Empty(t, s.Inks())
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	s := New()
	_, err := s.UpdatePen(model.Pen{ID: "nope"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "pen not found: nope")

	_, err = s.UpdateRefill(model.RefillLogEntry{ID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteInk("nope"), ErrNotFound)
	assert.False(t, s.DirtyTracker().Dirty(), "failed mutations must not mark dirty")
}

func TestLoadOnce(t *testing.T) {
	s := New(WithIDFunc(seqIDs()))
	require.NoError(t, s.Load(model.Collections{
		RefillLog: []model.RefillLogEntry{{PenID: "p1", InkIDs: []string{"i1"}}},
	}))
	assert.True(t, s.Loaded())
	assert.ErrorIs(t, s.Load(model.Collections{}), ErrAlreadyLoaded)

	refills := s.Refills()
	require.Len(t, refills, 1)
	assert.Equal(t, "id-1", refills[0].ID, "entries without ids get one on load")
	assert.False(t, s.DirtyTracker().Dirty())
}

func TestDirtyFlag(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(model.Collections{}))
	d := s.DirtyTracker()
	ch, cancel := d.Subscribe()
	defer cancel()

	assert.False(t, d.Dirty())
	p := s.CreatePen(model.Pen{Brand: "Lamy", Model: "2000"})
	assert.True(t, d.Dirty())
	assert.True(t, <-ch)

	d.Clear()
	assert.False(t, <-ch)
	require.NoError(t, s.DeletePen(p.ID))
	assert.True(t, d.Dirty())
}

func TestDeleteLeavesDanglingReferences(t *testing.T) {
	s := New(WithIDFunc(seqIDs()))
	require.NoError(t, s.Load(model.Collections{}))
	pen := s.CreatePen(model.Pen{Brand: "Pilot", Model: "Vanishing Point", NibSize: "M"})
	ink := s.CreateInk(model.Ink{Brand: "Pilot", Name: "Kon-peki"})
	other := s.CreateInk(model.Ink{Brand: "Diamine", Name: "Oxblood"})
	s.CreateRefill(model.RefillLogEntry{Date: model.MustParseDate("2024-01-01"), PenID: pen.ID, InkIDs: []string{ink.ID, other.ID}})

	require.NoError(t, s.DeleteInk(ink.ID))
	require.NoError(t, s.DeletePen(pen.ID))

	views := s.RefillViews()
	require.Len(t, views, 1)
	assert.Nil(t, views[0].Pen)
	require.Len(t, views[0].Inks, 2)
	assert.Nil(t, views[0].Inks[0].Ink)
	require.NotNil(t, views[0].Inks[1].Ink)
	assert.Equal(t, "Oxblood", views[0].Inks[1].Ink.Name)
	assert.Equal(t, []string{"Oxblood"}, views[0].InkNames())
	assert.Equal(t, "", views[0].PenBrand())
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(model.Collections{}))
	e := s.CreateRefill(model.RefillLogEntry{PenID: "p", InkIDs: []string{"a"}})

	snap := s.Snapshot()
	snap.RefillLog[0].InkIDs[0] = "changed"
	got, ok := s.Refill(e.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got.InkIDs)
}

func TestReplaceSwapsOneCollection(t *testing.T) {
	s := New(WithIDFunc(seqIDs()))
	require.NoError(t, s.Load(model.Collections{Pens: []model.Pen{{ID: "p1", Brand: "Lamy", Model: "Safari"}}}))

	err := s.Replace(model.Collections{
		Pens:      []model.Pen{{ID: "p9", Brand: "Sailor", Model: "Pro Gear"}},
		RefillLog: []model.RefillLogEntry{{PenID: "p9", InkIDs: []string{"i1"}}},
	}, model.ResourceRefillLog)
	require.NoError(t, err)

	assert.Equal(t, "p1", s.Pens()[0].ID, "pens untouched")
	require.Len(t, s.Refills(), 1)
	assert.Equal(t, "id-1", s.Refills()[0].ID)
	assert.True(t, s.DirtyTracker().Dirty())

	assert.Error(t, s.Replace(model.Collections{}, "notes"))
}

func TestDirtySubscriberSeesLatestState(t *testing.T) {
	d := NewDirty()
	ch, cancel := d.Subscribe()
	defer cancel()

	for i := 0; i < 9; i++ {
		if i%2 == 0 {
			d.Mark()
		} else {
			d.Clear()
		}
	}
	require.True(t, d.Dirty())

	var last bool
	n := 0
	for done := false; !done; {
		select {
		case v := <-ch:
			last = v
			n++
		default:
			done = true
		}
	}
	assert.Equal(t, 1, n, "pending changes collapse into one value")
	assert.True(t, last)
}

func TestLookupsFollowDeletesAndReplace(t *testing.T) {
	s := New(WithIDFunc(seqIDs()))
	require.NoError(t, s.Load(model.Collections{Pens: []model.Pen{{ID: "p1", Brand: "Lamy"}, {ID: "p2", Brand: "Pilot"}, {ID: "p3", Brand: "Sailor"}}}))

	require.NoError(t, s.DeletePen("p1"))
	p, ok := s.Pen("p3")
	require.True(t, ok)
	assert.Equal(t, "Sailor", p.Brand)
	_, ok = s.Pen("p1")
	assert.False(t, ok)

	_, err := s.UpdatePen(model.Pen{ID: "p2", Brand: "Pilot", Model: "Custom 823"})
	require.NoError(t, err)
	p, _ = s.Pen("p2")
	assert.Equal(t, "Custom 823", p.Model)

	require.NoError(t, s.Replace(model.Collections{Pens: []model.Pen{{ID: "p9", Brand: "Platinum"}}}, model.ResourcePens))
	_, ok = s.Pen("p2")
	assert.False(t, ok)
	p, ok = s.Pen("p9")
	require.True(t, ok)
	assert.Equal(t, "Platinum", p.Brand)

	created := s.CreatePen(model.Pen{Brand: "TWSBI"})
	p, ok = s.Pen(created.ID)
	require.True(t, ok)
	assert.Equal(t, "TWSBI", p.Brand)
}
