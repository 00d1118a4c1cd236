package web

import (
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

const keepAliveEvery = 25 * time.Second

type stateSignals struct {
	Dirty bool `json:"dirty"`
}

// handleEvents streams the dirty flag as datastar signal patches: the
// current value first, then one patch per change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ch, cancel := s.dirty.Subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	_ = sse.MarshalAndPatchSignals(stateSignals{Dirty: s.dirty.Dirty()})

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case dirty, ok := <-ch:
			if !ok {
				return
			}
			_ = sse.MarshalAndPatchSignals(stateSignals{Dirty: dirty})
		}
	}
}
