package views

import (
	"sync"

	"github.com/Dosada05/tournament-console/models"
)

// Registry keeps one View per console session.
type Registry struct {
	mu    sync.Mutex
	views map[string]*View
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*View)}
}

// For returns the session's view pointed at tournamentID, creating it on
// first use.
func (r *Registry) For(sessionID string, tournamentID models.ID) *View {
	r.mu.Lock()
	v, ok := r.views[sessionID]
	if !ok {
		v = New(tournamentID)
		r.views[sessionID] = v
	}
	r.mu.Unlock()

	v.SetTournament(tournamentID)
	return v
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, sessionID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
