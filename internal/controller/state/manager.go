package state

import (
	"sync"

	"github.com/Freeeeeet/autoschool_bot/internal/service"
)

// Registry хранит открытый вид расписания каждого сотрудника (telegramID -> Scheduler)
type Registry struct {
	mu    sync.RWMutex
	views map[int64]*service.Scheduler
}

func NewRegistry() *Registry {
	return &Registry{
		views: make(map[int64]*service.Scheduler),
	}
}

// Get возвращает открытый вид
func (r *Registry) Get(telegramID int64) (*service.Scheduler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.views[telegramID]
	return s, ok
}

// Open возвращает вид сессии sess. Если сменился сотрудник, его роль или
// язык, старый вид закрывается и создаётся заново
func (r *Registry) Open(telegramID int64, sess service.Session, create func() *service.Scheduler) *service.Scheduler {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.views[telegramID]; ok {
		if s.Session() == sess {
			return s
		}
		s.Close()
	}

	s := create()
	r.views[telegramID] = s
	return s
}

// Drop закрывает вид пользователя
func (r *Registry) Drop(telegramID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.views[telegramID]; ok {
		s.Close()
		delete(r.views, telegramID)
	}
}

// CloseAll закрывает все виды при остановке бота
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.views {
		s.Close()
		delete(r.views, id)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
