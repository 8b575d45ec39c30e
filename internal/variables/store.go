package variables

import (
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/dashvars/internal/errors"
)

// Ref selects a variable: either a stored model by id or a transient model
// that is read and written in place.
type Ref struct {
	id        int
	transient *Model
}

// ByID refers to a stored variable.
func ByID(id int) Ref {
	return Ref{id: id}
}

// Transient refers to a model that is not in the store.
func Transient(m *Model) Ref {
	return Ref{transient: m}
}

// IsTransient reports whether the ref points at a transient model.
func (r Ref) IsTransient() bool {
	return r.transient != nil
}

// EventType represents the type of store event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes a change in the store. Variable is a copy taken at the
// time of the change.
type Event struct {
	Type      EventType
	ID        int
	Variable  Model
	Property  string
	Timestamp time.Time
}

// Store keeps variable models keyed by id
type Store struct {
	variables map[int]*Model
	nextID    int
	mutex     sync.RWMutex
	watchers  []chan Event
}

var defaultStore = NewStore()

// Default returns the process-wide store.
func Default() *Store {
	return defaultStore
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		variables: make(map[int]*Model),
		nextID:    1,
		watchers:  make([]chan Event, 0),
	}
}

// CreateVariable stores a variable built from values laid over defaults and
// returns its new id. Every key present in values is kept, zero values
// included. An "id" key is ignored. A negative index places the variable
// after the existing ones.
func (s *Store) CreateVariable(values, defaults map[string]interface{}) (int, error) {
	merged := mergeDefaults(values, defaults)
	delete(merged, "id")

	created := &Model{}
	if err := setProperties(created, merged); err != nil {
		return 0, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextID
	s.nextID++
	created.ID = id
	if created.Index < 0 {
		created.Index = len(s.variables)
	}
	s.variables[id] = created

	s.notify(Event{Type: EventTypeAdded, ID: id, Variable: *created.Clone()})
	return id, nil
}

// RemoveVariable deletes the variable with id. Unknown ids are ignored.
func (s *Store) RemoveVariable(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	model, exists := s.variables[id]
	if !exists {
		return
	}
	delete(s.variables, id)

	s.notify(Event{Type: EventTypeRemoved, ID: id, Variable: *model.Clone()})
}

// GetVariableProperty reads a property of the referenced variable.
func (s *Store) GetVariableProperty(ref Ref, property string) (interface{}, error) {
	if ref.IsTransient() {
		return getProperty(ref.transient, property)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	model, exists := s.variables[ref.id]
	if !exists {
		return nil, errors.ErrVariableNotFound(ref.id)
	}
	return getProperty(model, property)
}

// SetVariableProperty writes a property of the referenced variable. The
// value is coerced to the property's type; the id cannot be changed.
func (s *Store) SetVariableProperty(ref Ref, property string, value interface{}) error {
	if property == "id" {
		return errors.NewValidationError(errors.ErrCodeInvalidValue, "variable id is read-only")
	}

	if ref.IsTransient() {
		return setProperties(ref.transient, map[string]interface{}{property: value})
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	model, exists := s.variables[ref.id]
	if !exists {
		return errors.ErrVariableNotFound(ref.id)
	}

	// Decode into a copy so a failed coercion leaves the stored model intact.
	updated := model.Clone()
	if err := setProperties(updated, map[string]interface{}{property: value}); err != nil {
		return err
	}
	s.variables[ref.id] = updated

	s.notify(Event{Type: EventTypeUpdated, ID: ref.id, Variable: *updated.Clone(), Property: property})
	return nil
}

// GetVariableModel returns a copy of the referenced variable without its id.
func (s *Store) GetVariableModel(ref Ref) (Model, error) {
	var source *Model
	if ref.IsTransient() {
		source = ref.transient
	} else {
		s.mutex.RLock()
		defer s.mutex.RUnlock()

		model, exists := s.variables[ref.id]
		if !exists {
			return Model{}, errors.ErrVariableNotFound(ref.id)
		}
		source = model
	}

	copied := source.Clone()
	copied.ID = 0
	return *copied, nil
}

// FindByName returns the first stored variable with name, by index order.
func (s *Store) FindByName(name string) (Model, bool) {
	for _, model := range s.List() {
		if model.Name == name {
			return model, true
		}
	}
	return Model{}, false
}

// List returns copies of all stored variables ordered by index, then id.
func (s *Store) List() []Model {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]Model, 0, len(s.variables))
	for _, model := range s.variables {
		result = append(result, *model.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Index != result[j].Index {
			return result[i].Index < result[j].Index
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Count returns the number of stored variables
func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.variables)
}

// Watch returns a channel that receives store events
func (s *Store) Watch() <-chan Event {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ch := make(chan Event, 100)
	s.watchers = append(s.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (s *Store) UnWatch(ch <-chan Event) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, watcher := range s.watchers {
		if watcher == ch {
			close(watcher)
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			break
		}
	}
}

// notify must be called with the write lock held.
func (s *Store) notify(event Event) {
	event.Timestamp = time.Now()
	for _, watcher := range s.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
