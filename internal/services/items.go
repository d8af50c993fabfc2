package services

import (
	"fmt"
	"sync"

	"github.com/diewo77/gst-invoices/internal/models"
)

// ItemField names an editable column of a line item.
type ItemField string

const (
	FieldDescription ItemField = "description"
	FieldHSN         ItemField = "hsn"
	FieldQuantity    ItemField = "quantity"
	FieldUnit        ItemField = "unit"
	FieldRate        ItemField = "rate"
)

// ParseItemField validates a column name coming from a form.
func ParseItemField(s string) (ItemField, error) {
	switch f := ItemField(s); f {
	case FieldDescription, FieldHSN, FieldQuantity, FieldUnit, FieldRate:
		return f, nil
	}
	return "", fmt.Errorf("unknown item field %q", s)
}

// ChangeKind tells what happened to an item.
type ChangeKind string

const (
	ItemAdded   ChangeKind = "added"
	ItemUpdated ChangeKind = "updated"
	ItemRemoved ChangeKind = "removed"
)

// ItemChange is passed to the change hook after every mutation.
type ItemChange struct {
	Kind ChangeKind
	Item models.LineItem
}

// StoreOption configures an ItemStore.
type StoreOption func(*ItemStore)

// WithOnChange registers a callback invoked after each add, update or
// remove, keyed by the affected item. It runs with the store unlocked.
func WithOnChange(fn func(ItemChange)) StoreOption {
	return func(s *ItemStore) {
		s.onChange = fn
	}
}

// ItemStore is the ordered list of line items of one invoice. It is never
// empty: removing the last item leaves a fresh blank one. IDs come from an
// internal counter and are never reused.
type ItemStore struct {
	mu       sync.Mutex
	items    []models.LineItem
	lastID   uint64
	onChange func(ItemChange)
}

// NewItemStore returns a store holding one blank item.
func NewItemStore(opts ...StoreOption) *ItemStore {
	s := &ItemStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.AddBlank()
	return s
}

// AddBlank appends a blank item with a fresh ID and returns it.
func (s *ItemStore) AddBlank() models.LineItem {
	s.mu.Lock()
	item := s.addBlankLocked()
	s.mu.Unlock()
	s.notify(ItemAdded, item)
	return item
}

func (s *ItemStore) addBlankLocked() models.LineItem {
	s.lastID++
	item := models.LineItem{ID: s.lastID, Unit: models.DefaultUnit}
	s.items = append(s.items, item)
	return item
}

// Remove deletes the item with the given ID. It returns false when no such
// item exists.
func (s *ItemStore) Remove(id uint64) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	var refill *models.LineItem
	if len(s.items) == 0 {
		blank := s.addBlankLocked()
		refill = &blank
	}
	s.mu.Unlock()

	s.notify(ItemRemoved, removed)
	if refill != nil {
		s.notify(ItemAdded, *refill)
	}
	return true
}

// Update sets one column of an item from raw form text. Quantity and rate
// keep the text verbatim and recompute the amount. It returns the updated
// item, or false when the ID is unknown.
func (s *ItemStore) Update(id uint64, field ItemField, raw string) (models.LineItem, bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.LineItem{}, false
	}
	item := &s.items[idx]
	switch field {
	case FieldDescription:
		item.Description = raw
	case FieldHSN:
		item.HSN = raw
	case FieldUnit:
		item.Unit = raw
	case FieldQuantity:
		item.Quantity = raw
		item.Recompute()
	case FieldRate:
		item.Rate = raw
		item.Recompute()
	default:
		s.mu.Unlock()
		return models.LineItem{}, false
	}
	updated := *item
	s.mu.Unlock()

	s.notify(ItemUpdated, updated)
	return updated, true
}

// Get returns the item with the given ID.
func (s *ItemStore) Get(id uint64) (models.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.items[idx], true
	}
	return models.LineItem{}, false
}

// Snapshot returns a copy of the items in display order.
func (s *ItemStore) Snapshot() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored items.
func (s *ItemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Load replaces the blank starting row with the given rows. It is meant for
// freshly created stores fed from an invoice file.
func (s *ItemStore) Load(rows []models.ItemInput) {
	for i, row := range rows {
		var item models.LineItem
		if i == 0 && s.Len() == 1 {
			item = s.Snapshot()[0]
		} else {
			item = s.AddBlank()
		}
		s.Update(item.ID, FieldDescription, row.Description)
		s.Update(item.ID, FieldHSN, row.HSN)
		if row.Unit != "" {
			s.Update(item.ID, FieldUnit, row.Unit)
		}
		s.Update(item.ID, FieldQuantity, string(row.Quantity))
		s.Update(item.ID, FieldRate, string(row.Rate))
	}
}

func (s *ItemStore) indexLocked(id uint64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ItemStore) notify(kind ChangeKind, item models.LineItem) {
	if s.onChange != nil {
		s.onChange(ItemChange{Kind: kind, Item: item})
	}
}
