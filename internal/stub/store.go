package stub

import (
	"sort"
	"sync"

	"github.com/jwalitptl/labadmin/internal/model"
)

// Store keeps the fixture records in memory. It stands in for the real
// back office database so the client can be developed and tested
// offline.
type Store struct {
	mu       sync.RWMutex
	records  map[string]map[int64]model.Record
	settings map[string]model.Record
	nextID   int64
}

// NewStore returns a store seeded with representative lab content.
func NewStore() *Store {
	s := &Store{
		records:  make(map[string]map[int64]model.Record),
		settings: make(map[string]model.Record),
		nextID:   1,
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	seedRows := map[string][]model.Record{
		"members": {
			{"name": "Amina Benali", "email": "amina.benali@lab.example.org", "grade": "PR", "status": "permanent"},
			{"name": "Youssef El Fassi", "email": "youssef.elfassi@lab.example.org", "grade": "MCF", "status": "permanent"},
			{"name": "Claire Dubois", "email": "claire.dubois@lab.example.org", "grade": "Doctorante", "status": "phd"},
			{"name": "Karim Tazi", "email": "karim.tazi@lab.example.org", "grade": "Docteur", "status": "alumni"},
		},
		"publications": {
			{"title": "Deep features for Arabic handwriting recognition", "authors": "Benali, Tazi", "venue": "Pattern Recognition", "year": float64(2023), "type": "journal"},
			{"title": "Embedded vision on low-power devices", "authors": "El Fassi, Dubois", "venue": "ICIP", "year": float64(2022), "type": "conference"},
			{"title": "Contributions à la vision par ordinateur", "authors": "Tazi", "venue": "", "year": float64(2021), "type": "thesis"},
		},
		"partners": {
			{"name": "Université de Lorraine", "country": "France", "kind": "academic", "website": "https://www.univ-lorraine.fr"},
			{"name": "Atos", "country": "France", "kind": "industrial", "website": "https://atos.net"},
		},
		"axes": {
			{"title_fr": "Vision par ordinateur", "title_en": "Computer vision", "title_ar": "الرؤية الحاسوبية", "slug": "vision", "position": float64(1)},
			{"title_fr": "Systèmes embarqués", "title_en": "Embedded systems", "title_ar": "الأنظمة المدمجة", "slug": "embedded", "position": float64(2)},
		},
		"gallery": {
			{"caption_fr": "Journée portes ouvertes 2024", "caption_en": "Open day 2024", "caption_ar": "", "image": "gallery/open-day-2024.jpg"},
		},
		"messages": {
			{"name": "Visiteur", "email": "visitor@example.com", "subject": "Candidature doctorat", "body": "Bonjour...", "read": false},
		},
	}

	// fixed order keeps fixture ids stable across runs
	for _, resource := range []string{"members", "publications", "partners", "axes", "gallery", "messages"} {
		for _, row := range seedRows[resource] {
			s.insertLocked(resource, row)
		}
	}

	for _, page := range model.Pages {
		rec := page.Defaults.Clone()
		rec["id"] = float64(1)
		s.settings[page.Name] = rec
	}
}

func (s *Store) insertLocked(resource string, rec model.Record) model.Record {
	if s.records[resource] == nil {
		s.records[resource] = make(map[int64]model.Record)
	}
	stored := rec.Clone()
	stored["id"] = float64(s.nextID)
	s.records[resource][s.nextID] = stored
	s.nextID++
	return stored.Clone()
}

// List returns all records of a resource ordered by id.
func (s *Store) List(resource string) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.records[resource]
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, rows[id].Clone())
	}
	return out
}

// Get returns one record, or false.
func (s *Store) Get(resource string, id int64) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[resource][id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Create inserts a record and returns the stored copy with its id.
func (s *Store) Create(resource string, rec model.Record) model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(resource, rec)
}

// Update overwrites the fields of an existing record.
func (s *Store) Update(resource string, id int64, rec model.Record) (model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[resource][id]
	if !ok {
		return nil, false
	}
	for k, v := range rec {
		if k == "id" {
			continue
		}
		existing[k] = v
	}
	return existing.Clone(), true
}

// Delete removes a record, reporting whether it existed.
func (s *Store) Delete(resource string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[resource][id]; !ok {
		return false
	}
	delete(s.records[resource], id)
	return true
}

// Settings returns the singleton record of a settings page.
func (s *Store) Settings(page string) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.settings[page]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// SaveSettings merges fields into the page's singleton record.
func (s *Store) SaveSettings(page string, fields model.Record) model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.settings[page]
	if !ok {
		rec = model.Record{"id": float64(1), "page": page}
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	s.settings[page] = rec
	return rec.Clone()
}
