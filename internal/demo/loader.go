package demo

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/wardops/wardops/internal/store"
)

// Database is the slice of the store the loader writes through.
type Database interface {
	Migrate(ctx context.Context) error
	ClearAll(ctx context.Context) error
	InsertUnit(ctx context.Context, u store.Unit) error
	InsertPatients(ctx context.Context, patients []store.Patient) error
	InsertBeds(ctx context.Context, beds []store.Bed) error
	InsertShift(ctx context.Context, sh store.Shift) (int64, error)
	InsertNurses(ctx context.Context, nurses []store.Nurse) error
	InsertEvents(ctx context.Context, events []store.Event) error
	CreateScenario(ctx context.Context, sc store.Scenario) error
	InsertPolicyDocument(ctx context.Context, d store.PolicyDocument) error
}

// Loader wipes the database and persists a freshly generated dataset.
type Loader struct {
	db Database
}

func NewLoader(db Database) *Loader {
	return &Loader{db: db}
}

// Load regenerates the demo dataset and replaces the database contents
// with it. It returns the dataset so callers can report what was loaded.
func (l *Loader) Load(ctx context.Context, cfg Config) (*Dataset, error) {
	if err := l.db.Migrate(ctx); err != nil {
		return nil, err
	}
	if err := l.db.ClearAll(ctx); err != nil {
		return nil, err
	}

	ds := Generate(cfg)
	if err := l.persist(ctx, ds); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"patients": len(ds.Patients),
		"events":   len(ds.Events),
		"beds":     len(ds.Beds),
		"nurses":   len(ds.Nurses),
	}).Info("demo dataset loaded")
	return ds, nil
}

func (l *Loader) persist(ctx context.Context, ds *Dataset) error {
	if err := l.db.InsertUnit(ctx, ds.Unit); err != nil {
		return fmt.Errorf("load demo: %w", err)
	}
	// Patients go in before beds: end-of-day occupied beds carry a
	// patient foreign key.
	if err := l.db.InsertPatients(ctx, ds.Patients); err != nil {
		return fmt.Errorf("load demo: %w", err)
	}
	if err := l.db.InsertBeds(ctx, ds.Beds); err != nil {
		return fmt.Errorf("load demo: %w", err)
	}

	// Shift ids are assigned by the database; remap the roster onto the
	// returned ids before inserting nurses.
	shiftIDs := make(map[int64]int64, len(ds.Shifts))
	for _, sh := range ds.Shifts {
		id, err := l.db.InsertShift(ctx, sh)
		if err != nil {
			return fmt.Errorf("load demo: %w", err)
		}
		shiftIDs[sh.ID] = id
	}
	nurses := make([]store.Nurse, len(ds.Nurses))
	copy(nurses, ds.Nurses)
	for i := range nurses {
		if nurses[i].ShiftID != nil {
			id := shiftIDs[*nurses[i].ShiftID]
			nurses[i].ShiftID = &id
		}
	}
	if err := l.db.InsertNurses(ctx, nurses); err != nil {
		return fmt.Errorf("load demo: %w", err)
	}

	// Insert events in clock order so serial ids break timestamp ties the
	// same way the journeys were generated.
	events := make([]store.Event, len(ds.Events))
	copy(events, ds.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	if err := l.db.InsertEvents(ctx, events); err != nil {
		return fmt.Errorf("load demo: %w", err)
	}

	if err := l.db.CreateScenario(ctx, ds.Baseline); err != nil {
		return fmt.Errorf("load demo: %w", err)
	}
	for _, doc := range ds.Policies {
		if err := l.db.InsertPolicyDocument(ctx, doc); err != nil {
			return fmt.Errorf("load demo: %w", err)
		}
	}
	return nil
}
