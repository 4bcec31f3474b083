package core

import (
	"context"
	"fmt"

	"poms/internal/infra/persistence/bucket"
	"poms/pkg/domain"
)

// Export returns every collection stamped with the export time.
func (s *Service) Export(ctx context.Context) ExportDocument {
	_, span := s.tracer.Start(ctx, "export_data")
	defer span.End(nil)
	return ExportDocument{
		Snapshot:   s.store.ExportState(),
		ExportDate: bucket.Timestamp(s.clock.Now()),
	}
}

// Import replaces all seven collections with the document contents. Missing
// collections become empty, statuses and room bindings are normalised, and
// no billing fires. A document placing one patient in two occupied rooms is
// rejected.
func (s *Service) Import(ctx context.Context, snapshot Snapshot) (Result, error) {
	if err := checkOccupancy(snapshot.Rooms); err != nil {
		return Result{}, err
	}
	res, err := s.run(ctx, "import_data", func(tx Transaction) error {
		tx.Replace(snapshot)
		return nil
	})
	if err == nil || domain.IsPersistence(err) {
		s.logger.Info().Int("patients", len(snapshot.Patients)).Int("bills", len(snapshot.Bills)).Msg("data imported")
	}
	return res, err
}

// ResetToSeed replaces all data with the sample dataset.
func (s *Service) ResetToSeed(ctx context.Context) (Result, error) {
	seed := SeedSnapshot(s.clock.Now())
	return s.run(ctx, "reset_to_seed", func(tx Transaction) error {
		tx.Replace(seed)
		return nil
	})
}

// ClearAll empties every collection.
func (s *Service) ClearAll(ctx context.Context) (Result, error) {
	return s.run(ctx, "clear_all", func(tx Transaction) error {
		tx.Replace(Snapshot{})
		return nil
	})
}

func checkOccupancy(rooms []Room) error {
	held := map[int]int{}
	for _, r := range rooms {
		if r.Occupancy != domain.Occupied || r.PatientID == nil {
			continue
		}
		if other, dup := held[*r.PatientID]; dup {
			return domain.ValidationError{
				Entity:  EntityRoom,
				Field:   "patient_id",
				Message: fmt.Sprintf("patient %d occupies both room %d and room %d", *r.PatientID, other, r.ID),
			}
		}
		held[*r.PatientID] = r.ID
	}
	return nil
}
