package core

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poms/pkg/domain"
)

func assertSeedCounts(t *testing.T, snap Snapshot) {
	t.Helper()
	assert.Len(t, snap.Doctors, 14)
	assert.Len(t, snap.Patients, 20)
	assert.Len(t, snap.Rooms, 18)
	assert.Len(t, snap.Appointments, 14)
	assert.Len(t, snap.TreatmentPlans, 13)
	assert.Len(t, snap.Diagnoses, 14)
	assert.Len(t, snap.Bills, 14)
}

func TestOpenSeedsEmptyFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poms_data.json")
	ctx := context.Background()

	svc, err := Open(ctx, StorageConfig{Driver: StorageFile, FilePath: path}, WithClock(fixedClock()))
	require.NoError(t, err)
	assertSeedCounts(t, svc.Store().ExportState())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc domain.StateDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assertSeedCounts(t, doc.Snapshot)
	assert.Equal(t, "2025-05-06T09:30:00.000000", doc.LastSaved)
	require.NoError(t, svc.Close(ctx))

	reopened, err := Open(ctx, StorageConfig{Driver: StorageFile, FilePath: path}, WithClock(fixedClock()))
	require.NoError(t, err)
	assert.True(t, reopened.Store().Loaded())
	assertSeedCounts(t, reopened.Store().ExportState())
}

func TestOpenKeepsExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poms_data.json")
	ctx := context.Background()

	svc, err := Open(ctx, StorageConfig{Driver: StorageFile, FilePath: path}, WithClock(fixedClock()))
	require.NoError(t, err)
	_, err = svc.ClearAll(ctx)
	require.NoError(t, err)
	_, _, err = svc.CreateDoctor(ctx, Doctor{Name: "Dr. Asha", Specialization: "Oncology"})
	require.NoError(t, err)

	reopened, err := Open(ctx, StorageConfig{Driver: StorageFile, FilePath: path})
	require.NoError(t, err)
	doctors := reopened.ListDoctors(ctx)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Asha", doctors[0].Name)
	assert.Empty(t, reopened.ListPatients(ctx))
}

func TestOpenTreatsCorruptFileAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poms_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"patients": [`), 0o600))
	var logs bytes.Buffer

	svc, err := Open(context.Background(), StorageConfig{Driver: StorageFile, FilePath: path},
		WithClock(fixedClock()), WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	assertSeedCounts(t, svc.Store().ExportState())
	assert.Contains(t, logs.String(), "stored data unreadable")
	assert.Contains(t, logs.String(), `"level":"warn"`)
}

func TestOpenSeedsWhenStateFileCannotBeRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poms_data.json")
	require.NoError(t, os.Mkdir(path, 0o755))
	var logs bytes.Buffer

	svc, err := Open(context.Background(), StorageConfig{Driver: StorageFile, FilePath: path},
		WithClock(fixedClock()), WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	assertSeedCounts(t, svc.Store().ExportState())
	assert.Contains(t, logs.String(), "stored data unreadable")
	assert.Contains(t, logs.String(), "initial save failed")
}

func TestSaveFailureSurfacesAfterCommit(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	path := filepath.Join(dataDir, "poms_data.json")
	ctx := context.Background()
	var logs bytes.Buffer

	svc, err := Open(ctx, StorageConfig{Driver: StorageFile, FilePath: path},
		WithClock(fixedClock()), WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dataDir))
	require.NoError(t, os.WriteFile(dataDir, []byte("not a directory"), 0o600))

	doctor, _, err := svc.CreateDoctor(ctx, Doctor{Name: "Dr. Farah", Specialization: "Surgery"})
	require.Error(t, err)
	assert.True(t, domain.IsPersistence(err))
	assert.Equal(t, 15, doctor.ID)
	got, err := svc.GetDoctor(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Farah", got.Name)
	assert.Contains(t, logs.String(), "change applied in memory but not saved")

	require.NoError(t, os.Remove(dataDir))
	require.NoError(t, svc.Flush(ctx))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dr. Farah")
}

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()

	store, err := OpenStore(ctx, StorageConfig{Driver: StorageMemory}, nil, nil)
	require.NoError(t, err)
	assert.False(t, store.Loaded())

	store, err = OpenStore(ctx, StorageConfig{Driver: StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "poms.db")}, nil, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	assert.False(t, store.Loaded())
	require.NoError(t, store.Close())

	_, err = OpenStore(ctx, StorageConfig{Driver: "bogus"}, nil, nil)
	assert.Error(t, err)
}

func TestOpenMemoryDriverSeeds(t *testing.T) {
	svc, err := Open(context.Background(), StorageConfig{Driver: StorageMemory}, WithClock(fixedClock()))
	require.NoError(t, err)
	assertSeedCounts(t, svc.Store().ExportState())

	today := 0
	for _, a := range svc.ListAppointments(context.Background()) {
		if a.Date == testToday {
			today++
		}
	}
	assert.Equal(t, 2, today)
}
