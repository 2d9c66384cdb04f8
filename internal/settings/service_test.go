package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return svc
}

func TestServiceUpdate(t *testing.T) {
	svc := newTestService(t)

	notified := 0
	svc.Subscribe(func() { notified++ })

	require.NoError(t, svc.Update(func(s *Settings) error {
		return s.Set("provider", "backend")
	}))

	assert.Equal(t, ProviderBackend, svc.Snapshot().Provider)
	assert.Equal(t, 1, notified)

	// The change survives a reload.
	reloaded, err := NewService(svc.Path())
	require.NoError(t, err)
	assert.Equal(t, ProviderBackend, reloaded.Snapshot().Provider)
}

func TestServiceUpdate_FailedMutateKeepsState(t *testing.T) {
	svc := newTestService(t)

	notified := 0
	svc.Subscribe(func() { notified++ })

	err := svc.Update(func(s *Settings) error {
		return s.Set("provider", "bogus")
	})
	require.Error(t, err)

	assert.Equal(t, Defaults(), svc.Snapshot())
	assert.Zero(t, notified)
}

func TestServiceUpdate_InvalidResultRejected(t *testing.T) {
	svc := newTestService(t)

	err := svc.Update(func(s *Settings) error {
		s.Gaps.Fajr = 999
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 20, svc.Snapshot().Gaps.Fajr)
}

func TestServiceReset(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Update(func(s *Settings) error {
		return s.Set("zone", "7")
	}))
	require.NoError(t, svc.Reset())
	assert.Equal(t, Defaults(), svc.Snapshot())
}

func TestSnapshotIsCopy(t *testing.T) {
	svc := newTestService(t)

	snap := svc.Snapshot()
	snap.Zone = 99
	assert.Zero(t, svc.Snapshot().Zone)
}
