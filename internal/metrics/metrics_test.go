package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_IncAndAdd(t *testing.T) {
	r := NewRegistry()

	r.Inc(ExpiryChecksTotal)
	r.Add(ExpiryChecksTotal, 2)

	assert.Equal(t, int64(3), r.Get(ExpiryChecksTotal))
	assert.Equal(t, int64(3), r.Snapshot()[string(ExpiryChecksTotal)])
}

func TestRegistry_GaugeCanGoDown(t *testing.T) {
	r := NewRegistry()

	r.Add(PrefsKeys, 2)
	r.Add(PrefsKeys, -1)

	assert.Equal(t, int64(1), r.Get(PrefsKeys))
}

func TestRegistry_GetUnsetIsZero(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, int64(0), r.Get(ConsentExpiredTotal))
}

func TestRegistry_ConcurrentUpdates(t *testing.T) {
	r := NewRegistry()
	wg := sync.WaitGroup{}

	workers := 50
	increments := 100

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				r.Inc(SweepNamespacesTotal)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(workers*increments), r.Get(SweepNamespacesTotal))
}

func TestRegistry_SnapshotIsDeepCopy(t *testing.T) {
	r := NewRegistry()

	r.Inc(PrefsKeys)
	snap1 := r.Snapshot()

	snap1[string(PrefsKeys)] = 999

	snap2 := r.Snapshot()
	assert.Equal(t, int64(1), snap2[string(PrefsKeys)],
		"internal state should not be affected by snapshot mutation")
}

func TestRegistry_CollectExportsPrometheusText(t *testing.T) {
	r := NewRegistry()
	r.Add(ConsentExpiredTotal, 4)
	r.Add(PrefsKeys, 2)

	assert.Equal(t, 2, testutil.CollectAndCount(r))

	expected := `
# HELP consent_expiry_consent_records_expired_total consent-expiry metric consent_records_expired_total
# TYPE consent_expiry_consent_records_expired_total counter
consent_expiry_consent_records_expired_total 4
# HELP consent_expiry_prefs_keys consent-expiry metric prefs_keys
# TYPE consent_expiry_prefs_keys gauge
consent_expiry_prefs_keys 2
`
	err := testutil.CollectAndCompare(r, strings.NewReader(expected))
	require.NoError(t, err)
}

func TestNewPrometheusRegistry_GathersRegistry(t *testing.T) {
	r := NewRegistry()
	r.Inc(SweepRunsTotal)

	reg := NewPrometheusRegistry(r)
	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "consent_expiry_sweep_runs_total" {
			found = true
		}
	}
	assert.True(t, found)
}
