package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_Ordered(t *testing.T) {
	files, err := Files()

	require.NoError(t, err)
	assert.Equal(t, []string{
		"0001_reservations.sql",
		"0002_slot_counters.sql",
		"0003_reservation_settings.sql",
	}, files)
}

func TestFiles_DefineTables(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)

	var all strings.Builder
	for _, f := range files {
		body, err := fs.ReadFile(f)
		require.NoError(t, err)
		all.Write(body)
	}

	for _, table := range []string{"reservations", "reservation_slot_counters", "reservation_settings"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
