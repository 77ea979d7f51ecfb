package sqlstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360studio/knowcore/storage/sqlstore"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if KNOWCORE_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("KNOWCORE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KNOWCORE_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

func TestProposeApproveRejectRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := sqlstore.New(ctx, testDSN(t))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	et, err := store.Propose(ctx, "PERSON", "a named individual", "operator")
	require.NoError(t, err)
	require.False(t, et.Approved)

	require.NoError(t, store.Approve(ctx, et.ID))

	all, err := store.List(ctx)
	require.NoError(t, err)

	var found bool
	for _, e := range all {
		if e.ID == et.ID {
			found = true
			require.True(t, e.Approved)
		}
	}
	require.True(t, found)
}

func TestRejectRemovesUnapprovedEntityType(t *testing.T) {
	ctx := context.Background()
	store, err := sqlstore.New(ctx, testDSN(t))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	et, err := store.Propose(ctx, "PROTOCOL", "a named wire protocol", "llm")
	require.NoError(t, err)

	require.NoError(t, store.Reject(ctx, et.ID))

	all, err := store.List(ctx)
	require.NoError(t, err)
	for _, e := range all {
		require.NotEqual(t, et.ID, e.ID)
	}
}
