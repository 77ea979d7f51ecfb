package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/knowcore/telemetry"
)

func TestInitInstallsShutdownFunc(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), telemetry.Config{ServiceName: "knowcore-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestExternalCallRecorderRecordsSuccessAndFailure(t *testing.T) {
	_, err := telemetry.Init(context.Background(), telemetry.Config{})
	require.NoError(t, err)

	recorder, err := telemetry.NewExternalCallRecorder(telemetry.Meter("knowcore-test"))
	require.NoError(t, err)

	err = recorder.Record(context.Background(), "qdrant", "search", func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)

	wantErr := errors.New("boom")
	err = recorder.Record(context.Background(), "neo4j", "query", func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}
