package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paisavest/internal/domain"
)

type channelSettler struct {
	settled chan uuid.UUID
}

func (s *channelSettler) Settle(_ context.Context, withdrawalID uuid.UUID) error {
	s.settled <- withdrawalID
	return nil
}

func TestInProcessSettlementQueue(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	settler := &channelSettler{settled: make(chan uuid.UUID, 1)}
	q := NewInProcessSettlementQueue(settler, log)

	id := uuid.New()
	require.NoError(t, q.Enqueue(context.Background(), domain.SettlementJob{
		WithdrawalID: id,
		ExternalID:   "ext_1",
		NotBefore:    time.Now().Add(10 * time.Millisecond),
	}))

	select {
	case got := <-settler.settled:
		assert.Equal(t, id, got)
	case <-time.After(2 * time.Second):
		t.Fatal("settlement was not triggered")
	}
}

func TestSettlementJobRoundTrip(t *testing.T) {
	// The worker and the publisher must agree on the wire shape
	job := domain.SettlementJob{
		WithdrawalID: uuid.New(),
		ExternalID:   "ext_1",
		NotBefore:    time.Now().UTC().Truncate(time.Second),
	}

	b, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded domain.SettlementJob
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, job.WithdrawalID, decoded.WithdrawalID)
	assert.Equal(t, job.ExternalID, decoded.ExternalID)
	assert.True(t, job.NotBefore.Equal(decoded.NotBefore))
}
