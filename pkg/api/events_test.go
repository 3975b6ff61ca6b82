package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/courier/pkg/api"
)

func TestEventStatus(t *testing.T) {
	cases := map[api.EventType]api.JobStatus{
		api.EventJobAccepted:  api.JobAccepted,
		api.EventJobRejected:  api.JobRejected,
		api.EventJobArrived:   api.JobArrived,
		api.EventJobStarted:   api.JobInProgress,
		api.EventJobCompleted: api.JobCompleted,
		api.EventJobCancelled: api.JobCancelled,
	}
	for typ, want := range cases {
		got, ok := typ.Status()
		assert.True(t, ok, typ)
		assert.Equal(t, want, got, typ)
	}

	_, ok := api.EventJobRequested.Status()
	assert.False(t, ok)
	_, ok = api.EventType("job:teleported").Status()
	assert.False(t, ok)
}

func TestNewJobEvent(t *testing.T) {
	ev, err := api.NewJobEvent(api.EventJobStarted, api.JobProgressEvent{
		JobID:   "42",
		AgentID: "agent-9",
	})
	assert.NoError(t, err)
	assert.Equal(t, api.EventJobStarted, ev.Type)
	assert.JSONEq(t, `{"jobId":"42","agentId":"agent-9"}`, string(ev.Data))
}
