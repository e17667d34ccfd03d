package consumer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Eursukkul/competition-portal/internal/catalog"
	"github.com/Eursukkul/competition-portal/internal/draft"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAck struct {
	acked, nacked int
	requeued      bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}
func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeued = requeue
	return nil
}
func (f *fakeAck) Reject(tag uint64, requeue bool) error { return nil }

func TestHandleMessage_SyncsCatalog(t *testing.T) {
	cat := catalog.New(nil, nil)
	cc := NewCompetitionConsumer(cat, zap.NewNop())

	comp := draft.NewCompetition()
	comp.ID = 5
	comp.SetTitle("Autumn Open")
	comp.SetMaxParticipants(draft.ProgramPair, 4)
	body, err := json.Marshal(comp)
	require.NoError(t, err)

	ack := &fakeAck{}
	cc.handleMessage(amqp.Delivery{Acknowledger: ack, Body: body, RoutingKey: "competition.created"})

	assert.Equal(t, 1, ack.acked)
	o, ok := cat.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, "Autumn Open", o.Title)
}

func TestHandleMessage_BadPayloadIsDropped(t *testing.T) {
	cat := catalog.New(nil, nil)
	cc := NewCompetitionConsumer(cat, zap.NewNop())

	for _, body := range []string{`{not json`, `{"title":"no id"}`} {
		ack := &fakeAck{}
		cc.handleMessage(amqp.Delivery{Acknowledger: ack, Body: []byte(body)})
		assert.Equal(t, 1, ack.nacked)
		assert.False(t, ack.requeued)
	}
	assert.Equal(t, 0, cat.Len())
}

func TestStart_DrainsChannel(t *testing.T) {
	cat := catalog.New(nil, nil)
	cc := NewCompetitionConsumer(cat, zap.NewNop())

	msgs := make(chan amqp.Delivery, 1)
	ack := &fakeAck{}
	msgs <- amqp.Delivery{Acknowledger: ack, Body: []byte(`{"id":8,"title":"X"}`)}
	close(msgs)

	cc.Start(msgs)

	assert.Eventually(t, func() bool {
		_, ok := cat.Lookup(8)
		return ok
	}, time.Second, 10*time.Millisecond)
}
