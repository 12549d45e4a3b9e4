package kafka

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/kotori/pkg/eventstream"
	"github.com/papercomputeco/kotori/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closes int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closes++
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		w *fakeWriter
		p *Publisher
	)

	BeforeEach(func() {
		w = &fakeWriter{}
		p = newPublisher(w, Config{Topic: "turns"}, logger.Nop())
	})

	It("implements eventstream.Publisher", func() {
		var _ eventstream.Publisher = p
	})

	It("requires brokers", func() {
		_, err := NewPublisher(Config{}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("broker")))
	})

	It("writes the JSON event keyed by event id", func() {
		event := eventstream.NewTurnCompletedEvent("qna", "qna", "what is it", "• answer", "conv_1")
		Expect(p.PublishTurn(context.Background(), event)).To(Succeed())

		Expect(w.msgs).To(HaveLen(1))
		Expect(string(w.msgs[0].Key)).To(Equal(event.EventID))
		Expect(w.msgs[0].Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte("kotori.turn.completed")}))

		var got eventstream.TurnCompletedEvent
		Expect(json.Unmarshal(w.msgs[0].Value, &got)).To(Succeed())
		Expect(got.MemoryID).To(Equal("conv_1"))
		Expect(got.Input).To(Equal("what is it"))
	})

	It("rejects nil events", func() {
		Expect(p.PublishTurn(context.Background(), nil)).To(MatchError(eventstream.ErrNilTurnEvent))
	})

	It("wraps writer errors", func() {
		w.err = errors.New("broker down")
		err := p.PublishTurn(context.Background(), eventstream.NewTurnCompletedEvent("qna", "qna", "q", "r", ""))
		Expect(err).To(MatchError(ContainSubstring("broker down")))
		Expect(err.Error()).To(ContainSubstring("turns"))
	})

	It("refuses to publish after close and closes once", func() {
		Expect(p.Close()).To(Succeed())
		Expect(p.Close()).To(Succeed())
		Expect(w.closes).To(Equal(1))

		err := p.PublishTurn(context.Background(), eventstream.NewTurnCompletedEvent("qna", "qna", "q", "r", ""))
		Expect(err).To(MatchError(eventstream.ErrPublisherClosed))
	})
})
