package eventstream_test

import (
	"encoding/json"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals TurnCompletedEvent with expected top-level keys", func() {
		event := eventstream.NewTurnCompletedEvent("emotional", "emotional", "I feel sad", "• ...", "conv_abc")

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKeyWithValue("schema_version", BeNumerically("==", eventstream.SchemaVersionV1)))
		Expect(got).To(HaveKeyWithValue("event_type", "kotori.turn.completed"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKeyWithValue("intent", "emotional"))
		Expect(got).To(HaveKeyWithValue("agent", "emotional"))
		Expect(got).To(HaveKeyWithValue("input", "I feel sad"))
		Expect(got).To(HaveKeyWithValue("memory_id", "conv_abc"))
	})

	It("stamps unique uuids", func() {
		a := eventstream.NewTurnCompletedEvent("qna", "qna", "q", "r", "")
		b := eventstream.NewTurnCompletedEvent("qna", "qna", "q", "r", "")
		Expect(a.EventID).NotTo(Equal(b.EventID))
		_, err := uuid.Parse(a.EventID)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.EmittedAt.IsZero()).To(BeFalse())
	})

	It("omits the memory id for welcome turns", func() {
		payload, err := json.Marshal(eventstream.NewTurnCompletedEvent("welcome", "welcome", "hi", "Hello!", ""))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).NotTo(ContainSubstring("memory_id"))
	})

	It("provides sentinel errors", func() {
		Expect(eventstream.ErrNilTurnEvent).To(MatchError("nil turn event"))
		Expect(eventstream.ErrPublisherClosed).To(MatchError("publisher closed"))
	})
})
