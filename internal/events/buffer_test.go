package events

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", func() {
	It("keeps messages in insertion order", func() {
		buffer := newBuffer()

		Expect(buffer.PushBack(&message{Kind: AnalysisCreatedKind, Data: []byte("msg1")})).To(Equal(1))
		Expect(buffer.PushBack(&message{Kind: AnalysisCreatedKind, Data: []byte("msg2")})).To(Equal(2))
		Expect(buffer.PushBack(&message{Kind: AnalysisCompletedKind, Data: []byte("msg3")})).To(Equal(3))

		batch := buffer.Drain()
		Expect(batch).To(HaveLen(3))
		for i, expected := range []string{"msg1", "msg2", "msg3"} {
			Expect(string(batch[i].Data)).To(Equal(expected))
		}
		Expect(buffer.Drain()).To(BeEmpty())
	})

	It("can be refilled after being drained", func() {
		buffer := newBuffer()
		buffer.PushBack(&message{Data: []byte("a")})
		Expect(buffer.Drain()).To(HaveLen(1))

		Expect(buffer.PushBack(&message{Data: []byte("b")})).To(Equal(1))
		batch := buffer.Drain()
		Expect(batch).To(HaveLen(1))
		Expect(string(batch[0].Data)).To(Equal("b"))
	})
})
