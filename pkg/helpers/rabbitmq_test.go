package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRabbitPublisher_Closed(t *testing.T) {
	var nilPub *RabbitPublisher
	assert.ErrorIs(t, nilPub.PublishJSON(t.Context(), map[string]string{"a": "b"}), ErrPublisherClosed)
	nilPub.Close()

	p := &RabbitPublisher{Queue: "emails"}
	p.Close()
	assert.ErrorIs(t, p.PublishJSON(t.Context(), map[string]string{"a": "b"}), ErrPublisherClosed)
}

func TestRabbitPublisher_RejectsUnencodable(t *testing.T) {
	p := &RabbitPublisher{Queue: "emails"}
	assert.Error(t, p.PublishJSON(t.Context(), make(chan int)))
}
