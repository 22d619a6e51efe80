package transport

import (
	"testing"

	"github.com/adi-253/roomline/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRegistryDeliversInRegistrationOrder(t *testing.T) {
	var r registry
	var calls []string

	r.Subscribe(func(models.ChatMessage) { calls = append(calls, "first") })
	unsubscribe := r.Subscribe(func(models.ChatMessage) { calls = append(calls, "second") })
	r.Subscribe(func(models.ChatMessage) { calls = append(calls, "third") })

	r.deliver(models.ChatMessage{MessageID: 1})
	assert.Equal(t, []string{"first", "second", "third"}, calls)

	calls = nil
	unsubscribe()
	unsubscribe()
	r.deliver(models.ChatMessage{MessageID: 2})
	assert.Equal(t, []string{"first", "third"}, calls)
	assert.Equal(t, 2, r.count())
}

func TestRegistrySameHandlerTwice(t *testing.T) {
	var r registry
	n := 0
	h := func(models.ChatMessage) { n++ }

	first := r.Subscribe(h)
	r.Subscribe(h)
	first()

	r.deliver(models.ChatMessage{})
	assert.Equal(t, 1, n)
}

func TestRegistryUnsubscribeDuringDelivery(t *testing.T) {
	var r registry
	var calls []string
	var unsubscribeSecond func()

	r.Subscribe(func(models.ChatMessage) {
		calls = append(calls, "first")
		unsubscribeSecond()
	})
	unsubscribeSecond = r.Subscribe(func(models.ChatMessage) { calls = append(calls, "second") })

	r.deliver(models.ChatMessage{})
	r.deliver(models.ChatMessage{})
	assert.Equal(t, []string{"first", "second", "first"}, calls)
}
