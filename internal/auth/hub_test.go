package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/tripweaver/internal/auth"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	hub := auth.NewHub()
	var a, b []auth.Event
	hub.Subscribe(func(e auth.Event) { a = append(a, e) })
	hub.Subscribe(func(e auth.Event) { b = append(b, e) })

	hub.Publish(auth.Event{Kind: auth.SignedIn, ClientID: "c1"})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
	assert.Equal(t, auth.SignedIn, a[0].Kind)
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := auth.NewHub()
	calls := 0
	unsubscribe := hub.Subscribe(func(auth.Event) { calls++ })
	other := hub.Subscribe(func(auth.Event) {})
	assert.Equal(t, 2, hub.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, hub.Len())

	hub.Publish(auth.Event{Kind: auth.SignedOut})
	assert.Equal(t, 0, calls)

	other()
	assert.Equal(t, 0, hub.Len())
}
