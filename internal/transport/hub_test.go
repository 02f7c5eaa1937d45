// ABOUTME: Tests for the hub's per-connection fan-out
// ABOUTME: Envelope encoding, targeted notify, broadcast, slow-consumer drop

package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFrame(t *testing.T, data []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHubNotifyTargetsOneConnection(t *testing.T) {
	h := NewHub(nil)
	a := h.Add("conn-a")
	b := h.Add("conn-b")

	h.Notify("conn-a", "typing", map[string]string{"fromUserId": "bob"})

	select {
	case data := <-a:
		env := decodeFrame(t, data)
		assert.Equal(t, "typing", env.Event)
		assert.JSONEq(t, `{"fromUserId":"bob"}`, string(env.Payload))
	default:
		t.Fatal("conn-a received nothing")
	}
	assert.Empty(t, b)
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	h := NewHub(nil)
	a := h.Add("conn-a")
	b := h.Add("conn-b")

	h.Broadcast("userOnline", map[string]string{"userId": "alice"})

	for _, ch := range []<-chan []byte{a, b} {
		select {
		case data := <-ch:
			assert.Equal(t, "userOnline", decodeFrame(t, data).Event)
		default:
			t.Fatal("broadcast missed a connection")
		}
	}
}

func TestHubNotifyUnknownConnectionIsDropped(t *testing.T) {
	h := NewHub(nil)
	h.Notify("nobody", "typing", nil)
}

func TestHubRemoveStopsDelivery(t *testing.T) {
	h := NewHub(nil)
	ch := h.Add("conn-a")
	h.Remove("conn-a")

	h.Notify("conn-a", "typing", nil)

	assert.Empty(t, ch)
	assert.Zero(t, h.Len())
}

func TestHubFullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(nil)
	ch := h.Add("conn-a")

	for i := 0; i < defaultSendBuffer+10; i++ {
		h.Notify("conn-a", "typing", nil)
	}

	assert.Len(t, ch, defaultSendBuffer)
}

func TestHubOmitsEmptyPayload(t *testing.T) {
	h := NewHub(nil)
	ch := h.Add("conn-a")

	h.Notify("conn-a", "ping", nil)

	data := <-ch
	assert.JSONEq(t, `{"event":"ping"}`, string(data))
}
