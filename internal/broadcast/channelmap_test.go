package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendFansOutToAllSubscribers(t *testing.T) {
	cm := NewChannelMap[string, int](4)
	a := cm.Subscribe("game-1")
	b := cm.Subscribe("game-1")
	defer a.Close()
	defer b.Close()

	cm.Send("game-1", 42)

	select {
	case v := <-a.C():
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("subscriber a never received the value")
	}
	select {
	case v := <-b.C():
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("subscriber b never received the value")
	}
}

func TestSendToUnknownKeyIsNoop(t *testing.T) {
	cm := NewChannelMap[string, int](4)
	require.NotPanics(t, func() { cm.Send("nobody-listening", 1) })
}

func TestCloseRemovesEntryOnLastReceiver(t *testing.T) {
	cm := NewChannelMap[string, int](4)
	a := cm.Subscribe("game-1")
	b := cm.Subscribe("game-1")

	a.Close()
	require.Len(t, cm.entries, 1, "group still has subscriber b")

	b.Close()
	require.Len(t, cm.entries, 0, "last receiver closed, entry should be gone")
}

func TestSubscribeRacingCloseNeverOrphansReceiver(t *testing.T) {
	for i := 0; i < 200; i++ {
		cm := NewChannelMap[string, int](4)
		a := cm.Subscribe("game-1")

		done := make(chan *Receiver[string, int])
		go func() {
			done <- cm.Subscribe("game-1")
		}()
		a.Close()
		b := <-done

		cm.Send("game-1", 7)
		select {
		case v := <-b.C():
			require.Equal(t, 7, v)
		case <-time.After(time.Second):
			t.Fatal("subscriber b never received a value sent after a raced in with Close")
		}
		b.Close()
	}
}

func TestSendDropsOnFullBuffer(t *testing.T) {
	cm := NewChannelMap[string, int](1)
	r := cm.Subscribe("key")
	defer r.Close()

	cm.Send("key", 1)
	cm.Send("key", 2) // buffer full, dropped rather than blocking

	v := <-r.C()
	require.Equal(t, 1, v)
	select {
	case <-r.C():
		t.Fatal("second value should have been dropped")
	case <-time.After(50 * time.Millisecond):
	}
}
