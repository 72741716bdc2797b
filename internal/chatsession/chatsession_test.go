package chatsession

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = 0x2A
	}
	sender := New(key, true)
	receiver := New(key, false)

	ct, counter, err := sender.EncryptMessage("hello")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if counter != 0 {
		t.Fatalf("expected first send counter 0, got %d", counter)
	}
	pt, err := receiver.DecryptMessage(ct, counter)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if pt != "hello" {
		t.Fatalf("got %q want %q", pt, "hello")
	}
}

// TestOutOfOrderChat mirrors the S2 scenario: four messages encrypted
// under send counters 0,2,4,6 and decrypted out of order 0,4,2,6.
func TestOutOfOrderChat(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = 0x2A
	}
	sender := New(key, true)
	receiver := New(key, false)

	msgs := []string{"m0", "m1", "m2", "m3"}
	cts := make([][]byte, len(msgs))
	counters := make([]uint64, len(msgs))
	for i, m := range msgs {
		ct, c, err := sender.EncryptMessage(m)
		if err != nil {
			t.Fatalf("encrypt %d: %v", i, err)
		}
		cts[i] = ct
		counters[i] = c
	}
	if sender.sendCounter != 8 {
		t.Fatalf("expected final send counter 8, got %d", sender.sendCounter)
	}

	order := []int{0, 2, 1, 3}
	for _, i := range order {
		pt, err := receiver.DecryptMessage(cts[i], counters[i])
		if err != nil {
			t.Fatalf("decrypt index %d: %v", i, err)
		}
		if pt != msgs[i] {
			t.Fatalf("index %d mismatch: got %q want %q", i, pt, msgs[i])
		}
	}
	if receiver.recvCounter != 7 {
		t.Fatalf("expected final receive counter 7, got %d", receiver.recvCounter)
	}
}

func TestSanitizeStripsAnsiAndControlChars(t *testing.T) {
	in := "\x1b[31mred\x1b[0m text\x01\x02done"
	got := sanitize(in)
	if got != "red textdone" {
		t.Fatalf("got %q", got)
	}
}

func TestReorderBufferReleasesInOrder(t *testing.T) {
	buf := NewReorderBuffer(16)
	if out := buf.Push(1, "b"); out != nil {
		t.Fatalf("expected nothing released yet, got %v", out)
	}
	out := buf.Push(0, "a")
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Fatalf("expected [a b] released, got %v", out)
	}
	if out := buf.Push(0, "dup"); out != nil {
		t.Fatalf("duplicate sequence should be dropped, got %v", out)
	}
}
