package transport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// readResult is one scripted bulk-in outcome.
type readResult struct {
	data  []byte
	err   error
	block bool // wait for the context instead of returning
}

// MockPipe replays scripted reads and records writes.
type MockPipe struct {
	reads     []readResult
	readCalls int
	writes    [][]byte
	writeN    int // if >= 0, bytes reported as written
	writeErr  error
}

func NewMockPipe(reads ...readResult) *MockPipe {
	return &MockPipe{reads: reads, writeN: -1}
}

func (m *MockPipe) ReadContext(ctx context.Context, buf []byte) (int, error) {
	if m.readCalls >= len(m.reads) {
		m.readCalls++
		return 0, ErrTimeout
	}
	r := m.reads[m.readCalls]
	m.readCalls++
	if r.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if r.err != nil {
		return 0, r.err
	}
	return copy(buf, r.data), nil
}

func (m *MockPipe) WriteContext(ctx context.Context, buf []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes = append(m.writes, append([]byte(nil), buf...))
	if m.writeN >= 0 {
		return m.writeN, nil
	}
	return len(buf), nil
}

func TestSend(t *testing.T) {
	tests := []struct {
		name     string
		writeN   int
		writeErr error
		wantErr  error
	}{
		{
			name:   "full write",
			writeN: -1,
		},
		{
			name:    "short write",
			writeN:  2,
			wantErr: ErrShortWrite,
		},
		{
			name:     "device error",
			writeN:   -1,
			writeErr: errors.New("no device"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipe := NewMockPipe()
			pipe.writeN = tt.writeN
			pipe.writeErr = tt.writeErr

			tr := New(pipe)
			err := tr.Send(context.Background(), []byte{0x01, 0x02, 0x03})

			if tt.wantErr == nil && tt.writeErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(pipe.writes) != 1 || !bytes.Equal(pipe.writes[0], []byte{0x01, 0x02, 0x03}) {
					t.Errorf("writes = %v, want one 3-byte write", pipe.writes)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !IsTransportError(err) {
				t.Errorf("error type = %T, want *Error", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.writeErr != nil && !strings.Contains(err.Error(), "no device") {
				t.Errorf("error = %v, want device error text", err)
			}
		})
	}
}

func TestReceive(t *testing.T) {
	deviceErr := errors.New("pipe error")

	tests := []struct {
		name      string
		reads     []readResult
		mode      PollMode
		attempts  int
		want      []byte
		wantErr   error
		wantCalls int
	}{
		{
			name:      "single success",
			reads:     []readResult{{data: []byte("ACK")}},
			mode:      Single,
			want:      []byte("ACK"),
			wantCalls: 1,
		},
		{
			name:      "single timeout is no response",
			reads:     []readResult{{err: ErrTimeout}, {data: []byte("late")}},
			mode:      Single,
			wantErr:   ErrNoResponse,
			wantCalls: 1,
		},
		{
			name:      "poll retries timeouts",
			reads:     []readResult{{err: ErrTimeout}, {err: ErrTimeout}, {data: []byte("ready")}},
			mode:      PollUntilReady,
			want:      []byte("ready"),
			wantCalls: 3,
		},
		{
			name:      "poll aborts on other errors",
			reads:     []readResult{{err: ErrTimeout}, {err: deviceErr}, {data: []byte("never")}},
			mode:      PollUntilReady,
			wantErr:   deviceErr,
			wantCalls: 2,
		},
		{
			name:      "poll exhausts budget",
			reads:     nil,
			mode:      PollUntilReady,
			attempts:  5,
			wantErr:   ErrNoResponse,
			wantCalls: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipe := NewMockPipe(tt.reads...)
			opts := []Option{}
			if tt.attempts > 0 {
				opts = append(opts, WithPollAttempts(tt.attempts))
			}

			tr := New(pipe, opts...)
			got, err := tr.Receive(context.Background(), tt.mode)

			if pipe.readCalls != tt.wantCalls {
				t.Errorf("read calls = %d, want %d", pipe.readCalls, tt.wantCalls)
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Receive() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReceiveAttemptDeadlineIsTimeout(t *testing.T) {
	pipe := NewMockPipe(
		readResult{block: true},
		readResult{block: true},
		readResult{data: []byte("<data/>")},
	)

	tr := New(pipe, WithAttemptTimeout(5*time.Millisecond))
	got, err := tr.Receive(context.Background(), PollUntilReady)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "<data/>" {
		t.Errorf("Receive() = %q, want %q", got, "<data/>")
	}
}

func TestReceiveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipe := NewMockPipe(readResult{data: []byte("x")})
	tr := New(pipe)

	_, err := tr.Receive(ctx, PollUntilReady)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if pipe.readCalls != 0 {
		t.Errorf("read calls = %d, want 0", pipe.readCalls)
	}
}

func TestReceiveReturnsCopy(t *testing.T) {
	pipe := NewMockPipe(readResult{data: []byte("first")}, readResult{data: []byte("second")})
	tr := New(pipe)

	first, err := tr.Receive(context.Background(), Single)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.Receive(context.Background(), Single); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first) != "first" {
		t.Errorf("first message changed to %q", first)
	}
}

func TestDump(t *testing.T) {
	var out bytes.Buffer
	pipe := NewMockPipe(readResult{data: []byte("OK")})
	tr := New(pipe, WithDump(&out))

	if err := tr.Send(context.Background(), []byte("abc")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.Receive(context.Background(), Single); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dump := out.String()
	for _, want := range []string{"writing (3):", "|abc|", "read (2):", "|OK|"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
}

func TestEndpoints(t *testing.T) {
	ep := DefaultEndpoints()
	if ep.In != 0x81 || ep.Out != 0x01 {
		t.Errorf("endpoints = %s, want in=0x81 out=0x01", ep)
	}
	if ep.MaxTx != 8192 || ep.MaxRx != 4096 {
		t.Errorf("payload sizes = %d/%d, want 8192/4096", ep.MaxTx, ep.MaxRx)
	}

	smaller := ep.WithMaxTx(4096)
	if smaller.MaxTx != 4096 || ep.MaxTx != 8192 {
		t.Errorf("WithMaxTx mutated the original or failed: %s / %s", ep, smaller)
	}

	if err := (Endpoints{MaxTx: 0, MaxRx: 1}).Validate(); err == nil {
		t.Error("expected error for zero MaxTx")
	}
}
