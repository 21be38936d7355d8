package openai

import (
	"fmt"
	"strings"
	"testing"
)

func TestStreamSSEParsesEvents(t *testing.T) {
	body := strings.Join([]string{
		": keepalive",
		"data: {\"a\":1}",
		"",
		"event: delta",
		"data: line1",
		"data: line2",
		"",
		"data: [DONE]",
		"",
	}, "\n")

	type ev struct{ name, data string }
	var got []ev
	err := StreamSSE(strings.NewReader(body), func(event, data string) error {
		got = append(got, ev{event, data})
		return nil
	})
	if err != nil {
		t.Fatalf("StreamSSE: %v", err)
	}
	want := []ev{
		{"", `{"a":1}`},
		{"delta", "line1\nline2"},
		{"", "[DONE]"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStreamSSEFlushesTrailingEventAtEOF(t *testing.T) {
	var got []string
	err := StreamSSE(strings.NewReader("data: tail"), func(_, data string) error {
		got = append(got, data)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamSSE: %v", err)
	}
	if len(got) != 1 || got[0] != "tail" {
		t.Fatalf("got %v, want [tail]", got)
	}
}

func TestStreamSSEStopsOnCallbackError(t *testing.T) {
	body := "data: one\n\ndata: two\n\n"
	calls := 0
	err := StreamSSE(strings.NewReader(body), func(_, _ string) error {
		calls++
		return fmt.Errorf("stop")
	})
	if err == nil || err.Error() != "stop" {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback called %d times, want 1", calls)
	}
}

func TestStripJSONFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n[1,2]\n```", "[1,2]"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := stripJSONFence(c.in); got != c.want {
			t.Fatalf("stripJSONFence(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
