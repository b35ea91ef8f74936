package evt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mb0/xelf/lit"
	"github.com/mb0/xelf/typ"
)

func testKinds() Kinds {
	return Kinds{"increment": typ.Int, "rename": typ.Str}
}

func TestKindsCheck(t *testing.T) {
	tests := []struct {
		ks  Kinds
		err bool
	}{
		{testKinds(), false},
		{Kinds{}, true},
		{nil, true},
		{Kinds{"Bad Name": typ.Int}, true},
		{Kinds{"": typ.Int}, true},
	}
	for _, test := range tests {
		err := test.ks.Check()
		if test.err != (err != nil) {
			t.Errorf("check %v got err %v want err %v", test.ks, err, test.err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload lit.Lit
		err     bool
	}{
		{"increment", lit.Int(5), false},
		{"rename", lit.Str("foo"), false},
		{"bogus", lit.Int(5), true},
		{"", lit.Int(5), true},
		{"increment", nil, true},
		{"increment", lit.Str("nope"), true},
	}
	ks := testKinds()
	for _, test := range tests {
		ev := &CommitEvent{Name: test.name, Payload: test.payload}
		err := ks.Validate(ev)
		if test.err != (err != nil) {
			t.Errorf("validate %s %v got err %v want err %v",
				test.name, test.payload, err, test.err)
		}
	}
}

func TestNewCid(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		cid := NewCid()
		if len(cid) != 5 {
			t.Fatalf("cid %q len %d want 5", cid, len(cid))
		}
		for _, c := range cid {
			if !strings.ContainsRune(cidChars, c) {
				t.Fatalf("cid %q has char %q outside alphabet", cid, c)
			}
		}
		seen[cid] = true
	}
	if len(seen) < 2 {
		t.Errorf("got %d distinct cids from 100 mints", len(seen))
	}
}

func TestEventJSON(t *testing.T) {
	tests := []struct {
		ev  any
		raw string
	}{
		{&CommitEvent{Name: "increment", Payload: lit.Int(5)},
			`{"name":"increment","payload":5}`},
		{&CommitEvent{Name: "increment", Payload: lit.Int(5), Cid: "ab3x9"},
			`{"name":"increment","payload":5,"clientId":"ab3x9"}`},
		{&CommittedEvent{CommitEvent: CommitEvent{Name: "increment", Payload: lit.Int(5), Cid: "ab3x9"}, Seq: 7},
			`{"name":"increment","payload":5,"clientId":"ab3x9","sequence":7}`},
		{&CommittedEvent{CommitEvent: CommitEvent{Name: "increment", Payload: lit.Int(5)}, Seq: NoSeq, Err: true},
			`{"name":"increment","payload":5,"sequence":-1,"error":true}`},
	}
	for _, test := range tests {
		raw, err := json.Marshal(test.ev)
		if err != nil {
			t.Errorf("marshal %+v failed: %v", test.ev, err)
			continue
		}
		if got := string(raw); got != test.raw {
			t.Errorf("marshal got %s want %s", got, test.raw)
		}
	}
}

func TestEventJSONRoundTrip(t *testing.T) {
	cv := &CommittedEvent{
		CommitEvent: CommitEvent{Name: "increment", Payload: lit.Int(5), Cid: "ab3x9"},
		Seq:         NoSeq, Err: true,
	}
	raw, err := json.Marshal(cv)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	got := &CommittedEvent{}
	err = json.Unmarshal(raw, got)
	if err != nil {
		t.Fatalf("unmarshal %s failed: %v", raw, err)
	}
	if got.Name != cv.Name || got.Cid != cv.Cid || got.Seq != cv.Seq || got.Err != cv.Err {
		t.Errorf("round trip got %+v want %+v", got, cv)
	}
	if got.Payload == nil || got.Payload.String() != "5" {
		t.Errorf("round trip payload got %v want 5", got.Payload)
	}
}
