package evt

import (
	"encoding/json"
	"fmt"

	"github.com/mb0/xelf/bfr"
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
)

// The wire shape is plain JSON with the payload written as a JSON literal:
//
//	commit    := {"name":..., "payload":..., "clientId":...}
//	committed := {"name":..., "payload":..., "clientId":..., "sequence":..., "error":true}
//
// The clientId and error fields are omitted when unset.

func (ev *CommitEvent) MarshalJSON() ([]byte, error) {
	b := bfr.Get()
	defer bfr.Put(b)
	err := writeEvent(b, ev, "")
	if err != nil {
		return nil, err
	}
	return copyBytes(b.Bytes()), nil
}

func (ev *CommitEvent) UnmarshalJSON(raw []byte) error {
	var tmp struct {
		Name    string          `json:"name"`
		Payload json.RawMessage `json:"payload"`
		Cid     string          `json:"clientId"`
	}
	err := json.Unmarshal(raw, &tmp)
	if err != nil {
		return err
	}
	ev.Name, ev.Cid = tmp.Name, tmp.Cid
	ev.Payload, err = parsePayload(tmp.Name, tmp.Payload)
	return err
}

func (cv *CommittedEvent) MarshalJSON() ([]byte, error) {
	b := bfr.Get()
	defer bfr.Put(b)
	tail := fmt.Sprintf(`,"sequence":%d`, cv.Seq)
	if cv.Err {
		tail += `,"error":true`
	}
	err := writeEvent(b, &cv.CommitEvent, tail)
	if err != nil {
		return nil, err
	}
	return copyBytes(b.Bytes()), nil
}

func (cv *CommittedEvent) UnmarshalJSON(raw []byte) error {
	var tmp struct {
		Name    string          `json:"name"`
		Payload json.RawMessage `json:"payload"`
		Cid     string          `json:"clientId"`
		Seq     int64           `json:"sequence"`
		Err     bool            `json:"error"`
	}
	err := json.Unmarshal(raw, &tmp)
	if err != nil {
		return err
	}
	cv.Name, cv.Cid, cv.Seq, cv.Err = tmp.Name, tmp.Cid, tmp.Seq, tmp.Err
	cv.Payload, err = parsePayload(tmp.Name, tmp.Payload)
	return err
}

func writeEvent(b bfr.B, ev *CommitEvent, tail string) error {
	_, err := fmt.Fprintf(b, `{"name":%q,"payload":`, ev.Name)
	if err != nil {
		return err
	}
	if ev.Payload == nil {
		_, err = b.WriteString("null")
	} else {
		err = ev.Payload.WriteBfr(&bfr.Ctx{B: b, JSON: true})
	}
	if err != nil {
		return err
	}
	if ev.Cid != "" {
		_, err = fmt.Fprintf(b, `,"clientId":%q`, ev.Cid)
		if err != nil {
			return err
		}
	}
	if tail != "" {
		_, err = b.WriteString(tail)
		if err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func parsePayload(name string, raw json.RawMessage) (lit.Lit, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	l, err := lit.ParseString(string(raw))
	if err != nil {
		return nil, cor.Errorf("parse payload of %s: %w", name, err)
	}
	return l, nil
}

func copyBytes(b []byte) []byte {
	res := make([]byte, len(b))
	copy(res, b)
	return res
}
