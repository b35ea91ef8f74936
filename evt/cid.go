package evt

import "math/rand"

const (
	cidLen   = 5
	cidChars = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewCid returns a short random id correlating a client submission with the
// server acknowledgement. Ids only need to be unique within one client's live
// pending set; callers that care must check for collisions and retry.
func NewCid() string {
	b := make([]byte, cidLen)
	for i := range b {
		b[i] = cidChars[rand.Intn(len(cidChars))]
	}
	return string(b)
}
