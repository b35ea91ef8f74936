// Package log provides a minimal key-value logger interface.
package log

import (
	"fmt"
	"log"
	"strings"
)

var Root Logger = &Default{}

// Logger is logger interface. The variadic arguments are key value pairs. The key must be a
// string and the value should have a meaningful string representations.
type Logger interface {
	Debug(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Crit(string, ...any)
	With(...any) Logger
}

type Default struct {
	Tags []any
}

func (l *Default) Debug(m string, s ...any) { log.Printf(tfmt("DEB ", m, s, l.Tags)) }
func (l *Default) Warn(m string, s ...any)  { log.Printf(tfmt("WRN ", m, s, l.Tags)) }
func (l *Default) Error(m string, s ...any) { log.Printf(tfmt("ERR ", m, s, l.Tags)) }
func (l *Default) Crit(m string, s ...any)  { log.Printf(tfmt("CRI ", m, s, l.Tags)) }
func (l *Default) With(tags ...any) Logger {
	return l.with(tags...)
}
func (l *Default) with(tags ...any) *Default {
	t := make([]any, 0, len(tags)+len(l.Tags))
	t = append(t, tags...)
	t = append(t, l.Tags...)
	return &Default{Tags: t}
}

func tfmt(lvl, msg string, all ...[]any) string {
	var b strings.Builder
	b.WriteString(lvl)
	b.WriteString(msg)
	for _, tags := range all {
		for i, v := range tags {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}
