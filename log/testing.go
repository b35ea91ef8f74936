package log

type TB interface {
	Errorf(string, ...any)
	Fatalf(string, ...any)
	Logf(string, ...any)
	Helper()
}

// Testing is a logger that writes to a test context. Debug and warn messages are plain logs,
// errors fail the test and crits abort it.
type Testing struct {
	TB
	Default
}

func (l *Testing) Debug(m string, s ...any) {
	l.Helper()
	l.Logf(tfmt("DEB ", m, s, l.Tags))
}
func (l *Testing) Warn(m string, s ...any) {
	l.Helper()
	l.Logf(tfmt("WRN ", m, s, l.Tags))
}
func (l *Testing) Error(m string, s ...any) {
	l.Helper()
	l.Errorf(tfmt("ERR ", m, s, l.Tags))
}
func (l *Testing) Crit(m string, s ...any) {
	l.Helper()
	l.Fatalf(tfmt("CRI ", m, s, l.Tags))
}
func (l *Testing) With(tags ...any) Logger {
	return &Testing{l.TB, *l.Default.with(tags...)}
}
