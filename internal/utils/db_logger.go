package utils

import (
	"context"
	"runtime"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// QueryLogger sits in front of gorm's logger. Successful queries containing one of the
// quiet patterns are dropped; everything else is tagged with the store operation that ran it.
type QueryLogger struct {
	logger.Interface
	quiet []string
}

func NewQueryLogger(l logger.Interface, quiet ...string) *QueryLogger {
	return &QueryLogger{Interface: l, quiet: quiet}
}

func (q *QueryLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &QueryLogger{Interface: q.Interface.LogMode(level), quiet: q.quiet}
}

func (q *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	sql, rows := fc()
	if err == nil && q.isQuiet(sql) {
		return
	}
	if op := storeOperation(); op != "" {
		sql = "[" + op + "] " + sql
	}
	q.Interface.Trace(ctx, begin, func() (string, int64) { return sql, rows }, err)
}

func (q *QueryLogger) isQuiet(sql string) bool {
	for _, p := range q.quiet {
		if strings.Contains(sql, p) {
			return true
		}
	}
	return false
}

// storeOperation names the nearest store method on the stack, e.g. "GormStore.DueReminders"
func storeOperation() string {
	pcs := make([]uintptr, 32)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(3, pcs)])
	for {
		frame, more := frames.Next()
		if i := strings.Index(frame.Function, "/internal/store."); i != -1 {
			name := frame.Function[i+len("/internal/store."):]
			return strings.NewReplacer("(*", "", ")", "").Replace(name)
		}
		if !more {
			return ""
		}
	}
}
