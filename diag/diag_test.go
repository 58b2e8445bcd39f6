package diag

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestStdLoggerFormatsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(log.New(&buf, "", 0), false)
	l.With(String("region", "XX")).Warn("未知 region，使用默认值", String("fallback", "INTL"), Error("err", errors.New("boom")))
	got := buf.String()
	for _, want := range []string{"WARN", "region=XX", "fallback=INTL", "err=boom"} {
		if !strings.Contains(got, want) {
			t.Fatalf("日志缺少 %q: %s", want, got)
		}
	}
}

func TestStdLoggerDropsDebugUnlessEnabled(t *testing.T) {
	var buf bytes.Buffer
	NewStdLogger(log.New(&buf, "", 0), false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug 关闭时不应输出: %q", buf.String())
	}
	NewStdLogger(log.New(&buf, "", 0), true).Debug("shown", Int("n", 1))
	if !strings.Contains(buf.String(), "shown n=1") {
		t.Fatalf("debug 开启后应输出: %q", buf.String())
	}
}
