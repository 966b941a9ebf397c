// Package assert holds constructor guards. A failed assertion is a programming error, so it panics.
package assert

import (
	"fmt"
	"time"
)

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

func PositiveDuration(name string, d time.Duration) {
	if d <= 0 {
		panic(fmt.Sprintf("expected %s to be a positive duration, got %s", name, d))
	}
}
