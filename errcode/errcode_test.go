package errcode

import (
	"errors"
	"testing"
)

func TestOfExtractsCode(t *testing.T) {
	cause := errors.New("nack")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", PinInUse, PinInUse},
		{"wrapped E", &E{C: DisplayInit, Op: "ssd1306.init", Err: cause}, DisplayInit},
		{"E behind plain wrap", errors.Join(errors.New("ctx"), &E{C: Flush}), Flush},
		{"unknown", cause, Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Fatalf("%s: Of = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestEErrorAndUnwrap(t *testing.T) {
	cause := errors.New("i2c nack")
	err := Wrap(DisplayInit, "ssd1306.init", cause)
	if got, want := err.Error(), "ssd1306.init: display_init: i2c nack"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should reach the cause")
	}
	if OpOf(err) != "ssd1306.init" {
		t.Fatalf("OpOf = %q", OpOf(err))
	}
	if Wrap(Flush, "x", nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
}
