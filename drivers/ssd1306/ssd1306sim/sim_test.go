package ssd1306sim

import (
	"errors"
	"testing"
)

func TestAddressAckAndFail(t *testing.T) {
	p := New(0x3C, 128, 32)
	if err := p.Tx(0x3C, nil, nil); err != nil {
		t.Fatalf("empty write: %v", err)
	}
	if err := p.Tx(0x3D, nil, nil); err != ErrNACK {
		t.Fatalf("foreign address: %v", err)
	}
	boom := errors.New("boom")
	p.Fail(boom)
	if err := p.Tx(0x3C, []byte{0x00, 0xAF}, nil); err != boom {
		t.Fatalf("fail: %v", err)
	}
	if p.On() {
		t.Fatal("failed transaction took effect")
	}
	p.Fail(nil)
	if err := p.Tx(0x3C, []byte{0x7F}, nil); err != ErrControl {
		t.Fatalf("control: %v", err)
	}
}

func TestArgumentsSpanTransactions(t *testing.T) {
	p := New(0x3C, 128, 32)
	p.Tx(0x3C, []byte{0x00, 0x20}, nil)
	p.Tx(0x3C, []byte{0x00, 0x00, 0x21, 4}, nil)
	p.Tx(0x3C, []byte{0x00, 5, 0x22, 1, 1, 0xAF}, nil)
	p.Tx(0x3C, []byte{0x40, 0xFF, 0x01, 0x80}, nil)
	// third byte wrapped back to column 4 and overwrote the first
	if !p.Lit(4, 15) || p.Lit(4, 8) {
		t.Fatal("wrap overwrite")
	}
	if !p.Lit(5, 8) || p.Lit(5, 9) {
		t.Fatal("second column")
	}
	if s := p.Stats(); s.Frames != 1 {
		t.Fatalf("frames %d", s.Frames)
	}
}

func TestInvertAndAllOn(t *testing.T) {
	p := New(0x3C, 128, 32)
	p.Tx(0x3C, []byte{0x00, 0xAF, 0xA7}, nil)
	if !p.Lit(0, 0) {
		t.Fatal("inverted blank pixel should be lit")
	}
	p.Tx(0x3C, []byte{0x00, 0xA6, 0xA5}, nil)
	if !p.Lit(50, 20) {
		t.Fatal("entire display on")
	}
	p.Tx(0x3C, []byte{0x00, 0xA4, 0xA8, 15}, nil)
	if p.Lit(0, 20) {
		t.Fatal("row beyond multiplex ratio shown")
	}
}
