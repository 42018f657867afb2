package halerr

import "testing"

func TestErrorsAreStableStrings(t *testing.T) {
	cases := map[string]error{
		"no_i2c_plan":      ErrNoI2CPlan,
		"invalid_rate":     ErrInvalidRate,
		"invalid_geometry": ErrInvalidGeom,
		"invalid_dwell":    ErrInvalidDwell,
		"missing_addr":     ErrMissingAddr,
		"pin_conflict":     ErrPinConflict,
		"unknown_gate":     ErrUnknownGate,
		"unsupported":      ErrUnsupported,
	}
	for want, e := range cases {
		if e == nil || e.Error() != want {
			t.Fatalf("error %q mismatch: got %#v", want, e)
		}
	}
}
