package conv

// Utoa writes n in base 10 at the end of buf and returns the written tail.
// A buf shorter than the number keeps the low digits.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	for i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return buf[i:]
}

// Itoa is Utoa with a leading '-' for negative n. 20 bytes fit any int64.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	s := Utoa(buf, uint64(-n))
	i := len(buf) - len(s)
	if i == 0 {
		return s
	}
	buf[i-1] = '-'
	return buf[i-1:]
}

// Dec returns n as a decimal string. It allocates once, for the result.
func Dec(n int64) string {
	var buf [20]byte
	return string(Itoa(buf[:], n))
}
