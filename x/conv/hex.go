package conv

const hexd = "0123456789ABCDEF"

// U8Hex writes a "0x"-prefixed 2-digit uppercase hex byte (e.g. I²C addresses).
func U8Hex(buf []byte, b uint8) []byte {
	if len(buf) < 4 {
		return buf[:0]
	}
	i := len(buf) - 4
	buf[i] = '0'
	buf[i+1] = 'x'
	buf[i+2] = hexd[b>>4]
	buf[i+3] = hexd[b&0xF]
	return buf[i:]
}
