package scan

import qrcode "github.com/skip2/go-qrcode"

// CodePNG renders a student check-in code as a QR PNG suitable for
// printing on an ID card.
func CodePNG(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}
