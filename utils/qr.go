package utils

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRPNG renders a token as a PNG suitable for printing or emailing.
func QRPNG(token string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(token, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return png, nil
}
