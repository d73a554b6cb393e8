package scan

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// QRDecode returns a Decode backed by the zxing QR reader. A frame with
// no readable code yields (_, false); decoder construction is cheap
// enough to share one reader across frames.
func QRDecode() Decode {
	reader := zxqrcode.NewQRCodeReader()
	return func(img image.Image) (string, bool) {
		bmp, err := gozxing.NewBinaryBitmapFromImage(img)
		if err != nil {
			return "", false
		}
		result, err := reader.Decode(bmp, nil)
		if err != nil || result == nil {
			return "", false
		}
		return result.GetText(), true
	}
}
