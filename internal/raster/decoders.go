package raster

// Register a broad set of image decoders so image.Decode can handle the
// formats a profile picture or project screenshot may come in.
import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)
