package raster

import (
	"encoding/binary"
	"fmt"
)

const tagOrientation = 0x0112

// jpegOrientation returns the EXIF orientation (1..8) stored in IFD0 of a
// JPEG's APP1 segment.
func jpegOrientation(data []byte) (int, error) {
	tiff, err := exifTIFFStart(data)
	if err != nil {
		return 0, err
	}
	if tiff+8 > len(data) {
		return 0, fmt.Errorf("tiff header truncated")
	}
	var order binary.ByteOrder
	switch string(data[tiff : tiff+2]) {
	case "MM":
		order = binary.BigEndian
	case "II":
		order = binary.LittleEndian
	default:
		return 0, fmt.Errorf("unknown tiff byte order")
	}
	if order.Uint16(data[tiff+2:tiff+4]) != 0x002A {
		return 0, fmt.Errorf("invalid tiff magic")
	}
	ifd := tiff + int(order.Uint32(data[tiff+4:tiff+8]))
	if ifd+2 > len(data) {
		return 0, fmt.Errorf("ifd0 truncated")
	}
	n := int(order.Uint16(data[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + e*12
		if ent+12 > len(data) {
			break
		}
		if order.Uint16(data[ent:ent+2]) != tagOrientation {
			continue
		}
		// SHORT values are left-justified in the 4-byte value field.
		o := int(order.Uint16(data[ent+8 : ent+10]))
		if o < 1 || o > 8 {
			return 0, fmt.Errorf("orientation %d out of range", o)
		}
		return o, nil
	}
	return 0, fmt.Errorf("orientation tag not found")
}

// exifTIFFStart walks the JPEG marker segments and returns the offset of the
// TIFF header inside the first Exif APP1 block.
func exifTIFFStart(data []byte) (int, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return -1, fmt.Errorf("not a jpeg stream")
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA {
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if marker == 0xE1 && i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10, nil
		}
		if segLen < 2 {
			i += 2
			continue
		}
		i += 2 + segLen
	}
	return -1, fmt.Errorf("no exif segment")
}
