package nexrad

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/couchcryptid/radar-loop/internal/domain"
)

// Level III product layout: an optional WMO/AWIPS text header, an 18-byte
// message header, a 102-byte product description block, then the symbology
// block, which is zlib-compressed for the 8-bit digital products. Reference:
// NOAA/NWS ICD 2620001 (RPG to Class 1 User).
const (
	messageHeaderLen = 18
	productDescLen   = 102

	packetDigitalRadial = 16
)

// floatScaleProducts carry linear scale/offset conversion parameters as two
// float32 values in threshold halfwords 31-34.
var floatScaleProducts = map[int16]bool{
	153: true, 154: true, 155: true, 159: true, 161: true, 163: true,
	167: true, 168: true, 170: true, 172: true, 173: true, 174: true,
	175: true, 176: true,
}

// legacyScaleProducts encode minimum value and increment, each scaled by ten,
// in threshold halfwords 31 and 32.
var legacyScaleProducts = map[int16]bool{
	94: true, 99: true, 182: true, 186: true,
}

// gateSizeMeters is the range gate spacing per product code. The digital
// radial packet does not carry physical gate size, so it comes from the
// product table. Products absent here fall back to 250 m, the super-res
// reflectivity spacing.
var gateSizeMeters = map[int16]float64{
	94:  1000,
	99:  250,
	153: 250,
	154: 250,
	159: 250,
	161: 250,
	163: 250,
	182: 150,
	186: 300,
}

const defaultGateSize = 250.0

var be = binary.BigEndian

// Decode parses a raw Level III product into a Scan. Only the digital radial
// data array packet is supported; products encoded with other packet types
// return a descriptive error.
func Decode(data []byte) (domain.Scan, error) {
	msgStart, err := findMessageStart(data)
	if err != nil {
		return domain.Scan{}, err
	}
	buf := data[msgStart:]
	if len(buf) < messageHeaderLen+productDescLen {
		return domain.Scan{}, fmt.Errorf("truncated product: %d bytes after header", len(buf))
	}

	pdb := buf[messageHeaderLen : messageHeaderLen+productDescLen]
	if int16(be.Uint16(pdb[0:2])) != -1 {
		return domain.Scan{}, fmt.Errorf("product description block divider missing")
	}

	scan := domain.Scan{
		Lat:         float64(int32(be.Uint32(pdb[2:6]))) / 1000,
		Lon:         float64(int32(be.Uint32(pdb[6:10]))) / 1000,
		HeightFt:    float64(int16(be.Uint16(pdb[10:12]))),
		ProductCode: int16(be.Uint16(pdb[12:14])),
		Time:        scanTime(int(be.Uint16(pdb[22:24])), int(be.Uint32(pdb[24:28]))),
	}

	sym, err := symbologyData(buf)
	if err != nil {
		return domain.Scan{}, err
	}

	field, err := decodeDigitalRadial(sym, scan.ProductCode, pdb)
	if err != nil {
		return domain.Scan{}, err
	}
	scan.Field = field

	return scan, nil
}

// findMessageStart locates the message header, skipping any WMO/AWIPS text
// header of whatever length. The header is recognized by the product
// description block divider (-1) 18 bytes in, followed by a plausible radar
// site latitude.
func findMessageStart(data []byte) (int, error) {
	limit := len(data) - messageHeaderLen - productDescLen
	if limit > 100 {
		limit = 100
	}
	for off := 0; off <= limit; off++ {
		p := data[off+messageHeaderLen:]
		if int16(be.Uint16(p[0:2])) != -1 {
			continue
		}
		lat := int32(be.Uint32(p[2:6]))
		if lat >= -90000 && lat <= 90000 && lat != 0 {
			return off, nil
		}
	}
	return 0, fmt.Errorf("message header not found: not a Level III product")
}

// scanTime converts the modified-Julian date (days since 1 Jan 1970, where
// day 1 is the epoch day) plus seconds since midnight to a UTC instant.
func scanTime(days, secs int) time.Time {
	return time.Unix(int64(days-1)*86400+int64(secs), 0).UTC()
}

// symbologyData returns the decompressed symbology block bytes, starting at
// its divider. buf begins at the message header.
func symbologyData(buf []byte) ([]byte, error) {
	rest := buf[messageHeaderLen+productDescLen:]
	if len(rest) >= 2 && rest[0] == 0x78 {
		out, err := decompress(rest)
		if err != nil {
			return nil, fmt.Errorf("decompress symbology block: %w", err)
		}
		rest = out
	}

	// Self-synchronize on the block divider (-1) followed by block ID 1.
	// NOAAPORT-delivered payloads prepend CCB/WMO headers of varying length.
	marker := []byte{0xFF, 0xFF, 0x00, 0x01}
	i := bytes.Index(rest, marker)
	if i < 0 {
		return nil, fmt.Errorf("symbology block not found")
	}
	return rest[i:], nil
}

// decompress inflates one or more concatenated zlib streams.
func decompress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	br := bytes.NewReader(data)
	for br.Len() > 2 {
		next, err := br.ReadByte()
		if err != nil || next != 0x78 {
			break
		}
		if err := br.UnreadByte(); err != nil {
			return nil, err
		}
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, err
		}
		if _, err := out.ReadFrom(zr); err != nil {
			zr.Close()
			return nil, err
		}
		zr.Close()
	}
	// Trailing uncompressed bytes (if any) belong to the block too.
	io.Copy(&out, br) //nolint:errcheck // bytes.Reader cannot fail
	return out.Bytes(), nil
}

// decodeDigitalRadial parses a digital radial data array packet (code 16)
// out of the symbology block and converts raw levels to dBZ.
func decodeDigitalRadial(sym []byte, productCode int16, pdb []byte) (domain.ReflectivityField, error) {
	var f domain.ReflectivityField

	// Block header: divider, block ID, block length, number of layers,
	// layer divider, layer length.
	const blockHeaderLen = 16
	if len(sym) < blockHeaderLen+2 {
		return f, fmt.Errorf("symbology block truncated: %d bytes", len(sym))
	}
	p := sym[blockHeaderLen:]

	code := be.Uint16(p[0:2])
	if code != packetDigitalRadial {
		return f, fmt.Errorf("unsupported packet code %d: only the digital radial data array is decoded", code)
	}
	if len(p) < 14 {
		return f, fmt.Errorf("radial packet header truncated")
	}

	firstBin := int(be.Uint16(p[2:4]))
	nBins := int(be.Uint16(p[4:6]))
	nRadials := int(be.Uint16(p[12:14]))
	if nBins <= 0 || nRadials <= 0 || nRadials > 800 {
		return f, fmt.Errorf("implausible radial packet: %d radials x %d bins", nRadials, nBins)
	}

	toDBZ, err := levelConverter(productCode, pdb)
	if err != nil {
		return f, err
	}

	f.FirstGateIndex = firstBin
	f.GateSize = gateSizeMeters[productCode]
	if f.GateSize == 0 {
		f.GateSize = defaultGateSize
	}
	f.Radials = make([]domain.Radial, 0, nRadials)

	pos := 14
	for r := 0; r < nRadials; r++ {
		if len(p) < pos+6 {
			return f, fmt.Errorf("radial %d truncated", r)
		}
		nBytes := int(be.Uint16(p[pos : pos+2]))
		start := float64(int16(be.Uint16(p[pos+2:pos+4]))) / 10
		delta := float64(int16(be.Uint16(p[pos+4:pos+6]))) / 10
		pos += 6

		if nBytes < nBins || len(p) < pos+nBytes {
			return f, fmt.Errorf("radial %d data truncated: %d bytes for %d bins", r, nBytes, nBins)
		}

		rad := domain.Radial{
			StartAngle: start,
			DeltaAngle: delta,
			Gates:      make([]float32, nBins),
			Valid:      make([]bool, nBins),
		}
		for g := 0; g < nBins; g++ {
			raw := p[pos+g]
			if raw < 2 { // 0 below threshold, 1 range folded
				continue
			}
			rad.Gates[g] = float32(toDBZ(raw))
			rad.Valid[g] = true
		}
		f.Radials = append(f.Radials, rad)
		pos += nBytes
	}

	return f, nil
}

// levelConverter returns the raw-level→dBZ conversion for the product, using
// the threshold parameters from the product description block (bytes 42+).
func levelConverter(productCode int16, pdb []byte) (func(byte) float64, error) {
	switch {
	case floatScaleProducts[productCode]:
		scale := float64(math.Float32frombits(be.Uint32(pdb[42:46])))
		offset := float64(math.Float32frombits(be.Uint32(pdb[46:50])))
		if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
			return nil, fmt.Errorf("product %d: invalid scale parameter", productCode)
		}
		return func(raw byte) float64 {
			return (float64(raw) - offset) / scale
		}, nil

	case legacyScaleProducts[productCode]:
		minimum := float64(int16(be.Uint16(pdb[42:44]))) / 10
		increment := float64(int16(be.Uint16(pdb[44:46]))) / 10
		if increment == 0 {
			return nil, fmt.Errorf("product %d: zero data increment", productCode)
		}
		return func(raw byte) float64 {
			return minimum + float64(raw-2)*increment
		}, nil

	default:
		return nil, fmt.Errorf("unsupported product code %d", productCode)
	}
}
