// ABOUTME: FITS header reader for GraceDB sky maps
// ABOUTME: Scans header cards in every HDU for distance and detector keywords
package catalog

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	fitsBlock = 2880
	fitsCard  = 80
)

// SkyMapFile is the GraceDB file name of the localization sky map
const SkyMapFile = "bayestar.multiorder.fits"

// SkyMap holds the header values read from a sky map
type SkyMap struct {
	DistMean  float64
	DistStd   float64
	Detectors []string
}

// ReadSkyMap reads the headers of every HDU in r. Data units are skipped.
func ReadSkyMap(r io.Reader) (SkyMap, error) {
	var sm SkyMap
	block := make([]byte, fitsBlock)

	for hdu := 0; ; hdu++ {
		h, err := readFITSHeader(r, block)
		if errors.Is(err, io.EOF) && hdu > 0 {
			return sm, nil
		}
		if err != nil {
			return sm, fmt.Errorf("hdu %d: %w", hdu, err)
		}

		if v, ok := h.float("DISTMEAN"); ok {
			sm.DistMean = v
		}
		if v, ok := h.float("DISTSTD"); ok {
			sm.DistStd = v
		}
		if v := h["INSTRUME"]; v != "" {
			sm.Detectors = strings.Split(v, ",")
		}

		if _, err := io.CopyN(io.Discard, r, h.dataSize()); err != nil {
			// a truncated data unit still leaves the headers read so far
			return sm, nil
		}
	}
}

// fitsHeader maps keywords to their raw values
type fitsHeader map[string]string

func readFITSHeader(r io.Reader, block []byte) (fitsHeader, error) {
	h := make(fitsHeader)
	for first := true; ; first = false {
		if _, err := io.ReadFull(r, block); err != nil {
			if !first && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if first {
			kw := strings.TrimSpace(string(block[:8]))
			if kw != "SIMPLE" && kw != "XTENSION" {
				return nil, fmt.Errorf("not a FITS header (starts with %q)", kw)
			}
		}

		for off := 0; off < fitsBlock; off += fitsCard {
			card := string(block[off : off+fitsCard])
			key := strings.TrimSpace(card[:8])
			if key == "END" {
				return h, nil
			}
			if card[8:10] == "= " {
				h[key] = cardValue(card[10:])
			}
		}
	}
}

// cardValue extracts a value, unquoting strings and dropping comments
func cardValue(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "'") {
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = s[:i]
		}
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			break
		}
		b.WriteByte(s[i])
	}
	return strings.TrimRight(b.String(), " ")
}

func (h fitsHeader) int(key string) int64 {
	v, _ := strconv.ParseInt(h[key], 10, 64)
	return v
}

func (h fitsHeader) float(key string) (float64, bool) {
	raw, ok := h[key]
	if !ok {
		return 0, false
	}
	// Fortran double exponents
	v, err := strconv.ParseFloat(strings.Replace(raw, "D", "E", 1), 64)
	return v, err == nil
}

// dataSize returns the block-padded length of the data unit after h
func (h fitsHeader) dataSize() int64 {
	naxis := h.int("NAXIS")
	if naxis == 0 {
		return 0
	}
	n := int64(1)
	for i := int64(1); i <= naxis; i++ {
		n *= h.int(fmt.Sprintf("NAXIS%d", i))
	}
	gcount := int64(1)
	if _, ok := h["GCOUNT"]; ok {
		gcount = h.int("GCOUNT")
	}
	bitpix := h.int("BITPIX")
	if bitpix < 0 {
		bitpix = -bitpix
	}
	size := bitpix / 8 * gcount * (h.int("PCOUNT") + n)
	return (size + fitsBlock - 1) / fitsBlock * fitsBlock
}
