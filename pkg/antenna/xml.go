package antenna

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadXML reads an antenna pattern file. The format is tolerant, matching
// the files the desktop tool ships: any element whose name contains
// "azimuth" or "elevation" opens a cut, and each child element carries the
// sample as angle/deg and gain/db attributes.
func LoadXML(path string) (*Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pattern file: %w", err)
	}
	defer f.Close()

	p, err := ParseXML(f)
	if err != nil {
		return nil, fmt.Errorf("parse pattern %s: %w", filepath.Base(path), err)
	}
	p.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return p, nil
}

// ParseXML decodes a pattern document from r.
func ParseXML(r io.Reader) (*Pattern, error) {
	dec := xml.NewDecoder(r)

	azimuth := map[float64]float64{}
	elevation := map[float64]float64{}
	section := ""
	depth := 0
	sectionDepth := -1

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if section == "" {
				if s := sectionFor(el.Name.Local); s != "" {
					section = s
					sectionDepth = depth
					continue
				}
			}
			if section != "" && depth > sectionDepth {
				angle, gain, ok := samplePoint(el.Attr)
				if !ok {
					continue
				}
				switch section {
				case "azimuth":
					azimuth[angle] = gain
				case "elevation":
					elevation[angle] = gain
				}
			}
		case xml.EndElement:
			if depth == sectionDepth {
				section = ""
				sectionDepth = -1
			}
			depth--
		}
	}

	if len(azimuth) == 0 && len(elevation) == 0 {
		return nil, fmt.Errorf("no azimuth or elevation samples found")
	}

	p := &Pattern{}
	if len(azimuth) > 0 {
		p.azimuth.set(azimuth)
		for _, g := range azimuth {
			if g > p.maxGain {
				p.maxGain = g
			}
		}
	}
	if len(elevation) > 0 {
		p.elevation.set(elevation)
	}
	return p, nil
}

// samplePoint pulls the angle and gain out of a sample element's attributes,
// accepting the attribute spellings seen in the wild (angle/deg, gain/db).
func samplePoint(attrs []xml.Attr) (angle, gain float64, ok bool) {
	haveAngle := false
	haveGain := false
	for _, a := range attrs {
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(a.Name.Local) {
		case "angle", "deg":
			angle, haveAngle = v, true
		case "gain", "db":
			gain, haveGain = v, true
		}
	}
	return angle, gain, haveAngle && haveGain
}
