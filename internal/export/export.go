package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/kinoplan/internal/storage"
)

// TraceToSVG renders the x-y trajectory of a trace as a polyline with
// start and end markers. Coordinates are fit to the image with a small
// margin; the y axis is flipped so world-up is image-up.
func TraceToSVG(trace *storage.Trace, width, height int) string {
	if len(trace.Poses) < 2 {
		return ""
	}

	minX, maxX := trace.Poses[0][0], trace.Poses[0][0]
	minY, maxY := trace.Poses[0][1], trace.Poses[0][1]
	for _, p := range trace.Poses {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	margin := 20.0
	sx := (float64(width) - 2*margin) / spanX
	sy := (float64(height) - 2*margin) / spanY
	toImg := func(x, y float64) (float64, float64) {
		return margin + (x-minX)*sx, float64(height) - margin - (y-minY)*sy
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<polyline fill="none" stroke="#00ff00" stroke-width="1.5" points="`,
		width, height, width, height))

	for i, p := range trace.Poses {
		if i > 0 {
			sb.WriteByte(' ')
		}
		ix, iy := toImg(p[0], p[1])
		sb.WriteString(fmt.Sprintf("%.1f,%.1f", ix, iy))
	}
	sb.WriteString("\"/>\n")

	fx, fy := toImg(trace.Poses[0][0], trace.Poses[0][1])
	lx, ly := toImg(trace.Poses[len(trace.Poses)-1][0], trace.Poses[len(trace.Poses)-1][1])
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#00aaff"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="#ff5555"/>
</svg>`, fx, fy, lx, ly))

	return sb.String()
}

// Data is the JSON export form of a run: its metadata with the full
// trace inlined.
type Data struct {
	Meta     storage.RunMetadata `json:"meta"`
	Times    []float64           `json:"times"`
	Poses    [][]float64         `json:"poses"`
	Gears    []int               `json:"gears"`
	Controls [][]float64         `json:"controls"`
}

func JSON(path string, meta *storage.RunMetadata, trace *storage.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(Data{
		Meta:     *meta,
		Times:    trace.Times,
		Poses:    trace.Poses,
		Gears:    trace.Gears,
		Controls: trace.Controls,
	})
}

func SVG(path string, trace *storage.Trace, width, height int) error {
	svg := TraceToSVG(trace, width, height)
	if svg == "" {
		return fmt.Errorf("trace too short to render")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
