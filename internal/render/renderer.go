package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/reefbound/treasure-quest/internal/board"
)

const (
	tileSize   = 64
	tileGap    = 4
	margin     = 24
	renderSize = board.Size*tileSize + (board.Size-1)*tileGap + margin*2

	// The post preview is served small; rasterize at full size, then
	// downscale for crisp edges.
	previewSize = 512
)

// BoardRenderer produces the preview image attached to a game post.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, b *board.GameBoard) ([]byte, error)
}

type svgBoardRenderer struct{}

func NewSVGBoardRenderer() BoardRenderer { return &svgBoardRenderer{} }

// RenderPNG draws the board as it appears before any dive: land and sea with
// depth shading. Treasure placement is never disclosed in the preview.
func (r *svgBoardRenderer) RenderPNG(ctx context.Context, b *board.GameBoard) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("board is nil")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	svg := buildBoardSVG(b)
	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG([]byte(svg))))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}

	full := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))
	scanner := rasterx.NewScannerGV(renderSize, renderSize, full, full.Bounds())
	raster := rasterx.NewDasher(renderSize, renderSize, scanner)
	icon.Draw(raster, 1.0)

	preview := image.NewRGBA(image.Rect(0, 0, previewSize, previewSize))
	xdraw.ApproxBiLinear.Scale(preview, preview.Bounds(), full, full.Bounds(), xdraw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, preview); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return out.Bytes(), nil
}

func buildBoardSVG(b *board.GameBoard) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		renderSize, renderSize, renderSize, renderSize)
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="#131f23"/>`, renderSize, renderSize)

	for _, row := range b.Rows {
		for _, t := range row.Tiles {
			x := margin + t.Coordinates.Col*(tileSize+tileGap)
			y := margin + t.Coordinates.Row*(tileSize+tileGap)
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="%s"/>`,
				x, y, tileSize, tileSize, tileFill(t))
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// tileFill picks sand for land and a blue shade for sea, darker with depth.
func tileFill(t board.Tile) string {
	if t.Kind == board.Land {
		return "#d8c27a"
	}
	if t.Status == board.Explored {
		return "#6d7f8a"
	}
	// Depth 10..100 maps onto a shallow→deep blue ramp.
	frac := float64(t.Depth-board.MinDepth) / float64(board.MaxDepth-board.MinDepth)
	rC := 0x2e - int(frac*0x18)
	gC := 0x8a - int(frac*0x4a)
	bC := 0xc8 - int(frac*0x40)
	return fmt.Sprintf("#%02x%02x%02x", rC, gC, bC)
}
