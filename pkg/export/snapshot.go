// Package export renders static snapshots of the dependency schedule. SVG and
// PNG share one geometry pass so the two formats stay visually equivalent.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/dvermeulen86/pertview/pkg/model"
	"github.com/dvermeulen86/pertview/pkg/schedule"
)

// SnapshotOptions controls schedule snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // Optional title rendered in the summary block
	Graph  *schedule.Graph
	Issues []model.Issue // Used for node titles and status colors
}

// SaveSnapshot renders a static schedule snapshot (SVG or PNG). Node columns
// follow the computed layout coordinates; critical nodes and edges are
// highlighted.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Graph == nil || len(opts.Graph.Nodes) == 0 {
		return fmt.Errorf("no schedule to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	layout := buildCanvasLayout(opts)

	switch format {
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		return renderSVG(opts.Path, layout)
	}
}

// --- geometry --------------------------------------------------------------

type canvasNode struct {
	ID       string
	Title    string
	Status   model.Status
	Critical bool
	Slack    float64
	Earliest float64
	Finish   float64
	X, Y     float64
	W, H     float64
}

type canvasEdge struct {
	From, To string
	Critical bool
}

type canvasLayout struct {
	Nodes   []canvasNode
	Edges   []canvasEdge
	Width   int
	Height  int
	Header  float64
	Summary summaryInfo
}

type summaryInfo struct {
	Title        string
	NodeCount    int
	EdgeCount    int
	FinishHours  float64
	CriticalPath []string
	HasCycle     bool
}

func buildCanvasLayout(opts SnapshotOptions) canvasLayout {
	const (
		nodeW        = 180.0
		nodeH        = 72.0
		colGap       = 90.0
		rowGap       = 26.0
		padding      = 36.0
		headerHeight = 110.0
	)

	g := opts.Graph
	titles := make(map[string]model.Issue, len(opts.Issues))
	for _, iss := range opts.Issues {
		titles[iss.ID] = iss
	}

	// On a cycle the layout never ran and every node sits at (0,0); fall
	// back to an id-ordered grid so the boxes stay readable under the banner.
	const cyclicGridCols = 4
	cyclic := g.Cycles.HasCycle

	var nodes []canvasNode
	maxCol, maxRow := 0, 0
	for i, id := range g.SortedIDs() {
		n := g.Nodes[id]
		col, row := n.X, n.Y
		if cyclic {
			col = i % cyclicGridCols
			row = (i / cyclicGridCols) * 2
		}
		if col > maxCol {
			maxCol = col
		}
		if row > maxRow {
			maxRow = row
		}
		iss := titles[id]
		nodes = append(nodes, canvasNode{
			ID:       id,
			Title:    iss.Title,
			Status:   iss.Status,
			Critical: n.IsCritical,
			Slack:    n.Slack,
			Earliest: n.EarliestStart,
			Finish:   n.EarliestFinish,
			X:        padding + float64(col)*(nodeW+colGap),
			Y:        headerHeight + padding + float64(row)*(nodeH+rowGap)/2,
			W:        nodeW,
			H:        nodeH,
		})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	var edges []canvasEdge
	for _, e := range g.Edges {
		edges = append(edges, canvasEdge{
			From:     e.From,
			To:       e.To,
			Critical: g.EdgeIsCritical(e),
		})
	}

	width := int(padding*2 + float64(maxCol+1)*nodeW + float64(maxCol)*colGap)
	height := int(headerHeight + padding*2 + float64(maxRow+1)*(nodeH+rowGap)/2)
	if width < 720 {
		width = 720
	}
	if height < 360 {
		height = 360
	}

	title := opts.Title
	if title == "" {
		title = "Dependency schedule"
	}

	return canvasLayout{
		Nodes:  nodes,
		Edges:  edges,
		Width:  width,
		Height: height,
		Header: headerHeight,
		Summary: summaryInfo{
			Title:        title,
			NodeCount:    len(g.Nodes),
			EdgeCount:    len(g.Edges),
			FinishHours:  g.ProjectFinishHours,
			CriticalPath: g.CriticalPath(),
			HasCycle:     g.Cycles.HasCycle,
		},
	}
}

// --- palette ---------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0x1e, 0x1e, 0x2e, 0xff}
	colorHeaderBG = color.RGBA{0x2a, 0x2a, 0x3c, 0xff}
	colorOpen     = color.RGBA{0x3b, 0x4a, 0x6b, 0xff}
	colorInProg   = color.RGBA{0x2d, 0x5a, 0x45, 0xff}
	colorClosed   = color.RGBA{0x3a, 0x3a, 0x4a, 0xff}
	colorCritical = color.RGBA{0xd9, 0x53, 0x4f, 0xff}
	colorStroke   = color.RGBA{0x58, 0x58, 0x70, 0xff}
	colorEdge     = color.RGBA{0x6c, 0x6c, 0x8a, 0xff}
	colorText     = color.RGBA{0xe8, 0xe8, 0xf0, 0xff}
	colorSubtle   = color.RGBA{0xa0, 0xa0, 0xb8, 0xff}
)

func statusColor(s model.Status) color.RGBA {
	switch s {
	case model.StatusInProgress:
		return colorInProg
	case model.StatusClosed:
		return colorClosed
	default:
		return colorOpen
	}
}

func nodeStroke(n canvasNode) color.RGBA {
	if n.Critical {
		return colorCritical
	}
	return colorStroke
}

func edgeColor(e canvasEdge) color.RGBA {
	if e.Critical {
		return colorCritical
	}
	return colorEdge
}

// --- PNG -------------------------------------------------------------------

func renderPNG(path string, layout canvasLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	drawSummaryPNG(dc, layout)

	pos := make(map[string]canvasNode, len(layout.Nodes))
	for _, n := range layout.Nodes {
		pos[n.ID] = n
	}

	for _, e := range layout.Edges {
		from, okF := pos[e.From]
		to, okT := pos[e.To]
		if !okF || !okT {
			continue
		}
		dc.SetColor(edgeColor(e))
		width := 1.5
		if e.Critical {
			width = 3
		}
		dc.SetLineWidth(width)
		x1 := from.X + from.W
		y1 := from.Y + from.H/2
		x2 := to.X
		y2 := to.Y + to.H/2
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()

		dc.NewSubPath()
		dc.MoveTo(x2, y2)
		dc.LineTo(x2-8, y2+4)
		dc.LineTo(x2-8, y2-4)
		dc.ClosePath()
		dc.Fill()
	}

	for _, n := range layout.Nodes {
		dc.SetColor(statusColor(n.Status))
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Fill()
		dc.SetColor(nodeStroke(n))
		dc.SetLineWidth(1.5)
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(n.ID, n.X+10, n.Y+16, 0, 0.5)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(truncate(n.Title, 24), n.X+10, n.Y+34, 0, 0.5)
		dc.DrawStringAnchored(
			fmt.Sprintf("ES %.1f  EF %.1f  slack %.1f", n.Earliest, n.Finish, n.Slack),
			n.X+10, n.Y+54, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func drawSummaryPNG(dc *gg.Context, layout canvasLayout) {
	s := layout.Summary
	dc.SetColor(colorText)
	dc.DrawStringAnchored(s.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(
		fmt.Sprintf("issues: %d  dependencies: %d  finish: %.1fh", s.NodeCount, s.EdgeCount, s.FinishHours),
		32, 60, 0, 0.5)
	if s.HasCycle {
		dc.SetColor(colorCritical)
		dc.DrawStringAnchored("dependency cycle detected; schedule metrics suppressed", 32, 80, 0, 0.5)
	} else {
		dc.DrawStringAnchored(
			fmt.Sprintf("critical path: %s", strings.Join(s.CriticalPath, " > ")),
			32, 80, 0, 0.5)
	}
}

// --- SVG -------------------------------------------------------------------

func renderSVG(path string, layout canvasLayout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout canvasLayout) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, "fill:"+css(colorBackdrop))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, "fill:"+css(colorHeaderBG))

	s := layout.Summary
	canvas.Text(32, 40, s.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 60,
		fmt.Sprintf("issues: %d  dependencies: %d  finish: %.1fh", s.NodeCount, s.EdgeCount, s.FinishHours),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	if s.HasCycle {
		canvas.Text(32, 80, "dependency cycle detected; schedule metrics suppressed",
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorCritical)))
	} else {
		canvas.Text(32, 80, fmt.Sprintf("critical path: %s", strings.Join(s.CriticalPath, " > ")),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	}

	pos := make(map[string]canvasNode, len(layout.Nodes))
	for _, n := range layout.Nodes {
		pos[n.ID] = n
	}

	for _, e := range layout.Edges {
		from, okF := pos[e.From]
		to, okT := pos[e.To]
		if !okF || !okT {
			continue
		}
		x1 := int(from.X + from.W)
		y1 := int(from.Y + from.H/2)
		x2 := int(to.X)
		y2 := int(to.Y + to.H/2)
		width := 1.5
		if e.Critical {
			width = 3
		}
		canvas.Line(x1, y1, x2, y2,
			fmt.Sprintf("stroke:%s;stroke-width:%.1f", css(edgeColor(e)), width))
		canvas.Polygon(
			[]int{x2, x2 - 8, x2 - 8},
			[]int{y2, y2 + 4, y2 - 4},
			"fill:"+css(edgeColor(e)))
	}

	for _, n := range layout.Nodes {
		x, y := int(n.X), int(n.Y)
		canvas.Roundrect(x, y, int(n.W), int(n.H), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.5", css(statusColor(n.Status)), css(nodeStroke(n))))
		canvas.Text(x+10, y+20, n.ID,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(x+10, y+38, truncate(n.Title, 24),
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
		canvas.Text(x+10, y+58,
			fmt.Sprintf("ES %.1f  EF %.1f  slack %.1f", n.Earliest, n.Finish, n.Slack),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
