package report

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/xeptore/tunedl/download"
	"github.com/xeptore/tunedl/tag"
)

type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault

	return t
}

func (p *Printer) paint(c text.Color, s string) string {
	if !p.color {
		return s
	}

	return c.Sprint(s)
}

func (p *Printer) state(o download.Outcome) string {
	switch o := o.(type) {
	case download.Tagged:
		if nil != o.Anomaly {
			return p.paint(text.FgYellow, o.State().String())
		}
		return p.paint(text.FgGreen, o.State().String())
	case download.TagFailed:
		return p.paint(text.FgYellow, o.State().String())
	case download.FetchFailed:
		return p.paint(text.FgRed, o.State().String())
	default:
		panic("unexpected track outcome")
	}
}

func detail(r download.TrackReport) string {
	var msgs []string
	switch o := r.Outcome.(type) {
	case download.Tagged:
		if nil != o.Anomaly {
			msgs = append(msgs, o.Anomaly.Error())
		}
	case download.TagFailed:
		msgs = append(msgs, o.Err.Error())
	case download.FetchFailed:
		msgs = append(msgs, o.Err.Error())
	}

	if nil != r.ArtErr {
		msgs = append(msgs, r.ArtErr.Error())
	}

	return text.WrapSoft(lo.Ternary(len(msgs) > 0, msgs[0], ""), 60)
}

// Summary renders one row per track followed by the aggregate counts.
func (p *Printer) Summary(s *download.Summary) {
	t := p.newTable()
	t.AppendHeader(table.Row{"#", "Chunk", "Title", "Artists", "State", "Detail"})
	for _, r := range s.Reports {
		t.AppendRow(table.Row{
			r.Index + 1,
			r.Chunk + 1,
			r.Track.Title,
			r.Track.JoinedArtists(),
			p.state(r.Outcome),
			detail(r),
		})
	}
	t.AppendFooter(table.Row{
		"",
		strconv.Itoa(len(s.Chunks)),
		"tagged " + strconv.Itoa(s.Tagged),
		"tag failed " + strconv.Itoa(s.TagFailed),
		"fetch failed " + strconv.Itoa(s.FetchFailed),
		"canceled " + strconv.Itoa(s.Canceled) + ", anomalies " + strconv.Itoa(s.Anomalies),
	})
	t.Render()
}

type Verification struct {
	Path    string
	Summary *tag.Summary
	Err     error
}

func (p *Printer) Verification(rows []Verification) {
	t := p.newTable()
	t.AppendHeader(table.Row{"File", "Title", "Artist", "Album", "Disc", "Track", "Picture"})
	for _, r := range rows {
		if nil != r.Err {
			t.AppendRow(table.Row{r.Path, p.paint(text.FgRed, r.Err.Error()), "", "", "", "", ""})
			continue
		}

		s := r.Summary
		t.AppendRow(table.Row{
			r.Path,
			s.Title,
			s.Artist,
			s.Album,
			s.Disc,
			s.Track,
			lo.Ternary(s.HasPicture, "yes", "no"),
		})
	}
	t.Render()
}
