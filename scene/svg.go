package scene

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tdewolff/parse/v2"
	pstrconv "github.com/tdewolff/parse/v2/strconv"
	"github.com/tdewolff/parse/v2/xml"
)

// curveSegments is the number of line segments a Bézier is flattened to.
const curveSegments = 12

// SubPath is one flattened contour of an SVG path. A closed sub-path does
// not repeat its first point.
type SubPath struct {
	Points []mgl32.Vec2
	Closed bool
}

type SVGPath struct {
	SubPaths []SubPath
	Style    StrokeStyle
}

type SVGData struct {
	Paths []*SVGPath
}

// LoadSVG reads an SVG document from a file path or from a
// "data:image/svg+xml" URI.
func LoadSVG(src string) (*SVGData, error) {
	if strings.HasPrefix(src, "data:") {
		raw, err := decodeDataURI(src)
		if err != nil {
			return nil, fmt.Errorf("svg data uri: %w", err)
		}
		return ParseSVG(bytes.NewReader(raw))
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open svg %q: %w", src, err)
	}
	defer f.Close()

	data, err := ParseSVG(f)
	if err != nil {
		return nil, fmt.Errorf("parse svg %q: %w", src, err)
	}
	return data, nil
}

func decodeDataURI(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, errors.New("missing ','")
	}
	meta, payload := src[len("data:"):comma], src[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// ParseSVG extracts every <path> element. Only the d, stroke-width and
// style attributes are read.
func ParseSVG(r io.Reader) (*SVGData, error) {
	lexer := xml.NewLexer(parse.NewInput(r))
	data := &SVGData{}

	var current map[string]string
	flush := func() error {
		if current == nil {
			return nil
		}
		p, err := buildSVGPath(current)
		current = nil
		if err != nil {
			return err
		}
		data.Paths = append(data.Paths, p)
		return nil
	}

	for {
		tt, _ := lexer.Next()
		switch tt {
		case xml.ErrorToken:
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			if err := flush(); err != nil {
				return nil, err
			}
			return data, nil
		case xml.StartTagToken:
			if err := flush(); err != nil {
				return nil, err
			}
			if string(lexer.Text()) == "path" {
				current = map[string]string{}
			}
		case xml.AttributeToken:
			if current != nil {
				current[string(lexer.Text())] = strings.Trim(string(lexer.AttrVal()), `"'`)
			}
		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
}

func buildSVGPath(attrs map[string]string) (*SVGPath, error) {
	style := DefaultStrokeStyle()
	if w, ok := attrs["stroke-width"]; ok {
		if v, ok := parseNumber(w); ok {
			style.Width = v
		}
	}
	for _, decl := range strings.Split(attrs["style"], ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "stroke-width":
			if f, ok := parseNumber(strings.TrimSpace(v)); ok {
				style.Width = f
			}
		case "stroke-miterlimit":
			if f, ok := parseNumber(strings.TrimSpace(v)); ok {
				style.MiterLimit = f
			}
		}
	}

	subs, err := ParsePathData(attrs["d"])
	if err != nil {
		return nil, fmt.Errorf("path d: %w", err)
	}
	return &SVGPath{SubPaths: subs, Style: style}, nil
}

func parseNumber(s string) (float32, bool) {
	v, n := pstrconv.ParseFloat([]byte(s))
	if n == 0 {
		return 0, false
	}
	return float32(v), true
}

// ParsePathData flattens SVG path data into sub-paths. Supported commands
// are M L H V Z C S Q T in both absolute and relative form.
func ParsePathData(d string) ([]SubPath, error) {
	s := &pathScanner{buf: []byte(d)}
	var (
		out      []SubPath
		cur      *SubPath
		pen      mgl32.Vec2
		start    mgl32.Vec2
		ctrl     mgl32.Vec2 // last control point, for S and T
		cmd      byte
		prevCmd  byte
		hasShape bool
	)

	finish := func() {
		if cur != nil && len(cur.Points) > 1 {
			out = append(out, *cur)
		}
		cur = nil
	}
	lineTo := func(p mgl32.Vec2) {
		if cur == nil {
			cur = &SubPath{Points: []mgl32.Vec2{pen}}
		}
		cur.Points = append(cur.Points, p)
		pen = p
	}

	for {
		s.skipSeparators()
		if s.done() {
			break
		}
		if c := s.peek(); isCommand(c) {
			cmd = c
			s.pos++
		} else if cmd == 0 {
			return nil, fmt.Errorf("expected command at offset %d", s.pos)
		}

		rel := cmd >= 'a' && cmd <= 'z'
		origin := mgl32.Vec2{}
		if rel {
			origin = pen
		}

		switch cmd {
		case 'M', 'm':
			p, err := s.point()
			if err != nil {
				return nil, err
			}
			finish()
			pen = origin.Add(p)
			start = pen
			cur = &SubPath{Points: []mgl32.Vec2{pen}}
			hasShape = true
			// further coordinate pairs are implicit line-tos
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			p, err := s.point()
			if err != nil {
				return nil, err
			}
			lineTo(origin.Add(p))
		case 'H', 'h':
			x, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += pen.X()
			}
			lineTo(mgl32.Vec2{x, pen.Y()})
		case 'V', 'v':
			y, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += pen.Y()
			}
			lineTo(mgl32.Vec2{pen.X(), y})
		case 'C', 'c', 'S', 's':
			var c1 mgl32.Vec2
			if cmd == 'C' || cmd == 'c' {
				p, err := s.point()
				if err != nil {
					return nil, err
				}
				c1 = origin.Add(p)
			} else {
				c1 = pen
				if strings.IndexByte("CcSs", prevCmd) >= 0 {
					c1 = pen.Mul(2).Sub(ctrl)
				}
			}
			p2, err := s.point()
			if err != nil {
				return nil, err
			}
			p3, err := s.point()
			if err != nil {
				return nil, err
			}
			c2, end := origin.Add(p2), origin.Add(p3)
			p0 := pen
			for i := 1; i <= curveSegments; i++ {
				lineTo(cubicBezier(p0, c1, c2, end, float32(i)/curveSegments))
			}
			ctrl = c2
		case 'Q', 'q', 'T', 't':
			var c1 mgl32.Vec2
			if cmd == 'Q' || cmd == 'q' {
				p, err := s.point()
				if err != nil {
					return nil, err
				}
				c1 = origin.Add(p)
			} else {
				c1 = pen
				if strings.IndexByte("QqTt", prevCmd) >= 0 {
					c1 = pen.Mul(2).Sub(ctrl)
				}
			}
			p2, err := s.point()
			if err != nil {
				return nil, err
			}
			end := origin.Add(p2)
			p0 := pen
			for i := 1; i <= curveSegments; i++ {
				lineTo(quadraticBezier(p0, c1, end, float32(i)/curveSegments))
			}
			ctrl = c1
		case 'Z', 'z':
			if cur != nil {
				if n := len(cur.Points); n > 1 && cur.Points[n-1].ApproxEqual(cur.Points[0]) {
					cur.Points = cur.Points[:n-1]
				}
				cur.Closed = true
				finish()
			}
			pen = start
			cmd = 0
		default:
			return nil, fmt.Errorf("unsupported path command %q", cmd)
		}
		prevCmd = cmd
	}
	finish()

	if !hasShape && len(d) > 0 && strings.TrimSpace(d) != "" {
		return nil, errors.New("path has no moveto")
	}
	return out, nil
}

func isCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvCcSsQqTtZzAa", c) >= 0
}

type pathScanner struct {
	buf []byte
	pos int
}

func (s *pathScanner) done() bool { return s.pos >= len(s.buf) }
func (s *pathScanner) peek() byte { return s.buf[s.pos] }

func (s *pathScanner) skipSeparators() {
	for s.pos < len(s.buf) {
		switch s.buf[s.pos] {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

func (s *pathScanner) number() (float32, error) {
	s.skipSeparators()
	if s.done() {
		return 0, errors.New("unexpected end of path data")
	}
	v, n := pstrconv.ParseFloat(s.buf[s.pos:])
	if n == 0 {
		return 0, fmt.Errorf("expected number at offset %d", s.pos)
	}
	s.pos += n
	return float32(v), nil
}

func (s *pathScanner) point() (mgl32.Vec2, error) {
	x, err := s.number()
	if err != nil {
		return mgl32.Vec2{}, err
	}
	y, err := s.number()
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{x, y}, nil
}

func cubicBezier(p0, p1, p2, p3 mgl32.Vec2, t float32) mgl32.Vec2 {
	u := 1 - t
	return p0.Mul(u * u * u).
		Add(p1.Mul(3 * u * u * t)).
		Add(p2.Mul(3 * u * t * t)).
		Add(p3.Mul(t * t * t))
}

func quadraticBezier(p0, p1, p2 mgl32.Vec2, t float32) mgl32.Vec2 {
	u := 1 - t
	return p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
}
