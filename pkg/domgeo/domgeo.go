// Package domgeo maps DOM mainboard ids to their deployed location. The
// table is read from the detector's XML geometry file once per process and
// is read-only afterwards.
package domgeo

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/payload"
)

// DeployedDOM is the location of one DOM.
type DeployedDOM struct {
	DOM       payload.DOMID
	StringNum int
	Position  int
	Name      string
	ProdID    string
}

// ChannelID returns the detector channel, or -1 when the DOM is not at a
// regular string position.
func (d DeployedDOM) ChannelID() int16 {
	if d.StringNum < 1 || d.StringNum > 86 || d.Position < 1 || d.Position > 64 {
		return -1
	}
	return int16(d.StringNum*64 + d.Position - 1)
}

// IsIceTop reports whether the DOM sits in an IceTop tank.
func (d DeployedDOM) IsIceTop() bool {
	return d.Position > 60 && d.Position <= 64
}

// Lookup resolves DOM ids to locations. Geometry implements it.
type Lookup interface {
	Lookup(dom payload.DOMID) (DeployedDOM, bool)
}

// Geometry is a loaded DOM geometry table.
type Geometry struct {
	doms map[payload.DOMID]DeployedDOM
}

type xmlGeometry struct {
	XMLName xml.Name    `xml:"domGeometry"`
	Strings []xmlString `xml:"string"`
}

type xmlString struct {
	Number int      `xml:"number"`
	DOMs   []xmlDOM `xml:"dom"`
}

type xmlDOM struct {
	Position    int    `xml:"position"`
	MainBoardID string `xml:"mainBoardId"`
	Name        string `xml:"name"`
	ProdID      string `xml:"productionId"`
}

// Parse reads a geometry document.
func Parse(r io.Reader) (*Geometry, error) {
	var doc xmlGeometry
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse DOM geometry")
	}

	g := &Geometry{doms: make(map[payload.DOMID]DeployedDOM)}
	for _, s := range doc.Strings {
		for _, d := range s.DOMs {
			id, err := payload.ParseDOMID(strings.TrimSpace(d.MainBoardID))
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeConfig, "bad mainboard id").
					WithDetail("string", s.Number).
					WithDetail("position", d.Position)
			}
			if prev, ok := g.doms[id]; ok {
				return nil, errors.Newf(errors.ErrorTypeConfig,
					"DOM %s listed twice (%d-%d and %d-%d)",
					id, prev.StringNum, prev.Position, s.Number, d.Position)
			}
			g.doms[id] = DeployedDOM{
				DOM:       id,
				StringNum: s.Number,
				Position:  d.Position,
				Name:      d.Name,
				ProdID:    d.ProdID,
			}
		}
	}
	return g, nil
}

// LoadFile reads a geometry file.
func LoadFile(path string) (*Geometry, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to open DOM geometry")
	}
	defer f.Close()
	return Parse(f)
}

var (
	loadOnce  sync.Once
	loaded    *Geometry
	loadedErr error
)

// Load reads the geometry file on first use and returns the same table on
// every later call, whatever path is passed.
func Load(path string) (*Geometry, error) {
	loadOnce.Do(func() {
		loaded, loadedErr = LoadFile(path)
	})
	return loaded, loadedErr
}

// Lookup implements Lookup.
func (g *Geometry) Lookup(dom payload.DOMID) (DeployedDOM, bool) {
	d, ok := g.doms[dom]
	return d, ok
}

// Len returns the number of DOMs in the table.
func (g *Geometry) Len() int {
	return len(g.doms)
}

func (d DeployedDOM) String() string {
	return fmt.Sprintf("%s[%d-%d]", d.DOM, d.StringNum, d.Position)
}
