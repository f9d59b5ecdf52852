package ogc

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/data-tales/data-sources/internal/domain"
)

const dwdWFS = `<?xml version="1.0" encoding="UTF-8"?>
<wfs:WFS_Capabilities version="2.0.0"
    xmlns:wfs="http://www.opengis.net/wfs/2.0"
    xmlns:ows="http://www.opengis.net/ows/1.1">
  <ows:ServiceIdentification><ows:Title>DWD</ows:Title></ows:ServiceIdentification>
  <wfs:FeatureTypeList>
    <wfs:FeatureType>
      <wfs:Name>stations</wfs:Name>
      <wfs:Title>Stations</wfs:Title>
      <wfs:DefaultCRS>urn:ogc:def:crs:EPSG::4326</wfs:DefaultCRS>
    </wfs:FeatureType>
    <wfs:FeatureType>
      <wfs:Name>obs</wfs:Name>
    </wfs:FeatureType>
  </wfs:FeatureTypeList>
</wfs:WFS_Capabilities>`

const nestedWMS = `<?xml version="1.0" encoding="UTF-8"?>
<WMS_Capabilities version="1.3.0" xmlns="http://www.opengis.net/wms">
  <Service><Name>WMS</Name><Title>Service title is not a layer</Title></Service>
  <Capability>
    <Layer>
      <Title>Root group</Title>
      <Layer>
        <Name>radar</Name>
        <Title> Radar composite </Title>
        <Style><Name>default</Name><Title>Default</Title></Style>
        <Style><Name>contrast</Name></Style>
        <Layer>
          <Name>radar_hourly</Name>
        </Layer>
      </Layer>
      <Layer>
        <Title>Nameless group</Title>
        <Layer><Name>warnings</Name><Title>Warnings</Title><Style><Name>default</Name></Style></Layer>
      </Layer>
      <Layer>
        <Name></Name>
        <Title>Empty name is a group</Title>
      </Layer>
    </Layer>
  </Capability>
</WMS_Capabilities>`

func TestParseWFSScenario(t *testing.T) {
	doc, err := Parse([]byte(dwdWFS), domain.KindWFS)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []domain.LayerRecord{
		{Identifier: "stations", Title: "Stations", Styles: []string{}, DefaultCRS: "urn:ogc:def:crs:EPSG::4326"},
		{Identifier: "obs", Title: "obs", Styles: []string{}},
	}
	assertRecords(t, doc.Items, want)
	if doc.Version != "2.0.0" {
		t.Errorf("Version = %q, want 2.0.0", doc.Version)
	}
}

func TestParseWMSNested(t *testing.T) {
	doc, err := Parse([]byte(nestedWMS), domain.KindWMS)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []domain.LayerRecord{
		{Identifier: "radar", Title: "Radar composite", Styles: []string{"default", "contrast"}},
		{Identifier: "radar_hourly", Title: "radar_hourly", Styles: []string{}},
		{Identifier: "warnings", Title: "Warnings", Styles: []string{"default"}},
	}
	assertRecords(t, doc.Items, want)
	if doc.Version != "1.3.0" {
		t.Errorf("Version = %q, want 1.3.0", doc.Version)
	}
}

func TestParseWMS111(t *testing.T) {
	doc := `<?xml version="1.0"?>
<!DOCTYPE WMT_MS_Capabilities SYSTEM "http://schemas.opengis.net/wms/1.1.1/WMS_MS_Capabilities.dtd">
<WMT_MS_Capabilities version="1.1.1">
  <Capability><Layer><Name>a</Name></Layer><Layer><Name>b</Name></Layer></Capability>
</WMT_MS_Capabilities>`

	got, err := Parse([]byte(doc), domain.KindWMS)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Identifier != "a" || got.Items[1].Identifier != "b" {
		t.Errorf("Items = %+v", got.Items)
	}
}

// N named layers anywhere in the tree yield exactly N records in order.
func TestParseWMSCountsNamedLayers(t *testing.T) {
	for _, n := range []int{0, 1, 7, 40} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			var b strings.Builder
			b.WriteString(`<WMS_Capabilities version="1.3.0"><Capability><Layer><Title>root</Title>`)
			for i := 0; i < n; i++ {
				if i%3 == 0 {
					b.WriteString(`<Layer><Title>group</Title>`)
				}
				fmt.Fprintf(&b, `<Layer><Name>l%d</Name></Layer>`, i)
				if i%3 == 0 {
					b.WriteString(`</Layer>`)
				}
			}
			b.WriteString(`</Layer></Capability></WMS_Capabilities>`)

			doc, err := Parse([]byte(b.String()), domain.KindWMS)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(doc.Items) != n {
				t.Fatalf("len(Items) = %d, want %d", len(doc.Items), n)
			}
			for i, it := range doc.Items {
				if it.Identifier != fmt.Sprintf("l%d", i) {
					t.Errorf("Items[%d] = %q, want l%d", i, it.Identifier, i)
				}
			}
		})
	}
}

func TestParseWFSVariants(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantIDs []string
		wantCRS []string
	}{
		{
			name: "wfs 1.1 DefaultSRS",
			doc: `<WFS_Capabilities version="1.1.0"><FeatureTypeList>
				<FeatureType><Name>ns:a</Name><DefaultSRS>EPSG:25832</DefaultSRS></FeatureType>
			</FeatureTypeList></WFS_Capabilities>`,
			wantIDs: []string{"ns:a"},
			wantCRS: []string{"EPSG:25832"},
		},
		{
			name: "wfs 1.0 SRS",
			doc: `<WFS_Capabilities version="1.0.0"><FeatureTypeList>
				<FeatureType><Name>b</Name><SRS>EPSG:4326</SRS></FeatureType>
				<FeatureType><Name>c</Name></FeatureType>
			</FeatureTypeList></WFS_Capabilities>`,
			wantIDs: []string{"b", "c"},
			wantCRS: []string{"EPSG:4326", ""},
		},
		{
			name:    "no feature type list",
			doc:     `<WFS_Capabilities version="2.0.0"><Extra><FeatureType><Name>x</Name></FeatureType></Extra></WFS_Capabilities>`,
			wantIDs: []string{"x"},
			wantCRS: []string{""},
		},
		{
			name:    "nameless feature type skipped",
			doc:     `<WFS_Capabilities><FeatureTypeList><FeatureType><Title>t</Title></FeatureType><FeatureType><Name>y</Name></FeatureType></FeatureTypeList></WFS_Capabilities>`,
			wantIDs: []string{"y"},
			wantCRS: []string{""},
		},
		{
			name:    "empty list",
			doc:     `<WFS_Capabilities><FeatureTypeList/></WFS_Capabilities>`,
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.doc), domain.KindWFS)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.Items == nil {
				t.Fatal("Items must never be nil")
			}
			if len(doc.Items) != len(tt.wantIDs) {
				t.Fatalf("len(Items) = %d, want %d", len(doc.Items), len(tt.wantIDs))
			}
			for i, it := range doc.Items {
				if it.Identifier != tt.wantIDs[i] || it.DefaultCRS != tt.wantCRS[i] {
					t.Errorf("Items[%d] = %+v", i, it)
				}
				if it.Styles == nil || len(it.Styles) != 0 {
					t.Errorf("Items[%d].Styles = %v, want []", i, it.Styles)
				}
			}
		})
	}
}

func TestParseLatin1(t *testing.T) {
	// "Gewässer" with ä encoded as the single ISO-8859-1 byte 0xE4.
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<WFS_Capabilities><FeatureTypeList><FeatureType><Name>gew</Name><Title>Gew\xe4sser</Title></FeatureType></FeatureTypeList></WFS_Capabilities>")

	got, err := Parse(doc, domain.KindWFS)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Items[0].Title != "Gewässer" {
		t.Errorf("Title = %q, want Gewässer", got.Items[0].Title)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		kind domain.Kind
		doc  string
	}{
		{"malformed", domain.KindWMS, `<WMS_Capabilities><Capability><Layer>`},
		{"not xml", domain.KindWFS, `{"json": true}`},
		{"empty", domain.KindWFS, ``},
		{"wfs root for wms", domain.KindWMS, dwdWFS},
		{"wms root for wfs", domain.KindWFS, nestedWMS},
		{"exception report", domain.KindWMS, `<ServiceExceptionReport><ServiceException>boom</ServiceException></ServiceExceptionReport>`},
		{"wms without capability", domain.KindWMS, `<WMS_Capabilities version="1.3.0"><Service/></WMS_Capabilities>`},
		{"unknown encoding", domain.KindWFS, `<?xml version="1.0" encoding="x-unknown-enc"?><WFS_Capabilities/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.kind)
			var de *domain.Error
			if !errors.As(err, &de) || de.Kind != domain.ParseError {
				t.Fatalf("Parse() error = %v, want ParseError", err)
			}
			want := "could not parse capabilities document for " + tt.kind.String()
			if de.Message != want {
				t.Errorf("Message = %q, want %q", de.Message, want)
			}
		})
	}
}

func assertRecords(t *testing.T, got, want []domain.LayerRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Identifier != w.Identifier || g.Title != w.Title || g.DefaultCRS != w.DefaultCRS {
			t.Errorf("record %d = %+v, want %+v", i, g, w)
		}
		if g.Styles == nil {
			t.Errorf("record %d Styles is nil", i)
		}
		if strings.Join(g.Styles, ",") != strings.Join(w.Styles, ",") {
			t.Errorf("record %d Styles = %v, want %v", i, g.Styles, w.Styles)
		}
	}
}
